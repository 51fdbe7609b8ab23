package monitor

import (
	"fmt"
	"image/color"
	"os"
	"path/filepath"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"

	"github.com/banshee-data/swing.report/internal/imu"
)

var (
	colorCalibrated = color.RGBA{R: 158, G: 158, B: 158, A: 255}
	colorFiltered   = color.RGBA{R: 31, G: 119, B: 180, A: 255}
	colorTrajectory = color.RGBA{R: 214, G: 39, B: 40, A: 255}
)

// WritePlots renders PNGs for a session into outputDir: the XY bat
// trajectory and a conditioning comparison (calibrated vs filtered
// acceleration magnitude). Returns the written file paths.
func WritePlots(outputDir, sessionID string, a *imu.Analysis) ([]string, error) {
	if err := os.MkdirAll(outputDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create output dir: %w", err)
	}

	trajFile := filepath.Join(outputDir, sessionID+"_trajectory.png")
	if err := writeTrajectoryPlot(trajFile, a); err != nil {
		return nil, err
	}

	stageFile := filepath.Join(outputDir, sessionID+"_conditioning.png")
	if err := writeConditioningPlot(stageFile, a); err != nil {
		return nil, err
	}

	return []string{trajFile, stageFile}, nil
}

func writeTrajectoryPlot(path string, a *imu.Analysis) error {
	p := plot.New()
	p.Title.Text = "Bat Trajectory (XY plane)"
	p.X.Label.Text = "X (m)"
	p.Y.Label.Text = "Y (m)"

	pts := make(plotter.XYs, len(a.Nav.Positions))
	for i, pos := range a.Nav.Positions {
		pts[i] = plotter.XY{X: pos.X, Y: pos.Y}
	}

	line, err := plotter.NewLine(pts)
	if err != nil {
		return fmt.Errorf("failed to build trajectory line: %w", err)
	}
	line.Color = colorTrajectory
	line.Width = vg.Points(1)
	p.Add(line)

	if err := p.Save(8*vg.Inch, 8*vg.Inch, path); err != nil {
		return fmt.Errorf("failed to save trajectory plot: %w", err)
	}
	return nil
}

func writeConditioningPlot(path string, a *imu.Analysis) error {
	p := plot.New()
	p.Title.Text = "Acceleration Magnitude: Calibrated vs Filtered"
	p.X.Label.Text = "Time (s)"
	p.Y.Label.Text = "|a| (m/s²)"

	calPts := make(plotter.XYs, len(a.Conditioned.CalibratedAccel))
	for i, v := range a.Conditioned.CalibratedAccel {
		calPts[i] = plotter.XY{X: float64(i) * a.Dt, Y: v.Norm()}
	}
	fltPts := make(plotter.XYs, len(a.Conditioned.Accel))
	for i, v := range a.Conditioned.Accel {
		fltPts[i] = plotter.XY{X: float64(i) * a.Dt, Y: v.Norm()}
	}

	calLine, err := plotter.NewLine(calPts)
	if err != nil {
		return fmt.Errorf("failed to build calibrated line: %w", err)
	}
	calLine.Color = colorCalibrated
	calLine.Width = vg.Points(1)

	fltLine, err := plotter.NewLine(fltPts)
	if err != nil {
		return fmt.Errorf("failed to build filtered line: %w", err)
	}
	fltLine.Color = colorFiltered
	fltLine.Width = vg.Points(1)

	p.Add(calLine, fltLine)
	p.Legend.Add("calibrated", calLine)
	p.Legend.Add("filtered", fltLine)
	p.Legend.Top = true

	if err := p.Save(14*vg.Inch, 6*vg.Inch, path); err != nil {
		return fmt.Errorf("failed to save conditioning plot: %w", err)
	}
	return nil
}
