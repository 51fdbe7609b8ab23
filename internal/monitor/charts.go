package monitor

import (
	"fmt"
	"io"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/opts"

	"github.com/banshee-data/swing.report/internal/imu"
	"github.com/banshee-data/swing.report/internal/units"
)

// RenderSessionChart writes an HTML page charting bat speed (km/h) and
// angular-rate magnitude (deg/s) over the session.
func RenderSessionChart(w io.Writer, sessionID string, a *imu.Analysis) error {
	speeds := a.Nav.Speeds()

	times := make([]string, len(speeds))
	speedData := make([]opts.LineData, len(speeds))
	rateData := make([]opts.LineData, len(speeds))
	for i, s := range speeds {
		times[i] = fmt.Sprintf("%.2f", float64(i)*a.Dt)
		speedData[i] = opts.LineData{Value: s * 3.6}
		rateData[i] = opts.LineData{Value: units.RadToDeg(a.Conditioned.Gyro[i].Norm())}
	}

	subtitle := "no swing detected"
	if a.SwingFound {
		subtitle = fmt.Sprintf("impact at %.2fs, peak %.1f km/h, %.0f ms to impact",
			float64(a.Metrics.ImpactIndex)*a.Dt, a.Metrics.PeakSpeedKmh, a.Metrics.TimeToImpactMs)
	}

	line := charts.NewLine()
	line.SetGlobalOptions(
		charts.WithInitializationOpts(opts.Initialization{PageTitle: "Swing " + sessionID, Width: "1200px", Height: "600px"}),
		charts.WithTitleOpts(opts.Title{Title: "Swing Session " + sessionID, Subtitle: subtitle}),
		charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true), Trigger: "axis"}),
		charts.WithLegendOpts(opts.Legend{Show: opts.Bool(true)}),
		charts.WithXAxisOpts(opts.XAxis{Name: "Time (s)"}),
		charts.WithYAxisOpts(opts.YAxis{Name: "Speed (km/h)"}),
	)
	line.ExtendYAxis(opts.YAxis{Name: "Angular rate (deg/s)", Type: "value"})

	line.SetXAxis(times).
		AddSeries("speed (km/h)", speedData).
		AddSeries("angular rate (deg/s)", rateData,
			charts.WithLineChartOpts(opts.LineChart{YAxisIndex: 1}))

	return line.Render(w)
}
