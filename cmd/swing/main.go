// Command swing analyses a bat-sensor recording and reports swing
// metrics. Optionally stores the session and renders stage plots.
package main

import (
	"flag"
	"fmt"
	"log"
	"os"

	"github.com/banshee-data/swing.report/internal/config"
	"github.com/banshee-data/swing.report/internal/imu"
	"github.com/banshee-data/swing.report/internal/monitor"
	"github.com/banshee-data/swing.report/internal/parse"
	"github.com/banshee-data/swing.report/internal/swingdb"
	"github.com/banshee-data/swing.report/internal/units"
)

var (
	input      = flag.String("input", "", "recording file to analyse (required)")
	dt         = flag.Float64("dt", 0, "sampling interval in seconds (0 = tuning/default)")
	threshold  = flag.Float64("threshold", 0, "swing angular-rate threshold rad/s (0 = tuning/default)")
	tuningFile = flag.String("tuning", "", "optional pipeline tuning JSON")
	speedUnits = flag.String("units", units.KMPH, "speed units for the report")
	dbFile     = flag.String("db", "", "store the session in this database")
	migrations = flag.String("migrations", "./migrations", "migrations directory (used with -db)")
	plotsDir   = flag.String("plots", "", "write trajectory and conditioning plots to this directory")
)

func run() error {
	if *input == "" {
		flag.Usage()
		return fmt.Errorf("-input is required")
	}
	if !units.IsValid(*speedUnits) {
		return fmt.Errorf("invalid units %q: valid values are %s", *speedUnits, units.GetValidUnitsString())
	}

	tuning := config.EmptyTuningConfig()
	if *tuningFile != "" {
		var err error
		tuning, err = config.LoadTuningConfig(*tuningFile)
		if err != nil {
			return fmt.Errorf("failed to load tuning config: %w", err)
		}
	}
	cfg := tuning.PipelineConfig()
	if *dt > 0 {
		cfg.Dt = *dt
	}
	if *threshold > 0 {
		cfg.Swing.RateThreshold = *threshold
	}

	samples, err := parse.File(*input)
	if err != nil {
		return err
	}

	analysis, err := imu.Analyze(samples, cfg)
	if err != nil {
		return err
	}

	printReport(analysis)

	sessionID := "swing"
	if *dbFile != "" {
		id, err := store(analysis, *input)
		if err != nil {
			return err
		}
		sessionID = id
		fmt.Printf("stored session %s\n", id)
	}

	if *plotsDir != "" {
		files, err := monitor.WritePlots(*plotsDir, sessionID, analysis)
		if err != nil {
			return err
		}
		for _, f := range files {
			fmt.Printf("wrote %s\n", f)
		}
	}
	return nil
}

func printReport(a *imu.Analysis) {
	fmt.Printf("samples:      %d (%.0f Hz, %.2fs)\n",
		a.SampleCount, 1/a.Dt, float64(a.SampleCount)*a.Dt)
	fmt.Printf("calibration:  %s (%d static samples)\n",
		a.Calibration.Method, a.Calibration.StaticCount)

	if !a.SwingFound {
		fmt.Println("no swing detected")
		return
	}

	m := a.Metrics
	peak := units.ConvertSpeed(m.PeakSpeedKmh/3.6, *speedUnits)
	fmt.Printf("swing phase:  samples %d-%d (%.2fs-%.2fs)\n",
		m.Start, m.End, float64(m.Start)*a.Dt, float64(m.End)*a.Dt)
	fmt.Printf("impact:       sample %d (%.2fs)\n", m.ImpactIndex, float64(m.ImpactIndex)*a.Dt)
	fmt.Printf("peak speed:   %.1f %s\n", peak, *speedUnits)
	fmt.Printf("peak rate:    %.1f deg/s\n", m.PeakAngularDps)
	fmt.Printf("to impact:    %.0f ms\n", m.TimeToImpactMs)
}

func store(a *imu.Analysis, source string) (string, error) {
	db, err := swingdb.NewDB(*dbFile)
	if err != nil {
		return "", fmt.Errorf("failed to open database: %w", err)
	}
	defer db.Close()

	if err := db.MigrateUp(*migrations); err != nil {
		return "", fmt.Errorf("failed to migrate database: %w", err)
	}

	session := swingdb.NewSession(a.SampleCount, a.Dt, source)
	if err := db.InsertSession(session); err != nil {
		return "", err
	}
	if a.SwingFound {
		if err := db.InsertSwingMetrics(session.ID, a.Metrics); err != nil {
			return "", err
		}
	}
	return session.ID, nil
}

func main() {
	flag.Parse()
	if err := run(); err != nil {
		log.Print(err)
		os.Exit(1)
	}
}
