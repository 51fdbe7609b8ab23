package main

import (
	"context"
	"flag"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"sync"
	"syscall"
	"time"

	"github.com/banshee-data/swing.report/internal/api"
	"github.com/banshee-data/swing.report/internal/config"
	"github.com/banshee-data/swing.report/internal/monitor"
	"github.com/banshee-data/swing.report/internal/serialmux"
	"github.com/banshee-data/swing.report/internal/swingdb"
	"github.com/banshee-data/swing.report/internal/units"
)

var (
	devMode    = flag.Bool("dev", false, "replay a fixture recording instead of opening a serial port")
	fixtures   = flag.String("fixtures", "fixtures.txt", "recording replayed in dev mode")
	listen     = flag.String("listen", ":8080", "listen address")
	serialPort = flag.String("port", "/dev/ttyUSB0", "bat sensor serial port")
	baudRate   = flag.Int("baud", 0, "serial baud rate (0 = sensor default)")
	dbFile     = flag.String("db", "swing_sessions.db", "session database path")
	migrations = flag.String("migrations", "./migrations", "migrations directory")
	tuningFile = flag.String("tuning", "", "optional pipeline tuning JSON")
	speedUnits = flag.String("units", units.KMPH, "default speed units for API responses")
)

func newMux() (serialmux.SerialMuxInterface, error) {
	if *devMode {
		data, err := os.ReadFile(*fixtures)
		if err != nil {
			return nil, err
		}
		var lines []string
		for _, line := range strings.Split(string(data), "\n") {
			line = strings.TrimSpace(line)
			if line == "" || strings.HasPrefix(line, "#") {
				continue
			}
			lines = append(lines, line)
		}
		// Replay at the nominal 100 Hz sensor rate.
		return serialmux.NewMockSerialMux(lines, 10*time.Millisecond), nil
	}
	return serialmux.NewRealSerialMux(*serialPort, serialmux.PortOptions{BaudRate: *baudRate})
}

func main() {
	flag.Parse()

	if *listen == "" {
		log.Fatal("listen address is required")
	}
	if !units.IsValid(*speedUnits) {
		log.Fatalf("invalid units %q: valid values are %s", *speedUnits, units.GetValidUnitsString())
	}

	tuning := config.EmptyTuningConfig()
	if *tuningFile != "" {
		var err error
		tuning, err = config.LoadTuningConfig(*tuningFile)
		if err != nil {
			log.Fatalf("failed to load tuning config: %v", err)
		}
	}

	m, err := newMux()
	if err != nil {
		log.Fatalf("failed to open sensor port: %v", err)
	}
	defer m.Close()

	if err := m.Initialize(); err != nil {
		log.Fatalf("failed to initialize sensor: %v", err)
	}

	db, err := swingdb.NewDB(*dbFile)
	if err != nil {
		log.Fatalf("failed to open database: %v", err)
	}
	defer db.Close()

	if err := db.MigrateUp(*migrations); err != nil {
		log.Fatalf("failed to migrate database: %v", err)
	}

	server := api.NewServer(db, m, monitor.NewRegistry(), *speedUnits, tuning.PipelineConfig())

	var wg sync.WaitGroup
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// run the monitor routine to manage IO on the serial port
	wg.Add(1)
	go func() {
		defer wg.Done()
		if err := m.Monitor(ctx); err != nil && err != context.Canceled {
			log.Printf("failed to monitor serial port: %v", err)
		}
		log.Print("monitor routine terminated")
	}()

	// HTTP server goroutine
	wg.Add(1)
	go func() {
		defer wg.Done()

		httpServer := &http.Server{
			Addr:    *listen,
			Handler: api.LoggingMiddleware(server.ServeMux()),
		}

		go func() {
			log.Printf("listening on %s", *listen)
			if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
				log.Fatalf("failed to start server: %v", err)
			}
		}()

		<-ctx.Done()
		log.Println("shutting down HTTP server...")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			log.Printf("HTTP server shutdown error: %v", err)
		}
		log.Printf("HTTP server routine stopped")
	}()

	wg.Wait()
	log.Printf("Graceful shutdown complete")
}
