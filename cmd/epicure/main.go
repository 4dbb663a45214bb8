// Epicure Publisher - operator console for the Epicure controller
//
// This is the main entry point for the publisher. It reads motor and LED
// commands from the terminal, validates them and publishes them to the
// controller's MQTT topic over TLS, riding out broker outages with
// bounded exponential backoff.
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/pflag"

	"github.com/nerrad567/epicure-publisher/internal/audit"
	"github.com/nerrad567/epicure-publisher/internal/console"
	"github.com/nerrad567/epicure-publisher/internal/infrastructure/config"
	"github.com/nerrad567/epicure-publisher/internal/infrastructure/database"
	"github.com/nerrad567/epicure-publisher/internal/infrastructure/influxdb"
	"github.com/nerrad567/epicure-publisher/internal/infrastructure/logging"
	"github.com/nerrad567/epicure-publisher/internal/infrastructure/mqtt"
	"github.com/nerrad567/epicure-publisher/internal/publisher"
	"github.com/nerrad567/epicure-publisher/migrations"
)

// Version information - set at build time via ldflags
// Example: go build -ldflags "-X main.version=1.0.0 -X main.commit=abc123"
var (
	version = "dev"     // Semantic version (e.g., "1.0.0")
	commit  = "unknown" // Git commit hash
	date    = "unknown" // Build date
)

// connectPollInterval is how often startup checks for the broker session.
const connectPollInterval = 100 * time.Millisecond

var (
	errHistoryNeedsJournal     = errors.New("--history requires journal.enabled")
	errMigrateDownNeedsJournal = errors.New("--migrate-down requires journal.enabled")
)

func main() {
	// Cancel on Ctrl+C and SIGTERM so deferred cleanup still runs
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	if err := run(ctx, os.Args[1:], os.Stdout); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// flags holds the parsed command line.
type flags struct {
	configPath  string
	history     int
	migrateDown bool
	showVersion bool
}

func parseFlags(args []string) (flags, error) {
	var f flags
	fs := pflag.NewFlagSet("epicure", pflag.ContinueOnError)
	fs.StringVarP(&f.configPath, "config", "c", "", "path to config file (default $EPICURE_CONFIG or "+config.DefaultPath+")")
	fs.IntVar(&f.history, "history", 0, "print the last N journalled commands and exit")
	fs.BoolVar(&f.migrateDown, "migrate-down", false, "roll back the latest journal migration and exit")
	fs.BoolVarP(&f.showVersion, "version", "v", false, "print version information and exit")

	if err := fs.Parse(args); err != nil {
		return flags{}, err
	}
	if f.history < 0 {
		return flags{}, fmt.Errorf("--history must be positive, got %d", f.history)
	}
	return f, nil
}

// run is the actual application logic, separated from main for testability.
//
// Parameters:
//   - ctx: Context for cancellation and shutdown signals
//   - args: Command line arguments without the program name
//   - stdout: Destination for operator-facing output
//
// Returns:
//   - error: nil on clean shutdown, or error describing failure
func run(ctx context.Context, args []string, stdout io.Writer) error {
	opts, err := parseFlags(args)
	if err != nil {
		return err
	}
	if opts.showVersion {
		fmt.Fprintf(stdout, "%s %s (commit %s, built %s)\n", logging.ServiceName, version, commit, date) //nolint:errcheck // Operator output
		return nil
	}

	// Use default logger until config is loaded
	log := logging.Default()

	configPath := config.ResolvePath(opts.configPath)
	cfg, err := config.Load(configPath)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	// Reinitialise logger with config settings
	runID := audit.NewRunID()
	log = logging.New(cfg.Logging, version).With("run_id", runID)
	log.Info("starting Epicure publisher",
		"version", version,
		"commit", commit,
		"build_date", date,
		"config", configPath,
	)

	if opts.migrateDown && !cfg.Journal.Enabled {
		return errMigrateDownNeedsJournal
	}

	var recorders []console.Recorder

	// Command journal
	var journal *audit.SQLiteRepository
	if cfg.Journal.Enabled {
		db, openErr := database.Open(ctx, cfg.Journal)
		if openErr != nil {
			return fmt.Errorf("opening journal: %w", openErr)
		}
		defer func() {
			if closeErr := db.Close(); closeErr != nil {
				log.Error("error closing journal", "error", closeErr)
			}
		}()
		if opts.migrateDown {
			if downErr := db.MigrateDown(ctx, migrations.FS); downErr != nil {
				return fmt.Errorf("rolling back migration: %w", downErr)
			}
			log.Info("rolled back latest journal migration", "path", db.Path())
			fmt.Fprintln(stdout, "Rolled back latest journal migration") //nolint:errcheck // Operator output
			return nil
		}
		if migrateErr := db.Migrate(ctx, migrations.FS); migrateErr != nil {
			return fmt.Errorf("running migrations: %w", migrateErr)
		}
		if healthErr := db.HealthCheck(ctx); healthErr != nil {
			return fmt.Errorf("checking journal: %w", healthErr)
		}
		journal = audit.NewSQLiteRepository(db.DB, runID)
		recorders = append(recorders, journal)
		log.Info("command journal ready", "path", db.Path())
	}

	if opts.history > 0 {
		return printHistory(ctx, stdout, journal, opts.history)
	}

	// Telemetry (optional; the publisher runs without it)
	var influx *influxdb.Client
	if cfg.InfluxDB.Enabled {
		influx, err = influxdb.Connect(ctx, cfg.InfluxDB)
		if err != nil {
			log.Warn("InfluxDB unavailable, continuing without telemetry", "error", err)
		} else {
			defer func() {
				log.Info("closing InfluxDB connection")
				if closeErr := influx.Close(); closeErr != nil {
					log.Error("error closing InfluxDB", "error", closeErr)
				}
			}()
			influx.SetOnError(func(err error) {
				log.Error("InfluxDB write error", "error", err)
			})
			influx.SetDefaultTag("client_id", cfg.MQTT.Broker.ClientID)
			influx.SetDefaultTag("run_id", runID)
			recorders = append(recorders, influx)
			log.Info("InfluxDB connected", "url", cfg.InfluxDB.URL, "bucket", cfg.InfluxDB.Bucket)
		}
	}

	// Broker session
	transport, err := mqtt.NewTransport(cfg.MQTT)
	if err != nil {
		return fmt.Errorf("configuring MQTT: %w", err)
	}
	transport.SetLogger(log.With("component", "mqtt"))

	pub, err := publisher.New(transport, publisherOptions(cfg, log, influx))
	if err != nil {
		transport.Close()
		return fmt.Errorf("creating publisher: %w", err)
	}
	defer func() {
		if discErr := pub.Disconnect(); discErr != nil {
			log.Warn("error disconnecting from MQTT", "error", discErr)
		}
		if influx != nil {
			// Push the final connection-state points before the summary.
			influx.Flush()
		}
		stats := pub.Stats()
		log.Info("publisher stopped", "published", stats.Published, "failed", stats.Failed)
	}()

	if err := pub.Connect(ctx); err != nil {
		return fmt.Errorf("connecting to MQTT: %w", err)
	}
	log.Info("MQTT connection initiated",
		"broker", fmt.Sprintf("%s:%d", cfg.MQTT.Broker.Host, cfg.MQTT.Broker.Port),
		"client_id", cfg.MQTT.Broker.ClientID,
		"topic", cfg.MQTT.Topic,
	)

	fmt.Fprintln(stdout, "Connecting to MQTT broker...") //nolint:errcheck // Operator output
	if !waitForConnection(ctx, pub, cfg.MQTT.Reconnect.GetConnectTimeout()) {
		if ctx.Err() != nil {
			return nil
		}
		fmt.Fprintln(stdout, "[WARNING] Connection timeout, but you can still try sending commands") //nolint:errcheck // Operator output
	}

	console.PrintBanner(stdout)
	session := console.NewSession(pub, stdout, log, recorders...)
	shell, err := console.NewShell(session, os.Stdin, stdout)
	if err != nil {
		return err
	}
	shell.Run(ctx)

	log.Info("shutting down")
	return nil
}

// publisherOptions maps configuration onto the publisher and routes its
// hooks to telemetry when InfluxDB is connected.
func publisherOptions(cfg *config.Config, log *logging.Logger, influx *influxdb.Client) publisher.Options {
	opts := publisher.Options{
		Topic: cfg.MQTT.Topic,
		QoS:   byte(cfg.MQTT.QoS), // #nosec G115 -- validated to 0..2 by config.Validate
		Backoff: publisher.BackoffPolicy{
			BaseDelay:   cfg.MQTT.Reconnect.GetInitialDelay(),
			MaxDelay:    cfg.MQTT.Reconnect.GetMaxDelay(),
			MaxAttempts: cfg.MQTT.Reconnect.MaxAttempts,
		},
		Logger: log.With("component", "publisher"),
	}

	if influx != nil {
		opts.OnStateChange = influx.WriteConnectionState
		opts.OnReconnectAttempt = influx.WriteReconnectAttempt
		opts.OnReconnectExhausted = influx.WriteReconnectExhausted
	}
	return opts
}

// waitForConnection polls until the publisher is connected, timeout
// passes or ctx ends. It reports whether the session is up.
func waitForConnection(ctx context.Context, pub *publisher.Publisher, timeout time.Duration) bool {
	deadline := time.NewTimer(timeout)
	defer deadline.Stop()
	ticker := time.NewTicker(connectPollInterval)
	defer ticker.Stop()

	for !pub.IsConnected() {
		select {
		case <-ctx.Done():
			return false
		case <-deadline.C:
			return pub.IsConnected()
		case <-ticker.C:
		}
	}
	return true
}

func printHistory(ctx context.Context, stdout io.Writer, journal *audit.SQLiteRepository, n int) error {
	if journal == nil {
		return errHistoryNeedsJournal
	}
	res, err := journal.List(ctx, audit.Filter{Limit: n})
	if err != nil {
		return fmt.Errorf("reading journal: %w", err)
	}
	return console.PrintHistory(stdout, res, time.Now())
}
