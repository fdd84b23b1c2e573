// Gray Logic ChatOps - lighting control and community tools for Slack
//
// This is the main entry point. The binary serves Slack interactions
// (buttons, menus, dialogs and the slash command), lists and controls
// lighting gateway devices, and streams device updates to a dashboard.
//
// Subcommands:
//
//	chatops serve              run the HTTP server (default)
//	chatops migrate            apply pending schema migrations and exit
//	chatops seed <file.yaml>   load neighborhoods from a seed file
//	chatops token <subject>    print a dashboard bearer token
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/slack-go/slack"
	"github.com/spf13/cobra"

	_ "github.com/nerrad567/gray-logic-chatops/migrations"

	"github.com/nerrad567/gray-logic-chatops/internal/api"
	"github.com/nerrad567/gray-logic-chatops/internal/device"
	"github.com/nerrad567/gray-logic-chatops/internal/gateway"
	"github.com/nerrad567/gray-logic-chatops/internal/infrastructure/config"
	"github.com/nerrad567/gray-logic-chatops/internal/infrastructure/database"
	"github.com/nerrad567/gray-logic-chatops/internal/infrastructure/influxdb"
	"github.com/nerrad567/gray-logic-chatops/internal/infrastructure/logging"
	"github.com/nerrad567/gray-logic-chatops/internal/infrastructure/mqtt"
	"github.com/nerrad567/gray-logic-chatops/internal/interaction"
	"github.com/nerrad567/gray-logic-chatops/internal/member"
	"github.com/nerrad567/gray-logic-chatops/internal/neighborhood"
)

// Version information - set at build time via ldflags
// Example: go build -ldflags "-X main.version=1.0.0 -X main.commit=abc123"
var (
	version = "dev"     // Semantic version (e.g., "1.0.0")
	commit  = "unknown" // Git commit hash
	date    = "unknown" // Build date
)

// Default configuration file path
const defaultConfigPath = "configs/config.yaml"

func main() {
	// Cancel on Ctrl+C and SIGTERM for graceful shutdown
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	if err := newRootCmd().ExecuteContext(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var configFlag string

	root := &cobra.Command{
		Use:           "chatops",
		Short:         "Gray Logic ChatOps: Slack interactions for the lighting gateway",
		SilenceUsage:  true,
		SilenceErrors: true,
		Version:       fmt.Sprintf("%s (commit %s, built %s)", version, commit, date),
		RunE: func(cmd *cobra.Command, _ []string) error {
			return run(cmd.Context(), getConfigPath(configFlag))
		},
	}
	root.PersistentFlags().StringVarP(&configFlag, "config", "c", "", "path to config.yaml (default: $CHATOPS_CONFIG or "+defaultConfigPath+")")

	root.AddCommand(&cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP server",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return run(cmd.Context(), getConfigPath(configFlag))
		},
	})

	root.AddCommand(&cobra.Command{
		Use:   "migrate",
		Short: "Apply pending database migrations",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return migrate(cmd.Context(), getConfigPath(configFlag), cmd.OutOrStdout())
		},
	})

	root.AddCommand(&cobra.Command{
		Use:   "seed <file.yaml>",
		Short: "Load neighborhoods from a YAML seed file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return seed(cmd.Context(), getConfigPath(configFlag), args[0], cmd.OutOrStdout())
		},
	})

	var tokenTTL time.Duration
	tokenCmd := &cobra.Command{
		Use:   "token <subject>",
		Short: "Print a signed bearer token for the dashboard API",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return issueToken(getConfigPath(configFlag), args[0], tokenTTL, cmd.OutOrStdout())
		},
	}
	tokenCmd.Flags().DurationVar(&tokenTTL, "ttl", 0, "token lifetime (default: api.auth.token_ttl)")
	root.AddCommand(tokenCmd)

	return root
}

// run is the server logic, separated from main for testability.
// It returns nil on clean shutdown.
func run(ctx context.Context, configPath string) error {
	// Use default logger until config is loaded
	log := logging.Default()
	log.Info("starting Gray Logic ChatOps",
		"version", version,
		"commit", commit,
		"build_date", date,
	)

	cfg, err := config.Load(configPath)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}
	log.Info("configuration loaded", "path", configPath)

	log = logging.New(cfg.Logging, version)
	log.Info("logger initialised",
		"level", cfg.Logging.Level,
		"format", cfg.Logging.Format,
	)

	db, err := openDatabase(ctx, cfg)
	if err != nil {
		return err
	}
	defer func() {
		log.Info("closing database")
		if closeErr := db.Close(); closeErr != nil {
			log.Error("error closing database", "error", closeErr)
		}
	}()
	log.Info("database ready", "path", cfg.Database.Path)

	members := member.NewSQLiteRepository(db.DB)
	neighborhoods := neighborhood.NewSQLiteRepository(db.DB)
	notes := device.NewSQLiteNoteRepository(db.DB)

	// The broker session is dialed lazily by the gateway client.
	session := &mqttSession{cfg: cfg.MQTT, log: log.With("component", "mqtt")}
	defer func() {
		log.Info("disconnecting from MQTT")
		if closeErr := session.Close(); closeErr != nil {
			log.Error("error closing MQTT", "error", closeErr)
		}
	}()

	gw := gateway.NewClient(session.dial, gateway.Options{
		Topics:      mqtt.Topics{Prefix: cfg.Gateway.TopicPrefix},
		QoS:         byte(cfg.MQTT.QoS),
		SettleDelay: cfg.GetSettleDelay(),
		DialTimeout: cfg.GetDialTimeout(),
		Logger:      log.With("component", "gateway"),
	})

	health := map[string]api.HealthCheck{
		"database": db.HealthCheck,
		"mqtt":     session.HealthCheck,
		"gateway":  gatewayHealth(gw),
	}

	// Connect to InfluxDB (optional)
	var recorder device.Recorder
	if cfg.InfluxDB.Enabled {
		influxClient, influxErr := influxdb.Connect(ctx, cfg.InfluxDB)
		if influxErr != nil {
			return fmt.Errorf("connecting to InfluxDB: %w", influxErr)
		}
		defer func() {
			log.Info("closing InfluxDB connection")
			if closeErr := influxClient.Close(); closeErr != nil {
				log.Error("error closing InfluxDB", "error", closeErr)
			}
		}()
		influxClient.SetOnError(func(err error) {
			log.Error("InfluxDB write error", "error", err)
		})
		recorder = influxClient
		health["influxdb"] = influxClient.HealthCheck
		log.Info("InfluxDB connected",
			"url", cfg.InfluxDB.URL,
			"org", cfg.InfluxDB.Org,
			"bucket", cfg.InfluxDB.Bucket,
		)
	} else {
		log.Info("InfluxDB disabled")
	}

	reader := device.NewReader(gw, recorder, log.With("component", "device")).WithNotes(notes)

	router := interaction.NewRouter(api.NewWebhookTransport(nil), log.With("component", "interaction"))
	handlers := &interaction.Handlers{
		Members:       members,
		Neighborhoods: neighborhoods,
		Devices:       reader,
		Control:       device.NewController(gw),
		Notes:         notes,
		Dialogs:       slack.New(cfg.Slack.BotToken),
		Command:       cfg.Slack.Command,
		PolicyURL:     cfg.Slack.PolicyURL,
		Logger:        log.With("component", "handlers"),
	}
	handlers.Register(router)

	server, err := api.New(api.Deps{
		Config:  cfg.API,
		WS:      cfg.WebSocket,
		Slack:   cfg.Slack,
		Logger:  log,
		Router:  router,
		Devices: reader,
		Members: members,
		Updates: gw,
		Health:  health,
		Version: version,
	})
	if err != nil {
		return fmt.Errorf("creating API server: %w", err)
	}
	if err := server.Start(ctx); err != nil {
		return fmt.Errorf("starting API server: %w", err)
	}

	// Warm the gateway so the dashboard feed has data before the first
	// listing. Failures are retried by the next listing.
	go warmGateway(ctx, gw, log)

	log.Info("Gray Logic ChatOps started",
		"command", cfg.Slack.Command,
		"address", fmt.Sprintf("%s:%d", cfg.API.Host, cfg.API.Port),
	)

	<-ctx.Done()
	log.Info("shutdown signal received")

	if err := server.Close(); err != nil {
		log.Error("error closing API server", "error", err)
	}

	// Deferred replies already accepted still get delivered.
	log.Info("waiting for pending interaction replies")
	router.Wait()

	log.Info("Gray Logic ChatOps stopped")
	return nil
}

// migrate applies pending migrations and reports what ran.
func migrate(ctx context.Context, configPath string, out io.Writer) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	db, err := database.Open(ctx, databaseConfig(cfg))
	if err != nil {
		return fmt.Errorf("opening database: %w", err)
	}
	defer db.Close()

	_, pending, err := db.MigrationStatus(ctx)
	if err != nil {
		return fmt.Errorf("reading migration status: %w", err)
	}
	if err := db.Migrate(ctx); err != nil {
		return fmt.Errorf("running migrations: %w", err)
	}

	for _, m := range pending {
		fmt.Fprintf(out, "applied %s %s\n", m.Version, m.Name)
	}
	fmt.Fprintf(out, "%d migration(s) applied\n", len(pending))
	return nil
}

// seed loads neighborhoods from path into the database.
func seed(ctx context.Context, configPath, path string, out io.Writer) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	list, err := neighborhood.LoadSeedFile(path)
	if err != nil {
		return err
	}

	db, err := openDatabase(ctx, cfg)
	if err != nil {
		return err
	}
	defer db.Close()

	n, err := neighborhood.Seed(ctx, neighborhood.NewSQLiteRepository(db.DB), list)
	if err != nil {
		return err
	}
	fmt.Fprintf(out, "seeded %d neighborhood(s) from %s\n", n, path)
	return nil
}

// issueToken prints a dashboard token for subject. A zero ttl uses the
// configured default.
func issueToken(configPath, subject string, ttl time.Duration, out io.Writer) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}
	if ttl == 0 {
		ttl = cfg.GetTokenTTL()
	}

	token, err := api.IssueDashboardToken(cfg.API.Auth.TokenSecret, subject, ttl)
	if err != nil {
		return err
	}
	fmt.Fprintln(out, token)
	return nil
}

// openDatabase opens the database and applies pending migrations.
func openDatabase(ctx context.Context, cfg *config.Config) (*database.DB, error) {
	db, err := database.Open(ctx, databaseConfig(cfg))
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}
	if err := db.Migrate(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("running migrations: %w", err)
	}
	return db, nil
}

func databaseConfig(cfg *config.Config) database.Config {
	return database.Config{
		Path:        cfg.Database.Path,
		WALMode:     cfg.Database.WALMode,
		BusyTimeout: cfg.Database.BusyTimeout,
	}
}

// getConfigPath returns the config path from the flag, CHATOPS_CONFIG, or the default.
func getConfigPath(flag string) string {
	if flag != "" {
		return flag
	}
	if path := os.Getenv("CHATOPS_CONFIG"); path != "" {
		return path
	}
	return defaultConfigPath
}

// warmGateway connects and starts observation once at startup.
func warmGateway(ctx context.Context, gw *gateway.Client, log *logging.Logger) {
	h, err := gw.Connect(ctx)
	if err == nil {
		err = gw.ObserveDevices(h)
	}
	if err != nil {
		log.Warn("gateway not reachable at startup", "error", err)
		return
	}
	log.Info("observing gateway devices", "devices", h.DeviceCount())
}

func gatewayHealth(gw *gateway.Client) api.HealthCheck {
	return func(context.Context) error {
		if !gw.Connected() {
			return gateway.ErrUnavailable
		}
		return nil
	}
}

var errMQTTNotDialed = errors.New("not connected")

// mqttSession owns the broker client the gateway dials on first use.
type mqttSession struct {
	cfg config.MQTTConfig
	log *logging.Logger

	mu     sync.Mutex
	client *mqtt.Client
}

func (s *mqttSession) dial(ctx context.Context) (gateway.Transport, error) {
	c, err := mqtt.Connect(ctx, s.cfg, s.log)
	if err != nil {
		return nil, err
	}
	s.mu.Lock()
	s.client = c
	s.mu.Unlock()
	s.log.Info("MQTT connected",
		"broker", fmt.Sprintf("%s:%d", s.cfg.Broker.Host, s.cfg.Broker.Port),
		"client_id", s.cfg.Broker.ClientID,
	)
	return c, nil
}

func (s *mqttSession) HealthCheck(ctx context.Context) error {
	s.mu.Lock()
	c := s.client
	s.mu.Unlock()
	if c == nil {
		return errMQTTNotDialed
	}
	return c.HealthCheck(ctx)
}

func (s *mqttSession) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.client == nil {
		return nil
	}
	return s.client.Close()
}
