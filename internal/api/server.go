package api

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/nerrad567/gray-logic-chatops/internal/device"
	"github.com/nerrad567/gray-logic-chatops/internal/gateway"
	"github.com/nerrad567/gray-logic-chatops/internal/infrastructure/config"
	"github.com/nerrad567/gray-logic-chatops/internal/infrastructure/logging"
	"github.com/nerrad567/gray-logic-chatops/internal/interaction"
	"github.com/nerrad567/gray-logic-chatops/internal/member"
)

// gracefulShutdownTimeout is the maximum time to wait for in-flight requests
// to complete during shutdown.
const gracefulShutdownTimeout = 10 * time.Second

// Dispatcher routes parsed interactions. *interaction.Router satisfies it.
type Dispatcher interface {
	Route(ctx context.Context, ev interaction.Event) (interaction.Immediate, error)
}

// DeviceLister lists normalized devices. *device.Reader satisfies it.
type DeviceLister interface {
	Snapshots(ctx context.Context) ([]device.Snapshot, error)
}

// KudosLedger reads members and the kudos they received. *member.SQLiteRepository satisfies it.
type KudosLedger interface {
	FindByID(ctx context.Context, id string) (*member.Member, error)
	ListKudos(ctx context.Context, receiverID string) ([]member.Kudos, error)
}

// UpdateSource delivers gateway record changes. *gateway.Client satisfies it.
type UpdateSource interface {
	OnUpdate(fn func(gateway.Update))
}

// HealthCheck reports whether one dependency is usable.
type HealthCheck func(ctx context.Context) error

// Deps holds the dependencies required by the API server.
type Deps struct {
	Config  config.APIConfig
	WS      config.WebSocketConfig
	Slack   config.SlackConfig
	Logger  *logging.Logger
	Router  Dispatcher
	Devices DeviceLister           // optional: enables GET /api/v1/devices
	Members KudosLedger            // optional: enables GET /api/v1/members/{id}/kudos
	Updates UpdateSource           // optional: feeds the dashboard device feed
	Health  map[string]HealthCheck // keyed by component name
	Version string
}

// Server is the HTTP server for Slack interactions and the dashboard API.
//
// It is created with New() and started with Start().
type Server struct {
	cfg     config.APIConfig
	wsCfg   config.WebSocketConfig
	slack   config.SlackConfig
	logger  *logging.Logger
	router  Dispatcher
	devices DeviceLister
	members KudosLedger
	updates UpdateSource
	health  map[string]HealthCheck
	version string
	feed    *DeviceFeed
	handler http.Handler
	server  *http.Server
	cancel  context.CancelFunc // cancels the feed on Close()
}

// New creates a new API server with the given dependencies.
//
// The server is not started until Start() is called.
func New(deps Deps) (*Server, error) {
	if deps.Logger == nil {
		return nil, fmt.Errorf("logger is required")
	}
	if deps.Router == nil {
		return nil, fmt.Errorf("interaction router is required")
	}
	if deps.Slack.SigningSecret == "" {
		return nil, fmt.Errorf("slack signing secret is required")
	}
	if deps.Config.Auth.TokenSecret == "" {
		return nil, fmt.Errorf("dashboard token secret is required")
	}

	s := &Server{
		cfg:     deps.Config,
		wsCfg:   deps.WS,
		slack:   deps.Slack,
		logger:  deps.Logger.With("component", "api"),
		router:  deps.Router,
		devices: deps.Devices,
		members: deps.Members,
		updates: deps.Updates,
		health:  deps.Health,
		version: deps.Version,
	}
	s.feed = NewDeviceFeed(s.logger)
	s.handler = s.buildRouter()
	return s, nil
}

// Handler returns the server's root HTTP handler.
func (s *Server) Handler() http.Handler {
	return s.handler
}

// Start runs the device feed, relays gateway updates to it, and launches
// the HTTP listener in a background goroutine.
func (s *Server) Start(ctx context.Context) error {
	var srvCtx context.Context
	srvCtx, s.cancel = context.WithCancel(ctx)

	go s.feed.Run(srvCtx)
	s.relayDeviceUpdates()

	s.server = &http.Server{
		Addr:              fmt.Sprintf("%s:%d", s.cfg.Host, s.cfg.Port),
		Handler:           s.handler,
		ReadTimeout:       time.Duration(s.cfg.Timeouts.Read) * time.Second,
		ReadHeaderTimeout: time.Duration(s.cfg.Timeouts.Read) * time.Second,
		WriteTimeout:      time.Duration(s.cfg.Timeouts.Write) * time.Second,
		IdleTimeout:       time.Duration(s.cfg.Timeouts.Idle) * time.Second,
	}

	go func() {
		var err error
		if s.cfg.TLS.Enabled {
			s.logger.Info("API server starting with TLS",
				"address", s.server.Addr,
				"cert", s.cfg.TLS.CertFile,
			)
			err = s.server.ListenAndServeTLS(s.cfg.TLS.CertFile, s.cfg.TLS.KeyFile)
		} else {
			s.logger.Info("API server starting", "address", s.server.Addr)
			err = s.server.ListenAndServe()
		}
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.logger.Error("API server error", "error", err)
		}
	}()

	return nil
}

// Close gracefully shuts down the API server.
//
// It waits up to 10 seconds for in-flight requests to complete,
// then forcefully closes remaining connections. Deferred interaction
// replies are not tracked here; wait on the interaction router for those.
func (s *Server) Close() error {
	if s.server == nil {
		return nil
	}

	if s.cancel != nil {
		s.cancel()
	}

	ctx, cancel := context.WithTimeout(context.Background(), gracefulShutdownTimeout)
	defer cancel()

	s.logger.Info("API server shutting down")
	if err := s.server.Shutdown(ctx); err != nil {
		return fmt.Errorf("shutting down API server: %w", err)
	}
	return nil
}
