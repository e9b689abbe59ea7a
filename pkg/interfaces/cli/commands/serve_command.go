package commands

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/mfgops/bomcost/pkg/infrastructure/repositories/gormstore"
	"github.com/mfgops/bomcost/pkg/interfaces/httpapi"
)

const defaultShutdownTimeout = 10 * time.Second

// ServeConfig holds configuration for the serve command
type ServeConfig struct {
	Addr string
	// ScenarioDir optionally seeds the catalog before serving
	ScenarioDir     string
	ShutdownTimeout time.Duration
	Help            bool
	// Ready receives the bound address once the listener is open
	Ready chan<- string
}

// ServeCommand serves the JSON API until its context is cancelled
type ServeCommand struct {
	config ServeConfig
	rt     Runtime
	store  *gormstore.Store
}

// NewServeCommand creates a new serve command
func NewServeCommand(config ServeConfig, rt Runtime, store *gormstore.Store) *ServeCommand {
	if config.ShutdownTimeout <= 0 {
		config.ShutdownTimeout = defaultShutdownTimeout
	}
	return &ServeCommand{
		config: config,
		rt:     rt,
		store:  store,
	}
}

// Execute runs the serve command
func (c *ServeCommand) Execute(ctx context.Context) error {
	if c.config.Help {
		c.showHelp()
		return nil
	}

	if c.config.ScenarioDir != "" {
		scenario, err := loadScenario(c.config.ScenarioDir)
		if err != nil {
			return err
		}
		if err := seedStore(ctx, c.store, scenario); err != nil {
			return fmt.Errorf("failed to seed catalog: %w", err)
		}
		c.rt.Logger.Info().Str("scenario", c.config.ScenarioDir).Msg("catalog seeded")
	}

	svc := newStoreServices(c.store, c.rt)
	server := &http.Server{
		Handler:           httpapi.NewServer(svc.planning, svc.production, svc.orchestrator, c.rt.Logger).Routes(),
		ReadHeaderTimeout: 5 * time.Second,
	}

	listener, err := net.Listen("tcp", c.config.Addr)
	if err != nil {
		return fmt.Errorf("failed to listen on %s: %w", c.config.Addr, err)
	}
	c.rt.Logger.Info().Str("addr", listener.Addr().String()).Msg("listening")
	if c.config.Ready != nil {
		c.config.Ready <- listener.Addr().String()
	}

	serveErr := make(chan error, 1)
	go func() {
		serveErr <- server.Serve(listener)
	}()

	select {
	case err := <-serveErr:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("server stopped: %w", err)
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), c.config.ShutdownTimeout)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("failed to shut down server: %w", err)
	}
	c.rt.Logger.Info().Msg("server stopped")
	return nil
}

// showHelp displays the help message
func (c *ServeCommand) showHelp() {
	fmt.Fprint(c.rt.out(), `bomcost serve - JSON API over the database

USAGE:
    bomcost serve [-addr :8080] [-scenario <directory>]

ENDPOINTS:
    POST /plans                        plan an order
    POST /productions                  place an order and start production
    GET  /productions                  list production records
    GET  /productions/{id}             show a production record
    GET  /productions/{id}/stages      pipeline stages of a record
    POST /productions/{id}/advance     move a record to a later stage
    POST /productions/{id}/preview     preview the cost of extra cost items
`)
}
