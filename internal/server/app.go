// Package server wires the sentinel server together: credential store,
// authentication service, HTTP and gRPC front ends, signals and graceful
// shutdown.
package server

import (
	"context"
	"fmt"
	"net"
	"os"
	"os/signal"
	"syscall"

	"golang.org/x/sync/errgroup"

	"github.com/dmitrijs2005/sentinel/internal/logging"
	"github.com/dmitrijs2005/sentinel/internal/server/auth"
	"github.com/dmitrijs2005/sentinel/internal/server/config"
	"github.com/dmitrijs2005/sentinel/internal/server/httpapi"
	"github.com/dmitrijs2005/sentinel/internal/server/metrics"
	"github.com/dmitrijs2005/sentinel/internal/server/models"
	"github.com/dmitrijs2005/sentinel/internal/server/repositories/credentials"
	"github.com/dmitrijs2005/sentinel/internal/server/repositories/repomanager"
	"github.com/dmitrijs2005/sentinel/internal/server/services"

	gs "github.com/dmitrijs2005/sentinel/internal/server/grpc"
)

type App struct {
	config      *config.Config
	logger      logging.Logger
	repos       repomanager.RepositoryManager
	authService *services.AuthService
	httpServer  *httpapi.HTTPServer
	grpcServer  *gs.GRPCServer
}

// NewApp loads the credential seed, opens the store and builds both
// servers. Nothing listens until Run.
func NewApp(ctx context.Context, c *config.Config, logger logging.Logger) (*App, error) {

	records, err := credentials.LoadSeed(ctx, c.SeedSource, credentials.S3Options{
		Region:       c.S3Region,
		BaseEndpoint: c.S3BaseEndpoint,
		AccessKey:    c.S3AccessKey,
		SecretKey:    c.S3SecretKey,
	})
	if err != nil {
		return nil, fmt.Errorf("seed load error: %w", err)
	}

	checkSeedCosts(ctx, logger, records, c.BcryptCost)

	repos, err := repomanager.New(ctx, c.DatabaseDSN, records)
	if err != nil {
		return nil, fmt.Errorf("db init error: %w", err)
	}

	as, err := services.NewAuthService(repos.Credentials(), c, logger)
	if err != nil {
		_ = repos.Close()
		return nil, fmt.Errorf("auth service init error: %w", err)
	}

	m := metrics.New()

	return &App{
		config:      c,
		logger:      logger,
		repos:       repos,
		authService: as,
		httpServer:  httpapi.NewHTTPServer(c.EndpointAddrHTTP, logger, as, m, repos.Ping),
		grpcServer:  gs.NewGRPCServer(c.EndpointAddrGRPC, logger, as, m),
	}, nil
}

// checkSeedCosts warns about seed hashes whose bcrypt cost differs from the
// dummy hash cost. Such users take measurably longer or shorter to reject
// than unknown usernames.
func checkSeedCosts(ctx context.Context, logger logging.Logger, records []models.CredentialRecord, cost int) {
	for _, r := range records {
		got, err := auth.HashCost(r.PasswordHash)
		if err != nil {
			logger.Warn(ctx, "seed record has an unusable password hash", "username", r.Username)
			continue
		}
		if got != cost {
			logger.Warn(ctx, "seed hash cost differs from configured bcrypt cost",
				"username", r.Username, "hash_cost", got, "bcrypt_cost", cost)
		}
	}
}

func (app *App) initSignalHandler(cancelFunc context.CancelFunc) (stop func()) {
	// Channel to catch OS signals.
	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT)

	done := make(chan struct{})
	go func() {
		select {
		case <-sigs:
			cancelFunc()
		case <-done:
		}
	}()

	return func() {
		signal.Stop(sigs)
		close(done)
	}
}

func (app *App) logStartup(ctx context.Context) {
	if app.config.UsesDefaultSecret() {
		app.logger.Warn(ctx, "JWT secret is the built-in default; tokens can be forged by anyone. Set JWT_SECRET.")
	}

	app.logger.Info(ctx, "Starting SentinelStack backend",
		"http", app.config.EndpointAddrHTTP,
		"grpc", app.config.EndpointAddrGRPC,
		"token_ttl", app.authService.TokenTTL().String(),
		"persistent_store", app.config.DatabaseDSN != "",
	)

	for _, r := range app.httpServer.Routes() {
		app.logger.Info(ctx, "Registered route", "method", r.Method, "path", r.Path)
	}
}

// Run serves HTTP and gRPC until ctx is cancelled, a termination signal
// arrives or either server fails. The store is closed before returning.
func (app *App) Run(ctx context.Context) error {

	ctx, cancelFunc := context.WithCancel(ctx)
	defer cancelFunc()

	stopSignals := app.initSignalHandler(cancelFunc)
	defer stopSignals()

	defer func() {
		if err := app.repos.Close(); err != nil {
			app.logger.Error(ctx, "store close failed", "error", err)
		}
	}()

	app.logStartup(ctx)

	var lc net.ListenConfig
	httpLis, err := lc.Listen(ctx, "tcp", app.config.EndpointAddrHTTP)
	if err != nil {
		return fmt.Errorf("http listen: %w", err)
	}
	grpcLis, err := lc.Listen(ctx, "tcp", app.config.EndpointAddrGRPC)
	if err != nil {
		_ = httpLis.Close()
		return fmt.Errorf("grpc listen: %w", err)
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error { return app.httpServer.Serve(gctx, httpLis) })
	g.Go(func() error { return app.grpcServer.Serve(gctx, grpcLis) })

	app.httpServer.SetReady(true)
	app.grpcServer.SetServing(true)

	err = g.Wait()
	app.logger.Info(ctx, "Stopped")
	return err
}
