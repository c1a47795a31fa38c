package app

import (
	"net/http"
	"os"
	"sync"
	"time"

	"go.uber.org/zap"

	httpapi "github.com/shestoi/minimarket/internal/merchant/api/http"
	"github.com/shestoi/minimarket/internal/merchant/config"
	"github.com/shestoi/minimarket/internal/merchant/repository/memory"
	platformlogging "github.com/shestoi/minimarket/platform/logging"
	platformshutdown "github.com/shestoi/minimarket/platform/shutdown"
)

// App содержит все зависимости для запуска и корректного shutdown Merchant Service
type App struct {
	logger      *zap.Logger
	httpServer  *http.Server
	shutdownMgr *platformshutdown.Manager
	wg          sync.WaitGroup
}

// Build создаёт и настраивает все зависимости Merchant Service
func Build(cfg config.Config) (*App, error) {
	const op = "app.Build"

	logger, err := platformlogging.New(platformlogging.Config{
		ServiceName: "merchant",
		Env:         string(cfg.AppEnv),
		Level:       os.Getenv("LOG_LEVEL"),
		Format:      os.Getenv("LOG_FORMAT"),
	})
	if err != nil {
		return nil, err
	}

	logger = logger.With(zap.String("op", op))
	logger.Info("Building Merchant service", zap.String("http_addr", cfg.HTTPAddr))

	repo := memory.NewMemoryRepository()
	handler := httpapi.NewHandler(logger, repo)
	readiness := func() bool { return true }
	router := httpapi.NewRouter(handler, readiness)

	httpServer := &http.Server{
		Addr:         cfg.HTTPAddr,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	shutdownMgr := platformshutdown.New(cfg.ShutdownTimeout, logger)
	shutdownMgr.Add("http_server", platformshutdown.ShutdownHTTPServer(httpServer))

	return &App{
		logger:      logger,
		httpServer:  httpServer,
		shutdownMgr: shutdownMgr,
	}, nil
}

// Run запускает сервис и блокируется до получения сигнала shutdown
func (a *App) Run() error {
	defer platformlogging.Sync(a.logger)

	a.logger.Info("Starting Merchant service", zap.String("addr", a.httpServer.Addr))

	a.wg.Add(1)
	go func() {
		defer a.wg.Done()
		if err := a.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			a.logger.Error("HTTP server error", zap.Error(err))
		}
	}()

	a.shutdownMgr.Wait()

	a.wg.Wait()
	a.logger.Info("Merchant service stopped")
	return nil
}
