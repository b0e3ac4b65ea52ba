// Package httpserver exposes the sync, quota and export services as a JSON
// API over HTTP.
package httpserver

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/dmitrijs2005/tasksync/internal/logging"
	"github.com/dmitrijs2005/tasksync/internal/server/services"
	"github.com/gin-gonic/gin"
)

const shutdownTimeout = 5 * time.Second

// Services bundles what the handlers call into.
type Services struct {
	Accounts *services.AccountService
	Sync     *services.SyncService
	Quotas   *services.QuotaService
	Exports  *services.ExportService
}

type HTTPServer struct {
	address        string
	services       Services
	logger         logging.Logger
	jwtSecret      []byte
	requestTimeout time.Duration
	router         *gin.Engine
}

func NewHTTPServer(a string, l logging.Logger, svc Services, secretKey string, requestTimeout time.Duration) *HTTPServer {
	s := &HTTPServer{
		address:        a,
		services:       svc,
		logger:         l.With("module", "http_server"),
		jwtSecret:      []byte(secretKey),
		requestTimeout: requestTimeout,
	}
	s.router = s.routes()
	return s
}

func (s *HTTPServer) routes() *gin.Engine {
	router := gin.New()
	router.Use(s.recovery(), s.accessLog(), s.timeout())

	router.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	api := router.Group("/api/v1", s.authenticate(), s.loadAccount())
	{
		sync := api.Group("/sync", s.requireSyncEntitlement())
		sync.POST("/pull", s.handlePull)
		sync.POST("/push", s.handlePush)

		api.GET("/quota/:action", s.handleQuotaUsage)
		api.POST("/quota/:action/consume", s.handleQuotaConsume)
		api.POST("/exports", s.handleExport)
	}

	return router
}

// Handler returns the router, for tests and embedding.
func (s *HTTPServer) Handler() http.Handler {
	return s.router
}

// Run serves until ctx is cancelled, then drains in-flight requests.
func (s *HTTPServer) Run(ctx context.Context) error {
	srv := &http.Server{
		Addr:              s.address,
		Handler:           s.router,
		ReadHeaderTimeout: s.requestTimeout,
	}

	go func() {
		<-ctx.Done()
		s.logger.Info(ctx, "Stopping HTTP server...")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			s.logger.Error(ctx, "shutdown", "error", err)
		}
	}()

	s.logger.Info(ctx, "Starting HTTP server", "address", s.address)

	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}
