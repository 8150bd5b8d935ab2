// Package http is the presentation layer: server-rendered pages with
// form-based mutations, plus a small JSON API. It translates requests
// into repository and derivation calls and maps their errors to
// status codes.
package http

import (
	"context"
	"fmt"
	"html/template"
	"net/http"
	"path/filepath"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/yogan/backoffice/internal/auth"
)

// ServerConfig holds HTTP server configuration
type ServerConfig struct {
	Host         string
	Port         int
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
	TemplatesDir string
	CookieName   string
	SecureCookie bool
}

// Server is the HTTP server for the back office
type Server struct {
	config     ServerConfig
	httpServer *http.Server
	router     *gin.Engine
	logger     *zap.Logger
}

// NewServer creates the gin router, loads templates, and mounts all routes
func NewServer(config ServerConfig, handlers *Handlers, authService *auth.Service, logger *zap.Logger) *Server {
	gin.SetMode(gin.ReleaseMode)
	router := gin.New()

	router.SetFuncMap(template.FuncMap{
		"money": func(d decimal.Decimal) string {
			return "$" + d.StringFixed(2)
		},
	})
	router.LoadHTMLGlob(filepath.Join(config.TemplatesDir, "*.tmpl"))

	server := &Server{
		config: config,
		router: router,
		logger: logger,
	}

	router.Use(gin.Recovery())
	router.Use(server.loggingMiddleware())

	server.setupRoutes(handlers, authService)

	return server
}

func (s *Server) loggingMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		path := c.Request.URL.Path

		c.Next()

		s.logger.Info("HTTP request",
			zap.String("method", c.Request.Method),
			zap.String("path", path),
			zap.Int("status", c.Writer.Status()),
			zap.Duration("latency", time.Since(start)),
			zap.String("ip", c.ClientIP()),
		)
	}
}

func (s *Server) setupRoutes(handlers *Handlers, authService *auth.Service) {
	s.router.GET("/health", handlers.HealthCheck)

	s.router.GET("/login", handlers.ShowLogin)
	s.router.POST("/login", handlers.HandleLogin)
	s.router.POST("/logout", handlers.HandleLogout)

	requireUser := auth.RequireUser(authService, s.config.CookieName)

	app := s.router.Group("/", requireUser)
	{
		app.GET("/", handlers.Home)
		app.GET("/dashboard", handlers.Dashboard)

		sales := app.Group("/sales")
		{
			sales.GET("", handlers.SalesIndex)
			sales.GET("/invoices", handlers.ListInvoices)
			sales.GET("/invoices/:invoiceId", handlers.ShowInvoice)
			sales.POST("/invoices/:invoiceId/deposits", handlers.CreateDeposit)
			sales.GET("/invoices/:invoiceId/export", handlers.ExportInvoice)

			sales.GET("/customers", handlers.ListCustomers)
			sales.GET("/customers/new", handlers.NewCustomerForm)
			sales.POST("/customers", handlers.CreateCustomer)
			sales.GET("/customers/:customerId", handlers.ShowCustomer)

			sales.GET("/deposits/:depositId", handlers.ShowDeposit)
		}
	}

	api := s.router.Group("/api/v1", requireUser)
	{
		api.GET("/invoices/:invoiceId", handlers.GetInvoiceJSON)
	}
}

// Start starts the HTTP server and blocks until the context is cancelled
// or the listener fails
func (s *Server) Start(ctx context.Context) error {
	addr := fmt.Sprintf("%s:%d", s.config.Host, s.config.Port)

	s.httpServer = &http.Server{
		Addr:         addr,
		Handler:      s.router,
		ReadTimeout:  s.config.ReadTimeout,
		WriteTimeout: s.config.WriteTimeout,
	}

	s.logger.Info("HTTP server listening", zap.String("addr", addr))

	errCh := make(chan error, 1)
	go func() {
		if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	select {
	case <-ctx.Done():
		return s.Stop()
	case err := <-errCh:
		s.logger.Error("HTTP server error", zap.Error(err))
		return err
	}
}

// Stop gracefully stops the HTTP server
func (s *Server) Stop() error {
	if s.httpServer == nil {
		return nil
	}

	s.logger.Info("Stopping HTTP server")
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	return s.httpServer.Shutdown(ctx)
}

// Router returns the underlying gin router (for testing)
func (s *Server) Router() *gin.Engine {
	return s.router
}
