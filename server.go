package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"bitbucket.org/distextil/telas_backend/config"
	"bitbucket.org/distextil/telas_backend/docstore"
	"bitbucket.org/distextil/telas_backend/handlers"
	"bitbucket.org/distextil/telas_backend/middlewares"
	"bitbucket.org/distextil/telas_backend/models"
	"bitbucket.org/distextil/telas_backend/utils"
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

const defaultPort = "8080"

func main() {
	port := os.Getenv("PORT")
	if port == "" {
		port = defaultPort
	}

	logger := config.GetLogger()

	// Cloud Run sends SIGTERM on revision shutdown; handle it for graceful drain.
	sigCtx, stopSignals := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stopSignals()

	// Start the HTTP server ASAP so Cloud Run considers the revision healthy.
	// Until dependencies are ready, app endpoints return 503.
	r := gin.New()

	// Correlation IDs: generate once per request and attach to context.
	r.Use(func(c *gin.Context) {
		cid := c.GetHeader("x-correlation-id")
		if cid == "" {
			cid = uuid.NewString()
		}
		c.Request = c.Request.WithContext(utils.SetCorrelationIdInContext(c.Request.Context(), cid))
		c.Next()
	})

	var store docstore.Store
	r.Use(func(c *gin.Context) {
		if c.Request.URL.Path == "/healthz" {
			c.Status(http.StatusNoContent)
			c.Abort()
			return
		}
		if store == nil || config.GetDB() == nil {
			c.AbortWithStatus(http.StatusServiceUnavailable)
			return
		}
		c.Next()
	})

	r.GET("/healthz", func(c *gin.Context) { c.Status(http.StatusNoContent) })

	corsConfig := cors.DefaultConfig()
	// In production, require an explicit allowlist via CORS_ALLOWED_ORIGINS.
	allowedOrigins := strings.TrimSpace(os.Getenv("CORS_ALLOWED_ORIGINS"))
	if strings.EqualFold(strings.TrimSpace(os.Getenv("GO_ENV")), "production") {
		if allowedOrigins == "" {
			corsConfig.AllowOrigins = []string{}
		} else {
			corsConfig.AllowOrigins = splitAndTrim(allowedOrigins)
		}
	} else {
		corsConfig.AllowAllOrigins = true
	}
	corsConfig.AddAllowMethods("GET", "POST", "PUT", "DELETE", "OPTIONS")
	corsConfig.AddAllowHeaders("token", "Origin", "Content-Type", "Authorization")
	corsConfig.AddExposeHeaders("Content-Length")
	corsConfig.AllowCredentials = true
	r.Use(cors.New(corsConfig))

	r.Use(middlewares.AuthMiddleware())
	r.Use(gin.Recovery())

	h := handlers.New(lazyStore{&store}, logger)

	r.POST("/auth/login", h.Login)

	api := r.Group("/api")
	api.GET("/sales/returnable", h.QueryReturnable)

	mutating := api.Group("", middlewares.RequireMutatingRole())
	mutating.POST("/inventory/edit", h.EditLine)
	mutating.POST("/inventory/quantity", h.ChangeQuantity)
	mutating.POST("/inventory/transfer", h.TransferLine)
	mutating.POST("/rolls/transfer", h.TransferRolls)
	mutating.POST("/rolls/returns", h.ProcessReturns)
	mutating.POST("/sales", h.RecordSale)
	mutating.GET("/users", h.GetAllUsers)
	mutating.POST("/users", h.CreateUser)

	// Start listening immediately (Cloud Run startup probe is TCP based).
	srv := &http.Server{
		Addr:    ":" + port,
		Handler: r,
	}
	serverErrCh := make(chan error, 1)
	go func() {
		serverErrCh <- srv.ListenAndServe()
	}()

	// Connect dependencies after the port is open.
	config.ConnectDatabaseWithRetry()
	config.ConnectRedisWithRetry()

	var err error
	store, err = docstore.NewFromEnv(context.Background())
	if err != nil {
		logger.WithFields(logrus.Fields{"field": "docstore"}).Panic(err.Error())
	}

	db := config.GetDB()
	sqlDB, _ := db.DB()
	defer func() {
		if sqlDB != nil {
			_ = sqlDB.Close()
		}
	}()
	if !strings.EqualFold(strings.TrimSpace(os.Getenv("SKIP_MIGRATIONS")), "true") {
		models.MigrateTable()
	} else {
		logger.WithFields(logrus.Fields{"field": "migrations"}).Warn("SKIP_MIGRATIONS=true; skipping AutoMigrate on startup")
	}

	logger.WithFields(logrus.Fields{"port": port}).Info("server ready")

	select {
	case err := <-serverErrCh:
		if err != nil && err != http.ErrServerClosed {
			logger.WithFields(logrus.Fields{"field": "http"}).Panic(err.Error())
		}
	case <-sigCtx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			logger.WithFields(logrus.Fields{"field": "shutdown"}).Error(err.Error())
		}
	}
}

// lazyStore defers to the store connected after the port opens. The
// readiness gate keeps requests out until it is set.
type lazyStore struct{ s *docstore.Store }

func (l lazyStore) Get(ctx context.Context, key string) ([]byte, error) {
	return (*l.s).Get(ctx, key)
}

func (l lazyStore) Put(ctx context.Context, key string, data []byte) error {
	return (*l.s).Put(ctx, key, data)
}

func (l lazyStore) Delete(ctx context.Context, key string) error {
	return (*l.s).Delete(ctx, key)
}

func (l lazyStore) List(ctx context.Context, prefix string) ([]docstore.ObjectInfo, error) {
	return (*l.s).List(ctx, prefix)
}

func splitAndTrim(s string) []string {
	parts := strings.Split(s, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p != "" {
			out = append(out, p)
		}
	}
	return out
}
