// Package app wires configuration, storage, and services into the running API
// server.
package app

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	log "github.com/sirupsen/logrus"

	"github.com/crystalgrimoire/grimoire/internal/config"
	"github.com/crystalgrimoire/grimoire/internal/db"
	"github.com/crystalgrimoire/grimoire/internal/guidance"
	"github.com/crystalgrimoire/grimoire/internal/horoscope"
	"github.com/crystalgrimoire/grimoire/internal/http/api/front"
	"github.com/crystalgrimoire/grimoire/internal/payments"
	"github.com/crystalgrimoire/grimoire/internal/quota"
)

// shutdownTimeout bounds graceful connection draining on exit.
const shutdownTimeout = 10 * time.Second

// Migrate opens the database and runs migrations.
func Migrate(ctx context.Context, cfg config.AppConfig) error {
	configPath := config.ResolveConfigPath(cfg.ConfigPath)
	dsn, err := config.LoadDatabaseDSN(configPath)
	if err != nil {
		return err
	}
	conn, err := db.Open(dsn)
	if err != nil {
		return err
	}
	return db.Migrate(conn)
}

// RunServer boots the API server and blocks until the context is cancelled.
func RunServer(ctx context.Context, cfg config.AppConfig, port int) error {
	configPath := config.ResolveConfigPath(cfg.ConfigPath)
	dsn, err := config.LoadDatabaseDSN(configPath)
	if err != nil {
		return err
	}
	conn, err := db.Open(dsn)
	if err != nil {
		return err
	}
	if errMigrate := db.Migrate(conn); errMigrate != nil {
		return errMigrate
	}

	jwtCfg, errJWT := config.LoadJWTConfig(configPath)
	if errJWT != nil {
		return errJWT
	}
	if jwtCfg.Secret == "" {
		return errors.New("jwt secret is not configured (set jwt.secret or JWT_SECRET)")
	}

	svcCfg, errSvc := config.LoadServiceConfig()
	if errSvc != nil {
		return errSvc
	}

	counter := buildCounter(ctx, svcCfg)

	dispatcher, errDispatcher := guidance.NewDispatcher(ctx, svcCfg)
	if errDispatcher != nil {
		return errDispatcher
	}
	for provider, available := range dispatcher.Available() {
		log.WithFields(log.Fields{"provider": provider, "available": available}).Info("ai provider")
	}

	r := gin.New()
	r.Use(gin.Recovery(), requestLogger())
	front.RegisterFrontRoutes(r, front.Deps{
		DB:         conn,
		JWT:        jwtCfg,
		Counter:    counter,
		Dispatcher: dispatcher,
		Horoscope:  horoscope.NewService(svcCfg, dispatcher),
		Payments:   payments.NewService(svcCfg),
	})

	server := &http.Server{
		Addr:    fmt.Sprintf(":%d", port),
		Handler: r,
	}

	errCh := make(chan error, 1)
	go func() {
		log.WithField("addr", server.Addr).Info("starting api server")
		if errServe := server.ListenAndServe(); errServe != nil && !errors.Is(errServe, http.ErrServerClosed) {
			errCh <- errServe
			return
		}
		errCh <- nil
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if errShutdown := server.Shutdown(shutdownCtx); errShutdown != nil {
			return errShutdown
		}
		return <-errCh
	case errServe := <-errCh:
		return errServe
	}
}

// buildCounter prefers a Redis-backed usage counter so quotas survive restarts
// and span replicas; without Redis it degrades to the in-process counter.
func buildCounter(ctx context.Context, svcCfg config.ServiceConfig) quota.Counter {
	if svcCfg.RedisAddr == "" {
		log.Info("redis not configured, using in-memory usage counter")
		return quota.NewMemoryCounter()
	}

	client := redis.NewClient(&redis.Options{
		Addr:     svcCfg.RedisAddr,
		Password: svcCfg.RedisPassword,
	})
	pingCtx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	if errPing := client.Ping(pingCtx).Err(); errPing != nil {
		log.WithError(errPing).Warn("redis unreachable, using in-memory usage counter")
		return quota.NewMemoryCounter()
	}
	log.WithField("addr", svcCfg.RedisAddr).Info("using redis usage counter")
	return quota.NewRedisCounter(client, "grimoire:usage")
}

// requestLogger logs one structured line per request.
func requestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		log.WithFields(log.Fields{
			"method":  c.Request.Method,
			"path":    c.Request.URL.Path,
			"status":  c.Writer.Status(),
			"latency": time.Since(start).String(),
		}).Info("request")
	}
}
