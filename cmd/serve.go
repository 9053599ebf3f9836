package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jmehdipour/wasend/internal/config"
	"github.com/jmehdipour/wasend/internal/db"
	httpSrv "github.com/jmehdipour/wasend/internal/http"
	"github.com/jmehdipour/wasend/internal/logger"
	"github.com/jmehdipour/wasend/internal/service/sendrun"
	"github.com/jmehdipour/wasend/internal/sheet"
	"github.com/redis/go-redis/v9"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP gateway",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load(cfgPath)
		if err != nil {
			return fmt.Errorf("load config: %w", err)
		}

		logger.Init(cfg.Log.Level, cfg.Log.Encoding)
		log := logger.Log

		var redisClient *redis.Client
		if cfg.Redis.Enabled {
			redisClient, err = db.NewRedisClient(db.RedisOpts{
				Addr:        cfg.Redis.Addr,
				Password:    cfg.Redis.Password,
				DB:          cfg.Redis.DB,
				DialTimeout: cfg.Redis.DialTimeout,
			})
			if err != nil {
				// rate limiting only; run open rather than refuse to start
				log.Warn("redis connect failed, rate limiting disabled", zap.Error(err))
			} else {
				defer func() { _ = redisClient.Close() }()
			}
		}

		svc := sendrun.New(cfg, log)
		defer svc.Close()

		server := httpSrv.NewServer(cfg, redisClient, svc, sheet.NewLoader(nil))

		errCh := make(chan error, 1)
		go func() {
			log.Info("starting http", zap.String("addr", cfg.HTTP.Addr))
			errCh <- server.Start(cfg.HTTP.Addr)
		}()

		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

		select {
		case sig := <-sigCh:
			log.Info("signal received, shutting down", zap.String("signal", sig.String()))
		case err := <-errCh:
			if err != nil {
				log.Error("http server exited", zap.Error(err))
			}
		}

		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = server.Shutdown(ctx)

		return nil
	},
}
