// cmd/server/main.go

// 本服務以 HTTP 提供單一帳戶的狀態機操作。
// 此檔案負責載入設定、初始化模組（logger, metrics, session, server），
// 並啟動 HTTP 伺服器；收到 SIGINT/SIGTERM 時在逾時內優雅關閉。

package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"bankaccount/internal/config"
	"bankaccount/internal/logger"
	"bankaccount/internal/metrics"
	"bankaccount/internal/server"
	"bankaccount/internal/session"
)

func main() {
	// 本機開發時載入 .env；正式環境直接使用環境變數
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using environment variables")
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("cannot load config: %v", err)
	}

	lg, _, err := logger.New(logger.Config{Environment: cfg.AppEnv, Level: cfg.LogLevel})
	if err != nil {
		log.Fatalf("cannot build logger: %v", err)
	}
	defer func() { _ = lg.Sync() }()

	m := metrics.New()
	sess := session.New(
		session.WithLogger(lg),
		session.WithMinOpeningDeposit(cfg.MinOpeningDeposit),
		session.WithRecorder(m),
	)
	s := server.NewServer(sess,
		server.WithLogger(lg),
		server.WithMetrics(m),
		server.WithAllowedOrigins(cfg.CORSAllowedOrigins),
	)

	srv := &http.Server{
		Addr:              cfg.Addr(),
		Handler:           s.Router(),
		ReadHeaderTimeout: 5 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		lg.Info("bank account server running",
			zap.String("addr", srv.Addr),
			zap.String("session_id", sess.ID.String()),
			zap.Int64("min_opening_deposit", cfg.MinOpeningDeposit),
		)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			lg.Error("server failed", zap.Error(err))
			os.Exit(1)
		}
	case <-ctx.Done():
		lg.Info("shutting down", zap.Duration("timeout", cfg.ShutdownTimeout))
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		lg.Error("graceful shutdown failed", zap.Error(err))
		return
	}
	lg.Info("server stopped", zap.Any("account", sess.State()))
}
