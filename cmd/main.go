package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"github.com/urfave/cli/v2"

	"catalog/internal/config"
	"catalog/internal/domain"
	httpapi "catalog/internal/http"
	"catalog/internal/logging"
	"catalog/internal/metrics"
	"catalog/internal/session"
	"catalog/internal/shell"

	_ "catalog/docs"
)

var demoProducts = []domain.Product{
	{Name: "Desk lamp", Description: "Adjustable arm, warm light", Price: 24.9},
	{Name: "Notebook", Description: "A5, dotted", Price: 4.5},
	{Name: "Fountain pen", Price: 39},
}

// @title Product catalog editor
// @version 1.0
// @description Server-driven product catalog editor
// @BasePath /
func main() {
	app := &cli.App{
		Name:  "catalog",
		Usage: "product catalog editor",
		Flags: config.Flags(),
		Commands: []*cli.Command{
			{Name: "serve", Usage: "serve the editor over HTTP", Action: serve},
			{Name: "shell", Usage: "drive a local editor session from stdin", Action: runShell},
		},
	}
	if err := app.Run(os.Args); err != nil {
		logrus.Fatal(err)
	}
}

func setup(c *cli.Context) (config.Config, *logrus.Logger, error) {
	cfg, err := config.FromCLI(c)
	if err != nil {
		return cfg, nil, err
	}
	log, err := logging.New(cfg.LogLevel, cfg.LogFormat, os.Stderr)
	if err != nil {
		return cfg, nil, err
	}
	return cfg, log, nil
}

func serve(c *cli.Context) error {
	cfg, log, err := setup(c)
	if err != nil {
		return err
	}
	gin.SetMode(gin.ReleaseMode)

	ctx, stop := signal.NotifyContext(c.Context, syscall.SIGINT, syscall.SIGTERM)
	defer stop()
	ctx = logging.WithContext(ctx, logrus.NewEntry(log))

	m := metrics.New()
	sessions := session.NewStore(m, cfg.SessionTTL, cfg.MaxSessions)
	if iv := cfg.SweepInterval(); iv > 0 {
		go sessions.Run(ctx, iv)
	}

	var seed []domain.Product
	if cfg.Seed {
		seed = demoProducts
	}
	srv := httpapi.NewServer(sessions, m, log, seed)

	httpServer := &http.Server{
		Addr:    cfg.Addr,
		Handler: srv.Engine(),
	}

	errCh := make(chan error, 1)
	go func() {
		log.WithField("addr", httpServer.Addr).Info("HTTP server listening")
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		log.WithError(err).Error("shutdown error")
		return err
	}
	log.Info("server stopped")
	return nil
}

func runShell(c *cli.Context) error {
	cfg, log, err := setup(c)
	if err != nil {
		return err
	}
	ctx := logging.WithContext(c.Context, logrus.NewEntry(log))

	sess, err := session.New(ctx, "shell", metrics.New())
	if err != nil {
		return err
	}
	if cfg.Seed {
		if err := sess.Seed(ctx, demoProducts); err != nil {
			return err
		}
	}
	return shell.New(sess, os.Stdout).Run(ctx, os.Stdin)
}
