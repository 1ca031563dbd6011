package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"time"

	"github.com/urfave/cli/v2"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/clipsave/clipsave"
	"github.com/clipsave/clipsave/async"
	"github.com/clipsave/clipsave/internal/proxy"
)

func main() {
	logConfig := zap.NewDevelopmentConfig()
	logConfig.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
	logger, err := logConfig.Build()
	if err != nil {
		log.Fatalf("can't initialize zap logger: %v", err)
	}
	defer logger.Sync()
	zap.RedirectStdLog(logger)
	zap.ReplaceGlobals(logger)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	app := &cli.App{
		Name:  "clipsave-proxy",
		Usage: "run the download relay daemon",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  "config",
				Usage: "load configuration from `FILE`",
			},
			&cli.StringFlag{
				Name:  "listen",
				Usage: "listen on `ADDR` instead of the configured address",
			},
		},
		Action: func(c *cli.Context) error {
			cfg, err := clipsave.LoadConfig(c.String("config"))
			if err != nil {
				return err
			}
			if listen := c.String("listen"); listen != "" {
				cfg.ListenAddr = listen
			}
			return serve(ctx, cfg)
		},
		HideHelpCommand: true,
	}

	result := async.Run(func() error { return app.Run(os.Args) })

	select {
	case err = <-result:
		if err != nil {
			logger.Fatal(err.Error())
		}
	case <-ctx.Done():
		stop()
		err = <-result
		if err != nil {
			logger.Fatal(err.Error())
		}
	}
}

func serve(ctx context.Context, cfg clipsave.Config) error {
	logger := zap.S()

	server := &http.Server{
		Addr:    cfg.ListenAddr,
		Handler: proxy.NewServer(proxy.Config{}).Router(),
	}

	result := async.Run(func() error {
		logger.Infof("Relay daemon listening on %s", cfg.ListenAddr)
		return server.ListenAndServe()
	})

	select {
	case err := <-result:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	case <-ctx.Done():
	}

	logger.Info("Shutting down...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		return err
	}
	<-result
	return nil
}
