package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"

	"github.com/r3labs/diff/v3"
	"github.com/schollz/progressbar/v3"
	"github.com/urfave/cli/v2"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/clipsave/clipsave"
	"github.com/clipsave/clipsave/async"
	"github.com/clipsave/clipsave/generic"
	"github.com/clipsave/clipsave/internal/history"
	"github.com/clipsave/clipsave/internal/session"
	_ "github.com/clipsave/clipsave/providers"
	"github.com/clipsave/clipsave/providers/infoapi"
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
		Name:  "clipsave",
		Usage: "save social media videos",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  "config",
				Usage: "load configuration from `FILE`",
			},
			&cli.StringFlag{
				Name:  "target",
				Usage: "save downloaded videos to `DIR`",
			},
			&cli.BoolFlag{
				Name:  "demo",
				Usage: "produce placeholder results when every provider fails",
			},
		},
		Commands: []*cli.Command{
			{
				Name:      "get",
				Usage:     "resolve and save one or more videos",
				ArgsUsage: "URL [URL ...]",
				Action: func(c *cli.Context) error {
					cfg, err := loadConfig(c)
					if err != nil {
						return err
					}
					if c.Args().Len() == 0 {
						return fmt.Errorf("at least one URL is required")
					}
					for _, source := range c.Args().Slice() {
						if err := get(ctx, cfg, source); err != nil {
							return err
						}
					}
					return nil
				},
			},
			{
				Name:  "history",
				Usage: "inspect or clear the saved-video history",
				Subcommands: []*cli.Command{
					{
						Name:  "list",
						Usage: "list recently saved videos",
						Action: func(c *cli.Context) error {
							cfg, err := loadConfig(c)
							if err != nil {
								return err
							}
							return listHistory(cfg)
						},
					},
					{
						Name:  "clear",
						Usage: "remove all history entries",
						Action: func(c *cli.Context) error {
							cfg, err := loadConfig(c)
							if err != nil {
								return err
							}
							return clearHistory(cfg)
						},
					},
					{
						Name:      "theme",
						Usage:     "show or set the stored theme preference",
						ArgsUsage: "[light|dark]",
						Action: func(c *cli.Context) error {
							cfg, err := loadConfig(c)
							if err != nil {
								return err
							}
							return theme(cfg, c.Args().First())
						},
					},
				},
			},
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

func loadConfig(c *cli.Context) (clipsave.Config, error) {
	cfg, err := clipsave.LoadConfig(c.String("config"))
	if err != nil {
		return cfg, err
	}
	if target := c.String("target"); target != "" {
		cfg.TargetDir = target
	}
	if c.Bool("demo") {
		cfg.DemoMode = true
	}
	// Configured download-info endpoints take precedence over the
	// built-in providers for their platform.
	for name, endpoint := range cfg.Endpoints {
		platform := clipsave.Platform(name)
		p := infoapi.New(platform, endpoint).
			WithName("custom-" + name).
			WithPriority(clipsave.PriorityHighest)
		if err := clipsave.DefaultProviderRegistry.Add(p); err != nil {
			return cfg, fmt.Errorf("bad endpoint config for %q: %w", name, err)
		}
	}
	return cfg, nil
}

func get(ctx context.Context, cfg clipsave.Config, source string) error {
	logger := zap.S()
	logger.Infof("Saving %s into %s", source, cfg.TargetDir)

	store, err := history.Open(cfg.HistoryBackend, cfg.HistoryPath, zap.L())
	if err != nil {
		return err
	}
	defer store.Close()

	bar := progressbar.DefaultBytes(1, "downloading")
	ses, err := session.New(session.Config{
		Resolver: clipsave.NewResolver(clipsave.ResolverConfig{
			ProviderTimeout: cfg.ProviderTimeout.Std(),
			DemoMode:        cfg.DemoMode,
		}),
		Dispatcher: clipsave.NewDispatcher(clipsave.DispatcherConfig{
			ProxyURL:     cfg.ProxyURL,
			ProbeTimeout: cfg.ProbeTimeout.Std(),
		}),
		History:   store,
		TargetDir: cfg.TargetDir,
		ProgressCallback: func(downloaded int, expected int) {
			if bar.GetMax() != expected {
				bar.ChangeMax(expected)
			}
			generic.Unwrap_(bar.Set(downloaded))
		},
	}, ctx)
	if err != nil {
		return err
	}
	defer ses.Close()

	events, err := ses.Subscribe()
	if err != nil {
		return err
	}

	if err := ses.Submit(source); err != nil {
		return err
	}

	var prev session.State
	for event := range events.Receive() {
		if changes, err := diff.Diff(prev, event.State()); err == nil {
			for _, change := range changes {
				logger.Debugf("%v: %#v -> %#v", change.Path, change.From, change.To)
			}
		}
		prev = event.State()

		switch e := event.(type) {
		case session.Resolved:
			logger.Infof("Resolved: %v", e.Descriptor)
			if err := ses.StartDownload(); err != nil {
				return err
			}
		case session.Saved:
			logger.Infof("Saved %q via %s strategy", e.Outcome.Descriptor.Title, e.Outcome.Strategy)
			return nil
		case session.Failed:
			return e.Err
		}
	}
	return ctx.Err()
}

func listHistory(cfg clipsave.Config) error {
	store, err := history.Open(cfg.HistoryBackend, cfg.HistoryPath, zap.L())
	if err != nil {
		return err
	}
	defer store.Close()

	entries, err := store.List()
	if err != nil {
		return err
	}
	if len(entries) == 0 {
		fmt.Println("history is empty")
		return nil
	}
	for _, e := range entries {
		line := fmt.Sprintf("%s  [%s] %s", e.SavedAt.Format("2006-01-02 15:04"), e.Platform.DisplayName(), e.Title)
		if e.DurationSeconds != nil {
			line += "  " + clipsave.FormatDuration(*e.DurationSeconds)
		}
		if e.SizeMB != nil {
			line += fmt.Sprintf("  %.1f MB", *e.SizeMB)
		}
		fmt.Println(line)
	}
	return nil
}

func clearHistory(cfg clipsave.Config) error {
	store, err := history.Open(cfg.HistoryBackend, cfg.HistoryPath, zap.L())
	if err != nil {
		return err
	}
	defer store.Close()
	return store.Clear()
}

func theme(cfg clipsave.Config, name string) error {
	store, err := history.Open(cfg.HistoryBackend, cfg.HistoryPath, zap.L())
	if err != nil {
		return err
	}
	defer store.Close()

	if name != "" {
		if name != "light" && name != "dark" {
			return fmt.Errorf("unknown theme %q", name)
		}
		return store.SetTheme(name)
	}
	current, err := store.Theme()
	if err != nil {
		return err
	}
	if current == "" {
		current = "light"
	}
	fmt.Println(current)
	return nil
}
