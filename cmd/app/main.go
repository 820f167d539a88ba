package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	_ "github.com/joho/godotenv/autoload"
	"github.com/urfave/cli/v3"

	"github.com/starford/notepad/internal"
	pkgconfig "github.com/starford/notepad/pkg/config"
)

func run(ctx context.Context, cmd *cli.Command) error {
	cfg := internal.NewDefaultConfig()

	configPath := cmd.String("config")
	loaded, err := pkgconfig.LoadOptional(configPath, cfg)
	if err != nil {
		return fmt.Errorf("failed to parse config: %w", err)
	}
	if !loaded {
		slog.Info("config file not found, using defaults", slog.String("path", configPath))
	}

	// Flags win over the file.
	if cmd.IsSet("notes-file") {
		cfg.Store.Path = cmd.String("notes-file")
	}
	if cmd.IsSet("transport") {
		cfg.MCP.Transport = cmd.String("transport")
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid flags: %w", err)
	}

	opts := []internal.Option{
		internal.WithConfig(cfg),
	}

	if err := internal.Run(ctx, opts...); err != nil {
		return fmt.Errorf("app run error: %w", err)
	}

	return nil
}

func main() {
	cmd := &cli.Command{
		Name:   "notepad",
		Usage:  "Note-taking MCP server backed by a single text file",
		Action: run,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:        "config",
				Aliases:     []string{"c"},
				Usage:       "Path to config file",
				DefaultText: "config/config.yaml",
				Value:       "config/config.yaml",
				Sources:     cli.EnvVars("APP_CONFIG_FILE"),
			},
			&cli.StringFlag{
				Name:    "notes-file",
				Aliases: []string{"f"},
				Usage:   "Path to the notes file (default ./notes.txt)",
				Sources: cli.EnvVars("NOTES_FILE"),
			},
			&cli.StringFlag{
				Name:    "transport",
				Aliases: []string{"t"},
				Usage:   "MCP transport: http or stdio",
				Sources: cli.EnvVars("MCP_TRANSPORT"),
			},
		},
	}

	if err := cmd.Run(context.Background(), os.Args); err != nil {
		slog.Error("application error", slog.String("error", err.Error()))
		os.Exit(1)
	}
}
