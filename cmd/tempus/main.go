package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	_ "github.com/joho/godotenv/autoload"
	"github.com/urfave/cli/v3"

	// IANA zones stay available on hosts without a zoneinfo database.
	_ "time/tzdata"

	"github.com/starford/tempus/internal"
	"github.com/starford/tempus/internal/calcservice"
	pkgconfig "github.com/starford/tempus/pkg/config"
)

var version = "dev"

func loadConfig(cmd *cli.Command) (*internal.Config, error) {
	cfg := internal.NewDefaultConfig()
	if err := pkgconfig.LoadOptional(cmd.String("config"), cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}
	return cfg, nil
}

func serve(ctx context.Context, cmd *cli.Command) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	if err := internal.Run(ctx, internal.WithConfig(cfg), internal.WithVersion(version)); err != nil {
		return fmt.Errorf("app run error: %w", err)
	}
	return nil
}

func serveMCP(ctx context.Context, cmd *cli.Command) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	return internal.RunMCP(ctx,
		internal.WithConfig(cfg),
		internal.WithVersion(version),
		internal.WithLogOutput(os.Stderr))
}

func calc(ctx context.Context, cmd *cli.Command) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	format := cmd.String("format")
	if format != internal.FormatJSON && format != internal.FormatYAML {
		return fmt.Errorf("--format must be %s or %s", internal.FormatJSON, internal.FormatYAML)
	}
	return internal.Calculate(ctx, cmd.String("op"), cmd.String("request"), format, os.Stdout,
		internal.WithConfig(cfg),
		internal.WithLogOutput(os.Stderr))
}

func main() {
	cmd := &cli.Command{
		Name:    "tempus",
		Usage:   "Calendar-correct date, time-zone and duration arithmetic",
		Version: version,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:        "config",
				Aliases:     []string{"c"},
				Usage:       "Path to config file",
				DefaultText: "config/config.yaml",
				Value:       "config/config.yaml",
				Sources:     cli.EnvVars("APP_CONFIG_FILE"),
			},
		},
		Commands: []*cli.Command{
			{
				Name:   "serve",
				Usage:  "Run the HTTP API",
				Action: serve,
			},
			{
				Name:   "mcp",
				Usage:  "Serve the calculator to MCP clients over stdio",
				Action: serveMCP,
			},
			{
				Name:  "calc",
				Usage: "Run one calculation from a request file",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:     "op",
						Usage:    fmt.Sprintf("Operation, one of %v", calcservice.Operations()),
						Required: true,
					},
					&cli.StringFlag{
						Name:     "request",
						Aliases:  []string{"r"},
						Usage:    "YAML or JSON request file",
						Required: true,
					},
					&cli.StringFlag{
						Name:  "format",
						Usage: "Output format: json or yaml",
						Value: internal.FormatJSON,
					},
				},
				Action: calc,
			},
		},
		Action: serve,
	}

	if err := cmd.Run(context.Background(), os.Args); err != nil {
		slog.Error("application error", slog.String("error", err.Error()))
		os.Exit(1)
	}
}
