package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	_ "github.com/joho/godotenv/autoload"
	"github.com/urfave/cli/v3"

	"github.com/starford/astrometa/internal"
	pkgconfig "github.com/starford/astrometa/pkg/config"
)

func loadConfig(cmd *cli.Command) (*internal.Config, error) {
	configPath := cmd.String("config")

	cfg := internal.NewDefaultConfig()
	if _, err := os.Stat(configPath); err == nil {
		if err := pkgconfig.Load(configPath, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config: %w", err)
		}
	} else if cmd.IsSet("config") {
		return nil, fmt.Errorf("config file not found: %s", configPath)
	}
	return cfg, nil
}

func main() {
	cmd := &cli.Command{
		Name:  "astrometa",
		Usage: "Normalize, index, and filter astrophoto capture metadata",
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
				Name:      "scan",
				Usage:     "Scan capture directories and print metadata as JSON",
				ArgsUsage: "[dir ...]",
				Flags: []cli.Flag{
					&cli.StringSliceFlag{
						Name:    "filter",
						Aliases: []string{"f"},
						Usage:   "Criterion in key=value1|value2 form (repeatable, AND-combined)",
					},
					&cli.BoolFlag{
						Name:  "enrich",
						Usage: "Read true file headers even when no criterion needs them",
					},
					&cli.BoolFlag{
						Name:  "progress",
						Usage: "Show a progress line on stderr",
					},
				},
				Action: func(ctx context.Context, cmd *cli.Command) error {
					cfg, err := loadConfig(cmd)
					if err != nil {
						return err
					}
					return internal.RunScan(ctx, cfg, cmd.Args().Slice(), cmd.StringSlice("filter"),
						cmd.Bool("enrich"), cmd.Bool("progress"), os.Stdout)
				},
			},
			{
				Name:      "rename",
				Usage:     "Rename captures to their canonical metadata-derived filenames",
				ArgsUsage: "[dir ...]",
				Flags: []cli.Flag{
					&cli.BoolFlag{
						Name:  "dry-run",
						Usage: "Print planned renames without applying them",
					},
					&cli.BoolFlag{
						Name:  "progress",
						Usage: "Show a progress line on stderr",
					},
				},
				Action: func(ctx context.Context, cmd *cli.Command) error {
					cfg, err := loadConfig(cmd)
					if err != nil {
						return err
					}
					return internal.RunRename(ctx, cfg, cmd.Args().Slice(),
						cmd.Bool("dry-run"), cmd.Bool("progress"), os.Stdout)
				},
			},
			{
				Name:      "match",
				Usage:     "Find matching calibration frames for a light frame",
				ArgsUsage: "[dir ...]",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:     "light",
						Usage:    "Path to the light frame",
						Required: true,
					},
				},
				Action: func(ctx context.Context, cmd *cli.Command) error {
					cfg, err := loadConfig(cmd)
					if err != nil {
						return err
					}
					return internal.RunMatch(ctx, cfg, cmd.String("light"), cmd.Args().Slice(), os.Stdout)
				},
			},
			{
				Name:      "watch",
				Usage:     "Follow capture directories and print frame events as JSON lines",
				ArgsUsage: "[dir ...]",
				Action: func(ctx context.Context, cmd *cli.Command) error {
					cfg, err := loadConfig(cmd)
					if err != nil {
						return err
					}
					return internal.RunWatch(ctx, cfg, cmd.Args().Slice(), os.Stdout)
				},
			},
			{
				Name:  "serve",
				Usage: "Run the HTTP API server with directory watching",
				Action: func(ctx context.Context, cmd *cli.Command) error {
					cfg, err := loadConfig(cmd)
					if err != nil {
						return err
					}
					return internal.Run(ctx, internal.WithConfig(cfg))
				},
			},
			{
				Name:  "mcp",
				Usage: "Serve MCP tools over stdio",
				Action: func(ctx context.Context, cmd *cli.Command) error {
					cfg, err := loadConfig(cmd)
					if err != nil {
						return err
					}
					return internal.RunMCP(ctx, cfg)
				},
			},
		},
	}

	if err := cmd.Run(context.Background(), os.Args); err != nil {
		slog.Error("application error", slog.String("error", err.Error()))
		os.Exit(1)
	}
}
