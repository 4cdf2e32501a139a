package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	_ "github.com/joho/godotenv/autoload"
	"github.com/urfave/cli/v3"

	"github.com/starford/boxgraph/internal"
	pkgconfig "github.com/starford/boxgraph/pkg/config"
)

var version = "dev"

func run(ctx context.Context, cmd *cli.Command) error {
	configPath := cmd.String("config")

	cfg := internal.NewDefaultConfig()
	if err := pkgconfig.LoadOptional(configPath, cfg); err != nil {
		return fmt.Errorf("failed to parse config: %w", err)
	}

	opts := []internal.Option{
		internal.WithConfig(cfg),
		internal.WithWatch(cmd.Bool("watch")),
		internal.WithVersion(version),
	}

	if err := internal.RunBuild(ctx, opts...); err != nil {
		return fmt.Errorf("build error: %w", err)
	}

	return nil
}

func main() {
	cmd := &cli.Command{
		Name:   "boxgraph",
		Usage:  "Map a source tree into a City of Boxes knowledge graph",
		Action: run,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:        "config",
				Aliases:     []string{"c"},
				Usage:       "Path to config file (YAML, or TOML by .toml extension); built-in defaults apply when absent",
				DefaultText: "config/boxgraph.yaml",
				Value:       "config/boxgraph.yaml",
				Sources:     cli.EnvVars("APP_CONFIG_FILE"),
			},
			&cli.BoolFlag{
				Name:    "watch",
				Aliases: []string{"w"},
				Usage:   "Keep running and rebuild when source files change",
			},
		},
	}

	if err := cmd.Run(context.Background(), os.Args); err != nil {
		internal.LogError(slog.Default(), err)
		os.Exit(1)
	}
}
