package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"strings"

	_ "github.com/joho/godotenv/autoload"
	"github.com/urfave/cli/v3"

	"github.com/starford/boxgraph/internal"
	"github.com/starford/boxgraph/internal/query"
	pkgconfig "github.com/starford/boxgraph/pkg/config"
)

const program = "boxquery"

var (
	version    = "dev"
	configPath string
)

func loadConfig() (*internal.Config, error) {
	cfg := internal.NewDefaultConfig()
	if err := pkgconfig.LoadOptional(configPath, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}
	return cfg, nil
}

// withGraph loads the artifacts and hands the joined arguments to show.
func withGraph(show func(p *query.Printer, g *query.Graph, arg string)) cli.ActionFunc {
	return func(_ context.Context, cmd *cli.Command) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		g, err := internal.LoadGraph(cfg)
		if err != nil {
			return fmt.Errorf("failed to load knowledge graph (run boxgraph first): %w", err)
		}
		p := query.NewPrinter(os.Stdout)
		p.Loaded(g)
		show(p, g, strings.Join(cmd.Args().Slice(), " "))
		return nil
	}
}

func help(_ context.Context, _ *cli.Command) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	query.NewPrinter(os.Stdout).Help(cfg.Project.Name, program)
	return nil
}

func root(ctx context.Context, cmd *cli.Command) error {
	if cmd.Args().Len() == 0 {
		return help(ctx, cmd)
	}
	return withGraph(func(p *query.Printer, _ *query.Graph, _ string) {
		p.Unknown(cmd.Args().First(), program)
	})(ctx, cmd)
}

func main() {
	cmd := &cli.Command{
		Name:   program,
		Usage:  "Query a City of Boxes knowledge graph",
		Action: root,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:        "config",
				Aliases:     []string{"c"},
				Usage:       "Path to config file (YAML, or TOML by .toml extension); built-in defaults apply when absent",
				DefaultText: "config/boxgraph.yaml",
				Value:       "config/boxgraph.yaml",
				Sources:     cli.EnvVars("APP_CONFIG_FILE"),
				Destination: &configPath,
			},
		},
		Commands: []*cli.Command{
			{
				Name:      "category",
				Usage:     "List all boxes in a category",
				ArgsUsage: "<name>",
				Action: withGraph(func(p *query.Printer, g *query.Graph, arg string) {
					p.Category(g, arg)
				}),
			},
			{
				Name:      "keyword",
				Usage:     "Search for keyword in box metadata",
				ArgsUsage: "<word>",
				Action: withGraph(func(p *query.Printer, g *query.Graph, arg string) {
					p.Keyword(g, arg)
				}),
			},
			{
				Name:      "depends",
				Usage:     "Show what depends on a file",
				ArgsUsage: "<filename>",
				Action: withGraph(func(p *query.Printer, g *query.Graph, arg string) {
					p.Depends(g, arg)
				}),
			},
			{
				Name:      "box",
				Usage:     "Show detailed info about a box",
				ArgsUsage: "<boxId>",
				Action: withGraph(func(p *query.Printer, g *query.Graph, arg string) {
					p.Box(g, arg)
				}),
			},
			{
				Name:  "categories",
				Usage: "List all available categories",
				Action: withGraph(func(p *query.Printer, g *query.Graph, _ string) {
					p.Categories(g)
				}),
			},
			{
				Name:  "stats",
				Usage: "Show overall statistics",
				Action: withGraph(func(p *query.Printer, g *query.Graph, _ string) {
					p.Stats(g)
				}),
			},
			{
				Name:      "semantic",
				Usage:     "Semantic search (keyword fallback)",
				ArgsUsage: "<query>",
				Action: withGraph(func(p *query.Printer, g *query.Graph, arg string) {
					p.Semantic(g, arg)
				}),
			},
			{
				Name:      "template",
				Usage:     "Show the error template of a box",
				ArgsUsage: "<boxId>",
				Action: withGraph(func(p *query.Printer, g *query.Graph, arg string) {
					p.Template(g, arg)
				}),
			},
			{
				Name:  "serve",
				Usage: "Serve the queries over HTTP",
				Action: func(ctx context.Context, _ *cli.Command) error {
					cfg, err := loadConfig()
					if err != nil {
						return err
					}
					return internal.Serve(ctx,
						internal.WithConfig(cfg),
						internal.WithVersion(version),
						internal.WithLogOutput(os.Stderr),
					)
				},
			},
			{
				Name:  "mcp",
				Usage: "Serve the queries as MCP tools over stdio",
				Action: func(ctx context.Context, _ *cli.Command) error {
					cfg, err := loadConfig()
					if err != nil {
						return err
					}
					return internal.ServeMCP(ctx, internal.WithConfig(cfg), internal.WithVersion(version))
				},
			},
			{
				Name:   "help",
				Usage:  "Show this help message",
				Action: help,
			},
		},
	}

	if err := cmd.Run(context.Background(), os.Args); err != nil {
		internal.LogError(slog.Default(), err)
		os.Exit(1)
	}
}
