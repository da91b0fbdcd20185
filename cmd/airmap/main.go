package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/danielgtaylor/huma/v2/humacli"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/joeblew999/plat-airmap/internal/colormap"
	"github.com/joeblew999/plat-airmap/internal/logging"
	"github.com/joeblew999/plat-airmap/internal/server"
	"github.com/joeblew999/plat-airmap/internal/service"
)

var version = "dev"

// Options defines all CLI flags and env vars for the air map server.
// Flags: --host, --port, --data-dir, --web-dir, --dataset, --measurables,
// --log-level, --env, --session-ttl
// Env vars: SERVICE_HOST, SERVICE_PORT, SERVICE_DATA_DIR, ...
type Options struct {
	Host        string `doc:"Host to bind to" default:"0.0.0.0"`
	Port        int    `doc:"Port to listen on" short:"p" default:"8086"`
	DataDir     string `doc:"Directory holding sources/ and duckdb/" default:".data"`
	WebDir      string `doc:"Optional web/ directory with static files and the viewer page" default:""`
	Dataset     string `doc:"Dataset in <data-dir>/sources loaded into every session" default:"readings.geojson"`
	Measurables string `doc:"YAML measurable catalog (built-in set when empty)" default:""`
	LogLevel    string `doc:"Log level: debug, info, warn, error" default:"info"`
	Env         string `doc:"Environment: dev (coloured logs) or prod (JSON logs)" default:"dev"`
	SessionTTL  int    `doc:"Idle session lifetime in minutes, 0 keeps sessions forever" default:"30"`
}

func newLogger(opts *Options) (*slog.Logger, error) {
	level, err := logging.ParseLevel(opts.LogLevel)
	if err != nil {
		return nil, err
	}
	env, err := logging.ParseEnv(opts.Env)
	if err != nil {
		return nil, err
	}
	return logging.New(os.Stderr, env, level, version), nil
}

func loadCatalog(opts *Options) (*service.Catalog, error) {
	if opts.Measurables == "" {
		return service.DefaultCatalog(), nil
	}
	return service.LoadCatalog(opts.Measurables)
}

func newServer(opts *Options) (*server.Server, *slog.Logger, error) {
	log, err := newLogger(opts)
	if err != nil {
		return nil, nil, err
	}
	catalog, err := loadCatalog(opts)
	if err != nil {
		return nil, nil, err
	}
	srv, err := server.New(server.Config{
		Host:       opts.Host,
		Port:       strconv.Itoa(opts.Port),
		DataDir:    opts.DataDir,
		WebDir:     opts.WebDir,
		Dataset:    opts.Dataset,
		Catalog:    catalog,
		SessionTTL: time.Duration(opts.SessionTTL) * time.Minute,
		Logger:     log,
	})
	if err != nil {
		return nil, nil, err
	}
	return srv, log, nil
}

func fatal(err error) {
	fmt.Fprintf(os.Stderr, "Error: %v\n", err)
	os.Exit(1)
}

func main() {
	cli := humacli.New(func(hooks humacli.Hooks, opts *Options) {
		ctx, cancel := context.WithCancel(context.Background())

		hooks.OnStart(func() {
			srv, log, err := newServer(opts)
			if err != nil {
				fatal(err)
			}
			defer srv.Close()

			addr := fmt.Sprintf("%s:%d", opts.Host, opts.Port)
			displayHost := opts.Host
			if displayHost == "0.0.0.0" {
				displayHost = "localhost"
			}
			baseURL := fmt.Sprintf("http://%s:%d", displayHost, opts.Port)

			log.Info("plat-airmap API server starting",
				"url", baseURL,
				"data", opts.DataDir,
				"dataset", opts.Dataset,
				"docs", baseURL+"/docs",
				"openapi", baseURL+"/openapi.json",
			)

			if err := srv.ListenAndServe(ctx, addr); err != nil {
				log.Error("server error", "error", err)
				os.Exit(1)
			}
		})

		hooks.OnStop(cancel)
	})

	cli.Root().Use = "airmap"
	cli.Root().Short = "Colour-coded sensor reading map with live legends"
	cli.Root().Version = version

	// spec subcommand: export OpenAPI spec
	specCmd := &cobra.Command{
		Use:   "spec",
		Short: "Export OpenAPI spec (JSON by default, --yaml for YAML)",
		Run: humacli.WithOptions(func(cmd *cobra.Command, args []string, opts *Options) {
			srv, _, err := newServer(opts)
			if err != nil {
				fatal(err)
			}
			defer srv.Close()
			spec := srv.OpenAPI()

			useYAML, _ := cmd.Flags().GetBool("yaml")

			var output []byte
			if useYAML {
				output, err = yaml.Marshal(spec)
			} else {
				output, err = json.MarshalIndent(spec, "", "  ")
			}
			if err != nil {
				fatal(fmt.Errorf("marshaling spec: %w", err))
			}
			fmt.Println(string(output))
		}),
	}
	specCmd.Flags().BoolP("yaml", "y", false, "Output as YAML instead of JSON")
	cli.Root().AddCommand(specCmd)

	// legend subcommand: print a measurable's legend
	legendCmd := &cobra.Command{
		Use:   "legend <measurable>",
		Short: "Print the legend rows for a measurable",
		Args:  cobra.ExactArgs(1),
		Run: humacli.WithOptions(func(cmd *cobra.Command, args []string, opts *Options) {
			catalog, err := loadCatalog(opts)
			if err != nil {
				fatal(err)
			}
			m, ok := catalog.Get(args[0])
			if !ok {
				fatal(fmt.Errorf("%q: %w (known: %s)", args[0], service.ErrUnknownMeasurable, strings.Join(catalog.IDs(), ", ")))
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s: %s\n", colormap.LegendHeading, m.Label)
			for _, row := range colormap.BuildLegend(m.Min, m.Max, m.Unit) {
				fmt.Fprintf(cmd.OutOrStdout(), "%-7s %-8s %s\n", row.Kind, row.Color, row.Label)
			}
		}),
	}
	cli.Root().AddCommand(legendCmd)

	// color subcommand: map one value to its marker colour
	colorCmd := &cobra.Command{
		Use:   "color <value|none> <min> <max>",
		Short: "Print the marker colour for a value on a [min, max] scale",
		Args:  cobra.ExactArgs(3),
		Run: func(cmd *cobra.Command, args []string) {
			out, err := colorCommand(args)
			if err != nil {
				fatal(err)
			}
			fmt.Fprintln(cmd.OutOrStdout(), out)
		},
	}
	cli.Root().AddCommand(colorCmd)

	cli.Run()
}

// colorCommand parses "<value|none> <min> <max>" and returns the hex colour.
func colorCommand(args []string) (string, error) {
	lo, err := strconv.ParseFloat(args[1], 64)
	if err != nil {
		return "", fmt.Errorf("min: %w", err)
	}
	hi, err := strconv.ParseFloat(args[2], 64)
	if err != nil {
		return "", fmt.Errorf("max: %w", err)
	}

	var value *float64
	if args[0] != "none" && args[0] != "" {
		v, err := strconv.ParseFloat(args[0], 64)
		if err != nil {
			return "", fmt.Errorf("value: %w", err)
		}
		value = &v
	}
	return colormap.ColorFor(value, lo, hi), nil
}
