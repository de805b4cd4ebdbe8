// Command relaysim reads a scenario file and prints the cheapest chain of
// line-of-sight relays joining its route endpoints.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/signalsfoundry/relay-simulator/core"
	"github.com/signalsfoundry/relay-simulator/internal/config"
	"github.com/signalsfoundry/relay-simulator/internal/logging"
	"github.com/signalsfoundry/relay-simulator/internal/observability"
	"github.com/signalsfoundry/relay-simulator/internal/relay"
)

func main() {
	configPath := flag.String("config", "", "Optional YAML file with planet, range and output settings")
	dataFile := flag.String("data", config.DefaultDataFile, "Scenario file to read")
	maxRange := flag.Float64("max-range-km", 0, "Drop links longer than this many km (0 = unlimited)")
	dumpGraph := flag.Bool("dump-graph", false, "Print the visibility network before the route")
	geoJSONPath := flag.String("geojson", "", "Write the chosen path as GeoJSON to this file")
	metricsFile := flag.String("metrics-file", "", "Write run metrics in Prometheus text format to this file")
	flag.Parse()

	ctx := context.Background()
	log := logging.NewFromEnv()
	ctx, log = logging.WithRunLogger(ctx, log)

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Error(ctx, "failed to load config", logging.String("path", *configPath), logging.Err(err))
		os.Exit(1)
	}

	flag.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "data":
			cfg.DataFile = *dataFile
		case "max-range-km":
			cfg.MaxRangeKm = *maxRange
		case "dump-graph":
			cfg.Output.DumpGraph = *dumpGraph
		case "geojson":
			cfg.Output.GeoJSONPath = *geoJSONPath
		case "metrics-file":
			cfg.Output.MetricsFile = *metricsFile
		}
	})
	cfg = cfg.ApplyDefaults()

	shutdown, err := observability.InitTracing(ctx, observability.TracingConfigFromEnv(), log)
	if err != nil {
		log.Warn(ctx, "tracing disabled", logging.Err(err))
	}
	defer observability.ShutdownWithTimeout(context.Background(), shutdown, log)

	if err := run(ctx, cfg, os.Stdout, log); err != nil {
		log.Error(ctx, "relay planning failed", logging.Err(err))
		observability.ShutdownWithTimeout(context.Background(), shutdown, log)
		os.Exit(1)
	}
}

// run executes one planning pass and writes results to stdout.
func run(ctx context.Context, cfg config.Config, stdout io.Writer, log logging.Logger) error {
	if log == nil {
		log = logging.Noop()
	}

	collector, err := observability.NewRunCollector(prometheus.NewRegistry())
	if err != nil {
		return fmt.Errorf("init metrics: %w", err)
	}

	planner := relay.NewPlanner(cfg.CorePlanet(),
		relay.WithLogger(log),
		relay.WithMetricsRecorder(collector),
		relay.WithMaxRangeKm(cfg.MaxRangeKm),
	)

	sc, err := planner.Load(ctx, cfg.DataFile, cfg.RouteMarginKm)
	if err != nil {
		return err
	}

	plan, err := planner.Plan(ctx, sc)
	if err != nil {
		return err
	}

	if cfg.Output.DumpGraph {
		if err := plan.Graph.Dump(stdout); err != nil {
			return fmt.Errorf("dump graph: %w", err)
		}
	}
	if _, err := fmt.Fprintln(stdout, strings.Join(plan.Relays, ",")); err != nil {
		return fmt.Errorf("write route: %w", err)
	}

	if cfg.Output.GeoJSONPath != "" {
		if err := writeGeoJSON(cfg.Output.GeoJSONPath, plan); err != nil {
			return err
		}
		log.Info(ctx, "wrote path geojson", logging.String("path", cfg.Output.GeoJSONPath))
	}

	if cfg.Output.MetricsFile != "" {
		if err := collector.WriteTextfile(cfg.Output.MetricsFile); err != nil {
			return err
		}
		log.Info(ctx, "wrote run metrics", logging.String("path", cfg.Output.MetricsFile))
	}
	return nil
}

func writeGeoJSON(path string, plan *relay.Plan) error {
	fc := core.PathFeatureCollection(plan.Graph, plan.Path)
	data, err := json.MarshalIndent(fc, "", "  ")
	if err != nil {
		return fmt.Errorf("encode geojson: %w", err)
	}
	if err := os.WriteFile(path, append(data, '\n'), 0o644); err != nil {
		return fmt.Errorf("write geojson %q: %w", path, err)
	}
	return nil
}
