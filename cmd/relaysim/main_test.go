package main

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/paulmach/orb/geojson"

	"github.com/signalsfoundry/relay-simulator/core"
	"github.com/signalsfoundry/relay-simulator/internal/config"
	"github.com/signalsfoundry/relay-simulator/internal/logging"
)

const chainScenario = `Chain over the equator
ROUTE,0,0,0,40
A,0,0,100
B,0,20,2000
C,0,40,100
`

func writeScenario(t *testing.T, text string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "data_file.txt")
	if err := os.WriteFile(path, []byte(text), 0o644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
	return path
}

func testConfig(dataFile string) config.Config {
	cfg := config.Default()
	cfg.DataFile = dataFile
	return cfg
}

func testLogger() logging.Logger {
	return logging.New(logging.Config{Level: "warn", Format: "text", Writer: &bytes.Buffer{}})
}

func TestRunPrintsRelays(t *testing.T) {
	var out bytes.Buffer
	if err := run(context.Background(), testConfig(writeScenario(t, chainScenario)), &out, testLogger()); err != nil {
		t.Fatalf("run: %v", err)
	}
	if got := out.String(); got != "B\n" {
		t.Fatalf("stdout = %q, want %q", got, "B\n")
	}
}

func TestRunUnreachablePrintsEmptyLine(t *testing.T) {
	var out bytes.Buffer
	path := writeScenario(t, "Opposite sides\nROUTE,0,0,0,180\n")
	if err := run(context.Background(), testConfig(path), &out, testLogger()); err != nil {
		t.Fatalf("run: %v", err)
	}
	if got := out.String(); got != "\n" {
		t.Fatalf("stdout = %q, want an empty line", got)
	}
}

func TestRunDumpsGraphBeforeRoute(t *testing.T) {
	cfg := testConfig(writeScenario(t, chainScenario))
	cfg.Output.DumpGraph = true

	var out bytes.Buffer
	if err := run(context.Background(), cfg, &out, testLogger()); err != nil {
		t.Fatalf("run: %v", err)
	}

	lines := strings.Split(strings.TrimSuffix(out.String(), "\n"), "\n")
	if len(lines) != 6 {
		t.Fatalf("got %d lines, want 5 dump lines and the route:\n%s", len(lines), out.String())
	}
	for i, id := range []string{"A", "B", "C", core.RouteStartID, core.RouteEndID} {
		if !strings.HasPrefix(lines[i], id+" -> ") {
			t.Fatalf("line %d = %q, want prefix %q", i, lines[i], id+" -> ")
		}
	}
	if lines[5] != "B" {
		t.Fatalf("route line = %q, want B", lines[5])
	}
}

func TestRunWritesArtifacts(t *testing.T) {
	dir := t.TempDir()
	cfg := testConfig(writeScenario(t, chainScenario))
	cfg.Output.GeoJSONPath = filepath.Join(dir, "path.geojson")
	cfg.Output.MetricsFile = filepath.Join(dir, "relay.prom")

	if err := run(context.Background(), cfg, &bytes.Buffer{}, testLogger()); err != nil {
		t.Fatalf("run: %v", err)
	}

	raw, err := os.ReadFile(cfg.Output.GeoJSONPath)
	if err != nil {
		t.Fatalf("read geojson: %v", err)
	}
	fc, err := geojson.UnmarshalFeatureCollection(raw)
	if err != nil {
		t.Fatalf("decode geojson: %v", err)
	}
	// Track plus START, B, END.
	if len(fc.Features) != 4 {
		t.Fatalf("features = %d, want 4", len(fc.Features))
	}

	metrics, err := os.ReadFile(cfg.Output.MetricsFile)
	if err != nil {
		t.Fatalf("read metrics: %v", err)
	}
	for _, want := range []string{"relay_route_found 1", "relay_path_relays 1", "relay_network_nodes 5"} {
		if !strings.Contains(string(metrics), want) {
			t.Fatalf("metrics missing %q:\n%s", want, metrics)
		}
	}
}

func TestRunMissingScenario(t *testing.T) {
	cfg := testConfig(filepath.Join(t.TempDir(), "nope.txt"))
	err := run(context.Background(), cfg, &bytes.Buffer{}, testLogger())
	if !errors.Is(err, os.ErrNotExist) {
		t.Fatalf("err = %v, want ErrNotExist", err)
	}
}

func TestRunMalformedScenario(t *testing.T) {
	path := writeScenario(t, "Bad\nROUTE,0,0,0,40\nA,0,north,100\n")
	err := run(context.Background(), testConfig(path), &bytes.Buffer{}, testLogger())
	if !errors.Is(err, core.ErrMalformedLine) {
		t.Fatalf("err = %v, want ErrMalformedLine", err)
	}
}
