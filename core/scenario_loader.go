// core/scenario_loader.go
package core

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
)

var (
	ErrEmptyScenario     = errors.New("empty scenario")
	ErrMalformedLine     = errors.New("malformed scenario line")
	ErrMissingRoute      = errors.New("scenario has no ROUTE line")
	ErrDuplicateRoute    = errors.New("scenario has more than one ROUTE line")
	ErrDuplicateLocation = errors.New("duplicate location ID")
)

const routeKeyword = "ROUTE"

// Scenario is everything read from a scenario file: relay locations in
// file order plus the single route.
type Scenario struct {
	Header    string
	Locations []*Location
	Route     *Route
}

// LoadScenarioFile opens path and parses it with LoadScenario.
func LoadScenarioFile(path string, planet Planet, routeMarginKm float64) (*Scenario, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("LoadScenarioFile: open %q: %w", path, err)
	}
	defer f.Close()

	sc, err := LoadScenario(f, planet, routeMarginKm)
	if err != nil {
		return nil, fmt.Errorf("LoadScenarioFile: %q: %w", path, err)
	}
	return sc, nil
}

// LoadScenario reads the line-oriented scenario format:
//
//	<free-text header>
//	ROUTE,<startLat>,<startLong>,<endLat>,<endLong>
//	<id>,<lat>,<long>,<altitudeKm>
//	...
//
// The header is kept verbatim. Blank lines are ignored. Any malformed line,
// duplicate ID or missing/duplicated ROUTE line fails the whole load.
func LoadScenario(r io.Reader, planet Planet, routeMarginKm float64) (*Scenario, error) {
	scanner := bufio.NewScanner(r)

	if !scanner.Scan() {
		if err := scanner.Err(); err != nil {
			return nil, fmt.Errorf("read header: %w", err)
		}
		return nil, ErrEmptyScenario
	}
	sc := &Scenario{Header: strings.TrimSpace(scanner.Text())}

	seen := make(map[string]struct{})
	lineNo := 1
	for scanner.Scan() {
		lineNo++
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}

		fields := splitFields(line)
		if fields[0] == routeKeyword {
			if sc.Route != nil {
				return nil, fmt.Errorf("line %d: %w", lineNo, ErrDuplicateRoute)
			}
			route, err := parseRoute(fields, planet, routeMarginKm)
			if err != nil {
				return nil, fmt.Errorf("line %d: %w", lineNo, err)
			}
			sc.Route = route
			continue
		}

		loc, err := parseLocation(fields, planet)
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", lineNo, err)
		}
		if _, dup := seen[loc.ID]; dup {
			return nil, fmt.Errorf("line %d: %w: %q", lineNo, ErrDuplicateLocation, loc.ID)
		}
		seen[loc.ID] = struct{}{}
		sc.Locations = append(sc.Locations, loc)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read line %d: %w", lineNo+1, err)
	}

	if sc.Route == nil {
		return nil, ErrMissingRoute
	}
	return sc, nil
}

func splitFields(line string) []string {
	fields := strings.Split(line, ",")
	for i := range fields {
		fields[i] = strings.TrimSpace(fields[i])
	}
	return fields
}

func parseRoute(fields []string, planet Planet, marginKm float64) (*Route, error) {
	if len(fields) != 5 {
		return nil, fmt.Errorf("%w: ROUTE wants 4 values, got %d", ErrMalformedLine, len(fields)-1)
	}
	vals, err := parseFloats(fields[1:])
	if err != nil {
		return nil, err
	}
	return NewRoute(planet, marginKm, vals[0], vals[1], vals[2], vals[3]), nil
}

func parseLocation(fields []string, planet Planet) (*Location, error) {
	if len(fields) != 4 {
		return nil, fmt.Errorf("%w: location wants id and 3 values, got %d fields", ErrMalformedLine, len(fields))
	}
	if fields[0] == "" {
		return nil, fmt.Errorf("%w: %w", ErrMalformedLine, ErrEmptyLocationID)
	}
	vals, err := parseFloats(fields[1:])
	if err != nil {
		return nil, err
	}
	return NewLocation(planet, fields[0], vals[0], vals[1], vals[2])
}

func parseFloats(raw []string) ([]float64, error) {
	out := make([]float64, len(raw))
	for i, s := range raw {
		v, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return nil, fmt.Errorf("%w: %w", ErrMalformedLine, err)
		}
		out[i] = v
	}
	return out, nil
}
