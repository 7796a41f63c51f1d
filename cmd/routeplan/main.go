// Command routeplan optimizes a visiting order offline from a JSON file:
//
//	{"depot": {"name": "Home", "lat": 40.0, "lon": -105.0},
//	 "stops": [{"booking_id": "b1", "location": {"name": "A", "lat": 40.1, "lon": -105.1}}]}
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"text/tabwriter"

	"visit-route-service/internal/adapters/distance"
	"visit-route-service/internal/api/dto"
	"visit-route-service/internal/config"
	"visit-route-service/internal/domain"
	"visit-route-service/internal/ports"
	"visit-route-service/internal/services"

	"github.com/kr/pretty"
)

func main() {
	if err := run(os.Args[1:], os.Stdin, os.Stdout); err != nil {
		fmt.Fprintln(os.Stderr, "routeplan:", err)
		os.Exit(1)
	}
}

func run(args []string, stdin io.Reader, stdout io.Writer) error {
	fs := flag.NewFlagSet("routeplan", flag.ContinueOnError)
	in := fs.String("in", "-", "input JSON file, - for stdin")
	modeFlag := fs.String("mode", "exact", "exact, heuristic or auto")
	maxExact := fs.Int("max-exact", services.DefaultMaxExactStops, "largest stop count solved exactly")
	source := fs.String("distance", "haversine", "distance source: haversine, ors or google")
	asJSON := fs.Bool("json", false, "print the plan as JSON")
	debug := fs.Bool("debug", false, "dump the raw plan structure")
	if err := fs.Parse(args); err != nil {
		return err
	}

	mode, err := services.ParseMode(*modeFlag)
	if err != nil {
		return err
	}

	var r io.Reader = stdin
	if *in != "-" {
		f, err := os.Open(*in)
		if err != nil {
			return err
		}
		defer f.Close()
		r = f
	}

	var req dto.OptimizeRequest
	if err := json.NewDecoder(r).Decode(&req); err != nil {
		return fmt.Errorf("decode input: %w", err)
	}

	matrix, err := matrixProvider(*source)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	stops := make([]domain.BookingLocation, 0, len(req.Stops))
	for i, s := range req.Stops {
		id := s.BookingID
		if id == "" {
			id = fmt.Sprintf("stop-%d", i+1)
		}
		stops = append(stops, domain.BookingLocation{BookingID: id, NamedLocation: s.Location.Domain()})
	}

	planner := services.NewPlanner(nil, matrix, services.WithPlannerMaxExactStops(*maxExact))
	plan, err := planner.OptimizeAdHoc(ctx, req.Depot.Domain(), stops, mode)
	if err != nil {
		return err
	}

	switch {
	case *debug:
		_, err = pretty.Fprintf(stdout, "%# v\n", plan)
		return err
	case *asJSON:
		enc := json.NewEncoder(stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(dto.NewRouteResponse(plan))
	}

	tw := tabwriter.NewWriter(stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "#\tBOOKING\tLOCATION\tLEG KM\tTOTAL KM")
	fmt.Fprintf(tw, "0\t\t%s\t\t\n", plan.Depot.Name)
	for i, s := range plan.Stops {
		fmt.Fprintf(tw, "%d\t%s\t%s\t%.2f\t%.2f\n", i+1, s.BookingID, s.Location.Name, s.LegKm, s.CumulativeKm)
	}
	fmt.Fprintf(tw, "%d\t\t%s\t%.2f\t%.2f\n", len(plan.Stops)+1, plan.Depot.Name, plan.ReturnKm, plan.TotalKm)
	if err := tw.Flush(); err != nil {
		return err
	}

	label := "optimal"
	if !plan.Exact {
		label = "heuristic"
	}
	_, err = fmt.Fprintf(stdout, "%s route, %.2f km\n", label, plan.TotalKm)
	return err
}

func matrixProvider(source string) (ports.MatrixProvider, error) {
	switch source {
	case "haversine":
		return distance.NewHaversineProvider(), nil
	case "ors":
		return distance.NewORSMatrixProvider(config.Get("ORS_API_KEY", ""))
	case "google":
		return distance.NewGoogleMatrixProvider(config.Get("GOOGLE_API_KEY", ""))
	}
	return nil, fmt.Errorf("unknown distance source %q", source)
}
