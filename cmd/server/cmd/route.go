package cmd

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/WanderLanka/wanderlanka-web-app-sub002/internal/config"
	"github.com/WanderLanka/wanderlanka-web-app-sub002/internal/routeplan"
)

var (
	routeFrom       string
	routeTo         string
	routeVia        []string
	routePreference string
	routeCompare    bool
	routeJSON       bool
	routeTimeout    time.Duration
)

var routeCmd = &cobra.Command{
	Use:   "route",
	Short: "Plan a driving route from the command line",
	Long: `Plan a driving route between two stops, optionally through waypoints.

Stops are place names or "lat,lng" coordinates. Waypoints are visited in the
order given unless --preference shortest lets the provider reorder them.

Examples:
  # Colombo to Ella through Kandy
  server route --from Colombo --to Ella --via Kandy

  # Scenic route, JSON output
  server route --from "Galle Fort" --to Mirissa --preference scenic --json

  # Compare every preference
  server route --from Colombo --to Trincomalee --compare`,
	RunE: runRoute,
}

func init() {
	routeCmd.Flags().StringVar(&routeFrom, "from", "", "origin (place name or lat,lng)")
	routeCmd.Flags().StringVar(&routeTo, "to", "", "destination (place name or lat,lng)")
	routeCmd.Flags().StringArrayVar(&routeVia, "via", nil, "waypoint, repeat for several stops")
	routeCmd.Flags().StringVar(&routePreference, "preference", "recommended", "route preference (recommended, shortest, scenic)")
	routeCmd.Flags().BoolVar(&routeCompare, "compare", false, "plan every preference and compare them")
	routeCmd.Flags().BoolVar(&routeJSON, "json", false, "print JSON instead of a table")
	routeCmd.Flags().DurationVar(&routeTimeout, "timeout", 30*time.Second, "overall timeout")
	_ = routeCmd.MarkFlagRequired("from")
	_ = routeCmd.MarkFlagRequired("to")
}

func buildRouteRequest(from, to string, via []string, preference string) (routeplan.Request, error) {
	pref, err := routeplan.ParsePreference(preference)
	if err != nil {
		return routeplan.Request{}, err
	}
	req := routeplan.Request{
		Origin:      routeplan.ParseStop(from),
		Destination: routeplan.ParseStop(to),
		Preference:  pref,
	}
	for _, v := range via {
		req.Waypoints = append(req.Waypoints, routeplan.ParseStop(v))
	}
	if !req.Complete() {
		return routeplan.Request{}, errors.New("--from and --to must not be blank")
	}
	return req, nil
}

func runRoute(cmd *cobra.Command, args []string) error {
	req, err := buildRouteRequest(routeFrom, routeTo, routeVia, routePreference)
	if err != nil {
		return err
	}

	cfg, err := loadConfig()
	if err != nil {
		return fmt.Errorf("config error: %w", err)
	}
	logger := config.NewLogger(cfg.Logging)

	ctx, cancel := context.WithTimeout(cmd.Context(), routeTimeout)
	defer cancel()

	svc, err := buildServices(ctx, cfg, newProvider(cfg.Maps), logger)
	if err != nil {
		return err
	}
	defer svc.Close()

	if err := svc.awaitReady(ctx); err != nil {
		return err
	}
	return planRoute(ctx, cmd.OutOrStdout(), svc.planner, req, routeCompare, routeJSON)
}

// planRoute computes req and prints it. A failed route is returned as the
// user facing message so the CLI prints something actionable.
func planRoute(ctx context.Context, out io.Writer, planner *routeplan.Planner, req routeplan.Request, compare, asJSON bool) error {
	if compare {
		cmp, err := planner.Compare(ctx, req)
		if err != nil {
			return err
		}
		if asJSON {
			return writeJSON(out, comparisonJSON(cmp))
		}
		return writeComparisonText(out, cmp)
	}

	view, err := planner.Compute(ctx, req)
	if err != nil {
		if re, ok := routeplan.AsRouteError(err); ok {
			return fmt.Errorf("%s (%s)", re.UserMessage(), re.Kind)
		}
		return err
	}
	if view == nil {
		return errors.New("origin and destination are required")
	}
	if asJSON {
		return writeJSON(out, view)
	}
	return writeRouteText(out, view)
}

func writeJSON(out io.Writer, v any) error {
	enc := json.NewEncoder(out)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func writeRouteText(out io.Writer, view *routeplan.View) error {
	res := view.Result
	fmt.Fprintf(out, "Route (%s): %s, %s\n\n", res.Preference, res.Distance(), res.Duration())

	tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "STOP\tNAME\tADDRESS")
	for _, m := range view.Markers {
		fmt.Fprintf(tw, "%s\t%s\t%s\n", m.Label, m.Stop.Name(), m.Position.Address)
	}
	fmt.Fprintln(tw)
	fmt.Fprintln(tw, "LEG\tDISTANCE\tDURATION")
	for i, leg := range res.Legs {
		fmt.Fprintf(tw, "%d\t%s\t%s\n", i+1,
			routeplan.FormatDistance(leg.DistanceMeters),
			routeplan.FormatDuration(leg.DurationSeconds))
	}
	return tw.Flush()
}

type comparisonEntry struct {
	Preference routeplan.Preference `json:"preference"`
	Route      *routeplan.View      `json:"route,omitempty"`
	Error      string               `json:"error,omitempty"`
	ErrorKind  routeplan.Kind       `json:"errorKind,omitempty"`
}

func comparisonJSON(cmp *routeplan.Comparison) []comparisonEntry {
	entries := make([]comparisonEntry, 0, len(routeplan.Preferences))
	for _, pref := range routeplan.Preferences {
		entry := comparisonEntry{Preference: pref, Route: cmp.Views[pref]}
		if re, ok := routeplan.AsRouteError(cmp.Errors[pref]); ok {
			entry.Error = re.UserMessage()
			entry.ErrorKind = re.Kind
		}
		entries = append(entries, entry)
	}
	return entries
}

func writeComparisonText(out io.Writer, cmp *routeplan.Comparison) error {
	tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "PREFERENCE\tDISTANCE\tDURATION\tNOTE")
	for _, entry := range comparisonJSON(cmp) {
		if entry.Route == nil {
			fmt.Fprintf(tw, "%s\t-\t-\t%s\n", entry.Preference, entry.Error)
			continue
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t\n", entry.Preference, entry.Route.Result.Distance(), entry.Route.Result.Duration())
	}
	return tw.Flush()
}
