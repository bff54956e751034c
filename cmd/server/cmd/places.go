package cmd

import (
	"context"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/WanderLanka/wanderlanka-web-app-sub002/internal/config"
	"github.com/WanderLanka/wanderlanka-web-app-sub002/internal/discovery"
)

var (
	placesJSON    bool
	placesTimeout time.Duration
	placesToken   string
)

var placesCmd = &cobra.Command{
	Use:   "places",
	Short: "Discover tourist places",
	Long: `Search Sri Lankan tourist places and look up their details.

Searches are restricted to the configured region and place categories
(attractions, museums, parks, natural features and places of worship by default).`,
}

var placesSearchCmd = &cobra.Command{
	Use:   "search <query>",
	Short: "List place suggestions for a partial name",
	Example: `  server places search sigiri
  server places search "temple of the" --json`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withDiscovery(cmd, func(ctx context.Context, svc *discovery.Service) error {
			return searchPlaces(ctx, cmd.OutOrStdout(), svc, strings.Join(args, " "), placesToken, placesJSON)
		})
	},
}

var placesDetailsCmd = &cobra.Command{
	Use:     "details <place-id>",
	Short:   "Show enriched details for a place id",
	Example: `  server places details ChIJ1aAZ-ZxZ4joRzMEpNjUwBEg`,
	Args:    cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withDiscovery(cmd, func(ctx context.Context, svc *discovery.Service) error {
			return placeDetails(ctx, cmd.OutOrStdout(), svc, args[0], placesJSON)
		})
	},
}

func init() {
	placesCmd.PersistentFlags().BoolVar(&placesJSON, "json", false, "print JSON instead of text")
	placesCmd.PersistentFlags().DurationVar(&placesTimeout, "timeout", 20*time.Second, "overall timeout")
	placesSearchCmd.Flags().StringVar(&placesToken, "session-token", "", "token grouping searches that lead to one selection")

	placesCmd.AddCommand(placesSearchCmd)
	placesCmd.AddCommand(placesDetailsCmd)
}

func withDiscovery(cmd *cobra.Command, fn func(ctx context.Context, svc *discovery.Service) error) error {
	cfg, err := loadConfig()
	if err != nil {
		return fmt.Errorf("config error: %w", err)
	}
	logger := config.NewLogger(cfg.Logging)

	ctx, cancel := context.WithTimeout(cmd.Context(), placesTimeout)
	defer cancel()

	svc, err := buildServices(ctx, cfg, newProvider(cfg.Maps), logger)
	if err != nil {
		return err
	}
	defer svc.Close()

	if err := svc.awaitReady(ctx); err != nil {
		return err
	}
	return fn(ctx, svc.discovery)
}

func searchPlaces(ctx context.Context, out io.Writer, svc *discovery.Service, query, token string, asJSON bool) error {
	suggestions, err := svc.Autocomplete(ctx, query, token)
	if err != nil {
		return err
	}
	if asJSON {
		return writeJSON(out, suggestions)
	}
	if len(suggestions) == 0 {
		fmt.Fprintln(out, "No places found.")
		return nil
	}

	tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tNAME\tAREA")
	for _, s := range suggestions {
		fmt.Fprintf(tw, "%s\t%s\t%s\n", s.ID, s.PrimaryText, s.SecondaryText)
	}
	return tw.Flush()
}

func placeDetails(ctx context.Context, out io.Writer, svc *discovery.Service, id string, asJSON bool) error {
	details, err := svc.Resolve(ctx, id)
	if err != nil {
		return err
	}
	if asJSON {
		return writeJSON(out, details)
	}

	fmt.Fprintf(out, "%s\n", details.Name)
	fmt.Fprintf(out, "Category: %s\n", details.PrimaryCategory)
	fmt.Fprintf(out, "Address:  %s\n", details.Address)
	if details.Rating != nil {
		fmt.Fprintf(out, "Rating:   %.1f (%d reviews)\n", *details.Rating, details.RatingsCount)
	} else {
		fmt.Fprintln(out, "Rating:   no ratings yet")
	}
	if details.OpenNow != nil {
		if *details.OpenNow {
			fmt.Fprintln(out, "Open now")
		} else {
			fmt.Fprintln(out, "Closed now")
		}
	}
	if len(details.OpeningHours) > 0 {
		fmt.Fprintln(out, "Hours:")
		for _, line := range details.OpeningHours {
			fmt.Fprintf(out, "  %s\n", line)
		}
	}
	if details.Description != "" {
		fmt.Fprintf(out, "\n%s\n", details.Description)
	}
	return nil
}
