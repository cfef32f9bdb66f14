package main

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/rep-nop/application-services/places"
)

func newPlacesCmd() *cobra.Command {
	var dbPath string

	cmd := &cobra.Command{
		Use:   "places",
		Short: "Operate on a places (history) database",
	}
	cmd.PersistentFlags().StringVar(&dbPath, "db", "places.db", "path to the places database")

	search := &cobra.Command{
		Use:   "search <query>",
		Short: "Frecency-ranked autocomplete search",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			limit, _ := cmd.Flags().GetUint32("limit")
			db, err := places.Open(dbPath, "")
			if err != nil {
				return err
			}
			defer db.Close()

			results, err := db.SearchFrecent(cmd.Context(), places.SearchParams{
				SearchString: args[0],
				Limit:        limit,
			})
			if err != nil {
				return err
			}
			for _, r := range results {
				fmt.Fprintf(cmd.OutOrStdout(), "%8d  %s  %s\n", r.Frecency, r.URL, r.Title)
			}
			return nil
		},
	}
	search.Flags().Uint32("limit", 10, "maximum results")

	observe := &cobra.Command{
		Use:   "observe <observation-json>",
		Short: "Record a visit observation",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var obs places.VisitObservation
			if err := json.Unmarshal([]byte(args[0]), &obs); err != nil {
				return fmt.Errorf("parsing observation: %w", err)
			}
			db, err := places.Open(dbPath, "")
			if err != nil {
				return err
			}
			defer db.Close()
			return db.ApplyObservation(cmd.Context(), obs)
		},
	}

	cmd.AddCommand(search, observe)
	return cmd
}
