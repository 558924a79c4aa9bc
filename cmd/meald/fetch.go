package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"meal-export-backend/internal/export"
)

var (
	fetchServer  string
	fetchYear    string
	fetchMonth   string
	fetchOut     string
	fetchPrint   bool
	fetchTimeout time.Duration
)

var fetchCmd = &cobra.Command{
	Use:   "fetch",
	Short: "Fetch a month's meal schedule from a running server and save it as JSON",
	Long: `Queries the /api/meal endpoint of a meald server, reshapes the schedule
into Korean field names and writes meal_data_<year>_<MM>.json into --out.`,
	Args: cobra.NoArgs,
	RunE: runFetch,
}

func init() {
	fetchCmd.Flags().StringVar(&fetchServer, "server", "http://localhost:3000", "meald server base URL")
	fetchCmd.Flags().StringVar(&fetchYear, "year", "", "year, four digits")
	fetchCmd.Flags().StringVar(&fetchMonth, "month", "", "month, 1-12")
	fetchCmd.Flags().StringVar(&fetchOut, "out", ".", "output directory")
	fetchCmd.Flags().BoolVar(&fetchPrint, "print", false, "also print the JSON to stdout")
	fetchCmd.Flags().DurationVar(&fetchTimeout, "timeout", 30*time.Second, "request timeout")
	rootCmd.AddCommand(fetchCmd)
}

func runFetch(cmd *cobra.Command, _ []string) error {
	client := export.NewClient(fetchServer, fetchTimeout)

	result, err := client.Search(cmd.Context(), fetchYear, fetchMonth)
	if err != nil {
		return err
	}

	if fetchPrint {
		preview, err := result.Preview()
		if err != nil {
			return fmt.Errorf("rendering preview: %w", err)
		}
		fmt.Fprintln(cmd.OutOrStdout(), preview)
	}

	path, err := export.Download(result, fetchOut)
	if err != nil {
		return err
	}
	fmt.Fprintf(cmd.ErrOrStderr(), "saved %s\n", path)
	return nil
}
