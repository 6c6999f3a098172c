package main

import (
	"bufio"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/jamesainslie/insight/pkg/insight/output"
	"github.com/jamesainslie/insight/pkg/insight/stats"
	"github.com/jamesainslie/insight/pkg/insight/store"
)

var dbCmd = &cobra.Command{
	Use:   "db",
	Short: "Work with the record database",
	Long:  `Query or clear file records persisted by scan --store.`,
}

var dbInsightsCmd = &cobra.Command{
	Use:   "insights",
	Short: "Report statistics over stored records",
	RunE:  runDBInsights,
}

var dbClearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Delete all stored records",
	RunE:  runDBClear,
}

func init() {
	dbInsightsCmd.Flags().IntP("limit", "l", 0, "maximum records to load (0=all)")
	dbInsightsCmd.Flags().Bool("video-only", false, "only include video files")
	dbInsightsCmd.Flags().StringSliceP("extension", "e", nil, "only include these extensions (e.g. .mp4)")
	dbInsightsCmd.Flags().StringP("output", "o", "", "write a report file to this path")
	dbInsightsCmd.Flags().StringP("format", "f", "", "report format: json or yaml")
	dbInsightsCmd.Flags().String("store-path", "", "database directory")

	dbClearCmd.Flags().BoolP("yes", "y", false, "skip the confirmation prompt")
	dbClearCmd.Flags().String("store-path", "", "database directory")

	dbCmd.AddCommand(dbInsightsCmd)
	dbCmd.AddCommand(dbClearCmd)
	rootCmd.AddCommand(dbCmd)
}

// runDBInsights aggregates stored records and prints the same summary
// as scan.
func runDBInsights(cmd *cobra.Command, _ []string) error {
	s, err := openStoreFrom(cmd)
	if err != nil {
		return err
	}
	defer s.Close()

	limit, _ := cmd.Flags().GetInt("limit")
	videoOnly, _ := cmd.Flags().GetBool("video-only")
	extensions, _ := cmd.Flags().GetStringSlice("extension")

	records, err := s.Query(cmd.Context(), store.QueryOptions{
		Limit:      limit,
		VideoOnly:  videoOnly,
		Extensions: extensions,
	})
	if err != nil {
		return fmt.Errorf("query store: %w", err)
	}

	if len(records) == 0 {
		printInfo("No stored records match. Run 'insight scan --store' first.")
		return nil
	}

	agg := stats.Aggregate(records, time.Now())
	printSummary(&agg, nil)

	if outputPath, _ := cmd.Flags().GetString("output"); outputPath != "" {
		format, _ := cmd.Flags().GetString("format")
		if format == "" {
			format = viper.GetString("output.format")
		}
		if err := output.WriteReport(outputPath, &agg, format); err != nil {
			return err
		}
		printInfo("Report written to %s", outputPath)
	}

	return nil
}

// runDBClear deletes every stored record after confirmation.
func runDBClear(cmd *cobra.Command, _ []string) error {
	s, err := openStoreFrom(cmd)
	if err != nil {
		return err
	}
	defer s.Close()

	count, err := s.Count(cmd.Context(), false)
	if err != nil {
		return fmt.Errorf("count records: %w", err)
	}
	if count == 0 {
		printInfo("Database is already empty.")
		return nil
	}

	if yes, _ := cmd.Flags().GetBool("yes"); !yes {
		if !confirm(fmt.Sprintf("Delete %d stored records?", count)) {
			printInfo("Aborted.")
			return nil
		}
	}

	deleted, err := s.DeleteAll(cmd.Context())
	if err != nil {
		return fmt.Errorf("clear store: %w", err)
	}

	printInfo("Deleted %d records.", deleted)
	return nil
}

// openStoreFrom opens the database named by the command's --store-path
// flag, falling back to the configured path.
func openStoreFrom(cmd *cobra.Command) (*store.BadgerStore, error) {
	path, _ := cmd.Flags().GetString("store-path")
	if path == "" {
		path = storePath()
	}
	return store.Open(path)
}

// confirm asks a yes/no question on stdin and returns the answer.
func confirm(question string) bool {
	fmt.Printf("%s [y/N]: ", question)
	reader := bufio.NewReader(os.Stdin)
	answer, err := reader.ReadString('\n')
	if err != nil {
		return false
	}
	answer = strings.ToLower(strings.TrimSpace(answer))
	return answer == "y" || answer == "yes"
}
