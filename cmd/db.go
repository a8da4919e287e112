package cmd

import (
	"context"
	"fmt"
	"os"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/securo-skn/crimefeed/internal/utils"
	"github.com/securo-skn/crimefeed/pkg/incident"
	"github.com/securo-skn/crimefeed/pkg/storage"
)

// dbCmd represents the db command
var dbCmd = &cobra.Command{
	Use:   "db",
	Short: "Inspect the incident archive",
}

// listCmd represents the db list command
var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List archived incidents, newest first",
	RunE: func(cmd *cobra.Command, args []string) error {
		output, _ := cmd.Flags().GetString("output")
		path, _ := cmd.Flags().GetString("path")
		since, _ := cmd.Flags().GetDuration("since")

		opts := storage.ListOptions{}
		opts.Source, _ = cmd.Flags().GetString("source")
		opts.Category, _ = cmd.Flags().GetString("category")
		opts.Severity, _ = cmd.Flags().GetString("severity")
		opts.Zone, _ = cmd.Flags().GetString("zone")
		opts.Limit, _ = cmd.Flags().GetInt("limit")
		if since > 0 {
			opts.Since = time.Now().Add(-since)
		}

		db, err := openArchiveForRead(cmd)
		if err != nil {
			return err
		}
		defer db.Close()

		records, err := db.ListIncidents(context.Background(), opts)
		if err != nil {
			return err
		}

		if output == "json" || path != "" {
			return printJSON(os.Stdout, records, path)
		}

		if len(records) == 0 {
			fmt.Println("No archived incidents match.")
			return nil
		}
		incidents := make([]incident.Incident, 0, len(records))
		for _, r := range records {
			incidents = append(incidents, r.Incident)
		}
		printIncidents(os.Stdout, incidents, time.Now())
		return nil
	},
}

// statsCmd represents the db stats command
var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Prints per-source statistics about the incident archive.",
	RunE: func(cmd *cobra.Command, args []string) error {
		db, err := openArchiveForRead(cmd)
		if err != nil {
			return err
		}
		defer db.Close()

		stats, err := db.GetStats(context.Background())
		if err != nil {
			return err
		}

		if len(stats) == 0 {
			fmt.Println("No data in the archive to generate stats.")
			return nil
		}

		w := tabwriter.NewWriter(os.Stdout, 0, 0, 3, ' ', tabwriter.AlignRight)
		fmt.Fprintln(w, "SOURCE\tINCIDENTS\tOFFICIAL\tLAST SEEN\t")

		var totalIncidents, totalOfficial int
		for _, s := range stats {
			fmt.Fprintf(w, "%s\t%d\t%d\t%s\t\n", s.Source, s.Incidents, s.Official, s.LatestSeen.Format(time.RFC3339))
			totalIncidents += s.Incidents
			totalOfficial += s.Official
		}

		fmt.Fprintln(w, " \t \t \t \t")
		fmt.Fprintf(w, "TOTAL\t%d\t%d\t \t\n", totalIncidents, totalOfficial)

		w.Flush()

		return nil
	},
}

func openArchiveForRead(cmd *cobra.Command) (*storage.DB, error) {
	dbPath, _ := cmd.Parent().PersistentFlags().GetString("dbpath")
	if dbPath == "" {
		dbPath = viper.GetString("db.path")
	}
	absPath, err := utils.ArchivePath(dbPath)
	if err != nil {
		return nil, err
	}
	if _, err := os.Stat(absPath); os.IsNotExist(err) {
		return nil, fmt.Errorf("archive not found: %s", absPath)
	}
	return storage.Open(absPath)
}

func init() {
	rootCmd.AddCommand(dbCmd)
	dbCmd.AddCommand(listCmd)
	dbCmd.AddCommand(statsCmd)
	dbCmd.PersistentFlags().String("dbpath", "", "Path to SQLite archive (default: db.path from config, then ~/.config/crimefeed/crimefeed.sqlite)")

	listCmd.Flags().StringP("output", "o", "table", "Output format: table, json")
	listCmd.Flags().String("path", "", "gjson path applied to the JSON output (implies -o json)")
	listCmd.Flags().String("source", "", "Filter by source name")
	listCmd.Flags().String("category", "", "Filter by category")
	listCmd.Flags().String("severity", "", "Filter by severity")
	listCmd.Flags().String("zone", "", "Filter by zone")
	listCmd.Flags().Duration("since", 0, "Only incidents published within this window (e.g. 24h)")
	listCmd.Flags().Int("limit", 50, "Maximum number of incidents")
}
