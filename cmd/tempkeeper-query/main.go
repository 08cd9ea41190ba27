package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"os"
	"text/tabwriter"
	"time"

	"tempkeeper/internal/exitcodes"
	"tempkeeper/internal/journal"
)

func main() {
	dbPath := flag.String("db", "/var/lib/tempkeeper/journal.db", "Path to sweep journal database")
	recent := flag.Int("recent", 0, "Show N most recent sweep events")
	stats := flag.Bool("stats", false, "Show sweep statistics")
	action := flag.String("action", "", "Filter by action (REMOVE, DRY_RUN, SKIP, ERROR)")
	pathPattern := flag.String("path", "", "Filter by path pattern (SQL LIKE syntax)")
	largest := flag.Int("largest", 0, "Show N largest removed objects")
	days := flag.Int("days", 30, "Number of days for statistics (default: 30)")
	jsonOutput := flag.Bool("json", false, "Output in JSON format")
	flag.Parse()

	db, err := journal.Open(*dbPath)
	if err != nil {
		log.Fatalf("ERROR: Failed to open journal %s: %v", *dbPath, err)
	}
	defer func() {
		if err := db.Close(); err != nil {
			log.Printf("ERROR: Failed to close journal: %v", err)
		}
	}()

	switch {
	case *stats:
		showStats(db, *days, *jsonOutput)
	case *recent > 0:
		showRecent(db, *recent, *jsonOutput)
	case *action != "":
		showByAction(db, *action, *jsonOutput)
	case *pathPattern != "":
		showByPath(db, *pathPattern, *jsonOutput)
	case *largest > 0:
		showLargest(db, *largest, *jsonOutput)
	default:
		flag.Usage()
		fmt.Println("\nExamples:")
		fmt.Println("  tempkeeper-query --recent 10        # Show 10 most recent sweep events")
		fmt.Println("  tempkeeper-query --stats            # Show sweep statistics")
		fmt.Println("  tempkeeper-query --action REMOVE    # Show only removals")
		fmt.Println("  tempkeeper-query --path '/tmp/%'    # Show events under /tmp")
		fmt.Println("  tempkeeper-query --largest 10       # Show 10 largest removals")
		os.Exit(exitcodes.InvalidConfig)
	}
}

func showStats(db *journal.DB, days int, jsonOutput bool) {
	since := time.Now().AddDate(0, 0, -days)
	stats, err := db.StatsSince(since)
	if err != nil {
		log.Fatalf("ERROR: Failed to get statistics: %v", err)
	}

	if jsonOutput {
		data, _ := json.MarshalIndent(stats, "", "  ")
		fmt.Println(string(data))
		return
	}

	fmt.Printf("Sweep Statistics (Last %d days)\n\n", days)
	fmt.Printf("Total Removed:    %d\n", stats.TotalRemoved)
	fmt.Printf("Total Skipped:    %d\n", stats.TotalSkipped)
	fmt.Printf("Total Errors:     %d\n", stats.TotalErrors)
	fmt.Printf("Space Reclaimed:  %s\n", formatBytes(stats.BytesReclaimed))
}

func showRecent(db *journal.DB, limit int, jsonOutput bool) {
	records, err := db.Recent(limit)
	if err != nil {
		log.Fatalf("ERROR: Failed to get recent events: %v", err)
	}

	if jsonOutput {
		data, _ := json.MarshalIndent(records, "", "  ")
		fmt.Println(string(data))
		return
	}

	printRecords(records)
}

func showByAction(db *journal.DB, action string, jsonOutput bool) {
	records, err := db.ByAction(action)
	if err != nil {
		log.Fatalf("ERROR: Failed to query by action: %v", err)
	}

	if jsonOutput {
		data, _ := json.MarshalIndent(records, "", "  ")
		fmt.Println(string(data))
		return
	}

	fmt.Printf("Events with action: %s\n\n", action)
	printRecords(records)
}

func showByPath(db *journal.DB, pathPattern string, jsonOutput bool) {
	records, err := db.ByPath(pathPattern)
	if err != nil {
		log.Fatalf("ERROR: Failed to query by path: %v", err)
	}

	if jsonOutput {
		data, _ := json.MarshalIndent(records, "", "  ")
		fmt.Println(string(data))
		return
	}

	fmt.Printf("Events matching path pattern: %s\n\n", pathPattern)
	printRecords(records)
}

func showLargest(db *journal.DB, limit int, jsonOutput bool) {
	records, err := db.Largest(limit)
	if err != nil {
		log.Fatalf("ERROR: Failed to get largest removals: %v", err)
	}

	if jsonOutput {
		data, _ := json.MarshalIndent(records, "", "  ")
		fmt.Println(string(data))
		return
	}

	fmt.Printf("Largest %d removals:\n\n", limit)
	printRecords(records)
}

func printRecords(records []journal.Record) {
	if len(records) == 0 {
		fmt.Println("No records found")
		return
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	_, _ = fmt.Fprintln(w, "ID\tTimestamp\tAction\tType\tSize\tPath")
	_, _ = fmt.Fprintln(w, "--\t---------\t------\t----\t----\t----")

	for _, r := range records {
		timestamp := r.Timestamp.Format("2006-01-02 15:04:05")
		_, _ = fmt.Fprintf(w, "%d\t%s\t%s\t%s\t%s\t%s\n",
			r.ID, timestamp, r.Action, r.ObjectType, formatBytes(r.Size), r.Path)
	}
	_ = w.Flush()
}

func formatBytes(bytes int64) string {
	const unit = 1024
	if bytes < unit {
		return fmt.Sprintf("%d B", bytes)
	}
	div, exp := int64(unit), 0
	for n := bytes / unit; n >= unit; n /= unit {
		div *= unit
		exp++
	}
	return fmt.Sprintf("%.1f %cB", float64(bytes)/float64(div), "KMGTPE"[exp])
}
