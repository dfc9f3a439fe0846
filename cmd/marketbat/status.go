package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"sort"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/marketbat/marketbat/internal/config"
	"github.com/marketbat/marketbat/internal/monitor"
)

// runStatus implements the "status" subcommand: render the monitoring
// documents for all bots in a terminal-friendly form.
func runStatus(args []string) int {
	fs := flag.NewFlagSet("status", flag.ExitOnError)
	configPath := fs.String("config", "marketbat.yaml", "path to configuration file")
	statusDir := fs.String("status-dir", "", "directory containing <bot>_status.json files (default: from config)")
	maxEvents := fs.Int("events", 5, "number of recent events to show for each bot")
	if err := fs.Parse(args); err != nil {
		return 2
	}

	dir := *statusDir
	if dir == "" {
		cfg, err := config.LoadConfig(*configPath)
		if err != nil {
			fmt.Fprintf(os.Stderr, "error loading config: %v\n", err)
			return 1
		}
		dir = cfg.Monitoring.Dir
	}

	states := monitor.LoadAll(zerolog.Nop(), dir)
	if len(states) == 0 {
		fmt.Printf("No monitoring data found in %s.\n", dir)
		return 0
	}

	shown := *maxEvents
	if shown < 1 {
		shown = 1
	}
	now := time.Now().UTC()
	for _, state := range states {
		renderStatus(state, now, shown)
	}
	return 0
}

func renderStatus(state monitor.State, now time.Time, maxEvents int) {
	fmt.Printf("=== %s ===\n", state.BotName)
	fmt.Printf("Last success: %s\n", describeTimestamp(state.LastSuccess, now))
	fmt.Printf("Last failure: %s\n", describeTimestamp(state.LastFailure, now))
	fmt.Printf("Successes: %d | Failures: %d\n", state.SuccessCount, state.FailureCount)

	if len(state.Runs) > 0 {
		fmt.Println("Last recorded runs:")
		labels := make([]string, 0, len(state.Runs))
		for label := range state.Runs {
			labels = append(labels, label)
		}
		sort.Strings(labels)
		for _, label := range labels {
			run := state.Runs[label]
			ts := run.Timestamp
			fmt.Printf("  - %s: %s @ %s\n", label, run.Status, describeTimestamp(&ts, now))
			if run.Message != "" {
				fmt.Printf("    %s\n", run.Message)
			}
			dumpMetadata(run.Metadata)
		}
	} else {
		fmt.Println("No runs recorded yet.")
	}

	if len(state.Events) > 0 {
		shown := maxEvents
		if shown > len(state.Events) {
			shown = len(state.Events)
		}
		fmt.Printf("Recent events (last %d shown):\n", shown)
		for _, event := range state.Events[len(state.Events)-shown:] {
			ts := event.Timestamp
			fmt.Printf("  - [%s] %s: %s\n", event.Type, describeTimestamp(&ts, now), event.Message)
			dumpMetadata(event.Metadata)
		}
	} else {
		fmt.Println("No events recorded yet.")
	}
	fmt.Println()
}

func describeTimestamp(t *time.Time, now time.Time) string {
	if t == nil || t.IsZero() {
		return "never"
	}
	utc := t.UTC()
	return fmt.Sprintf("%s (%s ago)", utc.Format("2006-01-02 15:04:05 UTC"), formatDelta(now.Sub(utc)))
}

func formatDelta(d time.Duration) string {
	seconds := int(d.Seconds())
	if seconds < 0 {
		seconds = 0
	}
	if seconds < 60 {
		return fmt.Sprintf("%ds", seconds)
	}
	minutes := seconds / 60
	if minutes < 60 {
		return fmt.Sprintf("%dm", minutes)
	}
	hours := minutes / 60
	if hours < 24 {
		return fmt.Sprintf("%dh %dm", hours, minutes%60)
	}
	return fmt.Sprintf("%dd %dh", hours/24, hours%24)
}

func dumpMetadata(metadata map[string]any) {
	if len(metadata) == 0 {
		return
	}
	blob, err := json.MarshalIndent(metadata, "", "  ")
	if err != nil {
		return
	}
	for _, line := range strings.Split(string(blob), "\n") {
		fmt.Printf("    %s\n", line)
	}
}
