// ABOUTME: Health command for the nextstep CLI
// ABOUTME: Checks backend connectivity by reading the API root

package cmd

import (
	"context"
	"fmt"
	"io"
	"slices"
	"strings"

	"github.com/spf13/cobra"

	"github.com/ParthhMahajann/Nextstep-AI/internal/client"
)

var healthCmd = &cobra.Command{
	Use:   "health",
	Short: "Check backend connectivity",
	Long:  `Check connectivity to the NextStep backend and list the API it reports.`,
	Run: func(cmd *cobra.Command, args []string) {
		runWithSignals(runHealth)
	},
}

func init() {
	rootCmd.AddCommand(healthCmd)
}

// runHealth executes the health check and returns exit code
func runHealth(ctx context.Context, w io.Writer) int {
	e, err := setup()
	if err != nil {
		printError(w, err)
		return 2
	}

	info, err := e.client.APIInfo(ctx)
	if err != nil {
		printError(w, err)
		return 2
	}

	url := e.cfg.APIURL
	if IsJSONOutput() {
		writeJSON(w, formatHealthJSON(url, info))
	} else {
		fmt.Fprintln(w, formatHealthHuman(url, info))
	}
	return 0
}

// formatHealthHuman formats the API root for human readability
func formatHealthHuman(url string, info *client.APIInfo) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "Backend:   %s\n", url)
	fmt.Fprintf(&sb, "Service:   %s %s\n", orUnknown(info.Name), info.Version)
	fmt.Fprintf(&sb, "Endpoints: %d", len(info.Endpoints))

	names := make([]string, 0, len(info.Endpoints))
	for name := range info.Endpoints {
		names = append(names, name)
	}
	slices.Sort(names)
	for _, name := range names {
		fmt.Fprintf(&sb, "\n  %-16s %s", name, info.Endpoints[name])
	}
	return sb.String()
}

// formatHealthJSON shapes the health response for --json
func formatHealthJSON(url string, info *client.APIInfo) map[string]any {
	return map[string]any{
		"backend":   url,
		"name":      info.Name,
		"version":   info.Version,
		"endpoints": info.Endpoints,
	}
}

func orUnknown(s string) string {
	if s == "" {
		return "unknown"
	}
	return s
}
