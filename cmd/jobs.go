// ABOUTME: Job commands for the nextstep CLI
// ABOUTME: feed, save, apply, saved and unsave through the feed store

package cmd

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/ParthhMahajann/Nextstep-AI/internal/client"
)

var feedLimit int

var feedCmd = &cobra.Command{
	Use:   "feed",
	Short: "List recommended jobs",
	Run: func(cmd *cobra.Command, args []string) {
		runWithSignals(runFeed)
	},
}

var saveCmd = &cobra.Command{
	Use:   "save <job-id>",
	Short: "Save a job for later",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		runWithSignals(func(ctx context.Context, w io.Writer) int {
			return runTag(ctx, w, args[0], client.StatusSaved)
		})
	},
}

var applyCmd = &cobra.Command{
	Use:   "apply <job-id>",
	Short: "Mark a job as applied",
	Long:  `Mark a job as applied. A job that is already saved moves to the applied list.`,
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		runWithSignals(func(ctx context.Context, w io.Writer) int {
			return runTag(ctx, w, args[0], client.StatusApplied)
		})
	},
}

var savedCmd = &cobra.Command{
	Use:   "saved",
	Short: "List saved and applied jobs",
	Run: func(cmd *cobra.Command, args []string) {
		runWithSignals(runSaved)
	},
}

var unsaveCmd = &cobra.Command{
	Use:   "unsave <saved-id>",
	Short: "Remove a saved or applied entry",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		runWithSignals(func(ctx context.Context, w io.Writer) int {
			return runUnsave(ctx, w, args[0])
		})
	},
}

func init() {
	rootCmd.AddCommand(feedCmd, saveCmd, applyCmd, savedCmd, unsaveCmd)
	feedCmd.Flags().IntVar(&feedLimit, "limit", 10, "Maximum number of jobs to show (0 for all)")
}

// runFeed prints the recommended jobs
func runFeed(ctx context.Context, w io.Writer) int {
	if feedLimit < 0 {
		fmt.Fprintln(w, "Error: --limit must not be negative")
		return 2
	}

	e, err := setup()
	if err != nil {
		printError(w, err)
		return 2
	}
	if err := e.requireLogin(); err != nil {
		printError(w, err)
		return 2
	}

	if err := e.jobs.FetchRecommended(ctx); err != nil {
		printError(w, err)
		return 2
	}

	jobs := e.jobs.Jobs()
	total := len(jobs)
	if feedLimit > 0 && len(jobs) > feedLimit {
		jobs = jobs[:feedLimit]
	}

	if IsJSONOutput() {
		writeJSON(w, jobs)
	} else {
		fmt.Fprintln(w, formatFeedHuman(jobs, total))
	}
	return 0
}

func formatFeedHuman(jobs []client.Job, total int) string {
	if total == 0 {
		return "No recommendations yet. Analyze a resume or add skills to your profile."
	}

	var sb strings.Builder
	for _, j := range jobs {
		fmt.Fprintf(&sb, "#%-6d %5s  %s\n", j.ID, matchText(j.MatchPercent()), j.Title)
		details := []string{j.Company}
		if j.Location != "" {
			details = append(details, j.Location)
		}
		if j.JobType != "" {
			details = append(details, j.JobType)
		}
		fmt.Fprintf(&sb, "%15s%s\n", "", strings.Join(details, " · "))
	}
	fmt.Fprintf(&sb, "\nShowing %d of %d jobs", len(jobs), total)
	return sb.String()
}

// runTag saves or applies to a job by id
func runTag(ctx context.Context, w io.Writer, arg string, status client.JobStatus) int {
	jobID, err := parseID("job", arg)
	if err != nil {
		printError(w, err)
		return 2
	}

	e, err := setup()
	if err != nil {
		printError(w, err)
		return 2
	}
	if err := e.requireLogin(); err != nil {
		printError(w, err)
		return 2
	}

	// The saved list is loaded first so repeat saves and saved-then-applied
	// jobs take the same paths they take in the TUI
	if err := e.jobs.FetchSaved(ctx); err != nil {
		printError(w, err)
		return 2
	}

	before, known := e.jobs.StatusOf(jobID)
	job := client.Job{ID: jobID}
	if status == client.StatusApplied {
		err = e.jobs.Apply(ctx, job)
	} else {
		err = e.jobs.Save(ctx, job)
	}
	if err != nil {
		printError(w, err)
		return 2
	}

	entry, _ := findEntry(e.jobs.Saved(), e.jobs.Applied(), jobID)
	if IsJSONOutput() {
		writeJSON(w, entry)
		return 0
	}

	fmt.Fprintln(w, tagMessage(status, before, known, describeJob(entry.Job, jobID)))
	return 0
}

// tagMessage reports what a save or apply actually did. Saving a job
// that is already applied leaves it applied.
func tagMessage(want, before client.JobStatus, known bool, label string) string {
	switch {
	case known && before == client.StatusApplied:
		return "Already applied to " + label
	case known && want == client.StatusSaved:
		return "Already saved " + label
	case want == client.StatusApplied:
		return "Applied to " + label
	default:
		return "Saved " + label
	}
}

// runSaved prints both collections
func runSaved(ctx context.Context, w io.Writer) int {
	e, err := setup()
	if err != nil {
		printError(w, err)
		return 2
	}
	if err := e.requireLogin(); err != nil {
		printError(w, err)
		return 2
	}

	if err := e.jobs.FetchSaved(ctx); err != nil {
		printError(w, err)
		return 2
	}

	saved, applied := e.jobs.Saved(), e.jobs.Applied()
	if IsJSONOutput() {
		writeJSON(w, map[string][]client.SavedJob{"saved": saved, "applied": applied})
	} else {
		fmt.Fprintln(w, formatSavedHuman(saved, applied))
	}
	return 0
}

func formatSavedHuman(saved, applied []client.SavedJob) string {
	var sb strings.Builder
	section := func(title, verb string, entries []client.SavedJob) {
		fmt.Fprintf(&sb, "%s (%d)\n", title, len(entries))
		if len(entries) == 0 {
			sb.WriteString("  none\n")
		}
		for _, sj := range entries {
			when := sj.SavedAt
			if sj.AppliedAt != nil {
				when = *sj.AppliedAt
			}
			line := fmt.Sprintf("  #%-6d %s", sj.ID, describeJob(sj.Job, sj.Job.ID))
			if !when.IsZero() {
				line += fmt.Sprintf("  (%s %s)", verb, humanize.Time(when))
			}
			sb.WriteString(line + "\n")
		}
	}
	section("Saved", "saved", saved)
	sb.WriteString("\n")
	section("Applied", "applied", applied)
	return strings.TrimRight(sb.String(), "\n")
}

// runUnsave deletes a saved or applied entry
func runUnsave(ctx context.Context, w io.Writer, arg string) int {
	savedID, err := parseID("saved job", arg)
	if err != nil {
		printError(w, err)
		return 2
	}

	e, err := setup()
	if err != nil {
		printError(w, err)
		return 2
	}
	if err := e.requireLogin(); err != nil {
		printError(w, err)
		return 2
	}

	if err := e.jobs.FetchSaved(ctx); err != nil {
		printError(w, err)
		return 2
	}
	if err := e.jobs.Remove(ctx, savedID); err != nil {
		printError(w, err)
		return 2
	}

	if IsJSONOutput() {
		writeJSON(w, map[string]int64{"removed": savedID})
	} else {
		fmt.Fprintf(w, "Removed #%d\n", savedID)
	}
	return 0
}

func findEntry(saved, applied []client.SavedJob, jobID int64) (client.SavedJob, bool) {
	for _, coll := range [][]client.SavedJob{applied, saved} {
		for _, sj := range coll {
			if sj.Job.ID == jobID {
				return sj, true
			}
		}
	}
	return client.SavedJob{}, false
}

func describeJob(job client.Job, id int64) string {
	label := fmt.Sprintf("job #%d", id)
	switch {
	case job.Title != "" && job.Company != "":
		label += " " + job.Title + " at " + job.Company
	case job.Title != "":
		label += " " + job.Title
	}
	return label
}
