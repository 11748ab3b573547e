// ABOUTME: Assistant commands for the nextstep CLI
// ABOUTME: email drafts, cover letters, tips, resume analysis and the CI-style match check

package cmd

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/cockroachdb/errors"
	"github.com/spf13/cobra"

	"github.com/ParthhMahajann/Nextstep-AI/internal/client"
	"github.com/ParthhMahajann/Nextstep-AI/internal/resume"
)

var (
	emailTone string

	analyzeFile  string
	analyzeText  string
	analyzeJobID int64

	matchMin int
)

var emailCmd = &cobra.Command{
	Use:   "email <job-id>",
	Short: "Draft an outreach email for a job",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		runWithSignals(func(ctx context.Context, w io.Writer) int {
			return runEmail(ctx, w, args[0])
		})
	},
}

var coverLetterCmd = &cobra.Command{
	Use:   "cover-letter <job-id>",
	Short: "Write a cover letter for a job",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		runWithSignals(func(ctx context.Context, w io.Writer) int {
			return runWriteUp(ctx, w, args[0], coverLetter)
		})
	},
}

var tipsCmd = &cobra.Command{
	Use:   "tips <job-id>",
	Short: "Get application tips for a job",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		runWithSignals(func(ctx context.Context, w io.Writer) int {
			return runWriteUp(ctx, w, args[0], applicationTips)
		})
	},
}

var analyzeCmd = &cobra.Command{
	Use:   "analyze",
	Short: "Analyze a resume",
	Long: `Analyze a resume file (PDF, DOCX or TXT) or pasted text, optionally
against a job. Use --text - to read the text from stdin.`,
	Run: func(cmd *cobra.Command, args []string) {
		runWithSignals(func(ctx context.Context, w io.Writer) int {
			return runAnalyze(ctx, w, os.Stdin)
		})
	},
}

var matchCmd = &cobra.Command{
	Use:   "match <job-id>",
	Short: "Check your match score for a job",
	Long: `Show how well your profile matches a job and exit non-zero when the
score is below --min.

Exit codes:
  0 - Score at or above the minimum
  1 - Score below the minimum
  2 - Error (connectivity, not logged in, invalid input)`,
	Args: cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		runWithSignals(func(ctx context.Context, w io.Writer) int {
			return runMatch(ctx, w, args[0])
		})
	},
}

func init() {
	rootCmd.AddCommand(emailCmd, coverLetterCmd, tipsCmd, analyzeCmd, matchCmd)

	emailCmd.Flags().StringVar(&emailTone, "tone", "professional",
		"Email tone ("+strings.Join(client.EmailTones, ", ")+")")

	analyzeCmd.Flags().StringVar(&analyzeFile, "file", "", "Resume file to upload")
	analyzeCmd.Flags().StringVar(&analyzeText, "text", "", "Resume text, or - for stdin")
	analyzeCmd.Flags().Int64Var(&analyzeJobID, "job-id", 0, "Job to analyze the resume against")
	analyzeCmd.MarkFlagsMutuallyExclusive("file", "text")
	analyzeCmd.MarkFlagsOneRequired("file", "text")

	matchCmd.Flags().IntVar(&matchMin, "min", 0, "Minimum acceptable match percentage")
}

// runEmail drafts an email for a job
func runEmail(ctx context.Context, w io.Writer, arg string) int {
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

	draft, err := e.client.GenerateEmail(ctx, client.EmailRequest{JobID: jobID, Tone: emailTone})
	if err != nil {
		printError(w, err)
		return 2
	}

	if IsJSONOutput() {
		writeJSON(w, draft)
	} else {
		fmt.Fprintf(w, "Subject: %s\n\n%s\n", draft.Subject, draft.Body)
	}
	return 0
}

// writeUp is a generated text about one job
type writeUp struct {
	key      string
	generate func(c *client.Client, ctx context.Context, ref client.JobRef) (string, error)
}

var (
	coverLetter     = writeUp{"cover_letter", (*client.Client).CoverLetter}
	applicationTips = writeUp{"tips", (*client.Client).ApplicationTips}
)

// runWriteUp prints a cover letter or tips for a job
func runWriteUp(ctx context.Context, w io.Writer, arg string, kind writeUp) int {
	jobID, err := parseID("job", arg)
	if err != nil {
		printError(w, err)
		return 2
	}

	e, ok := loggedIn(w)
	if !ok {
		return 2
	}

	text, err := kind.generate(e.client, ctx, client.JobRef{JobID: jobID})
	if err != nil {
		printError(w, err)
		return 2
	}

	if IsJSONOutput() {
		writeJSON(w, map[string]any{"job_id": jobID, kind.key: text})
	} else {
		fmt.Fprintln(w, strings.TrimSpace(text))
	}
	return 0
}

// runAnalyze uploads a resume file or text and prints the feedback
func runAnalyze(ctx context.Context, w io.Writer, stdin io.Reader) int {
	if (analyzeFile == "") == (analyzeText == "") {
		fmt.Fprintln(w, "Error: exactly one of --file or --text is required")
		return 2
	}
	if analyzeJobID < 0 {
		fmt.Fprintln(w, "Error: --job-id must not be negative")
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

	var (
		result *client.ResumeAnalysis
		source string
	)
	if analyzeFile != "" {
		file, err := resume.ReadFile(analyzeFile, e.cfg.MaxResumeBytes)
		if err != nil {
			printError(w, err)
			return 2
		}
		if err := resume.NewRecent(e.cfg.ConfigDir).Add(analyzeFile); err != nil {
			slog.Warn("Failed to record recent resume", "path", analyzeFile, "error", err)
		}
		source = file.Name
		result, err = e.client.AnalyzeResumeFile(ctx, file, analyzeJobID)
		if err != nil {
			printError(w, err)
			return 2
		}
	} else {
		text, err := readText(analyzeText, stdin)
		if err != nil {
			printError(w, err)
			return 2
		}
		source = "pasted text"
		result, err = e.client.AnalyzeResumeText(ctx, text, analyzeJobID)
		if err != nil {
			printError(w, err)
			return 2
		}
	}

	if IsJSONOutput() {
		writeJSON(w, result)
	} else {
		fmt.Fprintln(w, formatAnalysisHuman(source, result))
	}
	return 0
}

func readText(arg string, stdin io.Reader) (string, error) {
	if arg != "-" {
		return resume.ValidateText(arg)
	}
	data, err := io.ReadAll(stdin)
	if err != nil {
		return "", errors.Wrap(err, "failed to read resume text from stdin")
	}
	return resume.ValidateText(string(data))
}

func formatAnalysisHuman(source string, a *client.ResumeAnalysis) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "Resume analysis (%s)\n", source)
	if a.MatchScore != nil {
		fmt.Fprintf(&sb, "Match: %.0f%%\n", *a.MatchScore*100)
	}

	list := func(title, marker string, items []string) {
		if len(items) == 0 {
			return
		}
		fmt.Fprintf(&sb, "\n%s:\n", title)
		for _, item := range items {
			fmt.Fprintf(&sb, "  %s %s\n", marker, item)
		}
	}
	list("Strengths", "+", a.Strengths)
	list("Improvements", "-", a.Improvements)

	if len(a.KeywordsFound)+len(a.KeywordsMissing) > 0 {
		sb.WriteString("\n")
		fmt.Fprintf(&sb, "Keywords found:   %s\n", joinOrNone(a.KeywordsFound))
		fmt.Fprintf(&sb, "Keywords missing: %s\n", joinOrNone(a.KeywordsMissing))
	}
	if a.Suggestions != "" {
		fmt.Fprintf(&sb, "\nSuggestions:\n%s\n", a.Suggestions)
	}
	return strings.TrimRight(sb.String(), "\n")
}

// runMatch prints the match breakdown and returns 1 below the minimum
func runMatch(ctx context.Context, w io.Writer, arg string) int {
	if matchMin < 0 || matchMin > 100 {
		fmt.Fprintln(w, "Error: --min must be between 0 and 100")
		return 2
	}
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

	score, err := e.client.MatchScore(ctx, jobID)
	if err != nil {
		printError(w, err)
		return 2
	}

	percent := score.MatchScore * 100
	passed := percent >= float64(matchMin)

	if IsJSONOutput() {
		writeJSON(w, map[string]any{
			"job_id":         score.JobID,
			"match_percent":  percent,
			"min":            matchMin,
			"passed":         passed,
			"matched_skills": score.MatchedSkills,
			"missing_skills": score.MissingSkills,
		})
	} else {
		fmt.Fprintln(w, formatMatchHuman(score, percent, passed))
	}

	if !passed {
		return 1
	}
	return 0
}

func formatMatchHuman(score *client.MatchScore, percent float64, passed bool) string {
	symbol := "✓"
	if !passed {
		symbol = "✗"
	}
	var sb strings.Builder
	fmt.Fprintf(&sb, "%s Match for job #%d: %.0f%% (minimum: %d%%)\n", symbol, score.JobID, percent, matchMin)
	fmt.Fprintf(&sb, "Matched skills: %s\n", joinOrNone(score.MatchedSkills))
	fmt.Fprintf(&sb, "Missing skills: %s", joinOrNone(score.MissingSkills))
	if score.Explanation != "" {
		fmt.Fprintf(&sb, "\n\n%s", score.Explanation)
	}
	return sb.String()
}

func joinOrNone(items []string) string {
	if len(items) == 0 {
		return "none"
	}
	return strings.Join(items, ", ")
}
