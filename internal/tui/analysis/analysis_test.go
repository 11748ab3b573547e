// ABOUTME: Tests for the resume analysis view
// ABOUTME: Validates strengths, improvements, keywords and match score display

package analysis

import (
	"strings"
	"testing"

	"github.com/ParthhMahajann/Nextstep-AI/internal/client"
)

func TestAnalysisView(t *testing.T) {
	score := 0.72
	result := &client.ResumeAnalysis{
		Strengths:       []string{"Clear project impact"},
		Improvements:    []string{"Quantify results"},
		KeywordsFound:   []string{"Go", "Kubernetes"},
		KeywordsMissing: []string{"Terraform"},
		Suggestions:     "Lead with your platform work.",
		MatchScore:      &score,
	}

	view := New(result, "resume.pdf", 100).View()

	tests := []string{
		"Resume Analysis",
		"resume.pdf",
		"Strengths",
		"Clear project impact",
		"Improvements",
		"Quantify results",
		"Keywords found (2)",
		"Kubernetes",
		"Keywords missing (1)",
		"Terraform",
		"Lead with your platform work.",
		"72%",
	}
	for _, expected := range tests {
		if !strings.Contains(view, expected) {
			t.Errorf("expected view to contain %q\nView:\n%s", expected, view)
		}
	}
}

func TestAnalysisViewNilResult(t *testing.T) {
	view := New(nil, "", 80).View()

	if !strings.Contains(view, "No analysis data") {
		t.Error("expected view to show 'No analysis data' for nil result")
	}
}

func TestAnalysisViewWithoutScore(t *testing.T) {
	result := &client.ResumeAnalysis{Strengths: []string{"Concise"}}

	view := New(result, "pasted text", 80).View()

	if strings.Contains(view, "Job match") {
		t.Error("expected no match bar without a score")
	}
	if !strings.Contains(view, "none") {
		t.Error("expected empty sections to read 'none'")
	}
}

func TestSideBySidePadsLeftColumn(t *testing.T) {
	out := sideBySide("a\nbb\n", "x\n", 5)
	lines := strings.Split(strings.TrimRight(out, "\n"), "\n")

	if len(lines) != 2 {
		t.Fatalf("expected 2 lines, got %d", len(lines))
	}
	if lines[0] != "a      x" {
		t.Errorf("unexpected first line %q", lines[0])
	}
	if lines[1] != "bb     " {
		t.Errorf("unexpected second line %q", lines[1])
	}
}
