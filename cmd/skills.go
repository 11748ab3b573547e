// ABOUTME: Skill commands for the nextstep CLI
// ABOUTME: List, search, add and remove the profile skills recommendations are matched on

package cmd

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/cockroachdb/errors"
	"github.com/spf13/cobra"

	"github.com/ParthhMahajann/Nextstep-AI/internal/client"
)

var (
	skillLevel string
	skillYears float64
)

var skillsCmd = &cobra.Command{
	Use:   "skills",
	Short: "List the skills on your profile",
	Long: `List the skills on your profile. Recommendations and match scores are
computed from these, so keep them current.`,
	Run: func(cmd *cobra.Command, args []string) {
		runWithSignals(runSkills)
	},
}

var skillsSearchCmd = &cobra.Command{
	Use:   "search [term]",
	Short: "Search the skill catalog",
	Args:  cobra.MaximumNArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		term := ""
		if len(args) == 1 {
			term = args[0]
		}
		runWithSignals(func(ctx context.Context, w io.Writer) int {
			return runSkillSearch(ctx, w, term)
		})
	},
}

var skillsAddCmd = &cobra.Command{
	Use:   "add <skill-id>",
	Short: "Add a catalog skill to your profile",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		runWithSignals(func(ctx context.Context, w io.Writer) int {
			return runSkillAdd(ctx, w, args[0])
		})
	},
}

var skillsRemoveCmd = &cobra.Command{
	Use:   "remove <user-skill-id>",
	Short: "Remove a skill from your profile",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		runWithSignals(func(ctx context.Context, w io.Writer) int {
			return runSkillRemove(ctx, w, args[0])
		})
	},
}

func init() {
	rootCmd.AddCommand(skillsCmd)
	skillsCmd.AddCommand(skillsSearchCmd, skillsAddCmd, skillsRemoveCmd)

	skillsAddCmd.Flags().StringVar(&skillLevel, "level", "intermediate",
		"Proficiency: beginner, intermediate, advanced, expert (or 1-4)")
	skillsAddCmd.Flags().Float64Var(&skillYears, "years", 0, "Years of experience")
}

// loggedIn builds the environment and checks for a stored session
func loggedIn(w io.Writer) (*env, bool) {
	e, err := setup()
	if err != nil {
		printError(w, err)
		return nil, false
	}
	if err := e.requireLogin(); err != nil {
		printError(w, err)
		return nil, false
	}
	return e, true
}

// runSkills prints the profile skills
func runSkills(ctx context.Context, w io.Writer) int {
	e, ok := loggedIn(w)
	if !ok {
		return 2
	}

	skills, err := e.client.UserSkills(ctx)
	if err != nil {
		printError(w, err)
		return 2
	}

	if IsJSONOutput() {
		writeJSON(w, skills)
	} else {
		fmt.Fprintln(w, formatUserSkillsHuman(skills))
	}
	return 0
}

func formatUserSkillsHuman(skills []client.UserSkill) string {
	if len(skills) == 0 {
		return "No skills yet. Find some with `nextstep skills search` and add them."
	}
	var sb strings.Builder
	for _, us := range skills {
		fmt.Fprintf(&sb, "#%-6d %-24s %s", us.ID, us.Skill.Name, us.Level())
		if us.YearsExperience > 0 {
			fmt.Fprintf(&sb, ", %g yrs", us.YearsExperience)
		}
		sb.WriteString("\n")
	}
	fmt.Fprintf(&sb, "\n%d skills", len(skills))
	return sb.String()
}

// runSkillSearch prints catalog skills matching term
func runSkillSearch(ctx context.Context, w io.Writer, term string) int {
	e, ok := loggedIn(w)
	if !ok {
		return 2
	}

	skills, err := e.client.Skills(ctx, term)
	if err != nil {
		printError(w, err)
		return 2
	}

	if IsJSONOutput() {
		writeJSON(w, skills)
		return 0
	}
	if len(skills) == 0 {
		fmt.Fprintf(w, "No skills match %q\n", term)
		return 0
	}
	for _, sk := range skills {
		line := fmt.Sprintf("#%-6d %s", sk.ID, sk.Name)
		if sk.Category != "" {
			line += " (" + sk.Category + ")"
		}
		fmt.Fprintln(w, line)
	}
	return 0
}

// runSkillAdd adds a catalog skill at the --level proficiency
func runSkillAdd(ctx context.Context, w io.Writer, arg string) int {
	skillID, err := parseID("skill", arg)
	if err != nil {
		printError(w, err)
		return 2
	}
	level, err := client.ParseProficiency(skillLevel)
	if err != nil {
		printError(w, errors.WithHint(err, "use beginner, intermediate, advanced or expert"))
		return 2
	}

	e, ok := loggedIn(w)
	if !ok {
		return 2
	}

	us, err := e.client.AddUserSkill(ctx, client.UserSkillInput{
		Skill:           skillID,
		Proficiency:     level,
		YearsExperience: skillYears,
	})
	if err != nil {
		printError(w, err)
		return 2
	}

	if IsJSONOutput() {
		writeJSON(w, us)
		return 0
	}
	name := us.Skill.Name
	if name == "" {
		name = fmt.Sprintf("skill #%d", skillID)
	}
	fmt.Fprintf(w, "Added %s (%s)\n", name, us.Level())
	return 0
}

// runSkillRemove deletes a profile skill by its user-skill id
func runSkillRemove(ctx context.Context, w io.Writer, arg string) int {
	id, err := parseID("user skill", arg)
	if err != nil {
		printError(w, err)
		return 2
	}

	e, ok := loggedIn(w)
	if !ok {
		return 2
	}

	if err := e.client.RemoveUserSkill(ctx, id); err != nil {
		printError(w, err)
		return 2
	}

	if IsJSONOutput() {
		writeJSON(w, map[string]int64{"removed": id})
	} else {
		fmt.Fprintf(w, "Removed skill #%d\n", id)
	}
	return 0
}
