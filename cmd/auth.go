// ABOUTME: Account commands for the nextstep CLI
// ABOUTME: login, register, logout and whoami against the session store

package cmd

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/charmbracelet/huh"
	"github.com/cockroachdb/errors"
	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/ParthhMahajann/Nextstep-AI/internal/client"
	"github.com/ParthhMahajann/Nextstep-AI/internal/session"
	"github.com/ParthhMahajann/Nextstep-AI/internal/tui/styles"
)

var (
	loginUsername string
	passwordStdin bool

	registerInput client.RegisterInput
)

var loginCmd = &cobra.Command{
	Use:   "login",
	Short: "Log in and store the session",
	Long: `Log in with a username or email. The password is prompted for unless
--password-stdin is given.`,
	Run: func(cmd *cobra.Command, args []string) {
		identifier, secret, err := readLogin(os.Stdin)
		if err != nil {
			printError(os.Stdout, err)
			os.Exit(2)
		}
		runWithSignals(func(ctx context.Context, w io.Writer) int {
			return runLogin(ctx, w, identifier, secret)
		})
	},
}

var registerCmd = &cobra.Command{
	Use:   "register",
	Short: "Create an account and log in",
	Run: func(cmd *cobra.Command, args []string) {
		input, err := readRegistration(os.Stdin)
		if err != nil {
			printError(os.Stdout, err)
			os.Exit(2)
		}
		runWithSignals(func(ctx context.Context, w io.Writer) int {
			return runRegister(ctx, w, input)
		})
	},
}

var logoutCmd = &cobra.Command{
	Use:   "logout",
	Short: "Forget the stored session",
	Run: func(cmd *cobra.Command, args []string) {
		if code := runLogout(os.Stdout); code != 0 {
			os.Exit(code)
		}
	},
}

var whoamiCmd = &cobra.Command{
	Use:   "whoami",
	Short: "Show the logged in user and profile",
	Run: func(cmd *cobra.Command, args []string) {
		runWithSignals(runWhoami)
	},
}

func init() {
	rootCmd.AddCommand(loginCmd, registerCmd, logoutCmd, whoamiCmd)

	loginCmd.Flags().StringVarP(&loginUsername, "username", "u", "", "Username or email")
	loginCmd.Flags().BoolVar(&passwordStdin, "password-stdin", false, "Read the password from stdin")

	registerCmd.Flags().StringVarP(&registerInput.Username, "username", "u", "", "Username")
	registerCmd.Flags().StringVar(&registerInput.Email, "email", "", "Email address")
	registerCmd.Flags().StringVar(&registerInput.FirstName, "first-name", "", "First name")
	registerCmd.Flags().StringVar(&registerInput.LastName, "last-name", "", "Last name")
	registerCmd.Flags().BoolVar(&passwordStdin, "password-stdin", false, "Read the password from stdin")
}

// runLogin exchanges credentials for a stored session
func runLogin(ctx context.Context, w io.Writer, identifier, secret string) int {
	e, err := setup()
	if err != nil {
		printError(w, err)
		return 2
	}

	if err := e.session.Login(ctx, identifier, secret); err != nil {
		printError(w, err)
		return 2
	}

	snap := e.session.Snapshot()
	if IsJSONOutput() {
		writeJSON(w, snap.User)
	} else {
		fmt.Fprintf(w, "Logged in as %s\n", describeUser(snap.User))
	}
	return 0
}

// runRegister creates the account and logs in with it
func runRegister(ctx context.Context, w io.Writer, input client.RegisterInput) int {
	e, err := setup()
	if err != nil {
		printError(w, err)
		return 2
	}

	if err := e.session.Register(ctx, input); err != nil {
		printError(w, err)
		return 2
	}

	snap := e.session.Snapshot()
	if IsJSONOutput() {
		writeJSON(w, snap.User)
	} else {
		fmt.Fprintf(w, "Created account %s and logged in\n", describeUser(snap.User))
	}
	return 0
}

// runLogout clears the stored session. No server call is made.
func runLogout(w io.Writer) int {
	e, err := setup()
	if err != nil {
		printError(w, err)
		return 2
	}

	e.session.Logout()
	if IsJSONOutput() {
		writeJSON(w, map[string]bool{"logged_out": true})
	} else {
		fmt.Fprintln(w, "Logged out")
	}
	return 0
}

// runWhoami verifies the stored session and prints the account
func runWhoami(ctx context.Context, w io.Writer) int {
	e, err := setup()
	if err != nil {
		printError(w, err)
		return 2
	}
	if err := e.requireLogin(); err != nil {
		printError(w, err)
		return 2
	}

	if err := e.session.FetchUser(ctx); err != nil {
		printError(w, err)
		return 2
	}

	snap := e.session.Snapshot()
	if IsJSONOutput() {
		writeJSON(w, map[string]any{"user": snap.User, "profile": snap.Profile})
	} else {
		fmt.Fprintln(w, formatWhoami(snap))
	}
	return 0
}

func formatWhoami(snap session.Snapshot) string {
	var sb strings.Builder
	u := snap.User
	fmt.Fprintf(&sb, "Username: %s\n", u.Username)
	if name := u.DisplayName(); name != "" && name != u.Username {
		fmt.Fprintf(&sb, "Name:     %s\n", name)
	}
	if u.Email != "" {
		fmt.Fprintf(&sb, "Email:    %s\n", u.Email)
	}
	if !u.DateJoined.IsZero() {
		fmt.Fprintf(&sb, "Joined:   %s\n", humanize.Time(u.DateJoined))
	}

	if p := snap.Profile; p != nil {
		names := make([]string, 0, len(p.Skills))
		for _, s := range p.Skills {
			names = append(names, s.Skill.Name)
		}
		skills := "none listed"
		if len(names) > 0 {
			skills = strings.Join(names, ", ")
		}
		fmt.Fprintf(&sb, "Skills:   %s", skills)
		if p.ResumeText != "" {
			fmt.Fprintf(&sb, "\nResume:   %s of text on file", humanize.Bytes(uint64(len(p.ResumeText))))
		}
	}
	return strings.TrimRight(sb.String(), "\n")
}

func describeUser(u *client.User) string {
	if u == nil {
		return "unknown user"
	}
	if name := u.DisplayName(); name != "" && name != u.Username {
		return fmt.Sprintf("%s (%s)", u.Username, name)
	}
	return u.Username
}

// readLogin gathers the identifier and password from flags, stdin or a prompt
func readLogin(stdin io.Reader) (string, string, error) {
	identifier := strings.TrimSpace(loginUsername)
	if passwordStdin {
		if identifier == "" {
			return "", "", errors.New("--username is required with --password-stdin")
		}
		secret, err := readSecret(stdin)
		return identifier, secret, err
	}

	var secret string
	var fields []huh.Field
	if identifier == "" {
		fields = append(fields, huh.NewInput().
			Title("Username or email").
			Value(&identifier).
			Validate(required("username")))
	}
	fields = append(fields, huh.NewInput().
		Title("Password").
		EchoMode(huh.EchoModePassword).
		Value(&secret).
		Validate(required("password")))

	if err := huh.NewForm(huh.NewGroup(fields...)).WithTheme(styles.FormTheme()).Run(); err != nil {
		return "", "", errors.Wrap(err, "login cancelled")
	}
	return strings.TrimSpace(identifier), secret, nil
}

// readRegistration fills the fields flags left empty
func readRegistration(stdin io.Reader) (client.RegisterInput, error) {
	input := registerInput
	if passwordStdin {
		secret, err := readSecret(stdin)
		if err != nil {
			return input, err
		}
		input.Password, input.PasswordConfirm = secret, secret
		return input, session.ValidateRegistration(input)
	}

	var fields []huh.Field
	if input.Username == "" {
		fields = append(fields, huh.NewInput().Title("Username").Value(&input.Username).Validate(required("username")))
	}
	if input.Email == "" {
		fields = append(fields, huh.NewInput().Title("Email").Value(&input.Email).Validate(required("email")))
	}
	fields = append(fields,
		huh.NewInput().Title("Password").EchoMode(huh.EchoModePassword).Value(&input.Password).Validate(required("password")),
		huh.NewInput().Title("Confirm password").EchoMode(huh.EchoModePassword).Value(&input.PasswordConfirm).Validate(required("password confirmation")),
	)

	if err := huh.NewForm(huh.NewGroup(fields...)).WithTheme(styles.FormTheme()).Run(); err != nil {
		return input, errors.Wrap(err, "registration cancelled")
	}
	return input, session.ValidateRegistration(input)
}

// readSecret reads the first line of r
func readSecret(r io.Reader) (string, error) {
	scanner := bufio.NewScanner(r)
	if !scanner.Scan() {
		if err := scanner.Err(); err != nil {
			return "", errors.Wrap(err, "failed to read password")
		}
		return "", errors.New("no password on stdin")
	}
	secret := strings.TrimRight(scanner.Text(), "\r")
	if secret == "" {
		return "", errors.New("password must not be empty")
	}
	return secret, nil
}

func required(field string) func(string) error {
	return func(s string) error {
		if strings.TrimSpace(s) == "" {
			return errors.Newf("%s is required", field)
		}
		return nil
	}
}
