package cli

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/surekeys/rentals/internal/client"
)

func newLoginCmd() *cobra.Command {
	var server, email string

	cmd := &cobra.Command{
		Use:   "login",
		Short: "Log in and store a token",
		Long:  "Log in with a verified account's email and password. The password is read from stdin.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runLogin(server, email, os.Stdin)
		},
	}

	cmd.Flags().StringVar(&server, "server", "", "server URL (default: from config or http://localhost:8080)")
	cmd.Flags().StringVar(&email, "email", "", "account email (default: last used)")

	return cmd
}

func runLogin(serverFlag, emailFlag string, in io.Reader) error {
	cfg, err := loadConfig()
	if err != nil {
		cfg = CLIConfig{}
	}

	serverURL := serverFlag
	if serverURL == "" {
		serverURL = getServerURL()
	}

	reader := bufio.NewReader(in)
	email := emailFlag
	if email == "" {
		email = cfg.Email
	}
	if email == "" {
		fmt.Print("Email: ")
		if email, err = readLine(reader); err != nil {
			return err
		}
	}

	fmt.Print("Password: ")
	password, err := readLine(reader)
	if err != nil {
		return err
	}
	if err := validateCredentials(email, password); err != nil {
		return err
	}

	resp, err := client.New(serverURL, "").Login(email, password)
	if err != nil {
		return err
	}

	cfg.Token = resp.Token
	cfg.Email = resp.User.Email
	if serverFlag != "" {
		cfg.ServerURL = serverFlag
	}
	if err := saveConfig(cfg); err != nil {
		return fmt.Errorf("saving config: %w", err)
	}

	fmt.Printf("✓ Logged in as %s (%s)\n", resp.User.Email, resp.User.Role)
	return nil
}

func readLine(r *bufio.Reader) (string, error) {
	line, err := r.ReadString('\n')
	if err != nil && (err != io.EOF || line == "") {
		return "", fmt.Errorf("reading input: %w", err)
	}
	return strings.TrimSpace(line), nil
}

// validateCredentials checks that both credentials were supplied.
func validateCredentials(email, password string) error {
	if strings.TrimSpace(email) == "" {
		return fmt.Errorf("no email provided")
	}
	if !strings.Contains(email, "@") {
		return fmt.Errorf("invalid email %q", email)
	}
	if password == "" {
		return fmt.Errorf("no password provided")
	}
	return nil
}
