// ABOUTME: CLI commands for the remote account: register, login, logout, and token status.
// ABOUTME: Tokens are kept in the config file.
package main

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/fatih/color"
	"github.com/harperreed/kcal/internal/api"
	"github.com/spf13/cobra"
)

// EnvPassword supplies the account password non-interactively.
const EnvPassword = "KCAL_PASSWORD"

var (
	authPassword string
	registerName string
)

var registerCmd = &cobra.Command{
	Use:   "register <email>",
	Short: "Create an account on the API service and log in",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		email := args[0]
		password, err := resolvePassword(os.Stdin)
		if err != nil {
			return err
		}

		user, err := apiClient.Register(cmd.Context(), email, password, registerName)
		if err != nil {
			return remoteError("registration failed", err)
		}
		color.Green("✓ Registered %s", user.Email)

		return login(cmd, user.Email, password)
	},
}

var loginCmd = &cobra.Command{
	Use:   "login <email>",
	Short: "Log in to the API service",
	Long: `Log in to the API service and save the access token.

The password is read from --password, then KCAL_PASSWORD, then stdin.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		password, err := resolvePassword(os.Stdin)
		if err != nil {
			return err
		}
		return login(cmd, args[0], password)
	},
}

var logoutCmd = &cobra.Command{
	Use:   "logout",
	Short: "Forget the saved tokens",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg.ClearToken()
		if err := cfg.Save(); err != nil {
			return fmt.Errorf("failed to save config: %w", err)
		}
		color.Yellow("✗ Logged out")
		return nil
	},
}

var authCmd = &cobra.Command{
	Use:   "auth",
	Short: "Inspect and refresh saved credentials",
}

var authStatusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show login state and token expiry",
	RunE: func(cmd *cobra.Command, args []string) error {
		fmt.Printf("Server: %s\n", apiClient.BaseURL())
		if cfg.AccessToken == "" {
			fmt.Println("Not logged in.")
			return nil
		}
		if cfg.Email != "" {
			fmt.Printf("Account: %s\n", cfg.Email)
		}

		exp, err := api.TokenExpiry(cfg.AccessToken)
		if err != nil {
			fmt.Println("Token: saved (expiry unknown)")
			return nil
		}
		fmt.Println(describeExpiry(exp, time.Now()))
		return nil
	},
}

var authRefreshCmd = &cobra.Command{
	Use:   "refresh",
	Short: "Exchange the refresh token for a new access token",
	RunE: func(cmd *cobra.Command, args []string) error {
		tok, err := apiClient.RefreshToken(cmd.Context())
		if err != nil {
			return remoteError("refresh failed", err)
		}
		cfg.SetToken("", *tok)
		if err := cfg.Save(); err != nil {
			return fmt.Errorf("failed to save config: %w", err)
		}
		color.Green("✓ Token refreshed")
		return nil
	},
}

func login(cmd *cobra.Command, email, password string) error {
	tok, err := apiClient.Login(cmd.Context(), email, password)
	if err != nil {
		return remoteError("login failed", err)
	}
	cfg.SetToken(email, *tok)
	if err := cfg.Save(); err != nil {
		return fmt.Errorf("failed to save config: %w", err)
	}
	color.Green("✓ Logged in as %s", email)
	return nil
}

// resolvePassword returns the --password flag, then KCAL_PASSWORD, then a line from r.
func resolvePassword(r io.Reader) (string, error) {
	if authPassword != "" {
		return authPassword, nil
	}
	if v := os.Getenv(EnvPassword); v != "" {
		return v, nil
	}

	fmt.Print("Password: ")
	line, err := bufio.NewReader(r).ReadString('\n')
	if err != nil && line == "" {
		return "", fmt.Errorf("failed to read password: %w", err)
	}
	password := strings.TrimRight(line, "\r\n")
	if password == "" {
		return "", fmt.Errorf("password is required")
	}
	return password, nil
}

func describeExpiry(exp, now time.Time) string {
	if !exp.After(now) {
		return fmt.Sprintf("Token: expired at %s (run 'kcal auth refresh')", exp.Local().Format("2006-01-02 15:04"))
	}
	return fmt.Sprintf("Token: valid for %s", exp.Sub(now).Round(time.Minute))
}

func init() {
	loginCmd.Flags().StringVar(&authPassword, "password", "", "account password")
	registerCmd.Flags().StringVar(&authPassword, "password", "", "account password")
	registerCmd.Flags().StringVar(&registerName, "name", "", "full name")

	authCmd.AddCommand(authStatusCmd)
	authCmd.AddCommand(authRefreshCmd)
	rootCmd.AddCommand(registerCmd)
	rootCmd.AddCommand(loginCmd)
	rootCmd.AddCommand(logoutCmd)
	rootCmd.AddCommand(authCmd)
}
