package command

// root.go defines the root command for the storyhub CLI and the helpers every
// subcommand uses to reach the web API.

import (
	"errors"
	"os"
	"time"

	"storyhub/cmd/cli/authentication"
	"storyhub/cmd/cli/command/client"
	"storyhub/cmd/cli/dto"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

var apiURL string // Global flag for the web API URL

var errNotLoggedIn = errors.New("not logged in, please run 'storyhub auth login'")

var rootCmd = &cobra.Command{
	Use:   "storyhub",
	Short: "storyhub - interactive fiction from the command line",
	Long: `storyhub is a command line client for the storyhub web API. With it you can:
- Browse published stories and their ending statistics
- Play stories choice by choice and resume where you left off
- Write stories, pages and choices as an author
- Moderate reports and suspend stories as an admin

Use "storyhub [command] --help" to see all available commands.`,
	SilenceUsage: true,
}

// Execute adds all child commands to the root command and runs it.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		color.New(color.FgRed).Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

func init() {
	defaultURL := os.Getenv("STORYHUB_API_URL")
	if defaultURL == "" {
		defaultURL = "http://localhost:8000"
	}
	rootCmd.PersistentFlags().StringVar(&apiURL, "api", defaultURL, "web API URL (env STORYHUB_API_URL)")

	rootCmd.AddCommand(authCmd, storiesCmd, playCmd, authorCmd, adminCmd)
}

// newClient builds a client carrying the stored tokens, if any. With requireLogin set a
// missing login is an error.
func newClient(requireLogin bool) (*client.HTTPClient, error) {
	httpClient := client.NewHTTPClient(apiURL)

	creds, err := authentication.GetTokens()
	if err != nil {
		if requireLogin {
			return nil, errNotLoggedIn
		}
		return httpClient, nil
	}

	httpClient.SetToken(creds.AccessToken)
	httpClient.SetRefresh(creds.RefreshToken, func(pair *dto.AuthResponse) {
		_ = authentication.StoreTokens(credentialsFrom(pair))
	})
	return httpClient, nil
}

func credentialsFrom(pair *dto.AuthResponse) *authentication.StoredCredentials {
	return &authentication.StoredCredentials{
		AccessToken:  pair.AccessToken,
		RefreshToken: pair.RefreshToken,
		Username:     pair.User.Username,
		Role:         pair.User.Role,
		ExpiresAt:    time.Now().Add(time.Duration(pair.ExpiresIn) * time.Second).Unix(),
	}
}

var (
	success = color.New(color.FgGreen).SprintFunc()
	heading = color.New(color.FgCyan, color.Bold).SprintFunc()
	muted   = color.New(color.FgHiBlack).SprintFunc()
)
