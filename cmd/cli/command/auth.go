package command

import (
	"fmt"

	"storyhub/cmd/cli/authentication"
	"storyhub/cmd/cli/command/client"
	"storyhub/cmd/cli/dto"

	"github.com/spf13/cobra"
)

// authCmd groups account commands
var authCmd = &cobra.Command{
	Use:   "auth",
	Short: "Authentication commands",
	Long:  `Register, log in and out of the storyhub web API. Tokens are kept in the OS keyring.`,
}

var registerCmd = &cobra.Command{
	Use:   "register",
	Short: "Register a new storyhub account",
	RunE: func(cmd *cobra.Command, args []string) error {
		var req dto.RegisterRequest
		req.Username, _ = cmd.Flags().GetString("username")
		req.Password, _ = cmd.Flags().GetString("password")
		req.Email, _ = cmd.Flags().GetString("email")
		req.Role, _ = cmd.Flags().GetString("role")
		req.PasswordConfirm = req.Password

		user, err := client.NewHTTPClient(apiURL).Register(&req)
		if err != nil {
			return fmt.Errorf("registration failed: %w", err)
		}

		fmt.Println(success("✓ Registration successful! Please login to continue."))
		fmt.Printf("User: %s (%s)\n", user.Username, user.Role)
		return nil
	},
}

var loginCmd = &cobra.Command{
	Use:   "login",
	Short: "Login to your storyhub account",
	RunE: func(cmd *cobra.Command, args []string) error {
		var req dto.LoginRequest
		req.Username, _ = cmd.Flags().GetString("username")
		req.Password, _ = cmd.Flags().GetString("password")

		pair, err := client.NewHTTPClient(apiURL).Login(&req)
		if err != nil {
			return fmt.Errorf("login failed: %w", err)
		}
		if err := authentication.StoreTokens(credentialsFrom(pair)); err != nil {
			return fmt.Errorf("failed to store tokens: %w", err)
		}

		fmt.Println(success("✓ Successfully logged in as " + pair.User.Username + " (" + pair.User.Role + ")"))
		return nil
	},
}

var logoutCmd = &cobra.Command{
	Use:   "logout",
	Short: "Logout and revoke the stored refresh token",
	RunE: func(cmd *cobra.Command, args []string) error {
		creds, err := authentication.GetTokens()
		if err != nil {
			fmt.Println("Not logged in.")
			return nil
		}

		if err := client.NewHTTPClient(apiURL).Logout(creds.RefreshToken); err != nil {
			fmt.Println(muted("Could not revoke token on the server: " + err.Error()))
		}
		if err := authentication.DeleteTokens(); err != nil {
			return fmt.Errorf("failed to clear tokens: %w", err)
		}
		fmt.Println(success("✓ Successfully logged out."))
		return nil
	},
}

var whoamiCmd = &cobra.Command{
	Use:   "whoami",
	Short: "Show the logged in account",
	RunE: func(cmd *cobra.Command, args []string) error {
		httpClient, err := newClient(true)
		if err != nil {
			return err
		}
		user, err := httpClient.Me()
		if err != nil {
			return err
		}

		fmt.Printf("%s %s\n", heading(user.Username), muted(user.ID))
		fmt.Printf("Email: %s\n", user.Email)
		fmt.Printf("Role:  %s\n", user.Role)
		return nil
	},
}

func init() {
	authCmd.AddCommand(registerCmd, loginCmd, logoutCmd, whoamiCmd)

	registerCmd.Flags().StringP("username", "u", "", "Username for the new account")
	registerCmd.Flags().StringP("password", "p", "", "Password for the new account")
	registerCmd.Flags().StringP("email", "e", "", "Email address for the new account")
	registerCmd.Flags().String("role", "", "reader or author (default reader)")
	_ = registerCmd.MarkFlagRequired("username")
	_ = registerCmd.MarkFlagRequired("password")
	_ = registerCmd.MarkFlagRequired("email")

	loginCmd.Flags().StringP("username", "u", "", "Username for the account")
	loginCmd.Flags().StringP("password", "p", "", "Password for the account")
	_ = loginCmd.MarkFlagRequired("username")
	_ = loginCmd.MarkFlagRequired("password")
}
