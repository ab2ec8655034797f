package commands

import (
	"bufio"
	"fmt"
	"os"
	"strings"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"golang.org/x/term"

	"github.com/fivetwenty-io/ghost-client/pkg/ghost"
	"github.com/fivetwenty-io/ghost-client/pkg/ghostclient"
)

// NewLoginCommand creates the login command.
func NewLoginCommand() *cobra.Command {
	var (
		username string
		password string
	)

	cmd := &cobra.Command{
		Use:   "login",
		Short: "Login to a Ghost installation",
		Long:  "Authenticate against the configured Ghost installation and persist the connection settings",
		RunE: func(cmd *cobra.Command, args []string) error {
			config := effectiveConfig()
			if config.URL == "" {
				reader := bufio.NewReader(os.Stdin)
				fmt.Print("Ghost URL: ")
				url, _ := reader.ReadString('\n')
				config.URL = strings.TrimSpace(url)
			}

			if config.URL == "" {
				return ErrURLRequired
			}

			clientConfig := &ghost.Config{
				BaseURL:      config.URL,
				ClientID:     config.ClientID,
				ClientSecret: config.ClientSecret,
				AdminKey:     config.AdminKey,
			}

			// Admin keys need no password exchange; anything else does.
			if config.AdminKey == "" {
				if username == "" {
					reader := bufio.NewReader(os.Stdin)
					fmt.Print("Email: ")
					username, _ = reader.ReadString('\n')
					username = strings.TrimSpace(username)
				}

				if password == "" {
					fmt.Print("Password: ")

					bytePassword, err := term.ReadPassword(int(syscall.Stdin))
					if err != nil {
						return fmt.Errorf("reading password: %w", err)
					}

					password = string(bytePassword)

					fmt.Println()
				}

				clientConfig.Username = username
				clientConfig.Password = password
			}

			client, err := ghostclient.New(cmd.Context(), clientConfig)
			if err != nil {
				return fmt.Errorf("logging in: %w", err)
			}

			// Prove the session works before persisting anything.
			_, err = client.Users().List(cmd.Context(), ghost.NewListParams().WithLimit(1))
			if err != nil {
				return fmt.Errorf("verifying session: %w", err)
			}

			config.Username = username

			err = saveConfig(config)
			if err != nil {
				return err
			}

			fmt.Printf("Logged in to %s\n", config.URL)

			if viper.GetBool("verbose") {
				version, versionErr := client.Version(cmd.Context())
				if versionErr == nil {
					fmt.Printf("Server version: %s\n", version)
				}
			}

			return nil
		},
	}

	cmd.Flags().StringVarP(&username, "username", "U", "", "user email address")
	cmd.Flags().StringVarP(&password, "password", "p", "", "password (prompted when omitted)")

	return cmd
}

// NewLogoutCommand creates the logout command.
func NewLogoutCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Logout and clear stored settings",
		Long:  "Revoke the active session where possible and remove persisted credentials",
		RunE: func(cmd *cobra.Command, args []string) error {
			config := loadConfig()
			if config.URL == "" {
				return ErrNotLoggedIn
			}

			client, err := createClient(cmd.Context())
			if err == nil {
				// Best effort: server-side state may already be gone.
				_ = client.Logout(cmd.Context())
			}

			config.Username = ""
			config.AdminKey = ""

			err = saveConfig(config)
			if err != nil {
				return err
			}

			fmt.Println("Logged out")

			return nil
		},
	}
}
