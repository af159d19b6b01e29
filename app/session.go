package app

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/anindta/task-management-project/internal/client"
)

// EnvPassword supplies the login password when --password is not given.
const EnvPassword = "TASKBOARD_PASSWORD"

var (
	serverURL   string
	sessionFile string
	username    string
	password    string

	loginCmd = &cobra.Command{
		Use:   "login",
		Short: "Log in and store the session token",
		RunE: func(cmd *cobra.Command, _ []string) error {
			if password == "" {
				password = os.Getenv(EnvPassword)
			}

			if username == "" || password == "" {
				return errors.New("--username and --password (or " + EnvPassword + ") are required")
			}

			s, err := openSession()
			if err != nil {
				return err
			}

			if err = s.Login(cmd.Context(), username, password); err != nil {
				return err
			}

			cmd.Printf("logged in as %s (%s)\n", username, s.Role())

			return nil
		},
	}

	logoutCmd = &cobra.Command{
		Use:   "logout",
		Short: "Forget the stored session",
		RunE: func(cmd *cobra.Command, _ []string) error {
			s, err := openSession()
			if err != nil {
				return err
			}

			s.Logout()
			cmd.Println("logged out")

			return nil
		},
	}

	whoamiCmd = &cobra.Command{
		Use:   "whoami",
		Short: "Show the stored user",
		RunE: func(cmd *cobra.Command, _ []string) error {
			s, err := openSession()
			if err != nil {
				return err
			}

			u := s.User()
			if s.State() != client.Authenticated || u == nil {
				cmd.Println("not logged in")

				return nil
			}

			cmd.Printf("%s (id %d, role %s)\n", u.Username, u.ID, u.Role)

			return nil
		},
	}

	menusCmd = &cobra.Command{
		Use:   "menus",
		Short: "List the menus visible to the stored user",
		RunE: func(cmd *cobra.Command, _ []string) error {
			s, err := openSession()
			if err != nil {
				return err
			}

			menus, err := s.RefreshMenus(cmd.Context())
			if client.IsUnauthorized(err) {
				return errors.New("session expired or missing, run login")
			}

			if err != nil {
				return err
			}

			for _, m := range menus {
				cmd.Printf("%-12s %s\n", m.Name, m.Label)
			}

			return nil
		},
	}
)

func init() { //nolint: gochecknoinits
	for _, c := range []*cobra.Command{loginCmd, logoutCmd, whoamiCmd, menusCmd} {
		c.Flags().StringVar(&serverURL, "server", "http://localhost:5062", "base URL of the API")
		c.Flags().StringVar(&sessionFile, "session-file", defaultSessionFile(), "file holding the stored session")
		rootCmd.AddCommand(c)
	}

	loginCmd.Flags().StringVarP(&username, "username", "u", "", "user name")
	loginCmd.Flags().StringVarP(&password, "password", "p", "", "password, defaults to $"+EnvPassword)
}

func openSession() (*client.Session, error) {
	store, err := client.NewFileStorage(sessionFile)
	if err != nil {
		return nil, err
	}

	s, err := client.New(serverURL, store)
	if err != nil {
		return nil, fmt.Errorf("failed to open session: %w", err)
	}

	return s, nil
}

func defaultSessionFile() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		return ".taskboard-session.json"
	}

	return filepath.Join(dir, "taskboard", "session.json")
}
