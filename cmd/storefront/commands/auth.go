package commands

import (
	"fmt"
	"strings"

	"storefront/internal/session"

	"github.com/spf13/cobra"
)

var (
	// Auth flags
	email     string
	password  string
	name      string
	role      string
	avatarURL string
)

var registerCmd = &cobra.Command{
	Use:   "register",
	Short: "Create an account",
	Long: `Create a SELLER or CLIENT account. Registering does not sign you in.

Examples:
  storefront register --email ada@example.com --password pw123456 --name Ada --role SELLER`,
	RunE: func(cmd *cobra.Command, args []string) error {
		req := session.RegisterRequest{
			Email:    email,
			Password: password,
			Name:     name,
			Role:     session.Role(strings.ToUpper(role)),
		}
		if avatarURL != "" {
			req.AvatarURL = &avatarURL
		}

		u, err := application.Session.Register(cmd.Context(), req)
		if err != nil {
			return err
		}
		if jsonOutput {
			return printJSON(u)
		}
		fmt.Fprintf(stdout, "Registered %s (%s). Run `storefront login` to sign in.\n", u.Email, u.Role)
		return nil
	},
}

var loginCmd = &cobra.Command{
	Use:   "login",
	Short: "Sign in and remember the session",
	RunE: func(cmd *cobra.Command, args []string) error {
		sess, err := application.Session.Login(cmd.Context(), email, password)
		if err != nil {
			return err
		}
		if jsonOutput {
			return printJSON(sess.User)
		}
		fmt.Fprintf(stdout, "Signed in as %s (%s)\n", sess.User.Email, sess.User.Role)
		return nil
	},
}

var logoutCmd = &cobra.Command{
	Use:   "logout",
	Short: "Forget the stored session",
	RunE: func(cmd *cobra.Command, args []string) error {
		application.Session.Logout(cmd.Context())
		fmt.Fprintln(stdout, "Signed out.")
		return nil
	},
}

var whoamiCmd = &cobra.Command{
	Use:   "whoami",
	Short: "Show the signed-in user",
	RunE: func(cmd *cobra.Command, args []string) error {
		u := application.Session.CurrentUser()
		if u == nil {
			fmt.Fprintln(stdout, "Not signed in.")
			return nil
		}
		return printUser(u)
	},
}

func init() {
	rootCmd.AddCommand(registerCmd, loginCmd, logoutCmd, whoamiCmd)

	registerCmd.Flags().StringVar(&email, "email", "", "Email address")
	registerCmd.Flags().StringVar(&password, "password", "", "Password (8 to 100 characters)")
	registerCmd.Flags().StringVar(&name, "name", "", "Display name")
	registerCmd.Flags().StringVar(&role, "role", string(session.RoleClient), "SELLER or CLIENT")
	registerCmd.Flags().StringVar(&avatarURL, "avatar-url", "", "Avatar image URL")
	_ = registerCmd.MarkFlagRequired("email")
	_ = registerCmd.MarkFlagRequired("password")
	_ = registerCmd.MarkFlagRequired("name")

	loginCmd.Flags().StringVar(&email, "email", "", "Email address")
	loginCmd.Flags().StringVar(&password, "password", "", "Password")
	_ = loginCmd.MarkFlagRequired("email")
	_ = loginCmd.MarkFlagRequired("password")
}
