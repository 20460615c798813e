package commands

import (
	"github.com/spf13/cobra"

	"storefront/internal/session"
	"storefront/internal/user"
)

var (
	// Profile flags
	profileName     string
	profileAvatar   string
	currentPassword string
	newPassword     string
)

var profileCmd = &cobra.Command{
	Use:   "profile",
	Short: "Show or change your profile",
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if err := setup(cmd, args); err != nil {
			return err
		}
		return requireSignedIn()
	},
}

var profileShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Fetch your profile from the server",
	RunE: func(cmd *cobra.Command, args []string) error {
		p, err := application.Users.GetProfile(cmd.Context())
		if err != nil {
			return err
		}
		return printProfile(p)
	},
}

var profileUpdateCmd = &cobra.Command{
	Use:   "update",
	Short: "Change your name, avatar URL or password",
	Long: `Change your name, avatar URL or password. Only the flags you pass are sent.

Examples:
  storefront profile update --name "Ada Lovelace"
  storefront profile update --password old-secret --new-password new-secret`,
	RunE: func(cmd *cobra.Command, args []string) error {
		var req user.UpdateProfileRequest
		flags := cmd.Flags()
		if flags.Changed("name") {
			req.Name = &profileName
		}
		if flags.Changed("avatar-url") {
			req.Avatar = &profileAvatar
		}
		if flags.Changed("password") {
			req.Password = &currentPassword
		}
		if flags.Changed("new-password") {
			req.NewPassword = &newPassword
		}

		p, err := application.Users.UpdateProfile(cmd.Context(), req)
		if err != nil {
			return err
		}
		return printProfile(p)
	},
}

var profileAvatarCmd = &cobra.Command{
	Use:   "avatar <image>",
	Short: "Upload a new avatar image (JPEG, PNG or WebP, up to 1 MB)",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		files, err := loadFiles(args)
		if err != nil {
			return err
		}
		p, err := application.Users.UpdateAvatar(cmd.Context(), files[0])
		if err != nil {
			return err
		}
		return printProfile(p)
	},
}

func printProfile(p *user.Profile) error {
	return printUser(&session.User{
		ID:        p.ID,
		Email:     p.Email,
		Name:      p.Name,
		Role:      p.Role,
		AvatarURL: p.AvatarURL,
	})
}

func init() {
	rootCmd.AddCommand(profileCmd)
	profileCmd.AddCommand(profileShowCmd, profileUpdateCmd, profileAvatarCmd)

	profileUpdateCmd.Flags().StringVar(&profileName, "name", "", "New display name")
	profileUpdateCmd.Flags().StringVar(&profileAvatar, "avatar-url", "", "New avatar URL")
	profileUpdateCmd.Flags().StringVar(&currentPassword, "password", "", "Current password (required to change it)")
	profileUpdateCmd.Flags().StringVar(&newPassword, "new-password", "", "New password")
}
