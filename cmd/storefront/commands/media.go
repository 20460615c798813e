package commands

import (
	"errors"
	"fmt"

	"storefront/internal/mediamanager"

	"github.com/spf13/cobra"
)

var (
	// Media flags
	mediaFilter  string
	mediaProduct string
)

var mediaCmd = &cobra.Command{
	Use:   "media",
	Short: "Manage your image library",
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if err := setup(cmd, args); err != nil {
			return err
		}
		return requireSignedIn()
	},
}

var mediaListCmd = &cobra.Command{
	Use:   "list",
	Short: "List your uploaded images",
	Long: `List your uploaded images.

Examples:
  storefront media list                       # Everything
  storefront media list --filter unassigned   # Not attached to a product
  storefront media list --filter <productId>  # Attached to one product`,
	RunE: func(cmd *cobra.Command, args []string) error {
		lib := application.Library
		if err := lib.Load(cmd.Context()); err != nil {
			return err
		}
		lib.SetFilter(mediaFilter)
		return printMedia(lib.Visible(), lib.ProductName)
	},
}

var mediaUploadCmd = &cobra.Command{
	Use:   "upload <file>...",
	Short: "Upload images, optionally attaching them to a product",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		files, err := loadFiles(args)
		if err != nil {
			return err
		}

		lib := application.Library
		lib.SetTargetProduct(mediaProduct)
		sum, err := lib.Upload(cmd.Context(), files)
		if err != nil {
			return err
		}
		if jsonOutput {
			return printJSON(sum)
		}
		for _, m := range sum.Uploaded {
			fmt.Fprintf(stdout, "%s\t%s\n", m.ID, m.URL)
		}
		if len(sum.Uploaded) == 0 {
			return errors.New("no images were uploaded")
		}
		return nil
	},
}

var mediaDeleteCmd = &cobra.Command{
	Use:   "delete <id>...",
	Short: "Delete one or more images",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		lib := application.Library
		if err := lib.Load(ctx); err != nil {
			return err
		}

		if len(args) == 1 {
			_, err := lib.Delete(ctx, args[0])
			return err
		}

		for _, id := range args {
			lib.Toggle(id)
		}
		if missing := len(args) - len(lib.Selected()); missing > 0 {
			return fmt.Errorf("%d of the given ids are not in your library", missing)
		}
		_, err := lib.DeleteSelected(ctx)
		return err
	},
}

func init() {
	rootCmd.AddCommand(mediaCmd)
	mediaCmd.AddCommand(mediaListCmd, mediaUploadCmd, mediaDeleteCmd)

	mediaListCmd.Flags().StringVar(&mediaFilter, "filter", mediamanager.FilterAll, `"all", "unassigned" or a product id`)
	mediaUploadCmd.Flags().StringVar(&mediaProduct, "product", "", "Attach the uploads to this product")
}
