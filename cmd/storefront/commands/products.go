package commands

import (
	"errors"
	"fmt"
	"slices"

	"storefront/internal/productform"
	"storefront/internal/ui"

	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"
)

var (
	// Product flags
	productName        string
	productDescription string
	productPrice       string
	productQuantity    int
	productImages      []string
	removeImages       []int
)

var productsCmd = &cobra.Command{
	Use:     "products",
	Aliases: []string{"product"},
	Short:   "Browse the catalog and manage your products",
}

var productsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List every product in the catalog",
	RunE: func(cmd *cobra.Command, args []string) error {
		list, err := application.Products.ListAll(cmd.Context())
		if err != nil {
			return err
		}
		return printProducts(list)
	},
}

var productsMineCmd = &cobra.Command{
	Use:   "mine",
	Short: "List the products you sell",
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := requireSignedIn(); err != nil {
			return err
		}
		list, err := application.Products.ListMine(cmd.Context())
		if err != nil {
			return err
		}
		return printProducts(list)
	},
}

var productsShowCmd = &cobra.Command{
	Use:   "show <id>",
	Short: "Show one product",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		p, err := application.Products.GetByID(cmd.Context(), args[0])
		if err != nil {
			return err
		}
		return printProduct(p)
	},
}

var productsCreateCmd = &cobra.Command{
	Use:   "create",
	Short: "Create a product, uploading its images first",
	Long: `Create a product. Images are validated locally, uploaded, and attached
to the new product once it exists.

Examples:
  storefront products create --name T-shirt --description "Soft cotton tee" \
    --price 19.99 --quantity 10 --image front.jpg --image back.jpg`,
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := requireSignedIn(); err != nil {
			return err
		}
		price, err := decimal.NewFromString(productPrice)
		if err != nil {
			return fmt.Errorf("price %q is not a number", productPrice)
		}

		ed := application.NewProductEditor()
		defer ed.Close()

		ed.SetForm(productform.Form{
			Name:        productName,
			Description: productDescription,
			Price:       price,
			Quantity:    productQuantity,
		})
		if err := addImages(ed); err != nil {
			return err
		}

		p, err := ed.Submit(cmd.Context())
		if err != nil {
			return err
		}
		return printProduct(p)
	},
}

var productsUpdateCmd = &cobra.Command{
	Use:   "update <id>",
	Short: "Edit a product you own",
	Long: `Edit a product you own. Only the flags you pass change. --remove-image
takes the index shown by "products show" and deletes that image right away.

Examples:
  storefront products update 42 --price 17.50
  storefront products update 42 --remove-image 1 --image new.jpg`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := requireSignedIn(); err != nil {
			return err
		}
		ctx := cmd.Context()

		ed := application.NewProductEditor()
		defer ed.Close()

		if err := ed.Load(ctx, args[0]); err != nil {
			return err
		}

		form := ed.State().Form
		flags := cmd.Flags()
		if flags.Changed("name") {
			form.Name = productName
		}
		if flags.Changed("description") {
			form.Description = productDescription
		}
		if flags.Changed("price") {
			price, err := decimal.NewFromString(productPrice)
			if err != nil {
				return fmt.Errorf("price %q is not a number", productPrice)
			}
			form.Price = price
		}
		if flags.Changed("quantity") {
			form.Quantity = productQuantity
		}
		ed.SetForm(form)

		// Highest index first so earlier removals do not shift later ones.
		indexes := slices.Clone(removeImages)
		slices.Sort(indexes)
		slices.Reverse(indexes)
		for _, i := range slices.Compact(indexes) {
			if _, err := ed.RemoveExistingImage(ctx, i); err != nil {
				return err
			}
		}

		if err := addImages(ed); err != nil {
			return err
		}

		p, err := ed.Submit(ctx)
		if err != nil {
			return err
		}
		return printProduct(p)
	},
}

var productsDeleteCmd = &cobra.Command{
	Use:   "delete <id>",
	Short: "Delete a product you own",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := requireSignedIn(); err != nil {
			return err
		}
		ctx := cmd.Context()
		if !application.Dialog.Confirm(ctx, ui.ConfirmDelete("product")) {
			return nil
		}
		if err := application.Products.Delete(ctx, args[0]); err != nil {
			return err
		}
		ui.Success(application.Notifier, "Product deleted successfully")
		return nil
	},
}

func addImages(ed *productform.Editor) error {
	if len(productImages) == 0 {
		return nil
	}
	files, err := loadFiles(productImages)
	if err != nil {
		return err
	}
	if rejected := ed.AddFiles(files...); len(rejected) > 0 {
		return errors.New("some images were rejected, nothing was saved")
	}
	return nil
}

func init() {
	rootCmd.AddCommand(productsCmd)
	productsCmd.AddCommand(productsListCmd, productsMineCmd, productsShowCmd,
		productsCreateCmd, productsUpdateCmd, productsDeleteCmd)

	for _, c := range []*cobra.Command{productsCreateCmd, productsUpdateCmd} {
		c.Flags().StringVar(&productName, "name", "", "Product name (3 to 100 characters)")
		c.Flags().StringVar(&productDescription, "description", "", "Description (10 to 2000 characters)")
		c.Flags().StringVar(&productPrice, "price", "", "Price, at most two decimals")
		c.Flags().IntVar(&productQuantity, "quantity", 0, "Quantity in stock")
		c.Flags().StringArrayVar(&productImages, "image", nil, "Image file to upload (repeatable)")
	}
	productsUpdateCmd.Flags().IntSliceVar(&removeImages, "remove-image", nil, "Index of an existing image to delete (repeatable)")

	_ = productsCreateCmd.MarkFlagRequired("name")
	_ = productsCreateCmd.MarkFlagRequired("description")
	_ = productsCreateCmd.MarkFlagRequired("price")
}
