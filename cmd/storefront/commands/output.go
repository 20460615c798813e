package commands

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"text/tabwriter"

	"storefront/internal/media"
	"storefront/internal/product"
	"storefront/internal/session"
	"storefront/internal/upload"
)

var stdout io.Writer = os.Stdout

func printJSON(v any) error {
	enc := json.NewEncoder(stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func printUser(u *session.User) error {
	if jsonOutput {
		return printJSON(u)
	}
	w := tabwriter.NewWriter(stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintf(w, "ID:\t%s\n", u.ID)
	fmt.Fprintf(w, "Email:\t%s\n", u.Email)
	fmt.Fprintf(w, "Name:\t%s\n", u.Name)
	fmt.Fprintf(w, "Role:\t%s\n", u.Role)
	if u.AvatarURL != nil {
		fmt.Fprintf(w, "Avatar:\t%s\n", *u.AvatarURL)
	}
	return w.Flush()
}

func printProducts(list []product.Product) error {
	if jsonOutput {
		return printJSON(list)
	}
	if len(list) == 0 {
		fmt.Fprintln(stdout, "No products.")
		return nil
	}
	w := tabwriter.NewWriter(stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tNAME\tPRICE\tQTY\tIMAGES")
	for _, p := range list {
		fmt.Fprintf(w, "%s\t%s\t%s\t%d\t%d\n", p.ID, p.Name, p.Price, p.Quantity, len(p.ImageURLs))
	}
	return w.Flush()
}

func printProduct(p *product.Product) error {
	if jsonOutput {
		return printJSON(p)
	}
	w := tabwriter.NewWriter(stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintf(w, "ID:\t%s\n", p.ID)
	fmt.Fprintf(w, "Name:\t%s\n", p.Name)
	fmt.Fprintf(w, "Description:\t%s\n", p.Description)
	fmt.Fprintf(w, "Price:\t%s\n", p.Price)
	fmt.Fprintf(w, "Quantity:\t%d\n", p.Quantity)
	fmt.Fprintf(w, "Seller:\t%s\n", p.SellerID)
	for i, img := range p.Images() {
		fmt.Fprintf(w, "Image %d:\t%s\n", i, img.URL)
	}
	return w.Flush()
}

func printMedia(list []media.Media, productName func(*string) string) error {
	if jsonOutput {
		return printJSON(list)
	}
	if len(list) == 0 {
		fmt.Fprintln(stdout, "No images.")
		return nil
	}
	var total int64
	w := tabwriter.NewWriter(stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tFILE\tSIZE\tPRODUCT\tUPLOADED")
	for _, m := range list {
		total += m.Size
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\n",
			m.ID, m.OriginalFilename, upload.FormatSize(m.Size), productName(m.ProductID),
			m.CreatedAt.Format("Jan 2, 2006 15:04"))
	}
	if err := w.Flush(); err != nil {
		return err
	}
	fmt.Fprintf(stdout, "%d image(s), %s\n", len(list), upload.FormatSize(total))
	return nil
}

func loadFiles(paths []string) ([]upload.File, error) {
	files := make([]upload.File, 0, len(paths))
	for _, p := range paths {
		f, err := upload.FromPath(p)
		if err != nil {
			return nil, fmt.Errorf("read %s: %w", p, err)
		}
		files = append(files, f)
	}
	return files, nil
}
