package upload

const (
	KiB = 1024
	MiB = 1024 * KiB
)

// Preset is a named set of file constraints.
type Preset struct {
	Name         string
	ContentTypes []string
	Extensions   []string
	MaxBytes     int64
}

var imageTypes = []string{"image/jpeg", "image/png", "image/webp"}
var imageExtensions = []string{".jpg", ".jpeg", ".png", ".webp"}

var (
	Avatar = Preset{
		Name:         "AVATAR",
		ContentTypes: imageTypes,
		Extensions:   imageExtensions,
		MaxBytes:     1 * MiB,
	}

	ProductImage = Preset{
		Name:         "PRODUCT_IMAGE",
		ContentTypes: imageTypes,
		Extensions:   imageExtensions,
		MaxBytes:     2 * MiB,
	}
)

func (p Preset) allowsType(contentType string) bool {
	for _, t := range p.ContentTypes {
		if t == contentType {
			return true
		}
	}
	return false
}

func (p Preset) allowsExtension(ext string) bool {
	for _, e := range p.Extensions {
		if e == ext {
			return true
		}
	}
	return false
}
