package product

import "slices"

// Images pairs MediaIDs with ImageURLs by position. URLs without a matching
// id keep an empty MediaID.
func (p Product) Images() []Image {
	out := make([]Image, 0, len(p.ImageURLs))
	for i, url := range p.ImageURLs {
		img := Image{URL: url}
		if i < len(p.MediaIDs) {
			img.MediaID = p.MediaIDs[i]
		}
		out = append(out, img)
	}
	return out
}

// ToRequest copies the patchable fields.
func (p Product) ToRequest() ProductRequest {
	return ProductRequest{
		Name:        p.Name,
		Description: p.Description,
		Price:       p.Price,
		Quantity:    p.Quantity,
	}
}

func (p Product) clone() Product {
	p.MediaIDs = slices.Clone(p.MediaIDs)
	p.ImageURLs = slices.Clone(p.ImageURLs)
	return p
}

func (p Product) withoutMedia(mediaID string) Product {
	p = p.clone()
	i := slices.Index(p.MediaIDs, mediaID)
	if i < 0 {
		return p
	}
	p.MediaIDs = slices.Delete(p.MediaIDs, i, i+1)
	if i < len(p.ImageURLs) {
		p.ImageURLs = slices.Delete(p.ImageURLs, i, i+1)
	}
	return p
}

func replaceByID(list []Product, p Product) ([]Product, bool) {
	i := slices.IndexFunc(list, func(x Product) bool { return x.ID == p.ID })
	if i < 0 {
		return list, false
	}
	next := slices.Clone(list)
	next[i] = p
	return next, true
}

func removeByID(list []Product, id string) []Product {
	return slices.DeleteFunc(slices.Clone(list), func(x Product) bool { return x.ID == id })
}
