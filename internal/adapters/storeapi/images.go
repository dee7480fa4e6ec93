package storeapi

import (
	"strings"

	"github.com/genzzone/storefront/internal/domain"
)

// ImageURL resolves a media path against origin. Absolute URLs pass through
// and an empty path stays empty.
func ImageURL(origin, path string) string {
	path = strings.TrimSpace(path)
	switch {
	case path == "":
		return ""
	case strings.HasPrefix(path, "http://"), strings.HasPrefix(path, "https://"):
		return path
	case strings.HasPrefix(path, "//"):
		return "https:" + path
	case strings.HasPrefix(path, "/"):
		return strings.TrimRight(origin, "/") + path
	default:
		return strings.TrimRight(origin, "/") + "/" + path
	}
}

func (c *Client) resolveImages(p *domain.Product) {
	if p == nil {
		return
	}
	for _, img := range []*string{p.Image, p.Image2, p.Image3, p.Image4} {
		if img != nil {
			*img = ImageURL(c.origin, *img)
		}
	}
	for i := range p.Colors {
		p.Colors[i].Image = ImageURL(c.origin, p.Colors[i].Image)
	}
}
