package media

import (
	"context"
	"strings"

	"go.uber.org/zap"

	"github.com/Additional-Code/luxe/internal/config"
)

// PreviewWidth is the variant used for link previews.
const PreviewWidth = 1080

// Previewer resolves absolute URLs for social link previews.
type Previewer struct {
	store   Store
	siteURL string
	logger  *zap.Logger
}

// NewPreviewer wires a previewer for the configured site.
func NewPreviewer(store Store, cfg config.Config, logger *zap.Logger) *Previewer {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Previewer{store: store, siteURL: strings.TrimRight(cfg.Site.PublicURL, "/"), logger: logger}
}

// PageURL returns the storefront page of a product.
func (p *Previewer) PageURL(slug string) string {
	return p.siteURL + "/products/" + slug
}

// FallbackImage is used when a product has no usable image.
func (p *Previewer) FallbackImage() string {
	return p.siteURL + "/icon.png"
}

// ImageURL returns an absolute preview image for a stored image URL. Remote
// images pass through; missing or placeholder images use the site icon; local
// images prefer the preview variant and fall back to the original.
func (p *Previewer) ImageURL(ctx context.Context, raw string) string {
	raw = strings.TrimSpace(raw)
	switch {
	case raw == "" || strings.Contains(raw, "placeholder"):
		return p.FallbackImage()
	case strings.HasPrefix(raw, "http://") || strings.HasPrefix(raw, "https://"):
		return raw
	}

	key := KeyFromURL(raw)
	if key == "" {
		return p.FallbackImage()
	}

	chosen := key
	variant := VariantKey(key, PreviewWidth)
	ok, err := p.store.Exists(ctx, variant)
	if err != nil {
		p.logger.Warn("preview variant lookup failed", zap.String("key", variant), zap.Error(err))
	}
	if ok {
		chosen = variant
	}
	return p.absolute(p.store.URL(chosen))
}

func (p *Previewer) absolute(u string) string {
	if strings.HasPrefix(u, "/") {
		return p.siteURL + u
	}
	return u
}
