package quality

import "github.com/vinkla/retouch/internal/config"

// Policy maps image dimensions to a WebP compression quality. Small images
// show compression artifacts much sooner than large ones, so quality drops
// as pixel area grows.
type Policy struct {
	cfg config.QualityConfig
}

func NewPolicy(cfg config.QualityConfig) *Policy {
	return &Policy{cfg: cfg}
}

// Level returns the quality tier for the given dimensions. The minimum
// dimension rule wins over the pixel area rules: anything with a side at or
// below the thumbnail bound gets the highest tier. Zero and negative
// dimensions land there too, so images with missing size metadata are never
// over-compressed.
func (p *Policy) Level(width, height int) int {
	if width <= p.cfg.ThumbnailMax || height <= p.cfg.ThumbnailMax {
		return p.cfg.Thumbnail
	}

	area := width * height
	switch {
	case area < 90_000:
		return p.cfg.Small
	case area < 500_000:
		return p.cfg.Medium
	default:
		return p.cfg.Large
	}
}
