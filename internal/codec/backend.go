package codec

import (
	"fmt"
	"image"
	"os"

	"github.com/disintegration/imaging"
)

// Backend converts a source image file into WebP at a given quality.
// Implementations report failure through ordinary errors; nothing here
// panics across the boundary. The caller owns logging and fallback.
type Backend interface {
	Name() string
	// Available reports whether the backend can encode in this runtime.
	Available() bool
	Encode(srcPath, dstPath string, quality int) error
}

// decode opens and decodes a source image, applying EXIF orientation so the
// encoded output renders upright without carrying the metadata along.
func decode(srcPath string) (image.Image, error) {
	img, err := imaging.Open(srcPath, imaging.AutoOrientation(true))
	if err != nil {
		return nil, fmt.Errorf("error decoding image %s: %w", srcPath, err)
	}
	return img, nil
}

// writeTo streams an encode function into dstPath.
func writeTo(dstPath string, encode func(f *os.File) error) error {
	f, err := os.Create(dstPath)
	if err != nil {
		return fmt.Errorf("error creating %s: %w", dstPath, err)
	}
	if err := encode(f); err != nil {
		f.Close()
		os.Remove(dstPath)
		return err
	}
	return f.Close()
}
