package codec

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/chai2010/webp"
)

// Chai is the fallback backend built on the chai2010 encoder. Narrower
// decode support than libwebp, but always present. Sources that are already
// WebP are copied byte for byte instead of re-encoded, so repeated runs on
// the same file are lossless no-ops.
type Chai struct{}

func (Chai) Name() string { return "chai2010" }

func (Chai) Available() bool { return true }

func (Chai) Encode(srcPath, dstPath string, quality int) error {
	if strings.EqualFold(filepath.Ext(srcPath), ".webp") {
		return copyFile(srcPath, dstPath)
	}

	img, err := decode(srcPath)
	if err != nil {
		return err
	}

	return writeTo(dstPath, func(f *os.File) error {
		err := webp.Encode(f, img, &webp.Options{
			Lossless: false,
			Quality:  float32(quality),
			Exact:    true,
		})
		if err != nil {
			return fmt.Errorf("error encoding %s to webp: %w", srcPath, err)
		}
		return nil
	})
}

func copyFile(srcPath, dstPath string) error {
	src, err := os.Open(srcPath)
	if err != nil {
		return fmt.Errorf("error opening %s: %w", srcPath, err)
	}
	defer src.Close()

	return writeTo(dstPath, func(f *os.File) error {
		_, err := io.Copy(f, src)
		return err
	})
}
