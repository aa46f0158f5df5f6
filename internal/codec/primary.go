package codec

import (
	"fmt"
	"os"

	"github.com/kolesa-team/go-webp/encoder"
	"github.com/kolesa-team/go-webp/webp"
)

// Libwebp is the preferred backend: the full libwebp encoder with preset
// tuning and metadata stripping. It is only usable when the binding can
// build encoder options in this runtime; upstream filtering guarantees it
// never sees an already-converted input.
type Libwebp struct{}

func (Libwebp) Name() string { return "libwebp" }

func (Libwebp) Available() bool {
	_, err := encoder.NewLossyEncoderOptions(encoder.PresetDefault, 85)
	return err == nil
}

func (Libwebp) Encode(srcPath, dstPath string, quality int) error {
	img, err := decode(srcPath)
	if err != nil {
		return err
	}

	opts, err := encoder.NewLossyEncoderOptions(encoder.PresetDefault, float32(quality))
	if err != nil {
		return fmt.Errorf("error creating webp encoder options: %w", err)
	}

	return writeTo(dstPath, func(f *os.File) error {
		if err := webp.Encode(f, img, opts); err != nil {
			return fmt.Errorf("error encoding %s to webp: %w", srcPath, err)
		}
		return nil
	})
}
