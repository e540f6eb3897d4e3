package hdrstack

import (
	"fmt"
	"image"
	"os"
	"path/filepath"
	"strings"

	"github.com/anthonynsimon/bild/imgio"
	"k8s.io/klog/v2"
)

// WritePreviews writes an 8-bit grayscale PNG of each normalized
// exposure into outDir, for eyeballing decode and normalization
// output. The raw mosaic is rendered as-is: no demosaicing, no color.
// Values are clamped to [0, 1] first.
func (s *Series) WritePreviews(outDir string) error {
	if err := os.MkdirAll(outDir, 0o755); err != nil {
		return fmt.Errorf("mkdir: %w", err)
	}

	for _, exp := range s.Exposures {
		img := image.NewGray(image.Rect(0, 0, exp.Width, exp.Height))
		for i, v := range exp.Image {
			switch {
			case v <= 0:
				img.Pix[i] = 0
			case v >= 1:
				img.Pix[i] = 255
			default:
				img.Pix[i] = uint8(v*255 + 0.5)
			}
		}

		base := filepath.Base(exp.Filename)
		base = strings.TrimSuffix(base, filepath.Ext(base)) + ".png"
		p := filepath.Join(outDir, base)

		klog.Infof("writing preview %s", p)
		if err := imgio.Save(p, img, imgio.PNGEncoder()); err != nil {
			return fmt.Errorf("save %q: %w", p, err)
		}
	}

	return nil
}
