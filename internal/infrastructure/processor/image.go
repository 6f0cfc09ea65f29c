package processor

import (
	"fmt"

	"github.com/disintegration/imaging"
)

const downscaleQuality = 90

// DownscaleImage shrinks the image at path in place so neither side exceeds
// maxDim, keeping the aspect ratio. It reports whether the file was
// rewritten. maxDim <= 0 disables resizing.
func DownscaleImage(path string, maxDim int) (bool, error) {
	if maxDim <= 0 {
		return false, nil
	}

	img, err := imaging.Open(path)
	if err != nil {
		return false, fmt.Errorf("resim açılamadı: %w", err)
	}

	bounds := img.Bounds()
	if bounds.Dx() <= maxDim && bounds.Dy() <= maxDim {
		return false, nil
	}

	resized := imaging.Fit(img, maxDim, maxDim, imaging.Lanczos)
	if err := imaging.Save(resized, path, imaging.JPEGQuality(downscaleQuality)); err != nil {
		return false, fmt.Errorf("resim kaydedilemedi: %w", err)
	}
	return true, nil
}
