package services

import (
	"bytes"
	"fmt"

	catalog_errors "catalog-service/pkg/errors"

	"github.com/disintegration/imaging"
)

// Thumbnailer derives the fixed-format secondary image from an upload.
// Output is always JPEG fitted into a square bounding box; source aspect
// ratio is preserved.
type Thumbnailer struct {
	boxPx   int
	quality int
}

func NewThumbnailer(boxPx, quality int) *Thumbnailer {
	if boxPx <= 0 {
		boxPx = 320
	}
	if quality <= 0 || quality > 100 {
		quality = 80
	}
	return &Thumbnailer{boxPx: boxPx, quality: quality}
}

func (t *Thumbnailer) Generate(data []byte) ([]byte, error) {
	src, err := imaging.Decode(bytes.NewReader(data), imaging.AutoOrientation(true))
	if err != nil {
		return nil, fmt.Errorf("%w: undecodable image: %v", catalog_errors.ErrInvalidInput, err)
	}

	thumb := imaging.Fit(src, t.boxPx, t.boxPx, imaging.Lanczos)

	var buf bytes.Buffer
	if err := imaging.Encode(&buf, thumb, imaging.JPEG, imaging.JPEGQuality(t.quality)); err != nil {
		return nil, fmt.Errorf("encode thumbnail: %w", err)
	}
	return buf.Bytes(), nil
}
