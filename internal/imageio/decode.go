// Package imageio decodes uploaded and webcam-captured images.
package imageio

import (
	"bytes"
	"encoding/base64"
	"image"
	"strings"

	"github.com/disintegration/imaging"
	"github.com/gabriel-vasile/mimetype"

	"github.com/Brownie44l1/emotion-detector/internal/domain"
)

var supportedTypes = map[string]string{
	"image/jpeg": "jpeg",
	"image/png":  "png",
	"image/gif":  "gif",
	"image/bmp":  "bmp",
	"image/tiff": "tiff",
}

// Decode sniffs the content type of data and decodes it, applying any EXIF
// orientation. It returns the image and its format name.
func Decode(data []byte) (image.Image, string, error) {
	if len(data) == 0 {
		return nil, "", domain.ErrNoImage
	}

	mime := mimetype.Detect(data)
	format, ok := supportedTypes[mime.String()]
	if !ok {
		return nil, "", domain.ErrUnsupportedImage.WithError(nil)
	}

	img, err := imaging.Decode(bytes.NewReader(data), imaging.AutoOrientation(true))
	if err != nil {
		return nil, "", domain.ErrInvalidImage.WithError(err)
	}

	return img, format, nil
}

// DecodeDataURL extracts the payload of a base64 data URL such as
// "data:image/png;base64,iVBOR...". A bare base64 string is accepted as well.
func DecodeDataURL(s string) ([]byte, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil, domain.ErrNoImage
	}

	encoded := s
	if _, payload, found := strings.Cut(s, ","); found {
		encoded = payload
	}

	data, err := base64.StdEncoding.DecodeString(encoded)
	if err != nil {
		return nil, domain.ErrInvalidImage.WithError(err)
	}
	if len(data) == 0 {
		return nil, domain.ErrNoImage
	}
	return data, nil
}
