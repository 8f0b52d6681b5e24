package submission

import (
	"bytes"
	"fmt"
	"image"
	"image/jpeg"
	_ "image/png"

	"github.com/rescuelink/api-go/apperrors"
)

// allowedPhotoTypes is the accepted attachment set. WebP passes validation
// but cannot be re-encoded here, so it takes the degrade path in Normalize.
var allowedPhotoTypes = map[string]bool{
	"image/jpeg": true,
	"image/jpg":  true,
	"image/png":  true,
	"image/webp": true,
}

const normalizeQuality = 85

// ValidatePhoto checks an attachment's content type and size against the
// configured bounds, accumulating failures like any other field.
func ValidatePhoto(contentType string, size, maxBytes int64, errs *apperrors.ValidationErrors) {
	if !allowedPhotoTypes[contentType] {
		errs.Add("photo", "only JPEG, PNG and WebP images are allowed")
	}
	if size > maxBytes {
		errs.Add("photo", fmt.Sprintf("photo exceeds the %dMB limit", maxBytes/(1024*1024)))
	}
	if size == 0 {
		errs.Add("photo", "photo file is empty")
	}
}

// Normalize re-encodes validated image bytes as JPEG, which also strips any
// embedded metadata. Callers fall back to the original bytes on error; a
// failed normalization never drops the attachment or the submission.
func Normalize(data []byte) ([]byte, string, error) {
	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, "", fmt.Errorf("decode photo: %v", err)
	}

	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, img, &jpeg.Options{Quality: normalizeQuality}); err != nil {
		return nil, "", fmt.Errorf("re-encode photo: %v", err)
	}

	return buf.Bytes(), "image/jpeg", nil
}
