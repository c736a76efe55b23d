package media

import (
	"fmt"
	"strings"

	"github.com/gabriel-vasile/mimetype"
)

var allowedImageTypes = []string{"image/png", "image/jpeg", "image/webp", "image/gif", "image/svg+xml"}

// sniffImage trusts the bytes, not the declared type: the detected type must
// be an allowed image.
func sniffImage(declared string, data []byte) (string, string, error) {
	detected := mimetype.Detect(data)
	if !mimetype.EqualsAny(detected.String(), allowedImageTypes...) {
		return "", "", fmt.Errorf("unsupported image type %q (allowed: %s)", detected.String(), strings.Join(allowedImageTypes, ", "))
	}
	if declared != "" && !strings.HasPrefix(declared, "image/") {
		return "", "", fmt.Errorf("declared type %q is not an image", declared)
	}
	mediaType, _, _ := strings.Cut(detected.String(), ";")
	return mediaType, detected.Extension(), nil
}
