package media

import (
	"encoding/base64"
	"errors"
	"strings"
)

var ErrInvalidDataURI = errors.New("image must be a base64 data URI")

// DecodeDataURI splits "data:<mime>;base64,<payload>" into its declared
// content type and raw bytes. A bare base64 payload is accepted with an empty
// declared type.
func DecodeDataURI(value string) (string, []byte, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return "", nil, ErrInvalidDataURI
	}

	declared := ""
	payload := value
	if strings.HasPrefix(value, "data:") {
		header, body, ok := strings.Cut(strings.TrimPrefix(value, "data:"), ",")
		if !ok || !strings.HasSuffix(header, ";base64") {
			return "", nil, ErrInvalidDataURI
		}
		declared = strings.ToLower(strings.TrimSuffix(header, ";base64"))
		payload = body
	}

	data, err := base64.StdEncoding.DecodeString(payload)
	if err != nil {
		data, err = base64.RawStdEncoding.DecodeString(payload)
		if err != nil {
			return "", nil, ErrInvalidDataURI
		}
	}
	if len(data) == 0 {
		return "", nil, ErrInvalidDataURI
	}
	return declared, data, nil
}

// IsDataURI reports whether value looks like an inline upload rather than a URL.
func IsDataURI(value string) bool {
	return strings.HasPrefix(strings.TrimSpace(value), "data:")
}
