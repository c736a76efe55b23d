package enums

import (
	"fmt"
	"strings"
)

// AttributeKind classifies admin-managed customization options.
type AttributeKind string

const (
	AttributeKindSize  AttributeKind = "size"
	AttributeKindColor AttributeKind = "color"
	AttributeKindLogo  AttributeKind = "logo"
)

var validAttributeKinds = []AttributeKind{
	AttributeKindSize,
	AttributeKindColor,
	AttributeKindLogo,
}

// String implements fmt.Stringer.
func (k AttributeKind) String() string {
	return string(k)
}

// IsValid reports whether the value is a known AttributeKind.
func (k AttributeKind) IsValid() bool {
	for _, candidate := range validAttributeKinds {
		if candidate == k {
			return true
		}
	}
	return false
}

// ParseAttributeKind converts raw input into an AttributeKind.
func ParseAttributeKind(value string) (AttributeKind, error) {
	lowered := strings.ToLower(strings.TrimSpace(value))
	for _, candidate := range validAttributeKinds {
		if string(candidate) == lowered {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid attribute kind %q", value)
}
