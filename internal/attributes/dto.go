package attributes

import (
	"time"

	"github.com/ezoostore/storefront-backend/pkg/db/models"
	"github.com/ezoostore/storefront-backend/pkg/enums"
)

// AttributeDTO is the API shape of an attribute.
type AttributeDTO struct {
	ID        string              `json:"id"`
	Kind      enums.AttributeKind `json:"kind"`
	Value     string              `json:"value"`
	LogoURL   string              `json:"logoUrl,omitempty"`
	CreatedAt time.Time           `json:"createdAt"`
	UpdatedAt time.Time           `json:"updatedAt"`
}

func FromModel(m models.Attribute) AttributeDTO {
	return AttributeDTO{
		ID:        m.ID,
		Kind:      m.Kind,
		Value:     m.Value,
		LogoURL:   m.LogoURL,
		CreatedAt: m.CreatedAt,
		UpdatedAt: m.UpdatedAt,
	}
}

// CreateInput is the admin payload for a new attribute. Logo attributes take
// either a hosted LogoURL or inline LogoData to upload.
type CreateInput struct {
	Kind     string `json:"kind" validate:"required,oneof=size color logo"`
	Value    string `json:"value" validate:"omitempty,max=64"`
	LogoURL  string `json:"logoUrl" validate:"omitempty,url"`
	LogoData string `json:"file"`
}

// UpdateInput carries optional changes; kind is immutable.
type UpdateInput struct {
	Value    *string `json:"value" validate:"omitempty,max=64"`
	LogoURL  *string `json:"logoUrl" validate:"omitempty,url"`
	LogoData *string `json:"file"`
}

// Options is the catalog view used to check a shopper's selections.
type Options struct {
	Sizes  map[string]struct{}
	Colors map[string]struct{}
	Logos  map[string]struct{}
}

func newOptions(attrs []AttributeDTO) Options {
	opts := Options{
		Sizes:  map[string]struct{}{},
		Colors: map[string]struct{}{},
		Logos:  map[string]struct{}{},
	}
	for _, a := range attrs {
		switch a.Kind {
		case enums.AttributeKindSize:
			opts.Sizes[normalizeOption(a.Value)] = struct{}{}
		case enums.AttributeKindColor:
			opts.Colors[normalizeOption(a.Value)] = struct{}{}
		case enums.AttributeKindLogo:
			if a.LogoURL != "" {
				opts.Logos[a.LogoURL] = struct{}{}
			}
		}
	}
	return opts
}

// HasSize is true when size is configured, or when no sizes are configured at all.
func (o Options) HasSize(size string) bool {
	return acceptsOption(o.Sizes, normalizeOption(size))
}

func (o Options) HasColor(color string) bool {
	return acceptsOption(o.Colors, normalizeOption(color))
}

func (o Options) HasLogo(url string) bool {
	return acceptsOption(o.Logos, url)
}

func acceptsOption(set map[string]struct{}, value string) bool {
	if len(set) == 0 {
		return true
	}
	_, ok := set[value]
	return ok
}
