package validators

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"reflect"
	"strings"

	pkgerrors "github.com/ezoostore/storefront-backend/pkg/errors"
	"github.com/go-playground/validator/v10"
)

const maxBodyBytes = 8 << 20

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		tag := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if tag == "" {
			return f.Name
		}
		return tag
	})
	return v
}

// DecodeJSONBody decodes a strict body: unknown fields are rejected.
func DecodeJSONBody(r *http.Request, dest any) error {
	return decode(r, dest, true)
}

// DecodeLenientJSONBody accepts unknown fields. Order bodies from older
// storefront builds carry extra keys that are ignored server side.
func DecodeLenientJSONBody(r *http.Request, dest any) error {
	return decode(r, dest, false)
}

func decode(r *http.Request, dest any, strict bool) error {
	defer func() {
		_, _ = io.Copy(io.Discard, r.Body)
	}()

	// One byte past the limit tells an oversized body apart from a truncated one.
	limited := &io.LimitedReader{R: r.Body, N: maxBodyBytes + 1}
	decoder := json.NewDecoder(limited)
	if strict {
		decoder.DisallowUnknownFields()
	}
	if err := decoder.Decode(dest); err != nil {
		switch {
		case limited.N <= 0:
			return pkgerrors.Newf(pkgerrors.CodeValidation, "request body exceeds %d bytes", maxBodyBytes)
		case errors.Is(err, io.EOF):
			return pkgerrors.New(pkgerrors.CodeValidation, "request body is required")
		}
		return pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid request body").WithDetails(map[string]any{"error": err.Error()})
	}
	if decoder.More() {
		return pkgerrors.New(pkgerrors.CodeValidation, "request body must contain a single JSON object")
	}
	if err := validate.Struct(dest); err != nil {
		return formatValidationErrors(err)
	}
	return nil
}

func formatValidationErrors(err error) *pkgerrors.Error {
	var errs validator.ValidationErrors
	if errors.As(err, &errs) {
		details := map[string]string{}
		for _, fieldErr := range errs {
			details[fieldErr.Field()] = validationMessage(fieldErr)
		}
		return pkgerrors.New(pkgerrors.CodeValidation, "validation failed").WithDetails(details)
	}
	return pkgerrors.Wrap(pkgerrors.CodeValidation, err, "validation failed")
}

func validationMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "is required"
	case "min":
		return fmt.Sprintf("must be at least %s", fe.Param())
	case "max":
		return fmt.Sprintf("must be at most %s", fe.Param())
	case "email":
		return "must be a valid email"
	case "oneof":
		return fmt.Sprintf("must be one of %s", fe.Param())
	case "gte":
		return fmt.Sprintf("must be greater than or equal to %s", fe.Param())
	case "lte":
		return fmt.Sprintf("must be less than or equal to %s", fe.Param())
	}
	return "is invalid"
}
