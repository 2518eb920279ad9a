package delimiters

import (
	"fmt"
	"regexp"
	"strings"

	validation "github.com/go-ozzo/ozzo-validation/v4"

	"github.com/goliatone/go-mathfilter/pkg/interfaces"
)

// familyPattern keeps family identifiers safe to emit as attribute values
// and CSS class suffixes.
var familyPattern = regexp.MustCompile(`^[a-z0-9][a-z0-9_\-]*$`)

// NormalizeFamily trims and lower-cases a family identifier.
func NormalizeFamily(family string) string {
	return strings.ToLower(strings.TrimSpace(family))
}

// Validate checks a delimiter definition. The family is expected to be normalised.
func Validate(d interfaces.Delimiter) error {
	err := validation.ValidateStruct(&d,
		validation.Field(&d.Open, validation.Required.Error("open marker is required")),
		validation.Field(&d.Close, validation.Required.Error("close marker is required")),
		validation.Field(&d.Family,
			validation.Required.Error("family is required"),
			validation.Match(familyPattern).Error("family must be lower-case letters, digits, '-' or '_'"),
		),
	)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidDelimiter, err)
	}
	return nil
}
