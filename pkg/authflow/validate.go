// pkg/authflow/validate.go

package authflow

import (
	"strings"

	"github.com/go-playground/validator/v10"
)

var validate = validator.New()

type identityFormat struct {
	Identity string `validate:"required,alphanum,min=3"`
}

// ValidIdentity reports whether an operator ID is acceptable: alphanumeric,
// at least three characters, no internal whitespace. Applied uniformly to
// environment, stored, and prompted identities.
func ValidIdentity(raw string) bool {
	identity := strings.TrimSpace(raw)
	if strings.ContainsAny(identity, " \t") {
		return false
	}
	return validate.Struct(identityFormat{Identity: identity}) == nil
}
