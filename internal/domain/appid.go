package domain

import (
	"errors"
	"strings"
)

// ErrInvalidAppID is returned when an app id lacks the "app_" prefix.
var ErrInvalidAppID = errors.New("app id must start with \"app_\"")

// AppID identifies the relying party requesting a proof.
type AppID string

// ParseAppID validates s as an app id.
func ParseAppID(s string) (AppID, error) {
	if !strings.HasPrefix(s, "app_") {
		return "", ErrInvalidAppID
	}
	return AppID(s), nil
}

// IsStaging reports whether the app id belongs to the staging environment.
func (a AppID) IsStaging() bool { return strings.HasPrefix(string(a), "app_staging_") }

func (a AppID) String() string { return string(a) }
