// Package property enumerates the houses offered on the site.
package property

import (
	"errors"
	"fmt"
	"strings"
)

var ErrUnknownProperty = errors.New("property: unknown property key")

// Key identifies one of the two houses.
type Key string

const (
	WhiteHouse Key = "WH"
	GlassHouse Key = "GH"
)

var all = []Key{WhiteHouse, GlassHouse}

// All returns every known key in a stable order.
func All() []Key {
	return append([]Key(nil), all...)
}

// ParseKey accepts keys case-insensitively.
func ParseKey(raw string) (Key, error) {
	k := Key(strings.ToUpper(strings.TrimSpace(raw)))
	if !k.Valid() {
		return "", fmt.Errorf("%w: %q", ErrUnknownProperty, raw)
	}
	return k, nil
}

func (k Key) Valid() bool {
	switch k {
	case WhiteHouse, GlassHouse:
		return true
	}
	return false
}

// DisplayName is the name used in inquiries, e.g. "The White House".
func (k Key) DisplayName() string {
	if short := k.ShortName(); short != string(k) {
		return "The " + short
	}
	return string(k)
}

// ShortName is the name used in availability labels, e.g. "White House".
func (k Key) ShortName() string {
	switch k {
	case WhiteHouse:
		return "White House"
	case GlassHouse:
		return "Glass House"
	}
	return string(k)
}

func (k Key) String() string {
	return string(k)
}
