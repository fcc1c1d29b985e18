// Package id generates the prefixed identifiers used for catalog entities.
package id

import (
	"fmt"
	"regexp"

	gonanoid "github.com/matoous/go-nanoid/v2"
)

// Entity prefixes.
const (
	PrefixUser    = "user"
	PrefixStore   = "store"
	PrefixItem    = "item"
	PrefixTag     = "tag"
	PrefixItemTag = "itag"
)

// validPattern bounds ids accepted from clients (item PUT with an unknown id).
var validPattern = regexp.MustCompile(`^[A-Za-z0-9_-]{1,64}$`)

// Generate creates an id of the form prefix-nanoid, e.g. "store-V1StGXR8_Z5jdHi6B-myT".
func Generate(prefix string) (string, error) {
	nid, err := gonanoid.New()
	if err != nil {
		return "", fmt.Errorf("generate nanoid: %w", err)
	}
	return prefix + "-" + nid, nil
}

// Valid reports whether s is acceptable as a client-supplied id.
func Valid(s string) bool {
	return validPattern.MatchString(s)
}
