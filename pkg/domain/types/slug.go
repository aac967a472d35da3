package types

import (
	"crypto/sha256"
	"encoding/hex"
	"strings"
	"unicode"
)

// CompanySlug is the normalized identifier of a company. All knowledge about
// one company is keyed by its slug.
type CompanySlug string

const maxSlugLength = 128

// NewCompanySlug normalizes a company name into a slug: ASCII letters and
// digits are lowercased, every other run of characters collapses into a
// single dash. Names without any ASCII content (e.g. CJK-only names) fall
// back to a hash-derived slug so they still get a stable key.
func NewCompanySlug(name string) CompanySlug {
	var sb strings.Builder
	lastDash := true
	for _, r := range name {
		switch {
		case r < unicode.MaxASCII && (unicode.IsLetter(r) || unicode.IsDigit(r)):
			sb.WriteRune(unicode.ToLower(r))
			lastDash = false
		default:
			if !lastDash {
				sb.WriteByte('-')
				lastDash = true
			}
		}
	}

	slug := strings.Trim(sb.String(), "-")
	if slug != "" {
		if len(slug) > maxSlugLength {
			slug = slug[:maxSlugLength]
		}
		return CompanySlug(slug)
	}

	digest := sha256.Sum256([]byte(name))
	return CompanySlug("h-" + hex.EncodeToString(digest[:])[:32])
}

// IsEmpty reports whether the slug is empty
func (s CompanySlug) IsEmpty() bool {
	return s == ""
}

// String returns the string representation of the slug
func (s CompanySlug) String() string {
	return string(s)
}
