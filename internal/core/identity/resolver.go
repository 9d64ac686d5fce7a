// Package identity derives the owner identity used to scope a user's transactions.
package identity

import (
	"strings"

	"github.com/SscSPs/finance_dashboard/internal/core/domain"
)

// Extractor returns an identity candidate from the principal, or false when it has none.
type Extractor func(p domain.Principal) (string, bool)

// MetadataKeys are checked in order before the principal's own phone and email.
// Identities created by the messaging bot live in metadata and must win.
var MetadataKeys = []string{
	"whatsapp",
	"whatsapp_id",
	"wa_id",
	"whatsappNumber",
	"phone",
	"phoneNumber",
	"phone_number",
	"user",
	"user_id",
}

// Resolver tries its extractors in order; the first match wins.
type Resolver struct {
	extractors []Extractor
}

// New creates a Resolver with the given extractors.
func New(extractors ...Extractor) *Resolver {
	return &Resolver{extractors: extractors}
}

// Default returns the standard chain: metadata keys, then phone, then email.
func Default() *Resolver {
	extractors := make([]Extractor, 0, len(MetadataKeys)+2)
	for _, key := range MetadataKeys {
		extractors = append(extractors, Metadata(key))
	}
	extractors = append(extractors, Phone, Email)
	return New(extractors...)
}

// Resolve returns the first identity found, or false if no extractor matched.
func (r *Resolver) Resolve(p domain.Principal) (string, bool) {
	for _, extract := range r.extractors {
		if v, ok := extract(p); ok {
			return v, true
		}
	}
	return "", false
}

// Metadata extracts a string metadata value. Non-strings and blank strings do not count.
// The value is returned untrimmed so it matches rows written with the same bytes.
func Metadata(key string) Extractor {
	return func(p domain.Principal) (string, bool) {
		if p.Metadata == nil {
			return "", false
		}
		s, ok := p.Metadata[key].(string)
		if !ok || !nonBlank(s) {
			return "", false
		}
		return s, true
	}
}

// Phone extracts the principal's phone.
func Phone(p domain.Principal) (string, bool) {
	if !nonBlank(p.Phone) {
		return "", false
	}
	return p.Phone, true
}

// Email extracts the principal's email.
func Email(p domain.Principal) (string, bool) {
	if !nonBlank(p.Email) {
		return "", false
	}
	return p.Email, true
}

func nonBlank(s string) bool {
	return strings.TrimSpace(s) != ""
}
