// Package messages reads historical message windows for a contact from a
// read-only SQLite message store, optionally synced from blob storage.
package messages

import (
	"context"
	"strings"
)

// Message is one stored message as read from the message store.
// Timestamp is kept in the store's text form.
type Message struct {
	UserID        string `json:"userId"`
	Text          string `json:"text"`
	Timestamp     string `json:"timestamp"`
	Service       string `json:"service"`
	DestinationID string `json:"destinationId"`
	IsFromMe      bool   `json:"isFromMe"`
}

// Source returns up to limit messages exchanged with phone, newest first.
// A phone with no history yields an empty slice, not an error.
type Source interface {
	Messages(ctx context.Context, phone string, limit int) ([]Message, error)
}

// NormalizePhone strips everything except digits, keeping a leading "+".
func NormalizePhone(raw string) string {
	raw = strings.TrimSpace(raw)

	var b strings.Builder
	if strings.HasPrefix(raw, "+") {
		b.WriteByte('+')
	}
	for _, r := range raw {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}

	if b.Len() == 1 && strings.HasPrefix(b.String(), "+") {
		return ""
	}
	return b.String()
}

// PhoneVariants returns the identifiers a phone number may be stored under:
// the normalized value and, for numbers without a country prefix, "+<n>"
// and "+1<n>". Returns nil when the input holds no digits.
func PhoneVariants(raw string) []string {
	n := NormalizePhone(raw)
	if n == "" {
		return nil
	}

	candidates := []string{n}
	if !strings.HasPrefix(n, "+") {
		candidates = append(candidates, "+"+n, "+1"+n)
	}

	seen := make(map[string]struct{}, len(candidates))
	variants := make([]string, 0, len(candidates))
	for _, c := range candidates {
		if _, ok := seen[c]; ok {
			continue
		}
		seen[c] = struct{}{}
		variants = append(variants, c)
	}
	return variants
}
