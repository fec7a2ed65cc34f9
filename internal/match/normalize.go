// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package match implements the heuristic pre-filter that narrows the
// publication-grant pairing space before any external judgment call:
// name normalization, investigator matching, temporal scoring, and
// ranked candidate selection. Everything here is pure and deterministic.
package match

import (
	"regexp"
	"strings"
)

// honorificRe strips honorific tokens (with or without a trailing period)
// matched as whole words only.
var honorificRe = regexp.MustCompile(`\b(dr|prof|professor|phd|md)\b\.?`)

// NormalizeName canonicalizes a person name for comparison: lowercase,
// honorifics removed, whitespace collapsed. An empty or absent name
// normalizes to the empty string.
func NormalizeName(name string) string {
	name = strings.ToLower(strings.TrimSpace(name))
	name = honorificRe.ReplaceAllString(name, "")
	return strings.Join(strings.Fields(name), " ")
}
