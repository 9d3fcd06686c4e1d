// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

// Package normalize canonicalizes artist names for comparison.
//
// # Usage
//
// Search results and backlog candidates spell the same artist with different
// casing, spacing, accents and Unicode compatibility forms ("ＡＢＢＡ",
// "abba ", "Beyoncé" and "Beyonce").
// Comparisons in the resolver always go through [Name].
package normalize

import (
	"strings"
	"unicode"

	"golang.org/x/text/cases"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// Name converts a display name into its comparison form.
//
// # Transformation Pipeline
//
// 1. Decomposes to NFKD (full-width and ligature forms collapse, é → e + combining acute).
// 2. Removes combining marks (accents), then recomposes to NFC.
// 3. Case-folds (Unicode aware, "Straße" == "STRASSE").
// 4. Collapses runs of whitespace into a single space and trims the ends.
func Name(s string) string {
	if s == "" {
		return ""
	}

	// 1. Compatibility decomposition and accent removal
	t := transform.Chain(norm.NFKD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	result, _, err := transform.String(t, s)
	if err != nil {
		result = s
	}

	// 2. Case folding
	result = cases.Fold().String(result)

	// 3. Whitespace cleanup
	return strings.Join(strings.Fields(result), " ")
}

// Equal reports whether two names are the same after normalization.
func Equal(a, b string) bool {
	na, nb := Name(a), Name(b)
	return na != "" && na == nb
}

// ContainsEither reports whether either normalized name contains the other.
// Blank names never match.
func ContainsEither(a, b string) bool {
	na, nb := Name(a), Name(b)
	if na == "" || nb == "" {
		return false
	}
	return strings.Contains(na, nb) || strings.Contains(nb, na)
}

// ContainsWord reports whether the normalized text contains any of the words.
func ContainsWord(text string, words ...string) bool {
	normalized := Name(text)
	if normalized == "" {
		return false
	}
	for _, word := range words {
		if strings.Contains(normalized, Name(word)) {
			return true
		}
	}
	return false
}
