// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package normalize_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/nikolastojadinov/hajde-music-stream-sub003/pkg/normalize"
)

func TestName(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"lowercases", "Test Artist", "test artist"},
		{"collapses_whitespace", "  Test \t  Artist ", "test artist"},
		{"full_width", "ＡＢＢＡ", "abba"},
		{"strips_accents", "Beyoncé", "beyonce"},
		{"strips_stacked_marks", "Đorđe Balašević", "đorđe balasevic"},
		{"folds_sharp_s", "Straße", "strasse"},
		{"empty", "", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, normalize.Name(tt.input))
		})
	}
}

func TestEqual(t *testing.T) {
	assert.True(t, normalize.Equal("Test Artist", "test  artist"))
	assert.False(t, normalize.Equal("Test Artist", "Test Artists"))
	assert.False(t, normalize.Equal("", "  "))
	assert.True(t, normalize.Equal("Beyoncé", "BEYONCE"))
}

func TestContainsEither(t *testing.T) {
	assert.True(t, normalize.ContainsEither("Test Artist", "Test Artist Live"))
	assert.True(t, normalize.ContainsEither("The Test Artist Band", "test artist"))
	assert.False(t, normalize.ContainsEither("Test Artist", "Other"))
	assert.False(t, normalize.ContainsEither("", "Other"))
}

func TestContainsWord(t *testing.T) {
	assert.True(t, normalize.ContainsWord("A TRIBUTE to Queen", "tribute", "cover"))
	assert.True(t, normalize.ContainsWord("Queen Covers", "tribute", "cover"))
	assert.False(t, normalize.ContainsWord("Queen", "tribute", "cover"))
}
