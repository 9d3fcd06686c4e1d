// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package resolve

import (
	"strings"

	"github.com/nikolastojadinov/hajde-music-stream-sub003/internal/ytmusic"
	"github.com/nikolastojadinov/hajde-music-stream-sub003/pkg/normalize"
)

// Rule is one weighted heuristic of the match score.
type Rule struct {
	Name    string
	Weight  int
	Applies func(entry ytmusic.SearchArtist, query string) bool
}

// Rule weights.
const (
	WeightExactName      = 200
	WeightContainsName   = 60
	WeightArtistPage     = 40
	WeightOfficial       = 30
	WeightTributeOrCover = -100
)

// Rules is the scoring table, evaluated in order.
var Rules = []Rule{
	{
		Name:   "exact_name",
		Weight: WeightExactName,
		Applies: func(entry ytmusic.SearchArtist, query string) bool {
			return normalize.Equal(entry.Name, query)
		},
	},
	{
		Name:   "contains_name",
		Weight: WeightContainsName,
		Applies: func(entry ytmusic.SearchArtist, query string) bool {
			return !normalize.Equal(entry.Name, query) && normalize.ContainsEither(entry.Name, query)
		},
	},
	{
		Name:   "artist_page",
		Weight: WeightArtistPage,
		Applies: func(entry ytmusic.SearchArtist, _ string) bool {
			return strings.Contains(strings.ToLower(entry.PageType), "artist")
		},
	},
	{
		Name:   "official",
		Weight: WeightOfficial,
		Applies: func(entry ytmusic.SearchArtist, _ string) bool {
			return entry.IsOfficial
		},
	},
	{
		Name:   "tribute_or_cover",
		Weight: WeightTributeOrCover,
		Applies: func(entry ytmusic.SearchArtist, _ string) bool {
			return normalize.ContainsWord(entry.Name, "tribute", "cover") ||
				normalize.ContainsWord(entry.Subtitle, "tribute", "cover")
		},
	},
}

// Score sums the weights of every rule that applies. It has no side effects.
func Score(entry ytmusic.SearchArtist, query string) int {
	total := 0
	for _, rule := range Rules {
		if rule.Applies(entry, query) {
			total += rule.Weight
		}
	}
	return total
}
