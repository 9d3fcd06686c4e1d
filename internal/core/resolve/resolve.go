// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

// Package resolve maps a backlog artist to its external catalog id.
//
// # Algorithm
//
//  1. Build up to three queries from the candidate's names.
//  2. Search each query in order and score every artist-shaped entry.
//  3. Stop at the first query whose best entry scores above zero.
//
// In strict mode only official entries qualify and the winner's artist page
// is browsed to obtain its canonical channel id.
package resolve

import (
	"context"
	"log/slog"
	"strings"

	"github.com/nikolastojadinov/hajde-music-stream-sub003/internal/core/catalog"
	"github.com/nikolastojadinov/hajde-music-stream-sub003/internal/platform/constants"
	"github.com/nikolastojadinov/hajde-music-stream-sub003/internal/platform/ctxutil"
	"github.com/nikolastojadinov/hajde-music-stream-sub003/internal/ytmusic"
	"github.com/nikolastojadinov/hajde-music-stream-sub003/pkg/normalize"
	"github.com/nikolastojadinov/hajde-music-stream-sub003/pkg/pointer"
)

// Match sources.
const (
	SourceSearch = "search"
	SourceHero   = "hero"
)

// Match is an accepted resolution.
type Match struct {
	ExternalID string `json:"external_id"`
	Name       string `json:"name"`
	Score      int    `json:"score"`
	Query      string `json:"query"`
	Source     string `json:"source"`
}

// Resolver performs artist resolution against the external catalog.
type Resolver struct {
	client ytmusic.Client
	strict bool
	logger *slog.Logger
}

// NewResolver creates a resolver. strict enables hero mode.
func NewResolver(client ytmusic.Client, strict bool, logger *slog.Logger) *Resolver {
	return &Resolver{client: client, strict: strict, logger: logger}
}

// Queries returns the display name, normalized name and artist key, in that
// order, without blanks or duplicates.
func Queries(candidate catalog.Candidate) []string {
	raw := []string{pointer.Val(candidate.DisplayName), candidate.NormalizedName, candidate.ArtistKey}

	seen := make(map[string]struct{}, len(raw))
	queries := make([]string, 0, len(raw))
	for _, q := range raw {
		q = strings.TrimSpace(q)
		key := normalize.Name(q)
		if key == "" {
			continue
		}
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}
		queries = append(queries, q)
	}
	return queries
}

// Resolve returns the best match, or nil when no query produced one.
// Search failures are treated as "no match"; only cancellation is returned.
func (resolver *Resolver) Resolve(ctx context.Context, candidate catalog.Candidate) (*Match, error) {
	for _, query := range Queries(candidate) {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		result, err := resolver.client.Search(ctx, query)
		if err != nil {
			resolver.log(ctx).Warn("resolve_search_failed",
				slog.String("artist_key", candidate.ArtistKey),
				slog.String("query", query),
				slog.String(constants.FieldError, err.Error()),
			)
			continue
		}

		best, score := resolver.pick(result.ArtistEntries(), query)
		if best == nil {
			continue
		}

		match := &Match{ExternalID: best.ID, Name: best.Name, Score: score, Query: query, Source: SourceSearch}
		if resolver.strict {
			match.ExternalID = resolver.heroChannel(ctx, best.ID)
			match.Source = SourceHero
		}

		resolver.log(ctx).Info("resolve_matched",
			slog.String("artist_key", candidate.ArtistKey),
			slog.String("external_id", match.ExternalID),
			slog.String("query", query),
			slog.Int("score", score),
			slog.String("source", match.Source),
		)
		return match, nil
	}

	return nil, ctx.Err()
}

// pick returns the highest-scoring entry. Ties keep the first seen.
func (resolver *Resolver) pick(entries []ytmusic.SearchArtist, query string) (*ytmusic.SearchArtist, int) {
	var best *ytmusic.SearchArtist
	bestScore := 0

	for i := range entries {
		entry := &entries[i]
		if entry.ID == "" {
			continue
		}
		if resolver.strict && !entry.IsOfficial {
			continue
		}

		score := Score(*entry, query)
		if score > bestScore {
			best, bestScore = entry, score
		}
	}
	return best, bestScore
}

// heroChannel browses the artist page and prefers its channel-shaped id.
func (resolver *Resolver) heroChannel(ctx context.Context, searchID string) string {
	page, err := resolver.client.BrowseArtist(ctx, searchID)
	if err != nil {
		resolver.log(ctx).Warn("resolve_hero_browse_failed",
			slog.String("external_id", searchID),
			slog.String(constants.FieldError, err.Error()),
		)
		return searchID
	}

	if catalog.IsChannelID(page.Artist.ChannelID) {
		return strings.TrimSpace(page.Artist.ChannelID)
	}
	return searchID
}

// log prefers the run-scoped logger carried by ctx.
func (resolver *Resolver) log(ctx context.Context) *slog.Logger {
	return ctxutil.LoggerOr(ctx, resolver.logger)
}
