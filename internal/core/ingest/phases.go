// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package ingest

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/nikolastojadinov/hajde-music-stream-sub003/internal/core/catalog"
	"github.com/nikolastojadinov/hajde-music-stream-sub003/internal/core/completion"
	"github.com/nikolastojadinov/hajde-music-stream-sub003/internal/platform/apperr"
	"github.com/nikolastojadinov/hajde-music-stream-sub003/internal/platform/constants"
	"github.com/nikolastojadinov/hajde-music-stream-sub003/internal/ytmusic"
	"github.com/nikolastojadinov/hajde-music-stream-sub003/pkg/pointer"
)

// outcome is the result of ingesting one collection.
type outcome int

const (
	outcomeIngested outcome = iota
	outcomeSkipped
	outcomeUnstable
	outcomeFailed
)

// # BOOTSTRAP

// bootstrap browses the artist page, stores identity and extras, and lists
// the albums and playlists for the next phases.
func (pipeline *Pipeline) bootstrap(ctx context.Context, rc RunContext) (RunContext, error) {
	page, err := pipeline.client.BrowseArtist(ctx, rc.Request.ExternalID)
	if err != nil {
		return rc, fmt.Errorf("browse artist %s: %w", rc.Request.ExternalID, err)
	}

	next := rc
	next.ArtistName = strings.TrimSpace(page.Artist.Name)
	next.ChannelID = rc.Request.ExternalID
	if catalog.IsChannelID(page.Artist.ChannelID) {
		next.ChannelID = strings.TrimSpace(page.Artist.ChannelID)
	}
	next.Albums = toRefs(page.Albums, catalog.KindAlbum)
	next.Playlists = toRefs(page.Playlists, catalog.KindPlaylist)

	identity := catalog.ArtistIdentity{
		ArtistKey:   rc.Request.ArtistKey,
		DisplayName: next.ArtistName,
		ChannelID:   next.ChannelID,
	}
	if err := pipeline.store.UpsertArtistIdentity(ctx, identity); err != nil {
		return next, fmt.Errorf("store artist identity: %w", err)
	}

	if pipeline.needsExtras(ctx, rc.Request.ArtistKey) {
		extras := catalog.ArtistExtras{Description: page.Description, ThumbnailURL: page.ThumbnailURL}
		if err := pipeline.store.UpdateArtistIfUnset(ctx, rc.Request.ArtistKey, extras); err != nil {
			next = next.withError(PhaseError{Phase: PhaseBootstrap, Item: "artist_extras", Err: err})
		}
	}

	pipeline.log(ctx).Info("artist_bootstrapped",
		slog.String("artist_key", rc.Request.ArtistKey),
		slog.String("channel_id", next.ChannelID),
		slog.Int("albums", len(next.Albums)),
		slog.Int("playlists", len(next.Playlists)),
	)
	return next, nil
}

// needsExtras reports whether the stored artist still lacks a description or
// thumbnail. A row deleted mid-run needs nothing. Other lookup failures fall
// through to the fill-if-empty write.
func (pipeline *Pipeline) needsExtras(ctx context.Context, artistKey string) bool {
	artist, err := pipeline.store.FindArtist(ctx, artistKey)
	if apperr.IsNotFound(err) {
		pipeline.log(ctx).Warn("artist_vanished", slog.String("artist_key", artistKey))
		return false
	}
	if err != nil {
		return true
	}
	return !artist.HasDescription() || artist.ThumbnailURL == nil || strings.TrimSpace(*artist.ThumbnailURL) == ""
}

// toRefs converts browse entries, dropping blank and repeated ids.
func toRefs(entries []ytmusic.CollectionRef, kind catalog.CollectionKind) []catalog.CollectionRef {
	refs := make([]catalog.CollectionRef, 0, len(entries))
	seen := make(map[string]struct{}, len(entries))

	for _, entry := range entries {
		id := strings.TrimSpace(entry.ID)
		if id == "" {
			continue
		}
		if _, dup := seen[id]; dup {
			continue
		}
		seen[id] = struct{}{}
		refs = append(refs, catalog.CollectionRef{
			ExternalID: id,
			Kind:       kind,
			Title:      strings.TrimSpace(entry.Title),
			TrackCount: entry.TrackCount,
		})
	}
	return refs
}

// # ALBUMS / PLAYLISTS

func (pipeline *Pipeline) albums(ctx context.Context, rc RunContext) (RunContext, error) {
	return pipeline.collections(ctx, rc, PhaseAlbums, true, pipeline.config.AlbumDelay)
}

func (pipeline *Pipeline) playlists(ctx context.Context, rc RunContext) (RunContext, error) {
	return pipeline.collections(ctx, rc, PhasePlaylists, false, pipeline.config.PlaylistDelay)
}

// collections ingests every ref of one kind, strictly one after another,
// pausing delay after each.
func (pipeline *Pipeline) collections(ctx context.Context, rc RunContext, phase Phase, skipComplete bool, delay time.Duration) (RunContext, error) {
	next := rc
	refs := rc.Albums
	stats := rc.AlbumStats
	if phase == PhasePlaylists {
		refs = rc.Playlists
		stats = rc.PlaylistStats
	}

	save := func() RunContext {
		if phase == PhasePlaylists {
			next.Playlists, next.PlaylistStats = refs, stats
		} else {
			next.Albums, next.AlbumStats = refs, stats
		}
		return next
	}

	for i, ref := range refs {
		stats.Seen++

		result, tracks, err := pipeline.ingestOne(ctx, rc.Request.ArtistKey, ref, skipComplete)
		switch result {
		case outcomeIngested:
			stats.Ingested++
			next.TracksUpserted += tracks
		case outcomeSkipped:
			stats.Skipped++
		case outcomeUnstable:
			stats.Unstable++
			ref.Unstable = true
			refs = withRef(refs, i, ref)
		case outcomeFailed:
			stats.Failed++
			next = next.withError(PhaseError{Phase: phase, Item: ref.ExternalID, Err: err})
			pipeline.log(ctx).Warn("collection_failed",
				slog.String("phase", string(phase)),
				slog.String("external_id", ref.ExternalID),
				slog.String(constants.FieldError, err.Error()),
			)
		}

		if err := wait(ctx, delay); err != nil {
			return save(), err
		}
	}

	return save(), nil
}

// ingestOne browses and stores one collection. tracks is the number of
// usable tracks written.
func (pipeline *Pipeline) ingestOne(ctx context.Context, artistKey string, ref catalog.CollectionRef, skipComplete bool) (outcome, int, error) {
	if skipComplete {
		snapshot, err := pipeline.tracker.AlbumCompletion(ctx, ref.ExternalID)
		if err != nil {
			pipeline.log(ctx).Warn("completion_check_failed",
				slog.String("external_id", ref.ExternalID),
				slog.String(constants.FieldError, err.Error()),
			)
		} else if snapshot.State == completion.StateComplete {
			return outcomeSkipped, 0, nil
		}
	}

	page, err := pipeline.client.BrowseCollection(ctx, ref.ExternalID)
	if err != nil {
		return outcomeFailed, 0, fmt.Errorf("browse collection: %w", err)
	}

	tracks := usableTracks(page.Tracks)
	if len(tracks) == 0 {
		unstable, err := pipeline.store.MarkCollectionEmpty(ctx, ref, artistKey, pipeline.config.UnstableThreshold)
		if err != nil {
			return outcomeFailed, 0, fmt.Errorf("mark empty collection: %w", err)
		}
		if unstable {
			pipeline.log(ctx).Warn("collection_quarantined", slog.String("external_id", ref.ExternalID))
			return outcomeUnstable, 0, nil
		}
		return outcomeSkipped, 0, nil
	}

	expected := ref.TrackCount
	if expected == nil {
		expected = pointer.To(len(page.Tracks))
	}

	title := strings.TrimSpace(page.Title)
	if title == "" {
		title = ref.Title
	}

	result, err := pipeline.store.UpsertCollection(ctx, catalog.CollectionPayload{
		ArtistKey:      artistKey,
		Kind:           ref.Kind,
		ExternalID:     ref.ExternalID,
		Title:          title,
		Subtitle:       page.Subtitle,
		ThumbnailURL:   page.ThumbnailURL,
		ExpectedTracks: expected,
		Tracks:         tracks,
	})
	if err != nil {
		return outcomeFailed, 0, fmt.Errorf("store collection: %w", err)
	}

	pipeline.log(ctx).Debug("collection_ingested",
		slog.String("external_id", ref.ExternalID),
		slog.Bool("created", result.Created),
		slog.Int("tracks_linked", result.TracksLinked),
	)
	return outcomeIngested, len(tracks), nil
}

// usableTracks keeps tracks with an id, first occurrence wins.
func usableTracks(raw []ytmusic.Track) []catalog.Track {
	tracks := make([]catalog.Track, 0, len(raw))
	seen := make(map[string]struct{}, len(raw))

	for _, t := range raw {
		id := t.ID()
		if id == "" {
			continue
		}
		if _, dup := seen[id]; dup {
			continue
		}
		seen[id] = struct{}{}
		tracks = append(tracks, catalog.Track{
			ExternalID:      id,
			Title:           strings.TrimSpace(t.Title),
			ArtistName:      t.Artist,
			DurationSeconds: t.DurationSeconds(),
		})
	}
	return tracks
}

// # FINALIZE

// finalize recomputes album completion for this run and touches the artist.
func (pipeline *Pipeline) finalize(ctx context.Context, rc RunContext) (RunContext, error) {
	next := rc
	snapshots := make([]completion.Snapshot, 0, len(rc.Albums))

	for _, ref := range rc.Albums {
		snapshot, err := pipeline.tracker.AlbumCompletion(ctx, ref.ExternalID)
		if err != nil {
			next = next.withError(PhaseError{Phase: PhaseFinalize, Item: ref.ExternalID, Err: err})
			continue
		}
		snapshots = append(snapshots, snapshot)
	}
	next.Completion = completion.Aggregate(snapshots)

	logger := pipeline.log(ctx)
	logger.Info("ingest_finalized",
		slog.String("artist_key", rc.Request.ArtistKey),
		slog.String("completion", string(next.Completion.State)),
		slog.Int("percent", next.Completion.Percent),
		slog.Int("tracks_upserted", next.TracksUpserted),
		slog.Any("albums", next.AlbumStats),
		slog.Any("playlists", next.PlaylistStats),
		slog.Int("errors", len(next.Errors)),
	)

	if err := pipeline.store.TouchArtist(ctx, rc.Request.ArtistKey); err != nil {
		return next, fmt.Errorf("touch artist: %w", err)
	}
	return next, nil
}
