// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package ingest

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

/*
TestRunPhase_CurrentPhase verifies that the running phase is visible to the
phase itself and remains set on the context a failing phase returns.
*/
func TestRunPhase_CurrentPhase(t *testing.T) {
	pipeline := &Pipeline{logger: slog.New(slog.NewTextHandler(io.Discard, nil))}
	start := RunContext{CurrentPhase: PhaseBootstrap}

	tests := []struct {
		name string
		run  func(seen *Phase) phaseFunc
		errs int
	}{
		{"success", func(seen *Phase) phaseFunc {
			return func(_ context.Context, rc RunContext) (RunContext, error) {
				*seen = rc.CurrentPhase
				return rc, nil
			}
		}, 0},
		{"error", func(seen *Phase) phaseFunc {
			return func(_ context.Context, rc RunContext) (RunContext, error) {
				*seen = rc.CurrentPhase
				return rc, errors.New("browse failed")
			}
		}, 1},
		{"panic", func(seen *Phase) phaseFunc {
			return func(_ context.Context, rc RunContext) (RunContext, error) {
				*seen = rc.CurrentPhase
				panic("decoder exploded")
			}
		}, 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var seen Phase
			out := pipeline.runPhase(context.Background(), PhaseAlbums, tt.run(&seen), start)

			assert.Equal(t, PhaseAlbums, seen)
			assert.Equal(t, PhaseAlbums, out.CurrentPhase)
			require.Len(t, out.Errors, tt.errs)
			if tt.errs > 0 {
				assert.Equal(t, PhaseAlbums, out.Errors[0].Phase)
			}
			assert.Equal(t, PhaseBootstrap, start.CurrentPhase)
		})
	}
}
