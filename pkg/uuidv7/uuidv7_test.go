// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package uuidv7_test

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nikolastojadinov/hajde-music-stream-sub003/pkg/uuidv7"
)

func TestNew_IsVersion7(t *testing.T) {
	parsed, err := uuid.Parse(uuidv7.New())
	require.NoError(t, err)
	assert.Equal(t, uuid.Version(7), parsed.Version())
}

func TestNew_IsUnique(t *testing.T) {
	seen := make(map[string]struct{}, 100)
	for i := 0; i < 100; i++ {
		id := uuidv7.New()
		_, dup := seen[id]
		require.False(t, dup)
		seen[id] = struct{}{}
	}
}
