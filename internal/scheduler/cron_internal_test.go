// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package scheduler

import (
	"bytes"
	"io"
	"log/slog"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

/*
TestScheduler_TickRecoversPanic verifies that a panicking run neither
escapes the tick nor leaves the run flag set.
*/
func TestScheduler_TickRecoversPanic(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	// A runner without collaborators panics once it reaches the lock.
	runner := NewRunner(nil, nil, nil, time.UTC, logger)
	state := NewState()

	s, err := NewScheduler(runner, state, RunConfig{CronExpression: "@hourly", BatchSize: 1}, time.UTC, logger)
	require.NoError(t, err)

	assert.NotPanics(t, s.tick)
	assert.False(t, state.Running())
	require.NotNil(t, state.LastReport())
}

/*
TestScheduler_TickLogsFatalAndContinues verifies that a precondition failure
is logged at error level and later ticks still run.
*/
func TestScheduler_TickLogsFatalAndContinues(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, nil))

	runner := NewRunner(nil, nil, nil, time.UTC, logger)
	s, err := NewScheduler(runner, NewState(), RunConfig{CronExpression: "@hourly", BatchSize: 0}, time.UTC, logger)
	require.NoError(t, err)

	assert.NotPanics(t, s.tick)
	assert.NotPanics(t, s.tick)

	var failures int
	for _, line := range strings.Split(strings.TrimSpace(buf.String()), "\n") {
		if strings.Contains(line, "msg=tick_failed") {
			failures++
			assert.Contains(t, line, "level=ERROR")
		}
	}
	assert.Equal(t, 2, failures)
}
