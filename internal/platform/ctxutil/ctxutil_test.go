// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package ctxutil_test

import (
	"context"
	"log/slog"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/nikolastojadinov/hajde-music-stream-sub003/internal/platform/ctxutil"
)

/*
TestContext_RequestID verifies that Request IDs can be injected and retrieved.
*/
func TestContext_RequestID(t *testing.T) {
	ctx := context.Background()

	// 1. Initially should be empty
	assert.Empty(t, ctxutil.GetRequestID(ctx))

	// 2. Inject and retrieve
	ctx = ctxutil.WithRequestID(ctx, "test-request-id")
	assert.Equal(t, "test-request-id", ctxutil.GetRequestID(ctx))
}

/*
TestContext_RunID verifies that scheduler run IDs travel in the context.
*/
func TestContext_RunID(t *testing.T) {
	ctx := context.Background()
	assert.Empty(t, ctxutil.GetRunID(ctx))

	ctx = ctxutil.WithRunID(ctx, "run-1")
	assert.Equal(t, "run-1", ctxutil.GetRunID(ctx))
}

/*
TestContext_Logger verifies that a custom logger can be stored in context.
*/
func TestContext_Logger(t *testing.T) {
	ctx := context.Background()
	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))

	// 1. Initially should return the default logger
	assert.Equal(t, slog.Default(), ctxutil.GetLogger(ctx))

	// 2. Inject and retrieve
	ctx = ctxutil.WithLogger(ctx, logger)
	assert.Equal(t, logger, ctxutil.GetLogger(ctx))
}

/*
TestContext_LoggerOr verifies that the context logger wins over the fallback.
*/
func TestContext_LoggerOr(t *testing.T) {
	fallback := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	scoped := fallback.With(slog.String("run_id", "run-1"))

	assert.Equal(t, fallback, ctxutil.LoggerOr(context.Background(), fallback))
	assert.Equal(t, slog.Default(), ctxutil.LoggerOr(context.Background(), nil))

	ctx := ctxutil.WithLogger(context.Background(), scoped)
	assert.Equal(t, scoped, ctxutil.LoggerOr(ctx, fallback))
}
