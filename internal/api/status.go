// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package api

import (
	"net/http"

	"github.com/nikolastojadinov/hajde-music-stream-sub003/internal/platform/apperr"
	"github.com/nikolastojadinov/hajde-music-stream-sub003/internal/platform/respond"
	"github.com/nikolastojadinov/hajde-music-stream-sub003/internal/scheduler"
)

// StatusSource exposes the scheduler state read by /status.
type StatusSource interface {
	Running() bool
	LastReport() *scheduler.Report
}

// NewStatusHandler creates the /status handler.
func NewStatusHandler(source StatusSource) http.HandlerFunc {
	return func(writer http.ResponseWriter, request *http.Request) {
		report := source.LastReport()
		if report == nil && !source.Running() {
			respond.Error(writer, request, apperr.NotFound("Run report"))
			return
		}

		respond.OK(writer, map[string]any{
			"running":  source.Running(),
			"last_run": report,
		})
	}
}
