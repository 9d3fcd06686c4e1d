// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package scheduler

import "time"

// Window is the daily run window in whole hours, end exclusive. A window
// whose start is after its end wraps past midnight; equal hours mean
// "always open".
type Window struct {
	StartHour int `json:"start_hour"`
	EndHour   int `json:"end_hour"`
}

// WithinWindow reports whether now's hour falls inside w. now should
// already be in the scheduler's location.
func WithinWindow(now time.Time, w Window) bool {
	hour := now.Hour()

	switch {
	case w.StartHour == w.EndHour:
		return true
	case w.StartHour < w.EndHour:
		return hour >= w.StartHour && hour < w.EndHour
	default:
		return hour >= w.StartHour || hour < w.EndHour
	}
}
