// Copyright 2026 Tamás Gulácsi.
//
// SPDX-License-Identifier: Apache-2.0

package util

import "time"

var epoch = time.Date(1970, 1, 1, 0, 0, 0, 0, time.UTC)

// DaysSinceEpoch converts t (truncated to its UTC calendar date) to the
// day count the Arrow Date32 mapping of spec §4.9 "Arrow" expects.
func DaysSinceEpoch(t time.Time) int32 {
	u := t.UTC()
	d := time.Date(u.Year(), u.Month(), u.Day(), 0, 0, 0, 0, time.UTC)
	return int32(d.Sub(epoch).Hours() / 24)
}

// TimeFromDays is the inverse of DaysSinceEpoch.
func TimeFromDays(days int32) time.Time {
	return epoch.AddDate(0, 0, int(days))
}

// NanosOfDay returns the time-of-day component of t as nanoseconds since
// local midnight, for the Time(nanos of day, scale) variant of spec §3.
func NanosOfDay(t time.Time) int64 {
	midnight := time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
	return t.Sub(midnight).Nanoseconds()
}
