// Package testutil provides test utilities for orb, including:
//   - Miniredis helpers for unit tests (miniredis.go)
//   - Observer locations with well known sky behaviour (locations.go)
package testutil
