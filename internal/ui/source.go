// Package ui renders the trend store to the terminal, either as a live
// dashboard or as plain line output.
package ui

import (
	"pingtrend/internal/models"
	"pingtrend/internal/trend"
)

// Source is the data the front ends project.
type Source interface {
	Snapshot() trend.Snapshot
	Stats() []models.Stats
	Subscribe() (<-chan struct{}, func())
}
