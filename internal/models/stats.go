package models

import "time"

// Stats represents aggregated statistics for a target over the trend window
type Stats struct {
	Target      string        `json:"target"`
	Address     string        `json:"address"`
	PacketsSent int           `json:"packets_sent"`
	PacketsLost int           `json:"packets_lost"`
	PacketLoss  float64       `json:"packet_loss"` // percentage
	Last        time.Duration `json:"last_ns"`
	Best        time.Duration `json:"best_ns"`
	Worst       time.Duration `json:"worst_ns"`
	Mean        time.Duration `json:"mean_ns"`
	Median      time.Duration `json:"median_ns"`
	StdDev      time.Duration `json:"stddev_ns"`
	TotalSent   int           `json:"total_sent"`
	TotalLost   int           `json:"total_lost"`
	LastError   string        `json:"last_error,omitempty"`
}
