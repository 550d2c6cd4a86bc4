// Package monitor snapshots host load so that timings taken on a busy
// machine can be flagged.
package monitor

import "time"

type Monitor interface {
	Name() string
	Collect() (any, error)
}

type CPUState struct {
	UsagePercent float64 `json:"usage_percent"`
	LogicalCores int     `json:"logical_cores"`
}

type MemoryState struct {
	UsedBytes      uint64  `json:"used_bytes"`
	AvailableBytes uint64  `json:"available_bytes"`
	TotalBytes     uint64  `json:"total_bytes"`
	UsagePercent   float64 `json:"usage_percent"`
}

type LoadState struct {
	Load1     float64 `json:"load1"`
	Load5     float64 `json:"load5"`
	Load15    float64 `json:"load15"`
	Processes int     `json:"processes"`
}

// HostState is one snapshot of the machine a measurement runs on.
type HostState struct {
	CPU       CPUState    `json:"cpu"`
	Memory    MemoryState `json:"memory"`
	Load      LoadState   `json:"load"`
	Busy      []string    `json:"busy,omitempty"`
	Timestamp time.Time   `json:"timestamp"`
}
