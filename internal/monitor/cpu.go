package monitor

import (
	"time"

	"github.com/shirou/gopsutil/v4/cpu"
)

type CPUMonitor struct {
	sample time.Duration
}

// NewCPUMonitor measures utilisation over sample. Zero compares against
// the previous call, which is meaningless on the first one.
func NewCPUMonitor(sample time.Duration) *CPUMonitor {
	return &CPUMonitor{sample: sample}
}

func (m *CPUMonitor) Name() string {
	return "cpu"
}

func (m *CPUMonitor) Collect() (any, error) {
	percentages, err := cpu.Percent(m.sample, false)
	if err != nil {
		return nil, err
	}

	var overall float64
	if len(percentages) > 0 {
		overall = percentages[0]
	}

	cores, err := cpu.Counts(true)
	if err != nil {
		return nil, err
	}

	return &CPUState{
		UsagePercent: overall,
		LogicalCores: cores,
	}, nil
}
