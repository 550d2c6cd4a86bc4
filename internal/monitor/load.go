package monitor

import (
	"github.com/shirou/gopsutil/v4/load"
	"github.com/shirou/gopsutil/v4/process"
)

// LoadMonitor reports load averages and the number of processes.
type LoadMonitor struct{}

func NewLoadMonitor() *LoadMonitor {
	return &LoadMonitor{}
}

func (m *LoadMonitor) Name() string {
	return "load"
}

func (m *LoadMonitor) Collect() (any, error) {
	avg, err := load.Avg()
	if err != nil {
		return nil, err
	}

	pids, err := process.Pids()
	if err != nil {
		return nil, err
	}

	return &LoadState{
		Load1:     avg.Load1,
		Load5:     avg.Load5,
		Load15:    avg.Load15,
		Processes: len(pids),
	}, nil
}
