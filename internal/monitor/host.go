package monitor

import (
	"fmt"
	"log/slog"
	"time"
)

// Limits are the utilisation levels above which the host counts as busy.
type Limits struct {
	CPUPercent    float64
	MemoryPercent float64
}

// Host combines monitors into a single snapshot.
type Host struct {
	monitors []Monitor
	limits   Limits
	logger   *slog.Logger
}

func NewHost(monitors []Monitor, limits Limits, logger *slog.Logger) *Host {
	return &Host{
		monitors: monitors,
		limits:   limits,
		logger:   logger,
	}
}

// DefaultMonitors returns the CPU, memory and load monitors.
func DefaultMonitors(cpuSample time.Duration) []Monitor {
	return []Monitor{
		NewCPUMonitor(cpuSample),
		NewMemoryMonitor(),
		NewLoadMonitor(),
	}
}

func (h *Host) Name() string {
	return "host"
}

// Collect returns a *HostState, so a Host can stand in for a Monitor.
func (h *Host) Collect() (any, error) {
	return h.Snapshot(), nil
}

// Snapshot collects every monitor once. Failing monitors are logged and
// left zero.
func (h *Host) Snapshot() *HostState {
	state := &HostState{Timestamp: time.Now()}

	for _, m := range h.monitors {
		data, err := m.Collect()
		if err != nil {
			h.logger.Warn("monitor collection failed",
				"monitor", m.Name(),
				"error", err,
			)
			continue
		}

		switch v := data.(type) {
		case *CPUState:
			state.CPU = *v
		case *MemoryState:
			state.Memory = *v
		case *LoadState:
			state.Load = *v
		}
	}

	state.Busy = h.busy(state)
	return state
}

// Check takes a snapshot and warns when the host is busy, since timings
// taken under contention are noisy.
func (h *Host) Check() *HostState {
	state := h.Snapshot()
	if len(state.Busy) > 0 {
		h.logger.Warn("host is busy, measurements may be noisy", "reasons", state.Busy)
	}
	return state
}

func (h *Host) busy(state *HostState) []string {
	var reasons []string

	if h.limits.CPUPercent > 0 && state.CPU.UsagePercent > h.limits.CPUPercent {
		reasons = append(reasons, fmt.Sprintf("cpu %.1f%% > %.1f%%", state.CPU.UsagePercent, h.limits.CPUPercent))
	}
	if h.limits.MemoryPercent > 0 && state.Memory.UsagePercent > h.limits.MemoryPercent {
		reasons = append(reasons, fmt.Sprintf("memory %.1f%% > %.1f%%", state.Memory.UsagePercent, h.limits.MemoryPercent))
	}
	if cores := state.CPU.LogicalCores; cores > 0 && state.Load.Load1 > float64(cores) {
		reasons = append(reasons, fmt.Sprintf("load %.2f > %d cores", state.Load.Load1, cores))
	}

	return reasons
}
