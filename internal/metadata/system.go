package metadata

import (
	"context"
	"errors"
	"math"
	"runtime"

	"github.com/shirou/gopsutil/v4/cpu"
	"github.com/shirou/gopsutil/v4/host"
	"github.com/shirou/gopsutil/v4/mem"
)

// Probes are package variables so tests can replace them.
var (
	hostInfo      = host.InfoWithContext
	cpuInfo       = cpu.InfoWithContext
	cpuCounts     = cpu.CountsWithContext
	virtualMemory = mem.VirtualMemoryWithContext
)

// SystemStats describes the machine a benchmark ran on.
type SystemStats struct {
	OS                 string   `json:"os"`
	OSVersion          string   `json:"os_version"`
	Platform           string   `json:"platform,omitempty"`
	Hostname           string   `json:"hostname,omitempty"`
	ProcessorVersion   *string  `json:"processor_version"`
	PhysicalProcessors *int     `json:"physical_processors"`
	LogicalProcessors  *int     `json:"logical_processors"`
	CoresPerProcessor  *int     `json:"cores_per_processor"`
	MemoryTotalGB      *float64 `json:"memory_total_gb,omitempty"`
	Error              string   `json:"system_stats_error,omitempty"`
}

// probeSystem gathers host, processor and memory details. A failing probe
// leaves its fields empty and is reported in Error.
func probeSystem(ctx context.Context) SystemStats {
	stats := SystemStats{OS: runtime.GOOS}
	var errs []error

	if info, err := hostInfo(ctx); err == nil {
		if info.OS != "" {
			stats.OS = info.OS
		}
		stats.OSVersion = info.KernelVersion
		stats.Platform = info.Platform
		stats.Hostname = info.Hostname
	} else {
		errs = append(errs, err)
	}

	if infos, err := cpuInfo(ctx); err == nil && len(infos) > 0 {
		if model := infos[0].ModelName; model != "" {
			stats.ProcessorVersion = &model
		}
		// Count sockets by distinct physical id.
		sockets := make(map[string]struct{})
		for _, info := range infos {
			if info.PhysicalID != "" {
				sockets[info.PhysicalID] = struct{}{}
			}
		}
		if n := len(sockets); n > 0 {
			stats.PhysicalProcessors = &n
		}
	} else if err != nil {
		errs = append(errs, err)
	}

	if stats.PhysicalProcessors == nil {
		if n, err := cpuCounts(ctx, false); err == nil && n > 0 {
			stats.PhysicalProcessors = &n
		}
	}
	if n, err := cpuCounts(ctx, true); err == nil && n > 0 {
		stats.LogicalProcessors = &n
	} else if err != nil {
		errs = append(errs, err)
	}

	if stats.LogicalProcessors != nil && stats.PhysicalProcessors != nil && *stats.PhysicalProcessors > 0 {
		cores := *stats.LogicalProcessors / *stats.PhysicalProcessors
		stats.CoresPerProcessor = &cores
	}

	if vm, err := virtualMemory(ctx); err == nil {
		gb := math.Round(float64(vm.Total)/(1<<30)*100) / 100
		stats.MemoryTotalGB = &gb
	} else {
		errs = append(errs, err)
	}

	if err := errors.Join(errs...); err != nil {
		stats.Error = "failed to get system stats: " + err.Error()
	}
	return stats
}
