package metadata

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/charmbracelet/log"
	"github.com/shirou/gopsutil/v4/cpu"
	"github.com/shirou/gopsutil/v4/host"
	"github.com/shirou/gopsutil/v4/mem"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func stubProbes(t *testing.T) {
	t.Helper()
	origHost, origCPU, origCounts, origMem := hostInfo, cpuInfo, cpuCounts, virtualMemory
	t.Cleanup(func() {
		hostInfo, cpuInfo, cpuCounts, virtualMemory = origHost, origCPU, origCounts, origMem
	})

	hostInfo = func(context.Context) (*host.InfoStat, error) {
		return &host.InfoStat{OS: "linux", KernelVersion: "6.8.0", Platform: "ubuntu", Hostname: "node01"}, nil
	}
	cpuInfo = func(context.Context) ([]cpu.InfoStat, error) {
		return []cpu.InfoStat{
			{ModelName: "AMD EPYC 7763", PhysicalID: "0"},
			{ModelName: "AMD EPYC 7763", PhysicalID: "0"},
			{ModelName: "AMD EPYC 7763", PhysicalID: "1"},
			{ModelName: "AMD EPYC 7763", PhysicalID: "1"},
		}, nil
	}
	cpuCounts = func(_ context.Context, logical bool) (int, error) {
		if logical {
			return 256, nil
		}
		return 128, nil
	}
	virtualMemory = func(context.Context) (*mem.VirtualMemoryStat, error) {
		return &mem.VirtualMemoryStat{Total: 512 << 30}, nil
	}
}

func TestProbeSystem(t *testing.T) {
	stubProbes(t)

	stats := probeSystem(context.Background())

	assert.Equal(t, "linux", stats.OS)
	assert.Equal(t, "6.8.0", stats.OSVersion)
	assert.Equal(t, "node01", stats.Hostname)
	require.NotNil(t, stats.ProcessorVersion)
	assert.Equal(t, "AMD EPYC 7763", *stats.ProcessorVersion)
	require.NotNil(t, stats.PhysicalProcessors)
	assert.Equal(t, 2, *stats.PhysicalProcessors)
	require.NotNil(t, stats.LogicalProcessors)
	assert.Equal(t, 256, *stats.LogicalProcessors)
	require.NotNil(t, stats.CoresPerProcessor)
	assert.Equal(t, 128, *stats.CoresPerProcessor)
	require.NotNil(t, stats.MemoryTotalGB)
	assert.Equal(t, 512.0, *stats.MemoryTotalGB)
	assert.Empty(t, stats.Error)
}

func TestProbeSystemFailures(t *testing.T) {
	stubProbes(t)
	errNope := errors.New("not implemented yet")
	cpuInfo = func(context.Context) ([]cpu.InfoStat, error) { return nil, errNope }
	virtualMemory = func(context.Context) (*mem.VirtualMemoryStat, error) { return nil, errNope }

	stats := probeSystem(context.Background())

	assert.Nil(t, stats.ProcessorVersion)
	assert.Nil(t, stats.MemoryTotalGB)
	// Falls back to the physical core count.
	require.NotNil(t, stats.PhysicalProcessors)
	assert.Equal(t, 128, *stats.PhysicalProcessors)
	assert.Contains(t, stats.Error, "not implemented yet")
}

func TestParseCargoTree(t *testing.T) {
	output := `bench v0.1.0 (/work/bench)
├── lamellar v0.6.1
├── lamellar-impl v0.6.1 (proc-macro)
├── rand v0.8.5
└── rofisys v0.3.0
[dev-dependencies]
└── criterion v0.5.1`

	got := parseCargoTree(output, []string{"lamellar", "lamellar-impl", "rofisys", "rofi"})

	assert.Equal(t, map[string]string{
		"lamellar_version":      "lamellar v0.6.1",
		"lamellar_impl_version": "lamellar-impl v0.6.1 (proc-macro)",
		"rofisys_version":       "rofisys v0.3.0",
	}, got)
}

func TestPackageVersions(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "Cargo.toml"), []byte("[package]\n"), 0644))

	orig := runCommand
	t.Cleanup(func() { runCommand = orig })
	var gotDir string
	var gotCommand []string
	runCommand = func(_ context.Context, dir string, command ...string) ([]byte, error) {
		gotDir, gotCommand = dir, command
		return []byte("bench v0.1.0\n└── lamellar v0.6.1\n"), nil
	}
	t.Setenv("LAMELLAR_VERSION", "git-abc")

	got := packageVersions(context.Background(), dir, []string{"lamellar"}, []string{"LAMELLAR_VERSION", "UNSET_VERSION_VAR"})

	assert.Equal(t, dir, gotDir)
	assert.Equal(t, []string{"cargo", "tree", "--depth=1"}, gotCommand)
	assert.Equal(t, map[string]string{
		"lamellar_version": "git-abc",
	}, got)
}

func TestPackageVersionsWithoutCargo(t *testing.T) {
	orig := runCommand
	t.Cleanup(func() { runCommand = orig })
	runCommand = func(context.Context, string, ...string) ([]byte, error) {
		t.Fatal("cargo must not run without Cargo.toml")
		return nil, nil
	}

	got := packageVersions(context.Background(), t.TempDir(), []string{"lamellar"}, nil)
	assert.Empty(t, got)
	assert.NotNil(t, got)
}

func TestPrefixedEnv(t *testing.T) {
	environ := []string{
		"SLURM_JOB_ID=12345",
		"SLURM_JOB_NAME=test_job",
		"LAMELLAR_THREADS=8",
		"SOME_OTHER_VAR=some_value",
		"malformed",
	}

	got := prefixedEnv(environ, []string{"SLURM_", "LAMELLAR_"})

	assert.Equal(t, map[string]map[string]string{
		"slurm":    {"job_id": "12345", "job_name": "test_job"},
		"lamellar": {"threads": "8"},
	}, got)
}

func TestCollect(t *testing.T) {
	stubProbes(t)

	c := NewCollector(CollectorParams{
		RepoPath:      t.TempDir(),
		EnvPrefixes:   []string{"SLURM_"},
		BenchmarkType: "histo_buffered_safe_am",
		Logger:        log.New(io.Discard),
	})
	c.now = func() time.Time { return time.Date(2026, 10, 19, 12, 0, 0, 500_000_000, time.UTC) }
	c.newID = func() string { return "run-1" }
	c.environ = func() []string { return []string{"SLURM_NNODES=4"} }

	m := c.Collect(context.Background())

	assert.Equal(t, "run-1", m.RunID)
	assert.Equal(t, "2026-10-19T12:00:00.000000Z", m.RunDate)
	assert.InDelta(t, 1792411200.5, m.RunTimestamp, 1e-6)
	assert.Equal(t, "unknown", m.CommitShort())
	assert.NotEmpty(t, m.GitInfo.Error)
	assert.Equal(t, map[string]map[string]string{"slurm": {"nnodes": "4"}}, m.Environment)

	data, err := m.JSON()
	require.NoError(t, err)

	var decoded map[string]any
	require.NoError(t, json.Unmarshal(data, &decoded))
	assert.Equal(t, "histo_buffered_safe_am", decoded["benchmark_type"])
	assert.Equal(t, map[string]any{}, decoded["package_versions"])

	gitInfo, ok := decoded["git_info"].(map[string]any)
	require.True(t, ok)
	assert.Contains(t, gitInfo, "commit_hash")
	assert.Nil(t, gitInfo["commit_hash"])
}
