// Package metadata collects the facts recorded next to every benchmark
// result: the commit under test, the host it ran on and the versions of the
// packages being measured.
package metadata

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"time"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"
)

// runDateLayout is ISO-8601 with microseconds.
const runDateLayout = "2006-01-02T15:04:05.000000Z07:00"

var (
	DefaultPackages    = []string{"lamellar"}
	DefaultVersionEnv  = []string{"LAMELLAR_VERSION"}
	DefaultEnvPrefixes = []string{"SLURM_", "LAMELLAR_"}
)

// Metadata is attached to records under the "_metadata" key.
type Metadata struct {
	RunID           string                       `json:"run_id"`
	RunDate         string                       `json:"run_date"`
	RunTimestamp    float64                      `json:"run_timestamp"`
	GitInfo         GitInfo                      `json:"git_info"`
	SystemStats     SystemStats                  `json:"system_stats"`
	PackageVersions map[string]string            `json:"package_versions"`
	Environment     map[string]map[string]string `json:"environment,omitempty"`
	BenchmarkType   string                       `json:"benchmark_type,omitempty"`
}

// JSON encodes m without HTML escaping.
func (m *Metadata) JSON() ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(m); err != nil {
		return nil, err
	}
	return bytes.TrimSuffix(buf.Bytes(), []byte{'\n'}), nil
}

// CommitShort returns the short commit hash, or "unknown".
func (m *Metadata) CommitShort() string {
	if m.GitInfo.CommitHashShort == nil || *m.GitInfo.CommitHashShort == "" {
		return "unknown"
	}
	return *m.GitInfo.CommitHashShort
}

type CollectorParams struct {
	// RepoPath is the directory inspected for git state and Cargo.toml.
	RepoPath string

	// Packages are crate names looked up in `cargo tree --depth=1`.
	Packages []string

	// VersionEnv are variables recorded verbatim as package versions.
	VersionEnv []string

	// EnvPrefixes select environment variables recorded under "environment".
	EnvPrefixes []string

	BenchmarkType string

	Logger *log.Logger
}

// Collector gathers Metadata for one run.
type Collector struct {
	params CollectorParams
	git    *Git
	logger *log.Logger

	now     func() time.Time
	newID   func() string
	environ func() []string
}

func NewCollector(params CollectorParams) *Collector {
	if params.RepoPath == "" {
		params.RepoPath = "."
	}
	logger := params.Logger
	if logger == nil {
		logger = log.Default()
	}
	return &Collector{
		params:  params,
		git:     NewGit(params.RepoPath, logger),
		logger:  logger,
		now:     time.Now,
		newID:   uuid.NewString,
		environ: os.Environ,
	}
}

// Git returns the repository inspector used by the collector.
func (c *Collector) Git() *Git { return c.git }

// Collect gathers metadata. It never fails: probes that cannot run leave
// their fields empty or describe the failure.
func (c *Collector) Collect(ctx context.Context) *Metadata {
	now := c.now()

	m := &Metadata{
		RunID:           c.newID(),
		RunDate:         now.Format(runDateLayout),
		RunTimestamp:    float64(now.UnixMicro()) / 1e6,
		GitInfo:         c.git.Info(),
		SystemStats:     probeSystem(ctx),
		PackageVersions: packageVersions(ctx, c.params.RepoPath, c.params.Packages, c.params.VersionEnv),
		BenchmarkType:   c.params.BenchmarkType,
	}
	if env := prefixedEnv(c.environ(), c.params.EnvPrefixes); len(env) > 0 {
		m.Environment = env
	}

	c.logger.Debug("collected metadata", "run_id", m.RunID, "commit", m.CommitShort())
	return m
}
