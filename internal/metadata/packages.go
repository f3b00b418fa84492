package metadata

import (
	"context"
	"maps"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
)

// runCommand is a package variable so tests can stub out cargo.
var runCommand = func(ctx context.Context, dir string, command ...string) ([]byte, error) {
	cmd := exec.CommandContext(ctx, command[0], command[1:]...)
	cmd.Dir = dir
	return cmd.Output()
}

// packageVersions reports the versions of the named crates that the project
// in dir depends on directly, plus the values of versionEnv variables.
func packageVersions(ctx context.Context, dir string, packages, versionEnv []string) map[string]string {
	versions := make(map[string]string)

	if _, err := os.Stat(filepath.Join(dir, "Cargo.toml")); err == nil && len(packages) > 0 {
		if output, err := runCommand(ctx, dir, "cargo", "tree", "--depth=1"); err == nil {
			maps.Copy(versions, parseCargoTree(string(output), packages))
		}
	}

	for _, name := range versionEnv {
		if value := os.Getenv(name); value != "" {
			versions[strings.ToLower(name)] = value
		}
	}

	return versions
}

// parseCargoTree picks direct dependencies out of `cargo tree --depth=1`
// output. A match for crate "foo-bar" is stored under "foo_bar_version" with
// the full tree entry, e.g. "foo-bar v0.6.1".
func parseCargoTree(output string, packages []string) map[string]string {
	found := make(map[string]string)
	for _, line := range strings.Split(output, "\n") {
		var dependency string
		switch {
		case strings.HasPrefix(line, "├──"):
			dependency = strings.TrimPrefix(line, "├──")
		case strings.HasPrefix(line, "└──"):
			dependency = strings.TrimPrefix(line, "└──")
		default:
			continue
		}
		dependency = strings.TrimSpace(dependency)

		for _, name := range packages {
			if strings.HasPrefix(dependency, name+" ") {
				found[strings.ReplaceAll(name, "-", "_")+"_version"] = dependency
			}
		}
	}
	return found
}

// prefixedEnv groups environment variables by prefix. The prefix "SLURM_"
// turns SLURM_JOB_ID=7 into {"slurm": {"job_id": "7"}}.
func prefixedEnv(environ, prefixes []string) map[string]map[string]string {
	groups := make(map[string]map[string]string)
	for _, entry := range environ {
		key, value, ok := strings.Cut(entry, "=")
		if !ok {
			continue
		}
		for _, prefix := range prefixes {
			if prefix == "" || !strings.HasPrefix(key, prefix) {
				continue
			}
			group := strings.ToLower(strings.TrimSuffix(prefix, "_"))
			if groups[group] == nil {
				groups[group] = make(map[string]string)
			}
			groups[group][strings.ToLower(strings.TrimPrefix(key, prefix))] = value
		}
	}
	return groups
}
