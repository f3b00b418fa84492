package fixture

import (
	"encoding/json"
	"fmt"
	"path/filepath"

	"github.com/charmbracelet/log"
	"github.com/spf13/afero"
)

const (
	DefaultRadius = 0.1
	DefaultSeed   = 42

	// TriangleDir holds the Triangle fixture.
	TriangleDir = "custom_graph_0"
)

// DefaultSizes are the node counts generated when none are given.
var DefaultSizes = []int{10, 20, 100, 500, 1000, 10000}

// GeometricDir is the directory name for a geometric graph with n nodes.
func GeometricDir(n int) string {
	return fmt.Sprintf("geometric_graph_2d_%dv", n)
}

// Files lists the files Write produces, in write order.
var Files = []string{
	"row_indices.json",
	"col_indices.json",
	"coefficients.json",
	"num_rows.json",
	"num_columns.json",
	"shortest_path_lengths.json",
}

// Writer stores graph fixtures on a file system.
type Writer struct {
	Fs     afero.Fs
	Logger *log.Logger
}

// Write stores the COO matrix of g and its shortest path lengths from node 0
// under dir, creating dir if needed.
func (w Writer) Write(dir string, g *Graph) error {
	logger := w.Logger
	if logger == nil {
		logger = log.Default()
	}

	if err := w.Fs.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("create fixture directory %s: %w", dir, err)
	}

	m := g.COO()
	contents := [][]float64{
		m.Rows,
		m.Cols,
		m.Values,
		{float64(m.NumRows)},
		{float64(m.NumCols)},
		g.ShortestPaths(0),
	}
	for i, name := range Files {
		data, err := json.Marshal(contents[i])
		if err != nil {
			return fmt.Errorf("encode %s: %w", name, err)
		}
		path := filepath.Join(dir, name)
		if err := afero.WriteFile(w.Fs, path, data, 0644); err != nil {
			return fmt.Errorf("write %s: %w", path, err)
		}
	}

	logger.Debug("wrote graph fixture", "dir", dir, "nodes", g.Nodes(), "nonzeros", len(m.Values))
	return nil
}
