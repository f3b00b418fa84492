package fixture_test

import (
	"encoding/json"
	"io"
	"path/filepath"
	"testing"

	"github.com/charmbracelet/log"
	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/benchharness/benchjson/internal/fixture"
)

func TestTriangle(t *testing.T) {
	g := fixture.Triangle()

	assert.Equal(t, []float64{0, 1.5, 2.5}, g.ShortestPaths(0))
	assert.Equal(t, []float64{1.5, 0, 3.5}, g.ShortestPaths(1))

	m := g.COO()
	assert.Equal(t, []float64{0, 0, 1, 1, 2, 2}, m.Rows)
	assert.Equal(t, []float64{1, 2, 0, 2, 0, 1}, m.Cols)
	assert.Equal(t, []float64{1.5, 2.5, 1.5, 3.5, 2.5, 3.5}, m.Values)
	assert.Equal(t, 3, m.NumRows)
	assert.Equal(t, 3, m.NumCols)
}

func TestShortestPathsPrefersCheaperRoute(t *testing.T) {
	g := fixture.NewGraph(4)
	g.AddEdge(0, 1, 1)
	g.AddEdge(1, 2, 1)
	g.AddEdge(0, 2, 5)

	// node 3 is unreachable
	assert.Equal(t, []float64{0, 1, 2, 0}, g.ShortestPaths(0))
	assert.Equal(t, []float64{0, 0, 0, 0}, g.ShortestPaths(7))
}

func TestConnect(t *testing.T) {
	g := fixture.NewGraph(6)
	g.AddEdge(0, 1, 1)
	g.AddEdge(2, 3, 1)
	g.AddEdge(4, 5, 1)
	require.Len(t, g.Components(), 3)

	added := fixture.Connect(g, fixture.NewRand(1))
	assert.Equal(t, 2, added)
	assert.True(t, g.IsConnected())

	assert.Equal(t, 0, fixture.Connect(g, fixture.NewRand(1)))
}

func TestGeometricIsConnected(t *testing.T) {
	for _, n := range []int{1, 10, 100} {
		g, err := fixture.Geometric(n, fixture.DefaultRadius, fixture.DefaultSeed)
		require.NoError(t, err)
		assert.Equal(t, n, g.Nodes())
		assert.True(t, g.IsConnected(), "n=%d", n)
	}

	_, err := fixture.Geometric(0, fixture.DefaultRadius, fixture.DefaultSeed)
	assert.Error(t, err)
	_, err = fixture.Geometric(10, 0, fixture.DefaultSeed)
	assert.Error(t, err)
}

func TestGeometricIsDeterministic(t *testing.T) {
	a, err := fixture.Geometric(50, fixture.DefaultRadius, fixture.DefaultSeed)
	require.NoError(t, err)
	b, err := fixture.Geometric(50, fixture.DefaultRadius, fixture.DefaultSeed)
	require.NoError(t, err)

	assert.Equal(t, a.Edges(), b.Edges())
}

func TestCOOIsSymmetric(t *testing.T) {
	g, err := fixture.Geometric(100, fixture.DefaultRadius, fixture.DefaultSeed)
	require.NoError(t, err)

	m := g.COO()
	require.Len(t, m.Cols, len(m.Rows))
	require.Len(t, m.Values, len(m.Rows))
	assert.Len(t, m.Rows, 2*len(g.Edges()))

	type cell struct{ r, c float64 }
	values := make(map[cell]float64, len(m.Rows))
	for i := range m.Rows {
		values[cell{m.Rows[i], m.Cols[i]}] = m.Values[i]
	}
	for k, v := range values {
		assert.Equal(t, v, values[cell{k.c, k.r}])
	}
	assert.IsNonDecreasing(t, m.Rows)
}

func TestWriter(t *testing.T) {
	fs := afero.NewMemMapFs()
	w := fixture.Writer{Fs: fs, Logger: log.New(io.Discard)}

	require.NoError(t, w.Write(fixture.TriangleDir, fixture.Triangle()))

	read := func(name string) []float64 {
		data, err := afero.ReadFile(fs, filepath.Join(fixture.TriangleDir, name))
		require.NoError(t, err)
		var out []float64
		require.NoError(t, json.Unmarshal(data, &out))
		return out
	}

	assert.Equal(t, []float64{0, 0, 1, 1, 2, 2}, read("row_indices.json"))
	assert.Equal(t, []float64{1, 2, 0, 2, 0, 1}, read("col_indices.json"))
	assert.Equal(t, []float64{1.5, 2.5, 1.5, 3.5, 2.5, 3.5}, read("coefficients.json"))
	assert.Equal(t, []float64{3}, read("num_rows.json"))
	assert.Equal(t, []float64{3}, read("num_columns.json"))
	assert.Equal(t, []float64{0, 1.5, 2.5}, read("shortest_path_lengths.json"))
}

func TestWriterReadOnly(t *testing.T) {
	w := fixture.Writer{Fs: afero.NewReadOnlyFs(afero.NewMemMapFs()), Logger: log.New(io.Discard)}
	assert.Error(t, w.Write(fixture.GeometricDir(10), fixture.Triangle()))
}
