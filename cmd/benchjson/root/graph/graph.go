package graph

import (
	"path/filepath"

	"github.com/MakeNowJust/heredoc/v2"
	"github.com/benchharness/benchjson/internal/fixture"
	"github.com/charmbracelet/log"
	"github.com/spf13/afero"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// Fs is the file system fixtures are written to.
var Fs = afero.NewOsFs()

func NewGraphCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "graph",
		Short: "Generate graph fixtures for the sparse matrix and SSSP benchmarks",
		Long: heredoc.Doc(`
			Generate connected random geometric graphs and write, for each, the adjacency
			matrix in COO form and the shortest path lengths from node 0 as JSON files
			under geometric_graph_2d_<n>v.
		`),
		Example: heredoc.Doc(`
			$ benchjson graph
			$ benchjson graph --nodes 10,100 --out fixtures --with-example
		`),
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			out := viper.GetString("out")
			radius := viper.GetFloat64("radius")
			seed := viper.GetUint64("seed")
			w := fixture.Writer{Fs: Fs, Logger: log.Default()}

			if viper.GetBool("with-example") {
				dir := filepath.Join(out, fixture.TriangleDir)
				if err := w.Write(dir, fixture.Triangle()); err != nil {
					return err
				}
				log.Info("Wrote graph", "dir", dir, "nodes", 3)
			}

			nodes, err := cmd.Flags().GetIntSlice("nodes")
			if err != nil {
				return err
			}
			for _, n := range nodes {
				g, err := fixture.Geometric(n, radius, seed)
				if err != nil {
					return err
				}
				dir := filepath.Join(out, fixture.GeometricDir(n))
				if err := w.Write(dir, g); err != nil {
					return err
				}
				log.Info("Wrote graph", "dir", dir, "nodes", n, "edges", len(g.Edges()))
			}
			return nil
		},
	}

	cmd.Flags().IntSlice("nodes", fixture.DefaultSizes, "Node counts to generate")
	cmd.Flags().Float64("radius", fixture.DefaultRadius, "Connection radius in the unit square")
	cmd.Flags().Uint64("seed", fixture.DefaultSeed, "Random seed")
	cmd.Flags().String("out", ".", "Directory the graph directories are created in")
	cmd.Flags().Bool("with-example", false, "Also write the three node example graph to custom_graph_0")

	return cmd
}
