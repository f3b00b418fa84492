package addresult

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/MakeNowJust/heredoc/v2"
	"github.com/benchharness/benchjson/internal/cliutil"
	"github.com/benchharness/benchjson/internal/results"
	"github.com/charmbracelet/log"
	"github.com/spf13/afero"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var ErrNoInput = errors.New("no input provided, pipe data to this command or use --input-file")

// Fs is the file system results are filed on.
var Fs = afero.NewOsFs()

func NewAddResultCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "add-result",
		Short: "File benchmark results by benchmark, build type and commit",
		Long: heredoc.Doc(`
			Append benchmark records to <results-root>/<name>/<build>/<name>-<commit>.jsonl.

			The input may be a single JSON value, a JSON array of records or JSON Lines.
			The commit is read from _metadata.git_info.commit_hash_short of the first
			record that has one, otherwise "unknown" is used.
		`),
		Example: heredoc.Doc(`
			$ benchjson enrich < run.log | benchjson add-result --results-root bench-results --benchmark-name histo --build-type release
			$ benchjson add-result --results-root bench-results --benchmark-name randperm --build-type debug --input-file run.jsonl
		`),
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			root := viper.GetString("results-root")
			if root == "" {
				return fmt.Errorf("--results-root is required")
			}

			data, err := readInput(cmd, viper.GetString("input-file"))
			if err != nil {
				return err
			}

			records, err := results.ParseInput(data)
			if err != nil {
				return err
			}

			filer := results.NewFiler(Fs, root, log.Default())
			outcome, err := filer.File(viper.GetString("benchmark-name"), viper.GetString("build-type"), records)
			if err != nil {
				return err
			}

			verb := "created"
			if outcome.Appended {
				verb = "appended to"
			}
			log.Info("Successfully "+verb+" results file", "path", outcome.Path, "records", outcome.Records, "commit", outcome.Commit)
			return nil
		},
	}

	cmd.Flags().String("results-root", "", "Root directory of the results tree (required)")
	cmd.Flags().String("benchmark-name", "", "Benchmark name, used for the directory and file name (required)")
	cmd.Flags().String("build-type", "", "Build type, 'release' or 'debug' (required)")
	cmd.Flags().String("input-file", "", "Read results from this file instead of stdin")
	cmd.MarkFlagRequired("benchmark-name")
	cmd.MarkFlagRequired("build-type")

	return cmd
}

func readInput(cmd *cobra.Command, path string) ([]byte, error) {
	if path != "" {
		data, err := afero.ReadFile(Fs, path)
		if err != nil {
			return nil, fmt.Errorf("error reading input file: %w", err)
		}
		return data, nil
	}

	stdin := cmd.InOrStdin()
	if stdin == os.Stdin && cliutil.IsTerminal(os.Stdin) {
		return nil, ErrNoInput
	}
	data, err := io.ReadAll(stdin)
	if err != nil {
		return nil, fmt.Errorf("error reading stdin: %w", err)
	}
	return data, nil
}
