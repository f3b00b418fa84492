package enrich

import (
	"fmt"

	"github.com/MakeNowJust/heredoc/v2"
	"github.com/benchharness/benchjson/cmd/benchjson/root/filter"
	"github.com/benchharness/benchjson/internal/cliutil"
	"github.com/benchharness/benchjson/internal/enrich"
	"github.com/benchharness/benchjson/internal/extract"
	"github.com/benchharness/benchjson/internal/metadata"
	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// AddCollectorFlags registers the flags that configure metadata collection.
func AddCollectorFlags(cmd *cobra.Command) {
	cmd.Flags().String("repo", ".", "Git repository the benchmark is built from")
	cmd.Flags().String("benchmark-type", "", "Benchmark type recorded in the metadata")
	cmd.Flags().String("packages", "", "Comma separated crates whose versions are read from cargo tree (default lamellar)")
	cmd.Flags().String("version-env", "", "Comma separated environment variables recorded as package versions (default LAMELLAR_VERSION)")
	cmd.Flags().String("env-prefixes", "", "Comma separated environment variable prefixes to record (default SLURM_,LAMELLAR_)")
}

// NewCollector builds a metadata collector from the bound collector flags.
func NewCollector() *metadata.Collector {
	return metadata.NewCollector(metadata.CollectorParams{
		RepoPath:      viper.GetString("repo"),
		Packages:      cliutil.SplitList(viper.GetString("packages"), metadata.DefaultPackages),
		VersionEnv:    cliutil.SplitList(viper.GetString("version-env"), metadata.DefaultVersionEnv),
		EnvPrefixes:   cliutil.SplitList(viper.GetString("env-prefixes"), metadata.DefaultEnvPrefixes),
		BenchmarkType: viper.GetString("benchmark-type"),
		Logger:        log.Default(),
	})
}

func NewEnrichCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "enrich [file]",
		Short: "Extract JSON results and attach run metadata",
		Long: heredoc.Doc(`
			Extract JSON values like filter, then attach a _metadata object describing
			the run: git commit, host, package versions and selected environment.

			Objects get the _metadata member. Arrays are wrapped as
			{"data": [...], "data_type": "array", "_metadata": {...}}.

			The repository must have no uncommitted changes to tracked files unless
			--skip-git-check is given.
		`),
		Example: heredoc.Doc(`
			$ ./histo --size 100000 | benchjson enrich --benchmark-type histo
			$ benchjson enrich --skip-git-check -o run.jsonl run.log
			$ benchjson enrich --no-metadata run.log # same as filter
		`),
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return filter.Stream(cmd, func(cmd *cobra.Command) error {
				return runEnrich(cmd, args)
			})
		},
	}

	filter.AddExtractFlags(cmd)
	AddCollectorFlags(cmd)
	cmd.Flags().Bool("no-metadata", false, "Only extract JSON, do not attach metadata")
	cmd.Flags().Bool("skip-git-check", false, "Do not require a clean git working tree")

	return cmd
}

func runEnrich(cmd *cobra.Command, args []string) error {
	var path string
	if len(args) > 0 {
		path = args[0]
	}

	var enricher *enrich.Enricher
	if !viper.GetBool("no-metadata") {
		collector := NewCollector()
		if !viper.GetBool("skip-git-check") {
			log.Info("Checking git repository status")
			if err := collector.Git().CheckClean(); err != nil {
				return fmt.Errorf("commit your changes before running benchmarks: %w", err)
			}
		}

		log.Info("Collecting metadata")
		md := collector.Collect(cmd.Context())
		data, err := md.JSON()
		if err != nil {
			return fmt.Errorf("failed to encode metadata: %w", err)
		}
		enricher, err = enrich.New(data, log.Default())
		if err != nil {
			return err
		}
		log.Info("Processing with metadata", "commit", md.CommitShort())
	}

	in, err := cliutil.OpenInput(path, cmd.InOrStdin())
	if err != nil {
		return err
	}
	defer in.Close()

	output := viper.GetString("output")
	out, err := cliutil.OpenOutput(output, cmd.OutOrStdout())
	if err != nil {
		return err
	}

	opts := filter.ExtractOptions()
	if enricher == nil {
		_, err = extract.Run(cmd.Context(), in, out, opts)
	} else {
		var stats enrich.Stats
		stats, err = enricher.Run(cmd.Context(), in, out, opts)
		if err == nil {
			log.Debug("Enrich complete", "records", stats.Records, "invalid", stats.Invalid, "skipped", stats.Skipped)
		}
	}
	if cerr := out.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		return err
	}

	if output != "" && output != cliutil.StdioPath {
		log.Info("Enhanced JSONL output written", "path", output)
	}
	return nil
}
