package root

import (
	"fmt"
	"os"

	"github.com/MakeNowJust/heredoc/v2"
	"github.com/benchharness/benchjson/cmd/benchjson/root/addresult"
	"github.com/benchharness/benchjson/cmd/benchjson/root/config"
	"github.com/benchharness/benchjson/cmd/benchjson/root/enrich"
	"github.com/benchharness/benchjson/cmd/benchjson/root/filter"
	"github.com/benchharness/benchjson/cmd/benchjson/root/graph"
	"github.com/benchharness/benchjson/cmd/benchjson/root/metadata"
	"github.com/benchharness/benchjson/cmd/benchjson/root/version"
	"github.com/benchharness/benchjson/internal/cliutil"
	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

func NewRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "benchjson <command>",
		Short: "Benchmark output tooling",
		Long:  `Extract JSON results from benchmark output, attach run metadata and file them by commit.`,
		Example: heredoc.Doc(`
			$ ./histo --size 100000 | benchjson filter
			$ ./histo --size 100000 | benchjson enrich --benchmark-type histo > run.jsonl
			$ benchjson add-result --results-root bench-results --benchmark-name histo --build-type release --input-file run.jsonl
		`),
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if err := cliutil.BindFlags(viper.GetViper(), cmd); err != nil {
				return fmt.Errorf("failed to bind flags: %w", err)
			}

			level, err := log.ParseLevel(viper.GetString("log-level"))
			if err != nil {
				return fmt.Errorf("invalid log level: %w", err)
			}
			log.SetOutput(os.Stderr)
			log.SetLevel(level)
			return nil
		},
	}

	cmd.PersistentFlags().String("log-level", "info", "Log level (debug, info, warn, error)")

	cmd.AddCommand(filter.NewFilterCmd())
	cmd.AddCommand(enrich.NewEnrichCmd())
	cmd.AddCommand(addresult.NewAddResultCmd())
	cmd.AddCommand(graph.NewGraphCmd())
	cmd.AddCommand(metadata.NewMetadataCmd())
	cmd.AddCommand(version.NewVersionCmd())
	cmd.AddCommand(config.NewConfigCmd())

	return cmd
}
