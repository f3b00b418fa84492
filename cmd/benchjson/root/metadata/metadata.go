package metadata

import (
	"github.com/MakeNowJust/heredoc/v2"
	"github.com/benchharness/benchjson/cmd/benchjson/root/enrich"
	"github.com/benchharness/benchjson/internal/cliutil"
	"github.com/spf13/cobra"
)

// NewMetadataCmd creates a command that prints the metadata enrich would
// attach to records.
func NewMetadataCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "metadata",
		Short: "Print the run metadata",
		Long:  `Collect and print the _metadata object that enrich attaches to records.`,
		Example: heredoc.Doc(`
			$ benchjson metadata
			$ benchjson metadata --format yaml
			$ benchjson metadata --template '{{.git_info.commit_hash_short}}'
		`),
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			md := enrich.NewCollector().Collect(cmd.Context())
			return cliutil.HandleOutput(cmd, md)
		},
	}

	enrich.AddCollectorFlags(cmd)
	cliutil.AddOutputFlags(cmd)

	return cmd
}
