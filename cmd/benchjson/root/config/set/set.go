package set

import (
	"errors"
	"fmt"
	"os"
	"slices"

	"github.com/MakeNowJust/heredoc/v2"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// ValidConfigKeys defines the allowed configuration keys
var ValidConfigKeys = []string{
	"log-level",
	"strict",
	"max-value-bytes",
	"results-root",
	"repo",
	"benchmark-type",
	"packages",
	"version-env",
	"env-prefixes",
}

func NewSetCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "set <key> <value>",
		Short: "Set a configuration value",
		Long:  `Set a configuration value that will be persisted in the config file.`,
		Example: heredoc.Doc(`
			# File results under a shared directory
			$ benchjson config set results-root /shared/bench-results

			# Record Open MPI settings alongside SLURM
			$ benchjson config set env-prefixes SLURM_,LAMELLAR_,OMPI_
		`),
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			key := args[0]
			value := args[1]

			if !slices.Contains(ValidConfigKeys, key) {
				return fmt.Errorf("invalid config key: %s. Valid keys are: %v", key, ValidConfigKeys)
			}

			// A separate instance keeps bound flag defaults out of the file.
			file := viper.New()
			file.SetConfigFile(viper.ConfigFileUsed())
			file.SetConfigType("yaml")
			if err := file.ReadInConfig(); err != nil && !errors.Is(err, os.ErrNotExist) {
				return fmt.Errorf("failed to read config: %w", err)
			}

			file.Set(key, value)
			viper.Set(key, value)

			if err := file.WriteConfig(); err != nil {
				return fmt.Errorf("failed to write config: %w", err)
			}

			fmt.Fprintf(cmd.OutOrStdout(), "Successfully set %s = %s\n", key, value)
			return nil
		},
	}

	return cmd
}
