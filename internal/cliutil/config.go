package cliutil

import (
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// EnvPrefix prefixes every environment variable the CLI reads.
const EnvPrefix = "BENCHJSON"

// EnvName returns the environment variable consulted for a key,
// e.g. "results-root" becomes BENCHJSON_RESULTS_ROOT.
func EnvName(key string) string {
	return EnvPrefix + "_" + strings.ToUpper(strings.ReplaceAll(key, "-", "_"))
}

// BindFlags binds the flags of the command being run to viper keys of the
// same name, so a value resolves from the flag, then the environment, then
// the config file, then the flag default.
//
// Commands share key names, so only the running command may be bound.
func BindFlags(v *viper.Viper, cmd *cobra.Command) error {
	return v.BindPFlags(cmd.Flags())
}

// ConfigureEnv makes v read BENCHJSON_* variables for every key.
func ConfigureEnv(v *viper.Viper) {
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()
}
