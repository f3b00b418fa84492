package main

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/benchharness/benchjson/cmd/benchjson/root"
	"github.com/benchharness/benchjson/internal/cliutil"
	"github.com/mitchellh/go-homedir"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var (
	cfgFile string
	cmd     = root.NewRootCmd()
)

func init() {
	cobra.OnInitialize(initConfig)
	cmd.PersistentFlags().StringVar(&cfgFile, "config", "", "Config file (default is $HOME/.benchjson.yaml)")
}

func main() {
	cliutil.ReportBrokenPipe()
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func initConfig() {
	cliutil.ConfigureEnv(viper.GetViper())

	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		// Find home directory.
		home, err := homedir.Dir()
		if err != nil {
			fmt.Fprintln(os.Stderr, err)
			os.Exit(1)
		}

		viper.SetConfigFile(filepath.Join(home, ".benchjson.yaml"))
		viper.SetConfigType("yaml")
	}

	if err := viper.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if errors.As(err, &notFound) || errors.Is(err, os.ErrNotExist) {
			return
		}
		fmt.Fprintln(os.Stderr, "Can't read config:", err)
		os.Exit(1)
	}
}
