package filter

import (
	"os"
	"os/signal"
	"syscall"

	"github.com/MakeNowJust/heredoc/v2"
	"github.com/benchharness/benchjson/internal/cliutil"
	"github.com/benchharness/benchjson/internal/extract"
	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// AddExtractFlags registers the flags shared by every command that runs the
// extractor.
func AddExtractFlags(cmd *cobra.Command) {
	cmd.Flags().Bool("strict", false, "Report malformed fragments instead of passing them through")
	cmd.Flags().StringP("output", "o", "", "Write JSON Lines to this file instead of stdout")
	cmd.Flags().Int("max-value-bytes", 0, "Drop fragments larger than this many bytes (0 means no limit)")
}

// ExtractOptions reads the extractor flags bound to viper.
func ExtractOptions() extract.Options {
	return extract.Options{
		Strict:        viper.GetBool("strict"),
		MaxValueBytes: viper.GetInt("max-value-bytes"),
		Logger:        log.Default(),
	}
}

// Stream runs fn until it returns or the process is interrupted. Interrupts
// and a closed downstream end the command without an error.
func Stream(cmd *cobra.Command, fn func(cmd *cobra.Command) error) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	cmd.SetContext(ctx)

	err := cliutil.Interruptible(ctx, func() error { return fn(cmd) })
	if err != nil && cliutil.IsCleanExit(err) {
		log.Debug("Stopped early", "reason", err)
		return nil
	}
	return err
}

func NewFilterCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "filter [file]",
		Short: "Extract JSON objects and arrays from mixed output",
		Long: heredoc.Doc(`
			Read text that mixes JSON with log lines and write every complete top-level
			JSON object or array as one compact line, in input order.

			Values may span lines and may be surrounded by other text on the same line.
			Bare numbers, strings and literals are never emitted. Without a file argument
			the input is read from stdin.
		`),
		Example: heredoc.Doc(`
			$ ./histo --size 100000 | benchjson filter
			$ benchjson filter --strict -o results.jsonl run.log
		`),
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return Stream(cmd, func(cmd *cobra.Command) error {
				return runFilter(cmd, args)
			})
		},
	}

	AddExtractFlags(cmd)

	return cmd
}

func runFilter(cmd *cobra.Command, args []string) error {
	var path string
	if len(args) > 0 {
		path = args[0]
	}

	in, err := cliutil.OpenInput(path, cmd.InOrStdin())
	if err != nil {
		return err
	}
	defer in.Close()

	out, err := cliutil.OpenOutput(viper.GetString("output"), cmd.OutOrStdout())
	if err != nil {
		return err
	}

	stats, err := extract.Run(cmd.Context(), in, out, ExtractOptions())
	if cerr := out.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		return err
	}

	log.Debug("Filter complete",
		"lines", stats.Lines,
		"values", stats.Values,
		"fallbacks", stats.Fallbacks,
		"malformed", stats.Malformed,
		"dropped", stats.Dropped,
	)
	return nil
}
