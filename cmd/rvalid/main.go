// Command rvalid checks documents against rule sets and serves the
// validation service.
package main

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	verrors "github.com/vango-dev/rvalid/internal/errors"
)

// Version information set at build time.
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

// errInvalid is returned by check when the document has errors. The
// report has been printed already.
var errInvalid = errors.New("document is invalid")

func main() {
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}

func run(args []string, stdout, stderr io.Writer) int {
	rootCmd := newRootCmd(stdout, stderr)
	rootCmd.SetArgs(args)

	if err := rootCmd.Execute(); err != nil {
		if !errors.Is(err, errInvalid) {
			printError(stderr, err)
		}
		return 1
	}
	return 0
}

func newRootCmd(stdout, stderr io.Writer) *cobra.Command {
	var noColor bool

	rootCmd := &cobra.Command{
		Use:   "rvalid",
		Short: "Reactive validation for structured documents",
		Long: `rvalid validates documents against declarative rule sets.

Rule sets name the fields of a document and the rules each field must
pass. Documents can be checked once from the command line or validated
over HTTP and live WebSocket sessions by the rvalid service.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			if noColor {
				color.NoColor = true
				verrors.DisableColors()
			}
		},
	}
	rootCmd.SetOut(stdout)
	rootCmd.SetErr(stderr)
	rootCmd.PersistentFlags().BoolVar(&noColor, "no-color", false, "Disable colored output")

	rootCmd.AddCommand(
		checkCmd(),
		rulesCmd(),
		serveCmd(),
		versionCmd(),
	)
	return rootCmd
}

// printError prints structured errors with their context and anything
// else on one line.
func printError(w io.Writer, err error) {
	var verr *verrors.Error
	if errors.As(err, &verr) {
		verrors.Fprint(w, verr)
		return
	}
	fmt.Fprintf(w, "%s %s\n", color.RedString("Error:"), err)
}
