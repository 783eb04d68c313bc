package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/idekerlab/cdhidef-go/pkg/errors"
	"github.com/idekerlab/cdhidef-go/pkg/hidef"
	"github.com/idekerlab/cdhidef-go/pkg/pipeline"
)

// convertCommand creates the convert command: turn an existing HiDeF
// nodes/edges output pair into the interchange document without running
// the clustering subprocess.
func (c *CLI) convertCommand() *cobra.Command {
	var (
		plain   bool
		noAttrs bool
		output  string
	)

	cmd := &cobra.Command{
		Use:   "convert <nodes-file> <edges-file>",
		Short: "Convert an existing HiDeF nodes/edges pair",
		Long: `Convert a HiDeF output pair (x.nodes and x.edges) into the CDAPS
interchange document.

Use this when HiDeF was run separately and its output files are already
on disk. Conversion is not cached.

Example:
  cdhidef convert x.nodes x.edges -o result.json`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			logger := loggerFromContext(cmd.Context())
			runner := pipeline.NewRunner(nil, nil, logger)

			prog := newProgress(logger)
			res, err := runner.ConvertOnly(cmd.Context(), args[0], args[1], hidef.DocumentOptions{
				Plain:        plain,
				NoAttributes: noAttrs,
			})
			if err != nil {
				return exitErr(convertExitStatus(err), err)
			}
			if !res.Empty {
				prog.done(fmt.Sprintf("Converted %d clusters with %d relations",
					res.Stats.Clusters, res.Stats.Memberships+res.Stats.Containments))
			}

			if err := writeDocument(res.Document, output); err != nil {
				return exitErr(ExitUnexpected, err)
			}
			if output != "" {
				printStats(res.Stats.Clusters, res.Stats.Memberships, res.Stats.Containments, false)
				printFile(output)
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&plain, "plain", false, "emit the bare relation string instead of the JSON document")
	cmd.Flags().BoolVar(&noAttrs, "no-attributes", false, "omit the node attribute block from the document")
	cmd.Flags().StringVarP(&output, "output", "o", "", "output file (stdout if empty)")

	return cmd
}

// convertExitStatus maps a conversion error to the convert command's
// exit status.
func convertExitStatus(err error) int {
	switch errors.GetCode(err) {
	case errors.ErrCodeMissingInput:
		return ExitMissingInput
	case errors.ErrCodeEmptyInput:
		return ExitEmptyInput
	default:
		return ExitUnexpected
	}
}
