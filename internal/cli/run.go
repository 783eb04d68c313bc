package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/idekerlab/cdhidef-go/pkg/errors"
	"github.com/idekerlab/cdhidef-go/pkg/finder"
	"github.com/idekerlab/cdhidef-go/pkg/hidef"
	"github.com/idekerlab/cdhidef-go/pkg/pipeline"
)

// runOpts holds the command-line flags for the run command. The
// clustering flags mirror the hidef_finder.py command line; defaults
// come from the config file, which in turn falls back to the upstream
// hidef defaults.
type runOpts struct {
	n        int     // target cluster count (unset unless the flag is given)
	t        float64 // resolution sampling density
	k        int     // persistence pre-filter
	j        float64 // jaccard cutoff
	minres   float64 // resolution sweep lower bound
	maxres   float64 // resolution sweep upper bound
	s        float64 // subsample parameter
	ct       int     // cluster collapse threshold
	alg      string  // louvain or leiden
	hidefCmd string  // hidef_finder.py executable
	tempdir  string  // parent for scratch directories

	plain   bool   // emit the bare relation string instead of JSON
	noAttrs bool   // omit the node attribute block
	noCache bool   // disable the document cache
	refresh bool   // bypass the cache lookup
	watch   bool   // interactive progress view
	output  string // output file path (stdout if empty)
}

// runCommand creates the run command: cluster an edge list with HiDeF
// and emit the interchange document.
func (c *CLI) runCommand() *cobra.Command {
	defaults := finder.DefaultOptions()
	opts := runOpts{}

	cmd := &cobra.Command{
		Use:   "run <edge-list>",
		Short: "Cluster an edge list with HiDeF and emit the interchange document",
		Long: `Run HiDeF community detection on a tab-delimited edge list and convert
the resulting hierarchy into the CDAPS interchange document.

The document is written to stdout (or --output) as JSON carrying the
relation string and the per-cluster persistence attributes. Finished
documents are cached keyed on the input bytes and clustering
parameters.

Examples:
  cdhidef run network.tsv                    # JSON document on stdout
  cdhidef run network.tsv --n 50 -o out.json # aim for ~50 clusters
  cdhidef run network.tsv --plain            # bare relation string`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runPipeline(cmd, args[0], &opts)
		},
	}

	cmd.Flags().IntVar(&opts.n, "n", 0, "target cluster count for the resolution sweep")
	cmd.Flags().Float64Var(&opts.t, "t", defaults.T, "density of resolution parameter sampling")
	cmd.Flags().IntVar(&opts.k, "k", defaults.K, "persistence threshold for pre-filtering unstable clusters")
	cmd.Flags().Float64Var(&opts.j, "j", defaults.J, "jaccard index cutoff")
	cmd.Flags().Float64Var(&opts.minres, "minres", defaults.MinRes, "lower bound of the resolution sweep")
	cmd.Flags().Float64Var(&opts.maxres, "maxres", defaults.MaxRes, "upper bound of the resolution sweep")
	cmd.Flags().Float64Var(&opts.s, "s", defaults.S, "subsample parameter")
	cmd.Flags().IntVar(&opts.ct, "ct", defaults.CT, "threshold for collapsing clusters")
	cmd.Flags().StringVar(&opts.alg, "alg", defaults.Algorithm, "community detection algorithm (louvain|leiden)")
	cmd.Flags().StringVar(&opts.hidefCmd, "hidef-cmd", defaults.Command, "hidef_finder.py executable")
	cmd.Flags().StringVar(&opts.tempdir, "tempdir", defaults.TempDir, "parent directory for scratch directories")
	cmd.Flags().BoolVar(&opts.plain, "plain", false, "emit the bare relation string instead of the JSON document")
	cmd.Flags().BoolVar(&opts.noAttrs, "no-attributes", false, "omit the node attribute block from the document")
	cmd.Flags().BoolVar(&opts.noCache, "no-cache", false, "disable the document cache")
	cmd.Flags().BoolVar(&opts.refresh, "refresh", false, "bypass the cache lookup (the result is still stored)")
	cmd.Flags().BoolVar(&opts.watch, "watch", false, "show an interactive progress view")
	cmd.Flags().StringVarP(&opts.output, "output", "o", "", "output file (stdout if empty)")

	return cmd
}

// runPipeline validates the input, assembles the pipeline options from
// config and flags, and executes cluster → convert → serialize.
func (c *CLI) runPipeline(cmd *cobra.Command, input string, opts *runOpts) error {
	cfg, err := c.loadConfig()
	if err != nil {
		return exitErr(ExitUnexpected, err)
	}

	// Validate the input up front so a missing or empty edge list gets
	// its own exit status; once clustering starts, a missing file can
	// only mean hidef produced no output.
	info, err := os.Stat(input)
	if err != nil {
		return exitErr(ExitMissingInput, errors.Wrap(errors.ErrCodeMissingInput, err, "input %s is not a file", input))
	}
	if info.Size() == 0 {
		return exitErr(ExitEmptyInput, errors.New(errors.ErrCodeEmptyInput, "input %s is an empty file", input))
	}

	fopts := cfg.FinderOptions()
	applyRunFlags(cmd, opts, &fopts)
	if err := fopts.Validate(); err != nil {
		return exitErr(ExitUnexpected, err)
	}

	runner, err := c.newRunner(cmd.Context(), cfg, opts.noCache)
	if err != nil {
		return exitErr(ExitUnexpected, err)
	}
	defer runner.Close()

	pipelineOpts := pipeline.Options{
		Finder: fopts,
		Document: hidef.DocumentOptions{
			Plain:        opts.plain,
			NoAttributes: opts.noAttrs,
		},
		Refresh: opts.refresh,
	}

	var res *pipeline.Result
	if opts.watch {
		res, err = runWatch(cmd.Context(), runner, input, pipelineOpts)
	} else {
		spin := newSpinnerWithContext(cmd.Context(), "clustering with hidef")
		spin.Start()
		res, err = runner.Execute(cmd.Context(), input, pipelineOpts)
		if err != nil && !spin.Cancelled() {
			spin.StopWithError(errors.UserMessage(err))
		} else {
			spin.Stop()
		}
	}
	if err != nil {
		if cmd.Context().Err() != nil {
			return cmd.Context().Err()
		}
		// The watch view already assigns a status when the user aborts.
		if exit, ok := err.(*ExitError); ok {
			return exit
		}
		return exitErr(runExitStatus(err), err)
	}

	if err := writeDocument(res.Document, opts.output); err != nil {
		return exitErr(ExitUnexpected, err)
	}

	if opts.output != "" {
		if res.Empty {
			printWarning("no clusters produced")
		} else {
			printSuccess("Converted HiDeF hierarchy")
		}
		printStats(res.Stats.Clusters, res.Stats.Memberships, res.Stats.Containments, res.CacheHit)
		printFile(opts.output)
	} else if res.Empty {
		c.Logger.Warn("no clusters produced")
	}
	return nil
}

// applyRunFlags overlays explicitly-set flags onto the config-derived
// finder options. Untouched flags leave the config values alone.
func applyRunFlags(cmd *cobra.Command, opts *runOpts, fopts *finder.Options) {
	f := cmd.Flags()
	if f.Changed("n") {
		n := opts.n
		fopts.N = &n
	}
	if f.Changed("t") {
		fopts.T = opts.t
	}
	if f.Changed("k") {
		fopts.K = opts.k
	}
	if f.Changed("j") {
		fopts.J = opts.j
	}
	if f.Changed("minres") {
		fopts.MinRes = opts.minres
	}
	if f.Changed("maxres") {
		fopts.MaxRes = opts.maxres
	}
	if f.Changed("s") {
		fopts.S = opts.s
	}
	if f.Changed("ct") {
		fopts.CT = opts.ct
	}
	if f.Changed("alg") {
		fopts.Algorithm = opts.alg
	}
	if f.Changed("hidef-cmd") {
		fopts.Command = opts.hidefCmd
	}
	if f.Changed("tempdir") {
		fopts.TempDir = opts.tempdir
	}
}

// writeDocument writes the serialized document to path, or stdout when
// path is empty.
func writeDocument(doc []byte, path string) error {
	if path == "" {
		_, err := os.Stdout.Write(doc)
		return err
	}
	if err := os.WriteFile(path, doc, 0644); err != nil {
		return fmt.Errorf("write document to %s: %w", path, err)
	}
	return nil
}
