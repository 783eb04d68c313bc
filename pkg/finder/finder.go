// Package finder invokes the external HiDeF clustering tool.
//
// The converter never runs community detection itself; it shells out to
// hidef_finder.py, pointing it at a scratch directory, and hands the
// resulting x.nodes/x.edges pair to the conversion engine. Scratch
// directories are uuid-named and removed unconditionally once a run is
// consumed.
package finder

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strconv"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"

	"github.com/idekerlab/cdhidef-go/pkg/errors"
)

// OutputPrefix is the file stem hidef_finder.py writes under the scratch
// directory, producing x.nodes and x.edges.
const OutputPrefix = "x"

// Supported community detection algorithms.
const (
	AlgorithmLouvain = "louvain"
	AlgorithmLeiden  = "leiden"
)

// Options mirrors the hidef_finder.py command line.
type Options struct {
	// N is the target cluster count; hidef explores the resolution sweep
	// until the cluster number is close to it. Nil leaves it unset.
	N *int

	// T is the (inversed) density of resolution parameter sampling.
	T float64

	// K pre-filters unstable clusters.
	K int

	// J is the jaccard index cutoff.
	J float64

	// MinRes and MaxRes bound the resolution sweep.
	MinRes float64
	MaxRes float64

	// S is the subsample parameter.
	S float64

	// CT is the threshold used when collapsing clusters.
	CT int

	// Algorithm selects louvain or leiden.
	Algorithm string

	// Command is the hidef_finder.py executable to invoke.
	Command string

	// TempDir is the parent directory for scratch directories.
	TempDir string
}

// DefaultOptions returns the upstream hidef defaults.
func DefaultOptions() Options {
	return Options{
		T:         0.1,
		K:         5,
		J:         0.75,
		MinRes:    0.001,
		MaxRes:    100.0,
		S:         1.0,
		CT:        75,
		Algorithm: AlgorithmLouvain,
		Command:   "hidef_finder.py",
		TempDir:   os.TempDir(),
	}
}

// Validate checks option values that would make the subprocess fail in
// confusing ways.
func (o Options) Validate() error {
	if o.Algorithm != AlgorithmLouvain && o.Algorithm != AlgorithmLeiden {
		return errors.New(errors.ErrCodeUnsupported, "unknown algorithm %q", o.Algorithm)
	}
	return nil
}

// Args builds the full hidef_finder.py argument list for the given input
// edge file and output prefix path.
func (o Options) Args(input, outPrefix string) []string {
	args := []string{
		"--g", input,
		"--skipclug",
		"--skipgml",
	}
	if o.N != nil {
		args = append(args, "--n", strconv.Itoa(*o.N))
	}
	args = append(args,
		"--t", formatFloat(o.T),
		"--k", strconv.Itoa(o.K),
		"--j", formatFloat(o.J),
		"--minres", formatFloat(o.MinRes),
		"--maxres", formatFloat(o.MaxRes),
		"--s", formatFloat(o.S),
		"--ct", strconv.Itoa(o.CT),
		"--alg", o.Algorithm,
		"--o", outPrefix,
	)
	return args
}

// ParamString renders the clustering parameters canonically. Used for
// cache keys: two runs with the same input and the same ParamString
// produce the same document.
func (o Options) ParamString() string {
	n := "-"
	if o.N != nil {
		n = strconv.Itoa(*o.N)
	}
	return fmt.Sprintf("n=%s t=%s k=%d j=%s minres=%s maxres=%s s=%s ct=%d alg=%s",
		n, formatFloat(o.T), o.K, formatFloat(o.J), formatFloat(o.MinRes),
		formatFloat(o.MaxRes), formatFloat(o.S), o.CT, o.Algorithm)
}

func formatFloat(f float64) string {
	return strconv.FormatFloat(f, 'g', -1, 64)
}

// Run is the output of one clustering invocation: a scratch directory
// holding the nodes and edges files. Callers must Cleanup once the files
// are consumed.
type Run struct {
	Dir       string
	NodesFile string
	EdgesFile string
}

// Cleanup removes the scratch directory and everything in it.
func (r *Run) Cleanup() error {
	return os.RemoveAll(r.Dir)
}

// Finder runs hidef_finder.py.
type Finder struct {
	opts   Options
	logger *log.Logger
}

// New creates a finder. A nil logger falls back to the default logger.
func New(opts Options, logger *log.Logger) *Finder {
	if logger == nil {
		logger = log.Default()
	}
	return &Finder{opts: opts, logger: logger}
}

// Cluster validates the input edge file, runs hidef_finder.py in a fresh
// scratch directory and returns the location of its output pair.
//
// A missing input is a MISSING_INPUT error, a zero-byte input an
// EMPTY_INPUT error, and a non-zero subprocess exit a CLUSTERING_FAILED
// error carrying the subprocess stderr. The scratch directory is removed
// on every failure path; on success it is the caller's to clean up.
func (f *Finder) Cluster(ctx context.Context, input string) (*Run, error) {
	if err := f.opts.Validate(); err != nil {
		return nil, err
	}

	info, err := os.Stat(input)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeMissingInput, err, "input %s is not a file", input)
	}
	if info.Size() == 0 {
		return nil, errors.New(errors.ErrCodeEmptyInput, "input %s is an empty file", input)
	}

	dir := filepath.Join(f.opts.TempDir, "cdhidef_"+uuid.New().String())
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, errors.Wrap(errors.ErrCodeInternal, err, "create scratch dir")
	}

	outPrefix := filepath.Join(dir, OutputPrefix)
	args := f.opts.Args(input, outPrefix)

	f.logger.Info("running hidef", "cmd", f.opts.Command, "dir", dir)
	f.logger.Debug("hidef arguments", "args", args)

	cmd := exec.CommandContext(ctx, f.opts.Command, args...)
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		_ = os.RemoveAll(dir)
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		return nil, errors.Wrap(errors.ErrCodeClusteringFailed, err,
			"hidef exited abnormally: %s", stderr.String())
	}

	if stdout.Len() > 0 {
		f.logger.Debug("hidef stdout", "output", stdout.String())
	}
	if stderr.Len() > 0 {
		f.logger.Debug("hidef stderr", "output", stderr.String())
	}

	return &Run{
		Dir:       dir,
		NodesFile: outPrefix + ".nodes",
		EdgesFile: outPrefix + ".edges",
	}, nil
}
