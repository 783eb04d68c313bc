// Package pipeline executes the full cdhidef flow: cluster the input edge
// list with HiDeF, convert the nodes/edges output pair, and serialize the
// interchange document. Finished documents are cached keyed on the input
// bytes and clustering parameters, so repeated runs over identical input
// skip the expensive clustering subprocess.
package pipeline

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"time"

	"github.com/charmbracelet/log"

	"github.com/idekerlab/cdhidef-go/pkg/cache"
	"github.com/idekerlab/cdhidef-go/pkg/finder"
	"github.com/idekerlab/cdhidef-go/pkg/hidef"
	"github.com/idekerlab/cdhidef-go/pkg/observability"
)

// Options controls one pipeline execution.
type Options struct {
	// Finder configures the clustering subprocess.
	Finder finder.Options

	// Document controls serialization of the result.
	Document hidef.DocumentOptions

	// Refresh bypasses the cache lookup (the result is still stored).
	Refresh bool
}

// Stats summarizes a conversion for logging and API responses.
type Stats struct {
	Clusters     int           `json:"clusters"`
	Memberships  int           `json:"memberships"`
	Containments int           `json:"containments"`
	MaxNodeID    int           `json:"maxNodeId"`
	ClusterTime  time.Duration `json:"-"`
	ConvertTime  time.Duration `json:"-"`
}

// Result is the outcome of a pipeline execution.
type Result struct {
	// Document is the serialized interchange document.
	Document []byte `json:"document"`

	// Stats describes the conversion.
	Stats Stats `json:"stats"`

	// Empty reports that clustering produced zero clusters.
	Empty bool `json:"empty"`

	// CacheHit reports the document was served from cache.
	CacheHit bool `json:"-"`
}

// Runner executes pipelines with caching. It is stateless apart from the
// cache and logger; one Runner can serve many executions.
type Runner struct {
	Cache  cache.Cache
	Keyer  cache.Keyer
	Logger *log.Logger
}

// NewRunner creates a runner with the given cache and keyer.
// If keyer is nil, a DefaultKeyer is used.
// If cache is nil, a NullCache is used (caching disabled).
func NewRunner(c cache.Cache, keyer cache.Keyer, logger *log.Logger) *Runner {
	if keyer == nil {
		keyer = cache.NewDefaultKeyer()
	}
	if c == nil {
		c = cache.NewNullCache()
	}
	if logger == nil {
		logger = log.Default()
	}
	return &Runner{
		Cache:  c,
		Keyer:  keyer,
		Logger: logger,
	}
}

// Execute runs cluster → convert → serialize for the given input edge
// file, consulting the document cache first.
func (r *Runner) Execute(ctx context.Context, input string, opts Options) (*Result, error) {
	key, err := r.documentKey(input, opts)
	if err != nil {
		return nil, err
	}

	if !opts.Refresh && key != "" {
		if data, hit, err := r.Cache.Get(ctx, key); err == nil && hit {
			var res Result
			if err := json.Unmarshal(data, &res); err == nil {
				res.CacheHit = true
				observability.Cache().OnCacheHit(ctx, "document")
				r.Logger.Debug("document served from cache", "key", key)
				return &res, nil
			}
			// Corrupt entry; fall through and recompute.
		}
		observability.Cache().OnCacheMiss(ctx, "document")
	}

	clusterStart := time.Now()
	observability.Pipeline().OnClusterStart(ctx, opts.Finder.Algorithm)
	f := finder.New(opts.Finder, r.Logger)
	run, err := f.Cluster(ctx, input)
	observability.Pipeline().OnClusterComplete(ctx, opts.Finder.Algorithm, time.Since(clusterStart), err)
	if err != nil {
		return nil, err
	}
	defer func() {
		if err := run.Cleanup(); err != nil {
			r.Logger.Warn("failed to remove scratch dir", "dir", run.Dir, "error", err)
		}
	}()
	clusterTime := time.Since(clusterStart)

	r.Logger.Info("hidef finished", "duration", clusterTime.Round(time.Millisecond))

	res, err := r.convert(ctx, run.NodesFile, run.EdgesFile, opts.Document)
	if err != nil {
		return nil, err
	}
	res.Stats.ClusterTime = clusterTime

	if key != "" {
		if data, err := json.Marshal(res); err == nil {
			_ = r.Cache.Set(ctx, key, data, cache.TTLDocument)
			observability.Cache().OnCacheSet(ctx, "document", len(data))
		}
	}
	return res, nil
}

// ConvertOnly converts a pre-existing nodes/edges pair without invoking
// the clustering subprocess. No caching: conversion itself is cheap.
func (r *Runner) ConvertOnly(ctx context.Context, nodesPath, edgesPath string, docOpts hidef.DocumentOptions) (*Result, error) {
	return r.convert(ctx, nodesPath, edgesPath, docOpts)
}

// convert runs the conversion engine and serializes the document.
func (r *Runner) convert(ctx context.Context, nodesPath, edgesPath string, docOpts hidef.DocumentOptions) (*Result, error) {
	start := time.Now()
	conv, err := hidef.Convert(nodesPath, edgesPath)
	if err != nil {
		observability.Pipeline().OnConvertComplete(ctx, 0, 0, time.Since(start), err)
		return nil, err
	}

	var buf bytes.Buffer
	if err := hidef.WriteDocument(&buf, conv, docOpts); err != nil {
		return nil, err
	}

	res := &Result{
		Document: buf.Bytes(),
		Stats: Stats{
			Clusters:     conv.Registry.Len(),
			Memberships:  conv.MembershipCount(),
			Containments: conv.ContainmentCount(),
			MaxNodeID:    conv.MaxNodeID,
			ConvertTime:  time.Since(start),
		},
		Empty: conv.Empty,
	}
	observability.Pipeline().OnConvertComplete(ctx,
		res.Stats.Clusters, res.Stats.Memberships+res.Stats.Containments, res.Stats.ConvertTime, nil)

	if conv.Empty {
		r.Logger.Warn("no clusters produced")
	} else {
		r.Logger.Info("converted hidef output",
			"clusters", res.Stats.Clusters,
			"memberships", res.Stats.Memberships,
			"containments", res.Stats.Containments,
			"duration", res.Stats.ConvertTime.Round(time.Millisecond))
	}
	return res, nil
}

// documentKey derives the cache key from the input bytes and the options
// that affect the output. Returns an empty key when the input cannot be
// read; the finder reports missing input with the proper error code.
func (r *Runner) documentKey(input string, opts Options) (string, error) {
	data, err := os.ReadFile(input)
	if err != nil {
		return "", nil
	}
	return r.Keyer.DocumentKey(cache.Hash(data), cache.DocumentKeyOpts{
		Algorithm:  opts.Finder.Algorithm,
		Params:     opts.Finder.ParamString(),
		Plain:      opts.Document.Plain,
		Attributes: !opts.Document.NoAttributes,
	}), nil
}

// Close releases resources held by the runner (primarily the cache).
func (r *Runner) Close() error {
	if r.Cache != nil {
		return r.Cache.Close()
	}
	return nil
}
