// Package pkg provides the core libraries for the cdhidef converter.
//
// # Overview
//
// cdhidef wraps the HiDeF hierarchical community detection tool and
// converts its flat-file output into the CDAPS interchange document.
// The pkg directory is organized into these areas:
//
//  1. [hidef] - The conversion engine (parsing, id allocation, document
//     serialization)
//  2. [finder] - The hidef_finder.py subprocess wrapper
//  3. [pipeline] - Orchestration (cluster → convert → serialize) with
//     document caching
//  4. [cache] - Document cache backends (file, redis, null)
//  5. [archive] - Conversion archive for serve mode (file, mongo)
//  6. [config] - TOML configuration loading
//  7. [errors] - Structured errors with machine-readable codes
//  8. [observability] - Optional instrumentation hooks
//  9. [buildinfo] - Version information injected at build time
//
// # Architecture
//
// The typical data flow:
//
//	edge list (tab-delimited)
//	         ↓
//	    [finder] package (run hidef_finder.py in a scratch dir)
//	         ↓
//	    [hidef] package (parse x.nodes/x.edges, allocate cluster ids)
//	         ↓
//	    CDAPS interchange document (JSON or bare relation string)
//
// # Quick Start
//
// Convert an existing HiDeF output pair:
//
//	import "github.com/idekerlab/cdhidef-go/pkg/hidef"
//
//	res, err := hidef.Convert("x.nodes", "x.edges")
//	if err != nil {
//	    return err
//	}
//	var buf bytes.Buffer
//	err = hidef.WriteDocument(&buf, res, hidef.DocumentOptions{})
//
// Run the full pipeline with caching:
//
//	import (
//	    "github.com/idekerlab/cdhidef-go/pkg/cache"
//	    "github.com/idekerlab/cdhidef-go/pkg/finder"
//	    "github.com/idekerlab/cdhidef-go/pkg/pipeline"
//	)
//
//	c, _ := cache.NewFileCache(dir)
//	r := pipeline.NewRunner(c, nil, logger)
//	res, err := r.Execute(ctx, "network.tsv", pipeline.Options{
//	    Finder: finder.DefaultOptions(),
//	})
//
// # Testing
//
// Run tests:
//
//	go test ./pkg/...          # All tests
//	go test ./pkg/hidef/...    # Conversion engine only
//
// [hidef]: https://pkg.go.dev/github.com/idekerlab/cdhidef-go/pkg/hidef
// [finder]: https://pkg.go.dev/github.com/idekerlab/cdhidef-go/pkg/finder
// [pipeline]: https://pkg.go.dev/github.com/idekerlab/cdhidef-go/pkg/pipeline
// [cache]: https://pkg.go.dev/github.com/idekerlab/cdhidef-go/pkg/cache
// [archive]: https://pkg.go.dev/github.com/idekerlab/cdhidef-go/pkg/archive
// [config]: https://pkg.go.dev/github.com/idekerlab/cdhidef-go/pkg/config
// [errors]: https://pkg.go.dev/github.com/idekerlab/cdhidef-go/pkg/errors
// [observability]: https://pkg.go.dev/github.com/idekerlab/cdhidef-go/pkg/observability
// [buildinfo]: https://pkg.go.dev/github.com/idekerlab/cdhidef-go/pkg/buildinfo
package pkg
