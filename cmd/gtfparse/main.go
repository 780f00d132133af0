package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"os"
	"strings"
	"time"

	"gtfparse/internal/config"
	"gtfparse/internal/gtf"
	"gtfparse/internal/metrics"
	"gtfparse/internal/metrics/datadog"
	"gtfparse/internal/metrics/prompush"
	"gtfparse/internal/pipeline"
)

// main is the entry point for the gtfparse binary. It assembles a pipeline
// config from a JSON file and/or flags, optionally initializes a metrics
// backend, and executes the run.
func main() {
	var (
		cfgPath  string
		inPath   string
		outPath  string
		features string
		usecols  string
		rowLimit int
		validate bool
	)

	flag.StringVar(&cfgPath, "config", "", "pipeline config JSON path")
	flag.StringVar(&inPath, "in", "", "input GTF path (.gz accepted); overrides config source")
	flag.StringVar(&outPath, "out", "", "write the parsed table back out as GTF to this path")
	flag.StringVar(&features, "features", "", "comma-separated feature filter, e.g. gene,transcript")
	flag.StringVar(&usecols, "usecols", "", "comma-separated output columns")
	flag.IntVar(&rowLimit, "row-limit", 0, "stop after this many accepted records (0 = all)")
	strict := flag.Bool("strict", false, "abort on the first malformed line instead of skipping")
	rawAttrs := flag.Bool("raw-attributes", false, "keep the attribute field as one column")
	flag.BoolVar(&validate, "validate", false, "validate the configuration and exit")
	verbose := flag.Bool("v", false, "enable verbose logs")

	flag.Parse()

	var p config.Pipeline
	if cfgPath != "" {
		f, err := os.Open(cfgPath)
		if err != nil {
			fatalf("open config: %v", err)
		}
		if err := json.NewDecoder(f).Decode(&p); err != nil {
			f.Close()
			fatalf("decode config: %v", err)
		}
		f.Close()
	}
	applyFlags(&p, inPath, features, usecols, rowLimit, *strict, *rawAttrs)

	issues := config.ValidatePipeline(p)
	hasError := false
	for _, iss := range issues {
		fmt.Fprintf(os.Stderr, "%s: %s: %s\n", iss.Severity, iss.Path, iss.Message)
		if iss.Severity == config.SeverityError {
			hasError = true
		}
	}
	if hasError {
		log.Printf("configuration is invalid")
		os.Exit(1)
	}
	if validate {
		log.Printf("configuration is valid")
		os.Exit(0)
	}

	initMetrics(p, *verbose)
	defer func() {
		if err := metrics.Flush(); err != nil {
			log.Printf("metrics: flush error: %v", err)
		}
	}()

	ctx := context.Background()
	start := time.Now()

	t, sum, err := pipeline.Run(ctx, p)
	if err != nil {
		log.Fatalf("%v", err)
	}

	fmt.Printf("rows=%d columns=%d skipped=%d filtered=%d warnings=%d fingerprint=%s\n",
		sum.Rows, sum.Columns, sum.Skipped, sum.Filtered, len(sum.Warnings), t.FingerprintString())

	if outPath != "" {
		f, err := os.Create(outPath)
		if err != nil {
			log.Fatalf("create %s: %v", outPath, err)
		}
		if err := gtf.WriteTable(f, t, nil); err != nil {
			f.Close()
			log.Fatalf("write %s: %v", outPath, err)
		}
		if err := f.Close(); err != nil {
			log.Fatalf("close %s: %v", outPath, err)
		}
	}

	if *verbose {
		log.Printf("completed in %s", time.Since(start).Truncate(time.Millisecond))
	}
}

// applyFlags overlays command line values onto the decoded config. Flags
// win over the file so a config can serve as a reusable baseline.
func applyFlags(p *config.Pipeline, inPath, features, usecols string, rowLimit int, strict, rawAttrs bool) {
	if inPath != "" {
		p.Source.Kind = "file"
		p.Source.File.Path = inPath
	}
	if p.Parser.Options == nil {
		p.Parser.Options = config.Options{}
	}
	if features != "" {
		p.Parser.Options["feature_filter"] = splitList(features)
	}
	if usecols != "" {
		p.Parser.Options["usecols"] = splitList(usecols)
	}
	if rowLimit > 0 {
		p.Parser.Options["row_limit"] = rowLimit
	}
	if strict {
		p.Parser.Options["strict"] = true
	}
	if rawAttrs {
		p.Parser.Options["raw_attributes"] = true
	}
}

func splitList(s string) []any {
	parts := strings.Split(s, ",")
	out := make([]any, 0, len(parts))
	for _, p := range parts {
		if v := strings.TrimSpace(p); v != "" {
			out = append(out, v)
		}
	}
	return out
}

// initMetrics installs the configured backend; on failure the no-op
// backend stays in place rather than failing the run.
func initMetrics(p config.Pipeline, verbose bool) {
	job := p.Job
	if job == "" {
		job = "gtfparse"
	}
	switch p.Metrics.Kind {
	case "prometheus":
		b, err := prompush.NewBackend(job, p.Metrics.GatewayURL)
		if err != nil {
			log.Printf("metrics: prom push init: %v; using nop", err)
			return
		}
		metrics.SetBackend(b)
		if verbose {
			log.Printf("metrics: backend=prometheus gateway=%s job=%s", p.Metrics.GatewayURL, job)
		}
	case "datadog":
		b, err := datadog.NewBackend(datadog.Config{Addr: p.Metrics.StatsdAddr})
		if err != nil {
			log.Printf("metrics: datadog init: %v; using nop", err)
			return
		}
		metrics.SetBackend(b)
		if verbose {
			log.Printf("metrics: backend=datadog statsd=%s job=%s", p.Metrics.StatsdAddr, job)
		}
	case "", "none":
		if verbose {
			log.Printf("metrics: disabled")
		}
	default:
		log.Printf("metrics: unknown backend %q; metrics disabled", p.Metrics.Kind)
	}
}

func fatalf(format string, a ...any) {
	fmt.Fprintf(os.Stderr, format+"\n", a...)
	os.Exit(1)
}
