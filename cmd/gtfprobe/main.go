package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"os"

	"gtfparse/internal/datasource/file"
	"gtfparse/internal/probe"
	"gtfparse/internal/storage"
)

// main is the entry point for the gtfprobe binary: sample the head of a
// GTF, print what a parse would produce, and optionally emit a pipeline
// config to feed straight into gtfparse.
func main() {
	var (
		inPath  string
		samples int
		job     string
		backend string
	)

	flag.StringVar(&inPath, "in", "", "input GTF path (.gz accepted)")
	flag.IntVar(&samples, "n", 1000, "number of records to sample")
	flag.StringVar(&job, "job", "", "job name for the suggested config (default: derived from path)")
	flag.StringVar(&backend, "backend", "", "storage backend for the suggested config: sqlite or postgres")
	asJSON := flag.Bool("json", false, "print the report as JSON")
	emitConfig := flag.Bool("config", false, "print a suggested pipeline config instead of the report")
	strict := flag.Bool("strict", false, "abort on the first malformed line")

	flag.Parse()

	if inPath == "" {
		fmt.Fprintln(os.Stderr, "usage: gtfprobe -in annotation.gtf[.gz] [-n 1000] [-config [-backend sqlite]]")
		os.Exit(2)
	}

	rc, err := file.NewLocal(inPath).Open(context.Background())
	if err != nil {
		log.Fatalf("%v", err)
	}
	defer rc.Close()

	rep, err := probe.Sample(rc, probe.Options{SampleRecords: samples, Strict: *strict})
	if err != nil {
		log.Fatalf("%v", err)
	}

	switch {
	case *emitConfig:
		if job == "" {
			job = storage.NormalizeIdent(inPath)
		}
		cfg := rep.SuggestConfig(job, inPath, backend)
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		if err := enc.Encode(cfg); err != nil {
			log.Fatalf("encode config: %v", err)
		}
	case *asJSON:
		if err := rep.RenderJSON(os.Stdout); err != nil {
			log.Fatalf("encode report: %v", err)
		}
	default:
		if err := rep.RenderText(os.Stdout); err != nil {
			log.Fatalf("render report: %v", err)
		}
	}
}
