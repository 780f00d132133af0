package pipeline

import (
	"context"
	"fmt"
	"time"

	"gtfparse/internal/coerce"
	"gtfparse/internal/config"
	"gtfparse/internal/datasource"
	"gtfparse/internal/datasource/file"
	"gtfparse/internal/metrics"
	"gtfparse/internal/storage"
	"gtfparse/internal/storage/postgres"
	"gtfparse/internal/storage/sqlite"
	"gtfparse/internal/table"
)

// Run executes one configured parse-and-load. The returned table is always
// populated on success, whether or not a storage sink is configured.
func Run(ctx context.Context, cfg config.Pipeline) (*table.Table, *Summary, error) {
	issues := config.ValidatePipeline(cfg)
	for _, is := range issues {
		if is.Severity == config.SeverityError {
			return nil, nil, fmt.Errorf("pipeline config: %s", is.Error())
		}
	}

	if cfg.Job == "" {
		cfg.Job = storage.NormalizeIdent(cfg.Source.File.Path)
	}

	opt, err := OptionsFromConfig(cfg)
	if err != nil {
		return nil, nil, err
	}

	src, err := openSource(cfg.Source)
	if err != nil {
		return nil, nil, err
	}
	rc, err := src.Open(ctx)
	if err != nil {
		return nil, nil, fmt.Errorf("open source: %w", err)
	}
	defer rc.Close()

	start := time.Now()
	t, sum, err := Parse(ctx, rc, opt, table.MemBuilder{})
	metrics.RecordStage(cfg.Job, "parse", err, time.Since(start))
	if err != nil {
		return nil, nil, err
	}
	metrics.RecordLines(cfg.Job, "parsed", int64(sum.Rows))
	metrics.RecordLines(cfg.Job, "skipped", sum.Skipped)
	metrics.RecordLines(cfg.Job, "filtered", sum.Filtered)
	metrics.RecordLines(cfg.Job, "warnings", int64(len(sum.Warnings)))
	metrics.RecordColumns(cfg.Job, sum.Columns)

	if cfg.Storage.Kind != "" {
		start = time.Now()
		n, err := load(ctx, cfg.Storage, t)
		metrics.RecordStage(cfg.Job, "load", err, time.Since(start))
		if err != nil {
			return nil, nil, err
		}
		metrics.RecordLines(cfg.Job, "loaded", n)
	}
	return t, sum, nil
}

// OptionsFromConfig translates the JSON option bag into typed Options.
func OptionsFromConfig(cfg config.Pipeline) (Options, error) {
	po := cfg.Parser.Options
	conv, err := coerce.CompileTypes(cfg.Coerce.Types)
	if err != nil {
		return Options{}, fmt.Errorf("coerce types: %w", err)
	}
	return Options{
		Strict:               po.Bool("strict", false),
		RowLimit:             po.Int("row_limit", 0),
		FeatureFilter:        po.StringSlice("feature_filter"),
		RawAttributes:        po.Bool("raw_attributes", false),
		NormalizeCoordinates: po.Bool("normalize_coordinates", false),
		InferBiotype:         po.Bool("infer_biotype", false),
		UseCols:              po.StringSlice("usecols"),
		CreateFeatures:       po.StringMap("create_features"),
		Converters:           conv,
	}, nil
}

func openSource(s config.Source) (datasource.Source, error) {
	switch s.Kind {
	case "", "file":
		return file.NewLocal(s.File.Path), nil
	}
	return nil, fmt.Errorf("unknown source kind %q", s.Kind)
}

func load(ctx context.Context, s config.Storage, t *table.Table) (int64, error) {
	var sink storage.Sink
	var closer func()
	var err error
	switch s.Kind {
	case "sqlite":
		sink, closer, err = sqlite.NewSink(ctx, sqlite.Config{
			DSN:   s.DB.DSN,
			Table: s.DB.Table,
		})
	case "postgres":
		sink, closer, err = postgres.NewSink(ctx, postgres.Config{
			DSN:         s.DB.DSN,
			Table:       s.DB.Table,
			CreateTable: s.DB.AutoCreateTable,
		})
	default:
		return 0, fmt.Errorf("unknown storage kind %q", s.Kind)
	}
	if err != nil {
		return 0, fmt.Errorf("storage %s: %w", s.Kind, err)
	}
	defer closer()
	return sink.Load(ctx, t)
}
