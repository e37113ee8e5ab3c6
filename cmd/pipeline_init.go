package main

import (
	"context"
	"time"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/sells-group/capital-cli/internal/ingest"
	"github.com/sells-group/capital-cli/internal/pipeline"
	"github.com/sells-group/capital-cli/internal/store"
)

// shared pipeline flags, registered by the commands that run analyses
var (
	flagAsOf         string
	flagMissingMonth string
	flagNoCache      bool
)

func openStore(ctx context.Context) (store.Store, error) {
	if cfg.Store.Driver != "sqlite" {
		return nil, eris.Errorf("unsupported store driver %q", cfg.Store.Driver)
	}
	st, err := store.NewSQLite(cfg.Store.DSN)
	if err != nil {
		return nil, err
	}
	if err := st.Migrate(ctx); err != nil {
		st.Close()
		return nil, err
	}
	return st, nil
}

func loadOptions() ingest.LoadOptions {
	opts := ingest.LoadOptions{
		CSV:  ingest.CSVOptions{TrimSpace: true},
		XLSX: ingest.XLSXOptions{SheetName: cfg.Ingest.Sheet},
		HTTP: ingest.HTTPOptions{
			UserAgent:  cfg.Ingest.UserAgent,
			Timeout:    time.Duration(cfg.Ingest.TimeoutSecs) * time.Second,
			MaxRetries: cfg.Ingest.MaxRetries,
			RatePerSec: cfg.Ingest.RatePerSec,
		},
		FTP: ingest.FTPOptions{
			Timeout: time.Duration(cfg.Ingest.TimeoutSecs) * time.Second,
		},
	}
	if cfg.Ingest.Delimiter != "" {
		opts.CSV.Delimiter = rune(cfg.Ingest.Delimiter[0])
	}
	return opts
}

func pipelineOptions() (pipeline.Options, error) {
	asOfCfg := cfg.Pipeline
	if flagAsOf != "" {
		asOfCfg.AsOf = flagAsOf
	}
	asOf, err := asOfCfg.AsOfTime(time.Now())
	if err != nil {
		return pipeline.Options{}, err
	}

	policy := pipeline.MissingMonthPolicy(cfg.Pipeline.MissingMonthPolicy)
	if flagMissingMonth != "" {
		policy = pipeline.MissingMonthPolicy(flagMissingMonth)
	}
	if !policy.Valid() {
		return pipeline.Options{}, eris.Errorf("unknown missing-month policy %q", policy)
	}

	return pipeline.Options{AsOf: asOf, MissingMonth: policy}, nil
}

// executeRun loads one source, runs (or reuses) the pipeline, and records
// the run. Each call is an independent run over its own table; nothing is
// shared between concurrent executions except the store.
func executeRun(ctx context.Context, st store.Store, source string) (*pipeline.Result, string, error) {
	raw, err := ingest.Load(ctx, source, loadOptions())
	if err != nil {
		return nil, "", err
	}

	opts, err := pipelineOptions()
	if err != nil {
		return nil, "", err
	}

	run, err := st.CreateRun(ctx, raw.Name, raw.SHA256)
	if err != nil {
		return nil, "", err
	}

	if !flagNoCache {
		if res := cachedResult(ctx, st, raw.SHA256, opts); res != nil {
			if err := st.CompleteRun(ctx, run.ID, res.Metrics); err != nil {
				return nil, "", err
			}
			return res, run.ID, nil
		}
	}

	res, err := pipeline.Run(raw.Headers, raw.Records, opts)
	if err != nil {
		if failErr := st.FailRun(ctx, run.ID, err.Error()); failErr != nil {
			zap.L().Error("record run failure", zap.Error(failErr))
		}
		return nil, "", err
	}

	if payload, marshalErr := res.Marshal(); marshalErr == nil {
		if cacheErr := st.SetCachedResult(ctx, raw.SHA256, payload); cacheErr != nil {
			zap.L().Warn("cache result", zap.Error(cacheErr))
		}
	}

	if err := st.CompleteRun(ctx, run.ID, res.Metrics); err != nil {
		return nil, "", err
	}
	return res, run.ID, nil
}

// cachedResult returns the memoized result for a fingerprint when it was
// produced under the same as-of date and policy; otherwise nil.
func cachedResult(ctx context.Context, st store.Store, fingerprint string, opts pipeline.Options) *pipeline.Result {
	payload, ok, err := st.GetCachedResult(ctx, fingerprint)
	if err != nil {
		zap.L().Warn("read result cache", zap.Error(err))
		return nil
	}
	if !ok {
		return nil
	}
	res, err := pipeline.UnmarshalResult(payload)
	if err != nil {
		zap.L().Warn("decode cached result, recomputing", zap.Error(err))
		return nil
	}
	sameDay := res.AsOf.Format("2006-01-02") == opts.AsOf.Format("2006-01-02")
	if !sameDay || res.MissingMonth != opts.MissingMonth {
		return nil
	}
	zap.L().Info("reusing cached result", zap.String("fingerprint", fingerprint))
	return res
}
