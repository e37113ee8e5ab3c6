package main

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/sells-group/capital-cli/internal/ingest"
	"github.com/sells-group/capital-cli/internal/model"
	"github.com/sells-group/capital-cli/internal/pipeline"
	"github.com/sells-group/capital-cli/internal/report"
	"github.com/sells-group/capital-cli/internal/store"
)

var servePort int

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the upload server for budget analyses",
	Long:  "Accepts CSV or XLSX uploads over HTTP, runs the budget pipeline on each, and serves run history. Identical uploads reuse the cached result.",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		st, err := openStore(ctx)
		if err != nil {
			return eris.Wrap(err, "serve: open store")
		}
		defer st.Close() //nolint:errcheck

		r := chi.NewRouter()
		r.Use(middleware.RequestID)
		r.Use(middleware.Recoverer)
		r.Use(cors.Handler(cors.Options{
			AllowedOrigins: []string{"*"},
			AllowedMethods: []string{"GET", "POST", "OPTIONS"},
			AllowedHeaders: []string{"Accept", "Content-Type"},
		}))

		r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
			writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
		})
		r.Post("/v1/uploads", handleUpload(st))
		r.Get("/v1/runs", handleListRuns(st))
		r.Get("/v1/runs/{id}", handleGetRun(st))

		port := servePort
		if port == 0 {
			port = cfg.Server.Port
		}

		srv := &http.Server{
			Addr:              fmt.Sprintf(":%d", port),
			Handler:           r,
			ReadHeaderTimeout: 10 * time.Second,
		}

		go func() {
			<-ctx.Done()
			zap.L().Info("shutting down server")
			srv.Shutdown(ctx) //nolint:errcheck
		}()

		zap.L().Info("starting server", zap.Int("port", port))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			return eris.Wrap(err, "serve: listen")
		}

		return nil
	},
}

// handleUpload accepts one multipart file field named "file", runs the
// pipeline over it, and returns the run id, headline metrics, and the grouped
// summary. Query parameters: as_of (YYYY-MM-DD), missing_month, group_by.
func handleUpload(st store.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		maxBytes := int64(cfg.Server.MaxUploadMB) << 20
		r.Body = http.MaxBytesReader(w, r.Body, maxBytes)
		if err := r.ParseMultipartForm(maxBytes); err != nil {
			writeError(w, http.StatusBadRequest, "invalid multipart body")
			return
		}

		file, header, err := r.FormFile("file")
		if err != nil {
			writeError(w, http.StatusBadRequest, "file field is required")
			return
		}
		defer file.Close() //nolint:errcheck

		path, err := spoolUpload(file, header.Filename)
		if err != nil {
			zap.L().Error("spool upload", zap.Error(err))
			writeError(w, http.StatusInternalServerError, "could not store upload")
			return
		}
		defer os.Remove(path) //nolint:errcheck

		opts, err := uploadOptions(r)
		if err != nil {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}

		raw, err := ingest.LoadFile(path, header.Filename, loadOptions())
		if err != nil {
			writeError(w, http.StatusBadRequest, eris.Cause(err).Error())
			return
		}

		run, err := st.CreateRun(ctx, raw.Name, raw.SHA256)
		if err != nil {
			zap.L().Error("create run", zap.Error(err))
			writeError(w, http.StatusInternalServerError, "could not record run")
			return
		}

		res := cachedResult(ctx, st, raw.SHA256, opts)
		if res == nil {
			res, err = pipeline.Run(raw.Headers, raw.Records, opts)
			if err != nil {
				if failErr := st.FailRun(ctx, run.ID, err.Error()); failErr != nil {
					zap.L().Error("record run failure", zap.Error(failErr))
				}
				writeError(w, http.StatusUnprocessableEntity, eris.Cause(err).Error())
				return
			}
			if payload, marshalErr := res.Marshal(); marshalErr == nil {
				if cacheErr := st.SetCachedResult(ctx, raw.SHA256, payload); cacheErr != nil {
					zap.L().Warn("cache result", zap.Error(cacheErr))
				}
			}
		}
		if err := st.CompleteRun(ctx, run.ID, res.Metrics); err != nil {
			zap.L().Error("complete run", zap.Error(err))
		}

		groupBy := r.URL.Query().Get("group_by")
		if groupBy == "" {
			groupBy = cfg.Report.GroupBy
		}
		data := report.Build(raw.Name, res, res.Table, report.Options{
			GroupBy:            groupBy,
			TopN:               cfg.Report.TopN,
			HighlightThreshold: cfg.Report.HighlightThreshold,
		})

		writeJSON(w, http.StatusOK, map[string]any{
			"run_id":      run.ID,
			"fingerprint": raw.SHA256,
			"as_of":       res.AsOf.Format("2006-01-02"),
			"warnings":    res.Warnings,
			"metrics":     res.Metrics,
			"groups":      data.Groups,
			"over":        data.Over,
			"under":       data.Under,
		})
	}
}

func handleListRuns(st store.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		filter := store.RunFilter{
			Status: model.RunStatus(q.Get("status")),
			Source: q.Get("source"),
			Limit:  50,
		}
		runs, err := st.ListRuns(r.Context(), filter)
		if err != nil {
			zap.L().Error("list runs", zap.Error(err))
			writeError(w, http.StatusInternalServerError, "could not list runs")
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"runs": runs})
	}
}

func handleGetRun(st store.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		run, err := st.GetRun(r.Context(), chi.URLParam(r, "id"))
		if err != nil {
			writeError(w, http.StatusNotFound, "run not found")
			return
		}
		writeJSON(w, http.StatusOK, run)
	}
}

func uploadOptions(r *http.Request) (pipeline.Options, error) {
	q := r.URL.Query()

	asOfCfg := cfg.Pipeline
	if v := q.Get("as_of"); v != "" {
		asOfCfg.AsOf = v
	}
	asOf, err := asOfCfg.AsOfTime(time.Now())
	if err != nil {
		return pipeline.Options{}, eris.New("as_of must be YYYY-MM-DD")
	}

	policy := pipeline.MissingMonthPolicy(cfg.Pipeline.MissingMonthPolicy)
	if v := q.Get("missing_month"); v != "" {
		policy = pipeline.MissingMonthPolicy(v)
	}
	if !policy.Valid() {
		return pipeline.Options{}, eris.Errorf("unknown missing_month policy %q", policy)
	}

	return pipeline.Options{AsOf: asOf, MissingMonth: policy}, nil
}

// spoolUpload writes the upload to a temp file keeping the original extension
// so the parser can distinguish CSV from XLSX.
func spoolUpload(src io.Reader, filename string) (string, error) {
	tmp, err := os.CreateTemp("", "capital-upload-*"+filepath.Ext(filename))
	if err != nil {
		return "", eris.Wrap(err, "create temp file")
	}
	path := tmp.Name()

	if _, err := io.Copy(tmp, src); err != nil {
		_ = tmp.Close()
		_ = os.Remove(path)
		return "", eris.Wrap(err, "write upload")
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(path)
		return "", eris.Wrap(err, "close upload")
	}
	return path, nil
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(payload) //nolint:errcheck
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

func init() {
	serveCmd.Flags().IntVar(&servePort, "port", 0, "server port (default from config)")
	rootCmd.AddCommand(serveCmd)
}
