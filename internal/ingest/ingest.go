// Package ingest loads a tabular input file — local or remote, CSV or XLSX —
// into raw header and record slices, and fingerprints the content so repeated
// uploads of the same bytes can reuse a cached pipeline run.
package ingest

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"os"
	"path/filepath"
	"strings"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"
)

// RawFile is one uploaded dataset before normalization. Records exist only
// transiently; the pipeline discards them after building the canonical table.
type RawFile struct {
	Name    string
	Headers []string
	Records [][]string
	SHA256  string
}

// LoadOptions configures source retrieval and parsing.
type LoadOptions struct {
	CSV  CSVOptions
	XLSX XLSXOptions
	HTTP HTTPOptions
	FTP  FTPOptions
}

// Load reads the source — a local path, an http(s) URL, or an ftp URL — and
// parses it as CSV or XLSX based on its extension. Any failure here is a load
// failure: fatal for the upload, reported to the operator, nothing derived.
func Load(ctx context.Context, source string, opts LoadOptions) (*RawFile, error) {
	path := source
	switch {
	case strings.HasPrefix(source, "http://"), strings.HasPrefix(source, "https://"):
		local, err := fetchToTemp(ctx, source, func(dst string) (int64, error) {
			return NewHTTPFetcher(opts.HTTP).DownloadToFile(ctx, source, dst)
		})
		if err != nil {
			return nil, err
		}
		defer os.Remove(local) //nolint:errcheck
		path = local
	case strings.HasPrefix(source, "ftp://"):
		local, err := fetchToTemp(ctx, source, func(dst string) (int64, error) {
			return NewFTPFetcher(opts.FTP).DownloadToFile(ctx, source, dst)
		})
		if err != nil {
			return nil, err
		}
		defer os.Remove(local) //nolint:errcheck
		path = local
	}

	return LoadFile(path, source, opts)
}

// LoadFile parses a local file. name is the operator-facing source name
// (the original URL for remote files).
func LoadFile(path, name string, opts LoadOptions) (*RawFile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, eris.Wrapf(err, "ingest: read %s", name)
	}
	sum := sha256.Sum256(data)

	var header []string
	var records [][]string
	if strings.EqualFold(filepath.Ext(name), ".xlsx") {
		header, records, err = ReadXLSX(path, opts.XLSX)
	} else {
		header, records, err = ReadCSV(strings.NewReader(string(data)), opts.CSV)
	}
	if err != nil {
		return nil, eris.Wrapf(err, "ingest: parse %s", name)
	}
	if len(header) == 0 {
		return nil, eris.Errorf("ingest: %s has no header row", name)
	}

	zap.L().Info("ingest: loaded",
		zap.String("source", name),
		zap.Int("columns", len(header)),
		zap.Int("rows", len(records)),
	)

	return &RawFile{
		Name:    name,
		Headers: header,
		Records: records,
		SHA256:  hex.EncodeToString(sum[:]),
	}, nil
}

func fetchToTemp(_ context.Context, source string, download func(string) (int64, error)) (string, error) {
	tmp, err := os.CreateTemp("", "capital-upload-*"+filepath.Ext(source))
	if err != nil {
		return "", eris.Wrap(err, "ingest: create temp file")
	}
	path := tmp.Name()
	_ = tmp.Close()

	n, err := download(path)
	if err != nil {
		_ = os.Remove(path)
		return "", eris.Wrapf(err, "ingest: fetch %s", source)
	}
	zap.L().Debug("ingest: fetched remote source",
		zap.String("source", source),
		zap.Int64("bytes", n),
	)
	return path, nil
}
