package file

import (
	"context"
	"log"
	"path/filepath"

	"rewardsetl/internal/datasource"
	jsonparser "rewardsetl/internal/parser/json"
	"rewardsetl/pkg/records"
)

// DataDir is the subdirectory of the base directory holding the input files.
const DataDir = "data"

// NDJSON reads newline-delimited JSON datasets from BaseDir/data.
type NDJSON struct {
	BaseDir string
}

// Path returns the full path of the named dataset file.
func (n NDJSON) Path(filename string) string {
	return filepath.Join(n.BaseDir, DataDir, filename)
}

// Read decodes every line of the named file. Any failure (missing file,
// unreadable line, invalid JSON) is returned as a *datasource.Error and no
// records are returned.
func (n NDJSON) Read(ctx context.Context, filename string) ([]records.Record, error) {
	src := NewLocal(n.Path(filename))
	rc, err := src.Open(ctx)
	if err != nil {
		return nil, &datasource.Error{File: filename, Err: err}
	}
	defer rc.Close()

	recs, err := jsonparser.DecodeAll(rc)
	if err != nil {
		return nil, &datasource.Error{File: filename, Err: err}
	}
	log.Printf("source: file=%s records=%d", src.Path(), len(recs))
	return recs, nil
}
