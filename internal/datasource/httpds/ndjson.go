package httpds

import (
	"context"
	"log"
	"net/url"

	"rewardsetl/internal/datasource"
	jsonparser "rewardsetl/internal/parser/json"
	"rewardsetl/pkg/records"
)

// NDJSON reads datasets from BaseURL/<filename>.
type NDJSON struct {
	Client  *Client
	BaseURL string
}

// URL returns the location of the named dataset.
func (n NDJSON) URL(filename string) (string, error) {
	return url.JoinPath(n.BaseURL, filename)
}

// Read downloads and decodes the named dataset. Any failure is returned as a
// *datasource.Error and no records are returned.
func (n NDJSON) Read(ctx context.Context, filename string) ([]records.Record, error) {
	u, err := n.URL(filename)
	if err != nil {
		return nil, &datasource.Error{File: filename, Err: err}
	}
	resp, err := n.Client.Get(ctx, u)
	if err != nil {
		return nil, &datasource.Error{File: filename, Err: err}
	}
	defer resp.Body.Close()

	recs, err := jsonparser.DecodeAll(resp.Body)
	if err != nil {
		return nil, &datasource.Error{File: filename, Err: err}
	}
	log.Printf("source: url=%s records=%d", u, len(recs))
	return recs, nil
}
