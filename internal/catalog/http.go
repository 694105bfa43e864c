package catalog

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/quartetgames/quartet/internal/game"
)

// HTTPSource reads the remote puzzle catalog. Endpoints:
//
//	GET {base}/v1/puzzles/{kind}?date=YYYY-MM-DD
//	GET {base}/v1/puzzles/{kind}?month=YYYY-MM
//
// A 404 means "no puzzle", not a failure.
type HTTPSource struct {
	baseURL    string
	httpClient *http.Client
}

// NewHTTPSource builds a source against a catalog base URL.
func NewHTTPSource(baseURL string) *HTTPSource {
	return &HTTPSource{
		baseURL: baseURL,
		httpClient: &http.Client{
			Timeout: 15 * time.Second,
		},
	}
}

// ByDate implements Source.
func (h *HTTPSource) ByDate(ctx context.Context, kind game.Kind, date game.Date) (*game.PuzzleRecord, error) {
	body, err := h.get(ctx, kind, url.Values{"date": {date.String()}})
	if err != nil || body == nil {
		return nil, err
	}

	var rec game.PuzzleRecord
	if err := json.Unmarshal(body, &rec); err != nil {
		return nil, fmt.Errorf("unmarshaling puzzle: %w", err)
	}
	return &rec, nil
}

// MonthOf implements Source.
func (h *HTTPSource) MonthOf(ctx context.Context, kind game.Kind, year, month int) ([]game.PuzzleRecord, error) {
	body, err := h.get(ctx, kind, url.Values{"month": {fmt.Sprintf("%04d-%02d", year, month)}})
	if err != nil || body == nil {
		return nil, err
	}

	var payload struct {
		Puzzles []game.PuzzleRecord `json:"puzzles"`
	}
	if err := json.Unmarshal(body, &payload); err != nil {
		return nil, fmt.Errorf("unmarshaling month listing: %w", err)
	}
	return payload.Puzzles, nil
}

// get performs one catalog request, returning a nil body for 404.
func (h *HTTPSource) get(ctx context.Context, kind game.Kind, query url.Values) ([]byte, error) {
	endpoint := fmt.Sprintf("%s/v1/puzzles/%s?%s", h.baseURL, kind, query.Encode())
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := h.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetching catalog: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return nil, nil
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("catalog returned %s", resp.Status)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("reading response: %w", err)
	}
	return body, nil
}
