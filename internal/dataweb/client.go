// Package dataweb downloads import statistics from the USITC DataWeb API,
// one country at a time, with rate limiting, retry and a resumable sqlite
// checkpoint so interrupted runs pick up where they left off.
package dataweb

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"math"
	"math/rand/v2"
	"net/http"
	"time"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/sells-group/trade-cli/internal/canonical"
	"github.com/sells-group/trade-cli/internal/config"
)

// Client talks to the DataWeb v2 API with bearer auth.
type Client struct {
	http        *http.Client
	baseURL     string
	apiKey      string
	limiter     *rate.Limiter
	maxRetries  int
	recordLimit int
	backoffBase time.Duration
}

// NewClient builds a client from configuration.
func NewClient(cfg config.DatawebConfig) *Client {
	rps := cfg.RequestsPerSec
	if rps <= 0 {
		rps = 1
	}
	retries := cfg.MaxRetries
	if retries <= 0 {
		retries = 4
	}
	return &Client{
		http:        &http.Client{Timeout: 90 * time.Second},
		baseURL:     cfg.BaseURL,
		apiKey:      cfg.APIKey,
		limiter:     rate.NewLimiter(rate.Limit(rps), 1),
		maxRetries:  retries,
		recordLimit: cfg.RecordLimit,
		backoffBase: 5 * time.Second,
	}
}

// Country is one entry of the getAllCountries listing.
type Country struct {
	Name  string `json:"name"`
	Value string `json:"value"`
}

// Countries fetches the full country listing.
func (c *Client) Countries(ctx context.Context) ([]Country, error) {
	body, err := c.do(ctx, http.MethodGet, "/api/v2/country/getAllCountries", nil)
	if err != nil {
		return nil, eris.Wrap(err, "dataweb: get countries")
	}
	var out struct {
		Options []Country `json:"options"`
	}
	if err := json.Unmarshal(body, &out); err != nil {
		return nil, eris.Wrap(err, "dataweb: decode country list")
	}
	if len(out.Options) == 0 {
		return nil, eris.New("dataweb: country list is empty")
	}
	return out.Options, nil
}

// ReportTable is the table portion of a runReport response.
type ReportTable struct {
	ColumnGroups []json.RawMessage `json:"column_groups"`
	RowGroups    []struct {
		Rows []struct {
			RowEntries []struct {
				Value string `json:"value"`
			} `json:"rowEntries"`
		} `json:"rowsNew"`
	} `json:"row_groups"`
}

// Rows flattens the table's first row group into value slices.
func (t *ReportTable) Rows() [][]string {
	if len(t.RowGroups) == 0 {
		return nil
	}
	out := make([][]string, 0, len(t.RowGroups[0].Rows))
	for _, row := range t.RowGroups[0].Rows {
		values := make([]string, len(row.RowEntries))
		for i, e := range row.RowEntries {
			values[i] = e.Value
		}
		out = append(out, values)
	}
	return out
}

// RunReport posts a report query and returns the first result table, or nil
// when the response carries no data.
func (c *Client) RunReport(ctx context.Context, query map[string]any) (*ReportTable, error) {
	payload, err := json.Marshal(query)
	if err != nil {
		return nil, eris.Wrap(err, "dataweb: marshal query")
	}
	body, err := c.do(ctx, http.MethodPost, "/api/v2/report2/runReport", payload)
	if err != nil {
		return nil, eris.Wrap(err, "dataweb: run report")
	}

	var out struct {
		DTO struct {
			Tables []ReportTable `json:"tables"`
		} `json:"dto"`
	}
	if err := json.Unmarshal(body, &out); err != nil {
		return nil, eris.Wrap(err, "dataweb: decode report")
	}
	if len(out.DTO.Tables) == 0 {
		return nil, nil
	}
	return &out.DTO.Tables[0], nil
}

// do issues one API call with rate limiting and retry. 429 and 5xx retry
// with exponential backoff and jitter; any other non-200 is unrecoverable.
func (c *Client) do(ctx context.Context, method, path string, payload []byte) ([]byte, error) {
	url := c.baseURL + path

	var lastErr error
	for attempt := range c.maxRetries {
		if err := c.limiter.Wait(ctx); err != nil {
			return nil, eris.Wrap(err, "rate limiter wait")
		}

		var reqBody io.Reader
		if payload != nil {
			reqBody = bytes.NewReader(payload)
		}
		req, err := http.NewRequestWithContext(ctx, method, url, reqBody)
		if err != nil {
			return nil, eris.Wrap(err, "create request")
		}
		req.Header.Set("Content-Type", "application/json; charset=utf-8")
		req.Header.Set("Authorization", "Bearer "+c.apiKey)

		resp, err := c.http.Do(req)
		if err != nil {
			lastErr = err
			zap.L().Warn("dataweb request failed, retrying",
				zap.String("url", url),
				zap.Int("attempt", attempt+1),
				zap.Error(err),
			)
			c.backoff(ctx, attempt)
			continue
		}

		if resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= 500 {
			_ = resp.Body.Close()
			lastErr = eris.Errorf("http %d from %s", resp.StatusCode, url)
			zap.L().Warn("dataweb transient error, backing off",
				zap.String("url", url),
				zap.Int("status", resp.StatusCode),
				zap.Int("attempt", attempt+1),
			)
			c.backoff(ctx, attempt)
			continue
		}

		if resp.StatusCode != http.StatusOK {
			_ = resp.Body.Close()
			return nil, eris.Errorf("http %d from %s", resp.StatusCode, url)
		}

		body, err := io.ReadAll(resp.Body)
		_ = resp.Body.Close()
		if err != nil {
			return nil, eris.Wrap(err, "read response body")
		}
		return body, nil
	}
	return nil, eris.Wrap(lastErr, "all retries exhausted")
}

func (c *Client) backoff(ctx context.Context, attempt int) {
	maxBackoff := 60 * time.Second
	d := time.Duration(float64(c.backoffBase) * math.Pow(2, float64(attempt)))
	if d > maxBackoff {
		d = maxBackoff
	}
	d += time.Duration(rand.Int64N(int64(d) / 2))

	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
	case <-t.C:
	}
}

// reportQuery builds the runReport payload for one country. A non-empty
// chapter switches the commodity selection from "all" to a manual HTS
// chapter query, the fallback when the record limit is hit.
func reportQuery(country Country, chapter string, from, to canonical.YearMonth, recordLimit int) map[string]any {
	commodities := map[string]any{
		"aggregation":         "Break Out Commodities",
		"codeDisplayFormat":   "YES",
		"commodities":         []any{},
		"commoditiesManual":   "",
		"commoditySelectType": "all",
		"granularity":         "10",
	}
	if chapter != "" {
		commodities["commoditySelectType"] = "manual"
		commodities["commoditiesManual"] = chapter
	}

	return map[string]any{
		"savedQueryType":    "",
		"isOwner":           true,
		"unitConversion":    "0",
		"manualConversions": []any{},
		"reportOptions": map[string]any{
			"tradeType":            "Import",
			"classificationSystem": "HTS",
		},
		"searchOptions": map[string]any{
			"MiscGroup": map[string]any{
				"districts": map[string]any{
					"aggregation":         "Aggregate District",
					"districtsExpanded":   []any{map[string]any{"name": "All Districts", "value": "all"}},
					"districtsSelectType": "all",
				},
				"importPrograms":    map[string]any{"programsSelectType": "all"},
				"extImportPrograms": map[string]any{"aggregation": "Aggregate CSC", "programsSelectType": "all"},
				"provisionCodes":    map[string]any{"aggregation": "Aggregate RPCODE", "provisionCodesSelectType": "all"},
			},
			"commodities": commodities,
			"componentSettings": map[string]any{
				"dataToReport":        []any{"CONS_FIR_UNIT_QUANT"},
				"scale":               "1",
				"timeframeSelectType": "specificDateRange",
				"startDate":           fmt.Sprintf("%02d/%d", int(from.Month), from.Year),
				"endDate":             fmt.Sprintf("%02d/%d", int(to.Month), to.Year),
				"yearsTimeline":       "Monthly",
			},
			"countries": map[string]any{
				"aggregation":         "Aggregate Countries",
				"countries":           []any{country.Value},
				"countriesExpanded":   []any{country},
				"countriesSelectType": "list",
			},
		},
		"sortingAndDataFormat": map[string]any{
			"DataSort": map[string]any{
				"columnOrder": []any{"COUNTRY", "HTS10 & DESCRIPTION"},
			},
			"reportCustomizations": map[string]any{
				"totalRecords":  fmt.Sprint(recordLimit),
				"exportRawData": false,
			},
		},
	}
}
