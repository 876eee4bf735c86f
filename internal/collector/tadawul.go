package collector

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"sort"
	"strconv"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"StockBoard/internal/model"
)

// DefaultSnapshotURL is the Saudi Exchange ticker servlet.
const DefaultSnapshotURL = "https://www.saudiexchange.sa/tadawul.eportal.theme.helper/TickerServlet"

// TadawulFetcher implements SnapshotFetcher against the exchange ticker servlet.
type TadawulFetcher struct {
	URL    string
	Client *http.Client
	Logger *zap.Logger
	now    func() time.Time
}

// NewTadawulFetcher creates a snapshot fetcher with the given timeout and optional proxy.
func NewTadawulFetcher(snapshotURL string, timeout time.Duration, proxyURL string, logger *zap.Logger) *TadawulFetcher {
	if snapshotURL == "" {
		snapshotURL = DefaultSnapshotURL
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &TadawulFetcher{
		URL:    snapshotURL,
		Client: newHTTPClient(timeout, proxyURL),
		Logger: logger,
		now:    time.Now,
	}
}

func (f *TadawulFetcher) Name() string { return "tadawul" }

// rawField keeps the literal text of a JSON scalar so it can be parsed
// strictly into its target type. The servlet sends numbers both as JSON
// numbers and as quoted strings.
type rawField struct {
	text string
	set  bool
}

func (r *rawField) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if bytes.Equal(b, []byte("null")) {
		return nil
	}
	switch b[0] {
	case '"':
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		r.text = s
	case '{', '[':
		return fmt.Errorf("expected scalar, got %s", b)
	default:
		r.text = string(b)
	}
	r.set = true
	return nil
}

// tadawulRecord is the per-ticker shape inside stockData.
type tadawulRecord struct {
	PkRfCompany        rawField `json:"pk_rf_company"`
	CompanyShortNameEn rawField `json:"companyShortNameEn"`
	CompanyShortNameAr rawField `json:"companyShortNameAr"`
	LastTradePrice     rawField `json:"lastTradePrice"`
	Change             rawField `json:"change"`
	ChangePercent      rawField `json:"changePercent"`
	NoOfTrades         rawField `json:"noOfTrades"`
	TurnOver           rawField `json:"turnOver"`
	VolumeTraded       rawField `json:"volumeTraded"`
	AveTradeSize       rawField `json:"aveTradeSize"`
}

type tadawulResponse struct {
	StockData *[]tadawulRecord `json:"stockData"`
}

// FetchSnapshot downloads and normalizes the snapshot.
func (f *TadawulFetcher) FetchSnapshot(ctx context.Context) (*model.SnapshotTable, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, f.URL, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("User-Agent", userAgent)
	req.Header.Set("Accept", "application/json")

	start := f.now()
	resp, err := f.Client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("snapshot fetch: %w: %w", model.ErrUpstreamUnavailable, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("snapshot read body: %w: %w", model.ErrUpstreamUnavailable, err)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fmt.Errorf("snapshot: %w: status %d", model.ErrUpstreamUnavailable, resp.StatusCode)
	}

	table, err := ParseSnapshot(body)
	if err != nil {
		return nil, err
	}
	table.FetchedAt = f.now()
	f.Logger.Debug("snapshot fetched",
		zap.Int("records", len(table.Records)),
		zap.Duration("took", table.FetchedAt.Sub(start)))
	return table, nil
}

// ParseSnapshot decodes a servlet payload into a sorted SnapshotTable.
func ParseSnapshot(body []byte) (*model.SnapshotTable, error) {
	var payload tadawulResponse
	if err := json.Unmarshal(body, &payload); err != nil {
		return nil, fmt.Errorf("snapshot decode: %w: %v", model.ErrMalformedResponse, err)
	}
	if payload.StockData == nil {
		return nil, fmt.Errorf("snapshot: %w: missing stockData", model.ErrMalformedResponse)
	}

	raw := *payload.StockData
	records := make([]model.TickerRecord, 0, len(raw))
	seen := make(map[int]struct{}, len(raw))
	for i := range raw {
		rec, err := raw[i].normalize()
		if err != nil {
			return nil, fmt.Errorf("snapshot record %d: %w: %v", i, model.ErrMalformedResponse, err)
		}
		if _, dup := seen[rec.Ticker]; dup {
			return nil, fmt.Errorf("snapshot: %w: duplicate ticker %d", model.ErrMalformedResponse, rec.Ticker)
		}
		seen[rec.Ticker] = struct{}{}
		records = append(records, rec)
	}

	sort.Slice(records, func(i, j int) bool { return records[i].Ticker < records[j].Ticker })
	return &model.SnapshotTable{Records: records}, nil
}

func (r *tadawulRecord) normalize() (model.TickerRecord, error) {
	var rec model.TickerRecord

	id, err := parseInt("pk_rf_company", r.PkRfCompany)
	if err != nil {
		return rec, err
	}
	rec.Ticker = int(id)
	if rec.EnglishName, err = parseText("companyShortNameEn", r.CompanyShortNameEn); err != nil {
		return rec, err
	}
	if rec.LocalName, err = parseText("companyShortNameAr", r.CompanyShortNameAr); err != nil {
		return rec, err
	}
	if rec.LastTradePrice, err = parseDecimal("lastTradePrice", r.LastTradePrice); err != nil {
		return rec, err
	}
	if rec.Change, err = parseDecimal("change", r.Change); err != nil {
		return rec, err
	}
	if rec.ChangePercent, err = parseDecimal("changePercent", r.ChangePercent); err != nil {
		return rec, err
	}
	if rec.NoOfTrades, err = parseInt("noOfTrades", r.NoOfTrades); err != nil {
		return rec, err
	}
	if rec.TurnOver, err = parseDecimal("turnOver", r.TurnOver); err != nil {
		return rec, err
	}
	if rec.VolumeTraded, err = parseInt("volumeTraded", r.VolumeTraded); err != nil {
		return rec, err
	}
	if rec.AveTradeSize, err = parseDecimal("aveTradeSize", r.AveTradeSize); err != nil {
		return rec, err
	}
	return rec, nil
}

func parseText(name string, f rawField) (string, error) {
	if !f.set {
		return "", fmt.Errorf("missing field %s", name)
	}
	return f.text, nil
}

func parseInt(name string, f rawField) (int64, error) {
	if !f.set {
		return 0, fmt.Errorf("missing field %s", name)
	}
	n, err := strconv.ParseInt(f.text, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("field %s: %q is not an integer", name, f.text)
	}
	return n, nil
}

func parseDecimal(name string, f rawField) (decimal.Decimal, error) {
	if !f.set {
		return decimal.Zero, fmt.Errorf("missing field %s", name)
	}
	d, err := decimal.NewFromString(f.text)
	if err != nil {
		return decimal.Zero, fmt.Errorf("field %s: %q is not a number", name, f.text)
	}
	return d, nil
}
