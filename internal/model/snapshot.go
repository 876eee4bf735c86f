package model

import (
	"fmt"
	"sort"
	"time"

	"github.com/shopspring/decimal"
)

// TickerRecord is one row of the market snapshot.
type TickerRecord struct {
	Ticker         int             `json:"ticker"`
	EnglishName    string          `json:"english_name"`
	LocalName      string          `json:"local_name"`
	LastTradePrice decimal.Decimal `json:"last_trade_price"`
	Change         decimal.Decimal `json:"change"`
	ChangePercent  decimal.Decimal `json:"change_percent"`
	NoOfTrades     int64           `json:"no_of_trades"`
	TurnOver       decimal.Decimal `json:"turnover"`
	VolumeTraded   int64           `json:"volume_traded"`
	AveTradeSize   decimal.Decimal `json:"ave_trade_size"`
}

// SnapshotTable is the full-market snapshot, sorted ascending by ticker.
type SnapshotTable struct {
	Records   []TickerRecord
	FetchedAt time.Time
}

// SelectOption is one entry of the ticker selection list. Value carries the
// identifier so callers never parse it back out of Label.
type SelectOption struct {
	Value int    `json:"value"`
	Label string `json:"label"`
}

// Lookup finds the record for ticker using binary search over the sorted table.
func (t *SnapshotTable) Lookup(ticker int) (TickerRecord, bool) {
	i := sort.Search(len(t.Records), func(i int) bool { return t.Records[i].Ticker >= ticker })
	if i < len(t.Records) && t.Records[i].Ticker == ticker {
		return t.Records[i], true
	}
	return TickerRecord{}, false
}

// Options builds the selection list in table order.
func (t *SnapshotTable) Options() []SelectOption {
	opts := make([]SelectOption, len(t.Records))
	for i, r := range t.Records {
		opts[i] = SelectOption{
			Value: r.Ticker,
			Label: fmt.Sprintf("%s (%d)", r.LocalName, r.Ticker),
		}
	}
	return opts
}
