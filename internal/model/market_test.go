package model

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestHistorySeries_Last(t *testing.T) {
	var empty HistorySeries
	_, ok := empty.Last()
	assert.False(t, ok)
	assert.Equal(t, 0, empty.Len())

	day := time.Date(2024, 3, 3, 0, 0, 0, 0, time.UTC)
	s := HistorySeries{Points: []HistoryPoint{{Date: day, Close: 1}, {Date: day.AddDate(0, 0, 1), Close: 2}}}
	p, ok := s.Last()
	assert.True(t, ok)
	assert.Equal(t, 2.0, p.Close)
}
