package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestMarket_OfficialResolution(t *testing.T) {
	cases := []struct {
		name   string
		market Market
		want   float64
		ok     bool
	}{
		{"cerrado en 0.995", Market{Closed: true, YesPrice: 0.995}, 1.0, true},
		{"cerrado en 0.005", Market{Closed: true, YesPrice: 0.005}, 0.0, true},
		{"cerrado sin converger", Market{Closed: true, YesPrice: 0.40}, 0, false},
		{"abierto en 0.995", Market{Closed: false, YesPrice: 0.995}, 0, false},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			res, ok := tc.market.OfficialResolution()
			assert.Equal(t, tc.ok, ok)
			if ok {
				assert.Equal(t, tc.want, res)
			}
		})
	}
}

func TestMarket_ResolutionYear(t *testing.T) {
	end := time.Date(2026, 1, 26, 12, 0, 0, 0, time.UTC)
	created := time.Date(2025, 12, 30, 0, 0, 0, 0, time.UTC)

	assert.Equal(t, 2026, Market{EndDate: end, CreatedAt: created}.ResolutionYear())
	assert.Equal(t, 2025, Market{CreatedAt: created}.ResolutionYear(), "sin EndDate cae al año de creación")
	assert.Equal(t, 0, Market{}.ResolutionYear())
}

func TestMarket_NoPrice(t *testing.T) {
	assert.InDelta(t, 0.95, Market{YesPrice: 0.05}.NoPrice(), 0.0001)
}
