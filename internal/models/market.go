package models

import "time"

// MarketStats are the token statistics shown on the home screen
type MarketStats struct {
	Price             float64   `json:"price"`
	PriceChange24h    float64   `json:"priceChange24h"`
	MarketCap         float64   `json:"marketCap"`
	TotalSupply       float64   `json:"totalSupply"`
	CirculatingSupply float64   `json:"circulatingSupply"`
	BurnedSupply      float64   `json:"burnedSupply"`
	Volume24h         float64   `json:"volume24h"`
	Live              bool      `json:"live"`
	UpdatedAt         time.Time `json:"updatedAt"`
}

// DefaultMarketStats returns the static statistics used whenever the live fetch
// fails or a field is absent.
func DefaultMarketStats() MarketStats {
	return MarketStats{
		Price:             24.56,
		PriceChange24h:    5.23,
		MarketCap:         2_340_000_000,
		TotalSupply:       100_000_000,
		CirculatingSupply: 95_000_000,
		BurnedSupply:      6_200_000,
		Volume24h:         156_000_000,
	}
}

// DApp is a catalogue entry on the home screen
type DApp struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	URL         string `json:"url"`
	Icon        string `json:"icon"`
	Category    string `json:"category"`
}
