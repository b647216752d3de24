package book

import "gonum.org/v1/gonum/stat"

// VWAP computes the volume-weighted average price across the best n levels
// of side. Returns (0, false) if the side has no resting volume in range.
//
// Not part of the distilled spec; restored from the original order book's
// analysis helpers (orderbook/analysis.rs), which the distillation dropped
// but no Non-goal excludes.
func (b *OrderBook) VWAP(side Side, n int) (float64, bool) {
	levels := b.ladderFor(side).Depth(n)
	if len(levels) == 0 {
		return 0, false
	}
	prices := make([]float64, len(levels))
	weights := make([]float64, len(levels))
	var totalWeight float64
	for i, lv := range levels {
		prices[i] = lv.Price().AsFloat()
		weights[i] = lv.TotalSize().AsFloat()
		totalWeight += weights[i]
	}
	if totalWeight == 0 {
		return 0, false
	}
	return stat.Mean(prices, weights), true
}

// ImbalanceRatio returns (bid_volume - ask_volume) / (bid_volume + ask_volume)
// across the best n levels of each side, in [-1, 1]. Returns (0, false) if
// both sides are empty in range.
func (b *OrderBook) ImbalanceRatio(n int) (float64, bool) {
	bidVol := sumVolume(b.Bids.Depth(n))
	askVol := sumVolume(b.Asks.Depth(n))
	total := bidVol + askVol
	if total == 0 {
		return 0, false
	}
	return (bidVol - askVol) / total, true
}

func sumVolume(levels []*Level) float64 {
	var total float64
	for _, lv := range levels {
		total += lv.TotalSize().AsFloat()
	}
	return total
}
