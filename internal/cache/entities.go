package cache

import "github.com/tradecore/corebus/internal/ids"

// Position is the cache's position entity (§3 "Cache entities").
type Position struct {
	PositionId   ids.PositionId
	InstrumentId ids.InstrumentId
	Venue        ids.Venue
	StrategyId   ids.StrategyId
	AccountId    ids.AccountId
	Side         int8 // +1 long, -1 short, 0 flat
	Quantity     ids.Quantity
	AvgPxOpen    ids.Price
	TsOpened     int64
	TsClosed     int64
}

// IsOpen reports whether the position still carries exposure.
func (p *Position) IsOpen() bool { return !p.Quantity.IsZero() }

// Instrument is the cache's instrument entity: the subset of venue metadata
// the core needs to size and price orders. Venue-specific fields (contract
// specs, margining) are an adapter concern, out of scope per §1.
type Instrument struct {
	InstrumentId   ids.InstrumentId
	PricePrecision uint8
	SizePrecision  uint8
	MinQuantity    ids.Quantity
	MaxQuantity    ids.Quantity
	QuoteCurrency  ids.Currency
	BaseCurrency   ids.Currency
}

// AccountAny is the cache's account entity.
type AccountAny struct {
	AccountId ids.AccountId
	Venue     ids.Venue
	Balances  map[string]ids.Money // currency code -> balance
}

// Signal is an arbitrary named strategy/indicator value the cache retains
// for later retrieval, e.g. a volatility estimate keyed by instrument.
type Signal struct {
	Name         string
	InstrumentId ids.InstrumentId
	Value        float64
	TsEvent      int64
}
