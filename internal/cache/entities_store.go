package cache

import "github.com/tradecore/corebus/internal/ids"

// AddPosition inserts or replaces a position.
func (c *Cache) AddPosition(p Position) {
	c.mu.Lock()
	defer c.mu.Unlock()
	cp := p
	c.positions[p.PositionId] = &cp
}

// Position returns the position stored under id, if present.
func (c *Cache) Position(id ids.PositionId) (Position, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	p, ok := c.positions[id]
	if !ok {
		return Position{}, false
	}
	return *p, true
}

// PositionQuery mirrors OrderQuery for the positions(...) family (§4.2).
type PositionQuery struct {
	Venue        *ids.Venue
	InstrumentId *ids.InstrumentId
	StrategyId   *ids.StrategyId
}

// Positions returns every position matching q. Positions are far fewer than
// orders in practice, so a linear scan of the position map is simpler than
// building bitmap indexes for a collection this small. The order of the
// result follows map iteration and is not defined.
func (c *Cache) Positions(q PositionQuery) []Position {
	c.mu.RLock()
	defer c.mu.RUnlock()

	out := make([]Position, 0, len(c.positions))
	for _, p := range c.positions {
		if q.Venue != nil && p.Venue != *q.Venue {
			continue
		}
		if q.InstrumentId != nil && p.InstrumentId != *q.InstrumentId {
			continue
		}
		if q.StrategyId != nil && p.StrategyId != *q.StrategyId {
			continue
		}
		out = append(out, *p)
	}
	return out
}

// AddInstrument inserts or replaces an instrument definition.
func (c *Cache) AddInstrument(i Instrument) {
	c.mu.Lock()
	defer c.mu.Unlock()
	cp := i
	c.instruments[i.InstrumentId] = &cp
}

// Instrument returns the instrument stored under id, if present.
func (c *Cache) Instrument(id ids.InstrumentId) (Instrument, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	i, ok := c.instruments[id]
	if !ok {
		return Instrument{}, false
	}
	return *i, true
}

// Instruments returns every instrument registered for venue, or all
// instruments if venue is nil.
func (c *Cache) Instruments(venue *ids.Venue) []Instrument {
	c.mu.RLock()
	defer c.mu.RUnlock()

	out := make([]Instrument, 0, len(c.instruments))
	for _, i := range c.instruments {
		if venue != nil && i.InstrumentId.Venue != *venue {
			continue
		}
		out = append(out, *i)
	}
	return out
}

// AddAccount inserts or replaces an account.
func (c *Cache) AddAccount(a AccountAny) {
	c.mu.Lock()
	defer c.mu.Unlock()
	cp := a
	c.accounts[a.AccountId] = &cp
}

// Account returns the account stored under id, if present.
func (c *Cache) Account(id ids.AccountId) (AccountAny, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	a, ok := c.accounts[id]
	if !ok {
		return AccountAny{}, false
	}
	return *a, true
}

// Accounts returns every account registered for venue, or all accounts if
// venue is nil.
func (c *Cache) Accounts(venue *ids.Venue) []AccountAny {
	c.mu.RLock()
	defer c.mu.RUnlock()

	out := make([]AccountAny, 0, len(c.accounts))
	for _, a := range c.accounts {
		if venue != nil && a.Venue != *venue {
			continue
		}
		out = append(out, *a)
	}
	return out
}

// AddSignal appends a named signal observation.
func (c *Cache) AddSignal(s Signal) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.signals[s.Name] = append(c.signals[s.Name], &s)
}

// Signals returns every observation recorded under name, oldest first.
func (c *Cache) Signals(name string) []Signal {
	c.mu.RLock()
	defer c.mu.RUnlock()

	recs := c.signals[name]
	out := make([]Signal, len(recs))
	for i, s := range recs {
		out[i] = *s
	}
	return out
}

