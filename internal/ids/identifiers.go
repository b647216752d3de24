package ids

// The identifier zoo wraps interned Symbols with a distinct Go type per
// role, so a ClientOrderId and a VenueOrderId built from the same string
// never compare equal to each other — the typing error the spec's
// uniqueness invariant rules out is caught at compile time, not at runtime.

type TraderId struct{ Symbol }
type StrategyId struct{ Symbol }
type ClientId struct{ Symbol }
type Venue struct{ Symbol }
type ClientOrderId struct{ Symbol }
type VenueOrderId struct{ Symbol }
type PositionId struct{ Symbol }
type AccountId struct{ Symbol }
type ComponentId struct{ Symbol }

// InstrumentSymbol is an instrument's local symbol on its venue, e.g. "BTCUSDT".
type InstrumentSymbol struct{ Symbol }

func NewTraderId(s string) TraderId             { return TraderId{Intern(s)} }
func NewStrategyId(s string) StrategyId         { return StrategyId{Intern(s)} }
func NewClientId(s string) ClientId             { return ClientId{Intern(s)} }
func NewVenue(s string) Venue                   { return Venue{Intern(s)} }
func NewClientOrderId(s string) ClientOrderId   { return ClientOrderId{Intern(s)} }
func NewVenueOrderId(s string) VenueOrderId     { return VenueOrderId{Intern(s)} }
func NewPositionId(s string) PositionId         { return PositionId{Intern(s)} }
func NewAccountId(s string) AccountId           { return AccountId{Intern(s)} }
func NewComponentId(s string) ComponentId       { return ComponentId{Intern(s)} }
func NewInstrumentSymbol(s string) InstrumentSymbol { return InstrumentSymbol{Intern(s)} }

// InstrumentId is the composite (Symbol, Venue) identifier for a tradable
// instrument, e.g. XBTUSD.BITMEX.
type InstrumentId struct {
	Symbol InstrumentSymbol
	Venue  Venue
}

func NewInstrumentId(symbol, venue string) InstrumentId {
	return InstrumentId{Symbol: NewInstrumentSymbol(symbol), Venue: NewVenue(venue)}
}

func (i InstrumentId) String() string {
	return i.Symbol.String() + "." + i.Venue.String()
}

func (i InstrumentId) IsZero() bool {
	return i.Symbol.IsZero() && i.Venue.IsZero()
}
