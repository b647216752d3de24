package adapter

import (
	"github.com/tradecore/corebus/internal/book"
	"github.com/tradecore/corebus/internal/ids"
)

// Market data inbound messages (§6 "Canonical inbound/outbound message set").

type QuoteTick struct {
	InstrumentId ids.InstrumentId
	BidPrice     ids.Price
	AskPrice     ids.Price
	BidSize      ids.Quantity
	AskSize      ids.Quantity
	TsEvent      int64
	TsInit       int64
}

func (QuoteTick) isInbound() {}

type TradeTick struct {
	InstrumentId ids.InstrumentId
	Price        ids.Price
	Size         ids.Quantity
	Side         book.Side
	TradeId      string
	TsEvent      int64
	TsInit       int64
}

func (TradeTick) isInbound() {}

type Bar struct {
	InstrumentId ids.InstrumentId
	Open         ids.Price
	High         ids.Price
	Low          ids.Price
	Close        ids.Price
	Volume       ids.Quantity
	TsEvent      int64
	TsInit       int64
}

func (Bar) isInbound() {}

type OrderBookDelta struct {
	InstrumentId ids.InstrumentId
	Delta        book.Delta
}

func (OrderBookDelta) isInbound() {}

// OrderBookDepth10 is a fixed-depth L2 snapshot, the common "top 10 levels"
// venue feed shape.
type OrderBookDepth10 struct {
	InstrumentId ids.InstrumentId
	BidPrices    [10]ids.Price
	BidSizes     [10]ids.Quantity
	AskPrices    [10]ids.Price
	AskSizes     [10]ids.Quantity
	TsEvent      int64
	TsInit       int64
}

func (OrderBookDepth10) isInbound() {}

type MarkPriceUpdate struct {
	InstrumentId ids.InstrumentId
	Value        ids.Price
	TsEvent      int64
	TsInit       int64
}

func (MarkPriceUpdate) isInbound() {}

type InstrumentUpdate struct {
	InstrumentId   ids.InstrumentId
	PricePrecision uint8
	SizePrecision  uint8
	TsEvent        int64
	TsInit         int64
}

func (InstrumentUpdate) isInbound() {}

// Execution inbound messages.

type OrderSubmitted struct {
	ClientOrderId ids.ClientOrderId
	TsEvent       int64
}

func (OrderSubmitted) isInbound() {}

type OrderAccepted struct {
	ClientOrderId ids.ClientOrderId
	VenueOrderId  ids.VenueOrderId
	TsEvent       int64
}

func (OrderAccepted) isInbound() {}

type OrderFilled struct {
	ClientOrderId ids.ClientOrderId
	VenueOrderId  ids.VenueOrderId
	LastPrice     ids.Price
	LastQty       ids.Quantity
	TsEvent       int64
}

func (OrderFilled) isInbound() {}

type OrderCanceled struct {
	ClientOrderId ids.ClientOrderId
	VenueOrderId  ids.VenueOrderId
	TsEvent       int64
}

func (OrderCanceled) isInbound() {}

type OrderRejected struct {
	ClientOrderId ids.ClientOrderId
	Reason        string
	TsEvent       int64
}

func (OrderRejected) isInbound() {}

type OrderExpired struct {
	ClientOrderId ids.ClientOrderId
	TsEvent       int64
}

func (OrderExpired) isInbound() {}

type OrderDenied struct {
	ClientOrderId ids.ClientOrderId
	Reason        string
	TsEvent       int64
}

func (OrderDenied) isInbound() {}

// TransportError is emitted onto the inbound stream when an I/O worker hits
// a timeout, disconnect, or decode failure it cannot recover from itself
// (§5 "Cancellation and timeouts").
type TransportError struct {
	ComponentId ComponentId
	Message     string
	TsEvent     int64
}

func (TransportError) isInbound() {}

// Resubscribe is republished against every previously active subscription
// after a successful reconnect (§9, S6).
type Resubscribe struct {
	InstrumentId ids.InstrumentId
}

func (Resubscribe) isInbound() {}

// Outbound messages.

type SubscribeInstruments struct {
	InstrumentIds []ids.InstrumentId
}

func (SubscribeInstruments) isOutbound() {}

type SubmitOrder struct {
	ClientOrderId ids.ClientOrderId
	InstrumentId  ids.InstrumentId
	Side          book.Side
	Price         ids.Price
	Quantity      ids.Quantity
}

func (SubmitOrder) isOutbound() {}

type CancelOrder struct {
	ClientOrderId ids.ClientOrderId
	VenueOrderId  ids.VenueOrderId
	InstrumentId  ids.InstrumentId
}

func (CancelOrder) isOutbound() {}

type ModifyOrder struct {
	ClientOrderId ids.ClientOrderId
	VenueOrderId  ids.VenueOrderId
	InstrumentId  ids.InstrumentId
	NewPrice      ids.Price
	NewQuantity   ids.Quantity
}

func (ModifyOrder) isOutbound() {}

type RequestCustomData struct {
	Endpoint string
	Params   map[string]string
}

func (RequestCustomData) isOutbound() {}
