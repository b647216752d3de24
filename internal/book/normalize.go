package book

// normalizeOrderId implements the explicit (BookType, Flags) ->
// id-normalisation-rule state machine called out in §9 as a replacement
// for ad-hoc flag branches. It is applied once, before an order ever
// reaches a Ladder, and is grounded directly on the original order book's
// pre_process_order: L1/L2 books fold every order on a side/price onto one
// synthetic id so later Adds at the same price collapse into the same
// level; L3 books pass the id through unless a delta is explicitly flagged
// as top-of-book (F_TOB) or market-by-price (F_MBP) data riding on an L3 feed.
func normalizeOrderId(bookType BookType, order *Order, flags RecordFlags) {
	switch bookType {
	case L1_MBP:
		order.OrderId = uint64(order.Side)
	case L2_MBP:
		order.OrderId = uint64(order.Price.Raw)
	case L3_MBO:
		switch {
		case flags.Has(F_TOB):
			order.OrderId = uint64(order.Side)
		case flags.Has(F_MBP):
			order.OrderId = uint64(order.Price.Raw)
		}
		// default: order.OrderId passes through unchanged.
	}
}
