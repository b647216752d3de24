package book

import (
	"fmt"

	"github.com/tradecore/corebus/internal/ids"
)

// BookIntegrityError is raised when a mutation would leave the book in an
// impossible state (a crossed market). The book itself never panics; the
// caller decides policy (reject, clear the crossed side, or surface it).
type BookIntegrityError struct {
	Msg string
}

func (e *BookIntegrityError) Error() string { return "book integrity: " + e.Msg }

// InvalidBookOperation is raised for operations that are well-formed but
// inconsistent with current book state (unknown order id, duplicate add).
type InvalidBookOperation struct {
	Msg string
}

func (e *InvalidBookOperation) Error() string { return "invalid book operation: " + e.Msg }

var (
	ErrAlreadyExists = &InvalidBookOperation{Msg: "order already exists"}
	ErrNotFound      = &InvalidBookOperation{Msg: "order not found"}
)

func newBookCrossedError(bestBid, bestAsk ids.Price) *BookIntegrityError {
	return &BookIntegrityError{Msg: fmt.Sprintf("book crossed: bid=%.*f ask=%.*f",
		bestBid.Precision, bestBid.AsFloat(), bestAsk.Precision, bestAsk.AsFloat())}
}
