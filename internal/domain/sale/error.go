package sale

import "errors"

var (
	ErrNotFound         = errors.New("sale not found")
	ErrDuplicateInvoice = errors.New("invoice number already recorded")
	ErrEmptySale        = errors.New("sale has no items")
)
