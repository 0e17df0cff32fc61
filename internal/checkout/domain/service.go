package domain

import (
	"context"
	"errors"
)

type Service interface {
	Quote(ctx context.Context, req QuoteRequest) (*Quote, error)
}

var (
	ErrInvalidWorkspace = errors.New("invalid_workspace")
	ErrInvalidQuantity  = errors.New("invalid_quantity")
	ErrNegativeAmount   = errors.New("negative_amount")
	ErrEmptyOrder       = errors.New("empty_order")
)
