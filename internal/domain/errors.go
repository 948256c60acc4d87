package domain

import "errors"

var (
	ErrNotFound       = errors.New("not found")
	ErrAlreadyExists  = errors.New("already exists")
	ErrMarketClosed   = errors.New("market is closed for betting")
	ErrMarketResolved = errors.New("market is already resolved")
	ErrInvalidSide    = errors.New("invalid bet side")
	ErrBetOutOfBounds = errors.New("bet amount outside market bounds")
	ErrSnapshotSchema = errors.New("unsupported snapshot schema version")
	ErrPaymentFailed  = errors.New("treasury payment failed")
	ErrWrongNetwork   = errors.New("connected to wrong network")
	ErrInvalidAddress = errors.New("invalid wallet address")
)
