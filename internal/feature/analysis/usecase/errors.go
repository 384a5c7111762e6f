package usecase

import "errors"

var (
	// ErrInvalidSymbol は銘柄コードが空または不正な形式の場合に返されます。
	ErrInvalidSymbol = errors.New("invalid symbol")
)
