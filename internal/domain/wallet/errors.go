package wallet

import "errors"

var (
	ErrNotFound   = errors.New("not found")
	ErrLoginTaken = errors.New("login already taken")
)
