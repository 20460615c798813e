package product

import "errors"

var (
	ErrNotAuthenticated = errors.New("sign in to view your products")
	ErrEmptyPatch       = errors.New("nothing to update")
)
