// Package store holds the errors shared by the storage implementations in its subpackages.
package store

import "errors"

var (
	ErrEmailTaken   = errors.New("store: email already registered")
	ErrOwnerMissing = errors.New("store: owner does not exist")
	ErrDuplicateID  = errors.New("store: duplicate id")
)
