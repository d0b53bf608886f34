// Package repository defines the persistence gateways for the aggregate
// state and the errors they share.  Gateways only guarantee durability of a
// completed Save; cross-call atomicity is provided by the service layer.
package repository

import "errors"

// ErrCorruptState is returned by Load when the stored snapshot cannot be
// decoded.  It is never returned for a missing store: a missing store
// yields the seed state.
var ErrCorruptState = errors.New("corrupt state")

// ErrUnknownDriver is returned by Open when the configured driver name is
// not one of the supported backends.
var ErrUnknownDriver = errors.New("unknown state driver")
