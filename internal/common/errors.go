package common

import "errors"

var (
	// Selection errors.
	ErrNoCompanySelected = errors.New("no company selected")
	ErrNoStationSelected = errors.New("no station selected")

	// Credential errors.
	ErrInvalidToken = errors.New("invalid token")
	ErrNoToken      = errors.New("no token")
)
