package fulfillment

import "errors"

var (
	ErrUnknownProduct = errors.New("unknown product")
	ErrNoArtifacts    = errors.New("no artifact files available")
)
