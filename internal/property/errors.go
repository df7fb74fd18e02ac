package property

import "errors"

var (
	// ErrMissingSendTime indicates a smoothed remote update without the sender's send time
	ErrMissingSendTime = errors.New("remote update has no send time")

	// ErrSmoothingUnsupported indicates a kind without an interpolator
	ErrSmoothingUnsupported = errors.New("smoothing is not supported for this kind")

	// ErrDuplicateKey indicates a second property with the same key in a set
	ErrDuplicateKey = errors.New("property key already registered")
)
