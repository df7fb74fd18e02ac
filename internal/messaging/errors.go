package messaging

import "errors"

var (
	// ErrForeignMessage indicates a message addressed to another network id
	ErrForeignMessage = errors.New("message addressed to another record")

	// ErrMalformedMessage indicates a payload that is not a message envelope
	ErrMalformedMessage = errors.New("malformed message envelope")

	// ErrChannelClosed indicates a send on a closed channel
	ErrChannelClosed = errors.New("message channel is closed")
)
