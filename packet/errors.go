package packet

import "errors"

var (
	ErrCapacity           = errors.New("packet: store cannot grow")
	ErrInvalidHeader      = errors.New("packet: invalid header")
	ErrTruncatedDirectory = errors.New("packet: truncated directory")
	ErrKeyNotFound        = errors.New("packet: key not found")
	ErrTypeMismatch       = errors.New("packet: field length does not match type")
	ErrImmutable          = errors.New("packet: packet is not writable")
	ErrNotAssembling      = errors.New("packet: packet is not a receiver")
)
