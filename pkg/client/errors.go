package client

import (
	"errors"
	"fmt"
)

type FetchErrorKind int

const (
	// KindNetwork covers transport failures, timeouts, breaker rejections
	// and non-2xx statuses.
	KindNetwork FetchErrorKind = iota
	// KindShape covers responses that parse as JSON but lack the expected
	// structure.
	KindShape
	KindUnexpected
)

func (k FetchErrorKind) String() string {
	switch k {
	case KindNetwork:
		return "network"
	case KindShape:
		return "shape"
	default:
		return "unexpected"
	}
}

// FetchError is the only error type a fetcher returns. No raw transport or
// decoding fault crosses the client boundary unmapped.
type FetchError struct {
	Kind     FetchErrorKind
	Endpoint string
	Err      error
}

func (e *FetchError) Error() string {
	return fmt.Sprintf("%s fetch %s error: %v", e.Endpoint, e.Kind, e.Err)
}

func (e *FetchError) Unwrap() error {
	return e.Err
}

// AsFetchError unwraps err into a *FetchError if it is one.
func AsFetchError(err error) (*FetchError, bool) {
	var fe *FetchError
	if errors.As(err, &fe) {
		return fe, true
	}
	return nil, false
}
