package models

import (
	"errors"
	"fmt"
)

// ErrNoData marks a well-formed but empty upstream result. Callers treat it as
// "no data yet", not a failure.
var ErrNoData = errors.New("no data")

// ErrUnbracketed marks an event that falls outside the fetched price window.
// The matcher excludes the row instead of failing the batch.
var ErrUnbracketed = errors.New("event outside price window")

// ConfigError aborts a whole refresh pass. Raised when an upstream structure
// we depend on (the roster table layout) is no longer recognized.
type ConfigError struct {
	Source string
	Err    error
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("configuration error from %s: %v", e.Source, e.Err)
}

func (e *ConfigError) Unwrap() error { return e.Err }

// FetchError is a per-symbol fetch failure. It never aborts sibling tasks;
// the symbol is simply absent from the phase result and retried on a later pass.
type FetchError struct {
	Symbol string
	Op     string
	Err    error
}

func (e *FetchError) Error() string {
	return fmt.Sprintf("fetch %s for %s: %v", e.Op, e.Symbol, e.Err)
}

func (e *FetchError) Unwrap() error { return e.Err }
