package dto

import (
	"errors"
	"fmt"
	"strings"
)

var ErrNoAuthURL = errors.New("no auth URL has been provided")

// AuthenticationFailure means every configured auth strategy was tried and
// none returned a 2xx. Attempts holds one "status reason" summary per
// strategy, in the order tried.
type AuthenticationFailure struct {
	Attempts []string
}

func (e *AuthenticationFailure) Error() string {
	return fmt.Sprintf("auth failure [%s]", strings.Join(e.Attempts, ", "))
}

// TransportExhausted means the transport ran out of attempts; it carries the
// last status seen so callers can report something actionable.
type TransportExhausted struct {
	Method string
	Path   string
	Status int
	Reason string
}

func (e *TransportExhausted) Error() string {
	return fmt.Sprintf("%s %s failed: %d %s", e.Method, e.Path, e.Status, e.Reason)
}

// UnresettableBody means a retry was needed after part of a non-rewindable
// body had already been sent.
type UnresettableBody struct {
	Sent int64
}

func (e *UnresettableBody) Error() string {
	return fmt.Sprintf(
		"failure and no ability to reset contents for reupload (%d bytes sent)", e.Sent)
}

// SegmentFailure wraps the first error captured during a segmented upload.
type SegmentFailure struct {
	Path string
	Err  error
}

func (e *SegmentFailure) Error() string {
	return fmt.Sprintf("segment %s: %v", e.Path, e.Err)
}

func (e *SegmentFailure) Unwrap() error {
	return e.Err
}

// ManifestInconsistency means the confirmed segment sizes did not add up
// to the source size, so no manifest was written.
type ManifestInconsistency struct {
	Expected  int64
	Confirmed int64
}

func (e *ManifestInconsistency) Error() string {
	return fmt.Sprintf(
		"manifest inconsistency: expected %d bytes, confirmed %d",
		e.Expected, e.Confirmed)
}
