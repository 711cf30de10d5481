package relays

import (
	"fmt"
	"log/slog"

	relayDTO "github.com/joy-dx/relay/dto"
)

const (
	StoreChannel relayDTO.EventChannel = "swiftkit.store"

	RefStoreLog      relayDTO.EventRef = "store.log"
	RefStoreRequest  relayDTO.EventRef = "store.request"
	RefStoreAuth     relayDTO.EventRef = "store.auth"
	RefStoreTransfer relayDTO.EventRef = "store.transfer"
)

// RlyStoreLog is a plain service-level message.
type RlyStoreLog struct {
	Msg string
}

func (e RlyStoreLog) RelayChannel() relayDTO.EventChannel { return StoreChannel }
func (e RlyStoreLog) RelayType() relayDTO.EventRef        { return RefStoreLog }
func (e RlyStoreLog) Message() string                     { return e.Msg }
func (e RlyStoreLog) ToSlog() []slog.Attr {
	return []slog.Attr{slog.String("msg", e.Msg)}
}

// RlyStoreRequest traces one transport attempt.
type RlyStoreRequest struct {
	Method  string
	Path    string
	Status  int
	Attempt int
	Msg     string
}

func (e RlyStoreRequest) RelayChannel() relayDTO.EventChannel { return StoreChannel }
func (e RlyStoreRequest) RelayType() relayDTO.EventRef        { return RefStoreRequest }
func (e RlyStoreRequest) Message() string {
	if e.Msg != "" {
		return fmt.Sprintf("%s %s: %s", e.Method, e.Path, e.Msg)
	}
	return fmt.Sprintf("%s %s: %d (attempt %d)", e.Method, e.Path, e.Status, e.Attempt)
}
func (e RlyStoreRequest) ToSlog() []slog.Attr {
	return []slog.Attr{
		slog.String("method", e.Method),
		slog.String("path", e.Path),
		slog.Int("status", e.Status),
		slog.Int("attempt", e.Attempt),
		slog.String("msg", e.Msg),
	}
}

// RlyStoreAuth traces an auth strategy outcome.
type RlyStoreAuth struct {
	Strategy string
	Status   string
	Msg      string
}

func (e RlyStoreAuth) RelayChannel() relayDTO.EventChannel { return StoreChannel }
func (e RlyStoreAuth) RelayType() relayDTO.EventRef        { return RefStoreAuth }
func (e RlyStoreAuth) Message() string {
	return fmt.Sprintf("auth %s: %s %s", e.Strategy, e.Status, e.Msg)
}
func (e RlyStoreAuth) ToSlog() []slog.Attr {
	return []slog.Attr{
		slog.String("strategy", e.Strategy),
		slog.String("status", e.Status),
		slog.String("msg", e.Msg),
	}
}

// RlyStoreTransfer traces upload/download progress.
type RlyStoreTransfer struct {
	Source      string
	Destination string
	Status      string
	Percentage  float64
	Msg         string
}

func (e RlyStoreTransfer) RelayChannel() relayDTO.EventChannel { return StoreChannel }
func (e RlyStoreTransfer) RelayType() relayDTO.EventRef        { return RefStoreTransfer }
func (e RlyStoreTransfer) Message() string {
	if e.Msg != "" {
		return e.Msg
	}
	return fmt.Sprintf("%s -> %s: %s %.1f%%", e.Source, e.Destination, e.Status, e.Percentage)
}
func (e RlyStoreTransfer) ToSlog() []slog.Attr {
	return []slog.Attr{
		slog.String("source", e.Source),
		slog.String("destination", e.Destination),
		slog.String("status", e.Status),
		slog.Float64("percentage", e.Percentage),
		slog.String("msg", e.Msg),
	}
}
