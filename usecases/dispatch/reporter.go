package dispatch

import (
	"context"
	"fmt"
	"reflect"

	"chatrouter/clients"
	"chatrouter/core"
	"chatrouter/core/log"
)

const (
	FallbackErrorMessage = "Failed to handle message. Contact bot author(s)."
	maxCauseDepth        = 64
)

// ErrorReporter tells the originating channel that a handler failed.
type ErrorReporter struct {
	transport clients.Transport
}

func NewErrorReporter(transport clients.Transport) *ErrorReporter {
	return &ErrorReporter{transport: transport}
}

// Report never fails: problems while notifying the channel are only logged.
func (r *ErrorReporter) Report(ctx context.Context, channelID string, err error) {
	defer func() {
		if rec := recover(); rec != nil {
			log.Error("❌ Panic while reporting handler error", "channel", channelID, "panic", rec)
		}
	}()

	if _, sendErr := r.transport.SendChannelMessage(ctx, channelID, UserMessage(err)); sendErr != nil {
		log.Error("❌ Failed to report handler error to channel", "channel", channelID, "error", sendErr)
	}
}

// UserMessage picks the text shown to users for err: the reason of the first StatusCarrier
// found walking from the outermost error, or a generic message naming the innermost cause.
func UserMessage(err error) string {
	carrier, innermost := findStatusCarrier(err)
	if carrier != nil {
		if reason := carrier.StatusReason(); reason != "" {
			return reason
		}
		return carrier.Error()
	}
	if innermost == nil {
		return FallbackErrorMessage
	}
	return fmt.Sprintf("%s Cause: %v", FallbackErrorMessage, innermost)
}

func findStatusCarrier(err error) (core.StatusCarrier, error) {
	visited := make(map[error]struct{})
	innermost := err

	var walk func(e error, depth int, primary bool) core.StatusCarrier
	walk = func(e error, depth int, primary bool) core.StatusCarrier {
		if e == nil || depth > maxCauseDepth {
			return nil
		}
		// Only pointers can close a cycle, and they are always safe map keys
		if reflect.TypeOf(e).Kind() == reflect.Pointer {
			// A typed nil can neither explain itself nor be unwrapped
			if reflect.ValueOf(e).IsNil() {
				return nil
			}
			if _, seen := visited[e]; seen {
				return nil
			}
			visited[e] = struct{}{}
		}
		if primary {
			innermost = e
		}

		if carrier, ok := e.(core.StatusCarrier); ok {
			return carrier
		}

		switch u := e.(type) {
		case interface{ Unwrap() error }:
			return walk(u.Unwrap(), depth+1, primary)
		case interface{ Unwrap() []error }:
			for i, child := range u.Unwrap() {
				if carrier := walk(child, depth+1, primary && i == 0); carrier != nil {
					return carrier
				}
			}
		}
		return nil
	}

	return walk(err, 0, true), innermost
}
