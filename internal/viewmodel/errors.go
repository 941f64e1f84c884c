package viewmodel

import (
	"context"
	"errors"
	"fmt"

	"nftmarket/internal/services"
)

var (
	ErrNoMethodSelected = errors.New("no payment method selected")
	ErrPaymentRejected  = errors.New("payment rejected by server")
	ErrInvalidSelection = errors.New("invalid payment method index")
	ErrItemNotFound     = errors.New("item not found")
	ErrPartialLoad      = errors.New("some NFTs failed to load")
)

const (
	MessageNetwork = "Network error. Check your connection and try again."
	MessageUnknown = "Something went wrong."
	ActionRepeat   = "Repeat"
	ActionClose    = "Close"

	messageNoMethod      = "Choose a payment method"
	messageRejected      = "The payment was declined"
	messageHTTPStatus    = "Server responded with status %d"
	messageParse         = "Could not read the server response"
	messageTransport     = "Network error: %v"
	messageNoTransaction = "Payment could not be sent"
)

// ErrorModel is what a screen shows for a failure. Retry, when set, re-runs
// the failed operation.
type ErrorModel struct {
	Message    string
	ActionText string
	Err        error
	Retry      func(ctx context.Context) error
}

// networkErrorModel classifies err as network or unknown.
func networkErrorModel(err error, retry func(ctx context.Context) error) ErrorModel {
	msg := MessageUnknown
	if services.IsNetworkError(err) {
		msg = MessageNetwork
	}
	return ErrorModel{Message: msg, ActionText: ActionRepeat, Err: err, Retry: retry}
}

// paymentErrorModel gives each network failure class its own message.
func paymentErrorModel(err error, retry func(ctx context.Context) error) ErrorModel {
	var (
		statusErr    *services.HTTPStatusError
		parseErr     *services.ParseError
		transportErr *services.TransportError
		msg          string
	)
	switch {
	case errors.Is(err, ErrNoMethodSelected):
		return ErrorModel{Message: messageNoMethod, ActionText: ActionClose, Err: err}
	case errors.Is(err, ErrPaymentRejected):
		return ErrorModel{Message: messageRejected, ActionText: ActionClose, Err: err}
	case errors.As(err, &statusErr):
		msg = fmt.Sprintf(messageHTTPStatus, statusErr.StatusCode)
	case errors.As(err, &parseErr):
		msg = messageParse
	case errors.As(err, &transportErr):
		msg = fmt.Sprintf(messageTransport, transportErr.Err)
	case err != nil:
		msg = err.Error()
	default:
		msg = messageNoTransaction
	}
	return ErrorModel{Message: msg, ActionText: ActionRepeat, Err: err, Retry: retry}
}
