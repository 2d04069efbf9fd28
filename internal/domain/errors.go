package domain

import "errors"

var (
	ErrCopierNotFound     = errors.New("copier not found")
	ErrSecretNotFound     = errors.New("secret not found")
	ErrNoSavedToken       = errors.New("no saved token")
	ErrEmptyToken         = errors.New("token is empty")
	ErrNoCopiers          = errors.New("no copier tokens")
	ErrNotConnected       = errors.New("socket not open")
	ErrDisconnected       = errors.New("connection closed")
	ErrFlowInProgress     = errors.New("another copy flow is in progress")
	ErrTraderTokenMissing = errors.New("trader token not configured")
	ErrTraderTypeMismatch = errors.New("expected demo trader but got real account")
)

// ServerError is an error reported by the trading API in a response envelope.
type ServerError struct {
	Op      Operation
	Code    string
	Message string
}

func (e *ServerError) Error() string {
	switch {
	case e.Message != "":
		return e.Message
	case e.Code != "":
		return e.Code
	}

	return failureText(e.Op)
}

func failureText(op Operation) string {
	switch op {
	case OpAuthorize:
		return "Authorization failed"
	case OpGetSettings:
		return "Failed to read trader settings"
	case OpSetSettings:
		return "Failed to update trader settings"
	case OpLogout:
		return "Logout failed"
	case OpCopyStart:
		return "Copy start error"
	case OpCopyStop:
		return "Copy stop error"
	}
	return "Request failed"
}
