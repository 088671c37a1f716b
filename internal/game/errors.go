package game

import "errors"

// Error kinds. Match with errors.Is; the *Error message is client-visible.
var (
	ErrValidation        = errors.New("validation failed")
	ErrNotFound          = errors.New("not found")
	ErrConflict          = errors.New("state conflict")
	ErrInsufficientCoins = errors.New("insufficient coins")
)

// Error is a domain error with a client-facing message.
type Error struct {
	Kind error
	Msg  string
}

func (e *Error) Error() string { return e.Msg }

func (e *Error) Unwrap() error { return e.Kind }

func Validation(msg string) error   { return &Error{Kind: ErrValidation, Msg: msg} }
func NotFound(msg string) error     { return &Error{Kind: ErrNotFound, Msg: msg} }
func Conflict(msg string) error     { return &Error{Kind: ErrConflict, Msg: msg} }
func Insufficient(msg string) error { return &Error{Kind: ErrInsufficientCoins, Msg: msg} }
