package core

import "errors"

// ErrUnknownCommand is returned by Relay.Handle for a command kind it does not serve.
var ErrUnknownCommand = errors.New("unknown command")
