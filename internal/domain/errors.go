package domain

import "errors"

// ErrSourceClosed is returned by an audio source that will produce no more commands.
var ErrSourceClosed = errors.New("audio source closed")
