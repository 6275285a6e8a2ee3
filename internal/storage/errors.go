package storage

import "errors"

var (
	ErrClientNotFound   = errors.New("client not found")
	ErrSettingsNotFound = errors.New("settings not found")
	ErrUnknownClient    = errors.New("invoice references an unknown client")
)
