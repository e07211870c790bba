package service

import "errors"

var (
	errStorageDisabled   = errors.New("image storage not configured")
	errUnexpectedPayload = errors.New("unexpected event payload")
)
