package domain

import "errors"

var (
	ErrNotFound     = errors.New("not found")
	ErrNoEmbedding  = errors.New("no embedding available")
	ErrRateLimited  = errors.New("rate limited")
	ErrLockHeld     = errors.New("lock held by another instance")
	ErrUnauthorized = errors.New("unauthorized")
	ErrWSDisconnect = errors.New("websocket disconnected")
)
