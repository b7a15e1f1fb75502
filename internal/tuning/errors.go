// SPDX-License-Identifier: MIT
package tuning

import "errors"

var (
	// ErrSourceUnavailable wraps any failure to open or start an audio source.
	ErrSourceUnavailable = errors.New("audio source unavailable")
	// ErrInvalidConfig wraps every configuration validation failure.
	ErrInvalidConfig = errors.New("invalid tuner configuration")
	// ErrInvalidProfile wraps every profile validation failure.
	ErrInvalidProfile = errors.New("invalid instrument profile")
	// ErrAlreadyRunning is returned by Start on a running engine.
	ErrAlreadyRunning = errors.New("engine already running")
	// ErrNotRunning is returned by Stop on a stopped engine.
	ErrNotRunning = errors.New("engine not running")
	// ErrUnknownProfile is returned when a profile name does not resolve.
	ErrUnknownProfile = errors.New("unknown instrument profile")
)
