package influxdb

import "errors"

// Sentinel errors, matched with errors.Is by callers.
var (
	ErrNotConnected     = errors.New("influxdb: not connected")
	ErrConnectionFailed = errors.New("influxdb: connection failed")

	// ErrDisabled is returned by Connect when config.yaml has influxdb
	// disabled; main treats it as "run without history".
	ErrDisabled = errors.New("influxdb: disabled in configuration")
)
