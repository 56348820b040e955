package config

import "time"

// Default configuration values (§6).
const (
	DefaultRoot       = "./data"
	DefaultBind       = ":69"
	DefaultTimeout    = 3 * time.Second
	DefaultMaxRetries = 5
	DefaultLogLevel   = "info"
	DefaultLogFormat  = "text"
)
