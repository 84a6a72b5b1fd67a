package utils

import "time"

// ContextKey is the type for request-scoped context values.
type ContextKey string

// Request-scoped context keys set by handlers and read by flows for audit tagging.
const (
	RequestIDKey  ContextKey = "request_id"
	UserAgentKey  ContextKey = "user_agent"
	IPAddressKey  ContextKey = "ip_address"
	EndpointKey   ContextKey = "endpoint"
	TimeoutKey    ContextKey = "timeout"
	CancelFuncKey ContextKey = "cancel_func"
)

// Topic lifecycle constants
const (
	// TopicDefaultTTL is how long a freshly activated topic stays rankable
	// before the archival policy picks it up.
	TopicDefaultTTL = 14 * 24 * time.Hour

	// TopicRetentionWindow is how long archived/expired topics are kept before
	// the retention sweep soft-deletes them.
	TopicRetentionWindow = 2 * 365 * 24 * time.Hour
)

// CORSMaxAge is how long browsers may cache preflight responses, in seconds.
const CORSMaxAge = 3600

// Listing constants
const (
	DefaultPageLimit = 50
	MaxPageLimit     = 100

	// ShortlistSize is the number of top-ranked topics surfaced per segment.
	ShortlistSize = 10
)
