package requestctx

import (
	"context"
	"strings"

	"github.com/google/uuid"
)

const (
	RequestIDHeader = "X-Request-ID"
	ClientIDHeader  = "X-Client-ID"
)

type ctxKey int

const (
	requestIDKey ctxKey = iota
	clientIDKey
)

// NewID returns a short correlation id (first 8 hex characters of a UUIDv4).
func NewID() string {
	return uuid.NewString()[:8]
}

// orNew trims the supplied id and falls back to a fresh one when empty.
func orNew(id string) string {
	if id = strings.TrimSpace(id); id != "" {
		return id
	}
	return NewID()
}

// WithIDs stores the request and client ids, generating any that are missing,
// and returns the ids actually used.
func WithIDs(ctx context.Context, requestID, clientID string) (context.Context, string, string) {
	requestID = orNew(requestID)
	clientID = orNew(clientID)
	ctx = context.WithValue(ctx, requestIDKey, requestID)
	ctx = context.WithValue(ctx, clientIDKey, clientID)
	return ctx, requestID, clientID
}

func RequestID(ctx context.Context) string {
	id, _ := ctx.Value(requestIDKey).(string)
	return id
}

func ClientID(ctx context.Context) string {
	id, _ := ctx.Value(clientIDKey).(string)
	return id
}

// Fields copies details and adds whatever correlation ids ctx carries.
func Fields(ctx context.Context, details map[string]interface{}) map[string]interface{} {
	out := make(map[string]interface{}, len(details)+2)
	for k, v := range details {
		out[k] = v
	}
	if id := RequestID(ctx); id != "" {
		out["request_id"] = id
	}
	if id := ClientID(ctx); id != "" {
		out["client_id"] = id
	}
	return out
}
