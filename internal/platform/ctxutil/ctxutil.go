package ctxutil

import (
	"context"

	"github.com/google/uuid"
)

type traceDataKey struct{}
type requestDataKey struct{}

type TraceData struct {
	TraceID   string
	RequestID string
}

// Identity is the verified caller as reported by the identity provider.
type Identity struct {
	Subject    string
	Email      string
	GivenName  string
	FamilyName string
	Picture    string
}

// RequestData describes who is calling. Identity is nil for anonymous callers;
// ClientKey is always set and is what anonymous usage is metered by.
type RequestData struct {
	Identity  *Identity
	UserID    uuid.UUID
	ClientKey string
	IsAdmin   bool
}

// Default returns context.Background() when ctx is nil.
func Default(ctx context.Context) context.Context {
	if ctx == nil {
		return context.Background()
	}
	return ctx
}

func WithTraceData(ctx context.Context, td *TraceData) context.Context {
	return context.WithValue(Default(ctx), traceDataKey{}, td)
}

func GetTraceData(ctx context.Context) *TraceData {
	if td, ok := Default(ctx).Value(traceDataKey{}).(*TraceData); ok {
		return td
	}
	return nil
}

func WithRequestData(ctx context.Context, rd *RequestData) context.Context {
	return context.WithValue(Default(ctx), requestDataKey{}, rd)
}

func GetRequestData(ctx context.Context) *RequestData {
	if rd, ok := Default(ctx).Value(requestDataKey{}).(*RequestData); ok {
		return rd
	}
	return nil
}

// Authenticated reports whether ctx carries a verified identity.
func Authenticated(ctx context.Context) bool {
	rd := GetRequestData(ctx)
	return rd != nil && rd.Identity != nil && rd.Identity.Subject != ""
}
