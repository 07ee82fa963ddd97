package http

import (
	"context"
	"errors"
)

type contextKey int

const (
	requestInfoKey contextKey = iota
	userIDKey
)

// requestInfo is shared by pointer so outer middleware can see what inner
// middleware learned about the caller.
type requestInfo struct {
	id     string
	userID int32
}

func withRequestInfo(ctx context.Context, info *requestInfo) context.Context {
	return context.WithValue(ctx, requestInfoKey, info)
}

func requestInfoFrom(ctx context.Context) *requestInfo {
	info, _ := ctx.Value(requestInfoKey).(*requestInfo)
	return info
}

// RequestIDFromContext returns the id assigned to the current request.
func RequestIDFromContext(ctx context.Context) string {
	if info := requestInfoFrom(ctx); info != nil {
		return info.id
	}
	return ""
}

func withUserID(ctx context.Context, userID int32) context.Context {
	if info := requestInfoFrom(ctx); info != nil {
		info.userID = userID
	}
	return context.WithValue(ctx, userIDKey, userID)
}

// GetUserIDFromContext returns the authenticated actor. Only routes behind the
// auth middleware have one.
func GetUserIDFromContext(ctx context.Context) (int32, error) {
	userID, ok := ctx.Value(userIDKey).(int32)
	if !ok || userID <= 0 {
		return 0, errUnauthenticated
	}
	return userID, nil
}

// errUnauthenticated never leaves the HTTP layer; it maps to 401.
var errUnauthenticated = errors.New("authentication required")
