package http

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"toolshare-backend/internal/config"
	"toolshare-backend/internal/logger"
	"toolshare-backend/internal/metrics"
	"toolshare-backend/internal/security"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
)

const (
	headerRequestID     = "X-Request-ID"
	headerUserID        = "X-User-ID"
	headerAuthorization = "Authorization"
)

type responseWriterWrapper struct {
	http.ResponseWriter
	statusCode  int
	wroteHeader bool
}

func newResponseWriterWrapper(w http.ResponseWriter) *responseWriterWrapper {
	return &responseWriterWrapper{ResponseWriter: w, statusCode: http.StatusOK}
}

func (w *responseWriterWrapper) WriteHeader(statusCode int) {
	if w.wroteHeader {
		return
	}
	w.statusCode = statusCode
	w.wroteHeader = true
	w.ResponseWriter.WriteHeader(statusCode)
}

func (w *responseWriterWrapper) Write(b []byte) (int, error) {
	w.wroteHeader = true
	return w.ResponseWriter.Write(b)
}

// requestIDMiddleware tags the request with the caller's X-Request-ID or a
// fresh uuid and binds it to the request logger.
func requestIDMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := r.Header.Get(headerRequestID)
		if id == "" || len(id) > 128 {
			id = uuid.NewString()
		}
		w.Header().Set(headerRequestID, id)

		ctx := withRequestInfo(r.Context(), &requestInfo{id: id})
		ctx = logger.NewContext(ctx, "request_id", id)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func recoverMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := newResponseWriterWrapper(w)
		defer func() {
			if rec := recover(); rec != nil {
				logger.ErrorContext(r.Context(), "Handler panicked", "panic", rec, "path", r.URL.Path)
				if !ww.wroteHeader {
					respondJSON(ww, http.StatusInternalServerError, ErrorResponse{Detail: "internal server error", Error: "internal"})
				}
			}
		}()
		next.ServeHTTP(ww, r)
	})
}

// accessLogMiddleware logs one line per request and records its latency.
func accessLogMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := newResponseWriterWrapper(w)
		next.ServeHTTP(ww, r)

		route := r.URL.Path
		if cur := mux.CurrentRoute(r); cur != nil {
			if tpl, err := cur.GetPathTemplate(); err == nil {
				route = tpl
			}
		}
		metrics.ObserveHTTPRequest(r.Method, route, ww.statusCode, start)

		args := []any{
			"method", r.Method,
			"path", r.URL.Path,
			"status", ww.statusCode,
			"duration_ms", time.Since(start).Milliseconds(),
		}
		if info := requestInfoFrom(r.Context()); info != nil && info.userID != 0 {
			args = append(args, "user_id", info.userID)
		}
		log := logger.FromContext(r.Context())
		switch {
		case ww.statusCode >= http.StatusInternalServerError:
			log.Error("HTTP request", args...)
		case ww.statusCode >= http.StatusBadRequest:
			log.Warn("HTTP request", args...)
		default:
			log.Info("HTTP request", args...)
		}
	})
}

// AuthMiddleware resolves the acting user for routes that need one.
type AuthMiddleware struct {
	tokenManager    security.TokenManager
	allowUserHeader bool
}

// NewAuthMiddleware builds the middleware. tokenManager may be nil when only
// the development user header is accepted.
func NewAuthMiddleware(tm security.TokenManager, allowUserHeader bool) *AuthMiddleware {
	return &AuthMiddleware{tokenManager: tm, allowUserHeader: allowUserHeader}
}

func (m *AuthMiddleware) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		name := ""
		if cur := mux.CurrentRoute(r); cur != nil {
			name = cur.GetName()
		}

		userID, err := m.authenticate(r)
		if err != nil {
			logger.WarnContext(r.Context(), "Authentication failed", "route", name, "error", err)
			respondError(w, r, errUnauthenticated)
			return
		}
		if userID == 0 {
			if config.GetSecurityLevel(name) == config.SecurityPublic {
				next.ServeHTTP(w, r)
				return
			}
			respondError(w, r, errUnauthenticated)
			return
		}

		ctx := withUserID(r.Context(), userID)
		ctx = logger.NewContext(ctx, "user_id", userID)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// authenticate returns 0 with no error when the request carries no identity.
func (m *AuthMiddleware) authenticate(r *http.Request) (int32, error) {
	if auth := r.Header.Get(headerAuthorization); auth != "" {
		if m.tokenManager == nil {
			return 0, security.ErrInvalidToken
		}
		token := auth
		// Remove Bearer prefix if present
		if len(token) > 7 && strings.ToUpper(token[0:7]) == "BEARER " {
			token = token[7:]
		}
		claims, err := m.tokenManager.ValidateToken(token)
		if err != nil {
			return 0, err
		}
		return claims.UserID, nil
	}

	if m.allowUserHeader {
		if raw := r.Header.Get(headerUserID); raw != "" {
			id, err := strconv.ParseInt(raw, 10, 32)
			if err != nil || id <= 0 {
				return 0, security.ErrInvalidToken
			}
			return int32(id), nil
		}
	}
	return 0, nil
}
