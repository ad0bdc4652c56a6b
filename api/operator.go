package api

import (
	"crypto/subtle"
	"net"
	"net/http"
	"strings"
)

// ServerOption configures a Server
type ServerOption func(*Server)

// WithOperatorToken requires "Authorization: Bearer <token>" on operator
// routes. Without a token they only answer loopback clients.
func WithOperatorToken(token string) ServerOption {
	return func(s *Server) { s.operatorToken = token }
}

// Operator guards routes that change sessions or presets
func (s *Server) Operator(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !s.authorized(r) {
			s.logger.Warn().Str("path", r.URL.Path).Str("remote", r.RemoteAddr).Msg("operator request refused")
			respondError(w, http.StatusUnauthorized, "operator access required")
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (s *Server) authorized(r *http.Request) bool {
	if s.operatorToken == "" {
		return isLoopback(r.RemoteAddr)
	}
	token, ok := strings.CutPrefix(r.Header.Get("Authorization"), "Bearer ")
	return ok && subtle.ConstantTimeCompare([]byte(token), []byte(s.operatorToken)) == 1
}

func isLoopback(remoteAddr string) bool {
	host, _, err := net.SplitHostPort(remoteAddr)
	if err != nil {
		host = remoteAddr
	}
	ip := net.ParseIP(host)
	return ip != nil && ip.IsLoopback()
}
