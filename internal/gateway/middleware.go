package gateway

import (
	"context"
	"fmt"
	"net"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/petcare-labs/petcare/internal/auth"
	"github.com/petcare-labs/petcare/internal/errors"
	"github.com/petcare-labs/petcare/internal/observability"
	"github.com/petcare-labs/petcare/pkg/api"
)

type ctxKey int

const (
	requestIDKey ctxKey = iota
	requestInfoKey
)

// requestInfo is filled in by inner handlers and read back by the audit
// middleware once the response is written.
type requestInfo struct {
	user  string
	route string
	err   string
}

func infoFrom(ctx context.Context) *requestInfo {
	info, _ := ctx.Value(requestInfoKey).(*requestInfo)
	return info
}

// RequestIDFrom returns the request ID assigned by the gateway.
func RequestIDFrom(ctx context.Context) string {
	id, _ := ctx.Value(requestIDKey).(string)
	return id
}

// withRequestID keeps a well-formed incoming X-Request-ID or assigns a new one.
func withRequestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := r.Header.Get(api.HeaderRequestID)
		if id == "" || len(id) > 128 || strings.ContainsAny(id, " \t\r\n") {
			id = uuid.NewString()
		}
		w.Header().Set(api.HeaderRequestID, id)
		ctx := context.WithValue(r.Context(), requestIDKey, id)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// statusRecorder captures the status code written by a handler.
type statusRecorder struct {
	http.ResponseWriter
	status      int
	wroteHeader bool
}

func (s *statusRecorder) WriteHeader(code int) {
	if !s.wroteHeader {
		s.status = code
		s.wroteHeader = true
	}
	s.ResponseWriter.WriteHeader(code)
}

func (s *statusRecorder) Write(b []byte) (int, error) {
	if !s.wroteHeader {
		s.WriteHeader(http.StatusOK)
	}
	return s.ResponseWriter.Write(b)
}

// withAudit emits one audit entry per request.
func (g *Gateway) withAudit(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		info := &requestInfo{user: "anonymous", route: r.Method + " " + r.URL.Path}
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}

		next.ServeHTTP(rec, r.WithContext(context.WithValue(r.Context(), requestInfoKey, info)))

		entry := observability.RequestLogEntry{
			RequestID: RequestIDFrom(r.Context()),
			User:      info.user,
			Method:    r.Method,
			Route:     info.route,
			Status:    rec.status,
			Duration:  time.Since(start),
			Outcome:   observability.OutcomeFor(rec.status),
			Error:     info.err,
		}
		if err := g.audit.LogRequest(context.WithoutCancel(r.Context()), entry); err != nil {
			g.logger.Warn("audit log failed", zap.Error(err))
		}
	})
}

// withRecovery turns a handler panic into a 500 response.
func (g *Gateway) withRecovery(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			if p := recover(); p != nil {
				if p == http.ErrAbortHandler {
					panic(p)
				}
				g.logger.Error("handler panic",
					zap.String("request_id", RequestIDFrom(r.Context())),
					zap.Any("panic", p),
					zap.Stack("stack"),
				)
				g.writeError(w, r, &errors.PetCareError{
					Code:       errors.CodeInternal,
					Message:    "internal error",
					Reason:     fmt.Sprint(p),
					Suggestion: "report this with the request ID",
				})
			}
		}()
		next.ServeHTTP(w, r)
	})
}

// limiterIdleTTL is how long a client's bucket survives without requests.
// An idle bucket has refilled completely, so dropping it loses nothing.
const limiterIdleTTL = 10 * time.Minute

// clientLimiter hands out one token bucket per client address. Buckets idle
// for longer than idleTTL are swept lazily during allow.
type clientLimiter struct {
	limit   rate.Limit
	burst   int
	idleTTL time.Duration
	now     func() time.Time

	mu        sync.Mutex
	clients   map[string]*clientBucket
	lastSweep time.Time
}

type clientBucket struct {
	lim      *rate.Limiter
	lastSeen time.Time
}

func newClientLimiter(perSecond float64, burst int) *clientLimiter {
	if burst <= 0 {
		burst = max(1, int(perSecond))
	}
	return &clientLimiter{
		limit:     rate.Limit(perSecond),
		burst:     burst,
		idleTTL:   limiterIdleTTL,
		now:       time.Now,
		clients:   make(map[string]*clientBucket),
		lastSweep: time.Now(),
	}
}

func (l *clientLimiter) allow(client string) bool {
	now := l.now()

	l.mu.Lock()
	if now.Sub(l.lastSweep) >= l.idleTTL {
		l.sweep(now)
	}
	b, ok := l.clients[client]
	if !ok {
		b = &clientBucket{lim: rate.NewLimiter(l.limit, l.burst)}
		l.clients[client] = b
	}
	b.lastSeen = now
	l.mu.Unlock()

	return b.lim.AllowN(now, 1)
}

// sweep drops idle buckets. l.mu must be held.
func (l *clientLimiter) sweep(now time.Time) {
	for client, b := range l.clients {
		if now.Sub(b.lastSeen) >= l.idleTTL {
			delete(l.clients, client)
		}
	}
	l.lastSweep = now
}

func (l *clientLimiter) size() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.clients)
}

func clientKey(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}

// withRateLimit rejects clients that exceed their token bucket. Probes
// are never limited.
func (g *Gateway) withRateLimit(next http.Handler) http.Handler {
	if g.limiter == nil {
		return next
	}
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != api.EndpointHealth && r.URL.Path != api.EndpointReady && !g.limiter.allow(clientKey(r)) {
			g.writeError(w, r, errors.NewRateLimited())
			return
		}
		next.ServeHTTP(w, r)
	})
}

// authenticate resolves the bearer token and checks the user may perform
// the request's action on kind. GET is a read; everything else is a write.
func (g *Gateway) authenticate(r *http.Request, kind string) (*auth.User, error) {
	header := r.Header.Get(api.HeaderAuthorization)
	token, found := strings.CutPrefix(header, "Bearer ")
	if !found {
		return nil, errors.NewAuthFailed("missing bearer token")
	}
	user, err := g.authn.ValidateToken(r.Context(), strings.TrimSpace(token))
	if err != nil {
		return nil, err
	}
	if info := infoFrom(r.Context()); info != nil {
		info.user = user.Name
	}

	action := auth.ActionWrite
	if r.Method == http.MethodGet || r.Method == http.MethodHead {
		action = auth.ActionRead
	}
	if err := g.authz.Authorize(user, kind, action); err != nil {
		return nil, err
	}
	return user, nil
}
