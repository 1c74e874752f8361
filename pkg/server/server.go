// Package server exposes dataset engines over HTTP. Each upload starts a
// session; later requests name the session with the X-Session-ID header or
// the session_id cookie set by the upload.
package server

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/julienschmidt/httprouter"
	"github.com/rs/cors"
	"golang.org/x/time/rate"

	"datacleaner/pkg/engine"
	"datacleaner/pkg/logging"
	"datacleaner/pkg/session"
)

const (
	SessionHeader = "X-Session-ID"
	SessionCookie = "session_id"
	uploadField   = "csv_file"
)

// Options configures a Server. Zero values take defaults; a nil
// MissingThreshold means engine.DefaultMissingThreshold.
type Options struct {
	MaxUploadBytes   int64
	RateLimit        float64
	Burst            int
	CORSOrigins      []string
	MissingThreshold *float64
	IQRFactor        float64
}

func (o *Options) applyDefaults() {
	if o.MaxUploadBytes <= 0 {
		o.MaxUploadBytes = 32 << 20
	}
	threshold := engine.DefaultMissingThreshold
	if o.MissingThreshold != nil {
		threshold = *o.MissingThreshold
	}
	o.MissingThreshold = &threshold
	if o.IQRFactor <= 0 {
		o.IQRFactor = engine.DefaultIQRFactor
	}
	if o.Burst <= 0 {
		o.Burst = 1
	}
}

// Server routes requests to session engines.
type Server struct {
	store   *session.Store
	logger  *logging.Logger
	opts    Options
	router  *httprouter.Router
	limiter *rate.Limiter
}

// New builds a Server around store. A RateLimit of 0 disables rate limiting.
func New(store *session.Store, logger *logging.Logger, opts Options) *Server {
	opts.applyDefaults()
	if logger == nil {
		logger = logging.NoopLogger()
	}
	s := &Server{
		store:  store,
		logger: logger.WithComponent("server"),
		opts:   opts,
		router: httprouter.New(),
	}
	if opts.RateLimit > 0 {
		s.limiter = rate.NewLimiter(rate.Limit(opts.RateLimit), opts.Burst)
	}
	s.routes()
	return s
}

func (s *Server) routes() {
	s.router.GET("/healthz", s.healthz)
	s.router.POST("/upload", s.upload)
	s.router.POST("/clean", s.legacyClean)
	s.router.POST("/api/clean", s.clean)
	s.router.GET("/api/summary", s.summary)
	s.router.GET("/api/history", s.history)
	s.router.GET("/api/chart", s.chart)
	s.router.POST("/api/reset", s.reset)
	s.router.POST("/api/download", s.download)
	s.router.DELETE("/api/session", s.deleteSession)
}

// Handler returns the router wrapped in CORS, rate limiting and request logging.
func (s *Server) Handler() http.Handler {
	c := cors.New(cors.Options{
		AllowedOrigins:   s.opts.CORSOrigins,
		AllowedMethods:   []string{http.MethodGet, http.MethodPost, http.MethodDelete},
		AllowedHeaders:   []string{"Content-Type", SessionHeader},
		ExposedHeaders:   []string{SessionHeader},
		AllowCredentials: true,
	})
	return c.Handler(s.logRequests(s.rateLimit(s.router)))
}

func (s *Server) rateLimit(next http.Handler) http.Handler {
	if s.limiter == nil {
		return next
	}
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !s.limiter.Allow() {
			writeError(w, http.StatusTooManyRequests, "Too many requests")
			return
		}
		next.ServeHTTP(w, r)
	})
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}

func (s *Server) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)
		s.logger.LogRequest(r.Context(), r.Method, r.URL.Path, rec.status, time.Since(start))
	})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

// sessionID reads the session id from the header, falling back to the cookie.
func sessionID(r *http.Request) string {
	if id := r.Header.Get(SessionHeader); id != "" {
		return id
	}
	if c, err := r.Cookie(SessionCookie); err == nil {
		return c.Value
	}
	return ""
}
