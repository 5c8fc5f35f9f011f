// Package api serves one board over HTTP.
//
// Routes:
//
//	GET    /version
//	GET    /board                      native board JSON
//	PUT    /board                      replace from native board JSON
//	GET    /board/fragment             interchange canvas
//	PUT    /board/fragment             replace from a canvas, returns the import report
//	POST   /board/undo
//	POST   /board/redo
//	POST   /board/notes                {"text", "x", "y"}
//	POST   /board/resources            {"id", "x", "y"}
//	POST   /board/items/{id}/move      {"x", "y"}
//	DELETE /board/items/{id}
//	POST   /board/connections          service.ConnectRequest
//	DELETE /board/connections/{id}
//	POST   /board/arrange              {"template", "ids", "x", "y"}
//	GET    /board/svg
//	GET    /board/png
//
// Errors are JSON objects {"code", "message"} with a status derived from
// the error code.
package api

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/charmbracelet/log"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/matzehuels/pinboard/internal/service"
	"github.com/matzehuels/pinboard/pkg/buildinfo"
	"github.com/matzehuels/pinboard/pkg/cache"
	"github.com/matzehuels/pinboard/pkg/errors"
)

// maxBody caps request bodies.
const maxBody = 8 << 20

// Server holds the handler dependencies.
type Server struct {
	board  *service.Board
	cache  cache.Cache
	keyer  cache.Keyer
	logger *log.Logger
	ttl    time.Duration
}

// Option configures a Server.
type Option func(*Server)

// WithCache caches rendered images in c.
func WithCache(c cache.Cache, k cache.Keyer, ttl time.Duration) Option {
	return func(s *Server) { s.cache, s.keyer, s.ttl = c, k, ttl }
}

// WithLogger sets the request logger.
func WithLogger(l *log.Logger) Option {
	return func(s *Server) { s.logger = l }
}

// New returns a server for b.
func New(b *service.Board, opts ...Option) *Server {
	s := &Server{
		board:  b,
		cache:  cache.NewNullCache(),
		keyer:  cache.NewDefaultKeyer(),
		logger: log.Default(),
		ttl:    time.Hour,
	}
	for _, o := range opts {
		o(s)
	}
	return s
}

// Handler returns the router.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(s.logRequests)

	r.Get("/version", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, buildinfo.Get())
	})

	r.Route("/board", func(r chi.Router) {
		r.Get("/", s.getBoard)
		r.Put("/", s.putBoard)
		r.Get("/fragment", s.getFragment)
		r.Put("/fragment", s.putFragment)
		r.Post("/undo", s.undo)
		r.Post("/redo", s.redo)
		r.Post("/notes", s.addNote)
		r.Post("/resources", s.addResource)
		r.Post("/items/{id}/move", s.moveItem)
		r.Delete("/items/{id}", s.removeItem)
		r.Post("/connections", s.connect)
		r.Delete("/connections/{id}", s.removeConnection)
		r.Post("/arrange", s.arrange)
		r.Get("/svg", s.renderImage(formatSVG))
		r.Get("/png", s.renderImage(formatPNG))
	})
	return r
}

func (s *Server) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)
		s.logger.Debug("request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", ww.Status(),
			"bytes", ww.BytesWritten(),
			"duration", time.Since(start).Round(time.Microsecond),
			"id", middleware.GetReqID(r.Context()))
	})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(false)
	_ = enc.Encode(v)
}

type errorBody struct {
	Code    errors.Code `json:"code"`
	Message string      `json:"message"`
}

func (s *Server) writeError(w http.ResponseWriter, err error) {
	code := errors.GetCode(err)
	if code == "" {
		code = errors.ErrCodeInternal
	}
	status := errors.HTTPStatus(err)
	if status >= 500 {
		s.logger.Error("request failed", "err", err)
	}
	writeJSON(w, status, errorBody{Code: code, Message: errors.UserMessage(err)})
}

func decode(w http.ResponseWriter, r *http.Request, v any) error {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBody))
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		return errors.Wrap(errors.ErrCodeInvalidInput, err, "decode request")
	}
	return nil
}
