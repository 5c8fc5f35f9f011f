package api

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/matzehuels/pinboard/internal/service"
	"github.com/matzehuels/pinboard/pkg/board"
	"github.com/matzehuels/pinboard/pkg/cache"
	"github.com/matzehuels/pinboard/pkg/errors"
	"github.com/matzehuels/pinboard/pkg/geom"
	"github.com/matzehuels/pinboard/pkg/iiif"
	boardio "github.com/matzehuels/pinboard/pkg/io"
	"github.com/matzehuels/pinboard/pkg/observability"
	"github.com/matzehuels/pinboard/pkg/render"
)

func (s *Server) getBoard(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	if err := boardio.WriteJSON(s.board.State(), w); err != nil {
		s.logger.Error("write board", "err", err)
	}
}

func (s *Server) putBoard(w http.ResponseWriter, r *http.Request) {
	st, err := boardio.ReadJSON(http.MaxBytesReader(w, r.Body, maxBody))
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.board.Replace(st)
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) getFragment(w http.ResponseWriter, r *http.Request) {
	c, err := s.board.Export()
	if err != nil {
		s.writeError(w, err)
		return
	}
	w.Header().Set("Content-Type", "application/ld+json")
	if err := iiif.WriteJSON(c, w); err != nil {
		s.logger.Error("write fragment", "err", err)
	}
}

func (s *Server) putFragment(w http.ResponseWriter, r *http.Request) {
	c, err := iiif.ReadJSON(http.MaxBytesReader(w, r.Body, maxBody))
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, s.board.Import(c))
}

type stepResponse struct {
	Applied bool `json:"applied"`
	CanUndo bool `json:"canUndo"`
	CanRedo bool `json:"canRedo"`
}

func (s *Server) undo(w http.ResponseWriter, r *http.Request) {
	ok := s.board.Undo()
	st := s.board.Store()
	writeJSON(w, http.StatusOK, stepResponse{Applied: ok, CanUndo: st.CanUndo(), CanRedo: st.CanRedo()})
}

func (s *Server) redo(w http.ResponseWriter, r *http.Request) {
	ok := s.board.Redo()
	st := s.board.Store()
	writeJSON(w, http.StatusOK, stepResponse{Applied: ok, CanUndo: st.CanUndo(), CanRedo: st.CanRedo()})
}

type position struct {
	X *float64 `json:"x,omitempty"`
	Y *float64 `json:"y,omitempty"`
}

func (p position) point() *geom.Point {
	if p.X == nil || p.Y == nil {
		return nil
	}
	pt := geom.Pt(*p.X, *p.Y)
	return &pt
}

func (s *Server) addNote(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Text string `json:"text"`
		position
	}
	if err := decode(w, r, &req); err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, s.board.AddNote(req.Text, req.point()))
}

func (s *Server) addResource(w http.ResponseWriter, r *http.Request) {
	var req struct {
		ID string `json:"id"`
		position
	}
	if err := decode(w, r, &req); err != nil {
		s.writeError(w, err)
		return
	}
	it, err := s.board.AddResource(r.Context(), req.ID, req.point())
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, it)
}

func (s *Server) moveItem(w http.ResponseWriter, r *http.Request) {
	var req struct {
		X float64 `json:"x"`
		Y float64 `json:"y"`
	}
	if err := decode(w, r, &req); err != nil {
		s.writeError(w, err)
		return
	}
	it, err := s.board.MoveItem(chi.URLParam(r, "id"), req.X, req.Y)
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, it)
}

func (s *Server) removeItem(w http.ResponseWriter, r *http.Request) {
	if err := s.board.RemoveItem(chi.URLParam(r, "id")); err != nil {
		s.writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) connect(w http.ResponseWriter, r *http.Request) {
	var req service.ConnectRequest
	if err := decode(w, r, &req); err != nil {
		s.writeError(w, err)
		return
	}
	c, err := s.board.Connect(req)
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, c)
}

func (s *Server) removeConnection(w http.ResponseWriter, r *http.Request) {
	if err := s.board.RemoveConnection(chi.URLParam(r, "id")); err != nil {
		s.writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) arrange(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Template board.Template `json:"template"`
		IDs      []string       `json:"ids,omitempty"`
		X        float64        `json:"x"`
		Y        float64        `json:"y"`
	}
	if err := decode(w, r, &req); err != nil {
		s.writeError(w, err)
		return
	}
	if err := s.board.Arrange(req.Template, req.IDs, geom.Pt(req.X, req.Y)); err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, s.board.State().Items)
}

const (
	formatSVG = "svg"
	formatPNG = "png"
)

var contentTypes = map[string]string{
	formatSVG: "image/svg+xml",
	formatPNG: "image/png",
}

// renderImage serves the board as an image. Renders are cached by content
// hash, so unchanged boards are served from the cache.
func (s *Server) renderImage(format string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		data, hash, err := s.rendered(r.Context(), format, s.board.State())
		if err != nil {
			s.writeError(w, err)
			return
		}
		etag := `"` + hash + `"`
		w.Header().Set("ETag", etag)
		if r.Header.Get("If-None-Match") == etag {
			w.WriteHeader(http.StatusNotModified)
			return
		}
		w.Header().Set("Content-Type", contentTypes[format])
		_, _ = w.Write(data)
	}
}

func (s *Server) rendered(ctx context.Context, format string, st board.State) ([]byte, string, error) {
	hash, err := cache.HashJSON(st)
	if err != nil {
		return nil, "", errors.Wrap(errors.ErrCodeInternal, err, "hash board")
	}
	key := s.keyer.RenderKey(hash, format)
	if data, ok, err := s.cache.Get(ctx, key); err == nil && ok {
		observability.Cache().OnCacheHit(ctx, "render")
		return data, hash, nil
	}
	observability.Cache().OnCacheMiss(ctx, "render")

	var data []byte
	switch format {
	case formatPNG:
		data, err = render.RenderPNG(st)
		if err != nil {
			return nil, "", err
		}
	default:
		data = render.RenderSVG(st)
	}
	if err := s.cache.Set(ctx, key, data, s.ttl); err != nil {
		s.logger.Warn("cache render", "err", err)
	} else {
		observability.Cache().OnCacheSet(ctx, "render", len(data))
	}
	return data, hash, nil
}
