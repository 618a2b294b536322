package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/sells-group/water-atlas/internal/atlas"
	"github.com/sells-group/water-atlas/internal/catalog"
	"github.com/sells-group/water-atlas/internal/export"
	"github.com/sells-group/water-atlas/internal/model"
	"github.com/sells-group/water-atlas/internal/state"
	"github.com/sells-group/water-atlas/internal/store"
	"github.com/sells-group/water-atlas/internal/urlstate"
)

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

type catalogResponse struct {
	ClimateModels []catalog.ClimateModel `json:"climateModels"`
	ImpactModels  []catalog.ImpactModel  `json:"impactModels"`
	TimeScales    []catalog.TimeScale    `json:"timeScales"`
	DataTypes     []model.DataType       `json:"dataTypes"`
	GridVariables []state.GridVariable   `json:"gridVariables"`
	Entries       []catalog.Entry        `json:"entries"`
}

func (s *Server) handleCatalog(w http.ResponseWriter, r *http.Request) {
	writeData(w, http.StatusOK, catalogResponse{
		ClimateModels: catalog.ClimateModels,
		ImpactModels:  catalog.ImpactModels,
		TimeScales:    catalog.TimeScales,
		DataTypes:     model.DataTypes,
		GridVariables: state.GridVariables,
		Entries:       s.svc.Catalog().Entries,
	}, nil)
}

// session restores a session from the fragment query parameter and loads
// its dataset. Load failures end up in the session state.
func (s *Server) session(ctx context.Context, r *http.Request) (*atlas.Session, []string) {
	sess, fieldErrs := s.svc.NewSession(r.URL.Query().Get("fragment"))
	warnings := fieldWarnings(fieldErrs)
	if err := sess.Ensure(ctx); err != nil {
		warnings = append(warnings, err.Error())
	}
	return sess, warnings
}

func fieldWarnings(errs []*urlstate.FieldError) []string {
	out := make([]string, 0, len(errs))
	for _, e := range errs {
		out = append(out, e.Error())
	}
	return out
}

func (s *Server) handleView(w http.ResponseWriter, r *http.Request) {
	sess, warnings := s.session(r.Context(), r)
	writeData(w, http.StatusOK, sess.View(), warnings)
}

type actionsRequest struct {
	Actions []json.RawMessage `json:"actions"`
}

func (s *Server) handleViewActions(w http.ResponseWriter, r *http.Request) {
	var req actionsRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, http.StatusBadRequest, CodeInvalidJSON, "request body must be {\"actions\": [...]}")
		return
	}
	actions := make([]state.Action, 0, len(req.Actions))
	for i, raw := range req.Actions {
		a, err := state.DecodeAction(raw)
		if err != nil {
			writeError(w, r, http.StatusBadRequest, CodeInvalidAction, fmt.Sprintf("action %d: %v", i, err))
			return
		}
		actions = append(actions, a)
	}

	sess, warnings := s.session(r.Context(), r)
	sess.Dispatch(actions...)
	if err := sess.Ensure(r.Context()); err != nil {
		warnings = append(warnings, err.Error())
	}
	writeData(w, http.StatusOK, sess.View(), warnings)
}

func (s *Server) handleExportCSV(w http.ResponseWriter, r *http.Request) {
	s.export(w, r, "csv", "text/csv", export.WriteCSV)
}

func (s *Server) handleExportXLSX(w http.ResponseWriter, r *http.Request) {
	s.export(w, r, "xlsx", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet", export.WriteXLSX)
}

type writeFunc func(io.Writer, *model.Series[model.RegionDatum]) error

func (s *Server) export(w http.ResponseWriter, r *http.Request, ext, contentType string, write writeFunc) {
	sess, _ := s.session(r.Context(), r)
	st := sess.State()
	switch st.Status() {
	case state.StatusFailed:
		writeError(w, r, http.StatusBadGateway, CodeDataUnavailable,
			"dataset unavailable: "+st.Data.Failed[st.Selections.HistoricalKey()])
		return
	case state.StatusLoading:
		w.Header().Set("Retry-After", "1")
		writeError(w, r, http.StatusServiceUnavailable, CodeDataLoading, "dataset is loading")
		return
	case state.StatusReady:
	}

	var buf bytes.Buffer
	if err := write(&buf, sess.Derived()); err != nil {
		zap.L().Error("api: export failed", zap.String("format", ext), zap.Error(err))
		writeError(w, r, http.StatusInternalServerError, CodeInternal, "export failed")
		return
	}
	name := export.Filename(*st.Selections, s.now(), ext)
	w.Header().Set("Content-Type", contentType)
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", name))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(buf.Bytes())
}

type createBookmarkRequest struct {
	Name     string `json:"name"`
	Fragment string `json:"fragment"`
}

func (s *Server) bookmarksEnabled(w http.ResponseWriter, r *http.Request) bool {
	if s.bookmarks == nil {
		writeError(w, r, http.StatusNotImplemented, CodeDisabled, "bookmarks are not configured")
		return false
	}
	return true
}

func (s *Server) handleCreateBookmark(w http.ResponseWriter, r *http.Request) {
	if !s.bookmarksEnabled(w, r) {
		return
	}
	var req createBookmarkRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, http.StatusBadRequest, CodeInvalidJSON, "request body must be {\"name\", \"fragment\"}")
		return
	}

	// Store the canonical form so equal views share one encoding.
	sess, fieldErrs := s.svc.NewSession(req.Fragment)
	b, err := s.bookmarks.CreateBookmark(r.Context(), req.Name, sess.Fragment())
	if err != nil {
		zap.L().Error("api: create bookmark", zap.Error(err))
		writeError(w, r, http.StatusInternalServerError, CodeInternal, "could not save bookmark")
		return
	}
	writeData(w, http.StatusCreated, b, fieldWarnings(fieldErrs))
}

func (s *Server) handleGetBookmark(w http.ResponseWriter, r *http.Request) {
	if !s.bookmarksEnabled(w, r) {
		return
	}
	b, err := s.bookmarks.GetBookmark(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		s.bookmarkError(w, r, err)
		return
	}
	writeData(w, http.StatusOK, b, nil)
}

func (s *Server) handleListBookmarks(w http.ResponseWriter, r *http.Request) {
	if !s.bookmarksEnabled(w, r) {
		return
	}
	list, err := s.bookmarks.ListBookmarks(r.Context(), 0)
	if err != nil {
		s.bookmarkError(w, r, err)
		return
	}
	if list == nil {
		list = []store.Bookmark{}
	}
	writeData(w, http.StatusOK, list, nil)
}

func (s *Server) handleDeleteBookmark(w http.ResponseWriter, r *http.Request) {
	if !s.bookmarksEnabled(w, r) {
		return
	}
	if err := s.bookmarks.DeleteBookmark(r.Context(), chi.URLParam(r, "id")); err != nil {
		s.bookmarkError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) bookmarkError(w http.ResponseWriter, r *http.Request, err error) {
	if errors.Is(err, store.ErrNotFound) {
		writeError(w, r, http.StatusNotFound, CodeNotFound, "bookmark not found")
		return
	}
	zap.L().Error("api: bookmark store", zap.Error(err))
	writeError(w, r, http.StatusInternalServerError, CodeInternal, "bookmark store failed")
}
