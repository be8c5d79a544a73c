package server

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/skarvik/produktbot/internal/engine"
	"github.com/skarvik/produktbot/internal/models"
)

func newSessionID() string {
	return uuid.NewString()
}

type queryRequest struct {
	SessionID string `json:"session_id,omitempty"`
	Text      string `json:"text"`
}

type queryResponse struct {
	SessionID string           `json:"session_id"`
	Response  *models.Response `json:"response"`
}

func (s *Server) handleQuery(w http.ResponseWriter, r *http.Request) {
	var req queryRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if strings.TrimSpace(req.Text) == "" {
		s.respondError(w, http.StatusBadRequest, "text is required")
		return
	}

	sessionID, sessionCtx := s.session(req.SessionID)
	s.logger.Debug("query request", zap.String("session_id", sessionID), zap.String("text", req.Text))

	resp := s.engine.ProcessInput(r.Context(), req.Text, sessionCtx)
	s.respondJSON(w, http.StatusOK, queryResponse{SessionID: sessionID, Response: resp})
}

// handleCommand accepts only structured commands such as "-t 50091812" so
// callers integrating against the command surface get a hard error instead of
// a natural language interpretation.
func (s *Server) handleCommand(w http.ResponseWriter, r *http.Request) {
	var req queryRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	cmd, ok := engine.ParseCommand(req.Text)
	if !ok {
		s.respondError(w, http.StatusBadRequest, "not a command, expected e.g. -t <artikelnr>")
		return
	}

	sessionID, sessionCtx := s.session(req.SessionID)
	resp := s.engine.ExecuteCommand(cmd.Kind, cmd.ProductID, cmd.Params, sessionCtx)
	s.respondJSON(w, http.StatusOK, queryResponse{SessionID: sessionID, Response: resp})
}

type feedbackRequest struct {
	Query   string `json:"query"`
	Status  string `json:"status,omitempty"`
	Helpful bool   `json:"helpful"`
}

func (s *Server) handleFeedback(w http.ResponseWriter, r *http.Request) {
	var req feedbackRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	s.engine.LearnFromInteraction(req.Query, &models.Response{Status: req.Status}, req.Helpful)
	s.respondJSON(w, http.StatusOK, map[string]string{"status": "recorded"})
}

func (s *Server) handleProductSummary(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	res := s.store.GetSummary(id)
	if res.Status != models.StatusSuccess {
		s.respondError(w, http.StatusNotFound, res.Message)
		return
	}
	s.respondJSON(w, http.StatusOK, res)
}

func (s *Server) handleRelatedProducts(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if !s.store.ValidateProductID(id) {
		s.respondError(w, http.StatusNotFound, "unknown product")
		return
	}
	var types []string
	if raw := r.URL.Query().Get("types"); raw != "" {
		for _, t := range strings.Split(raw, ",") {
			if t = strings.TrimSpace(t); t != "" {
				types = append(types, t)
			}
		}
	}
	related := s.store.FindRelatedProducts(id, types)
	s.respondJSON(w, http.StatusOK, map[string]interface{}{
		"product_id": id,
		"related":    related,
	})
}

func (s *Server) handleStats(w http.ResponseWriter, r *http.Request) {
	s.respondJSON(w, http.StatusOK, s.engine.Stats())
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	s.respondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}

func (s *Server) respondError(w http.ResponseWriter, status int, message string) {
	s.respondJSON(w, status, map[string]string{"error": message})
}
