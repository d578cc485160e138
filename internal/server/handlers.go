package server

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/pazarbot/pazarbot/internal/schema"
)

type chatRequest struct {
	UserID  string `json:"user_id"`
	Message string `json:"message"`
}

type chatResponse struct {
	Response string `json:"response"`
}

func (s *Server) handleRoot(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{
		"message": "Chatbot API is running with RAG approach.",
	})
}

func (s *Server) handleChat(w http.ResponseWriter, r *http.Request) {
	s.serveChat(w, r, s.assistant.Process)
}

func (s *Server) handleChatEnhanced(w http.ResponseWriter, r *http.Request) {
	s.serveChat(w, r, s.assistant.ProcessEnhanced)
}

// serveChat decodes the request, runs the given pipeline entry point, and
// always answers 200 with a response field. Malformed requests are the one
// exception and get a 400.
func (s *Server) serveChat(w http.ResponseWriter, r *http.Request, process func(ctx context.Context, userID, message string) string) {
	req, err := decodeChatRequest(r)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, chatResponse{
			Response: "Üzgünüm, isteğinizi anlayamadım. Lütfen tekrar deneyin.",
		})
		return
	}
	reply := process(r.Context(), req.UserID, req.Message)
	writeJSON(w, http.StatusOK, chatResponse{Response: reply})
}

func decodeChatRequest(r *http.Request) (chatRequest, error) {
	var req chatRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		return req, fmt.Errorf("decode request: %w", err)
	}
	if req.UserID == "" || req.Message == "" {
		return req, fmt.Errorf("user_id and message are required")
	}
	return req, nil
}

func (s *Server) handleReset(w http.ResponseWriter, r *http.Request) {
	var req struct {
		UserID string `json:"user_id"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.UserID == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "user_id is required"})
		return
	}
	s.assistant.Store().Clear(req.UserID)
	writeJSON(w, http.StatusOK, map[string]string{"status": "reset"})
}

func (s *Server) handleCollections(w http.ResponseWriter, r *http.Request) {
	collections := s.search.Collections(r.Context())
	writeJSON(w, http.StatusOK, map[string]any{"collections": collections})
}

func (s *Server) handleKnowledgeBase(w http.ResponseWriter, r *http.Request) {
	collection := r.URL.Query().Get("collection")
	if collection == "" {
		collection = s.search.DefaultCollectionName()
	}
	limit := 100
	if v := r.URL.Query().Get("limit"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			limit = n
		}
	}

	products := s.search.KnowledgeBase(r.Context(), collection, limit)
	preview := products
	if len(preview) > 10 {
		preview = preview[:10]
	}
	if preview == nil {
		preview = []schema.Product{}
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"collection":      collection,
		"count":           len(products),
		"products":        preview,
		"total_retrieved": len(products),
	})
}

func (s *Server) handlePreflight(w http.ResponseWriter, _ *http.Request) {
	w.WriteHeader(http.StatusNoContent)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Warn("server: write response failed", "err", err)
	}
}
