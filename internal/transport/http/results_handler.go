package http

import (
	"encoding/json"
	"log"
	"net/http"

	"portal-quiz-service/internal/app"
)

// ResultsHandler serves a learner's stored quiz results.
type ResultsHandler struct {
	service *app.QuizService
}

func NewResultsHandler(service *app.QuizService) *ResultsHandler {
	return &ResultsHandler{service: service}
}

func (h *ResultsHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	userID := r.URL.Query().Get("userId")
	if userID == "" {
		http.Error(w, "missing userId", http.StatusBadRequest)
		return
	}

	results, err := h.service.History(r.Context(), userID)
	if err != nil {
		log.Printf("list results for %s: %v", userID, err)
		http.Error(w, "unable to list results", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(results); err != nil {
		log.Printf("encode results: %v", err)
	}
}
