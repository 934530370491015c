// Package handlers provides HTTP handlers for the Ledger Engine API.
package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/spherical-ai/spherical/libs/ledger-engine/internal/fallback"
	"github.com/spherical-ai/spherical/libs/ledger-engine/internal/observability"
)

// Asker answers a question end to end.
type Asker interface {
	Ask(ctx context.Context, question string) (*fallback.Reply, error)
}

// QuestionHandler handles business question requests.
type QuestionHandler struct {
	logger *observability.Logger
	asker  Asker
}

// NewQuestionHandler creates a new question handler.
func NewQuestionHandler(logger *observability.Logger, asker Asker) *QuestionHandler {
	return &QuestionHandler{
		logger: logger,
		asker:  asker,
	}
}

// QuestionRequestDTO represents the API request for a question.
type QuestionRequestDTO struct {
	Question string `json:"question"`
}

// QuestionResponseDTO represents the API response.
type QuestionResponseDTO struct {
	ID        string `json:"id"`
	Question  string `json:"question"`
	Answer    string `json:"answer"`
	Handled   bool   `json:"handled"`
	Rule      string `json:"rule,omitempty"`
	Source    string `json:"source"`
	LatencyMs int64  `json:"latencyMs"`
}

// Ask handles POST /api/v1/questions.
func (h *QuestionHandler) Ask(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	start := time.Now()

	var reqDTO QuestionRequestDTO
	if err := json.NewDecoder(r.Body).Decode(&reqDTO); err != nil {
		h.writeError(w, http.StatusBadRequest, "invalid request body", err.Error())
		return
	}

	question := strings.TrimSpace(reqDTO.Question)
	if question == "" {
		h.writeError(w, http.StatusBadRequest, "question is required", "")
		return
	}

	reply, err := h.asker.Ask(ctx, question)
	if err != nil {
		h.logger.WithContext(ctx).Error().Err(err).Msg("Question failed")
		h.writeError(w, http.StatusInternalServerError, "question failed", err.Error())
		return
	}

	resp := QuestionResponseDTO{
		ID:        uuid.NewString(),
		Question:  question,
		Answer:    reply.Text,
		Handled:   reply.Handled,
		Rule:      reply.Rule,
		Source:    reply.Source,
		LatencyMs: time.Since(start).Milliseconds(),
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(resp)
}

func (h *QuestionHandler) writeError(w http.ResponseWriter, status int, message, detail string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	resp := map[string]string{
		"error":   message,
		"message": message,
	}
	if detail != "" {
		resp["detail"] = detail
	}
	json.NewEncoder(w).Encode(resp)
}
