package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/google/uuid"

	"github.com/salesvoice-poc/server/internal/agent/graph"
	"github.com/salesvoice-poc/server/internal/agent/model"
	"github.com/salesvoice-poc/server/internal/catalog"
	errx "github.com/salesvoice-poc/server/internal/core/error"
	"github.com/salesvoice-poc/server/internal/language"
	"github.com/salesvoice-poc/server/internal/speech"
	logx "github.com/salesvoice-poc/server/pkg/logger"
)

// Speaker is the slice of the speech synthesizer the handlers use. Synthesize
// degrades to an empty URL on failure paths handled inside the adapter;
// Generate surfaces errors to the caller.
type Speaker interface {
	Synthesize(ctx context.Context, text, lang, voiceOverride string) (string, error)
	Generate(ctx context.Context, req speech.GenerateRequest) (*speech.GenerateResult, error)
}

// Handlers wires the dialogue runner and speech adapter into HTTP endpoints.
type Handlers struct {
	runner  graph.Runner
	speaker Speaker
}

func NewHandlers(runner graph.Runner, speaker Speaker) *Handlers {
	return &Handlers{runner: runner, speaker: speaker}
}

// ChatRequest is the inbound payload for POST /chat.
type ChatRequest struct {
	UserMessage string           `json:"user_message"`
	History     []model.ChatTurn `json:"history"`
	Language    string           `json:"language"`
	VoiceID     string           `json:"voice_id"`
}

// ChatResponse is the outbound payload for POST /chat. AudioURL is null when
// synthesis is disabled or failed; the textual answer is always present.
type ChatResponse struct {
	Text        string               `json:"text"`
	AudioURL    *string              `json:"audio_url"`
	Products    []catalog.Product    `json:"products"`
	SpecialDeal *catalog.SpecialDeal `json:"special_deal"`
}

type errorResponse struct {
	Error string `json:"error"`
}

// Chat handles POST /chat: one full dialogue turn plus best-effort speech.
func (h *Handlers) Chat(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	turnID := uuid.NewString()

	var req ChatRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	if req.UserMessage == "" {
		respondError(w, http.StatusBadRequest, "user_message is required")
		return
	}
	for _, turn := range req.History {
		if turn.Role != model.RoleUser && turn.Role != model.RoleAssistant {
			respondError(w, http.StatusBadRequest, "history roles must be 'user' or 'assistant'")
			return
		}
	}

	lang := language.Resolve(language.Detect(req.UserMessage), req.Language)

	logx.Info().
		Str("turn_id", turnID).
		Str("language", lang).
		Int("history_len", len(req.History)).
		Msg("Chat turn started")

	outcome, err := h.runner.Run(ctx, model.QueryInput{
		UserMessage: req.UserMessage,
		History:     req.History,
		Language:    req.Language,
	})
	if err != nil {
		logx.Error().Err(err).Str("turn_id", turnID).Msg("Chat turn failed")
		respondError(w, errx.StatusOf(err), userFacingMessage(err))
		return
	}

	resp := ChatResponse{
		Text:        outcome.Answer.Text,
		Products:    outcome.Products,
		SpecialDeal: outcome.Deal,
	}
	if resp.Products == nil {
		resp.Products = []catalog.Product{}
	}

	if h.speaker != nil {
		audioURL, synthErr := h.speaker.Synthesize(ctx, outcome.Answer.Text, lang, req.VoiceID)
		if synthErr != nil {
			// Speech is an enhancement; the turn still succeeds without it.
			logx.Warn().Err(synthErr).Str("turn_id", turnID).Msg("Speech synthesis failed, returning text only")
		} else if audioURL != "" {
			resp.AudioURL = &audioURL
		}
	}

	logx.Info().
		Str("turn_id", turnID).
		Int("products", len(resp.Products)).
		Bool("has_deal", resp.SpecialDeal != nil).
		Bool("has_audio", resp.AudioURL != nil).
		Float64("total_cost_usd", outcome.TotalCostUSD).
		Msg("Chat turn completed")

	respondJSON(w, http.StatusOK, resp)
}

// GenerateSpeechRequest is the inbound payload for POST /generate-speech.
type GenerateSpeechRequest struct {
	Text           string `json:"text"`
	VoiceID        string `json:"voice_id"`
	Language       string `json:"language"`
	Format         string `json:"format"`
	SampleRate     int    `json:"sample_rate"`
	Style          string `json:"style"`
	EncodeAsBase64 bool   `json:"encode_as_base64"`
}

// GenerateSpeech handles POST /generate-speech: a standalone synthesis call
// where failures are explicit rather than silently degraded.
func (h *Handlers) GenerateSpeech(w http.ResponseWriter, r *http.Request) {
	var req GenerateSpeechRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	if h.speaker == nil {
		respondError(w, http.StatusInternalServerError, "speech synthesis is not configured")
		return
	}

	result, err := h.speaker.Generate(r.Context(), speech.GenerateRequest{
		Text:           req.Text,
		VoiceID:        req.VoiceID,
		Language:       req.Language,
		Format:         req.Format,
		SampleRate:     req.SampleRate,
		Style:          req.Style,
		EncodeAsBase64: req.EncodeAsBase64,
	})
	if err != nil {
		logx.Error().Err(err).Msg("Speech generation failed")
		respondError(w, errx.StatusOf(err), userFacingMessage(err))
		return
	}

	respondJSON(w, http.StatusOK, result)
}

// Health handles GET /health.
func (h *Handlers) Health(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func respondJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		logx.Error().Err(err).Msg("Failed to encode response")
	}
}

func respondError(w http.ResponseWriter, status int, message string) {
	respondJSON(w, status, errorResponse{Error: message})
}

// userFacingMessage strips internal detail from errors that cross the HTTP
// boundary while keeping typed messages intact.
func userFacingMessage(err error) string {
	var appErr *errx.Error
	if errors.As(err, &appErr) && appErr.Message != "" {
		return appErr.Message
	}
	return "internal server error"
}
