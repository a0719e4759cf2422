package chatbot

import (
	"context"
	"net/http"

	"github.com/de-tools/pricelist-atlas/pkg/adapters"
	"github.com/de-tools/pricelist-atlas/pkg/handlers/response"
	"github.com/de-tools/pricelist-atlas/pkg/models/api"
	"github.com/de-tools/pricelist-atlas/pkg/models/domain"
	"github.com/goccy/go-json"
	"github.com/rs/zerolog"
)

const (
	ReplyNotConfigured  = "Gemini API key not configured."
	ReplyInvalidRequest = "Invalid request: messages must be a non-empty array."
	ReplyUpstreamError  = "Error contacting Gemini API."
)

type Replier interface {
	Configured() bool
	Reply(ctx context.Context, messages []domain.ChatMessage) (string, error)
}

type Handler struct {
	chat      Replier
	onFailure func()
}

// NewHandler builds the chat handler. onFailure, if set, is called for every
// upstream failure.
func NewHandler(chat Replier, onFailure func()) *Handler {
	return &Handler{chat: chat, onFailure: onFailure}
}

func (h *Handler) PostChat(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := zerolog.Ctx(ctx)

	if h.chat == nil || !h.chat.Configured() {
		reply(w, r, http.StatusInternalServerError, ReplyNotConfigured)
		return
	}

	var req api.ChatRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		logger.Debug().Err(err).Msg("failed to decode chat request")
		reply(w, r, http.StatusBadRequest, ReplyInvalidRequest)
		return
	}
	if len(req.Messages) == 0 {
		reply(w, r, http.StatusBadRequest, ReplyInvalidRequest)
		return
	}

	text, err := h.chat.Reply(ctx, adapters.MapChatMessagesApiToDomain(req.Messages))
	if err != nil {
		logger.Error().
			Err(err).
			Int("messages", len(req.Messages)).
			Msg("failed to contact chat model")
		if h.onFailure != nil {
			h.onFailure()
		}
		reply(w, r, http.StatusInternalServerError, ReplyUpstreamError)
		return
	}

	reply(w, r, http.StatusOK, text)
}

func reply(w http.ResponseWriter, r *http.Request, status int, text string) {
	response.JSON(w, r, status, api.ChatResponse{Reply: text})
}
