package handlers

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/forumkit/aibot/internal/bot"
	"github.com/forumkit/aibot/internal/forum"
)

// ReplyEvent is the payload the forum posts when a new reply lands.
type ReplyEvent struct {
	PostID int64 `json:"post_id"`
}

type eventResponse struct {
	Handled bool   `json:"handled"`
	ReplyID int64  `json:"reply_id,omitempty"`
	Reason  string `json:"reason,omitempty"`
}

// EventHandler receives reply events from the forum, applies the trigger
// rules, and posts a generated reply back into the thread.
type EventHandler struct {
	store     forum.Store
	trigger   *bot.TriggerService
	generator *bot.Generator
	botUserID int64
	logger    *slog.Logger
}

func NewEventHandler(store forum.Store, trigger *bot.TriggerService, generator *bot.Generator, botUserID int64, logger *slog.Logger) *EventHandler {
	return &EventHandler{
		store:     store,
		trigger:   trigger,
		generator: generator,
		botUserID: botUserID,
		logger:    logger,
	}
}

func (h *EventHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var event ReplyEvent
	if err := json.NewDecoder(r.Body).Decode(&event); err != nil {
		http.Error(w, "invalid event payload", http.StatusBadRequest)
		return
	}
	if event.PostID == 0 {
		http.Error(w, "post_id is required", http.StatusBadRequest)
		return
	}

	post, err := h.store.Post(event.PostID)
	if err != nil {
		h.logger.Error("post lookup failed", "post_id", event.PostID, "error", err)
		http.Error(w, "post not found", http.StatusNotFound)
		return
	}

	if !h.trigger.ShouldRespond(post) {
		h.writeJSON(w, http.StatusOK, eventResponse{Handled: false, Reason: "not triggered"})
		return
	}

	content := h.generator.GenerateReply(r.Context(), post)

	replyID, err := h.store.CreateReply(post.TopicID, h.botUserID, content)
	if err != nil {
		h.logger.Error("posting reply failed", "topic_id", post.TopicID, "error", err)
		http.Error(w, "failed to post reply", http.StatusInternalServerError)
		return
	}

	h.logger.Info("posted reply", "topic_id", post.TopicID, "reply_id", replyID)
	h.writeJSON(w, http.StatusOK, eventResponse{Handled: true, ReplyID: replyID})
}

func (h *EventHandler) writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		h.logger.Error("Failed to write event response", "error", err)
	}
}
