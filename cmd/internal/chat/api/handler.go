// Package chatapi exposes the session-management HTTP surface. Every route
// here sits behind the authorization gate; the acting user is taken from the
// verified token subject on the request context.
package chatapi

import (
	"errors"
	"log/slog"
	"net/http"
	"time"

	authapi "raven/cmd/internal/auth/api"
	"raven/cmd/internal/chat"
)

// Handler wires session-management endpoints to the chat service.
type Handler struct {
	log *slog.Logger
	svc *chat.Service
}

// NewHandler constructs a chat API handler.
func NewHandler(log *slog.Logger, svc *chat.Service) (*Handler, error) {
	if log == nil {
		log = slog.Default()
	}
	if svc == nil {
		return nil, errors.New("chatapi: nil service")
	}
	return &Handler{log: log, svc: svc}, nil
}

// Register wires session routes onto the provided mux.
func (h *Handler) Register(mux *http.ServeMux) {
	mux.HandleFunc("/sessions/create", h.handleCreate)
	mux.HandleFunc("/sessions/list", h.handleList)
	mux.HandleFunc("/sessions/rename", h.handleRename)
	mux.HandleFunc("/sessions/move", h.handleMove)
	mux.HandleFunc("/sessions/delete", h.handleDelete)
	mux.HandleFunc("/sessions/records", h.handleRecords)
}

type createRequest struct {
	Title string `json:"title"`
}

type renameRequest struct {
	SessionID string `json:"session_id"`
	Title     string `json:"title"`
}

type moveRequest struct {
	SessionID  string `json:"session_id"`
	NewOrdinal int    `json:"new_ordinal"`
}

type deleteRequest struct {
	SessionID string `json:"session_id"`
}

type appendRequest struct {
	SessionID        string `json:"session_id"`
	MessageType      string `json:"message_type"`
	Content          string `json:"content"`
	ModelUsed        string `json:"model_used"`
	PromptTokens     int    `json:"prompt_tokens"`
	CompletionTokens int    `json:"completion_tokens"`
}

type sessionData struct {
	SessionID string `json:"session_id"`
	Title     string `json:"title"`
	Ordinal   int    `json:"ordinal"`
	CreatedAt string `json:"created_at"`
	UpdatedAt string `json:"updated_at"`
}

type recordData struct {
	RecordID         string `json:"record_id"`
	SessionID        string `json:"session_id"`
	MessageType      string `json:"message_type"`
	Content          string `json:"content"`
	ModelUsed        string `json:"model_used"`
	PromptTokens     int    `json:"prompt_tokens"`
	CompletionTokens int    `json:"completion_tokens"`
	CreatedAt        string `json:"created_at"`
}

const maxBodyBytes = 1 << 20

func (h *Handler) handleCreate(w http.ResponseWriter, r *http.Request) {
	userID, ok := h.requirePost(w, r)
	if !ok {
		return
	}

	var req createRequest
	if err := authapi.DecodeJSON(w, r, maxBodyBytes, &req); err != nil {
		authapi.WriteEnvelope(w, http.StatusBadRequest, false, "invalid request body", nil)
		return
	}

	sess, err := h.svc.Create(r.Context(), userID, req.Title)
	if err != nil {
		h.writeError(w, err)
		return
	}
	authapi.WriteEnvelope(w, http.StatusOK, true, "session created", toSessionData(sess))
}

func (h *Handler) handleList(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	userID, ok := authapi.SubjectFromContext(r.Context())
	if !ok {
		authapi.WriteEnvelope(w, http.StatusUnauthorized, false, "Invalid authentication credentials", nil)
		return
	}

	sessions, err := h.svc.List(r.Context(), userID)
	if err != nil {
		h.writeError(w, err)
		return
	}

	out := make([]sessionData, 0, len(sessions))
	for _, s := range sessions {
		out = append(out, toSessionData(s))
	}
	authapi.WriteEnvelope(w, http.StatusOK, true, "ok", out)
}

func (h *Handler) handleRename(w http.ResponseWriter, r *http.Request) {
	userID, ok := h.requirePost(w, r)
	if !ok {
		return
	}

	var req renameRequest
	if err := authapi.DecodeJSON(w, r, maxBodyBytes, &req); err != nil {
		authapi.WriteEnvelope(w, http.StatusBadRequest, false, "invalid request body", nil)
		return
	}

	if err := h.svc.Rename(r.Context(), userID, req.SessionID, req.Title); err != nil {
		h.writeError(w, err)
		return
	}
	authapi.WriteEnvelope(w, http.StatusOK, true, "session renamed", nil)
}

func (h *Handler) handleMove(w http.ResponseWriter, r *http.Request) {
	userID, ok := h.requirePost(w, r)
	if !ok {
		return
	}

	var req moveRequest
	if err := authapi.DecodeJSON(w, r, maxBodyBytes, &req); err != nil {
		authapi.WriteEnvelope(w, http.StatusBadRequest, false, "invalid request body", nil)
		return
	}

	if err := h.svc.Move(r.Context(), userID, req.SessionID, req.NewOrdinal); err != nil {
		h.writeError(w, err)
		return
	}
	authapi.WriteEnvelope(w, http.StatusOK, true, "session moved", nil)
}

func (h *Handler) handleDelete(w http.ResponseWriter, r *http.Request) {
	userID, ok := h.requirePost(w, r)
	if !ok {
		return
	}

	var req deleteRequest
	if err := authapi.DecodeJSON(w, r, maxBodyBytes, &req); err != nil {
		authapi.WriteEnvelope(w, http.StatusBadRequest, false, "invalid request body", nil)
		return
	}

	if err := h.svc.Delete(r.Context(), userID, req.SessionID); err != nil {
		h.writeError(w, err)
		return
	}
	authapi.WriteEnvelope(w, http.StatusOK, true, "session deleted", nil)
}

func (h *Handler) handleRecords(w http.ResponseWriter, r *http.Request) {
	userID, ok := authapi.SubjectFromContext(r.Context())
	if !ok {
		authapi.WriteEnvelope(w, http.StatusUnauthorized, false, "Invalid authentication credentials", nil)
		return
	}

	switch r.Method {
	case http.MethodGet:
		h.listRecords(w, r, userID)
	case http.MethodPost:
		h.appendRecord(w, r, userID)
	default:
		w.WriteHeader(http.StatusMethodNotAllowed)
	}
}

func (h *Handler) listRecords(w http.ResponseWriter, r *http.Request, userID string) {
	sessionID := r.URL.Query().Get("session_id")
	if sessionID == "" {
		authapi.WriteEnvelope(w, http.StatusBadRequest, false, "missing session_id", nil)
		return
	}

	recs, err := h.svc.Records(r.Context(), userID, sessionID)
	if err != nil {
		h.writeError(w, err)
		return
	}

	out := make([]recordData, 0, len(recs))
	for _, rec := range recs {
		out = append(out, recordData{
			RecordID:         rec.ID,
			SessionID:        rec.SessionID,
			MessageType:      rec.MessageType,
			Content:          rec.Content,
			ModelUsed:        rec.ModelUsed,
			PromptTokens:     rec.PromptTokens,
			CompletionTokens: rec.CompletionTokens,
			CreatedAt:        rec.CreatedAt.Format(time.RFC3339),
		})
	}
	authapi.WriteEnvelope(w, http.StatusOK, true, "ok", out)
}

func (h *Handler) appendRecord(w http.ResponseWriter, r *http.Request, userID string) {
	var req appendRequest
	if err := authapi.DecodeJSON(w, r, maxBodyBytes, &req); err != nil {
		authapi.WriteEnvelope(w, http.StatusBadRequest, false, "invalid request body", nil)
		return
	}

	rec, err := h.svc.Append(r.Context(), chat.AppendRecordInput{
		UserID:           userID,
		SessionID:        req.SessionID,
		MessageType:      req.MessageType,
		Content:          req.Content,
		ModelUsed:        req.ModelUsed,
		PromptTokens:     req.PromptTokens,
		CompletionTokens: req.CompletionTokens,
	})
	if err != nil {
		h.writeError(w, err)
		return
	}
	authapi.WriteEnvelope(w, http.StatusOK, true, "record added", recordData{
		RecordID:         rec.ID,
		SessionID:        rec.SessionID,
		MessageType:      rec.MessageType,
		Content:          rec.Content,
		ModelUsed:        rec.ModelUsed,
		PromptTokens:     rec.PromptTokens,
		CompletionTokens: rec.CompletionTokens,
		CreatedAt:        rec.CreatedAt.Format(time.RFC3339),
	})
}

// requirePost enforces POST and resolves the acting user.
func (h *Handler) requirePost(w http.ResponseWriter, r *http.Request) (string, bool) {
	if r.Method != http.MethodPost {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return "", false
	}
	userID, ok := authapi.SubjectFromContext(r.Context())
	if !ok {
		authapi.WriteEnvelope(w, http.StatusUnauthorized, false, "Invalid authentication credentials", nil)
		return "", false
	}
	return userID, true
}

// writeError maps chat errors to envelope responses. Ordinal range failures
// are caller input and get a precise message; everything else is generic.
func (h *Handler) writeError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, chat.ErrOrdinalOutOfRange):
		authapi.WriteEnvelope(w, http.StatusBadRequest, false, "invalid position", nil)
	case errors.Is(err, chat.ErrSessionNotFound):
		authapi.WriteEnvelope(w, http.StatusNotFound, false, "session not found", nil)
	case errors.Is(err, chat.ErrInvalidInput):
		authapi.WriteEnvelope(w, http.StatusBadRequest, false, "invalid input", nil)
	default:
		h.log.Error("chat.api.failed", "err", err)
		authapi.WriteEnvelope(w, http.StatusInternalServerError, false, "operation failed", nil)
	}
}

func toSessionData(s chat.Session) sessionData {
	return sessionData{
		SessionID: s.ID,
		Title:     s.Title,
		Ordinal:   s.Ordinal,
		CreatedAt: s.CreatedAt.Format(time.RFC3339),
		UpdatedAt: s.UpdatedAt.Format(time.RFC3339),
	}
}
