package http

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"daily-challenge-service/internal/app"
	"daily-challenge-service/internal/domain"
)

const maxBodyBytes = 64 << 10

// Handler serves the daily challenge REST endpoints.
type Handler struct {
	service      *app.DailyChallengeService
	defaultLimit int
	logger       *slog.Logger
}

func NewHandler(service *app.DailyChallengeService, defaultLimit int, logger *slog.Logger) *Handler {
	if logger == nil {
		logger = slog.Default()
	}
	return &Handler{service: service, defaultLimit: defaultLimit, logger: logger}
}

type attemptRequest struct {
	Date    string          `json:"date"`
	Type    string          `json:"type"`
	Answers []domain.Answer `json:"answers"`
}

type errorResponse struct {
	Message string `json:"message"`
}

type alreadySubmittedResponse struct {
	Message          string  `json:"message"`
	AlreadySubmitted bool    `json:"alreadySubmitted"`
	Score            float64 `json:"score"`
}

type historyResponse struct {
	History []domain.HistoryEntry `json:"history"`
}

type resetResponse struct {
	Date    string `json:"date"`
	Type    string `json:"type,omitempty"`
	Deleted int64  `json:"deleted"`
}

func (h *Handler) Problems(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	set, err := h.service.GetProblems(r.Context(), q.Get("date"), domain.ParseChallengeType(q.Get("type")))
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, set)
}

func (h *Handler) ScoreOnly(w http.ResponseWriter, r *http.Request) {
	var req attemptRequest
	if !decodeBody(w, r, &req) {
		return
	}
	result, err := h.service.ScorePreview(r.Context(), req.Date, domain.ParseChallengeType(req.Type), req.Answers)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

func (h *Handler) Submit(w http.ResponseWriter, r *http.Request) {
	id, ok := IdentityFrom(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "missing identity")
		return
	}
	var req attemptRequest
	if !decodeBody(w, r, &req) {
		return
	}
	result, err := h.service.Score(r.Context(), app.Attempt{
		Date:        req.Date,
		Type:        domain.ParseChallengeType(req.Type),
		UserID:      id.UserID,
		DisplayName: id.DisplayName,
		Answers:     req.Answers,
	})
	if err != nil {
		h.fail(w, r, err, slog.String("user", id.UserID))
		return
	}
	writeJSON(w, http.StatusOK, result)
}

func (h *Handler) Leaderboard(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	limit := h.defaultLimit
	// non-numeric limits fall back to the default
	if n, err := strconv.Atoi(q.Get("limit")); err == nil && n != 0 {
		limit = n
	}
	lb, err := h.service.Leaderboard(r.Context(), q.Get("date"), domain.ParseChallengeType(q.Get("type")), limit)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, lb)
}

func (h *Handler) Average(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	avg, err := h.service.DailyAverage(r.Context(), q.Get("date"), domain.ParseChallengeType(q.Get("type")))
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, avg)
}

func (h *Handler) Me(w http.ResponseWriter, r *http.Request) {
	id, ok := IdentityFrom(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "missing identity")
		return
	}
	q := r.URL.Query()
	mine, err := h.service.MySubmission(r.Context(), q.Get("date"), domain.ParseChallengeType(q.Get("type")), id.UserID)
	if err != nil {
		h.fail(w, r, err, slog.String("user", id.UserID))
		return
	}
	writeJSON(w, http.StatusOK, mine)
}

func (h *Handler) History(w http.ResponseWriter, r *http.Request) {
	id, ok := IdentityFrom(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "missing identity")
		return
	}
	q := r.URL.Query()
	entries, err := h.service.History(r.Context(), id.UserID, q.Get("from"), q.Get("to"), optionalType(q.Get("type")))
	if err != nil {
		h.fail(w, r, err, slog.String("user", id.UserID))
		return
	}
	writeJSON(w, http.StatusOK, historyResponse{History: entries})
}

func (h *Handler) Reset(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	// deleting is destructive, so a mistyped type must not fall back to division
	if raw := q.Get("type"); raw != "" && !domain.Known(raw) {
		writeError(w, http.StatusBadRequest, "unknown challenge type "+strconv.Quote(raw))
		return
	}
	t := optionalType(q.Get("type"))
	date := q.Get("date")
	if date == "" {
		date = h.service.Today()
	}
	deleted, err := h.service.ResetDay(r.Context(), date, t)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	resp := resetResponse{Date: date, Deleted: deleted}
	if t != nil {
		resp.Type = t.String()
	}
	if id, ok := IdentityFrom(r.Context()); ok {
		h.logger.Info("daily challenge reset",
			slog.String("date", date), slog.String("type", resp.Type),
			slog.String("user", id.UserID), slog.Int64("deleted", deleted))
	}
	writeJSON(w, http.StatusOK, resp)
}

// fail maps service errors onto status codes.
func (h *Handler) fail(w http.ResponseWriter, r *http.Request, err error, attrs ...any) {
	if already, ok := domain.AsAlreadySubmitted(err); ok {
		writeJSON(w, http.StatusForbidden, alreadySubmittedResponse{
			Message:          "already submitted today's challenge",
			AlreadySubmitted: true,
			Score:            already.ExistingScore,
		})
		return
	}
	if domain.IsValidation(err) {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if errors.Is(err, domain.ErrBoardNotFound) {
		writeError(w, http.StatusNotFound, err.Error())
		return
	}
	attrs = append(attrs, slog.String("path", r.URL.Path), slog.String("error", err.Error()))
	h.logger.Error("request failed", attrs...)
	writeError(w, http.StatusInternalServerError, "internal error")
}

func optionalType(raw string) *domain.ChallengeType {
	if raw == "" {
		return nil
	}
	t := domain.ParseChallengeType(raw)
	return &t
}

func decodeBody(w http.ResponseWriter, r *http.Request, dst any) bool {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err := dec.Decode(dst); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return false
	}
	return true
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, errorResponse{Message: message})
}
