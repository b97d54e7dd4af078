package http

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"

	"school-merit-service/internal/app"
	"school-merit-service/internal/domain"
)

// Handler exposes the badge and quiz use cases as a JSON API. Core
// rejections arrive as typed domain errors and map onto stable status
// codes; the UI surfaces them as user-facing messages.
type Handler struct {
	merits      *app.MeritService
	submissions *app.SubmissionService
}

func NewHandler(merits *app.MeritService, submissions *app.SubmissionService) *Handler {
	return &Handler{merits: merits, submissions: submissions}
}

// Register wires the API routes onto the mux.
func (h *Handler) Register(mux *http.ServeMux) {
	mux.HandleFunc("GET /api/students/{id}/badges", h.listBadges)
	mux.HandleFunc("POST /api/students/{id}/badges", h.grantBadge)
	mux.HandleFunc("DELETE /api/students/{id}/badges/{type}", h.revokeBadge)
	mux.HandleFunc("GET /api/quizzes/{id}", h.getQuiz)
	mux.HandleFunc("POST /api/quizzes", h.createQuiz)
	mux.HandleFunc("POST /api/quizzes/{id}/submissions", h.submitQuiz)
}

type grantRequest struct {
	BadgeType string `json:"badgeType"`
	GrantedBy string `json:"grantedBy"`
}

type badgesResponse struct {
	StudentID string         `json:"studentId"`
	Active    []domain.Badge `json:"active"`
	Count     int            `json:"count"`
}

type createQuizRequest struct {
	ID          string            `json:"id"`
	Title       string            `json:"title"`
	Description string            `json:"description"`
	AuthorID    string            `json:"authorId"`
	AuthorName  string            `json:"authorName"`
	Questions   []domain.Question `json:"questions"`
}

type submitRequest struct {
	StudentID   string      `json:"studentId"`
	StudentName string      `json:"studentName"`
	Answers     map[int]int `json:"answers"`
}

func (h *Handler) listBadges(w http.ResponseWriter, r *http.Request) {
	studentID := r.PathValue("id")
	active, err := h.merits.ActiveBadges(r.Context(), studentID)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, badgesResponse{StudentID: studentID, Active: active, Count: len(active)})
}

func (h *Handler) grantBadge(w http.ResponseWriter, r *http.Request) {
	var req grantRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeMessage(w, http.StatusBadRequest, "invalid grant payload")
		return
	}
	badge, err := h.merits.Grant(r.Context(), r.PathValue("id"), req.BadgeType, req.GrantedBy)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, badge)
}

func (h *Handler) revokeBadge(w http.ResponseWriter, r *http.Request) {
	if err := h.merits.Revoke(r.Context(), r.PathValue("id"), r.PathValue("type")); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) getQuiz(w http.ResponseWriter, r *http.Request) {
	quiz, err := h.submissions.Quiz(r.Context(), r.PathValue("id"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, quiz)
}

func (h *Handler) createQuiz(w http.ResponseWriter, r *http.Request) {
	var req createQuizRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeMessage(w, http.StatusBadRequest, "invalid quiz payload")
		return
	}
	quiz, err := h.submissions.CreateQuiz(r.Context(), req.ID, req.Title, req.Description, req.AuthorID, req.AuthorName, req.Questions)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, quiz)
}

func (h *Handler) submitQuiz(w http.ResponseWriter, r *http.Request) {
	var req submitRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeMessage(w, http.StatusBadRequest, "invalid submission payload")
		return
	}
	response, err := h.submissions.Submit(r.Context(), r.PathValue("id"), req.StudentID, req.StudentName, req.Answers)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, response)
}

func writeError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, domain.ErrQuizNotFound), errors.Is(err, domain.ErrStudentNotFound):
		writeMessage(w, http.StatusNotFound, err.Error())
	case errors.Is(err, domain.ErrQuizExpired):
		writeMessage(w, http.StatusGone, err.Error())
	case errors.Is(err, domain.ErrAlreadySubmitted):
		writeMessage(w, http.StatusConflict, err.Error())
	case errors.Is(err, domain.ErrIncompleteSubmission),
		errors.Is(err, domain.ErrUnknownBadgeType),
		errors.Is(err, domain.ErrInvalidQuiz):
		writeMessage(w, http.StatusBadRequest, err.Error())
	default:
		log.Printf("internal error: %v", err)
		writeMessage(w, http.StatusInternalServerError, "internal error")
	}
}

func writeMessage(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		log.Printf("write response: %v", err)
	}
}
