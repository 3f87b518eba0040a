package event_api

import (
	"database/sql"
	"errors"
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"

	"ms-registration/internal/attendance"
	"ms-registration/internal/logger"
	"ms-registration/internal/models"
	tickets "ms-registration/internal/tickets/service"
	"ms-registration/internal/utils"
)

type UserGetter interface {
	GetUserByID(id string) (*models.User, error)
}

// Handler serves the /api/events surface: venue check-in and the printable
// pass download.
type Handler struct {
	Attendance *attendance.Service
	Tickets    *tickets.TicketService
	Users      UserGetter
	Logger     *logger.Logger
}

func NewHandler(att *attendance.Service, tix *tickets.TicketService, users UserGetter, log *logger.Logger) *Handler {
	return &Handler{Attendance: att, Tickets: tix, Users: users, Logger: log}
}

func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Route("/api/events", func(r chi.Router) {
		r.Put("/check-in/{id}", h.CheckIn)
		r.Get("/ticket/{id}", h.DownloadPass)
	})
}

func (h *Handler) CheckIn(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	h.Logger.Info("API", fmt.Sprintf("CheckIn: id=%s", id))

	user, err := h.Attendance.CheckIn(id)
	if err != nil {
		switch {
		case errors.Is(err, attendance.ErrUserNotFound):
			utils.Message(w, http.StatusNotFound, "User not Found")
		case errors.Is(err, attendance.ErrAlreadyCheckedIn):
			utils.Message(w, http.StatusBadRequest, "Duplicate Entry : Already marked present")
		default:
			h.Logger.Error("API", fmt.Sprintf("CheckIn: %v", err))
			utils.WriteJSON(w, http.StatusInternalServerError, map[string]string{
				"message": "Internal Server Error",
				"error":   err.Error(),
			})
		}
		return
	}

	utils.WriteJSON(w, http.StatusOK, map[string]interface{}{
		"message": "User marked as present",
		"user":    user,
	})
}

// DownloadPass streams the printable PDF pass for a registered user.
func (h *Handler) DownloadPass(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	user, err := h.Users.GetUserByID(id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			utils.Message(w, http.StatusNotFound, "User not Found")
			return
		}
		h.Logger.Error("API", fmt.Sprintf("DownloadPass: %v", err))
		utils.ServerError(w, err)
		return
	}
	if !user.Registered {
		utils.Message(w, http.StatusBadRequest, "User has not completed registration")
		return
	}

	pdfBytes, err := h.Tickets.RenderPass(*user)
	if err != nil {
		h.Logger.Error("API", fmt.Sprintf("DownloadPass: %v", err))
		utils.ServerError(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/pdf")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", "pass-"+user.ID+".pdf"))
	w.WriteHeader(http.StatusOK)
	w.Write(pdfBytes)
}
