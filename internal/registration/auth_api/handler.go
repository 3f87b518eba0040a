package auth_api

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"

	"ms-registration/internal/attendance"
	"ms-registration/internal/logger"
	"ms-registration/internal/registration"
	"ms-registration/internal/utils"
)

// Handler serves the /api/auth surface: registration, OTP verification,
// lookups and the attendance-confirmation endpoints.
type Handler struct {
	Registration *registration.Service
	Attendance   *attendance.Service
	Logger       *logger.Logger
}

func NewHandler(reg *registration.Service, att *attendance.Service, log *logger.Logger) *Handler {
	return &Handler{Registration: reg, Attendance: att, Logger: log}
}

func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Route("/api/auth", func(r chi.Router) {
		r.Post("/register", h.Register)
		r.Post("/verify", h.Verify)
		r.Get("/user", h.GetUser)
		r.Get("/get-users-length", h.GetUsersLength)
		r.Post("/send-confirmation", h.SendConfirmation)
		r.Post("/confirm-attendance/{email}/{mobile}", h.ConfirmAttendance)
		r.Post("/cancel-attendance/{email}", h.CancelAttendance)
		r.Post("/verify-confirmation/{email}", h.VerifyConfirmation)
	})
}

func (h *Handler) Register(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Name  string `json:"name"`
		Email string `json:"email"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.Logger.Error("API", fmt.Sprintf("Register: failed to decode request body: %v", err))
		utils.Message(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if req.Email == "" {
		utils.Message(w, http.StatusBadRequest, "Email is required")
		return
	}

	err := h.Registration.Register(req.Name, req.Email)
	if err != nil {
		if errors.Is(err, registration.ErrAlreadyRegistered) {
			utils.Message(w, http.StatusBadRequest, "User already registered. Please check your email")
			return
		}
		h.Logger.Error("API", fmt.Sprintf("Register: %v", err))
		utils.ServerError(w, err)
		return
	}

	utils.Message(w, http.StatusOK, "OTP sent successfully. Verify OTP to complete registration.")
}

func (h *Handler) Verify(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Email string `json:"email"`
		OTP   string `json:"otp"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.Logger.Error("API", fmt.Sprintf("Verify: failed to decode request body: %v", err))
		utils.Message(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	user, err := h.Registration.Verify(req.Email, req.OTP)
	if err != nil {
		switch {
		case errors.Is(err, registration.ErrUserNotFound):
			utils.Message(w, http.StatusBadRequest, "User not found")
		case errors.Is(err, registration.ErrOTPExpired):
			utils.Message(w, http.StatusBadRequest, "OTP expired. Please request a new one.")
		case errors.Is(err, registration.ErrOTPInvalid):
			utils.Message(w, http.StatusBadRequest, "Invalid OTP")
		default:
			h.Logger.Error("API", fmt.Sprintf("Verify: %v", err))
			utils.ServerError(w, err)
		}
		return
	}

	utils.WriteJSON(w, http.StatusOK, map[string]interface{}{
		"message": "OTP verified. Registration complete. QR code sent.",
		"data": map[string]string{
			"id":    user.ID,
			"email": user.Email,
		},
	})
}

// GetUser returns the public projection, or a bare [] when the id is
// unknown (legacy frontend contract).
func (h *Handler) GetUser(w http.ResponseWriter, r *http.Request) {
	id := r.URL.Query().Get("id")

	user, err := h.Registration.Lookup(id)
	if err != nil {
		h.Logger.Error("API", fmt.Sprintf("GetUser: %v", err))
		utils.ServerError(w, err)
		return
	}
	if user == nil {
		utils.WriteJSON(w, http.StatusOK, []interface{}{})
		return
	}

	utils.WriteJSON(w, http.StatusOK, user)
}

func (h *Handler) GetUsersLength(w http.ResponseWriter, r *http.Request) {
	length, err := h.Registration.Count()
	if err != nil {
		h.Logger.Error("API", fmt.Sprintf("GetUsersLength: %v", err))
		utils.ServerError(w, err)
		return
	}
	utils.WriteJSON(w, http.StatusOK, map[string]int{"length": length})
}

func (h *Handler) SendConfirmation(w http.ResponseWriter, r *http.Request) {
	report, err := h.Attendance.SendConfirmations()
	if err != nil {
		h.Logger.Error("API", fmt.Sprintf("SendConfirmation: %v", err))
		utils.ServerError(w, err)
		return
	}

	utils.WriteJSON(w, http.StatusOK, map[string]interface{}{
		"message": "Confirmation emails dispatched",
		"sent":    report.Sent,
		"failed":  report.Failed,
	})
}

func (h *Handler) ConfirmAttendance(w http.ResponseWriter, r *http.Request) {
	email := chi.URLParam(r, "email")
	mobile := chi.URLParam(r, "mobile")

	err := h.Attendance.Confirm(email, mobile)
	if err != nil {
		switch {
		case errors.Is(err, attendance.ErrBadMobile):
			http.Error(w, "Mobile number must be exactly 10 characters", http.StatusBadRequest)
		case errors.Is(err, attendance.ErrUserNotFound), errors.Is(err, attendance.ErrNotRegistered):
			http.Error(w, "User not found or not registered", http.StatusNotFound)
		default:
			h.Logger.Error("API", fmt.Sprintf("ConfirmAttendance: %v", err))
			utils.ServerError(w, err)
		}
		return
	}

	w.WriteHeader(http.StatusOK)
	w.Write([]byte("Attendance confirmed"))
}

func (h *Handler) CancelAttendance(w http.ResponseWriter, r *http.Request) {
	email := chi.URLParam(r, "email")

	err := h.Attendance.Cancel(email)
	if err != nil {
		switch {
		case errors.Is(err, attendance.ErrUserNotFound), errors.Is(err, attendance.ErrNotRegistered):
			http.Error(w, "User not found or not registered", http.StatusNotFound)
		default:
			h.Logger.Error("API", fmt.Sprintf("CancelAttendance: %v", err))
			utils.ServerError(w, err)
		}
		return
	}

	w.WriteHeader(http.StatusOK)
	w.Write([]byte("Attendance cancelled"))
}

func (h *Handler) VerifyConfirmation(w http.ResponseWriter, r *http.Request) {
	email := chi.URLParam(r, "email")

	confirmed, err := h.Attendance.Confirmed(email)
	if err != nil {
		if errors.Is(err, attendance.ErrUserNotFound) {
			utils.Message(w, http.StatusNotFound, "User not Found")
			return
		}
		h.Logger.Error("API", fmt.Sprintf("VerifyConfirmation: %v", err))
		utils.ServerError(w, err)
		return
	}

	utils.WriteJSON(w, http.StatusOK, map[string]bool{"confirmed": confirmed})
}
