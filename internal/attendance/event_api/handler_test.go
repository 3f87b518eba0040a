package event_api_test

import (
	"database/sql"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"

	"ms-registration/internal/attendance"
	"ms-registration/internal/attendance/event_api"
	"ms-registration/internal/logger"
	"ms-registration/internal/models"
)

type stubUserDB struct {
	usersByID map[string]*models.User
}

func newStubUserDB() *stubUserDB {
	return &stubUserDB{usersByID: make(map[string]*models.User)}
}

func (s *stubUserDB) put(user models.User) {
	u := user
	s.usersByID[u.ID] = &u
}

func (s *stubUserDB) GetUserByEmail(email string) (*models.User, error) {
	for _, user := range s.usersByID {
		if user.Email == email {
			copied := *user
			return &copied, nil
		}
	}
	return nil, sql.ErrNoRows
}

func (s *stubUserDB) GetUserByID(id string) (*models.User, error) {
	user, exists := s.usersByID[id]
	if !exists {
		return nil, sql.ErrNoRows
	}
	copied := *user
	return &copied, nil
}

func (s *stubUserDB) CheckIn(id string) (int64, error) {
	user, exists := s.usersByID[id]
	if !exists || user.Present {
		return 0, nil
	}
	user.Present = true
	return 1, nil
}

func (s *stubUserDB) SetAttendance(id string, wantsFood bool, mobile string) error {
	user, exists := s.usersByID[id]
	if !exists {
		return sql.ErrNoRows
	}
	user.WantsFood = wantsFood
	user.Mobile = mobile
	return nil
}

func (s *stubUserDB) ListUsers() ([]models.User, error) {
	users := make([]models.User, 0, len(s.usersByID))
	for _, user := range s.usersByID {
		users = append(users, *user)
	}
	return users, nil
}

type stubMailer struct{}

func (s *stubMailer) Send(to, subject, htmlBody string) error { return nil }
func (s *stubMailer) SendWithInlinePNG(to, subject, htmlBody, cid string, png []byte) error {
	return nil
}

func setupRouter(db *stubUserDB) *chi.Mux {
	log := &logger.Logger{}
	attService := attendance.NewService(db, &stubMailer{}, nil, nil, log, "https://example.com")

	handler := event_api.NewHandler(attService, nil, db, log)
	r := chi.NewRouter()
	handler.RegisterRoutes(r)
	return r
}

func putCheckIn(r http.Handler, id string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPut, "/api/events/check-in/"+id, nil)
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	return rec
}

func TestCheckInEndpoint(t *testing.T) {
	db := newStubUserDB()
	db.put(models.User{ID: "user-1", Name: "Alice", Email: "alice@example.com", Registered: true})
	r := setupRouter(db)

	rec := putCheckIn(r, "user-1")

	assert.Equal(t, http.StatusOK, rec.Code)

	var resp struct {
		Message string      `json:"message"`
		User    models.User `json:"user"`
	}
	err := json.Unmarshal(rec.Body.Bytes(), &resp)
	assert.NoError(t, err)
	assert.Equal(t, "User marked as present", resp.Message)
	assert.True(t, resp.User.Present)
}

func TestCheckInEndpointUnknownUser(t *testing.T) {
	r := setupRouter(newStubUserDB())

	rec := putCheckIn(r, "ghost")

	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Contains(t, rec.Body.String(), "User not Found")
}

func TestCheckInEndpointDuplicate(t *testing.T) {
	db := newStubUserDB()
	db.put(models.User{ID: "user-1", Email: "alice@example.com", Registered: true})
	r := setupRouter(db)

	rec := putCheckIn(r, "user-1")
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = putCheckIn(r, "user-1")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "Duplicate Entry : Already marked present")
}

func TestDownloadPassUnknownUser(t *testing.T) {
	r := setupRouter(newStubUserDB())

	req := httptest.NewRequest(http.MethodGet, "/api/events/ticket/ghost", nil)
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Contains(t, rec.Body.String(), "User not Found")
}

func TestDownloadPassUnregisteredUser(t *testing.T) {
	db := newStubUserDB()
	db.put(models.User{ID: "user-1", Email: "pending@example.com"})
	r := setupRouter(db)

	req := httptest.NewRequest(http.MethodGet, "/api/events/ticket/user-1", nil)
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "User has not completed registration")
}
