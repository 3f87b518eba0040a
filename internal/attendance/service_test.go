package attendance_test

import (
	"database/sql"
	"errors"
	"sync"
	"testing"

	"ms-registration/internal/attendance"
	"ms-registration/internal/logger"
	"ms-registration/internal/models"
)

// Mock implementations for testing

type MockUserDB struct {
	usersByEmail map[string]*models.User
	usersByID    map[string]*models.User
	shouldFailOn string
	errorMsg     string
}

func NewMockUserDB() *MockUserDB {
	return &MockUserDB{
		usersByEmail: make(map[string]*models.User),
		usersByID:    make(map[string]*models.User),
	}
}

func (m *MockUserDB) put(user models.User) {
	u := user
	m.usersByEmail[u.Email] = &u
	m.usersByID[u.ID] = &u
}

func (m *MockUserDB) GetUserByEmail(email string) (*models.User, error) {
	if m.shouldFailOn == "GetUserByEmail" {
		return nil, errors.New(m.errorMsg)
	}
	user, exists := m.usersByEmail[email]
	if !exists {
		return nil, sql.ErrNoRows
	}
	copied := *user
	return &copied, nil
}

func (m *MockUserDB) GetUserByID(id string) (*models.User, error) {
	if m.shouldFailOn == "GetUserByID" {
		return nil, errors.New(m.errorMsg)
	}
	user, exists := m.usersByID[id]
	if !exists {
		return nil, sql.ErrNoRows
	}
	copied := *user
	return &copied, nil
}

func (m *MockUserDB) CheckIn(id string) (int64, error) {
	if m.shouldFailOn == "CheckIn" {
		return 0, errors.New(m.errorMsg)
	}
	user, exists := m.usersByID[id]
	if !exists || user.Present {
		return 0, nil
	}
	user.Present = true
	return 1, nil
}

func (m *MockUserDB) SetAttendance(id string, wantsFood bool, mobile string) error {
	if m.shouldFailOn == "SetAttendance" {
		return errors.New(m.errorMsg)
	}
	user, exists := m.usersByID[id]
	if !exists {
		return sql.ErrNoRows
	}
	user.WantsFood = wantsFood
	user.Mobile = mobile
	return nil
}

func (m *MockUserDB) ListUsers() ([]models.User, error) {
	if m.shouldFailOn == "ListUsers" {
		return nil, errors.New(m.errorMsg)
	}
	users := make([]models.User, 0, len(m.usersByID))
	for _, user := range m.usersByID {
		users = append(users, *user)
	}
	return users, nil
}

type MockLock struct {
	held         map[string]string
	acquireFails bool
	denyAcquire  bool
	released     []string
	mu           sync.Mutex
}

func NewMockLock() *MockLock {
	return &MockLock{held: make(map[string]string)}
}

func (m *MockLock) Acquire(userID string) (bool, string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.acquireFails {
		return false, "", errors.New("redis down")
	}
	if m.denyAcquire {
		return false, "", nil
	}
	if _, exists := m.held[userID]; exists {
		return false, "", nil
	}
	m.held[userID] = "token-" + userID
	return true, "token-" + userID, nil
}

func (m *MockLock) Release(userID, token string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.held[userID] == token {
		delete(m.held, userID)
		m.released = append(m.released, userID)
	}
	return nil
}

type MockMailer struct {
	mu      sync.Mutex
	sent    []string
	failFor map[string]bool
}

func (m *MockMailer) Send(to, subject, htmlBody string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failFor[to] {
		return errors.New("smtp rejected " + to)
	}
	m.sent = append(m.sent, to)
	return nil
}

func (m *MockMailer) SendWithInlinePNG(to, subject, htmlBody, cid string, png []byte) error {
	return m.Send(to, subject, htmlBody)
}

func newService(db *MockUserDB, mail *MockMailer, lock attendance.CheckInLock) *attendance.Service {
	return attendance.NewService(db, mail, lock, nil, &logger.Logger{}, "https://example.com")
}

func TestCheckInSuccess(t *testing.T) {
	db := NewMockUserDB()
	db.put(models.User{ID: "user-1", Email: "alice@example.com", Registered: true})
	lock := NewMockLock()
	svc := newService(db, &MockMailer{}, lock)

	user, err := svc.CheckIn("user-1")
	if err != nil {
		t.Fatalf("Failed to check in: %v", err)
	}
	if !user.Present {
		t.Error("Expected returned user to be present")
	}
	if len(lock.released) != 1 {
		t.Errorf("Expected lock released once, got %d", len(lock.released))
	}
}

func TestCheckInUnknownUser(t *testing.T) {
	svc := newService(NewMockUserDB(), &MockMailer{}, nil)

	_, err := svc.CheckIn("no-such-id")
	if !errors.Is(err, attendance.ErrUserNotFound) {
		t.Errorf("Expected ErrUserNotFound, got %v", err)
	}
}

func TestCheckInTwiceRejected(t *testing.T) {
	db := NewMockUserDB()
	db.put(models.User{ID: "user-1", Email: "alice@example.com", Registered: true})
	svc := newService(db, &MockMailer{}, NewMockLock())

	if _, err := svc.CheckIn("user-1"); err != nil {
		t.Fatalf("Failed first check-in: %v", err)
	}

	_, err := svc.CheckIn("user-1")
	if !errors.Is(err, attendance.ErrAlreadyCheckedIn) {
		t.Errorf("Expected ErrAlreadyCheckedIn, got %v", err)
	}
}

func TestCheckInLockDeniedMapsToDuplicate(t *testing.T) {
	db := NewMockUserDB()
	db.put(models.User{ID: "user-1", Email: "alice@example.com"})
	lock := NewMockLock()
	lock.denyAcquire = true
	svc := newService(db, &MockMailer{}, lock)

	_, err := svc.CheckIn("user-1")
	if !errors.Is(err, attendance.ErrAlreadyCheckedIn) {
		t.Errorf("Expected ErrAlreadyCheckedIn when lock is held, got %v", err)
	}

	user, _ := db.GetUserByID("user-1")
	if user.Present {
		t.Error("Expected no database write when lock is denied")
	}
}

func TestCheckInProceedsWhenLockUnavailable(t *testing.T) {
	db := NewMockUserDB()
	db.put(models.User{ID: "user-1", Email: "alice@example.com"})
	lock := NewMockLock()
	lock.acquireFails = true
	svc := newService(db, &MockMailer{}, lock)

	user, err := svc.CheckIn("user-1")
	if err != nil {
		t.Fatalf("Expected check-in to proceed on lock error, got %v", err)
	}
	if !user.Present {
		t.Error("Expected user marked present")
	}
}

func TestSendConfirmationsReportsPartialFailure(t *testing.T) {
	db := NewMockUserDB()
	db.put(models.User{ID: "user-1", Name: "Alice", Email: "alice@example.com"})
	db.put(models.User{ID: "user-2", Name: "Bob", Email: "bob@example.com"})
	db.put(models.User{ID: "user-3", Name: "Carol", Email: "carol@example.com"})
	mail := &MockMailer{failFor: map[string]bool{"bob@example.com": true}}
	svc := newService(db, mail, nil)

	report, err := svc.SendConfirmations()
	if err != nil {
		t.Fatalf("Failed to broadcast: %v", err)
	}
	if report.Sent != 2 {
		t.Errorf("Expected 2 sent, got %d", report.Sent)
	}
	if len(report.Failed) != 1 || report.Failed[0] != "bob@example.com" {
		t.Errorf("Expected bob to fail, got %v", report.Failed)
	}
	if len(mail.sent) != 2 {
		t.Errorf("Expected 2 deliveries, got %d", len(mail.sent))
	}
}

func TestConfirmAttendance(t *testing.T) {
	db := NewMockUserDB()
	db.put(models.User{ID: "user-1", Email: "alice@example.com", Registered: true})
	svc := newService(db, &MockMailer{}, nil)

	err := svc.Confirm("alice@example.com", "0771234567")
	if err != nil {
		t.Fatalf("Failed to confirm: %v", err)
	}

	user, _ := db.GetUserByEmail("alice@example.com")
	if !user.WantsFood {
		t.Error("Expected wantsFood set")
	}
	if user.Mobile != "0771234567" {
		t.Errorf("Expected mobile stored, got %s", user.Mobile)
	}
}

func TestConfirmRejectsBadMobile(t *testing.T) {
	db := NewMockUserDB()
	db.put(models.User{ID: "user-1", Email: "alice@example.com", Registered: true})
	svc := newService(db, &MockMailer{}, nil)

	for _, mobile := range []string{"", "123", "077123456789"} {
		err := svc.Confirm("alice@example.com", mobile)
		if !errors.Is(err, attendance.ErrBadMobile) {
			t.Errorf("Expected ErrBadMobile for %q, got %v", mobile, err)
		}
	}
}

func TestConfirmRejectsUnverifiedUser(t *testing.T) {
	db := NewMockUserDB()
	db.put(models.User{ID: "user-1", Email: "pending@example.com", OTP: "123456"})
	svc := newService(db, &MockMailer{}, nil)

	err := svc.Confirm("pending@example.com", "0771234567")
	if !errors.Is(err, attendance.ErrNotRegistered) {
		t.Errorf("Expected ErrNotRegistered, got %v", err)
	}
}

func TestConfirmUnknownUser(t *testing.T) {
	svc := newService(NewMockUserDB(), &MockMailer{}, nil)

	err := svc.Confirm("ghost@example.com", "0771234567")
	if !errors.Is(err, attendance.ErrUserNotFound) {
		t.Errorf("Expected ErrUserNotFound, got %v", err)
	}
}

func TestReconfirmOverwritesMobile(t *testing.T) {
	db := NewMockUserDB()
	db.put(models.User{ID: "user-1", Email: "alice@example.com", Registered: true})
	svc := newService(db, &MockMailer{}, nil)

	if err := svc.Confirm("alice@example.com", "0771111111"); err != nil {
		t.Fatalf("Failed first confirm: %v", err)
	}
	if err := svc.Confirm("alice@example.com", "0772222222"); err != nil {
		t.Fatalf("Failed second confirm: %v", err)
	}

	user, _ := db.GetUserByEmail("alice@example.com")
	if user.Mobile != "0772222222" {
		t.Errorf("Expected latest mobile stored, got %s", user.Mobile)
	}
}

func TestCancelAttendance(t *testing.T) {
	db := NewMockUserDB()
	db.put(models.User{
		ID: "user-1", Email: "alice@example.com",
		Registered: true, WantsFood: true, Mobile: "0771234567",
	})
	svc := newService(db, &MockMailer{}, nil)

	if err := svc.Cancel("alice@example.com"); err != nil {
		t.Fatalf("Failed to cancel: %v", err)
	}

	user, _ := db.GetUserByEmail("alice@example.com")
	if user.WantsFood {
		t.Error("Expected wantsFood cleared")
	}
	if user.Mobile != "" {
		t.Errorf("Expected mobile cleared, got %s", user.Mobile)
	}
	if !user.Registered {
		t.Error("Expected registration to survive cancellation")
	}
}

func TestCancelRejectsUnregistered(t *testing.T) {
	db := NewMockUserDB()
	db.put(models.User{ID: "user-1", Email: "pending@example.com"})
	svc := newService(db, &MockMailer{}, nil)

	err := svc.Cancel("pending@example.com")
	if !errors.Is(err, attendance.ErrNotRegistered) {
		t.Errorf("Expected ErrNotRegistered, got %v", err)
	}
}

func TestConfirmedFlag(t *testing.T) {
	db := NewMockUserDB()
	db.put(models.User{ID: "user-1", Email: "alice@example.com", Registered: true, WantsFood: true})
	svc := newService(db, &MockMailer{}, nil)

	confirmed, err := svc.Confirmed("alice@example.com")
	if err != nil {
		t.Fatalf("Failed to read flag: %v", err)
	}
	if !confirmed {
		t.Error("Expected confirmed true")
	}

	_, err = svc.Confirmed("ghost@example.com")
	if !errors.Is(err, attendance.ErrUserNotFound) {
		t.Errorf("Expected ErrUserNotFound, got %v", err)
	}
}
