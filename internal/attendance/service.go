package attendance

import (
	"database/sql"
	"errors"
	"fmt"
	"sync"

	"ms-registration/internal/logger"
	"ms-registration/internal/mailer"
	"ms-registration/internal/models"
)

const broadcastWorkers = 4

var (
	ErrUserNotFound     = errors.New("user not found")
	ErrAlreadyCheckedIn = errors.New("duplicate entry: already marked present")
	ErrNotRegistered    = errors.New("user has not completed registration")
	ErrBadMobile        = errors.New("mobile number must be exactly 10 characters")
)

type UserDBLayer interface {
	GetUserByEmail(email string) (*models.User, error)
	GetUserByID(id string) (*models.User, error)
	CheckIn(id string) (int64, error)
	SetAttendance(id string, wantsFood bool, mobile string) error
	ListUsers() ([]models.User, error)
}

// CheckInLock guards a single user id against concurrent check-in attempts.
// May be nil when Redis is not deployed; the conditional update still holds.
type CheckInLock interface {
	Acquire(userID string) (bool, string, error)
	Release(userID, token string) error
}

type EventPublisher interface {
	PublishCheckedIn(user models.User) error
}

// BroadcastReport summarizes a confirmation fan-out. A failed recipient
// never aborts delivery to the rest.
type BroadcastReport struct {
	Sent   int      `json:"sent"`
	Failed []string `json:"failed"`
}

type Service struct {
	DB          UserDBLayer
	Mail        mailer.Sender
	Lock        CheckInLock
	Events      EventPublisher
	Logger      *logger.Logger
	FrontendURL string
}

func NewService(db UserDBLayer, mail mailer.Sender, lock CheckInLock, events EventPublisher, log *logger.Logger, frontendURL string) *Service {
	return &Service{DB: db, Mail: mail, Lock: lock, Events: events, Logger: log, FrontendURL: frontendURL}
}

// CheckIn marks a user present exactly once. The present flag never goes
// back to false.
func (s *Service) CheckIn(id string) (*models.User, error) {
	if s.Lock != nil {
		ok, token, err := s.Lock.Acquire(id)
		if err != nil {
			s.Logger.Warn("REDIS", fmt.Sprintf("check-in lock unavailable for %s: %v", id, err))
		} else if !ok {
			return nil, ErrAlreadyCheckedIn
		} else {
			defer func() {
				if err := s.Lock.Release(id, token); err != nil {
					s.Logger.Warn("REDIS", fmt.Sprintf("failed to release check-in lock for %s: %v", id, err))
				}
			}()
		}
	}

	rows, err := s.DB.CheckIn(id)
	if err != nil {
		return nil, fmt.Errorf("failed to check in user %s: %w", id, err)
	}

	if rows == 0 {
		// Either no such user or a prior check-in won; one read decides.
		if _, err := s.DB.GetUserByID(id); err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return nil, ErrUserNotFound
			}
			return nil, fmt.Errorf("failed to look up user %s: %w", id, err)
		}
		return nil, ErrAlreadyCheckedIn
	}

	user, err := s.DB.GetUserByID(id)
	if err != nil {
		return nil, fmt.Errorf("failed to reload user %s: %w", id, err)
	}

	if s.Events != nil {
		if err := s.Events.PublishCheckedIn(*user); err != nil {
			s.Logger.Warn("KAFKA", fmt.Sprintf("failed to publish check-in event for %s: %v", id, err))
		}
	}

	s.Logger.Info("ATTENDANCE", fmt.Sprintf("user %s checked in", id))
	return user, nil
}

// SendConfirmations mails every user a personalized confirmation link
// through a bounded worker pool. Failures are collected, not fatal.
func (s *Service) SendConfirmations() (*BroadcastReport, error) {
	users, err := s.DB.ListUsers()
	if err != nil {
		return nil, fmt.Errorf("failed to list users: %w", err)
	}

	var (
		mu     sync.Mutex
		report BroadcastReport
		wg     sync.WaitGroup
	)

	jobs := make(chan models.User)
	for i := 0; i < broadcastWorkers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for user := range jobs {
				link := fmt.Sprintf("%s/confirm?id=%s", s.FrontendURL, user.ID)
				body := mailer.ConfirmationBody(user.Name, link)
				err := s.Mail.Send(user.Email, "Confirm your attendance", body)

				mu.Lock()
				if err != nil {
					report.Failed = append(report.Failed, user.Email)
					s.Logger.Error("MAIL", fmt.Sprintf("confirmation to %s failed: %v", user.Email, err))
				} else {
					report.Sent++
				}
				mu.Unlock()
			}
		}()
	}

	for _, user := range users {
		jobs <- user
	}
	close(jobs)
	wg.Wait()

	s.Logger.Info("ATTENDANCE", fmt.Sprintf("confirmation broadcast: %d sent, %d failed", report.Sent, len(report.Failed)))
	return &report, nil
}

// Confirm records intent-to-eat for a registered user along with a contact
// number. Only users who completed verification may confirm; re-confirming
// overwrites the stored number.
func (s *Service) Confirm(email, mobile string) error {
	if len(mobile) != 10 {
		return ErrBadMobile
	}

	user, err := s.DB.GetUserByEmail(email)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return ErrUserNotFound
		}
		return fmt.Errorf("failed to look up user: %w", err)
	}

	if user.OTP != "" || !user.Registered {
		return ErrNotRegistered
	}

	if err := s.DB.SetAttendance(user.ID, true, mobile); err != nil {
		return fmt.Errorf("failed to store confirmation: %w", err)
	}
	return nil
}

// Cancel clears the intent-to-eat flag and the contact number. Registration
// itself is never undone.
func (s *Service) Cancel(email string) error {
	user, err := s.DB.GetUserByEmail(email)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return ErrUserNotFound
		}
		return fmt.Errorf("failed to look up user: %w", err)
	}

	if !user.Registered {
		return ErrNotRegistered
	}

	if err := s.DB.SetAttendance(user.ID, false, ""); err != nil {
		return fmt.Errorf("failed to store cancellation: %w", err)
	}
	return nil
}

// Confirmed reports the current intent-to-eat flag for an email.
func (s *Service) Confirmed(email string) (bool, error) {
	user, err := s.DB.GetUserByEmail(email)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return false, ErrUserNotFound
		}
		return false, fmt.Errorf("failed to look up user: %w", err)
	}
	return user.WantsFood, nil
}
