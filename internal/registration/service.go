package registration

import (
	"crypto/rand"
	"database/sql"
	"errors"
	"fmt"
	"math/big"
	"time"

	"github.com/google/uuid"

	"ms-registration/internal/logger"
	"ms-registration/internal/mailer"
	"ms-registration/internal/models"
)

const otpTTL = 5 * time.Minute

var (
	ErrAlreadyRegistered = errors.New("user already registered")
	ErrUserNotFound      = errors.New("user not found")
	ErrOTPExpired        = errors.New("otp expired")
	ErrOTPInvalid        = errors.New("invalid otp")
)

type UserDBLayer interface {
	GetUserByEmail(email string) (*models.User, error)
	GetUserByID(id string) (*models.User, error)
	CreateUser(user models.User) error
	SetOTP(user models.User) error
	CompleteRegistration(id string) error
	CountUsers() (int, error)
}

type TicketIssuer interface {
	IssueTicket(userID string) (*models.Ticket, error)
}

// EventPublisher streams completed registrations for downstream consumers.
// May be nil when Kafka is disabled.
type EventPublisher interface {
	PublishRegistrationCompleted(user models.User) error
}

type Service struct {
	DB      UserDBLayer
	Mail    mailer.Sender
	Tickets TicketIssuer
	Events  EventPublisher
	Logger  *logger.Logger
}

func NewService(db UserDBLayer, mail mailer.Sender, tickets TicketIssuer, events EventPublisher, log *logger.Logger) *Service {
	return &Service{DB: db, Mail: mail, Tickets: tickets, Events: events, Logger: log}
}

// Register creates or reuses the user record for an email, issues a fresh
// OTP valid for five minutes, and mails it. Exactly one email per call.
func (s *Service) Register(name, email string) error {
	user, err := s.DB.GetUserByEmail(email)
	if err != nil && !errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("failed to look up user: %w", err)
	}

	if user != nil && user.Registered {
		return ErrAlreadyRegistered
	}

	otp := generateOTP()
	expires := time.Now().Add(otpTTL)

	if user == nil {
		user = &models.User{
			ID:         uuid.NewString(),
			Name:       name,
			Email:      email,
			OTP:        otp,
			OTPExpires: expires,
			CreatedAt:  time.Now(),
		}
		if err := s.DB.CreateUser(*user); err != nil {
			return fmt.Errorf("failed to create user: %w", err)
		}
	} else {
		user.OTP = otp
		user.OTPExpires = expires
		if err := s.DB.SetOTP(*user); err != nil {
			return fmt.Errorf("failed to store otp: %w", err)
		}
	}

	if err := s.Mail.Send(email, mailer.OTPSubject, mailer.OTPBody(otp)); err != nil {
		return fmt.Errorf("failed to send otp mail: %w", err)
	}

	s.Logger.LogMail("OTP", email, "verification code sent")
	return nil
}

// Verify checks the submitted OTP and completes registration: the QR ticket
// is generated and mailed first, and only then are the OTP fields cleared
// and registered set, in one statement. A ticket or mail failure leaves the
// user unregistered with the OTP intact.
func (s *Service) Verify(email, otp string) (*models.User, error) {
	user, err := s.DB.GetUserByEmail(email)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to look up user: %w", err)
	}

	if user.OTPExpires.IsZero() || time.Now().After(user.OTPExpires) {
		return nil, ErrOTPExpired
	}
	if user.OTP != otp {
		return nil, ErrOTPInvalid
	}

	ticket, err := s.Tickets.IssueTicket(user.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to issue ticket: %w", err)
	}

	body := mailer.TicketBody(ticket.Link)
	if err := s.Mail.SendWithInlinePNG(email, mailer.TicketSubject, body, mailer.TicketCID, ticket.PNG); err != nil {
		return nil, fmt.Errorf("failed to send ticket mail: %w", err)
	}

	if err := s.DB.CompleteRegistration(user.ID); err != nil {
		return nil, fmt.Errorf("failed to complete registration: %w", err)
	}
	user.OTP = ""
	user.OTPExpires = time.Time{}
	user.Registered = true

	if s.Events != nil {
		if err := s.Events.PublishRegistrationCompleted(*user); err != nil {
			s.Logger.Warn("KAFKA", fmt.Sprintf("failed to publish registration event for %s: %v", user.ID, err))
		}
	}

	s.Logger.LogMail("TICKET", email, "QR ticket sent")
	return user, nil
}

// Lookup returns the public projection for an id, or nil when no user
// matches. OTP values never leave the service.
func (s *Service) Lookup(id string) (*models.PublicUser, error) {
	user, err := s.DB.GetUserByID(id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to look up user: %w", err)
	}
	pub := user.Public()
	return &pub, nil
}

func (s *Service) Count() (int, error) {
	return s.DB.CountUsers()
}

// generateOTP returns a uniformly random 6-digit code, zero-padded.
func generateOTP() string {
	n, err := rand.Int(rand.Reader, big.NewInt(1000000))
	if err != nil {
		return "000000"
	}
	return fmt.Sprintf("%06d", n.Int64())
}
