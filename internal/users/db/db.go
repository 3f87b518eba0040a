package db

import (
	"context"

	"github.com/uptrace/bun"

	"ms-registration/internal/models"
)

// DB is the persistent store for registrant records.
type DB struct {
	Bun *bun.DB
}

func (d *DB) GetUserByEmail(email string) (*models.User, error) {
	var user models.User
	err := d.Bun.NewSelect().
		Model(&user).
		Where("email = ?", email).
		Limit(1).
		Scan(context.Background())
	if err != nil {
		return nil, err
	}
	return &user, nil
}

func (d *DB) GetUserByID(id string) (*models.User, error) {
	var user models.User
	err := d.Bun.NewSelect().
		Model(&user).
		Where("id = ?", id).
		Limit(1).
		Scan(context.Background())
	if err != nil {
		return nil, err
	}
	return &user, nil
}

func (d *DB) CreateUser(user models.User) error {
	_, err := d.Bun.NewInsert().Model(&user).Exec(context.Background())
	return err
}

// SetOTP stores a fresh verification code and its expiry.
func (d *DB) SetOTP(user models.User) error {
	_, err := d.Bun.NewUpdate().
		Model(&user).
		Column("otp", "otp_expires").
		Where("id = ?", user.ID).
		Exec(context.Background())
	return err
}

// CompleteRegistration clears the OTP fields and marks the user registered
// in one statement, so a verified user can never be left holding a stale
// code.
func (d *DB) CompleteRegistration(id string) error {
	_, err := d.Bun.NewUpdate().
		Model((*models.User)(nil)).
		Set("otp = NULL").
		Set("otp_expires = NULL").
		Set("registered = ?", true).
		Where("id = ?", id).
		Exec(context.Background())
	return err
}

// CheckIn flips present exactly once. The conditional update is the
// concurrency guard: two racing check-ins cannot both see present = false.
// Returns the number of rows changed; 0 means missing user or already
// present, which callers disambiguate with a follow-up read.
func (d *DB) CheckIn(id string) (int64, error) {
	res, err := d.Bun.NewUpdate().
		Model((*models.User)(nil)).
		Set("present = ?", true).
		Where("id = ? AND present = ?", id, false).
		Exec(context.Background())
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

// SetAttendance records the intent-to-eat flag and the contact number. An
// empty mobile clears the stored one.
func (d *DB) SetAttendance(id string, wantsFood bool, mobile string) error {
	q := d.Bun.NewUpdate().
		Model((*models.User)(nil)).
		Set("wants_food = ?", wantsFood).
		Where("id = ?", id)
	if mobile == "" {
		q = q.Set("mobile = NULL")
	} else {
		q = q.Set("mobile = ?", mobile)
	}
	_, err := q.Exec(context.Background())
	return err
}

func (d *DB) CountUsers() (int, error) {
	return d.Bun.NewSelect().
		Model((*models.User)(nil)).
		Count(context.Background())
}

func (d *DB) ListUsers() ([]models.User, error) {
	var users []models.User
	err := d.Bun.NewSelect().
		Model(&users).
		Order("created_at ASC").
		Scan(context.Background())
	if err != nil {
		return nil, err
	}
	return users, nil
}
