package user

import (
	"errors"
	"time"
)

var ErrNotFound = errors.New("user not found")

// User is an account owner. Users are provisioned out of band; this service
// only ever reads them.
type User struct {
	ID        int64
	Name      string
	CreatedAt time.Time
	UpdatedAt *time.Time
}
