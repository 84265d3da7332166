package domain

import (
	"regexp"
	"strings"
	"time"

	"github.com/google/uuid"
)

var emailPattern = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

// NormalizeEmail trims and lowercases a raw address and validates its shape.
// All emails in the system are stored and compared in this normalized form.
func NormalizeEmail(raw string) (string, error) {
	email := strings.ToLower(strings.TrimSpace(raw))
	if !emailPattern.MatchString(email) {
		return "", validationErr("email", "invalid email address")
	}
	return email, nil
}

// User is the account aggregate. Fields are unexported: new users go through
// CreateUser, persisted ones through RehydrateUser, and every change goes
// through a command method that records an event.
type User struct {
	eventBuffer
	id           uuid.UUID
	name         string
	email        string
	passwordHash string
	createdAt    time.Time
	updatedAt    time.Time
	deleted      bool
}

// UserState is the persisted snapshot of a User.
type UserState struct {
	ID           uuid.UUID `json:"id"`
	Name         string    `json:"name"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
	IsDeleted    bool      `json:"-"`
}

// RehydrateUser restores a user from storage. No validation, no events:
// the snapshot was validated when the recorded commands first ran.
func RehydrateUser(st UserState) *User {
	return &User{
		id:           st.ID,
		name:         st.Name,
		email:        st.Email,
		passwordHash: st.PasswordHash,
		createdAt:    st.CreatedAt,
		updatedAt:    st.UpdatedAt,
		deleted:      st.IsDeleted,
	}
}

// CreateUser validates inputs, builds a new user and records UserCreated.
// The email may be raw; it is normalized here.
func CreateUser(id uuid.UUID, name, email, passwordHash string, now time.Time) (*User, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, validationErr("name", "user name is required")
	}
	if len(name) > 255 {
		return nil, validationErr("name", "user name must be at most 255 characters long")
	}
	normalized, err := NormalizeEmail(email)
	if err != nil {
		return nil, err
	}
	if strings.TrimSpace(passwordHash) == "" {
		return nil, validationErr("passwordHash", "password hash is required")
	}

	u := &User{
		id:           id,
		name:         name,
		email:        normalized,
		passwordHash: passwordHash,
		createdAt:    now,
		updatedAt:    now,
	}
	u.record(Event{
		ID:            uuid.New(),
		AggregateID:   u.id,
		AggregateType: AggregateUser,
		EventType:     EventUserCreated,
		Payload:       UserCreatedPayload{Name: u.name, Email: u.email},
		OccurredAt:    now,
	})
	return u, nil
}

// UpdateProfile changes name and/or email. Omitted (nil) arguments leave the
// field untouched. A no-op change records nothing and leaves updatedAt alone.
func (u *User) UpdateProfile(name, email *string, now time.Time) error {
	if u.deleted {
		return invariantErr("cannot update a deleted user")
	}

	changed := false

	if name != nil {
		n := strings.TrimSpace(*name)
		if n == "" {
			return validationErr("name", "user name is required")
		}
		if len(n) > 255 {
			return validationErr("name", "user name must be at most 255 characters long")
		}
		if n != u.name {
			u.name = n
			changed = true
		}
	}

	if email != nil {
		normalized, err := NormalizeEmail(*email)
		if err != nil {
			return err
		}
		if normalized != u.email {
			u.email = normalized
			changed = true
		}
	}

	if !changed {
		return nil
	}

	u.updatedAt = now
	u.record(Event{
		ID:            uuid.New(),
		AggregateID:   u.id,
		AggregateType: AggregateUser,
		EventType:     EventUserUpdated,
		Payload:       UserUpdatedPayload{Name: u.name, Email: u.email},
		OccurredAt:    now,
	})
	return nil
}

// Delete soft-deletes the user. Idempotent: the second call is a no-op and
// records no second event.
func (u *User) Delete(now time.Time) {
	if u.deleted {
		return
	}
	u.deleted = true
	u.updatedAt = now
	u.record(Event{
		ID:            uuid.New(),
		AggregateID:   u.id,
		AggregateType: AggregateUser,
		EventType:     EventUserDeleted,
		Payload:       UserDeletedPayload{},
		OccurredAt:    now,
	})
}

func (u *User) ID() uuid.UUID        { return u.id }
func (u *User) Email() string        { return u.email }
func (u *User) PasswordHash() string { return u.passwordHash }
func (u *User) IsDeleted() bool      { return u.deleted }

// State returns the persistable snapshot.
func (u *User) State() UserState {
	return UserState{
		ID:           u.id,
		Name:         u.name,
		Email:        u.email,
		PasswordHash: u.passwordHash,
		CreatedAt:    u.createdAt,
		UpdatedAt:    u.updatedAt,
		IsDeleted:    u.deleted,
	}
}
