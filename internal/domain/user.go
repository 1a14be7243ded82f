package domain

import (
	"fmt"
	"net/mail"
	"strings"
	"time"
	"unicode/utf8"
)

type Role string

const (
	RoleAdmin   Role = "ADMIN"
	RoleCashier Role = "KASIR"

	MinPasswordLength = 6
	// MaxPasswordBytes is the bcrypt input limit.
	MaxPasswordBytes = 72
)

func ParseRole(s string) (Role, error) {
	switch r := Role(strings.ToUpper(strings.TrimSpace(s))); r {
	case RoleAdmin, RoleCashier:
		return r, nil
	}
	return "", NewValidationError("role", CodeInvalidValue, fmt.Errorf("role must be one of: ADMIN, KASIR"))
}

// User is a staff account.
type User struct {
	ID           int64
	Email        string
	Name         string
	Role         Role
	PasswordHash string
	CreatedAt    time.Time
}

type UserInput struct {
	Email    string
	Name     string
	Role     string
	Password string
}

// NewUser validates a new account. The password is checked but not stored;
// hashing belongs to the caller.
func NewUser(in UserInput) (*User, error) {
	var errs ValidationErrors

	email := strings.ToLower(strings.TrimSpace(in.Email))
	if addr, err := mail.ParseAddress(email); err != nil || addr.Address != email {
		errs.add("email", CodeInvalidValue, "email is not valid")
	}
	name, nameErrs := validateUserName(in.Name)
	errs = append(errs, nameErrs...)
	role, err := ParseRole(in.Role)
	if err != nil {
		errs = append(errs, err.(ValidationErrors)...)
	}
	errs = append(errs, validatePassword(in.Password)...)

	if err := errs.orNil(); err != nil {
		return nil, err
	}
	return &User{Email: email, Name: name, Role: role}, nil
}

// UserPatch changes name and role, and the password when Password is set.
type UserPatch struct {
	Name     string
	Role     Role
	Password *string
}

func NewUserPatch(name, role string, password *string) (UserPatch, error) {
	var errs ValidationErrors

	n, nameErrs := validateUserName(name)
	errs = append(errs, nameErrs...)
	r, err := ParseRole(role)
	if err != nil {
		errs = append(errs, err.(ValidationErrors)...)
	}
	if password != nil {
		errs = append(errs, validatePassword(*password)...)
	}

	return UserPatch{Name: n, Role: r, Password: password}, errs.orNil()
}

func validatePassword(password string) ValidationErrors {
	var errs ValidationErrors
	if utf8.RuneCountInString(password) < MinPasswordLength {
		errs.add("password", CodeTooShort, fmt.Sprintf("password must be at least %d characters", MinPasswordLength))
	} else if len(password) > MaxPasswordBytes {
		errs.add("password", CodeTooLong, fmt.Sprintf("password must not exceed %d bytes", MaxPasswordBytes))
	}
	return errs
}

func validateUserName(raw string) (string, ValidationErrors) {
	var errs ValidationErrors
	name := strings.TrimSpace(raw)
	if name == "" {
		errs.add("name", CodeRequired, "name is required")
	} else if utf8.RuneCountInString(name) > 120 {
		errs.add("name", CodeTooLong, "name must not exceed 120 characters")
	}
	return name, errs
}

// IsStaff reports whether the role may operate the till.
func (r Role) IsStaff() bool {
	return r == RoleAdmin || r == RoleCashier
}
