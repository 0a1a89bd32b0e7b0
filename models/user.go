package models

import (
	"fmt"
	"regexp"
	"time"
)

type Role string

const (
	RoleUser         Role = "user"
	RoleBarAdmin     Role = "barAdmin"
	RoleStudentAdmin Role = "studentAdmin"
)

func (r Role) IsValid() bool {
	return r == RoleUser || r == RoleBarAdmin || r == RoleStudentAdmin
}

type User struct {
	ID           int64     `db:"id" json:"id"`
	Email        string    `db:"email" json:"email"`
	PasswordHash string    `db:"password_hash" json:"-"`
	Role         Role      `db:"role" json:"role"`
	CreatedAt    time.Time `db:"created_at" json:"created_at"`
}

// StudentHandlePattern builds the campus login pattern for a domain:
// two leading zeros, exactly four digits, then the fixed domain.
func StudentHandlePattern(domain string) *regexp.Regexp {
	return regexp.MustCompile(`^00\d{4}@` + regexp.QuoteMeta(domain) + `$`)
}

// ValidStudentHandle reports whether a login handle is a well-formed campus
// student ID for the given domain. Elevated roles are exempt from this check.
func ValidStudentHandle(handle, domain string) bool {
	return StudentHandlePattern(domain).MatchString(handle)
}

// StudentHandleHint is the user-facing description of the expected handle
// shape, shown on registration and password-reset rejections.
func StudentHandleHint(domain string) string {
	return fmt.Sprintf("student handle must look like 00XXXX@%s (XXXX is 4 digits)", domain)
}
