package dbhelper

import (
	"database/sql"

	"github.com/lib/pq"

	"github.com/Ricardo-1112/waterbar-reservation/database"
	"github.com/Ricardo-1112/waterbar-reservation/models"
)

// Queryable is satisfied by both *sql.DB and *sql.Tx so helpers can run
// standalone or inside a transaction scope.
type Queryable interface {
	Query(query string, args ...interface{}) (*sql.Rows, error)
	QueryRow(query string, args ...interface{}) *sql.Row
	Exec(query string, args ...interface{}) (sql.Result, error)
}

func CreateUser(q Queryable, email, passwordHash string, role models.Role) (int64, error) {
	var id int64
	err := q.QueryRow(`
		INSERT INTO users (email, password_hash, role)
		VALUES ($1, $2, $3)
		RETURNING id`,
		email, passwordHash, role).Scan(&id)
	return id, err
}

// IsUniqueViolation reports whether err is the Postgres duplicate-key error,
// used to turn a double registration into an "already registered" message.
func IsUniqueViolation(err error) bool {
	pqErr, ok := err.(*pq.Error)
	return ok && pqErr.Code == "23505"
}

func GetUserByEmail(email string) (*models.User, error) {
	var user models.User
	err := database.WaterBar.QueryRow(`
		SELECT id, email, password_hash, role, created_at
		FROM users
		WHERE LOWER(email) = LOWER($1)`, email).
		Scan(&user.ID, &user.Email, &user.PasswordHash, &user.Role, &user.CreatedAt)
	if err != nil {
		return nil, err
	}
	return &user, nil
}

func GetUserByID(id int64) (*models.User, error) {
	var user models.User
	err := database.WaterBar.QueryRow(`
		SELECT id, email, password_hash, role, created_at
		FROM users
		WHERE id = $1`, id).
		Scan(&user.ID, &user.Email, &user.PasswordHash, &user.Role, &user.CreatedAt)
	if err != nil {
		return nil, err
	}
	return &user, nil
}

func UpdateUserPassword(userID int64, passwordHash string) error {
	_, err := database.WaterBar.Exec(`
		UPDATE users SET password_hash = $1 WHERE id = $2`,
		passwordHash, userID)
	return err
}

// EnsureDefaultBarAdmin seeds the first bar-admin account so a fresh
// deployment is manageable without touching the database by hand.
func EnsureDefaultBarAdmin(email, passwordHash string) (bool, error) {
	var exists bool
	err := database.WaterBar.QueryRow(`
		SELECT EXISTS (SELECT 1 FROM users WHERE role = $1)`,
		models.RoleBarAdmin).Scan(&exists)
	if err != nil || exists {
		return false, err
	}

	_, err = CreateUser(database.WaterBar, email, passwordHash, models.RoleBarAdmin)
	if err != nil {
		return false, err
	}
	return true, nil
}
