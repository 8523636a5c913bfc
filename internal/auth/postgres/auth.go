package postgres

import (
	"database/sql"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"github.com/taskcore/task-management/internal"
)

// AuthRepository implements auth.UserRepository over the users and user_roles
// tables.
type AuthRepository struct {
	db *gorm.DB
}

func NewAuthRepository(db *gorm.DB) *AuthRepository {
	return &AuthRepository{db: db}
}

func (r *AuthRepository) GetCredentialsByEmail(email string) (string, int64, bool, error) {
	var (
		passwordHash string
		userID       int64
		isActive     bool
	)
	query := `SELECT id, password_hash, is_active FROM users WHERE email = ?`

	row := r.db.Raw(query, email).Row()
	if err := row.Scan(&userID, &passwordHash, &isActive); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return "", 0, false, fmt.Errorf("user not found")
		}
		return "", 0, false, err
	}
	return passwordHash, userID, isActive, nil
}

func (r *AuthRepository) GetPrincipal(userID int64) (*internal.Principal, error) {
	principal := &internal.Principal{}

	query := `SELECT id, email, first_name || ' ' || last_name FROM users WHERE id = ? AND is_active = true`
	row := r.db.Raw(query, userID).Row()
	if err := row.Scan(&principal.ID, &principal.Email, &principal.Name); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("user not found")
		}
		return nil, err
	}

	roleQuery := `SELECT role_id FROM user_roles WHERE user_id = ?`
	rows, err := r.db.Raw(roleQuery, userID).Rows()
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	for rows.Next() {
		var roleID int64
		if err := rows.Scan(&roleID); err != nil {
			return nil, err
		}
		principal.RoleIDs = append(principal.RoleIDs, roleID)
	}

	return principal, rows.Err()
}
