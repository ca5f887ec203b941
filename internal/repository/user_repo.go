package repository

import (
	"context"

	"github.com/project-board-api/internal/database"
	"github.com/project-board-api/internal/models"
)

const userColumns = `user_id, user_password, COALESCE(email, ''), COALESCE(nickname, ''), COALESCE(memo, ''),
	created_at, created_by, modified_at, modified_by`

// userAccountRepo is the concrete implementation of UserAccountRepository
type userAccountRepo struct {
	db database.Querier
}

// NewUserAccountRepo creates a new user account repository
func NewUserAccountRepo(db database.Querier) UserAccountRepository {
	return &userAccountRepo{db: db}
}

// Create inserts a new user account
func (r *userAccountRepo) Create(ctx context.Context, user *models.UserAccount) error {
	query := `
		INSERT INTO user_accounts (user_id, user_password, email, nickname, memo,
			created_at, created_by, modified_at, modified_by)
		VALUES ($1, $2, NULLIF($3, ''), $4, $5, $6, $7, $8, $9)
	`
	_, err := r.db.ExecContext(ctx, query,
		user.UserID, user.UserPassword, user.Email, user.Nickname, user.Memo,
		user.CreatedAt, user.CreatedBy, user.ModifiedAt, user.ModifiedBy,
	)
	return mapError(err)
}

// GetByID retrieves a user account by login name
func (r *userAccountRepo) GetByID(ctx context.Context, userID string) (*models.UserAccount, error) {
	query := `SELECT ` + userColumns + ` FROM user_accounts WHERE user_id = $1`

	var user models.UserAccount
	err := r.db.QueryRowContext(ctx, query, userID).Scan(
		&user.UserID, &user.UserPassword, &user.Email, &user.Nickname, &user.Memo,
		&user.CreatedAt, &user.CreatedBy, &user.ModifiedAt, &user.ModifiedBy,
	)
	if err != nil {
		return nil, mapError(err)
	}
	return &user, nil
}

// Reference returns an unloaded handle
func (r *userAccountRepo) Reference(userID string) *models.UserAccount {
	return &models.UserAccount{UserID: userID}
}

// Count returns the total number of user accounts
func (r *userAccountRepo) Count(ctx context.Context) (int, error) {
	var count int
	err := r.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM user_accounts").Scan(&count)
	return count, err
}

// StreamAll streams all user accounts for export
func (r *userAccountRepo) StreamAll(ctx context.Context, callback func(*models.UserAccount) error) error {
	query := `SELECT ` + userColumns + ` FROM user_accounts ORDER BY created_at, user_id`
	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return err
	}
	defer rows.Close()

	for rows.Next() {
		var user models.UserAccount
		err := rows.Scan(
			&user.UserID, &user.UserPassword, &user.Email, &user.Nickname, &user.Memo,
			&user.CreatedAt, &user.CreatedBy, &user.ModifiedAt, &user.ModifiedBy,
		)
		if err != nil {
			return err
		}

		if err := callback(&user); err != nil {
			return err
		}
	}

	return rows.Err()
}
