package repositories

import (
	"database/sql"
	"fmt"
	"time"

	"tipnplay/internal/models"

	"github.com/google/uuid"
	"github.com/lib/pq"
)

// UserRepository handles host account data operations
type UserRepository struct {
	db *sql.DB
}

// NewUserRepository creates a new user repository
func NewUserRepository(db *sql.DB) *UserRepository {
	return &UserRepository{db: db}
}

// Create inserts a new host account
func (r *UserRepository) Create(email, passwordHash, displayName string) (*models.User, error) {
	query := `
		INSERT INTO users (id, email, password_hash, display_name, notify_on_tip, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id, email, password_hash, display_name, stripe_account_id, notify_on_tip, created_at, updated_at`

	now := time.Now()
	user := &models.User{}

	err := r.db.QueryRow(
		query,
		uuid.New().String(),
		email,
		passwordHash,
		displayName,
		true,
		now,
		now,
	).Scan(
		&user.ID,
		&user.Email,
		&user.PasswordHash,
		&user.DisplayName,
		&user.StripeAccountID,
		&user.NotifyOnTip,
		&user.CreatedAt,
		&user.UpdatedAt,
	)

	if err != nil {
		if pqErr, ok := err.(*pq.Error); ok && pqErr.Code == "23505" {
			return nil, models.ErrDuplicateEmail
		}
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	return user, nil
}

// GetByID retrieves a host by ID
func (r *UserRepository) GetByID(id string) (*models.User, error) {
	return r.getBy("id", id)
}

// GetByEmail retrieves a host by email
func (r *UserRepository) GetByEmail(email string) (*models.User, error) {
	return r.getBy("email", email)
}

func (r *UserRepository) getBy(column, value string) (*models.User, error) {
	query := fmt.Sprintf(`
		SELECT id, email, password_hash, display_name, stripe_account_id, notify_on_tip, created_at, updated_at
		FROM users
		WHERE %s = $1`, column)

	user := &models.User{}
	err := r.db.QueryRow(query, value).Scan(
		&user.ID,
		&user.Email,
		&user.PasswordHash,
		&user.DisplayName,
		&user.StripeAccountID,
		&user.NotifyOnTip,
		&user.CreatedAt,
		&user.UpdatedAt,
	)

	if err != nil {
		if err == sql.ErrNoRows {
			return nil, models.ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to get user: %w", err)
	}

	return user, nil
}

// Update applies a profile update and returns the updated host
func (r *UserRepository) Update(id string, req *models.UserUpdateRequest) (*models.User, error) {
	user, err := r.GetByID(id)
	if err != nil {
		return nil, err
	}

	if req.DisplayName != nil {
		user.DisplayName = *req.DisplayName
	}
	if req.StripeAccountID != nil {
		user.StripeAccountID = req.StripeAccountID
	}
	if req.NotifyOnTip != nil {
		user.NotifyOnTip = *req.NotifyOnTip
	}

	query := `
		UPDATE users
		SET display_name = $2, stripe_account_id = $3, notify_on_tip = $4, updated_at = $5
		WHERE id = $1
		RETURNING updated_at`

	err = r.db.QueryRow(query, id, user.DisplayName, user.StripeAccountID, user.NotifyOnTip, time.Now()).
		Scan(&user.UpdatedAt)
	if err != nil {
		return nil, fmt.Errorf("failed to update user: %w", err)
	}

	return user, nil
}
