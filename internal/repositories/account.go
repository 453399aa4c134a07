package repositories

import (
	"database/sql"
	"fmt"
	"time"

	"trackdeck/internal/models"
	"trackdeck/internal/shared"
)

// AccountRepository implements [models.Repository] for [models.Account] persistence.
//
// An account holds the single live Spotify credential alongside profile fields.
type AccountRepository struct {
	db *sql.DB
}

// NewAccountRepository creates a new [AccountRepository] with the given database connection
func NewAccountRepository(db *sql.DB) *AccountRepository {
	return &AccountRepository{db: db}
}

// Create inserts a new account into the database with generated ID and sequence
func (r *AccountRepository) Create(account *models.Account) error {
	sequence, err := NextSequence(r.db, "accounts")
	if err != nil {
		return fmt.Errorf("failed to generate sequence: %w", err)
	}

	id := shared.GenerateID()
	account.SetID(id)
	account.SetSequence(sequence)

	if err := account.Validate(); err != nil {
		return fmt.Errorf("%w: %v", shared.ErrInvalidInput, err)
	}

	query := `
		INSERT INTO accounts (id, sequence, spotify_uid, display_name, email, avatar_url, access_token, refresh_token, token_expires_at, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`

	_, err = r.db.Exec(query,
		id,
		sequence,
		account.SpotifyUID(),
		account.DisplayName(),
		account.Email(),
		account.AvatarURL(),
		account.AccessToken(),
		account.RefreshToken(),
		account.TokenExpiresAt(),
		account.CreatedAt(),
		account.UpdatedAt(),
	)
	if err != nil {
		return fmt.Errorf("failed to insert account: %w", err)
	}

	return nil
}

// Get retrieves an account by ID, excluding soft-deleted accounts
func (r *AccountRepository) Get(id string) (*models.Account, error) {
	query := `
		SELECT id, sequence, spotify_uid, display_name, email, avatar_url, access_token, refresh_token, token_expires_at, created_at, updated_at, deleted_at
		FROM accounts
		WHERE id = ? AND deleted_at IS NULL
	`

	return r.scanOne(r.db.QueryRow(query, id))
}

// GetBySpotifyUID retrieves an account by its Spotify user id
func (r *AccountRepository) GetBySpotifyUID(spotifyUID string) (*models.Account, error) {
	query := `
		SELECT id, sequence, spotify_uid, display_name, email, avatar_url, access_token, refresh_token, token_expires_at, created_at, updated_at, deleted_at
		FROM accounts
		WHERE spotify_uid = ? AND deleted_at IS NULL
	`

	return r.scanOne(r.db.QueryRow(query, spotifyUID))
}

// Update modifies an existing account in the database, including its stored credential
func (r *AccountRepository) Update(account *models.Account) error {
	if err := account.Validate(); err != nil {
		return fmt.Errorf("%w: %v", shared.ErrInvalidInput, err)
	}

	now := time.Now()
	account.SetUpdatedAt(now)

	query := `
		UPDATE accounts
		SET display_name = ?, email = ?, avatar_url = ?, access_token = ?, refresh_token = ?, token_expires_at = ?, updated_at = ?
		WHERE id = ? AND deleted_at IS NULL
	`

	result, err := r.db.Exec(query,
		account.DisplayName(),
		account.Email(),
		account.AvatarURL(),
		account.AccessToken(),
		account.RefreshToken(),
		account.TokenExpiresAt(),
		now,
		account.ID(),
	)
	if err != nil {
		return fmt.Errorf("failed to update account: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get affected rows: %w", err)
	}
	if rows == 0 {
		return fmt.Errorf("%w: %s", shared.ErrAccountNotFound, account.ID())
	}

	return nil
}

// Delete soft-deletes an account by ID
func (r *AccountRepository) Delete(id string) error {
	now := time.Now()

	query := `
		UPDATE accounts
		SET deleted_at = ?
		WHERE id = ? AND deleted_at IS NULL
	`

	result, err := r.db.Exec(query, now, id)
	if err != nil {
		return fmt.Errorf("failed to delete account: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get affected rows: %w", err)
	}
	if rows == 0 {
		return fmt.Errorf("%w: %s", shared.ErrAccountNotFound, id)
	}

	return nil
}

// List retrieves all accounts matching the given criteria, excluding soft-deleted accounts
func (r *AccountRepository) List(criteria map[string]any) ([]*models.Account, error) {
	query := `
		SELECT id, sequence, spotify_uid, display_name, email, avatar_url, access_token, refresh_token, token_expires_at, created_at, updated_at, deleted_at
		FROM accounts
		WHERE deleted_at IS NULL
	`

	args := []any{}

	if email, ok := criteria["email"].(string); ok && email != "" {
		query += " AND email = ?"
		args = append(args, email)
	}

	query += " ORDER BY sequence ASC"

	rows, err := r.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query accounts: %w", err)
	}
	defer rows.Close()

	var accounts []*models.Account
	for rows.Next() {
		account, err := r.scanRow(rows)
		if err != nil {
			return nil, err
		}
		accounts = append(accounts, account)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("row iteration error: %w", err)
	}

	return accounts, nil
}

// scanOne scans a single row into a [models.Account]
func (r *AccountRepository) scanOne(row *sql.Row) (*models.Account, error) {
	var (
		id             string
		sequence       int
		spotifyUID     string
		displayName    string
		email          string
		avatarURL      string
		accessToken    string
		refreshToken   string
		tokenExpiresAt sql.NullTime
		createdAt      time.Time
		updatedAt      time.Time
		deletedAt      sql.NullTime
	)

	err := row.Scan(&id, &sequence, &spotifyUID, &displayName, &email, &avatarURL, &accessToken, &refreshToken, &tokenExpiresAt, &createdAt, &updatedAt, &deletedAt)
	if err == sql.ErrNoRows {
		return nil, shared.ErrAccountNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to scan account: %w", err)
	}

	account := models.NewAccount(sequence, spotifyUID, displayName, email)
	account.SetID(id)
	account.SetAvatarURL(avatarURL)
	if accessToken != "" {
		expiry := time.Time{}
		if tokenExpiresAt.Valid {
			expiry = tokenExpiresAt.Time
		}
		account.SetTokens(accessToken, refreshToken, expiry)
	}
	account.SetCreatedAt(createdAt)
	account.SetUpdatedAt(updatedAt)
	if deletedAt.Valid {
		account.SetDeletedAt(&deletedAt.Time)
	}

	return account, nil
}

// scanRow scans a row from [sql.Rows] into a [models.Account]
func (r *AccountRepository) scanRow(rows *sql.Rows) (*models.Account, error) {
	var (
		id             string
		sequence       int
		spotifyUID     string
		displayName    string
		email          string
		avatarURL      string
		accessToken    string
		refreshToken   string
		tokenExpiresAt sql.NullTime
		createdAt      time.Time
		updatedAt      time.Time
		deletedAt      sql.NullTime
	)

	err := rows.Scan(&id, &sequence, &spotifyUID, &displayName, &email, &avatarURL, &accessToken, &refreshToken, &tokenExpiresAt, &createdAt, &updatedAt, &deletedAt)
	if err != nil {
		return nil, fmt.Errorf("failed to scan account: %w", err)
	}

	account := models.NewAccount(sequence, spotifyUID, displayName, email)
	account.SetID(id)
	account.SetAvatarURL(avatarURL)
	if accessToken != "" {
		expiry := time.Time{}
		if tokenExpiresAt.Valid {
			expiry = tokenExpiresAt.Time
		}
		account.SetTokens(accessToken, refreshToken, expiry)
	}
	account.SetCreatedAt(createdAt)
	account.SetUpdatedAt(updatedAt)
	if deletedAt.Valid {
		account.SetDeletedAt(&deletedAt.Time)
	}

	return account, nil
}
