package storage

import (
	"context"
	"database/sql"
	"fmt"
	"regexp"
	"time"

	"github.com/stoik/phishcatch/internal/domain"
)

// sqlStore implements ports.Storage on database/sql.
// Queries are written with PostgreSQL placeholders and rebound per driver.
type sqlStore struct {
	db     *sql.DB
	rebind func(string) string
}

var placeholderPattern = regexp.MustCompile(`\$(\d+)`)

// rebindNumbered turns $N placeholders into ?N for SQLite
func rebindNumbered(query string) string {
	return placeholderPattern.ReplaceAllString(query, "?$1")
}

func noRebind(query string) string {
	return query
}

// Close closes the database connection
func (s *sqlStore) Close() error {
	return s.db.Close()
}

// SavePasswordHash upserts a password digest record
func (s *sqlStore) SavePasswordHash(ctx context.Context, record *domain.PasswordHashRecord) error {
	query := `
		INSERT INTO password_hashes (hash, hostname, username, created_at)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (hash) DO UPDATE
		SET hostname = EXCLUDED.hostname,
		    username = EXCLUDED.username,
		    created_at = EXCLUDED.created_at
	`
	_, err := s.db.ExecContext(ctx, s.rebind(query),
		string(record.Hash), record.Hostname, record.Username, record.CreatedAt.UTC(),
	)
	if err != nil {
		return fmt.Errorf("failed to save password hash: %w", err)
	}
	return nil
}

// GetPasswordHash retrieves a password digest record
func (s *sqlStore) GetPasswordHash(ctx context.Context, hash domain.ContentHash) (*domain.PasswordHashRecord, error) {
	query := `
		SELECT hash, hostname, username, created_at
		FROM password_hashes
		WHERE hash = $1
	`
	record := &domain.PasswordHashRecord{}
	var storedHash string
	err := s.db.QueryRowContext(ctx, s.rebind(query), string(hash)).Scan(
		&storedHash, &record.Hostname, &record.Username, &record.CreatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get password hash: %w", err)
	}

	record.Hash = domain.ContentHash(storedHash)
	return record, nil
}

// DeletePasswordHash removes a password digest record
func (s *sqlStore) DeletePasswordHash(ctx context.Context, hash domain.ContentHash) error {
	query := `DELETE FROM password_hashes WHERE hash = $1`
	if _, err := s.db.ExecContext(ctx, s.rebind(query), string(hash)); err != nil {
		return fmt.Errorf("failed to delete password hash: %w", err)
	}
	return nil
}

// SaveDomHash upserts a fingerprint for a domain
func (s *sqlStore) SaveDomHash(ctx context.Context, record *domain.DomHashRecord) error {
	query := `
		INSERT INTO dom_hashes (hash, domain, created_at)
		VALUES ($1, $2, $3)
		ON CONFLICT (hash, domain) DO UPDATE
		SET created_at = EXCLUDED.created_at
	`
	_, err := s.db.ExecContext(ctx, s.rebind(query),
		string(record.Hash), record.Domain, record.CreatedAt.UTC(),
	)
	if err != nil {
		return fmt.Errorf("failed to save dom hash: %w", err)
	}
	return nil
}

// FindDomHashes lists the domains that saved a fingerprint
func (s *sqlStore) FindDomHashes(ctx context.Context, hash domain.ContentHash) ([]domain.DomHashRecord, error) {
	query := `
		SELECT hash, domain, created_at
		FROM dom_hashes
		WHERE hash = $1
		ORDER BY domain ASC
	`
	rows, err := s.db.QueryContext(ctx, s.rebind(query), string(hash))
	if err != nil {
		return nil, fmt.Errorf("failed to query dom hashes: %w", err)
	}
	defer rows.Close()

	records := make([]domain.DomHashRecord, 0)
	for rows.Next() {
		var record domain.DomHashRecord
		var storedHash string
		if err := rows.Scan(&storedHash, &record.Domain, &record.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan dom hash: %w", err)
		}
		record.Hash = domain.ContentHash(storedHash)
		records = append(records, record)
	}

	return records, rows.Err()
}

// SaveUsername upserts a username seen on an enterprise host
func (s *sqlStore) SaveUsername(ctx context.Context, record *domain.UsernameRecord) error {
	query := `
		INSERT INTO usernames (username, hostname, created_at)
		VALUES ($1, $2, $3)
		ON CONFLICT (username, hostname) DO UPDATE
		SET created_at = EXCLUDED.created_at
	`
	_, err := s.db.ExecContext(ctx, s.rebind(query),
		record.Username, record.Hostname, record.CreatedAt.UTC(),
	)
	if err != nil {
		return fmt.Errorf("failed to save username: %w", err)
	}
	return nil
}

// PutNotification registers a notification id association
func (s *sqlStore) PutNotification(ctx context.Context, record *domain.NotificationRecord) error {
	query := `
		INSERT INTO notifications (id, hash, url, created_at)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (id) DO UPDATE
		SET hash = EXCLUDED.hash,
		    url = EXCLUDED.url,
		    created_at = EXCLUDED.created_at
	`
	_, err := s.db.ExecContext(ctx, s.rebind(query),
		record.ID, string(record.Hash), record.URL, record.CreatedAt.UTC(),
	)
	if err != nil {
		return fmt.Errorf("failed to save notification: %w", err)
	}
	return nil
}

// GetNotification retrieves a notification association by id
func (s *sqlStore) GetNotification(ctx context.Context, id string) (*domain.NotificationRecord, error) {
	query := `
		SELECT id, hash, url, created_at
		FROM notifications
		WHERE id = $1
	`
	row := s.db.QueryRowContext(ctx, s.rebind(query), id)
	record, err := scanNotification(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get notification: %w", err)
	}
	return record, nil
}

// DeleteNotification removes a notification association
func (s *sqlStore) DeleteNotification(ctx context.Context, id string) error {
	query := `DELETE FROM notifications WHERE id = $1`
	result, err := s.db.ExecContext(ctx, s.rebind(query), id)
	if err != nil {
		return fmt.Errorf("failed to delete notification: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to delete notification: %w", err)
	}
	if affected == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// ListNotifications returns every live association, oldest first
func (s *sqlStore) ListNotifications(ctx context.Context) ([]domain.NotificationRecord, error) {
	query := `
		SELECT id, hash, url, created_at
		FROM notifications
		ORDER BY created_at ASC, id ASC
	`
	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list notifications: %w", err)
	}
	return collectNotifications(rows)
}

// DeleteNotificationsBefore removes associations created before cutoff
func (s *sqlStore) DeleteNotificationsBefore(ctx context.Context, cutoff time.Time) ([]domain.NotificationRecord, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	selectQuery := `
		SELECT id, hash, url, created_at
		FROM notifications
		WHERE created_at < $1
		ORDER BY created_at ASC, id ASC
	`
	rows, err := tx.QueryContext(ctx, s.rebind(selectQuery), cutoff.UTC())
	if err != nil {
		return nil, fmt.Errorf("failed to query stale notifications: %w", err)
	}
	records, err := collectNotifications(rows)
	if err != nil {
		return nil, err
	}

	deleteQuery := `DELETE FROM notifications WHERE created_at < $1`
	if _, err := tx.ExecContext(ctx, s.rebind(deleteQuery), cutoff.UTC()); err != nil {
		return nil, fmt.Errorf("failed to delete stale notifications: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}
	return records, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanNotification(row rowScanner) (*domain.NotificationRecord, error) {
	record := &domain.NotificationRecord{}
	var hash string
	if err := row.Scan(&record.ID, &hash, &record.URL, &record.CreatedAt); err != nil {
		return nil, err
	}
	record.Hash = domain.ContentHash(hash)
	return record, nil
}

func collectNotifications(rows *sql.Rows) ([]domain.NotificationRecord, error) {
	defer rows.Close()

	records := make([]domain.NotificationRecord, 0)
	for rows.Next() {
		record, err := scanNotification(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan notification: %w", err)
		}
		records = append(records, *record)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read notifications: %w", err)
	}
	return records, nil
}
