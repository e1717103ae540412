// Package sqlite persists snapshots and sealed user credentials.
package sqlite

import (
	"context"
	"crypto/cipher"
	"crypto/rand"
	"database/sql"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"golang.org/x/crypto/chacha20poly1305"
	_ "modernc.org/sqlite"

	"github.com/dkelsall/piefolio/internal/common"
	"github.com/dkelsall/piefolio/internal/interfaces"
	"github.com/dkelsall/piefolio/internal/models"
)

// Store implements interfaces.Store on a single SQLite database.
type Store struct {
	db     *sql.DB
	aead   cipher.AEAD // nil when no credential key is configured
	logger *common.Logger
}

// NewStore opens (or creates) the database, runs migrations, and prepares
// the credential cipher. credentialKey is a hex-encoded 32-byte key; when
// empty, credential operations report ErrNotConfigured.
func NewStore(path, credentialKey string, logger *common.Logger) (*Store, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}

	// WAL mode so snapshot reads don't block refresh writes.
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("set WAL mode: %w", err)
	}

	s := &Store{db: db, logger: logger}
	if err := s.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}

	if credentialKey != "" {
		key, err := hex.DecodeString(credentialKey)
		if err != nil || len(key) != chacha20poly1305.KeySize {
			db.Close()
			return nil, fmt.Errorf("credential key must be %d hex-encoded bytes", chacha20poly1305.KeySize)
		}
		aead, err := chacha20poly1305.NewX(key)
		if err != nil {
			db.Close()
			return nil, fmt.Errorf("init credential cipher: %w", err)
		}
		s.aead = aead
	}

	return s, nil
}

func (s *Store) migrate() error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS snapshots (
			user_id    TEXT PRIMARY KEY,
			data       TEXT NOT NULL,
			fetched_at INTEGER NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS credentials (
			user_id    TEXT NOT NULL,
			service    TEXT NOT NULL,
			nonce      BLOB NOT NULL,
			ciphertext BLOB NOT NULL,
			updated_at INTEGER NOT NULL,
			PRIMARY KEY (user_id, service)
		)`,
	}
	for _, stmt := range stmts {
		if _, err := s.db.Exec(stmt); err != nil {
			return err
		}
	}
	return nil
}

// SaveSnapshot stores the snapshot as a full replacement for the user.
func (s *Store) SaveSnapshot(ctx context.Context, snapshot *models.PerformanceMetrics) error {
	data, err := json.Marshal(snapshot)
	if err != nil {
		return fmt.Errorf("marshal snapshot: %w", err)
	}

	_, err = s.db.ExecContext(ctx,
		`INSERT INTO snapshots (user_id, data, fetched_at) VALUES (?, ?, ?)
		 ON CONFLICT(user_id) DO UPDATE SET data = excluded.data, fetched_at = excluded.fetched_at`,
		snapshot.UserID, string(data), snapshot.FetchedAt.Unix())
	if err != nil {
		return fmt.Errorf("save snapshot: %w", err)
	}

	return nil
}

// GetSnapshot returns the last saved snapshot for a user.
func (s *Store) GetSnapshot(ctx context.Context, userID string) (*models.PerformanceMetrics, error) {
	var data string
	err := s.db.QueryRowContext(ctx,
		`SELECT data FROM snapshots WHERE user_id = ?`, userID).Scan(&data)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, interfaces.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("load snapshot: %w", err)
	}

	var snapshot models.PerformanceMetrics
	if err := json.Unmarshal([]byte(data), &snapshot); err != nil {
		return nil, fmt.Errorf("unmarshal snapshot: %w", err)
	}

	return &snapshot, nil
}

// SetUserAPIKey seals and stores a broker API key for a user.
func (s *Store) SetUserAPIKey(ctx context.Context, userID, service, key string) error {
	if s.aead == nil {
		return interfaces.ErrNotConfigured
	}

	nonce := make([]byte, s.aead.NonceSize())
	if _, err := rand.Read(nonce); err != nil {
		return fmt.Errorf("generate nonce: %w", err)
	}
	ciphertext := s.aead.Seal(nil, nonce, []byte(key), []byte(userID+"|"+service))

	_, err := s.db.ExecContext(ctx,
		`INSERT INTO credentials (user_id, service, nonce, ciphertext, updated_at) VALUES (?, ?, ?, ?, ?)
		 ON CONFLICT(user_id, service) DO UPDATE SET nonce = excluded.nonce,
			ciphertext = excluded.ciphertext, updated_at = excluded.updated_at`,
		userID, service, nonce, ciphertext, time.Now().Unix())
	if err != nil {
		return fmt.Errorf("save credential: %w", err)
	}

	return nil
}

// GetUserAPIKey returns the decrypted broker API key for a user, or
// ErrNotConfigured when no credential is stored (or no cipher is set up).
func (s *Store) GetUserAPIKey(ctx context.Context, userID, service string) (string, error) {
	if s.aead == nil {
		return "", interfaces.ErrNotConfigured
	}

	var nonce, ciphertext []byte
	err := s.db.QueryRowContext(ctx,
		`SELECT nonce, ciphertext FROM credentials WHERE user_id = ? AND service = ?`,
		userID, service).Scan(&nonce, &ciphertext)
	if errors.Is(err, sql.ErrNoRows) {
		return "", interfaces.ErrNotConfigured
	}
	if err != nil {
		return "", fmt.Errorf("load credential: %w", err)
	}

	plaintext, err := s.aead.Open(nil, nonce, ciphertext, []byte(userID+"|"+service))
	if err != nil {
		return "", fmt.Errorf("unseal credential: %w", err)
	}

	return string(plaintext), nil
}

// Close closes the database.
func (s *Store) Close() error {
	return s.db.Close()
}

// Ensure Store implements the storage contract
var _ interfaces.Store = (*Store)(nil)
