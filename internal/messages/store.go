package messages

import (
	"bytes"
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	_ "modernc.org/sqlite"

	"github.com/JaimeStill/outreach/internal/config"
	"github.com/JaimeStill/outreach/pkg/lifecycle"
	"github.com/JaimeStill/outreach/pkg/storage"
)

const sqliteContentType = "application/vnd.sqlite3"

var sqliteHeader = []byte("SQLite format 3\x00")

// Snapshot describes the message store currently in use.
type Snapshot struct {
	Path      string    `json:"path"`
	Key       string    `json:"key,omitempty"`
	Size      int64     `json:"size"`
	Messages  int       `json:"messages"`
	UpdatedAt time.Time `json:"updatedAt"`
}

type store struct {
	cfg           config.MessagesConfig
	blobs         storage.System
	logger        *slog.Logger
	maxUploadSize int64

	mu sync.RWMutex
	db *sql.DB
}

// New creates a SQLite-backed message store. blobs may be nil, in which case
// snapshots are never synced or published.
func New(
	cfg config.MessagesConfig,
	blobs storage.System,
	logger *slog.Logger,
	maxUploadSize int64,
) System {
	return &store{
		cfg:           cfg,
		blobs:         blobs,
		logger:        logger.With("system", "messages"),
		maxUploadSize: maxUploadSize,
	}
}

func (s *store) Handler() *Handler {
	return NewHandler(s, s.logger, s.maxUploadSize)
}

func (s *store) Start(lc *lifecycle.Coordinator) error {
	s.logger.Info("starting message store", "path", s.cfg.Path)

	lc.OnStartup(func() {
		if s.cfg.SnapshotKey == "" || s.blobs == nil {
			return
		}

		if err := s.sync(lc.Context()); err != nil {
			if errors.Is(err, storage.ErrNotFound) {
				s.logger.Warn("message snapshot not found, using local store", "key", s.cfg.SnapshotKey)
				return
			}
			s.logger.Error("message snapshot sync failed", "key", s.cfg.SnapshotKey, "error", err)
			return
		}

		s.logger.Info("message snapshot synced", "key", s.cfg.SnapshotKey, "path", s.cfg.Path)
	})

	lc.OnShutdown(func() {
		<-lc.Context().Done()

		s.mu.Lock()
		defer s.mu.Unlock()

		if s.db == nil {
			return
		}
		if err := s.db.Close(); err != nil {
			s.logger.Error("message store close failed", "error", err)
			return
		}
		s.db = nil
		s.logger.Info("message store closed")
	})

	return nil
}

func (s *store) Messages(ctx context.Context, phone string, limit int) ([]Message, error) {
	variants := PhoneVariants(phone)
	if len(variants) == 0 {
		return nil, fmt.Errorf("%w: %q", ErrInvalidPhone, phone)
	}

	limit = s.clampLimit(limit)

	s.mu.RLock()
	if s.db == nil {
		s.mu.RUnlock()
		if err := s.open(); err != nil {
			return nil, err
		}
		s.mu.RLock()
	}
	defer s.mu.RUnlock()

	if s.db == nil {
		return nil, fmt.Errorf("%w: store replaced during read", ErrUnavailable)
	}

	return queryMessages(ctx, s.db, variants, limit)
}

func (s *store) Replace(ctx context.Context, r io.Reader) (*Snapshot, error) {
	tmp, size, err := s.stage(r)
	if err != nil {
		return nil, err
	}
	defer os.Remove(tmp)

	count, err := probe(ctx, tmp)
	if err != nil {
		return nil, err
	}

	if s.cfg.SnapshotKey != "" && s.blobs != nil {
		if err := s.publish(ctx, tmp); err != nil {
			return nil, err
		}
	}

	if err := s.swap(tmp); err != nil {
		return nil, err
	}

	snap := &Snapshot{
		Path:      s.cfg.Path,
		Key:       s.cfg.SnapshotKey,
		Size:      size,
		Messages:  count,
		UpdatedAt: time.Now().UTC(),
	}

	s.logger.Info("message store replaced",
		"path", snap.Path,
		"key", snap.Key,
		"size", snap.Size,
		"messages", snap.Messages,
	)
	return snap, nil
}

func (s *store) clampLimit(limit int) int {
	if limit <= 0 {
		limit = s.cfg.DefaultLimit
	}
	return min(limit, s.cfg.MaxLimit)
}

func (s *store) open() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.db != nil {
		return nil
	}

	if _, err := os.Stat(s.cfg.Path); err != nil {
		return fmt.Errorf("%w: %w", ErrUnavailable, err)
	}

	db, err := openReadOnly(s.cfg.Path)
	if err != nil {
		return err
	}
	s.db = db
	return nil
}

func (s *store) sync(ctx context.Context) error {
	blob, err := s.blobs.Download(ctx, s.cfg.SnapshotKey)
	if err != nil {
		return err
	}
	defer blob.Body.Close()

	tmp, _, err := s.stage(blob.Body)
	if err != nil {
		return err
	}
	defer os.Remove(tmp)

	if _, err := probe(ctx, tmp); err != nil {
		return err
	}

	return s.swap(tmp)
}

func (s *store) publish(ctx context.Context, path string) error {
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("open staged snapshot: %w", err)
	}
	defer f.Close()

	if err := s.blobs.Upload(ctx, s.cfg.SnapshotKey, f, sqliteContentType); err != nil {
		return fmt.Errorf("upload snapshot: %w", err)
	}
	return nil
}

// stage copies r into a temporary file beside the store, checking the SQLite header.
func (s *store) stage(r io.Reader) (string, int64, error) {
	dir := filepath.Dir(s.cfg.Path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", 0, fmt.Errorf("create store directory: %w", err)
	}

	f, err := os.CreateTemp(dir, ".messages-*.sqlite")
	if err != nil {
		return "", 0, fmt.Errorf("create staging file: %w", err)
	}
	defer f.Close()

	header := make([]byte, len(sqliteHeader))
	n, err := io.ReadFull(r, header)
	if err != nil || !bytes.Equal(header[:n], sqliteHeader) {
		os.Remove(f.Name())
		return "", 0, fmt.Errorf("%w: missing SQLite header", ErrInvalidSnapshot)
	}

	size, err := io.Copy(f, io.MultiReader(bytes.NewReader(header), r))
	if err != nil {
		os.Remove(f.Name())
		return "", 0, fmt.Errorf("write staging file: %w", err)
	}

	return f.Name(), size, nil
}

// swap moves a staged file over the active store and drops the open handle
// so the next read reopens it.
func (s *store) swap(staged string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.db != nil {
		if err := s.db.Close(); err != nil {
			s.logger.Warn("closing previous message store failed", "error", err)
		}
		s.db = nil
	}

	if err := os.Rename(staged, s.cfg.Path); err != nil {
		return fmt.Errorf("activate snapshot: %w", err)
	}
	return nil
}

func openReadOnly(path string) (*sql.DB, error) {
	dsn := fmt.Sprintf("file:%s?mode=ro&_pragma=busy_timeout(5000)", path)
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrUnavailable, err)
	}
	return db, nil
}

// probe opens path read-only and confirms it holds a Messages table.
func probe(ctx context.Context, path string) (int, error) {
	db, err := openReadOnly(path)
	if err != nil {
		return 0, err
	}
	defer db.Close()

	var count int
	if err := db.QueryRowContext(ctx, "SELECT COUNT(*) FROM Messages").Scan(&count); err != nil {
		return 0, fmt.Errorf("%w: %w", ErrInvalidSnapshot, err)
	}
	return count, nil
}

func queryMessages(ctx context.Context, db *sql.DB, variants []string, limit int) ([]Message, error) {
	placeholders := strings.TrimSuffix(strings.Repeat("?, ", len(variants)), ", ")
	q := fmt.Sprintf(`
		SELECT user_id, message, date, service, destination_caller_id, is_from_me
		FROM Messages
		WHERE user_id IN (%s)
		ORDER BY date DESC
		LIMIT ?`, placeholders)

	args := make([]any, 0, len(variants)+1)
	for _, v := range variants {
		args = append(args, v)
	}
	args = append(args, limit)

	rows, err := db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrUnavailable, err)
	}
	defer rows.Close()

	msgs := make([]Message, 0)
	for rows.Next() {
		var (
			userID, text, date, service, dest sql.NullString
			fromMe                            sql.NullString
		)
		if err := rows.Scan(&userID, &text, &date, &service, &dest, &fromMe); err != nil {
			return nil, fmt.Errorf("scan message: %w", err)
		}
		msgs = append(msgs, Message{
			UserID:        userID.String,
			Text:          text.String,
			Timestamp:     date.String,
			Service:       service.String,
			DestinationID: dest.String,
			IsFromMe:      fromMe.String == "1",
		})
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrUnavailable, err)
	}
	return msgs, nil
}
