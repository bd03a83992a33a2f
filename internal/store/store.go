package store

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	_ "github.com/mattn/go-sqlite3"

	"bulletin/internal/core"
)

// Store is the SQLite-backed audit log for campaigns and generation usage.
type Store struct {
	db   *sql.DB
	path string
}

// NewStore creates a new store instance with SQLite database
func NewStore(dataDir string) (*Store, error) {
	// Ensure data directory exists
	if err := os.MkdirAll(dataDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create data directory: %w", err)
	}

	dbPath := filepath.Join(dataDir, "bulletin.db")
	db, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	store := &Store{
		db:   db,
		path: dbPath,
	}

	if err := store.initialize(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize database: %w", err)
	}

	return store, nil
}

// initialize creates the necessary tables
func (s *Store) initialize() error {
	// Audit log of campaign create/send actions
	campaignsTable := `
	CREATE TABLE IF NOT EXISTS campaigns (
		id TEXT PRIMARY KEY,
		campaign_id TEXT,
		article_ids TEXT,
		subject TEXT,
		status TEXT,
		created_at DATETIME,
		sent_at DATETIME,
		error_message TEXT
	);`

	// Description generation usage counters
	generationsTable := `
	CREATE TABLE IF NOT EXISTS generations (
		id TEXT PRIMARY KEY,
		article_id INTEGER,
		word_count INTEGER,
		fallback INTEGER,
		created_at DATETIME
	);`

	tables := []string{campaignsTable, generationsTable}
	for _, table := range tables {
		if _, err := s.db.Exec(table); err != nil {
			return fmt.Errorf("failed to create table: %w", err)
		}
	}

	return nil
}

// Close closes the database connection
func (s *Store) Close() error {
	return s.db.Close()
}

// RecordAudit appends one audit entry. Missing ids and timestamps are filled
// in, and the stored entry is returned.
func (s *Store) RecordAudit(entry core.AuditEntry) (core.AuditEntry, error) {
	if entry.ID == "" {
		entry.ID = uuid.NewString()
	}
	if entry.CampaignID == "" {
		entry.CampaignID = uuid.NewString()
	}
	if entry.CreatedAt.IsZero() {
		entry.CreatedAt = time.Now().UTC()
	}

	articleIDs, _ := json.Marshal(entry.ArticleIDs)

	query := `
	INSERT OR REPLACE INTO campaigns
	(id, campaign_id, article_ids, subject, status, created_at, sent_at, error_message)
	VALUES (?, ?, ?, ?, ?, ?, ?, ?)`

	var sentAt any
	if entry.SentAt != nil {
		sentAt = entry.SentAt.UTC()
	}

	_, err := s.db.Exec(query,
		entry.ID,
		entry.CampaignID,
		string(articleIDs),
		entry.Subject,
		entry.Status,
		entry.CreatedAt,
		sentAt,
		entry.ErrorMessage,
	)
	if err != nil {
		return core.AuditEntry{}, fmt.Errorf("failed to record audit entry: %w", err)
	}

	return entry, nil
}

// LatestCreatedCampaignID returns the campaign id of the most recent
// "created" audit row. The lookup is best effort: sql.ErrNoRows surfaces when
// nothing has been created yet.
func (s *Store) LatestCreatedCampaignID() (string, error) {
	query := `
	SELECT campaign_id FROM campaigns
	WHERE status = ?
	ORDER BY created_at DESC, rowid DESC
	LIMIT 1`

	var campaignID string
	if err := s.db.QueryRow(query, core.StatusCreated).Scan(&campaignID); err != nil {
		return "", err
	}
	return campaignID, nil
}

// Stats summarizes the audit log by status.
func (s *Store) Stats() (core.AuditStats, error) {
	query := `SELECT status, COUNT(*) FROM campaigns GROUP BY status`

	rows, err := s.db.Query(query)
	if err != nil {
		return core.AuditStats{}, fmt.Errorf("failed to query stats: %w", err)
	}
	defer rows.Close()

	var stats core.AuditStats
	for rows.Next() {
		var status string
		var count int
		if err := rows.Scan(&status, &count); err != nil {
			return core.AuditStats{}, fmt.Errorf("failed to scan stats row: %w", err)
		}

		stats.Total += count
		switch status {
		case core.StatusSent, core.StatusSending:
			stats.Sent += count
		case core.StatusCreated:
			stats.Created += count
		case core.StatusFailed:
			stats.Failed += count
		}
	}

	return stats, rows.Err()
}

// RecentActivity returns the newest audit entries, most recent first.
func (s *Store) RecentActivity(limit int) ([]core.AuditEntry, error) {
	if limit <= 0 {
		limit = 10
	}

	query := `
	SELECT id, campaign_id, article_ids, subject, status, created_at, sent_at, error_message
	FROM campaigns
	ORDER BY created_at DESC, rowid DESC
	LIMIT ?`

	rows, err := s.db.Query(query, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query recent activity: %w", err)
	}
	defer rows.Close()

	var entries []core.AuditEntry
	for rows.Next() {
		var entry core.AuditEntry
		var articleIDs string
		var sentAt sql.NullTime

		if err := rows.Scan(&entry.ID, &entry.CampaignID, &articleIDs, &entry.Subject,
			&entry.Status, &entry.CreatedAt, &sentAt, &entry.ErrorMessage); err != nil {
			return nil, fmt.Errorf("failed to scan audit row: %w", err)
		}

		if articleIDs != "" {
			if err := json.Unmarshal([]byte(articleIDs), &entry.ArticleIDs); err != nil {
				entry.ArticleIDs = nil
			}
		}
		if sentAt.Valid {
			t := sentAt.Time
			entry.SentAt = &t
		}

		entries = append(entries, entry)
	}

	return entries, rows.Err()
}

// RecordGeneration logs one description generation for usage statistics.
func (s *Store) RecordGeneration(articleID int64, wordCount int, fallback bool) error {
	query := `
	INSERT INTO generations (id, article_id, word_count, fallback, created_at)
	VALUES (?, ?, ?, ?, ?)`

	fallbackFlag := 0
	if fallback {
		fallbackFlag = 1
	}

	_, err := s.db.Exec(query, uuid.NewString(), articleID, wordCount, fallbackFlag, time.Now().UTC())
	if err != nil {
		return fmt.Errorf("failed to record generation: %w", err)
	}
	return nil
}

// GenerationStats reports how many descriptions were generated, how many
// needed the fallback path, and the average word count.
func (s *Store) GenerationStats() (total int, fallbacks int, avgWords float64, err error) {
	query := `
	SELECT COUNT(*), COALESCE(SUM(fallback), 0), COALESCE(AVG(word_count), 0)
	FROM generations`

	if err = s.db.QueryRow(query).Scan(&total, &fallbacks, &avgWords); err != nil {
		return 0, 0, 0, fmt.Errorf("failed to query generation stats: %w", err)
	}
	return total, fallbacks, avgWords, nil
}
