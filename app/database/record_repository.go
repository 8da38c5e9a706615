package database

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"hash/fnv"
	"sync"
	"time"

	sq "github.com/Masterminds/squirrel"
)

// guidLockStripes bounds lock memory for an unbounded guid space.
const guidLockStripes = 64

// RecordRepository handles database operations for ingested records. Upserts
// are serialized per guid: overlapping runs producing the same item are
// strictly ordered, while distinct items proceed in parallel. The critical
// section is a short metadata merge; no network call happens under the lock.
type RecordRepository struct {
	db    *DB
	locks [guidLockStripes]sync.Mutex
}

func NewRecordRepository(db *DB) *RecordRepository {
	return &RecordRepository{db: db}
}

func (r *RecordRepository) guidLock(guid string) *sync.Mutex {
	h := fnv.New32a()
	h.Write([]byte(guid))
	return &r.locks[h.Sum32()%guidLockStripes]
}

// Upsert merges a candidate into the store. A new guid inserts a record and
// returns created=true. An existing guid refreshes mutable fields but keeps
// first_seen_at and, unless forceRefresh is set, a previously populated AI
// summary.
func (r *RecordRepository) Upsert(rec Record, forceRefresh bool) (bool, error) {
	lock := r.guidLock(rec.GUID)
	lock.Lock()
	defer lock.Unlock()

	existing, err := r.Get(rec.GUID)
	if err != nil {
		return false, fmt.Errorf("failed to load existing record: %w", err)
	}

	now := time.Now().UTC()

	if existing == nil {
		topicsJSON, err := marshalTopics(rec.Topics)
		if err != nil {
			return false, err
		}
		var aiAt *time.Time
		if rec.AISummary != nil {
			aiAt = &now
		}
		_, err = r.db.Exec(`
			INSERT INTO records (
				guid, source, title, link, published_at, content, summary,
				topics, ai_summary, ai_summary_updated_at, first_seen_at, updated_at
			) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		`, rec.GUID, rec.Source, rec.Title, rec.Link, rec.PublishedAt, rec.Content,
			rec.Summary, topicsJSON, rec.AISummary, aiAt, now, now)
		if err != nil {
			return false, fmt.Errorf("failed to insert record: %w", err)
		}
		return true, nil
	}

	merged := mergeRecords(existing, rec, forceRefresh, now)
	topicsJSON, err := marshalTopics(merged.Topics)
	if err != nil {
		return false, err
	}

	_, err = r.db.Exec(`
		UPDATE records SET
			source = ?, title = ?, link = ?, published_at = ?, content = ?,
			summary = ?, topics = ?, ai_summary = ?, ai_summary_updated_at = ?,
			updated_at = ?
		WHERE guid = ?
	`, merged.Source, merged.Title, merged.Link, merged.PublishedAt, merged.Content,
		merged.Summary, topicsJSON, merged.AISummary, merged.AISummaryUpdatedAt,
		now, rec.GUID)
	if err != nil {
		return false, fmt.Errorf("failed to update record: %w", err)
	}
	return false, nil
}

// mergeRecords applies the field-protection rules: mutable fields follow the
// candidate, empty candidate content/summary never clobbers stored text, and
// the AI summary only moves when absent or explicitly forced.
func mergeRecords(existing *Record, rec Record, forceRefresh bool, now time.Time) Record {
	merged := rec

	if merged.Content == "" {
		merged.Content = existing.Content
	}
	if merged.Summary == "" {
		merged.Summary = existing.Summary
	}
	if merged.PublishedAt == nil {
		merged.PublishedAt = existing.PublishedAt
	}
	if len(merged.Topics) == 0 {
		merged.Topics = existing.Topics
	}

	hasAI := existing.AISummary != nil && *existing.AISummary != ""
	if hasAI && !forceRefresh {
		merged.AISummary = existing.AISummary
		merged.AISummaryUpdatedAt = existing.AISummaryUpdatedAt
	} else if merged.AISummary != nil {
		merged.AISummaryUpdatedAt = &now
	} else {
		merged.AISummary = existing.AISummary
		merged.AISummaryUpdatedAt = existing.AISummaryUpdatedAt
	}

	return merged
}

// SetAISummary populates the AI summary once. Without force it is a no-op
// when a non-empty AI summary is already stored.
func (r *RecordRepository) SetAISummary(guid, summary string, force bool) error {
	lock := r.guidLock(guid)
	lock.Lock()
	defer lock.Unlock()

	now := time.Now().UTC()
	var res sql.Result
	var err error
	if force {
		res, err = r.db.Exec(`
			UPDATE records SET ai_summary = ?, ai_summary_updated_at = ?, updated_at = ?
			WHERE guid = ?
		`, summary, now, now, guid)
	} else {
		res, err = r.db.Exec(`
			UPDATE records SET ai_summary = ?, ai_summary_updated_at = ?, updated_at = ?
			WHERE guid = ? AND (ai_summary IS NULL OR ai_summary = '')
		`, summary, now, now, guid)
	}
	if err != nil {
		return fmt.Errorf("failed to set AI summary: %w", err)
	}
	if _, err := res.RowsAffected(); err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	return nil
}

// Get returns the record for a guid, or nil when absent.
func (r *RecordRepository) Get(guid string) (*Record, error) {
	row := r.db.QueryRow(`
		SELECT guid, source, title, link, published_at, content, summary,
		       topics, ai_summary, ai_summary_updated_at, first_seen_at, updated_at
		FROM records
		WHERE guid = ?
	`, guid)

	rec, err := scanRecord(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get record: %w", err)
	}
	return rec, nil
}

// Exists reports whether a guid is already in the store.
func (r *RecordRepository) Exists(guid string) (bool, error) {
	var one int
	err := r.db.QueryRow("SELECT 1 FROM records WHERE guid = ? LIMIT 1", guid).Scan(&one)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("failed to check record existence: %w", err)
	}
	return true, nil
}

// List returns the newest records, optionally restricted to one source.
func (r *RecordRepository) List(sourceName string, limit int) ([]Record, error) {
	builder := sq.Select(
		"guid", "source", "title", "link", "published_at", "content", "summary",
		"topics", "ai_summary", "ai_summary_updated_at", "first_seen_at", "updated_at").
		From("records").
		OrderBy("COALESCE(published_at, first_seen_at) DESC").
		Limit(uint64(limit))
	if sourceName != "" {
		builder = builder.Where(sq.Eq{"source": sourceName})
	}

	query, args, err := builder.ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build list query: %w", err)
	}

	rows, err := r.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list records: %w", err)
	}
	defer rows.Close()

	var records []Record
	for rows.Next() {
		rec, err := scanRecord(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan record row: %w", err)
		}
		records = append(records, *rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating record rows: %w", err)
	}
	return records, nil
}

// CountAll returns the total number of stored records.
func (r *RecordRepository) CountAll() (int, error) {
	var count int
	if err := r.db.QueryRow("SELECT COUNT(*) FROM records").Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count records: %w", err)
	}
	return count, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanRecord(row rowScanner) (*Record, error) {
	var rec Record
	var topicsJSON string
	var aiSummary sql.NullString

	err := row.Scan(
		&rec.GUID, &rec.Source, &rec.Title, &rec.Link, &rec.PublishedAt,
		&rec.Content, &rec.Summary, &topicsJSON, &aiSummary,
		&rec.AISummaryUpdatedAt, &rec.FirstSeenAt, &rec.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	if aiSummary.Valid {
		rec.AISummary = &aiSummary.String
	}
	if err := json.Unmarshal([]byte(topicsJSON), &rec.Topics); err != nil {
		return nil, fmt.Errorf("failed to decode topics: %w", err)
	}
	return &rec, nil
}

func marshalTopics(topics []string) (string, error) {
	if topics == nil {
		topics = []string{}
	}
	data, err := json.Marshal(topics)
	if err != nil {
		return "", fmt.Errorf("failed to encode topics: %w", err)
	}
	return string(data), nil
}
