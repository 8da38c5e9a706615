package database

import (
	"database/sql"
	"fmt"
	"time"

	sq "github.com/Masterminds/squirrel"
)

// TagRepository handles database operations for user tags. Duplicate
// prevention lives in the idx_tags_uniqueness index; optional dimensions are
// normalized to the shared sentinel before touching SQL so that two "no site"
// tags collide instead of coexisting as distinct NULLs.
type TagRepository struct {
	db *DB
}

func NewTagRepository(db *DB) *TagRepository {
	return &TagRepository{db: db}
}

// Insert adds a tag and returns it together with created=true. Re-inserting
// an identical scope is a no-op: the existing row is returned with
// created=false.
func (t *TagRepository) Insert(userEmail, itemGUID string, orgID int64, siteID, controlID *int64) (*Tag, bool, error) {
	now := time.Now().UTC()
	res, err := t.db.Exec(`
		INSERT OR IGNORE INTO tags (user_email, item_guid, org_id, site_id, control_id, created_at)
		VALUES (?, ?, ?, ?, ?, ?)
	`, userEmail, itemGUID, orgID, NullKey(siteID), NullKey(controlID), now)
	if err != nil {
		return nil, false, fmt.Errorf("failed to insert tag: %w", err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return nil, false, fmt.Errorf("failed to get rows affected: %w", err)
	}

	tag, err := t.getByScope(userEmail, itemGUID, orgID, NullKey(siteID), NullKey(controlID))
	if err != nil {
		return nil, false, err
	}
	return tag, affected > 0, nil
}

func (t *TagRepository) getByScope(userEmail, itemGUID string, orgID, siteKey, controlKey int64) (*Tag, error) {
	row := t.db.QueryRow(`
		SELECT id, user_email, item_guid, org_id, site_id, control_id, created_at
		FROM tags
		WHERE user_email = ? AND item_guid = ? AND org_id = ? AND site_id = ? AND control_id = ?
	`, userEmail, itemGUID, orgID, siteKey, controlKey)

	tag, err := scanTag(row)
	if err != nil {
		return nil, fmt.Errorf("failed to load tag: %w", err)
	}
	return tag, nil
}

// Delete removes a tag by id. Deleting an absent id is not an error.
func (t *TagRepository) Delete(id int64) error {
	if _, err := t.db.Exec("DELETE FROM tags WHERE id = ?", id); err != nil {
		return fmt.Errorf("failed to delete tag: %w", err)
	}
	return nil
}

// ListForItem returns all of one user's tags on one item, newest first.
func (t *TagRepository) ListForItem(userEmail, itemGUID string) ([]Tag, error) {
	rows, err := t.db.Query(`
		SELECT id, user_email, item_guid, org_id, site_id, control_id, created_at
		FROM tags
		WHERE user_email = ? AND item_guid = ?
		ORDER BY created_at DESC, id DESC
	`, userEmail, itemGUID)
	if err != nil {
		return nil, fmt.Errorf("failed to list item tags: %w", err)
	}
	defer rows.Close()

	return collectTags(rows)
}

// ListForScope returns a user's tags within an org. A nil siteID or controlID
// leaves that dimension unconstrained; passing a concrete id matches only
// tags carrying that id, and the sentinel matches only dimensionless tags.
func (t *TagRepository) ListForScope(userEmail string, orgID int64, siteID, controlID *int64) ([]Tag, error) {
	builder := sq.Select("id", "user_email", "item_guid", "org_id", "site_id", "control_id", "created_at").
		From("tags").
		Where(sq.Eq{"user_email": userEmail, "org_id": orgID}).
		OrderBy("created_at DESC, id DESC")
	if siteID != nil {
		builder = builder.Where(sq.Eq{"site_id": *siteID})
	}
	if controlID != nil {
		builder = builder.Where(sq.Eq{"control_id": *controlID})
	}

	query, args, err := builder.ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build scope query: %w", err)
	}

	rows, err := t.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list scope tags: %w", err)
	}
	defer rows.Close()

	return collectTags(rows)
}

func collectTags(rows *sql.Rows) ([]Tag, error) {
	var tags []Tag
	for rows.Next() {
		tag, err := scanTag(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan tag row: %w", err)
		}
		tags = append(tags, *tag)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating tag rows: %w", err)
	}
	return tags, nil
}

func scanTag(row rowScanner) (*Tag, error) {
	var tag Tag
	var siteKey, controlKey int64

	err := row.Scan(&tag.ID, &tag.UserEmail, &tag.ItemGUID, &tag.OrgID, &siteKey, &controlKey, &tag.CreatedAt)
	if err != nil {
		return nil, err
	}

	tag.SiteID = NullKeyValue(siteKey)
	tag.ControlID = NullKeyValue(controlKey)
	return &tag, nil
}
