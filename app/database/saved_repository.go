package database

import (
	"fmt"
	"time"
)

// SavedRepository handles database operations for per-user saved items and
// folders. Saving is an upsert keyed by (user_email, item_guid): re-saving
// moves the item between folders but keeps an existing note unless the caller
// supplies a replacement.
type SavedRepository struct {
	db *DB
}

func NewSavedRepository(db *DB) *SavedRepository {
	return &SavedRepository{db: db}
}

// Save upserts a saved item. An empty note preserves whatever note is already
// stored; folderID nil files the item at the top level.
func (s *SavedRepository) Save(userEmail, itemGUID string, folderID *int64, note string) (*SavedItem, error) {
	now := time.Now().UTC()
	_, err := s.db.Exec(`
		INSERT INTO saved_items (user_email, item_guid, folder_id, note, created_at)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(user_email, item_guid) DO UPDATE SET
			folder_id = excluded.folder_id,
			note = CASE WHEN excluded.note = '' THEN saved_items.note ELSE excluded.note END
	`, userEmail, itemGUID, NullKey(folderID), note, now)
	if err != nil {
		return nil, fmt.Errorf("failed to save item: %w", err)
	}

	return s.get(userEmail, itemGUID)
}

func (s *SavedRepository) get(userEmail, itemGUID string) (*SavedItem, error) {
	row := s.db.QueryRow(`
		SELECT id, user_email, item_guid, folder_id, note, created_at
		FROM saved_items
		WHERE user_email = ? AND item_guid = ?
	`, userEmail, itemGUID)

	item, err := scanSavedItem(row)
	if err != nil {
		return nil, fmt.Errorf("failed to load saved item: %w", err)
	}
	return item, nil
}

// Unsave removes a saved item. Removing an item that was never saved is not
// an error.
func (s *SavedRepository) Unsave(userEmail, itemGUID string) error {
	_, err := s.db.Exec(
		"DELETE FROM saved_items WHERE user_email = ? AND item_guid = ?",
		userEmail, itemGUID)
	if err != nil {
		return fmt.Errorf("failed to unsave item: %w", err)
	}
	return nil
}

// ListSaved returns a user's saved items, optionally restricted to one
// folder. folderID nil returns everything regardless of folder.
func (s *SavedRepository) ListSaved(userEmail string, folderID *int64) ([]SavedItem, error) {
	query := `
		SELECT id, user_email, item_guid, folder_id, note, created_at
		FROM saved_items
		WHERE user_email = ?
	`
	args := []any{userEmail}
	if folderID != nil {
		query += " AND folder_id = ?"
		args = append(args, *folderID)
	}
	query += " ORDER BY created_at DESC, id DESC"

	rows, err := s.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list saved items: %w", err)
	}
	defer rows.Close()

	var items []SavedItem
	for rows.Next() {
		item, err := scanSavedItem(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan saved item row: %w", err)
		}
		items = append(items, *item)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating saved item rows: %w", err)
	}
	return items, nil
}

// CreateFolder adds a folder for a user, returning the existing folder when
// the name is already taken.
func (s *SavedRepository) CreateFolder(userEmail, name string) (*Folder, error) {
	now := time.Now().UTC()
	_, err := s.db.Exec(`
		INSERT OR IGNORE INTO folders (user_email, name, created_at)
		VALUES (?, ?, ?)
	`, userEmail, name, now)
	if err != nil {
		return nil, fmt.Errorf("failed to create folder: %w", err)
	}

	var folder Folder
	err = s.db.QueryRow(`
		SELECT id, user_email, name, created_at
		FROM folders
		WHERE user_email = ? AND name = ?
	`, userEmail, name).Scan(&folder.ID, &folder.UserEmail, &folder.Name, &folder.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("failed to load folder: %w", err)
	}
	return &folder, nil
}

// ListFolders returns a user's folders in name order.
func (s *SavedRepository) ListFolders(userEmail string) ([]Folder, error) {
	rows, err := s.db.Query(`
		SELECT id, user_email, name, created_at
		FROM folders
		WHERE user_email = ?
		ORDER BY name
	`, userEmail)
	if err != nil {
		return nil, fmt.Errorf("failed to list folders: %w", err)
	}
	defer rows.Close()

	var folders []Folder
	for rows.Next() {
		var folder Folder
		if err := rows.Scan(&folder.ID, &folder.UserEmail, &folder.Name, &folder.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan folder row: %w", err)
		}
		folders = append(folders, folder)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating folder rows: %w", err)
	}
	return folders, nil
}

func scanSavedItem(row rowScanner) (*SavedItem, error) {
	var item SavedItem
	var folderKey int64

	err := row.Scan(&item.ID, &item.UserEmail, &item.ItemGUID, &folderKey, &item.Note, &item.CreatedAt)
	if err != nil {
		return nil, err
	}

	item.FolderID = NullKeyValue(folderKey)
	return &item, nil
}
