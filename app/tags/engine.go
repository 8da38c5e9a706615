package tags

import (
	"errors"
	"fmt"

	"github.com/mjwhitby/regwatch/app/database"
)

var (
	ErrItemNotFound = errors.New("item not found")
	ErrInvalidScope = errors.New("invalid tag scope")
)

// Engine is the application surface for user tags, saved items and folders.
// It validates input and resolves guids against the record store; uniqueness
// itself is enforced by the repositories.
type Engine struct {
	records *database.RecordRepository
	tags    *database.TagRepository
	saved   *database.SavedRepository
}

func NewEngine(records *database.RecordRepository, tags *database.TagRepository, saved *database.SavedRepository) *Engine {
	return &Engine{
		records: records,
		tags:    tags,
		saved:   saved,
	}
}

// AddTag tags an item for a user within an org scope. SiteID and controlID
// are optional refinements; nil means the tag applies org-wide. Tagging the
// same scope twice returns the existing tag with created=false.
func (e *Engine) AddTag(userEmail, itemGUID string, orgID int64, siteID, controlID *int64) (*database.Tag, bool, error) {
	if userEmail == "" || itemGUID == "" {
		return nil, false, fmt.Errorf("%w: user and item are required", ErrInvalidScope)
	}
	if orgID <= 0 {
		return nil, false, fmt.Errorf("%w: org id is required", ErrInvalidScope)
	}
	if (siteID != nil && *siteID <= 0) || (controlID != nil && *controlID <= 0) {
		return nil, false, fmt.Errorf("%w: ids must be positive", ErrInvalidScope)
	}

	if err := e.requireItem(itemGUID); err != nil {
		return nil, false, err
	}

	tag, created, err := e.tags.Insert(userEmail, itemGUID, orgID, siteID, controlID)
	if err != nil {
		return nil, false, fmt.Errorf("failed to add tag: %w", err)
	}
	return tag, created, nil
}

// RemoveTag deletes a tag by id. Unknown ids are a no-op.
func (e *Engine) RemoveTag(id int64) error {
	return e.tags.Delete(id)
}

// ListItemTags returns all of a user's tags on one item.
func (e *Engine) ListItemTags(userEmail, itemGUID string) ([]database.Tag, error) {
	return e.tags.ListForItem(userEmail, itemGUID)
}

// ListScope returns a user's tags within an org. Nil siteID or controlID
// leaves that dimension unconstrained rather than matching only
// dimensionless tags.
func (e *Engine) ListScope(userEmail string, orgID int64, siteID, controlID *int64) ([]database.Tag, error) {
	if orgID <= 0 {
		return nil, fmt.Errorf("%w: org id is required", ErrInvalidScope)
	}
	return e.tags.ListForScope(userEmail, orgID, siteID, controlID)
}

// SaveItem bookmarks an item for a user, optionally into a folder and with a
// note. Re-saving updates the folder and keeps the old note when the new one
// is empty.
func (e *Engine) SaveItem(userEmail, itemGUID string, folderID *int64, note string) (*database.SavedItem, error) {
	if userEmail == "" || itemGUID == "" {
		return nil, fmt.Errorf("%w: user and item are required", ErrInvalidScope)
	}
	if err := e.requireItem(itemGUID); err != nil {
		return nil, err
	}
	return e.saved.Save(userEmail, itemGUID, folderID, note)
}

// UnsaveItem removes a bookmark. Unknown items are a no-op.
func (e *Engine) UnsaveItem(userEmail, itemGUID string) error {
	return e.saved.Unsave(userEmail, itemGUID)
}

// ListSaved returns a user's bookmarks, optionally restricted to one folder.
func (e *Engine) ListSaved(userEmail string, folderID *int64) ([]database.SavedItem, error) {
	return e.saved.ListSaved(userEmail, folderID)
}

// CreateFolder makes a folder, returning the existing one when the name is
// already taken.
func (e *Engine) CreateFolder(userEmail, name string) (*database.Folder, error) {
	if userEmail == "" || name == "" {
		return nil, fmt.Errorf("%w: user and folder name are required", ErrInvalidScope)
	}
	return e.saved.CreateFolder(userEmail, name)
}

// ListFolders returns a user's folders.
func (e *Engine) ListFolders(userEmail string) ([]database.Folder, error) {
	return e.saved.ListFolders(userEmail)
}

func (e *Engine) requireItem(itemGUID string) error {
	exists, err := e.records.Exists(itemGUID)
	if err != nil {
		return fmt.Errorf("failed to check item: %w", err)
	}
	if !exists {
		return fmt.Errorf("%w: %s", ErrItemNotFound, itemGUID)
	}
	return nil
}
