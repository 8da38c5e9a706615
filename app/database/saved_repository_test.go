package database

import (
	"testing"
)

func TestSavedRepository_Save_Upsert(t *testing.T) {
	db := newTestDB(t)
	seedRecord(t, db, "guid-1")
	repo := NewSavedRepository(db)

	item, err := repo.Save("alice@example.com", "guid-1", nil, "follow up next week")
	if err != nil {
		t.Fatalf("Save failed: %v", err)
	}
	if item.FolderID != nil {
		t.Errorf("Expected nil folder id, got %v", item.FolderID)
	}
	if item.Note != "follow up next week" {
		t.Errorf("Unexpected note: %s", item.Note)
	}

	// Re-saving into a folder with an empty note keeps the old note.
	folder, err := repo.CreateFolder("alice@example.com", "Reading")
	if err != nil {
		t.Fatalf("CreateFolder failed: %v", err)
	}
	item, err = repo.Save("alice@example.com", "guid-1", &folder.ID, "")
	if err != nil {
		t.Fatalf("Re-save failed: %v", err)
	}
	if item.FolderID == nil || *item.FolderID != folder.ID {
		t.Errorf("Expected folder id %d, got %v", folder.ID, item.FolderID)
	}
	if item.Note != "follow up next week" {
		t.Errorf("Expected note to be preserved, got: %q", item.Note)
	}

	// A non-empty note replaces it.
	item, err = repo.Save("alice@example.com", "guid-1", &folder.ID, "done")
	if err != nil {
		t.Fatalf("Re-save failed: %v", err)
	}
	if item.Note != "done" {
		t.Errorf("Expected replaced note, got: %q", item.Note)
	}

	items, err := repo.ListSaved("alice@example.com", nil)
	if err != nil {
		t.Fatalf("ListSaved failed: %v", err)
	}
	if len(items) != 1 {
		t.Errorf("Expected 1 saved item after re-saves, got %d", len(items))
	}
}

func TestSavedRepository_Unsave(t *testing.T) {
	db := newTestDB(t)
	seedRecord(t, db, "guid-1")
	repo := NewSavedRepository(db)

	if _, err := repo.Save("alice@example.com", "guid-1", nil, ""); err != nil {
		t.Fatalf("Save failed: %v", err)
	}
	if err := repo.Unsave("alice@example.com", "guid-1"); err != nil {
		t.Fatalf("Unsave failed: %v", err)
	}

	items, _ := repo.ListSaved("alice@example.com", nil)
	if len(items) != 0 {
		t.Errorf("Expected no saved items, got %d", len(items))
	}

	if err := repo.Unsave("alice@example.com", "guid-1"); err != nil {
		t.Errorf("Expected unsaving an absent item to succeed, got: %v", err)
	}
}

func TestSavedRepository_ListSaved_ByFolder(t *testing.T) {
	db := newTestDB(t)
	seedRecord(t, db, "guid-1")
	seedRecord(t, db, "guid-2")
	repo := NewSavedRepository(db)

	folder, err := repo.CreateFolder("alice@example.com", "Reading")
	if err != nil {
		t.Fatalf("CreateFolder failed: %v", err)
	}

	if _, err := repo.Save("alice@example.com", "guid-1", &folder.ID, ""); err != nil {
		t.Fatalf("Save failed: %v", err)
	}
	if _, err := repo.Save("alice@example.com", "guid-2", nil, ""); err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	inFolder, err := repo.ListSaved("alice@example.com", &folder.ID)
	if err != nil {
		t.Fatalf("ListSaved failed: %v", err)
	}
	if len(inFolder) != 1 || inFolder[0].ItemGUID != "guid-1" {
		t.Errorf("Expected only guid-1 in folder, got %v", inFolder)
	}

	all, err := repo.ListSaved("alice@example.com", nil)
	if err != nil {
		t.Fatalf("ListSaved failed: %v", err)
	}
	if len(all) != 2 {
		t.Errorf("Expected 2 saved items overall, got %d", len(all))
	}
}

func TestSavedRepository_CreateFolder_Idempotent(t *testing.T) {
	db := newTestDB(t)
	repo := NewSavedRepository(db)

	first, err := repo.CreateFolder("alice@example.com", "Reading")
	if err != nil {
		t.Fatalf("CreateFolder failed: %v", err)
	}
	second, err := repo.CreateFolder("alice@example.com", "Reading")
	if err != nil {
		t.Fatalf("Repeated CreateFolder failed: %v", err)
	}
	if second.ID != first.ID {
		t.Errorf("Expected the existing folder back, got id %d vs %d", second.ID, first.ID)
	}

	folders, err := repo.ListFolders("alice@example.com")
	if err != nil {
		t.Fatalf("ListFolders failed: %v", err)
	}
	if len(folders) != 1 {
		t.Errorf("Expected 1 folder, got %d", len(folders))
	}

	// The same name under another user is a separate folder.
	other, err := repo.CreateFolder("bob@example.com", "Reading")
	if err != nil {
		t.Fatalf("CreateFolder failed: %v", err)
	}
	if other.ID == first.ID {
		t.Error("Expected per-user folder namespaces")
	}
}
