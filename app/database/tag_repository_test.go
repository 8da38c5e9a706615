package database

import (
	"testing"
)

func ptr(v int64) *int64 { return &v }

func seedRecord(t *testing.T, db *DB, guid string) {
	t.Helper()
	repo := NewRecordRepository(db)
	if _, err := repo.Upsert(testRecord(guid), false); err != nil {
		t.Fatalf("Failed to seed record: %v", err)
	}
}

func TestTagRepository_Insert_Duplicate(t *testing.T) {
	db := newTestDB(t)
	seedRecord(t, db, "guid-1")
	repo := NewTagRepository(db)

	first, created, err := repo.Insert("alice@example.com", "guid-1", 10, nil, nil)
	if err != nil {
		t.Fatalf("Insert failed: %v", err)
	}
	if !created {
		t.Error("Expected created=true for a new tag")
	}

	second, created, err := repo.Insert("alice@example.com", "guid-1", 10, nil, nil)
	if err != nil {
		t.Fatalf("Duplicate insert failed: %v", err)
	}
	if created {
		t.Error("Expected created=false for a duplicate scope")
	}
	if second.ID != first.ID {
		t.Errorf("Expected the existing tag back, got id %d vs %d", second.ID, first.ID)
	}

	tags, err := repo.ListForItem("alice@example.com", "guid-1")
	if err != nil {
		t.Fatalf("ListForItem failed: %v", err)
	}
	if len(tags) != 1 {
		t.Errorf("Expected exactly 1 tag after duplicate insert, got %d", len(tags))
	}
}

func TestTagRepository_Insert_DistinctScopesCoexist(t *testing.T) {
	db := newTestDB(t)
	seedRecord(t, db, "guid-1")
	repo := NewTagRepository(db)

	scopes := []struct {
		site, control *int64
	}{
		{nil, nil},
		{ptr(5), nil},
		{nil, ptr(7)},
		{ptr(5), ptr(7)},
	}
	for _, scope := range scopes {
		if _, created, err := repo.Insert("alice@example.com", "guid-1", 10, scope.site, scope.control); err != nil {
			t.Fatalf("Insert failed: %v", err)
		} else if !created {
			t.Errorf("Expected scope (site=%v control=%v) to be new", scope.site, scope.control)
		}
	}

	tags, err := repo.ListForItem("alice@example.com", "guid-1")
	if err != nil {
		t.Fatalf("ListForItem failed: %v", err)
	}
	if len(tags) != 4 {
		t.Errorf("Expected 4 distinct scopes, got %d", len(tags))
	}
}

func TestTagRepository_Insert_RoundTripsOptionalDimensions(t *testing.T) {
	db := newTestDB(t)
	seedRecord(t, db, "guid-1")
	repo := NewTagRepository(db)

	tag, _, err := repo.Insert("alice@example.com", "guid-1", 10, ptr(5), nil)
	if err != nil {
		t.Fatalf("Insert failed: %v", err)
	}

	if tag.SiteID == nil || *tag.SiteID != 5 {
		t.Errorf("Expected site id 5, got %v", tag.SiteID)
	}
	if tag.ControlID != nil {
		t.Errorf("Expected nil control id, got %v", tag.ControlID)
	}
	if tag.OrgID != 10 {
		t.Errorf("Expected org id 10, got %d", tag.OrgID)
	}
}

func TestTagRepository_Insert_PerUserIsolation(t *testing.T) {
	db := newTestDB(t)
	seedRecord(t, db, "guid-1")
	repo := NewTagRepository(db)

	if _, created, err := repo.Insert("alice@example.com", "guid-1", 10, nil, nil); err != nil || !created {
		t.Fatalf("Insert failed: created=%v err=%v", created, err)
	}
	if _, created, err := repo.Insert("bob@example.com", "guid-1", 10, nil, nil); err != nil || !created {
		t.Fatalf("Expected same scope under another user to be new: created=%v err=%v", created, err)
	}
}

func TestTagRepository_Delete(t *testing.T) {
	db := newTestDB(t)
	seedRecord(t, db, "guid-1")
	repo := NewTagRepository(db)

	tag, _, err := repo.Insert("alice@example.com", "guid-1", 10, nil, nil)
	if err != nil {
		t.Fatalf("Insert failed: %v", err)
	}

	if err := repo.Delete(tag.ID); err != nil {
		t.Fatalf("Delete failed: %v", err)
	}

	tags, _ := repo.ListForItem("alice@example.com", "guid-1")
	if len(tags) != 0 {
		t.Errorf("Expected no tags after delete, got %d", len(tags))
	}

	// Deleting again is a no-op.
	if err := repo.Delete(tag.ID); err != nil {
		t.Errorf("Expected deleting an absent id to succeed, got: %v", err)
	}
}

func TestTagRepository_ListForScope(t *testing.T) {
	db := newTestDB(t)
	seedRecord(t, db, "guid-1")
	seedRecord(t, db, "guid-2")
	repo := NewTagRepository(db)

	mustInsert := func(guid string, org int64, site, control *int64) {
		t.Helper()
		if _, _, err := repo.Insert("alice@example.com", guid, org, site, control); err != nil {
			t.Fatalf("Insert failed: %v", err)
		}
	}

	mustInsert("guid-1", 10, nil, nil)
	mustInsert("guid-1", 10, ptr(5), nil)
	mustInsert("guid-2", 10, ptr(5), ptr(7))
	mustInsert("guid-2", 99, nil, nil)

	// Nil dimensions are wildcards: everything in the org.
	all, err := repo.ListForScope("alice@example.com", 10, nil, nil)
	if err != nil {
		t.Fatalf("ListForScope failed: %v", err)
	}
	if len(all) != 3 {
		t.Errorf("Expected 3 tags in org 10, got %d", len(all))
	}

	// A concrete site narrows to tags carrying that site.
	site5, err := repo.ListForScope("alice@example.com", 10, ptr(5), nil)
	if err != nil {
		t.Fatalf("ListForScope failed: %v", err)
	}
	if len(site5) != 2 {
		t.Errorf("Expected 2 tags for site 5, got %d", len(site5))
	}

	// The sentinel selects only dimensionless tags.
	orgWide, err := repo.ListForScope("alice@example.com", 10, ptr(-1), ptr(-1))
	if err != nil {
		t.Fatalf("ListForScope failed: %v", err)
	}
	if len(orgWide) != 1 {
		t.Errorf("Expected 1 org-wide tag, got %d", len(orgWide))
	}
}
