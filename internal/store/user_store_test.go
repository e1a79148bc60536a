package store

import (
	"errors"
	"fmt"
	"sync"
	"testing"

	"gorm.io/gorm"
)

func TestUserStore_CreateAndFind(t *testing.T) {
	users := NewUserStore(setupTestDB(t))

	t.Run("creates a verified account", func(t *testing.T) {
		user, err := users.Create("+15551234567", "bcrypt-hash")
		if err != nil {
			t.Fatalf("Create failed: %v", err)
		}
		if !user.Verified {
			t.Error("expected created account to be verified")
		}
		if user.ID.String() == "00000000-0000-0000-0000-000000000000" {
			t.Error("expected generated UUID")
		}
	})

	t.Run("find returns the stored account", func(t *testing.T) {
		user, err := users.FindByIdentifier("+15551234567")
		if err != nil {
			t.Fatalf("FindByIdentifier failed: %v", err)
		}
		if user.PasswordHash != "bcrypt-hash" {
			t.Errorf("expected stored hash, got %q", user.PasswordHash)
		}
	})

	t.Run("find on unknown identifier is not found", func(t *testing.T) {
		_, err := users.FindByIdentifier("nobody@example.com")
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			t.Errorf("expected gorm.ErrRecordNotFound, got %v", err)
		}
	})

	t.Run("duplicate identifier is rejected", func(t *testing.T) {
		_, err := users.Create("+15551234567", "another-hash")
		if !errors.Is(err, ErrDuplicateIdentifier) {
			t.Errorf("expected ErrDuplicateIdentifier, got %v", err)
		}
	})
}

func TestUserStore_Exists(t *testing.T) {
	users := NewUserStore(setupTestDB(t))

	exists, err := users.Exists("user@example.com")
	if err != nil {
		t.Fatalf("Exists failed: %v", err)
	}
	if exists {
		t.Error("expected no account before creation")
	}

	if _, err := users.Create("user@example.com", "hash"); err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	exists, err = users.Exists("user@example.com")
	if err != nil {
		t.Fatalf("Exists failed: %v", err)
	}
	if !exists {
		t.Error("expected account to exist after creation")
	}
}

func TestUserStore_ListAndDelete(t *testing.T) {
	users := NewUserStore(setupTestDB(t))

	for _, identifier := range []string{"a@example.com", "b@example.com"} {
		if _, err := users.Create(identifier, "hash"); err != nil {
			t.Fatalf("Create(%s) failed: %v", identifier, err)
		}
	}

	all, err := users.List()
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	if len(all) != 2 {
		t.Fatalf("expected 2 accounts, got %d", len(all))
	}

	deleted, err := users.Delete("a@example.com")
	if err != nil {
		t.Fatalf("Delete failed: %v", err)
	}
	if deleted != 1 {
		t.Errorf("expected 1 deleted row, got %d", deleted)
	}

	deleted, err = users.Delete("a@example.com")
	if err != nil {
		t.Fatalf("Delete failed: %v", err)
	}
	if deleted != 0 {
		t.Errorf("expected 0 deleted rows on repeat delete, got %d", deleted)
	}
}

func TestUserStore_ConcurrentCreate(t *testing.T) {
	users := NewUserStore(setupTestDB(t))

	const attempts = 8
	results := make(chan error, attempts)

	var wg sync.WaitGroup
	for i := 0; i < attempts; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			_, err := users.Create("race@example.com", fmt.Sprintf("hash-%d", n))
			results <- err
		}(i)
	}
	wg.Wait()
	close(results)

	var created, duplicates int
	for err := range results {
		switch {
		case err == nil:
			created++
		case errors.Is(err, ErrDuplicateIdentifier):
			duplicates++
		default:
			t.Errorf("unexpected error from concurrent create: %v", err)
		}
	}

	if created != 1 {
		t.Errorf("expected exactly one winning create, got %d", created)
	}
	if duplicates != attempts-1 {
		t.Errorf("expected %d duplicate rejections, got %d", attempts-1, duplicates)
	}
}
