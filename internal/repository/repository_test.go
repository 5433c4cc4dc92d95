package repository

import (
	"context"
	"errors"
	"sync"
	"testing"
)

func TestInMemoryStoreRepository(t *testing.T) {
	repo := NewInMemoryStoreRepository()
	ctx := context.Background()

	tests := []struct {
		name    string
		slug    string
		wantID  string
		wantErr error
	}{
		{name: "main store", slug: "main-street", wantID: MainStoreID},
		{name: "station store", slug: "station-road", wantID: StationStoreID},
		{name: "unknown slug", slug: "nowhere", wantErr: ErrStoreNotFound},
		{name: "empty slug", slug: "", wantErr: ErrStoreNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store, err := repo.GetBySlug(ctx, tt.slug)
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Errorf("GetBySlug() error = %v, want %v", err, tt.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatalf("GetBySlug() unexpected error = %v", err)
			}
			if store.ID != tt.wantID {
				t.Errorf("GetBySlug() ID = %q, want %q", store.ID, tt.wantID)
			}
		})
	}

	stores, err := repo.List(ctx)
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}
	if len(stores) != 2 || stores[0].Slug != "main-street" || stores[1].Slug != "station-road" {
		t.Errorf("List() = %+v, want stores sorted by slug", stores)
	}
}

func TestInMemoryMenuRepository_ListByStore(t *testing.T) {
	repo := NewInMemoryMenuRepository()
	ctx := context.Background()

	items, err := repo.ListByStore(ctx, MainStoreID)
	if err != nil {
		t.Fatalf("ListByStore() error = %v", err)
	}
	if len(items) != 8 {
		t.Fatalf("ListByStore() returned %d items, want 8", len(items))
	}
	if items[0].ID != "1" || items[len(items)-1].ID != "8" {
		t.Errorf("ListByStore() not in menu order: first %q last %q", items[0].ID, items[len(items)-1].ID)
	}

	// mutating the returned slice must not leak into the repository
	items[0].IsAvailable = false
	again, _ := repo.ListByStore(ctx, MainStoreID)
	if !again[0].IsAvailable {
		t.Error("ListByStore() returned a shared slice")
	}

	empty, err := repo.ListByStore(ctx, "unknown")
	if err != nil || len(empty) != 0 {
		t.Errorf("ListByStore(unknown) = %v, %v; want empty, nil", empty, err)
	}
}

func TestInMemoryMenuRepository_SetAvailability(t *testing.T) {
	repo := NewInMemoryMenuRepository()
	ctx := context.Background()

	updated, err := repo.SetAvailability(ctx, MainStoreID, "2", false)
	if err != nil {
		t.Fatalf("SetAvailability() error = %v", err)
	}
	if updated.IsAvailable {
		t.Error("SetAvailability() returned item still available")
	}

	got, err := repo.GetItem(ctx, MainStoreID, "2")
	if err != nil {
		t.Fatalf("GetItem() error = %v", err)
	}
	if got.IsAvailable {
		t.Error("GetItem() after SetAvailability(false) still available")
	}

	// item ids are scoped per store
	other, err := repo.GetItem(ctx, StationStoreID, "2")
	if err != nil {
		t.Fatalf("GetItem(station) error = %v", err)
	}
	if !other.IsAvailable {
		t.Error("SetAvailability() leaked into another store")
	}

	if _, err := repo.SetAvailability(ctx, MainStoreID, "99", true); !errors.Is(err, ErrMenuItemNotFound) {
		t.Errorf("SetAvailability(missing) error = %v, want ErrMenuItemNotFound", err)
	}
	if _, err := repo.GetItem(ctx, "unknown", "1"); !errors.Is(err, ErrMenuItemNotFound) {
		t.Errorf("GetItem(unknown store) error = %v, want ErrMenuItemNotFound", err)
	}
}

func TestInMemoryMenuRepository_Concurrent(t *testing.T) {
	repo := NewInMemoryMenuRepository()
	ctx := context.Background()

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(2)
		go func(i int) {
			defer wg.Done()
			_, _ = repo.SetAvailability(ctx, MainStoreID, "1", i%2 == 0)
		}(i)
		go func() {
			defer wg.Done()
			_, _ = repo.ListByStore(ctx, MainStoreID)
		}()
	}
	wg.Wait()

	if _, err := repo.GetItem(ctx, MainStoreID, "1"); err != nil {
		t.Errorf("GetItem() after concurrent updates error = %v", err)
	}
}
