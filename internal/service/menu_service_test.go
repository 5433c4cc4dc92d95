package service

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/Lixing-Zhang/stall-backend/internal/models"
	"github.com/Lixing-Zhang/stall-backend/internal/repository"
)

type recordedEvent struct {
	kind  models.EventKind
	store string
	item  string
	avail bool
	stats models.MenuStats
}

type recordingPublisher struct {
	mu     sync.Mutex
	events []recordedEvent
}

func (p *recordingPublisher) PublishAvailability(storeID, menuItemID string, available bool) int {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, recordedEvent{
		kind:  models.EventAvailabilityChanged,
		store: storeID,
		item:  menuItemID,
		avail: available,
	})
	return 1
}

func (p *recordingPublisher) PublishStatistics(stats models.MenuStats) int {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, recordedEvent{
		kind:  models.EventStatisticsUpdated,
		store: stats.StoreID,
		stats: stats,
	})
	return 1
}

func newMenuService() (*MenuService, *recordingPublisher) {
	pub := &recordingPublisher{}
	svc := NewMenuService(
		repository.NewInMemoryStoreRepository(),
		repository.NewInMemoryMenuRepository(),
		pub,
		discardLogger(),
	)
	return svc, pub
}

func TestMenuService_ListMenu(t *testing.T) {
	svc, _ := newMenuService()
	ctx := context.Background()

	items, err := svc.ListMenu(ctx, "station-road")
	if err != nil {
		t.Fatalf("ListMenu() error = %v", err)
	}
	if len(items) != 3 {
		t.Errorf("ListMenu() returned %d items, want 3", len(items))
	}

	if _, err := svc.ListMenu(ctx, "nowhere"); !errors.Is(err, repository.ErrStoreNotFound) {
		t.Errorf("ListMenu(nowhere) error = %v, want ErrStoreNotFound", err)
	}

	item, err := svc.GetItem(ctx, "main-street", "5")
	if err != nil {
		t.Fatalf("GetItem() error = %v", err)
	}
	if item.Name != "Paneer Roll" {
		t.Errorf("GetItem() name = %q, want Paneer Roll", item.Name)
	}
	if _, err := svc.GetItem(ctx, "main-street", "42"); !errors.Is(err, repository.ErrMenuItemNotFound) {
		t.Errorf("GetItem(42) error = %v, want ErrMenuItemNotFound", err)
	}
}

func TestMenuService_SetAvailability_PublishesChangeThenStats(t *testing.T) {
	svc, pub := newMenuService()

	item, err := svc.SetAvailability(context.Background(), "main-street", "3", false)
	if err != nil {
		t.Fatalf("SetAvailability() error = %v", err)
	}
	if item.IsAvailable {
		t.Error("SetAvailability() returned available item")
	}

	if len(pub.events) != 2 {
		t.Fatalf("published %d events, want 2", len(pub.events))
	}
	first, second := pub.events[0], pub.events[1]
	if first.kind != models.EventAvailabilityChanged || first.store != repository.MainStoreID || first.item != "3" || first.avail {
		t.Errorf("first event = %+v", first)
	}
	if second.kind != models.EventStatisticsUpdated {
		t.Fatalf("second event kind = %s", second.kind)
	}
	if second.stats.TotalItems != 8 || second.stats.AvailableItems != 7 {
		t.Errorf("stats = %+v, want 8 total / 7 available", second.stats)
	}
}

func TestMenuService_SetAvailability_NotFound(t *testing.T) {
	svc, pub := newMenuService()
	ctx := context.Background()

	if _, err := svc.SetAvailability(ctx, "nowhere", "1", false); !errors.Is(err, repository.ErrStoreNotFound) {
		t.Errorf("error = %v, want ErrStoreNotFound", err)
	}
	if _, err := svc.SetAvailability(ctx, "main-street", "42", false); !errors.Is(err, repository.ErrMenuItemNotFound) {
		t.Errorf("error = %v, want ErrMenuItemNotFound", err)
	}
	if len(pub.events) != 0 {
		t.Errorf("published %d events on failure, want 0", len(pub.events))
	}
}

func TestMenuService_SetAvailability_ConcurrentTogglesPublishFinalState(t *testing.T) {
	svc, pub := newMenuService()
	ctx := context.Background()

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func(available bool) {
			defer wg.Done()
			if _, err := svc.SetAvailability(ctx, "main-street", "2", available); err != nil {
				t.Errorf("SetAvailability() error = %v", err)
			}
		}(i%2 == 0)
	}
	wg.Wait()

	item, err := svc.GetItem(ctx, "main-street", "2")
	if err != nil {
		t.Fatalf("GetItem() error = %v", err)
	}

	pub.mu.Lock()
	defer pub.mu.Unlock()

	if len(pub.events) != 100 {
		t.Fatalf("published %d events, want 100", len(pub.events))
	}
	// every toggle publishes its change immediately followed by its stats
	for i := 0; i < len(pub.events); i += 2 {
		change, stats := pub.events[i], pub.events[i+1]
		if change.kind != models.EventAvailabilityChanged || stats.kind != models.EventStatisticsUpdated {
			t.Fatalf("events %d,%d = %s,%s, want change then stats", i, i+1, change.kind, stats.kind)
		}
		wantAvailable := 7
		if change.avail {
			wantAvailable = 8
		}
		if stats.stats.AvailableItems != wantAvailable {
			t.Errorf("events %d: stats available = %d after avail=%v, want %d", i, stats.stats.AvailableItems, change.avail, wantAvailable)
		}
	}

	last := pub.events[len(pub.events)-2]
	if last.avail != item.IsAvailable {
		t.Errorf("last published availability = %v, stored = %v", last.avail, item.IsAvailable)
	}
}

func TestMenuService_BulkSetAvailability(t *testing.T) {
	svc, pub := newMenuService()
	ctx := context.Background()

	changes := []AvailabilityChange{
		{MenuItemID: "1", IsAvailable: false},
		{MenuItemID: "2", IsAvailable: false},
	}
	updated, err := svc.BulkSetAvailability(ctx, "station-road", changes)
	if err != nil {
		t.Fatalf("BulkSetAvailability() error = %v", err)
	}
	if len(updated) != 2 {
		t.Fatalf("updated %d items, want 2", len(updated))
	}

	if len(pub.events) != 3 {
		t.Fatalf("published %d events, want 3", len(pub.events))
	}
	last := pub.events[2]
	if last.kind != models.EventStatisticsUpdated || last.stats.AvailableItems != 1 || last.stats.TotalItems != 3 {
		t.Errorf("final event = %+v, want statistics 1/3", last)
	}

	// one unknown item rejects the whole batch
	pub.events = nil
	_, err = svc.BulkSetAvailability(ctx, "station-road", []AvailabilityChange{
		{MenuItemID: "3", IsAvailable: false},
		{MenuItemID: "42", IsAvailable: false},
	})
	if !errors.Is(err, repository.ErrMenuItemNotFound) {
		t.Fatalf("error = %v, want ErrMenuItemNotFound", err)
	}
	item, _ := svc.GetItem(ctx, "station-road", "3")
	if !item.IsAvailable {
		t.Error("rejected batch still changed item 3")
	}
	if len(pub.events) != 0 {
		t.Errorf("rejected batch published %d events", len(pub.events))
	}
}

func TestMenuService_PublishStatistics(t *testing.T) {
	svc, pub := newMenuService()

	stats, err := svc.PublishStatistics(context.Background(), "main-street")
	if err != nil {
		t.Fatalf("PublishStatistics() error = %v", err)
	}
	if stats.TotalItems != 8 || stats.AvailableItems != 8 {
		t.Errorf("stats = %+v", stats)
	}
	if len(pub.events) != 1 || pub.events[0].kind != models.EventStatisticsUpdated {
		t.Errorf("events = %+v", pub.events)
	}
}

func TestMenuService_LookupItem(t *testing.T) {
	svc, _ := newMenuService()
	ctx := context.Background()

	item, found, err := svc.LookupItem(ctx, repository.MainStoreID, "1")
	if err != nil || !found || item.Name != "Masala Chai" {
		t.Errorf("LookupItem(1) = %+v, %v, %v", item, found, err)
	}

	_, found, err = svc.LookupItem(ctx, repository.MainStoreID, "42")
	if err != nil || found {
		t.Errorf("LookupItem(42) found = %v, err = %v; want not found, nil", found, err)
	}
}
