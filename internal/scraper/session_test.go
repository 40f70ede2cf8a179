package scraper

import (
	"context"
	"errors"
	"io"
	"sync"
	"testing"
	"time"

	"github.com/Dacilla/PCDealTracker/config"
	"github.com/Dacilla/PCDealTracker/internal/tracker/business"
	"github.com/Dacilla/PCDealTracker/internal/tracker/models"
	"github.com/Dacilla/PCDealTracker/pkg/logger"
)

// memStore backs the business services with enough in-memory state for a
// session round trip. Guarded by a mutex because ingest runs concurrently.
type memStore struct {
	mu         sync.Mutex
	categories []models.Category
	retailers  []models.Retailer
	listings   map[string]*models.Listing
	history    map[int64][]models.PricePoint
	nextID     int64
}

func newMemStore() *memStore {
	return &memStore{
		categories: []models.Category{{ID: 1, Name: "CPUs"}},
		retailers:  []models.Retailer{{ID: 1, Name: "Scorptec"}},
		listings:   map[string]*models.Listing{},
		history:    map[int64][]models.PricePoint{},
	}
}

func (m *memStore) CategoryByName(name string) (*models.Category, error) {
	for _, c := range m.categories {
		if c.Name == name {
			return &c, nil
		}
	}
	return nil, nil
}

func (m *memStore) RetailerByName(name string) (*models.Retailer, error) {
	for _, r := range m.retailers {
		if r.Name == name {
			return &r, nil
		}
	}
	return nil, nil
}

func (m *memStore) Categories() ([]models.Category, error) {
	return append([]models.Category(nil), m.categories...), nil
}

func (m *memStore) ListingByURL(url string) (*models.Listing, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if l, ok := m.listings[url]; ok {
		copied := *l
		return &copied, nil
	}
	return nil, nil
}

func (m *memStore) CreateListing(l *models.Listing) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.nextID++
	l.ID = m.nextID
	copied := *l
	m.listings[l.URL] = &copied
	if l.CurrentPrice != nil {
		m.history[l.ID] = append(m.history[l.ID], models.PricePoint{
			ListingID: l.ID, Price: *l.CurrentPrice, RecordedAt: time.Now(),
		})
	}
	return nil
}

func (m *memStore) UpdateListing(l *models.Listing) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	copied := *l
	m.listings[l.URL] = &copied
	return nil
}

func (m *memStore) ApplyPriceUpdate(l *models.Listing, newPrice float64, onSale bool, at time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.history[l.ID] = append(m.history[l.ID], models.PricePoint{ListingID: l.ID, Price: newPrice, RecordedAt: at})
	l.PreviousPrice = l.CurrentPrice
	l.CurrentPrice = &newPrice
	l.OnSale = onSale
	copied := *l
	m.listings[l.URL] = &copied
	return nil
}

func (m *memStore) AvailableURLs(retailerID int64) ([]string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var urls []string
	for _, l := range m.listings {
		if l.RetailerID == retailerID && l.Status == models.StatusAvailable {
			urls = append(urls, l.URL)
		}
	}
	return urls, nil
}

func (m *memStore) MarkUnavailable(retailerID int64, urls []string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, u := range urls {
		if l, ok := m.listings[u]; ok && l.RetailerID == retailerID {
			l.Status = models.StatusUnavailable
			l.OnSale = false
		}
	}
	return nil
}

func (m *memStore) UnassignedListings() ([]models.Listing, error) { return nil, nil }
func (m *memStore) AllListings() ([]models.Listing, error)        { return nil, nil }
func (m *memStore) UpdateNormalizedKeys(int64, string, string) error {
	return nil
}

func (m *memStore) PriceHistory(listingID int64) ([]models.PricePoint, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]models.PricePoint(nil), m.history[listingID]...), nil
}

func (m *memStore) PurgeHistory(listingID int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.history, listingID)
	return nil
}

type stubFeed struct {
	retailer string
	category string
	listings []business.RawListing
	err      error
}

func (f *stubFeed) Retailer() string { return f.retailer }
func (f *stubFeed) Category() string { return f.category }

func (f *stubFeed) Fetch(ctx context.Context) ([]business.RawListing, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.listings, nil
}

func price(v float64) *float64 { return &v }

func newSessionFixture(store *memStore) *Coordinator {
	log := logger.NewLogger(io.Discard, "[test]")
	deals := business.NewDealService(store, store, business.DealConfig{}, log)
	ingest := business.NewIngestService(store, store, deals, log)
	delist := business.NewDelistingService(store, store, log)
	cfg := config.ScraperConfig{MaxConcurrency: 2, RequestsPerMinute: 60000}
	return NewCoordinator(cfg, ingest, delist, log)
}

func seedListing(store *memStore, url string) {
	l := &models.Listing{
		RetailerID:   1,
		CategoryID:   1,
		Name:         url,
		URL:          url,
		CurrentPrice: price(100),
		Status:       models.StatusAvailable,
	}
	store.CreateListing(l)
}

func TestSessionIngestsAndReconciles(t *testing.T) {
	store := newMemStore()
	seedListing(store, "https://example.com/gone")

	feed := &stubFeed{
		retailer: "Scorptec",
		category: "CPUs",
		listings: []business.RawListing{
			{Name: "Intel Core i5-14600K", URL: "https://example.com/i5", Price: price(500), Status: models.StatusAvailable, Category: "CPUs", Retailer: "Scorptec"},
			{Name: "AMD Ryzen 5 5600", URL: "https://example.com/5600", Price: price(200), Status: models.StatusAvailable, Category: "CPUs", Retailer: "Scorptec"},
		},
	}

	c := newSessionFixture(store)
	if err := c.Run(context.Background(), []Feed{feed}); err != nil {
		t.Fatal(err)
	}

	if l, _ := store.ListingByURL("https://example.com/i5"); l == nil {
		t.Error("observed listing was not ingested")
	}
	gone, _ := store.ListingByURL("https://example.com/gone")
	if gone.Status != models.StatusUnavailable {
		t.Errorf("missing listing status = %q, want Unavailable", gone.Status)
	}
}

func TestSessionSkipsReconcileOnCancel(t *testing.T) {
	store := newMemStore()
	seedListing(store, "https://example.com/gone")

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	c := newSessionFixture(store)
	err := c.Run(ctx, []Feed{&stubFeed{retailer: "Scorptec", category: "CPUs"}})
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("Run = %v, want context.Canceled", err)
	}

	gone, _ := store.ListingByURL("https://example.com/gone")
	if gone.Status != models.StatusAvailable {
		t.Error("a cancelled session must not delist anything")
	}
}

func TestSessionSkipsReconcileOnFeedError(t *testing.T) {
	store := newMemStore()
	seedListing(store, "https://example.com/gone")

	feed := &stubFeed{retailer: "Scorptec", category: "CPUs", err: errors.New("boom")}
	c := newSessionFixture(store)
	if err := c.Run(context.Background(), []Feed{feed}); err != nil {
		t.Fatal(err)
	}

	gone, _ := store.ListingByURL("https://example.com/gone")
	if gone.Status != models.StatusAvailable {
		t.Error("a failed feed must not delist the retailer's listings")
	}
}
