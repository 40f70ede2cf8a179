package business

import (
	"testing"

	"github.com/Dacilla/PCDealTracker/internal/tracker/models"
	"github.com/Dacilla/PCDealTracker/internal/tracker/parse"
)

func addListing(t *testing.T, store *fakeStore, categoryID int64, name string) *models.Listing {
	t.Helper()
	brand, model := parse.ProductName(name)
	l := &models.Listing{
		RetailerID:           1,
		CategoryID:           categoryID,
		Name:                 name,
		URL:                  "https://example.com/" + name,
		Brand:                brand,
		Model:                model,
		NormalizedModel:      parse.NormalizeStrict(model),
		LooseNormalizedModel: parse.NormalizeLoose(model),
		Status:               models.StatusAvailable,
	}
	if err := store.CreateListing(l); err != nil {
		t.Fatal(err)
	}
	return l
}

func TestResolverMergesMatchingKeys(t *testing.T) {
	store := newFakeStore()
	store.addCategory(1, "Graphics Cards")

	short := addListing(t, store, 1, "MSI GeForce RTX 4070 Gaming X Trio 12GB")
	long := addListing(t, store, 1, "MSI GeForce RTX-4070 Gaming X Trio OC 12GB")

	// Both names reduce to the same strict key.
	if short.NormalizedModel != long.NormalizedModel {
		t.Fatalf("strict keys differ: %q vs %q", short.NormalizedModel, long.NormalizedModel)
	}

	r := NewResolver(store, store, store, 0, testLogger())
	report, err := r.Run()
	if err != nil {
		t.Fatal(err)
	}
	if report.Scanned != 2 || report.Created != 1 {
		t.Fatalf("report = %+v, want 2 scanned, 1 created", report)
	}

	products, _ := store.AllProducts()
	if len(products) != 1 {
		t.Fatalf("got %d products, want 1", len(products))
	}
	p := products[0]
	if p.CanonicalName != long.Name {
		t.Errorf("canonical name = %q, want the longest member name %q", p.CanonicalName, long.Name)
	}
	if len(p.ListingIDs) != 2 {
		t.Errorf("product has %d members, want 2", len(p.ListingIDs))
	}
	if got := p.Attributes["series"]; got != "RTX" {
		t.Errorf("attributes[series] = %v, want RTX", got)
	}
}

func TestResolverGroupsRetailerNameVariants(t *testing.T) {
	store := newFakeStore()
	store.addCategory(1, "Graphics Cards")

	// Two retailers, one physical card: sub-brand, chip line, and marketing
	// words differ but the strict keys collide. The default scorer stays in
	// place; this merge must not depend on the fuzzy pass.
	a := addListing(t, store, 1, "ASUS ROG Strix RTX 4070 OC 12GB")
	b := addListing(t, store, 1, "Asus Strix GeForce RTX 4070 OC Edition 12GB GDDR6X")

	r := NewResolver(store, store, store, 0, testLogger())
	report, err := r.Run()
	if err != nil {
		t.Fatal(err)
	}
	if report.Created != 1 {
		t.Fatalf("created %d products, want 1", report.Created)
	}

	products, _ := store.AllProducts()
	if len(products) != 1 {
		t.Fatalf("got %d products, want 1", len(products))
	}
	p := products[0]
	if len(p.ListingIDs) != 2 {
		t.Fatalf("product has %d members, want 2", len(p.ListingIDs))
	}
	if p.CanonicalName != b.Name {
		t.Errorf("canonical name = %q, want the longest member name %q", p.CanonicalName, b.Name)
	}
	for _, l := range []*models.Listing{a, b} {
		stored := store.listings[l.ID]
		if stored.ProductID == nil || *stored.ProductID != p.ID {
			t.Errorf("listing %q not attached to the merged product", l.Name)
		}
	}
}

func TestResolverFuzzyThreshold(t *testing.T) {
	for _, tc := range []struct {
		name         string
		score        int
		wantExtended int
		wantCreated  int
	}{
		{"at threshold attaches", 96, 1, 1},
		{"below threshold seeds a new product", 95, 0, 2},
	} {
		t.Run(tc.name, func(t *testing.T) {
			store := newFakeStore()
			store.addCategory(1, "CPUs")

			seed := addListing(t, store, 1, "AMD Ryzen 7 7800X3D")
			r := NewResolver(store, store, store, 0, testLogger())
			if _, err := r.Run(); err != nil {
				t.Fatal(err)
			}

			stranger := addListing(t, store, 1, "Ryzen 7 7800-X3D AM5")
			r.scorer = func(a, b string) int { return tc.score }
			report, err := r.Run()
			if err != nil {
				t.Fatal(err)
			}
			if report.Extended != tc.wantExtended {
				t.Errorf("extended = %d, want %d", report.Extended, tc.wantExtended)
			}
			products, _ := store.AllProducts()
			if len(products) != tc.wantCreated {
				t.Errorf("got %d products, want %d", len(products), tc.wantCreated)
			}

			stored := store.listings[stranger.ID]
			if tc.wantExtended == 1 {
				if stored.ProductID == nil || *stored.ProductID != *store.listings[seed.ID].ProductID {
					t.Error("stranger should share the seed's product")
				}
			} else if stored.ProductID == nil {
				t.Error("stranger should still receive a product of its own")
			}
		})
	}
}

func TestResolverCrossCategoryFallback(t *testing.T) {
	store := newFakeStore()
	store.addCategory(1, "CPUs")
	store.addCategory(2, "Graphics Cards")

	// An existing product in category 1 with the exact same display name.
	first := addListing(t, store, 1, "AMD Ryzen 7 7800X3D")
	r := NewResolver(store, store, store, 0, testLogger())
	if _, err := r.Run(); err != nil {
		t.Fatal(err)
	}

	twin := addListing(t, store, 2, "AMD Ryzen 7 7800X3D")
	r.scorer = func(a, b string) int { return 0 }
	report, err := r.Run()
	if err != nil {
		t.Fatal(err)
	}
	if report.Extended != 1 {
		t.Fatalf("extended = %d, want 1", report.Extended)
	}
	stored := store.listings[twin.ID]
	if stored.ProductID == nil || *stored.ProductID != *store.listings[first.ID].ProductID {
		t.Error("identical names must share one product across categories")
	}
}

func TestResolverIdempotent(t *testing.T) {
	store := newFakeStore()
	store.addCategory(1, "Graphics Cards")
	addListing(t, store, 1, "MSI GeForce RTX 4070 Gaming X Trio 12GB")
	addListing(t, store, 1, "Gigabyte GeForce RTX 4070 Windforce OC 12GB")

	r := NewResolver(store, store, store, 0, testLogger())
	if _, err := r.Run(); err != nil {
		t.Fatal(err)
	}
	productsAfterFirst, _ := store.AllProducts()

	report, err := r.Run()
	if err != nil {
		t.Fatal(err)
	}
	if report.Scanned != 0 || report.Created != 0 || report.Extended != 0 {
		t.Errorf("second run report = %+v, want all zero", report)
	}
	productsAfterSecond, _ := store.AllProducts()
	if len(productsAfterFirst) != len(productsAfterSecond) {
		t.Errorf("product count changed across runs: %d -> %d",
			len(productsAfterFirst), len(productsAfterSecond))
	}
}
