package business

import (
	"io"
	"sort"
	"time"

	"github.com/Dacilla/PCDealTracker/internal/tracker/models"
	"github.com/Dacilla/PCDealTracker/pkg/logger"
)

func testLogger() logger.Logger {
	return logger.NewLogger(io.Discard, "[test]")
}

// fakeStore is an in-memory implementation of every storage interface the
// business services consume.
type fakeStore struct {
	categories []models.Category
	retailers  []models.Retailer

	listings map[int64]*models.Listing
	history  map[int64][]models.PricePoint
	products map[int64]*models.Product

	nextListingID int64
	nextProductID int64
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		listings: map[int64]*models.Listing{},
		history:  map[int64][]models.PricePoint{},
		products: map[int64]*models.Product{},
	}
}

func (f *fakeStore) addCategory(id int64, name string) {
	f.categories = append(f.categories, models.Category{ID: id, Name: name})
}

func (f *fakeStore) addRetailer(id int64, name string) {
	f.retailers = append(f.retailers, models.Retailer{ID: id, Name: name})
}

func (f *fakeStore) CategoryByName(name string) (*models.Category, error) {
	for i := range f.categories {
		if f.categories[i].Name == name {
			c := f.categories[i]
			return &c, nil
		}
	}
	return nil, nil
}

func (f *fakeStore) RetailerByName(name string) (*models.Retailer, error) {
	for i := range f.retailers {
		if f.retailers[i].Name == name {
			r := f.retailers[i]
			return &r, nil
		}
	}
	return nil, nil
}

func (f *fakeStore) Categories() ([]models.Category, error) {
	return append([]models.Category(nil), f.categories...), nil
}

func (f *fakeStore) ListingByURL(url string) (*models.Listing, error) {
	for _, l := range f.listings {
		if l.URL == url {
			copied := *l
			return &copied, nil
		}
	}
	return nil, nil
}

func (f *fakeStore) CreateListing(l *models.Listing) error {
	f.nextListingID++
	l.ID = f.nextListingID
	copied := *l
	f.listings[l.ID] = &copied
	if l.CurrentPrice != nil {
		f.history[l.ID] = append(f.history[l.ID], models.PricePoint{
			ListingID:  l.ID,
			Price:      *l.CurrentPrice,
			RecordedAt: time.Now(),
		})
	}
	return nil
}

func (f *fakeStore) UpdateListing(l *models.Listing) error {
	copied := *l
	f.listings[l.ID] = &copied
	return nil
}

func (f *fakeStore) ApplyPriceUpdate(l *models.Listing, newPrice float64, onSale bool, at time.Time) error {
	f.history[l.ID] = append(f.history[l.ID], models.PricePoint{
		ListingID:  l.ID,
		Price:      newPrice,
		RecordedAt: at,
	})
	l.PreviousPrice = l.CurrentPrice
	l.CurrentPrice = &newPrice
	l.OnSale = onSale
	copied := *l
	f.listings[l.ID] = &copied
	return nil
}

func (f *fakeStore) AvailableURLs(retailerID int64) ([]string, error) {
	var urls []string
	for _, l := range f.sortedListings() {
		if l.RetailerID == retailerID && l.Status == models.StatusAvailable {
			urls = append(urls, l.URL)
		}
	}
	return urls, nil
}

func (f *fakeStore) MarkUnavailable(retailerID int64, urls []string) error {
	marked := map[string]struct{}{}
	for _, u := range urls {
		marked[u] = struct{}{}
	}
	for _, l := range f.listings {
		if l.RetailerID != retailerID {
			continue
		}
		if _, ok := marked[l.URL]; ok {
			l.Status = models.StatusUnavailable
			l.OnSale = false
		}
	}
	return nil
}

func (f *fakeStore) UnassignedListings() ([]models.Listing, error) {
	var out []models.Listing
	for _, l := range f.sortedListings() {
		if l.ProductID == nil {
			out = append(out, *l)
		}
	}
	return out, nil
}

func (f *fakeStore) AllListings() ([]models.Listing, error) {
	var out []models.Listing
	for _, l := range f.sortedListings() {
		out = append(out, *l)
	}
	return out, nil
}

func (f *fakeStore) UpdateNormalizedKeys(listingID int64, strict, loose string) error {
	if l, ok := f.listings[listingID]; ok {
		l.NormalizedModel = strict
		l.LooseNormalizedModel = loose
	}
	return nil
}

func (f *fakeStore) sortedListings() []*models.Listing {
	out := make([]*models.Listing, 0, len(f.listings))
	for _, l := range f.listings {
		out = append(out, l)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

func (f *fakeStore) PriceHistory(listingID int64) ([]models.PricePoint, error) {
	return append([]models.PricePoint(nil), f.history[listingID]...), nil
}

func (f *fakeStore) PurgeHistory(listingID int64) error {
	delete(f.history, listingID)
	return nil
}

func (f *fakeStore) ProductByID(id int64) (*models.Product, error) {
	p, ok := f.products[id]
	if !ok {
		return nil, nil
	}
	copied := *p
	return &copied, nil
}

func (f *fakeStore) AllProducts() ([]models.Product, error) {
	var out []models.Product
	for _, p := range f.sortedProducts() {
		out = append(out, *p)
	}
	return out, nil
}

func (f *fakeStore) sortedProducts() []*models.Product {
	out := make([]*models.Product, 0, len(f.products))
	for _, p := range f.products {
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

func (f *fakeStore) CreateProduct(p *models.Product, listingIDs []int64) error {
	f.nextProductID++
	p.ID = f.nextProductID
	p.ListingIDs = append([]int64(nil), listingIDs...)
	copied := *p
	f.products[p.ID] = &copied
	for _, id := range listingIDs {
		if l, ok := f.listings[id]; ok {
			pid := p.ID
			l.ProductID = &pid
		}
	}
	return nil
}

func (f *fakeStore) AttachListings(productID int64, listingIDs []int64) error {
	p, ok := f.products[productID]
	if !ok {
		return nil
	}
	for _, id := range listingIDs {
		l, ok := f.listings[id]
		if !ok || l.ProductID != nil {
			continue
		}
		pid := productID
		l.ProductID = &pid
		p.ListingIDs = append(p.ListingIDs, id)
	}
	return nil
}

func (f *fakeStore) UpdateAttributes(productID int64, attrs map[string]interface{}) error {
	if p, ok := f.products[productID]; ok {
		p.Attributes = attrs
	}
	return nil
}

func (f *fakeStore) PriceSummary(productID int64) (*models.ProductPriceSummary, error) {
	summary := &models.ProductPriceSummary{ProductID: productID}
	for _, l := range f.sortedListings() {
		if l.ProductID == nil || *l.ProductID != productID {
			continue
		}
		if l.Status == models.StatusAvailable && l.CurrentPrice != nil {
			if summary.BestPrice == nil || *l.CurrentPrice < *summary.BestPrice {
				price, retailer := *l.CurrentPrice, l.RetailerID
				summary.BestPrice = &price
				summary.BestRetailerID = &retailer
			}
		}
		for _, point := range f.history[l.ID] {
			if summary.AllTimeLowPrice == nil || point.Price < *summary.AllTimeLowPrice {
				price, at, retailer := point.Price, point.RecordedAt, l.RetailerID
				summary.AllTimeLowPrice = &price
				summary.AllTimeLowDate = &at
				summary.AllTimeLowRetailer = &retailer
			}
		}
	}
	return summary, nil
}
