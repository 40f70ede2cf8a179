package business

import (
	"fmt"
	"strings"
	"sync"

	fuzzy "github.com/paul-mannino/go-fuzzywuzzy"

	"github.com/Dacilla/PCDealTracker/internal/tracker/models"
	"github.com/Dacilla/PCDealTracker/internal/tracker/parse"
	"github.com/Dacilla/PCDealTracker/internal/tracker/storage"
	"github.com/Dacilla/PCDealTracker/metrics"
	"github.com/Dacilla/PCDealTracker/pkg/logger"
)

// DefaultSimilarityThreshold is deliberately strict: the fuzzy pass exists to
// catch typos and word-order variance, not to merge distinct models.
const DefaultSimilarityThreshold = 96

type scoreFunc func(a, b string) int

// Resolver groups not-yet-assigned listings into canonical products using a
// two-pass algorithm: exact (category, strict key) grouping, then token-set
// fuzzy matching for the leftovers. Runs are additive and idempotent; already
// assigned listings are never reconsidered. A run-level mutex serializes
// passes so two concurrent runs cannot both decide a name is new.
type Resolver struct {
	listings  storage.ListingStore
	products  storage.ProductStore
	refs      storage.ReferenceStore
	threshold int
	scorer    scoreFunc
	log       logger.Logger

	mu sync.Mutex
}

func NewResolver(listings storage.ListingStore, products storage.ProductStore, refs storage.ReferenceStore, threshold int, log logger.Logger) *Resolver {
	if threshold <= 0 {
		threshold = DefaultSimilarityThreshold
	}
	return &Resolver{
		listings:  listings,
		products:  products,
		refs:      refs,
		threshold: threshold,
		scorer: func(a, b string) int {
			return fuzzy.TokenSetRatio(a, b)
		},
		log: log,
	}
}

type MergeReport struct {
	Scanned  int
	Created  int
	Extended int
}

type candidate struct {
	id   int64
	name string
}

// productIndex is the explicit in-memory view of canonical products for one
// run. It replaces read-after-write queries against the store, so a listing
// matched late in the run still sees products created earlier in it.
type productIndex struct {
	byCategory map[int64][]candidate
	byName     map[string]int64
}

func (ix *productIndex) add(p *models.Product) {
	ix.byCategory[p.CategoryID] = append(ix.byCategory[p.CategoryID], candidate{id: p.ID, name: p.CanonicalName})
	if _, ok := ix.byName[p.CanonicalName]; !ok {
		ix.byName[p.CanonicalName] = p.ID
	}
}

func (r *Resolver) Run() (*MergeReport, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	report := &MergeReport{}

	unassigned, err := r.listings.UnassignedListings()
	if err != nil {
		return nil, fmt.Errorf("failed to load unassigned listings: %w", err)
	}
	report.Scanned = len(unassigned)
	if len(unassigned) == 0 {
		r.log.Log("merge: no new listings to group")
		return report, nil
	}

	categories, err := r.refs.Categories()
	if err != nil {
		return nil, fmt.Errorf("failed to load categories: %w", err)
	}
	categoryNames := make(map[int64]string, len(categories))
	for _, c := range categories {
		categoryNames[c.ID] = c.Name
	}

	existing, err := r.products.AllProducts()
	if err != nil {
		return nil, fmt.Errorf("failed to load canonical products: %w", err)
	}
	index := &productIndex{
		byCategory: make(map[int64][]candidate),
		byName:     make(map[string]int64, len(existing)),
	}
	for i := range existing {
		index.add(&existing[i])
	}

	r.log.Log("merge: %d unassigned listings, %d existing products", len(unassigned), len(existing))

	leftovers := r.passExactKeys(unassigned, categoryNames, index, report)
	r.passFuzzy(leftovers, categoryNames, index, report)

	metrics.RecordMerge(report.Created, report.Extended)
	r.log.Log("merge: created %d products, extended %d memberships", report.Created, report.Extended)
	return report, nil
}

// Pass 1: listings sharing a non-empty strict key within one category are a
// definite match. Groups of one and keyless listings fall through to pass 2.
func (r *Resolver) passExactKeys(unassigned []models.Listing, categoryNames map[int64]string, index *productIndex, report *MergeReport) []*models.Listing {
	type groupKey struct {
		categoryID int64
		key        string
	}

	groups := make(map[groupKey][]*models.Listing)
	var order []groupKey
	var leftovers []*models.Listing

	for i := range unassigned {
		l := &unassigned[i]
		key := strings.TrimSpace(l.NormalizedModel)
		if key == "" {
			leftovers = append(leftovers, l)
			continue
		}
		gk := groupKey{categoryID: l.CategoryID, key: key}
		if _, ok := groups[gk]; !ok {
			order = append(order, gk)
		}
		groups[gk] = append(groups[gk], l)
	}

	for _, gk := range order {
		members := groups[gk]
		if len(members) < 2 {
			leftovers = append(leftovers, members...)
			continue
		}

		// Canonical display name: the longest original name, first
		// encountered winning ties.
		canonical := members[0]
		for _, m := range members[1:] {
			if len(m.Name) > len(canonical.Name) {
				canonical = m
			}
		}

		p := &models.Product{
			CanonicalName: canonical.Name,
			Brand:         members[0].Brand,
			Model:         members[0].Model,
			CategoryID:    gk.categoryID,
			Attributes:    attributeMap(canonical.Name, categoryNames[gk.categoryID]),
		}
		ids := make([]int64, len(members))
		for i, m := range members {
			ids[i] = m.ID
		}
		if err := r.products.CreateProduct(p, ids); err != nil {
			r.log.Log("merge: failed to create product for key %q: %v", gk.key, err)
			continue
		}
		index.add(p)
		report.Created++
	}

	return leftovers
}

// Pass 2: score each leftover against every candidate in its category. Below
// threshold, an exact-name match anywhere guards against duplicates created
// in another category's commit scope; failing that, the listing seeds a new
// product.
func (r *Resolver) passFuzzy(leftovers []*models.Listing, categoryNames map[int64]string, index *productIndex, report *MergeReport) {
	byCategory := make(map[int64][]*models.Listing)
	var order []int64
	for _, l := range leftovers {
		if _, ok := byCategory[l.CategoryID]; !ok {
			order = append(order, l.CategoryID)
		}
		byCategory[l.CategoryID] = append(byCategory[l.CategoryID], l)
	}

	for _, categoryID := range order {
		categoryName := categoryNames[categoryID]

		for _, l := range byCategory[categoryID] {
			best := -1
			var bestID int64
			for _, c := range index.byCategory[categoryID] {
				if score := r.scorer(l.Name, c.name); score > best {
					best = score
					bestID = c.id
				}
			}

			if best >= r.threshold && bestID != 0 {
				if err := r.products.AttachListings(bestID, []int64{l.ID}); err != nil {
					r.log.Log("merge: failed to attach listing %d in %q: %v", l.ID, categoryName, err)
					continue
				}
				report.Extended++
				continue
			}

			if pid, ok := index.byName[l.Name]; ok {
				if err := r.products.AttachListings(pid, []int64{l.ID}); err != nil {
					r.log.Log("merge: failed cross-category attach for listing %d: %v", l.ID, err)
					continue
				}
				report.Extended++
				continue
			}

			p := &models.Product{
				CanonicalName: l.Name,
				Brand:         l.Brand,
				Model:         l.Model,
				CategoryID:    categoryID,
				Attributes:    attributeMap(l.Name, categoryName),
			}
			if err := r.products.CreateProduct(p, []int64{l.ID}); err != nil {
				r.log.Log("merge: failed to create product for listing %d: %v", l.ID, err)
				continue
			}
			index.add(p)
			report.Created++
		}
	}
}

func attributeMap(name, categoryName string) map[string]interface{} {
	set := parse.Attributes(name, categoryName)
	if set == nil {
		return map[string]interface{}{}
	}
	return set.Map()
}
