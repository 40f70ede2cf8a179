package scraper

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strings"
	"unicode/utf8"

	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/transform"

	"github.com/Dacilla/PCDealTracker/config"
	"github.com/Dacilla/PCDealTracker/internal/tracker/business"
	"github.com/Dacilla/PCDealTracker/internal/tracker/models"
	"github.com/Dacilla/PCDealTracker/internal/tracker/parse"
)

// Feed is one retailer catalog source for a single category. Fetch returns
// every listing currently observable in the source; an error means the
// observation is incomplete and the session must not reconcile delistings
// for this retailer.
type Feed interface {
	Retailer() string
	Category() string
	Fetch(ctx context.Context) ([]business.RawListing, error)
}

// CSVFeed reads a retailer catalog export. Expected header columns are
// name, url, image_url and price; unknown columns are ignored.
type CSVFeed struct {
	cfg config.FeedConfig
}

func NewCSVFeed(cfg config.FeedConfig) *CSVFeed {
	return &CSVFeed{cfg: cfg}
}

func (f *CSVFeed) Retailer() string { return f.cfg.Retailer }
func (f *CSVFeed) Category() string { return f.cfg.Category }

func (f *CSVFeed) Fetch(ctx context.Context) ([]business.RawListing, error) {
	file, err := os.Open(f.cfg.Path)
	if err != nil {
		return nil, fmt.Errorf("failed to open feed %s: %w", f.cfg.Path, err)
	}
	defer file.Close()

	var source io.Reader = file
	if strings.EqualFold(f.cfg.Encoding, "windows-1251") {
		source = transform.NewReader(file, charmap.Windows1251.NewDecoder())
	}

	reader := csv.NewReader(source)
	if f.cfg.Delimiter != "" {
		delim, _ := utf8.DecodeRuneInString(f.cfg.Delimiter)
		reader.Comma = delim
	}
	reader.FieldsPerRecord = -1

	header, err := reader.Read()
	if err != nil {
		return nil, fmt.Errorf("failed to read feed header %s: %w", f.cfg.Path, err)
	}
	columns := map[string]int{}
	for i, name := range header {
		columns[strings.ToLower(strings.TrimSpace(name))] = i
	}
	if _, ok := columns["name"]; !ok {
		return nil, fmt.Errorf("feed %s has no name column", f.cfg.Path)
	}
	if _, ok := columns["url"]; !ok {
		return nil, fmt.Errorf("feed %s has no url column", f.cfg.Path)
	}

	var listings []business.RawListing
	for {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to read feed record %s: %w", f.cfg.Path, err)
		}
		listings = append(listings, f.toRawListing(record, columns))
	}
	return listings, nil
}

func (f *CSVFeed) toRawListing(record []string, columns map[string]int) business.RawListing {
	field := func(name string) string {
		i, ok := columns[name]
		if !ok || i >= len(record) {
			return ""
		}
		return strings.TrimSpace(record[i])
	}

	raw := business.RawListing{
		Name:     field("name"),
		URL:      field("url"),
		ImageURL: field("image_url"),
		Status:   models.StatusAvailable,
		Category: f.cfg.Category,
		Retailer: f.cfg.Retailer,
	}

	// A price that fails to parse keeps the listing but with no price and
	// not purchasable, matching the status shown to the retailer's shoppers.
	if value, err := parse.Price(field("price")); err == nil {
		raw.Price = &value
	} else {
		raw.Status = models.StatusUnavailable
	}
	return raw
}
