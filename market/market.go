// Package market adapts the ENTSO-E day-ahead price feed into a
// tariff.Provider, as an alternative to the frozen static TOU table.
package market

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/devskill-org/dayahead-planner/entsoe"
	"github.com/devskill-org/dayahead-planner/tariff"
)

// Config holds the ENTSO-E API credentials and query parameters.
type Config struct {
	SecurityToken string
	URLFormat     string // format string consuming (periodStart, periodEnd, securityToken)
	Location      *time.Location
	ReferenceDate time.Time
}

// Provider is a tariff.Provider backed by a fetched ENTSO-E publication
// document, cached for the lifetime of the Provider so repeated PriceAt
// calls within one simulation run don't refetch.
type Provider struct {
	cfg Config

	mu       sync.Mutex
	doc      *entsoe.PublicationMarketDocument
	fetchErr error
}

// New constructs a Provider. No network call happens until the first PriceAt.
func New(cfg Config) *Provider {
	if cfg.Location == nil {
		cfg.Location = time.UTC
	}
	return &Provider{cfg: cfg}
}

func (p *Provider) ensure() (*entsoe.PublicationMarketDocument, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.doc != nil {
		return p.doc, nil
	}
	if p.fetchErr != nil {
		return nil, p.fetchErr
	}
	doc, err := entsoe.DownloadPublicationMarketData(context.Background(), p.cfg.SecurityToken, p.cfg.URLFormat, p.cfg.Location)
	if err != nil {
		p.fetchErr = err
		return nil, err
	}
	p.doc = doc
	return doc, nil
}

// PriceAt returns the average day-ahead market price for the hour containing
// ReferenceDate + hour. Satisfies tariff.Provider.
func (p *Provider) PriceAt(hour int) (float64, error) {
	if hour < 0 || hour > 23 {
		return 0, fmt.Errorf("market: hour %d out of range [0,23]", hour)
	}
	doc, err := p.ensure()
	if err != nil {
		return 0, fmt.Errorf("market: %w", err)
	}
	ref := p.cfg.ReferenceDate
	target := time.Date(ref.Year(), ref.Month(), ref.Day(), hour, 0, 0, 0, p.cfg.Location)
	price, ok := doc.LookupAveragePriceInHourByTime(target)
	if !ok {
		return 0, fmt.Errorf("market: no price published for hour %d", hour)
	}
	return price, nil
}

var _ tariff.Provider = (*Provider)(nil)
