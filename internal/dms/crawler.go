// internal/dms/crawler.go
package dms

import (
	"context"
	"fmt"
	"sort"
	"time"
)

// DefaultPageSize is the number of applications requested per listing page.
const DefaultPageSize = 100

// ApplicationSummary is one entry of a listing page.
type ApplicationSummary struct {
	ID        int
	State     ApplicationState
	UpdatedAt time.Time
}

// Page is one listing response. TotalPages is whatever the upstream declared
// on this response.
type Page struct {
	Applications []ApplicationSummary
	TotalPages   int
}

type PageFetcher interface {
	FetchPage(ctx context.Context, procedureID int, token string, page, pageSize int) (*Page, error)
}

// ProcessedIDLookup returns the application IDs already ingested for a procedure.
type ProcessedIDLookup interface {
	ProcessedIDs(ctx context.Context, procedureID int) (map[int]struct{}, error)
}

// PageProgress is reported after each fetched page.
type PageProgress struct {
	ProcedureID int
	Page        int
	TotalPages  int
	Admitted    int
}

type Crawler struct {
	pages     PageFetcher
	processed ProcessedIDLookup
	pageSize  int
	progress  func(PageProgress)
}

type CrawlerOption func(*Crawler)

func WithPageSize(size int) CrawlerOption {
	return func(c *Crawler) {
		if size > 0 {
			c.pageSize = size
		}
	}
}

// WithProgress registers a callback invoked after every page.
func WithProgress(fn func(PageProgress)) CrawlerOption {
	return func(c *Crawler) {
		c.progress = fn
	}
}

func NewCrawler(pages PageFetcher, processed ProcessedIDLookup, opts ...CrawlerOption) *Crawler {
	c := &Crawler{
		pages:     pages,
		processed: processed,
		pageSize:  DefaultPageSize,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// AllApplicationIDs walks every listing page of a procedure and returns the
// IDs of applications whose state is in states and, when lastUpdate is set,
// whose last update is at or after it. IDs are ordered by last update, oldest
// first, keeping upstream order for equal timestamps. No states means all.
//
// A page fetch error aborts the walk and is returned wrapped.
func (c *Crawler) AllApplicationIDs(ctx context.Context, procedureID int, token string, lastUpdate *time.Time, states ...ApplicationState) ([]int, error) {
	admitted, err := c.admittedApplications(ctx, procedureID, token, lastUpdate, states)
	if err != nil {
		return nil, err
	}
	return summaryIDs(admitted), nil
}

func (c *Crawler) admittedApplications(ctx context.Context, procedureID int, token string, lastUpdate *time.Time, states []ApplicationState) ([]ApplicationSummary, error) {
	if err := checkCrawlParams(procedureID, token); err != nil {
		return nil, err
	}
	if len(states) == 0 {
		states = AllStates
	}
	accepted := stateSet(states)

	var admitted []ApplicationSummary
	for page, totalPages := 1, 1; page <= totalPages; page++ {
		resp, err := c.pages.FetchPage(ctx, procedureID, token, page, c.pageSize)
		if err != nil {
			return nil, fmt.Errorf("fetch page %d of procedure %d: %w", page, procedureID, err)
		}
		totalPages = resp.TotalPages

		count := 0
		for _, app := range resp.Applications {
			if _, ok := accepted[app.State]; !ok {
				continue
			}
			if lastUpdate != nil && app.UpdatedAt.Before(*lastUpdate) {
				continue
			}
			admitted = append(admitted, app)
			count++
		}

		if c.progress != nil {
			c.progress(PageProgress{
				ProcedureID: procedureID,
				Page:        page,
				TotalPages:  totalPages,
				Admitted:    count,
			})
		}
	}

	sort.SliceStable(admitted, func(i, j int) bool {
		return admitted[i].UpdatedAt.Before(admitted[j].UpdatedAt)
	})
	return admitted, nil
}

func summaryIDs(apps []ApplicationSummary) []int {
	ids := make([]int, len(apps))
	for i, app := range apps {
		ids[i] = app.ID
	}
	return ids
}

// ClosedApplicationIDs returns closed applications not ingested yet, in
// ascending ID order.
func (c *Crawler) ClosedApplicationIDs(ctx context.Context, procedureID int, token string) ([]int, error) {
	if c.processed == nil {
		return nil, fmt.Errorf("%w: processed application lookup", ErrMissingConfiguration)
	}
	ids, err := c.AllApplicationIDs(ctx, procedureID, token, nil, AcceptedStates...)
	if err != nil {
		return nil, err
	}

	processed, err := c.processed.ProcessedIDs(ctx, procedureID)
	if err != nil {
		return nil, fmt.Errorf("load processed applications of procedure %d: %w", procedureID, err)
	}

	seen := make(map[int]struct{}, len(ids))
	remaining := make([]int, 0, len(ids))
	for _, id := range ids {
		if _, done := processed[id]; done {
			continue
		}
		if _, dup := seen[id]; dup {
			continue
		}
		seen[id] = struct{}{}
		remaining = append(remaining, id)
	}
	sort.Ints(remaining)
	return remaining, nil
}

// ReceivedApplicationIDs returns draft applications updated at or after
// lastUpdate, oldest first. The watermark is mandatory.
func (c *Crawler) ReceivedApplicationIDs(ctx context.Context, procedureID int, token string, lastUpdate time.Time) ([]int, error) {
	apps, err := c.ReceivedApplications(ctx, procedureID, token, lastUpdate)
	if err != nil {
		return nil, err
	}
	return summaryIDs(apps), nil
}

// ReceivedApplications is ReceivedApplicationIDs keeping the listing entries,
// so callers can move their watermark to the newest UpdatedAt.
func (c *Crawler) ReceivedApplications(ctx context.Context, procedureID int, token string, lastUpdate time.Time) ([]ApplicationSummary, error) {
	if lastUpdate.IsZero() {
		return nil, ErrMissingWatermark
	}
	return c.admittedApplications(ctx, procedureID, token, &lastUpdate, DraftStates)
}

func checkCrawlParams(procedureID int, token string) error {
	if procedureID <= 0 {
		return fmt.Errorf("%w: procedure id", ErrMissingConfiguration)
	}
	if token == "" {
		return fmt.Errorf("%w: api token", ErrMissingConfiguration)
	}
	return nil
}
