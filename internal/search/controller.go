package search

import (
	"context"
	"fmt"
	"io"
	"net/url"
	"strconv"
	"sync"
	"time"

	"github.com/buinguyenkhai/pttkht-20251-recipe-recommendation-system/internal/api"
	"github.com/buinguyenkhai/pttkht-20251-recipe-recommendation-system/internal/filters"
	"github.com/buinguyenkhai/pttkht-20251-recipe-recommendation-system/internal/models"
	"github.com/buinguyenkhai/pttkht-20251-recipe-recommendation-system/internal/shared"
	"github.com/charmbracelet/log"
)

// DefaultSettleDelay is how long typing must pause before the text is committed.
const DefaultSettleDelay = 500 * time.Millisecond

// FailureMessage is shown when a failed search carries no backend detail.
const FailureMessage = "Search request failed"

var ErrClosed = fmt.Errorf("search controller closed")

// Status is the controller's state machine position.
type Status int

const (
	Idle Status = iota
	Searching
	Ready
	Failed
)

func (s Status) String() string {
	switch s {
	case Idle:
		return "idle"
	case Searching:
		return "searching"
	case Ready:
		return "ready"
	case Failed:
		return "failed"
	}
	return "unknown"
}

// Searcher runs a backend recipe search.
type Searcher interface {
	SearchRecipes(ctx context.Context, params url.Values) (*models.RecipePage, error)
}

// Timer is a pending delayed call.
type Timer interface {
	Stop() bool
}

// Scheduler starts delayed calls. The default uses time.AfterFunc.
type Scheduler interface {
	AfterFunc(d time.Duration, f func()) Timer
}

type clock struct{}

func (clock) AfterFunc(d time.Duration, f func()) Timer { return time.AfterFunc(d, f) }

// Snapshot is the observable controller state.
type Snapshot struct {
	Status      Status
	Query       filters.Query
	Location    string
	PendingText string
	Recipes     []models.Recipe
	Total       int
	Pagination  models.Pagination
	Err         string
	// Seq identifies the request whose outcome the snapshot shows.
	Seq uint64
}

// Options configures a [Controller]. Zero values select defaults.
type Options struct {
	SettleDelay time.Duration
	PageSize    int
	Scheduler   Scheduler
	Logger      *log.Logger
	// OnNavigate is called after every committed location change with the new query and its
	// encoded query string. It runs outside the controller lock.
	OnNavigate func(q filters.Query, location string)
}

// Controller owns the search location and the results shown for it.
type Controller struct {
	searcher   Searcher
	sched      Scheduler
	delay      time.Duration
	pageSize   int
	logger     *log.Logger
	onNavigate func(filters.Query, string)

	ctx  context.Context
	stop context.CancelFunc
	wg   sync.WaitGroup

	mu       sync.Mutex
	location url.Values
	pending  string
	timer    Timer
	timerGen uint64
	seq      uint64
	cancel   context.CancelFunc
	snap     Snapshot
	updates  chan Snapshot
	closed   bool
}

// New creates an idle controller with an empty location.
func New(searcher Searcher, opts Options) *Controller {
	if opts.SettleDelay <= 0 {
		opts.SettleDelay = DefaultSettleDelay
	}
	if opts.PageSize <= 0 {
		opts.PageSize = models.DefaultPageSize
	}
	if opts.Scheduler == nil {
		opts.Scheduler = clock{}
	}
	if opts.Logger == nil {
		opts.Logger = shared.NewLogger(io.Discard)
	}

	ctx, stop := context.WithCancel(context.Background())
	c := &Controller{
		searcher:   searcher,
		sched:      opts.Scheduler,
		delay:      opts.SettleDelay,
		pageSize:   opts.PageSize,
		logger:     opts.Logger,
		onNavigate: opts.OnNavigate,
		ctx:        ctx,
		stop:       stop,
		location:   url.Values{},
		updates:    make(chan Snapshot, 1),
	}
	c.snap = Snapshot{Status: Idle, Query: filters.NewQuery()}
	return c
}

// Updates delivers the latest snapshot after every change. Intermediate snapshots may be
// dropped when the reader is slow. The channel is closed by [Controller.Close].
func (c *Controller) Updates() <-chan Snapshot { return c.updates }

// Snapshot returns the current state.
func (c *Controller) Snapshot() Snapshot {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.copySnapLocked()
}

func (c *Controller) copySnapLocked() Snapshot {
	s := c.snap
	s.Recipes = append([]models.Recipe(nil), c.snap.Recipes...)
	s.Query.Tags = c.snap.Query.Tags.Clone()
	s.Query.Ingredients = c.snap.Query.Ingredients.Clone()
	return s
}

// Location returns a copy of the current location.
func (c *Controller) Location() url.Values {
	c.mu.Lock()
	defer c.mu.Unlock()
	return filters.Clone(c.location)
}

// Wait blocks until no search request is running.
func (c *Controller) Wait() { c.wg.Wait() }

// Navigate handles an external location change such as following a link or history entry.
// raw may be a bare query string or anything ending in "?query-string".
func (c *Controller) Navigate(raw string) error {
	v, err := filters.ParseLocation(raw)
	if err != nil {
		return fmt.Errorf("%w: bad location %q: %w", shared.ErrInvalidArgument, raw, err)
	}
	return c.mutate(func(url.Values) (url.Values, bool) { return v, false })
}

// Type records pending search text and restarts the settle delay. When the delay expires and
// the text differs from the location's, it is committed with page 1.
func (c *Controller) Type(text string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return
	}

	c.pending = text
	c.snap.PendingText = text
	c.stopTimerLocked()
	c.timerGen++
	gen := c.timerGen
	c.timer = c.sched.AfterFunc(c.delay, func() { c.settle(gen) })
}

func (c *Controller) settle(gen uint64) {
	c.mutate(func(loc url.Values) (url.Values, bool) {
		if gen != c.timerGen {
			return nil, false
		}
		c.timer = nil
		if c.pending == loc.Get(filters.ParamQuery) {
			return nil, false
		}
		next := filters.Clone(loc)
		next.Set(filters.ParamQuery, c.pending)
		next.Set(filters.ParamPage, "1")
		return next, false
	})
}

// Submit commits the pending text immediately with page 1 and always searches.
func (c *Controller) Submit() error {
	return c.mutate(func(loc url.Values) (url.Values, bool) {
		next := filters.Clone(loc)
		next.Set(filters.ParamQuery, c.pending)
		next.Set(filters.ParamPage, "1")
		return next, true
	})
}

// ApplyFilters replaces both filter selections and resets to page 1.
func (c *Controller) ApplyFilters(tags, ingredients filters.Selection) error {
	return c.mutate(func(loc url.Values) (url.Values, bool) {
		next := filters.ReplaceFilters(loc, tags, ingredients)
		next.Set(filters.ParamPage, "1")
		return next, false
	})
}

// ClearFilters empties both selections and resets to page 1. Panel visibility is kept.
func (c *Controller) ClearFilters() error {
	return c.ApplyFilters(filters.Selection{}, filters.Selection{})
}

// SetPage moves to page n (clamped to 1) and searches at once.
func (c *Controller) SetPage(n int) error {
	if n < 1 {
		n = 1
	}
	return c.mutate(func(loc url.Values) (url.Values, bool) {
		next := filters.Clone(loc)
		next.Set(filters.ParamPage, strconv.Itoa(n))
		return next, false
	})
}

// SetAdvanced shows or hides the filter panel. Visibility alone never triggers a search.
func (c *Controller) SetAdvanced(visible bool) error {
	return c.mutate(func(loc url.Values) (url.Values, bool) {
		next := filters.Clone(loc)
		if visible {
			next.Set(filters.ParamAdvanced, "true")
		} else {
			next.Del(filters.ParamAdvanced)
		}
		return next, false
	})
}

// Retry repeats the search for the current location.
func (c *Controller) Retry() error {
	return c.mutate(func(loc url.Values) (url.Values, bool) { return loc, true })
}

// mutate is the single write path for the location. fn receives the current location under the
// lock and returns the next one (nil for no change) and whether to search even if the effective
// query is unchanged.
func (c *Controller) mutate(fn func(loc url.Values) (url.Values, bool)) error {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return ErrClosed
	}

	next, force := fn(c.location)
	if next == nil {
		c.mu.Unlock()
		return nil
	}
	changed := c.commitLocked(next, force)
	q, loc := c.snap.Query, c.snap.Location
	c.mu.Unlock()

	if changed && c.onNavigate != nil {
		c.onNavigate(q, loc)
	}
	return nil
}

// commitLocked installs next as the location, syncs the pending text and decides whether to
// search. It reports whether the location changed.
func (c *Controller) commitLocked(next url.Values, force bool) bool {
	encoded := next.Encode()
	prev := c.location
	changed := encoded != prev.Encode()
	if !changed && !force {
		return false
	}

	c.location = filters.Clone(next)
	c.pending = next.Get(filters.ParamQuery)
	c.stopTimerLocked()

	q := filters.ParseQuery(next)
	c.snap.Query = q
	c.snap.Location = encoded
	c.snap.PendingText = c.pending

	if !filters.IsSearchRelevant(next) {
		c.abortLocked()
		c.seq++
		c.snap.Status = Idle
		c.snap.Recipes = nil
		c.snap.Total = 0
		c.snap.Pagination = models.Pagination{}
		c.snap.Err = ""
		c.snap.Seq = c.seq
		c.publishLocked()
		return changed
	}

	sameQuery := filters.IsSearchRelevant(prev) && filters.ParseQuery(prev).Equal(q)
	inFlightOrDone := c.snap.Status == Searching || c.snap.Status == Ready
	if !force && sameQuery && inFlightOrDone {
		c.publishLocked()
		return changed
	}

	c.startSearchLocked(q, next)
	return changed
}

func (c *Controller) startSearchLocked(q filters.Query, loc url.Values) {
	c.abortLocked()
	c.seq++
	seq := c.seq

	ctx, cancel := context.WithCancel(c.ctx)
	c.cancel = cancel

	params := filters.SearchParams(q, c.pageSize)
	if loc.Has(filters.ParamQuery) && !params.Has(filters.ParamQuery) {
		params.Set(filters.ParamQuery, "")
	}

	c.snap.Status = Searching
	c.snap.Err = ""
	c.snap.Seq = seq
	c.publishLocked()

	c.logger.Debug("search started", "seq", seq, "params", params.Encode())
	c.wg.Add(1)
	go c.run(ctx, cancel, seq, q, params)
}

func (c *Controller) run(ctx context.Context, cancel context.CancelFunc, seq uint64, q filters.Query, params url.Values) {
	defer c.wg.Done()
	defer cancel()

	page, err := c.searcher.SearchRecipes(ctx, params)

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed || seq != c.seq {
		c.logger.Debug("discarding superseded search", "seq", seq, "current", c.seq)
		return
	}
	c.cancel = nil

	if err != nil {
		c.logger.Warn("search failed", "seq", seq, "error", err)
		c.snap.Status = Failed
		c.snap.Err = api.Message(err, FailureMessage)
		c.snap.Recipes = nil
		c.snap.Total = 0
		c.snap.Pagination = models.Pagination{}
	} else {
		c.snap.Status = Ready
		c.snap.Err = ""
		c.snap.Recipes = page.Recipes
		c.snap.Total = page.TotalCount
		c.snap.Pagination = models.NewPagination(q.Page, c.pageSize, page.TotalCount)
	}
	c.publishLocked()
}

func (c *Controller) abortLocked() {
	if c.cancel != nil {
		c.cancel()
		c.cancel = nil
	}
}

func (c *Controller) stopTimerLocked() {
	if c.timer != nil {
		c.timer.Stop()
		c.timer = nil
	}
	c.timerGen++
}

// publishLocked replaces any unread snapshot with the current one.
func (c *Controller) publishLocked() {
	if c.closed {
		return
	}
	select {
	case <-c.updates:
	default:
	}
	c.updates <- c.copySnapLocked()
}

// Close stops the settle timer and cancels the in-flight request. Results arriving afterwards
// are ignored. Close is idempotent.
func (c *Controller) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return
	}
	c.stopTimerLocked()
	c.abortLocked()
	c.stop()
	c.closed = true
	close(c.updates)
}
