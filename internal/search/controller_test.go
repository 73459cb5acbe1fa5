package search

import (
	"context"
	"errors"
	"net/http"
	"net/url"
	"strconv"
	"sync"
	"testing"
	"time"

	"github.com/buinguyenkhai/pttkht-20251-recipe-recommendation-system/internal/api"
	"github.com/buinguyenkhai/pttkht-20251-recipe-recommendation-system/internal/filters"
	"github.com/buinguyenkhai/pttkht-20251-recipe-recommendation-system/internal/models"
)

// manualScheduler fires timers only when the test says so.
type manualScheduler struct {
	mu     sync.Mutex
	timers []*manualTimer
}

type manualTimer struct {
	s       *manualScheduler
	f       func()
	d       time.Duration
	stopped bool
	fired   bool
}

func (t *manualTimer) Stop() bool {
	t.s.mu.Lock()
	defer t.s.mu.Unlock()
	active := !t.stopped && !t.fired
	t.stopped = true
	return active
}

func (s *manualScheduler) AfterFunc(d time.Duration, f func()) Timer {
	s.mu.Lock()
	defer s.mu.Unlock()
	t := &manualTimer{s: s, f: f, d: d}
	s.timers = append(s.timers, t)
	return t
}

// Fire runs every active timer and returns how many ran.
func (s *manualScheduler) Fire() int {
	s.mu.Lock()
	var due []func()
	for _, t := range s.timers {
		if !t.stopped && !t.fired {
			t.fired = true
			due = append(due, t.f)
		}
	}
	s.mu.Unlock()

	for _, f := range due {
		f()
	}
	return len(due)
}

func (s *manualScheduler) Active() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := 0
	for _, t := range s.timers {
		if !t.stopped && !t.fired {
			n++
		}
	}
	return n
}

// recordingSearcher answers immediately through respond and records every call.
type recordingSearcher struct {
	mu      sync.Mutex
	calls   []url.Values
	respond func(params url.Values) (*models.RecipePage, error)
}

func (r *recordingSearcher) SearchRecipes(ctx context.Context, params url.Values) (*models.RecipePage, error) {
	r.mu.Lock()
	r.calls = append(r.calls, params)
	r.mu.Unlock()
	if r.respond != nil {
		return r.respond(params)
	}
	return &models.RecipePage{Recipes: []models.Recipe{{ID: 1, Title: params.Get("query")}}, TotalCount: 1}, nil
}

func (r *recordingSearcher) Calls() []url.Values {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]url.Values(nil), r.calls...)
}

// gatedSearcher blocks each call until the test replies to it.
type gatedSearcher struct {
	calls chan *gatedCall
}

type gatedCall struct {
	ctx    context.Context
	params url.Values
	reply  chan gatedReply
}

type gatedReply struct {
	page *models.RecipePage
	err  error
}

func newGatedSearcher() *gatedSearcher {
	return &gatedSearcher{calls: make(chan *gatedCall, 8)}
}

func (g *gatedSearcher) SearchRecipes(ctx context.Context, params url.Values) (*models.RecipePage, error) {
	call := &gatedCall{ctx: ctx, params: params, reply: make(chan gatedReply, 1)}
	g.calls <- call
	r := <-call.reply
	return r.page, r.err
}

func (g *gatedSearcher) next(t *testing.T) *gatedCall {
	t.Helper()
	select {
	case c := <-g.calls:
		return c
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for a search request")
		return nil
	}
}

func page(titles ...string) *models.RecipePage {
	p := &models.RecipePage{TotalCount: len(titles)}
	for i, title := range titles {
		p.Recipes = append(p.Recipes, models.Recipe{ID: i + 1, Title: title})
	}
	return p
}

func newController(t *testing.T, s Searcher) (*Controller, *manualScheduler) {
	t.Helper()
	sched := &manualScheduler{}
	c := New(s, Options{Scheduler: sched})
	t.Cleanup(c.Close)
	return c, sched
}

func TestNavigate(t *testing.T) {
	t.Run("Search Relevant Location", func(t *testing.T) {
		rs := &recordingSearcher{respond: func(url.Values) (*models.RecipePage, error) {
			return page("r1", "r2"), nil
		}}
		c, _ := newController(t, rs)

		if err := c.Navigate("/search?query=ga&tag_inc=easy&page=1"); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		c.Wait()

		snap := c.Snapshot()
		if snap.Status != Ready {
			t.Fatalf("expected Ready, got %v", snap.Status)
		}
		if len(snap.Recipes) != 2 || snap.Total != 2 {
			t.Errorf("expected 2 results, got %d/%d", len(snap.Recipes), snap.Total)
		}
		if snap.Pagination.Visible() {
			t.Error("pagination should be hidden when total <= page size")
		}
		if snap.PendingText != "ga" {
			t.Errorf("expected pending text synced to ga, got %q", snap.PendingText)
		}

		calls := rs.Calls()
		if len(calls) != 1 {
			t.Fatalf("expected 1 search, got %d", len(calls))
		}
		p := calls[0]
		if p.Get("query") != "ga" || p.Get("tag_inc") != "easy" || p.Get("skip") != "0" || p.Get("limit") != "12" {
			t.Errorf("unexpected params %v", p)
		}
	})

	t.Run("Irrelevant Location Clears Results", func(t *testing.T) {
		rs := &recordingSearcher{}
		c, _ := newController(t, rs)

		c.Navigate("query=pho")
		c.Wait()
		if got := c.Snapshot(); got.Status != Ready || len(got.Recipes) == 0 {
			t.Fatalf("expected results, got %+v", got)
		}

		c.Navigate("page=2&adv=true")
		c.Wait()
		snap := c.Snapshot()
		if snap.Status != Idle {
			t.Errorf("expected Idle, got %v", snap.Status)
		}
		if len(snap.Recipes) != 0 || snap.Total != 0 {
			t.Errorf("expected cleared results, got %+v", snap.Recipes)
		}
		if !snap.Query.Advanced {
			t.Error("expected adv decoded")
		}
		if len(rs.Calls()) != 1 {
			t.Errorf("expected no additional search, got %d calls", len(rs.Calls()))
		}
	})

	t.Run("Empty Query Param Is Relevant", func(t *testing.T) {
		rs := &recordingSearcher{}
		c, _ := newController(t, rs)

		c.Navigate("query=")
		c.Wait()
		if c.Snapshot().Status != Ready || len(rs.Calls()) != 1 {
			t.Errorf("expected a search for an empty query param")
		}
	})

	t.Run("Bad Location", func(t *testing.T) {
		c, _ := newController(t, &recordingSearcher{})
		if err := c.Navigate("query=%zz"); err == nil {
			t.Error("expected parse error")
		}
	})

	t.Run("Cancels Pending Text", func(t *testing.T) {
		rs := &recordingSearcher{}
		c, sched := newController(t, rs)

		c.Type("abc")
		c.Navigate("query=zzz")
		c.Wait()

		if n := sched.Fire(); n != 0 {
			t.Errorf("expected settle timer cancelled, %d fired", n)
		}
		if got := c.Snapshot().PendingText; got != "zzz" {
			t.Errorf("expected pending text zzz, got %q", got)
		}
		if len(rs.Calls()) != 1 {
			t.Errorf("expected exactly one search, got %d", len(rs.Calls()))
		}
	})

	t.Run("OnNavigate", func(t *testing.T) {
		var seen []string
		c := New(&recordingSearcher{}, Options{
			Scheduler:  &manualScheduler{},
			OnNavigate: func(q filters.Query, loc string) { seen = append(seen, loc) },
		})
		defer c.Close()

		c.Navigate("query=bun")
		c.Navigate("query=bun")
		c.Wait()

		if len(seen) != 1 || seen[0] != "query=bun" {
			t.Errorf("expected one navigation to query=bun, got %v", seen)
		}
	})
}

func TestType(t *testing.T) {
	t.Run("Settle Delay Commits Final Text Once", func(t *testing.T) {
		rs := &recordingSearcher{}
		c, sched := newController(t, rs)

		for _, text := range []string{"p", "ph", "pho"} {
			c.Type(text)
		}
		if sched.Active() != 1 {
			t.Errorf("expected only the latest timer active, got %d", sched.Active())
		}
		if len(rs.Calls()) != 0 {
			t.Fatal("typing must not search before the delay")
		}

		sched.Fire()
		c.Wait()

		calls := rs.Calls()
		if len(calls) != 1 {
			t.Fatalf("expected exactly one search, got %d", len(calls))
		}
		if calls[0].Get("query") != "pho" {
			t.Errorf("expected final text pho, got %q", calls[0].Get("query"))
		}
		loc := c.Location()
		if loc.Get("query") != "pho" || loc.Get("page") != "1" {
			t.Errorf("expected query=pho&page=1, got %v", loc)
		}
	})

	t.Run("Uses Configured Delay", func(t *testing.T) {
		sched := &manualScheduler{}
		c := New(&recordingSearcher{}, Options{Scheduler: sched, SettleDelay: 250 * time.Millisecond})
		defer c.Close()

		c.Type("x")
		if d := sched.timers[0].d; d != 250*time.Millisecond {
			t.Errorf("expected 250ms, got %v", d)
		}
	})

	t.Run("Same As Location Is No-op", func(t *testing.T) {
		rs := &recordingSearcher{}
		c, sched := newController(t, rs)

		c.Navigate("query=com&page=3")
		c.Wait()
		c.Type("co")
		c.Type("com")
		sched.Fire()
		c.Wait()

		if len(rs.Calls()) != 1 {
			t.Errorf("expected no redundant search, got %d calls", len(rs.Calls()))
		}
		if c.Location().Get("page") != "3" {
			t.Error("page must be untouched when nothing is committed")
		}
	})

	t.Run("Real Timer", func(t *testing.T) {
		rs := &recordingSearcher{}
		c := New(rs, Options{SettleDelay: 10 * time.Millisecond})
		defer c.Close()

		c.Type("banh")
		deadline := time.Now().Add(2 * time.Second)
		for len(rs.Calls()) == 0 && time.Now().Before(deadline) {
			time.Sleep(5 * time.Millisecond)
		}
		c.Wait()
		if calls := rs.Calls(); len(calls) != 1 || calls[0].Get("query") != "banh" {
			t.Errorf("expected one search for banh, got %v", calls)
		}
	})
}

func TestSubmit(t *testing.T) {
	rs := &recordingSearcher{}
	c, sched := newController(t, rs)

	c.Navigate("query=old&page=4&adv=true")
	c.Wait()
	c.Type("new")
	if err := c.Submit(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	c.Wait()

	if sched.Fire() != 0 {
		t.Error("submit must cancel the settle timer")
	}
	loc := c.Location()
	if loc.Get("query") != "new" || loc.Get("page") != "1" || loc.Get("adv") != "true" {
		t.Errorf("unexpected location %v", loc)
	}

	c.Submit()
	c.Wait()
	if n := len(rs.Calls()); n != 3 {
		t.Errorf("expected submit to always search (3 calls), got %d", n)
	}
}

func TestApplyFilters(t *testing.T) {
	t.Run("Resets Page", func(t *testing.T) {
		rs := &recordingSearcher{}
		c, _ := newController(t, rs)

		c.Navigate("query=x&page=3&tag_inc=old")
		c.Wait()

		tags := filters.Selection{"Vegan": filters.Include, "Spicy": filters.Exclude}
		ings := filters.Selection{"tofu": filters.Include}
		if err := c.ApplyFilters(tags, ings); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		c.Wait()

		loc := c.Location()
		if loc.Get("page") != "1" {
			t.Errorf("expected page 1, got %s", loc.Get("page"))
		}
		if got := loc["tag_inc"]; len(got) != 1 || got[0] != "Vegan" {
			t.Errorf("expected old tag replaced, got %v", got)
		}
		if loc.Get("tag_exc") != "Spicy" || loc.Get("ing_inc") != "tofu" || loc.Get("query") != "x" {
			t.Errorf("unexpected location %v", loc)
		}

		snap := c.Snapshot()
		if !snap.Query.Tags.Equal(tags) || !snap.Query.Ingredients.Equal(ings) {
			t.Errorf("decoded query does not match applied filters: %+v", snap.Query)
		}
	})

	t.Run("ClearFilters Keeps Panel Visibility", func(t *testing.T) {
		for _, adv := range []bool{true, false} {
			rs := &recordingSearcher{}
			c, _ := newController(t, rs)

			raw := "query=x&page=2&tag_inc=a&ing_exc=b"
			if adv {
				raw += "&adv=true"
			}
			c.Navigate(raw)
			c.Wait()
			c.ClearFilters()
			c.Wait()

			loc := c.Location()
			for _, p := range []string{"tag_inc", "tag_exc", "ing_inc", "ing_exc"} {
				if loc.Has(p) {
					t.Errorf("expected %s removed", p)
				}
			}
			if loc.Get("page") != "1" {
				t.Errorf("expected page 1, got %s", loc.Get("page"))
			}
			if got := loc.Get("adv") == "true"; got != adv {
				t.Errorf("adv visibility changed: want %v, got %v", adv, got)
			}
		}
	})
}

func TestSetPage(t *testing.T) {
	rs := &recordingSearcher{respond: func(p url.Values) (*models.RecipePage, error) {
		return &models.RecipePage{Recipes: []models.Recipe{{ID: 1}}, TotalCount: 40}, nil
	}}
	c, sched := newController(t, rs)

	c.Navigate("query=bun")
	c.Wait()
	if err := c.SetPage(2); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	c.Wait()

	if sched.Active() != 0 {
		t.Error("paging must not start a settle timer")
	}
	calls := rs.Calls()
	last := calls[len(calls)-1]
	if last.Get("page") != "2" || last.Get("skip") != "12" {
		t.Errorf("unexpected params %v", last)
	}
	snap := c.Snapshot()
	if !snap.Pagination.Visible() || snap.Pagination.TotalPages() != 4 || snap.Pagination.Page != 2 {
		t.Errorf("unexpected pagination %+v", snap.Pagination)
	}

	c.SetPage(0)
	c.Wait()
	if c.Location().Get("page") != "1" {
		t.Error("expected page clamped to 1")
	}
}

func TestSetAdvanced(t *testing.T) {
	rs := &recordingSearcher{}
	c, _ := newController(t, rs)

	c.Navigate("query=pho")
	c.Wait()
	c.SetAdvanced(true)
	c.Wait()
	c.SetAdvanced(false)
	c.Wait()

	if len(rs.Calls()) != 1 {
		t.Errorf("panel visibility must not search, got %d calls", len(rs.Calls()))
	}
	if c.Location().Has("adv") {
		t.Error("expected adv removed when hidden")
	}
	if c.Snapshot().Status != Ready {
		t.Errorf("expected results kept, got %v", c.Snapshot().Status)
	}
}

func TestStaleResponses(t *testing.T) {
	gs := newGatedSearcher()
	c, _ := newController(t, gs)

	c.ApplyFilters(filters.Selection{"A": filters.Include}, filters.Selection{})
	callA := gs.next(t)
	c.ApplyFilters(filters.Selection{"B": filters.Include}, filters.Selection{})
	callB := gs.next(t)

	if callA.ctx.Err() == nil {
		t.Error("expected superseded request to be cancelled")
	}

	callB.reply <- gatedReply{page: page("from B")}
	callA.reply <- gatedReply{page: page("from A")}
	c.Wait()

	snap := c.Snapshot()
	if snap.Status != Ready || len(snap.Recipes) != 1 || snap.Recipes[0].Title != "from B" {
		t.Errorf("expected B's results, got %+v", snap.Recipes)
	}
}

func TestFailure(t *testing.T) {
	t.Run("Clears Previous Results", func(t *testing.T) {
		fail := false
		rs := &recordingSearcher{respond: func(url.Values) (*models.RecipePage, error) {
			if fail {
				return nil, &api.Error{StatusCode: http.StatusInternalServerError}
			}
			return page("a", "b"), nil
		}}
		c, _ := newController(t, rs)

		c.Navigate("query=a")
		c.Wait()
		fail = true
		c.Navigate("query=b")
		c.Wait()

		snap := c.Snapshot()
		if snap.Status != Failed {
			t.Fatalf("expected Failed, got %v", snap.Status)
		}
		if len(snap.Recipes) != 0 || snap.Total != 0 {
			t.Errorf("stale results shown with error: %+v", snap.Recipes)
		}
		if snap.Err != FailureMessage {
			t.Errorf("expected fallback message, got %q", snap.Err)
		}
	})

	t.Run("Backend Detail And Retry", func(t *testing.T) {
		attempts := 0
		rs := &recordingSearcher{respond: func(url.Values) (*models.RecipePage, error) {
			attempts++
			if attempts == 1 {
				return nil, &api.Error{StatusCode: http.StatusBadRequest, Detail: "Invalid tag"}
			}
			return page("ok"), nil
		}}
		c, _ := newController(t, rs)

		c.Navigate("tag_inc=%3F%3F")
		c.Wait()
		if got := c.Snapshot().Err; got != "Invalid tag" {
			t.Errorf("expected backend detail, got %q", got)
		}

		c.Retry()
		c.Wait()
		if c.Snapshot().Status != Ready {
			t.Errorf("expected Ready after retry, got %v", c.Snapshot().Status)
		}
	})

	t.Run("Network Message", func(t *testing.T) {
		server := api.New(api.Options{BaseURL: "http://127.0.0.1:1"})
		c, _ := newController(t, server)

		c.Navigate("query=x")
		c.Wait()
		if got := c.Snapshot().Err; got != "A network error occurred." {
			t.Errorf("expected network message, got %q", got)
		}
	})
}

func TestClose(t *testing.T) {
	gs := newGatedSearcher()
	sched := &manualScheduler{}
	c := New(gs, Options{Scheduler: sched})

	c.Navigate("query=x")
	call := gs.next(t)
	c.Type("y")
	c.Close()

	if call.ctx.Err() == nil {
		t.Error("expected in-flight request cancelled")
	}
	if sched.Fire() != 0 {
		t.Error("expected settle timer stopped")
	}

	call.reply <- gatedReply{page: page("late")}
	c.Wait()
	if snap := c.Snapshot(); snap.Status != Searching || len(snap.Recipes) != 0 {
		t.Errorf("late result must be ignored, got %+v", snap)
	}

	if err := c.SetPage(2); !errors.Is(err, ErrClosed) {
		t.Errorf("expected ErrClosed, got %v", err)
	}
	for range c.Updates() {
	}
	c.Close()
}

func TestUpdates(t *testing.T) {
	rs := &recordingSearcher{}
	c, _ := newController(t, rs)

	for i := 1; i <= 3; i++ {
		c.Navigate("query=q" + strconv.Itoa(i))
		c.Wait()
	}

	select {
	case snap := <-c.Updates():
		if snap.Query.Text != "q3" || snap.Status != Ready {
			t.Errorf("expected latest snapshot for q3, got %+v", snap)
		}
	case <-time.After(time.Second):
		t.Fatal("expected a snapshot")
	}

	select {
	case snap := <-c.Updates():
		t.Errorf("expected only the latest snapshot buffered, got %+v", snap)
	default:
	}
}

func TestStatusString(t *testing.T) {
	for s, want := range map[Status]string{Idle: "idle", Searching: "searching", Ready: "ready", Failed: "failed", Status(9): "unknown"} {
		if s.String() != want {
			t.Errorf("Status(%d).String() = %q, want %q", s, s.String(), want)
		}
	}
}
