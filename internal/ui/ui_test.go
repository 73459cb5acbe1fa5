package ui

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/buinguyenkhai/pttkht-20251-recipe-recommendation-system/internal/api"
	"github.com/buinguyenkhai/pttkht-20251-recipe-recommendation-system/internal/filters"
	"github.com/buinguyenkhai/pttkht-20251-recipe-recommendation-system/internal/models"
	"github.com/buinguyenkhai/pttkht-20251-recipe-recommendation-system/internal/search"
	"github.com/buinguyenkhai/pttkht-20251-recipe-recommendation-system/internal/shared"
	"github.com/buinguyenkhai/pttkht-20251-recipe-recommendation-system/internal/views"
	tea "github.com/charmbracelet/bubbletea"
)

type fakeSearcher struct {
	mu     sync.Mutex
	params []url.Values
}

func (f *fakeSearcher) SearchRecipes(_ context.Context, p url.Values) (*models.RecipePage, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.params = append(f.params, p)
	return &models.RecipePage{Recipes: []models.Recipe{{ID: 7, Title: "Pho"}}, TotalCount: 1}, nil
}

func (f *fakeSearcher) last() url.Values {
	f.mu.Lock()
	defer f.mu.Unlock()
	if len(f.params) == 0 {
		return nil
	}
	return f.params[len(f.params)-1]
}

type fakeSession struct {
	mu    sync.Mutex
	user  *models.User
	saved map[int]bool
}

func (s *fakeSession) User() *models.User  { return s.user }
func (s *fakeSession) Authenticated() bool { return s.user != nil }
func (s *fakeSession) IsAdmin() bool       { return false }
func (s *fakeSession) HandleError(error) bool {
	return false
}

func (s *fakeSession) IsSaved(id int) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.saved[id]
}

func (s *fakeSession) ToggleSave(_ context.Context, id int) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.user == nil {
		return false, shared.ErrNotAuthenticated
	}
	s.saved[id] = !s.saved[id]
	return s.saved[id], nil
}

func recipeBackend() http.Handler {
	mux := http.NewServeMux()
	json := func(body string) http.HandlerFunc {
		return func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Content-Type", "application/json")
			w.Write([]byte(body))
		}
	}
	mux.Handle("GET /recipes/7", json(`{"recipe_id":7,"title":"Pho","creator_username":"mai","tags":["soup"],"calories":450}`))
	mux.Handle("GET /recipes/7/ingredients/", json(`[{"name":"rice noodles","quantity":"200","unit":"g"}]`))
	mux.Handle("GET /recipes/7/steps/", json(`[{"recipe_id":7,"step_number":1,"step_detail":"Simmer the broth"}]`))
	mux.Handle("GET /recipes/7/tags/", json(`[{"tag_id":1,"tag_name":"soup"}]`))
	mux.Handle("GET /recipes/7/reviews", json(`[{"id":1,"recipe_id":7,"rating":5,"text":"Great","user":{"id":2,"username":"an"}}]`))
	mux.Handle("POST /custom-meal-plan/recipe/7", json(`{}`))
	return mux
}

type harness struct {
	model    *Model
	ctrl     *search.Controller
	searcher *fakeSearcher
	sess     *fakeSession
}

func newHarness(t *testing.T, location string) *harness {
	t.Helper()
	srv := httptest.NewServer(recipeBackend())
	t.Cleanup(srv.Close)
	client := api.New(api.Options{BaseURL: srv.URL})

	searcher := &fakeSearcher{}
	ctrl := search.New(searcher, search.Options{SettleDelay: time.Hour})
	t.Cleanup(ctrl.Close)
	if location != "" {
		if err := ctrl.Navigate(location); err != nil {
			t.Fatalf("navigate: %v", err)
		}
		ctrl.Wait()
	}

	sess := &fakeSession{user: &models.User{ID: 1, Username: "mai"}, saved: map[int]bool{}}
	m := NewModel(context.Background(), Options{
		Controller: ctrl,
		Detail:     views.NewRecipeDetail(client, sess),
		Session:    sess,
	})
	m.Update(tea.WindowSizeMsg{Width: 100, Height: 40})
	return &harness{model: m, ctrl: ctrl, searcher: searcher, sess: sess}
}

// send delivers msgs in order and returns the command of the last one.
func (h *harness) send(msgs ...tea.Msg) tea.Cmd {
	var cmd tea.Cmd
	for _, msg := range msgs {
		_, cmd = h.model.Update(msg)
	}
	return cmd
}

// run executes cmd synchronously and feeds its message back into the model.
func (h *harness) run(t *testing.T, cmd tea.Cmd) {
	t.Helper()
	if cmd == nil {
		t.Fatal("expected a command")
	}
	h.send(cmd())
}

func runes(s string) tea.KeyMsg { return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)} }

var (
	enter = tea.KeyMsg{Type: tea.KeyEnter}
	esc   = tea.KeyMsg{Type: tea.KeyEsc}
	space = tea.KeyMsg{Type: tea.KeySpace, Runes: []rune{' '}}
)

func TestModelSearch(t *testing.T) {
	t.Run("typing and enter submit the query", func(t *testing.T) {
		h := newHarness(t, "")
		h.send(runes("pho"), enter)
		h.ctrl.Wait()

		if got := h.ctrl.Location().Get(filters.ParamQuery); got != "pho" {
			t.Errorf("expected query pho, got %q", got)
		}
		if p := h.searcher.last(); p == nil || p.Get("query") != "pho" {
			t.Errorf("expected a search for pho, got %v", p)
		}
		if h.model.input.Focused() {
			t.Error("expected submit to move focus to the results")
		}
	})

	t.Run("ready snapshot fills the results", func(t *testing.T) {
		h := newHarness(t, "")
		h.send(snapshotMsg(search.Snapshot{
			Status:     search.Ready,
			Recipes:    []models.Recipe{{ID: 1, Title: "Pho"}, {ID: 2, Title: "Banh mi"}},
			Total:      30,
			Pagination: models.NewPagination(1, 12, 30),
		}))

		if n := len(h.model.results.Items()); n != 2 {
			t.Fatalf("expected 2 items, got %d", n)
		}
		view := h.model.View()
		if !strings.Contains(view, "30 recipes") || !strings.Contains(view, "page 1 of 3") {
			t.Errorf("expected counts in view, got:\n%s", view)
		}
	})

	t.Run("failed snapshot offers retry", func(t *testing.T) {
		h := newHarness(t, "query=pho")
		h.send(snapshotMsg(search.Snapshot{Status: search.Failed, Err: "Search request failed"}))

		view := h.model.View()
		if !strings.Contains(view, "Search request failed") || !strings.Contains(view, "r to retry") {
			t.Errorf("expected failure and retry hint, got:\n%s", view)
		}

		before := len(h.searcher.params)
		h.send(esc, runes("r"))
		h.ctrl.Wait()
		if len(h.searcher.params) != before+1 {
			t.Errorf("expected retry to search again, got %d searches", len(h.searcher.params))
		}
	})

	t.Run("page keys move through results", func(t *testing.T) {
		h := newHarness(t, "query=pho")
		h.send(esc, snapshotMsg(search.Snapshot{
			Status:     search.Ready,
			Recipes:    []models.Recipe{{ID: 1, Title: "Pho"}},
			Total:      30,
			Pagination: models.NewPagination(1, 12, 30),
		}))

		h.send(runes("l"))
		h.ctrl.Wait()
		if got := h.ctrl.Location().Get(filters.ParamPage); got != "2" {
			t.Errorf("expected page 2, got %q", got)
		}

		h.send(runes("h"))
		if got := h.ctrl.Location().Get(filters.ParamPage); got != "2" {
			t.Errorf("expected prev on page 1 to do nothing, got page %q", got)
		}
	})

	t.Run("resumed location restores the query text", func(t *testing.T) {
		h := newHarness(t, "query=bun+cha")
		if got := h.model.input.Value(); got != "bun cha" {
			t.Errorf("expected input to show the query, got %q", got)
		}
	})

	t.Run("snapshots do not overwrite typed text", func(t *testing.T) {
		h := newHarness(t, "")
		h.send(runes("ph"))
		h.send(snapshotMsg(search.Snapshot{Status: search.Idle, PendingText: "p"}))
		if got := h.model.input.Value(); got != "ph" {
			t.Errorf("expected typed text to be kept, got %q", got)
		}
	})
}

func TestModelFilters(t *testing.T) {
	catalog := &search.Catalog{
		Tags:        []models.Tag{{Name: "vegan", RecipeCount: 3}},
		Ingredients: []models.Ingredient{{Name: "tofu", RecipeCount: 2}},
	}

	t.Run("apply commits the draft and closes the panel", func(t *testing.T) {
		h := newHarness(t, "")
		h.send(catalogLoadedMsg(catalog, nil), esc, runes("f"))

		if h.model.view != FilterView {
			t.Fatalf("expected filter view, got %v", h.model.view)
		}
		if h.ctrl.Location().Get(filters.ParamAdvanced) != "true" {
			t.Error("expected the open panel to be recorded in the location")
		}
		if n := len(h.model.filterList.Items()); n != 2 {
			t.Fatalf("expected 2 filter items, got %d", n)
		}

		h.send(space)
		if item := h.model.filterList.SelectedItem().(filterItem); item.state != filters.Include {
			t.Errorf("expected vegan to be included, got %v", item.state)
		}
		if h.ctrl.Location().Has(filters.ParamTagInc) {
			t.Error("expected draft edits to stay local until apply")
		}

		h.send(enter)
		h.ctrl.Wait()
		loc := h.ctrl.Location()
		if loc.Get(filters.ParamTagInc) != "vegan" || loc.Has(filters.ParamAdvanced) {
			t.Errorf("unexpected location after apply: %s", loc.Encode())
		}
		if h.model.view != SearchView {
			t.Errorf("expected search view, got %v", h.model.view)
		}
	})

	t.Run("esc discards the draft", func(t *testing.T) {
		h := newHarness(t, "")
		h.send(catalogLoadedMsg(catalog, nil), esc, runes("f"), space, esc)

		if h.ctrl.Location().Has(filters.ParamTagInc) {
			t.Error("expected cancelled draft not to apply")
		}
		if h.model.panel != nil || h.model.view != SearchView {
			t.Error("expected the panel to close")
		}
	})

	t.Run("panel opens for a location with adv", func(t *testing.T) {
		h := newHarness(t, "adv=true")
		if h.model.view != FilterView {
			t.Errorf("expected filter view, got %v", h.model.view)
		}
		view := h.model.View()
		if !strings.Contains(view, "Loading tags and ingredients") {
			t.Errorf("expected loading text before the catalog arrives, got:\n%s", view)
		}
	})

	t.Run("catalog failure is shown", func(t *testing.T) {
		h := newHarness(t, "")
		h.send(catalogLoadedMsg(nil, errors.New("boom")))
		if !strings.Contains(h.model.View(), "filters unavailable") {
			t.Errorf("expected catalog error in view, got:\n%s", h.model.View())
		}
	})
}

func TestModelDetail(t *testing.T) {
	open := func(t *testing.T) *harness {
		t.Helper()
		h := newHarness(t, "")
		h.send(esc, snapshotMsg(search.Snapshot{
			Status:     search.Ready,
			Recipes:    []models.Recipe{{ID: 7, Title: "Pho"}},
			Total:      1,
			Pagination: models.NewPagination(1, 12, 1),
		}))
		h.run(t, h.send(enter))
		return h
	}

	t.Run("enter loads the selected recipe", func(t *testing.T) {
		h := open(t)
		if h.model.view != DetailView {
			t.Fatalf("expected detail view, got %v", h.model.view)
		}
		view := h.model.View()
		for _, want := range []string{"Pho", "by mai", "rice noodles", "Simmer the broth", "Great"} {
			if !strings.Contains(view, want) {
				t.Errorf("expected %q in view, got:\n%s", want, view)
			}
		}
	})

	t.Run("save toggles through the session", func(t *testing.T) {
		h := open(t)
		h.run(t, h.send(runes("s")))

		if !h.sess.IsSaved(7) {
			t.Error("expected recipe 7 to be saved")
		}
		if !strings.Contains(h.model.View(), "Saved to your recipes.") {
			t.Errorf("expected notice, got:\n%s", h.model.View())
		}
	})

	t.Run("actions need a login", func(t *testing.T) {
		h := open(t)
		h.sess.user = nil
		h.run(t, h.send(runes("a")))

		if !strings.Contains(h.model.View(), "login required") {
			t.Errorf("expected login hint, got:\n%s", h.model.View())
		}
	})

	t.Run("stale loads are ignored", func(t *testing.T) {
		h := open(t)
		h.send(esc)
		h.send(detailLoadedMsg(7, views.DetailState{Err: views.RecipeNotFound}))

		if h.model.view != SearchView {
			t.Errorf("expected to stay on search, got %v", h.model.view)
		}
	})

	t.Run("esc returns to results and marks saved recipes", func(t *testing.T) {
		h := open(t)
		h.run(t, h.send(runes("s")))
		h.send(esc)

		item := h.model.results.Items()[0].(recipeItem)
		if !item.saved || !strings.HasPrefix(item.Title(), "★") {
			t.Errorf("expected a saved marker, got %q", item.Title())
		}
	})
}
