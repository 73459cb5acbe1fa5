package views

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"testing"

	"github.com/buinguyenkhai/pttkht-20251-recipe-recommendation-system/internal/shared"
)

// pagedRecipes serves total recipes in pages honouring skip and limit.
func pagedRecipes(total int) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		skip, limit := 0, 12
		fmt.Sscan(r.URL.Query().Get("skip"), &skip)
		fmt.Sscan(r.URL.Query().Get("limit"), &limit)

		var items []string
		for i := skip; i < total && i < skip+limit; i++ {
			items = append(items, fmt.Sprintf(`{"recipe_id":%d,"title":"Recipe %d","tags":[]}`, i+1, i+1))
		}
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprintf(w, `{"recipes":[%s],"total_count":%d}`, strings.Join(items, ","), total)
	}
}

func TestRecipeList(t *testing.T) {
	ctx := context.Background()

	t.Run("pages through the listing", func(t *testing.T) {
		mux := http.NewServeMux()
		mux.HandleFunc("GET /recipes/{$}", pagedRecipes(30))
		v := NewRecipeList(newClient(t, mux), 12)

		if err := v.Load(ctx, 1); err != nil {
			t.Fatalf("Load failed: %v", err)
		}
		st := v.State()
		if len(st.Recipes) != 12 || st.Pagination.TotalPages() != 3 || !st.Pagination.Visible() {
			t.Fatalf("unexpected first page: %d recipes, %+v", len(st.Recipes), st.Pagination)
		}

		if err := v.Last(ctx); err != nil {
			t.Fatalf("Last failed: %v", err)
		}
		st = v.State()
		if st.Pagination.Page != 3 || len(st.Recipes) != 6 || st.Recipes[0].ID != 25 {
			t.Errorf("expected last page starting at 25, got page %d with %d recipes", st.Pagination.Page, len(st.Recipes))
		}

		if err := v.Next(ctx); err != nil {
			t.Fatalf("Next failed: %v", err)
		}
		if v.State().Pagination.Page != 3 {
			t.Errorf("expected Next on the last page to stay put, got %d", v.State().Pagination.Page)
		}

		v.First(ctx)
		v.Prev(ctx)
		if v.State().Pagination.Page != 1 {
			t.Errorf("expected Prev on the first page to stay put, got %d", v.State().Pagination.Page)
		}
	})

	t.Run("single page hides pagination", func(t *testing.T) {
		mux := http.NewServeMux()
		mux.HandleFunc("GET /recipes/{$}", pagedRecipes(5))
		v := NewRecipeList(newClient(t, mux), 12)

		v.Load(ctx, 1)
		if v.State().Pagination.Visible() {
			t.Error("expected pagination hidden for one page")
		}
	})

	t.Run("empty listing", func(t *testing.T) {
		mux := http.NewServeMux()
		mux.HandleFunc("GET /recipes/{$}", pagedRecipes(0))
		v := NewRecipeList(newClient(t, mux), 12)

		v.Load(ctx, 1)
		if !v.State().Empty() {
			t.Errorf("expected empty state, got %+v", v.State())
		}
	})

	t.Run("failure uses fallback message", func(t *testing.T) {
		mux := http.NewServeMux()
		mux.HandleFunc("GET /recipes/{$}", replyStatus(http.StatusInternalServerError, `{}`))
		v := NewRecipeList(newClient(t, mux), 12)

		if err := v.Load(ctx, 1); err == nil {
			t.Fatal("expected error")
		}
		if st := v.State(); st.Err != ListFailure || st.Recipes != nil || st.Loading {
			t.Errorf("unexpected state: %+v", st)
		}
	})

	t.Run("featured recipes", func(t *testing.T) {
		mux := http.NewServeMux()
		mux.HandleFunc("GET /recipes/random-featured/", func(w http.ResponseWriter, r *http.Request) {
			if got := r.URL.Query().Get("count"); got != "10" {
				t.Errorf("expected count=10, got %q", got)
			}
			reply(`[{"recipe_id":1,"title":"Pho","image_url":"http://img/1.png"}]`)(w, r)
		})
		v := NewRecipeList(newClient(t, mux), 12)

		if err := v.LoadFeatured(ctx); err != nil {
			t.Fatalf("LoadFeatured failed: %v", err)
		}
		featured, msg := v.Featured()
		if len(featured) != 1 || featured[0].Title != "Pho" || msg != "" {
			t.Errorf("unexpected featured: %+v %q", featured, msg)
		}
	})

	t.Run("featured failure", func(t *testing.T) {
		mux := http.NewServeMux()
		mux.HandleFunc("GET /recipes/random-featured/", replyStatus(http.StatusInternalServerError, `{}`))
		v := NewRecipeList(newClient(t, mux), 12)

		v.LoadFeatured(ctx)
		if featured, msg := v.Featured(); featured != nil || msg != FeaturedFailure {
			t.Errorf("expected empty carousel with message, got %+v %q", featured, msg)
		}
	})
}

func TestProfileRecipes(t *testing.T) {
	ctx := context.Background()

	t.Run("requires a signed-in user", func(t *testing.T) {
		rec := &recorder{}
		v := NewProfileRecipes(newClient(t, rec.wrap(http.NewServeMux())), &fakeSession{}, SavedRecipes, 12)

		err := v.Load(ctx, 1)
		if !errors.Is(err, shared.ErrNotAuthenticated) {
			t.Errorf("expected ErrNotAuthenticated, got %v", err)
		}
		if rec.count() != 0 {
			t.Error("expected no request")
		}
	})

	t.Run("created recipes", func(t *testing.T) {
		mux := http.NewServeMux()
		mux.HandleFunc("GET /users/me/created-recipes", pagedRecipes(14))
		v := NewProfileRecipes(newClient(t, mux), signedIn(1, "mai", false), CreatedRecipes, 12)

		if err := v.Goto(ctx, 2); err != nil {
			t.Fatalf("Goto failed: %v", err)
		}
		// nothing is known about the total before the first load
		if st := v.State(); st.Pagination.Page != 1 || len(st.Recipes) != 12 {
			t.Fatalf("unexpected state: page %d, %d recipes", st.Pagination.Page, len(st.Recipes))
		}
		if err := v.Goto(ctx, 2); err != nil {
			t.Fatalf("Goto failed: %v", err)
		}
		if st := v.State(); st.Pagination.Page != 2 || len(st.Recipes) != 2 {
			t.Errorf("unexpected state: page %d, %d recipes", st.Pagination.Page, len(st.Recipes))
		}
	})

	t.Run("expired token logs out quietly", func(t *testing.T) {
		mux := http.NewServeMux()
		mux.HandleFunc("GET /users/me/saved-recipes", replyStatus(http.StatusUnauthorized, `{"detail":"Could not validate credentials"}`))
		sess := signedIn(1, "mai", false)
		v := NewProfileRecipes(newClient(t, mux), sess, SavedRecipes, 12)

		if err := v.Load(ctx, 1); err == nil {
			t.Fatal("expected error")
		}
		if sess.Authenticated() || v.State().Err != "" {
			t.Errorf("expected logout without message, got %q", v.State().Err)
		}
	})
}
