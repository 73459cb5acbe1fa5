package search

import (
	"context"
	"strings"

	"github.com/buinguyenkhai/pttkht-20251-recipe-recommendation-system/internal/filters"
	"github.com/buinguyenkhai/pttkht-20251-recipe-recommendation-system/internal/models"
	"golang.org/x/sync/errgroup"
)

// CatalogSource lists the tags and ingredients that can be filtered on.
type CatalogSource interface {
	Tags(ctx context.Context) ([]models.Tag, error)
	Ingredients(ctx context.Context) ([]models.Ingredient, error)
}

// Catalog is every filterable tag and ingredient with its recipe count.
type Catalog struct {
	Tags        []models.Tag
	Ingredients []models.Ingredient
}

// LoadCatalog fetches both lists concurrently.
func LoadCatalog(ctx context.Context, src CatalogSource) (*Catalog, error) {
	var cat Catalog
	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		tags, err := src.Tags(ctx)
		cat.Tags = tags
		return err
	})
	g.Go(func() error {
		ings, err := src.Ingredients(ctx)
		cat.Ingredients = ings
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return &cat, nil
}

// MatchTags returns the tags whose name contains term, ignoring case.
func (c *Catalog) MatchTags(term string) []models.Tag {
	term = strings.ToLower(term)
	var out []models.Tag
	for _, t := range c.Tags {
		if strings.Contains(strings.ToLower(t.Name), term) {
			out = append(out, t)
		}
	}
	return out
}

// MatchIngredients returns the ingredients whose name contains term, ignoring case.
func (c *Catalog) MatchIngredients(term string) []models.Ingredient {
	term = strings.ToLower(term)
	var out []models.Ingredient
	for _, i := range c.Ingredients {
		if strings.Contains(strings.ToLower(i.Name), term) {
			out = append(out, i)
		}
	}
	return out
}

// Panel is the draft filter selection. Edits stay local until [Panel.Apply].
type Panel struct {
	Tags        filters.Selection
	Ingredients filters.Selection
}

// NewPanel starts a draft from the applied query.
func NewPanel(q filters.Query) *Panel {
	p := &Panel{}
	p.Reset(q)
	return p
}

// Reset discards draft edits and reloads the selections of q.
func (p *Panel) Reset(q filters.Query) {
	p.Tags = q.Tags.Clone()
	p.Ingredients = q.Ingredients.Clone()
}

func (p *Panel) ToggleTag(name string) filters.State { return p.Tags.Toggle(name) }

func (p *Panel) ToggleIngredient(name string) filters.State { return p.Ingredients.Toggle(name) }

// ClearTags empties the tag draft only.
func (p *Panel) ClearTags() { p.Tags = filters.Selection{} }

// ClearIngredients empties the ingredient draft only.
func (p *Panel) ClearIngredients() { p.Ingredients = filters.Selection{} }

// Dirty reports whether the draft differs from q.
func (p *Panel) Dirty(q filters.Query) bool {
	return !p.Tags.Equal(q.Tags.Clone()) || !p.Ingredients.Equal(q.Ingredients.Clone())
}

// Apply commits the draft through c.
func (p *Panel) Apply(c *Controller) error {
	return c.ApplyFilters(p.Tags.Clone(), p.Ingredients.Clone())
}
