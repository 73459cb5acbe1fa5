package ui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/list"
	"github.com/buinguyenkhai/pttkht-20251-recipe-recommendation-system/internal/filters"
	"github.com/buinguyenkhai/pttkht-20251-recipe-recommendation-system/internal/models"
)

var (
	_ list.Item = recipeItem{}
	_ list.Item = filterItem{}
)

// recipeItem wraps [models.Recipe] to implement [list.Item].
type recipeItem struct {
	recipe models.Recipe
	saved  bool
}

func (i recipeItem) FilterValue() string { return i.recipe.Title }
func (i recipeItem) Title() string {
	if i.saved {
		return "★ " + i.recipe.Title
	}
	return i.recipe.Title
}
func (i recipeItem) Description() string {
	desc := fmt.Sprintf("%.0f kcal • by %s", i.recipe.CaloriesOrZero(), i.recipe.Creator())
	if len(i.recipe.Tags) > 0 {
		desc = fmt.Sprintf("%s • %s", desc, strings.Join(i.recipe.Tags, ", "))
	}
	return desc
}

type filterKind int

const (
	tagFilter filterKind = iota
	ingredientFilter
)

func (k filterKind) String() string {
	if k == tagFilter {
		return "tag"
	}
	return "ingredient"
}

// filterItem is one tag or ingredient of the filter panel with its draft state.
type filterItem struct {
	kind  filterKind
	name  string
	count int
	state filters.State
}

func (i filterItem) FilterValue() string { return i.name }
func (i filterItem) Title() string {
	switch i.state {
	case filters.Include:
		return styles.include.Render("+ " + i.name)
	case filters.Exclude:
		return styles.exclude.Render("- " + i.name)
	}
	return "  " + i.name
}
func (i filterItem) Description() string {
	return fmt.Sprintf("%s • %d recipes", i.kind, i.count)
}
