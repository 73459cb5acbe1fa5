// Package ui implements an interactive recipe browser using bubbletea's Elm architecture.
//
// The TUI has three views:
//  1. [SearchView] : Type a query and page through matching recipes
//  2. [FilterView] : Include or exclude tags and ingredients
//  3. [DetailView] : Read one recipe, save it or add it to the custom meal plan
//
// The [Model] does not search on its own. Every edit goes through a [search.Controller], whose
// snapshots arrive on a channel and are turned into messages by a command that re-arms itself
// after each delivery. Opening the filter panel is recorded in the search location, so a model
// created for a location with the panel open starts in [FilterView].
//
// Keyboard navigation uses vim-style bindings (j/k, enter, esc, q) with contextual help rendered
// by charmbracelet/bubbles/help.
package ui
