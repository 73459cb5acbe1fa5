package ui

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/buinguyenkhai/pttkht-20251-recipe-recommendation-system/internal/api"
	"github.com/buinguyenkhai/pttkht-20251-recipe-recommendation-system/internal/filters"
	"github.com/buinguyenkhai/pttkht-20251-recipe-recommendation-system/internal/search"
	"github.com/buinguyenkhai/pttkht-20251-recipe-recommendation-system/internal/shared"
	"github.com/buinguyenkhai/pttkht-20251-recipe-recommendation-system/internal/views"
	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/list"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/log"
)

// ViewState represents the current view in the TUI.
type ViewState int

const (
	SearchView ViewState = iota
	FilterView
	DetailView
)

// maxReviews is how many reviews the detail view renders.
const maxReviews = 5

// Options carries the dependencies of a [Model].
type Options struct {
	Controller *search.Controller
	Catalog    search.CatalogSource
	Detail     *views.RecipeDetail
	Session    views.Session
	Logger     *log.Logger
}

// Model represents the TUI application state.
type Model struct {
	ctx     context.Context
	view    ViewState
	ctrl    *search.Controller
	catalog search.CatalogSource
	detail  *views.RecipeDetail
	sess    views.Session
	logger  *log.Logger

	width  int
	height int

	input      textinput.Model
	results    list.Model
	filterList list.Model
	page       viewport.Model
	help       help.Model
	keys       keyMap

	snap     search.Snapshot
	cat      *search.Catalog
	panel    *search.Panel
	detailID int
	state    views.DetailState
	notice   string
	err      error
}

// NewModel creates a new TUI model with the provided dependencies.
func NewModel(ctx context.Context, opts Options) *Model {
	if opts.Logger == nil {
		opts.Logger = shared.NewLogger(io.Discard)
	}

	input := textinput.New()
	input.Placeholder = "Search recipes"
	input.Prompt = "🔍 "
	input.CharLimit = 200
	input.Focus()

	results := list.New(nil, list.NewDefaultDelegate(), 0, 0)
	results.Title = "Recipes"
	results.SetFilteringEnabled(false)
	results.SetShowHelp(false)
	results.DisableQuitKeybindings()

	filterList := list.New(nil, list.NewDefaultDelegate(), 0, 0)
	filterList.Title = "Filters"
	filterList.SetShowHelp(false)
	filterList.DisableQuitKeybindings()

	m := &Model{
		ctx:        ctx,
		view:       SearchView,
		ctrl:       opts.Controller,
		catalog:    opts.Catalog,
		detail:     opts.Detail,
		sess:       opts.Session,
		logger:     opts.Logger,
		input:      input,
		results:    results,
		filterList: filterList,
		page:       viewport.New(0, 0),
		help:       help.New(),
		keys:       newKeyMap(),
		snap:       opts.Controller.Snapshot(),
	}
	m.input.SetValue(m.snap.PendingText)
	if m.snap.Query.Advanced {
		m.openPanel()
	}
	return m
}

// Init starts listening for search snapshots and loads the filter catalog.
func (m *Model) Init() tea.Cmd {
	return tea.Batch(textinput.Blink, m.waitForSnapshot(), m.loadCatalog())
}

// Update handles incoming messages and updates the model state.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.results.SetSize(msg.Width-4, msg.Height-10)
		m.filterList.SetSize(msg.Width-4, msg.Height-8)
		m.page.Width = msg.Width - 4
		m.page.Height = msg.Height - 6
		return m, nil

	case tea.KeyMsg:
		if msg.String() == "ctrl+c" {
			return m, tea.Quit
		}
		switch m.view {
		case SearchView:
			return m.handleSearchKeys(msg)
		case FilterView:
			return m.handleFilterKeys(msg)
		case DetailView:
			return m.handleDetailKeys(msg)
		}

	case Msg:
		return m.handleMsg(msg)
	}

	return m.updateFocused(msg)
}

func (m *Model) handleMsg(msg Msg) (tea.Model, tea.Cmd) {
	switch msg.kind {
	case MsgSnapshot:
		m.applySnapshot(msg.data.(search.Snapshot))
		return m, m.waitForSnapshot()

	case MsgUpdatesClosed:
		return m, nil

	case MsgCatalogLoaded:
		res := msg.data.(catalogResult)
		if res.err != nil {
			m.logger.Warn("catalog load failed", "error", res.err)
			m.notice = ""
			m.err = fmt.Errorf("filters unavailable: %s", api.Message(res.err, "failed to load tags and ingredients"))
			return m, nil
		}
		m.cat = res.catalog
		if m.panel != nil {
			return m, m.refreshFilterItems()
		}
		return m, nil

	case MsgDetailLoaded:
		res := msg.data.(detailResult)
		if res.id != m.detailID || m.view != DetailView {
			return m, nil
		}
		m.state = res.state
		m.page.SetContent(m.renderRecipe())
		m.page.GotoTop()
		return m, nil

	case MsgActionDone:
		res := msg.data.(actionResult)
		m.err = res.err
		m.notice = ""
		if res.err == nil {
			m.notice = res.notice
		}
		if m.view == DetailView {
			m.state = m.detail.State()
			m.page.SetContent(m.renderRecipe())
		}
		if m.view == SearchView {
			return m, m.results.SetItems(m.recipeItems())
		}
		return m, nil
	}
	return m, nil
}

// applySnapshot shows s. The query text is only copied into the input while the user is not
// typing in it, so a slow snapshot never overwrites fresh keystrokes.
func (m *Model) applySnapshot(s search.Snapshot) {
	m.snap = s
	if !m.input.Focused() && m.input.Value() != s.PendingText {
		m.input.SetValue(s.PendingText)
	}
	m.results.SetItems(m.recipeItems())
}

func (m *Model) recipeItems() []list.Item {
	items := make([]list.Item, len(m.snap.Recipes))
	for i, r := range m.snap.Recipes {
		items[i] = recipeItem{recipe: r, saved: m.sess != nil && m.sess.IsSaved(r.ID)}
	}
	return items
}

func (m *Model) handleSearchKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if m.input.Focused() {
		switch {
		case msg.Type == tea.KeyEnter:
			m.report(m.ctrl.Submit())
			m.input.Blur()
			return m, nil
		case key.Matches(msg, m.keys.focus), msg.Type == tea.KeyEsc, msg.Type == tea.KeyDown:
			m.input.Blur()
			return m, nil
		}

		before := m.input.Value()
		var cmd tea.Cmd
		m.input, cmd = m.input.Update(msg)
		if m.input.Value() != before {
			m.ctrl.Type(m.input.Value())
		}
		return m, cmd
	}

	switch {
	case key.Matches(msg, m.keys.quit):
		return m, tea.Quit
	case key.Matches(msg, m.keys.focus), msg.String() == "/":
		return m, m.input.Focus()
	case key.Matches(msg, m.keys.enter):
		if item, ok := m.results.SelectedItem().(recipeItem); ok {
			return m, m.openDetail(item.recipe.ID)
		}
		return m, nil
	case key.Matches(msg, m.keys.next):
		if m.snap.Pagination.HasNext() {
			m.report(m.ctrl.SetPage(m.snap.Pagination.Page + 1))
		}
		return m, nil
	case key.Matches(msg, m.keys.prev):
		if m.snap.Pagination.HasPrev() {
			m.report(m.ctrl.SetPage(m.snap.Pagination.Page - 1))
		}
		return m, nil
	case key.Matches(msg, m.keys.filters):
		m.report(m.ctrl.SetAdvanced(true))
		m.openPanel()
		return m, m.refreshFilterItems()
	case key.Matches(msg, m.keys.clear):
		m.report(m.ctrl.ClearFilters())
		return m, nil
	case key.Matches(msg, m.keys.retry):
		if m.snap.Status == search.Failed {
			m.report(m.ctrl.Retry())
		}
		return m, nil
	}

	var cmd tea.Cmd
	m.results, cmd = m.results.Update(msg)
	return m, cmd
}

// openPanel starts a filter draft from the applied query.
func (m *Model) openPanel() {
	if m.panel == nil {
		m.panel = search.NewPanel(m.snap.Query)
	}
	m.view = FilterView
	m.filterList.SetItems(m.filterItems())
}

func (m *Model) closePanel() {
	m.panel = nil
	m.view = SearchView
	m.report(m.ctrl.SetAdvanced(false))
}

func (m *Model) handleFilterKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if m.filterList.FilterState() == list.Filtering {
		var cmd tea.Cmd
		m.filterList, cmd = m.filterList.Update(msg)
		return m, cmd
	}

	switch {
	case key.Matches(msg, m.keys.back):
		if m.filterList.FilterState() == list.FilterApplied {
			m.filterList.ResetFilter()
			return m, nil
		}
		m.closePanel()
		return m, nil
	case key.Matches(msg, m.keys.enter):
		m.report(m.panel.Apply(m.ctrl))
		m.closePanel()
		return m, nil
	case key.Matches(msg, m.keys.toggle):
		return m, m.toggleFilter()
	case key.Matches(msg, m.keys.clear):
		m.panel.ClearTags()
		m.panel.ClearIngredients()
		return m, m.refreshFilterItems()
	case msg.String() == "q":
		return m, tea.Quit
	}

	var cmd tea.Cmd
	m.filterList, cmd = m.filterList.Update(msg)
	return m, cmd
}

func (m *Model) toggleFilter() tea.Cmd {
	item, ok := m.filterList.SelectedItem().(filterItem)
	if !ok {
		return nil
	}
	if item.kind == tagFilter {
		item.state = m.panel.ToggleTag(item.name)
	} else {
		item.state = m.panel.ToggleIngredient(item.name)
	}
	return m.filterList.SetItem(m.filterList.Index(), item)
}

func (m *Model) filterItems() []list.Item {
	if m.cat == nil || m.panel == nil {
		return nil
	}
	items := make([]list.Item, 0, len(m.cat.Tags)+len(m.cat.Ingredients))
	for _, t := range m.cat.Tags {
		items = append(items, filterItem{kind: tagFilter, name: t.Name, count: t.RecipeCount, state: m.panel.Tags.Get(t.Name)})
	}
	for _, i := range m.cat.Ingredients {
		items = append(items, filterItem{kind: ingredientFilter, name: i.Name, count: i.RecipeCount, state: m.panel.Ingredients.Get(i.Name)})
	}
	return items
}

func (m *Model) refreshFilterItems() tea.Cmd {
	return m.filterList.SetItems(m.filterItems())
}

func (m *Model) handleDetailKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.quit):
		return m, tea.Quit
	case key.Matches(msg, m.keys.back):
		m.detail.Close()
		m.detailID = 0
		m.state = views.DetailState{}
		m.view = SearchView
		m.notice, m.err = "", nil
		return m, m.results.SetItems(m.recipeItems())
	case key.Matches(msg, m.keys.retry):
		return m, m.openDetail(m.detailID)
	case key.Matches(msg, m.keys.save):
		if m.state.Recipe == nil {
			return m, nil
		}
		return m, m.toggleSave()
	case key.Matches(msg, m.keys.plan):
		if m.state.Recipe == nil {
			return m, nil
		}
		return m, m.addToPlan()
	}

	var cmd tea.Cmd
	m.page, cmd = m.page.Update(msg)
	return m, cmd
}

func (m *Model) openDetail(id int) tea.Cmd {
	m.view = DetailView
	m.detailID = id
	m.state = views.DetailState{Loading: true}
	m.notice, m.err = "", nil
	m.page.SetContent("Loading...")
	return m.loadDetail(id)
}

func (m *Model) updateFocused(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd
	switch m.view {
	case SearchView:
		if m.input.Focused() {
			m.input, cmd = m.input.Update(msg)
		} else {
			m.results, cmd = m.results.Update(msg)
		}
	case FilterView:
		m.filterList, cmd = m.filterList.Update(msg)
	case DetailView:
		m.page, cmd = m.page.Update(msg)
	}
	return m, cmd
}

// report logs a controller error. Only a closed controller can fail a mutation.
func (m *Model) report(err error) {
	if err != nil {
		m.logger.Error("search update failed", "error", err)
		m.err = err
	}
}

func (m *Model) waitForSnapshot() tea.Cmd {
	updates := m.ctrl.Updates()
	return func() tea.Msg {
		s, ok := <-updates
		if !ok {
			return updatesClosedMsg()
		}
		return snapshotMsg(s)
	}
}

func (m *Model) loadCatalog() tea.Cmd {
	if m.catalog == nil {
		return nil
	}
	return func() tea.Msg {
		cat, err := search.LoadCatalog(m.ctx, m.catalog)
		return catalogLoadedMsg(cat, err)
	}
}

func (m *Model) loadDetail(id int) tea.Cmd {
	return func() tea.Msg {
		if err := m.detail.Load(m.ctx, id); err != nil {
			m.logger.Debug("recipe load failed", "id", id, "error", err)
		}
		return detailLoadedMsg(id, m.detail.State())
	}
}

func (m *Model) toggleSave() tea.Cmd {
	return func() tea.Msg {
		saved, err := m.detail.ToggleSave(m.ctx)
		if err != nil {
			return actionDoneMsg("", m.actionError(err, "Failed to update saved recipes."))
		}
		if saved {
			return actionDoneMsg("Saved to your recipes.", nil)
		}
		return actionDoneMsg("Removed from your saved recipes.", nil)
	}
}

func (m *Model) addToPlan() tea.Cmd {
	return func() tea.Msg {
		if err := m.detail.AddToCustomPlan(m.ctx); err != nil {
			return actionDoneMsg("", m.actionError(err, views.AddToPlanFailure))
		}
		return actionDoneMsg("Added to your custom meal plan.", nil)
	}
}

func (m *Model) actionError(err error, fallback string) error {
	if errors.Is(err, shared.ErrNotAuthenticated) {
		return errors.New("login required: run `recipes auth login` first")
	}
	return errors.New(api.Message(err, fallback))
}

// View renders the UI based on the current view state.
func (m *Model) View() string {
	switch m.view {
	case SearchView:
		return m.renderSearch()
	case FilterView:
		return m.renderFilters()
	case DetailView:
		return m.renderDetail()
	default:
		return ""
	}
}

func (m *Model) statusLine() string {
	s := m.snap
	switch s.Status {
	case search.Searching:
		return styles.warn.Render("Searching...")
	case search.Failed:
		return styles.err.Render(s.Err) + styles.help.Render("  (r to retry)")
	case search.Ready:
		if s.Total == 0 {
			return styles.warn.Render("No recipes match your search.")
		}
		line := fmt.Sprintf("%d recipes", s.Total)
		if s.Pagination.Visible() {
			line = fmt.Sprintf("%s • page %d of %d", line, s.Pagination.Page, s.Pagination.TotalPages())
		}
		return styles.ok.Render(line)
	}
	return styles.help.Render("Type to search, or press f to filter by tags and ingredients.")
}

// filterSummary renders the applied filters as +included and -excluded names.
func filterSummary(q filters.Query) string {
	var parts []string
	for _, n := range q.Tags.Included() {
		parts = append(parts, styles.include.Render("+#"+n))
	}
	for _, n := range q.Tags.Excluded() {
		parts = append(parts, styles.exclude.Render("-#"+n))
	}
	for _, n := range q.Ingredients.Included() {
		parts = append(parts, styles.include.Render("+"+n))
	}
	for _, n := range q.Ingredients.Excluded() {
		parts = append(parts, styles.exclude.Render("-"+n))
	}
	return strings.Join(parts, " ")
}

func (m *Model) footer(keys ...key.Binding) string {
	var b strings.Builder
	if m.err != nil {
		b.WriteString(styles.err.Render("Error: "+m.err.Error()) + "\n")
	} else if m.notice != "" {
		b.WriteString(styles.ok.Render(m.notice) + "\n")
	}
	b.WriteString(m.help.ShortHelpView(keys))
	return b.String()
}

func (m *Model) renderSearch() string {
	var b strings.Builder
	b.WriteString(m.input.View() + "\n")
	if summary := filterSummary(m.snap.Query); summary != "" {
		b.WriteString(summary + "\n")
	}
	b.WriteString(m.statusLine() + "\n\n")
	if len(m.snap.Recipes) > 0 {
		b.WriteString(m.results.View() + "\n")
	}

	keys := []key.Binding{m.keys.focus, m.keys.enter, m.keys.filters, m.keys.quit}
	if m.snap.Pagination.Visible() {
		keys = append([]key.Binding{m.keys.next, m.keys.prev}, keys...)
	}
	if m.snap.Query.HasFilters() {
		keys = append(keys, m.keys.clear)
	}
	b.WriteString("\n" + m.footer(keys...))
	return b.String()
}

func (m *Model) renderFilters() string {
	if m.cat == nil {
		return fmt.Sprintf("%s\n\nLoading tags and ingredients...\n\n%s",
			styles.title.Render("Filters"), m.footer(m.keys.back))
	}
	apply := key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "apply"))
	clearDraft := key.NewBinding(key.WithKeys("x"), key.WithHelp("x", "clear"))
	find := key.NewBinding(key.WithKeys("/"), key.WithHelp("/", "find"))
	return fmt.Sprintf("%s\n\n%s", m.filterList.View(), m.footer(m.keys.toggle, apply, clearDraft, find, m.keys.back))
}

func (m *Model) renderDetail() string {
	keys := []key.Binding{m.keys.up, m.keys.down, m.keys.back, m.keys.quit}
	if m.state.Recipe != nil {
		save := m.keys.save
		if m.state.Saved {
			save = key.NewBinding(key.WithKeys("s"), key.WithHelp("s", "unsave"))
		}
		keys = append([]key.Binding{save, m.keys.plan}, keys...)
	}
	if m.state.Err != "" {
		return fmt.Sprintf("%s\n\n%s", styles.err.Render(m.state.Err), m.footer(m.keys.retry, m.keys.back, m.keys.quit))
	}
	return fmt.Sprintf("%s\n\n%s", m.page.View(), m.footer(keys...))
}

// renderRecipe formats the loaded recipe for the detail viewport.
func (m *Model) renderRecipe() string {
	s := m.state
	if s.Recipe == nil {
		return ""
	}
	r := s.Recipe.Recipe

	var b strings.Builder
	title := r.Title
	if s.Saved {
		title = "★ " + title
	}
	b.WriteString(styles.title.Render(title) + "\n")
	fmt.Fprintf(&b, "by %s • %s", r.Creator(), r.Date.Date())
	if s.Stats.Total > 0 {
		fmt.Fprintf(&b, " • %s %s (%d reviews)", stars(s.Stats.Stars()), s.Stats.AverageString(), s.Stats.Total)
	}
	b.WriteString("\n")
	if desc := r.DescriptionOrEmpty(); desc != "" {
		b.WriteString("\n" + desc + "\n")
	}
	if len(s.Tags) > 0 {
		names := make([]string, len(s.Tags))
		for i, t := range s.Tags {
			names[i] = "#" + t.Name
		}
		b.WriteString("\n" + styles.help.Render(strings.Join(names, " ")) + "\n")
	}

	macros := r.Macros()
	if s.Nutrition != nil {
		macros = *s.Nutrition
	}
	fmt.Fprintf(&b, "\n%.0f kcal • protein %.1fg • fat %.1fg • carbs %.1fg\n", macros.Calories, macros.Protein, macros.Fat, macros.Carbs)

	if len(s.Ingredients) > 0 {
		b.WriteString("\n" + styles.ok.Render("Ingredients") + "\n")
		for _, ing := range s.Ingredients {
			fmt.Fprintf(&b, "  • %s %s %s\n", ing.Quantity, ing.Unit, ing.Name)
		}
	}
	if len(s.Steps) > 0 {
		b.WriteString("\n" + styles.ok.Render("Steps") + "\n")
		for _, st := range s.Steps {
			fmt.Fprintf(&b, "  %d. %s\n", st.Number, st.Detail)
		}
	}
	if len(s.Reviews) > 0 {
		b.WriteString("\n" + styles.ok.Render("Reviews") + "\n")
		for i, rv := range s.Reviews {
			if i == maxReviews {
				fmt.Fprintf(&b, "  ... and %d more\n", len(s.Reviews)-maxReviews)
				break
			}
			fmt.Fprintf(&b, "  %s %s: %s\n", stars(rv.RatingOrZero()), rv.Author(), rv.TextOrEmpty())
		}
	}
	return b.String()
}

func stars(n int) string {
	n = max(0, min(n, 5))
	return strings.Repeat("★", n) + strings.Repeat("☆", 5-n)
}
