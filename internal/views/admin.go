package views

import (
	"context"
	"fmt"
	"slices"
	"sync"
	"time"

	"github.com/buinguyenkhai/pttkht-20251-recipe-recommendation-system/internal/api"
	"github.com/buinguyenkhai/pttkht-20251-recipe-recommendation-system/internal/models"
	"github.com/buinguyenkhai/pttkht-20251-recipe-recommendation-system/internal/shared"
	"golang.org/x/sync/errgroup"
)

// YearChoices is how many years, counting the current one, the dashboard offers.
const YearChoices = 10

const (
	UsersFailure      = "Failed to fetch users."
	DeleteUserFailure = "Failed to delete user."
	ChartsFailure     = "Failed to load charts."
)

// SortDirection orders the user table.
type SortDirection int

const (
	Desc SortDirection = iota
	Asc
)

func (d SortDirection) String() string {
	if d == Asc {
		return "asc"
	}
	return "desc"
}

// ParseSortDirection accepts "asc" or "desc".
func ParseSortDirection(s string) (SortDirection, error) {
	switch s {
	case "", "desc":
		return Desc, nil
	case "asc":
		return Asc, nil
	}
	return Desc, fmt.Errorf("%w: sort direction must be asc or desc, got %q", shared.ErrInvalidFlag, s)
}

// Sort is the user table ordering. The backend only sorts descending; ascending is the
// reversed descending order.
type Sort struct {
	Key       string
	Direction SortDirection
}

// DefaultSort orders by recipes created, most first.
var DefaultSort = Sort{Key: api.SortCreatedRecipes, Direction: Desc}

// Toggle returns the ordering after the key column is selected. Selecting the active key while
// descending flips it to ascending; anything else sorts by key descending.
func (s Sort) Toggle(key string) Sort {
	if s.Key == key && s.Direction == Desc {
		return Sort{Key: key, Direction: Asc}
	}
	return Sort{Key: key, Direction: Desc}
}

// AdminSource is the admin API.
type AdminSource interface {
	DashboardUsers(ctx context.Context, sortBy string, year int) ([]models.UserAdminView, error)
	AdminDeleteUser(ctx context.Context, id int) error
	AdminDeleteRecipe(ctx context.Context, id int) error
	AdminDeleteReview(ctx context.Context, id int) error
	Chart(ctx context.Context, name string) (models.DateCounts, error)
}

// Charts are the monthly series of the dashboard's selected year.
type Charts struct {
	Recipes []models.Point
	Users   []models.Point
	Reviews []models.Point
}

type AdminState struct {
	Users   []models.UserAdminView
	Sort    Sort
	Year    int
	Charts  Charts
	Loading bool
	Err     string
}

// AdminDashboard is the admin screen.
type AdminDashboard struct {
	src      AdminSource
	sess     Session
	usersReq Latest
	chartReq Latest

	mu    sync.Mutex
	state AdminState
}

// NewAdminDashboard starts on [DefaultSort] and the year of now.
func NewAdminDashboard(src AdminSource, sess Session, now time.Time) *AdminDashboard {
	return &AdminDashboard{src: src, sess: sess, state: AdminState{Sort: DefaultSort, Year: now.Year()}}
}

// Years lists the selectable years, newest first.
func Years(now time.Time) []int {
	years := make([]int, YearChoices)
	for i := range years {
		years[i] = now.Year() - i
	}
	return years
}

func (v *AdminDashboard) State() AdminState {
	v.mu.Lock()
	defer v.mu.Unlock()
	s := v.state
	s.Users = append([]models.UserAdminView(nil), v.state.Users...)
	return s
}

func (v *AdminDashboard) requireAdmin() error {
	if !v.sess.Authenticated() {
		return fmt.Errorf("%w: login as an admin", shared.ErrNotAuthenticated)
	}
	if !v.sess.IsAdmin() {
		return fmt.Errorf("%w: admin access required", shared.ErrForbidden)
	}
	return nil
}

func (v *AdminDashboard) setErr(msg string) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.state.Err = msg
}

// RequestSort applies [Sort.Toggle] for key and reloads.
func (v *AdminDashboard) RequestSort(ctx context.Context, key string) error {
	if !api.ValidSortKey(key) {
		return fmt.Errorf("%w: unknown sort key %q", shared.ErrInvalidArgument, key)
	}
	v.mu.Lock()
	v.state.Sort = v.state.Sort.Toggle(key)
	v.mu.Unlock()
	return v.Load(ctx)
}

// SetSort replaces the ordering without reloading.
func (v *AdminDashboard) SetSort(s Sort) error {
	if !api.ValidSortKey(s.Key) {
		return fmt.Errorf("%w: unknown sort key %q", shared.ErrInvalidArgument, s.Key)
	}
	v.mu.Lock()
	defer v.mu.Unlock()
	v.state.Sort = s
	return nil
}

// SetYear selects the year users and charts are filtered by, without reloading.
func (v *AdminDashboard) SetYear(year int) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.state.Year = year
}

// Load fetches the user table for the current sort and year.
func (v *AdminDashboard) Load(ctx context.Context) error {
	if err := v.requireAdmin(); err != nil {
		v.setErr(err.Error())
		return err
	}

	ctx, seq := v.usersReq.Begin(ctx)
	v.mu.Lock()
	sort, year := v.state.Sort, v.state.Year
	v.state.Loading = true
	v.mu.Unlock()

	users, err := v.src.DashboardUsers(ctx, sort.Key, year)

	v.mu.Lock()
	defer v.mu.Unlock()
	if !v.usersReq.Current(seq) {
		return nil
	}
	v.state.Loading = false
	if err != nil {
		v.state.Users = nil
		v.state.Err = describe(v.sess, err, UsersFailure)
		return err
	}
	if sort.Direction == Asc {
		slices.Reverse(users)
	}
	v.state.Users = users
	v.state.Err = ""
	return nil
}

// DeleteUserPrompt is the confirmation shown before deleting username.
func DeleteUserPrompt(username string) string {
	return fmt.Sprintf("Delete user %q? Their recipes and reviews will be attributed to %q.", username, models.DeletedCreator)
}

// DeleteUser removes an account and drops it from the table.
func (v *AdminDashboard) DeleteUser(ctx context.Context, id int) error {
	if err := v.requireAdmin(); err != nil {
		return err
	}
	if u := v.sess.User(); u != nil && u.ID == id {
		return fmt.Errorf("%w: admins cannot delete themselves", shared.ErrInvalidArgument)
	}
	if err := v.src.AdminDeleteUser(ctx, id); err != nil {
		v.setErr(describe(v.sess, err, DeleteUserFailure))
		return err
	}

	v.mu.Lock()
	defer v.mu.Unlock()
	v.state.Users = slices.DeleteFunc(v.state.Users, func(u models.UserAdminView) bool { return u.ID == id })
	return nil
}

func (v *AdminDashboard) DeleteRecipe(ctx context.Context, id int) error {
	if err := v.requireAdmin(); err != nil {
		return err
	}
	if err := v.src.AdminDeleteRecipe(ctx, id); err != nil {
		v.setErr(describe(v.sess, err, DeleteRecipeFailure))
		return err
	}
	return nil
}

func (v *AdminDashboard) DeleteReview(ctx context.Context, id int) error {
	if err := v.requireAdmin(); err != nil {
		return err
	}
	if err := v.src.AdminDeleteReview(ctx, id); err != nil {
		v.setErr(describe(v.sess, err, DeleteReviewFailure))
		return err
	}
	return nil
}

// LoadCharts fetches the three activity charts and buckets them by month of the selected year.
func (v *AdminDashboard) LoadCharts(ctx context.Context) (Charts, error) {
	if err := v.requireAdmin(); err != nil {
		return Charts{}, err
	}
	ctx, seq := v.chartReq.Begin(ctx)
	v.mu.Lock()
	year := v.state.Year
	v.mu.Unlock()

	var recipes, users, reviews models.DateCounts
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		recipes, err = v.src.Chart(gctx, models.ChartRecipes)
		return err
	})
	g.Go(func() (err error) {
		users, err = v.src.Chart(gctx, models.ChartUsers)
		return err
	})
	g.Go(func() (err error) {
		reviews, err = v.src.Chart(gctx, models.ChartReviews)
		return err
	})
	err := g.Wait()

	v.mu.Lock()
	defer v.mu.Unlock()
	if !v.chartReq.Current(seq) {
		return Charts{}, ctx.Err()
	}
	if err != nil {
		v.state.Charts = Charts{}
		v.state.Err = describe(v.sess, err, ChartsFailure)
		return Charts{}, err
	}
	v.state.Charts = Charts{
		Recipes: recipes.MonthlySeries(year),
		Users:   users.MonthlySeries(year),
		Reviews: reviews.MonthlySeries(year),
	}
	return v.state.Charts, nil
}

func (v *AdminDashboard) Close() {
	v.usersReq.Stop()
	v.chartReq.Stop()
}
