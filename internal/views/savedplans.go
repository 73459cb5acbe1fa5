package views

import (
	"context"
	"fmt"
	"sync"

	"github.com/buinguyenkhai/pttkht-20251-recipe-recommendation-system/internal/models"
	"github.com/buinguyenkhai/pttkht-20251-recipe-recommendation-system/internal/shared"
)

const (
	SavedPlansFailure = "Failed to load saved meal plans."
	PlanFailure       = "Failed to load the meal plan."
	RenameFailure     = "Failed to rename the meal plan."
	DeletePlanFailure = "Failed to delete the meal plan."
)

// SavedPlansSource is the saved meal plan API.
type SavedPlansSource interface {
	SavedPlans(ctx context.Context) ([]models.SavedMealPlanInfo, error)
	SavedPlan(ctx context.Context, id int) (*models.SavedMealPlan, error)
	RenamePlan(ctx context.Context, id int, name string) (*models.SavedMealPlanInfo, error)
	DeletePlan(ctx context.Context, id int) error
}

type SavedPlansState struct {
	Plans []models.SavedMealPlanInfo
	// Open is the plan being viewed, if any.
	Open    *models.SavedMealPlan
	Loading bool
	Err     string
}

// SavedPlans lists the user's saved meal plans.
type SavedPlans struct {
	src     SavedPlansSource
	sess    Session
	listReq Latest
	openReq Latest

	mu    sync.Mutex
	state SavedPlansState
}

func NewSavedPlans(src SavedPlansSource, sess Session) *SavedPlans {
	return &SavedPlans{src: src, sess: sess}
}

func (v *SavedPlans) State() SavedPlansState {
	v.mu.Lock()
	defer v.mu.Unlock()
	s := v.state
	s.Plans = append([]models.SavedMealPlanInfo(nil), v.state.Plans...)
	return s
}

func (v *SavedPlans) setErr(msg string) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.state.Err = msg
}

func (v *SavedPlans) List(ctx context.Context) error {
	if !v.sess.Authenticated() {
		return fmt.Errorf("%w: login to view saved plans", shared.ErrNotAuthenticated)
	}
	ctx, seq := v.listReq.Begin(ctx)
	v.mu.Lock()
	v.state.Loading = true
	v.mu.Unlock()

	plans, err := v.src.SavedPlans(ctx)

	v.mu.Lock()
	defer v.mu.Unlock()
	if !v.listReq.Current(seq) {
		return nil
	}
	v.state.Loading = false
	if err != nil {
		v.state.Plans = nil
		v.state.Err = describe(v.sess, err, SavedPlansFailure)
		return err
	}
	v.state.Plans = plans
	v.state.Err = ""
	return nil
}

// Open loads one plan with its recipes.
func (v *SavedPlans) Open(ctx context.Context, id int) (*models.SavedMealPlan, error) {
	ctx, seq := v.openReq.Begin(ctx)
	plan, err := v.src.SavedPlan(ctx, id)

	v.mu.Lock()
	defer v.mu.Unlock()
	if !v.openReq.Current(seq) {
		return nil, ctx.Err()
	}
	if err != nil {
		v.state.Open = nil
		v.state.Err = describe(v.sess, err, PlanFailure)
		return nil, err
	}
	v.state.Open = plan
	v.state.Err = ""
	return plan, nil
}

// Rename validates and applies a new plan name.
func (v *SavedPlans) Rename(ctx context.Context, id int, name string) error {
	name, err := ValidatePlanName(name)
	if err != nil {
		v.setErr(err.Error())
		return err
	}

	info, err := v.src.RenamePlan(ctx, id, name)
	if err != nil {
		v.setErr(describe(v.sess, err, RenameFailure))
		return err
	}

	v.mu.Lock()
	defer v.mu.Unlock()
	for i := range v.state.Plans {
		if v.state.Plans[i].ID == id {
			v.state.Plans[i].Name = info.Name
		}
	}
	if v.state.Open != nil && v.state.Open.ID == id {
		v.state.Open.Name = info.Name
	}
	v.state.Err = ""
	return nil
}

func (v *SavedPlans) Delete(ctx context.Context, id int) error {
	if err := v.src.DeletePlan(ctx, id); err != nil {
		v.setErr(describe(v.sess, err, DeletePlanFailure))
		return err
	}

	v.mu.Lock()
	defer v.mu.Unlock()
	kept := v.state.Plans[:0]
	for _, p := range v.state.Plans {
		if p.ID != id {
			kept = append(kept, p)
		}
	}
	v.state.Plans = kept
	if v.state.Open != nil && v.state.Open.ID == id {
		v.state.Open = nil
	}
	return nil
}

func (v *SavedPlans) Close() {
	v.listReq.Stop()
	v.openReq.Stop()
}
