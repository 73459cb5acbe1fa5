package models

import (
	"fmt"
	"math"
	"strings"
)

// CalorieMatchTolerance is the relative difference within which a plan counts as matched.
const CalorieMatchTolerance = 0.10

// Gender values accepted by the calorie calculator.
type Gender string

const (
	Male   Gender = "Male"
	Female Gender = "Female"
)

// ExerciseFrequency values accepted by the calorie calculator.
type ExerciseFrequency string

const (
	Sedentary ExerciseFrequency = "Sedentary"
	Low       ExerciseFrequency = "Low"
	Moderate  ExerciseFrequency = "Moderate"
	Heavy     ExerciseFrequency = "Heavy"
)

// ParseGender accepts the backend spelling case-insensitively.
func ParseGender(s string) (Gender, error) {
	switch {
	case strings.EqualFold(s, string(Male)):
		return Male, nil
	case strings.EqualFold(s, string(Female)):
		return Female, nil
	}
	return "", fmt.Errorf("gender must be Male or Female, got %q", s)
}

// ParseExerciseFrequency accepts the backend spelling case-insensitively.
func ParseExerciseFrequency(s string) (ExerciseFrequency, error) {
	for _, f := range []ExerciseFrequency{Sedentary, Low, Moderate, Heavy} {
		if strings.EqualFold(s, string(f)) {
			return f, nil
		}
	}
	return "", fmt.Errorf("exercise frequency must be one of Sedentary, Low, Moderate, Heavy, got %q", s)
}

// PersonProfile is one person the custom meal plan is sized for.
type PersonProfile struct {
	Gender            Gender            `json:"gender"`
	Weight            float64           `json:"weight"`
	FrequencyExercise ExerciseFrequency `json:"frequency_of_exercise"`
}

// Validate mirrors the backend's constraints so bad input never leaves the client.
func (p PersonProfile) Validate() error {
	if p.Gender != Male && p.Gender != Female {
		return fmt.Errorf("gender must be Male or Female")
	}
	if !(p.Weight > 0) {
		return fmt.Errorf("weight must be greater than 0")
	}
	if _, err := ParseExerciseFrequency(string(p.FrequencyExercise)); err != nil {
		return err
	}
	return nil
}

// CaloriesNeeded is the calculator response for one person.
type CaloriesNeeded struct {
	CaloriesNeeded float64 `json:"calories_needed"`
}

// NutritionTotals are the summed macros of a set of recipes, as stored with saved plans.
type NutritionTotals struct {
	Calories float64 `json:"total_calories"`
	Protein  float64 `json:"total_protein"`
	Fat      float64 `json:"total_fat"`
	Carbs    float64 `json:"total_carbs"`
}

// SumNutrition adds up the macros of recipes, counting missing values as zero.
func SumNutrition(recipes []Recipe) NutritionTotals {
	var t NutritionTotals
	for _, r := range recipes {
		m := r.Macros()
		t.Calories += m.Calories
		t.Protein += m.Protein
		t.Fat += m.Fat
		t.Carbs += m.Carbs
	}
	return t
}

// Rounded rounds every total to the nearest integer.
func (t NutritionTotals) Rounded() NutritionTotals {
	return NutritionTotals{
		Calories: math.Round(t.Calories),
		Protein:  math.Round(t.Protein),
		Fat:      math.Round(t.Fat),
		Carbs:    math.Round(t.Carbs),
	}
}

// CalorieMatch classifies a plan against estimated needs.
type CalorieMatch int

const (
	CaloriesMatched CalorieMatch = iota
	CaloriesOver
	CaloriesUnder
)

func (m CalorieMatch) String() string {
	switch m {
	case CaloriesMatched:
		return "matched"
	case CaloriesOver:
		return "over"
	case CaloriesUnder:
		return "under"
	}
	return "unknown"
}

// CalorieComparison is the verdict shown next to a custom meal plan.
type CalorieComparison struct {
	Match      CalorieMatch `json:"-"`
	Difference float64      `json:"difference"`
	Message    string       `json:"message"`
}

// CompareCalories compares planned calories to needed calories. ok is false when needed is
// not known yet, in which case nothing should be shown.
func CompareCalories(planned, needed float64) (c CalorieComparison, ok bool) {
	if needed == 0 {
		return CalorieComparison{}, false
	}

	diff := planned - needed
	c.Difference = diff
	switch {
	case math.Abs(diff/needed) <= CalorieMatchTolerance:
		c.Match = CaloriesMatched
		c.Message = "Excellent! This meal plan's calories are well-matched to your needs."
	case diff > 0:
		c.Match = CaloriesOver
		c.Message = fmt.Sprintf("Warning: This meal plan is about %d calories over your estimated daily needs.", int(math.Round(diff)))
	default:
		c.Match = CaloriesUnder
		c.Message = fmt.Sprintf("Warning: This meal plan is about %d calories below your estimated daily needs.", int(math.Round(math.Abs(diff))))
	}
	return c, true
}

// Plan name length bounds enforced by the backend.
const (
	MinPlanNameLength = 3
	MaxPlanNameLength = 100
)

// SavedMealPlanInfo is the listing form of a saved plan.
type SavedMealPlanInfo struct {
	ID   int    `json:"id"`
	Name string `json:"name"`
}

// SavedMealPlan is a saved plan with its recipes and stored totals.
type SavedMealPlan struct {
	SavedMealPlanInfo
	CreatedAt     Timestamp `json:"created_at"`
	TotalCalories *float64  `json:"total_calories"`
	TotalProtein  *float64  `json:"total_protein"`
	TotalFat      *float64  `json:"total_fat"`
	TotalCarbs    *float64  `json:"total_carbs"`
	Recipes       []Recipe  `json:"recipes"`
}

// Totals returns the stored totals with missing values as zero.
func (p SavedMealPlan) Totals() NutritionTotals {
	return NutritionTotals{
		Calories: orZero(p.TotalCalories),
		Protein:  orZero(p.TotalProtein),
		Fat:      orZero(p.TotalFat),
		Carbs:    orZero(p.TotalCarbs),
	}
}

// SavedMealPlanInput is the payload for saving a plan.
type SavedMealPlanInput struct {
	Name      string          `json:"name"`
	RecipeIDs []int           `json:"recipe_ids"`
	Nutrition NutritionTotals `json:"nutrition"`
}

// PlanName is the payload for renaming a saved plan.
type PlanName struct {
	Name string `json:"name"`
}
