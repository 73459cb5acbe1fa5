package shared

import "fmt"

// NetworkErrorMessage is what users see when the backend could not be reached at all.
const NetworkErrorMessage = "A network error occurred."

var (
	ErrNotImplemented = fmt.Errorf("not implemented")

	// Configuration errors
	ErrMissingConfig = fmt.Errorf("configuration not found")
	ErrInvalidConfig = fmt.Errorf("invalid configuration")

	// Authentication errors
	ErrAuthFailed       = fmt.Errorf("authentication failed")
	ErrNotAuthenticated = fmt.Errorf("not authenticated")
	ErrTokenExpired     = fmt.Errorf("access token expired")
	ErrForbidden        = fmt.Errorf("permission denied")

	// API and transport errors
	ErrNetwork            = fmt.Errorf("network error")
	ErrAPIRequest         = fmt.Errorf("API request failed")
	ErrServiceUnavailable = fmt.Errorf("service unavailable")
	ErrRecipeNotFound     = fmt.Errorf("recipe not found")
	ErrMealPlanNotFound   = fmt.Errorf("meal plan not found")

	// Input validation errors
	ErrValidation      = fmt.Errorf("validation failed")
	ErrInvalidInput    = fmt.Errorf("invalid input")
	ErrMissingArgument = fmt.Errorf("missing required argument")
	ErrInvalidArgument = fmt.Errorf("invalid argument")
	ErrInvalidFlag     = fmt.Errorf("invalid flag value")

	// Local storage errors
	ErrNoSession = fmt.Errorf("no stored session")
)

// ValidationError is a user-facing form error raised before any network call. It matches
// [ErrValidation] with errors.Is.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string { return e.Message }

func (e *ValidationError) Is(target error) bool { return target == ErrValidation }

// Invalid returns a [ValidationError] for field.
func Invalid(field, message string) error {
	return &ValidationError{Field: field, Message: message}
}
