package models

// User is an account as reported by /users/me/ and the signup endpoint.
type User struct {
	ID        int       `json:"id"`
	Username  string    `json:"username"`
	CreatedAt Timestamp `json:"created_at"`
	IsAdmin   bool      `json:"is_admin"`
}

// UserAdminView is a user row of the admin dashboard.
type UserAdminView struct {
	User
	CreatedRecipesCount int      `json:"created_recipes_count"`
	ReviewsCount        int      `json:"reviews_count"`
	AverageRating       *float64 `json:"average_rating"`
}

// AverageRatingOrZero treats users without rated reviews as 0.
func (u UserAdminView) AverageRatingOrZero() float64 { return orZero(u.AverageRating) }

// Credentials is the payload of signup.
type Credentials struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// Message is the generic {"message": ...} acknowledgement some endpoints return.
type Message struct {
	Message string `json:"message"`
}
