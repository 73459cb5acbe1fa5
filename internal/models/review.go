package models

import (
	"fmt"
	"math"
)

// Review is a user review of a recipe. Rating and Text are both optional.
type Review struct {
	ID        int       `json:"id"`
	RecipeID  int       `json:"recipe_id"`
	UserID    *int      `json:"user_id"`
	Rating    *int      `json:"rating"`
	Text      *string   `json:"text"`
	CreatedAt Timestamp `json:"created_at"`
	User      *User     `json:"user"`
}

// Author returns the reviewer's username, or [DeletedCreator] when the account is gone.
func (r Review) Author() string {
	if r.User == nil || r.User.Username == "" {
		return DeletedCreator
	}
	return r.User.Username
}

// RatingOrZero returns the star rating, or 0 for a text-only review.
func (r Review) RatingOrZero() int {
	if r.Rating == nil {
		return 0
	}
	return *r.Rating
}

func (r Review) TextOrEmpty() string { return deref(r.Text) }

// ReviewInput is the payload of review create and update.
type ReviewInput struct {
	Rating *int    `json:"rating,omitempty"`
	Text   *string `json:"text,omitempty"`
}

// RatingStats summarises the ratings of a recipe's reviews.
type RatingStats struct {
	Average      float64     `json:"average"`
	Total        int         `json:"total"`
	Distribution map[int]int `json:"distribution"`
}

// NewRatingStats computes the review count, the mean rating rounded to one decimal and how many
// reviews gave each rating from 1 to 5. Reviews without a rating count towards the total but
// contribute zero to the sum.
func NewRatingStats(reviews []Review) RatingStats {
	stats := RatingStats{Distribution: map[int]int{1: 0, 2: 0, 3: 0, 4: 0, 5: 0}}
	if len(reviews) == 0 {
		return stats
	}

	sum := 0
	for _, r := range reviews {
		if r.Rating == nil {
			continue
		}
		sum += *r.Rating
		if *r.Rating >= 1 && *r.Rating <= 5 {
			stats.Distribution[*r.Rating]++
		}
	}
	stats.Total = len(reviews)
	stats.Average = math.Round(float64(sum)/float64(stats.Total)*10) / 10
	return stats
}

// AverageString formats the average with exactly one decimal.
func (s RatingStats) AverageString() string {
	return fmt.Sprintf("%.1f", s.Average)
}

// Stars is the number of filled stars shown for the average.
func (s RatingStats) Stars() int {
	return int(math.Round(s.Average))
}
