package models

import (
	"encoding/json"
	"strings"
	"testing"
)

func ptr[T any](v T) *T { return &v }

func TestPagination(t *testing.T) {
	t.Run("skip and total pages", func(t *testing.T) {
		tests := []struct {
			name      string
			page      int
			total     int
			wantSkip  int
			wantPages int
		}{
			{"first page", 1, 30, 0, 3},
			{"third page", 3, 30, 24, 3},
			{"exact multiple", 2, 24, 12, 2},
			{"empty", 1, 0, 0, 0},
			{"page below one clamps", 0, 5, 0, 1},
		}
		for _, tt := range tests {
			t.Run(tt.name, func(t *testing.T) {
				p := NewPagination(tt.page, DefaultPageSize, tt.total)
				if got := p.Skip(); got != tt.wantSkip {
					t.Errorf("Skip() = %d, want %d", got, tt.wantSkip)
				}
				if got := p.TotalPages(); got != tt.wantPages {
					t.Errorf("TotalPages() = %d, want %d", got, tt.wantPages)
				}
			})
		}
	})

	t.Run("controls only when total exceeds page size", func(t *testing.T) {
		if NewPagination(1, 12, 2).Visible() {
			t.Error("2 results should not show pagination")
		}
		if NewPagination(1, 12, 12).Visible() {
			t.Error("exactly one full page should not show pagination")
		}
		if !NewPagination(1, 12, 13).Visible() {
			t.Error("13 results should show pagination")
		}
	})

	t.Run("prev next and clamp", func(t *testing.T) {
		p := NewPagination(3, 12, 30)
		if !p.HasPrev() || p.HasNext() {
			t.Errorf("page 3 of 3: HasPrev=%v HasNext=%v", p.HasPrev(), p.HasNext())
		}
		if got := p.Clamp(9); got != 3 {
			t.Errorf("Clamp(9) = %d, want 3", got)
		}
		if got := p.Clamp(-1); got != 1 {
			t.Errorf("Clamp(-1) = %d, want 1", got)
		}
		if got := NewPagination(1, 12, 0).Clamp(4); got != 1 {
			t.Errorf("Clamp on empty result = %d, want 1", got)
		}
	})
}

func TestNutrition(t *testing.T) {
	t.Run("SumNutrition treats missing values as zero", func(t *testing.T) {
		recipes := []Recipe{
			{ID: 1, Calories: ptr(200.4), Protein: ptr(10.2), Fat: ptr(5.0), Carbs: ptr(30.0)},
			{ID: 2, Calories: ptr(300.3), Protein: nil, Fat: ptr(7.6)},
			{ID: 3},
		}
		got := SumNutrition(recipes).Rounded()
		want := NutritionTotals{Calories: 501, Protein: 10, Fat: 13, Carbs: 30}
		if got != want {
			t.Errorf("SumNutrition().Rounded() = %+v, want %+v", got, want)
		}
	})

	t.Run("empty list", func(t *testing.T) {
		if got := SumNutrition(nil); got != (NutritionTotals{}) {
			t.Errorf("expected zero totals, got %+v", got)
		}
	})
}

func TestCompareCalories(t *testing.T) {
	tests := []struct {
		name    string
		planned float64
		needed  float64
		ok      bool
		match   CalorieMatch
		message string
	}{
		{"unknown needs", 1200, 0, false, 0, ""},
		{"within ten percent", 2150, 2000, true, CaloriesMatched, "Excellent!"},
		{"exactly ten percent", 2200, 2000, true, CaloriesMatched, "well-matched"},
		{"over", 2600, 2000, true, CaloriesOver, "about 600 calories over"},
		{"under", 1499.6, 2000, true, CaloriesUnder, "about 500 calories below"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, ok := CompareCalories(tt.planned, tt.needed)
			if ok != tt.ok {
				t.Fatalf("ok = %v, want %v", ok, tt.ok)
			}
			if !ok {
				return
			}
			if c.Match != tt.match {
				t.Errorf("Match = %v, want %v", c.Match, tt.match)
			}
			if !strings.Contains(c.Message, tt.message) {
				t.Errorf("Message = %q, want it to contain %q", c.Message, tt.message)
			}
		})
	}
}

func TestRatingStats(t *testing.T) {
	t.Run("no reviews", func(t *testing.T) {
		s := NewRatingStats(nil)
		if s.Total != 0 || s.Average != 0 || s.AverageString() != "0.0" {
			t.Errorf("unexpected empty stats %+v", s)
		}
		for r := 1; r <= 5; r++ {
			if n, ok := s.Distribution[r]; !ok || n != 0 {
				t.Errorf("distribution[%d] = %d, %v; want 0, true", r, n, ok)
			}
		}
	})

	t.Run("average and distribution", func(t *testing.T) {
		reviews := []Review{{Rating: ptr(5)}, {Rating: ptr(4)}, {Rating: ptr(4)}}
		s := NewRatingStats(reviews)
		if s.Total != 3 {
			t.Errorf("Total = %d, want 3", s.Total)
		}
		if s.AverageString() != "4.3" {
			t.Errorf("AverageString() = %s, want 4.3", s.AverageString())
		}
		if s.Distribution[4] != 2 || s.Distribution[5] != 1 || s.Distribution[1] != 0 {
			t.Errorf("unexpected distribution %v", s.Distribution)
		}
		if s.Stars() != 4 {
			t.Errorf("Stars() = %d, want 4", s.Stars())
		}
	})

	t.Run("unrated reviews count towards total", func(t *testing.T) {
		s := NewRatingStats([]Review{{Rating: ptr(4)}, {Text: ptr("nice")}})
		if s.Total != 2 || s.AverageString() != "2.0" {
			t.Errorf("got total %d avg %s", s.Total, s.AverageString())
		}
	})
}

func TestDecodeBackendRecords(t *testing.T) {
	t.Run("recipe page with naive datetimes and nulls", func(t *testing.T) {
		body := `{"recipes":[{"recipe_id":7,"title":"Pho","description":null,"image_url":"http://img/pho.jpg",
			"calories":410.5,"protein":null,"date":"2024-03-05T08:15:30.123456","creator_username":null,"tags":["soup"]}],
			"total_count":31}`

		var page RecipePage
		if err := json.Unmarshal([]byte(body), &page); err != nil {
			t.Fatalf("decode failed: %v", err)
		}
		if page.TotalCount != 31 || len(page.Recipes) != 1 {
			t.Fatalf("unexpected page %+v", page)
		}
		r := page.Recipes[0]
		if r.Date.Date() != "2024-03-05" {
			t.Errorf("Date = %q", r.Date.Date())
		}
		if r.Creator() != DeletedCreator {
			t.Errorf("Creator() = %q, want %q", r.Creator(), DeletedCreator)
		}
		if r.Macros().Protein != 0 || r.CaloriesOrZero() != 410.5 {
			t.Errorf("unexpected macros %+v", r.Macros())
		}
		if !r.HasTag("SOUP") {
			t.Error("HasTag should ignore case")
		}
	})

	t.Run("admin user view", func(t *testing.T) {
		body := `{"id":1,"username":"an","created_at":"2025-01-02T03:04:05+07:00","is_admin":false,
			"created_recipes_count":4,"reviews_count":2,"average_rating":null}`
		var u UserAdminView
		if err := json.Unmarshal([]byte(body), &u); err != nil {
			t.Fatalf("decode failed: %v", err)
		}
		if u.Username != "an" || u.CreatedRecipesCount != 4 || u.AverageRatingOrZero() != 0 {
			t.Errorf("unexpected user %+v", u)
		}
	})

	t.Run("invalid timestamp", func(t *testing.T) {
		var ts Timestamp
		if err := json.Unmarshal([]byte(`"yesterday"`), &ts); err == nil {
			t.Error("expected error for unparseable timestamp")
		}
	})
}

func TestPersonProfile(t *testing.T) {
	valid := PersonProfile{Gender: Female, Weight: 55, FrequencyExercise: Moderate}
	if err := valid.Validate(); err != nil {
		t.Errorf("expected valid profile, got %v", err)
	}

	tests := []struct {
		name    string
		profile PersonProfile
	}{
		{"zero weight", PersonProfile{Gender: Male, Weight: 0, FrequencyExercise: Low}},
		{"bad gender", PersonProfile{Gender: "Other", Weight: 70, FrequencyExercise: Low}},
		{"bad exercise", PersonProfile{Gender: Male, Weight: 70, FrequencyExercise: "Daily"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := tt.profile.Validate(); err == nil {
				t.Error("expected validation error")
			}
		})
	}

	if g, err := ParseGender("female"); err != nil || g != Female {
		t.Errorf("ParseGender(female) = %v, %v", g, err)
	}
	if f, err := ParseExerciseFrequency("HEAVY"); err != nil || f != Heavy {
		t.Errorf("ParseExerciseFrequency(HEAVY) = %v, %v", f, err)
	}
}

func TestMonthlySeries(t *testing.T) {
	counts := DateCounts{"2024-01-03": 2, "2024-01-20": 1, "2024-11-09": 4, "2023-12-31": 9}

	series := counts.MonthlySeries(2024)
	if len(series) != 12 {
		t.Fatalf("expected 12 months, got %d", len(series))
	}
	if series[0] != (Point{Label: "2024-01", Value: 3}) {
		t.Errorf("January = %+v", series[0])
	}
	if series[10].Value != 4 || series[1].Value != 0 {
		t.Errorf("unexpected series %+v", series)
	}

	sorted := counts.Sorted()
	if sorted[0].Label != "2023-12-31" || counts.Total() != 16 {
		t.Errorf("unexpected sorted %v total %d", sorted, counts.Total())
	}
}
