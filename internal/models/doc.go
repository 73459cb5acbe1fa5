// Package models defines the records exchanged with the recipe backend and the small amount of
// arithmetic the client performs on them.
//
// The package contains three categories of types:
//
// 1. Backend records, decoded from JSON as-is:
//   - [Recipe], [RecipeDetail], [FeaturedRecipe] : recipe listings and detail
//   - [RecipeIngredient], [Step], [Tag], [Ingredient], [Nutrition] : recipe sub-resources and catalogs
//   - [Review], [User], [UserAdminView] : reviews and accounts
//   - [SavedMealPlanInfo], [SavedMealPlan] : stored meal plans
//
// 2. Request payloads: [RecipeInput], [ReviewInput], [PersonProfile], [SavedMealPlanInput].
//
// 3. Derived values computed client-side:
//   - [Pagination] : page math over total_count
//   - [NutritionTotals] : summed and rounded macros of a plan
//   - [RatingStats] : average and 1..5 distribution of reviews
//   - [CalorieComparison] : how a plan's calories compare to estimated needs
//   - [MonthlySeries] : chart data bucketed per month
//
// Optional backend fields are pointers; helpers such as [Recipe.CaloriesOrZero] default them for display only.
package models
