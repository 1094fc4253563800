package catalog

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/aristath/nutriplan/internal/database"
	"github.com/aristath/nutriplan/internal/domain"
	"github.com/rs/zerolog"
)

// Repository handles food, recipe and price review persistence.
// Every write that changes what a snapshot would contain bumps the catalog version.
//
// Database: catalog.db (foods, recipes, recipe_items, price_reviews, catalog_meta)
type Repository struct {
	db  *sql.DB
	log zerolog.Logger
}

// NewRepository creates a new catalog repository
func NewRepository(db *sql.DB, log zerolog.Logger) *Repository {
	return &Repository{
		db:  db,
		log: log.With().Str("repository", "catalog").Logger(),
	}
}

const foodColumns = `id, source, name, reference_weight_g, calories, protein_g, carbs_g, fat_g, fiber_g, price, location, meal_type`

// ListFoods returns every stored food ordered by source and id.
// Implements domain.CatalogProvider.
func (r *Repository) ListFoods(ctx context.Context) ([]domain.FoodItem, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT `+foodColumns+` FROM foods ORDER BY source, id`)
	if err != nil {
		return nil, fmt.Errorf("failed to list foods: %w", err)
	}
	defer rows.Close()

	var foods []domain.FoodItem
	for rows.Next() {
		food, err := scanFood(rows)
		if err != nil {
			return nil, err
		}
		foods = append(foods, food)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating foods: %w", err)
	}
	return foods, nil
}

// GetFood returns one food. Returns domain.ErrNotFound when missing.
func (r *Repository) GetFood(ctx context.Context, id string, source domain.Source) (domain.FoodItem, error) {
	if source == "" {
		source = domain.SourceCatalog
	}
	row := r.db.QueryRowContext(ctx, `SELECT `+foodColumns+` FROM foods WHERE id = ? AND source = ?`, id, string(source))
	food, err := scanFood(row)
	if err == sql.ErrNoRows {
		return domain.FoodItem{}, fmt.Errorf("food %s/%s: %w", source, id, domain.ErrNotFound)
	}
	if err != nil {
		return domain.FoodItem{}, err
	}
	return food, nil
}

// UpsertFood validates and stores a food, bumping the catalog version
func (r *Repository) UpsertFood(ctx context.Context, food domain.FoodItem) error {
	if food.Source == "" {
		food.Source = domain.SourceCatalog
	}
	if food.Source == domain.SourceRecipe {
		return domain.NewValidationError("source", "recipe profiles are derived and cannot be stored as foods")
	}
	if err := food.Validate(); err != nil {
		return err
	}

	now := time.Now().Unix()
	return database.WithTransaction(r.db, func(tx *sql.Tx) error {
		_, err := tx.ExecContext(ctx, `
			INSERT INTO foods (`+foodColumns+`, created_at, updated_at)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
			ON CONFLICT(id, source) DO UPDATE SET
				name = excluded.name,
				reference_weight_g = excluded.reference_weight_g,
				calories = excluded.calories,
				protein_g = excluded.protein_g,
				carbs_g = excluded.carbs_g,
				fat_g = excluded.fat_g,
				fiber_g = excluded.fiber_g,
				price = excluded.price,
				location = excluded.location,
				meal_type = excluded.meal_type,
				updated_at = excluded.updated_at
		`, food.ID, string(food.Source), food.Name, food.ReferenceWeightG,
			food.Calories, food.ProteinG, food.CarbsG, food.FatG, food.FiberG,
			food.Price, food.Location, food.MealType, now, now)
		if err != nil {
			return fmt.Errorf("failed to upsert food %s: %w", food.ID, err)
		}
		return bumpVersion(ctx, tx)
	})
}

// DeleteFood removes a food. Returns domain.ErrNotFound when nothing was deleted.
func (r *Repository) DeleteFood(ctx context.Context, id string, source domain.Source) error {
	if source == "" {
		source = domain.SourceCatalog
	}
	return database.WithTransaction(r.db, func(tx *sql.Tx) error {
		res, err := tx.ExecContext(ctx, `DELETE FROM foods WHERE id = ? AND source = ?`, id, string(source))
		if err != nil {
			return fmt.Errorf("failed to delete food %s: %w", id, err)
		}
		if n, _ := res.RowsAffected(); n == 0 {
			return fmt.Errorf("food %s/%s: %w", source, id, domain.ErrNotFound)
		}
		return bumpVersion(ctx, tx)
	})
}

// ListRecipes returns every recipe with its ingredients resolved.
// Recipes referencing a deleted ingredient are skipped with a warning.
// Implements domain.CatalogProvider.
func (r *Repository) ListRecipes(ctx context.Context) ([]domain.Recipe, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT id, name, servings FROM recipes ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("failed to list recipes: %w", err)
	}

	var recipes []domain.Recipe
	for rows.Next() {
		var rec domain.Recipe
		if err := rows.Scan(&rec.ID, &rec.Name, &rec.Servings); err != nil {
			rows.Close()
			return nil, fmt.Errorf("failed to scan recipe: %w", err)
		}
		recipes = append(recipes, rec)
	}
	if err := rows.Err(); err != nil {
		rows.Close()
		return nil, fmt.Errorf("error iterating recipes: %w", err)
	}
	rows.Close()

	out := recipes[:0]
	for _, rec := range recipes {
		items, err := r.recipeItems(ctx, rec.ID)
		if err != nil {
			r.log.Warn().Err(err).Str("recipe_id", rec.ID).Msg("Skipping recipe with unresolvable ingredients")
			continue
		}
		rec.Items = items
		out = append(out, rec)
	}
	return out, nil
}

// GetRecipe returns one recipe with its ingredients resolved
func (r *Repository) GetRecipe(ctx context.Context, id string) (domain.Recipe, error) {
	var rec domain.Recipe
	err := r.db.QueryRowContext(ctx, `SELECT id, name, servings FROM recipes WHERE id = ?`, id).
		Scan(&rec.ID, &rec.Name, &rec.Servings)
	if err == sql.ErrNoRows {
		return domain.Recipe{}, fmt.Errorf("recipe %s: %w", id, domain.ErrNotFound)
	}
	if err != nil {
		return domain.Recipe{}, fmt.Errorf("failed to get recipe %s: %w", id, err)
	}

	items, err := r.recipeItems(ctx, id)
	if err != nil {
		return domain.Recipe{}, err
	}
	rec.Items = items
	return rec, nil
}

func (r *Repository) recipeItems(ctx context.Context, recipeID string) ([]domain.RecipeItem, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT f.id, f.source, f.name, f.reference_weight_g, f.calories, f.protein_g, f.carbs_g,
		       f.fat_g, f.fiber_g, f.price, f.location, f.meal_type, ri.amount_g, ri.ingredient_id
		FROM recipe_items ri
		LEFT JOIN foods f ON f.id = ri.ingredient_id AND f.source = ri.ingredient_source
		WHERE ri.recipe_id = ?
		ORDER BY ri.position
	`, recipeID)
	if err != nil {
		return nil, fmt.Errorf("failed to load recipe items for %s: %w", recipeID, err)
	}
	defer rows.Close()

	var items []domain.RecipeItem
	for rows.Next() {
		var id, source, name, location, mealType sql.NullString
		var refWeight, cal, protein, carbs, fat, fiber, price sql.NullFloat64
		var amount float64
		var ingredientID string
		if err := rows.Scan(&id, &source, &name, &refWeight, &cal, &protein, &carbs, &fat, &fiber,
			&price, &location, &mealType, &amount, &ingredientID); err != nil {
			return nil, fmt.Errorf("failed to scan recipe item: %w", err)
		}
		if !id.Valid {
			return nil, fmt.Errorf("ingredient %s: %w", ingredientID, domain.ErrNotFound)
		}
		items = append(items, domain.RecipeItem{
			Ingredient: domain.FoodItem{
				ID:               id.String,
				Source:           domain.Source(source.String),
				Name:             name.String,
				ReferenceWeightG: refWeight.Float64,
				Calories:         cal.Float64,
				ProteinG:         protein.Float64,
				CarbsG:           carbs.Float64,
				FatG:             fat.Float64,
				FiberG:           fiber.Float64,
				Price:            price.Float64,
				Location:         location.String,
				MealType:         mealType.String,
			},
			AmountG: amount,
		})
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating recipe items: %w", err)
	}
	return items, nil
}

// SaveRecipe replaces a recipe and its ingredient list, bumping the catalog version.
// Every ingredient must exist and must not itself be a recipe.
func (r *Repository) SaveRecipe(ctx context.Context, in RecipeInput) error {
	if in.ID == "" {
		return domain.NewValidationError("id", "recipe id is required")
	}
	if in.Name == "" {
		return domain.NewValidationError("name", "recipe name is required")
	}
	if in.Servings <= 0 {
		return domain.NewValidationError("servings", fmt.Sprintf("must be positive, got %d", in.Servings))
	}
	if len(in.Items) == 0 {
		return domain.NewValidationError("items", "a recipe needs at least one ingredient")
	}

	now := time.Now().Unix()
	return database.WithTransaction(r.db, func(tx *sql.Tx) error {
		for i, item := range in.Items {
			src := item.Source
			if src == "" {
				src = domain.SourceCatalog
			}
			if src == domain.SourceRecipe {
				return domain.NewValidationError("items", "recipes cannot contain other recipes")
			}
			if !(item.AmountG > 0) {
				return &domain.InvalidServingError{FoodID: item.IngredientID, WeightG: item.AmountG}
			}
			var exists int
			err := tx.QueryRowContext(ctx, `SELECT COUNT(*) FROM foods WHERE id = ? AND source = ?`,
				item.IngredientID, string(src)).Scan(&exists)
			if err != nil {
				return fmt.Errorf("failed to check ingredient %s: %w", item.IngredientID, err)
			}
			if exists == 0 {
				return domain.NewValidationError("items", fmt.Sprintf("ingredient %d (%s) is not in the catalog", i, item.IngredientID))
			}
		}

		_, err := tx.ExecContext(ctx, `
			INSERT INTO recipes (id, name, servings, created_at, updated_at)
			VALUES (?, ?, ?, ?, ?)
			ON CONFLICT(id) DO UPDATE SET
				name = excluded.name,
				servings = excluded.servings,
				updated_at = excluded.updated_at
		`, in.ID, in.Name, in.Servings, now, now)
		if err != nil {
			return fmt.Errorf("failed to save recipe %s: %w", in.ID, err)
		}

		if _, err := tx.ExecContext(ctx, `DELETE FROM recipe_items WHERE recipe_id = ?`, in.ID); err != nil {
			return fmt.Errorf("failed to clear recipe items: %w", err)
		}
		for i, item := range in.Items {
			src := item.Source
			if src == "" {
				src = domain.SourceCatalog
			}
			_, err := tx.ExecContext(ctx, `
				INSERT INTO recipe_items (recipe_id, position, ingredient_id, ingredient_source, amount_g)
				VALUES (?, ?, ?, ?, ?)
			`, in.ID, i, item.IngredientID, string(src), item.AmountG)
			if err != nil {
				return fmt.Errorf("failed to insert recipe item: %w", err)
			}
		}
		return bumpVersion(ctx, tx)
	})
}

// DeleteRecipe removes a recipe and its items
func (r *Repository) DeleteRecipe(ctx context.Context, id string) error {
	return database.WithTransaction(r.db, func(tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx, `DELETE FROM recipe_items WHERE recipe_id = ?`, id); err != nil {
			return fmt.Errorf("failed to delete recipe items: %w", err)
		}
		res, err := tx.ExecContext(ctx, `DELETE FROM recipes WHERE id = ?`, id)
		if err != nil {
			return fmt.Errorf("failed to delete recipe %s: %w", id, err)
		}
		if n, _ := res.RowsAffected(); n == 0 {
			return fmt.Errorf("recipe %s: %w", id, domain.ErrNotFound)
		}
		return bumpVersion(ctx, tx)
	})
}

// Version returns the current catalog version
func (r *Repository) Version(ctx context.Context) (int64, error) {
	var v int64
	err := r.db.QueryRowContext(ctx, `SELECT value FROM catalog_meta WHERE key = 'version'`).Scan(&v)
	if err != nil {
		return 0, fmt.Errorf("failed to read catalog version: %w", err)
	}
	return v, nil
}

// SubmitPrice queues a price for review
func (r *Repository) SubmitPrice(ctx context.Context, sub PriceSubmission, flag string) (PriceReview, error) {
	now := time.Now()
	res, err := r.db.ExecContext(ctx, `
		INSERT INTO price_reviews (food_id, price, vendor, flag, status, submitted_at)
		VALUES (?, ?, ?, ?, 'pending', ?)
	`, sub.FoodID, sub.Price, sub.Vendor, flag, now.Unix())
	if err != nil {
		return PriceReview{}, fmt.Errorf("failed to submit price for %s: %w", sub.FoodID, err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return PriceReview{}, fmt.Errorf("failed to read review id: %w", err)
	}
	return r.GetReview(ctx, id)
}

// GetReview returns one price review with the food's current price
func (r *Repository) GetReview(ctx context.Context, id int64) (PriceReview, error) {
	row := r.db.QueryRowContext(ctx, reviewQuery+` WHERE pr.id = ?`, id)
	review, err := scanReview(row)
	if err == sql.ErrNoRows {
		return PriceReview{}, fmt.Errorf("price review %d: %w", id, domain.ErrNotFound)
	}
	return review, err
}

// ListReviews returns reviews with the given status, oldest first
func (r *Repository) ListReviews(ctx context.Context, status ReviewStatus) ([]PriceReview, error) {
	rows, err := r.db.QueryContext(ctx, reviewQuery+` WHERE pr.status = ? ORDER BY pr.submitted_at, pr.id`, string(status))
	if err != nil {
		return nil, fmt.Errorf("failed to list price reviews: %w", err)
	}
	defer rows.Close()

	var reviews []PriceReview
	for rows.Next() {
		review, err := scanReview(rows)
		if err != nil {
			return nil, err
		}
		reviews = append(reviews, review)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating price reviews: %w", err)
	}
	return reviews, nil
}

// ResolveReview approves or rejects a pending review.
// Approval writes the price to the catalog food and bumps the version in the same transaction.
func (r *Repository) ResolveReview(ctx context.Context, id int64, approve bool) (PriceReview, error) {
	status := ReviewRejected
	if approve {
		status = ReviewApproved
	}

	err := database.WithTransaction(r.db, func(tx *sql.Tx) error {
		var foodID, current string
		var price float64
		err := tx.QueryRowContext(ctx, `SELECT food_id, price, status FROM price_reviews WHERE id = ?`, id).
			Scan(&foodID, &price, &current)
		if err == sql.ErrNoRows {
			return fmt.Errorf("price review %d: %w", id, domain.ErrNotFound)
		}
		if err != nil {
			return fmt.Errorf("failed to load price review %d: %w", id, err)
		}
		if ReviewStatus(current) != ReviewPending {
			return domain.NewValidationError("status", fmt.Sprintf("review %d is already %s", id, current))
		}

		if _, err := tx.ExecContext(ctx, `UPDATE price_reviews SET status = ?, reviewed_at = ? WHERE id = ?`,
			string(status), time.Now().Unix(), id); err != nil {
			return fmt.Errorf("failed to update price review %d: %w", id, err)
		}
		if !approve {
			return nil
		}

		res, err := tx.ExecContext(ctx, `UPDATE foods SET price = ?, updated_at = ? WHERE id = ? AND source = 'catalog'`,
			price, time.Now().Unix(), foodID)
		if err != nil {
			return fmt.Errorf("failed to apply price to %s: %w", foodID, err)
		}
		if n, _ := res.RowsAffected(); n == 0 {
			return fmt.Errorf("food %s: %w", foodID, domain.ErrNotFound)
		}
		return bumpVersion(ctx, tx)
	})
	if err != nil {
		return PriceReview{}, err
	}
	return r.GetReview(ctx, id)
}

const reviewQuery = `
	SELECT pr.id, pr.food_id, pr.price, pr.vendor, pr.flag, pr.status, pr.submitted_at, pr.reviewed_at,
	       COALESCE(f.price, 0)
	FROM price_reviews pr
	LEFT JOIN foods f ON f.id = pr.food_id AND f.source = 'catalog'`

func bumpVersion(ctx context.Context, tx *sql.Tx) error {
	if _, err := tx.ExecContext(ctx, `UPDATE catalog_meta SET value = value + 1 WHERE key = 'version'`); err != nil {
		return fmt.Errorf("failed to bump catalog version: %w", err)
	}
	return nil
}

type scanner interface {
	Scan(dest ...interface{}) error
}

func scanFood(s scanner) (domain.FoodItem, error) {
	var f domain.FoodItem
	var source string
	err := s.Scan(&f.ID, &source, &f.Name, &f.ReferenceWeightG, &f.Calories, &f.ProteinG,
		&f.CarbsG, &f.FatG, &f.FiberG, &f.Price, &f.Location, &f.MealType)
	if err == sql.ErrNoRows {
		return f, err
	}
	if err != nil {
		return f, fmt.Errorf("failed to scan food: %w", err)
	}
	f.Source = domain.Source(source)
	return f, nil
}

func scanReview(s scanner) (PriceReview, error) {
	var (
		pr          PriceReview
		status      string
		submittedAt int64
		reviewedAt  sql.NullInt64
	)
	err := s.Scan(&pr.ID, &pr.FoodID, &pr.Price, &pr.Vendor, &pr.Flag, &status, &submittedAt, &reviewedAt, &pr.CurrentPrice)
	if err == sql.ErrNoRows {
		return pr, err
	}
	if err != nil {
		return pr, fmt.Errorf("failed to scan price review: %w", err)
	}
	pr.Status = ReviewStatus(status)
	pr.SubmittedAt = time.Unix(submittedAt, 0).UTC()
	if reviewedAt.Valid {
		t := time.Unix(reviewedAt.Int64, 0).UTC()
		pr.ReviewedAt = &t
	}
	return pr, nil
}
