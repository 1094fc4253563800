package planning

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/aristath/nutriplan/internal/domain"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/vmihailenco/msgpack/v5"
)

// PlanRepository keeps generated plans
// Database: cache.db (plans table)
type PlanRepository struct {
	db  *sql.DB
	log zerolog.Logger
}

// NewPlanRepository creates a new plan repository
func NewPlanRepository(db *sql.DB, log zerolog.Logger) *PlanRepository {
	return &PlanRepository{
		db:  db,
		log: log.With().Str("repository", "plan").Logger(),
	}
}

// Create stores a new pending plan that expires after ttl
func (r *PlanRepository) Create(ctx context.Context, req domain.PlanRequest, result domain.PlanResult, ttl time.Duration) (StoredPlan, error) {
	data, err := msgpack.Marshal(result)
	if err != nil {
		return StoredPlan{}, fmt.Errorf("failed to encode plan: %w", err)
	}

	now := time.Now().UTC()
	plan := StoredPlan{
		ID:        uuid.New().String(),
		Status:    PlanPending,
		Request:   req,
		Result:    result,
		CreatedAt: now,
		UpdatedAt: now,
		ExpiresAt: now.Add(ttl),
	}
	// The strategy is kept only in the encoded result
	plan.Request.Strategy = result.Strategy

	_, err = r.db.ExecContext(ctx, `
		INSERT INTO plans
		(id, status, target_calories, budget, meal_count, include_custom,
		 total_calories, total_price, data, created_at, updated_at, expires_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`,
		plan.ID,
		string(plan.Status),
		req.TargetCalories,
		req.Budget,
		req.MealCount,
		boolToInt(req.IncludeCustom),
		result.TotalCalories,
		result.TotalPrice,
		data,
		now.UnixNano(),
		now.UnixNano(),
		plan.ExpiresAt.Unix(),
	)
	if err != nil {
		return StoredPlan{}, fmt.Errorf("failed to store plan: %w", err)
	}

	r.log.Debug().Str("plan_id", plan.ID).Int("meals", len(result.Selections)).Msg("Stored plan")
	return plan, nil
}

// Get returns a plan by id
func (r *PlanRepository) Get(ctx context.Context, id string) (StoredPlan, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT id, status, target_calories, budget, meal_count, include_custom,
		       data, created_at, updated_at, applied_date, expires_at
		FROM plans WHERE id = ?
	`, id)
	plan, err := scanPlan(row)
	if err == sql.ErrNoRows {
		return StoredPlan{}, fmt.Errorf("plan %s: %w", id, domain.ErrNotFound)
	}
	if err != nil {
		return StoredPlan{}, fmt.Errorf("failed to get plan %s: %w", id, err)
	}
	return plan, nil
}

// List returns plans newest first. An empty status returns every status.
func (r *PlanRepository) List(ctx context.Context, status PlanStatus, limit int) ([]StoredPlan, error) {
	query := `
		SELECT id, status, target_calories, budget, meal_count, include_custom,
		       data, created_at, updated_at, applied_date, expires_at
		FROM plans`
	args := []interface{}{}
	if status != "" {
		query += ` WHERE status = ?`
		args = append(args, string(status))
	}
	query += ` ORDER BY created_at DESC`
	if limit > 0 {
		query += ` LIMIT ?`
		args = append(args, limit)
	}

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list plans: %w", err)
	}
	defer rows.Close()

	plans := []StoredPlan{}
	for rows.Next() {
		plan, err := scanPlan(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan plan: %w", err)
		}
		plans = append(plans, plan)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate plans: %w", err)
	}
	return plans, nil
}

// Transition moves a pending, unexpired plan to status.
// Plans in any other state are left untouched and reported as a validation error.
func (r *PlanRepository) Transition(ctx context.Context, id string, status PlanStatus, appliedDate string) error {
	now := time.Now().UTC()

	var applied interface{}
	if appliedDate != "" {
		applied = appliedDate
	}

	result, err := r.db.ExecContext(ctx, `
		UPDATE plans
		SET status = ?, updated_at = ?, applied_date = ?
		WHERE id = ? AND status = 'pending' AND expires_at > ?
	`, string(status), now.UnixNano(), applied, id, now.Unix())
	if err != nil {
		return fmt.Errorf("failed to update plan %s: %w", id, err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to update plan %s: %w", id, err)
	}
	if affected > 0 {
		return nil
	}

	plan, err := r.Get(ctx, id)
	if err != nil {
		return err
	}
	if plan.Status == PlanPending {
		return domain.NewValidationError("plan", "plan has expired")
	}
	return domain.NewValidationError("plan", fmt.Sprintf("plan is already %s", plan.Status))
}

// Reopen moves an applied plan back to pending and clears its applied date
func (r *PlanRepository) Reopen(ctx context.Context, id string) error {
	result, err := r.db.ExecContext(ctx, `
		UPDATE plans SET status = 'pending', applied_date = NULL, updated_at = ?
		WHERE id = ? AND status = 'applied'
	`, time.Now().UTC().UnixNano(), id)
	if err != nil {
		return fmt.Errorf("failed to reopen plan %s: %w", id, err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to reopen plan %s: %w", id, err)
	}
	if affected == 0 {
		return fmt.Errorf("plan %s is not applied: %w", id, domain.ErrNotFound)
	}
	return nil
}

// ExpirePending marks pending plans past their expiry as expired
func (r *PlanRepository) ExpirePending(ctx context.Context) (int64, error) {
	now := time.Now().UTC()
	result, err := r.db.ExecContext(ctx, `
		UPDATE plans SET status = 'expired', updated_at = ?
		WHERE status = 'pending' AND expires_at <= ?
	`, now.UnixNano(), now.Unix())
	if err != nil {
		return 0, fmt.Errorf("failed to expire plans: %w", err)
	}
	return result.RowsAffected()
}

// DeleteOlderThan deletes plans created more than maxAge ago, whatever their status
func (r *PlanRepository) DeleteOlderThan(ctx context.Context, maxAge time.Duration) (int64, error) {
	cutoff := time.Now().Add(-maxAge).UnixNano()
	result, err := r.db.ExecContext(ctx, `DELETE FROM plans WHERE created_at < ?`, cutoff)
	if err != nil {
		return 0, fmt.Errorf("failed to delete old plans: %w", err)
	}

	deleted, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to get rows affected: %w", err)
	}
	if deleted > 0 {
		r.log.Info().Int64("deleted", deleted).Dur("max_age", maxAge).Msg("Deleted old plans")
	}
	return deleted, nil
}

type scanner interface {
	Scan(dest ...interface{}) error
}

func scanPlan(row scanner) (StoredPlan, error) {
	var (
		plan          StoredPlan
		status        string
		includeCustom int
		data          []byte
		createdAt     int64
		updatedAt     int64
		appliedDate   sql.NullString
		expiresAt     int64
	)

	err := row.Scan(
		&plan.ID,
		&status,
		&plan.Request.TargetCalories,
		&plan.Request.Budget,
		&plan.Request.MealCount,
		&includeCustom,
		&data,
		&createdAt,
		&updatedAt,
		&appliedDate,
		&expiresAt,
	)
	if err != nil {
		return StoredPlan{}, err
	}

	if err := msgpack.Unmarshal(data, &plan.Result); err != nil {
		return StoredPlan{}, fmt.Errorf("failed to decode plan %s: %w", plan.ID, err)
	}

	plan.Status = PlanStatus(status)
	plan.Request.IncludeCustom = includeCustom != 0
	plan.Request.Strategy = plan.Result.Strategy
	plan.CreatedAt = time.Unix(0, createdAt).UTC()
	plan.UpdatedAt = time.Unix(0, updatedAt).UTC()
	plan.ExpiresAt = time.Unix(expiresAt, 0).UTC()
	if appliedDate.Valid {
		plan.AppliedDate = appliedDate.String
	}
	return plan, nil
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
