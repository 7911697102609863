package postgres

import (
	"context"
	"database/sql"
	"time"

	"calories/internal/domain"
)

const mealColumns = "id, user_id, name, calories, protein_g, fat_g, carbs_g, created_at"

// AddMeal inserts a meal event.
func (d *DB) AddMeal(ctx context.Context, m domain.MealEntry) (int64, error) {
	var id int64
	err := d.sql.QueryRowContext(ctx,
		"INSERT INTO meal_events(user_id, name, calories, protein_g, fat_g, carbs_g, created_at) VALUES($1, $2, $3, $4, $5, $6, $7) RETURNING id;",
		m.UserID, m.Name, m.Calories, m.ProteinG, m.FatG, m.CarbsG, m.CreatedAt.UTC(),
	).Scan(&id)
	return id, err
}

// DeleteMeal removes a meal by ID, scoped to a user.
func (d *DB) DeleteMeal(ctx context.Context, userID, id int64) error {
	_, err := d.sql.ExecContext(ctx, "DELETE FROM meal_events WHERE id=$1 AND user_id=$2;", id, userID)
	return err
}

// ListRecentMeals returns the most recent meals up to limit for a user.
func (d *DB) ListRecentMeals(ctx context.Context, userID int64, limit int) ([]domain.MealEntry, error) {
	rows, err := d.sql.QueryContext(ctx,
		"SELECT "+mealColumns+" FROM meal_events WHERE user_id=$1 ORDER BY created_at DESC, id DESC LIMIT $2;", userID, limit)
	if err != nil {
		return nil, err
	}
	return scanMeals(rows)
}

// ListMealsSince returns the user's meals logged at or after since, newest first.
func (d *DB) ListMealsSince(ctx context.Context, userID int64, since time.Time) ([]domain.MealEntry, error) {
	rows, err := d.sql.QueryContext(ctx,
		"SELECT "+mealColumns+" FROM meal_events WHERE user_id=$1 AND created_at >= $2 ORDER BY created_at DESC, id DESC;", userID, since.UTC())
	if err != nil {
		return nil, err
	}
	return scanMeals(rows)
}

func scanMeals(rows *sql.Rows) ([]domain.MealEntry, error) {
	defer rows.Close() //nolint:errcheck

	var out []domain.MealEntry
	for rows.Next() {
		var m domain.MealEntry
		if err := rows.Scan(&m.ID, &m.UserID, &m.Name, &m.Calories, &m.ProteinG, &m.FatG, &m.CarbsG, &m.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, m)
	}
	return out, rows.Err()
}

// MealTotalsForLocalDay sums a user's meals for a local calendar day.
func (d *DB) MealTotalsForLocalDay(ctx context.Context, userID int64, localDay string) (domain.MealTotals, error) {
	start, end, err := dayBounds(localDay)
	if err != nil {
		return domain.MealTotals{}, err
	}

	var t domain.MealTotals
	err = d.sql.QueryRowContext(ctx,
		`SELECT COALESCE(SUM(calories), 0), COALESCE(SUM(protein_g), 0), COALESCE(SUM(fat_g), 0),
			COALESCE(SUM(carbs_g), 0), COUNT(*)
		FROM meal_events WHERE user_id=$1 AND created_at >= $2 AND created_at < $3;`,
		userID, start, end,
	).Scan(&t.Calories, &t.ProteinG, &t.FatG, &t.CarbsG, &t.Count)
	return t, err
}
