package repository

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"goaltrack/api/internal/models"
)

var ErrGoalNotFound = errors.New("goal not found")

type GoalRepository struct {
	pool *pgxpool.Pool
}

func NewGoalRepository(pool *pgxpool.Pool) *GoalRepository {
	return &GoalRepository{pool: pool}
}

func (r *GoalRepository) Create(ctx context.Context, goal models.Goal) error {
	const query = `
		INSERT INTO goals (id, user_id, text, created_at, updated_at)
		VALUES ($1, $2, $3, NOW(), NOW())
	`
	_, err := r.pool.Exec(ctx, query, goal.ID, goal.UserID, goal.Text)
	return err
}

func (r *GoalRepository) GetByID(ctx context.Context, id string) (models.Goal, error) {
	const query = `
		SELECT id, user_id, text, created_at, updated_at FROM goals WHERE id = $1
	`

	row := r.pool.QueryRow(ctx, query, id)
	var goal models.Goal
	if err := row.Scan(&goal.ID, &goal.UserID, &goal.Text, &goal.CreatedAt, &goal.UpdatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return models.Goal{}, ErrGoalNotFound
		}
		return models.Goal{}, err
	}
	return goal, nil
}

func (r *GoalRepository) ListByUser(ctx context.Context, userID string) ([]models.Goal, error) {
	const query = `
		SELECT id, user_id, text, created_at, updated_at
		FROM goals WHERE user_id = $1 ORDER BY created_at
	`

	rows, err := r.pool.Query(ctx, query, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	goals := make([]models.Goal, 0)
	for rows.Next() {
		var goal models.Goal
		if err := rows.Scan(&goal.ID, &goal.UserID, &goal.Text, &goal.CreatedAt, &goal.UpdatedAt); err != nil {
			return nil, err
		}
		goals = append(goals, goal)
	}
	return goals, rows.Err()
}

func (r *GoalRepository) UpdateText(ctx context.Context, id string, text string) (models.Goal, error) {
	const query = `
		UPDATE goals SET text = $2, updated_at = NOW() WHERE id = $1
		RETURNING id, user_id, text, created_at, updated_at
	`

	row := r.pool.QueryRow(ctx, query, id, text)
	var goal models.Goal
	if err := row.Scan(&goal.ID, &goal.UserID, &goal.Text, &goal.CreatedAt, &goal.UpdatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return models.Goal{}, ErrGoalNotFound
		}
		return models.Goal{}, err
	}
	return goal, nil
}

func (r *GoalRepository) Delete(ctx context.Context, id string) error {
	const query = `DELETE FROM goals WHERE id = $1`
	cmd, err := r.pool.Exec(ctx, query, id)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return ErrGoalNotFound
	}
	return nil
}
