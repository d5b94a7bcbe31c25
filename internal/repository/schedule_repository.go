package repository

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/nexis/campus-services/internal/domain"
)

// ScheduleRepository defines persistence access for course schedules.
type ScheduleRepository interface {
	Create(ctx context.Context, schedule *domain.Schedule) error
	ListByCourse(ctx context.Context, courseID int64) ([]*domain.Schedule, error)
}

type scheduleRepository struct {
	pool *pgxpool.Pool
}

// NewScheduleRepository returns a Postgres-backed implementation.
func NewScheduleRepository(pool *pgxpool.Pool) ScheduleRepository {
	return &scheduleRepository{pool: pool}
}

func (r *scheduleRepository) Create(ctx context.Context, schedule *domain.Schedule) error {
	const query = `
        INSERT INTO schedules (course_id, day_of_week, start_time, end_time,
            room, building, capacity, status)
        VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
        RETURNING id, created_at, updated_at`

	return r.pool.QueryRow(ctx, query,
		schedule.CourseID,
		schedule.DayOfWeek,
		schedule.StartTime,
		schedule.EndTime,
		schedule.Room,
		schedule.Building,
		schedule.Capacity,
		schedule.Status,
	).Scan(&schedule.ID, &schedule.CreatedAt, &schedule.UpdatedAt)
}

func (r *scheduleRepository) ListByCourse(ctx context.Context, courseID int64) ([]*domain.Schedule, error) {
	const query = `
        SELECT id, course_id, day_of_week, start_time, end_time, room, building,
            capacity, status, created_at, updated_at
        FROM schedules WHERE course_id=$1 ORDER BY id`

	rows, err := r.pool.Query(ctx, query, courseID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var schedules []*domain.Schedule
	for rows.Next() {
		var s domain.Schedule
		if err := rows.Scan(
			&s.ID,
			&s.CourseID,
			&s.DayOfWeek,
			&s.StartTime,
			&s.EndTime,
			&s.Room,
			&s.Building,
			&s.Capacity,
			&s.Status,
			&s.CreatedAt,
			&s.UpdatedAt,
		); err != nil {
			return nil, err
		}
		schedules = append(schedules, &s)
	}
	return schedules, rows.Err()
}
