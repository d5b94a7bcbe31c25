package repository

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/nexis/campus-services/internal/domain"
)

// EnrollmentRepository defines persistence access for course enrollments.
type EnrollmentRepository interface {
	Create(ctx context.Context, enrollment *domain.Enrollment) error
	Delete(ctx context.Context, courseID, studentID int64) error
	Exists(ctx context.Context, courseID, studentID int64) (bool, error)
	ListStudentIDs(ctx context.Context, courseID int64) ([]int64, error)
}

type enrollmentRepository struct {
	pool *pgxpool.Pool
}

// NewEnrollmentRepository returns a Postgres-backed implementation.
func NewEnrollmentRepository(pool *pgxpool.Pool) EnrollmentRepository {
	return &enrollmentRepository{pool: pool}
}

func (r *enrollmentRepository) Create(ctx context.Context, enrollment *domain.Enrollment) error {
	const query = `
        INSERT INTO enrollments (course_id, student_id)
        VALUES ($1, $2)
        RETURNING id, enrolled_at`

	return r.pool.QueryRow(ctx, query,
		enrollment.CourseID,
		enrollment.StudentID,
	).Scan(&enrollment.ID, &enrollment.EnrolledAt)
}

func (r *enrollmentRepository) Delete(ctx context.Context, courseID, studentID int64) error {
	cmd, err := r.pool.Exec(ctx,
		`DELETE FROM enrollments WHERE course_id=$1 AND student_id=$2`, courseID, studentID)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func (r *enrollmentRepository) Exists(ctx context.Context, courseID, studentID int64) (bool, error) {
	var exists bool
	err := r.pool.QueryRow(ctx,
		`SELECT EXISTS(SELECT 1 FROM enrollments WHERE course_id=$1 AND student_id=$2)`,
		courseID, studentID,
	).Scan(&exists)
	return exists, err
}

func (r *enrollmentRepository) ListStudentIDs(ctx context.Context, courseID int64) ([]int64, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT student_id FROM enrollments WHERE course_id=$1 ORDER BY enrolled_at`, courseID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var ids []int64
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}
