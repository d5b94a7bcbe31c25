package repository

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/nexis/campus-services/internal/domain"
)

// CourseRepository defines persistence access for courses.
type CourseRepository interface {
	Create(ctx context.Context, course *domain.Course) error
	Update(ctx context.Context, course *domain.Course) error
	Delete(ctx context.Context, id int64) error
	GetByID(ctx context.Context, id int64) (*domain.Course, error)
	List(ctx context.Context) ([]*domain.Course, error)
	ListBySemester(ctx context.Context, semester string) ([]*domain.Course, error)
	ListByInstructor(ctx context.Context, instructorID int64) ([]*domain.Course, error)
}

type courseRepository struct {
	pool *pgxpool.Pool
}

// NewCourseRepository returns a Postgres-backed implementation.
func NewCourseRepository(pool *pgxpool.Pool) CourseRepository {
	return &courseRepository{pool: pool}
}

// enrolled_count is derived from the enrollments table on every read so the
// capacity check never works from a stale counter.
const courseSelect = `
        SELECT c.id, c.code, c.title, c.description, c.instructor_id, c.credits,
            c.semester, c.max_students,
            (SELECT COUNT(*) FROM enrollments e WHERE e.course_id = c.id) AS enrolled_count,
            c.status, c.created_at, c.updated_at
        FROM courses c`

func (r *courseRepository) Create(ctx context.Context, course *domain.Course) error {
	const query = `
        INSERT INTO courses (code, title, description, instructor_id, credits,
            semester, max_students, status)
        VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
        RETURNING id, created_at, updated_at`

	return r.pool.QueryRow(ctx, query,
		course.Code,
		course.Title,
		course.Description,
		course.InstructorID,
		course.Credits,
		course.Semester,
		course.MaxStudents,
		course.Status,
	).Scan(&course.ID, &course.CreatedAt, &course.UpdatedAt)
}

func (r *courseRepository) Update(ctx context.Context, course *domain.Course) error {
	const query = `
        UPDATE courses SET code=$1, title=$2, description=$3, instructor_id=$4,
            credits=$5, semester=$6, max_students=$7, status=$8, updated_at=NOW()
        WHERE id=$9`

	cmd, err := r.pool.Exec(ctx, query,
		course.Code,
		course.Title,
		course.Description,
		course.InstructorID,
		course.Credits,
		course.Semester,
		course.MaxStudents,
		course.Status,
		course.ID,
	)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func (r *courseRepository) Delete(ctx context.Context, id int64) error {
	cmd, err := r.pool.Exec(ctx, `DELETE FROM courses WHERE id=$1`, id)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func (r *courseRepository) GetByID(ctx context.Context, id int64) (*domain.Course, error) {
	return scanCourse(r.pool.QueryRow(ctx, courseSelect+` WHERE c.id=$1`, id))
}

func (r *courseRepository) List(ctx context.Context) ([]*domain.Course, error) {
	return r.list(ctx, courseSelect+` ORDER BY c.id`)
}

func (r *courseRepository) ListBySemester(ctx context.Context, semester string) ([]*domain.Course, error) {
	return r.list(ctx, courseSelect+` WHERE c.semester=$1 ORDER BY c.id`, semester)
}

func (r *courseRepository) ListByInstructor(ctx context.Context, instructorID int64) ([]*domain.Course, error) {
	return r.list(ctx, courseSelect+` WHERE c.instructor_id=$1 ORDER BY c.id`, instructorID)
}

func (r *courseRepository) list(ctx context.Context, query string, args ...any) ([]*domain.Course, error) {
	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var courses []*domain.Course
	for rows.Next() {
		course, err := scanCourse(rows)
		if err != nil {
			return nil, err
		}
		courses = append(courses, course)
	}
	return courses, rows.Err()
}

func scanCourse(row pgx.Row) (*domain.Course, error) {
	var course domain.Course
	if err := row.Scan(
		&course.ID,
		&course.Code,
		&course.Title,
		&course.Description,
		&course.InstructorID,
		&course.Credits,
		&course.Semester,
		&course.MaxStudents,
		&course.EnrolledCount,
		&course.Status,
		&course.CreatedAt,
		&course.UpdatedAt,
	); err != nil {
		return nil, err
	}
	return &course, nil
}
