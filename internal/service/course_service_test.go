package service

import (
	"context"
	"testing"

	"github.com/jackc/pgx/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nexis/campus-services/internal/domain"
	"github.com/nexis/campus-services/internal/events"
	apperrors "github.com/nexis/campus-services/pkg/util"
)

type fakeCourseRepo struct {
	courses map[int64]*domain.Course
	nextID  int64
}

func newFakeCourseRepo() *fakeCourseRepo {
	return &fakeCourseRepo{courses: map[int64]*domain.Course{}, nextID: 1}
}

func (r *fakeCourseRepo) Create(_ context.Context, course *domain.Course) error {
	course.ID = r.nextID
	r.nextID++
	copied := *course
	r.courses[course.ID] = &copied
	return nil
}

func (r *fakeCourseRepo) Update(_ context.Context, course *domain.Course) error {
	if _, ok := r.courses[course.ID]; !ok {
		return pgx.ErrNoRows
	}
	copied := *course
	r.courses[course.ID] = &copied
	return nil
}

func (r *fakeCourseRepo) Delete(_ context.Context, id int64) error {
	if _, ok := r.courses[id]; !ok {
		return pgx.ErrNoRows
	}
	delete(r.courses, id)
	return nil
}

func (r *fakeCourseRepo) GetByID(_ context.Context, id int64) (*domain.Course, error) {
	course, ok := r.courses[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	copied := *course
	return &copied, nil
}

func (r *fakeCourseRepo) List(_ context.Context) ([]*domain.Course, error) {
	var out []*domain.Course
	for _, c := range r.courses {
		copied := *c
		out = append(out, &copied)
	}
	return out, nil
}

func (r *fakeCourseRepo) ListBySemester(_ context.Context, semester string) ([]*domain.Course, error) {
	var out []*domain.Course
	for _, c := range r.courses {
		if c.Semester == semester {
			copied := *c
			out = append(out, &copied)
		}
	}
	return out, nil
}

func (r *fakeCourseRepo) ListByInstructor(_ context.Context, instructorID int64) ([]*domain.Course, error) {
	var out []*domain.Course
	for _, c := range r.courses {
		if c.InstructorID == instructorID {
			copied := *c
			out = append(out, &copied)
		}
	}
	return out, nil
}

type enrollmentKey struct {
	courseID  int64
	studentID int64
}

type fakeEnrollmentRepo struct {
	enrollments map[enrollmentKey]struct{}
	courses     *fakeCourseRepo
	nextID      int64
}

func newFakeEnrollmentRepo(courses *fakeCourseRepo) *fakeEnrollmentRepo {
	return &fakeEnrollmentRepo{enrollments: map[enrollmentKey]struct{}{}, courses: courses, nextID: 1}
}

func (r *fakeEnrollmentRepo) Create(_ context.Context, enrollment *domain.Enrollment) error {
	enrollment.ID = r.nextID
	r.nextID++
	r.enrollments[enrollmentKey{enrollment.CourseID, enrollment.StudentID}] = struct{}{}
	if course, ok := r.courses.courses[enrollment.CourseID]; ok {
		course.EnrolledCount++
	}
	return nil
}

func (r *fakeEnrollmentRepo) Delete(_ context.Context, courseID, studentID int64) error {
	key := enrollmentKey{courseID, studentID}
	if _, ok := r.enrollments[key]; !ok {
		return pgx.ErrNoRows
	}
	delete(r.enrollments, key)
	if course, ok := r.courses.courses[courseID]; ok {
		course.EnrolledCount--
	}
	return nil
}

func (r *fakeEnrollmentRepo) Exists(_ context.Context, courseID, studentID int64) (bool, error) {
	_, ok := r.enrollments[enrollmentKey{courseID, studentID}]
	return ok, nil
}

func (r *fakeEnrollmentRepo) ListStudentIDs(_ context.Context, courseID int64) ([]int64, error) {
	var ids []int64
	for key := range r.enrollments {
		if key.courseID == courseID {
			ids = append(ids, key.studentID)
		}
	}
	return ids, nil
}

type fakeScheduleRepo struct {
	schedules []*domain.Schedule
	nextID    int64
}

func (r *fakeScheduleRepo) Create(_ context.Context, schedule *domain.Schedule) error {
	r.nextID++
	schedule.ID = r.nextID
	copied := *schedule
	r.schedules = append(r.schedules, &copied)
	return nil
}

func (r *fakeScheduleRepo) ListByCourse(_ context.Context, courseID int64) ([]*domain.Schedule, error) {
	var out []*domain.Schedule
	for _, s := range r.schedules {
		if s.CourseID == courseID {
			copied := *s
			out = append(out, &copied)
		}
	}
	return out, nil
}

func newCourseFixture(t *testing.T) (*CourseService, *fakeCourseRepo, *fakeEnrollmentRepo) {
	t.Helper()
	courses := newFakeCourseRepo()
	enrollments := newFakeEnrollmentRepo(courses)
	svc := NewCourseService(courses, &fakeScheduleRepo{}, enrollments, events.NewInMemoryDispatcher(nil))
	return svc, courses, enrollments
}

func TestAddCourseValidation(t *testing.T) {
	svc, _, _ := newCourseFixture(t)

	_, err := svc.AddCourse(context.Background(), &domain.Course{Title: "Databases"})
	require.Error(t, err)
	var domainErr *apperrors.DomainError
	require.ErrorAs(t, err, &domainErr)
	assert.Equal(t, 400, domainErr.HTTPStatus)

	_, err = svc.AddCourse(context.Background(), &domain.Course{Code: "CS301", Title: "Databases"})
	require.Error(t, err)

	course, err := svc.AddCourse(context.Background(), &domain.Course{
		Code:        "CS301",
		Title:       "Databases",
		MaxStudents: 30,
	})
	require.NoError(t, err)
	assert.Equal(t, domain.CourseStatusActive, course.Status)
	assert.NotZero(t, course.ID)
}

func TestEnrollStudentHappyPath(t *testing.T) {
	svc, _, _ := newCourseFixture(t)

	course, err := svc.AddCourse(context.Background(), &domain.Course{
		Code:        "CS101",
		Title:       "Intro",
		MaxStudents: 2,
	})
	require.NoError(t, err)

	ok, err := svc.EnrollStudent(context.Background(), course.ID, 7)
	require.NoError(t, err)
	assert.True(t, ok)

	enrolled, err := svc.IsStudentEnrolled(context.Background(), course.ID, 7)
	require.NoError(t, err)
	assert.True(t, enrolled)
}

func TestEnrollStudentDuplicateReturnsFalse(t *testing.T) {
	svc, _, _ := newCourseFixture(t)

	course, err := svc.AddCourse(context.Background(), &domain.Course{
		Code:        "CS101",
		Title:       "Intro",
		MaxStudents: 10,
	})
	require.NoError(t, err)

	ok, err := svc.EnrollStudent(context.Background(), course.ID, 7)
	require.NoError(t, err)
	require.True(t, ok)

	ok, err = svc.EnrollStudent(context.Background(), course.ID, 7)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestEnrollStudentFullCourseReturnsFalse(t *testing.T) {
	svc, _, _ := newCourseFixture(t)

	course, err := svc.AddCourse(context.Background(), &domain.Course{
		Code:        "CS101",
		Title:       "Intro",
		MaxStudents: 1,
	})
	require.NoError(t, err)

	ok, err := svc.EnrollStudent(context.Background(), course.ID, 1)
	require.NoError(t, err)
	require.True(t, ok)

	ok, err = svc.EnrollStudent(context.Background(), course.ID, 2)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestRemoveStudent(t *testing.T) {
	svc, _, _ := newCourseFixture(t)

	course, err := svc.AddCourse(context.Background(), &domain.Course{
		Code:        "CS101",
		Title:       "Intro",
		MaxStudents: 5,
	})
	require.NoError(t, err)

	ok, err := svc.RemoveStudent(context.Background(), course.ID, 99)
	require.NoError(t, err)
	assert.False(t, ok, "removing a student who is not enrolled reports false")

	_, err = svc.EnrollStudent(context.Background(), course.ID, 99)
	require.NoError(t, err)

	ok, err = svc.RemoveStudent(context.Background(), course.ID, 99)
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestUpdateCoursePartial(t *testing.T) {
	svc, _, _ := newCourseFixture(t)

	course, err := svc.AddCourse(context.Background(), &domain.Course{
		Code:        "CS201",
		Title:       "Algorithms",
		Semester:    "2026-FALL",
		MaxStudents: 40,
	})
	require.NoError(t, err)

	updated, err := svc.UpdateCourse(context.Background(), course.ID, &domain.Course{Title: "Advanced Algorithms"})
	require.NoError(t, err)
	assert.Equal(t, "Advanced Algorithms", updated.Title)
	assert.Equal(t, "2026-FALL", updated.Semester)
	assert.Equal(t, 40, updated.MaxStudents)
}

func TestAddScheduleRequiresCourse(t *testing.T) {
	svc, _, _ := newCourseFixture(t)

	_, err := svc.AddSchedule(context.Background(), &domain.Schedule{
		CourseID:  42,
		DayOfWeek: "MONDAY",
		StartTime: "09:00",
		EndTime:   "10:30",
	})
	require.Error(t, err)
}
