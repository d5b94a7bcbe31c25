package service

import (
	"context"
	"errors"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/nexis/campus-services/internal/domain"
	"github.com/nexis/campus-services/internal/events"
	"github.com/nexis/campus-services/internal/repository"
	apperrors "github.com/nexis/campus-services/pkg/util"
)

// CourseService coordinates course, schedule and enrollment operations.
type CourseService struct {
	courses     repository.CourseRepository
	schedules   repository.ScheduleRepository
	enrollments repository.EnrollmentRepository
	dispatcher  events.Dispatcher
}

// NewCourseService builds the service.
func NewCourseService(courses repository.CourseRepository, schedules repository.ScheduleRepository, enrollments repository.EnrollmentRepository, dispatcher events.Dispatcher) *CourseService {
	return &CourseService{
		courses:     courses,
		schedules:   schedules,
		enrollments: enrollments,
		dispatcher:  dispatcher,
	}
}

// AddCourse validates and persists a new course.
func (s *CourseService) AddCourse(ctx context.Context, course *domain.Course) (*domain.Course, error) {
	if course.Code == "" || course.Title == "" {
		return nil, apperrors.NewValidationError("code and title required", nil)
	}
	if course.MaxStudents <= 0 {
		return nil, apperrors.NewValidationError("maxStudents must be positive", nil)
	}
	if course.Status == "" {
		course.Status = domain.CourseStatusActive
	}
	if err := s.courses.Create(ctx, course); err != nil {
		return nil, err
	}
	return course, nil
}

// UpdateCourse applies non-zero fields of details onto the stored course.
func (s *CourseService) UpdateCourse(ctx context.Context, id int64, details *domain.Course) (*domain.Course, error) {
	course, err := s.courses.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if details.Title != "" {
		course.Title = details.Title
	}
	if details.Description != "" {
		course.Description = details.Description
	}
	if details.InstructorID > 0 {
		course.InstructorID = details.InstructorID
	}
	if details.Credits > 0 {
		course.Credits = details.Credits
	}
	if details.Semester != "" {
		course.Semester = details.Semester
	}
	if details.MaxStudents > 0 {
		course.MaxStudents = details.MaxStudents
	}
	if details.Status != "" {
		course.Status = details.Status
	}

	if err := s.courses.Update(ctx, course); err != nil {
		return nil, err
	}
	return course, nil
}

// DeleteCourse removes a course and, via cascade, its schedules and enrollments.
func (s *CourseService) DeleteCourse(ctx context.Context, id int64) error {
	return s.courses.Delete(ctx, id)
}

// GetCourseByID fetches a single course.
func (s *CourseService) GetCourseByID(ctx context.Context, id int64) (*domain.Course, error) {
	return s.courses.GetByID(ctx, id)
}

// ListAllCourses returns every course.
func (s *CourseService) ListAllCourses(ctx context.Context) ([]*domain.Course, error) {
	return s.courses.List(ctx)
}

// CoursesBySemester returns courses for one semester.
func (s *CourseService) CoursesBySemester(ctx context.Context, semester string) ([]*domain.Course, error) {
	return s.courses.ListBySemester(ctx, semester)
}

// CoursesByInstructor returns courses taught by one instructor.
func (s *CourseService) CoursesByInstructor(ctx context.Context, instructorID int64) ([]*domain.Course, error) {
	return s.courses.ListByInstructor(ctx, instructorID)
}

// EnrollStudent enrolls a student when the course has space and the student
// is not already enrolled. Returns false (without error) when either rule
// blocks the enrollment.
func (s *CourseService) EnrollStudent(ctx context.Context, courseID, studentID int64) (bool, error) {
	course, err := s.courses.GetByID(ctx, courseID)
	if err != nil {
		return false, err
	}
	if !course.HasAvailableSpace() {
		return false, nil
	}

	enrolled, err := s.enrollments.Exists(ctx, courseID, studentID)
	if err != nil {
		return false, err
	}
	if enrolled {
		return false, nil
	}

	if err := s.enrollments.Create(ctx, &domain.Enrollment{CourseID: courseID, StudentID: studentID}); err != nil {
		return false, err
	}

	s.publish(ctx, events.EventStudentEnrolled, course.Code, events.EnrollmentPayload{
		CourseID:  courseID,
		StudentID: studentID,
	})
	return true, nil
}

// RemoveStudent drops a student from a course. Returns false when the
// student was not enrolled.
func (s *CourseService) RemoveStudent(ctx context.Context, courseID, studentID int64) (bool, error) {
	if err := s.enrollments.Delete(ctx, courseID, studentID); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return false, nil
		}
		return false, err
	}

	s.publish(ctx, events.EventStudentRemoved, strconv.FormatInt(courseID, 10), events.EnrollmentPayload{
		CourseID:  courseID,
		StudentID: studentID,
	})
	return true, nil
}

// IsStudentEnrolled reports enrollment status.
func (s *CourseService) IsStudentEnrolled(ctx context.Context, courseID, studentID int64) (bool, error) {
	return s.enrollments.Exists(ctx, courseID, studentID)
}

// EnrolledStudents lists student ids for a course.
func (s *CourseService) EnrolledStudents(ctx context.Context, courseID int64) ([]int64, error) {
	return s.enrollments.ListStudentIDs(ctx, courseID)
}

// AddSchedule attaches a schedule slot to a course.
func (s *CourseService) AddSchedule(ctx context.Context, schedule *domain.Schedule) (*domain.Schedule, error) {
	if _, err := s.courses.GetByID(ctx, schedule.CourseID); err != nil {
		return nil, err
	}
	if schedule.DayOfWeek == "" || schedule.StartTime == "" || schedule.EndTime == "" {
		return nil, apperrors.NewValidationError("dayOfWeek, startTime, endTime required", nil)
	}
	if schedule.Status == "" {
		schedule.Status = domain.ScheduleStatusActive
	}
	if err := s.schedules.Create(ctx, schedule); err != nil {
		return nil, err
	}
	return schedule, nil
}

// CourseSchedules lists the schedule slots of a course.
func (s *CourseService) CourseSchedules(ctx context.Context, courseID int64) ([]*domain.Schedule, error) {
	return s.schedules.ListByCourse(ctx, courseID)
}

func (s *CourseService) publish(ctx context.Context, eventType events.EventType, subject string, payload interface{}) {
	if s.dispatcher == nil {
		return
	}
	_ = s.dispatcher.Publish(ctx, events.Event{
		ID:        uuid.NewString(),
		Type:      eventType,
		Subject:   subject,
		Timestamp: time.Now(),
		Payload:   payload,
	})
}
