package domain

import "time"

// Enrollment links a student to a course.
type Enrollment struct {
	ID         int64
	CourseID   int64
	StudentID  int64
	EnrolledAt time.Time
}
