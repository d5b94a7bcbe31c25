package domain

import "time"

// CourseStatus represents lifecycle states for a course.
type CourseStatus string

const (
	CourseStatusActive   CourseStatus = "ACTIVE"
	CourseStatusInactive CourseStatus = "INACTIVE"
	CourseStatusArchived CourseStatus = "ARCHIVED"
)

// Course models a teachable course offering.
type Course struct {
	ID            int64
	Code          string
	Title         string
	Description   string
	InstructorID  int64
	Credits       int
	Semester      string
	MaxStudents   int
	EnrolledCount int
	Status        CourseStatus
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// HasAvailableSpace reports whether another student fits in the course.
func (c *Course) HasAvailableSpace() bool {
	return c.EnrolledCount < c.MaxStudents
}
