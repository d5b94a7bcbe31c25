package domain

import "time"

// ScheduleStatus represents lifecycle states for a schedule slot.
type ScheduleStatus string

const (
	ScheduleStatusActive    ScheduleStatus = "ACTIVE"
	ScheduleStatusCancelled ScheduleStatus = "CANCELLED"
)

// Schedule is a weekly time slot attached to a course.
type Schedule struct {
	ID        int64
	CourseID  int64
	DayOfWeek string
	StartTime string
	EndTime   string
	Room      string
	Building  string
	Capacity  int
	Status    ScheduleStatus
	CreatedAt time.Time
	UpdatedAt time.Time
}
