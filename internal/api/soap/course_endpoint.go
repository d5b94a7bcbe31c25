package soap

import (
	"encoding/xml"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/nexis/campus-services/internal/domain"
	"github.com/nexis/campus-services/internal/service"
	"github.com/nexis/campus-services/internal/token"
	apperrors "github.com/nexis/campus-services/pkg/util"
)

type courseXML struct {
	ID            int64  `xml:"id"`
	Code          string `xml:"code"`
	Title         string `xml:"title"`
	Description   string `xml:"description"`
	InstructorID  int64  `xml:"instructorId"`
	Credits       int    `xml:"credits"`
	Semester      string `xml:"semester"`
	MaxStudents   int    `xml:"maxStudents"`
	EnrolledCount int    `xml:"enrolledCount"`
	Status        string `xml:"status"`
	CreatedAt     string `xml:"createdAt"`
}

type scheduleXML struct {
	ID        int64  `xml:"id"`
	CourseID  int64  `xml:"courseId"`
	DayOfWeek string `xml:"dayOfWeek"`
	StartTime string `xml:"startTime"`
	EndTime   string `xml:"endTime"`
	Room      string `xml:"room"`
	Building  string `xml:"building"`
	Capacity  int    `xml:"capacity"`
	Status    string `xml:"status"`
}

func courseToXML(course *domain.Course) courseXML {
	return courseXML{
		ID:            course.ID,
		Code:          course.Code,
		Title:         course.Title,
		Description:   course.Description,
		InstructorID:  course.InstructorID,
		Credits:       course.Credits,
		Semester:      course.Semester,
		MaxStudents:   course.MaxStudents,
		EnrolledCount: course.EnrolledCount,
		Status:        string(course.Status),
		CreatedAt:     course.CreatedAt.Format(time.RFC3339),
	}
}

func schedulesToXML(schedules []*domain.Schedule) []scheduleXML {
	out := make([]scheduleXML, 0, len(schedules))
	for _, s := range schedules {
		out = append(out, scheduleXML{
			ID:        s.ID,
			CourseID:  s.CourseID,
			DayOfWeek: s.DayOfWeek,
			StartTime: s.StartTime,
			EndTime:   s.EndTime,
			Room:      s.Room,
			Building:  s.Building,
			Capacity:  s.Capacity,
			Status:    string(s.Status),
		})
	}
	return out
}

func coursesToXML(courses []*domain.Course) []courseXML {
	out := make([]courseXML, 0, len(courses))
	for _, c := range courses {
		out = append(out, courseToXML(c))
	}
	return out
}

type addCourseRequest struct {
	Code         string `xml:"code"`
	Title        string `xml:"title"`
	Description  string `xml:"description"`
	InstructorID int64  `xml:"instructorId"`
	Credits      int    `xml:"credits"`
	Semester     string `xml:"semester"`
	MaxStudents  int    `xml:"maxStudents"`
	Status       string `xml:"status"`
}

type updateCourseRequest struct {
	CourseID int64 `xml:"courseId"`
	addCourseRequest
}

type courseIDRequest struct {
	CourseID int64 `xml:"courseId"`
}

type semesterRequest struct {
	Semester string `xml:"semester"`
}

type instructorRequest struct {
	InstructorID int64 `xml:"instructorId"`
}

type enrollmentRequest struct {
	CourseID  int64 `xml:"courseId"`
	StudentID int64 `xml:"studentId"`
}

type addScheduleRequest struct {
	CourseID  int64  `xml:"courseId"`
	DayOfWeek string `xml:"dayOfWeek"`
	StartTime string `xml:"startTime"`
	EndTime   string `xml:"endTime"`
	Room      string `xml:"room"`
	Building  string `xml:"building"`
	Capacity  int    `xml:"capacity"`
}

type courseResponse struct {
	XMLName xml.Name  `xml:"addCourseResponse"`
	Course  courseXML `xml:"course"`
}

type updateCourseResponse struct {
	XMLName xml.Name  `xml:"updateCourseResponse"`
	Course  courseXML `xml:"course"`
}

type deleteCourseResponse struct {
	XMLName xml.Name `xml:"deleteCourseResponse"`
	Success bool     `xml:"success"`
}

type getCourseResponse struct {
	XMLName xml.Name  `xml:"getCourseByIdResponse"`
	Course  courseXML `xml:"course"`
}

type listCoursesResponse struct {
	XMLName xml.Name    `xml:"listAllCoursesResponse"`
	Courses []courseXML `xml:"courses>course"`
}

type semesterCoursesResponse struct {
	XMLName xml.Name    `xml:"getCoursesBySemesterResponse"`
	Courses []courseXML `xml:"courses>course"`
}

type instructorCoursesResponse struct {
	XMLName xml.Name    `xml:"getCoursesByInstructorResponse"`
	Courses []courseXML `xml:"courses>course"`
}

type enrollStudentResponse struct {
	XMLName  xml.Name `xml:"enrollStudentResponse"`
	Enrolled bool     `xml:"enrolled"`
}

type removeStudentResponse struct {
	XMLName xml.Name `xml:"removeStudentResponse"`
	Removed bool     `xml:"removed"`
}

type checkEnrollmentResponse struct {
	XMLName  xml.Name `xml:"checkStudentEnrollmentResponse"`
	Enrolled bool     `xml:"enrolled"`
}

type enrolledStudentsResponse struct {
	XMLName    xml.Name `xml:"getEnrolledStudentsResponse"`
	StudentIDs []int64  `xml:"studentIds>studentId"`
}

type addScheduleResponse struct {
	XMLName  xml.Name    `xml:"addScheduleResponse"`
	Schedule scheduleXML `xml:"schedule"`
}

type courseSchedulesResponse struct {
	XMLName   xml.Name      `xml:"getCourseSchedulesResponse"`
	Schedules []scheduleXML `xml:"schedules>schedule"`
}

func callerRole(claims *token.Claims) domain.Role {
	if claims == nil {
		return domain.RoleInvalid
	}
	return domain.ParseRole(claims.Role)
}

func requireRoles(claims *token.Claims, allowed ...domain.Role) error {
	role := callerRole(claims)
	for _, candidate := range allowed {
		if role == candidate {
			return nil
		}
	}
	return apperrors.NewForbidden("insufficient role")
}

func decodeRequest(decoder *xml.Decoder, start xml.StartElement, dst interface{}) error {
	if err := decoder.DecodeElement(dst, &start); err != nil {
		return apperrors.NewValidationError("malformed request body", nil)
	}
	return nil
}

// RegisterCourseEndpoint binds every course operation onto the server.
func RegisterCourseEndpoint(server *Server, courses *service.CourseService) {
	server.Register("addCourse", func(c *fiber.Ctx, claims *token.Claims, decoder *xml.Decoder, start xml.StartElement) (interface{}, error) {
		if err := requireRoles(claims, domain.RoleAdmin, domain.RoleProfessor); err != nil {
			return nil, err
		}
		var req addCourseRequest
		if err := decodeRequest(decoder, start, &req); err != nil {
			return nil, err
		}
		course, err := courses.AddCourse(c.UserContext(), &domain.Course{
			Code:         req.Code,
			Title:        req.Title,
			Description:  req.Description,
			InstructorID: req.InstructorID,
			Credits:      req.Credits,
			Semester:     req.Semester,
			MaxStudents:  req.MaxStudents,
			Status:       domain.CourseStatus(req.Status),
		})
		if err != nil {
			return nil, err
		}
		return courseResponse{Course: courseToXML(course)}, nil
	})

	server.Register("updateCourse", func(c *fiber.Ctx, claims *token.Claims, decoder *xml.Decoder, start xml.StartElement) (interface{}, error) {
		if err := requireRoles(claims, domain.RoleAdmin, domain.RoleProfessor); err != nil {
			return nil, err
		}
		var req updateCourseRequest
		if err := decodeRequest(decoder, start, &req); err != nil {
			return nil, err
		}

		// professors may only touch their own courses
		if callerRole(claims) == domain.RoleProfessor {
			existing, err := courses.GetCourseByID(c.UserContext(), req.CourseID)
			if err != nil {
				return nil, err
			}
			if claims.UserID == nil || existing.InstructorID != *claims.UserID {
				return nil, apperrors.NewForbidden("not the course instructor")
			}
		}

		course, err := courses.UpdateCourse(c.UserContext(), req.CourseID, &domain.Course{
			Title:        req.Title,
			Description:  req.Description,
			InstructorID: req.InstructorID,
			Credits:      req.Credits,
			Semester:     req.Semester,
			MaxStudents:  req.MaxStudents,
			Status:       domain.CourseStatus(req.Status),
		})
		if err != nil {
			return nil, err
		}
		return updateCourseResponse{Course: courseToXML(course)}, nil
	})

	server.Register("deleteCourse", func(c *fiber.Ctx, claims *token.Claims, decoder *xml.Decoder, start xml.StartElement) (interface{}, error) {
		if err := requireRoles(claims, domain.RoleAdmin); err != nil {
			return nil, err
		}
		var req courseIDRequest
		if err := decodeRequest(decoder, start, &req); err != nil {
			return nil, err
		}
		if err := courses.DeleteCourse(c.UserContext(), req.CourseID); err != nil {
			return nil, err
		}
		return deleteCourseResponse{Success: true}, nil
	})

	server.Register("getCourseById", func(c *fiber.Ctx, claims *token.Claims, decoder *xml.Decoder, start xml.StartElement) (interface{}, error) {
		var req courseIDRequest
		if err := decodeRequest(decoder, start, &req); err != nil {
			return nil, err
		}
		course, err := courses.GetCourseByID(c.UserContext(), req.CourseID)
		if err != nil {
			return nil, err
		}
		return getCourseResponse{Course: courseToXML(course)}, nil
	})

	server.Register("listAllCourses", func(c *fiber.Ctx, claims *token.Claims, decoder *xml.Decoder, start xml.StartElement) (interface{}, error) {
		list, err := courses.ListAllCourses(c.UserContext())
		if err != nil {
			return nil, err
		}
		return listCoursesResponse{Courses: coursesToXML(list)}, nil
	})

	server.Register("getCoursesBySemester", func(c *fiber.Ctx, claims *token.Claims, decoder *xml.Decoder, start xml.StartElement) (interface{}, error) {
		var req semesterRequest
		if err := decodeRequest(decoder, start, &req); err != nil {
			return nil, err
		}
		list, err := courses.CoursesBySemester(c.UserContext(), req.Semester)
		if err != nil {
			return nil, err
		}
		return semesterCoursesResponse{Courses: coursesToXML(list)}, nil
	})

	server.Register("getCoursesByInstructor", func(c *fiber.Ctx, claims *token.Claims, decoder *xml.Decoder, start xml.StartElement) (interface{}, error) {
		var req instructorRequest
		if err := decodeRequest(decoder, start, &req); err != nil {
			return nil, err
		}
		list, err := courses.CoursesByInstructor(c.UserContext(), req.InstructorID)
		if err != nil {
			return nil, err
		}
		return instructorCoursesResponse{Courses: coursesToXML(list)}, nil
	})

	server.Register("enrollStudent", func(c *fiber.Ctx, claims *token.Claims, decoder *xml.Decoder, start xml.StartElement) (interface{}, error) {
		var req enrollmentRequest
		if err := decodeRequest(decoder, start, &req); err != nil {
			return nil, err
		}
		if err := requireSelfOrStaff(claims, req.StudentID); err != nil {
			return nil, err
		}
		enrolled, err := courses.EnrollStudent(c.UserContext(), req.CourseID, req.StudentID)
		if err != nil {
			return nil, err
		}
		return enrollStudentResponse{Enrolled: enrolled}, nil
	})

	server.Register("removeStudent", func(c *fiber.Ctx, claims *token.Claims, decoder *xml.Decoder, start xml.StartElement) (interface{}, error) {
		var req enrollmentRequest
		if err := decodeRequest(decoder, start, &req); err != nil {
			return nil, err
		}
		if err := requireSelfOrStaff(claims, req.StudentID); err != nil {
			return nil, err
		}
		removed, err := courses.RemoveStudent(c.UserContext(), req.CourseID, req.StudentID)
		if err != nil {
			return nil, err
		}
		return removeStudentResponse{Removed: removed}, nil
	})

	server.Register("checkStudentEnrollment", func(c *fiber.Ctx, claims *token.Claims, decoder *xml.Decoder, start xml.StartElement) (interface{}, error) {
		var req enrollmentRequest
		if err := decodeRequest(decoder, start, &req); err != nil {
			return nil, err
		}
		enrolled, err := courses.IsStudentEnrolled(c.UserContext(), req.CourseID, req.StudentID)
		if err != nil {
			return nil, err
		}
		return checkEnrollmentResponse{Enrolled: enrolled}, nil
	})

	server.Register("getEnrolledStudents", func(c *fiber.Ctx, claims *token.Claims, decoder *xml.Decoder, start xml.StartElement) (interface{}, error) {
		if err := requireRoles(claims, domain.RoleAdmin, domain.RoleProfessor); err != nil {
			return nil, err
		}
		var req courseIDRequest
		if err := decodeRequest(decoder, start, &req); err != nil {
			return nil, err
		}
		ids, err := courses.EnrolledStudents(c.UserContext(), req.CourseID)
		if err != nil {
			return nil, err
		}
		return enrolledStudentsResponse{StudentIDs: ids}, nil
	})

	server.Register("addSchedule", func(c *fiber.Ctx, claims *token.Claims, decoder *xml.Decoder, start xml.StartElement) (interface{}, error) {
		if err := requireRoles(claims, domain.RoleAdmin, domain.RoleProfessor); err != nil {
			return nil, err
		}
		var req addScheduleRequest
		if err := decodeRequest(decoder, start, &req); err != nil {
			return nil, err
		}
		schedule, err := courses.AddSchedule(c.UserContext(), &domain.Schedule{
			CourseID:  req.CourseID,
			DayOfWeek: req.DayOfWeek,
			StartTime: req.StartTime,
			EndTime:   req.EndTime,
			Room:      req.Room,
			Building:  req.Building,
			Capacity:  req.Capacity,
		})
		if err != nil {
			return nil, err
		}
		return addScheduleResponse{Schedule: scheduleXML{
			ID:        schedule.ID,
			CourseID:  schedule.CourseID,
			DayOfWeek: schedule.DayOfWeek,
			StartTime: schedule.StartTime,
			EndTime:   schedule.EndTime,
			Room:      schedule.Room,
			Building:  schedule.Building,
			Capacity:  schedule.Capacity,
			Status:    string(schedule.Status),
		}}, nil
	})

	server.Register("getCourseSchedules", func(c *fiber.Ctx, claims *token.Claims, decoder *xml.Decoder, start xml.StartElement) (interface{}, error) {
		var req courseIDRequest
		if err := decodeRequest(decoder, start, &req); err != nil {
			return nil, err
		}
		schedules, err := courses.CourseSchedules(c.UserContext(), req.CourseID)
		if err != nil {
			return nil, err
		}
		return courseSchedulesResponse{Schedules: schedulesToXML(schedules)}, nil
	})
}

// requireSelfOrStaff allows admins and professors to act on any student and
// students to act on themselves only.
func requireSelfOrStaff(claims *token.Claims, studentID int64) error {
	switch callerRole(claims) {
	case domain.RoleAdmin, domain.RoleProfessor:
		return nil
	case domain.RoleStudent:
		if claims.UserID != nil && *claims.UserID == studentID {
			return nil
		}
		return apperrors.NewForbidden("students may only manage their own enrollment")
	default:
		return apperrors.NewForbidden("unknown role")
	}
}
