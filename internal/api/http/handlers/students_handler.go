package handlers

import (
	"net/http"
	"strconv"

	"github.com/gofiber/fiber/v2"

	"github.com/nexis/campus-services/internal/api/dto"
	"github.com/nexis/campus-services/internal/service"
	apperrors "github.com/nexis/campus-services/pkg/util"
)

// StudentsHandler exposes administrative student account management.
type StudentsHandler struct {
	auth *service.AuthService
}

// NewStudentsHandler constructs handler.
func NewStudentsHandler(authService *service.AuthService) *StudentsHandler {
	return &StudentsHandler{auth: authService}
}

// Create handles POST /api/students.
func (h *StudentsHandler) Create(c *fiber.Ctx) error {
	var req dto.RegisterRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	if req.Username == "" || req.Email == "" || req.Password == "" {
		return apperrors.NewValidationError("username, email, password required", nil)
	}

	user, err := h.auth.CreateStudent(c.UserContext(), service.RegisterInput{
		Username:    req.Username,
		Email:       req.Email,
		Password:    req.Password,
		FirstName:   req.FirstName,
		LastName:    req.LastName,
		PhoneNumber: req.PhoneNumber,
		Address:     req.Address,
	})
	if err != nil {
		return err
	}
	return c.Status(http.StatusCreated).JSON(dto.NewUserDto(user))
}

// List handles GET /api/students.
func (h *StudentsHandler) List(c *fiber.Ctx) error {
	students, err := h.auth.ListStudents(c.UserContext())
	if err != nil {
		return err
	}
	return c.JSON(dto.NewUserDtos(students))
}

// Get handles GET /api/students/:id.
func (h *StudentsHandler) Get(c *fiber.Ctx) error {
	id, err := studentID(c)
	if err != nil {
		return err
	}

	student, err := h.auth.GetStudent(c.UserContext(), id)
	if err != nil {
		return err
	}
	return c.JSON(dto.NewUserDto(student))
}

// Update handles PUT /api/students/:id.
func (h *StudentsHandler) Update(c *fiber.Ctx) error {
	id, err := studentID(c)
	if err != nil {
		return err
	}

	var req dto.UpdateProfileRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}

	student, err := h.auth.UpdateStudent(c.UserContext(), id, service.ProfileUpdate{
		FirstName:   req.FirstName,
		LastName:    req.LastName,
		PhoneNumber: req.PhoneNumber,
		Address:     req.Address,
	})
	if err != nil {
		return err
	}
	return c.JSON(dto.NewUserDto(student))
}

// Delete handles DELETE /api/students/:id.
func (h *StudentsHandler) Delete(c *fiber.Ctx) error {
	id, err := studentID(c)
	if err != nil {
		return err
	}
	if err := h.auth.DeleteStudent(c.UserContext(), id); err != nil {
		return err
	}
	return c.SendStatus(http.StatusNoContent)
}

func studentID(c *fiber.Ctx) (int64, error) {
	id, err := strconv.ParseInt(c.Params("id"), 10, 64)
	if err != nil || id <= 0 {
		return 0, apperrors.NewValidationError("invalid student id", nil)
	}
	return id, nil
}
