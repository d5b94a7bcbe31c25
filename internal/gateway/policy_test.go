package gateway

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/nexis/campus-services/internal/domain"
)

func TestHasAccessStudentRoutes(t *testing.T) {
	policy := DefaultPolicy()

	assert.False(t, policy.HasAccess("/api/students/create", domain.RoleStudent))
	assert.True(t, policy.HasAccess("/api/students/create", domain.RoleAdmin))

	assert.True(t, policy.HasAccess("/api/students/list", domain.RoleProfessor))
	assert.False(t, policy.HasAccess("/api/students/list", domain.RoleStudent))

	assert.True(t, policy.HasAccess("/api/students/get/42", domain.RoleStudent))
}

func TestHasAccessCourseRoutes(t *testing.T) {
	policy := DefaultPolicy()

	assert.True(t, policy.HasAccess("/api/ws/course/addCourse", domain.RoleProfessor))
	assert.False(t, policy.HasAccess("/api/ws/course/addCourse", domain.RoleStudent))

	assert.True(t, policy.HasAccess("/api/ws/course/enrollStudent", domain.RoleStudent))
	assert.False(t, policy.HasAccess("/api/ws/course/enrollStudent", domain.RoleProfessor))

	assert.False(t, policy.HasAccess("/api/ws/course/deleteCourse", domain.RoleProfessor))
	assert.True(t, policy.HasAccess("/api/ws/course/deleteCourse", domain.RoleAdmin))
}

func TestHasAccessBillingOverlap(t *testing.T) {
	policy := DefaultPolicy()

	// "payments" would also substring-match "payment"; ordering decides
	assert.True(t, policy.HasAccess("/api/billing/payments", domain.RoleAdmin))
	assert.False(t, policy.HasAccess("/api/billing/payments", domain.RoleStudent))

	assert.True(t, policy.HasAccess("/api/billing/payment", domain.RoleStudent))
	assert.True(t, policy.HasAccess("/api/billing/invoice", domain.RoleStudent))
	assert.False(t, policy.HasAccess("/api/billing/invoice", domain.RoleProfessor))
}

func TestHasAccessDefaultDeny(t *testing.T) {
	policy := DefaultPolicy()

	assert.False(t, policy.HasAccess("/api/unknown/route", domain.RoleAdmin))
	assert.False(t, policy.HasAccess("/", domain.RoleAdmin))
}

func TestHasAccessInvalidRoleDenies(t *testing.T) {
	policy := DefaultPolicy()

	assert.False(t, policy.HasAccess("/api/students/get", domain.RoleInvalid))
	assert.False(t, policy.HasAccess("/api/students/get", domain.ParseRole("HACKER")))
	assert.False(t, policy.HasAccess("/api/students/get", domain.ParseRole("UNKNOWN")))
}

func TestHasAccessIsDeterministic(t *testing.T) {
	policy := DefaultPolicy()

	for i := 0; i < 100; i++ {
		assert.True(t, policy.HasAccess("/api/grades/add", domain.RoleProfessor))
		assert.False(t, policy.HasAccess("/api/grades/add", domain.RoleStudent))
	}
}
