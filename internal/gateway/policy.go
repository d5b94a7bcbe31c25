package gateway

import (
	"strings"

	"github.com/nexis/campus-services/internal/domain"
)

// PolicyEntry pairs a path fragment with the roles allowed through it.
type PolicyEntry struct {
	Prefix string
	Roles  []domain.Role
}

// Allows reports role membership for the entry.
func (e PolicyEntry) Allows(role domain.Role) bool {
	for _, allowed := range e.Roles {
		if allowed == role {
			return true
		}
	}
	return false
}

// RoutePolicy is an ordered route-to-roles table. Matching is
// first-substring-wins, so entries whose fragment is contained in another
// (payment vs payments) must be listed longest first. The table is built
// once at startup and never mutated.
type RoutePolicy struct {
	entries []PolicyEntry
}

// NewRoutePolicy builds an immutable policy from ordered entries.
func NewRoutePolicy(entries ...PolicyEntry) *RoutePolicy {
	copied := make([]PolicyEntry, len(entries))
	copy(copied, entries)
	return &RoutePolicy{entries: copied}
}

// Match returns the first entry whose fragment occurs in the path.
func (p *RoutePolicy) Match(path string) (PolicyEntry, bool) {
	for _, entry := range p.entries {
		if strings.Contains(path, entry.Prefix) {
			return entry, true
		}
	}
	return PolicyEntry{}, false
}

// HasAccess is the pure authorization decision: deterministic for a fixed
// table, default deny when no entry matches or the role is INVALID.
func (p *RoutePolicy) HasAccess(path string, role domain.Role) bool {
	if role == domain.RoleInvalid {
		return false
	}
	entry, ok := p.Match(path)
	if !ok {
		return false
	}
	return entry.Allows(role)
}

var (
	allRoles     = []domain.Role{domain.RoleAdmin, domain.RoleProfessor, domain.RoleStudent}
	adminOnly    = []domain.Role{domain.RoleAdmin}
	staff        = []domain.Role{domain.RoleAdmin, domain.RoleProfessor}
	adminStudent = []domain.Role{domain.RoleAdmin, domain.RoleStudent}
)

// DefaultPolicy returns the route permission table. Overlapping fragments
// must list the longer one first: /api/billing/payments precedes
// /api/billing/payment, and each bare SOAP endpoint path follows its
// operation-suffixed entries.
func DefaultPolicy() *RoutePolicy {
	return NewRoutePolicy(
		PolicyEntry{"/api/auth/register", allRoles},
		PolicyEntry{"/api/auth/login", allRoles},
		PolicyEntry{"/api/auth/refresh", allRoles},

		PolicyEntry{"/api/students/create", adminOnly},
		PolicyEntry{"/api/students/list", staff},
		PolicyEntry{"/api/students/get", allRoles},
		PolicyEntry{"/api/students/update", adminOnly},
		PolicyEntry{"/api/students/delete", adminOnly},

		PolicyEntry{"/api/ws/course/addCourse", staff},
		PolicyEntry{"/api/ws/course/listAllCourses", allRoles},
		PolicyEntry{"/api/ws/course/enrollStudent", adminStudent},
		PolicyEntry{"/api/ws/course/updateCourse", staff},
		PolicyEntry{"/api/ws/course/deleteCourse", adminOnly},
		// remaining course operations and the bare endpoint path; the
		// endpoint enforces per-operation roles itself
		PolicyEntry{"/api/ws/course", allRoles},

		PolicyEntry{"/api/grades/add", staff},
		PolicyEntry{"/api/grades/get", allRoles},
		PolicyEntry{"/api/grades/update", staff},
		PolicyEntry{"/api/grades/delete", adminOnly},

		PolicyEntry{"/api/ws/billing/createInvoice", adminOnly},
		PolicyEntry{"/api/ws/billing/recordPayment", adminStudent},
		PolicyEntry{"/api/ws/billing", allRoles},

		PolicyEntry{"/api/billing/invoice", adminStudent},
		PolicyEntry{"/api/billing/payments", adminOnly},
		PolicyEntry{"/api/billing/payment", adminStudent},
	)
}
