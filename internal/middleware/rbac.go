package middleware

import (
	"database/sql"
	"net/http"
	"strings"

	"insight360/internal/repository"
)

// RBACMiddleware gates routes on the caller's directory designation.
// There is no separate role table; the HRIS sync writes the designation
// and the admin list comes from configuration.
type RBACMiddleware struct {
	users             *repository.UserRepository
	adminDesignations []string
}

// NewRBACMiddleware creates an RBAC middleware over the user directory
func NewRBACMiddleware(db *sql.DB, adminDesignations []string) *RBACMiddleware {
	return &RBACMiddleware{
		users:             repository.NewUserRepository(db),
		adminDesignations: adminDesignations,
	}
}

// RequireAdmin rejects callers whose designation is not on the admin list
func (m *RBACMiddleware) RequireAdmin(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		userID, ok := GetUserID(r)
		if !ok {
			respondWithError(w, http.StatusUnauthorized, "User not authenticated")
			return
		}

		user, err := m.users.GetByID(userID)
		if err != nil {
			respondWithError(w, http.StatusInternalServerError, "Failed to get user")
			return
		}

		if !m.isAdmin(user.Designation) {
			respondWithError(w, http.StatusForbidden, "Insufficient permissions")
			return
		}

		next.ServeHTTP(w, r)
	})
}

func (m *RBACMiddleware) isAdmin(designation string) bool {
	for _, d := range m.adminDesignations {
		if strings.EqualFold(d, designation) {
			return true
		}
	}
	return false
}
