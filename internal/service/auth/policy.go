package auth

import "github.com/mamadbah2/posgate/internal/domain/models"

// Resource names a gated area of the gateway.
type Resource string

const (
	ResourceProductAdmin Resource = "products:admin"
	ResourceUserAdmin    Resource = "users:admin"
	ResourceSales        Resource = "sales"
	ResourceHistory      Resource = "history"
	ResourceLabels       Resource = "labels"
)

// Allow is the authorization policy: it decides whether a role may touch a
// resource. Evaluated before serving any gated route, never per-page ad hoc.
func Allow(role models.Role, resource Resource) bool {
	switch role {
	case models.RoleAdmin:
		return true
	case models.RoleSeller:
		switch resource {
		case ResourceSales, ResourceHistory, ResourceLabels:
			return true
		}
	}
	return false
}
