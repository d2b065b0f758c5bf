package helpers

import "slices"

type EnhancedClaims struct {
	*CustomClaims
	Role   string `json:"role"`
	UserID string `json:"id"`
	Email  string `json:"email,omitempty"`
}

// NewEnhancedClaims picks the most specific role: an app_metadata "admin" role wins over the
// token's generic role claim.
func NewEnhancedClaims(c *CustomClaims) *EnhancedClaims {
	role := c.Role
	if slices.Contains(c.AppMetadata.Roles, "admin") {
		role = "admin"
	}
	return &EnhancedClaims{
		CustomClaims: c,
		Role:         role,
		UserID:       c.Subject,
		Email:        c.Email,
	}
}

func (ec *EnhancedClaims) IsAdmin() bool {
	return ec.Role == "admin"
}
