package mapping

import (
	"github.com/SscSPs/finance_dashboard/internal/core/domain"
	"github.com/SscSPs/finance_dashboard/internal/models"
)

// ToPrincipal converts a local user row to the principal the identity resolver reads.
func ToPrincipal(m models.User) domain.Principal {
	return domain.Principal{
		ID:       m.UserID,
		Email:    m.Email,
		Phone:    deref(m.Phone),
		Metadata: m.Metadata,
	}
}
