package register

import (
	"context"

	"github.com/magabrotheeeer/beauty-booking/internal/services/auth"
)

// Service is the registration use case.
type Service interface {
	Register(ctx context.Context, name, email, password, phone string) (*auth.Session, error)
}
