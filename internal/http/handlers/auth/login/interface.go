package login

import (
	"context"

	"github.com/magabrotheeeer/beauty-booking/internal/services/auth"
)

// Service checks credentials and issues a token.
type Service interface {
	Login(ctx context.Context, email, password string) (*auth.Session, error)
}
