package ports

import "context"

type AdminAuthService interface {
	Enabled() bool
	Login(ctx context.Context, password string) (string, error)
	Verify(token string) error
}
