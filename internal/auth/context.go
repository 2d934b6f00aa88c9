package auth

import (
	"context"

	"github.com/akolanti/delphi/internal/config"
	"github.com/akolanti/delphi/internal/domain/commonModels"
)

func WithIdentity(ctx context.Context, id commonModels.Identity) context.Context {
	return context.WithValue(ctx, config.IDENTITY_KEY, id)
}

// IdentityFrom returns the identity the auth middleware stored in ctx.
func IdentityFrom(ctx context.Context) (commonModels.Identity, bool) {
	id, ok := ctx.Value(config.IDENTITY_KEY).(commonModels.Identity)
	return id, ok && id.Username != ""
}
