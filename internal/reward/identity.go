package reward

import "context"

type displayNameKey struct{}

// WithDisplayName attaches the acting user's display name so the ledger can
// keep the actor row's name current.
func WithDisplayName(ctx context.Context, name string) context.Context {
	if name == "" {
		return ctx
	}
	return context.WithValue(ctx, displayNameKey{}, name)
}

func DisplayNameFrom(ctx context.Context) string {
	name, _ := ctx.Value(displayNameKey{}).(string)
	return name
}
