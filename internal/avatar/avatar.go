// Package avatar turns participant avatar references into URLs a client can
// load.
package avatar

import (
	"context"
	"net/url"
	"strings"

	"symposium/internal/roster"
)

// Resolver maps an avatar reference to a loadable URL.
type Resolver interface {
	Resolve(ctx context.Context, ref string) (string, error)
}

// ResolverFunc adapts a function to Resolver.
type ResolverFunc func(ctx context.Context, ref string) (string, error)

func (f ResolverFunc) Resolve(ctx context.Context, ref string) (string, error) { return f(ctx, ref) }

// IsAbsolute reports whether ref is already an http(s) URL.
func IsAbsolute(ref string) bool {
	u, err := url.Parse(strings.TrimSpace(ref))
	if err != nil {
		return false
	}
	return (u.Scheme == "http" || u.Scheme == "https") && u.Host != ""
}

// Static serves relative references under BaseURL.
type Static struct {
	BaseURL string
}

func (s Static) Resolve(_ context.Context, ref string) (string, error) {
	ref = strings.TrimSpace(ref)
	if ref == "" || IsAbsolute(ref) {
		return ref, nil
	}
	base := strings.TrimRight(strings.TrimSpace(s.BaseURL), "/")
	if base == "" {
		return "/" + strings.TrimLeft(ref, "/"), nil
	}
	return base + "/" + strings.TrimLeft(ref, "/"), nil
}

// ResolveAll returns copies of ps with AvatarRef replaced by the resolved URL.
// A reference that fails to resolve is left as is.
func ResolveAll(ctx context.Context, r Resolver, ps []roster.Participant) []roster.Participant {
	out := make([]roster.Participant, len(ps))
	copy(out, ps)
	if r == nil {
		return out
	}
	for i := range out {
		if out[i].AvatarRef == "" {
			continue
		}
		if u, err := r.Resolve(ctx, out[i].AvatarRef); err == nil && u != "" {
			out[i].AvatarRef = u
		}
	}
	return out
}
