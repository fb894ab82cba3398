// Package providers contains the per-provider adapters that translate
// canonical requests into upstream call shapes and upstream responses back
// into the canonical model. No raw provider payload leaves this package.
package providers

import (
	"context"

	"github.com/gordyrad/report-relay/internal/canonical"
)

// Adapter is the capability set every provider implements. Adapters are
// stateless beyond configuration; the session context carries the identity
// some upstreams need (DingTalk keys template listings by user ID).
type Adapter interface {
	// Name returns the provider identifier used for adapter selection.
	Name() string

	// ListTemplates returns all templates with fields populated. Providers
	// whose listing endpoint is lightweight perform one detail fetch per
	// template; a template whose detail fetch fails degrades to the
	// provider's default template instead of disappearing.
	ListTemplates(ctx context.Context, sess *canonical.Session) ([]canonical.Template, error)

	// TemplateDetail resolves a template by display name, because upstream
	// lookup is name-keyed. Zero matches fail with canonical.ErrNotFound;
	// when the upstream returns several matches the first one wins (the
	// upstream API gives no way to disambiguate true duplicates).
	TemplateDetail(ctx context.Context, name string, sess *canonical.Session) (*canonical.Template, error)

	// ListReports returns submitted reports matching the filter. A missing
	// or malformed result envelope degrades to an empty slice with a logged
	// warning.
	ListReports(ctx context.Context, filter canonical.Filter, sess *canonical.Session) ([]canonical.Report, error)
}

// Submitter is the optional write capability. Only providers whose upstream
// API supports submission implement it; calling submit on any other provider
// is a capability error, not a network error.
type Submitter interface {
	SubmitReport(ctx context.Context, draft *canonical.Draft) (*canonical.SubmitResult, error)
}

// Registry is the adapter table keyed by provider identifier. Dispatch is a
// single lookup; adding a provider means registering one more adapter.
type Registry struct {
	adapters map[string]Adapter
}

// NewRegistry builds a registry from the given adapters.
func NewRegistry(adapters ...Adapter) *Registry {
	r := &Registry{adapters: make(map[string]Adapter, len(adapters))}
	for _, a := range adapters {
		r.adapters[a.Name()] = a
	}
	return r
}

// Lookup returns the adapter registered for the provider identifier.
func (r *Registry) Lookup(provider string) (Adapter, bool) {
	a, ok := r.adapters[provider]
	return a, ok
}

// Providers returns the registered provider identifiers.
func (r *Registry) Providers() []string {
	names := make([]string, 0, len(r.adapters))
	for name := range r.adapters {
		names = append(names, name)
	}
	return names
}
