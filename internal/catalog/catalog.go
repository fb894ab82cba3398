// Package catalog routes canonical requests to the adapter selected by the
// current session. It is a routing and fail-fast layer: no transformation
// happens here, and nothing reaches the network without a live session.
package catalog

import (
	"context"
	"fmt"
	"time"

	"github.com/gordyrad/report-relay/internal/auth"
	"github.com/gordyrad/report-relay/internal/canonical"
	"github.com/gordyrad/report-relay/internal/providers"
	"github.com/gordyrad/report-relay/internal/store"
)

// Catalog exposes template and report operations over whichever provider the
// user is logged into.
type Catalog struct {
	creds    *auth.CredentialStore
	registry *providers.Registry
	store    *store.Store
}

// New creates a Catalog.
func New(creds *auth.CredentialStore, registry *providers.Registry, s *store.Store) *Catalog {
	return &Catalog{creds: creds, registry: registry, store: s}
}

// active resolves the adapter for the live session. Every operation calls
// this first so a missing or expired session fails before any network call.
func (c *Catalog) active() (providers.Adapter, *canonical.Session, error) {
	if !c.creds.IsLive() {
		return nil, nil, canonical.ErrAuthRequired
	}
	sess, err := c.creds.Session()
	if err != nil {
		return nil, nil, err
	}
	if sess == nil {
		return nil, nil, canonical.ErrAuthRequired
	}
	adapter, ok := c.registry.Lookup(sess.User.Provider)
	if !ok {
		return nil, nil, fmt.Errorf("no adapter registered for provider %q", sess.User.Provider)
	}
	return adapter, sess, nil
}

// Provider returns the active provider identifier, or ErrAuthRequired.
func (c *Catalog) Provider() (string, error) {
	_, sess, err := c.active()
	if err != nil {
		return "", err
	}
	return sess.User.Provider, nil
}

// ListTemplates lists the active provider's templates with fields populated.
func (c *Catalog) ListTemplates(ctx context.Context) ([]canonical.Template, error) {
	adapter, sess, err := c.active()
	if err != nil {
		return nil, err
	}

	start := time.Now()
	templates, err := adapter.ListTemplates(ctx, sess)
	c.logFetch(adapter.Name(), "list_templates", err, time.Since(start))
	return templates, err
}

// TemplateDetail resolves a template by display name on the active provider.
func (c *Catalog) TemplateDetail(ctx context.Context, name string) (*canonical.Template, error) {
	adapter, sess, err := c.active()
	if err != nil {
		return nil, err
	}

	start := time.Now()
	tpl, err := adapter.TemplateDetail(ctx, name, sess)
	c.logFetch(adapter.Name(), "template_detail", err, time.Since(start))
	return tpl, err
}

// ListReports lists submitted reports on the active provider.
func (c *Catalog) ListReports(ctx context.Context, filter canonical.Filter) ([]canonical.Report, error) {
	adapter, sess, err := c.active()
	if err != nil {
		return nil, err
	}

	start := time.Now()
	reports, err := adapter.ListReports(ctx, filter, sess)
	c.logFetch(adapter.Name(), "list_reports", err, time.Since(start))
	return reports, err
}

// SubmitReport submits a draft on the active provider. Providers without
// write support fail with canonical.ErrCapabilityUnsupported.
func (c *Catalog) SubmitReport(ctx context.Context, draft *canonical.Draft) (*canonical.SubmitResult, error) {
	adapter, _, err := c.active()
	if err != nil {
		return nil, err
	}

	submitter, ok := adapter.(providers.Submitter)
	if !ok {
		return nil, fmt.Errorf("provider %s: %w", adapter.Name(), canonical.ErrCapabilityUnsupported)
	}

	start := time.Now()
	result, err := submitter.SubmitReport(ctx, draft)
	c.logFetch(adapter.Name(), "submit_report", err, time.Since(start))
	return result, err
}

// logFetch records the operation in the local store. Logging failures never
// affect the caller.
func (c *Catalog) logFetch(provider, operation string, opErr error, duration time.Duration) {
	if c.store == nil {
		return
	}
	status := "success"
	errMsg := ""
	if opErr != nil {
		status = "error"
		errMsg = opErr.Error()
	}
	_ = c.store.LogFetch(&store.FetchLog{
		Provider:     provider,
		Operation:    operation,
		Status:       status,
		ErrorMessage: errMsg,
		DurationMS:   duration.Milliseconds(),
	})
}
