package cli

import (
	"io"
	"log/slog"

	"github.com/google/uuid"

	"github.com/dmar42/nsot/internal/api"
	"github.com/dmar42/nsot/internal/attr"
	"github.com/dmar42/nsot/internal/config"
	"github.com/dmar42/nsot/internal/errs"
)

// Invocation owns the state shared by every command in one CLI run: the
// loaded configuration, the API client, the attribute parse log, and a
// correlation ID attached to all log lines. It is constructed once per run
// and discarded at exit.
type Invocation struct {
	ID       uuid.UUID
	Config   config.Config
	Client   *api.Client
	Log      *attr.ParseLog
	Logger   *slog.Logger
	Out      io.Writer
	Renderer api.Renderer
}

// NewInvocation wires an invocation from loaded configuration.
func NewInvocation(cfg config.Config, logger *slog.Logger, out io.Writer) *Invocation {
	id := uuid.New()
	logger = logger.With("invocation", id.String())
	return &Invocation{
		ID:     id,
		Config: cfg,
		Client: api.NewClient(cfg, logger),
		Log:    &attr.ParseLog{},
		Logger: logger,
		Out:    out,
	}
}

// SetLogger swaps in the flag-configured logger once flags are parsed,
// rebinding the API client so transport logs use it too.
func (inv *Invocation) SetLogger(logger *slog.Logger) {
	inv.Logger = logger.With("invocation", inv.ID.String())
	inv.Client = api.NewClient(inv.Config, inv.Logger)
}

// Registry returns the collection registry rooted at the given site.
func (inv *Invocation) Registry(siteID string) *api.Registry {
	return api.NewRegistry(inv.Client, siteID)
}

// Lister returns the listing service bound to the invocation's renderer.
func (inv *Invocation) Lister() *api.Lister {
	return &api.Lister{Renderer: inv.Renderer}
}

// SiteID resolves the effective site: the -s/--site-id flag when given,
// otherwise the configured default site, otherwise a usage failure.
func (inv *Invocation) SiteID(flagValue string) (string, error) {
	if flagValue != "" {
		return flagValue, nil
	}
	if inv.Config.DefaultSite != "" {
		return inv.Config.DefaultSite, nil
	}
	return "", errs.Usagef("missing option %q / %q", "-s", "--site-id")
}
