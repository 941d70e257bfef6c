package api

import (
	"context"
	"fmt"

	"github.com/dmar42/nsot/internal/errs"
	"github.com/dmar42/nsot/internal/resolve"
)

// Lookup implements resolve.LookupService over a registry. A lookup matches
// when exactly one object satisfies the query parameters; zero matches
// return nil, and more than one is an ambiguity the caller cannot recover
// from without narrower parameters.
type Lookup struct {
	Registry *Registry
}

var _ resolve.LookupService = (*Lookup)(nil)

// FindSingle returns the single object matching params, or nil when none
// does.
func (l *Lookup) FindSingle(ctx context.Context, resource string, params resolve.Params) (resolve.Object, error) {
	h, err := l.Registry.Collection(resource)
	if err != nil {
		return nil, err
	}
	objs, err := h.(*Collection).Fetch(ctx, params)
	if err != nil {
		return nil, err
	}
	switch len(objs) {
	case 0:
		return nil, nil
	case 1:
		return objs[0], nil
	default:
		return nil, errs.Usagef("multiple %s matched the lookup parameters; narrow the query", resource)
	}
}

// Renderer produces the final output for a list of objects.
type Renderer interface {
	RenderList(objects []resolve.Object, fields []resolve.Field) error
}

// Lister implements resolve.ListingService: it retrieves a composed
// collection and hands the result to its renderer.
type Lister struct {
	Renderer Renderer
}

var _ resolve.ListingService = (*Lister)(nil)

// List fetches the collection with the given parameters and renders it.
func (s *Lister) List(ctx context.Context, h resolve.Handle, params resolve.Params, fields []resolve.Field) error {
	col, ok := h.(*Collection)
	if !ok {
		return fmt.Errorf("listing: foreign collection handle %T", h)
	}
	objs, err := col.Fetch(ctx, params)
	if err != nil {
		return err
	}
	return s.Renderer.RenderList(objs, fields)
}
