// Package resolve turns partial object descriptions into canonical
// identifiers and composes nested-resource listings from a parent/child
// relationship supplied at invocation time.
//
// The API transport stays behind three narrow contracts: LookupService for
// natural-key lookup, HandleRegistry for typed resource-name-to-collection
// lookup, and ListingService for the final retrieval and output.
package resolve

import (
	"context"
	"fmt"

	"github.com/dmar42/nsot/internal/errs"
)

// Params carries query or request parameters keyed by field name.
type Params map[string]any

// Object is a resource object returned by lookup. It exposes at least an
// "id" field.
type Object map[string]any

// ID returns the object's identifier field as a string, or "" when absent.
func (o Object) ID() string {
	return formatID(o["id"])
}

// Field pairs an object field name with its human-readable display name.
type Field struct {
	Name    string
	Display string
}

// LookupService finds at most one object matching the given query
// parameters. A nil Object with a nil error means no match; "single match"
// semantics, including any ambiguity policy, belong to the implementation.
type LookupService interface {
	FindSingle(ctx context.Context, resource string, params Params) (Object, error)
}

// Handle addresses a resource collection on the API.
type Handle interface {
	// Nested returns the handle for a child collection under one member of
	// this collection, e.g. networks -> networks/5/supernets.
	Nested(id, child string) Handle

	// URI returns the collection's address, for display and logging.
	URI() string
}

// HandleRegistry maps a resource-type name to its collection handle. This is
// a capability of the API transport; nothing here hardcodes the resource
// hierarchy.
type HandleRegistry interface {
	Collection(resource string) (Handle, error)
}

// ListingService performs the final retrieval and output for a composed
// collection handle. Its errors propagate to the caller unchanged.
type ListingService interface {
	List(ctx context.Context, h Handle, params Params, fields []Field) error
}

// Hierarchy is the parent/child relationship for one nested listing.
// ParentID may be empty; it is filled in lazily by natural-key resolution
// during dispatch. A Hierarchy lives for a single invocation.
type Hierarchy struct {
	Parent   string
	ParentID string
	Child    string
}

// NaturalKey resolves an object reference without an identifier to its
// canonical identifier by delegating to the lookup service. A missing object
// and an object without an identifier fail the same way, with a UsageError
// naming the resource.
func NaturalKey(ctx context.Context, lookup LookupService, params Params, resourceName string) (string, error) {
	obj, err := lookup.FindSingle(ctx, resourceName, params)
	if err != nil {
		return "", err
	}

	var resourceID string
	if obj != nil {
		resourceID = obj.ID()
	}
	if resourceID == "" {
		return "", errs.Usagef("no matching %s found; try lookup using option %q / %q", resourceName, "-i", "--id")
	}
	return resourceID, nil
}

// NestedRequest carries everything one nested listing needs.
type NestedRequest struct {
	ParentParams Params
	OwnParams    Params
	Hierarchy    Hierarchy
	Registry     HandleRegistry
	Lookup       LookupService
	Listing      ListingService
	Fields       []Field
}

// Dispatch composes a nested collection handle from the request's hierarchy
// and invokes the listing service on it.
//
// Parent params are merged first and own params overlaid, so own params win
// on collision. The parent identifier is extracted from the merged map; when
// absent it is resolved by natural key using the merged params, and that
// failure propagates unchanged. The composed handle addresses parent
// collection -> parent id -> child collection, regardless of how the
// resource hierarchy is configured elsewhere.
func Dispatch(ctx context.Context, req NestedRequest) error {
	merged := make(Params, len(req.ParentParams)+len(req.OwnParams))
	for k, v := range req.ParentParams {
		merged[k] = v
	}
	for k, v := range req.OwnParams {
		merged[k] = v
	}

	h := req.Hierarchy
	if h.ParentID == "" {
		h.ParentID = formatID(merged["id"])
	}
	delete(merged, "id")

	if h.ParentID == "" {
		id, err := NaturalKey(ctx, req.Lookup, merged, h.Parent)
		if err != nil {
			return err
		}
		h.ParentID = id
	}

	parent, err := req.Registry.Collection(h.Parent)
	if err != nil {
		return err
	}
	child := parent.Nested(h.ParentID, h.Child)

	return req.Listing.List(ctx, child, merged, req.Fields)
}

// formatID renders an identifier value as a string. JSON decoding hands back
// float64 for numeric ids; integral floats render without a fraction.
func formatID(v any) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return t
	case float64:
		if t == float64(int64(t)) {
			return fmt.Sprintf("%d", int64(t))
		}
		return fmt.Sprint(t)
	default:
		return fmt.Sprint(t)
	}
}
