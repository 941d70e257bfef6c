package resolve

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmar42/nsot/internal/errs"
)

// stubLookup implements LookupService for tests.
type stubLookup struct {
	obj       Object
	err       error
	calls     int
	gotName   string
	gotParams Params
}

func (s *stubLookup) FindSingle(ctx context.Context, resource string, params Params) (Object, error) {
	s.calls++
	s.gotName = resource
	s.gotParams = params
	return s.obj, s.err
}

// stubHandle records the composed collection address.
type stubHandle struct {
	path string
}

func (h stubHandle) Nested(id, child string) Handle {
	return stubHandle{path: h.path + id + "/" + child + "/"}
}

func (h stubHandle) URI() string { return h.path }

// stubRegistry hands out path-composing handles per resource name.
type stubRegistry struct {
	err error
}

func (r stubRegistry) Collection(resource string) (Handle, error) {
	if r.err != nil {
		return nil, r.err
	}
	return stubHandle{path: "/" + resource + "/"}, nil
}

// stubListing captures the final listing call.
type stubListing struct {
	err       error
	calls     int
	gotURI    string
	gotParams Params
	gotFields []Field
}

func (s *stubListing) List(ctx context.Context, h Handle, params Params, fields []Field) error {
	s.calls++
	s.gotURI = h.URI()
	s.gotParams = params
	s.gotFields = fields
	return s.err
}

func TestNaturalKey_Match(t *testing.T) {
	lookup := &stubLookup{obj: Object{"id": float64(5), "cidr": "10.0.0.0/8"}}

	id, err := NaturalKey(context.Background(), lookup, Params{"cidr": "10.0.0.0/8"}, "networks")
	require.NoError(t, err)
	assert.Equal(t, "5", id)
	assert.Equal(t, "networks", lookup.gotName)
	assert.Equal(t, Params{"cidr": "10.0.0.0/8"}, lookup.gotParams)
}

func TestNaturalKey_NoMatch(t *testing.T) {
	lookup := &stubLookup{obj: nil}

	_, err := NaturalKey(context.Background(), lookup, Params{"cidr": "10.0.0.0/8"}, "networks")
	require.Error(t, err)
	assert.True(t, errs.IsUsage(err))
	assert.Contains(t, err.Error(), "no matching networks found")
	assert.Contains(t, err.Error(), `"--id"`)
}

func TestNaturalKey_ObjectWithoutID(t *testing.T) {
	// An object without an identifier fails the same way as no object.
	lookup := &stubLookup{obj: Object{"cidr": "10.0.0.0/8"}}

	_, err := NaturalKey(context.Background(), lookup, Params{}, "networks")
	require.Error(t, err)
	assert.True(t, errs.IsUsage(err))
}

func TestNaturalKey_LookupErrorPropagates(t *testing.T) {
	boom := errors.New("connection refused")
	lookup := &stubLookup{err: boom}

	_, err := NaturalKey(context.Background(), lookup, Params{}, "devices")
	assert.ErrorIs(t, err, boom)
}

func TestDispatch_ResolvesParentByNaturalKey(t *testing.T) {
	lookup := &stubLookup{obj: Object{"id": float64(5), "cidr": "10.0.0.0/8"}}
	listing := &stubListing{}

	err := Dispatch(context.Background(), NestedRequest{
		ParentParams: Params{"id": nil, "cidr": "10.0.0.0/8"},
		OwnParams:    Params{},
		Hierarchy:    Hierarchy{Parent: "networks", Child: "supernets"},
		Registry:     stubRegistry{},
		Lookup:       lookup,
		Listing:      listing,
		Fields:       []Field{{Name: "id", Display: "ID"}},
	})
	require.NoError(t, err)

	assert.Equal(t, "/networks/5/supernets/", listing.gotURI)
	assert.Equal(t, 1, lookup.calls)
	// The id key never reaches lookup or listing params.
	assert.NotContains(t, lookup.gotParams, "id")
	assert.NotContains(t, listing.gotParams, "id")
	assert.Equal(t, "10.0.0.0/8", listing.gotParams["cidr"])
	require.Len(t, listing.gotFields, 1)
}

func TestDispatch_ExplicitParentIDSkipsLookup(t *testing.T) {
	lookup := &stubLookup{}
	listing := &stubListing{}

	err := Dispatch(context.Background(), NestedRequest{
		ParentParams: Params{"id": "7"},
		OwnParams:    Params{},
		Hierarchy:    Hierarchy{Parent: "devices", Child: "interfaces"},
		Registry:     stubRegistry{},
		Lookup:       lookup,
		Listing:      listing,
	})
	require.NoError(t, err)

	assert.Equal(t, "/devices/7/interfaces/", listing.gotURI)
	assert.Zero(t, lookup.calls)
}

func TestDispatch_OwnParamsWin(t *testing.T) {
	listing := &stubListing{}

	err := Dispatch(context.Background(), NestedRequest{
		ParentParams: Params{"id": "3", "state": "allocated"},
		OwnParams:    Params{"state": "assigned"},
		Hierarchy:    Hierarchy{Parent: "networks", Child: "subnets"},
		Registry:     stubRegistry{},
		Lookup:       &stubLookup{},
		Listing:      listing,
	})
	require.NoError(t, err)
	assert.Equal(t, "assigned", listing.gotParams["state"])
}

func TestDispatch_PrefilledHierarchyID(t *testing.T) {
	listing := &stubListing{}

	err := Dispatch(context.Background(), NestedRequest{
		ParentParams: Params{"id": "9"},
		Hierarchy:    Hierarchy{Parent: "networks", ParentID: "4", Child: "subnets"},
		Registry:     stubRegistry{},
		Lookup:       &stubLookup{},
		Listing:      listing,
	})
	require.NoError(t, err)

	// A pre-resolved hierarchy wins and the merged id is still dropped.
	assert.Equal(t, "/networks/4/subnets/", listing.gotURI)
	assert.NotContains(t, listing.gotParams, "id")
}

func TestDispatch_ResolutionFailureAbortsBeforeListing(t *testing.T) {
	listing := &stubListing{}

	err := Dispatch(context.Background(), NestedRequest{
		ParentParams: Params{"cidr": "10.0.0.0/8"},
		Hierarchy:    Hierarchy{Parent: "networks", Child: "supernets"},
		Registry:     stubRegistry{},
		Lookup:       &stubLookup{obj: nil},
		Listing:      listing,
	})
	require.Error(t, err)
	assert.True(t, errs.IsUsage(err))
	assert.Zero(t, listing.calls, "listing must not run after failed resolution")
}

func TestDispatch_ListingErrorPropagates(t *testing.T) {
	boom := errors.New("backend exploded")
	err := Dispatch(context.Background(), NestedRequest{
		ParentParams: Params{"id": "1"},
		Hierarchy:    Hierarchy{Parent: "devices", Child: "interfaces"},
		Registry:     stubRegistry{},
		Lookup:       &stubLookup{},
		Listing:      &stubListing{err: boom},
	})
	assert.ErrorIs(t, err, boom)
}

func TestDispatch_RegistryErrorPropagates(t *testing.T) {
	boom := errs.Usagef("unknown resource type: bogus")
	err := Dispatch(context.Background(), NestedRequest{
		ParentParams: Params{"id": "1"},
		Hierarchy:    Hierarchy{Parent: "bogus", Child: "things"},
		Registry:     stubRegistry{err: boom},
		Lookup:       &stubLookup{},
		Listing:      &stubListing{},
	})
	assert.ErrorIs(t, err, boom)
}

func TestObjectID(t *testing.T) {
	tests := []struct {
		name string
		obj  Object
		want string
	}{
		{"numeric", Object{"id": float64(12)}, "12"},
		{"string", Object{"id": "abc"}, "abc"},
		{"missing", Object{}, ""},
		{"nil", Object{"id": nil}, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.obj.ID())
		})
	}
}
