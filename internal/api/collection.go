package api

import (
	"context"
	"fmt"
	"net/url"
	"sort"
	"strconv"

	"github.com/dmar42/nsot/internal/attr"
	"github.com/dmar42/nsot/internal/errs"
	"github.com/dmar42/nsot/internal/resolve"
)

// knownResources are the site-scoped resource types the API serves.
var knownResources = map[string]struct{}{
	"attributes": {},
	"devices":    {},
	"interfaces": {},
	"networks":   {},
}

// Collection addresses one resource collection, e.g. /sites/1/networks/.
type Collection struct {
	client *Client
	path   string
}

var _ resolve.Handle = (*Collection)(nil)

// Nested returns the child collection under one member of this collection,
// e.g. networks -> /sites/1/networks/5/supernets/.
func (c *Collection) Nested(id, child string) resolve.Handle {
	return &Collection{
		client: c.client,
		path:   c.path + id + "/" + child + "/",
	}
}

// URI returns the collection's full address.
func (c *Collection) URI() string {
	return c.client.baseURL + c.path
}

// Fetch retrieves the collection's members matching the given parameters.
func (c *Collection) Fetch(ctx context.Context, params resolve.Params) ([]resolve.Object, error) {
	var objs []resolve.Object
	if err := c.client.get(ctx, c.path, queryValues(params), &objs); err != nil {
		return nil, fmt.Errorf("fetching %s: %w", c.URI(), err)
	}
	return objs, nil
}

// Create posts a new member (or, for bulk payloads, a list of members) to
// the collection.
func (c *Collection) Create(ctx context.Context, payload any) error {
	if err := c.client.post(ctx, c.path, payload, nil); err != nil {
		return fmt.Errorf("creating in %s: %w", c.URI(), err)
	}
	return nil
}

// Get retrieves the single member with the given identifier.
func (c *Collection) Get(ctx context.Context, id string) (resolve.Object, error) {
	var obj resolve.Object
	if err := c.client.get(ctx, c.path+id+"/", nil, &obj); err != nil {
		return nil, fmt.Errorf("fetching %s%s/: %w", c.URI(), id, err)
	}
	return obj, nil
}

// Update replaces the member with the given identifier.
func (c *Collection) Update(ctx context.Context, id string, payload any) error {
	if err := c.client.put(ctx, c.path+id+"/", payload, nil); err != nil {
		return fmt.Errorf("updating %s%s/: %w", c.URI(), id, err)
	}
	return nil
}

// Delete removes the member with the given identifier.
func (c *Collection) Delete(ctx context.Context, id string) error {
	if err := c.client.delete(ctx, c.path+id+"/"); err != nil {
		return fmt.Errorf("deleting %s%s/: %w", c.URI(), id, err)
	}
	return nil
}

// Query runs a set query against the collection's query endpoint and
// returns the matching members.
func (c *Collection) Query(ctx context.Context, params resolve.Params) ([]resolve.Object, error) {
	var objs []resolve.Object
	if err := c.client.get(ctx, c.path+"query/", queryValues(params), &objs); err != nil {
		return nil, fmt.Errorf("querying %s: %w", c.URI(), err)
	}
	return objs, nil
}

// Registry maps resource-type names to collection handles, scoped to one
// site. It implements resolve.HandleRegistry.
type Registry struct {
	client *Client
	siteID string
}

var _ resolve.HandleRegistry = (*Registry)(nil)

// NewRegistry returns a registry rooted at the given site.
func NewRegistry(client *Client, siteID string) *Registry {
	return &Registry{client: client, siteID: siteID}
}

// Collection returns the handle for a resource-type name. Sites live at the
// top level; every other known resource is addressed under the registry's
// site.
func (r *Registry) Collection(resource string) (resolve.Handle, error) {
	if resource == "sites" {
		return &Collection{client: r.client, path: "/sites/"}, nil
	}
	if _, ok := knownResources[resource]; !ok {
		return nil, errs.Usagef("unknown resource type: %s", resource)
	}
	return &Collection{
		client: r.client,
		path:   "/sites/" + r.siteID + "/" + resource + "/",
	}, nil
}

// queryValues flattens request parameters into URL query values. Attribute
// maps become repeated attributes=key=value entries, sorted for stable
// URLs; nil values are dropped.
func queryValues(params resolve.Params) url.Values {
	q := url.Values{}
	for k, v := range params {
		switch t := v.(type) {
		case nil:
			continue
		case attr.Map:
			keys := make([]string, 0, len(t))
			for ak := range t {
				keys = append(keys, ak)
			}
			sort.Strings(keys)
			for _, ak := range keys {
				q.Add(k, ak+"="+t[ak])
			}
		case bool:
			q.Set(k, strconv.FormatBool(t))
		default:
			q.Set(k, attr.Stringify(v))
		}
	}
	return q
}
