package cli

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/dmar42/nsot/internal/api"
	"github.com/dmar42/nsot/internal/attr"
	"github.com/dmar42/nsot/internal/errs"
	"github.com/dmar42/nsot/internal/resolve"
)

// singular is for user-facing messages; resource type names are plain
// plurals.
func singular(resource string) string {
	return strings.TrimSuffix(resource, "s")
}

// attrAction maps the update command's action flags onto a merge action.
// Add is the default, so its flag carries no information.
func attrAction(deleteAttrs, replaceAttrs bool) attr.Action {
	switch {
	case deleteAttrs:
		return attr.ActionDelete
	case replaceAttrs:
		return attr.ActionReplace
	default:
		return attr.ActionAdd
	}
}

// runRemove deletes the one object with the given unique ID.
func runRemove(ctx context.Context, inv *Invocation, resource, id, siteID string) error {
	if id == "" {
		return errs.Usagef("missing option %q / %q", "-i", "--id")
	}
	site, err := inv.SiteID(siteID)
	if err != nil {
		return err
	}
	h, err := inv.Registry(site).Collection(resource)
	if err != nil {
		return err
	}
	if err := h.(*api.Collection).Delete(ctx, id); err != nil {
		return err
	}
	fmt.Fprintf(inv.Out, "Removed %s %s.\n", singular(resource), id)
	return nil
}

// updateRequest carries one update invocation's inputs. KeyValue doubles as
// the natural-key lookup value when ID is empty and as the new field value
// otherwise.
type updateRequest struct {
	resource   string
	keyField   string
	keyShort   string
	keyLong    string
	keyValue   string
	id         string
	siteID     string
	attrValues []string
	action     attr.Action
}

// runUpdate fetches the object, merges its attributes with the parsed
// assignments under the requested action, and writes the result back.
func runUpdate(ctx context.Context, inv *Invocation, req updateRequest) error {
	if len(req.attrValues) == 0 && req.keyValue == "" {
		return errs.Usagef("you must supply at least one of the optional arguments")
	}
	if req.id == "" && req.keyValue == "" {
		return errs.Usagef("you must provide %q / %q when not providing %q / %q",
			req.keyShort, req.keyLong, "-i", "--id")
	}
	site, err := inv.SiteID(req.siteID)
	if err != nil {
		return err
	}
	reg := inv.Registry(site)
	h, err := reg.Collection(req.resource)
	if err != nil {
		return err
	}
	col := h.(*api.Collection)

	id := req.id
	if id == "" {
		id, err = resolve.NaturalKey(ctx, &api.Lookup{Registry: reg},
			resolve.Params{req.keyField: req.keyValue}, req.resource)
		if err != nil {
			return err
		}
	}

	existing, err := col.Get(ctx, id)
	if err != nil {
		return err
	}
	updates, err := attr.Parse(req.attrValues, inv.Log)
	if err != nil {
		return err
	}

	payload := map[string]any{
		"attributes": attr.Merge(attr.Coerce(existing["attributes"]), updates, req.action),
	}
	if req.keyValue != "" {
		payload[req.keyField] = req.keyValue
	} else if v, ok := existing[req.keyField]; ok {
		payload[req.keyField] = v
	}

	if err := col.Update(ctx, id, payload); err != nil {
		return err
	}
	fmt.Fprintf(inv.Out, "Updated %s %s.\n", singular(req.resource), id)
	return nil
}

// runQuery performs a set query and prints the matching objects' natural
// keys, sorted, one per line or comma-joined when delimited.
func runQuery(ctx context.Context, inv *Invocation, resource, keyField, query, limit, offset, site string, delimited bool) error {
	h, err := inv.Registry(site).Collection(resource)
	if err != nil {
		return err
	}
	params := resolve.Params{"query": query}
	if limit != "" {
		params["limit"] = limit
	}
	if offset != "" {
		params["offset"] = offset
	}
	objs, err := h.(*api.Collection).Query(ctx, params)
	if err != nil {
		return err
	}

	keys := make([]string, 0, len(objs))
	for _, o := range objs {
		keys = append(keys, attr.Stringify(o[keyField]))
	}
	sort.Strings(keys)
	joiner := "\n"
	if delimited {
		joiner = ","
	}
	fmt.Fprintln(inv.Out, strings.Join(keys, joiner))
	return nil
}
