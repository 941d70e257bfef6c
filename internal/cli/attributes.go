package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/dmar42/nsot/internal/api"
	"github.com/dmar42/nsot/internal/attr"
	"github.com/dmar42/nsot/internal/errs"
	"github.com/dmar42/nsot/internal/resolve"
)

// constraintFields are attribute schema fields the API expects grouped
// under a "constraints" key rather than at the top level.
var constraintFields = []string{"allow_empty", "multi", "pattern", "valid_values"}

var attributeFields = []resolve.Field{
	{Name: "id", Display: "ID"},
	{Name: "name", Display: "Name"},
	{Name: "resource_name", Display: "Resource"},
	{Name: "required", Display: "Required?"},
}

func newAttributesCommand(inv *Invocation) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "attributes",
		Short: "Work with attribute definitions",
		Long: `Attribute definitions.

An attribute is a free-form key/value pair that may be attached to other
resources such as devices and networks. Attributes must be defined before
values may be assigned.`,
	}
	cmd.AddCommand(newAttributesAddCommand(inv), newAttributesListCommand(inv))
	return cmd
}

func newAttributesAddCommand(inv *Invocation) *cobra.Command {
	var (
		name         string
		resourceName string
		description  string
		required     bool
		allowEmpty   bool
		multi        bool
		pattern      string
		validValues  []string
		siteID       string
	)
	cmd := &cobra.Command{
		Use:   "add",
		Short: "Add a new attribute definition",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			site, err := inv.SiteID(siteID)
			if err != nil {
				return err
			}
			if name == "" {
				return errs.Usagef("missing option %q / %q", "-n", "--name")
			}
			if resourceName == "" {
				return errs.Usagef("missing option %q / %q", "-r", "--resource-name")
			}

			record := map[string]any{
				"name":          name,
				"resource_name": titleCase(resourceName),
				"description":   description,
				"required":      required,
				"allow_empty":   allowEmpty,
				"multi":         multi,
			}
			if pattern != "" {
				record["pattern"] = pattern
			}
			if len(validValues) > 0 {
				record["valid_values"] = validValues
			}
			attr.Apply(record, constraintFields)

			h, err := inv.Registry(site).Collection("attributes")
			if err != nil {
				return err
			}
			if err := h.(*api.Collection).Create(cmd.Context(), record); err != nil {
				return err
			}
			fmt.Fprintf(inv.Out, "Added attribute %s.\n", name)
			return nil
		},
	}

	cmd.Flags().StringVarP(&name, "name", "n", "", "The name of the attribute  [required]")
	cmd.Flags().StringVarP(&resourceName, "resource-name", "r", "", "The resource type this attribute is for (e.g. Device)  [required]")
	cmd.Flags().StringVarP(&description, "description", "d", "", "A helpful description of the attribute")
	cmd.Flags().BoolVar(&required, "required", false, "Whether this attribute is required")
	cmd.Flags().BoolVar(&allowEmpty, "allow-empty", false, "Constraint: whether to allow empty values")
	cmd.Flags().BoolVar(&multi, "multi", false, "Constraint: whether to allow multiple values")
	cmd.Flags().StringVar(&pattern, "pattern", "", "Constraint: a regex pattern values must match")
	cmd.Flags().StringArrayVar(&validValues, "valid-values", nil, "Constraint: a valid value (repeatable)")
	cmd.Flags().StringVarP(&siteID, "site-id", "s", "", "Unique ID of the site this attribute is under  [required]")
	return cmd
}

func newAttributesListCommand(inv *Invocation) *cobra.Command {
	var (
		id           string
		name         string
		resourceName string
		siteID       string
	)
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List attribute definitions",
		RunE: func(cmd *cobra.Command, args []string) error {
			site, err := inv.SiteID(siteID)
			if err != nil {
				return err
			}
			p := resolve.Params{}
			if id != "" {
				p["id"] = id
			}
			if name != "" {
				p["name"] = name
			}
			if resourceName != "" {
				p["resource_name"] = titleCase(resourceName)
			}
			h, err := inv.Registry(site).Collection("attributes")
			if err != nil {
				return err
			}
			return inv.Lister().List(cmd.Context(), h, p, attributeFields)
		},
	}

	cmd.Flags().StringVarP(&id, "id", "i", "", "Unique ID of the attribute")
	cmd.Flags().StringVarP(&name, "name", "n", "", "Filter by attribute name")
	cmd.Flags().StringVarP(&resourceName, "resource-name", "r", "", "Filter by resource type")
	cmd.Flags().StringVarP(&siteID, "site-id", "s", "", "Unique ID of the site  [required]")
	return cmd
}

// titleCase normalizes a resource-type name the way the API stores it, e.g.
// "device" -> "Device".
func titleCase(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + strings.ToLower(s[1:])
}
