package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/dmar42/nsot/internal/api"
	"github.com/dmar42/nsot/internal/errs"
	"github.com/dmar42/nsot/internal/resolve"
)

var siteFields = []resolve.Field{
	{Name: "id", Display: "ID"},
	{Name: "name", Display: "Name"},
	{Name: "description", Display: "Description"},
}

func newSitesCommand(inv *Invocation) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "sites",
		Short: "Work with site objects",
		Long: `Site objects.

A site is a unique namespace holding its own devices, networks, and
attribute definitions. Sites are not scoped under other sites.`,
	}
	cmd.AddCommand(newSitesAddCommand(inv), newSitesListCommand(inv))
	return cmd
}

func newSitesAddCommand(inv *Invocation) *cobra.Command {
	var (
		name        string
		description string
	)
	cmd := &cobra.Command{
		Use:   "add",
		Short: "Add a new site",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if name == "" {
				return errs.Usagef("missing option %q / %q", "-n", "--name")
			}
			// Sites are top level; the registry's site scope is unused here.
			h, err := inv.Registry("").Collection("sites")
			if err != nil {
				return err
			}
			payload := map[string]any{
				"name":        name,
				"description": description,
			}
			if err := h.(*api.Collection).Create(cmd.Context(), payload); err != nil {
				return err
			}
			fmt.Fprintf(inv.Out, "Added site %s.\n", name)
			return nil
		},
	}

	cmd.Flags().StringVarP(&name, "name", "n", "", "The name of the site  [required]")
	cmd.Flags().StringVarP(&description, "description", "d", "", "A helpful description of the site")
	return cmd
}

func newSitesListCommand(inv *Invocation) *cobra.Command {
	var (
		id   string
		name string
	)
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List sites",
		RunE: func(cmd *cobra.Command, args []string) error {
			p := resolve.Params{}
			if id != "" {
				p["id"] = id
			}
			if name != "" {
				p["name"] = name
			}
			h, err := inv.Registry("").Collection("sites")
			if err != nil {
				return err
			}
			return inv.Lister().List(cmd.Context(), h, p, siteFields)
		},
	}

	cmd.Flags().StringVarP(&id, "id", "i", "", "Unique ID of the site")
	cmd.Flags().StringVarP(&name, "name", "n", "", "Filter by site name")
	return cmd
}
