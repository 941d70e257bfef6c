package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/dmar42/nsot/internal/api"
	"github.com/dmar42/nsot/internal/attr"
	"github.com/dmar42/nsot/internal/bulk"
	"github.com/dmar42/nsot/internal/errs"
	"github.com/dmar42/nsot/internal/resolve"
)

var networkFields = []resolve.Field{
	{Name: "id", Display: "ID"},
	{Name: "cidr", Display: "CIDR"},
	{Name: "is_ip", Display: "Is IP?"},
	{Name: "attributes", Display: "Attributes"},
}

func newNetworksCommand(inv *Invocation) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "networks",
		Short: "Work with network objects",
		Long: `Network objects.

A network may be an IP network or an individual IP address, identified by
its CIDR. Networks support arbitrary attributes.`,
	}
	cmd.AddCommand(
		newNetworksAddCommand(inv),
		newNetworksListCommand(inv),
		newNetworksRemoveCommand(inv),
		newNetworksUpdateCommand(inv),
	)
	return cmd
}

func newNetworksRemoveCommand(inv *Invocation) *cobra.Command {
	var (
		id     string
		siteID string
	)
	cmd := &cobra.Command{
		Use:   "remove",
		Short: "Remove a network",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runRemove(cmd.Context(), inv, "networks", id, siteID)
		},
	}
	cmd.Flags().StringVarP(&id, "id", "i", "", "Unique ID of the network being deleted  [required]")
	cmd.Flags().StringVarP(&siteID, "site-id", "s", "", "Unique ID of the site this network is under  [required]")
	return cmd
}

func newNetworksUpdateCommand(inv *Invocation) *cobra.Command {
	var (
		attrValues   []string
		cidr         string
		id           string
		siteID       string
		addAttrs     bool
		deleteAttrs  bool
		replaceAttrs bool
	)
	cmd := &cobra.Command{
		Use:   "update",
		Short: "Update a network",
		Long: `Update a network.

The network is identified by -i/--id, or by -c/--cidr when no ID is
given.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runUpdate(cmd.Context(), inv, updateRequest{
				resource:   "networks",
				keyField:   "cidr",
				keyShort:   "-c",
				keyLong:    "--cidr",
				keyValue:   cidr,
				id:         id,
				siteID:     siteID,
				attrValues: attrValues,
				action:     attrAction(deleteAttrs, replaceAttrs),
			})
		},
	}
	cmd.Flags().StringArrayVarP(&attrValues, "attributes", "a", nil, "A key/value pair attached to this network (format: key=value)")
	cmd.Flags().StringVarP(&cidr, "cidr", "c", "", "A network or IP address in CIDR notation")
	cmd.Flags().StringVarP(&id, "id", "i", "", "Unique ID of the network being updated")
	cmd.Flags().StringVarP(&siteID, "site-id", "s", "", "Unique ID of the site this network is under  [required]")
	cmd.Flags().BoolVarP(&addAttrs, "add-attributes", "A", false, "Add or update the given attributes (the default action)")
	cmd.Flags().BoolVarP(&deleteAttrs, "delete-attributes", "d", false, "Delete the given attributes instead of updating them")
	cmd.Flags().BoolVarP(&replaceAttrs, "replace-attributes", "r", false, "Replace all attributes with the given ones")
	return cmd
}

func newNetworksAddCommand(inv *Invocation) *cobra.Command {
	var (
		attrValues []string
		bulkPath   string
		cidr       string
		siteID     string
	)
	cmd := &cobra.Command{
		Use:   "add",
		Short: "Add a new network",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			site, err := inv.SiteID(siteID)
			if err != nil {
				return err
			}
			h, err := inv.Registry(site).Collection("networks")
			if err != nil {
				return err
			}
			col := h.(*api.Collection)
			ctx := cmd.Context()

			if bulkPath != "" {
				f, err := os.Open(bulkPath)
				if err != nil {
					return fmt.Errorf("opening bulk file: %w", err)
				}
				defer f.Close()

				records, err := bulk.Load(f, bulk.DefaultDelimiter, "networks", inv.Log)
				if err != nil {
					return err
				}
				payload := make([]map[string]any, len(records))
				for i, r := range records {
					payload[i] = r.Fields
				}
				if err := col.Create(ctx, payload); err != nil {
					return err
				}
				fmt.Fprintf(inv.Out, "Added %d networks from %s.\n", len(payload), bulkPath)
				return nil
			}

			if cidr == "" {
				return errs.Usagef("missing option %q / %q", "-c", "--cidr")
			}
			attrs, err := attr.Parse(attrValues, inv.Log)
			if err != nil {
				return err
			}
			payload := map[string]any{
				"cidr":       cidr,
				"attributes": attrs,
			}
			if err := col.Create(ctx, payload); err != nil {
				return err
			}
			fmt.Fprintf(inv.Out, "Added network %s.\n", cidr)
			return nil
		},
	}

	cmd.Flags().StringArrayVarP(&attrValues, "attributes", "a", nil, "A key/value pair attached to this network (format: key=value)")
	cmd.Flags().StringVarP(&bulkPath, "bulk-add", "b", "", "Bulk add networks from the specified colon-delimited file")
	cmd.Flags().StringVarP(&cidr, "cidr", "c", "", "A network or IP address in CIDR notation  [required]")
	cmd.Flags().StringVarP(&siteID, "site-id", "s", "", "Unique ID of the site this network is under  [required]")
	return cmd
}

func newNetworksListCommand(inv *Invocation) *cobra.Command {
	var (
		attrFilters []string
		id          string
		cidr        string
		siteID      string
		includeIPs  bool
		delimited   bool
		limit       string
		offset      string
		query       string
	)
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List networks",
	}

	pf := cmd.PersistentFlags()
	pf.StringArrayVarP(&attrFilters, "attributes", "a", nil, "Filter networks by matching attributes (format: key=value)")
	pf.StringVarP(&id, "id", "i", "", "Unique ID of the network")
	pf.StringVarP(&cidr, "cidr", "c", "", "Filter by CIDR")
	pf.StringVarP(&siteID, "site-id", "s", "", "Unique ID of the site  [required]")
	pf.BoolVar(&includeIPs, "include-ips", false, "Include individual IP addresses in results")
	pf.BoolVarP(&delimited, "delimited", "d", false, "Print query results comma-delimited instead of one per line")
	pf.StringVarP(&limit, "limit", "l", "", "Limit the result to N networks")
	pf.StringVar(&offset, "offset", "", "Skip the first N networks")
	pf.StringVarP(&query, "query", "q", "", "Perform a set query using attributes and print matching CIDRs")

	params := func() (resolve.Params, string, error) {
		site, err := inv.SiteID(siteID)
		if err != nil {
			return nil, "", err
		}
		p := resolve.Params{}
		if id != "" {
			p["id"] = id
		}
		if cidr != "" {
			p["cidr"] = cidr
		}
		if includeIPs {
			p["include_ips"] = true
		}
		if limit != "" {
			p["limit"] = limit
		}
		if offset != "" {
			p["offset"] = offset
		}
		if len(attrFilters) > 0 {
			attrs, err := attr.Parse(attrFilters, inv.Log)
			if err != nil {
				return nil, "", err
			}
			p["attributes"] = attrs
		}
		return p, site, nil
	}

	cmd.RunE = func(cmd *cobra.Command, args []string) error {
		p, site, err := params()
		if err != nil {
			return err
		}
		if query != "" {
			return runQuery(cmd.Context(), inv, "networks", "cidr", query, limit, offset, site, delimited)
		}
		h, err := inv.Registry(site).Collection("networks")
		if err != nil {
			return err
		}
		return inv.Lister().List(cmd.Context(), h, p, networkFields)
	}

	cmd.AddCommand(
		newNestedListCommand(inv, "networks", "supernets", params, networkFields),
		newNestedListCommand(inv, "networks", "subnets", params, networkFields),
	)
	return cmd
}
