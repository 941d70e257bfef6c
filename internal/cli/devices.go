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

var deviceFields = []resolve.Field{
	{Name: "id", Display: "ID"},
	{Name: "hostname", Display: "Hostname"},
	{Name: "attributes", Display: "Attributes"},
}

var interfaceFields = []resolve.Field{
	{Name: "id", Display: "ID"},
	{Name: "name", Display: "Name"},
	{Name: "mac_address", Display: "MAC"},
	{Name: "attributes", Display: "Attributes"},
}

func newDevicesCommand(inv *Invocation) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "devices",
		Short: "Work with device objects",
		Long: `Device objects.

A device represents hardware on your network such as routers, switches,
console servers, PDUs, and servers. Devices support arbitrary attributes.`,
	}
	cmd.AddCommand(
		newDevicesAddCommand(inv),
		newDevicesListCommand(inv),
		newDevicesRemoveCommand(inv),
		newDevicesUpdateCommand(inv),
	)
	return cmd
}

func newDevicesRemoveCommand(inv *Invocation) *cobra.Command {
	var (
		id     string
		siteID string
	)
	cmd := &cobra.Command{
		Use:   "remove",
		Short: "Remove a device",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runRemove(cmd.Context(), inv, "devices", id, siteID)
		},
	}
	cmd.Flags().StringVarP(&id, "id", "i", "", "Unique ID of the device being deleted  [required]")
	cmd.Flags().StringVarP(&siteID, "site-id", "s", "", "Unique ID of the site this device is under  [required]")
	return cmd
}

func newDevicesUpdateCommand(inv *Invocation) *cobra.Command {
	var (
		attrValues   []string
		hostname     string
		id           string
		siteID       string
		addAttrs     bool
		deleteAttrs  bool
		replaceAttrs bool
	)
	cmd := &cobra.Command{
		Use:   "update",
		Short: "Update a device",
		Long: `Update a device.

The device is identified by -i/--id, or by -H/--hostname when no ID is
given. With an ID, -H/--hostname sets a new hostname instead.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runUpdate(cmd.Context(), inv, updateRequest{
				resource:   "devices",
				keyField:   "hostname",
				keyShort:   "-H",
				keyLong:    "--hostname",
				keyValue:   hostname,
				id:         id,
				siteID:     siteID,
				attrValues: attrValues,
				action:     attrAction(deleteAttrs, replaceAttrs),
			})
		},
	}
	cmd.Flags().StringArrayVarP(&attrValues, "attributes", "a", nil, "A key/value pair attached to this device (format: key=value)")
	cmd.Flags().StringVarP(&hostname, "hostname", "H", "", "The hostname of the device")
	cmd.Flags().StringVarP(&id, "id", "i", "", "Unique ID of the device being updated")
	cmd.Flags().StringVarP(&siteID, "site-id", "s", "", "Unique ID of the site this device is under  [required]")
	cmd.Flags().BoolVarP(&addAttrs, "add-attributes", "A", false, "Add or update the given attributes (the default action)")
	cmd.Flags().BoolVarP(&deleteAttrs, "delete-attributes", "d", false, "Delete the given attributes instead of updating them")
	cmd.Flags().BoolVarP(&replaceAttrs, "replace-attributes", "r", false, "Replace all attributes with the given ones")
	return cmd
}

func newDevicesAddCommand(inv *Invocation) *cobra.Command {
	var (
		attrValues []string
		bulkPath   string
		hostname   string
		siteID     string
	)
	cmd := &cobra.Command{
		Use:   "add",
		Short: "Add a new device",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			site, err := inv.SiteID(siteID)
			if err != nil {
				return err
			}
			h, err := inv.Registry(site).Collection("devices")
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

				records, err := bulk.Load(f, bulk.DefaultDelimiter, "devices", inv.Log)
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
				fmt.Fprintf(inv.Out, "Added %d devices from %s.\n", len(payload), bulkPath)
				return nil
			}

			if hostname == "" {
				return errs.Usagef("missing option %q / %q", "-H", "--hostname")
			}
			attrs, err := attr.Parse(attrValues, inv.Log)
			if err != nil {
				return err
			}
			inv.Logger.Debug("parsed attributes", "count", len(attrs))

			payload := map[string]any{
				"hostname":   hostname,
				"attributes": attrs,
			}
			if err := col.Create(ctx, payload); err != nil {
				return err
			}
			fmt.Fprintf(inv.Out, "Added device %s.\n", hostname)
			return nil
		},
	}

	cmd.Flags().StringArrayVarP(&attrValues, "attributes", "a", nil, "A key/value pair attached to this device (format: key=value)")
	cmd.Flags().StringVarP(&bulkPath, "bulk-add", "b", "", "Bulk add devices from the specified colon-delimited file")
	cmd.Flags().StringVarP(&hostname, "hostname", "H", "", "The hostname of the device  [required]")
	cmd.Flags().StringVarP(&siteID, "site-id", "s", "", "Unique ID of the site this device is under  [required]")
	return cmd
}

func newDevicesListCommand(inv *Invocation) *cobra.Command {
	var (
		attrFilters []string
		id          string
		hostname    string
		siteID      string
		delimited   bool
		limit       string
		offset      string
		query       string
	)
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List devices",
	}

	// Flags are persistent so they can also drive nested subcommands, e.g.
	// `devices list -H gw1-sfo interfaces`.
	pf := cmd.PersistentFlags()
	pf.StringArrayVarP(&attrFilters, "attributes", "a", nil, "Filter devices by matching attributes (format: key=value)")
	pf.StringVarP(&id, "id", "i", "", "Unique ID of the device")
	pf.StringVarP(&hostname, "hostname", "H", "", "Filter by hostname")
	pf.StringVarP(&siteID, "site-id", "s", "", "Unique ID of the site  [required]")
	pf.BoolVarP(&delimited, "delimited", "d", false, "Print query results comma-delimited instead of one per line")
	pf.StringVarP(&limit, "limit", "l", "", "Limit the result to N devices")
	// The root output flag owns the -o shorthand, so offset has no short
	// form here.
	pf.StringVar(&offset, "offset", "", "Skip the first N devices")
	pf.StringVarP(&query, "query", "q", "", "Perform a set query using attributes and print matching hostnames")

	params := func() (resolve.Params, string, error) {
		site, err := inv.SiteID(siteID)
		if err != nil {
			return nil, "", err
		}
		p := resolve.Params{}
		if id != "" {
			p["id"] = id
		}
		if hostname != "" {
			p["hostname"] = hostname
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
			return runQuery(cmd.Context(), inv, "devices", "hostname", query, limit, offset, site, delimited)
		}
		h, err := inv.Registry(site).Collection("devices")
		if err != nil {
			return err
		}
		return inv.Lister().List(cmd.Context(), h, p, deviceFields)
	}

	cmd.AddCommand(newNestedListCommand(inv, "devices", "interfaces", params, interfaceFields))
	return cmd
}
