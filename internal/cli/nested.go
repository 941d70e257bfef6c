package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/dmar42/nsot/internal/api"
	"github.com/dmar42/nsot/internal/resolve"
)

// paramsFunc gathers a parent list command's flag values into lookup
// parameters plus the effective site.
type paramsFunc func() (resolve.Params, string, error)

// newNestedListCommand maps a list subcommand onto the nested API resource
// under its parent. For example
//
//	nsot networks list -s 1 -c 10.0.0.0/8 supernets
//
// addresses the supernets collection of the one network matching the list
// flags, resolving the network by natural key when -i/--id was not given.
func newNestedListCommand(inv *Invocation, parent, child string, parentParams paramsFunc, fields []resolve.Field) *cobra.Command {
	return &cobra.Command{
		Use:   child,
		Short: fmt.Sprintf("List %s of the matching %s entry", child, parent),
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			params, site, err := parentParams()
			if err != nil {
				return err
			}
			reg := inv.Registry(site)
			return resolve.Dispatch(cmd.Context(), resolve.NestedRequest{
				ParentParams: params,
				OwnParams:    resolve.Params{},
				Hierarchy:    resolve.Hierarchy{Parent: parent, Child: child},
				Registry:     reg,
				Lookup:       &api.Lookup{Registry: reg},
				Listing:      inv.Lister(),
				Fields:       fields,
			})
		},
	}
}
