package cli

import (
	"encoding/json"

	"github.com/spf13/cobra"

	"docserver/internal/catalog"
)

func newSeedCommand(env *environment) *cobra.Command {
	return &cobra.Command{
		Use:   "seed <catalog.yaml>",
		Short: "Create applications, storage nodes and document types from a catalog file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := catalog.Load(args[0])
			if err != nil {
				return err
			}

			md, err := env.openMetadata(cmd.Context())
			if err != nil {
				return err
			}
			defer md.close()

			res, err := catalog.NewSeeder(md.store, env.log, nil).Apply(cmd.Context(), c)
			if err != nil {
				return err
			}

			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			return enc.Encode(res)
		},
	}
}
