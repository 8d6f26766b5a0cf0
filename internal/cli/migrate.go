package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newMigrateCommand(env *environment) *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Create the metadata schema",
		RunE: func(cmd *cobra.Command, args []string) error {
			md, err := env.openMetadata(cmd.Context())
			if err != nil {
				return err
			}
			defer md.close()

			if err := md.migrate(cmd.Context()); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "schema up to date")
			return nil
		},
	}
}
