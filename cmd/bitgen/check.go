package main

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/wippyai/bitpack/layout"
)

func newCheckCommand(global *globalFlags, stdout io.Writer) *cobra.Command {
	var path string
	cmd := &cobra.Command{
		Use:   "check",
		Short: "Validate a schema without generating code",
		Args:  cobra.NoArgs,
		RunE: func(c *cobra.Command, args []string) error {
			s, err := loadSchema(path)
			if err != nil {
				return err
			}
			v := layout.NewValidator(global.layout())
			if err := v.Schema(s); err != nil {
				return err
			}
			for _, r := range s.Records {
				info, err := v.Calculator().Record(r)
				if err != nil {
					return err
				}
				fmt.Fprintf(stdout, "%-24s %3d of %3d bits, %d spare\n", r.Name, info.Bits, r.Storage.Bits(), info.UnusedBits())
			}
			fmt.Fprintf(stdout, "%s: %d enums, %d records ok\n", path, len(s.Enums), len(s.Records))
			return nil
		},
	}
	cmd.Flags().StringVarP(&path, "schema", "s", "", "schema file (.toml, .yaml or .json)")
	return cmd
}
