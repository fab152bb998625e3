package main

import (
	"io"

	"github.com/spf13/cobra"

	"github.com/wippyai/bitpack/schema"
	"github.com/wippyai/bitpack/witimport"
)

func newImportWITCommand(stdout io.Writer) *cobra.Command {
	var (
		witFile string
		output  string
		opts    witimport.Options
	)
	cmd := &cobra.Command{
		Use:   "import-wit",
		Short: "Convert WIT type definitions to a schema",
		Long: `
Reads the JSON form of a WIT package, as printed by
'wasm-tools component wit --json', and writes a schema declaring its
records, enums and flags. The schema format follows the output file's
extension; YAML is written to stdout.
`,
		Args: cobra.NoArgs,
		RunE: func(c *cobra.Command, args []string) error {
			doc, err := witimport.LoadFile(witFile, opts)
			if err != nil {
				return err
			}
			format, ok := schema.FormatOf(output)
			if !ok {
				format = schema.FormatYAML
			}
			data, err := schema.Encode(doc, format)
			if err != nil {
				return err
			}
			return writeOutput(stdout, output, data)
		},
	}
	flags := cmd.Flags()
	flags.StringVarP(&witFile, "wit", "w", "", "WIT JSON file")
	flags.StringVarP(&output, "output", "o", "", "output schema file, stdout when empty")
	flags.StringVar(&opts.Package, "package", "", "package name recorded in the schema")
	flags.BoolVar(&opts.SkipUnsupported, "skip-unsupported", false, "skip types that cannot be bit-packed instead of failing")
	_ = cmd.MarkFlagRequired("wit")
	return cmd
}
