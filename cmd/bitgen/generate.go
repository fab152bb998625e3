package main

import (
	"io"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/wippyai/bitpack/codegen"
)

type generateCommand struct {
	global        *globalFlags
	schema        string
	output        string
	pkg           string
	runtimeImport string
}

func newGenerateCommand(global *globalFlags, stdout io.Writer) *cobra.Command {
	gc := &generateCommand{global: global}
	cmd := &cobra.Command{
		Use:   "generate",
		Short: "Generate Go code for a schema",
		Long: `
Loads a schema, validates every record against its storage word and writes
Go source declaring the enums and records in it.
`,
		Args: cobra.NoArgs,
		RunE: func(c *cobra.Command, args []string) error {
			return gc.run(stdout)
		},
	}
	flags := cmd.Flags()
	flags.StringVarP(&gc.schema, "schema", "s", "", "schema file (.toml, .yaml or .json)")
	flags.StringVarP(&gc.output, "output", "o", "", "output file, stdout when empty")
	flags.StringVar(&gc.pkg, "package", "", "Go package name, defaults to the schema's package")
	flags.StringVar(&gc.runtimeImport, "runtime-import", codegen.DefaultRuntimeImport, "import path of the bitpack runtime")
	return cmd
}

func (gc *generateCommand) run(stdout io.Writer) error {
	s, err := loadSchema(gc.schema)
	if err != nil {
		return err
	}
	src, err := codegen.New(codegen.Options{
		Package:       gc.pkg,
		RuntimeImport: gc.runtimeImport,
		Source:        gc.schema,
		Layout:        gc.global.layout(),
	}).Generate(s)
	if err != nil {
		return err
	}
	if err := writeOutput(stdout, gc.output, src); err != nil {
		return err
	}
	codegen.Logger().Info("generated",
		zap.String("schema", gc.schema),
		zap.String("output", gc.output),
		zap.Int("bytes", len(src)))
	return nil
}
