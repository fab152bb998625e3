package main

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/wippyai/bitpack/codegen"
	"github.com/wippyai/bitpack/layout"
	"github.com/wippyai/bitpack/schema"
	"github.com/wippyai/bitpack/witimport"
)

const (
	envPrefix         = "BITGEN"
	defaultConfigFile = "bitgen.toml"
)

// globalFlags are shared by every subcommand.
type globalFlags struct {
	logLevel     string
	checkOverlap bool
}

func (g *globalFlags) layout() layout.Options {
	return layout.Options{CheckOverlap: g.checkOverlap}
}

func newRootCommand(stdin io.Reader, stdout, stderr io.Writer) *cobra.Command {
	global := &globalFlags{}
	rc := &cobra.Command{
		Use:   "bitgen",
		Short: "Generate Go accessors for bit-packed records",
		Long: `bitgen reads a schema of bitfield records and bit enums, validates that
every field fits its storage word, and generates Go types with typed
accessors for them.

Flags may also be set in a TOML config file (--config, or ./bitgen.toml when
present) using the flag names as keys, or through BITGEN_* environment
variables, e.g. BITGEN_RUNTIME_IMPORT.`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if err := setAllConfig(viper.New(), cmd); err != nil {
				return err
			}
			l, err := newLogger(global.logLevel, stderr)
			if err != nil {
				return err
			}
			installLogger(l)
			return nil
		},
	}
	pf := rc.PersistentFlags()
	pf.StringP("config", "c", "", "configuration file to read from (TOML)")
	pf.StringVar(&global.logLevel, "log-level", "", "log level (debug, info, warn, error); logging is off when empty")
	pf.BoolVar(&global.checkOverlap, "check-overlap", false, "reject records whose fields share bits")

	rc.AddCommand(newGenerateCommand(global, stdout))
	rc.AddCommand(newCheckCommand(global, stdout))
	rc.AddCommand(newLayoutCommand(global, stdout))
	rc.AddCommand(newExploreCommand(global, stdin, stdout))
	rc.AddCommand(newImportWITCommand(stdout))

	rc.SetIn(stdin)
	rc.SetOut(stdout)
	rc.SetErr(stderr)
	return rc
}

// setAllConfig fills every flag of cmd that was not set on the command line
// from, in order of priority, BITGEN_* environment variables and the config
// file. Environment variable names are the flag names upper-cased with
// dashes replaced by underscores.
func setAllConfig(v *viper.Viper, cmd *cobra.Command) error {
	flags := cmd.Flags()
	if err := v.BindPFlags(flags); err != nil {
		return err
	}
	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	c := v.GetString("config")
	if c == "" {
		if _, err := os.Stat(defaultConfigFile); err == nil {
			c = defaultConfigFile
		}
	}
	if c != "" {
		v.SetConfigFile(c)
		v.SetConfigType("toml")
		if err := v.ReadInConfig(); err != nil {
			return fmt.Errorf("error reading configuration file '%s': %v", c, err)
		}
		known := knownFlags(cmd.Root())
		for _, key := range v.AllKeys() {
			if !known[key] {
				return fmt.Errorf("invalid option in configuration file: %v", key)
			}
		}
	}

	var flagErr error
	flags.VisitAll(func(f *pflag.Flag) {
		if flagErr != nil || f.Changed || !v.IsSet(f.Name) {
			return
		}
		flagErr = f.Value.Set(v.GetString(f.Name))
	})
	return flagErr
}

// knownFlags collects the flag names of every command in the tree. A config
// file is shared by all commands, so a key only one command understands is
// still valid.
func knownFlags(cmd *cobra.Command) map[string]bool {
	known := make(map[string]bool)
	var walk func(*cobra.Command)
	walk = func(c *cobra.Command) {
		c.Flags().VisitAll(func(f *pflag.Flag) { known[f.Name] = true })
		c.PersistentFlags().VisitAll(func(f *pflag.Flag) { known[f.Name] = true })
		for _, sub := range c.Commands() {
			walk(sub)
		}
	}
	walk(cmd)
	return known
}

// newLogger returns a console logger writing to w at level, or a no-op
// logger when level is empty.
func newLogger(level string, w io.Writer) (*zap.Logger, error) {
	if level == "" {
		return zap.NewNop(), nil
	}
	lvl, err := zap.ParseAtomicLevel(level)
	if err != nil {
		return nil, fmt.Errorf("invalid log level %q: %w", level, err)
	}
	enc := zap.NewDevelopmentEncoderConfig()
	enc.TimeKey = ""
	core := zapcore.NewCore(zapcore.NewConsoleEncoder(enc), zapcore.AddSync(w), lvl)
	return zap.New(core), nil
}

func installLogger(l *zap.Logger) {
	schema.SetLogger(l.Named("schema"))
	layout.SetLogger(l.Named("layout"))
	codegen.SetLogger(l.Named("codegen"))
	witimport.SetLogger(l.Named("witimport"))
}

// loadSchema reads and resolves a schema document.
func loadSchema(path string) (*schema.Schema, error) {
	if path == "" {
		return nil, fmt.Errorf("no schema file given, use --schema")
	}
	doc, err := schema.LoadFile(path)
	if err != nil {
		return nil, err
	}
	return schema.Resolve(doc)
}

// writeOutput writes data to path, or to stdout when path is empty or "-".
func writeOutput(stdout io.Writer, path string, data []byte) error {
	if path == "" || path == "-" {
		_, err := stdout.Write(data)
		return err
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	return nil
}
