package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"modelkit.io/modelkit"
	"modelkit.io/modelkit/schema"
	"modelkit.io/modelkit/schemafile"
	"modelkit.io/modelkit/utils"
)

type rootOptions struct {
	schemaPath string
	configPath string
	noColor    bool
}

func newRootCmd() *cobra.Command {
	opts := &rootOptions{}

	rootCmd := &cobra.Command{
		Use:   "modelkit",
		Short: "Inspect model schemas and convert records between wire and row form",
		Long: `modelkit loads model and table declarations from a YAML schema file and
converts JSON records between their wire form, their row form and other model types.`,
		SilenceUsage: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			if opts.noColor || utils.CheckTruth(os.Getenv("MODELKIT_NO_COLOR")) {
				color.NoColor = true
			}
		},
	}

	flags := rootCmd.PersistentFlags()
	flags.StringVarP(&opts.schemaPath, "schema", "s", "schema.yaml", "Schema file declaring the model types")
	flags.StringVarP(&opts.configPath, "config", "c", "", "Config file (default ./modelkit.yaml)")
	flags.BoolVar(&opts.noColor, "no-color", false, "Disable colored output")

	rootCmd.AddCommand(newVersionCmd())
	rootCmd.AddCommand(newInspectCmd(opts))
	rootCmd.AddCommand(newToRowCmd(opts))
	rootCmd.AddCommand(newToWireCmd(opts))
	rootCmd.AddCommand(newAdaptCmd(opts))
	return rootCmd
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Show version information",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "modelkit version: %s\n", Version)
			fmt.Fprintf(cmd.OutOrStdout(), "Git commit: %s\n", GitCommit)
		},
	}
}

// loadRegistry builds a registry from the config file and defines every schema type in it
func (opts *rootOptions) loadRegistry() (*schema.Registry, error) {
	config, _, err := modelkit.LoadConfig(opts.configPath)
	if err != nil {
		return nil, err
	}

	file, err := schemafile.Load(opts.schemaPath)
	if err != nil {
		return nil, err
	}

	reg := modelkit.New(config)
	if err := file.Build(reg); err != nil {
		return nil, err
	}
	return reg, nil
}

func lookupType(reg *schema.Registry, name string) (*schema.ModelType, error) {
	if name == "" {
		return nil, fmt.Errorf("a type name is required")
	}
	mt, ok := reg.Lookup(name)
	if !ok {
		return nil, fmt.Errorf("unknown type %q", name)
	}
	return mt, nil
}

func lookupTable(reg *schema.Registry, name string) (*schema.TableType, error) {
	if _, err := lookupType(reg, name); err != nil {
		return nil, err
	}
	table, ok := reg.Table(name)
	if !ok {
		return nil, fmt.Errorf("type %q is not a table", name)
	}
	return table, nil
}

// readObject decodes one JSON object, numbers are kept as json.Number
func readObject(r io.Reader) (map[string]interface{}, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}

	var object map[string]interface{}
	decoder := json.NewDecoder(bytes.NewReader(data))
	decoder.UseNumber()
	if err := decoder.Decode(&object); err != nil {
		return nil, fmt.Errorf("invalid JSON input: %w", err)
	}
	return object, nil
}

func writeJSON(w io.Writer, value interface{}) error {
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(value)
}
