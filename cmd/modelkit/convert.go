package main

import (
	"github.com/spf13/cobra"
	"modelkit.io/modelkit/schema"
)

func newToRowCmd(opts *rootOptions) *cobra.Command {
	var typeName string

	cmd := &cobra.Command{
		Use:   "to-row",
		Short: "Convert a wire JSON object read from stdin into a row",
		RunE: func(cmd *cobra.Command, args []string) error {
			reg, err := opts.loadRegistry()
			if err != nil {
				return err
			}
			table, err := lookupTable(reg, typeName)
			if err != nil {
				return err
			}

			wire, err := readObject(cmd.InOrStdin())
			if err != nil {
				return err
			}
			inst, err := schema.Deserialize(table.ModelType, wire)
			if err != nil {
				return err
			}
			row, err := table.SerializeRow(inst)
			if err != nil {
				return err
			}
			return writeJSON(cmd.OutOrStdout(), row)
		},
	}

	cmd.Flags().StringVarP(&typeName, "type", "t", "", "Table type of the record")
	return cmd
}

func newToWireCmd(opts *rootOptions) *cobra.Command {
	var typeName string

	cmd := &cobra.Command{
		Use:   "to-wire",
		Short: "Convert a row JSON object read from stdin into its wire form",
		RunE: func(cmd *cobra.Command, args []string) error {
			reg, err := opts.loadRegistry()
			if err != nil {
				return err
			}
			table, err := lookupTable(reg, typeName)
			if err != nil {
				return err
			}

			row, err := readObject(cmd.InOrStdin())
			if err != nil {
				return err
			}
			inst, err := table.DeserializeRow(row)
			if err != nil {
				return err
			}
			return writeJSON(cmd.OutOrStdout(), inst)
		},
	}

	cmd.Flags().StringVarP(&typeName, "type", "t", "", "Table type of the record")
	return cmd
}

func newAdaptCmd(opts *rootOptions) *cobra.Command {
	var from, to string

	cmd := &cobra.Command{
		Use:   "adapt",
		Short: "Translate a wire JSON object of one type into another type over their shared fields",
		RunE: func(cmd *cobra.Command, args []string) error {
			reg, err := opts.loadRegistry()
			if err != nil {
				return err
			}
			source, err := lookupType(reg, from)
			if err != nil {
				return err
			}
			target, err := lookupType(reg, to)
			if err != nil {
				return err
			}

			wire, err := readObject(cmd.InOrStdin())
			if err != nil {
				return err
			}
			inst, err := schema.Deserialize(source, wire)
			if err != nil {
				return err
			}
			adapted, err := schema.CreateAdapter(source, target)(inst)
			if err != nil {
				return err
			}
			return writeJSON(cmd.OutOrStdout(), adapted)
		},
	}

	cmd.Flags().StringVar(&from, "from", "", "Type of the input record")
	cmd.Flags().StringVar(&to, "to", "", "Type to adapt the record to")
	return cmd
}
