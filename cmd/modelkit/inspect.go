package main

import (
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"modelkit.io/modelkit/schema"
)

func newInspectCmd(opts *rootOptions) *cobra.Command {
	var typeName string

	cmd := &cobra.Command{
		Use:   "inspect",
		Short: "Print the declared types with their fields and columns",
		RunE: func(cmd *cobra.Command, args []string) error {
			reg, err := opts.loadRegistry()
			if err != nil {
				return err
			}

			types := reg.Types()
			if typeName != "" {
				mt, err := lookupType(reg, typeName)
				if err != nil {
					return err
				}
				types = []*schema.ModelType{mt}
			}

			for idx, mt := range types {
				if idx > 0 {
					fmt.Fprintln(cmd.OutOrStdout())
				}
				table, _ := reg.Table(mt.Name)
				printType(cmd.OutOrStdout(), mt, table)
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&typeName, "type", "t", "", "Only print this type")
	return cmd
}

func printType(w io.Writer, mt *schema.ModelType, table *schema.TableType) {
	bold := color.New(color.Bold, color.FgCyan)
	gray := color.New(color.FgHiBlack)
	yellow := color.New(color.FgYellow)

	bold.Fprint(w, mt.Name)
	if table != nil {
		gray.Fprintf(w, " (table %s, primary key %s)", table.Table, strings.Join(table.PrimaryKeys, ", "))
	}
	fmt.Fprintln(w)

	for _, field := range mt.Fields {
		fmt.Fprintf(w, "  %-20s %-10s", field.Name, field.Kind)

		var notes []string
		switch {
		case field.Ref:
			notes = append(notes, "ref "+field.RefPath.String())
		case field.Transient:
			notes = append(notes, "transient")
		case !mt.IsSerialized(field.Name):
			notes = append(notes, "not serialized")
		case field.SerializedName != field.Name:
			notes = append(notes, "wire "+field.SerializedName)
		}
		if field.Primary {
			notes = append(notes, "primary")
		}
		if field.Object {
			notes = append(notes, "object")
		}
		if table != nil {
			if column, ok := table.ColumnForField(field.Name); ok && column != field.Name {
				notes = append(notes, "column "+column)
			}
		}
		if len(notes) > 0 {
			yellow.Fprint(w, strings.Join(notes, ", "))
		}
		fmt.Fprintln(w)
	}

	if mt.PolymorphicOn != "" {
		keys := make([]string, 0, len(mt.PolymorphicMap))
		for key := range mt.PolymorphicMap {
			keys = append(keys, key)
		}
		sort.Strings(keys)

		gray.Fprintf(w, "  polymorphic on %s:", mt.PolymorphicOn)
		for _, key := range keys {
			gray.Fprintf(w, " %s=%s", key, mt.PolymorphicMap[key].Name)
		}
		fmt.Fprintln(w)
	}
}
