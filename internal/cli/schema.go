package cli

import (
	"encoding/json"
	"fmt"
	"os"
	"reflect"

	"github.com/invopop/jsonschema"
	"github.com/spf13/cobra"

	"github.com/tsawler/pdfoutline/model"
)

// ResultSchema returns the JSON schema of the document record
func ResultSchema() *jsonschema.Schema {
	reflector := &jsonschema.Reflector{
		AllowAdditionalProperties: false,
		Mapper: func(t reflect.Type) *jsonschema.Schema {
			if t == reflect.TypeOf(model.Level(0)) {
				return &jsonschema.Schema{
					Type: "string",
					Enum: []any{model.LevelH1.String(), model.LevelH2.String(), model.LevelH3.String()},
				}
			}
			return nil
		},
	}

	schema := reflector.Reflect(&model.Result{})
	schema.Title = "pdfoutline document record"

	// the title is null when no block qualified
	if info, ok := schema.Definitions["DocumentInfo"]; ok {
		if title, ok := info.Properties.Get("title"); ok {
			title.Type = ""
			title.OneOf = []*jsonschema.Schema{{Type: "string"}, {Type: "null"}}
		}
	}
	return schema
}

func newSchemaCommand() *cobra.Command {
	var outFile string

	cmd := &cobra.Command{
		Use:   "schema",
		Short: "Print the JSON schema of the document record",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			data, err := json.MarshalIndent(ResultSchema(), "", "  ")
			if err != nil {
				return fmt.Errorf("marshal schema: %w", err)
			}
			data = append(data, '\n')
			if outFile == "" {
				_, err = cmd.OutOrStdout().Write(data)
				return err
			}
			if err := os.WriteFile(outFile, data, 0o644); err != nil {
				return fmt.Errorf("write schema: %w", err)
			}
			return nil
		},
	}
	cmd.Flags().StringVarP(&outFile, "output", "o", "", "write the schema to this file instead of stdout")
	return cmd
}
