package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"
	"text/tabwriter"

	"aura_backend/docparse"
	"aura_backend/export"
	"aura_backend/extraction"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

func newParseCmd(opts *options) *cobra.Command {
	var asJSON, trace bool

	cmd := &cobra.Command{
		Use:   "parse <file>...",
		Short: "Print the fields extracted from each document",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, err := opts.newService()
			if err != nil {
				return err
			}
			docs := parseAll(cmd.Context(), svc, cmd.InOrStdin(), args)

			if asJSON {
				if err := writeJSON(cmd.OutOrStdout(), docs, trace); err != nil {
					return err
				}
			} else {
				for _, doc := range succeeded(docs) {
					writeTable(cmd.OutOrStdout(), doc, trace)
				}
			}
			return reportFailures(cmd.ErrOrStderr(), docs)
		},
	}
	cmd.Flags().BoolVar(&asJSON, "json", false, "print JSON instead of tables")
	cmd.Flags().BoolVar(&trace, "trace", false, "show which strategy produced each field")
	return cmd
}

func newExportCmd(opts *options) *cobra.Command {
	var out string

	cmd := &cobra.Command{
		Use:   "export --out <file.xlsx> <file>...",
		Short: "Write the fields of every document to an XLSX workbook",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, err := opts.newService()
			if err != nil {
				return err
			}
			docs := parseAll(cmd.Context(), svc, cmd.InOrStdin(), args)
			parsed := succeeded(docs)
			if len(parsed) == 0 {
				reportFailures(cmd.ErrOrStderr(), docs)
				return errNothingParsed
			}

			rows := make([]export.Row, len(parsed))
			for i, doc := range parsed {
				rows[i] = export.Row{Filename: doc.Result.Metadata.Filename, Fields: doc.Result.Fields}
			}
			data, err := export.WriteWorkbook(rows)
			if err != nil {
				return err
			}
			if err := os.WriteFile(out, data, 0o644); err != nil {
				return fmt.Errorf("write workbook: %w", err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s wrote %d rows to %s\n", color.GreenString("✓"), len(rows), out)
			return reportFailures(cmd.ErrOrStderr(), docs)
		},
	}
	cmd.Flags().StringVarP(&out, "out", "o", "briefs.xlsx", "workbook path")
	return cmd
}

func newFieldsCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "fields",
		Short: "List the canonical fields and the labels that map to them",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			catalog := extraction.DefaultCatalog()
			if opts.catalogPath != "" {
				var err error
				if catalog, err = extraction.LoadCatalog(opts.catalogPath); err != nil {
					return err
				}
			}

			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "FIELD\tCOLUMN\tLABELS")
			for _, name := range extraction.AllFields() {
				fmt.Fprintf(tw, "%s\t%s\t%s\n", name, export.HeaderFor(name), strings.Join(catalog.Variants(name), ", "))
			}
			return tw.Flush()
		},
	}
}

// writeTable prints one document's fields as an aligned table.
func writeTable(w io.Writer, doc document, trace bool) {
	r := doc.Result
	color.New(color.FgCyan, color.Bold).Fprintf(w, "%s", r.Metadata.Filename)
	fmt.Fprintf(w, " (%s, %d fields)\n", r.Metadata.DocumentKind, r.Metadata.FieldsExtracted)

	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	for _, name := range r.Fields.Names() {
		line := "  " + export.HeaderFor(name) + "\t" + firstLine(export.CellValue(r.Fields, name))
		if trace {
			line += "\t[" + r.Trace.Source(name) + "]"
		}
		fmt.Fprintln(tw, line)
	}
	tw.Flush()
	fmt.Fprintln(w)
}

// firstLine shortens multi-line values for table output.
func firstLine(s string) string {
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		return s[:i] + " …"
	}
	return s
}

type jsonDocument struct {
	File     string               `json:"file"`
	Fields   *extraction.FieldSet `json:"fields,omitempty"`
	Metadata *docparse.Metadata   `json:"metadata,omitempty"`
	Sources  map[string]string    `json:"sources,omitempty"`
	Error    string               `json:"error,omitempty"`
}

func writeJSON(w io.Writer, docs []document, trace bool) error {
	out := make([]jsonDocument, len(docs))
	for i, doc := range docs {
		out[i].File = doc.Name
		if doc.Err != nil {
			out[i].Error = doc.Err.Error()
			continue
		}
		out[i].Fields = &doc.Result.Fields
		out[i].Metadata = &doc.Result.Metadata
		if trace {
			out[i].Sources = make(map[string]string)
			for _, name := range doc.Result.Fields.Names() {
				out[i].Sources[string(name)] = doc.Result.Trace.Source(name)
			}
		}
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(out)
}
