// Command briefparse extracts business-brief fields from local documents.
//
// Usage:
//
//	briefparse parse brief.pdf other.docx
//	briefparse parse --json --trace brief.docx
//	briefparse export --out briefs.xlsx *.pdf
//	briefparse fields
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"aura_backend/core"
	"aura_backend/docparse"
	"aura_backend/extraction"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

var version = "dev"

// stdinName is the filename reported for a document read from stdin.
const stdinName = "stdin.txt"

var errNothingParsed = errors.New("no document could be parsed")

func main() {
	os.Exit(execute(os.Args[1:], os.Stdin, os.Stdout, os.Stderr))
}

func execute(args []string, stdin io.Reader, stdout, stderr io.Writer) int {
	cmd := newRootCmd()
	cmd.SetArgs(args)
	cmd.SetIn(stdin)
	cmd.SetOut(stdout)
	cmd.SetErr(stderr)

	if err := cmd.Execute(); err != nil {
		fmt.Fprintln(stderr, color.RedString("Error:"), err)
		return core.ExitCodeFor(err)
	}
	return core.ExitCodeSuccess
}

// options are the flags shared by every subcommand.
type options struct {
	envFile      string
	catalogPath  string
	regexTimeout time.Duration
}

func newRootCmd() *cobra.Command {
	opts := &options{}

	root := &cobra.Command{
		Use:   "briefparse",
		Short: "Extract business-brief fields from documents",
		Long: `briefparse runs the same extraction as the aura server on local files.
PDF, DOCX, DOC and plain-text documents are accepted; "-" reads text from stdin.`,
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			if err := core.LoadEnvFile(opts.envFile, cmd.Flags().Changed("env-file")); err != nil {
				return err
			}
			if opts.catalogPath == "" {
				opts.catalogPath = os.Getenv(core.EnvCatalogPath)
			}
			return nil
		},
	}

	flags := root.PersistentFlags()
	flags.StringVar(&opts.envFile, "env-file", ".env", "file of KEY=value pairs loaded into the environment")
	flags.StringVar(&opts.catalogPath, "catalog", "", "YAML field catalog replacing the embedded one (default $"+core.EnvCatalogPath+")")
	flags.DurationVar(&opts.regexTimeout, "regex-timeout", 0, "per-pattern match timeout for section patterns")

	root.AddCommand(newParseCmd(opts), newExportCmd(opts), newFieldsCmd(opts))
	return root
}

// newService builds a document service that also accepts plain text.
func (o *options) newService() (*docparse.Service, error) {
	pipeline, err := extraction.LoadPipeline(o.catalogPath, o.regexTimeout)
	if err != nil {
		return nil, err
	}
	config := docparse.DefaultConfig()
	config.AllowedKinds = append(config.AllowedKinds, docparse.KindText)
	return docparse.NewService(config, pipeline), nil
}

// document is the outcome of parsing one input.
type document struct {
	Name   string
	Result *docparse.ParseResult
	Err    error
}

// parseAll parses every path in order. Failures are kept per document.
func parseAll(ctx context.Context, svc *docparse.Service, stdin io.Reader, paths []string) []document {
	docs := make([]document, 0, len(paths))
	for _, path := range paths {
		doc := document{Name: path}
		upload, err := readUpload(stdin, path)
		if err == nil {
			doc.Result, err = svc.Parse(ctx, upload)
		}
		doc.Err = err
		docs = append(docs, doc)
	}
	return docs
}

func readUpload(stdin io.Reader, path string) (docparse.Upload, error) {
	if path == "-" {
		data, err := io.ReadAll(stdin)
		if err != nil {
			return docparse.Upload{}, fmt.Errorf("read stdin: %w", err)
		}
		return docparse.Upload{Filename: stdinName, DeclaredType: "text/plain", Data: data}, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return docparse.Upload{}, err
	}
	return docparse.Upload{Filename: filepath.Base(path), Data: data}, nil
}

// reportFailures prints one line per failed document and returns an error
// when any failed.
func reportFailures(w io.Writer, docs []document) error {
	failed := 0
	for _, doc := range docs {
		if doc.Err != nil {
			failed++
			fmt.Fprintf(w, "%s %s: %v\n", color.RedString("✗"), doc.Name, doc.Err)
		}
	}
	if failed > 0 {
		return fmt.Errorf("%d of %d documents failed", failed, len(docs))
	}
	return nil
}

// succeeded returns the documents that parsed.
func succeeded(docs []document) []document {
	out := make([]document, 0, len(docs))
	for _, doc := range docs {
		if doc.Err == nil {
			out = append(out, doc)
		}
	}
	return out
}
