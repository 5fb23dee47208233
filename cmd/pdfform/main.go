// Command pdfform inspects, exports, fills and edits PDF AcroForms from
// the command line.
package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/pflag"

	"github.com/a3tai/mcp-pdf-forms/internal/pdf"
)

// command is one subcommand: its flags are registered on a fresh flag set
// and run receives the parsed positional arguments
type command struct {
	name    string
	summary string
	setup   func(fs *pflag.FlagSet) func(env *env, args []string) (any, error)
}

// env is what every subcommand shares after flag parsing
type env struct {
	svc *pdf.Service
	out *report
}

// common flags
type globals struct {
	dir         string
	outdir      string
	maxFileSize int64
	suggestions int
	jsonOut     bool
	debug       bool
}

var commands = []command{
	{name: "inspect", summary: "Classify the form layer of a PDF", setup: setupInspect},
	{name: "export", summary: "Export field values as JSON or YAML", setup: setupExport},
	{name: "map", summary: "List fields page by page in reading order", setup: setupMap},
	{name: "search", summary: "Find fields by name or tooltip", setup: setupSearch},
	{name: "template", summary: "Write a fill template", setup: setupTemplate},
	{name: "fill", summary: "Fill fields from a data file or key=value pairs", setup: setupFill},
	{name: "clear", summary: "Remove field values (names or ALL)", setup: setupClear},
	{name: "hide", summary: "Hide fields and their captions", setup: setupHide},
	{name: "unlock", summary: "Clear the read-only flag (names or ALL)", setup: setupUnlock},
}

func main() {
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}

func usage(w io.Writer) {
	fmt.Fprintf(w, "Usage: pdfform <command> [flags] <file.pdf>\n\nCommands:\n")
	for _, c := range commands {
		fmt.Fprintf(w, "  %-9s %s\n", c.name, c.summary)
	}
	fmt.Fprintf(w, "\nRun 'pdfform <command> --help' for the flags of a command.\n")
}

// run executes one command and returns the process exit code
func run(args []string, stdout, stderr io.Writer) int {
	if len(args) == 0 || args[0] == "-h" || args[0] == "--help" || args[0] == "help" {
		usage(stderr)
		if len(args) == 0 {
			return 2
		}
		return 0
	}

	var cmd *command
	for i := range commands {
		if commands[i].name == args[0] {
			cmd = &commands[i]
		}
	}
	if cmd == nil {
		fmt.Fprintf(stderr, "pdfform: unknown command %q\n\n", args[0])
		usage(stderr)
		return 2
	}

	fs := pflag.NewFlagSet("pdfform "+cmd.name, pflag.ContinueOnError)
	fs.SetOutput(stderr)
	var g globals
	fs.StringVar(&g.dir, "dir", "", "Directory inputs must live in (default: the input file's directory)")
	fs.StringVarP(&g.outdir, "outdir", "o", "", "Directory outputs are written to (default: --dir)")
	fs.Int64Var(&g.maxFileSize, "maxfilesize", 100*1024*1024, "Maximum PDF file size in bytes")
	fs.IntVar(&g.suggestions, "suggestions", pdf.DefaultSuggestions, "Field names suggested per unmatched key")
	fs.BoolVar(&g.jsonOut, "json", false, "Print the result as JSON")
	fs.BoolVar(&g.debug, "debug", false, "Log engine details to stderr")
	exec := cmd.setup(fs)

	if err := fs.Parse(args[1:]); err != nil {
		if errors.Is(err, pflag.ErrHelp) {
			return 0
		}
		return 2
	}
	if fs.NArg() != 1 {
		fmt.Fprintf(stderr, "pdfform %s: exactly one PDF file is required\n", cmd.name)
		return 2
	}

	input, err := filepath.Abs(fs.Arg(0))
	if err != nil {
		fmt.Fprintf(stderr, "pdfform: %v\n", err)
		return 1
	}
	if g.dir == "" {
		g.dir = filepath.Dir(input)
	}
	svc, err := pdf.NewService(pdf.Options{
		MaxFileSize:     g.maxFileSize,
		Directory:       g.dir,
		OutputDirectory: g.outdir,
		Suggestions:     g.suggestions,
		Debug:           g.debug,
	})
	if err != nil {
		fmt.Fprintf(stderr, "pdfform: %v\n", err)
		return 1
	}

	e := &env{svc: svc, out: newReport(stdout)}
	result, err := exec(e, []string{input})
	if err != nil {
		fmt.Fprintf(stderr, "pdfform %s: %v\n", cmd.name, err)
		return 1
	}
	if g.jsonOut {
		enc := json.NewEncoder(stdout)
		enc.SetIndent("", "  ")
		if err := enc.Encode(result); err != nil {
			fmt.Fprintf(stderr, "pdfform: %v\n", err)
			return 1
		}
		return 0
	}
	render(e.out, result)
	return 0
}

func render(r *report, result any) {
	switch res := result.(type) {
	case *pdf.PDFFormInspectResult:
		r.inspect(res)
	case *pdf.PDFFormExportResult:
		if res.Output != "" {
			r.output(res.Output)
			return
		}
		fmt.Fprint(r.w, res.Content)
	case *pdf.PDFFormTemplateResult:
		if res.Output != "" {
			r.output(res.Output)
			return
		}
		fmt.Fprint(r.w, res.Content)
	case *pdf.PDFFormMapResult:
		var all []pdf.FieldSummary
		for _, p := range res.Pages {
			all = append(all, p.Fields...)
		}
		r.title("%s: %d field(s)", res.Path, res.TotalCount)
		r.fields(all, true)
		r.diagnostics(&res.Diagnostics)
	case *pdf.PDFFormSearchResult:
		r.title("%d field(s) matching %q", res.TotalCount, res.Term)
		r.fields(res.Fields, false)
		r.diagnostics(&res.Diagnostics)
	case *pdf.PDFFormFillResult:
		r.fill(res)
	case *pdf.PDFFormClearResult:
		r.edit("Cleared", res.Cleared, res.Output, &res.Diagnostics)
	case *pdf.PDFFormHideResult:
		r.edit("Hid", res.Hidden, res.Output, &res.Diagnostics)
	case *pdf.PDFFormUnlockResult:
		r.edit("Unlocked", res.Unlocked, res.Output, &res.Diagnostics)
	}
}

func setupInspect(fs *pflag.FlagSet) func(*env, []string) (any, error) {
	password := fs.String("password", "", "User password for encrypted documents")
	return func(e *env, args []string) (any, error) {
		return e.svc.Inspect(pdf.PDFFormInspectRequest{Path: args[0], Password: *password})
	}
}

func setupExport(fs *pflag.FlagSet) func(*env, []string) (any, error) {
	output := fs.String("out", "", "Write the values to this file instead of stdout")
	format := fs.String("format", "", "json or yaml (default: by --out extension, else json)")
	includeEmpty := fs.Bool("include-empty", false, "Include fields without a value")
	return func(e *env, args []string) (any, error) {
		return e.svc.Export(pdf.PDFFormExportRequest{
			Path: args[0], Output: *output, Format: *format, IncludeEmpty: *includeEmpty,
		})
	}
}

func setupMap(_ *pflag.FlagSet) func(*env, []string) (any, error) {
	return func(e *env, args []string) (any, error) {
		return e.svc.Map(pdf.PDFFormMapRequest{Path: args[0]})
	}
}

func setupSearch(fs *pflag.FlagSet) func(*env, []string) (any, error) {
	term := fs.StringP("term", "t", "", "Text to look for in names and tooltips")
	return func(e *env, args []string) (any, error) {
		return e.svc.Search(pdf.PDFFormSearchRequest{Path: args[0], Term: *term})
	}
}

func setupTemplate(fs *pflag.FlagSet) func(*env, []string) (any, error) {
	output := fs.String("out", "", "Write the template to this file instead of stdout")
	format := fs.String("format", "", "json or yaml (default: by --out extension, else json)")
	sections := fs.StringSlice("sections", nil, "Only fields whose names start with these prefixes")
	return func(e *env, args []string) (any, error) {
		return e.svc.Template(pdf.PDFFormTemplateRequest{
			Path: args[0], Output: *output, Format: *format, Sections: *sections,
		})
	}
}

func setupFill(fs *pflag.FlagSet) func(*env, []string) (any, error) {
	output := fs.String("out", "", "Output PDF (default: generated name in --outdir)")
	data := fs.String("data", "", "JSON or YAML data file, or inline JSON")
	set := fs.StringArray("set", nil, "name=value pair; may be repeated")
	return func(e *env, args []string) (any, error) {
		values, err := parsePairs(*set)
		if err != nil {
			return nil, err
		}
		return e.svc.Fill(pdf.PDFFormFillRequest{
			Path: args[0], Output: *output, Values: values, DataFile: *data,
		})
	}
}

func setupClear(fs *pflag.FlagSet) func(*env, []string) (any, error) {
	output := fs.String("out", "", "Output PDF (default: generated name in --outdir)")
	names := fs.StringSlice("names", nil, "Fields to clear; ALL clears every field")
	all := fs.Bool("all", false, "Clear every field")
	return func(e *env, args []string) (any, error) {
		return e.svc.ClearDefaults(pdf.PDFFormClearRequest{
			Path: args[0], Output: *output, Names: *names, All: *all,
		})
	}
}

func setupHide(fs *pflag.FlagSet) func(*env, []string) (any, error) {
	output := fs.String("out", "", "Output PDF (default: generated name in --outdir)")
	names := fs.StringSlice("names", nil, "Fields to hide")
	return func(e *env, args []string) (any, error) {
		return e.svc.Hide(pdf.PDFFormHideRequest{Path: args[0], Output: *output, Names: *names})
	}
}

func setupUnlock(fs *pflag.FlagSet) func(*env, []string) (any, error) {
	output := fs.String("out", "", "Output PDF (default: generated name in --outdir)")
	names := fs.StringSlice("names", nil, "Fields to unlock; ALL unlocks every read-only field")
	all := fs.Bool("all", false, "Unlock every read-only field")
	return func(e *env, args []string) (any, error) {
		return e.svc.Unlock(pdf.PDFFormUnlockRequest{
			Path: args[0], Output: *output, Names: *names, All: *all,
		})
	}
}

// parsePairs turns name=value flags into a fill mapping
func parsePairs(pairs []string) (map[string]any, error) {
	if len(pairs) == 0 {
		return nil, nil
	}
	values := make(map[string]any, len(pairs))
	for _, p := range pairs {
		name, value, ok := strings.Cut(p, "=")
		if !ok || strings.TrimSpace(name) == "" {
			return nil, fmt.Errorf("invalid --set %q: want name=value", p)
		}
		values[strings.TrimSpace(name)] = value
	}
	return values, nil
}
