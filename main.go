// lokalc, the locale key schema compiler: merges per-locale translation
// trees into a single validated key schema for code generation.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/lokalc/lokalc/config"
	"github.com/lokalc/lokalc/i18n"
	"github.com/lokalc/lokalc/locale"
	"github.com/lokalc/lokalc/schema"
	"github.com/lokalc/lokalc/warning"
)

// Version information (set via -ldflags during build)
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

// ANSI colors
const (
	colorReset  = "\033[0m"
	colorRed    = "\033[0;31m"
	colorGreen  = "\033[0;32m"
	colorYellow = "\033[1;33m"
	colorBlue   = "\033[0;34m"
)

func logInfo(format string, args ...any) {
	fmt.Fprintf(os.Stderr, colorBlue+"[INFO]"+colorReset+" "+format+"\n", args...)
}

func logSuccess(format string, args ...any) {
	fmt.Fprintf(os.Stderr, colorGreen+"[OK]"+colorReset+" "+format+"\n", args...)
}

func logWarning(format string, args ...any) {
	fmt.Fprintf(os.Stderr, colorYellow+"[WARN]"+colorReset+" "+format+"\n", args...)
}

func logError(format string, args ...any) {
	fmt.Fprintf(os.Stderr, colorRed+"[ERROR]"+colorReset+" "+format+"\n", args...)
}

// ---------------------------------------------------------------------------
// Global flag
// ---------------------------------------------------------------------------

var rootDir string

// ---------------------------------------------------------------------------
// Pipeline
// ---------------------------------------------------------------------------

// compile runs the full front-end: manifest, documents, parsing,
// foreign-key resolution and the locale merge. Warnings land in the
// returned sink; the first error aborts.
func compile(root string) (*locale.BuildersKeys, *warning.Sink, error) {
	cfg, err := config.Load(root)
	if err != nil {
		return nil, nil, err
	}

	set, err := config.LoadLocales(cfg)
	if err != nil {
		return nil, nil, err
	}
	logInfo(i18n.T("Loaded %d locales"), len(cfg.Locales))

	if err := set.ResolveForeignKeys(); err != nil {
		return nil, nil, err
	}

	sink := warning.NewSink()
	bk, err := locale.CheckLocales(set, sink)
	if err != nil {
		return nil, nil, err
	}
	return bk, sink, nil
}

// ---------------------------------------------------------------------------
// Root command
// ---------------------------------------------------------------------------

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "lokalc",
		Short: "Locale key schema compiler",
		Long: `lokalc — locale key schema compiler.

Reads a lokalc.toml manifest and the per-locale translation documents
(YAML or JSON) it points at, resolves cross-key references, merges every
locale against the default locale, and emits one unified key schema for
a code generator to consume.

Commands:
  build       Compile and write the unified schema
  check       Compile and report warnings without writing anything
  keys        List the unified key paths and their kinds
  version     Show version information`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	// Global persistent flag, inherited by all subcommands
	root.PersistentFlags().StringVar(&rootDir, "root", ".", "Project root directory (where lokalc.toml lives)")

	root.AddCommand(
		newBuildCmd(),
		newCheckCmd(),
		newKeysCmd(),
		newVersionCmd(),
	)

	return root
}

// ---------------------------------------------------------------------------
// build
// ---------------------------------------------------------------------------

func newBuildCmd() *cobra.Command {
	var (
		output   string
		format   string
		keysOnly bool
	)

	cmd := &cobra.Command{
		Use:   "build",
		Short: "Compile the locales and write the unified schema",
		RunE: func(cmd *cobra.Command, args []string) error {
			bk, sink, err := compile(rootDir)
			if err != nil {
				return err
			}

			doc := schema.Build(bk, sink.Warnings(), schema.Options{KeysOnly: keysOnly})

			out := os.Stdout
			if output != "" && output != "-" {
				f, err := os.Create(output)
				if err != nil {
					return fmt.Errorf("creating %s: %w", output, err)
				}
				defer f.Close()
				out = f
			}

			switch format {
			case "json":
				err = schema.EncodeJSON(doc, out)
			case "yaml", "yml":
				err = schema.EncodeYAML(doc, out)
			default:
				return fmt.Errorf("unknown format %q (want json or yaml)", format)
			}
			if err != nil {
				return err
			}

			for _, w := range sink.Warnings() {
				logWarning("%s", w.String())
			}
			if output != "" && output != "-" {
				logSuccess(i18n.T("Schema written to %s"), output)
			}
			logInfo(i18n.N("Build finished with %d warning", "Build finished with %d warnings", sink.Len()), sink.Len())
			return nil
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "", "Output file (default stdout)")
	cmd.Flags().StringVar(&format, "format", "json", "Output format: json or yaml")
	cmd.Flags().BoolVar(&keysOnly, "keys-only", false, "Replace every plain value with its own key path (wiring check)")

	return cmd
}

// ---------------------------------------------------------------------------
// check
// ---------------------------------------------------------------------------

func newCheckCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "check",
		Short: "Compile the locales and report warnings without writing anything",
		RunE: func(cmd *cobra.Command, args []string) error {
			_, sink, err := compile(rootDir)
			if err != nil {
				return err
			}
			for _, w := range sink.Warnings() {
				logWarning("%s", w.String())
			}
			if sink.Len() == 0 {
				logSuccess(i18n.T("No issues found"))
			} else {
				logInfo(i18n.N("Build finished with %d warning", "Build finished with %d warnings", sink.Len()), sink.Len())
			}
			return nil
		},
	}
}

// ---------------------------------------------------------------------------
// keys
// ---------------------------------------------------------------------------

func newKeysCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "keys",
		Short: "List the unified key paths and their kinds",
		RunE: func(cmd *cobra.Command, args []string) error {
			bk, sink, err := compile(rootDir)
			if err != nil {
				return err
			}
			doc := schema.Build(bk, sink.Warnings(), schema.Options{})
			for _, entry := range doc.Keys {
				fmt.Printf("%-8s %s\n", entry.Kind, entry.Path)
			}
			return nil
		},
	}
}

// ---------------------------------------------------------------------------
// version
// ---------------------------------------------------------------------------

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Show version information",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Printf("lokalc %s (commit %s, built %s)\n", version, commit, date)
		},
	}
}

func main() {
	i18n.Init("")
	if err := newRootCmd().Execute(); err != nil {
		logError("%v", err)
		os.Exit(1)
	}
}
