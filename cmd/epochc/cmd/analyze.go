package cmd

import (
	"fmt"
	"os"
	"time"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/cwbudde/go-epoch/internal/ast"
	"github.com/cwbudde/go-epoch/internal/builtins"
	"github.com/cwbudde/go-epoch/internal/diag"
	"github.com/cwbudde/go-epoch/internal/ir"
	"github.com/cwbudde/go-epoch/internal/lower"
	"github.com/cwbudde/go-epoch/internal/sema"
)

var (
	sourceFile string
	libConfig  string
	dumpIR     bool
	colorize   bool
)

var analyzeCmd = &cobra.Command{
	Use:   "analyze [parse-tree.json]",
	Short: "Analyze a serialised parse tree",
	Long: `Run semantic analysis over a parse tree produced by an external parser.

Examples:
  # Analyze a parse tree, anchoring diagnostics to the original source
  epochc analyze tree.json --source program.epoch

  # Extend the built-in library with extra operators and externs
  epochc analyze tree.json --libconfig library.toml

  # Dump a summary of the typed IR after analysis
  epochc analyze tree.json --dump-ir`,
	Args: cobra.ExactArgs(1),
	RunE: runAnalyze,
}

func init() {
	rootCmd.AddCommand(analyzeCmd)

	analyzeCmd.Flags().StringVar(&sourceFile, "source", "", "original source file for diagnostic anchoring")
	analyzeCmd.Flags().StringVar(&libConfig, "libconfig", "", "TOML library configuration overlay")
	analyzeCmd.Flags().BoolVar(&dumpIR, "dump-ir", false, "dump a summary of the typed IR (for debugging)")
	analyzeCmd.Flags().BoolVar(&colorize, "color", false, "colorize diagnostics")
}

func runAnalyze(_ *cobra.Command, args []string) error {
	treeData, err := os.ReadFile(args[0])
	if err != nil {
		return errors.Wrap(err, "reading parse tree")
	}

	source := ""
	if sourceFile != "" {
		data, err := os.ReadFile(sourceFile)
		if err != nil {
			return errors.Wrap(err, "reading source file")
		}
		source = string(data)
	}

	tree, err := ast.DecodeProgram(treeData)
	if err != nil {
		return err
	}

	prog := ir.NewProgram()
	builtins.RegisterLibrary(prog.Namespace)

	if libConfig != "" {
		cfg, err := LoadLibraryConfig(libConfig)
		if err != nil {
			return err
		}
		if err := cfg.Apply(prog.Namespace); err != nil {
			return err
		}
	}

	errs := diag.NewCollector(sourceFile, source)

	start := time.Now()
	lower.New(prog, errs).Lower(tree)
	logrus.WithField("elapsed", time.Since(start)).Debug("lowering complete")

	analyzer := sema.NewAnalyzer(prog, errs)
	manager := sema.NewPassManager(sema.DefaultPasses()...)

	start = time.Now()
	if err := manager.RunAll(analyzer); err != nil {
		return err
	}
	logrus.WithField("elapsed", time.Since(start)).Debug("semantic analysis complete")

	if errs.HasErrors() {
		for _, e := range errs.Errors() {
			fmt.Fprintln(os.Stderr, e.Format(colorize))
			fmt.Fprintln(os.Stderr)
		}
		return errors.Errorf("%d error(s)", errs.Count())
	}

	if dumpIR {
		dumpNamespace(prog.Namespace)
	}
	fmt.Println("ok")
	return nil
}

func dumpNamespace(ns *ir.Namespace) {
	for _, name := range ns.Functions.DeclarationOrder() {
		f, ok := ns.Functions.Function(name)
		if !ok {
			continue
		}
		sig := f.Signature(ns)
		fmt.Printf("function %s", ns.Strings.MustGet(f.Name))
		fmt.Printf(" (%d params)", sig.NumParameters())
		fmt.Printf(" -> type %d\n", sig.ReturnType())
		if f.Code != nil {
			for _, v := range f.Code.Scope.Variables {
				origin := "local"
				switch v.Origin {
				case ir.OriginParameter:
					origin = "parameter"
				case ir.OriginReturn:
					origin = "return"
				}
				fmt.Printf("  var %s : type %d (%s)\n", ns.Strings.MustGet(v.Name), v.Type, origin)
			}
		}
	}
	for name, info := range ns.Dispatchers {
		fmt.Printf("dispatcher %s (%d candidates)\n", ns.Strings.MustGet(name), len(info.Candidates))
	}
}
