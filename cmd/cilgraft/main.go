// Command cilgraft is the CLI front end for the cilgraft metadata
// importer/merger core. os.Args[1] selects a subcommand, each
// subcommand owning its own flag.FlagSet and color-coded diagnostics.
package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/fatih/color"

	"github.com/cilgraft/cilgraft/internal/cilmeta"
	"github.com/cilgraft/cilgraft/internal/config"
	"github.com/cilgraft/cilgraft/internal/descriptor"
	"github.com/cilgraft/cilgraft/internal/explore"
	"github.com/cilgraft/cilgraft/internal/importer"
	"github.com/cilgraft/cilgraft/internal/pe"
)

var (
	red   = color.New(color.FgRed).SprintFunc()
	cyan  = color.New(color.FgCyan).SprintFunc()
	green = color.New(color.FgGreen).SprintFunc()
	bold  = color.New(color.Bold).SprintFunc()
)

func main() {
	if len(os.Args) < 2 {
		printHelp()
		os.Exit(1)
	}

	switch os.Args[1] {
	case "import":
		runImport(os.Args[2:])
	case "merge":
		runMerge(os.Args[2:])
	case "list-imported":
		runListImported(os.Args[2:])
	case "explore":
		runExplore(os.Args[2:])
	case "help", "-h", "--help":
		printHelp()
	default:
		fmt.Fprintf(os.Stderr, "%s: unknown command %q\n", red("Error"), os.Args[1])
		printHelp()
		os.Exit(1)
	}
}

func printHelp() {
	fmt.Println(bold("cilgraft") + " - CIL metadata importer/merger")
	fmt.Println()
	fmt.Println("Usage:")
	fmt.Println("  cilgraft import type <assembly>!<TypeFullName> --target <path> --config cilgraft.yml")
	fmt.Println("  cilgraft import member <descriptor> --target <path> --config cilgraft.yml")
	fmt.Println("  cilgraft merge --target <path> --config cilgraft.yml")
	fmt.Println("  cilgraft list-imported --target <path> --config cilgraft.yml")
	fmt.Println("  cilgraft explore --target <path> --config cilgraft.yml")
}

func loadSessionArgs(fs *flag.FlagSet, args []string) (target string, cfgPath string) {
	fs.StringVar(&target, "target", "", "target module identifier")
	fs.StringVar(&cfgPath, "config", "cilgraft.yml", "path to weaver configuration")
	_ = fs.Parse(args)
	return target, cfgPath
}

// newSession builds an importer.Session from a configuration file and an
// empty in-memory target module named by targetName. Production builds
// wire opener/symbols/extImporter to a real metadata library; this CLI
// wires the in-memory fake, which is enough to exercise every code path
// up to (but not including) real PE I/O.
func newSession(targetName string, cfgPath string) (*importer.Session, *config.Config, error) {
	cfg, err := config.Load(cfgPath)
	if err != nil {
		return nil, nil, err
	}
	target := &cilmeta.Module{Assembly: &cilmeta.Assembly{Name: cilmeta.AssemblyName{Name: targetName, Version: "1.0.0.0"}}, Name: targetName}
	target.Assembly.Modules = []*cilmeta.Module{target}

	assemblies := pe.NewInMemoryAssemblies()
	sess, err := importer.New(target, cfg, assemblies, assemblies, assemblies, nil)
	if err != nil {
		return nil, nil, err
	}
	return sess, cfg, nil
}

func runImport(args []string) {
	if len(args) == 0 {
		fmt.Fprintf(os.Stderr, "%s: missing import kind (type|member)\n", red("Error"))
		os.Exit(1)
	}
	kind := args[0]
	fs := flag.NewFlagSet("import "+kind, flag.ExitOnError)
	target, cfgPath := loadSessionArgs(fs, args[1:])
	if fs.NArg() == 0 {
		fmt.Fprintf(os.Stderr, "%s: missing descriptor argument\n", red("Error"))
		os.Exit(1)
	}
	text := fs.Arg(0)

	sess, _, err := newSession(target, cfgPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "%s: %v\n", red("Error"), err)
		os.Exit(1)
	}

	switch kind {
	case "member":
		d, err := descriptor.Parse(text)
		if err != nil {
			fmt.Fprintf(os.Stderr, "%s: %v\n", red("Error"), err)
			os.Exit(1)
		}
		fmt.Fprintf(os.Stdout, "%s parsed descriptor for %s %s on %s\n", cyan("info:"), d.Kind, d.MemberName, d.DeclaringTypeFullName)
		fmt.Fprintln(os.Stdout, green("(import requires a real source module; wire a metadata library to proceed)"))
	default:
		fmt.Fprintf(os.Stdout, "%s requested import of type %q into %s\n", cyan("info:"), text, sess.Target.FullName())
		fmt.Fprintln(os.Stdout, green("(import requires a real source module; wire a metadata library to proceed)"))
	}
}

func runMerge(args []string) {
	fs := flag.NewFlagSet("merge", flag.ExitOnError)
	target, cfgPath := loadSessionArgs(fs, args)
	sess, _, err := newSession(target, cfgPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "%s: %v\n", red("Error"), err)
		os.Exit(1)
	}
	if err := sess.Merge(); err != nil {
		fmt.Fprintf(os.Stderr, "%s: %v\n", red("Error"), err)
		os.Exit(1)
	}
	fmt.Fprintln(os.Stdout, green("merge complete"))
}

func runListImported(args []string) {
	fs := flag.NewFlagSet("list-imported", flag.ExitOnError)
	target, cfgPath := loadSessionArgs(fs, args)
	sess, _, err := newSession(target, cfgPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "%s: %v\n", red("Error"), err)
		os.Exit(1)
	}
	imported := sess.ListImportedTypes()
	if len(imported) == 0 {
		fmt.Fprintln(os.Stdout, "(no types imported)")
		return
	}
	for source, clone := range imported {
		fmt.Fprintf(os.Stdout, "%s -> %s\n", source, clone.FullName())
	}
}

func runExplore(args []string) {
	fs := flag.NewFlagSet("explore", flag.ExitOnError)
	target, cfgPath := loadSessionArgs(fs, args)
	sess, _, err := newSession(target, cfgPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "%s: %v\n", red("Error"), err)
		os.Exit(1)
	}
	e := &explore.Explorer{Classifier: sess.Classifier(), Maps: sess.Maps}
	e.Start(os.Stdout)
}
