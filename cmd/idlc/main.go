// Command idlc is the OMG IDL schema compiler: it parses, validates,
// flattens, generates Go bindings from, and round-trips values against
// IDL schemas through pkg/idl, pkg/cdr, pkg/flatten, pkg/codegen, and
// pkg/extract.
//
// Usage:
//
//	idlc parse <file>
//	idlc validate <file>
//	idlc flatten <file>
//	idlc generate -out <dir> -package <name> <file>
//	idlc extract -out <file> <go-package-pattern>
//	idlc roundtrip -root <TypeName> <file>
package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"os"

	"github.com/blockberries/omgidl/pkg/cdr"
	"github.com/blockberries/omgidl/pkg/codegen"
	"github.com/blockberries/omgidl/pkg/extract"
	"github.com/blockberries/omgidl/pkg/flatten"
	"github.com/blockberries/omgidl/pkg/idl"
)

func main() {
	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}

	switch os.Args[1] {
	case "parse":
		cmdParse(os.Args[2:])
	case "validate":
		cmdValidate(os.Args[2:])
	case "flatten":
		cmdFlatten(os.Args[2:])
	case "generate", "gen":
		cmdGenerate(os.Args[2:])
	case "extract":
		cmdExtract(os.Args[2:])
	case "roundtrip":
		cmdRoundtrip(os.Args[2:])
	case "help", "-h", "--help":
		printUsage()
	default:
		fmt.Fprintf(os.Stderr, "unknown command: %s\n", os.Args[1])
		printUsage()
		os.Exit(1)
	}
}

func printUsage() {
	fmt.Fprintln(os.Stderr, `idlc — OMG IDL schema compiler

Usage:
  idlc parse <file>
  idlc validate <file>
  idlc flatten <file>
  idlc generate -out <dir> -package <name> <file>
  idlc extract -out <file> <go-package-pattern>
  idlc roundtrip -root <TypeName> <file>`)
}

func readFile(path string) string {
	data, err := os.ReadFile(path)
	if err != nil {
		fmt.Fprintf(os.Stderr, "idlc: %v\n", err)
		os.Exit(1)
	}
	return string(data)
}

func loadOrExit(path string) *idl.Loaded {
	loaded, err := idl.Load(path, readFile(path))
	if err != nil {
		fmt.Fprintf(os.Stderr, "idlc: %v\n", err)
		os.Exit(1)
	}
	for _, d := range loaded.Diags {
		fmt.Fprintf(os.Stderr, "warning: %s\n", d.Error())
	}
	return loaded
}

func cmdParse(args []string) {
	if len(args) != 1 {
		fmt.Fprintln(os.Stderr, "usage: idlc parse <file>")
		os.Exit(1)
	}
	loaded := loadOrExit(args[0])
	for _, name := range loaded.Map.Names() {
		fmt.Println(name)
	}
}

func cmdValidate(args []string) {
	if len(args) != 1 {
		fmt.Fprintln(os.Stderr, "usage: idlc validate <file>")
		os.Exit(1)
	}
	path := args[0]
	schema, perrs := idl.Parse(path, readFile(path))
	if len(perrs) > 0 {
		for _, e := range perrs {
			fmt.Fprintln(os.Stderr, e.Error())
		}
		os.Exit(1)
	}
	if rerrs := idl.Resolve(schema); len(rerrs) > 0 {
		for _, e := range rerrs {
			fmt.Fprintln(os.Stderr, e.Error())
		}
		os.Exit(1)
	}
	m := idl.BuildSchemaMap(schema)
	diags := idl.Validate(schema, m)
	exitCode := 0
	for _, d := range diags {
		fmt.Println(d.Error())
		if d.Severity == idl.SeverityError {
			exitCode = 1
		}
	}
	os.Exit(exitCode)
}

func cmdFlatten(args []string) {
	if len(args) != 1 {
		fmt.Fprintln(os.Stderr, "usage: idlc flatten <file>")
		os.Exit(1)
	}
	loaded := loadOrExit(args[0])
	records, err := flatten.Flatten(loaded.Map)
	if err != nil {
		fmt.Fprintf(os.Stderr, "idlc: %v\n", err)
		os.Exit(1)
	}
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	if err := enc.Encode(records); err != nil {
		fmt.Fprintf(os.Stderr, "idlc: %v\n", err)
		os.Exit(1)
	}
}

func cmdGenerate(args []string) {
	fs := flag.NewFlagSet("generate", flag.ExitOnError)
	out := fs.String("out", ".", "output directory")
	pkg := fs.String("package", "idlgen", "generated package name")
	prefix := fs.String("prefix", "", "type name prefix")
	fs.Parse(args)
	if fs.NArg() != 1 {
		fmt.Fprintln(os.Stderr, "usage: idlc generate -out <dir> -package <name> <file>")
		os.Exit(1)
	}
	loaded := loadOrExit(fs.Arg(0))
	opts := codegen.DefaultOptions()
	opts.Package = *pkg
	opts.TypePrefix = *prefix
	src, err := codegen.GenerateGo(loaded.Map, opts)
	if err != nil {
		fmt.Fprintf(os.Stderr, "idlc: %v\n", err)
		os.Exit(1)
	}
	if err := os.MkdirAll(*out, 0o755); err != nil {
		fmt.Fprintf(os.Stderr, "idlc: %v\n", err)
		os.Exit(1)
	}
	outPath := *out + "/" + *pkg + ".go"
	if err := os.WriteFile(outPath, src, 0o644); err != nil {
		fmt.Fprintf(os.Stderr, "idlc: %v\n", err)
		os.Exit(1)
	}
	fmt.Println(outPath)
}

func cmdExtract(args []string) {
	fs := flag.NewFlagSet("extract", flag.ExitOnError)
	out := fs.String("out", "", "output file (default: stdout)")
	fs.Parse(args)
	if fs.NArg() != 1 {
		fmt.Fprintln(os.Stderr, "usage: idlc extract -out <file> <go-package-pattern>")
		os.Exit(1)
	}
	schema, err := extract.NewExtractor().Extract(fs.Arg(0))
	if err != nil {
		fmt.Fprintf(os.Stderr, "idlc: %v\n", err)
		os.Exit(1)
	}
	var names []string
	for _, d := range schema.Definitions {
		names = append(names, d.DefName())
	}
	data, _ := json.MarshalIndent(names, "", "  ")
	if *out == "" {
		fmt.Println(string(data))
		return
	}
	if err := os.WriteFile(*out, data, 0o644); err != nil {
		fmt.Fprintf(os.Stderr, "idlc: %v\n", err)
		os.Exit(1)
	}
}

func cmdRoundtrip(args []string) {
	fs := flag.NewFlagSet("roundtrip", flag.ExitOnError)
	root := fs.String("root", "", "root type name")
	fs.Parse(args)
	if fs.NArg() != 1 || *root == "" {
		fmt.Fprintln(os.Stderr, "usage: idlc roundtrip -root <TypeName> <file>")
		os.Exit(1)
	}
	loaded := loadOrExit(fs.Arg(0))

	info, err := loaded.Cache.ComplexInfoFor(*root)
	if err != nil {
		fmt.Fprintf(os.Stderr, "idlc: %v\n", err)
		os.Exit(1)
	}
	defaultValue, err := loaded.Cache.Default(info)
	if err != nil {
		fmt.Fprintf(os.Stderr, "idlc: %v\n", err)
		os.Exit(1)
	}

	writer, err := cdr.NewWriter(loaded.Map, *root, cdr.KindCDRLE)
	if err != nil {
		fmt.Fprintf(os.Stderr, "idlc: %v\n", err)
		os.Exit(1)
	}
	encoded, err := writer.Write(defaultValue)
	if err != nil {
		fmt.Fprintf(os.Stderr, "idlc: encode: %v\n", err)
		os.Exit(1)
	}

	reader, err := cdr.NewReader(loaded.Map, *root)
	if err != nil {
		fmt.Fprintf(os.Stderr, "idlc: %v\n", err)
		os.Exit(1)
	}
	decoded, err := reader.Read(encoded)
	if err != nil {
		fmt.Fprintf(os.Stderr, "idlc: decode: %v\n", err)
		os.Exit(1)
	}

	if defaultValue.Equal(decoded) {
		fmt.Printf("roundtrip OK: %d bytes\n", len(encoded))
	} else {
		fmt.Println("roundtrip MISMATCH")
		os.Exit(1)
	}
}
