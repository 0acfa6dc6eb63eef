// Command flow is a CLI tool for working with block diagrams.
package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/ha1tch/flow-toolkit/pkg/diagram"
	"github.com/ha1tch/flow-toolkit/pkg/diagramfile"
)

const usage = `flow - Block diagram toolkit

Usage:
  flow <command> [options]

Commands:
  convert    Convert between formats (json, flow)
  dot        Generate Graphviz DOT output
  info       Show diagram information
  render     Render diagram to SVG or PNG
  validate   Validate diagram file

Examples:
  flow convert input.json -o output.flow
  flow convert input.flow -o output.json --pretty
  flow render input.flow -o output.svg
  flow render input.flow -f png -o output.png --grid
  flow dot input.flow | dot -Tpng -o output.png
  flow info input.flow

Use "flow <command> -h" for more information about a command.
`

func main() {
	if len(os.Args) < 2 {
		fmt.Print(usage)
		os.Exit(1)
	}

	cmd := os.Args[1]
	args := os.Args[2:]

	switch cmd {
	case "convert":
		cmdConvert(args)
	case "dot":
		cmdDot(args)
	case "info":
		cmdInfo(args)
	case "render":
		cmdRender(args)
	case "validate":
		cmdValidate(args)
	case "-h", "--help", "help":
		fmt.Print(usage)
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n", cmd)
		fmt.Print(usage)
		os.Exit(1)
	}
}

func cmdConvert(args []string) {
	if len(args) < 1 {
		fmt.Fprintln(os.Stderr, "Usage: flow convert <input> [-o output] [--pretty]")
		os.Exit(1)
	}

	input := args[0]
	var output string
	pretty := false

	for i := 1; i < len(args); i++ {
		switch args[i] {
		case "-o", "--output":
			if i+1 < len(args) {
				output = args[i+1]
				i++
			}
		case "--pretty":
			pretty = true
		}
	}

	snap, layout, err := loadDiagram(input)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading %s: %v\n", input, err)
		os.Exit(1)
	}

	// Determine output format
	if output == "" {
		// Default: change extension
		ext := filepath.Ext(input)
		base := strings.TrimSuffix(input, ext)
		switch ext {
		case ".json":
			output = base + ".flow"
		default:
			output = base + ".json"
		}
	}

	outExt := filepath.Ext(output)
	switch outExt {
	case ".flow":
		err = diagramfile.WriteFlowFile(output, snap, layout)
	case ".json":
		data, jerr := diagramfile.EncodeSnapshot(snap, pretty)
		if jerr != nil {
			err = jerr
		} else {
			err = os.WriteFile(output, data, 0644)
		}
	default:
		fmt.Fprintf(os.Stderr, "Unknown output format: %s\n", outExt)
		os.Exit(1)
	}

	if err != nil {
		fmt.Fprintf(os.Stderr, "Error writing %s: %v\n", output, err)
		os.Exit(1)
	}

	fmt.Printf("Written: %s\n", output)
}

func cmdDot(args []string) {
	if len(args) < 1 {
		fmt.Fprintln(os.Stderr, "Usage: flow dot <input> [-o output] [-t title]")
		os.Exit(1)
	}

	input := args[0]
	var output, title string

	for i := 1; i < len(args); i++ {
		switch args[i] {
		case "-o", "--output":
			if i+1 < len(args) {
				output = args[i+1]
				i++
			}
		case "-t", "--title":
			if i+1 < len(args) {
				title = args[i+1]
				i++
			}
		}
	}

	g, err := loadGraph(input)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading %s: %v\n", input, err)
		os.Exit(1)
	}

	dot := diagramfile.GenerateDOT(g, title)

	if output != "" {
		if err := os.WriteFile(output, []byte(dot), 0644); err != nil {
			fmt.Fprintf(os.Stderr, "Error writing %s: %v\n", output, err)
			os.Exit(1)
		}
	} else {
		fmt.Print(dot)
	}
}

func cmdRender(args []string) {
	if len(args) < 1 {
		fmt.Fprintln(os.Stderr, "Usage: flow render <input> [-o output] [-f svg|png] [-t title] [--grid]")
		os.Exit(1)
	}

	input := args[0]
	var output, format, title string
	grid := false

	for i := 1; i < len(args); i++ {
		switch args[i] {
		case "-o", "--output":
			if i+1 < len(args) {
				output = args[i+1]
				i++
			}
		case "-f", "--format":
			if i+1 < len(args) {
				format = args[i+1]
				i++
			}
		case "-t", "--title":
			if i+1 < len(args) {
				title = args[i+1]
				i++
			}
		case "--grid":
			grid = true
		}
	}

	if format == "" {
		if output != "" {
			format = strings.TrimPrefix(filepath.Ext(output), ".")
		}
		if format == "" {
			format = "svg"
		}
	}

	g, err := loadGraph(input)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading %s: %v\n", input, err)
		os.Exit(1)
	}

	switch format {
	case "svg":
		opts := diagramfile.DefaultSVGOptions()
		opts.ShowGrid = grid
		opts.Title = title
		svg := diagramfile.GenerateSVG(g, opts)
		if output != "" {
			err = os.WriteFile(output, []byte(svg), 0644)
		} else {
			fmt.Print(svg)
		}
	case "png":
		if output == "" {
			fmt.Fprintln(os.Stderr, "PNG output requires -o")
			os.Exit(1)
		}
		opts := diagramfile.DefaultPNGOptions()
		opts.ShowGrid = grid
		var f *os.File
		f, err = os.Create(output)
		if err == nil {
			err = diagramfile.WritePNG(f, g, opts)
			if cerr := f.Close(); err == nil {
				err = cerr
			}
		}
	default:
		fmt.Fprintf(os.Stderr, "Unknown render format: %s\n", format)
		os.Exit(1)
	}

	if err != nil {
		fmt.Fprintf(os.Stderr, "Error rendering %s: %v\n", input, err)
		os.Exit(1)
	}

	if output != "" {
		fmt.Printf("Written: %s\n", output)
	}
}

func cmdInfo(args []string) {
	if len(args) < 1 {
		fmt.Fprintln(os.Stderr, "Usage: flow info <input>")
		os.Exit(1)
	}

	input := args[0]
	g, err := loadGraph(input)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading %s: %v\n", input, err)
		os.Exit(1)
	}

	blocks := g.Blocks()
	wires := g.Wires()

	outputs, inputs := 0, 0
	for _, ps := range g.PortStates() {
		switch ps.Role {
		case diagram.RoleOutput:
			outputs++
		case diagram.RoleInput:
			inputs++
		}
	}

	fmt.Printf("Blocks:       %d\n", len(blocks))
	fmt.Printf("Wires:        %d\n", len(wires))
	fmt.Printf("Output ports: %d\n", outputs)
	fmt.Printf("Input ports:  %d\n", inputs)
	fmt.Println()
	for _, b := range blocks {
		label := b.Label
		if label == "" {
			label = "(unlabelled)"
		}
		fmt.Printf("  %-20s at (%g, %g) %gx%g\n", label, b.Pos.X, b.Pos.Y, b.W, b.H)
	}
}

func cmdValidate(args []string) {
	if len(args) < 1 {
		fmt.Fprintln(os.Stderr, "Usage: flow validate <input>")
		os.Exit(1)
	}

	input := args[0]
	g, err := loadGraph(input)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading %s: %v\n", input, err)
		os.Exit(1)
	}

	if err := g.Validate(); err != nil {
		fmt.Fprintf(os.Stderr, "Validation failed: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("%s: valid diagram with %d blocks, %d wires\n",
		input, len(g.Blocks()), len(g.Wires()))
}

func loadDiagram(path string) (*diagram.Snapshot, *diagramfile.Layout, error) {
	ext := filepath.Ext(path)

	switch ext {
	case ".flow":
		return diagramfile.ReadFlowFile(path)
	case ".json":
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, nil, err
		}
		snap, err := diagramfile.DecodeSnapshot(data)
		if err != nil {
			return nil, nil, err
		}
		return snap, diagramfile.DefaultLayout(), nil
	default:
		return nil, nil, fmt.Errorf("unknown file format: %s", ext)
	}
}

func loadGraph(path string) (*diagram.Graph, error) {
	snap, _, err := loadDiagram(path)
	if err != nil {
		return nil, err
	}
	g := diagram.New(diagram.DefaultGraphOptions())
	if err := g.ImportState(snap); err != nil {
		return nil, err
	}
	return g, nil
}
