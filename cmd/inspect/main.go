package main

import (
	"flag"
	"fmt"
	"os"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"go.uber.org/zap"
	"golang.org/x/term"

	"github.com/wippyai/structview"
)

func main() {
	var (
		descFile    = flag.String("desc", "", "Path to JSON type description")
		binFile     = flag.String("bin", "", "Path to raw buffer file (optional)")
		baseOffset  = flag.Uint("offset", 0, "Base byte offset into the buffer")
		interactive = flag.Bool("i", false, "Interactive mode with TUI")
		verbose     = flag.Bool("v", false, "Verbose logging")
	)
	flag.Parse()

	if *descFile == "" {
		fmt.Fprintln(os.Stderr, "Usage: inspect -desc <desc.json> [-bin <file>] [-offset n]")
		fmt.Fprintln(os.Stderr, "       inspect -desc <desc.json> -bin <file> -i  (interactive mode)")
		os.Exit(1)
	}

	if *verbose {
		logger, err := zap.NewDevelopment()
		if err == nil {
			structview.SetLogger(logger)
		}
	}

	if *interactive {
		if err := runInteractive(*descFile, *binFile, uint32(*baseOffset)); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		return
	}

	if err := run(*descFile, *binFile, uint32(*baseOffset)); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run(descFile, binFile string, base uint32) error {
	ov, hasData, err := load(descFile, binFile, base)
	if err != nil {
		return err
	}

	l := ov.Layout()
	fmt.Printf("Description: %s\n", descFile)
	fmt.Printf("Min size: %d bytes, align: %d, unsized: %v\n", l.Size, l.Align, l.Unsized)
	if hasData {
		fmt.Printf("Buffer: %s (%d bytes, base offset %d)\n", binFile, ov.Backing().ByteLen(), base)
	}
	fmt.Println()

	styled := term.IsTerminal(int(os.Stdout.Fd()))
	for _, r := range buildRows(ov.Value(), "value", 0) {
		fmt.Println(renderRow(r, hasData, styled))
	}
	return nil
}

// load parses the description, reads the buffer (or zero-fills one big
// enough for the static layout when no file is given) and binds an overlay.
func load(descFile, binFile string, base uint32) (*structview.Overlay, bool, error) {
	descData, err := os.ReadFile(descFile)
	if err != nil {
		return nil, false, fmt.Errorf("read description: %w", err)
	}

	factory, err := structview.NewFactoryJSON(descData)
	if err != nil {
		return nil, false, err
	}

	hasData := binFile != ""
	var buf []byte
	if hasData {
		buf, err = os.ReadFile(binFile)
		if err != nil {
			return nil, false, fmt.Errorf("read buffer: %w", err)
		}
	} else {
		buf = make([]byte, uint64(base)+uint64(factory.Layout().Size))
	}

	ov, err := factory.CreateAt(buf, base)
	if err != nil {
		return nil, false, err
	}
	return ov, hasData, nil
}

// row is one line of the flattened accessor tree.
type row struct {
	depth int
	label string
	acc   structview.Accessor
}

func buildRows(acc structview.Accessor, label string, depth int) []row {
	rows := []row{{depth: depth, label: label, acc: acc}}

	switch a := acc.(type) {
	case *structview.Struct:
		for _, name := range a.Fields() {
			rows = append(rows, buildRows(a.Field(name), name, depth+1)...)
		}
	case *structview.Array:
		if a.Unsized() {
			return rows
		}
		for i := 0; i < a.Len(); i++ {
			child, err := a.At(i)
			if err != nil {
				continue
			}
			rows = append(rows, buildRows(child, fmt.Sprintf("[%d]", i), depth+1)...)
		}
	}
	return rows
}

var (
	nameStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#98FB98"))

	typeStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#87CEEB"))

	offsetStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#666666"))

	valueStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#90EE90"))
)

func renderRow(r row, hasData, styled bool) string {
	indent := strings.Repeat("  ", r.depth)
	name := r.label
	typ := summarize(r.acc)
	off := fmt.Sprintf("@%d", r.acc.ByteOffset())
	val := ""
	if sc, ok := r.acc.(*structview.Scalar); ok && hasData {
		val = " = " + scalarString(sc)
	}

	if styled {
		name = nameStyle.Render(name)
		typ = typeStyle.Render(typ)
		off = offsetStyle.Render(off)
		if val != "" {
			val = valueStyle.Render(val)
		}
	}
	return fmt.Sprintf("%s%s %s %s%s", indent, name, typ, off, val)
}

func summarize(acc structview.Accessor) string {
	l := acc.Layout()
	switch a := acc.(type) {
	case *structview.Scalar:
		return a.Kind().String()
	case *structview.Array:
		if a.Unsized() {
			return fmt.Sprintf("array[unsized, stride %d]", l.Stride)
		}
		return fmt.Sprintf("array[%d, stride %d]", l.Count, l.Stride)
	default:
		return fmt.Sprintf("struct{%d members, %d bytes}", len(l.Members), l.Size)
	}
}

func scalarString(sc *structview.Scalar) string {
	switch k := sc.Kind(); {
	case k.Float():
		return fmt.Sprintf("%g", sc.Float())
	case k.Signed():
		return fmt.Sprintf("%d", sc.Int())
	default:
		return fmt.Sprintf("%d", sc.Uint())
	}
}
