package diagfmt

import (
	"fmt"
	"io"
	"path/filepath"

	"github.com/fatih/color"

	"sarac/internal/diag"
	"sarac/internal/source"
)

var (
	errorColor   = color.New(color.FgRed, color.Bold)
	warningColor = color.New(color.FgYellow, color.Bold)
	infoColor    = color.New(color.FgCyan, color.Bold)
)

// Pretty renders diagnostics one per line:
//
//	<path>:<line>:<col>: <severity>[<code>]: <message>
//
// followed by indented notes. Callers are expected to Sort the bag first.
// A diagnostic with an empty span drops the location prefix.
func Pretty(w io.Writer, bag *diag.Bag, fs *source.FileSet, opts PrettyOpts) {
	for _, d := range bag.Items() {
		writeHeader(w, fs, d, opts)
		if !opts.ShowNotes {
			continue
		}
		for _, n := range d.Notes {
			fmt.Fprintf(w, "  note: %s", n.Msg)
			if loc := location(fs, n.Span, opts.PathMode); loc != "" {
				fmt.Fprintf(w, " (%s)", loc)
			}
			fmt.Fprintln(w)
		}
	}
}

func writeHeader(w io.Writer, fs *source.FileSet, d diag.Diagnostic, opts PrettyOpts) {
	if loc := location(fs, d.Primary, opts.PathMode); loc != "" {
		fmt.Fprintf(w, "%s: ", loc)
	}
	label := severityLabel(d.Severity)
	if opts.Color {
		label = severityColor(d.Severity).Sprint(label)
	}
	fmt.Fprintf(w, "%s[%s]: %s\n", label, d.Code, d.Message)
}

func location(fs *source.FileSet, sp source.Span, mode PathMode) string {
	if fs == nil || sp.Empty() {
		return ""
	}
	file := fs.Get(sp.File)
	if file == nil {
		return ""
	}
	path := file.Path
	if mode == PathModeBasename {
		path = filepath.Base(path)
	}
	start, _ := fs.Resolve(sp)
	return fmt.Sprintf("%s:%d:%d", path, start.Line, start.Col)
}

func severityLabel(s diag.Severity) string {
	switch s {
	case diag.SevWarning:
		return "warning"
	case diag.SevError:
		return "error"
	}
	return "info"
}

func severityColor(s diag.Severity) *color.Color {
	switch s {
	case diag.SevWarning:
		return warningColor
	case diag.SevError:
		return errorColor
	}
	return infoColor
}
