package util

import (
	"fmt"
	"io"
	"strings"

	"github.com/common-nighthawk/go-figure"
)

const (
	ColorReset  = "\x1b[0m"
	ColorRed    = "\x1b[1;31m"
	ColorGreen  = "\x1b[1;32m"
	ColorYellow = "\x1b[1;33m"
	ColorBlue   = "\x1b[1;34m"
	ColorCyan   = "\x1b[1;36m"
)

func colorCode(name string) string {
	switch strings.ToLower(name) {
	case "red":
		return ColorRed
	case "green":
		return ColorGreen
	case "yellow":
		return ColorYellow
	case "blue":
		return ColorBlue
	case "cyan":
		return ColorCyan
	default:
		return ""
	}
}

// Banner renders text as ASCII art lines.
func Banner(text string) []string {
	return figure.NewFigure(text, "", true).Slicify()
}

// PrintBanner writes the banner for text in one color, followed by subtitle when not empty.
// Unknown color names print without escape codes.
func PrintBanner(w io.Writer, text, color, subtitle string) {
	ansi := colorCode(color)
	reset := ""
	if ansi != "" {
		reset = ColorReset
	}
	for _, line := range Banner(text) {
		fmt.Fprintln(w, ansi+line+reset)
	}
	if subtitle != "" {
		fmt.Fprintln(w, subtitle)
	}
}
