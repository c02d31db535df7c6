package tui

import (
	"fmt"
	"io"

	"github.com/muesli/termenv"
)

// PrintBanner writes the archsynth banner and version to w.
func PrintBanner(w io.Writer, version string) {
	p := termenv.ColorProfile()
	lines := []struct{ text, color string }{
		{`                 _                       _   _     `, "#818cf8"},
		{`   __ _ _ __ ___| |__  ___ _   _ _ __   | |_| |__  `, "#a78bfa"},
		{`  / _' | '__/ __| '_ \/ __| | | | '_ \  | __| '_ \ `, "#c084fc"},
		{` | (_| | | | (__| | | \__ \ |_| | | | | | |_| | | |`, "#e879f9"},
		{`  \__,_|_|  \___|_| |_|___/\__, |_| |_|  \__|_| |_|`, "#f472b6"},
		{`                           |___/                   `, "#fb7185"},
	}

	fmt.Fprintln(w)
	for _, l := range lines {
		fmt.Fprintln(w, termenv.String(l.text).Foreground(p.Color(l.color)))
	}
	fmt.Fprintf(w, "  %s\n\n", termenv.String(version).Faint())
}
