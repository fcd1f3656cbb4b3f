// Package color formats diagnostics and section banners for the terminal.
package color

import (
	"fmt"

	fc "github.com/fatih/color"
	"github.com/xyproto/env/v2"
)

var (
	red   = fc.New(fc.FgHiRed)
	green = fc.New(fc.FgGreen)
)

func init() {
	if env.Has("NO_COLOR") || !isTerminal() {
		fc.NoColor = true
	}
}

func isTerminal() bool {
	term := env.Str("TERM")
	return term != "" && term != "dumb"
}

func EnableColor(enable bool) {
	fc.NoColor = !enable
}

func IsColorEnabled() bool {
	return !fc.NoColor
}

func RedText(text string) string   { return red.Sprint(text) }
func GreenText(text string) string { return green.Sprint(text) }

// Banner is a section heading in verbose output.
func Banner(title string) string {
	return GreenText("=== " + title + " ===")
}

func Error(message string) string {
	return RedText("Error: ") + message
}

func Success(message string) string {
	return GreenText("Success: ") + message
}

// ExitStatus summarizes how a program run ended.
func ExitStatus(code int) string {
	msg := fmt.Sprintf("exit code %d", code)
	if code == 0 {
		return GreenText(msg)
	}
	return RedText(msg)
}
