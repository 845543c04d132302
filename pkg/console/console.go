// Package console prints the colored progress banners shown between task runs.
package console

import (
	"io"
	"os"

	"github.com/mitchellh/colorstring"
)

var (
	out   io.Writer = os.Stderr
	color           = colorstring.Colorize{Colors: colorstring.DefaultColors}
)

// SetOutput redirects all banners to w. Colors are stripped when plain is true.
func SetOutput(w io.Writer, plain bool) {
	out = w
	color.Disable = plain
}

func PrintTask(msg string) {
	io.WriteString(out, color.Color("[blue][bold]==>[reset] ")+msg+"\n")
}

func PrintSubtask(msg string) {
	io.WriteString(out, color.Color("[green][bold]  ->[reset] ")+msg+"\n")
}

func PrintError(msg string) {
	io.WriteString(out, color.Color("[red][bold]  ->[reset] ")+msg+"\n")
}
