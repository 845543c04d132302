package cmd

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"github.com/mitchellh/colorstring"
	"github.com/rotisserie/eris"
	"github.com/rs/zerolog"
)

// debugEnabled reports whether DEVTASK_DEBUG asks for stack traces and raw event fields.
func debugEnabled() bool {
	return os.Getenv("DEVTASK_DEBUG") != ""
}

// ConsoleWriter renders zerolog's JSON events as short colored lines.
type ConsoleWriter struct {
	out    io.Writer
	color  colorstring.Colorize
	buffer strings.Builder
	lock   sync.Mutex
}

func NewConsoleWriter(out io.Writer, noColor bool) *ConsoleWriter {
	return &ConsoleWriter{
		out: out,
		color: colorstring.Colorize{
			Colors:  colorstring.DefaultColors,
			Disable: noColor,
		},
	}
}

func (w *ConsoleWriter) Write(p []byte) (n int, err error) {
	w.lock.Lock()
	defer w.lock.Unlock()

	var evt map[string]interface{}
	d := json.NewDecoder(bytes.NewReader(p))
	d.UseNumber()
	err = d.Decode(&evt)
	if err != nil {
		return n, eris.Wrapf(err, "cannot decode event: %s", p)
	}

	w.buffer.Reset()
	switch evt[zerolog.LevelFieldName] {
	case "fatal", "error":
		w.buffer.WriteString(w.color.Color("[red]"))
	case "warn":
		w.buffer.WriteString(w.color.Color("[yellow]"))
	case "debug", "trace":
		w.buffer.WriteString(w.color.Color("[blue]"))
	default:
		if evt["command"] == true {
			w.buffer.WriteString(w.color.Color("[cyan]"))
		} else {
			w.buffer.WriteString(w.color.Color("[green]"))
		}
	}

	if task, ok := evt["task"].(string); ok && task != "" {
		w.buffer.WriteString(task + ": ")
	}

	if evt[zerolog.LevelFieldName] == "error" {
		w.buffer.WriteString("Error: ")
	}

	if evt["command"] == true {
		w.buffer.WriteString("$ ")
	}

	msg, _ := evt[zerolog.MessageFieldName].(string)
	if path, ok := evt["path"].(string); ok {
		// simplify the path
		relPath, err := filepath.Rel(".", path)
		if err == nil {
			msg = strings.ReplaceAll(msg, path, relPath)
		}
	}

	w.buffer.WriteString(msg)

	if errorDetails, ok := evt[zerolog.ErrorFieldName]; ok {
		w.buffer.WriteString("\n")
		w.buffer.WriteString(fmt.Sprint(errorDetails))
	}

	if debugEnabled() {
		names := make([]string, 0, len(evt))
		for name := range evt {
			names = append(names, name)
		}
		sort.Strings(names)

		w.buffer.WriteString("\n")
		for _, name := range names {
			w.buffer.WriteString(fmt.Sprintf("  %s: %+v\n", name, evt[name]))
		}
	}

	w.buffer.WriteString(w.color.Color("[reset]"))
	w.buffer.WriteString("\n")
	_, err = io.WriteString(w.out, w.buffer.String())
	if err != nil {
		return 0, err
	}
	return len(p), nil
}

func init() {
	zerolog.ErrorMarshalFunc = func(err error) interface{} {
		return eris.ToString(err, debugEnabled())
	}
}
