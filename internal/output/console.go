package output

import (
	"fmt"
	"io"
	"os"
	"sync"
	"time"

	"github.com/fatih/color"
	"github.com/mattn/go-colorable"
	"github.com/mattn/go-isatty"

	"domainlog/internal/severity"
)

const consoleTimeFormat = "2006-01-02T15:04:05.000Z07:00"

// Console は標準出力に一行ずつ書き出す Output
type Console struct {
	mu     sync.Mutex
	out    io.Writer
	colors map[severity.Severity]*color.Color
	now    func() time.Time
}

var _ Output = (*Console)(nil)

// NewConsole は標準出力向けの Console を作成する
// 端末の場合のみ色付けする
func NewConsole() *Console {
	fd := os.Stdout.Fd()
	tty := isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)
	return NewConsoleWriter(colorable.NewColorableStdout(), tty)
}

// NewConsoleWriter は任意の Writer に書き出す Console を作成する
func NewConsoleWriter(out io.Writer, colored bool) *Console {
	c := &Console{
		out:    out,
		colors: make(map[severity.Severity]*color.Color),
		now:    time.Now,
	}
	attrs := map[severity.Severity]color.Attribute{
		severity.Fatal:   color.FgHiRed,
		severity.Error:   color.FgRed,
		severity.Warning: color.FgYellow,
		severity.Info:    color.FgGreen,
		severity.Debug:   color.FgCyan,
		severity.Trace:   color.FgHiBlack,
	}
	for s, attr := range attrs {
		col := color.New(attr)
		if colored {
			col.EnableColor()
		} else {
			col.DisableColor()
		}
		c.colors[s] = col
	}
	return c
}

func (c *Console) label(level severity.Severity) string {
	name := fmt.Sprintf("%-7s", level)
	if col, ok := c.colors[level]; ok {
		return col.Sprint(name)
	}
	return name
}

func (c *Console) Write(level severity.Severity, domain string, message string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	timestamp := c.now().Format(consoleTimeFormat)
	_, _ = fmt.Fprintf(c.out, "%s - %s - [%s]: %s\n", timestamp, c.label(level), domain, message)
}
