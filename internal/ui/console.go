package ui

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strings"
	"sync"

	"storefront/internal/logger"

	"github.com/charmbracelet/lipgloss"
	"go.uber.org/zap"
)

// Console prints toasts and asks confirmations on a terminal.
type Console struct {
	mu     sync.Mutex
	out    io.Writer
	in     *bufio.Reader
	styles map[Level]lipgloss.Style
	title  lipgloss.Style
	danger lipgloss.Style

	// AssumeYes answers every confirmation without prompting.
	AssumeYes bool
}

// NewConsole colours output only when out is a terminal.
func NewConsole(in io.Reader, out io.Writer) *Console {
	r := lipgloss.NewRenderer(out)
	return &Console{
		in:  bufio.NewReader(in),
		out: out,
		styles: map[Level]lipgloss.Style{
			LevelSuccess: r.NewStyle().Foreground(lipgloss.Color("#10B981")).Bold(true),
			LevelError:   r.NewStyle().Foreground(lipgloss.Color("#EF4444")).Bold(true),
			LevelWarning: r.NewStyle().Foreground(lipgloss.Color("#F59E0B")).Bold(true),
			LevelInfo:    r.NewStyle().Foreground(lipgloss.Color("#3B82F6")),
		},
		title:  r.NewStyle().Bold(true),
		danger: r.NewStyle().Foreground(lipgloss.Color("#EF4444")).Bold(true),
	}
}

var prefixes = map[Level]string{
	LevelSuccess: "✔",
	LevelError:   "✘",
	LevelWarning: "!",
	LevelInfo:    "i",
}

func (c *Console) Notify(level Level, message string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	fmt.Fprintf(c.out, "%s %s\n", c.styles[level].Render(prefixes[level]), message)
}

func (c *Console) Confirm(ctx context.Context, conf Confirmation) bool {
	if c.AssumeYes {
		return true
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	confirm := conf.ConfirmText
	if confirm == "" {
		confirm = "yes"
	}
	title := c.title
	if conf.Danger {
		title = c.danger
	}
	fmt.Fprintf(c.out, "%s\n%s [%s/N]: ", title.Render(conf.Title), conf.Message, strings.ToLower(confirm))

	answer := make(chan string, 1)
	go func() {
		line, _ := c.in.ReadString('\n')
		answer <- strings.ToLower(strings.TrimSpace(line))
	}()

	select {
	case <-ctx.Done():
		fmt.Fprintln(c.out)
		return false
	case a := <-answer:
		return a == "y" || a == "yes" || a == strings.ToLower(confirm)
	}
}

// LogNavigator records navigation events in the log. A terminal has no router.
type LogNavigator struct {
	mu         sync.Mutex
	current    string
	OnNavigate func(route string)
}

func (n *LogNavigator) Navigate(route string) {
	n.mu.Lock()
	n.current = route
	hook := n.OnNavigate
	n.mu.Unlock()

	logger.L().Debug("navigate", zap.String("layer", "ui"), zap.String("route", route))
	if hook != nil {
		hook(route)
	}
}

// Current returns the last route navigated to.
func (n *LogNavigator) Current() string {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.current
}
