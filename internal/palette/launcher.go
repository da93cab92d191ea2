package palette

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"html"
	"os/exec"
	"strconv"
	"strings"
)

// launcher drives a dmenu-compatible program over stdin/stdout.
type launcher struct {
	command string
	// indexOutput launchers print the chosen row number instead of its text.
	indexOutput bool
	markup      bool
}

func newLauncher(command string) *launcher {
	l := &launcher{command: command}
	switch command {
	case "rofi":
		l.indexOutput, l.markup = true, true
	case "fuzzel":
		l.indexOutput = true
	case "wofi":
		l.markup = true
	}
	return l
}

func (l *launcher) Name() string { return l.command }

func (l *launcher) Show(ctx context.Context, prompt string, items []Item) (Item, error) {
	if len(items) == 0 {
		return Item{}, fmt.Errorf("menu: no items to show")
	}
	rows := l.rows(items)
	input := make([]string, len(rows))
	for i, it := range rows {
		input[i] = l.formatItem(it)
	}

	cmd := exec.CommandContext(ctx, l.command, l.args(prompt, rows)...)
	cmd.Stdin = strings.NewReader(strings.Join(input, "\n"))
	var stderr bytes.Buffer
	cmd.Stderr = &stderr

	out, err := cmd.Output()
	selection := strings.TrimSpace(string(out))
	if err != nil {
		if selection == "" && isCancelExit(err) {
			return Item{}, ErrCancelled
		}
		if msg := strings.TrimSpace(stderr.String()); msg != "" {
			return Item{}, fmt.Errorf("%s failed: %s", l.command, msg)
		}
		return Item{}, fmt.Errorf("%s failed: %w", l.command, err)
	}
	if selection == "" {
		return Item{}, ErrCancelled
	}

	it, err := l.parseSelection(selection, rows)
	if err != nil {
		return Item{}, err
	}
	// Launchers without non-selectable rows can still return a header.
	if it.IsHeader {
		return Item{}, ErrCancelled
	}
	return it, nil
}

// rows returns the items as shown. Text-matching launchers need unique
// labels, so duplicates get a counter.
func (l *launcher) rows(items []Item) []Item {
	out := make([]Item, len(items))
	copy(out, items)
	if l.indexOutput {
		return out
	}
	seen := make(map[string]int)
	for i := range out {
		key := sanitizeLabel(out[i].Label)
		if n := seen[key]; n > 0 {
			out[i].Label = fmt.Sprintf("%s (%d)", key, n+1)
		}
		seen[key]++
	}
	return out
}

func (l *launcher) args(prompt string, rows []Item) []string {
	var args []string
	switch l.command {
	case "rofi":
		args = []string{"-dmenu", "-i", "-p", prompt, "-format", "i", "-no-custom", "-markup-rows", "-show-icons"}
		var active []string
		selected := -1
		for i, it := range rows {
			if it.IsHeader {
				continue
			}
			if selected < 0 {
				selected = i
			}
			if it.IsActive {
				active = append(active, strconv.Itoa(i))
			}
		}
		if len(active) > 0 {
			args = append(args, "-a", strings.Join(active, ","))
		}
		if selected >= 0 {
			args = append(args, "-selected-row", strconv.Itoa(selected))
		}
	case "fuzzel":
		args = []string{"--dmenu", "--prompt", prompt + " ", "--index"}
	case "wofi":
		args = []string{"--dmenu", "--prompt", prompt, "--allow-markup"}
	default:
		args = []string{"-i", "-p", prompt}
	}
	return args
}

func (l *launcher) formatItem(it Item) string {
	display := sanitizeLabel(it.Label)
	if l.markup {
		display = html.EscapeString(display)
		if it.IsHeader {
			display = "<b>" + display + "</b>"
		}
	} else if it.IsActive {
		display = "* " + display
	}
	if l.command != "rofi" {
		return display
	}

	// rofi row options: a single NUL, then key\x1fvalue pairs.
	var attrs []string
	if it.IsHeader {
		attrs = append(attrs, "nonselectable", "true")
	}
	if it.Icon != "" {
		attrs = append(attrs, "icon", sanitizeRofiField(it.Icon))
	}
	if len(attrs) == 0 {
		return display
	}
	return display + "\x00" + strings.Join(attrs, "\x1f")
}

func (l *launcher) parseSelection(selection string, rows []Item) (Item, error) {
	if l.indexOutput {
		if idx, err := strconv.Atoi(selection); err == nil {
			if idx < 0 || idx >= len(rows) {
				return Item{}, fmt.Errorf("menu: index %d out of range", idx)
			}
			return rows[idx], nil
		}
	}
	// Text launchers print back the row exactly as it was written.
	for _, it := range rows {
		if l.formatItem(it) == selection {
			return it, nil
		}
	}
	return Item{}, fmt.Errorf("menu: unknown selection %q", selection)
}

func sanitizeLabel(label string) string {
	label = strings.ReplaceAll(label, "\r", " ")
	label = strings.ReplaceAll(label, "\n", " ")
	return strings.TrimSpace(label)
}

func sanitizeRofiField(value string) string {
	value = strings.ReplaceAll(value, "\x00", " ")
	value = strings.ReplaceAll(value, "\x1f", " ")
	return sanitizeLabel(value)
}

func isCancelExit(err error) bool {
	var exitErr *exec.ExitError
	if !errors.As(err, &exitErr) {
		return false
	}
	// 1 means no selection, 130 is Ctrl+C.
	switch exitErr.ExitCode() {
	case 1, 130:
		return true
	}
	return false
}
