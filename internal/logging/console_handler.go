package logging

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"path/filepath"
	"strconv"
	"strings"
	"sync"
	"time"
)

const consoleTimeLayout = "15:04:05"

// consoleHandler writes one line per record:
//
//	15:04:05 INFO  [generator] Mina: homework generated output=... contents=current4+past2
//
// component and student are lifted into the prefix; remaining attributes
// follow as key=value pairs, quoted when they contain spaces.
type consoleHandler struct {
	mu        *sync.Mutex
	w         io.Writer
	level     *slog.LevelVar
	addSource bool
	prefix    string
	attrs     []slog.Attr
}

func newConsoleHandler(w io.Writer, lvl *slog.LevelVar, addSource bool) slog.Handler {
	return &consoleHandler{mu: &sync.Mutex{}, w: w, level: lvl, addSource: addSource}
}

func (h *consoleHandler) Enabled(_ context.Context, level slog.Level) bool {
	return level >= h.level.Level()
}

func (h *consoleHandler) Handle(_ context.Context, record slog.Record) error {
	fields := newFieldList()
	for _, attr := range h.attrs {
		fields.add("", attr)
	}
	record.Attrs(func(attr slog.Attr) bool {
		fields.add(h.prefix, attr)
		return true
	})
	component := fields.take(FieldComponent)
	student := fields.take(FieldStudent)

	ts := record.Time
	if ts.IsZero() {
		ts = time.Now()
	}

	var b strings.Builder
	b.WriteString(ts.Local().Format(consoleTimeLayout))
	b.WriteByte(' ')
	fmt.Fprintf(&b, "%-5s", levelName(record.Level))
	if component != "" {
		b.WriteString(" [" + component + "]")
	}
	b.WriteByte(' ')
	if student != "" {
		b.WriteString(student + ": ")
	}
	b.WriteString(strings.TrimSpace(record.Message))
	for _, f := range fields.items {
		b.WriteByte(' ')
		b.WriteString(f.key)
		b.WriteByte('=')
		b.WriteString(quoteIfNeeded(renderValue(f.value)))
	}
	if h.addSource && record.Level < slog.LevelInfo {
		if src := record.Source(); src != nil {
			fmt.Fprintf(&b, " (%s:%d)", filepath.Base(src.File), src.Line)
		}
	}
	b.WriteByte('\n')

	h.mu.Lock()
	defer h.mu.Unlock()
	_, err := io.WriteString(h.w, b.String())
	return err
}

func (h *consoleHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	clone := *h
	clone.attrs = make([]slog.Attr, 0, len(h.attrs)+len(attrs))
	clone.attrs = append(clone.attrs, h.attrs...)
	for _, attr := range attrs {
		if h.prefix != "" {
			attr.Key = h.prefix + attr.Key
		}
		clone.attrs = append(clone.attrs, attr)
	}
	return &clone
}

func (h *consoleHandler) WithGroup(name string) slog.Handler {
	if name == "" {
		return h
	}
	clone := *h
	clone.prefix = h.prefix + name + "."
	return &clone
}

type field struct {
	key   string
	value slog.Value
}

// fieldList keeps attributes in insertion order; a repeated key overwrites
// the earlier value in place.
type fieldList struct {
	items []field
	index map[string]int
}

func newFieldList() *fieldList {
	return &fieldList{index: make(map[string]int)}
}

func (l *fieldList) add(prefix string, attr slog.Attr) {
	if attr.Equal(slog.Attr{}) {
		return
	}
	value := attr.Value.Resolve()
	if value.Kind() == slog.KindGroup {
		next := prefix
		if attr.Key != "" {
			next = prefix + attr.Key + "."
		}
		for _, member := range value.Group() {
			l.add(next, member)
		}
		return
	}
	key := prefix + attr.Key
	if key == "" {
		return
	}
	if i, ok := l.index[key]; ok {
		l.items[i].value = value
		return
	}
	l.index[key] = len(l.items)
	l.items = append(l.items, field{key: key, value: value})
}

// take removes key and returns its rendered value.
func (l *fieldList) take(key string) string {
	i, ok := l.index[key]
	if !ok {
		return ""
	}
	value := renderValue(l.items[i].value)
	l.items = append(l.items[:i], l.items[i+1:]...)
	delete(l.index, key)
	for k, pos := range l.index {
		if pos > i {
			l.index[k] = pos - 1
		}
	}
	return value
}

func renderValue(v slog.Value) string {
	switch v.Kind() {
	case slog.KindTime:
		return v.Time().Format(time.RFC3339)
	case slog.KindFloat64:
		return strconv.FormatFloat(v.Float64(), 'f', -1, 64)
	case slog.KindAny:
		if err, ok := v.Any().(error); ok {
			return err.Error()
		}
		return fmt.Sprint(v.Any())
	default:
		return v.String()
	}
}

func quoteIfNeeded(s string) string {
	if s == "" || strings.ContainsAny(s, " =\"\t\n") {
		return strconv.Quote(s)
	}
	return s
}

func levelName(level slog.Level) string {
	switch {
	case level >= slog.LevelError:
		return "ERROR"
	case level >= slog.LevelWarn:
		return "WARN"
	case level >= slog.LevelInfo:
		return "INFO"
	default:
		return "DEBUG"
	}
}
