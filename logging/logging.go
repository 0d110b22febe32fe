// Package logging sets up the game's structured logger.
//
// The terminal belongs to the game UI, so records go to a file as one JSON
// object per line. With no file configured the logger discards everything.
package logging

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"
	"sync"
	"time"
)

// LineHandler is a slog.Handler that writes one compact JSON object per
// record: time, level and msg first, then the attributes, with groups nested
// as objects.
type LineHandler struct {
	out   *lineWriter
	level slog.Leveler

	// scoped holds attributes added with WithAttrs, each under the groups
	// that were open at the time.
	scoped []scopedAttr
	groups []string
}

type scopedAttr struct {
	groups []string
	attr   slog.Attr
}

// lineWriter serialises whole lines onto w; handlers derived with WithAttrs
// or WithGroup share it.
type lineWriter struct {
	mu sync.Mutex
	w  io.Writer
}

func (lw *lineWriter) writeLine(b []byte) error {
	lw.mu.Lock()
	defer lw.mu.Unlock()
	_, err := lw.w.Write(append(b, '\n'))
	return err
}

// NewLineHandler writes records at or above level to w. A nil level means
// slog.LevelInfo.
func NewLineHandler(w io.Writer, level slog.Leveler) *LineHandler {
	if level == nil {
		level = slog.LevelInfo
	}
	return &LineHandler{out: &lineWriter{w: w}, level: level}
}

func (h *LineHandler) Enabled(_ context.Context, level slog.Level) bool {
	return level >= h.level.Level()
}

func (h *LineHandler) Handle(_ context.Context, r slog.Record) error {
	when := r.Time
	if when.IsZero() {
		when = time.Now()
	}

	attrs := fields{}
	for _, sa := range h.scoped {
		attrs.put(sa.groups, sa.attr)
	}
	r.Attrs(func(a slog.Attr) bool {
		attrs.put(h.groups, a)
		return true
	})

	line, err := json.Marshal(record{
		Time:  when.Format(time.RFC3339Nano),
		Level: r.Level.String(),
		Msg:   r.Message,
		Attrs: attrs,
	})
	if err != nil {
		// Drop the attributes rather than the record.
		line, _ = json.Marshal(record{
			Time:  when.Format(time.RFC3339Nano),
			Level: r.Level.String(),
			Msg:   r.Message,
			Attrs: fields{"log_error": err.Error()},
		})
	}
	return h.out.writeLine(line)
}

func (h *LineHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	next := *h
	next.scoped = make([]scopedAttr, 0, len(h.scoped)+len(attrs))
	next.scoped = append(next.scoped, h.scoped...)
	for _, a := range attrs {
		next.scoped = append(next.scoped, scopedAttr{groups: h.groups, attr: a})
	}
	return &next
}

func (h *LineHandler) WithGroup(name string) slog.Handler {
	if name == "" {
		return h
	}
	next := *h
	next.groups = append(append([]string(nil), h.groups...), name)
	return &next
}

// record is the fixed head of every line; Attrs is flattened after it.
type record struct {
	Time  string
	Level string
	Msg   string
	Attrs fields
}

func (r record) MarshalJSON() ([]byte, error) {
	head, err := json.Marshal(struct {
		Time  string `json:"time"`
		Level string `json:"level"`
		Msg   string `json:"msg"`
	}{r.Time, r.Level, r.Msg})
	if err != nil || len(r.Attrs) == 0 {
		return head, err
	}
	tail, err := json.Marshal(r.Attrs)
	if err != nil {
		return nil, err
	}
	// Splice {"time":..,"msg":..} and {"k":..} into one object.
	out := append(head[:len(head)-1], ',')
	return append(out, tail[1:]...), nil
}

// fields is a tree of attribute values keyed by attribute and group name.
type fields map[string]any

func (f fields) put(groups []string, a slog.Attr) {
	a.Value = a.Value.Resolve()
	if a.Key == "" && a.Value.Kind() != slog.KindGroup {
		return
	}
	f.under(groups).set(a)
}

func (f fields) under(groups []string) fields {
	cur := f
	for _, g := range groups {
		sub, ok := cur[g].(fields)
		if !ok {
			sub = fields{}
			cur[g] = sub
		}
		cur = sub
	}
	return cur
}

func (f fields) set(a slog.Attr) {
	v := a.Value.Resolve()
	if v.Kind() != slog.KindGroup {
		f[a.Key] = jsonValue(v)
		return
	}
	dst := f
	if a.Key != "" {
		dst = f.under([]string{a.Key})
	}
	for _, ga := range v.Group() {
		dst.put(nil, ga)
	}
}

// jsonValue renders durations, times, errors and Stringers as text and leaves
// everything else to encoding/json.
func jsonValue(v slog.Value) any {
	switch v.Kind() {
	case slog.KindDuration:
		return v.Duration().String()
	case slog.KindTime:
		return v.Time().Format(time.RFC3339Nano)
	case slog.KindAny:
		switch a := v.Any().(type) {
		case error:
			return a.Error()
		case fmt.Stringer:
			return a.String()
		}
	}
	return v.Any()
}

type nopCloser struct{}

func (nopCloser) Close() error { return nil }

// Open returns a logger appending to path at the given level. An empty path
// yields a logger that discards every record.
func Open(path string, level slog.Level) (*slog.Logger, io.Closer, error) {
	if path == "" {
		return slog.New(slog.DiscardHandler), nopCloser{}, nil
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, nil, fmt.Errorf("open log file: %w", err)
	}
	return slog.New(NewLineHandler(f, level)), f, nil
}
