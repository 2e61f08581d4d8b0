package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"

	"gopkg.in/yaml.v3"

	"github.com/dshills/marginalia/internal/annotation"
	"github.com/dshills/marginalia/internal/config"
	"github.com/dshills/marginalia/internal/decoration"
	"github.com/dshills/marginalia/internal/engine"
	"github.com/dshills/marginalia/internal/logging"
	"github.com/dshills/marginalia/internal/text"
	"github.com/dshills/marginalia/internal/txn"
	"github.com/dshills/marginalia/internal/widget"
)

// RenderCmd prints the decoration sets for a file.
type RenderCmd struct {
	File      string   `arg:"" help:"Markdown file." type:"existingfile"`
	Window    []string `help:"Visible range as FROM:TO. Repeatable; default is the whole file." sep:"none"`
	Cursor    int      `help:"Cursor position. Negative leaves the cursor at 0." default:"-1"`
	Focus     bool     `help:"Render as a focused view."`
	ReadOnly  bool     `name:"read-only" help:"Render as a read-only view."`
	Numbering bool     `help:"Number headings."`
	Annotate  []string `help:"Annotate FROM:TO before rendering. Repeatable." sep:"none"`
	Format    string   `help:"Output format." enum:"json,yaml" default:"json"`
}

type renderReport struct {
	Atomic    []*decoration.Descriptor  `json:"atomic"`
	Ordinary  []*decoration.Descriptor  `json:"ordinary"`
	Widgets   []*decoration.Descriptor  `json:"widgets"`
	Events    []widget.Event            `json:"events,omitempty"`
	Selection annotation.SelectionState `json:"selection"`
}

// Run renders the file.
func (c *RenderCmd) Run(g *Globals) error {
	cfg, logger, err := g.setup()
	if err != nil {
		return err
	}
	if c.Numbering {
		cfg.Decoration.Numbering = true
	}
	windows, err := parseRanges(c.Window)
	if err != nil {
		return fmt.Errorf("--window: %w", err)
	}
	spans, err := parseRanges(c.Annotate)
	if err != nil {
		return fmt.Errorf("--annotate: %w", err)
	}

	eng, err := openEngine(c.File, engine.WithConfig(cfg), engine.WithLogger(logger))
	if err != nil {
		return err
	}
	defer eng.Close()

	out := eng.Output()
	events := out.WidgetEvents
	if len(spans) > 0 {
		entries := make([]annotation.Entry, 0, len(spans))
		for i, r := range spans {
			a, err := eng.Anchor(r)
			if err != nil {
				return fmt.Errorf("--annotate %d:%d: %w", r.From, r.To, err)
			}
			entries = append(entries, annotation.Entry{ID: "a" + strconv.Itoa(i+1), Anchor: a})
		}
		if _, _, err := eng.Dispatch(txn.Spec{Effects: []txn.Effect{annotation.SetAnnotations.Of(entries)}}); err != nil {
			return err
		}
	}
	if c.Cursor >= 0 {
		cursor := txn.Cursor(c.Cursor)
		spec := txn.Spec{
			Selection: &cursor,
			Effects:   []txn.Effect{decoration.ForceUpdate.Of(struct{}{})},
			Event:     txn.EventSelect,
		}
		if _, _, err := eng.Dispatch(spec); err != nil {
			return err
		}
	}
	out, err = eng.SetView(engine.ViewState{Windows: windows, Focused: c.Focus, ReadOnly: c.ReadOnly})
	if err != nil {
		return err
	}

	return encode(os.Stdout, c.Format, renderReport{
		Atomic:    out.Atomic.All(),
		Ordinary:  out.Ordinary.All(),
		Widgets:   out.Widgets.All(),
		Events:    events,
		Selection: out.Selection,
	})
}

// WidgetsCmd lists the widgets of a file.
type WidgetsCmd struct {
	File   string `arg:"" help:"Markdown file." type:"existingfile"`
	Format string `help:"Output format." enum:"json,yaml" default:"json"`
}

// Run lists the widgets.
func (c *WidgetsCmd) Run(g *Globals) error {
	cfg, logger, err := g.setup()
	if err != nil {
		return err
	}
	eng, err := openEngine(c.File, engine.WithConfig(cfg), engine.WithLogger(logger))
	if err != nil {
		return err
	}
	defer eng.Close()
	return encode(os.Stdout, c.Format, eng.Widgets())
}

// NavCmd prints where widget navigation lands.
type NavCmd struct {
	File   string `arg:"" help:"Markdown file." type:"existingfile"`
	Cursor int    `help:"Starting cursor position."`
	Dir    string `help:"Direction to move." enum:"next,prev" default:"next"`
}

// Run prints the target position.
func (c *NavCmd) Run(g *Globals) error {
	dir, err := widget.ParseDirection(c.Dir)
	if err != nil {
		return err
	}
	cfg, logger, err := g.setup()
	if err != nil {
		return err
	}
	eng, err := openEngine(c.File, engine.WithConfig(cfg), engine.WithLogger(logger))
	if err != nil {
		return err
	}
	defer eng.Close()

	cursor := txn.Cursor(c.Cursor)
	if _, _, err := eng.Dispatch(txn.Spec{Selection: &cursor, Event: txn.EventSelect}); err != nil {
		return err
	}
	pos, _, err := eng.Navigate(dir)
	if err != nil {
		return err
	}
	fmt.Println(pos)
	return nil
}

// CheckCmd validates a configuration file.
type CheckCmd struct {
	Path  string `arg:"" help:"Configuration file." type:"existingfile"`
	Watch bool   `help:"Keep running and re-check the file whenever it changes."`
}

// Run checks the file once, or until interrupted with --watch.
func (c *CheckCmd) Run(g *Globals) error {
	cfg, err := config.Load(c.Path)
	if err != nil {
		return err
	}
	if err := cfg.ApplyEnv(os.LookupEnv); err != nil {
		return err
	}
	report(os.Stdout, c.Path, cfg)
	if !c.Watch {
		return nil
	}

	logger, err := newLogger(cfg.Log)
	if err != nil {
		return err
	}
	w, err := config.NewWatcher(c.Path, func(cfg config.Config, err error) {
		if err != nil {
			fmt.Fprintf(os.Stderr, "%s: %v\n", c.Path, err)
			return
		}
		report(os.Stdout, c.Path, cfg)
	}, config.WithEnv(os.LookupEnv), config.WithWatcherLogger(logging.Component(logger, "watcher")))
	if err != nil {
		return err
	}
	defer w.Close()

	signals := make(chan os.Signal, 1)
	signal.Notify(signals, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(signals)
	<-signals
	return nil
}

func report(w io.Writer, path string, cfg config.Config) {
	fmt.Fprintf(w, "%s: ok (%d widget definitions)\n", path, len(cfg.Widgets.Definitions))
}

func openEngine(path string, opts ...engine.Option) (*engine.Engine, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return engine.New(text.NewDoc(string(data)), opts...)
}

// parseRanges parses FROM:TO pairs.
func parseRanges(specs []string) ([]text.Range, error) {
	out := make([]text.Range, 0, len(specs))
	for _, s := range specs {
		from, to, ok := strings.Cut(s, ":")
		if !ok {
			return nil, fmt.Errorf("range %q: want FROM:TO", s)
		}
		f, err := strconv.Atoi(strings.TrimSpace(from))
		if err != nil {
			return nil, fmt.Errorf("range %q: %w", s, err)
		}
		t, err := strconv.Atoi(strings.TrimSpace(to))
		if err != nil {
			return nil, fmt.Errorf("range %q: %w", s, err)
		}
		if f < 0 || t < f {
			return nil, fmt.Errorf("range %q: want 0 <= FROM <= TO", s)
		}
		out = append(out, text.Range{From: f, To: t})
	}
	return out, nil
}

// encode writes v as indented JSON or YAML. Payload types carry only json
// tags, so YAML output goes through a JSON round trip to keep the same keys.
func encode(w io.Writer, format string, v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return err
	}
	if format == "yaml" {
		var generic any
		if err := json.Unmarshal(data, &generic); err != nil {
			return err
		}
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(generic); err != nil {
			return err
		}
		return enc.Close()
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	var raw json.RawMessage = data
	return enc.Encode(raw)
}
