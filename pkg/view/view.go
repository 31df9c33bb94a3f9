// Package view renders the deduplicated live presence table on a fixed
// cadence.
package view

import (
	"context"
	"fmt"
	"io"
	"strconv"
	"time"

	"github.com/logrusorgru/aurora/v4"
	"github.com/pterm/pterm"
	"github.com/xeonx/timeago"

	"github.com/owlmon/owl/pkg/anonymize"
	"github.com/owlmon/owl/pkg/storage"
)

// clearScreen resets the terminal and drops the scrollback.
const clearScreen = "\033c\033[3J"

// locales maps the locale flag to a relative-time configuration.
var locales = map[string]timeago.Config{
	"":   timeago.English,
	"en": timeago.English,
	"pt": timeago.Portuguese,
	"zh": timeago.Chinese,
	"fr": timeago.French,
	"de": timeago.German,
	"tr": timeago.Turkish,
}

// LocaleConfig resolves a locale name for the time-ago column. Unknown
// locales are a configuration fault.
func LocaleConfig(name string) (timeago.Config, error) {
	cfg, ok := locales[name]
	if !ok {
		return timeago.Config{}, fmt.Errorf("unsupported locale %q", name)
	}
	return cfg, nil
}

// Config fixes the renderer behavior for its lifetime.
type Config struct {
	Columns   string
	Anonymize bool
	Interval  time.Duration
	Locale    string
	NoColor   bool
}

// Renderer polls the sighting store and redraws the live table. It is
// single-threaded and non-restartable once started.
type Renderer struct {
	store     *storage.Store
	anonymize *anonymize.Engine
	columns   []Column
	interval  time.Duration
	timeCfg   timeago.Config
	redact    bool
	au        *aurora.Aurora
	out       io.Writer
}

// NewRenderer validates the configuration and binds the renderer to its
// store and anonymization engine. out is the terminal writer.
func NewRenderer(store *storage.Store, engine *anonymize.Engine, config Config, out io.Writer) (*Renderer, error) {
	columns, err := ParseColumns(config.Columns)
	if err != nil {
		return nil, err
	}
	timeCfg, err := LocaleConfig(config.Locale)
	if err != nil {
		return nil, err
	}
	if config.Interval <= 0 {
		return nil, fmt.Errorf("refresh interval must be positive")
	}
	return &Renderer{
		store:     store,
		anonymize: engine,
		columns:   columns,
		interval:  config.Interval,
		timeCfg:   timeCfg,
		redact:    config.Anonymize,
		au:        aurora.New(aurora.WithColors(!config.NoColor)),
		out:       out,
	}, nil
}

// Run redraws the table every interval until ctx is cancelled. A storage
// read fault is fatal to the renderer.
func (r *Renderer) Run(ctx context.Context) error {
	ticker := time.NewTicker(r.interval)
	defer ticker.Stop()

	for {
		if err := r.renderOnce(ctx); err != nil {
			return err
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
		}
	}
}

func (r *Renderer) renderOnce(ctx context.Context) error {
	entries, err := r.store.LatestPerName(ctx)
	if err != nil {
		return fmt.Errorf("failed to read sighting log: %w", err)
	}

	table, err := pterm.DefaultTable.
		WithHasHeader().
		WithSeparator(" | ").
		WithData(r.tableData(entries, time.Now())).
		Srender()
	if err != nil {
		return fmt.Errorf("failed to render table: %w", err)
	}

	fmt.Fprint(r.out, clearScreen)
	fmt.Fprintf(r.out, "%s hosts seen: %d%s · press %s to quit\n\n",
		r.au.Cyan("owl").Bold(), len(entries), r.redactedTag(), r.au.Yellow("q"))
	fmt.Fprintln(r.out, table)
	return nil
}

func (r *Renderer) redactedTag() string {
	if !r.redact {
		return ""
	}
	return fmt.Sprintf(" · %s", r.au.Magenta("anonymized"))
}

// tableData resolves the configured columns for every latest-per-name
// row. Relative times are computed against the wall clock at the start
// of the render cycle.
func (r *Renderer) tableData(entries []storage.LogEntry, now time.Time) pterm.TableData {
	header := make([]string, 0, len(r.columns))
	for _, c := range r.columns {
		header = append(header, c.Short)
	}

	data := pterm.TableData{header}
	for _, e := range entries {
		lastSeen := time.Unix(e.Timestamp, 0)
		row := make([]string, 0, len(r.columns))
		for _, c := range r.columns {
			row = append(row, r.cell(c, e, lastSeen, now))
		}
		data = append(data, row)
	}
	return data
}

func (r *Renderer) cell(c Column, e storage.LogEntry, lastSeen, now time.Time) string {
	switch c.Key {
	case ColumnName:
		if r.redact {
			return r.anonymize.Name(e.Name)
		}
		return e.Name
	case ColumnIP:
		if r.redact {
			return r.anonymize.IP(e.IP)
		}
		return e.IP
	case ColumnTimestamp:
		return strconv.FormatInt(e.Timestamp, 10)
	case ColumnISO:
		return lastSeen.Format(time.RFC3339)
	case ColumnAgo:
		return r.timeCfg.FormatReference(lastSeen, now)
	}
	return ""
}
