package runner

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"
	"unicode"

	"github.com/projectdiscovery/gologger"

	"github.com/owlmon/owl/pkg/anonymize"
	"github.com/owlmon/owl/pkg/capture"
	"github.com/owlmon/owl/pkg/pipeline"
	"github.com/owlmon/owl/pkg/sighting"
	"github.com/owlmon/owl/pkg/storage"
	"github.com/owlmon/owl/pkg/view"
)

// State is the session lifecycle phase. Transitions are linear:
// starting, running, stopping, stopped.
type State int32

const (
	StateStarting State = iota
	StateRunning
	StateStopping
	StateStopped
)

func (s State) String() string {
	switch s {
	case StateStarting:
		return "starting"
	case StateRunning:
		return "running"
	case StateStopping:
		return "stopping"
	case StateStopped:
		return "stopped"
	}
	return "unknown"
}

const (
	quitKey         = 'q'
	keyPollInterval = 100 * time.Millisecond
)

// Runner contains the internal logic of the program
type Runner struct {
	options  *Options
	store    *storage.Store
	queue    *sighting.Queue
	writer   *pipeline.Writer
	renderer *view.Renderer
	state    State
}

// NewRunner instance
func NewRunner(options *Options) (*Runner, error) {
	cachePath, err := options.CachePath()
	if err != nil {
		return nil, err
	}
	gologger.Verbose().Msgf("sighting log at %s", cachePath)

	store, err := storage.Open(cachePath)
	if err != nil {
		return nil, err
	}

	queue := sighting.NewQueue()
	renderer, err := view.NewRenderer(store, anonymize.New(), view.Config{
		Columns:   options.Columns,
		Anonymize: options.Anonymize,
		Interval:  time.Duration(options.Interval) * time.Second,
		Locale:    options.Locale,
		NoColor:   options.NoColor,
	}, os.Stdout)
	if err != nil {
		_ = store.Close()
		return nil, err
	}

	return &Runner{
		options:  options,
		store:    store,
		queue:    queue,
		writer:   pipeline.NewWriter(queue, store),
		renderer: renderer,
	}, nil
}

// Run drives the session until the user quits or ctx is cancelled.
// Shutdown is ordered: sentinel first, then the writer drain, then the
// terminal restore via the deferred guard release.
func (r *Runner) Run(ctx context.Context) error {
	r.setState(StateStarting)

	// Capture producer. Detached: an adapter fault kills only the
	// producer, the rest of the session keeps serving the cached log.
	go func() {
		adapter, err := capture.Open(capture.Config{
			Interface: r.options.Interface,
			Filter:    r.options.Filter,
		})
		if err != nil {
			gologger.Error().Msgf("capture adapter: %s", err)
			return
		}
		defer adapter.Close()
		if err := adapter.Run(r.queue.Put); err != nil && !errors.Is(err, capture.ErrSourceClosed) {
			gologger.Error().Msgf("capture adapter: %s", err)
		}
	}()

	// Persistence writer. The only goroutine awaited at shutdown; it
	// must drain the queue even when ctx is already cancelled, so it
	// gets a background context.
	go func() {
		if err := r.writer.Run(context.Background()); err != nil {
			gologger.Error().Msgf("persistence writer: %s", err)
		}
	}()

	// Live renderer. Cancelled after the writer drain so the final
	// table reflects every persisted sighting.
	renderCtx, renderCancel := context.WithCancel(context.Background())
	defer renderCancel()
	go func() {
		if err := r.renderer.Run(renderCtx); err != nil && !errors.Is(err, context.Canceled) {
			gologger.Error().Msgf("live view: %s", err)
		}
	}()

	guard, err := acquireInputMode(int(os.Stdin.Fd()))
	if err != nil {
		r.stop()
		return fmt.Errorf("failed to enter cbreak mode: %w", err)
	}
	defer guard.Release()

	r.setState(StateRunning)

	for {
		select {
		case <-ctx.Done():
			r.stop()
			return nil
		default:
		}

		key, ok, err := guard.Poll(keyPollInterval)
		if err != nil {
			r.stop()
			return fmt.Errorf("failed to poll for keystrokes: %w", err)
		}
		if ok && unicode.ToLower(rune(key)) == quitKey {
			r.stop()
			return nil
		}
	}
}

// stop enqueues the shutdown sentinel and blocks until the persistence
// writer has drained everything ahead of it.
func (r *Runner) stop() {
	r.setState(StateStopping)
	r.queue.PutSentinel()
	<-r.writer.Done()
	r.setState(StateStopped)
}

func (r *Runner) setState(s State) {
	r.state = s
	gologger.Verbose().Msgf("session state: %s", s)
}

// Close the runner instance
func (r *Runner) Close() {
	_ = r.store.Close()
}
