package session

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/dmitrymomot/sessionkit/pkg/file"
	"github.com/dmitrymomot/sessionkit/pkg/logger"
)

// bootstrapper is implemented by storages that need their directory prepared
// before first use, such as *file.LocalStorage.
type bootstrapper interface {
	Prepare(opts file.DirOptions) error
}

// PersisterConfig wires a Persister to its collaborators.
type PersisterConfig struct {
	Store      Store
	Pool       *Pool
	Storage    file.Storage
	Marshaller Marshaller
	// Filter selects which files are reloaded by Initialize; nil reloads all.
	Filter FileFilter
	// Prefix is prepended to the session id to form the file name.
	Prefix string
	// InactivityTimeout after which an unchanged session is evicted from
	// memory; zero disables eviction.
	InactivityTimeout time.Duration
	// Dir is applied to the save directory by Initialize.
	Dir     file.DirOptions
	Logger  *slog.Logger
	Metrics *Metrics
	Clock   func() time.Time
}

// PassStats summarises one persistence pass.
type PassStats struct {
	Written int
	Evicted int
	Deleted int
	Failed  int
}

// Persister reconciles the store with the save directory: it writes dirty
// sessions, evicts idle ones after a final write, removes files of destroyed
// sessions and reloads files at startup. All file I/O of the package happens
// here, off the request path.
type Persister struct {
	store      Store
	pool       *Pool
	storage    file.Storage
	marshaller Marshaller
	filter     FileFilter
	prefix     string
	timeout    time.Duration
	dir        file.DirOptions
	logger     *slog.Logger
	metrics    *Metrics
	now        func() time.Time
}

// NewPersister validates cfg and builds a Persister.
func NewPersister(cfg PersisterConfig) (*Persister, error) {
	if cfg.Storage == nil {
		return nil, ErrNoStorage
	}
	if cfg.Store == nil || cfg.Pool == nil {
		return nil, fmt.Errorf("%w: persister needs a store and a pool", ErrInvalidConfig)
	}
	if cfg.Prefix == "" {
		return nil, fmt.Errorf("%w: empty file prefix", ErrInvalidConfig)
	}

	p := &Persister{
		store:      cfg.Store,
		pool:       cfg.Pool,
		storage:    cfg.Storage,
		marshaller: cfg.Marshaller,
		filter:     cfg.Filter,
		prefix:     cfg.Prefix,
		timeout:    cfg.InactivityTimeout,
		dir:        cfg.Dir,
		logger:     cfg.Logger,
		metrics:    cfg.Metrics,
		now:        cfg.Clock,
	}

	if p.marshaller == nil {
		p.marshaller = JSONMarshaller{}
	}
	if p.logger == nil {
		p.logger = slog.Default()
	}
	p.logger = p.logger.With(logger.Component("session.persister"))
	if p.metrics == nil {
		p.metrics = NewMetrics(nil)
	}
	if p.now == nil {
		p.now = time.Now
	}

	return p, nil
}

// Filename returns the file name used for id.
func (p *Persister) Filename(id string) string {
	return p.prefix + id
}

// Initialize prepares the save directory and reloads persisted sessions.
// It must complete before the manager serves requests. Corrupt files are
// removed and skipped; only bootstrap failures are returned.
func (p *Persister) Initialize(ctx context.Context) error {
	if b, ok := p.storage.(bootstrapper); ok {
		if err := b.Prepare(p.dir); err != nil {
			return errors.Join(ErrDirectoryBootstrap, err)
		}
	}

	entries, err := p.storage.List(ctx, p.prefix)
	if err != nil {
		return errors.Join(ErrDirectoryBootstrap, err)
	}

	now := p.now()
	var loaded, skipped, corrupt int

	for _, e := range entries {
		if p.filter != nil && !p.filter(e, now) {
			skipped++
			continue
		}

		id := strings.TrimPrefix(e.Name, p.prefix)
		if id == "" {
			continue
		}

		if _, err := p.load(ctx, id); err != nil {
			switch {
			case errors.Is(err, ErrCorruptSession):
				corrupt++
			case errors.Is(err, errSessionExpired):
				skipped++
			case errors.Is(err, ErrSessionNotFound):
				// Removed since listing
			default:
				return err
			}
			continue
		}
		loaded++
	}

	p.metrics.Live.Set(float64(p.store.Len()))
	p.logger.InfoContext(ctx, "sessions reloaded",
		slog.Int("loaded", loaded),
		slog.Int("skipped", skipped),
		slog.Int("corrupt", corrupt),
	)

	return nil
}

// Unpersist loads a single session from its file unless it is already live.
// A corrupt file is removed and reported as not found.
func (p *Persister) Unpersist(ctx context.Context, id string) (*Session, bool) {
	if s, ok := p.store.Get(id); ok {
		return s, true
	}

	s, err := p.load(ctx, id)
	if err != nil {
		if !errors.Is(err, ErrSessionNotFound) && !errors.Is(err, ErrCorruptSession) && !errors.Is(err, errSessionExpired) {
			p.logger.ErrorContext(ctx, "failed to load session",
				logger.SessionID(id),
				logger.Error(err),
			)
		}
		return nil, false
	}
	return s, true
}

// load reads, decodes and attaches the session stored for id.
func (p *Persister) load(ctx context.Context, id string) (*Session, error) {
	name := p.Filename(id)

	data, err := p.storage.Read(ctx, name)
	if err != nil {
		if errors.Is(err, file.ErrFileNotFound) {
			return nil, ErrSessionNotFound
		}
		return nil, p.discard(ctx, id, err)
	}

	rec, err := p.marshaller.Unmarshal(data)
	if err != nil {
		return nil, p.discard(ctx, id, err)
	}
	if rec.ID != id {
		return nil, p.discard(ctx, id, fmt.Errorf("file holds session %q", rec.ID))
	}
	now := p.now()
	if rec.LastActivity.IsZero() {
		rec.LastActivity = now
	}
	// Eviction rewrites the file, so its mtime says nothing about activity.
	if p.timeout > 0 && now.Sub(rec.LastActivity) > p.timeout {
		return nil, errSessionExpired
	}

	s, err := p.pool.Acquire(ctx)
	if err != nil {
		return nil, err
	}
	s.Restore(rec)

	p.store.Set(id, s, rec.Checksum())
	p.metrics.Reloaded.Inc()

	return s, nil
}

// discard removes an unreadable session file so it is never retried.
func (p *Persister) discard(ctx context.Context, id string, cause error) error {
	p.metrics.Corrupt.Inc()
	p.logger.WarnContext(ctx, "removing unreadable session file",
		logger.SessionID(id),
		logger.Error(cause),
	)

	if err := p.RemoveSessionFile(ctx, id); err != nil {
		p.logger.ErrorContext(ctx, "failed to remove unreadable session file",
			logger.SessionID(id),
			logger.Error(err),
		)
	}

	return fmt.Errorf("%w: %v", ErrCorruptSession, cause)
}

// SessionFileExists reports whether a file is stored for id.
func (p *Persister) SessionFileExists(ctx context.Context, id string) bool {
	return p.storage.Exists(ctx, p.Filename(id))
}

// RemoveSessionFile deletes the file stored for id. A missing file is not an error.
func (p *Persister) RemoveSessionFile(ctx context.Context, id string) error {
	err := p.storage.Delete(ctx, p.Filename(id))
	if err == nil {
		p.metrics.Deletes.Inc()
		return nil
	}
	if errors.Is(err, file.ErrFileNotFound) {
		return nil
	}
	return err
}

type action int

const (
	actionNone action = iota
	actionWritten
	actionEvicted
	actionDeleted
)

// Persist runs one pass over every stored session. A failure for one id is
// logged and reported in the returned error while the pass continues; the
// session stays dirty and is retried on the next pass.
func (p *Persister) Persist(ctx context.Context) (PassStats, error) {
	start := time.Now()
	now := p.now()

	var (
		stats PassStats
		errs  []error
	)

	for _, e := range p.store.Entries() {
		act, err := p.reconcile(ctx, e, now)
		if err != nil {
			stats.Failed++
			errs = append(errs, err)
			p.metrics.WriteFailures.Inc()
			p.logger.ErrorContext(ctx, "failed to persist session",
				logger.SessionID(e.ID),
				logger.Error(err),
			)
			continue
		}

		switch act {
		case actionWritten:
			stats.Written++
		case actionEvicted:
			stats.Written++
			stats.Evicted++
			p.metrics.Evictions.Inc()
			p.logger.DebugContext(ctx, "session evicted from memory", logger.SessionID(e.ID))
		case actionDeleted:
			stats.Deleted++
		}
	}

	p.metrics.Live.Set(float64(p.store.Len()))
	p.metrics.PassDuration.Observe(time.Since(start).Seconds())

	if stats != (PassStats{}) {
		p.logger.DebugContext(ctx, "persistence pass finished",
			slog.Int("written", stats.Written),
			slog.Int("evicted", stats.Evicted),
			slog.Int("deleted", stats.Deleted),
			slog.Int("failed", stats.Failed),
			logger.Duration(time.Since(start)),
		)
	}

	return stats, errors.Join(errs...)
}

// reconcile takes exactly one action for the entry:
//   - destroyed: remove the file and the entry
//   - dirty: write the file and record the new checksum
//   - idle past the timeout: write the file, then evict the entry
//   - otherwise nothing
//
// A dirty session that is also idle is written before it is evicted.
func (p *Persister) reconcile(ctx context.Context, e Entry, now time.Time) (action, error) {
	rec := e.Session.Snapshot()

	if rec.ID == "" {
		if err := p.RemoveSessionFile(ctx, e.ID); err != nil {
			return actionNone, &PersistError{ID: e.ID, Op: OpDelete, Err: err}
		}
		p.store.RemoveIf(e.ID, e.Session, nil)
		return actionDeleted, nil
	}

	sum := rec.Checksum()
	dirty := !e.Tracked || sum != e.Checksum
	idle := p.timeout > 0 && now.Sub(rec.LastActivity) > p.timeout

	if !dirty && !idle {
		return actionNone, nil
	}

	if err := p.write(ctx, e.ID, rec); err != nil {
		return actionNone, &PersistError{ID: e.ID, Op: OpWrite, Err: err}
	}

	// A request may have resumed the session since the snapshot.
	if idle && p.store.RemoveIf(e.ID, e.Session, func(s *Session) bool {
		return now.Sub(s.LastActivity()) > p.timeout
	}) {
		return actionEvicted, nil
	}

	p.store.SetChecksum(e.ID, e.Session, sum)
	return actionWritten, nil
}

func (p *Persister) write(ctx context.Context, id string, rec Record) error {
	data, err := p.marshaller.Marshal(rec)
	if err != nil {
		return err
	}
	if err := p.storage.Write(ctx, p.Filename(id), data); err != nil {
		return err
	}
	p.metrics.Writes.Inc()
	return nil
}
