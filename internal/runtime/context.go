// Package runtime provides application runtime context for Treatclock.
package runtime

import (
	"context"
	"errors"
	"os"

	"github.com/treatclock/treatclock/internal/activity"
	"github.com/treatclock/treatclock/internal/config"
	"github.com/treatclock/treatclock/internal/engine"
	apperrors "github.com/treatclock/treatclock/internal/errors"
	"github.com/treatclock/treatclock/internal/localstore"
	"github.com/treatclock/treatclock/internal/logging"
	"github.com/treatclock/treatclock/internal/model"
	"github.com/treatclock/treatclock/internal/notify"
	"github.com/treatclock/treatclock/internal/output"
	"github.com/treatclock/treatclock/internal/remote"
	"github.com/treatclock/treatclock/internal/session"
	"github.com/treatclock/treatclock/internal/storage"
)

// Context holds the application runtime context: both databases, the
// repositories, the session view, and a running reconciliation engine.
type Context struct {
	DB        *storage.DB
	SharedDB  *storage.DB
	Formatter *output.Formatter

	// Repositories
	RoomRepo    *storage.RoomRepo
	ItemRepo    *storage.ItemRepo
	DoseLogRepo *storage.DoseLogRepo
	WebhookRepo *storage.WebhookRepo
	StateRepo   *storage.StateRepo

	Profile    *model.Profile
	Remote     remote.Client
	LocalStore *localstore.Store
	Dispatcher *notify.Dispatcher
	Sink       *notify.TimerSink
	Scheduler  *notify.Scheduler
	Session    *session.Context
	Engine     *engine.Engine

	lock   *storage.FileLock
	cancel context.CancelFunc
}

// Options configures the runtime context.
type Options struct {
	DBPath     string
	SharedPath string
	InMemory   bool
	Format     output.Format
	ColorMode  output.ColorMode
	Debug      bool
}

// DefaultOptions returns default runtime options.
func DefaultOptions() Options {
	return Options{
		DBPath:     storage.DefaultPath(),
		SharedPath: storage.DefaultSharedPath(),
		InMemory:   false,
		Format:     output.FormatCLI,
		ColorMode:  output.ColorAuto,
	}
}

// New creates a new runtime context and starts the engine loop.
func New(opts Options) (*Context, error) {
	if opts.Debug {
		logging.InitDebug()
	} else {
		logging.Init(logging.DefaultConfig())
	}
	config.Global.LoadFromEnv()

	// Check for environment variable overrides
	if envPath := os.Getenv("TREATCLOCK_DATABASE"); envPath != "" {
		if envPath == ":memory:" {
			opts.InMemory = true
		} else {
			opts.DBPath = envPath
		}
	}
	if envPath := os.Getenv("TREATCLOCK_SHARED_PATH"); envPath != "" {
		opts.SharedPath = envPath
	}

	// One process per data directory. The watch daemon holds Badger
	// open for its whole run; the lock turns a concurrent invocation
	// into a readable refusal instead of Badger's raw directory error.
	var lock *storage.FileLock
	if !opts.InMemory && opts.DBPath != "" {
		if err := os.MkdirAll(opts.DBPath, 0755); err != nil {
			return nil, err
		}
		lock = storage.NewFileLock(opts.DBPath)
		if err := lock.Acquire(); err != nil {
			if errors.Is(err, storage.ErrLockHeld) {
				return nil, apperrors.NewUserError(
					err.Error(),
					"Another treatclock process (perhaps 'treatclock watch') has the data directory open. Stop it and retry.")
			}
			return nil, err
		}
	}

	db, err := storage.Open(storage.Options{
		Path:     opts.DBPath,
		InMemory: opts.InMemory,
	})
	if err != nil {
		if lock != nil {
			lock.Release()
		}
		return nil, err
	}

	sharedDB, err := storage.Open(storage.Options{
		Path:     opts.SharedPath,
		InMemory: opts.InMemory,
	})
	if err != nil {
		db.Close()
		if lock != nil {
			lock.Release()
		}
		return nil, err
	}

	// Repositories
	roomRepo := storage.NewRoomRepo(db)
	itemRepo := storage.NewItemRepo(db)
	doseLogRepo := storage.NewDoseLogRepo(db)
	webhookRepo := storage.NewWebhookRepo(db)
	stateRepo := storage.NewStateRepo(db)

	profile, err := stateRepo.Profile()
	if err != nil {
		sharedDB.Close()
		db.Close()
		if lock != nil {
			lock.Release()
		}
		return nil, err
	}

	client := remote.NewBadgerClient(sharedDB)

	local := localstore.New([]localstore.Source{
		localstore.NewFileSource(""),
		localstore.NewKVSource(db),
	})

	dispatcher := notify.NewDispatcher(webhookRepo)
	sink := notify.NewTimerSink(dispatcher)
	sched := notify.NewScheduler(sink, roomRepo)

	sess := session.New(roomRepo, itemRepo, doseLogRepo, stateRepo, client)

	presence := activity.NewMirror(client, profile.UserID)
	eng := engine.New(sess, local, client, sched, engine.WithPresence(presence))

	engCtx, cancel := context.WithCancel(context.Background())
	go eng.Run(engCtx)

	formatter := output.NewFormatter()
	formatter.Format = opts.Format
	formatter.ColorMode = opts.ColorMode

	return &Context{
		DB:          db,
		SharedDB:    sharedDB,
		Formatter:   formatter,
		RoomRepo:    roomRepo,
		ItemRepo:    itemRepo,
		DoseLogRepo: doseLogRepo,
		WebhookRepo: webhookRepo,
		StateRepo:   stateRepo,
		Profile:     profile,
		Remote:      client,
		LocalStore:  local,
		Dispatcher:  dispatcher,
		Sink:        sink,
		Scheduler:   sched,
		Session:     sess,
		Engine:      eng,
		lock:        lock,
		cancel:      cancel,
	}, nil
}

// Close stops the engine loop and closes both databases.
func (c *Context) Close() error {
	if c.cancel != nil {
		c.cancel()
		<-c.Engine.Done()
	}
	if c.Sink != nil {
		c.Sink.Close()
	}
	c.Dispatcher.StopQueue()

	var firstErr error
	if c.SharedDB != nil {
		if err := c.SharedDB.Close(); err != nil {
			firstErr = err
		}
	}
	if c.DB != nil {
		if err := c.DB.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	if c.lock != nil {
		if err := c.lock.Release(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}

// IsJSON returns true if output format is JSON.
func (c *Context) IsJSON() bool {
	return c.Formatter.IsJSON()
}
