package router

import (
	"database/sql"
	"net/http"
	"os"
	"time"

	mem "med-reminder/internal/adapters/storage/memory"
	pg "med-reminder/internal/adapters/storage/postgres"
	sq "med-reminder/internal/adapters/storage/sqlite"

	"med-reminder/internal/adapters/alarms/timers"
	"med-reminder/internal/adapters/notify/lognotify"
	"med-reminder/internal/adapters/notify/push"
	s3proof "med-reminder/internal/adapters/proof/minio"
	"med-reminder/internal/domain/medications"
	"med-reminder/internal/domain/reminders"
	"med-reminder/internal/middleware"
	"med-reminder/internal/platform/logger"
	"med-reminder/internal/platform/workqueue"
	"med-reminder/internal/ports/alarms"
	"med-reminder/internal/ports/auth"
	"med-reminder/internal/ports/notify"
	"med-reminder/internal/ports/proof"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	httpSwagger "github.com/swaggo/http-swagger"

	_ "med-reminder/docs" // documentación swagger generada
)

type Options struct {
	AuthVerifier auth.AuthVerifier // puede ser nil (modo dev)

	// Opcional: si viene, usa Postgres. Si no, decide por env.
	DB *sql.DB

	// Inyectables para tests; nil => se construyen por defecto.
	Repo     medications.Repository
	Alarms   alarms.Scheduler
	Notifier notify.Notifier
	Proofs   proof.Store
	Queue    *workqueue.Queue

	Log     logger.Logger
	Clock24 bool

	// SkipRestore evita encolar el evento de arranque (útil en tests
	// que quieren un worker limpio).
	SkipRestore bool
}

func NewRouter(opts Options) http.Handler {
	r := chi.NewRouter()

	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(chimw.Recoverer)

	r.Use(middleware.AuthContext(opts.AuthVerifier))

	r.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})

	r.Get("/swagger/*", httpSwagger.Handler())

	log := opts.Log
	if log == nil {
		log = logger.NewFromEnv()
	}

	repo := opts.Repo
	if repo == nil {
		repo = repoFromEnv(opts.DB, log)
	}

	queue := opts.Queue
	if queue == nil {
		queue = workqueue.New(64)
	}

	notifier := opts.Notifier
	if notifier == nil {
		notifier = notifierFromEnv(log)
	}

	hub := medications.NewChangeHub()

	// El planificador dispara hacia el dispatcher, que aún no existe:
	// se engancha después con SetHandler.
	sched := opts.Alarms
	var local *timers.Scheduler
	if sched == nil {
		local = timers.New(nil, log)
		sched = local
	}

	svc := medications.NewService(repo, sched, notifier, queue, hub)

	dispatcher := reminders.New(reminders.Options{
		Repo:     repo,
		Alarms:   sched,
		Notifier: notifier,
		Queue:    queue,
		Hub:      hub,
		Log:      log,
		Clock24:  opts.Clock24 || os.Getenv("CLOCK_24H") == "true",
	})
	if local != nil {
		local.SetHandler(dispatcher.HandleAlarm)
	}

	// Rutas por módulo
	medications.RegisterRoutes(r, svc, proofsFromEnv(opts.Proofs, log))
	reminders.RegisterRoutes(r, dispatcher)

	r.Get("/medications/watch", watchHandler(hub, log))

	// Equivalente a BOOT_COMPLETED: re-armar despertadores y avisar de
	// las dosis perdidas mientras el proceso estaba caído.
	if !opts.SkipRestore {
		dispatcher.Enqueue(reminders.Restore{})
	}

	return r
}

func repoFromEnv(db *sql.DB, log logger.Logger) medications.Repository {
	if db == nil {
		if dsn := os.Getenv("DB_DSN"); dsn != "" {
			opened, err := pg.Open(dsn)
			if err == nil {
				db = opened
			} else {
				log.Error("postgres unavailable, falling back", map[string]any{"error": err.Error()})
			}
		}
	}
	if db != nil {
		return pg.NewMedicationsRepo(db)
	}

	if path := os.Getenv("SQLITE_PATH"); path != "" {
		sdb, err := sq.Open(path)
		if err == nil {
			return sq.NewMedicationsRepo(sdb)
		}
		log.Error("sqlite unavailable, falling back", map[string]any{"error": err.Error()})
	}

	return mem.NewMedicationsRepo()
}

func notifierFromEnv(log logger.Logger) notify.Notifier {
	base := os.Getenv("PUSH_URL")
	if base == "" {
		return lognotify.New(log)
	}
	n, err := push.New(push.Config{
		BaseURL: base,
		Token:   os.Getenv("PUSH_TOKEN"),
		Timeout: 5 * time.Second,
	})
	if err != nil {
		log.Error("push gateway misconfigured, logging notifications instead", map[string]any{"error": err.Error()})
		return lognotify.New(log)
	}
	return n
}

func proofsFromEnv(injected proof.Store, log logger.Logger) proof.Store {
	if injected != nil {
		return injected
	}
	endpoint := os.Getenv("S3_ENDPOINT")
	if endpoint == "" {
		return nil // sin almacén: el endpoint de proof responde 503
	}
	store, err := s3proof.New(s3proof.Config{
		Endpoint:  endpoint,
		Region:    os.Getenv("S3_REGION"),
		AccessKey: os.Getenv("S3_ACCESS_KEY"),
		SecretKey: os.Getenv("S3_SECRET_KEY"),
		Bucket:    os.Getenv("S3_BUCKET"),
		UseSSL:    os.Getenv("S3_USE_SSL") == "true",
	})
	if err != nil {
		log.Error("proof storage misconfigured", map[string]any{"error": err.Error()})
		return nil
	}
	return store
}
