package main

import (
	"context"
	"expvar"
	"fmt"
	"log"
	"net/http"
	_ "net/http/pprof"
	"os"

	"github.com/go-playground/validator/v10"
	"github.com/jmoiron/sqlx"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	echoapi "github.com/trezcool/madrasa/apps/api/echo"
	"github.com/trezcool/madrasa/core"
	"github.com/trezcool/madrasa/core/archive"
	"github.com/trezcool/madrasa/core/attendance"
	"github.com/trezcool/madrasa/core/completion"
	"github.com/trezcool/madrasa/core/plan"
	"github.com/trezcool/madrasa/core/schedule"
	"github.com/trezcool/madrasa/core/school"
	"github.com/trezcool/madrasa/core/week"
	appfs "github.com/trezcool/madrasa/fs"
	emailsvc "github.com/trezcool/madrasa/services/email"
	logsvc "github.com/trezcool/madrasa/services/logger"
	"github.com/trezcool/madrasa/storage/database"
	inmemdb "github.com/trezcool/madrasa/storage/database/inmem"
	sqlxrepos "github.com/trezcool/madrasa/storage/database/sqlx"
)

type repositories struct {
	schools    school.Repository
	schedules  schedule.Repository
	weeks      week.Repository
	plans      plan.Repository
	archives   archive.Repository
	attendance attendance.Repository
}

func main() {
	// =========================================================================
	// Set up Dependencies

	conf := core.NewConfig()

	// set up loggers
	logger := logsvc.NewRollbarLogger(
		log.New(os.Stdout, "API : ", log.LstdFlags|log.Lmicroseconds|log.Lshortfile),
		conf,
	)
	logger.Enable(!conf.Debug)

	dbLogger := logsvc.NewRollbarLogger(
		log.New(os.Stdout, "DB : ", log.LstdFlags|log.Lmicroseconds|log.Lshortfile),
		conf,
	)
	dbLogger.Enable(!conf.Debug)

	// set up storage
	var repos repositories
	if conf.Database.Engine == core.EngineMemory {
		repos = newInmemRepositories(inmemdb.Open())
		dbLogger.Warn("using the in-memory database: data is lost on exit")
	} else {
		db, err := setUpDB(conf)
		if err != nil {
			logger.Fatal(fmt.Sprintf("setting up database: %v", err), err)
		}
		defer func() {
			if err = db.Close(); err != nil {
				dbLogger.Fatal("Failed to close", err)
			}
		}()
		repos = newSQLRepositories(db)
	}

	// set up services
	var mailSvc core.EmailService
	if conf.Debug {
		mailSvc = emailsvc.NewConsoleService(conf, log.New(os.Stdout, "MAIL : ", log.LstdFlags))
	} else {
		mailSvc = emailsvc.NewSendgridService(conf, logger)
	}

	schoolSvc := school.NewService(repos.schools)
	scheduleSvc := schedule.NewService(repos.schedules)
	weekSvc := week.NewService(repos.weeks)
	planSvc := plan.NewService(repos.plans, weekSvc)
	attendanceSvc := attendance.NewService(repos.attendance)
	resolver := completion.NewResolver(weekSvc, schoolSvc, scheduleSvc, planSvc)
	reminders := completion.NewReminders(resolver, mailSvc)
	archiveMgr := archive.NewManager(repos.archives, weekSvc, planSvc, attendanceSvc)

	// =========================================================================
	// Initialize App

	logger.Info(fmt.Sprintf("Application initializing : version %q", conf.Build))
	defer logger.Info("Application stopped")

	validate := validator.New()
	translator := core.NewTranslator()
	core.InitValidators(validate, translator)
	school.InitValidators(validate, translator)

	core.ParseEmailTemplates(appfs.EmailTemplates(), conf, logger)

	// =========================================================================
	// Start Debug Service
	//
	// /debug/pprof - Added to the default mux by importing the net/http/pprof package.
	// /debug/vars - Added to the default mux by importing the expvar package.
	// /metrics - Prometheus metrics of the API.

	// Expose important info under /debug/vars.
	expvar.NewString("build").Set(conf.Build)
	expvar.NewString("env").Set(conf.Env)

	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	http.Handle("/metrics", promhttp.HandlerFor(registry, promhttp.HandlerOpts{}))

	go func() {
		if err := http.ListenAndServe(conf.Server.DebugHost, http.DefaultServeMux); err != nil {
			logger.Error(fmt.Sprintf("debug server closed: %v", err), err)
		}
	}()

	// =========================================================================
	// Start API Service

	server := echoapi.NewServer(
		echoapi.ServerDeps{
			Conf:          conf,
			Logger:        logger,
			Validate:      validate,
			Translator:    translator,
			Registerer:    registry,
			SchoolSvc:     schoolSvc,
			ScheduleSvc:   scheduleSvc,
			WeekSvc:       weekSvc,
			PlanSvc:       planSvc,
			Resolver:      resolver,
			Reminders:     reminders,
			ArchiveMgr:    archiveMgr,
			AttendanceSvc: attendanceSvc,
		},
	)

	go func() {
		server.Start()
	}()

	// =========================================================================
	// Shutdown

	select {
	case err := <-server.Errors():
		logger.Fatal(fmt.Sprintf("server error: %v", err), err)

	case sig := <-server.ShutdownSignal():
		logger.Info(fmt.Sprintf("%v: Start shutdown...", sig))

		// give outstanding requests a deadline for completion
		ctx, cancel := context.WithTimeout(context.Background(), conf.Server.ShutdownTimeout)
		defer cancel()

		// asking listener to shutdown and shed load
		if err := server.Shutdown(ctx); err != nil {
			logger.Error(fmt.Sprintf("could not stop server gracefully: %v", err), err)

			if err := server.Close(); err != nil {
				logger.Fatal(fmt.Sprintf("could not force stop server: %v", err), err)
			}
		}
	}
}

func setUpDB(conf *core.Config) (*sqlx.DB, error) {
	if err := database.CreateIfNotExist(conf); err != nil {
		return nil, err
	}

	db, err := database.Open(conf)
	if err != nil {
		return nil, err
	}

	if err = database.Migrate(db); err != nil {
		_ = db.Close()
		return nil, err
	}
	return db, nil
}

func newSQLRepositories(db *sqlx.DB) repositories {
	return repositories{
		schools:    sqlxrepos.NewSchoolRepository(db),
		schedules:  sqlxrepos.NewScheduleRepository(db),
		weeks:      sqlxrepos.NewWeekRepository(db),
		plans:      sqlxrepos.NewPlanRepository(db),
		archives:   sqlxrepos.NewArchiveRepository(db),
		attendance: sqlxrepos.NewAttendanceRepository(db),
	}
}

func newInmemRepositories(db *inmemdb.DB) repositories {
	return repositories{
		schools:    inmemdb.NewSchoolRepository(db),
		schedules:  inmemdb.NewScheduleRepository(db),
		weeks:      inmemdb.NewWeekRepository(db),
		plans:      inmemdb.NewPlanRepository(db),
		archives:   inmemdb.NewArchiveRepository(db),
		attendance: inmemdb.NewAttendanceRepository(db),
	}
}
