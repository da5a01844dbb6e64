package handlers

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"go.uber.org/zap"

	"github.com/onestopcentre/cybercrime-api/api"
	"github.com/onestopcentre/cybercrime-api/api/scheduler"
	"github.com/onestopcentre/cybercrime-api/config"
	"github.com/onestopcentre/cybercrime-api/databases"
	"github.com/onestopcentre/cybercrime-api/models"
)

// App stores the router and db connection, so it can be reused
type App struct {
	Router    *mux.Router
	Config    config.Config
	Mirror    *Mirror
	Scheduler *scheduler.Scheduler
	dbHelper  databases.DatabaseHelper
}

// New creates a new mux router and all the routes
func (a *App) New() *mux.Router {
	r := mux.NewRouter()

	caseDB := databases.NewCaseDatabase(a.dbHelper)
	hub := NewHub()
	c := Case{DB: caseDB, Hub: hub, Notifier: NewNotifier()}
	sig := UploadSignature{}
	if a.Mirror == nil {
		a.Mirror = NewMirror(a.Config.ChartsDir)
	}

	// healthchex
	r.HandleFunc("/health", healthCheckHandler)

	// the mirror contract stays at the root so the chart pipeline keeps working
	r.Handle("/update-cases", http.HandlerFunc(a.Mirror.UpdateCasesHandler)).Methods("POST")
	r.Handle("/cases.csv", http.HandlerFunc(a.Mirror.CasesCSVHandler)).Methods("GET")
	r.Handle("/charts/list", http.HandlerFunc(a.Mirror.ChartsListHandler)).Methods("GET")
	r.PathPrefix("/charts/").Handler(http.StripPrefix("/charts/", http.FileServer(http.Dir(a.Config.ChartsDir))))

	apiCreate := r.PathPrefix("/api/v1").Subrouter()
	apiCreate.Use(api.TimeoutMiddleware(30 * time.Second))

	apiCreate.Handle("/case", http.HandlerFunc(c.CreateCaseHandler)).Methods("POST")
	apiCreate.Handle("/cases", http.HandlerFunc(c.CasesHandler)).Methods("GET")
	apiCreate.Handle("/cases/stats", http.HandlerFunc(c.CaseStatsHandler)).Methods("GET")
	apiCreate.Handle("/cases/export", http.HandlerFunc(c.ExportCasesHandler)).Methods("GET")
	apiCreate.Handle("/case/{case_number}", http.HandlerFunc(c.CaseByNumberHandler)).Methods("GET")
	apiCreate.Handle("/case/{case_number}/assign", http.HandlerFunc(c.AssignCaseHandler)).Methods("PUT")
	apiCreate.Handle("/case/{case_number}/status", http.HandlerFunc(c.UpdateCaseStatusHandler)).Methods("PUT")
	apiCreate.Handle("/case/{case_number}/priority", http.HandlerFunc(c.CycleCasePriorityHandler)).Methods("PUT")
	apiCreate.Handle("/case/{case_number}/message", http.HandlerFunc(c.PostCaseMessageHandler)).Methods("POST")
	apiCreate.Handle("/case/{case_number}/resolve", http.HandlerFunc(c.ResolveCaseHandler)).Methods("POST")

	apiCreate.Handle("/generate-signature", http.HandlerFunc(sig.GenerateSignature)).Methods("POST")
	apiCreate.Handle("/live", http.HandlerFunc(hub.LiveHandler)).Methods("GET")

	return r
}

// Initialize is invoked by main to connect with the database and create a router
func (a *App) Initialize() error {

	client, err := databases.NewClient(&a.Config)
	if err != nil {
		// if we fail to create a new database client, then kill the pod
		zap.S().With(err).Error("failed to create new client")
		return err
	}

	a.dbHelper = databases.NewDatabase(&a.Config, client)
	err = client.Connect()
	if err != nil {
		// if we fail to connect to the database, then kill the pod
		zap.S().With(err).Error("failed to connect to database")
		return err
	}
	zap.S().Info("cybercrime-api has connected to the database")

	// the unique caseNumber index backstops concurrent case-number allocation
	if err := databases.NewCaseDatabase(a.dbHelper).EnsureIndexes(context.Background()); err != nil {
		zap.S().With(err).Error("failed to create case indexes")
		return err
	}

	// initialize api router
	a.initializeRoutes()

	// the mirror sync job only runs when a mirror endpoint is configured
	if a.Config.MirrorURL != "" {
		a.Scheduler = scheduler.New(databases.NewCaseDatabase(a.dbHelper), a.Config.MirrorURL)
		a.Scheduler.Start()
	}

	return nil
}

func (a *App) initializeRoutes() {
	a.Router = a.New()
}

func healthCheckHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	b, _ := json.Marshal(models.HealthCheckResponse{
		Alive: true,
	})
	_, _ = io.WriteString(w, string(b))
}
