package handlers

import (
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"go.mongodb.org/mongo-driver/bson"

	"github.com/onestopcentre/cybercrime-api/api"
	"github.com/onestopcentre/cybercrime-api/config"
	"github.com/onestopcentre/cybercrime-api/models"
)

// CaseStatsHandler returns aggregate counts for the analytics dashboard.
func (c Case) CaseStatsHandler(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := api.WithQueryTimeout(r.Context())
	defer cancel()

	cases, err := c.DB.Find(ctx, bson.D{})
	if err != nil {
		config.ErrorStatus("failed to get cases", http.StatusNotFound, w, err)
		return
	}

	stats := models.ComputeStats(cases)
	b, err := json.Marshal(stats)
	if err != nil {
		config.ErrorStatus("failed to marshal response", http.StatusInternalServerError, w, err)
		return
	}
	w.WriteHeader(http.StatusOK)
	w.Write(b)
}

// ExportCasesHandler streams every case as a CSV download, with the extra
// Files column listing attachment names.
func (c Case) ExportCasesHandler(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := api.WithQueryTimeout(r.Context())
	defer cancel()

	cases, err := c.DB.Find(ctx, bson.D{})
	if err != nil {
		config.ErrorStatus("failed to get cases", http.StatusNotFound, w, err)
		return
	}

	body := models.CasesExportCSV(cases)
	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition",
		fmt.Sprintf("attachment; filename=%s", models.ExportFileName(time.Now().UTC())))
	w.WriteHeader(http.StatusOK)
	w.Write([]byte(body))
}
