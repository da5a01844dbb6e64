package handlers

import (
	"encoding/json"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"go.uber.org/zap"

	"github.com/onestopcentre/cybercrime-api/config"
	"github.com/onestopcentre/cybercrime-api/models"
)

// chartExtensions are the file types the chart listing exposes. The analytics
// pipeline drops rendered charts and HTML reports into the charts directory.
var chartExtensions = map[string]bool{
	".png":  true,
	".jpg":  true,
	".jpeg": true,
	".svg":  true,
	".html": true,
}

// Mirror holds the read-only snapshot of cases pushed by the primary server.
// The snapshot is replaced wholesale on every push, last write wins.
type Mirror struct {
	mu        sync.RWMutex
	cases     []models.Case
	chartsDir string
}

// NewMirror returns a Mirror serving an empty snapshot until the first push.
func NewMirror(chartsDir string) *Mirror {
	return &Mirror{cases: []models.Case{}, chartsDir: chartsDir}
}

// UpdateCasesHandler replaces the mirrored snapshot with the request body.
func (m *Mirror) UpdateCasesHandler(w http.ResponseWriter, r *http.Request) {
	var cases []models.Case
	if err := json.NewDecoder(r.Body).Decode(&cases); err != nil {
		config.ErrorStatus("failed to decode cases payload", http.StatusBadRequest, w, err)
		return
	}
	if cases == nil {
		cases = []models.Case{}
	}

	m.mu.Lock()
	m.cases = cases
	m.mu.Unlock()

	zap.S().Debugw("mirror snapshot replaced", "count", len(cases))

	w.WriteHeader(http.StatusOK)
	json.NewEncoder(w).Encode(map[string]interface{}{
		"message": "Cases updated successfully",
		"count":   len(cases),
	})
}

// CasesCSVHandler serves the mirrored snapshot as CSV for the KNIME pipeline.
func (m *Mirror) CasesCSVHandler(w http.ResponseWriter, r *http.Request) {
	m.mu.RLock()
	body := models.CasesCSV(m.cases)
	m.mu.RUnlock()

	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	w.Write([]byte(body))
}

// ChartsListHandler lists the chart files currently present in the charts
// directory. A missing directory yields an empty list, not an error.
func (m *Mirror) ChartsListHandler(w http.ResponseWriter, r *http.Request) {
	charts := []string{}

	entries, err := os.ReadDir(m.chartsDir)
	if err != nil {
		zap.S().Debugw("charts directory not readable", "dir", m.chartsDir, "error", err)
	} else {
		for _, entry := range entries {
			if entry.IsDir() {
				continue
			}
			ext := strings.ToLower(filepath.Ext(entry.Name()))
			if chartExtensions[ext] {
				charts = append(charts, entry.Name())
			}
		}
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	json.NewEncoder(w).Encode(map[string]interface{}{"charts": charts})
}

// Snapshot returns a copy of the mirrored cases.
func (m *Mirror) Snapshot() []models.Case {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]models.Case, len(m.cases))
	copy(out, m.cases)
	return out
}
