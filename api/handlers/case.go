package handlers

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"regexp"
	"strconv"
	"time"

	"github.com/gorilla/mux"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"

	"github.com/onestopcentre/cybercrime-api/api"
	"github.com/onestopcentre/cybercrime-api/config"
	"github.com/onestopcentre/cybercrime-api/databases"
	"github.com/onestopcentre/cybercrime-api/models"
)

// Case exported for testing purposes
type Case struct {
	DB       databases.CaseDatabase
	Hub      *Hub
	Notifier *Notifier
}

// getPage returns the one-based page number, defaulting to the first page.
func getPage(r *http.Request) int {
	page, err := strconv.Atoi(r.URL.Query().Get("page"))
	if err != nil || page < 1 {
		return 1
	}
	return page
}

func getLimit(r *http.Request) int {
	limit, err := strconv.Atoi(r.URL.Query().Get("limit"))
	if err != nil || limit <= 0 {
		zap.S().Debugf("limit not set, using default of 10")
		return 10
	}
	return limit
}

// CreateCaseHandler accepts a citizen submission and opens a new case:
// a fresh CR-<year>-<seq> number, status New, priority derived from the
// description. Oversize attachments are reported back, not fatal.
func (c Case) CreateCaseHandler(w http.ResponseWriter, r *http.Request) {
	var sub models.CaseSubmission
	if err := json.NewDecoder(r.Body).Decode(&sub); err != nil {
		config.ErrorStatus("failed to decode request body", http.StatusBadRequest, w, err)
		return
	}

	ctx, cancel := api.WithQueryTimeout(r.Context())
	defer cancel()

	// a concurrent create can win the same case number; the unique index
	// rejects the loser, which re-allocates and retries
	var newCase models.Case
	var rejected []string
	for attempt := 0; ; attempt++ {
		caseNumber, err := c.DB.NextCaseNumber(ctx, time.Now().UTC().Year())
		if err != nil {
			config.ErrorStatus("failed to allocate case number", http.StatusInternalServerError, w, err)
			return
		}

		newCase, rejected, err = models.NewCase(sub, caseNumber)
		if err != nil {
			config.ErrorStatus("invalid case submission", http.StatusBadRequest, w, err)
			return
		}
		newCase.ID = primitive.NewObjectID()

		_, err = c.DB.InsertOne(ctx, newCase)
		if err == nil {
			break
		}
		if mongo.IsDuplicateKeyError(err) && attempt < 2 {
			continue
		}
		config.ErrorStatus("failed to create case", http.StatusInternalServerError, w, err)
		return
	}
	c.broadcast("case_created", newCase.CaseNumber)

	w.WriteHeader(http.StatusCreated)
	json.NewEncoder(w).Encode(map[string]interface{}{
		"message":       "Case submitted successfully",
		"case":          newCase,
		"rejectedFiles": rejected,
	})
}

// CaseByNumberHandler returns a case by case number
func (c Case) CaseByNumberHandler(w http.ResponseWriter, r *http.Request) {
	caseNumber := mux.Vars(r)["case_number"]
	zap.S().Debugf("case_number: %v", caseNumber)

	ctx, cancel := api.WithQueryTimeout(r.Context())
	defer cancel()

	dbResp, err := c.DB.FindOne(ctx, bson.M{"caseNumber": caseNumber})
	if err != nil {
		config.ErrorStatus("failed to get case by case number", http.StatusNotFound, w, err)
		return
	}

	b, err := json.Marshal(dbResp)
	if err != nil {
		config.ErrorStatus("failed to marshal response", http.StatusInternalServerError, w, err)
		return
	}
	w.WriteHeader(http.StatusOK)
	w.Write(b)
}

// CasesHandler returns cases filtered by status, crime type, priority and a
// case-insensitive case-number substring search, paginated like every other
// list endpoint.
func (c Case) CasesHandler(w http.ResponseWriter, r *http.Request) {
	limit := getLimit(r)
	page := getPage(r)

	filter := bson.M{}
	q := r.URL.Query()
	if v := q.Get("status"); v != "" && v != "all" {
		filter["status"] = v
	}
	if v := q.Get("crimeType"); v != "" && v != "all" {
		filter["crimeType"] = v
	}
	if v := q.Get("priority"); v != "" && v != "all" {
		filter["priority"] = v
	}
	if v := q.Get("search"); v != "" {
		filter["caseNumber"] = bson.M{"$regex": regexp.QuoteMeta(v), "$options": "i"}
	}

	ctx, cancel := api.WithQueryTimeout(r.Context())
	defer cancel()

	dbResp, err := c.DB.Find(ctx, filter, databases.NewMongoPaginate(limit, page))
	if err != nil {
		config.ErrorStatus("failed to get cases", http.StatusNotFound, w, err)
		return
	}
	// The dashboard expects a data array even when nothing matched
	if len(dbResp) == 0 {
		dbResp = []models.Case{}
	}
	b, err := json.Marshal(dbResp)
	if err != nil {
		config.ErrorStatus("failed to marshal response", http.StatusInternalServerError, w, err)
		return
	}
	w.WriteHeader(http.StatusOK)
	w.Write(b)
}

// AssignCaseHandler assigns an investigator to a case. A New case advances to
// Investigating; re-assigning the same investigator is a no-op.
func (c Case) AssignCaseHandler(w http.ResponseWriter, r *http.Request) {
	caseNumber := mux.Vars(r)["case_number"]

	var requestBody struct {
		InvestigatorID string `json:"investigatorId"`
	}
	if err := json.NewDecoder(r.Body).Decode(&requestBody); err != nil {
		config.ErrorStatus("failed to decode request body", http.StatusBadRequest, w, err)
		return
	}
	if requestBody.InvestigatorID == "" {
		config.ErrorStatus("investigatorId is required", http.StatusBadRequest, w, fmt.Errorf("empty investigatorId"))
		return
	}

	ctx, cancel := api.WithQueryTimeout(r.Context())
	defer cancel()

	caseData, err := c.DB.FindOne(ctx, bson.M{"caseNumber": caseNumber})
	if err != nil {
		config.ErrorStatus("failed to get case by case number", http.StatusNotFound, w, err)
		return
	}

	if caseData.Assign(requestBody.InvestigatorID) {
		update := bson.M{"$set": bson.M{
			"assignedTo": caseData.AssignedTo,
			"status":     caseData.Status,
			"updatedAt":  caseData.UpdatedAt,
		}}
		if err := c.applyUpdate(ctx, caseNumber, update); err != nil {
			config.ErrorStatus("failed to assign case", http.StatusInternalServerError, w, err)
			return
		}
		c.broadcast("case_updated", caseNumber)
	}

	w.WriteHeader(http.StatusOK)
	json.NewEncoder(w).Encode(map[string]interface{}{
		"message": "Case assigned successfully",
		"case":    caseData,
	})
}

// UpdateCaseStatusHandler advances a case one step along the lifecycle chain.
// Moving into Resolved stamps resolvedAt and notifies the reporter.
func (c Case) UpdateCaseStatusHandler(w http.ResponseWriter, r *http.Request) {
	caseNumber := mux.Vars(r)["case_number"]

	var requestBody struct {
		Status string `json:"status"`
	}
	if err := json.NewDecoder(r.Body).Decode(&requestBody); err != nil {
		config.ErrorStatus("failed to decode request body", http.StatusBadRequest, w, err)
		return
	}
	target, err := models.ValidateStatus(requestBody.Status)
	if err != nil {
		config.ErrorStatus("invalid status value", http.StatusBadRequest, w, err)
		return
	}

	ctx, cancel := api.WithQueryTimeout(r.Context())
	defer cancel()

	caseData, err := c.DB.FindOne(ctx, bson.M{"caseNumber": caseNumber})
	if err != nil {
		config.ErrorStatus("failed to get case by case number", http.StatusNotFound, w, err)
		return
	}

	if err := caseData.SetStatus(target); err != nil {
		config.ErrorStatus("illegal status transition", http.StatusConflict, w, err)
		return
	}

	set := bson.M{
		"status":    caseData.Status,
		"updatedAt": caseData.UpdatedAt,
	}
	if caseData.ResolvedAt != nil {
		set["resolvedAt"] = caseData.ResolvedAt
	}
	if err := c.applyUpdate(ctx, caseNumber, bson.M{"$set": set}); err != nil {
		config.ErrorStatus("failed to update case status", http.StatusInternalServerError, w, err)
		return
	}
	c.broadcast("case_updated", caseNumber)
	if target == models.StatusResolved {
		c.notifyResolved(*caseData)
	}

	w.WriteHeader(http.StatusOK)
	json.NewEncoder(w).Encode(map[string]interface{}{
		"message": fmt.Sprintf("Case status updated to: %s", caseData.Status),
		"case":    caseData,
	})
}

// CycleCasePriorityHandler overrides the derived priority by cycling
// Low -> Medium -> High -> Low. Closed cases reject the override.
func (c Case) CycleCasePriorityHandler(w http.ResponseWriter, r *http.Request) {
	caseNumber := mux.Vars(r)["case_number"]

	ctx, cancel := api.WithQueryTimeout(r.Context())
	defer cancel()

	caseData, err := c.DB.FindOne(ctx, bson.M{"caseNumber": caseNumber})
	if err != nil {
		config.ErrorStatus("failed to get case by case number", http.StatusNotFound, w, err)
		return
	}

	if err := caseData.CyclePriority(); err != nil {
		config.ErrorStatus("cannot change priority", http.StatusConflict, w, err)
		return
	}

	update := bson.M{"$set": bson.M{
		"priority":  caseData.Priority,
		"updatedAt": caseData.UpdatedAt,
	}}
	if err := c.applyUpdate(ctx, caseNumber, update); err != nil {
		config.ErrorStatus("failed to update case priority", http.StatusInternalServerError, w, err)
		return
	}
	c.broadcast("case_updated", caseNumber)

	w.WriteHeader(http.StatusOK)
	json.NewEncoder(w).Encode(map[string]interface{}{
		"message": fmt.Sprintf("Priority changed to: %s", caseData.Priority),
		"case":    caseData,
	})
}

// applyUpdate writes one mutation keyed by case number, treating a vanished
// document as not found.
func (c Case) applyUpdate(ctx context.Context, caseNumber string, update interface{}) error {
	matched, err := c.DB.UpdateOne(ctx, bson.M{"caseNumber": caseNumber}, update)
	if err != nil {
		return err
	}
	if matched == 0 {
		return models.ErrNotFound
	}
	return nil
}

func (c Case) broadcast(event, caseNumber string) {
	if c.Hub != nil {
		c.Hub.Broadcast(event, caseNumber)
	}
}

func (c Case) notifyResolved(caseData models.Case) {
	if c.Notifier != nil {
		go c.Notifier.CaseResolved(caseData)
	}
}
