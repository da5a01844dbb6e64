package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/gorilla/mux"
	"go.mongodb.org/mongo-driver/bson"

	"github.com/onestopcentre/cybercrime-api/api"
	"github.com/onestopcentre/cybercrime-api/config"
	"github.com/onestopcentre/cybercrime-api/models"
)

// caseMessageRequest is the investigator-facing message payload. Files above
// the size cap are dropped per-file and reported back in rejectedFiles.
type caseMessageRequest struct {
	Text           string              `json:"text"`
	InvestigatorID string              `json:"investigatorId"`
	Files          []models.Attachment `json:"files"`

	// ResolveWithoutMessage acknowledges resolving with a blank message,
	// mirroring the dashboard's confirmation prompt. Only the resolve
	// endpoint reads it.
	ResolveWithoutMessage bool `json:"resolveWithoutMessage"`
}

// PostCaseMessageHandler appends one message to a case's communication thread.
// The thread is append-only; a message needs text or at least one attachment.
func (c Case) PostCaseMessageHandler(w http.ResponseWriter, r *http.Request) {
	caseNumber := mux.Vars(r)["case_number"]

	var requestBody caseMessageRequest
	if err := json.NewDecoder(r.Body).Decode(&requestBody); err != nil {
		config.ErrorStatus("failed to decode request body", http.StatusBadRequest, w, err)
		return
	}

	ctx, cancel := api.WithQueryTimeout(r.Context())
	defer cancel()

	caseData, err := c.DB.FindOne(ctx, bson.M{"caseNumber": caseNumber})
	if err != nil {
		config.ErrorStatus("failed to get case by case number", http.StatusNotFound, w, err)
		return
	}

	message, rejected, err := caseData.AppendMessage(requestBody.Text, requestBody.InvestigatorID, requestBody.Files)
	if err != nil {
		config.ErrorStatus("message rejected", http.StatusBadRequest, w, err)
		return
	}

	update := bson.M{
		"$push": bson.M{"messages": message},
		"$set":  bson.M{"updatedAt": caseData.UpdatedAt},
	}
	if err := c.applyUpdate(ctx, caseNumber, update); err != nil {
		config.ErrorStatus("failed to save message", http.StatusInternalServerError, w, err)
		return
	}
	c.broadcast("case_updated", caseNumber)

	w.WriteHeader(http.StatusCreated)
	json.NewEncoder(w).Encode(map[string]interface{}{
		"message":       "Message sent successfully",
		"caseMessage":   message,
		"rejectedFiles": rejected,
	})
}

// ResolveCaseHandler posts a closing message and marks the case Resolved as
// one write. A blank message is allowed only with the explicit
// resolveWithoutMessage acknowledgement; an illegal transition leaves the
// thread untouched.
func (c Case) ResolveCaseHandler(w http.ResponseWriter, r *http.Request) {
	caseNumber := mux.Vars(r)["case_number"]

	var requestBody caseMessageRequest
	if err := json.NewDecoder(r.Body).Decode(&requestBody); err != nil {
		config.ErrorStatus("failed to decode request body", http.StatusBadRequest, w, err)
		return
	}

	ctx, cancel := api.WithQueryTimeout(r.Context())
	defer cancel()

	caseData, err := c.DB.FindOne(ctx, bson.M{"caseNumber": caseNumber})
	if err != nil {
		config.ErrorStatus("failed to get case by case number", http.StatusNotFound, w, err)
		return
	}

	message, rejected, msgErr := caseData.AppendMessage(requestBody.Text, requestBody.InvestigatorID, requestBody.Files)
	if msgErr != nil {
		if !errors.Is(msgErr, models.ErrEmptyMessage) || !requestBody.ResolveWithoutMessage {
			config.ErrorStatus("message required to resolve", http.StatusBadRequest, w, msgErr)
			return
		}
	}

	if err := caseData.SetStatus(models.StatusResolved); err != nil {
		config.ErrorStatus("illegal status transition", http.StatusConflict, w, err)
		return
	}

	set := bson.M{
		"status":     caseData.Status,
		"resolvedAt": caseData.ResolvedAt,
		"updatedAt":  caseData.UpdatedAt,
	}
	update := bson.M{"$set": set}
	if msgErr == nil {
		update["$push"] = bson.M{"messages": message}
	}
	if err := c.applyUpdate(ctx, caseNumber, update); err != nil {
		config.ErrorStatus("failed to resolve case", http.StatusInternalServerError, w, err)
		return
	}
	c.broadcast("case_updated", caseNumber)
	c.notifyResolved(*caseData)

	w.WriteHeader(http.StatusOK)
	resp := map[string]interface{}{
		"message":       "Case marked as resolved",
		"case":          caseData,
		"rejectedFiles": rejected,
	}
	if msgErr == nil {
		resp["caseMessage"] = message
	}
	json.NewEncoder(w).Encode(resp)
}
