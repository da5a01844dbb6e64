package models

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Message is one note in a case's investigator/reporter thread. Messages are
// append-only; there is no edit or delete.
type Message struct {
	ID             string             `bson:"_id" json:"id"`
	Text           string             `bson:"text" json:"text"`
	Timestamp      primitive.DateTime `bson:"timestamp" json:"timestamp"`
	InvestigatorID string             `bson:"investigatorId" json:"investigatorId"`
	Files          []Attachment       `bson:"files,omitempty" json:"files,omitempty"`
}

// AppendMessage validates and appends one message to the case thread, bumping
// updatedAt. A message needs text or at least one attachment that survived the
// size filter; otherwise ErrEmptyMessage. An empty investigator id falls back
// to the case's assigned investigator.
func (c *Case) AppendMessage(text, investigatorID string, files []Attachment) (Message, []string, error) {
	kept, rejected := FilterAttachments(files)
	text = strings.TrimSpace(text)
	if text == "" && len(kept) == 0 {
		return Message{}, rejected, ErrEmptyMessage
	}
	if investigatorID == "" {
		investigatorID = c.AssignedTo
	}

	m := Message{
		ID:             uuid.New().String(),
		Text:           text,
		Timestamp:      primitive.NewDateTimeFromTime(time.Now()),
		InvestigatorID: investigatorID,
		Files:          kept,
	}
	c.Messages = append(c.Messages, m)
	c.touch()
	return m, rejected, nil
}
