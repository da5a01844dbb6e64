package models

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// CaseStatus walks a fixed chain; a case may only advance one step at a time.
type CaseStatus string

// Case lifecycle states.
const (
	StatusNew           CaseStatus = "New"
	StatusInvestigating CaseStatus = "Investigating"
	StatusResolved      CaseStatus = "Resolved"
	StatusClosed        CaseStatus = "Closed"
)

var statusChain = []CaseStatus{StatusNew, StatusInvestigating, StatusResolved, StatusClosed}

// CanTransition reports whether a case may move from s to target. Only the
// immediate next state in the chain is legal; no skipping, no going backward.
func (s CaseStatus) CanTransition(target CaseStatus) bool {
	for i := 0; i < len(statusChain)-1; i++ {
		if statusChain[i] == s {
			return statusChain[i+1] == target
		}
	}
	return false
}

// IsTerminal reports whether no further lifecycle action may touch the case.
func (s CaseStatus) IsTerminal() bool {
	return s == StatusClosed
}

// ValidateStatus sanitizes a status string from a request body.
func ValidateStatus(status string) (CaseStatus, error) {
	for _, s := range statusChain {
		if s == CaseStatus(status) {
			return s, nil
		}
	}
	return "", fmt.Errorf("invalid status: %s", status)
}

// CasePriority is the investigator-facing urgency of a case.
type CasePriority string

// Case priority levels.
const (
	PriorityLow    CasePriority = "Low"
	PriorityMedium CasePriority = "Medium"
	PriorityHigh   CasePriority = "High"
)

var priorityCycle = []CasePriority{PriorityLow, PriorityMedium, PriorityHigh}

// Next returns the following priority in the Low -> Medium -> High -> Low cycle.
func (p CasePriority) Next() CasePriority {
	for i, cur := range priorityCycle {
		if cur == p {
			return priorityCycle[(i+1)%len(priorityCycle)]
		}
	}
	return PriorityLow
}

// urgentKeywords trigger an automatic High priority at submission time.
var urgentKeywords = []string{"hack", "steal", "money", "bank", "urgent", "help", "scam", "fraud"}

// DerivePriority scores a description once, at submission. Any urgent keyword
// (case-insensitive) makes the case High; long descriptions without one are
// Medium; everything else is Low. The heuristic never re-runs on edits.
func DerivePriority(description string) CasePriority {
	lower := strings.ToLower(description)
	for _, keyword := range urgentKeywords {
		if strings.Contains(lower, keyword) {
			return PriorityHigh
		}
	}
	if len(description) > 100 {
		return PriorityMedium
	}
	return PriorityLow
}

// ValidCrimeTypes is the fixed set accepted on the intake form.
var ValidCrimeTypes = []string{
	"phishing",
	"hacking",
	"scam",
	"identity-theft",
	"cyberbullying",
	"malware",
	"financial-fraud",
	"data-breach",
	"other",
}

// ValidateCrimeType rejects crime types outside the intake form's fixed set.
func ValidateCrimeType(crimeType string) error {
	for _, t := range ValidCrimeTypes {
		if t == crimeType {
			return nil
		}
	}
	return fmt.Errorf("invalid crime type: %s", crimeType)
}

// MaxAttachmentSize is the per-file cap; larger files are rejected one by one
// while the rest of the batch is still processed.
const MaxAttachmentSize = 10 << 20

// Attachment describes one uploaded evidence file. Images carry their bytes
// inline as a base64 data URI so the dashboard can render them directly.
type Attachment struct {
	ID      string `bson:"_id" json:"id"`
	Name    string `bson:"name" json:"name"`
	Size    int64  `bson:"size" json:"size"`
	Type    string `bson:"type" json:"type"`
	Data    string `bson:"data,omitempty" json:"data,omitempty"`
	IsImage bool   `bson:"isImage" json:"isImage"`
}

// ValidateAttachment enforces the per-file size cap.
func ValidateAttachment(f Attachment) error {
	if f.Size > MaxAttachmentSize {
		return fmt.Errorf("%s: %w", f.Name, ErrOversizeAttachment)
	}
	return nil
}

// FilterAttachments drops oversize files and assigns ids to the rest. The
// rejected file names come back so the caller can surface a warning without
// failing the whole batch.
func FilterAttachments(files []Attachment) (kept []Attachment, rejected []string) {
	for _, f := range files {
		if err := ValidateAttachment(f); err != nil {
			rejected = append(rejected, f.Name)
			continue
		}
		if f.ID == "" {
			f.ID = uuid.New().String()
		}
		kept = append(kept, f)
	}
	return kept, rejected
}

// Case holds the structure for the case collection in mongo. A case owns its
// messages and attachments outright; they persist and die with the document.
type Case struct {
	ID            primitive.ObjectID  `bson:"_id,omitempty" json:"id,omitempty"`
	CaseNumber    string              `bson:"caseNumber" json:"caseNumber"`
	CrimeType     string              `bson:"crimeType" json:"crimeType"`
	IncidentDate  string              `bson:"incidentDate" json:"incidentDate"`
	IncidentTime  string              `bson:"incidentTime" json:"incidentTime"`
	Platform      string              `bson:"platform" json:"platform"`
	Description   string              `bson:"description" json:"description"`
	ReporterName  string              `bson:"reporterName" json:"reporterName"`
	ReporterEmail string              `bson:"reporterEmail" json:"reporterEmail"`
	ReporterPhone string              `bson:"reporterPhone" json:"reporterPhone"`
	Anonymous     bool                `bson:"anonymous" json:"anonymous"`
	Status        CaseStatus          `bson:"status" json:"status"`
	Priority      CasePriority        `bson:"priority" json:"priority"`
	AssignedTo    string              `bson:"assignedTo,omitempty" json:"assignedTo,omitempty"`
	SubmittedAt   primitive.DateTime  `bson:"submittedAt" json:"submittedAt"`
	UpdatedAt     primitive.DateTime  `bson:"updatedAt" json:"updatedAt"`
	ResolvedAt    *primitive.DateTime `bson:"resolvedAt,omitempty" json:"resolvedAt,omitempty"`
	Files         []Attachment        `bson:"files,omitempty" json:"files,omitempty"`
	Messages      []Message           `bson:"messages,omitempty" json:"messages,omitempty"`
}

// CaseSubmission is the citizen-facing intake payload.
type CaseSubmission struct {
	CrimeType     string       `json:"crimeType"`
	IncidentDate  string       `json:"incidentDate"`
	IncidentTime  string       `json:"incidentTime"`
	Platform      string       `json:"platform"`
	Description   string       `json:"description"`
	ReporterName  string       `json:"reporterName"`
	ReporterEmail string       `json:"reporterEmail"`
	ReporterPhone string       `json:"reporterPhone"`
	Anonymous     bool         `json:"anonymous"`
	Files         []Attachment `json:"files"`
}

// NewCase validates a submission and builds the stored record: status New,
// priority derived from the description, reporter fields blanked for anonymous
// submissions. Oversize attachments are dropped per-file and reported back.
func NewCase(sub CaseSubmission, caseNumber string) (Case, []string, error) {
	if err := ValidateCrimeType(sub.CrimeType); err != nil {
		return Case{}, nil, err
	}
	if strings.TrimSpace(sub.Description) == "" {
		return Case{}, nil, fmt.Errorf("description is required")
	}

	kept, rejected := FilterAttachments(sub.Files)
	now := primitive.NewDateTimeFromTime(time.Now())

	c := Case{
		CaseNumber:    caseNumber,
		CrimeType:     sub.CrimeType,
		IncidentDate:  sub.IncidentDate,
		IncidentTime:  sub.IncidentTime,
		Platform:      sub.Platform,
		Description:   sub.Description,
		ReporterName:  sub.ReporterName,
		ReporterEmail: sub.ReporterEmail,
		ReporterPhone: sub.ReporterPhone,
		Anonymous:     sub.Anonymous,
		Status:        StatusNew,
		Priority:      DerivePriority(sub.Description),
		SubmittedAt:   now,
		UpdatedAt:     now,
		Files:         kept,
	}
	if c.Anonymous {
		c.ReporterName = ""
		c.ReporterEmail = ""
		c.ReporterPhone = ""
	}
	return c, rejected, nil
}

// Assign sets the investigator and advances a New case to Investigating.
// Re-assigning the same id is a no-op; the returned flag reports whether
// anything changed.
func (c *Case) Assign(investigatorID string) bool {
	changed := false
	if c.AssignedTo != investigatorID {
		c.AssignedTo = investigatorID
		changed = true
	}
	if c.Status == StatusNew {
		c.Status = StatusInvestigating
		changed = true
	}
	if changed {
		c.touch()
	}
	return changed
}

// SetStatus advances the case one step along the lifecycle chain. Moving into
// Resolved stamps resolvedAt.
func (c *Case) SetStatus(target CaseStatus) error {
	if !c.Status.CanTransition(target) {
		return fmt.Errorf("%s -> %s: %w", c.Status, target, ErrInvalidTransition)
	}
	c.Status = target
	if target == StatusResolved {
		now := primitive.NewDateTimeFromTime(time.Now())
		c.ResolvedAt = &now
	}
	c.touch()
	return nil
}

// CyclePriority overrides the derived priority, Low -> Medium -> High -> Low.
// Closed cases are immutable.
func (c *Case) CyclePriority() error {
	if c.Status.IsTerminal() {
		return fmt.Errorf("case %s is closed: %w", c.CaseNumber, ErrInvalidTransition)
	}
	c.Priority = c.Priority.Next()
	c.touch()
	return nil
}

func (c *Case) touch() {
	c.UpdatedAt = primitive.NewDateTimeFromTime(time.Now())
}
