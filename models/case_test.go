package models

import (
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDerivePriority(t *testing.T) {
	tests := []struct {
		name        string
		description string
		want        CasePriority
	}{
		{"urgent keyword", "I was scammed, urgent help needed", PriorityHigh},
		{"keyword case insensitive", "Someone HACKED my account", PriorityHigh},
		{"keyword inside a long text", strings.Repeat("a", 150) + " bank transfer", PriorityHigh},
		{"long description without keyword", strings.Repeat("incident details ", 10), PriorityMedium},
		{"short description without keyword", "lost access to account", PriorityLow},
		{"empty description", "", PriorityLow},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, DerivePriority(tt.description))
		})
	}
}

func TestCaseStatus_CanTransition(t *testing.T) {
	tests := []struct {
		from CaseStatus
		to   CaseStatus
		want bool
	}{
		{StatusNew, StatusInvestigating, true},
		{StatusInvestigating, StatusResolved, true},
		{StatusResolved, StatusClosed, true},
		{StatusNew, StatusResolved, false},
		{StatusNew, StatusClosed, false},
		{StatusInvestigating, StatusNew, false},
		{StatusResolved, StatusInvestigating, false},
		{StatusClosed, StatusNew, false},
		{StatusClosed, StatusClosed, false},
		{StatusNew, StatusNew, false},
	}
	for _, tt := range tests {
		got := tt.from.CanTransition(tt.to)
		if got != tt.want {
			t.Errorf("CanTransition(%s -> %s) = %v, want %v", tt.from, tt.to, got, tt.want)
		}
	}
}

func TestValidateStatus(t *testing.T) {
	s, err := ValidateStatus("Investigating")
	assert.NoError(t, err)
	assert.Equal(t, StatusInvestigating, s)

	_, err = ValidateStatus("investigating")
	assert.Error(t, err)

	_, err = ValidateStatus("Reopened")
	assert.Error(t, err)
}

func TestCasePriority_Next(t *testing.T) {
	assert.Equal(t, PriorityMedium, PriorityLow.Next())
	assert.Equal(t, PriorityHigh, PriorityMedium.Next())
	assert.Equal(t, PriorityLow, PriorityHigh.Next())
	// unknown values reset to Low
	assert.Equal(t, PriorityLow, CasePriority("Critical").Next())
}

func TestNewCase(t *testing.T) {
	sub := CaseSubmission{
		CrimeType:     "phishing",
		Description:   "received a fake invoice email",
		ReporterName:  "Jane Doe",
		ReporterEmail: "jane@example.com",
		ReporterPhone: "0123456789",
	}

	c, rejected, err := NewCase(sub, "CR-2026-0001")
	assert.NoError(t, err)
	assert.Empty(t, rejected)
	assert.Equal(t, "CR-2026-0001", c.CaseNumber)
	assert.Equal(t, StatusNew, c.Status)
	assert.Equal(t, PriorityLow, c.Priority)
	assert.Equal(t, "Jane Doe", c.ReporterName)
	assert.Equal(t, c.SubmittedAt, c.UpdatedAt)
	assert.Nil(t, c.ResolvedAt)
}

func TestNewCase_AnonymousBlanksReporter(t *testing.T) {
	sub := CaseSubmission{
		CrimeType:     "scam",
		Description:   "online shop never delivered",
		ReporterName:  "Jane Doe",
		ReporterEmail: "jane@example.com",
		ReporterPhone: "0123456789",
		Anonymous:     true,
	}

	c, _, err := NewCase(sub, "CR-2026-0002")
	assert.NoError(t, err)
	assert.True(t, c.Anonymous)
	assert.Empty(t, c.ReporterName)
	assert.Empty(t, c.ReporterEmail)
	assert.Empty(t, c.ReporterPhone)
}

func TestNewCase_InvalidCrimeType(t *testing.T) {
	_, _, err := NewCase(CaseSubmission{CrimeType: "arson", Description: "x"}, "CR-2026-0003")
	assert.Error(t, err)
}

func TestNewCase_MissingDescription(t *testing.T) {
	_, _, err := NewCase(CaseSubmission{CrimeType: "phishing", Description: "   "}, "CR-2026-0004")
	assert.Error(t, err)
}

func TestNewCase_FiltersOversizeAttachments(t *testing.T) {
	sub := CaseSubmission{
		CrimeType:   "hacking",
		Description: "account takeover",
		Files: []Attachment{
			{Name: "screenshot.png", Size: 1024, Type: "image/png", IsImage: true},
			{Name: "dump.bin", Size: MaxAttachmentSize + 1},
			{Name: "log.txt", Size: MaxAttachmentSize},
		},
	}

	c, rejected, err := NewCase(sub, "CR-2026-0005")
	assert.NoError(t, err)
	assert.Equal(t, []string{"dump.bin"}, rejected)
	assert.Len(t, c.Files, 2)
	for _, f := range c.Files {
		assert.NotEmpty(t, f.ID)
	}
}

func TestCase_Assign(t *testing.T) {
	c := Case{CaseNumber: "CR-2026-0001", Status: StatusNew}

	assert.True(t, c.Assign("INV-7"))
	assert.Equal(t, "INV-7", c.AssignedTo)
	assert.Equal(t, StatusInvestigating, c.Status)

	// re-assigning the same investigator changes nothing
	assert.False(t, c.Assign("INV-7"))
	assert.Equal(t, StatusInvestigating, c.Status)

	// a different investigator updates the assignment but not the status
	assert.True(t, c.Assign("INV-9"))
	assert.Equal(t, "INV-9", c.AssignedTo)
	assert.Equal(t, StatusInvestigating, c.Status)
}

func TestCase_SetStatus(t *testing.T) {
	c := Case{CaseNumber: "CR-2026-0001", Status: StatusNew}

	assert.NoError(t, c.SetStatus(StatusInvestigating))
	assert.Nil(t, c.ResolvedAt)

	assert.NoError(t, c.SetStatus(StatusResolved))
	assert.NotNil(t, c.ResolvedAt)

	assert.NoError(t, c.SetStatus(StatusClosed))

	err := c.SetStatus(StatusNew)
	assert.True(t, errors.Is(err, ErrInvalidTransition))
}

func TestCase_SetStatus_NoSkipping(t *testing.T) {
	c := Case{Status: StatusNew}
	err := c.SetStatus(StatusResolved)
	assert.True(t, errors.Is(err, ErrInvalidTransition))
	assert.Equal(t, StatusNew, c.Status)
	assert.Nil(t, c.ResolvedAt)
}

func TestCase_CyclePriority(t *testing.T) {
	c := Case{Status: StatusInvestigating, Priority: PriorityLow}

	assert.NoError(t, c.CyclePriority())
	assert.Equal(t, PriorityMedium, c.Priority)
	assert.NoError(t, c.CyclePriority())
	assert.Equal(t, PriorityHigh, c.Priority)
	assert.NoError(t, c.CyclePriority())
	assert.Equal(t, PriorityLow, c.Priority)
}

func TestCase_CyclePriority_ClosedCase(t *testing.T) {
	c := Case{CaseNumber: "CR-2026-0001", Status: StatusClosed, Priority: PriorityLow}
	err := c.CyclePriority()
	assert.True(t, errors.Is(err, ErrInvalidTransition))
	assert.Equal(t, PriorityLow, c.Priority)
}

func TestCase_AppendMessage(t *testing.T) {
	c := Case{CaseNumber: "CR-2026-0001", Status: StatusInvestigating, AssignedTo: "INV-7"}

	m, rejected, err := c.AppendMessage("  checked the reported URL  ", "", nil)
	assert.NoError(t, err)
	assert.Empty(t, rejected)
	assert.Equal(t, "checked the reported URL", m.Text)
	assert.Equal(t, "INV-7", m.InvestigatorID)
	assert.NotEmpty(t, m.ID)
	assert.Len(t, c.Messages, 1)

	m2, _, err := c.AppendMessage("second note", "INV-9", nil)
	assert.NoError(t, err)
	assert.Equal(t, "INV-9", m2.InvestigatorID)
	assert.Len(t, c.Messages, 2)
}

func TestCase_AppendMessage_Empty(t *testing.T) {
	c := Case{Status: StatusInvestigating}

	_, _, err := c.AppendMessage("   ", "INV-7", nil)
	assert.True(t, errors.Is(err, ErrEmptyMessage))
	assert.Empty(t, c.Messages)

	// an attachment alone is enough
	_, rejected, err := c.AppendMessage("", "INV-7", []Attachment{{Name: "evidence.png", Size: 10}})
	assert.NoError(t, err)
	assert.Empty(t, rejected)
	assert.Len(t, c.Messages, 1)

	// but a message whose only attachment was rejected is still empty
	_, rejected, err = c.AppendMessage("", "INV-7", []Attachment{{Name: "huge.bin", Size: MaxAttachmentSize + 1}})
	assert.True(t, errors.Is(err, ErrEmptyMessage))
	assert.Equal(t, []string{"huge.bin"}, rejected)
	assert.Len(t, c.Messages, 1)
}
