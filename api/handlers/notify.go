package handlers

import (
	"fmt"
	"os"

	"github.com/sendgrid/sendgrid-go"
	"github.com/sendgrid/sendgrid-go/helpers/mail"
	"go.uber.org/zap"

	"github.com/onestopcentre/cybercrime-api/models"
	templates "github.com/onestopcentre/cybercrime-api/templates/html"
)

// Notifier sends reporter-facing email. Delivery is best effort; a failed
// send is logged and never fails the request that triggered it.
type Notifier struct{}

func NewNotifier() *Notifier {
	return &Notifier{}
}

// CaseResolved emails the reporter that their case has been resolved.
// Anonymous reports and reports without an email address are skipped.
func (n *Notifier) CaseResolved(caseData models.Case) {
	if caseData.Anonymous || caseData.ReporterEmail == "" {
		return
	}
	apiKey := os.Getenv("SENDGRID_API_KEY")
	if apiKey == "" {
		zap.S().Debugw("SENDGRID_API_KEY not set, skipping resolution email",
			"caseNumber", caseData.CaseNumber)
		return
	}

	closingNote := ""
	if len(caseData.Messages) > 0 {
		closingNote = caseData.Messages[len(caseData.Messages)-1].Text
	}

	from := mail.NewEmail("One Stop Centre", "no-reply@onestopcentre.com")
	subject := fmt.Sprintf("Your cybercrime report %s has been resolved", caseData.CaseNumber)
	to := mail.NewEmail(caseData.ReporterName, caseData.ReporterEmail)
	plain := fmt.Sprintf("Your report %s (%s) has been marked as resolved.", caseData.CaseNumber, caseData.CrimeType)
	html := templates.RenderCaseResolvedEmail(caseData.CaseNumber, caseData.CrimeType, closingNote)
	msg := mail.NewSingleEmail(from, subject, to, plain, html)

	client := sendgrid.NewSendClient(apiKey)
	resp, err := client.Send(msg)
	if err != nil {
		zap.S().Errorw("failed to send resolution email",
			"caseNumber", caseData.CaseNumber, "error", err)
		return
	}
	if resp.StatusCode >= 400 {
		zap.S().Errorw("resolution email rejected",
			"caseNumber", caseData.CaseNumber, "status", resp.StatusCode, "body", resp.Body)
	}
}
