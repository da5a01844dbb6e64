package templates

import (
	"fmt"
	"html"
	"strings"
)

// RenderCaseResolvedEmail generates branded HTML telling a reporter their
// case has been resolved. The closing note is plain text that gets
// HTML-escaped and has newlines converted to <br> tags.
func RenderCaseResolvedEmail(caseNumber, crimeType, closingNote string) string {
	safeCaseNumber := html.EscapeString(caseNumber)
	safeCrimeType := html.EscapeString(crimeType)

	noteBlock := ""
	if strings.TrimSpace(closingNote) != "" {
		escaped := html.EscapeString(closingNote)
		htmlNote := strings.ReplaceAll(escaped, "\n", "<br>")
		noteBlock = fmt.Sprintf(`<p><strong>Note from the investigating officer:</strong></p>
      <p>%s</p>`, htmlNote)
	}

	return fmt.Sprintf(`<!DOCTYPE html PUBLIC "-//W3C//DTD XHTML 1.0 Strict//EN" "http://www.w3.org/TR/xhtml1/DTD/xhtml1-strict.dtd">
<html xmlns="http://www.w3.org/1999/xhtml">
<head>
  <meta http-equiv="Content-Type" content="text/html; charset=utf-8">
  <meta name="viewport" content="width=device-width, initial-scale=1, minimum-scale=1, maximum-scale=1">
  <title>Case %s Resolved</title>
  <style type="text/css">
    body { font-family: 'Segoe UI', Tahoma, Geneva, Verdana, sans-serif; margin: 0; padding: 0; background-color: #f4f6f8; }
    .container { max-width: 600px; margin: 0 auto; background-color: #ffffff; }
    .header { background: linear-gradient(135deg, #1d4ed8 0%%, #1e3a8a 100%%); padding: 40px 30px; text-align: center; }
    .header h1 { color: #fff; margin: 0; font-size: 24px; font-weight: 700; }
    .content { padding: 40px 30px; color: #1f2937; line-height: 1.6; font-size: 15px; }
    .case-box { background-color: #eff6ff; border-left: 4px solid #1d4ed8; padding: 16px 20px; margin: 20px 0; }
    .footer { padding: 30px; text-align: center; color: #6b7280; font-size: 12px; border-top: 1px solid #e5e7eb; }
  </style>
</head>
<body>
  <div class="container">
    <div class="header">
      <h1>Your Report Has Been Resolved</h1>
    </div>
    <div class="content">
      <p>Thank you for reporting to the One Stop Centre for cybercrime.</p>
      <div class="case-box">
        <p><strong>Case Number:</strong> %s<br>
        <strong>Crime Type:</strong> %s</p>
      </div>
      %s
      <p>If you believe this case was resolved in error, reply to this email quoting your case number.</p>
    </div>
    <div class="footer">
      <p>&copy; One Stop Centre | Cybercrime Reporting</p>
    </div>
  </div>
</body>
</html>`, safeCaseNumber, safeCaseNumber, safeCrimeType, noteBlock)
}
