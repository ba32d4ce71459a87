package mailer

import (
	"bytes"
	"html/template"

	"github.com/shopspring/decimal"
)

// ReminderSubject is the fixed subject line for contribution reminders.
const ReminderSubject = "New Contributions Available - CDS LedgerPro"

// ReminderEmail carries the per-recipient values rendered into the reminder
// body.
type ReminderEmail struct {
	UserName          string
	PendingAmount     decimal.Decimal
	ContributionCount int
	DashboardURL      string
}

var reminderTmpl = template.Must(template.New("reminder").Parse(`<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="UTF-8">
<meta name="viewport" content="width=device-width, initial-scale=1.0">
<title>New Contributions Available - CDS LedgerPro</title>
<style>
body { font-family: 'Segoe UI', Tahoma, Geneva, Verdana, sans-serif; color: #333; background-color: #f8fafc; margin: 0; }
.container { max-width: 600px; margin: 0 auto; background: #ffffff; border-radius: 12px; overflow: hidden; }
.header { background: linear-gradient(135deg, #667eea 0%, #764ba2 100%); color: #fff; padding: 32px 24px; text-align: center; }
.content { padding: 32px 24px; }
.stats { background: #f7fafc; border-left: 4px solid #667eea; padding: 20px; border-radius: 8px; margin: 24px 0; }
.cta { display: inline-block; background: #667eea; color: #fff; padding: 12px 28px; border-radius: 8px; text-decoration: none; font-weight: 600; }
.footer { padding: 20px 24px; font-size: 12px; color: #718096; text-align: center; }
</style>
</head>
<body>
<div class="container">
  <div class="header">
    <h1>CDS LedgerPro</h1>
    <p>Community contributions, tracked together</p>
  </div>
  <div class="content">
    <h2>Hello {{.UserName}},</h2>
    <p>You have contributions waiting for your attention.</p>
    <div class="stats">
      <p><strong>Outstanding balance:</strong> &#8358;{{.PendingAmount.StringFixed 2}}</p>
      <p><strong>Active contributions:</strong> {{.ContributionCount}}</p>
    </div>
    <p>Upload your payment receipt from your dashboard and an admin will review it shortly.</p>
    <p><a class="cta" href="{{.DashboardURL}}">Open my dashboard</a></p>
  </div>
  <div class="footer">
    <p>You are receiving this because you are an active member of the group.</p>
  </div>
</div>
</body>
</html>
`))

// RenderReminder produces the HTML body for one recipient.
func RenderReminder(data ReminderEmail) (string, error) {
	if data.UserName == "" {
		data.UserName = "Member"
	}
	var buf bytes.Buffer
	if err := reminderTmpl.Execute(&buf, data); err != nil {
		return "", err
	}
	return buf.String(), nil
}
