package mailer

import (
	"bytes"
	"html/template"
)

// NotificationData holds data for the generic notification email.
type NotificationData struct {
	Subject string
	Message string
}

// BuildNotificationEmail wraps a plain message into the standard
// notification layout with both HTML and text bodies.
func BuildNotificationEmail(to, subject, message string) Email {
	return Email{
		To:       to,
		Subject:  subject,
		TextBody: message,
		HTMLBody: buildNotificationHTML(NotificationData{Subject: subject, Message: message}),
	}
}

func buildNotificationHTML(data NotificationData) string {
	tmpl := template.Must(template.New("notification").Parse(notificationHTMLTemplate))
	var buf bytes.Buffer
	_ = tmpl.Execute(&buf, data)
	return buf.String()
}

const notificationHTMLTemplate = `<!DOCTYPE html>
<html>
<head>
  <meta charset="UTF-8">
  <title>{{.Subject}}</title>
</head>
<body style="margin: 0; padding: 0; font-family: Arial, sans-serif; background-color: #f5f5f5;">
  <div style="max-width: 600px; margin: 0 auto; padding: 20px;">
    <h2 style="color: #333;">{{.Subject}}</h2>
    <div style="background-color: #ffffff; padding: 20px; border-radius: 5px;">
      <p style="color: #666; line-height: 1.6; white-space: pre-line;">{{.Message}}</p>
    </div>
    <div style="margin-top: 20px; color: #999; font-size: 12px;">
      <p>This is an automated message, please do not reply directly.</p>
    </div>
  </div>
</body>
</html>`
