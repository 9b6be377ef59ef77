package notify

import (
	"bytes"
	"fmt"
	"io"
	"log/slog"
	"net"
	"net/smtp"

	"insight360/internal/config"
	"insight360/internal/models"
	"insight360/internal/repository"
)

// Mailer delivers workflow events as HTML email over SMTP and records each
// attempt in the email log.
type Mailer struct {
	config   *config.EmailConfig
	emailLog *repository.EmailLogRepository
}

// NewMailer creates an SMTP-backed notifier
func NewMailer(cfg *config.EmailConfig, emailLog *repository.EmailLogRepository) *Mailer {
	return &Mailer{
		config:   cfg,
		emailLog: emailLog,
	}
}

// Notify renders and sends the event. Errors are logged and recorded, never
// returned: a failed mail must not undo the workflow transition behind it.
func (m *Mailer) Notify(event Event) {
	if event.Recipient == "" {
		slog.Warn("notification event without recipient", "event_id", event.ID, "kind", event.Kind)
		return
	}

	subject, body := m.render(event)
	if subject == "" {
		slog.Warn("unknown notification kind", "event_id", event.ID, "kind", event.Kind)
		return
	}

	err := m.sendEmail(event.Recipient, subject, body)

	entry := &models.EmailLog{
		EventID:   event.ID,
		EventKind: string(event.Kind),
		Recipient: event.Recipient,
		Subject:   subject,
		Status:    "sent",
	}
	if err != nil {
		msg := err.Error()
		entry.Status = "failed"
		entry.ErrorMessage = &msg
		slog.Error("Failed to send notification email",
			"event_id", event.ID,
			"kind", event.Kind,
			"recipient", event.Recipient,
			"error", err,
		)
	}

	if logErr := m.emailLog.Create(entry); logErr != nil {
		slog.Error("Failed to record email log entry", "event_id", event.ID, "error", logErr)
	}
}

func (m *Mailer) render(event Event) (subject, body string) {
	switch event.Kind {
	case EventManagerApprovalRequested:
		subject = fmt.Sprintf("Feedback nominations awaiting your approval - %s", event.CycleName)
		body = m.wrap("Nominations awaiting approval", fmt.Sprintf(`
        <p>%s has nominated reviewers for the <strong>%s</strong> feedback cycle.</p>
        <p>The nominations are waiting for your approval. Please review them before the nomination deadline on <strong>%s</strong>.</p>
`, event.RequesterName, event.CycleName, event.Deadline.Format("2006-01-02")))

	case EventNominationApproved:
		subject = fmt.Sprintf("Your feedback nomination was approved - %s", event.CycleName)
		body = m.wrap("Nomination approved", fmt.Sprintf(`
        <p>Your nomination of <strong>%s</strong> (%s) for the <strong>%s</strong> feedback cycle has been approved by your manager.</p>
        <p>The reviewer has been invited to accept the request.</p>
`, event.ReviewerName, event.Relationship.Label(), event.CycleName))

	case EventNominationRejected:
		subject = fmt.Sprintf("Your feedback nomination was declined - %s", event.CycleName)
		reason := event.Reason
		if reason == "" {
			reason = "No reason was provided."
		}
		body = m.wrap("Nomination declined", fmt.Sprintf(`
        <p>Your nomination of <strong>%s</strong> for the <strong>%s</strong> feedback cycle was declined.</p>
        <div style="background-color: #fff3cd; border-left: 4px solid #ffc107; padding: 15px; margin: 20px 0;">
            <p style="margin: 5px 0;"><strong>Reason:</strong> %s</p>
        </div>
        <p>The slot has been returned to your nomination quota, so you may nominate someone else.</p>
`, event.ReviewerName, event.CycleName, reason))

	case EventExternalInviteReady:
		subject = fmt.Sprintf("You have been invited to give feedback - %s", event.CycleName)
		body = m.wrap("Feedback invitation", fmt.Sprintf(`
        <p>Hello %s,</p>
        <p><strong>%s</strong> has asked for your feedback as part of the <strong>%s</strong> review cycle.</p>
        <p>Use your email address and the access code below to open the feedback portal:</p>
        <div style="background-color: #e3f2fd; border-left: 4px solid #2196f3; padding: 15px; margin: 20px 0;">
            <p style="margin: 5px 0; font-family: monospace; word-break: break-all;"><strong>%s</strong></p>
        </div>
        <div style="text-align: center; margin: 30px 0;">
            <a href="%s" style="background-color: #4a90e2; color: white; padding: 12px 30px; text-decoration: none; border-radius: 5px; display: inline-block;">Open Feedback Portal</a>
        </div>
        <p>Please submit your feedback before <strong>%s</strong>.</p>
`, event.ReviewerName, event.RequesterName, event.CycleName, event.Token, m.config.ExternalPortalURL, event.Deadline.Format("2006-01-02")))

	case EventReviewerInviteReady:
		subject = fmt.Sprintf("Feedback request awaiting your acceptance - %s", event.CycleName)
		body = m.wrap("Feedback request", fmt.Sprintf(`
        <p><strong>%s</strong> has requested your feedback (%s) for the <strong>%s</strong> review cycle.</p>
        <p>Please accept or decline the request. Once accepted, submit your feedback before <strong>%s</strong>.</p>
`, event.RequesterName, event.Relationship.Label(), event.CycleName, event.Deadline.Format("2006-01-02")))

	case EventFeedbackCompleted:
		subject = fmt.Sprintf("Feedback received - %s", event.CycleName)
		body = m.wrap("Feedback received", fmt.Sprintf(`
        <p><strong>%s</strong> has submitted their feedback for you in the <strong>%s</strong> review cycle.</p>
        <p>Thank you for participating.</p>
`, event.ReviewerName, event.CycleName))
	}

	return subject, body
}

func (m *Mailer) wrap(title, content string) string {
	return fmt.Sprintf(`
<!DOCTYPE html>
<html>
<head>
    <meta charset="UTF-8">
    <title>%s</title>
</head>
<body style="font-family: Arial, sans-serif; line-height: 1.6; color: #333;">
    <div style="max-width: 600px; margin: 0 auto; padding: 20px;">
        <h2 style="color: #4a90e2;">%s</h2>
%s
        <hr style="border: none; border-top: 1px solid #eee; margin: 20px 0;">
        <p style="color: #999; font-size: 12px;">This is an automated email. Please do not reply.</p>
    </div>
</body>
</html>
`, title, title, content)
}

// sendEmail sends an email using SMTP
func (m *Mailer) sendEmail(to, subject, body string) error {
	headers := map[string]string{
		"From":         m.config.SMTPFrom,
		"To":           to,
		"Subject":      subject,
		"MIME-Version": "1.0",
		"Content-Type": "text/html; charset=UTF-8",
	}

	var message bytes.Buffer
	for k, v := range headers {
		message.WriteString(fmt.Sprintf("%s: %s\r\n", k, v))
	}
	message.WriteString("\r\n")
	message.WriteString(body)

	addr := net.JoinHostPort(m.config.SMTPHost, m.config.SMTPPort)
	conn, err := net.Dial("tcp", addr)
	if err != nil {
		return fmt.Errorf("failed to connect to SMTP server: %w", err)
	}
	defer func(conn net.Conn) {
		if err := conn.Close(); err != nil {
			slog.Error("Failed to close SMTP connection", "error", err)
		}
	}(conn)

	client, err := smtp.NewClient(conn, m.config.SMTPHost)
	if err != nil {
		return fmt.Errorf("failed to create SMTP client: %w", err)
	}
	defer func(client *smtp.Client) {
		if err := client.Close(); err != nil {
			slog.Error("Failed to close SMTP client", "error", err)
		}
	}(client)

	// No authentication needed for development relays like Mailpit
	if m.config.SMTPUsername != "" && m.config.SMTPPassword != "" {
		auth := smtp.PlainAuth("", m.config.SMTPUsername, m.config.SMTPPassword, m.config.SMTPHost)
		_ = client.Auth(auth)
	}

	if err := client.Mail(m.config.SMTPFrom); err != nil {
		return fmt.Errorf("failed to set sender: %w", err)
	}

	if err := client.Rcpt(to); err != nil {
		return fmt.Errorf("failed to set recipient: %w", err)
	}

	wc, err := client.Data()
	if err != nil {
		return fmt.Errorf("failed to initiate data transfer: %w", err)
	}
	defer func(wc io.WriteCloser) {
		if err := wc.Close(); err != nil {
			slog.Error("Failed to close write closer", "error", err)
		}
	}(wc)

	if _, err := wc.Write(message.Bytes()); err != nil {
		return fmt.Errorf("failed to write message: %w", err)
	}

	slog.Info("Email sent successfully", "to", to)
	return nil
}
