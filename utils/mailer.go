package utils

import (
	"fmt"
	"time"

	"gopkg.in/gomail.v2"
	"writedesk/config"
)

// SendTaskAssignedEmail notifies an assignee by email that a task landed on
// their desk. Callers treat failures as soft: they log and move on.
func SendTaskAssignedEmail(to, taskTitle string, deadline *time.Time) error {
	body := fmt.Sprintf(`
		<html>
		<body>
			<h2>New assignment</h2>
			<p>You have been assigned the task <strong>%s</strong>.</p>
			%s
			<p>Log in to the portal to see the details.</p>
		</body>
		</html>
	`, taskTitle, deadlineLine(deadline))

	return sendEmail(to, "New task assigned: "+taskTitle, body)
}

// SendDeadlineReminderEmail warns an assignee that a task deadline is close.
func SendDeadlineReminderEmail(to, taskTitle string, deadline *time.Time) error {
	body := fmt.Sprintf(`
		<html>
		<body>
			<h2>Deadline approaching</h2>
			<p>The task <strong>%s</strong> is due soon.</p>
			%s
		</body>
		</html>
	`, taskTitle, deadlineLine(deadline))

	return sendEmail(to, "Deadline reminder: "+taskTitle, body)
}

func deadlineLine(deadline *time.Time) string {
	if deadline == nil {
		return ""
	}
	return fmt.Sprintf("<p>Deadline: %s</p>", deadline.Format("Mon, 02 Jan 2006 15:04 MST"))
}

func sendEmail(to, subject, body string) error {
	cfg := config.AppConfig
	if cfg.SMTPHost == "" {
		return fmt.Errorf("email configuration not initialized")
	}

	m := gomail.NewMessage()
	m.SetHeader("From", cfg.FromEmail)
	m.SetHeader("To", to)
	m.SetHeader("Subject", subject)
	m.SetBody("text/html", body)

	d := gomail.NewDialer(cfg.SMTPHost, cfg.SMTPPort, cfg.SMTPUsername, cfg.SMTPPassword)

	if err := d.DialAndSend(m); err != nil {
		return fmt.Errorf("failed to send email: %w", err)
	}

	return nil
}
