package services

import (
	"crypto/tls"
	"fmt"
	"net/smtp"
	"strconv"
	"strings"

	"github.com/lucaswan/paperdesk/internal/models"
	"github.com/lucaswan/paperdesk/pkg/logger"
	"gorm.io/gorm"
)

// EmailService builds and delivers transactional mail. SMTP settings live in
// the system_configs table so admins can change them at runtime without a
// restart.
type EmailService struct {
	db      *gorm.DB
	baseURL string
}

type EmailConfig struct {
	Enabled  bool
	Host     string
	Port     int
	Username string
	Password string
	From     string
	UseTLS   bool
}

func NewEmailService(db *gorm.DB, baseURL string) *EmailService {
	return &EmailService{db: db, baseURL: strings.TrimRight(baseURL, "/")}
}

func (s *EmailService) GetConfig() *EmailConfig {
	config := &EmailConfig{}

	var configs []models.SystemConfig
	s.db.Where("`group` = ?", "email").Find(&configs)

	for _, c := range configs {
		switch c.Key {
		case "email_enabled":
			config.Enabled = c.Value == "true"
		case "email_host":
			config.Host = c.Value
		case "email_port":
			if port, err := strconv.Atoi(c.Value); err == nil {
				config.Port = port
			}
		case "email_username":
			config.Username = c.Value
		case "email_password":
			config.Password = c.Value
		case "email_from":
			config.From = c.Value
		case "email_use_tls":
			config.UseTLS = c.Value == "true"
		}
	}

	if config.Port == 0 {
		config.Port = 587
	}

	return config
}

// BuildInvitationMail renders the invitation email. The accept link is the
// only place the raw token leaves the system.
func (s *EmailService) BuildInvitationMail(project *models.Project, inviter *models.User, invitation *models.Invitation) (subject, body string) {
	inviterName := inviter.Nickname
	if inviterName == "" {
		inviterName = inviter.Username
	}

	subject = fmt.Sprintf("[PaperDesk] You are invited to join %s", project.Name)

	acceptURL := fmt.Sprintf("%s/invitations/accept?token=%s", s.baseURL, invitation.Token)

	var sb strings.Builder
	sb.WriteString("<html><body style=\"font-family: Arial, sans-serif;\">")
	sb.WriteString("<h2>Project Invitation</h2>")
	sb.WriteString(fmt.Sprintf("<p>%s has invited you to join <strong>%s</strong> as %s.</p>",
		inviterName, project.Name, invitation.UserType))
	if project.Description != "" {
		sb.WriteString(fmt.Sprintf("<p style=\"color: #555;\">%s</p>", project.Description))
	}
	sb.WriteString(fmt.Sprintf("<p><a href=\"%s\" style=\"background: #2d6cdf; color: #fff; padding: 10px 20px; border-radius: 4px; text-decoration: none;\">Accept Invitation</a></p>", acceptURL))
	sb.WriteString(fmt.Sprintf("<p style=\"color: #888; font-size: 12px;\">This invitation expires on %s.</p>",
		invitation.ExpiresAt.Format("Jan 2, 2006")))
	sb.WriteString("<hr><p style=\"color: #888; font-size: 12px;\">Powered by PaperDesk</p>")
	sb.WriteString("</body></html>")

	return subject, sb.String()
}

// BuildRemovalMail renders the notice sent to a removed member.
func (s *EmailService) BuildRemovalMail(project *models.Project, user *models.User) (subject, body string) {
	subject = fmt.Sprintf("[PaperDesk] You were removed from %s", project.Name)

	var sb strings.Builder
	sb.WriteString("<html><body style=\"font-family: Arial, sans-serif;\">")
	sb.WriteString("<h2>Membership Ended</h2>")
	sb.WriteString(fmt.Sprintf("<p>You are no longer a member of <strong>%s</strong>.</p>", project.Name))
	sb.WriteString("<p style=\"color: #555;\">If you believe this is a mistake, contact the project owner.</p>")
	sb.WriteString("<hr><p style=\"color: #888; font-size: 12px;\">Powered by PaperDesk</p>")
	sb.WriteString("</body></html>")

	return subject, sb.String()
}

// Deliver sends the mail through the configured SMTP server. A disabled or
// unconfigured mailer silently drops the message.
func (s *EmailService) Deliver(to []string, subject, body string) error {
	config := s.GetConfig()
	if !config.Enabled || config.Host == "" {
		return nil
	}
	if len(to) == 0 {
		return nil
	}
	return s.sendEmail(config, to, subject, body)
}

func (s *EmailService) sendEmail(config *EmailConfig, to []string, subject, body string) error {
	from := config.From
	if from == "" {
		from = config.Username
	}

	headers := make(map[string]string)
	headers["From"] = from
	headers["To"] = strings.Join(to, ",")
	headers["Subject"] = subject
	headers["MIME-Version"] = "1.0"
	headers["Content-Type"] = "text/html; charset=UTF-8"

	var message strings.Builder
	for k, v := range headers {
		message.WriteString(fmt.Sprintf("%s: %s\r\n", k, v))
	}
	message.WriteString("\r\n")
	message.WriteString(body)

	addr := fmt.Sprintf("%s:%d", config.Host, config.Port)

	var auth smtp.Auth
	if config.Username != "" && config.Password != "" {
		auth = smtp.PlainAuth("", config.Username, config.Password, config.Host)
	}

	var err error
	if config.UseTLS {
		err = s.sendEmailTLS(config, addr, auth, from, to, message.String())
	} else {
		err = smtp.SendMail(addr, auth, from, to, []byte(message.String()))
	}

	if err != nil {
		logger.Infof("[Email] Failed to send email: %v", err)
		return err
	}

	logger.Infof("[Email] Sent mail to %d recipient(s)", len(to))
	return nil
}

func (s *EmailService) sendEmailTLS(config *EmailConfig, addr string, auth smtp.Auth, from string, to []string, message string) error {
	tlsConfig := &tls.Config{
		ServerName: config.Host,
	}

	conn, err := tls.Dial("tcp", addr, tlsConfig)
	if err != nil {
		return err
	}
	defer conn.Close()

	client, err := smtp.NewClient(conn, config.Host)
	if err != nil {
		return err
	}
	defer client.Close()

	if auth != nil {
		if err := client.Auth(auth); err != nil {
			return err
		}
	}

	if err := client.Mail(from); err != nil {
		return err
	}

	for _, addr := range to {
		if err := client.Rcpt(addr); err != nil {
			return err
		}
	}

	w, err := client.Data()
	if err != nil {
		return err
	}

	_, err = w.Write([]byte(message))
	if err != nil {
		return err
	}

	return w.Close()
}
