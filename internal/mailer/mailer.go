// mailer отправляет письма с кодом подтверждения регистрации.
package mailer

import (
	"bytes"
	"context"
	"fmt"
	"html/template"
	"log/slog"
	"net/smtp"
)

// Mailer — контракт отправки письма с кодом подтверждения.
type Mailer interface {
	SendVerificationCode(ctx context.Context, email, code string) error
}

const verificationTemplate = `
<!DOCTYPE html>
<html>
<body>
    <p>Здравствуйте!</p>
    <p>Ваш код подтверждения регистрации:</p>
    <p style="font-size: 24px; font-weight: bold; letter-spacing: 4px;">{{.Code}}</p>
    <p>Если вы не запрашивали регистрацию, просто проигнорируйте это письмо.</p>
</body>
</html>
`

var tmpl = template.Must(template.New("verification").Parse(verificationTemplate))

// SMTPSender отправляет письма через SMTP-релей.
type SMTPSender struct {
	host     string
	port     string
	username string
	password string
	from     string
}

// NewSMTPSender создаёт SMTP-отправителя.
func NewSMTPSender(host, port, username, password, from string) *SMTPSender {
	return &SMTPSender{
		host:     host,
		port:     port,
		username: username,
		password: password,
		from:     from,
	}
}

// SendVerificationCode отправляет письмо с кодом подтверждения.
func (s *SMTPSender) SendVerificationCode(_ context.Context, email, code string) error {
	const op = "mailer.SMTPSender.SendVerificationCode"

	body, err := renderVerification(code)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	msg := fmt.Sprintf("From: %s\r\nTo: %s\r\nSubject: Verification code\r\nMIME-Version: 1.0\r\nContent-Type: text/html; charset=UTF-8\r\n\r\n%s",
		s.from, email, body)

	auth := smtp.PlainAuth("", s.username, s.password, s.host)
	addr := s.host + ":" + s.port

	if err := smtp.SendMail(addr, auth, s.from, []string{email}, []byte(msg)); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	return nil
}

// renderVerification рендерит HTML-тело письма.
func renderVerification(code string) (string, error) {
	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, struct{ Code string }{Code: code}); err != nil {
		return "", err
	}

	return buf.String(), nil
}

// LogSender — отправитель для локальной разработки: вместо письма пишет код
// в лог. В проде не используется.
type LogSender struct {
	log *slog.Logger
}

// NewLogSender создаёт лог-отправителя.
func NewLogSender(log *slog.Logger) *LogSender {
	return &LogSender{log: log}
}

// SendVerificationCode пишет код в лог вместо отправки письма.
func (s *LogSender) SendVerificationCode(_ context.Context, email, code string) error {
	s.log.Info("verification_code_issued",
		slog.String("email", email),
		slog.String("code", code),
	)

	return nil
}
