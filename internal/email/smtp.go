package email

import (
	"context"
	"fmt"
	"html"
	"net/url"
	"strings"

	"github.com/rs/zerolog/log"
	"gopkg.in/gomail.v2"
)

type Config struct {
	Host     string
	Port     int
	Username string
	Password string
	From     string
	// BaseURL is the web app root used to build links in messages.
	BaseURL string
}

// Sender is the part of gomail.Dialer used here.
type Sender interface {
	DialAndSend(m ...*gomail.Message) error
}

type SMTPService struct {
	sender  Sender
	from    string
	baseURL string
}

func NewSMTPService(cfg Config) *SMTPService {
	return NewSMTPServiceWithSender(gomail.NewDialer(cfg.Host, cfg.Port, cfg.Username, cfg.Password), cfg.From, cfg.BaseURL)
}

func NewSMTPServiceWithSender(sender Sender, from, baseURL string) *SMTPService {
	return &SMTPService{
		sender:  sender,
		from:    from,
		baseURL: strings.TrimRight(baseURL, "/"),
	}
}

func (s *SMTPService) send(ctx context.Context, to, subject, body string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	m := gomail.NewMessage()
	m.SetHeader("From", s.from)
	m.SetHeader("To", to)
	m.SetHeader("Subject", subject)
	m.SetBody("text/html", body)

	if err := s.sender.DialAndSend(m); err != nil {
		return fmt.Errorf("failed to send %q email: %w", subject, err)
	}
	log.Debug().Str("to", to).Str("subject", subject).Msg("Email sent")
	return nil
}

func (s *SMTPService) link(path, token string) string {
	return fmt.Sprintf("%s%s?token=%s", s.baseURL, path, url.QueryEscape(token))
}

func (s *SMTPService) SendWelcome(ctx context.Context, to, name string) error {
	body := fmt.Sprintf(
		"<p>Olá, %s!</p><p>Sua conta no AnestEasy está pronta. Seu período de teste de 7 dias já começou.</p>",
		html.EscapeString(name),
	)
	return s.send(ctx, to, "Bem-vindo ao AnestEasy", body)
}

func (s *SMTPService) SendEmailConfirmation(ctx context.Context, to, token string) error {
	link := s.link("/confirm-email", token)
	body := fmt.Sprintf(
		`<p>Confirme seu email para ativar a conta:</p><p><a href="%s">%s</a></p>`,
		html.EscapeString(link), html.EscapeString(link),
	)
	return s.send(ctx, to, "Confirme seu email", body)
}

func (s *SMTPService) SendPasswordReset(ctx context.Context, to, token string) error {
	link := s.link("/reset-password", token)
	body := fmt.Sprintf(
		`<p>Recebemos um pedido para redefinir sua senha.</p><p><a href="%s">Redefinir senha</a></p><p>Se não foi você, ignore este email.</p>`,
		html.EscapeString(link),
	)
	return s.send(ctx, to, "Redefinição de senha", body)
}

func (s *SMTPService) SendTemporaryPassword(ctx context.Context, to, name, password, invitedBy string) error {
	body := fmt.Sprintf(
		`<p>Olá, %s!</p><p>%s cadastrou você como secretária no AnestEasy.</p>`+
			`<p>Email: <b>%s</b><br>Senha temporária: <b>%s</b></p>`+
			`<p>Altere a senha no primeiro acesso em <a href="%s/login">%s/login</a>.</p>`,
		html.EscapeString(name), html.EscapeString(invitedBy),
		html.EscapeString(to), html.EscapeString(password),
		s.baseURL, s.baseURL,
	)
	return s.send(ctx, to, "Seu acesso ao AnestEasy", body)
}

func (s *SMTPService) SendFeedbackInvite(ctx context.Context, to, procedureName, link string) error {
	body := fmt.Sprintf(
		`<p>Olá!</p><p>Gostaríamos da sua avaliação sobre a anestesia do procedimento <b>%s</b>.</p>`+
			`<p><a href="%s">Responder questionário</a></p><p>O link expira em 48 horas.</p>`,
		html.EscapeString(procedureName), html.EscapeString(link),
	)
	return s.send(ctx, to, "Avaliação pós-anestésica", body)
}

// LogService writes messages to the log instead of sending them. Used when no
// SMTP host is configured.
type LogService struct{}

func (LogService) SendWelcome(_ context.Context, to, name string) error {
	log.Info().Str("to", to).Str("name", name).Msg("Welcome email skipped")
	return nil
}

func (LogService) SendEmailConfirmation(_ context.Context, to, token string) error {
	log.Info().Str("to", to).Str("token", token).Msg("Confirmation email skipped")
	return nil
}

func (LogService) SendPasswordReset(_ context.Context, to, token string) error {
	log.Info().Str("to", to).Str("token", token).Msg("Password reset email skipped")
	return nil
}

func (LogService) SendTemporaryPassword(_ context.Context, to, _, _, invitedBy string) error {
	log.Info().Str("to", to).Str("invited_by", invitedBy).Msg("Temporary password email skipped")
	return nil
}

func (LogService) SendFeedbackInvite(_ context.Context, to, _, link string) error {
	log.Info().Str("to", to).Str("link", link).Msg("Feedback invite email skipped")
	return nil
}
