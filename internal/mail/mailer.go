// Package mail sends transactional email for account verification and
// password reset using the Mailgun service and the Hermes package for
// formatting.
package mail

import (
	"context"
	"fmt"
	"time"

	"wander/internal/config"
	"wander/internal/middleware"

	"github.com/mailgun/mailgun-go/v4"
	"github.com/matcornic/hermes/v2"
)

// sendTimeout bounds a single Mailgun API call.
const sendTimeout = 5 * time.Second

// Mailer is the outbound email contract used by the user service.
type Mailer interface {
	SendVerificationMail(ctx context.Context, email, username string, userID uint, token string) error
	SendPasswordResetMail(ctx context.Context, email, username string, userID uint, token string) error
}

// MailgunMailer sends Hermes-formatted mail through Mailgun. Outside
// production the send is skipped so local signups never need a Mailgun key.
type MailgunMailer struct {
	hermes      *hermes.Hermes
	mailgun     *mailgun.MailgunImpl
	from        string
	frontendURL string
	skipSend    bool
}

// NewMailer builds a MailgunMailer from configuration.
func NewMailer(cfg *config.Config) *MailgunMailer {
	mg := mailgun.NewMailgun(cfg.MailgunDomain, cfg.MailgunAPIKey)

	skip := cfg.IsDevelopment()
	if skip {
		middleware.Logger.Info("Running in development mode, email will not be sent to users")
	}

	return &MailgunMailer{
		hermes: &hermes.Hermes{
			Theme:         new(hermes.Default),
			TextDirection: hermes.TDLeftToRight,
			Product: hermes.Product{
				Name:      "Wander",
				Link:      cfg.FrontendURL,
				Copyright: "© Wander",
			},
		},
		mailgun:     mg,
		from:        cfg.MailFrom,
		frontendURL: cfg.FrontendURL,
		skipSend:    skip,
	}
}

// SendVerificationMail mails the account-activation link. The link embeds
// both the user ID and the one-time token so the frontend can post them back.
func (m *MailgunMailer) SendVerificationMail(ctx context.Context, email, username string, userID uint, token string) error {
	link := fmt.Sprintf("%s/verify-email/%d/%s", m.frontendURL, userID, token)

	body := hermes.Email{
		Body: hermes.Body{
			Name: username,
			Intros: []string{
				"Welcome to Wander! We're very excited to have you on board.",
			},
			Actions: []hermes.Action{
				{
					Instructions: "To verify your account, please click the button below. The link is valid for two hours.",
					Button: hermes.Button{
						Text: "Verify your email",
						Link: link,
					},
				},
			},
			Outros: []string{
				"If you did not sign up for Wander, you can safely ignore this email.",
			},
		},
	}

	return m.send(ctx, email, "Verify your email", body)
}

// SendPasswordResetMail mails the password-reset link.
func (m *MailgunMailer) SendPasswordResetMail(ctx context.Context, email, username string, userID uint, token string) error {
	link := fmt.Sprintf("%s/reset-password/%d/%s", m.frontendURL, userID, token)

	body := hermes.Email{
		Body: hermes.Body{
			Name: username,
			Intros: []string{
				"You have received this email because a password reset request for your account was received.",
			},
			Actions: []hermes.Action{
				{
					Instructions: "Click the button below to reset your password. The link is valid for two hours.",
					Button: hermes.Button{
						Text: "Reset your password",
						Link: link,
					},
				},
			},
			Outros: []string{
				"If you did not request a password reset, no further action is required on your part.",
			},
		},
	}

	return m.send(ctx, email, "Reset your password", body)
}

func (m *MailgunMailer) send(ctx context.Context, to, subject string, body hermes.Email) error {
	if m.skipSend {
		middleware.Logger.InfoContext(ctx, "Skipping mail in development mode", "to", to, "subject", subject)
		return nil
	}

	html, err := m.hermes.GenerateHTML(body)
	if err != nil {
		return fmt.Errorf("generating mail body: %w", err)
	}

	sendCtx, cancel := context.WithTimeout(ctx, sendTimeout)
	defer cancel()

	message := m.mailgun.NewMessage(m.from, subject, "", to)
	message.SetHtml(html)
	if _, _, err := m.mailgun.Send(sendCtx, message); err != nil {
		return fmt.Errorf("sending mail: %w", err)
	}
	return nil
}
