package notify

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/gosuda/campusbot/internal/domain"
	"github.com/gosuda/campusbot/internal/mail"
	"github.com/gosuda/campusbot/internal/messenger"
	redisstore "github.com/gosuda/campusbot/internal/store/redis"
)

// ErrPlatformNotFound is returned when a messenger platform is not registered.
var ErrPlatformNotFound = errors.New("notify: platform not found") //nolint:gochecknoglobals // sentinel error

// alertPlatform is the messenger used for admin alerts.
const alertPlatform = "slack"

// MessengerRegistry maps platform names to Messenger implementations.
type MessengerRegistry interface {
	Get(platform string) (messenger.Messenger, bool)
}

// TenantLookup loads a tenant by id.
type TenantLookup interface {
	GetByID(ctx context.Context, id string) (*domain.Tenant, error)
}

// Mailer delivers an email. *mail.Dispatcher satisfies it.
type Mailer interface {
	Deliver(ctx context.Context, msg mail.Message) error
}

// Publisher publishes a payload on a pub/sub channel. *redisstore.PubSub satisfies it.
type Publisher interface {
	Publish(ctx context.Context, channel string, payload []byte) error
}

// MissEvent is published on a tenant's miss channel for the live admin feed.
type MissEvent struct {
	TenantID  string    `json:"tenant_id"`
	Query     string    `json:"query"`
	CreatedAt time.Time `json:"created_at"`
}

// Notifier fans domain events out to email, messenger alerts, and the live feed.
// Every channel is optional; an unset channel is skipped.
type Notifier struct {
	tenants        TenantLookup
	messengers     MessengerRegistry
	defaultChannel string
	mailer         Mailer
	publisher      Publisher
	now            func() time.Time
}

// Option configures a Notifier.
type Option func(*Notifier)

// WithMessengers enables messenger alerts. defaultChannel is used for tenants
// without a slack_channel setting.
func WithMessengers(messengers MessengerRegistry, defaultChannel string) Option {
	return func(n *Notifier) {
		n.messengers = messengers
		n.defaultChannel = defaultChannel
	}
}

// WithMailer enables email notifications.
func WithMailer(m Mailer) Option {
	return func(n *Notifier) { n.mailer = m }
}

// WithPublisher enables live feed publishing.
func WithPublisher(p Publisher) Option {
	return func(n *Notifier) { n.publisher = p }
}

// WithClock overrides the time source for event timestamps.
func WithClock(now func() time.Time) Option {
	return func(n *Notifier) { n.now = now }
}

// New creates a new Notifier.
func New(tenants TenantLookup, opts ...Option) *Notifier {
	n := &Notifier{
		tenants: tenants,
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(n)
	}
	return n
}

// StudentRegistered emails the tenant contact that a registration awaits approval.
func (n *Notifier) StudentRegistered(ctx context.Context, user *domain.User) error {
	tenant, err := n.tenants.GetByID(ctx, user.TenantID)
	if err != nil {
		return fmt.Errorf("notify.Notifier.StudentRegistered: load tenant: %w", err)
	}
	if tenant.ContactEmail == "" {
		return nil
	}

	msg := mail.Message{
		To:      tenant.ContactEmail,
		Subject: "New student registration pending approval",
		Body: fmt.Sprintf("%s (%s) registered for %s and is waiting for approval.",
			displayName(user), user.Email, tenant.DisplayName),
	}
	if err := n.sendMail(ctx, msg); err != nil {
		return fmt.Errorf("notify.Notifier.StudentRegistered: %w", err)
	}
	return nil
}

// StudentApproved emails the student that their account can now sign in.
func (n *Notifier) StudentApproved(ctx context.Context, user *domain.User) error {
	msg := mail.Message{
		To:      user.Email,
		Subject: "Your account has been approved",
		Body:    fmt.Sprintf("Hi %s, your account has been approved. You can now sign in.", displayName(user)),
	}
	if err := n.sendMail(ctx, msg); err != nil {
		return fmt.Errorf("notify.Notifier.StudentApproved: %w", err)
	}
	return nil
}

// QuestionForwarded alerts the tenant's admins about an unanswered question.
// Each channel is attempted independently and failures are joined.
func (n *Notifier) QuestionForwarded(ctx context.Context, tenantID, query string) error {
	tenant, err := n.tenants.GetByID(ctx, tenantID)
	if err != nil {
		return fmt.Errorf("notify.Notifier.QuestionForwarded: load tenant: %w", err)
	}

	var errs []error

	if alertErr := n.sendAlert(ctx, tenant, query); alertErr != nil {
		errs = append(errs, alertErr)
	}

	if tenant.ContactEmail != "" {
		msg := mail.Message{
			To:      tenant.ContactEmail,
			Subject: "Unanswered student question",
			Body:    fmt.Sprintf("A student asked a question the assistant could not answer:\n\n%s", query),
		}
		if mailErr := n.sendMail(ctx, msg); mailErr != nil {
			errs = append(errs, mailErr)
		}
	}

	if pubErr := n.publishMiss(ctx, tenant.ID, query); pubErr != nil {
		errs = append(errs, pubErr)
	}

	if len(errs) > 0 {
		joined := errors.Join(errs...)
		log.Warn().Err(joined).Str("tenant_id", tenantID).Msg("notify: question forwarded with failures")
		return fmt.Errorf("notify.Notifier.QuestionForwarded: %w", joined)
	}
	return nil
}

func (n *Notifier) sendAlert(ctx context.Context, tenant *domain.Tenant, query string) error {
	if n.messengers == nil {
		return nil
	}

	channel, ok := tenant.Setting(domain.SettingSlackChannel)
	if !ok {
		channel = n.defaultChannel
	}
	if channel == "" {
		return nil
	}

	m, ok := n.messengers.Get(alertPlatform)
	if !ok {
		return fmt.Errorf("alert: platform %q: %w", alertPlatform, ErrPlatformNotFound)
	}

	_, err := m.SendAlert(ctx, channel, messenger.Alert{
		Title:   "Unanswered question",
		Text:    query,
		Context: tenant.DisplayName + " (" + tenant.ID + ")",
	})
	if err != nil {
		return fmt.Errorf("alert: %w", err)
	}
	return nil
}

func (n *Notifier) sendMail(ctx context.Context, msg mail.Message) error {
	if n.mailer == nil {
		log.Debug().Str("to", msg.To).Str("subject", msg.Subject).Msg("notify: mail disabled, dropping message")
		return nil
	}
	if err := n.mailer.Deliver(ctx, msg); err != nil {
		return fmt.Errorf("mail: %w", err)
	}
	return nil
}

func (n *Notifier) publishMiss(ctx context.Context, tenantID, query string) error {
	if n.publisher == nil {
		return nil
	}

	payload, err := json.Marshal(MissEvent{TenantID: tenantID, Query: query, CreatedAt: n.now().UTC()})
	if err != nil {
		return fmt.Errorf("publish: marshal: %w", err)
	}
	if err := n.publisher.Publish(ctx, redisstore.MissChannel(tenantID), payload); err != nil {
		return fmt.Errorf("publish: %w", err)
	}
	return nil
}

func displayName(u *domain.User) string {
	if u.Name != "" {
		return u.Name
	}
	return u.Email
}
