package email

import (
	"context"
	"fmt"
	"strings"

	"github.com/sendgrid/rest"
	"github.com/sendgrid/sendgrid-go"
	"github.com/sendgrid/sendgrid-go/helpers/mail"
	"github.com/tatame/tatame-backend/pkg/config"
	pkgerrors "github.com/tatame/tatame-backend/pkg/errors"
	"github.com/tatame/tatame-backend/pkg/logger"
)

const sendEndpoint = "/v3/mail/send"

// Message is a single transactional email.
type Message struct {
	To      string
	ToName  string
	Subject string
	Text    string
	HTML    string
}

// Client sends transactional email through SendGrid.
type Client struct {
	api  *sendgrid.Client
	from *mail.Email
	logg *logger.Logger
}

// Option customises the client.
type Option func(*clientOptions)

type clientOptions struct {
	host string
}

// WithHost points the client at another SendGrid-compatible host.
func WithHost(host string) Option {
	return func(o *clientOptions) {
		o.host = host
	}
}

func NewClient(cfg config.SendgridConfig, logg *logger.Logger, opts ...Option) (*Client, error) {
	apiKey := strings.TrimSpace(cfg.APIKey)
	if apiKey == "" {
		return nil, fmt.Errorf("sendgrid api key is required")
	}
	if strings.TrimSpace(cfg.DefaultFrom) == "" {
		return nil, fmt.Errorf("sendgrid from address is required")
	}

	options := clientOptions{}
	for _, opt := range opts {
		opt(&options)
	}

	request := sendgrid.GetRequest(apiKey, sendEndpoint, options.host)
	request.Method = rest.Post

	return &Client{
		api:  &sendgrid.Client{Request: request},
		from: mail.NewEmail(cfg.FromName, cfg.DefaultFrom),
		logg: logg,
	}, nil
}

// Send delivers one message; any non-2xx answer is returned as a dependency error.
func (c *Client) Send(ctx context.Context, msg Message) error {
	if strings.TrimSpace(msg.To) == "" {
		return pkgerrors.New(pkgerrors.CodeValidation, "recipient is required")
	}
	if msg.Subject == "" {
		return pkgerrors.New(pkgerrors.CodeValidation, "subject is required")
	}

	payload := mail.NewSingleEmail(c.from, msg.Subject, mail.NewEmail(msg.ToName, msg.To), msg.Text, msg.HTML)
	resp, err := c.api.SendWithContext(ctx, payload)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "send email")
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return pkgerrors.New(pkgerrors.CodeDependency, fmt.Sprintf("sendgrid returned %d: %s", resp.StatusCode, strings.TrimSpace(resp.Body)))
	}

	if c.logg != nil {
		c.logg.Debug(c.logg.WithField(ctx, "email_subject", msg.Subject), "email.sent")
	}
	return nil
}
