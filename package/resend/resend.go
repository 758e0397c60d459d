package resend

import (
	"context"
	"fmt"
	"sync"

	"github.com/resend/resend-go/v2"
)

type ResendConfig struct {
	ApiKey string
}

type EmailRequest struct {
	From    string   `json:"from"`
	To      []string `json:"to"`
	Subject string   `json:"subject"`
	Html    string   `json:"html,omitempty"`
	Text    string   `json:"text,omitempty"`
}

type EmailResponse struct {
	ID string `json:"id"`
}

type ResendService interface {
	SendEmail(ctx context.Context, request *EmailRequest) (*EmailResponse, error)
	Close() error
}

type ResendClient struct {
	client *resend.Client
	config ResendConfig
	mu     sync.RWMutex
}

var _ ResendService = (*ResendClient)(nil)

func NewClient(config ResendConfig) (*ResendClient, error) {
	if config.ApiKey == "" {
		return nil, fmt.Errorf("API key is required")
	}

	return &ResendClient{
		client: resend.NewClient(config.ApiKey),
		config: config,
	}, nil
}

func (r *ResendClient) SendEmail(ctx context.Context, request *EmailRequest) (*EmailResponse, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if err := r.validateEmailRequest(request); err != nil {
		return nil, fmt.Errorf("invalid email request: %w", err)
	}

	sent, err := r.client.Emails.SendWithContext(ctx, &resend.SendEmailRequest{
		From:    request.From,
		To:      request.To,
		Subject: request.Subject,
		Html:    request.Html,
		Text:    request.Text,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to send email: %w", err)
	}

	return &EmailResponse{ID: sent.Id}, nil
}

func (r *ResendClient) validateEmailRequest(request *EmailRequest) error {
	if request == nil {
		return fmt.Errorf("email request cannot be nil")
	}

	if request.From == "" {
		return fmt.Errorf("from address is required")
	}

	if len(request.To) == 0 {
		return fmt.Errorf("at least one recipient is required")
	}

	if request.Subject == "" {
		return fmt.Errorf("subject is required")
	}

	if request.Html == "" && request.Text == "" {
		return fmt.Errorf("either HTML or text content is required")
	}

	for _, email := range request.To {
		if email == "" {
			return fmt.Errorf("empty email address in 'to' field")
		}
	}

	return nil
}

func (r *ResendClient) Close() error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.client = nil
	return nil
}
