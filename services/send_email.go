package services

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"html/template"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/Hassan1910/Community-Collaboration-Platforms/models"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

const resendEndpoint = "https://api.resend.com/emails"

// ResendEmailRequest represents the request payload for Resend API
type ResendEmailRequest struct {
	From    string   `json:"from"`
	To      []string `json:"to"`
	Subject string   `json:"subject"`
	Html    string   `json:"html,omitempty"`
	Text    string   `json:"text,omitempty"`
}

// ResendEmailResponse represents the response from Resend API
type ResendEmailResponse struct {
	ID string `json:"id"`
}

// ResendErrorResponse represents an error response from Resend API
type ResendErrorResponse struct {
	Message string `json:"message"`
}

// Mailer sends transactional email through the Resend API.
type Mailer struct {
	apiKey   string
	from     string
	endpoint string
	client   *http.Client
	logger   zerolog.Logger
}

// NewMailer returns nil when apiKey or from is empty, which disables email.
func NewMailer(apiKey, from string) *Mailer {
	if apiKey == "" || from == "" {
		return nil
	}
	return &Mailer{
		apiKey:   apiKey,
		from:     from,
		endpoint: resendEndpoint,
		client:   &http.Client{Timeout: 15 * time.Second},
		logger:   log.With().Str("service", "mailer").Logger(),
	}
}

// SendEmail sends an HTML email to recipients.
func (m *Mailer) SendEmail(ctx context.Context, subject, body string, recipients []string) error {
	if len(recipients) == 0 {
		return fmt.Errorf("at least one recipient is required")
	}

	payload := ResendEmailRequest{
		From:    m.from,
		To:      recipients,
		Subject: subject,
		Html:    body,
	}

	jsonPayload, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to marshal email payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, m.endpoint, bytes.NewReader(jsonPayload))
	if err != nil {
		return fmt.Errorf("failed to create Resend API request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+m.apiKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := m.client.Do(req)
	if err != nil {
		return fmt.Errorf("failed to send request to Resend API: %w", err)
	}
	defer resp.Body.Close()

	bodyBytes, err := io.ReadAll(io.LimitReader(resp.Body, 64*1024))
	if err != nil {
		return fmt.Errorf("failed to read Resend API response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		var errorResp ResendErrorResponse
		if err := json.Unmarshal(bodyBytes, &errorResp); err == nil && errorResp.Message != "" {
			return fmt.Errorf("resend API error (status %d): %s", resp.StatusCode, errorResp.Message)
		}
		return fmt.Errorf("resend API error (status %d): %s", resp.StatusCode, string(bodyBytes))
	}

	var emailResponse ResendEmailResponse
	if err := json.Unmarshal(bodyBytes, &emailResponse); err != nil {
		m.logger.Warn().Err(err).Msg("Failed to parse Resend email response, but email was sent")
	} else {
		m.logger.Info().Str("emailId", emailResponse.ID).Msg("Successfully sent email via Resend")
	}
	return nil
}

// CommentNotifier is told about every comment left by someone other than the project owner.
type CommentNotifier interface {
	CommentPosted(ctx context.Context, project *models.Project, owner, author *models.User, comment *models.Comment) error
}

// EmailNotifier emails project owners about new comments.
type EmailNotifier struct {
	mailer      *Mailer
	siteBaseURL string
}

func NewEmailNotifier(mailer *Mailer, siteBaseURL string) *EmailNotifier {
	return &EmailNotifier{mailer: mailer, siteBaseURL: strings.TrimSuffix(siteBaseURL, "/")}
}

var commentEmailTemplate = template.Must(template.New("comment").Parse(
	`<p><strong>{{.Author}}</strong> commented on <a href="{{.Link}}">{{.Title}}</a>:</p>` +
		`<blockquote>{{.Content}}</blockquote>`))

func (n *EmailNotifier) CommentPosted(ctx context.Context, project *models.Project, owner, author *models.User, comment *models.Comment) error {
	if owner == nil || owner.Email == "" {
		return nil
	}

	authorName := author.Name
	if authorName == "" {
		authorName = "@" + author.Username
	}

	var body bytes.Buffer
	err := commentEmailTemplate.Execute(&body, map[string]string{
		"Author":  authorName,
		"Link":    n.siteBaseURL + "/projects/" + project.Slug,
		"Title":   project.Title,
		"Content": comment.Content,
	})
	if err != nil {
		return err
	}

	subject := fmt.Sprintf("New comment on %s", project.Title)
	return n.mailer.SendEmail(ctx, subject, body.String(), []string{owner.Email})
}
