package notifications

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"html/template"
	"io"
	"log"
	"net/http"
	"strings"
	"time"

	config "github.com/anjiri1684/course_marketplace/configs"
	"github.com/anjiri1684/course_marketplace/models"
)

const brevoBaseURL = "https://api.brevo.com"

type BrevoService struct {
	APIKey      string
	SenderEmail string
	SenderName  string
	BaseURL     string
	HTTPClient  *http.Client
}

type brevoPayload struct {
	Sender      map[string]string   `json:"sender"`
	To          []map[string]string `json:"to"`
	Subject     string              `json:"subject"`
	HTMLContent string              `json:"htmlContent"`
}

// NewBrevoService returns nil when the email settings are incomplete; a nil
// service skips every send.
func NewBrevoService(cfg config.EmailConfig) *BrevoService {
	if cfg.APIKey == "" || cfg.SenderEmail == "" || cfg.SenderName == "" {
		log.Println("⚠️ Email service not configured. Missing API Key, Sender Email, or Sender Name.")
		return nil
	}

	log.Println("✅ Email service initialized successfully.")
	return &BrevoService{
		APIKey:      cfg.APIKey,
		SenderEmail: cfg.SenderEmail,
		SenderName:  cfg.SenderName,
		BaseURL:     brevoBaseURL,
		HTTPClient:  &http.Client{Timeout: 10 * time.Second},
	}
}

func (s *BrevoService) SendEmail(ctx context.Context, toName, toEmail, subject, htmlContent string) error {
	if s == nil {
		log.Println("Email client not initialized, skipping email send.")
		return nil
	}

	if toEmail == "" || !strings.Contains(toEmail, "@") {
		return fmt.Errorf("invalid recipient email: %s", toEmail)
	}

	recipientName := toName
	if recipientName == "" {
		recipientName = toEmail[:strings.Index(toEmail, "@")]
	}

	body, err := json.Marshal(brevoPayload{
		Sender:      map[string]string{"name": s.SenderName, "email": s.SenderEmail},
		To:          []map[string]string{{"email": toEmail, "name": recipientName}},
		Subject:     subject,
		HTMLContent: htmlContent,
	})
	if err != nil {
		return fmt.Errorf("failed to marshal payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.BaseURL+"/v3/smtp/email", bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("accept", "application/json")
	req.Header.Set("api-key", s.APIKey)
	req.Header.Set("content-type", "application/json")

	client := s.HTTPClient
	if client == nil {
		client = http.DefaultClient
	}
	resp, err := client.Do(req)
	if err != nil {
		return fmt.Errorf("failed to send request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusCreated {
		bodyBytes, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("failed to send email via Brevo: status %d: %s", resp.StatusCode, string(bodyBytes))
	}

	log.Printf("✅ Email sent successfully to %s", toEmail)
	return nil
}

var purchaseTemplate = template.Must(template.New("purchase").Parse(
	`<h2>Thank you for your purchase, {{.UserName}}!</h2>` +
		`<p>You now have access to <strong>{{.CourseTitle}}</strong> by {{.InstructorName}}.</p>` +
		`<p>Amount paid: {{.CoursePricing}}<br>Order reference: {{.ID}}</p>`))

// SendPurchaseConfirmation emails the buyer of a confirmed order.
func (s *BrevoService) SendPurchaseConfirmation(ctx context.Context, order *models.Order) error {
	if s == nil {
		return nil
	}

	var html bytes.Buffer
	if err := purchaseTemplate.Execute(&html, order); err != nil {
		return fmt.Errorf("render purchase email: %w", err)
	}
	return s.SendEmail(ctx, order.UserName, order.UserEmail, "Your course purchase: "+order.CourseTitle, html.String())
}
