// Package mailer renders templated alert emails and hands them to a delivery
// backend. Delivery itself (SMTP, a provider API) sits behind the EmailSender
// interface; this package owns templates and rendering only.
package mailer

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
)

// EmailSender is the interface for sending email messages.
type EmailSender interface {
	SendEmail(ctx context.Context, to, subject, body string) error
}

// Template defines a reusable alert email template.
type Template struct {
	ID      string
	Subject string
	Body    string
}

// TemplateEngine stores templates and renders them with {{key}} replacement.
type TemplateEngine struct {
	mu        sync.RWMutex
	templates map[string]*Template
}

// NewTemplateEngine creates a TemplateEngine with the built-in templates
// pre-registered.
func NewTemplateEngine() *TemplateEngine {
	e := &TemplateEngine{templates: make(map[string]*Template)}
	e.registerBuiltIn()
	return e
}

func (e *TemplateEngine) registerBuiltIn() {
	builtIn := []Template{
		{
			ID:      "sentinel-event-alert",
			Subject: "SENTINEL EVENT: {{event_type}} — mandatory regulatory report",
			Body: "Dear {{recipient_name}},\n\n" +
				"A sentinel event was detected at {{facility_name}}.\n\n" +
				"Event: {{event_type}}\nResident: {{resident_id}}\nDate: {{date}} {{time}}\n" +
				"Description: {{description}}\nAction taken: {{action_taken}}\n\n" +
				"This event carries a mandatory report to the health surveillance authority " +
				"({{legal_reference}}). Deadline: {{deadline}}.\n\n" +
				"Tracking id: {{tracking_id}}",
		},
		{
			ID:      "incident-alert",
			Subject: "Incident recorded: {{subtype}} ({{severity}})",
			Body: "Dear {{recipient_name}},\n\n" +
				"An incident was recorded for resident {{resident_id}} on {{date}}.\n" +
				"Severity: {{severity}}\nDescription: {{description}}",
		},
	}
	for i := range builtIn {
		t := builtIn[i]
		e.templates[t.ID] = &t
	}
}

// RegisterTemplate adds or replaces a template in the engine.
func (e *TemplateEngine) RegisterTemplate(t Template) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.templates[t.ID] = &t
}

// Render looks up a template by ID and performs {{key}} replacement using the
// supplied data map. Keys present in the template but absent from data are
// left as-is.
func (e *TemplateEngine) Render(templateID string, data map[string]string) (subject, body string, err error) {
	e.mu.RLock()
	t, ok := e.templates[templateID]
	e.mu.RUnlock()
	if !ok {
		return "", "", fmt.Errorf("template %q not found", templateID)
	}

	subject = t.Subject
	body = t.Body
	for k, v := range data {
		placeholder := "{{" + k + "}}"
		subject = strings.ReplaceAll(subject, placeholder, v)
		body = strings.ReplaceAll(body, placeholder, v)
	}
	return subject, body, nil
}

// Mailer renders a template and delivers it through the configured sender.
type Mailer struct {
	sender    EmailSender
	templates *TemplateEngine
	from      string
}

func NewMailer(sender EmailSender, templates *TemplateEngine, from string) *Mailer {
	return &Mailer{sender: sender, templates: templates, from: from}
}

// From returns the configured sender address.
func (m *Mailer) From() string { return m.from }

// SendTemplate renders templateID with data and sends it to each recipient.
// It returns the first delivery error after attempting all recipients.
func (m *Mailer) SendTemplate(ctx context.Context, templateID string, data map[string]string, recipients []string) error {
	subject, body, err := m.templates.Render(templateID, data)
	if err != nil {
		return fmt.Errorf("render template: %w", err)
	}

	var firstErr error
	for _, to := range recipients {
		if err := m.sender.SendEmail(ctx, to, subject, body); err != nil && firstErr == nil {
			firstErr = fmt.Errorf("send to %s: %w", to, err)
		}
	}
	return firstErr
}

// EmailCall records a single call to SendEmail.
type EmailCall struct {
	To      string
	Subject string
	Body    string
}

// MockEmailSender is a test double for EmailSender.
type MockEmailSender struct {
	mu         sync.Mutex
	calls      []EmailCall
	ShouldFail bool
	FailError  string
}

// SendEmail records the call and optionally returns an error.
func (m *MockEmailSender) SendEmail(_ context.Context, to, subject, body string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls = append(m.calls, EmailCall{To: to, Subject: subject, Body: body})
	if m.ShouldFail {
		return errors.New(m.FailError)
	}
	return nil
}

// Calls returns a copy of recorded email calls.
func (m *MockEmailSender) Calls() []EmailCall {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]EmailCall, len(m.calls))
	copy(out, m.calls)
	return out
}
