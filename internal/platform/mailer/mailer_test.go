package mailer

import (
	"context"
	"strings"
	"testing"
)

func TestRender_ReplacesPlaceholders(t *testing.T) {
	e := NewTemplateEngine()
	subject, body, err := e.Render("sentinel-event-alert", map[string]string{
		"event_type":     "Fall with injury",
		"recipient_name": "Dr. Lima",
		"tracking_id":    "trk-1",
	})
	if err != nil {
		t.Fatalf("Render: %v", err)
	}
	if !strings.Contains(subject, "Fall with injury") {
		t.Errorf("subject missing event type: %s", subject)
	}
	if !strings.Contains(body, "Dr. Lima") || !strings.Contains(body, "trk-1") {
		t.Errorf("body missing data: %s", body)
	}
	// Unresolved keys stay visible rather than silently vanishing.
	if !strings.Contains(body, "{{resident_id}}") {
		t.Errorf("expected unresolved placeholder to remain: %s", body)
	}
}

func TestRender_UnknownTemplate(t *testing.T) {
	e := NewTemplateEngine()
	if _, _, err := e.Render("no-such-template", nil); err == nil {
		t.Fatal("expected error for unknown template")
	}
}

func TestSendTemplate_DeliversToAllRecipients(t *testing.T) {
	sender := &MockEmailSender{}
	m := NewMailer(sender, NewTemplateEngine(), "alerts@vivere.local")

	err := m.SendTemplate(context.Background(), "incident-alert",
		map[string]string{"severity": "SEVERE"},
		[]string{"rt@casa.example", "admin@casa.example"})
	if err != nil {
		t.Fatalf("SendTemplate: %v", err)
	}

	calls := sender.Calls()
	if len(calls) != 2 {
		t.Fatalf("expected 2 sends, got %d", len(calls))
	}
	if calls[0].To != "rt@casa.example" {
		t.Errorf("unexpected first recipient: %s", calls[0].To)
	}
}

func TestSendTemplate_ReturnsDeliveryError(t *testing.T) {
	sender := &MockEmailSender{ShouldFail: true, FailError: "smtp down"}
	m := NewMailer(sender, NewTemplateEngine(), "alerts@vivere.local")

	err := m.SendTemplate(context.Background(), "incident-alert", nil, []string{"rt@casa.example"})
	if err == nil {
		t.Fatal("expected delivery error")
	}
	if len(sender.Calls()) != 1 {
		t.Error("expected the send to have been attempted")
	}
}
