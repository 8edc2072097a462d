package outreach

import (
	"errors"
	"testing"
)

func TestDefaultSubject(t *testing.T) {
	if got := DefaultSubject("Staff Engineer"); got != "Application for Staff Engineer" {
		t.Fatalf("unexpected subject %q", got)
	}
	if got := DefaultSubject("  "); got != "Application for the position" {
		t.Fatalf("unexpected fallback subject %q", got)
	}
}

func TestMailtoURL(t *testing.T) {
	got, err := MailtoURL("hr@acme.io", "Application for Go Dev", "Hi there,\nI'm keen (really) & ready!")
	if err != nil {
		t.Fatalf("mailto: %v", err)
	}
	want := "mailto:hr@acme.io?subject=Application%20for%20Go%20Dev&body=Hi%20there%2C%0AI'm%20keen%20(really)%20%26%20ready!"
	if got != want {
		t.Fatalf("expected\n%s\ngot\n%s", want, got)
	}
}

func TestMailtoURLWithoutRecipient(t *testing.T) {
	got, err := MailtoURL("", "Hi", "Body")
	if err != nil {
		t.Fatalf("mailto: %v", err)
	}
	if got != "mailto:?subject=Hi&body=Body" {
		t.Fatalf("unexpected url %q", got)
	}
}

func TestMailtoURLRejectsBadRecipient(t *testing.T) {
	if _, err := MailtoURL("not-an-email", "s", "b"); !errors.Is(err, ErrInvalidRecipient) {
		t.Fatalf("expected ErrInvalidRecipient, got %v", err)
	}
}

func TestEncodeURIComponentUTF8(t *testing.T) {
	if got := EncodeURIComponent("Résumé"); got != "R%C3%A9sum%C3%A9" {
		t.Fatalf("unexpected encoding %q", got)
	}
}
