package mail

import (
	"strings"
	"testing"
)

func TestEscapeHTML(t *testing.T) {
	cases := map[string]string{
		`<script>alert("x")</script>`: `&lt;script&gt;alert(&quot;x&quot;)&lt;/script&gt;`,
		`Tom & Jerry's`:               `Tom &amp; Jerry&#39;s`,
		`&lt;`:                        `&amp;lt;`,
		`plain`:                       `plain`,
	}
	for input, want := range cases {
		if got := EscapeHTML(input); got != want {
			t.Fatalf("EscapeHTML(%q) = %q, want %q", input, got, want)
		}
	}
}

func TestRenderOutreach_EscapesHTMLOnly(t *testing.T) {
	msg, err := RenderOutreach(Outreach{
		Name:     "Jo <b>",
		Business: "Fish & Chips",
		Website:  "https://fish.example",
		Message:  `Hello "there"`,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if msg.Subject != "Website help for Fish & Chips" {
		t.Fatalf("unexpected subject %q", msg.Subject)
	}
	if strings.Contains(msg.HTML, "<b>") || !strings.Contains(msg.HTML, "Jo &lt;b&gt;") {
		t.Fatalf("expected escaped name in html")
	}
	if !strings.Contains(msg.HTML, "Fish &amp; Chips") || !strings.Contains(msg.HTML, "Hello &quot;there&quot;") {
		t.Fatalf("expected escaped business and message in html")
	}
	if !strings.Contains(msg.Text, "Hi Jo <b>,") || !strings.Contains(msg.Text, `Hello "there"`) {
		t.Fatalf("expected raw values in text body: %s", msg.Text)
	}
}

func TestOutreachSubject(t *testing.T) {
	cases := map[string]struct {
		in   Outreach
		want string
	}{
		"override":  {in: Outreach{Name: "Jo", Business: "Acme", Subject: " Quick question "}, want: "Quick question"},
		"business":  {in: Outreach{Name: "Jo", Business: "Acme"}, want: "Website help for Acme"},
		"name":      {in: Outreach{Name: "Jo"}, want: "Website help for Jo"},
		"blank biz": {in: Outreach{Name: "Jo", Business: "  "}, want: "Website help for Jo"},
	}
	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			if got := OutreachSubject(tc.in); got != tc.want {
				t.Fatalf("expected %q, got %q", tc.want, got)
			}
		})
	}
}

func TestRenderContactMessages(t *testing.T) {
	in := ContactSubmission{Name: "Ada Lovelace", Email: "ada@example.com", Message: "<hi>"}

	notify, err := RenderContactNotification(in)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if notify.Subject != "New Contact Form: Ada Lovelace <ada@example.com>" {
		t.Fatalf("unexpected subject %q", notify.Subject)
	}
	if !strings.Contains(notify.HTML, "&lt;hi&gt;") || strings.Contains(notify.HTML, "<hi>") {
		t.Fatalf("expected escaped message in notification html")
	}
	if !strings.Contains(notify.Text, "Message:\n<hi>") {
		t.Fatalf("unexpected notification text %q", notify.Text)
	}

	reply, err := RenderContactReply(in)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if reply.Subject != "Thanks for contacting Legxcy Solutions" || !strings.HasPrefix(reply.Text, "Hi Ada,") {
		t.Fatalf("unexpected reply %q / %q", reply.Subject, reply.Text)
	}
	if !strings.Contains(reply.HTML, "Hi Ada,") {
		t.Fatalf("expected first name in reply html")
	}
}

func TestFirstName(t *testing.T) {
	if got := FirstName("   "); got != "there" {
		t.Fatalf("expected fallback, got %q", got)
	}
	if got := FirstName(" Grace  Hopper"); got != "Grace" {
		t.Fatalf("expected Grace, got %q", got)
	}
}
