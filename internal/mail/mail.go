// Package mail renders the transactional e-mails sent by the service.
package mail

import (
	"bytes"
	"embed"
	"fmt"
	"strings"
	"text/template"
)

const (
	// Brand is the sender identity shown in every message.
	Brand = "Legxcy Solutions"
	// SiteURL is the marketing site linked from every message.
	SiteURL = "https://legxcysol.dev"
)

//go:embed templates/*.tmpl
var templateFS embed.FS

// Message is a rendered e-mail.
type Message struct {
	Subject string
	HTML    string
	Text    string
}

type kind struct {
	html *template.Template
	text *template.Template
}

var (
	outreachKind      = mustKind("outreach")
	contactNotifyKind = mustKind("contact_notify")
	contactReplyKind  = mustKind("contact_reply")
)

func mustKind(name string) kind {
	html := template.Must(template.New(name).ParseFS(templateFS, "templates/layout.html.tmpl", "templates/"+name+".html.tmpl"))
	text := template.Must(template.New(name).ParseFS(templateFS, "templates/"+name+".txt.tmpl"))
	return kind{html: html, text: text}
}

// page carries the fields every HTML body shares.
type page struct {
	Brand     string
	SiteURL   string
	Preheader string
	Footer    string
}

func (k kind) render(subject, textName string, htmlData, textData any) (Message, error) {
	var html bytes.Buffer
	if err := k.html.ExecuteTemplate(&html, "layout", htmlData); err != nil {
		return Message{}, fmt.Errorf("render html: %w", err)
	}
	var text bytes.Buffer
	if err := k.text.ExecuteTemplate(&text, textName, textData); err != nil {
		return Message{}, fmt.Errorf("render text: %w", err)
	}
	return Message{Subject: subject, HTML: html.String(), Text: strings.TrimSpace(text.String()) + "\n"}, nil
}

// EscapeHTML makes s safe for HTML text and attribute contexts. The ampersand
// is replaced first so later entities are not escaped twice.
func EscapeHTML(s string) string {
	s = strings.ReplaceAll(s, "&", "&amp;")
	s = strings.ReplaceAll(s, "<", "&lt;")
	s = strings.ReplaceAll(s, ">", "&gt;")
	s = strings.ReplaceAll(s, `"`, "&quot;")
	s = strings.ReplaceAll(s, "'", "&#39;")
	return s
}

// Outreach is the input of an operator-composed prospect e-mail.
type Outreach struct {
	Name     string
	Business string
	Website  string
	Message  string
	Subject  string
}

type outreachData struct {
	page
	Name     string
	Business string
	Website  string
	Message  string
}

// OutreachSubject returns the override when set, otherwise the default
// subject naming the business (or the recipient when no business is given).
func OutreachSubject(in Outreach) string {
	if subject := strings.TrimSpace(in.Subject); subject != "" {
		return subject
	}
	target := strings.TrimSpace(in.Business)
	if target == "" {
		target = strings.TrimSpace(in.Name)
	}
	return "Website help for " + target
}

// RenderOutreach renders a prospect e-mail. User-supplied values are escaped
// in the HTML body and kept raw in the text body.
func RenderOutreach(in Outreach) (Message, error) {
	raw := outreachData{
		page:     basePage("", ""),
		Name:     in.Name,
		Business: in.Business,
		Website:  in.Website,
		Message:  in.Message,
	}
	escaped := outreachData{
		page:     basePage("A quick note about your website.", "You are receiving this one-off message from "+Brand+"."),
		Name:     EscapeHTML(in.Name),
		Business: EscapeHTML(in.Business),
		Website:  EscapeHTML(in.Website),
		Message:  EscapeHTML(in.Message),
	}
	return outreachKind.render(OutreachSubject(in), "outreach.txt.tmpl", escaped, raw)
}

// ContactSubmission is a message left through the contact form.
type ContactSubmission struct {
	Name    string
	Email   string
	Message string
}

type contactData struct {
	page
	Name      string
	FirstName string
	Email     string
	Message   string
}

// FirstName returns the first word of name, or "there".
func FirstName(name string) string {
	fields := strings.Fields(name)
	if len(fields) == 0 {
		return "there"
	}
	return fields[0]
}

// RenderContactNotification renders the operator copy of a submission.
func RenderContactNotification(in ContactSubmission) (Message, error) {
	subject := fmt.Sprintf("New Contact Form: %s <%s>", in.Name, in.Email)
	escaped := contactData{
		page:    basePage("New contact form submission received from your website.", "Sent via "+Brand+" Website"),
		Name:    EscapeHTML(in.Name),
		Email:   EscapeHTML(in.Email),
		Message: EscapeHTML(in.Message),
	}
	raw := contactData{page: basePage("", ""), Name: in.Name, Email: in.Email, Message: in.Message}
	return contactNotifyKind.render(subject, "contact_notify.txt.tmpl", escaped, raw)
}

// RenderContactReply renders the auto-reply sent to the submitter.
func RenderContactReply(in ContactSubmission) (Message, error) {
	first := FirstName(in.Name)
	escaped := contactData{
		page:      basePage("We have received your message. Here is what happens next.", "You are receiving this because you contacted "+Brand+".<br/>If this was not you, just ignore this email."),
		FirstName: EscapeHTML(first),
	}
	raw := contactData{page: basePage("", ""), FirstName: first}
	return contactReplyKind.render("Thanks for contacting "+Brand, "contact_reply.txt.tmpl", escaped, raw)
}

func basePage(preheader, footer string) page {
	return page{Brand: Brand, SiteURL: SiteURL, Preheader: EscapeHTML(preheader), Footer: footer}
}
