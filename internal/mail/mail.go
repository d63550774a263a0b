// Package mail relays contact-form submissions to the site owner's inbox.
package mail

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"mime"
	"mime/quotedprintable"
	"net/mail"
	"strings"
	"time"

	"github.com/rs/xid"
)

// ErrNotConfigured is returned by Disabled.
var ErrNotConfigured = errors.New("mail: no SMTP relay configured")

// Message is one contact-form submission.
type Message struct {
	Name    string
	Email   string
	Subject string
	Body    string
}

// Sender delivers a Message to the owner.
type Sender interface {
	Send(ctx context.Context, msg Message) error
}

// Disabled is the Sender used when no relay is configured. Every send fails
// so the contact form reports an error instead of silently dropping mail.
type Disabled struct{}

func (Disabled) Send(context.Context, Message) error { return ErrNotConfigured }

// envelope holds the addressing for one outgoing email.
type envelope struct {
	from string
	to   string
	date time.Time
}

// build renders msg as an RFC 5322 message. Header values are stripped of
// CR and LF so user input cannot inject headers.
func build(env envelope, msg Message) []byte {
	var b bytes.Buffer

	subject := "[Contact] " + clean(msg.Subject)
	replyTo := mail.Address{Name: clean(msg.Name), Address: clean(msg.Email)}

	fmt.Fprintf(&b, "From: %s\r\n", env.from)
	fmt.Fprintf(&b, "To: %s\r\n", env.to)
	fmt.Fprintf(&b, "Reply-To: %s\r\n", replyTo.String())
	fmt.Fprintf(&b, "Subject: %s\r\n", mime.QEncoding.Encode("utf-8", subject))
	fmt.Fprintf(&b, "Date: %s\r\n", env.date.Format(time.RFC1123Z))
	fmt.Fprintf(&b, "Message-ID: <%s@%s>\r\n", xid.New().String(), domainOf(env.from))
	b.WriteString("MIME-Version: 1.0\r\n")
	b.WriteString("Content-Type: text/plain; charset=UTF-8\r\n")
	b.WriteString("Content-Transfer-Encoding: quoted-printable\r\n")
	b.WriteString("\r\n")

	qp := quotedprintable.NewWriter(&b)
	fmt.Fprintf(qp, "Name: %s\r\n", msg.Name)
	fmt.Fprintf(qp, "Email: %s\r\n", msg.Email)
	fmt.Fprintf(qp, "Subject: %s\r\n\r\n", msg.Subject)
	qp.Write([]byte(normalizeNewlines(msg.Body)))
	qp.Close()
	b.WriteString("\r\n")

	return b.Bytes()
}

func clean(s string) string {
	return strings.TrimSpace(strings.NewReplacer("\r", " ", "\n", " ").Replace(s))
}

func normalizeNewlines(s string) string {
	s = strings.ReplaceAll(s, "\r\n", "\n")
	return strings.ReplaceAll(s, "\n", "\r\n")
}

func domainOf(addr string) string {
	if i := strings.LastIndexByte(addr, '@'); i >= 0 {
		return strings.TrimSuffix(addr[i+1:], ">")
	}
	return "localhost"
}
