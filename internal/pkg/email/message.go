package email

import (
	"bytes"
	"fmt"
	"mime"
	"net/mail"
	"time"

	"github.com/google/uuid"
)

// Message is one rendered HTML mail.
type Message struct {
	From    mail.Address
	To      string
	Subject string
	HTML    string
}

// Bytes renders the RFC 5322 form. Subject and display name are Q-encoded
// because the templates are Spanish.
func (m Message) Bytes(now time.Time) []byte {
	var b bytes.Buffer
	header := func(k, v string) { fmt.Fprintf(&b, "%s: %s\r\n", k, v) }

	header("From", m.From.String())
	header("To", m.To)
	header("Subject", mime.QEncoding.Encode("utf-8", m.Subject))
	header("Date", now.Format(time.RFC1123Z))
	header("Message-ID", fmt.Sprintf("<%s@%s>", uuid.NewString(), domainOf(m.From.Address)))
	header("MIME-Version", "1.0")
	header("Content-Type", `text/html; charset="UTF-8"`)
	b.WriteString("\r\n")
	b.WriteString(m.HTML)
	return b.Bytes()
}

func domainOf(address string) string {
	for i := len(address) - 1; i >= 0; i-- {
		if address[i] == '@' {
			return address[i+1:]
		}
	}
	return "localhost"
}
