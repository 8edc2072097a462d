package outreach

import (
	"errors"
	"strings"

	"github.com/go-playground/validator/v10"
)

var ErrInvalidRecipient = errors.New("invalid recipient email")

var validate = validator.New()

// DefaultSubject is the subject line suggested for a role.
func DefaultSubject(role string) string {
	if r := strings.TrimSpace(role); r != "" {
		return "Application for " + r
	}
	return "Application for the position"
}

// MailtoURL builds a mailto: link. An empty recipient leaves the address for
// the mail client to fill in.
func MailtoURL(to, subject, body string) (string, error) {
	to = strings.TrimSpace(to)
	if to != "" {
		if err := validate.Var(to, "email"); err != nil {
			return "", ErrInvalidRecipient
		}
	}
	var b strings.Builder
	b.WriteString("mailto:")
	b.WriteString(to)
	b.WriteString("?subject=")
	b.WriteString(EncodeURIComponent(subject))
	b.WriteString("&body=")
	b.WriteString(EncodeURIComponent(body))
	return b.String(), nil
}

// EncodeURIComponent percent-encodes s the way browsers encode a URI
// component: everything except A-Z a-z 0-9 and -_.!~*'() is escaped.
func EncodeURIComponent(s string) string {
	const hex = "0123456789ABCDEF"
	var b strings.Builder
	b.Grow(len(s))
	for i := 0; i < len(s); i++ {
		c := s[i]
		if unreserved(c) {
			b.WriteByte(c)
			continue
		}
		b.WriteByte('%')
		b.WriteByte(hex[c>>4])
		b.WriteByte(hex[c&0x0f])
	}
	return b.String()
}

func unreserved(c byte) bool {
	switch {
	case 'a' <= c && c <= 'z', 'A' <= c && c <= 'Z', '0' <= c && c <= '9':
		return true
	}
	return strings.IndexByte("-_.!~*'()", c) >= 0
}
