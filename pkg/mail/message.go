// -----------------------------------------------------------------------------
// Email Message Builder
// -----------------------------------------------------------------------------
// Fluent builder for outgoing email messages used by the email notification
// channel:
//
//	message := mail.NewMessage().
//	    From("noreply@eventpro.local", "EventPro").
//	    To("user@example.com", "").
//	    Subject("Registration confirmed").
//	    Body("See you there!")
// -----------------------------------------------------------------------------

package mail

import (
	"errors"
	"fmt"
	"time"
)

// Address is an email address with an optional display name.
type Address struct {
	Email string
	Name  string
}

// String formats the address as "Name <email>" or just "email".
func (a Address) String() string {
	if a.Name != "" {
		return fmt.Sprintf("%s <%s>", a.Name, a.Email)
	}
	return a.Email
}

// Message is a single email.
type Message struct {
	from    Address
	to      []Address
	subject string
	body    string
	headers map[string]string
	date    time.Time
}

// NewMessage returns an empty message stamped with the current time.
func NewMessage() *Message {
	return &Message{
		headers: make(map[string]string),
		date:    time.Now(),
	}
}

// From sets the sender.
func (m *Message) From(email, name string) *Message {
	m.from = Address{Email: email, Name: name}
	return m
}

// To adds a recipient.
func (m *Message) To(email, name string) *Message {
	m.to = append(m.to, Address{Email: email, Name: name})
	return m
}

// Subject sets the subject line.
func (m *Message) Subject(subject string) *Message {
	m.subject = subject
	return m
}

// Body sets the plain text body.
func (m *Message) Body(body string) *Message {
	m.body = body
	return m
}

// Header adds a custom header, e.g. X-Event-ID.
func (m *Message) Header(key, value string) *Message {
	m.headers[key] = value
	return m
}

// Validate checks that sender, at least one recipient and subject are
// present. An empty body is allowed.
func (m *Message) Validate() error {
	if m.from.Email == "" {
		return errors.New("sender address is required")
	}
	if len(m.to) == 0 {
		return errors.New("at least one recipient is required")
	}
	for _, to := range m.to {
		if to.Email == "" {
			return errors.New("recipient address must not be empty")
		}
	}
	if m.subject == "" {
		return errors.New("subject is required")
	}
	return nil
}

func (m *Message) GetFrom() Address              { return m.from }
func (m *Message) GetTo() []Address              { return m.to }
func (m *Message) GetSubject() string            { return m.subject }
func (m *Message) GetBody() string               { return m.body }
func (m *Message) GetHeaders() map[string]string { return m.headers }
func (m *Message) GetDate() time.Time            { return m.date }
