package email

import (
	"context"
	"fmt"

	"github.com/flyticket/flyticket/internal/kafka"
	"github.com/sirupsen/logrus"
)

// Sender renders passenger notifications. Delivery is a structured log line;
// there is no SMTP relay in this deployment.
type Sender struct {
	log logrus.FieldLogger
}

func NewSender(log logrus.FieldLogger) *Sender {
	return &Sender{log: log}
}

type Message struct {
	To      string
	Subject string
	Body    string
}

func Compose(event kafka.TicketEvent) (Message, error) {
	name := event.PassengerName + " " + event.PassengerSurname
	switch event.Type {
	case kafka.EventTicketIssued:
		body := fmt.Sprintf("Dear %s, your ticket %s is confirmed.", name, event.TicketCode)
		if event.FlightCode != "" {
			body += fmt.Sprintf(" Flight %s (%s) departs %s.", event.FlightCode, event.Route, event.DepartureTime.Format("2006-01-02 15:04"))
		}
		return Message{To: event.Email, Subject: "Your ticket " + event.TicketCode, Body: body}, nil
	case kafka.EventTicketCancelled:
		return Message{
			To:      event.Email,
			Subject: "Ticket " + event.TicketCode + " cancelled",
			Body:    fmt.Sprintf("Dear %s, your ticket %s has been cancelled.", name, event.TicketCode),
		}, nil
	}
	return Message{}, fmt.Errorf("unknown ticket event type %q", event.Type)
}

func (s *Sender) Send(ctx context.Context, event kafka.TicketEvent) error {
	msg, err := Compose(event)
	if err != nil {
		s.log.WithError(err).WithField("ticket_code", event.TicketCode).Warn("no notification for event")
		return nil
	}
	s.log.WithFields(logrus.Fields{
		"to":          msg.To,
		"subject":     msg.Subject,
		"ticket_code": event.TicketCode,
	}).Info(msg.Body)
	return nil
}
