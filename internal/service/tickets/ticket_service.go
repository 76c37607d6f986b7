package tickets

import (
	"context"
	"errors"
	"fmt"
	"reflect"
	"strings"
	"time"

	"github.com/flyticket/flyticket/internal/domain"
	"github.com/flyticket/flyticket/internal/kafka"
	"github.com/flyticket/flyticket/internal/logging"
	"github.com/flyticket/flyticket/internal/repository"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

type TicketUseCase interface {
	Issue(ctx context.Context, input IssueInput) (*domain.Ticket, error)
	GetByCode(ctx context.Context, code string) (*domain.Ticket, error)
	List(ctx context.Context) ([]domain.Ticket, error)
	Cancel(ctx context.Context, id int64) (*domain.CancelledTicket, error)
	AuditSeats(ctx context.Context) ([]domain.SeatDiscrepancy, error)
}

// ListInvalidator drops the cached flight list after a seat counter change.
type ListInvalidator interface {
	InvalidateFlights(ctx context.Context) error
}

type Producer interface {
	Publish(ctx context.Context, topic, key string, value interface{}) error
}

type TicketService struct {
	tickets            repository.TicketRepository
	flights            repository.FlightRepository
	cache              ListInvalidator
	producer           Producer
	eventsTopic        string
	notificationsTopic string
	codePrefix         string
	maxCodeAttempts    int
	newCode            func() string
	now                func() time.Time
	log                logrus.FieldLogger
}

type IssueInput struct {
	FlightID         int64  `json:"flight_id" validate:"gt=0"`
	PassengerName    string `json:"passenger_name" validate:"required,max=100"`
	PassengerSurname string `json:"passenger_surname" validate:"required,max=100"`
	PassengerEmail   string `json:"passenger_email" validate:"required,max=254,email"`
	SeatNumber       string `json:"seat_number" validate:"omitempty,max=10"`
}

var validate = newValidator()

// newValidator reports fields by their json names so errors match the request body.
func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name, _, _ := strings.Cut(fld.Tag.Get("json"), ",")
		if name == "" || name == "-" {
			return fld.Name
		}
		return name
	})
	return v
}

type TicketServiceOption func(*TicketService)

// WithEvents publishes ledger changes to eventsTopic through producer.
func WithEvents(producer Producer, eventsTopic string) TicketServiceOption {
	return func(s *TicketService) {
		s.producer = producer
		s.eventsTopic = eventsTopic
	}
}

func WithNotificationsTopic(topic string) TicketServiceOption {
	return func(s *TicketService) {
		s.notificationsTopic = topic
	}
}

func WithCodePrefix(prefix string, maxAttempts int) TicketServiceOption {
	return func(s *TicketService) {
		s.codePrefix = prefix
		if maxAttempts > 0 {
			s.maxCodeAttempts = maxAttempts
		}
	}
}

// WithCodeGenerator replaces the random part of ticket codes.
func WithCodeGenerator(gen func() string) TicketServiceOption {
	return func(s *TicketService) {
		s.newCode = gen
	}
}

func WithLogger(log logrus.FieldLogger) TicketServiceOption {
	return func(s *TicketService) {
		s.log = log
	}
}

func NewTicketService(tickets repository.TicketRepository, flights repository.FlightRepository, cache ListInvalidator, opts ...TicketServiceOption) *TicketService {
	s := &TicketService{
		tickets:         tickets,
		flights:         flights,
		cache:           cache,
		codePrefix:      "TK-",
		maxCodeAttempts: 3,
		newCode:         randomCode,
		now:             time.Now,
		log:             logging.Discard(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func randomCode() string {
	return strings.ToUpper(strings.ReplaceAll(uuid.NewString(), "-", "")[:8])
}

func (s *TicketService) Issue(ctx context.Context, input IssueInput) (*domain.Ticket, error) {
	ticket, err := newTicket(input)
	if err != nil {
		return nil, err
	}

	var remaining int
	for attempt := 1; ; attempt++ {
		ticket.Code = s.codePrefix + s.newCode()
		remaining, err = s.tickets.Issue(ctx, ticket)
		if !errors.Is(err, domain.ErrDuplicateTicketCode) || attempt >= s.maxCodeAttempts {
			break
		}
		s.log.WithField("ticket_code", ticket.Code).Warn("ticket code collision, regenerating")
	}
	if err != nil {
		return nil, err
	}

	s.invalidate(ctx)

	flight, err := s.flights.GetByID(ctx, ticket.FlightID)
	if err != nil {
		s.log.WithError(err).WithField("flight_id", ticket.FlightID).Warn("issued ticket but could not load its flight")
	} else {
		ticket.Flight = flight
	}

	s.log.WithFields(logrus.Fields{
		"ticket_code":     ticket.Code,
		"flight_id":       ticket.FlightID,
		"seats_available": remaining,
	}).Info("ticket issued")
	s.publish(ctx, kafka.NewTicketEvent(kafka.EventTicketIssued, *ticket, ticket.Flight, remaining, s.now()))
	return ticket, nil
}

func newTicket(input IssueInput) (*domain.Ticket, error) {
	input.PassengerName = strings.TrimSpace(input.PassengerName)
	input.PassengerSurname = strings.TrimSpace(input.PassengerSurname)
	input.PassengerEmail = strings.ToLower(strings.TrimSpace(input.PassengerEmail))
	input.SeatNumber = strings.ToUpper(strings.TrimSpace(input.SeatNumber))

	if err := validate.Struct(input); err != nil {
		return nil, invalidInput(err)
	}
	return &domain.Ticket{
		FlightID:         input.FlightID,
		PassengerName:    input.PassengerName,
		PassengerSurname: input.PassengerSurname,
		PassengerEmail:   input.PassengerEmail,
		SeatNumber:       input.SeatNumber,
	}, nil
}

// invalidInput turns the first failed rule into an InvalidInputError.
func invalidInput(err error) error {
	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) || len(fieldErrs) == 0 {
		return err
	}
	fe := fieldErrs[0]
	switch fe.Tag() {
	case "required", "gt":
		return domain.NewInvalidInput(fe.Field(), "is required")
	case "email":
		return domain.NewInvalidInput(fe.Field(), "is not a valid address")
	case "max":
		return domain.NewInvalidInput(fe.Field(), "must be at most "+fe.Param()+" characters")
	default:
		return domain.NewInvalidInput(fe.Field(), "failed "+fe.Tag())
	}
}

func (s *TicketService) GetByCode(ctx context.Context, code string) (*domain.Ticket, error) {
	code = strings.ToUpper(strings.TrimSpace(code))
	if code == "" {
		return nil, domain.NewInvalidInput("code", "is required")
	}
	return s.tickets.GetByCode(ctx, code)
}

func (s *TicketService) List(ctx context.Context) ([]domain.Ticket, error) {
	tickets, err := s.tickets.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list tickets: %w", err)
	}
	return tickets, nil
}

func (s *TicketService) Cancel(ctx context.Context, id int64) (*domain.CancelledTicket, error) {
	res, err := s.tickets.Cancel(ctx, id)
	if err != nil {
		return nil, err
	}

	fields := logrus.Fields{"ticket_code": res.Ticket.Code, "flight_id": res.Ticket.FlightID}
	switch {
	case !res.FlightFound:
		s.log.WithFields(fields).Warn("cancelled ticket of a deleted flight, no seat returned")
	case res.Capped:
		s.log.WithFields(fields).Warn("flight already at full availability, seat increment dropped")
	default:
		s.invalidate(ctx)
	}

	var flight *domain.Flight
	if res.FlightFound {
		flight, err = s.flights.GetByID(ctx, res.Ticket.FlightID)
		if err != nil {
			s.log.WithError(err).WithFields(fields).Debug("cancelled ticket event without flight details")
		}
	}

	s.log.WithFields(fields).WithField("seats_available", res.SeatsAvailable).Info("ticket cancelled")
	s.publish(ctx, kafka.NewTicketEvent(kafka.EventTicketCancelled, res.Ticket, flight, res.SeatsAvailable, s.now()))
	return res, nil
}

// AuditSeats reports flights whose counter disagrees with their tickets. It
// never corrects the counter.
func (s *TicketService) AuditSeats(ctx context.Context) ([]domain.SeatDiscrepancy, error) {
	discrepancies, err := s.tickets.SeatDiscrepancies(ctx)
	if err != nil {
		return nil, fmt.Errorf("audit seats: %w", err)
	}
	for _, d := range discrepancies {
		s.log.WithFields(logrus.Fields{
			"flight_id":       d.FlightID,
			"flight_code":     d.FlightCode,
			"seats_total":     d.SeatsTotal,
			"seats_available": d.SeatsAvailable,
			"tickets":         d.TicketCount,
			"expected":        d.Expected(),
		}).Warn("seat counter out of step with tickets")
	}
	return discrepancies, nil
}

func (s *TicketService) invalidate(ctx context.Context) {
	if s.cache == nil {
		return
	}
	if err := s.cache.InvalidateFlights(ctx); err != nil {
		s.log.WithError(err).Warn("flight cache invalidation failed")
	}
}

// publish is best effort: the ledger change has already committed.
func (s *TicketService) publish(ctx context.Context, event kafka.TicketEvent) {
	if s.producer == nil {
		return
	}
	for _, topic := range []string{s.eventsTopic, s.notificationsTopic} {
		if topic == "" {
			continue
		}
		if err := s.producer.Publish(ctx, topic, event.TicketCode, event); err != nil {
			s.log.WithError(err).WithFields(logrus.Fields{"topic": topic, "ticket_code": event.TicketCode}).Warn("failed to publish ticket event")
		}
	}
}

var _ TicketUseCase = (*TicketService)(nil)
