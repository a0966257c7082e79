package service

import (
	"bytes"
	"context"
	"embed"
	"fmt"
	"html/template"
	"sync"
	"time"

	"go.uber.org/zap"

	"turnero/internal/db"
	"turnero/internal/entities"
	"turnero/internal/utils"
)

type NotificationEvent string

const (
	EventConfirmed NotificationEvent = "confirmed"
	EventCancelled NotificationEvent = "cancelled"
	EventReminder  NotificationEvent = "reminder"
)

// Notifier delivers appointment notifications. Implementations log their
// own failures; callers never see them.
type Notifier interface {
	Notify(appt db.Appointment, event NotificationEvent)
}

func notify(n Notifier, appt db.Appointment, event NotificationEvent) {
	if n == nil {
		return
	}
	n.Notify(appt, event)
}

// AsyncNotifier delivers in the background so requests never wait on
// SendGrid or Twilio. Wait blocks until every pending delivery has finished.
type AsyncNotifier struct {
	next Notifier
	wg   sync.WaitGroup
}

func NewAsyncNotifier(next Notifier) *AsyncNotifier {
	return &AsyncNotifier{next: next}
}

func (a *AsyncNotifier) Notify(appt db.Appointment, event NotificationEvent) {
	a.wg.Add(1)
	go func() {
		defer a.wg.Done()
		a.next.Notify(appt, event)
	}()
}

// Wait returns ctx.Err() if deliveries are still running when ctx ends.
func (a *AsyncNotifier) Wait(ctx context.Context) error {
	done := make(chan struct{})
	go func() {
		a.wg.Wait()
		close(done)
	}()
	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

//go:embed templates/appointment_email.html
var templatesFS embed.FS

type SenderService struct {
	email        EmailSender
	sms          SMSSender
	logger       *zap.Logger
	loc          *time.Location
	businessName string
	tmpl         *template.Template
}

// NewSenderService builds a notifier. Either sender may be nil to disable
// that channel.
func NewSenderService(email EmailSender, sms SMSSender, logger *zap.Logger, loc *time.Location, businessName string) (*SenderService, error) {
	tmpl, err := template.ParseFS(templatesFS, "templates/appointment_email.html")
	if err != nil {
		return nil, fmt.Errorf("parse email template: %w", err)
	}
	if loc == nil {
		loc = time.UTC
	}
	return &SenderService{
		email:        email,
		sms:          sms,
		logger:       logger,
		loc:          loc,
		businessName: businessName,
		tmpl:         tmpl,
	}, nil
}

func (s *SenderService) Notify(appt db.Appointment, event NotificationEvent) {
	s.SendAppointmentEmail(appt, event)
	s.SendAppointmentSMS(appt, event)
}

func (s *SenderService) SendAppointmentEmail(appt db.Appointment, event NotificationEvent) {
	if s.email == nil || appt.Email == "" {
		return
	}
	data := s.emailData(appt, event)
	subject := fmt.Sprintf("%s - %s %s", data.Headline, data.DateFormatted, appt.Time)
	plain := fmt.Sprintf(
		"Hello %s,\n\n%s\n\nDate: %s\nTime: %s\nReference: %s\n\n%s",
		appt.Name, data.Body, data.DateFormatted, appt.Time, appt.ID, s.businessName,
	)

	var html bytes.Buffer
	if err := s.tmpl.Execute(&html, data); err != nil {
		s.logger.Error("render email template failed", zap.String("appointment_id", appt.ID), zap.Error(err))
		return
	}
	if err := s.email.SendEmail(appt.Email, appt.Name, subject, plain, html.String()); err != nil {
		s.logger.Error("send email failed",
			zap.String("appointment_id", appt.ID), zap.String("event", string(event)), zap.Error(err))
	}
}

func (s *SenderService) SendAppointmentSMS(appt db.Appointment, event NotificationEvent) {
	if s.sms == nil || appt.Phone == "" {
		return
	}
	var msg string
	switch event {
	case EventCancelled:
		msg = fmt.Sprintf("%s: your appointment on %s at %s has been cancelled.", s.businessName, s.formatDate(appt.Date), appt.Time)
	case EventReminder:
		msg = fmt.Sprintf("%s: reminder, you have an appointment tomorrow at %s.", s.businessName, appt.Time)
	default:
		msg = fmt.Sprintf("%s: your appointment on %s at %s is confirmed.", s.businessName, s.formatDate(appt.Date), appt.Time)
	}
	if err := s.sms.SendSMS(appt.Phone, msg); err != nil {
		s.logger.Error("send sms failed",
			zap.String("appointment_id", appt.ID), zap.String("event", string(event)), zap.Error(err))
	}
}

func (s *SenderService) emailData(appt db.Appointment, event NotificationEvent) entities.AppointmentEmailData {
	data := entities.AppointmentEmailData{
		BusinessName:  s.businessName,
		CustomerName:  appt.Name,
		AppointmentID: appt.ID,
		DateFormatted: s.formatDate(appt.Date),
		Time:          appt.Time,
		CurrentYear:   time.Now().In(s.loc).Year(),
	}
	switch event {
	case EventCancelled:
		data.Headline = "Appointment cancelled"
		data.Body = "Your appointment has been cancelled. You are welcome to book a new one at any time."
	case EventReminder:
		data.Headline = "Appointment reminder"
		data.Body = "This is a reminder of your appointment tomorrow."
	default:
		data.Headline = "Appointment confirmed"
		data.Body = "Your appointment has been booked successfully."
	}
	return data
}

func (s *SenderService) formatDate(date string) string {
	t, err := time.ParseInLocation(utils.DateLayout, date, s.loc)
	if err != nil {
		return date
	}
	return t.Format("Mon 02 Jan 2006")
}
