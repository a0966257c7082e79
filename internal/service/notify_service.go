package service

import (
	"fmt"
	"strings"

	"github.com/sendgrid/sendgrid-go"
	"github.com/sendgrid/sendgrid-go/helpers/mail"
	"github.com/twilio/twilio-go"
	openapi "github.com/twilio/twilio-go/rest/api/v2010"
	"go.uber.org/zap"
)

type EmailSender interface {
	SendEmail(toEmail, toName, subject, plainText, html string) error
}

type SMSSender interface {
	SendSMS(toNumber, body string) error
}

type SendGridSender struct {
	client    *sendgrid.Client
	fromEmail string
	fromName  string
	logger    *zap.Logger
}

// NewSendGridSender returns nil when the API key or sender address is missing.
func NewSendGridSender(apiKey, fromEmail, fromName string, logger *zap.Logger) *SendGridSender {
	if apiKey == "" || fromEmail == "" {
		logger.Warn("SendGrid not configured, e-mail notifications disabled")
		return nil
	}
	if fromName == "" {
		fromName = "Appointments"
	}
	return &SendGridSender{
		client:    sendgrid.NewSendClient(apiKey),
		fromEmail: fromEmail,
		fromName:  fromName,
		logger:    logger,
	}
}

func (s *SendGridSender) SendEmail(toEmail, toName, subject, plainText, html string) error {
	from := mail.NewEmail(s.fromName, s.fromEmail)
	to := mail.NewEmail(toName, toEmail)
	message := mail.NewSingleEmail(from, subject, to, plainText, html)

	response, err := s.client.Send(message)
	if err != nil {
		return fmt.Errorf("sendgrid send to %s: %w", toEmail, err)
	}
	if response.StatusCode < 200 || response.StatusCode >= 300 {
		return fmt.Errorf("sendgrid returned status %d: %s", response.StatusCode, response.Body)
	}
	s.logger.Debug("email sent", zap.String("to", toEmail), zap.String("subject", subject), zap.Int("status", response.StatusCode))
	return nil
}

type TwilioSender struct {
	client     *twilio.RestClient
	fromNumber string
	logger     *zap.Logger
}

// NewTwilioSender returns nil unless SID, token and sender number are all set.
func NewTwilioSender(accountSID, authToken, fromNumber string, logger *zap.Logger) *TwilioSender {
	if accountSID == "" || authToken == "" || fromNumber == "" {
		logger.Warn("Twilio not configured, SMS notifications disabled")
		return nil
	}
	return &TwilioSender{
		client: twilio.NewRestClientWithParams(twilio.ClientParams{
			Username:   accountSID,
			Password:   authToken,
			AccountSid: accountSID,
		}),
		fromNumber: fromNumber,
		logger:     logger,
	}
}

func (s *TwilioSender) SendSMS(toNumber, body string) error {
	if !strings.HasPrefix(toNumber, "+") {
		s.logger.Warn("destination number is not in E.164 format, SMS may fail", zap.String("to", toNumber))
	}

	params := &openapi.CreateMessageParams{}
	params.SetTo(toNumber)
	params.SetFrom(s.fromNumber)
	params.SetBody(body)

	resp, err := s.client.Api.CreateMessage(params)
	if err != nil {
		return fmt.Errorf("twilio send to %s: %w", toNumber, err)
	}
	if resp != nil && resp.Sid != nil {
		s.logger.Debug("sms sent", zap.String("to", toNumber), zap.String("sid", *resp.Sid))
	}
	return nil
}
