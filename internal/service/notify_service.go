package service

import (
	"fmt"
	"log"
	"os"
	"strings"

	"github.com/sendgrid/sendgrid-go"
	"github.com/sendgrid/sendgrid-go/helpers/mail"
	"github.com/twilio/twilio-go"
	openapi "github.com/twilio/twilio-go/rest/api/v2010"

	"floorcrm/internal/entities"
)

// SendEmailWithSendGrid delivers a single transactional email. Credentials
// come from the environment; a missing key is reported, not fatal.
func SendEmailWithSendGrid(toEmail, toName, subject, plainTextBody string) error {
	apiKey := os.Getenv("SENDGRID_API_KEY")
	if apiKey == "" {
		log.Println("WARNING: SENDGRID_API_KEY not configured, email will not be sent")
		return fmt.Errorf("SENDGRID_API_KEY not configured")
	}

	fromEmail := os.Getenv("SENDGRID_FROM_EMAIL")
	if fromEmail == "" {
		log.Println("WARNING: SENDGRID_FROM_EMAIL not configured, email will not be sent")
		return fmt.Errorf("SENDGRID_FROM_EMAIL not configured")
	}

	fromName := os.Getenv("SENDGRID_FROM_NAME")
	if fromName == "" {
		fromName = "Summit Flooring"
	}

	from := mail.NewEmail(fromName, fromEmail)
	to := mail.NewEmail(toName, toEmail)
	message := mail.NewSingleEmail(from, subject, to, plainTextBody, "")

	client := sendgrid.NewSendClient(apiKey)
	response, err := client.Send(message)
	if err != nil {
		log.Printf("Error sending email to %s via SendGrid: %v", toEmail, err)
		return fmt.Errorf("failed to send email via SendGrid: %w", err)
	}
	if response.StatusCode >= 200 && response.StatusCode < 300 {
		return nil
	}

	log.Printf("SendGrid returned status %d sending to %s: %s", response.StatusCode, toEmail, response.Body)
	return fmt.Errorf("SendGrid returned non-success status %d", response.StatusCode)
}

// SendSMS delivers a single SMS via Twilio.
func SendSMS(toNumber, messageBody string) error {
	accountSid := os.Getenv("TWILIO_ACCOUNT_SID")
	authToken := os.Getenv("TWILIO_AUTH_TOKEN")
	fromNumber := os.Getenv("TWILIO_FROM_NUMBER")

	if accountSid == "" || authToken == "" || fromNumber == "" {
		log.Println("WARNING: Twilio credentials not fully configured, SMS will not be sent")
		return fmt.Errorf("twilio credentials not fully configured")
	}
	if !strings.HasPrefix(toNumber, "+") {
		log.Printf("WARNING: destination number %q is not E.164, the SMS may fail", toNumber)
	}

	client := twilio.NewRestClientWithParams(twilio.ClientParams{
		Username: accountSid,
		Password: authToken,
	})

	params := &openapi.CreateMessageParams{}
	params.SetTo(toNumber)
	params.SetFrom(fromNumber)
	params.SetBody(messageBody)

	if _, err := client.Api.CreateMessage(params); err != nil {
		log.Printf("Error sending SMS to %s via Twilio: %v", toNumber, err)
		return fmt.Errorf("failed to send SMS: %w", err)
	}
	return nil
}

// NotifierService sends fire-and-forget assignment notifications to the
// assigned rep. Delivery failures are logged and never fail the booking.
type NotifierService struct {
}

func NewNotifierService() *NotifierService {
	return &NotifierService{}
}

func (s *NotifierService) SendAssignmentEmail(n entities.AppointmentNotification) {
	subject := fmt.Sprintf("New appointment assigned - %s at %s", n.Date.Format("Mon Jan 2"), n.Time)
	body := fmt.Sprintf(
		"Hi %s,\n\nYou have been assigned a new %s appointment.\n\n"+
			"Date: %s\n"+
			"Time: %s (%d minutes)\n"+
			"Customer #: %d\n\n"+
			"Please review your schedule in the admin portal.",
		n.RepName, n.Type, n.Date.Format("Monday, January 2, 2006"), n.Time, n.Duration, n.CustomerID,
	)

	go func(toEmail, toName, subject, body string) {
		if err := SendEmailWithSendGrid(toEmail, toName, subject, body); err != nil {
			log.Printf("WARNING (async): assignment email to %s failed: %v", toEmail, err)
		}
	}(n.RepEmail, n.RepName, subject, body)
}

func (s *NotifierService) SendAssignmentSMS(n entities.AppointmentNotification) {
	message := fmt.Sprintf("New appointment: %s %s (%d min). Details in your email.",
		n.Date.Format("01/02"), n.Time, n.Duration)

	go func(toNumber, message string) {
		if err := SendSMS(toNumber, message); err != nil {
			log.Printf("WARNING (async): assignment SMS to %s failed: %v", toNumber, err)
		}
	}(n.RepPhone, message)
}
