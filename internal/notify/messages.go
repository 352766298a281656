package notify

import "fmt"

// BookingConfirmation builds the confirmation email for a new booking.
// date is "YYYY-MM-DD" and start is "HH:MM" in the business timezone.
func BookingConfirmation(clientName, clientEmail, serviceName, date, start string) EmailMessage {
	greeting := "Hi"
	if clientName != "" {
		greeting = "Hi " + clientName
	}
	return EmailMessage{
		To:      clientEmail,
		ToName:  clientName,
		Subject: fmt.Sprintf("Booking confirmed: %s on %s", serviceName, date),
		Body: fmt.Sprintf(
			"%s,\n\nYour booking is confirmed.\n\nService: %s\nDate: %s\nTime: %s\n\nSee you then!\n",
			greeting, serviceName, date, start),
	}
}

// BookingCancellation builds the email sent when a booking is cancelled.
func BookingCancellation(clientName, clientEmail, serviceName, date, start string) EmailMessage {
	greeting := "Hi"
	if clientName != "" {
		greeting = "Hi " + clientName
	}
	return EmailMessage{
		To:      clientEmail,
		ToName:  clientName,
		Subject: fmt.Sprintf("Booking cancelled: %s on %s", serviceName, date),
		Body: fmt.Sprintf(
			"%s,\n\nYour booking for %s on %s at %s has been cancelled.\n\nIf this was a mistake, please book again or get in touch.\n",
			greeting, serviceName, date, start),
	}
}
