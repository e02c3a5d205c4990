package smsgateway

import (
	"context"
	"fmt"

	"assignment_notifier_bot/internal/domain/delivery"

	"github.com/sirupsen/logrus"
	"gopkg.in/gomail.v2"
)

// Carrier gateways clip long messages; stay well under their limits.
const maxMessageLength = 1000

// Channel implements the delivery.Channel interface over an email-to-SMS
// carrier gateway. Destinations look like <number>@<carrier-gateway-domain>.
type Channel struct {
	dialer *gomail.Dialer
	sender string
	logger *logrus.Entry
}

var _ delivery.Channel = (*Channel)(nil)

func NewChannel(host string, port int, sender, password string, logger *logrus.Entry) *Channel {
	return &Channel{
		dialer: gomail.NewDialer(host, port, sender, password),
		sender: sender,
		logger: logger,
	}
}

func (ch *Channel) Send(ctx context.Context, destination, text string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	m := gomail.NewMessage()
	m.SetHeader("From", ch.sender)
	m.SetHeader("To", destination)
	// No subject: gateways render it inline and garble the message.
	m.SetBody("text/plain", text)

	if err := ch.dialer.DialAndSend(m); err != nil {
		return fmt.Errorf("send sms email to %s: %w", destination, err)
	}
	ch.logger.WithField("destination", destination).Debug("SMS email sent")
	return nil
}

func (ch *Channel) MaxMessageLength() int {
	return maxMessageLength
}
