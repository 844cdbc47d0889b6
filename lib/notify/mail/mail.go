// Package mail delivers notifications over SMTP for setups where push
// notifications are not an option.
package mail

import (
	"context"
	"fmt"
	"net/smtp"
	"strings"
	"ttpwatch/lib/telemetry"

	"github.com/jordan-wright/email"
	"go.opentelemetry.io/otel/codes"
)

var tracer = telemetry.Tracer("notify/mail")

type Options struct {
	Server       string
	Port         int
	EmailAddress string
	Password     string
	To           []string
}

type Notifier struct {
	config Options
}

func NewNotifier(opts Options) Notifier {
	return Notifier{config: opts}
}

func (n Notifier) Send(ctx context.Context, title, message string) error {
	_, span := tracer.Start(ctx, "Send")
	defer span.End()

	mail := email.NewEmail()
	mail.From = fmt.Sprintf("TTP Watch <%s>", n.config.EmailAddress)
	mail.To = n.config.To
	mail.Subject = title
	mail.Text = []byte(message)

	addr := fmt.Sprintf("%s:%d", n.config.Server, n.config.Port)
	err := mail.Send(
		addr,
		smtp.PlainAuth("", n.config.EmailAddress, n.config.Password, n.config.Server),
	)
	if err != nil && strings.Contains(err.Error(), "server doesn't support AUTH") {
		err = mail.Send(addr, nil)
	}
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to send email")
		return err
	}

	return nil
}
