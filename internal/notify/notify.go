package notify

import (
	"context"
	"fmt"
	"net/smtp"
	"strings"
	"time"

	"github.com/sreshtalluri/polyratings-data-collection/internal/publisher"
	"github.com/sreshtalluri/polyratings-data-collection/lib/telemetry"

	"github.com/jordan-wright/email"
	"go.opentelemetry.io/otel/codes"
)

var tracer = telemetry.Tracer("notify")

type SmtpConfig struct {
	Server       string `json:"server"`
	Port         int    `json:"port"`
	EmailAddress string `json:"email_address"`
	Password     string `json:"password"`
	// recipients of failure reports
	To []string `json:"to"`
}

type Notifier struct {
	config SmtpConfig
	send   func(mail *email.Email, addr string, auth smtp.Auth) error
}

func NewNotifier(config SmtpConfig) Notifier {
	return Notifier{
		config: config,
		send: func(mail *email.Email, addr string, auth smtp.Auth) error {
			return mail.Send(addr, auth)
		},
	}
}

// RunFailed emails a failure report for a publish attempt.
func (n Notifier) RunFailed(ctx context.Context, result publisher.Result, runErr error) error {
	_, span := tracer.Start(ctx, "RunFailed")
	defer span.End()

	mail := email.NewEmail()
	mail.From = fmt.Sprintf("polytrack <%s>", n.config.EmailAddress)
	mail.To = n.config.To
	mail.Subject = "polytrack: collection run failed"
	mail.Text = []byte(failureReport(result, runErr))

	addr := fmt.Sprintf("%s:%d", n.config.Server, n.config.Port)
	err := n.send(mail, addr, smtp.PlainAuth("", n.config.EmailAddress, n.config.Password, n.config.Server))
	if err != nil && strings.Contains(err.Error(), "server doesn't support AUTH") {
		err = n.send(mail, addr, nil)
	}
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to send email")
		return err
	}

	return nil
}

func failureReport(result publisher.Result, runErr error) string {
	var b strings.Builder
	fmt.Fprintf(&b, "A scheduled collection run failed.\n\n")
	fmt.Fprintf(&b, "state: %s\n", result.State)
	if result.Tag != "" {
		fmt.Fprintf(&b, "tag: %s\n", result.Tag)
	}
	if !result.StartedAt.IsZero() {
		fmt.Fprintf(&b, "started: %s\n", result.StartedAt.Format(time.RFC3339))
		fmt.Fprintf(&b, "finished: %s\n", result.FinishedAt.Format(time.RFC3339))
	}
	fmt.Fprintf(&b, "error: %v\n", runErr)

	if len(result.Datasets) > 0 {
		fmt.Fprintf(&b, "\nstaged datasets:\n")
		for _, d := range result.Datasets {
			fmt.Fprintf(&b, "  %s: %d rows (%s)\n", d.Name, d.Rows, d.TrackingFile)
		}
	}
	return b.String()
}
