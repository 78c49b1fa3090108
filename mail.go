package main

import (
	"fmt"
	"strings"

	gomail "gopkg.in/gomail.v2"
)

// Notifier mails the operator about failed claims. A nil Notifier sends nothing.
type Notifier struct {
	settings mailinfo
	send     func(m ...*gomail.Message) error
}

// NewNotifier returns nil when mail settings are incomplete
func NewNotifier(settings mailinfo) *Notifier {
	if !settings.isValid() {
		return nil
	}

	mailer := gomail.NewDialer(
		settings.SMTPServer,
		settings.Port,
		settings.SMTPUsername,
		settings.SMTPUserpassword)

	return &Notifier{settings: settings, send: mailer.DialAndSend}
}

func (n *Notifier) message(subject, msg string) *gomail.Message {
	m := gomail.NewMessage()
	m.SetHeader("From", n.settings.SMTPUsername)
	m.SetHeader("To", n.settings.EmailRecipient)
	m.SetHeader("Subject", strings.TrimSpace(fmt.Sprintf("%s %s", n.settings.EmailSubjectTag, subject)))
	m.SetBody("text/plain", msg)
	return m
}

func (n *Notifier) sendMail(subject, msg string) (err error) {
	if n == nil || msg == "" {
		return nil
	}

	err = n.send(n.message(subject, msg))
	if err != nil {
		errlog.Error().Err(err).Str("subject", subject).Msg("can't send mail")
	}

	return
}

// ClaimFailed reports a request that ended with an error
func (n *Notifier) ClaimFailed(target ClaimTarget, cause error) error {
	msg := fmt.Sprintf("email: %s\nserver: %d\nitem: %s\n\n%v", target.Email, target.Server, target.ItemID, cause)

	var claimErr *ClaimError
	if asClaimError(cause, &claimErr) && claimErr.Body != "" {
		msg = msg + "\n\nanswer:\n" + claimErr.Body
	}

	return n.sendMail("Claim failed", msg)
}

// Stopped reports the service going down
func (n *Notifier) Stopped(reason string) error {
	return n.sendMail("Service stopped", reason)
}
