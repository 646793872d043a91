// Package notify renders the transactional emails and sends them in the background.
package notify

import (
	"context"
	"fmt"
	"html"
	"sync"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/yourusername/coinvest-api/models"
	"github.com/yourusername/coinvest-api/utils"
)

const sendTimeout = 30 * time.Second

type Notifier struct {
	mailer utils.Mailer
	log    *logrus.Logger
	wg     sync.WaitGroup
}

func New(mailer utils.Mailer, log *logrus.Logger) *Notifier {
	return &Notifier{mailer: mailer, log: log}
}

// DepositSubmitted fans a new deposit out to every admin.
func (n *Notifier) DepositSubmitted(admins []string, user *models.Profile, d *models.Deposit) {
	body := fmt.Sprintf(
		"<p>%s submitted a deposit of <strong>%s %s</strong>.</p><p>Proof: <a href=\"%s\">view image</a></p><p>Deposit ID: %s</p>",
		html.EscapeString(user.Email),
		d.Amount.StringFixed(2),
		html.EscapeString(d.CryptoType),
		html.EscapeString(d.ProofImageURL),
		d.ID,
	)
	n.send(admins, "New deposit awaiting review", body)
}

func (n *Notifier) DepositReviewed(user *models.Profile, d *models.Deposit) {
	var subject, body string
	switch d.Status {
	case models.DepositStatusConfirmed:
		subject = "Your deposit has been confirmed"
		body = fmt.Sprintf("<p>Your deposit of <strong>%s %s</strong> was confirmed and your investment is now active.</p>",
			d.Amount.StringFixed(2), html.EscapeString(d.CryptoType))
	case models.DepositStatusRejected:
		subject = "Your deposit was rejected"
		body = fmt.Sprintf("<p>Your deposit of <strong>%s %s</strong> was rejected.</p><p>Reason: %s</p>",
			d.Amount.StringFixed(2), html.EscapeString(d.CryptoType), html.EscapeString(d.AdminNote))
	default:
		return
	}
	n.send([]string{user.Email}, subject, body)
}

func (n *Notifier) WithdrawalRequested(admins []string, user *models.Profile, w *models.Withdrawal) {
	body := fmt.Sprintf(
		"<p>%s requested a withdrawal of <strong>%s %s</strong> to <code>%s</code>.</p><p>Withdrawal ID: %s</p>",
		html.EscapeString(user.Email),
		w.Amount.StringFixed(2),
		html.EscapeString(w.CryptoType),
		html.EscapeString(w.WalletAddress),
		w.ID,
	)
	n.send(admins, "New withdrawal request", body)
}

func (n *Notifier) WithdrawalReviewed(user *models.Profile, w *models.Withdrawal) {
	var subject, body string
	switch w.Status {
	case models.WithdrawalStatusApproved:
		subject = "Your withdrawal has been approved"
		body = fmt.Sprintf("<p>Your withdrawal of <strong>%s %s</strong> to <code>%s</code> was approved.</p>",
			w.Amount.StringFixed(2), html.EscapeString(w.CryptoType), html.EscapeString(w.WalletAddress))
	case models.WithdrawalStatusRejected:
		subject = "Your withdrawal was rejected"
		body = fmt.Sprintf("<p>Your withdrawal of <strong>%s %s</strong> was rejected.</p><p>Reason: %s</p>",
			w.Amount.StringFixed(2), html.EscapeString(w.CryptoType), html.EscapeString(w.AdminNote))
	case models.WithdrawalStatusCompleted:
		subject = "Your withdrawal has been sent"
		body = fmt.Sprintf("<p>Your withdrawal of <strong>%s %s</strong> was sent.</p><p>Transaction: <code>%s</code></p>",
			w.Amount.StringFixed(2), html.EscapeString(w.CryptoType), html.EscapeString(w.TxHash))
	default:
		return
	}
	n.send([]string{user.Email}, subject, body)
}

func (n *Notifier) PasswordReset(user *models.Profile, token string, ttl time.Duration) {
	body := fmt.Sprintf(
		"<p>Use the code below to reset your password. It expires in %d minutes.</p><p><code>%s</code></p>",
		int(ttl.Minutes()),
		html.EscapeString(token),
	)
	n.send([]string{user.Email}, "Reset your password", body)
}

// Wait blocks until every queued email has been handed to the mailer.
func (n *Notifier) Wait() {
	n.wg.Wait()
}

func (n *Notifier) send(to []string, subject, body string) {
	if len(to) == 0 {
		return
	}
	n.wg.Add(1)
	go func() {
		defer n.wg.Done()
		ctx, cancel := context.WithTimeout(context.Background(), sendTimeout)
		defer cancel()

		if err := n.mailer.Send(ctx, to, subject, body); err != nil {
			n.log.WithError(err).WithFields(logrus.Fields{
				"subject":    subject,
				"recipients": len(to),
			}).Error("failed to send email")
		}
	}()
}
