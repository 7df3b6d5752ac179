package alert

import (
	"fmt"
	"net/smtp"
	"strings"
	"time"

	"github.com/unibalancer/paca-keeper-go/model"
	"go.uber.org/zap"
)

const emailFooter = "\n\nYour servant in crypto,\n\nPaca.finance Manager"

// Email batches messages through a quiet-period Batcher and sends them as a
// single report per batch.
type Email struct {
	config   model.EmailConfig
	password string
	batcher  *Batcher
	log      *zap.Logger
}

func NewEmail(config model.EmailConfig, password string, quiet time.Duration, log *zap.Logger) *Email {
	email := &Email{
		config:   config,
		password: password,
		log:      log,
	}
	email.batcher = NewBatcher(quiet, email.send)

	return email
}

func (e *Email) Notify(message string) {
	stamped := time.Now().Format("Jan 2, 2006, 3:04:05 PM") + ": " + message
	e.batcher.Push(stamped)
}

// Close flushes and sends anything still buffered.
func (e *Email) Close() {
	e.batcher.Close()
}

func (e *Email) send(batch []string) {
	subject := fmt.Sprintf("paca.finance report %s.", time.Now().Format("Jan 2, 2006, 3:04:05 PM"))
	body := strings.Join(batch, "\n") + emailFooter

	message := fmt.Sprintf("From: %s\r\nTo: %s\r\nSubject: %s\r\n\r\n%s\r\n",
		e.config.From, e.config.To, subject, body)

	addr := fmt.Sprintf("%s:%d", e.config.Host, e.config.Port)
	auth := smtp.PlainAuth("", e.config.User, e.password, e.config.Host)

	if err := smtp.SendMail(addr, auth, e.config.From, []string{e.config.To}, []byte(message)); err != nil {
		e.log.Warn("cannot send e-mail report", zap.String("to", e.config.To), zap.Error(err))
		return
	}

	e.log.Info("e-mail report sent", zap.String("to", e.config.To), zap.Int("messages", len(batch)))
}
