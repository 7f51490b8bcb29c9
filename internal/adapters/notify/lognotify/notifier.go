// Package lognotify es la superficie de notificación de modo dev: solo
// escribe en el log. Útil cuando no hay pasarela push configurada.
package lognotify

import (
	"med-reminder/internal/platform/logger"
	"med-reminder/internal/ports/notify"
)

type Notifier struct {
	log logger.Logger
}

func New(log logger.Logger) *Notifier {
	if log == nil {
		log = logger.New(logger.Options{})
	}
	return &Notifier{log: log}
}

func (n *Notifier) Post(id string, note notify.Notification) error {
	n.log.Info("notification", map[string]any{
		"id":       id,
		"title":    note.Title,
		"subtitle": note.Subtitle,
		"body":     note.Body,
		"actions":  len(note.Actions),
	})
	return nil
}

func (n *Notifier) Withdraw(id string) error {
	n.log.Info("notification withdrawn", map[string]any{"id": id})
	return nil
}
