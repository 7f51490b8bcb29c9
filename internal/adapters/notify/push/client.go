// Package push entrega las notificaciones a una pasarela externa (la
// superficie de notificación es un colaborador, no parte del core).
// Contrato mínimo: POST /notifications/{id} publica o refresca,
// DELETE /notifications/{id} retira.
package push

import (
	"context"
	"errors"
	"net/http"
	"net/url"
	"strings"
	"time"

	"med-reminder/internal/platform/httpclient"
	"med-reminder/internal/ports/notify"
)

var (
	ErrPushNotConfigured = errors.New("push gateway not configured")
)

type Config struct {
	BaseURL string
	Token   string

	// Opcional: header donde viaja el token. Vacío => "Authorization".
	TokenHeader string
	Timeout     time.Duration
}

type Notifier struct {
	client      *httpclient.Client
	token       string
	tokenHeader string
}

func New(cfg Config) (*Notifier, error) {
	if strings.TrimSpace(cfg.BaseURL) == "" {
		return nil, ErrPushNotConfigured
	}
	client, err := httpclient.NewWithBaseURL(cfg.BaseURL, cfg.Timeout)
	if err != nil {
		return nil, err
	}

	h := strings.TrimSpace(cfg.TokenHeader)
	if h == "" {
		h = "Authorization"
	}
	return &Notifier{
		client:      client,
		token:       strings.TrimSpace(cfg.Token),
		tokenHeader: h,
	}, nil
}

type actionBody struct {
	Key   string `json:"key"`
	Label string `json:"label"`
}

type notificationBody struct {
	Title    string       `json:"title"`
	Subtitle string       `json:"subtitle,omitempty"`
	Body     string       `json:"body"`
	Actions  []actionBody `json:"actions,omitempty"`
}

func (n *Notifier) Post(id string, note notify.Notification) error {
	if n == nil || n.client == nil {
		return ErrPushNotConfigured
	}

	body := notificationBody{
		Title:    note.Title,
		Subtitle: note.Subtitle,
		Body:     note.Body,
	}
	for _, a := range note.Actions {
		body.Actions = append(body.Actions, actionBody{Key: a.Key, Label: a.Label})
	}

	ctx, cancel := context.WithTimeout(context.Background(), httpclient.DefaultTimeout)
	defer cancel()

	return n.client.DoJSON(ctx, http.MethodPost, "/notifications/"+url.PathEscape(id), n.headers(), body, nil)
}

func (n *Notifier) Withdraw(id string) error {
	if n == nil || n.client == nil {
		return ErrPushNotConfigured
	}

	ctx, cancel := context.WithTimeout(context.Background(), httpclient.DefaultTimeout)
	defer cancel()

	err := n.client.DoJSON(ctx, http.MethodDelete, "/notifications/"+url.PathEscape(id), n.headers(), nil, nil)

	// retirar una notificación que ya no existe es un no-op
	var httpErr *httpclient.HTTPError
	if errors.As(err, &httpErr) && httpErr.StatusCode == http.StatusNotFound {
		return nil
	}
	return err
}

func (n *Notifier) headers() map[string]string {
	if n.token == "" {
		return nil
	}
	v := n.token
	if strings.EqualFold(n.tokenHeader, "Authorization") {
		v = "Bearer " + n.token
	}
	return map[string]string{n.tokenHeader: v}
}
