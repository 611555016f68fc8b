package notify

import (
	"context"
	"fmt"
	"strings"

	"github.com/go-resty/resty/v2"
	"github.com/pkg/errors"
)

var _ Notifier = (*Discord)(nil)

const embedColor = 0xFF57CF

// Discord posts the digest through a webhook. The webhook URL may carry a
// query string from the channel settings page; it is stripped before use.
type Discord struct {
	rc  *resty.Client
	url string
}

func NewDiscord(webhookURL string) *Discord {
	return &Discord{rc: resty.New(), url: cleanWebhookURL(webhookURL)}
}

type embed struct {
	Description string `json:"description"`
	Color       int    `json:"color"`
}

type message struct {
	Embeds []embed `json:"embeds"`
}

type messageResponse struct {
	ID string `json:"id"`
}

func (d *Discord) Post(ctx context.Context, body string) (string, error) {
	var res messageResponse
	resp, err := d.rc.R().
		SetContext(ctx).
		SetQueryParam("wait", "true").
		SetBody(payload(body)).
		SetResult(&res).
		Post(d.url)
	if err != nil {
		return "", errors.Wrap(err, "error posting message")
	}
	if resp.IsError() {
		return "", errors.New(fmt.Sprintf("error posting message: %s", resp.Status()))
	}
	return res.ID, nil
}

func (d *Discord) Edit(ctx context.Context, messageID, body string) error {
	resp, err := d.rc.R().
		SetContext(ctx).
		SetBody(payload(body)).
		Patch(d.url + "/messages/" + messageID)
	if err != nil {
		return errors.Wrap(err, "error editing message")
	}
	if resp.IsError() {
		return errors.New(fmt.Sprintf("error editing message: %s", resp.Status()))
	}
	return nil
}

func payload(body string) message {
	return message{Embeds: []embed{{Description: body, Color: embedColor}}}
}

func cleanWebhookURL(raw string) string {
	raw = strings.TrimSpace(raw)
	if i := strings.IndexByte(raw, '?'); i >= 0 {
		raw = raw[:i]
	}
	return raw
}
