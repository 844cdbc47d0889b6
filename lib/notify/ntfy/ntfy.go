// Package ntfy publishes push notifications through an ntfy topic.
package ntfy

import (
	"context"
	"fmt"
	"time"
	"ttpwatch/lib/telemetry"
	"ttpwatch/lib/util/restyutil"

	"github.com/go-resty/resty/v2"
	"go.opentelemetry.io/otel/codes"
)

var tracer = telemetry.Tracer("notify/ntfy")

const DefaultServer = "https://ntfy.sh"

type Options struct {
	// ntfy server origin, defaults to DefaultServer
	Server string
	Topic  string
	// optional request/response dump sink for debugging
	Debug restyutil.InstrumentOutput
}

type Client struct {
	http  *resty.Client
	topic string
}

func NewClient(opts Options) *Client {
	if opts.Server == "" {
		opts.Server = DefaultServer
	}

	client := resty.New()
	client.SetBaseURL(opts.Server)
	client.SetTimeout(time.Second * 30)

	telemetry.InstrumentResty(client, "notify/ntfy/http")
	restyutil.InstrumentClient(client, opts.Debug)

	return &Client{http: client, topic: opts.Topic}
}

func (c *Client) Send(ctx context.Context, title, message string) error {
	ctx, span := tracer.Start(ctx, "Send")
	defer span.End()

	res, err := c.http.R().
		SetContext(ctx).
		SetHeader("Title", title).
		SetHeader("Priority", "urgent").
		SetHeader("Tags", "calendar").
		SetBody(message).
		Post("/" + c.topic)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "publish failed")
		return err
	}
	if res.StatusCode() != 200 {
		err := fmt.Errorf("ntfy returned status %d", res.StatusCode())
		span.RecordError(err)
		span.SetStatus(codes.Error, "publish rejected")
		return err
	}

	return nil
}
