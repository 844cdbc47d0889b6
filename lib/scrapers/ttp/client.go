package ttp

import (
	"context"
	"fmt"
	"net/http/cookiejar"
	"time"
	"ttpwatch/lib/telemetry"
	"ttpwatch/lib/util/restyutil"

	cloudflarebp "github.com/DaRealFreak/cloudflare-bp-go"
	"github.com/go-resty/resty/v2"
	"go.opentelemetry.io/otel/codes"
)

var tracer = telemetry.Tracer("scrapers/ttp")

const (
	DefaultBaseURL = "https://ttp.cbp.dhs.gov/schedulerapi"
	DefaultHomeURL = "https://ttp.cbp.dhs.gov"
)

// RequestShape selects which revision of the slot availability endpoint
// to talk to. The upstream has shipped both; they are not interchangeable.
type RequestShape string

const (
	// date bounds passed as minimum/maximum query params, with a limit
	ShapeQuery RequestShape = "query"
	// date bounds embedded in the request path, no limit param
	ShapePath RequestShape = "path"
)

type ClientOptions struct {
	// scheduler API root, defaults to DefaultBaseURL
	BaseURL string
	// scheduler UI origin used for the session warm-up, defaults to DefaultHomeURL
	HomeURL string
	Shape   RequestShape
	// per-request timeout, defaults to 30s
	Timeout time.Duration
	// optional request/response dump sink for debugging
	Debug restyutil.InstrumentOutput
}

// Client owns the session against the scheduler. The upstream sits behind
// an anti-automation layer that requires a session cookie acquired from the
// UI landing page before it honors data queries, so the cookie jar and its
// validity flag live here and nowhere else.
//
// Client is not safe for concurrent use; the poll loop drives it from a
// single goroutine.
type Client struct {
	http    *resty.Client
	homeUrl string
	shape   RequestShape
	valid   bool
}

func NewClient(opts ClientOptions) (*Client, error) {
	if opts.BaseURL == "" {
		opts.BaseURL = DefaultBaseURL
	}
	if opts.HomeURL == "" {
		opts.HomeURL = DefaultHomeURL
	}
	if opts.Shape == "" {
		opts.Shape = ShapeQuery
	}
	if opts.Timeout == 0 {
		opts.Timeout = time.Second * 30
	}

	client := resty.New()
	client.SetBaseURL(opts.BaseURL)
	jar, err := cookiejar.New(nil)
	if err != nil {
		return nil, err
	}
	client.SetCookieJar(jar)
	client.GetClient().Transport = cloudflarebp.AddCloudFlareByPass(client.GetClient().Transport)

	client.SetHeader("user-agent", "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/123.0.0.0 Safari/537.36")
	client.SetHeader("accept", "application/json, text/plain, */*")
	client.SetHeader("accept-language", "en-US,en;q=0.9")
	client.SetHeader("cache-control", "no-cache")
	client.SetTimeout(opts.Timeout)

	// 3 attempts total with exponential backoff for transient upstream
	// failures. 403 is deliberately not retried here: it means the session
	// expired and wants a warm-up, not a blind replay.
	client.SetRetryCount(2)
	client.SetRetryWaitTime(time.Second)
	client.SetRetryMaxWaitTime(time.Second * 4)
	client.AddRetryCondition(func(res *resty.Response, err error) bool {
		if err != nil {
			return false
		}
		switch res.StatusCode() {
		case 429, 500, 502, 503, 504:
			return true
		}
		return false
	})

	telemetry.InstrumentResty(client, "scrapers/ttp/http")
	restyutil.InstrumentClient(client, opts.Debug)

	return &Client{
		http:    client,
		homeUrl: opts.HomeURL,
		shape:   opts.Shape,
	}, nil
}

// SessionValid reports whether the last warm-up is still believed to be
// honored by the upstream. It flips false when a fetch comes back 403.
func (c *Client) SessionValid() bool {
	return c.valid
}

// RefreshSession performs the warm-up GET against the scheduler UI landing
// page. Its only purpose is cookie acquisition: a 200 response replaces the
// active session cookies, anything else leaves the previous jar untouched.
// Safe to call repeatedly.
func (c *Client) RefreshSession(ctx context.Context) error {
	ctx, span := tracer.Start(ctx, "RefreshSession")
	defer span.End()

	res, err := c.http.R().
		SetContext(ctx).
		SetQueryParams(map[string]string{
			"lang":      "en",
			"vo":        "true",
			"returnUrl": "ttpui/home",
			"service":   "up",
		}).
		Get(c.homeUrl + "/")
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "warm-up request failed")
		return err
	}
	if res.StatusCode() != 200 {
		err := fmt.Errorf("warm-up returned status %d", res.StatusCode())
		span.RecordError(err)
		span.SetStatus(codes.Error, "warm-up rejected")
		return err
	}

	c.valid = true
	return nil
}
