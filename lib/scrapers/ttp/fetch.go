package ttp

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
)

type ResultKind int

const (
	// 200 with at least one slot record
	ResultOk ResultKind = iota
	// 200 with no slot records
	ResultEmpty
	// 403, the session cookie is no longer honored
	ResultAuthExpired
	// any other status, after transport-level retries ran out
	ResultUpstreamError
	// the request never produced a response
	ResultTransportError
)

func (k ResultKind) String() string {
	switch k {
	case ResultOk:
		return "ok"
	case ResultEmpty:
		return "empty"
	case ResultAuthExpired:
		return "auth_expired"
	case ResultUpstreamError:
		return "upstream_error"
	case ResultTransportError:
		return "transport_error"
	}
	return "unknown"
}

type SlotRequest struct {
	LocationID string
	DateStart  time.Time
	DateEnd    time.Time
}

// FetchResult is the classified outcome of one slot availability request.
// Callers switch on Kind instead of inspecting raw HTTP state.
type FetchResult struct {
	Kind  ResultKind
	Slots []RawSlot
	// http status, set for AuthExpired and UpstreamError
	Status int
	// response body snippet, set for UpstreamError
	Body string
	// transport cause, set for TransportError
	Err error
}

const bodySnippetLen = 512

func bodySnippet(body string) string {
	if len(body) > bodySnippetLen {
		return body[:bodySnippetLen]
	}
	return body
}

// FetchSlots requests availability for a single location. Transient upstream
// failures (429/5xx) are retried by the transport; a 403 is reported as
// ResultAuthExpired so the caller can refresh the session and retry once.
func (c *Client) FetchSlots(ctx context.Context, req SlotRequest) FetchResult {
	ctx, span := tracer.Start(ctx, "FetchSlots")
	defer span.End()

	locationId := strings.TrimSpace(req.LocationID)
	span.SetAttributes(
		attribute.String("location_id", locationId),
		attribute.String("shape", string(c.shape)),
	)

	r := c.http.R().SetContext(ctx)

	var res *resty.Response
	var err error
	switch c.shape {
	case ShapePath:
		res, err = r.Get(fmt.Sprintf(
			"/slots/%s/%s/%s",
			url.PathEscape(locationId),
			req.DateStart.Format(DateLayout),
			req.DateEnd.Format(DateLayout),
		))
	default:
		res, err = r.
			SetQueryParams(map[string]string{
				"orderBy":    "soonest",
				"limit":      "100",
				"locationId": locationId,
				"minimum":    req.DateStart.Format(DateLayout),
				"maximum":    req.DateEnd.Format(DateLayout),
			}).
			Get("/slots")
	}
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "transport failure")
		return FetchResult{Kind: ResultTransportError, Err: err}
	}

	span.SetAttributes(attribute.Int("status", res.StatusCode()))

	switch {
	case res.StatusCode() == 403:
		c.valid = false
		return FetchResult{Kind: ResultAuthExpired, Status: 403}
	case res.StatusCode() != 200:
		return FetchResult{
			Kind:   ResultUpstreamError,
			Status: res.StatusCode(),
			Body:   bodySnippet(res.String()),
		}
	}

	var slots []RawSlot
	err = json.Unmarshal(res.Body(), &slots)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "unexpected response body")
		return FetchResult{
			Kind:   ResultUpstreamError,
			Status: res.StatusCode(),
			Body:   bodySnippet(res.String()),
			Err:    err,
		}
	}

	if len(slots) == 0 {
		return FetchResult{Kind: ResultEmpty}
	}
	return FetchResult{Kind: ResultOk, Slots: slots}
}
