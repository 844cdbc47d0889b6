package slotwatch

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"
	"ttpwatch/lib/scrapers/ttp"
	"ttpwatch/lib/telemetry"
	"ttpwatch/lib/timezone"

	"go.opentelemetry.io/otel/attribute"
)

var tracer = telemetry.Tracer("services/slotwatch")

type Notifier interface {
	Send(ctx context.Context, title, message string) error
}

type Options struct {
	Client    *ttp.Client
	Notifiers []Notifier
	// nil falls back to DefaultDirectory
	Directory Directory

	LocationIDs []string
	// zero values default to today through +365 days
	DateStart time.Time
	DateEnd   time.Time
	// time between sweeps, defaults to 15 minutes
	Interval time.Duration

	Select            SelectMode
	IncludeRemote     bool
	ReportDisappeared bool

	// pause between locations within a sweep, defaults to 2s;
	// the upstream rate-limits aggressively
	LocationDelay time.Duration
	// pause after a failed sweep, defaults to 60s
	Cooldown time.Duration
}

type Service struct {
	client    *ttp.Client
	notifiers []Notifier
	detector  *Detector
	dir       Directory

	locations          []string
	dateStart, dateEnd time.Time
	interval           time.Duration
	locationDelay      time.Duration
	cooldown           time.Duration
	normOpts           NormalizeOptions

	statusMu sync.Mutex
	status   Status
}

func NewService(opts Options) (*Service, error) {
	var locations []string
	for _, id := range opts.LocationIDs {
		id = strings.TrimSpace(id)
		if id != "" {
			locations = append(locations, id)
		}
	}
	if len(locations) == 0 {
		return nil, fmt.Errorf("no location ids configured")
	}
	if opts.Client == nil {
		return nil, fmt.Errorf("no scheduler client configured")
	}

	if opts.Directory == nil {
		opts.Directory = DefaultDirectory()
	}
	if opts.DateStart.IsZero() {
		opts.DateStart = timezone.Now()
	}
	if opts.DateEnd.IsZero() {
		opts.DateEnd = opts.DateStart.AddDate(1, 0, 0)
	}
	if opts.Interval == 0 {
		opts.Interval = time.Minute * 15
	}
	if opts.Interval < time.Second {
		return nil, fmt.Errorf("check interval %s is below 1s", opts.Interval)
	}
	if opts.LocationDelay == 0 {
		opts.LocationDelay = time.Second * 2
	}
	if opts.Cooldown == 0 {
		opts.Cooldown = time.Minute
	}

	return &Service{
		client:        opts.Client,
		notifiers:     opts.Notifiers,
		detector:      NewDetector(DetectorOptions{ReportDisappeared: opts.ReportDisappeared}),
		dir:           opts.Directory,
		locations:     locations,
		dateStart:     opts.DateStart,
		dateEnd:       opts.DateEnd,
		interval:      opts.Interval,
		locationDelay: opts.LocationDelay,
		cooldown:      opts.Cooldown,
		normOpts: NormalizeOptions{
			Mode:          opts.Select,
			IncludeRemote: opts.IncludeRemote,
			Directory:     opts.Directory,
		},
		status: Status{StartedAt: timezone.Now()},
	}, nil
}

// sleepCtx waits for d unless ctx is cancelled first. Reports whether
// the full wait elapsed.
func sleepCtx(ctx context.Context, d time.Duration) bool {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-timer.C:
		return true
	}
}

// Sweep runs one cycle across all configured locations: warm up the
// session once, then fetch, normalize and change-detect each location in
// sequence. A failure at one location never aborts the rest.
func (s *Service) Sweep(ctx context.Context) Report {
	ctx, span := tracer.Start(ctx, "Sweep")
	defer span.End()

	report := Report{StartedAt: timezone.Now()}

	warmupErr := s.client.RefreshSession(ctx)
	if warmupErr != nil {
		// the previous session cookies may still be honored; keep going
		// and let the 403 path trigger another refresh if not
		slog.WarnContext(ctx, "session warm-up failed", "err", warmupErr)
	}

	for i, locationId := range s.locations {
		if i > 0 && !sleepCtx(ctx, s.locationDelay) {
			break
		}
		report.Locations = append(report.Locations, s.checkLocation(ctx, locationId))
	}

	usable := false
	for _, loc := range report.Locations {
		if loc.Err == "" {
			usable = true
			break
		}
	}
	if warmupErr != nil && !usable {
		report.Err = fmt.Sprintf("warm-up failed and no location responded: %s", warmupErr)
	}

	report.FinishedAt = timezone.Now()
	span.SetAttributes(
		attribute.Int("locations", len(report.Locations)),
		attribute.Bool("changed", report.HasChanges()),
	)
	return report
}

func (s *Service) checkLocation(ctx context.Context, locationId string) LocationReport {
	ctx, span := tracer.Start(ctx, "checkLocation")
	defer span.End()
	span.SetAttributes(attribute.String("location_id", locationId))

	out := LocationReport{
		LocationID:   locationId,
		LocationName: s.dir.Name(locationId),
	}

	req := ttp.SlotRequest{
		LocationID: locationId,
		DateStart:  s.dateStart,
		DateEnd:    s.dateEnd,
	}
	res := s.client.FetchSlots(ctx, req)
	if res.Kind == ttp.ResultAuthExpired {
		// one refresh, one retry; a second 403 skips the location
		err := s.client.RefreshSession(ctx)
		if err != nil {
			out.Err = fmt.Sprintf("session refresh after 403: %s", err)
			slog.WarnContext(ctx, "skipping location", "location_id", locationId, "reason", out.Err)
			return out
		}
		res = s.client.FetchSlots(ctx, req)
	}

	switch res.Kind {
	case ttp.ResultAuthExpired:
		out.Err = "session rejected twice"
	case ttp.ResultUpstreamError:
		out.Err = fmt.Sprintf("upstream status %d: %s", res.Status, res.Body)
	case ttp.ResultTransportError:
		out.Err = fmt.Sprintf("transport: %s", res.Err)
	}
	if out.Err != "" {
		slog.WarnContext(ctx, "skipping location", "location_id", locationId, "reason", out.Err)
		return out
	}

	out.Observations = Normalize(res.Slots, locationId, s.normOpts)

	// change detection keys off the earliest observation; in SelectAll
	// mode the later dates ride along in the notification
	var primary *Observation
	if len(out.Observations) > 0 {
		primary = &out.Observations[0]
	}
	out.Changed = s.detector.Changed(locationId, primary)
	out.Disappeared = out.Changed && primary == nil

	slog.InfoContext(
		ctx, "checked location",
		"location_id", locationId,
		"observations", len(out.Observations),
		"changed", out.Changed,
	)
	return out
}

func (s *Service) notify(ctx context.Context, report Report) {
	ctx, span := tracer.Start(ctx, "notify")
	defer span.End()

	title := report.Title()
	message := report.Render()
	for _, notifier := range s.notifiers {
		err := notifier.Send(ctx, title, message)
		if err != nil {
			// delivery failure never affects in-process state; the next
			// cycle proceeds regardless
			slog.ErrorContext(ctx, "notification delivery failed", "err", err)
		}
	}
}

// Run drives the poll loop until ctx is cancelled. Sweep failures back
// off for the cooldown instead of the full interval; nothing here exits
// the process.
func (s *Service) Run(ctx context.Context) {
	slog.Info(
		"slot watch started",
		"locations", s.locations,
		"interval", s.interval,
		"date_start", s.dateStart.Format(ttp.DateLayout),
		"date_end", s.dateEnd.Format(ttp.DateLayout),
	)

	for {
		report := s.Sweep(ctx)
		s.recordReport(report)

		if report.HasChanges() {
			s.notify(ctx, report)
		}

		wait := s.interval
		if report.Failed() {
			slog.Error("sweep failed", "err", report.Err, "cooldown", s.cooldown)
			wait = s.cooldown
		}
		if !sleepCtx(ctx, wait) {
			slog.Info("slot watch stopped")
			return
		}
	}
}

// SendTest pushes a synthetic notification through every configured
// notifier to verify delivery end to end.
func (s *Service) SendTest(ctx context.Context) error {
	now := timezone.Now()
	message := fmt.Sprintf(
		"🧪 Test Notification\nLocation: %s\nDate: %s\nTime: %s",
		s.dir.Name(s.locations[0]),
		now.Format(ttp.DateLayout),
		now.Format("15:04"),
	)

	var firstErr error
	for _, notifier := range s.notifiers {
		err := notifier.Send(ctx, notificationTitle, message)
		if err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}
