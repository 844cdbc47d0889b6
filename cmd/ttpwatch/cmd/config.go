package cmd

import (
	"fmt"
	"os"
	"strings"
	"time"
	"ttpwatch/lib/configutil"
	"ttpwatch/lib/notify/mail"
	"ttpwatch/lib/notify/ntfy"
	"ttpwatch/lib/scrapers/ttp"
	"ttpwatch/lib/timezone"
	"ttpwatch/lib/util/restyutil"
	"ttpwatch/services/slotwatch"
)

type NtfyConfig struct {
	Server string `json:"server"`
	Topic  string `json:"topic"`
}

type SmtpConfig struct {
	Server       string   `json:"server"`
	Port         int      `json:"port"`
	EmailAddress string   `json:"email_address"`
	Password     string   `json:"password"`
	To           []string `json:"to"`
}

type Config struct {
	// comma-separated enrollment center ids
	LocationIDs string `json:"location_ids"`
	// YYYY-MM-DD bounds for the availability window; empty means
	// today through +365 days
	DateStart string `json:"date_start"`
	DateEnd   string `json:"date_end"`

	CheckIntervalSeconds int    `json:"check_interval_seconds"`
	ApiShape             string `json:"api_shape"`
	Select               string `json:"select"`
	// retain last-seen state when a location's slots disappear instead
	// of reporting the transition
	KeepStaleEntries bool `json:"keep_stale_entries"`
	ExcludeRemote    bool `json:"exclude_remote"`
	NotifyOnStart    bool `json:"notify_on_start"`
	// 0 disables the status endpoint
	StatusPort int `json:"status_port"`
	// when set, full request/response dumps land here
	DebugDir string `json:"debug_dir"`

	BaseURL string `json:"base_url"`
	HomeURL string `json:"home_url"`

	Ntfy NtfyConfig `json:"ntfy"`
	Smtp SmtpConfig `json:"smtp"`
}

func loadConfig() (Config, error) {
	cfg, err := configutil.ReadConfig[Config](configPath)
	if err != nil && !os.IsNotExist(err) {
		return cfg, err
	}

	if cfg.LocationIDs == "" {
		// Charlotte-Douglas International Airport
		cfg.LocationIDs = "14321"
	}
	if cfg.CheckIntervalSeconds == 0 {
		cfg.CheckIntervalSeconds = 900
	}
	if cfg.Ntfy.Topic == "" && cfg.Smtp.Server == "" {
		cfg.Ntfy.Topic = "vu_alert"
	}
	return cfg, nil
}

func parseDate(value string) (time.Time, error) {
	if value == "" {
		return time.Time{}, nil
	}
	return time.ParseInLocation(ttp.DateLayout, value, timezone.Location)
}

func buildService(cfg Config) (*slotwatch.Service, error) {
	shape := ttp.RequestShape(cfg.ApiShape)
	switch shape {
	case "", ttp.ShapeQuery, ttp.ShapePath:
	default:
		return nil, fmt.Errorf("unknown api_shape %q", cfg.ApiShape)
	}

	selectMode := slotwatch.SelectMode(cfg.Select)
	switch selectMode {
	case "", slotwatch.SelectEarliest, slotwatch.SelectAll:
	default:
		return nil, fmt.Errorf("unknown select mode %q", cfg.Select)
	}

	dateStart, err := parseDate(cfg.DateStart)
	if err != nil {
		return nil, fmt.Errorf("date_start: %w", err)
	}
	dateEnd, err := parseDate(cfg.DateEnd)
	if err != nil {
		return nil, fmt.Errorf("date_end: %w", err)
	}

	var debug restyutil.InstrumentOutput
	if cfg.DebugDir != "" {
		debug = restyutil.NewFilesystemOutput(cfg.DebugDir)
	}

	client, err := ttp.NewClient(ttp.ClientOptions{
		BaseURL: cfg.BaseURL,
		HomeURL: cfg.HomeURL,
		Shape:   shape,
		Debug:   debug,
	})
	if err != nil {
		return nil, err
	}

	var notifiers []slotwatch.Notifier
	if cfg.Ntfy.Topic != "" {
		notifiers = append(notifiers, ntfy.NewClient(ntfy.Options{
			Server: cfg.Ntfy.Server,
			Topic:  cfg.Ntfy.Topic,
			Debug:  debug,
		}))
	}
	if cfg.Smtp.Server != "" {
		notifiers = append(notifiers, mail.NewNotifier(mail.Options{
			Server:       cfg.Smtp.Server,
			Port:         cfg.Smtp.Port,
			EmailAddress: cfg.Smtp.EmailAddress,
			Password:     cfg.Smtp.Password,
			To:           cfg.Smtp.To,
		}))
	}

	return slotwatch.NewService(slotwatch.Options{
		Client:            client,
		Notifiers:         notifiers,
		LocationIDs:       strings.Split(cfg.LocationIDs, ","),
		DateStart:         dateStart,
		DateEnd:           dateEnd,
		Interval:          time.Duration(cfg.CheckIntervalSeconds) * time.Second,
		Select:            selectMode,
		IncludeRemote:     !cfg.ExcludeRemote,
		ReportDisappeared: !cfg.KeepStaleEntries,
	})
}
