package config

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/openrend/rend/internal/geometry"
)

// DisplayConfig pins the window target geometry for one physical display.
// Configured geometry overrides detected bounds for that display index.
type DisplayConfig struct {
	Index  int `yaml:"index"`
	X      int `yaml:"x"`
	Y      int `yaml:"y"`
	Width  int `yaml:"width"`
	Height int `yaml:"height"`
}

// Extent returns the configured geometry as an extent.
func (d DisplayConfig) Extent() geometry.Extent {
	return geometry.Extent{X: d.X, Y: d.Y, Width: d.Width, Height: d.Height}
}

// WarnAction decides how a matched script warning is handled.
type WarnAction string

const (
	WarnIgnore  WarnAction = "ignore"
	WarnWarning WarnAction = "warning"
	WarnError   WarnAction = "error"
)

// ViewerConfig carries the scripted- and devtools-viewer feature flags.
type ViewerConfig struct {
	// UpdatePage re-reads the current page before navigating by default.
	UpdatePage bool `yaml:"update_page"`
	// WebExtensions lists file extensions (no dot) routed to the web
	// viewer instead of the file handler.
	WebExtensions []string `yaml:"web_extensions"`
	// ScriptWarnings maps a script stderr substring to the action taken
	// when it appears. Unmatched errors fail the step.
	ScriptWarnings map[string]WarnAction `yaml:"script_warnings"`
	// SettleDelayMS is the wait after async native-app actions that have
	// no completion signal.
	SettleDelayMS int `yaml:"settle_delay_ms"`
	// RetryAttempts is the number of local retries for UI steps that
	// target a window or menu item that is not there yet.
	RetryAttempts int `yaml:"retry_attempts"`
	// SwitchBackApp, when set, is activated after each scripted show.
	SwitchBackApp string `yaml:"switch_back_app"`
	// MangleURLs appends a trailing slash to shown URLs the way Safari
	// reports them, so tab matching by URL equality holds.
	MangleURLs bool `yaml:"mangle_urls"`
	// DevToolsURL points at a running Chromium DevTools endpoint
	// (e.g. ws://127.0.0.1:9222). Empty disables the devtools viewer.
	DevToolsURL string `yaml:"devtools_url"`
}

// SettleDelay returns the settle delay as a duration.
func (v ViewerConfig) SettleDelay() time.Duration {
	return time.Duration(v.SettleDelayMS) * time.Millisecond
}

// IsWebExtension reports whether ext (no dot) routes to the web viewer.
func (v ViewerConfig) IsWebExtension(ext string) bool {
	for _, e := range v.WebExtensions {
		if e == ext {
			return true
		}
	}
	return false
}

// ServerConfig configures the table rendering server and its manager.
type ServerConfig struct {
	Host             string `yaml:"host"`
	StartPort        int    `yaml:"start_port"`
	PollIntervalMS   int    `yaml:"poll_interval_ms"`
	StartTimeoutSecs int    `yaml:"start_timeout_secs"`
}

// PollInterval returns the health poll interval as a duration.
func (s ServerConfig) PollInterval() time.Duration {
	return time.Duration(s.PollIntervalMS) * time.Millisecond
}

// StartTimeout returns the health poll deadline as a duration.
func (s ServerConfig) StartTimeout() time.Duration {
	return time.Duration(s.StartTimeoutSecs) * time.Second
}

// TableConfig carries table layout defaults.
type TableConfig struct {
	PageSize      int  `yaml:"page_size"`
	ColumnWidthPX int  `yaml:"column_width_px"`
	RowHeightPX   int  `yaml:"row_height_px"`
	FontSizePX    int  `yaml:"font_size_px"`
	CellWrap      bool `yaml:"cell_wrap"`
	ColumnSort    bool `yaml:"column_sort"`
	ColumnFilter  bool `yaml:"column_filter"`
	ColumnDelete  bool `yaml:"column_delete"`
}

// Config is the effective, validated configuration.
type Config struct {
	DefaultDisplay int             `yaml:"default_display"`
	Displays       []DisplayConfig `yaml:"displays"`
	Viewer         ViewerConfig    `yaml:"viewer"`
	Server         ServerConfig    `yaml:"server"`
	Table          TableConfig     `yaml:"table"`
	LogLevel       string          `yaml:"log_level"`
}

// DisplayByIndex returns the configured geometry for a display index.
func (c *Config) DisplayByIndex(index int) (DisplayConfig, bool) {
	for _, d := range c.Displays {
		if d.Index == index {
			return d, true
		}
	}
	return DisplayConfig{}, false
}

// ValidationError reports an invalid config value with its YAML path.
type ValidationError struct {
	Path string
	Err  error
}

func (e *ValidationError) Error() string {
	if e.Path == "" {
		return e.Err.Error()
	}
	return fmt.Sprintf("%s: %v", e.Path, e.Err)
}

func (e *ValidationError) Unwrap() error { return e.Err }

// Validate checks the effective config for out-of-range values.
func (c *Config) Validate() error {
	if c.DefaultDisplay < 0 {
		return &ValidationError{Path: "default_display", Err: fmt.Errorf("must not be negative")}
	}
	seen := map[int]bool{}
	for i, d := range c.Displays {
		path := fmt.Sprintf("displays[%d]", i)
		if d.Index < 0 {
			return &ValidationError{Path: path + ".index", Err: fmt.Errorf("must not be negative")}
		}
		if seen[d.Index] {
			return &ValidationError{Path: path + ".index", Err: fmt.Errorf("duplicate display index %d", d.Index)}
		}
		seen[d.Index] = true
		if d.Width <= 0 || d.Height <= 0 {
			return &ValidationError{Path: path, Err: fmt.Errorf("width and height must be positive")}
		}
	}
	if c.Viewer.SettleDelayMS < 0 {
		return &ValidationError{Path: "viewer.settle_delay_ms", Err: fmt.Errorf("must not be negative")}
	}
	if c.Viewer.RetryAttempts < 0 {
		return &ValidationError{Path: "viewer.retry_attempts", Err: fmt.Errorf("must not be negative")}
	}
	for substr, action := range c.Viewer.ScriptWarnings {
		switch action {
		case WarnIgnore, WarnWarning, WarnError:
		default:
			return &ValidationError{
				Path: "viewer.script_warnings." + substr,
				Err:  fmt.Errorf("action must be one of: ignore, warning, error"),
			}
		}
	}
	if c.Server.StartPort < 1 || c.Server.StartPort > 65535 {
		return &ValidationError{Path: "server.start_port", Err: fmt.Errorf("must be in 1..65535")}
	}
	if c.Server.PollIntervalMS <= 0 {
		return &ValidationError{Path: "server.poll_interval_ms", Err: fmt.Errorf("must be positive")}
	}
	if c.Server.StartTimeoutSecs <= 0 {
		return &ValidationError{Path: "server.start_timeout_secs", Err: fmt.Errorf("must be positive")}
	}
	if c.Table.PageSize <= 0 {
		return &ValidationError{Path: "table.page_size", Err: fmt.Errorf("must be positive")}
	}
	switch c.LogLevel {
	case "debug", "info", "warning", "error":
	default:
		return &ValidationError{Path: "log_level", Err: fmt.Errorf("log_level must be one of: debug, info, warning, error")}
	}
	return nil
}

// SlogLevel maps the configured log level onto slog.
func (c *Config) SlogLevel() slog.Level {
	switch c.LogLevel {
	case "debug":
		return slog.LevelDebug
	case "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
