package config

// RawConfig mirrors Config with optional fields so defaults can be applied
// only where the file is silent.
type RawConfig struct {
	DefaultDisplay *int              `yaml:"default_display"`
	Displays       []DisplayConfig   `yaml:"displays"`
	Viewer         *RawViewerConfig  `yaml:"viewer"`
	Server         *RawServerConfig  `yaml:"server"`
	Table          *RawTableConfig   `yaml:"table"`
	LogLevel       *string           `yaml:"log_level"`
}

type RawViewerConfig struct {
	UpdatePage     *bool                 `yaml:"update_page"`
	WebExtensions  []string              `yaml:"web_extensions"`
	ScriptWarnings map[string]WarnAction `yaml:"script_warnings"`
	SettleDelayMS  *int                  `yaml:"settle_delay_ms"`
	RetryAttempts  *int                  `yaml:"retry_attempts"`
	SwitchBackApp  *string               `yaml:"switch_back_app"`
	MangleURLs     *bool                 `yaml:"mangle_urls"`
	DevToolsURL    *string               `yaml:"devtools_url"`
}

type RawServerConfig struct {
	Host             *string `yaml:"host"`
	StartPort        *int    `yaml:"start_port"`
	PollIntervalMS   *int    `yaml:"poll_interval_ms"`
	StartTimeoutSecs *int    `yaml:"start_timeout_secs"`
}

type RawTableConfig struct {
	PageSize      *int  `yaml:"page_size"`
	ColumnWidthPX *int  `yaml:"column_width_px"`
	RowHeightPX   *int  `yaml:"row_height_px"`
	FontSizePX    *int  `yaml:"font_size_px"`
	CellWrap      *bool `yaml:"cell_wrap"`
	ColumnSort    *bool `yaml:"column_sort"`
	ColumnFilter  *bool `yaml:"column_filter"`
	ColumnDelete  *bool `yaml:"column_delete"`
}

// Default returns the effective config used when no file exists.
func Default() *Config {
	return &Config{
		DefaultDisplay: 0,
		Viewer: ViewerConfig{
			UpdatePage:    false,
			WebExtensions: []string{"html", "htm", "svg"},
			SettleDelayMS: 1000,
			RetryAttempts: 1,
		},
		Server: ServerConfig{
			Host:             "localhost",
			StartPort:        8050,
			PollIntervalMS:   1000,
			StartTimeoutSecs: 5,
		},
		Table: TableConfig{
			PageSize:      100,
			ColumnWidthPX: 90,
			RowHeightPX:   25,
			FontSizePX:    12,
			CellWrap:      false,
			ColumnSort:    true,
			ColumnFilter:  false,
			ColumnDelete:  true,
		},
		LogLevel: "info",
	}
}

// BuildEffectiveConfig overlays a raw file onto the defaults.
func BuildEffectiveConfig(raw RawConfig) *Config {
	cfg := Default()

	if raw.DefaultDisplay != nil {
		cfg.DefaultDisplay = *raw.DefaultDisplay
	}
	if raw.Displays != nil {
		cfg.Displays = raw.Displays
	}
	if raw.LogLevel != nil {
		cfg.LogLevel = *raw.LogLevel
	}

	if v := raw.Viewer; v != nil {
		if v.UpdatePage != nil {
			cfg.Viewer.UpdatePage = *v.UpdatePage
		}
		if v.WebExtensions != nil {
			cfg.Viewer.WebExtensions = v.WebExtensions
		}
		if v.ScriptWarnings != nil {
			cfg.Viewer.ScriptWarnings = v.ScriptWarnings
		}
		if v.SettleDelayMS != nil {
			cfg.Viewer.SettleDelayMS = *v.SettleDelayMS
		}
		if v.RetryAttempts != nil {
			cfg.Viewer.RetryAttempts = *v.RetryAttempts
		}
		if v.SwitchBackApp != nil {
			cfg.Viewer.SwitchBackApp = *v.SwitchBackApp
		}
		if v.MangleURLs != nil {
			cfg.Viewer.MangleURLs = *v.MangleURLs
		}
		if v.DevToolsURL != nil {
			cfg.Viewer.DevToolsURL = *v.DevToolsURL
		}
	}

	if s := raw.Server; s != nil {
		if s.Host != nil {
			cfg.Server.Host = *s.Host
		}
		if s.StartPort != nil {
			cfg.Server.StartPort = *s.StartPort
		}
		if s.PollIntervalMS != nil {
			cfg.Server.PollIntervalMS = *s.PollIntervalMS
		}
		if s.StartTimeoutSecs != nil {
			cfg.Server.StartTimeoutSecs = *s.StartTimeoutSecs
		}
	}

	if t := raw.Table; t != nil {
		if t.PageSize != nil {
			cfg.Table.PageSize = *t.PageSize
		}
		if t.ColumnWidthPX != nil {
			cfg.Table.ColumnWidthPX = *t.ColumnWidthPX
		}
		if t.RowHeightPX != nil {
			cfg.Table.RowHeightPX = *t.RowHeightPX
		}
		if t.FontSizePX != nil {
			cfg.Table.FontSizePX = *t.FontSizePX
		}
		if t.CellWrap != nil {
			cfg.Table.CellWrap = *t.CellWrap
		}
		if t.ColumnSort != nil {
			cfg.Table.ColumnSort = *t.ColumnSort
		}
		if t.ColumnFilter != nil {
			cfg.Table.ColumnFilter = *t.ColumnFilter
		}
		if t.ColumnDelete != nil {
			cfg.Table.ColumnDelete = *t.ColumnDelete
		}
	}

	return cfg
}
