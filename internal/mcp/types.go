package mcp

// ShowInput is the input for the show tool.
type ShowInput struct {
	Ref              string `json:"ref" jsonschema:"required,File path or URL to display"`
	Kind             string `json:"kind,omitempty" jsonschema:"Force the location kind: file or url. Default: inferred from the reference."`
	Display          *int   `json:"display,omitempty" jsonschema:"Physical display index to show on (default: configured default display)"`
	Width            int    `json:"width,omitempty" jsonschema:"Override the resolved window width in pixels"`
	Height           int    `json:"height,omitempty" jsonschema:"Override the resolved window height in pixels"`
	Page             *int   `json:"page,omitempty" jsonschema:"Target page for paged content such as PDFs"`
	UpdatePage       *bool  `json:"update_page,omitempty" jsonschema:"Re-read the viewer's current page before navigating (default: configured value)"`
	Refresh          bool   `json:"refresh,omitempty" jsonschema:"Reload a reused browser tab instead of reassigning its URL"`
	AlwaysReposition bool   `json:"always_reposition,omitempty" jsonschema:"Apply geometry to reused windows too; by default only new windows are positioned"`
}

// ShowOutput is the output for the show tool.
type ShowOutput struct {
	Ref string `json:"ref"`
	// Page is the resolved current page for paged content.
	Page *int `json:"page,omitempty"`
}

// ShowAllInput is the input for the show_all tool.
type ShowAllInput struct {
	Refs    []string `json:"refs" jsonschema:"required,File paths or URLs to display together; web locations share one window with one tab each"`
	Display *int     `json:"display,omitempty" jsonschema:"Physical display index to show on (default: configured default display)"`
	Width   int      `json:"width,omitempty" jsonschema:"Override the resolved window width in pixels"`
	Height  int      `json:"height,omitempty" jsonschema:"Override the resolved window height in pixels"`
}

// ShowAllOutput is the output for the show_all tool.
type ShowAllOutput struct {
	Shown int `json:"shown"`
}

// RenderTableInput is the input for the render_table tool.
type RenderTableInput struct {
	Title   string     `json:"title,omitempty" jsonschema:"Table title (default: Untitled)"`
	Columns []string   `json:"columns" jsonschema:"required,Column names in order"`
	Rows    [][]string `json:"rows" jsonschema:"required,Row cells, one slice per row in column order"`
	Display *int       `json:"display,omitempty" jsonschema:"Physical display index to show on (default: configured default display)"`
}

// RenderTableOutput is the output for the render_table tool.
type RenderTableOutput struct {
	Rows int `json:"rows"`
}

// GetConfigInput is the input for the get_config tool.
type GetConfigInput struct{}

// DisplayInfo echoes one resolved display geometry entry.
type DisplayInfo struct {
	Index  int `json:"index"`
	X      int `json:"x"`
	Y      int `json:"y"`
	Width  int `json:"width"`
	Height int `json:"height"`
}

// GetConfigOutput is the output for the get_config tool.
type GetConfigOutput struct {
	DefaultDisplay int           `json:"default_display"`
	Displays       []DisplayInfo `json:"displays"`
	WebExtensions  []string      `json:"web_extensions"`
	UpdatePage     bool          `json:"update_page"`
}
