//go:build darwin

package viewer

import (
	"context"
	"fmt"
	"log/slog"
	"os/exec"
	"strconv"
	"strings"

	"github.com/openrend/rend/internal/config"
	"github.com/openrend/rend/internal/geometry"
)

// Script payloads, parameterized by Sprintf. Kept as data so the bridge
// methods stay a thin exec layer.
const (
	scriptPreviewTitle = `tell application "Preview" to get name of front window`

	scriptOpenFile = `tell application "Preview" to open POSIX file %q`

	scriptActivate = `tell application %q to activate`

	scriptFrontBounds = `tell application "System Events" to tell process %q
	set position of front window to {%d, %d}
	set size of front window to {%d, %d}
end tell`

	scriptSelectMenu = `tell application "System Events" to tell process "Preview"
	click menu item %q of menu %q of menu bar 1
end tell`

	scriptGoToPage = `tell application "System Events" to tell process "Preview"
	keystroke "g" using {option down, command down}
	keystroke "%d"
	keystroke return
end tell`

	// One line per window: "<id>\t<url>\t<url>...". Windows without
	// document tabs report no URLs.
	scriptListWindows = `set out to ""
tell application "Safari"
	repeat with w in windows
		set row to (id of w as text)
		repeat with t in tabs of w
			set row to row & tab & (URL of t)
		end repeat
		set out to out & row & linefeed
	end repeat
end tell
return out`

	scriptSetTabURL = `tell application "Safari"
	set URL of tab %d of (first window whose id is %d) to %q
end tell`

	scriptReloadTab = `tell application "Safari"
	set w to first window whose id is %d
	set URL of current tab of w to (URL of current tab of w)
end tell`

	scriptForward = `tell application "System Events" to tell process "Safari"
	keystroke "]" using {command down}
end tell`

	scriptRaise = `tell application "Safari"
	set index of (first window whose id is %d) to 1
	activate
end tell`

	scriptWindowBounds = `tell application "Safari"
	set bounds of (first window whose id is %d) to {%d, %d, %d, %d}
end tell`

	scriptCreateWindow = `tell application "Safari"
	make new document with properties {URL:%q}
	set bounds of front window to {%d, %d, %d, %d}
end tell`

	scriptAddTab = `tell application "Safari"
	tell front window to make new tab with properties {URL:%q}
end tell`
)

// OsascriptBridge implements ScriptBridge by shelling out to osascript.
// Known harmless stderr messages are downgraded per the configured
// warning map.
type OsascriptBridge struct {
	logger   *slog.Logger
	warnings map[string]config.WarnAction
	run      func(ctx context.Context, script string) (string, string, error)
}

func NewOsascriptBridge(cfg config.ViewerConfig, logger *slog.Logger) *OsascriptBridge {
	if logger == nil {
		logger = slog.Default()
	}
	return &OsascriptBridge{
		logger:   logger,
		warnings: cfg.ScriptWarnings,
		run:      runOsascript,
	}
}

func runOsascript(ctx context.Context, script string) (string, string, error) {
	cmd := exec.CommandContext(ctx, "osascript", "-e", script)
	var stdout, stderr strings.Builder
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	err := cmd.Run()
	return stdout.String(), stderr.String(), err
}

// exec runs a script and filters its stderr through the warning map.
func (b *OsascriptBridge) exec(ctx context.Context, script string) (string, error) {
	out, errOut, err := b.run(ctx, script)
	for _, line := range strings.Split(strings.TrimSpace(errOut), "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		switch b.actionFor(line) {
		case config.WarnIgnore:
		case config.WarnWarning:
			b.logger.Warn("script warning", "msg", line)
		default:
			if err == nil {
				err = fmt.Errorf("script error: %s", line)
			}
		}
	}
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(out), nil
}

func (b *OsascriptBridge) actionFor(line string) config.WarnAction {
	for substr, action := range b.warnings {
		if strings.Contains(line, substr) {
			return action
		}
	}
	return config.WarnError
}

func (b *OsascriptBridge) PreviewFrontTitle(ctx context.Context) (string, error) {
	return b.exec(ctx, scriptPreviewTitle)
}

func (b *OsascriptBridge) OpenFile(ctx context.Context, path string) error {
	_, err := b.exec(ctx, fmt.Sprintf(scriptOpenFile, path))
	return err
}

func (b *OsascriptBridge) ActivateApp(ctx context.Context, app string) error {
	_, err := b.exec(ctx, fmt.Sprintf(scriptActivate, app))
	return err
}

func (b *OsascriptBridge) SetFrontWindowBounds(ctx context.Context, app string, ext geometry.Extent) error {
	_, err := b.exec(ctx, fmt.Sprintf(scriptFrontBounds, app, ext.X, ext.Y, ext.Width, ext.Height))
	return err
}

func (b *OsascriptBridge) SelectMenu(ctx context.Context, menu, item string) error {
	_, err := b.exec(ctx, fmt.Sprintf(scriptSelectMenu, item, menu))
	return err
}

func (b *OsascriptBridge) GoToPage(ctx context.Context, page int) error {
	_, err := b.exec(ctx, fmt.Sprintf(scriptGoToPage, page))
	return err
}

func (b *OsascriptBridge) BrowserWindows(ctx context.Context) ([]BrowserWindow, error) {
	out, err := b.exec(ctx, scriptListWindows)
	if err != nil {
		return nil, err
	}
	var windows []BrowserWindow
	for _, line := range strings.Split(out, "\n") {
		if strings.TrimSpace(line) == "" {
			continue
		}
		fields := strings.Split(line, "\t")
		id, err := strconv.Atoi(strings.TrimSpace(fields[0]))
		if err != nil {
			continue
		}
		w := BrowserWindow{ID: id}
		for _, u := range fields[1:] {
			if u != "" && u != "missing value" {
				w.TabURLs = append(w.TabURLs, u)
			}
		}
		windows = append(windows, w)
	}
	return windows, nil
}

func (b *OsascriptBridge) SetTabURL(ctx context.Context, windowID, tab int, url string) error {
	// AppleScript tab indices start at 1.
	_, err := b.exec(ctx, fmt.Sprintf(scriptSetTabURL, tab+1, windowID, url))
	return err
}

func (b *OsascriptBridge) ReloadActiveTab(ctx context.Context, windowID int) error {
	_, err := b.exec(ctx, fmt.Sprintf(scriptReloadTab, windowID))
	return err
}

func (b *OsascriptBridge) ForwardKeystroke(ctx context.Context) error {
	_, err := b.exec(ctx, scriptForward)
	return err
}

func (b *OsascriptBridge) RaiseWindow(ctx context.Context, windowID int) error {
	_, err := b.exec(ctx, fmt.Sprintf(scriptRaise, windowID))
	return err
}

func (b *OsascriptBridge) SetWindowBounds(ctx context.Context, windowID int, ext geometry.Extent) error {
	_, err := b.exec(ctx, fmt.Sprintf(scriptWindowBounds,
		windowID, ext.X, ext.Y, ext.X+ext.Width, ext.Y+ext.Height))
	return err
}

func (b *OsascriptBridge) CreateWindow(ctx context.Context, urls []string, ext geometry.Extent) error {
	if len(urls) == 0 {
		return fmt.Errorf("no urls to open")
	}
	_, err := b.exec(ctx, fmt.Sprintf(scriptCreateWindow,
		urls[0], ext.X, ext.Y, ext.X+ext.Width, ext.Y+ext.Height))
	if err != nil {
		return err
	}
	for _, u := range urls[1:] {
		if _, err := b.exec(ctx, fmt.Sprintf(scriptAddTab, u)); err != nil {
			return err
		}
	}
	return nil
}
