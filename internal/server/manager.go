package server

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/exec"
	"strings"
	"sync"
	"time"

	"github.com/hashicorp/go-cleanhttp"
	"github.com/hashicorp/go-retryablehttp"

	"github.com/openrend/rend/internal/config"
	"github.com/openrend/rend/internal/table"
)

// StartTimeoutError reports a rendering server that never became reachable
// within the configured bound.
type StartTimeoutError struct {
	URL     string
	Timeout time.Duration
	Err     error
}

func (e *StartTimeoutError) Error() string {
	return fmt.Sprintf("table server at %s not reachable within %s: %v", e.URL, e.Timeout, e.Err)
}

func (e *StartTimeoutError) Unwrap() error { return e.Err }

// Handle identifies the live rendering server process.
type Handle struct {
	PID     int
	Port    int
	BaseURL string
}

// SpawnFunc starts the table server process bound to host:port and returns
// its pid plus a stop function. Substituted by tests.
type SpawnFunc func(ctx context.Context, host string, port int) (pid int, stop func() error, err error)

// Manager owns the single rendering-server process for this process
// lifetime. EnsureRunning is idempotent: the first call spawns and
// health-polls the server, later calls return the same base URL
// immediately, which keeps the URL stable so browser tab reuse works
// across repeated dataset shows.
type Manager struct {
	cfg    config.ServerConfig
	logger *slog.Logger
	spawn  SpawnFunc

	mu      sync.Mutex
	handle  *Handle
	stop    func() error
	pending []string
}

func NewManager(cfg config.ServerConfig, logger *slog.Logger) *Manager {
	if logger == nil {
		logger = slog.Default()
	}
	m := &Manager{cfg: cfg, logger: logger}
	m.spawn = m.spawnProcess
	return m
}

// SetSpawnFunc replaces the process spawner. Test hook.
func (m *Manager) SetSpawnFunc(fn SpawnFunc) { m.spawn = fn }

// Handle returns the live server handle, or nil before the first
// EnsureRunning.
func (m *Manager) Handle() *Handle {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.handle
}

// EnsureRunning starts the server on first call and returns its base URL.
func (m *Manager) EnsureRunning(ctx context.Context) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.handle != nil {
		return m.handle.BaseURL, nil
	}

	port, err := m.freePort()
	if err != nil {
		return "", err
	}

	pid, stop, err := m.spawn(ctx, m.cfg.Host, port)
	if err != nil {
		return "", fmt.Errorf("could not start table server: %w", err)
	}

	baseURL := fmt.Sprintf("http://%s", net.JoinHostPort(m.cfg.Host, fmt.Sprintf("%d", port)))
	if err := m.waitHealthy(ctx, baseURL); err != nil {
		if stop != nil {
			_ = stop()
		}
		return "", err
	}

	m.handle = &Handle{PID: pid, Port: port, BaseURL: baseURL}
	m.stop = stop
	m.logger.Info("table server ready", "url", baseURL, "pid", pid)
	return baseURL, nil
}

// Publish renders a document through the running server and returns the
// absolute URL of its fresh route.
func (m *Manager) Publish(ctx context.Context, doc *table.Document) (string, error) {
	baseURL, err := m.EnsureRunning(ctx)
	if err != nil {
		return "", err
	}

	body, err := json.Marshal(doc)
	if err != nil {
		return "", fmt.Errorf("could not encode table document: %w", err)
	}

	req, err := retryablehttp.NewRequestWithContext(ctx, http.MethodPost, baseURL+"/api/tables", bytes.NewReader(body))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := m.httpClient(2, m.cfg.PollInterval()).Do(req)
	if err != nil {
		return "", fmt.Errorf("could not publish table: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("could not publish table: status %s", resp.Status)
	}

	var out struct {
		Path string `json:"path"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return "", fmt.Errorf("could not decode publish response: %w", err)
	}

	if id, ok := strings.CutPrefix(out.Path, "/t/"); ok {
		m.mu.Lock()
		m.pending = append(m.pending, id)
		m.mu.Unlock()
	}
	return baseURL + out.Path, nil
}

// WaitRendered blocks until every published route has been fetched at
// least once, polling the server's status routes. The browser only loads
// a published page asynchronously after the open action returns, so a
// caller that owns the server process must not tear it down before the
// page is served. Bounded by the configured start timeout when ctx has no
// earlier deadline.
func (m *Manager) WaitRendered(ctx context.Context) error {
	m.mu.Lock()
	handle := m.handle
	pending := append([]string(nil), m.pending...)
	m.mu.Unlock()
	if handle == nil || len(pending) == 0 {
		return nil
	}

	interval := m.cfg.PollInterval()
	deadline := time.Now().Add(m.cfg.StartTimeout())
	client := m.httpClient(1, interval)

	remaining := pending
	for {
		var still []string
		for _, id := range remaining {
			fetched, err := m.routeFetched(ctx, client, handle.BaseURL, id)
			if err != nil {
				return err
			}
			if !fetched {
				still = append(still, id)
			}
		}
		if len(still) == 0 {
			m.mu.Lock()
			m.pending = nil
			m.mu.Unlock()
			return nil
		}
		if time.Now().After(deadline) {
			return fmt.Errorf("%d table page(s) not fetched within %s", len(still), m.cfg.StartTimeout())
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(interval):
		}
		remaining = still
	}
}

func (m *Manager) routeFetched(ctx context.Context, client *retryablehttp.Client, baseURL, id string) (bool, error) {
	req, err := retryablehttp.NewRequestWithContext(ctx, http.MethodGet, baseURL+"/api/tables/"+id+"/status", nil)
	if err != nil {
		return false, err
	}
	resp, err := client.Do(req)
	if err != nil {
		return false, fmt.Errorf("could not query table status: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return false, fmt.Errorf("table status for %s: %s", id, resp.Status)
	}
	var out struct {
		Fetched bool `json:"fetched"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return false, fmt.Errorf("could not decode table status: %w", err)
	}
	return out.Fetched, nil
}

// Shutdown tears the server process down. Safe to call when nothing runs.
func (m *Manager) Shutdown() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.handle == nil {
		return nil
	}
	m.logger.Debug("stopping table server", "pid", m.handle.PID)
	var err error
	if m.stop != nil {
		err = m.stop()
	}
	m.handle = nil
	m.stop = nil
	m.pending = nil
	return err
}

// waitHealthy polls the liveness route until it answers or the configured
// timeout elapses.
func (m *Manager) waitHealthy(ctx context.Context, baseURL string) error {
	interval := m.cfg.PollInterval()
	timeout := m.cfg.StartTimeout()
	retries := int(timeout / interval)
	if retries < 1 {
		retries = 1
	}

	client := m.httpClient(retries, interval)
	req, err := retryablehttp.NewRequestWithContext(ctx, http.MethodGet, baseURL+"/healthz", nil)
	if err != nil {
		return err
	}
	resp, err := client.Do(req)
	if err != nil {
		return &StartTimeoutError{URL: baseURL, Timeout: timeout, Err: err}
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return &StartTimeoutError{
			URL:     baseURL,
			Timeout: timeout,
			Err:     fmt.Errorf("health check status %s", resp.Status),
		}
	}
	return nil
}

func (m *Manager) httpClient(retries int, wait time.Duration) *retryablehttp.Client {
	client := retryablehttp.NewClient()
	client.HTTPClient = cleanhttp.DefaultPooledClient()
	client.RetryMax = retries
	client.RetryWaitMin = wait
	client.RetryWaitMax = wait
	client.Logger = nil
	return client
}

// freePort finds an open port, preferring the configured start port and
// scanning upward from it.
func (m *Manager) freePort() (int, error) {
	for port := m.cfg.StartPort; port < m.cfg.StartPort+100; port++ {
		addr := net.JoinHostPort(m.cfg.Host, fmt.Sprintf("%d", port))
		ln, err := net.Listen("tcp", addr)
		if err != nil {
			continue
		}
		ln.Close()
		return port, nil
	}
	return 0, fmt.Errorf("no free port in %d..%d", m.cfg.StartPort, m.cfg.StartPort+99)
}

// spawnProcess starts this binary's serve subcommand as the server process.
func (m *Manager) spawnProcess(ctx context.Context, host string, port int) (int, func() error, error) {
	exe, err := os.Executable()
	if err != nil {
		return 0, nil, fmt.Errorf("could not locate executable: %w", err)
	}

	cmd := exec.Command(exe, "serve",
		"--host", host,
		"--port", fmt.Sprintf("%d", port))
	cmd.Stdout = os.Stderr
	cmd.Stderr = os.Stderr
	if err := cmd.Start(); err != nil {
		return 0, nil, err
	}

	stop := func() error {
		if cmd.Process == nil {
			return nil
		}
		if err := cmd.Process.Kill(); err != nil {
			return err
		}
		_, err := cmd.Process.Wait()
		return err
	}
	return cmd.Process.Pid, stop, nil
}
