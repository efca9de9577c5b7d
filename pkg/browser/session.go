// Package browser launches and owns the portal browser session, and adapts
// playwright pages to the grid engine's driver interfaces.
package browser

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/playwright-community/playwright-go"
	"go.uber.org/zap"

	"github.com/austinchang/gridsync/pkg/grid"
)

// Config controls how the browser is launched.
type Config struct {
	// Engine is the preferred browser: msedge, chrome, chromium, firefox,
	// or webkit. Other installed engines are tried as fallbacks.
	Engine string `json:"engine"`

	Headless       bool   `json:"headless"`
	SlowMoMs       int    `json:"slow_mo_ms"`
	ViewportWidth  int    `json:"viewport_width"`
	ViewportHeight int    `json:"viewport_height"`
	TimeoutMs      int    `json:"timeout_ms"`

	// UserDataDir enables a persistent profile (keeps portal cookies across
	// runs). Empty means a throwaway profile per run.
	UserDataDir string `json:"user_data_dir"`

	// ScreenshotDir receives failure screenshots.
	ScreenshotDir string `json:"screenshot_dir"`
}

// DefaultConfig returns the production launch defaults. The portal is an
// enterprise intranet app, so Edge is preferred and runs headed: the
// operator must be able to complete the login gate interactively.
func DefaultConfig() Config {
	return Config{
		Engine:         "msedge",
		Headless:       false,
		SlowMoMs:       500,
		ViewportWidth:  1920,
		ViewportHeight: 1080,
		TimeoutMs:      30000,
		ScreenshotDir:  "logs",
	}
}

// engineSpec describes one launchable browser engine.
type engineSpec struct {
	name    string
	channel string // chromium release channel, empty for bundled engines
	kind    string // chromium, firefox, webkit
}

var engines = map[string]engineSpec{
	"msedge":   {name: "Microsoft Edge", channel: "msedge", kind: "chromium"},
	"chrome":   {name: "Google Chrome", channel: "chrome", kind: "chromium"},
	"chromium": {name: "Chromium", kind: "chromium"},
	"firefox":  {name: "Firefox", kind: "firefox"},
	"webkit":   {name: "WebKit", kind: "webkit"},
}

// fallbackOrder is the engine priority when the preferred engine fails.
var fallbackOrder = []string{"msedge", "chrome", "chromium", "firefox", "webkit"}

// Session is one live browser with the single portal page the grid engine
// drives. Exactly one operation sequence runs per session; nothing here is
// safe for concurrent use.
type Session struct {
	pw      *playwright.Playwright
	browser playwright.Browser
	context playwright.BrowserContext
	page    playwright.Page
	cfg     Config
	log     *zap.Logger

	// Engine holds the name of the engine that actually launched.
	Engine string

	// Persistent reports whether the session uses a persistent profile.
	Persistent bool
}

// Start installs playwright if needed and launches a browser, trying the
// configured engine first and falling back through the remaining engines.
func Start(cfg Config, log *zap.Logger) (*Session, error) {
	runOpts := &playwright.RunOptions{
		Verbose: false,
		Stdout:  io.Discard,
		Stderr:  io.Discard,
	}

	if err := playwright.Install(runOpts); err != nil {
		return nil, fmt.Errorf("failed to install playwright: %w", err)
	}
	pw, err := playwright.Run(runOpts)
	if err != nil {
		return nil, fmt.Errorf("failed to start playwright: %w", err)
	}

	session := &Session{pw: pw, cfg: cfg, log: log}

	for _, key := range launchOrder(cfg.Engine) {
		spec := engines[key]
		log.Info("trying browser engine", zap.String("engine", spec.name))
		if err := session.launch(spec); err != nil {
			log.Warn("engine launch failed",
				zap.String("engine", spec.name),
				zap.Error(err))
			continue
		}
		session.Engine = spec.name
		log.Info("browser started",
			zap.String("engine", spec.name),
			zap.Bool("persistent", session.Persistent))
		return session, nil
	}

	_ = pw.Stop()
	return nil, fmt.Errorf("no browser engine could be launched")
}

// launchOrder puts the preferred engine first, then the remaining fallbacks.
func launchOrder(preferred string) []string {
	order := make([]string, 0, len(fallbackOrder))
	if _, ok := engines[preferred]; ok {
		order = append(order, preferred)
	}
	for _, key := range fallbackOrder {
		if key != preferred {
			order = append(order, key)
		}
	}
	return order
}

func (s *Session) launch(spec engineSpec) error {
	var browserType playwright.BrowserType
	switch spec.kind {
	case "chromium":
		browserType = s.pw.Chromium
	case "firefox":
		browserType = s.pw.Firefox
	case "webkit":
		browserType = s.pw.WebKit
	default:
		return fmt.Errorf("unknown engine kind %q", spec.kind)
	}

	// Channel engines keep the portal's SSO cookies when given a persistent
	// profile, sparing the operator a login per run. Try that first.
	if spec.kind == "chromium" && spec.channel != "" {
		if err := s.launchPersistent(browserType, spec); err == nil {
			return nil
		} else {
			s.log.Debug("persistent context launch failed, trying plain launch",
				zap.String("engine", spec.name),
				zap.Error(err))
		}
	}

	return s.launchPlain(browserType, spec)
}

func (s *Session) launchPersistent(browserType playwright.BrowserType, spec engineSpec) error {
	userDataDir := s.cfg.UserDataDir
	if userDataDir == "" {
		dir, err := os.MkdirTemp("", "gridsync_"+spec.channel+"_")
		if err != nil {
			return fmt.Errorf("failed to create profile directory: %w", err)
		}
		userDataDir = dir
	}

	context, err := browserType.LaunchPersistentContext(userDataDir,
		playwright.BrowserTypeLaunchPersistentContextOptions{
			Channel:  playwright.String(spec.channel),
			Headless: playwright.Bool(s.cfg.Headless),
			SlowMo:   playwright.Float(float64(s.cfg.SlowMoMs)),
			Viewport: &playwright.Size{
				Width:  s.cfg.ViewportWidth,
				Height: s.cfg.ViewportHeight,
			},
		})
	if err != nil {
		return err
	}

	var page playwright.Page
	if pages := context.Pages(); len(pages) > 0 {
		page = pages[0]
	} else {
		page, err = context.NewPage()
		if err != nil {
			_ = context.Close()
			return fmt.Errorf("failed to open page: %w", err)
		}
	}
	page.SetDefaultTimeout(float64(s.cfg.TimeoutMs))

	s.context = context
	s.page = page
	s.Persistent = true
	return nil
}

func (s *Session) launchPlain(browserType playwright.BrowserType, spec engineSpec) error {
	launchOpts := playwright.BrowserTypeLaunchOptions{
		Headless: playwright.Bool(s.cfg.Headless),
		SlowMo:   playwright.Float(float64(s.cfg.SlowMoMs)),
	}
	if spec.channel != "" {
		launchOpts.Channel = playwright.String(spec.channel)
	}

	browser, err := browserType.Launch(launchOpts)
	if err != nil {
		return err
	}

	page, err := browser.NewPage()
	if err != nil {
		_ = browser.Close()
		return fmt.Errorf("failed to open page: %w", err)
	}
	if err := page.SetViewportSize(s.cfg.ViewportWidth, s.cfg.ViewportHeight); err != nil {
		s.log.Warn("failed to set viewport size", zap.Error(err))
	}
	page.SetDefaultTimeout(float64(s.cfg.TimeoutMs))

	s.browser = browser
	s.page = page
	s.Persistent = false
	return nil
}

// Page returns the portal page adapted to the grid driver interface.
func (s *Session) Page() grid.Page {
	return &pageAdapter{page: s.page}
}

// Screenshot writes a timestamped full-page capture under the configured
// screenshot directory and returns its path.
func (s *Session) Screenshot(label string) (string, error) {
	dir := s.cfg.ScreenshotDir
	if dir == "" {
		dir = "logs"
	}
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", fmt.Errorf("failed to create screenshot directory: %w", err)
	}

	path := filepath.Join(dir, fmt.Sprintf("%s_%s.png", label, time.Now().Format("20060102_150405")))
	if _, err := s.page.Screenshot(playwright.PageScreenshotOptions{
		Path:     playwright.String(path),
		FullPage: playwright.Bool(true),
	}); err != nil {
		return "", fmt.Errorf("screenshot failed: %w", err)
	}

	s.log.Info("screenshot saved", zap.String("path", path))
	return path, nil
}

// Close shuts the browser and playwright down. Safe to call once.
func (s *Session) Close() {
	if s.context != nil {
		_ = s.context.Close()
	}
	if s.browser != nil {
		_ = s.browser.Close()
	}
	if s.pw != nil {
		_ = s.pw.Stop()
	}
	s.log.Info("browser closed")
}
