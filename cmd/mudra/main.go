package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/exec"
	"os/signal"
	"path/filepath"
	"runtime"
	"strings"
	"syscall"

	"github.com/ayusman/mudra/internal/app"
	"github.com/ayusman/mudra/internal/config"
	"github.com/ayusman/mudra/internal/cursor"
	"github.com/ayusman/mudra/internal/logging"
	"github.com/ayusman/mudra/internal/metrics"
	"github.com/ayusman/mudra/internal/plugin"
	"github.com/ayusman/mudra/internal/server"
	"github.com/ayusman/mudra/internal/siteconfig"
	"github.com/ayusman/mudra/internal/store"
	"github.com/ayusman/mudra/internal/tray"
)

func main() {
	if err := run(); err != nil {
		slog.Error("mudra exited with error", "error", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	logging.Init(cfg.LogLevel, cfg.LogFormat)
	slog.Info("mudra starting", "data_dir", cfg.DataDir, "addr", cfg.HTTPAddr)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	st, err := store.New(cfg.DBPath())
	if err != nil {
		return fmt.Errorf("failed to initialize store: %w", err)
	}
	defer st.Close()

	site := siteconfig.NewSource()
	go loadSiteConfig(ctx, cfg, site)
	go func() {
		if sc, ok := awaitSiteConfig(ctx, site); ok {
			slog.Info("site config in effect",
				"gesture_entry", sc.CursorModeEnabled(),
				"enter_hold", sc.EnterHold(),
				"exit_hold", sc.ExitHold(),
				"click_cooldown", sc.ClickCooldown())
		}
	}()

	overlay := server.NewOverlayHub()
	hosts := cursor.Fanout{overlay}

	if cfg.DesktopInput {
		if d := desktopDispatcher(ctx, cfg); d != nil {
			defer d.Stop()
			hosts = append(hosts, d)
		}
	}

	reg := metrics.NewRegistry()
	m := metrics.New(reg)

	a := app.New(app.Config{
		Store:        st,
		Site:         site,
		Host:         hosts,
		Viewport:     cursor.Viewport{Width: float64(cfg.ViewportWidth), Height: float64(cfg.ViewportHeight)},
		Metrics:      m,
		CameraID:     cfg.CameraID,
		MotionThresh: cfg.MotionThreshold,
	})
	if err := a.Start(); err != nil {
		// The API still serves manual cursor controls without a camera.
		slog.Error("failed to start capture loop", "error", err)
	}
	defer a.Stop()

	staticDir := cfg.StaticDir
	if staticDir == "" {
		staticDir = findWebDir(cfg.DataDir)
	}
	if staticDir != "" {
		slog.Info("serving static files", "dir", staticDir)
	}

	srv := server.New(server.Config{
		StaticDir: staticDir,
		Store:     st,
		Cursor:    a,
		Site:      site,
		Overlay:   overlay,
		Metrics:   metrics.Handler(reg),
	})

	errCh := make(chan error, 1)
	go func() { errCh <- srv.Run(ctx, cfg.HTTPAddr) }()

	if cfg.TrayEnabled {
		runTray(ctx, stop, a, cfg.HTTPAddr)
	}

	select {
	case err := <-errCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server failed: %w", err)
		}
	case <-ctx.Done():
		if err := <-errCh; err != nil {
			return fmt.Errorf("server shutdown: %w", err)
		}
	}

	slog.Info("mudra stopped")
	return nil
}

// loadSiteConfig freezes the remote configuration, or the defaults when no
// remote source is configured or it cannot be reached in time.
func loadSiteConfig(ctx context.Context, cfg *config.Config, site *siteconfig.Source) {
	loader := siteconfig.NewLoader(siteconfig.LoaderConfig{
		BaseURL: cfg.SiteAPIURL,
		SiteID:  cfg.SiteID,
		APIKey:  cfg.SiteAPIKey,
	})
	if !loader.Configured() {
		slog.Info("no site config source, using defaults")
		site.Freeze(siteconfig.Defaults())
		return
	}

	ctx, cancel := context.WithTimeout(ctx, cfg.SiteConfigTimeout)
	defer cancel()
	loader.Load(ctx, site)
}

// awaitSiteConfig blocks until site is frozen and returns the frozen
// configuration. It reports false if ctx ends first.
func awaitSiteConfig(ctx context.Context, site *siteconfig.Source) (siteconfig.Config, bool) {
	select {
	case <-site.Done():
		return site.Current(), true
	case <-ctx.Done():
		return siteconfig.Config{}, false
	}
}

// desktopDispatcher discovers the pointer plugin and starts a dispatcher for
// it. It returns nil when the plugin is not installed.
func desktopDispatcher(ctx context.Context, cfg *config.Config) *plugin.Dispatcher {
	mgr := plugin.NewManager(cfg.PluginDir)
	if err := mgr.Discover(); err != nil {
		slog.Warn("failed to scan plugins", "dir", cfg.PluginDir, "error", err)
		return nil
	}

	p, err := mgr.Get(cfg.PointerPlugin)
	if err != nil {
		slog.Warn("desktop input disabled", "plugin", cfg.PointerPlugin, "dir", cfg.PluginDir, "error", err)
		return nil
	}

	d := plugin.NewDispatcher(plugin.NewExecutor(plugin.DefaultTimeout), p, plugin.DefaultQueueSize)
	d.Start(ctx)
	slog.Info("desktop input enabled", "plugin", p.Manifest.Name, "version", p.Manifest.Version)
	return d
}

// runTray blocks on the tray until it quits or ctx is cancelled.
func runTray(ctx context.Context, quit context.CancelFunc, a *app.App, addr string) {
	t := tray.New()
	t.OnToggle(func() cursor.Mode {
		a.ToggleCursor()
		return a.CursorStatus().Mode
	})
	t.OnOpen(func() { openBrowser(localURL(addr)) })
	t.OnQuit(quit)
	a.OnModeChange(t.SetMode)

	go func() {
		<-ctx.Done()
		t.Quit()
	}()
	t.Run()
}

func localURL(addr string) string {
	if strings.HasPrefix(addr, ":") {
		return "http://localhost" + addr
	}
	return "http://" + addr
}

func openBrowser(url string) {
	var cmd *exec.Cmd
	switch runtime.GOOS {
	case "darwin":
		cmd = exec.Command("open", url)
	case "windows":
		cmd = exec.Command("rundll32", "url.dll,FileProtocolHandler", url)
	default:
		cmd = exec.Command("xdg-open", url)
	}
	if err := cmd.Start(); err != nil {
		slog.Warn("failed to open browser", "url", url, "error", err)
	}
}

// findWebDir searches for the web directory in common locations.
// It checks "web", "../web", "../../web" and then dataDir/web.
func findWebDir(dataDir string) string {
	for _, p := range []string{"web", "../web", "../../web"} {
		if info, err := os.Stat(p); err == nil && info.IsDir() {
			if abs, err := filepath.Abs(p); err == nil {
				return abs
			}
			return p
		}
	}

	dataWeb := filepath.Join(dataDir, "web")
	if info, err := os.Stat(dataWeb); err == nil && info.IsDir() {
		return dataWeb
	}

	return ""
}
