// Package browser drives a local Chromium through go-rod and exposes it as a page.Driver.
package browser

import (
	"errors"
	"fmt"
	"time"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/launcher"
	"github.com/go-rod/rod/lib/proto"
	"github.com/sirupsen/logrus"

	"github.com/v0xg/webqa/internal/page"
)

// ErrNoBrowser is returned by Launch when no Chromium binary can be found
var ErrNoBrowser = errors.New("no Chromium/Chrome binary found")

// Options configures the browser session
type Options struct {
	Width         int
	Height        int
	Headless      bool
	ActionTimeout time.Duration // Upper bound for a single click/type/read
	ProfileDir    string        // Chrome/Chromium profile directory for authenticated sessions
	Bin           string        // Explicit browser binary; looked up when empty
	Logger        logrus.FieldLogger
}

// Browser wraps the Rod browser and its single page
type Browser struct {
	browser *rod.Browser
	page    *rod.Page
	opts    Options
	log     logrus.FieldLogger
}

// Launch starts a browser and opens a blank page sized to the configured viewport
func Launch(opts Options) (*Browser, error) {
	if opts.Width == 0 {
		opts.Width = 1280
	}
	if opts.Height == 0 {
		opts.Height = 720
	}
	if opts.ActionTimeout == 0 {
		opts.ActionTimeout = 10 * time.Second
	}
	if opts.Logger == nil {
		opts.Logger = logrus.StandardLogger()
	}
	log := opts.Logger.WithField("component", "browser")

	bin := opts.Bin
	if bin == "" {
		path, has := launcher.LookPath()
		if !has {
			return nil, ErrNoBrowser
		}
		bin = path
	}

	l := launcher.New().Bin(bin).Headless(opts.Headless)
	if opts.ProfileDir != "" {
		l = l.UserDataDir(opts.ProfileDir)
	}

	log.Infof("Launching browser %s (headless=%t)", bin, opts.Headless)
	u, err := l.Launch()
	if err != nil {
		return nil, fmt.Errorf("launch browser: %w", err)
	}

	b := rod.New().ControlURL(u)
	if err := b.Connect(); err != nil {
		return nil, fmt.Errorf("connect to browser: %w", err)
	}

	p, err := b.Page(proto.TargetCreateTarget{URL: "about:blank"})
	if err != nil {
		_ = b.Close()
		return nil, fmt.Errorf("open page: %w", err)
	}

	err = p.SetViewport(&proto.EmulationSetDeviceMetricsOverride{
		Width:             opts.Width,
		Height:            opts.Height,
		DeviceScaleFactor: 1,
	})
	if err != nil {
		_ = b.Close()
		return nil, fmt.Errorf("set viewport: %w", err)
	}

	return &Browser{browser: b, page: p, opts: opts, log: log}, nil
}

// Close cleans up browser resources
func (b *Browser) Close() {
	b.log.Info("Quitting browser")
	if b.page != nil {
		_ = b.page.Close()
	}
	if b.browser != nil {
		_ = b.browser.Close()
	}
}

// Page returns the underlying Rod page
func (b *Browser) Page() *rod.Page {
	return b.page
}

// Driver returns the page.Driver view of this browser
func (b *Browser) Driver() page.Driver {
	return &driver{page: b.page, actionTimeout: b.opts.ActionTimeout}
}

// Screenshot captures the viewport as PNG
func (b *Browser) Screenshot() ([]byte, error) {
	data, err := b.page.Screenshot(false, &proto.PageCaptureScreenshot{
		Format: proto.PageCaptureScreenshotFormatPng,
	})
	if err != nil {
		return nil, fmt.Errorf("capture screenshot: %w", err)
	}
	return data, nil
}
