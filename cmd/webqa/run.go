package main

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/v0xg/webqa/internal/api"
	"github.com/v0xg/webqa/internal/browser"
	"github.com/v0xg/webqa/internal/executor"
	"github.com/v0xg/webqa/internal/page"
	"github.com/v0xg/webqa/internal/scenario"
)

var (
	passColor = color.New(color.FgGreen, color.Bold)
	failColor = color.New(color.FgRed, color.Bold)
	dimColor  = color.New(color.Faint)
)

func storeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "store",
		Short: "Run the web store checks (inventory count, add to cart)",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			steps, err := storeSteps()
			if err != nil {
				return err
			}
			return runSteps(cmd.Context(), steps)
		},
	}
}

func airportsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "airports",
		Short: "Run the Airport Gap API checks (count, specific airports, distance)",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			steps, err := airportSteps(cmd.Context())
			if err != nil {
				return err
			}
			return runSteps(cmd.Context(), steps)
		},
	}
}

func allCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "all",
		Short: "Run every check",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			steps, err := storeSteps()
			if err != nil {
				return err
			}
			apiSteps, dialErr := airportSteps(cmd.Context())
			steps = append(steps, apiSteps...)

			err = runSteps(cmd.Context(), steps)
			if dialErr != nil {
				// the store results are still worth printing
				return dialErr
			}
			return err
		},
	}
}

// storeSession pairs a store page with the browser behind it
type storeSession struct {
	*page.StorePage
	browser *browser.Browser
}

func storeSteps() ([]executor.Step, error) {
	s := current
	locators, err := s.cfg.StoreLocators()
	if err != nil {
		return nil, err
	}

	suite := &scenario.StoreSuite{
		Credentials: scenario.Credentials{Username: s.cfg.Store.Username, Password: s.cfg.Store.Password},
		Logger:      s.log.WithField("suite", "store"),
		Open: func(ctx context.Context) (scenario.Store, func(), error) {
			s.log.Info("Initializing browser")
			b, err := browser.Launch(browser.Options{
				Width:         s.cfg.Browser.Width,
				Height:        s.cfg.Browser.Height,
				Headless:      s.cfg.Browser.Headless,
				ActionTimeout: s.cfg.Browser.ActionTimeout,
				ProfileDir:    s.cfg.Browser.ProfileDir,
				Bin:           s.cfg.Browser.Bin,
				Logger:        s.log,
			})
			if err != nil {
				return nil, nil, err
			}
			sp, err := page.NewStorePage(b.Driver(), s.cfg.Store.URL, locators, page.Options{
				Wait:         s.cfg.Browser.Wait,
				PollInterval: s.cfg.Browser.PollInterval,
				Logger:       s.log,
			})
			if err != nil {
				b.Close()
				return nil, nil, err
			}
			return &storeSession{StorePage: sp, browser: b}, b.Close, nil
		},
		OnFailure: captureFailure,
	}
	return suite.Steps(), nil
}

// captureFailure saves a screenshot of a failed store check and, with
// --verbose, logs what the page looked like
func captureFailure(name string, st scenario.Store, _ error) {
	s := current
	ss, ok := st.(*storeSession)
	if !ok {
		return
	}

	if s.cfg.Reports.Screenshots {
		if png, err := ss.browser.Screenshot(); err != nil {
			s.log.WithError(err).Warn("Failure screenshot not taken")
		} else {
			_, _ = s.recorder.Screenshot(name, png, uint(s.cfg.Reports.ScreenshotWidth))
		}
	}

	if verbose {
		pm, err := ss.browser.Snapshot()
		if err != nil {
			s.log.WithError(err).Debug("Page snapshot failed")
			return
		}
		for _, line := range pm.Summary() {
			s.log.Debug(line)
		}
		s.log.Debugf("Inventory names: %v", ss.InventoryNames())
	}
}

func airportSteps(ctx context.Context) ([]executor.Step, error) {
	s := current
	suite, err := scenario.DialSuite(ctx, s.cfg.API.BaseURL, api.AirportGapOptions{
		Options: api.Options{
			HTTPClient: &http.Client{Timeout: s.cfg.API.Timeout},
			Logger:     s.log.WithField("suite", "airports"),
		},
		ProbePath:    s.cfg.API.ProbePath,
		ProbeTimeout: s.cfg.API.ProbeTimeout,
	})
	if err != nil {
		return nil, err
	}
	return suite.Steps(), nil
}

func runSteps(ctx context.Context, steps []executor.Step) error {
	s := current
	fmt.Printf("→ Running %d checks\n", len(steps))

	res, err := executor.Execute(ctx, steps, executor.Options{
		Logger:   s.log,
		Recorder: s.recorder,
		Progress: printProgress,
	})
	if err != nil {
		return err
	}

	passed, failed := len(res.Passed()), len(res.Failed())
	summary := fmt.Sprintf("%d passed, %d failed", passed, failed)
	if failed > 0 {
		fmt.Println(failColor.Sprint("✗ ") + summary)
		fmt.Println(dimColor.Sprintf("  results appended to %s", s.recorder.LogPath()))
		return errChecksFailed
	}
	fmt.Println(passColor.Sprint("✓ ") + summary)
	return nil
}

func printProgress(i, total int, res executor.StepResult) {
	took := dimColor.Sprintf("(%s)", res.Duration.Round(time.Millisecond))
	if res.Passed() {
		fmt.Printf("  [%d/%d] %s %s %s\n", i+1, total, passColor.Sprint("PASS"), res.Name, took)
		return
	}
	fmt.Printf("  [%d/%d] %s %s %s\n", i+1, total, failColor.Sprint("FAIL"), res.Name, took)
	fmt.Printf("        %s\n", res.Err)
}
