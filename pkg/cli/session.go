package cli

import (
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/austinchang/gridsync/pkg/browser"
	"github.com/austinchang/gridsync/pkg/grid"
)

// withPortal launches the browser, gets the operator through the portal's
// entry page and login gate, and hands a ready orchestrator to fn. The
// browser is always closed afterwards. On operation failure fn can call
// snap to capture a diagnostic screenshot.
func (a *app) withPortal(fn func(orch *grid.Orchestrator, snap func(label string)) error) error {
	session, err := browser.Start(a.cfg.Browser, a.log)
	if err != nil {
		return fmt.Errorf("failed to start browser: %w", err)
	}
	defer session.Close()

	opts := a.cfg.Portal.GridOptions()
	page := session.Page()

	nav := grid.NewNavigator(page, opts, a.log)
	if !nav.Navigate() {
		return errors.New("could not reach the portal entry page")
	}

	fmt.Println("If a login page is showing, sign in now; the run continues automatically.")
	if !nav.WaitForLogin() {
		return errors.New("login was not completed in time")
	}

	snap := func(label string) {
		if _, err := session.Screenshot(label); err != nil {
			a.log.Warn("failed to capture screenshot", zap.Error(err))
		}
	}

	orch := grid.NewOrchestrator(page, opts, a.log)

	// The grid arrives empty until a search runs. Best-effort: some portal
	// builds populate it on load and have no search button.
	if !orch.ClickSearch() {
		a.log.Warn("search refresh unavailable, continuing with the current grid")
	}

	return fn(orch, snap)
}
