package browser

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"
	"sync"
	"syscall"
	"time"

	"github.com/lance13c/ytmon/internal/logging"
	"github.com/tebeka/selenium"
	"github.com/tebeka/selenium/chrome"
)

const webDriverPollInterval = 250 * time.Millisecond

// webDriverSession drives the browser through a chromedriver service
// attached with the debuggerAddress capability.
type webDriverSession struct {
	service *selenium.Service
	wd      selenium.WebDriver

	closeOnce sync.Once
	closeErr  error
}

func newWebDriverSession(driverPath string, driverPort int, debuggerAddr string) (*webDriverSession, error) {
	service, err := selenium.NewChromeDriverService(driverPath, driverPort, selenium.Output(nil))
	if err != nil {
		return nil, fmt.Errorf("failed to start chromedriver: %w", err)
	}

	caps := selenium.Capabilities{"browserName": "chrome"}
	caps.AddChrome(chrome.Capabilities{
		DebuggerAddr: debuggerAddr,
		W3C:          true,
	})

	wd, err := selenium.NewRemote(caps, fmt.Sprintf("http://localhost:%d/wd/hub", driverPort))
	if err != nil {
		service.Stop()
		return nil, fmt.Errorf("failed to attach to browser at %s: %w", debuggerAddr, err)
	}
	logging.Info("chromedriver session attached to %s", debuggerAddr)

	return &webDriverSession{service: service, wd: wd}, nil
}

func (s *webDriverSession) CurrentURL(ctx context.Context) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	u, err := s.wd.CurrentURL()
	if err != nil {
		return "", classifyWebDriverError(err)
	}
	return u, nil
}

func (s *webDriverSession) VisibleText(ctx context.Context, selector string, timeout time.Duration) (string, error) {
	var (
		found   selenium.WebElement
		lastErr error
	)

	cond := func(wd selenium.WebDriver) (bool, error) {
		if err := ctx.Err(); err != nil {
			return false, err
		}
		el, err := wd.FindElement(selenium.ByCSSSelector, selector)
		if err != nil {
			if errors.Is(classifyWebDriverError(err), ErrConnectionLost) {
				return false, err
			}
			lastErr = err
			return false, nil
		}
		shown, err := el.IsDisplayed()
		if err != nil || !shown {
			lastErr = err
			return false, nil
		}
		found = el
		return true, nil
	}

	if err := s.wd.WaitWithTimeoutAndInterval(cond, timeout, webDriverPollInterval); err != nil {
		if ctx.Err() != nil {
			return "", ctx.Err()
		}
		if classified := classifyWebDriverError(err); errors.Is(classified, ErrConnectionLost) {
			return "", classified
		}
		if lastErr != nil {
			return "", fmt.Errorf("%w: %s: %v", ErrElementNotFound, selector, lastErr)
		}
		return "", fmt.Errorf("%w: %s not visible within %s", ErrElementNotFound, selector, timeout)
	}

	text, err := found.Text()
	if err != nil {
		return "", classifyWebDriverError(err)
	}
	return text, nil
}

func (s *webDriverSession) Close() error {
	s.closeOnce.Do(func() {
		if s.wd != nil {
			if err := s.wd.Quit(); err != nil {
				logging.Warn("WebDriver quit error: %v", err)
				s.closeErr = err
			}
		}
		if s.service != nil {
			if err := s.service.Stop(); err != nil {
				logging.Warn("chromedriver stop error: %v", err)
				if s.closeErr == nil {
					s.closeErr = err
				}
			}
		}
	})
	return s.closeErr
}

// WebDriver error codes that mean the element is missing or not yet usable.
var elementErrorCodes = map[string]bool{
	"no such element":          true,
	"stale element reference":  true,
	"element not interactable": true,
	"element not visible":      true,
	"invalid element state":    true,
}

// Substrings chromedriver reports when the browser or session is gone.
var connectionLostMarkers = []string{
	"invalid session id",
	"no such window",
	"chrome not reachable",
	"disconnected",
	"target window already closed",
	"session deleted",
	"not connected to devtools",
}

// classifyWebDriverError wraps err with ErrElementNotFound or
// ErrConnectionLost when it can tell which applies.
func classifyWebDriverError(err error) error {
	if err == nil {
		return nil
	}

	var urlErr *url.Error
	if errors.As(err, &urlErr) || errors.Is(err, syscall.ECONNREFUSED) || errors.Is(err, syscall.ECONNRESET) {
		return fmt.Errorf("%w: %v", ErrConnectionLost, err)
	}

	msg := strings.ToLower(err.Error())
	var seErr *selenium.Error
	if errors.As(err, &seErr) {
		msg = strings.ToLower(seErr.Err + " " + seErr.Message)
		if elementErrorCodes[seErr.Err] {
			return fmt.Errorf("%w: %v", ErrElementNotFound, err)
		}
	}

	for _, marker := range connectionLostMarkers {
		if strings.Contains(msg, marker) {
			return fmt.Errorf("%w: %v", ErrConnectionLost, err)
		}
	}
	if strings.Contains(msg, "no such element") || strings.Contains(msg, "stale element") {
		return fmt.Errorf("%w: %v", ErrElementNotFound, err)
	}

	return err
}
