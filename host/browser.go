package host

import (
	"io"

	"github.com/pkg/browser"
)

func init() {
	// The launcher's own output would interleave with the daemon log.
	browser.Stdout = io.Discard
	browser.Stderr = io.Discard
}

// OpenBrowser launches url in the user's default browser.
func OpenBrowser(url string) error {
	return browser.OpenURL(url)
}
