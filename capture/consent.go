package capture

import (
	"time"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/proto"
)

// consentSelectors are tried in order against Google's interstitial.
var consentSelectors = []string{
	"#L2AGLb",
	`form[action*="consent"] [type="submit"]`,
}

// consentTextJS clicks any button whose label matches the Japanese or
// English agree wording. Returns true on a click.
const consentTextJS = `() => {
	const re = /(同意|I agree|Accept all)/i;
	for (const b of document.querySelectorAll('button')) {
		if (re.test(b.innerText || '')) { b.click(); return true; }
	}
	return false;
}`

// DismissConsent clicks through a Google consent interstitial if one is
// present. The result reports whether anything was clicked; absence of a
// banner is the normal case, not an error.
func DismissConsent(page *rod.Page) bool {
	for _, sel := range consentSelectors {
		el, err := page.Timeout(2 * time.Second).Element(sel)
		if err != nil {
			continue
		}
		if err := el.Click(proto.InputMouseButtonLeft, 1); err != nil {
			continue
		}
		time.Sleep(500 * time.Millisecond)
		return true
	}

	res, err := page.Timeout(2 * time.Second).Eval(consentTextJS)
	if err != nil {
		return false
	}
	if res.Value.Bool() {
		time.Sleep(500 * time.Millisecond)
		return true
	}
	return false
}
