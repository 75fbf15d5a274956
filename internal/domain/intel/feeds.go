package intel

import (
	"bufio"
	"fmt"
	"os"
	"strings"
)

// bundledFeedVersion identifies the deny-list snapshot compiled into the
// binary. Bumped whenever the list below changes.
const bundledFeedVersion = "2025.08.1"

// bundledDenyList is the compiled-in deny-list snapshot. Entries are
// normalized at bundle construction, so mixed formatting here is fine.
// The list is a curated sample of confirmed phishing apexes; deployments
// append their own feed via DefaultBundleWithExtra.
var bundledDenyList = []string{
	"evil.tk",
	"phishing-site.ml",
	"malware-download.ga",
	"secure-paypal-login.tk",
	"account-verify.cf",
	"appleid-confirm.gq",
	"wallet-validation.xyz",
	"login-microsoftonline.top",
	"netflix-billing-update.icu",
	"bankofamerica-alerts.buzz",
	"chase-secure-message.click",
	"docusign-review.work",
	"irs-tax-refund.loan",
	"dhl-parcel-tracking.rest",
	"free-giftcard.win",
	"crypto-airdrop.site",
	"metamask-restore.online",
	"binance-bonus.club",
	"covid-relief-fund.info",
	"qr-menu-update.pw",
}

// DefaultBundle builds the bundled deny-list snapshot. Constructed once at
// startup and passed into the orchestrator; never ambient global state.
func DefaultBundle() *Bundle {
	return NewBundle(bundledDenyList, bundledFeedVersion, "bundled")
}

// DefaultBundleWithExtra merges a newline-delimited feed file into the
// bundled list. Blank lines and '#' comments are skipped. An empty path
// returns the plain bundled snapshot.
func DefaultBundleWithExtra(feedPath string) (*Bundle, error) {
	if feedPath == "" {
		return DefaultBundle(), nil
	}

	f, err := os.Open(feedPath)
	if err != nil {
		return nil, fmt.Errorf("intel feed %s: %w", feedPath, err)
	}
	defer f.Close()

	domains := append([]string(nil), bundledDenyList...)
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		domains = append(domains, line)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("intel feed %s: %w", feedPath, err)
	}
	return NewBundle(domains, bundledFeedVersion+"+local", feedPath), nil
}
