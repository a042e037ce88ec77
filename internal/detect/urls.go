package detect

import (
	"context"
	"net/url"
	"regexp"
	"strings"

	"github.com/MikeSquared-Agency/lure/internal/intel"
)

// legitimateDomains is the whitelist of registrable hosts treated as
// known-good link targets. Read-only after init.
var legitimateDomains = []string{
	"amazon.in",
	"amazon.com",
	"flipkart.com",
	"paytm.com",
	"phonepe.com",
	"google.com",
	"sbi.co.in",
	"onlinesbi.sbi",
	"icicibank.com",
	"hdfcbank.com",
	"axisbank.com",
	"irctc.co.in",
	"incometax.gov.in",
	"uidai.gov.in",
	"npci.org.in",
	"rbi.org.in",
	"myntra.com",
	"swiggy.com",
	"zomato.com",
	"bluedart.com",
	"delhivery.com",
	"indiapost.gov.in",
}

var layerURLRe = regexp.MustCompile(`https?://[^\s<>"']+`)

// urlLayer clears messages whose only notable content is links to
// known-legitimate domains. A non-whitelisted link is not by itself a scam
// signal, so that case continues down the cascade.
type urlLayer struct{}

func (l *urlLayer) Name() string { return "url_legitimacy" }

func (l *urlLayer) Evaluate(_ context.Context, in Input) (Verdict, bool) {
	raw := layerURLRe.FindAllString(in.Latest, -1)
	if len(raw) == 0 {
		return Verdict{}, false
	}

	for _, u := range raw {
		if !hostIsLegitimate(intel.TrimURL(u)) {
			return Verdict{}, false
		}
	}

	// Every link checks out, but a legitimate URL pasted into a coercive
	// message must not launder the rest of the text.
	if len(intel.Keywords(in.Latest)) > 0 {
		return Verdict{}, false
	}

	return Verdict{
		IsScam:          false,
		Confidence:      0.6,
		ScamType:        ScamTypeNone,
		DecidedBy:       l.Name(),
		MatchedPatterns: []string{"whitelisted_urls_only"},
	}, true
}

// hostIsLegitimate parses the URL's host and checks it against the
// whitelist. The match is anchored at a label boundary: the host must equal
// an entry or end with "." + entry. A plain substring or suffix check is a
// spoofing vector ("amazon.in.verify-now.ru" contains "amazon.in" but
// belongs to verify-now.ru).
func hostIsLegitimate(rawURL string) bool {
	parsed, err := url.Parse(rawURL)
	if err != nil {
		return false
	}
	host := strings.ToLower(parsed.Hostname()) // Hostname strips any port

	for _, domain := range legitimateDomains {
		if host == domain || strings.HasSuffix(host, "."+domain) {
			return true
		}
	}
	return false
}
