package linkedin

import (
	"net/http"
	"net/url"
	"strconv"
	"time"

	"job_fetcher/internal/domain"
)

const (
	// f_WT=2 is LinkedIn's "remote" workplace type.
	remoteWorkplaceType = "2"
	userAgent           = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 " +
		"(KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36"
)

// buildSearchURL translates query into the guest search endpoint. Optional
// filters are only sent when set.
func (s *Source) buildSearchURL(query domain.SearchQuery) string {
	params := url.Values{}

	if query.Keywords != "" {
		params.Set("keywords", query.Keywords)
	}
	if query.Location != "" {
		params.Set("location", query.Location)
	}
	if query.RemoteOnly != nil && *query.RemoteOnly {
		params.Set("f_WT", remoteWorkplaceType)
	}
	if query.EasyApplyOnly != nil && *query.EasyApplyOnly {
		params.Set("f_AL", "true")
	}
	params.Set("f_TPR", recencyParam(query.RecencyWindow, s.defaultRecency))

	return s.baseURL + searchPath + "?" + params.Encode()
}

// recencyParam renders a recency window as LinkedIn's "r<seconds>" code.
// Windows under one second are replaced by fallback.
func recencyParam(window, fallback time.Duration) string {
	seconds := int64(window / time.Second)
	if seconds <= 0 {
		seconds = int64(fallback / time.Second)
	}
	if seconds <= 0 {
		seconds = 1
	}
	return "r" + strconv.FormatInt(seconds, 10)
}

// applyHeaders makes the request look like a desktop browser. Accept-Encoding
// is left to the transport so responses are decompressed transparently.
func applyHeaders(req *http.Request) {
	req.Header.Set("User-Agent", userAgent)
	req.Header.Set("Accept", "text/html,application/xhtml+xml,application/xml;q=0.9,image/webp,*/*;q=0.8")
	req.Header.Set("Accept-Language", "en-US,en;q=0.5")
	req.Header.Set("Cache-Control", "max-age=0")
	req.Header.Set("Upgrade-Insecure-Requests", "1")
}
