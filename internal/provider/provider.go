package provider

import "strings"

// Provider identifies the upstream tile vendor backing a style source.
// One provider backs many styles; auth credentials are keyed by provider,
// not by style.
type Provider string

const (
	None        Provider = ""
	MapTiler    Provider = "maptiler"
	Mapbox      Provider = "mapbox"
	Tracestrack Provider = "tracestrack"
)

// DesktopUserAgent is sent on every upstream request. Several providers
// reject requests that do not look like a browser.
const DesktopUserAgent = "Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/537.36"

// FromID maps a provider identifier from style metadata to a Provider.
// Unknown identifiers keep their value so auth lookup still works, but
// no spoof headers are attached for them.
func FromID(id string) Provider {
	switch strings.ToLower(id) {
	case "maptiler":
		return MapTiler
	case "mapbox":
		return Mapbox
	case "tracestrack":
		return Tracestrack
	default:
		return Provider(id)
	}
}

// FromStyleName derives the provider from a style name when the style
// metadata carries no explicit identifier: the token before the first
// "-" separator (e.g. "maptiler-outdoor" -> maptiler).
func FromStyleName(styleName string) Provider {
	token, _, _ := strings.Cut(styleName, "-")
	return FromID(token)
}

// SpoofHeaders returns the Referer/Origin headers a provider expects.
// API keys are often restricted by referrer, so requests without these
// get rejected even with valid credentials.
func (p Provider) SpoofHeaders() map[string]string {
	switch p {
	case MapTiler:
		return map[string]string{
			"Referer": "https://www.maptiler.com/",
			"Origin":  "https://www.maptiler.com",
		}
	case Mapbox:
		return map[string]string{
			"Referer": "https://www.mapbox.com/",
			"Origin":  "https://www.mapbox.com",
		}
	case Tracestrack:
		return map[string]string{
			"Referer": "https://console.tracestrack.com/",
			"Origin":  "https://console.tracestrack.com",
		}
	default:
		return nil
	}
}

func (p Provider) String() string {
	if p == None {
		return "none"
	}
	return string(p)
}
