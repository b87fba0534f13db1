package platform

import "net/http"

// NewAdapters builds the full adapter set sharing one HTTP client. Pass nil
// to use a default client with a sane timeout.
func NewAdapters(httpClient *http.Client) map[Platform]Adapter {
	return map[Platform]Adapter{
		Instagram:      NewInstagramAdapter(httpClient),
		Facebook:       NewFacebookAdapter(httpClient),
		LinkedIn:       NewLinkedInAdapter(httpClient),
		Twitter:        NewTwitterAdapter(httpClient),
		TikTok:         NewTikTokAdapter(httpClient),
		GoogleBusiness: NewGoogleBusinessAdapter(httpClient),
		Nextdoor:       NewNextdoorAdapter(httpClient),
	}
}
