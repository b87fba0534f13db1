// Package platform defines the per-destination adapter contract: credential
// validation, capability descriptors, and the publish call sequence. Each
// adapter normalizes its platform's wire protocol into the uniform Result /
// Error types, so nothing platform-specific escapes this package.
package platform

import (
	"context"
	"fmt"
)

// Platform identifies a publishing destination.
type Platform string

const (
	Instagram      Platform = "instagram"
	Facebook       Platform = "facebook"
	LinkedIn       Platform = "linkedin"
	Twitter        Platform = "twitter"
	TikTok         Platform = "tiktok"
	GoogleBusiness Platform = "google_business"
	Nextdoor       Platform = "nextdoor"
)

// All returns every supported platform, in a stable order.
func All() []Platform {
	return []Platform{Instagram, Facebook, LinkedIn, Twitter, TikTok, GoogleBusiness, Nextdoor}
}

// Parse validates a platform identifier coming from the API or storage.
func Parse(s string) (Platform, error) {
	p := Platform(s)
	for _, known := range All() {
		if p == known {
			return p, nil
		}
	}
	return "", fmt.Errorf("unknown platform %q", s)
}

// NormalizedPost is the platform-independent publish payload. Adapters
// transform it into their own wire shapes.
type NormalizedPost struct {
	PostID    string
	OrgID     string
	Text      string
	MediaURLs []string
}

// Result is the uniform outcome of a successful publish call.
type Result struct {
	Platform       Platform
	PlatformPostID string
	URL            string
}

// Requirements is a static capability descriptor consumed by the validator
// and the UI collaborators.
type Requirements struct {
	MaxChars         int
	MaxImages        int
	ImageFormats     []string
	VideoFormats     []string
	RequiresMedia    bool
	SupportsCarousel bool
	SupportsStories  bool
	SupportsReels    bool
}

// Adapter is implemented once per destination.
//
// Publish performs the platform-specific call sequence, which may be
// multi-step. It is all-or-nothing: if any step fails the whole attempt is
// reported as failed via a *Error, never as a partial success.
type Adapter interface {
	Name() Platform

	// Requirements returns the platform's static capability descriptor.
	Requirements() Requirements

	// ValidateCredentials is a lightweight reachability/auth check.
	// It never panics and returns false on any failure.
	ValidateCredentials(ctx context.Context, creds Credentials) bool

	Publish(ctx context.Context, post NormalizedPost, creds Credentials) (*Result, error)
}

// requirements holds the per-platform capability descriptors. Character
// ceilings and media rules follow each platform's published limits.
var requirements = map[Platform]Requirements{
	Instagram: {
		MaxChars:         2200,
		MaxImages:        10,
		ImageFormats:     []string{"jpg", "jpeg", "png"},
		VideoFormats:     []string{"mp4", "mov"},
		RequiresMedia:    true,
		SupportsCarousel: true,
		SupportsStories:  true,
		SupportsReels:    true,
	},
	Facebook: {
		MaxChars:         63206,
		MaxImages:        10,
		ImageFormats:     []string{"jpg", "jpeg", "png", "gif"},
		VideoFormats:     []string{"mp4", "mov"},
		SupportsCarousel: true,
		SupportsStories:  true,
		SupportsReels:    true,
	},
	LinkedIn: {
		MaxChars:     3000,
		MaxImages:    9,
		ImageFormats: []string{"jpg", "jpeg", "png"},
		VideoFormats: []string{"mp4"},
	},
	Twitter: {
		MaxChars:         280,
		MaxImages:        4,
		ImageFormats:     []string{"jpg", "jpeg", "png", "gif", "webp"},
		VideoFormats:     []string{"mp4"},
		SupportsCarousel: false,
	},
	TikTok: {
		MaxChars:      2200,
		MaxImages:     35,
		ImageFormats:  []string{"jpg", "jpeg", "webp"},
		VideoFormats:  []string{"mp4", "mov", "webm"},
		RequiresMedia: true,
		SupportsReels: true,
	},
	GoogleBusiness: {
		MaxChars:     1500,
		MaxImages:    1,
		ImageFormats: []string{"jpg", "jpeg", "png"},
	},
	Nextdoor: {
		MaxChars:     10000,
		MaxImages:    10,
		ImageFormats: []string{"jpg", "jpeg", "png", "gif"},
		VideoFormats: []string{"mp4"},
	},
}

// RequirementsFor returns the capability descriptor for p. Unknown platforms
// get a zero descriptor; callers are expected to have parsed p first.
func RequirementsFor(p Platform) Requirements {
	return requirements[p]
}
