package platform

import (
	"encoding/json"
	"fmt"
)

// Credentials is a closed union of per-platform credential variants. Each
// adapter statically requires only the variant it understands; handing an
// adapter the wrong variant is a fatal publish error, not a panic.
type Credentials interface {
	Platform() Platform
}

type InstagramCredentials struct {
	AccountID   string `json:"account_id"`
	AccessToken string `json:"access_token"`
}

func (InstagramCredentials) Platform() Platform { return Instagram }

type FacebookCredentials struct {
	PageID    string `json:"page_id"`
	PageToken string `json:"page_token"`
}

func (FacebookCredentials) Platform() Platform { return Facebook }

type LinkedInCredentials struct {
	AuthorURN   string `json:"author_urn"`
	AccessToken string `json:"access_token"`
}

func (LinkedInCredentials) Platform() Platform { return LinkedIn }

type TwitterCredentials struct {
	ConsumerKey       string `json:"consumer_key"`
	ConsumerSecret    string `json:"consumer_secret"`
	AccessToken       string `json:"access_token"`
	AccessTokenSecret string `json:"access_token_secret"`
}

func (TwitterCredentials) Platform() Platform { return Twitter }

type TikTokCredentials struct {
	OpenID      string `json:"open_id"`
	AccessToken string `json:"access_token"`
}

func (TikTokCredentials) Platform() Platform { return TikTok }

type GoogleBusinessCredentials struct {
	AccountID   string `json:"account_id"`
	LocationID  string `json:"location_id"`
	AccessToken string `json:"access_token"`
}

func (GoogleBusinessCredentials) Platform() Platform { return GoogleBusiness }

type NextdoorCredentials struct {
	AgencyID    string `json:"agency_id"`
	AccessToken string `json:"access_token"`
}

func (NextdoorCredentials) Platform() Platform { return Nextdoor }

// DecodeCredentials resolves the stored JSON credential blob for p into the
// right typed variant.
func DecodeCredentials(p Platform, raw json.RawMessage) (Credentials, error) {
	var (
		creds Credentials
		err   error
	)
	switch p {
	case Instagram:
		var c InstagramCredentials
		err = json.Unmarshal(raw, &c)
		creds = c
	case Facebook:
		var c FacebookCredentials
		err = json.Unmarshal(raw, &c)
		creds = c
	case LinkedIn:
		var c LinkedInCredentials
		err = json.Unmarshal(raw, &c)
		creds = c
	case Twitter:
		var c TwitterCredentials
		err = json.Unmarshal(raw, &c)
		creds = c
	case TikTok:
		var c TikTokCredentials
		err = json.Unmarshal(raw, &c)
		creds = c
	case GoogleBusiness:
		var c GoogleBusinessCredentials
		err = json.Unmarshal(raw, &c)
		creds = c
	case Nextdoor:
		var c NextdoorCredentials
		err = json.Unmarshal(raw, &c)
		creds = c
	default:
		return nil, fmt.Errorf("unknown platform %q", p)
	}
	if err != nil {
		return nil, fmt.Errorf("decode %s credentials: %w", p, err)
	}
	return creds, nil
}

// credsAs asserts creds to the adapter's variant. A mismatch is a fatal
// publish error for that adapter.
func credsAs[T Credentials](p Platform, creds Credentials) (T, error) {
	c, ok := creds.(T)
	if !ok {
		var zero T
		return zero, FatalErr(p, "credentials", fmt.Errorf("expected %T, got %T", zero, creds))
	}
	return c, nil
}
