package platform

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/dghubble/oauth1"
)

const twitterAPIBase = "https://api.x.com"

// TwitterAdapter posts tweets through the v2 API with OAuth 1.0a user
// context. The v2 create-tweet call is single-step.
type TwitterAdapter struct {
	base    *http.Client
	baseURL string
}

func NewTwitterAdapter(httpClient *http.Client) *TwitterAdapter {
	return &TwitterAdapter{base: httpClient, baseURL: twitterAPIBase}
}

func (a *TwitterAdapter) Name() Platform { return Twitter }

func (a *TwitterAdapter) Requirements() Requirements { return RequirementsFor(Twitter) }

// signedClient builds an OAuth1-signing client on top of the adapter's base
// transport (the base is injectable for tests).
func (a *TwitterAdapter) signedClient(ctx context.Context, c TwitterCredentials) (*restClient, context.Context) {
	if a.base != nil {
		ctx = context.WithValue(ctx, oauth1.HTTPClient, a.base)
	}
	cfg := oauth1.NewConfig(c.ConsumerKey, c.ConsumerSecret)
	token := oauth1.NewToken(c.AccessToken, c.AccessTokenSecret)
	return newRESTClient(cfg.Client(ctx, token)), ctx
}

func (a *TwitterAdapter) ValidateCredentials(ctx context.Context, creds Credentials) bool {
	c, err := credsAs[TwitterCredentials](Twitter, creds)
	if err != nil || c.ConsumerKey == "" || c.AccessToken == "" {
		return false
	}
	rest, ctx := a.signedClient(ctx, c)
	var out struct {
		Data struct {
			ID string `json:"id"`
		} `json:"data"`
	}
	err = rest.doJSON(ctx, Twitter, "validate", http.MethodGet, a.baseURL+"/2/users/me", nil, nil, &out)
	return err == nil && out.Data.ID != ""
}

func (a *TwitterAdapter) Publish(ctx context.Context, post NormalizedPost, creds Credentials) (*Result, error) {
	c, err := credsAs[TwitterCredentials](Twitter, creds)
	if err != nil {
		return nil, err
	}
	rest, ctx := a.signedClient(ctx, c)

	var out struct {
		Data struct {
			ID   string `json:"id"`
			Text string `json:"text"`
		} `json:"data"`
	}
	err = rest.doJSON(ctx, Twitter, "tweets", http.MethodPost,
		a.baseURL+"/2/tweets", nil, map[string]string{"text": post.Text}, &out)
	if err != nil {
		return nil, err
	}
	if out.Data.ID == "" {
		return nil, FatalErr(Twitter, "tweets", errors.New("empty tweet id in response"))
	}

	return &Result{
		Platform:       Twitter,
		PlatformPostID: out.Data.ID,
		URL:            fmt.Sprintf("https://x.com/i/status/%s", out.Data.ID),
	}, nil
}
