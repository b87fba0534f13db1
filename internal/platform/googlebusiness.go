package platform

import (
	"context"
	"errors"
	"fmt"
	"net/http"
)

const gbpAPIBase = "https://mybusiness.googleapis.com/v4"

// GoogleBusinessAdapter creates local posts on a Business Profile location.
type GoogleBusinessAdapter struct {
	rest    *restClient
	baseURL string
}

func NewGoogleBusinessAdapter(httpClient *http.Client) *GoogleBusinessAdapter {
	return &GoogleBusinessAdapter{rest: newRESTClient(httpClient), baseURL: gbpAPIBase}
}

func (a *GoogleBusinessAdapter) Name() Platform { return GoogleBusiness }

func (a *GoogleBusinessAdapter) Requirements() Requirements { return RequirementsFor(GoogleBusiness) }

func (a *GoogleBusinessAdapter) authHeaders(c GoogleBusinessCredentials) map[string]string {
	return map[string]string{"Authorization": "Bearer " + c.AccessToken}
}

func (a *GoogleBusinessAdapter) locationPath(c GoogleBusinessCredentials) string {
	return fmt.Sprintf("accounts/%s/locations/%s", c.AccountID, c.LocationID)
}

func (a *GoogleBusinessAdapter) ValidateCredentials(ctx context.Context, creds Credentials) bool {
	c, err := credsAs[GoogleBusinessCredentials](GoogleBusiness, creds)
	if err != nil || c.AccountID == "" || c.LocationID == "" || c.AccessToken == "" {
		return false
	}
	var out struct {
		Name string `json:"name"`
	}
	err = a.rest.doJSON(ctx, GoogleBusiness, "validate", http.MethodGet,
		fmt.Sprintf("%s/%s", a.baseURL, a.locationPath(c)), a.authHeaders(c), nil, &out)
	return err == nil
}

func (a *GoogleBusinessAdapter) Publish(ctx context.Context, post NormalizedPost, creds Credentials) (*Result, error) {
	c, err := credsAs[GoogleBusinessCredentials](GoogleBusiness, creds)
	if err != nil {
		return nil, err
	}

	body := map[string]any{
		"languageCode": "en-US",
		"topicType":    "STANDARD",
		"summary":      post.Text,
	}
	if len(post.MediaURLs) > 0 {
		// Local posts accept a single photo.
		body["media"] = []map[string]string{{
			"mediaFormat": "PHOTO",
			"sourceUrl":   post.MediaURLs[0],
		}}
	}

	var out struct {
		Name      string `json:"name"`
		SearchURL string `json:"searchUrl"`
	}
	err = a.rest.doJSON(ctx, GoogleBusiness, "localPosts", http.MethodPost,
		fmt.Sprintf("%s/%s/localPosts", a.baseURL, a.locationPath(c)), a.authHeaders(c), body, &out)
	if err != nil {
		return nil, err
	}
	if out.Name == "" {
		return nil, FatalErr(GoogleBusiness, "localPosts", errors.New("empty post name in response"))
	}

	return &Result{
		Platform:       GoogleBusiness,
		PlatformPostID: out.Name,
		URL:            out.SearchURL,
	}, nil
}
