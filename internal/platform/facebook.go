package platform

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
)

// FacebookAdapter publishes to a Facebook page through the Graph API.
// Text-only posts are a single /feed call. Posts with photos upload each
// photo unpublished first and attach them to the feed post; if any upload
// fails the attempt fails as a whole.
type FacebookAdapter struct {
	rest    *restClient
	baseURL string
}

func NewFacebookAdapter(httpClient *http.Client) *FacebookAdapter {
	return &FacebookAdapter{rest: newRESTClient(httpClient), baseURL: graphAPIBase}
}

func (a *FacebookAdapter) Name() Platform { return Facebook }

func (a *FacebookAdapter) Requirements() Requirements { return RequirementsFor(Facebook) }

func (a *FacebookAdapter) ValidateCredentials(ctx context.Context, creds Credentials) bool {
	c, err := credsAs[FacebookCredentials](Facebook, creds)
	if err != nil || c.PageID == "" || c.PageToken == "" {
		return false
	}
	u := fmt.Sprintf("%s/%s?fields=id&access_token=%s", a.baseURL, c.PageID, url.QueryEscape(c.PageToken))
	var out struct {
		ID string `json:"id"`
	}
	if err := a.rest.doJSON(ctx, Facebook, "validate", http.MethodGet, u, nil, nil, &out); err != nil {
		return false
	}
	return out.ID != ""
}

func (a *FacebookAdapter) Publish(ctx context.Context, post NormalizedPost, creds Credentials) (*Result, error) {
	c, err := credsAs[FacebookCredentials](Facebook, creds)
	if err != nil {
		return nil, err
	}

	body := map[string]any{
		"message":      post.Text,
		"access_token": c.PageToken,
	}

	if len(post.MediaURLs) > 0 {
		attached := make([]map[string]string, 0, len(post.MediaURLs))
		for _, mediaURL := range post.MediaURLs {
			photoID, err := a.uploadPhoto(ctx, c, mediaURL)
			if err != nil {
				return nil, err
			}
			attached = append(attached, map[string]string{"media_fbid": photoID})
		}
		body["attached_media"] = attached
	}

	var out struct {
		ID string `json:"id"`
	}
	err = a.rest.doJSON(ctx, Facebook, "feed", http.MethodPost,
		fmt.Sprintf("%s/%s/feed", a.baseURL, c.PageID), nil, body, &out)
	if err != nil {
		return nil, err
	}

	return &Result{
		Platform:       Facebook,
		PlatformPostID: out.ID,
		URL:            "https://www.facebook.com/" + out.ID,
	}, nil
}

func (a *FacebookAdapter) uploadPhoto(ctx context.Context, c FacebookCredentials, mediaURL string) (string, error) {
	var out struct {
		ID string `json:"id"`
	}
	err := a.rest.doJSON(ctx, Facebook, "photos", http.MethodPost,
		fmt.Sprintf("%s/%s/photos", a.baseURL, c.PageID), nil,
		map[string]any{
			"url":          mediaURL,
			"published":    false,
			"access_token": c.PageToken,
		}, &out)
	if err != nil {
		return "", err
	}
	return out.ID, nil
}
