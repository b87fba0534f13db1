package platform

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
)

const graphAPIBase = "https://graph.facebook.com/v19.0"

// InstagramAdapter publishes through the Instagram Graph API. Publishing is
// a two-step protocol: create one media container (or a carousel container
// referencing per-image children), then publish the container. Any step
// failing fails the whole attempt.
type InstagramAdapter struct {
	rest    *restClient
	baseURL string
}

func NewInstagramAdapter(httpClient *http.Client) *InstagramAdapter {
	return &InstagramAdapter{rest: newRESTClient(httpClient), baseURL: graphAPIBase}
}

func (a *InstagramAdapter) Name() Platform { return Instagram }

func (a *InstagramAdapter) Requirements() Requirements { return RequirementsFor(Instagram) }

func (a *InstagramAdapter) ValidateCredentials(ctx context.Context, creds Credentials) bool {
	c, err := credsAs[InstagramCredentials](Instagram, creds)
	if err != nil || c.AccountID == "" || c.AccessToken == "" {
		return false
	}
	u := fmt.Sprintf("%s/%s?fields=id&access_token=%s", a.baseURL, c.AccountID, url.QueryEscape(c.AccessToken))
	var out struct {
		ID string `json:"id"`
	}
	if err := a.rest.doJSON(ctx, Instagram, "validate", http.MethodGet, u, nil, nil, &out); err != nil {
		return false
	}
	return out.ID != ""
}

type igContainerResponse struct {
	ID string `json:"id"`
}

func (a *InstagramAdapter) Publish(ctx context.Context, post NormalizedPost, creds Credentials) (*Result, error) {
	c, err := credsAs[InstagramCredentials](Instagram, creds)
	if err != nil {
		return nil, err
	}
	if len(post.MediaURLs) == 0 {
		return nil, FatalErr(Instagram, "publish", errors.New("instagram requires at least one media asset"))
	}

	var containerID string
	if len(post.MediaURLs) == 1 {
		containerID, err = a.createContainer(ctx, c, map[string]string{
			"image_url": post.MediaURLs[0],
			"caption":   post.Text,
		})
	} else {
		containerID, err = a.createCarousel(ctx, c, post)
	}
	if err != nil {
		return nil, err
	}

	var published igContainerResponse
	err = a.rest.doJSON(ctx, Instagram, "media_publish", http.MethodPost,
		fmt.Sprintf("%s/%s/media_publish", a.baseURL, c.AccountID),
		nil,
		map[string]string{
			"creation_id":  containerID,
			"access_token": c.AccessToken,
		},
		&published)
	if err != nil {
		return nil, err
	}

	return &Result{
		Platform:       Instagram,
		PlatformPostID: published.ID,
		URL:            "https://www.instagram.com/p/" + published.ID,
	}, nil
}

func (a *InstagramAdapter) createContainer(ctx context.Context, c InstagramCredentials, params map[string]string) (string, error) {
	body := map[string]string{"access_token": c.AccessToken}
	for k, v := range params {
		body[k] = v
	}
	var out igContainerResponse
	err := a.rest.doJSON(ctx, Instagram, "media", http.MethodPost,
		fmt.Sprintf("%s/%s/media", a.baseURL, c.AccountID), nil, body, &out)
	if err != nil {
		return "", err
	}
	if out.ID == "" {
		return "", FatalErr(Instagram, "media", errors.New("empty container id"))
	}
	return out.ID, nil
}

func (a *InstagramAdapter) createCarousel(ctx context.Context, c InstagramCredentials, post NormalizedPost) (string, error) {
	children := make([]string, 0, len(post.MediaURLs))
	for _, u := range post.MediaURLs {
		id, err := a.createContainer(ctx, c, map[string]string{
			"image_url":        u,
			"is_carousel_item": "true",
		})
		if err != nil {
			return "", err
		}
		children = append(children, id)
	}
	return a.createContainer(ctx, c, map[string]string{
		"media_type": "CAROUSEL",
		"caption":    post.Text,
		"children":   strings.Join(children, ","),
	})
}
