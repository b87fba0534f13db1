package platform

import (
	"context"
	"errors"
	"fmt"
	"net/http"
)

const tikTokAPIBase = "https://open.tiktokapis.com"

// TikTokAdapter publishes through the Content Posting API. The protocol is
// two-step: init the publish (TikTok pulls the media from our URL), then
// poll the publish status once to confirm the upload was accepted. A FAILED
// status on the second step fails the whole attempt.
type TikTokAdapter struct {
	rest    *restClient
	baseURL string
}

func NewTikTokAdapter(httpClient *http.Client) *TikTokAdapter {
	return &TikTokAdapter{rest: newRESTClient(httpClient), baseURL: tikTokAPIBase}
}

func (a *TikTokAdapter) Name() Platform { return TikTok }

func (a *TikTokAdapter) Requirements() Requirements { return RequirementsFor(TikTok) }

func (a *TikTokAdapter) authHeaders(c TikTokCredentials) map[string]string {
	return map[string]string{"Authorization": "Bearer " + c.AccessToken}
}

func (a *TikTokAdapter) ValidateCredentials(ctx context.Context, creds Credentials) bool {
	c, err := credsAs[TikTokCredentials](TikTok, creds)
	if err != nil || c.AccessToken == "" {
		return false
	}
	var out struct {
		Data struct {
			User struct {
				OpenID string `json:"open_id"`
			} `json:"user"`
		} `json:"data"`
	}
	err = a.rest.doJSON(ctx, TikTok, "validate", http.MethodGet,
		a.baseURL+"/v2/user/info/?fields=open_id", a.authHeaders(c), nil, &out)
	return err == nil
}

func (a *TikTokAdapter) Publish(ctx context.Context, post NormalizedPost, creds Credentials) (*Result, error) {
	c, err := credsAs[TikTokCredentials](TikTok, creds)
	if err != nil {
		return nil, err
	}
	if len(post.MediaURLs) == 0 {
		return nil, FatalErr(TikTok, "publish", errors.New("tiktok requires a video asset"))
	}

	initBody := map[string]any{
		"post_info": map[string]any{
			"title":         post.Text,
			"privacy_level": "PUBLIC_TO_EVERYONE",
		},
		"source_info": map[string]any{
			"source":    "PULL_FROM_URL",
			"video_url": post.MediaURLs[0],
		},
	}

	var initOut struct {
		Data struct {
			PublishID string `json:"publish_id"`
		} `json:"data"`
	}
	err = a.rest.doJSON(ctx, TikTok, "publish_init", http.MethodPost,
		a.baseURL+"/v2/post/publish/video/init/", a.authHeaders(c), initBody, &initOut)
	if err != nil {
		return nil, err
	}
	if initOut.Data.PublishID == "" {
		return nil, FatalErr(TikTok, "publish_init", errors.New("empty publish id in response"))
	}

	var statusOut struct {
		Data struct {
			Status     string `json:"status"`
			FailReason string `json:"fail_reason"`
		} `json:"data"`
	}
	err = a.rest.doJSON(ctx, TikTok, "publish_status", http.MethodPost,
		a.baseURL+"/v2/post/publish/status/fetch/", a.authHeaders(c),
		map[string]string{"publish_id": initOut.Data.PublishID}, &statusOut)
	if err != nil {
		return nil, err
	}
	if statusOut.Data.Status == "FAILED" {
		return nil, FatalErr(TikTok, "publish_status",
			fmt.Errorf("publish rejected: %s", statusOut.Data.FailReason))
	}

	return &Result{
		Platform:       TikTok,
		PlatformPostID: initOut.Data.PublishID,
	}, nil
}
