package platform

import (
	"context"
	"errors"
	"net/http"
)

const linkedInAPIBase = "https://api.linkedin.com"

// LinkedInAdapter publishes UGC posts on behalf of a member or organization
// URN. Media is referenced by URL in the share content; LinkedIn fetches it
// server-side, so the publish itself is a single call.
type LinkedInAdapter struct {
	rest    *restClient
	baseURL string
}

func NewLinkedInAdapter(httpClient *http.Client) *LinkedInAdapter {
	return &LinkedInAdapter{rest: newRESTClient(httpClient), baseURL: linkedInAPIBase}
}

func (a *LinkedInAdapter) Name() Platform { return LinkedIn }

func (a *LinkedInAdapter) Requirements() Requirements { return RequirementsFor(LinkedIn) }

func (a *LinkedInAdapter) ValidateCredentials(ctx context.Context, creds Credentials) bool {
	c, err := credsAs[LinkedInCredentials](LinkedIn, creds)
	if err != nil || c.AuthorURN == "" || c.AccessToken == "" {
		return false
	}
	var out struct {
		ID string `json:"id"`
	}
	err = a.rest.doJSON(ctx, LinkedIn, "validate", http.MethodGet,
		a.baseURL+"/v2/me", a.authHeaders(c), nil, &out)
	return err == nil
}

func (a *LinkedInAdapter) authHeaders(c LinkedInCredentials) map[string]string {
	return map[string]string{
		"Authorization":             "Bearer " + c.AccessToken,
		"X-Restli-Protocol-Version": "2.0.0",
	}
}

func (a *LinkedInAdapter) Publish(ctx context.Context, post NormalizedPost, creds Credentials) (*Result, error) {
	c, err := credsAs[LinkedInCredentials](LinkedIn, creds)
	if err != nil {
		return nil, err
	}

	shareContent := map[string]any{
		"shareCommentary":    map[string]string{"text": post.Text},
		"shareMediaCategory": "NONE",
	}
	if len(post.MediaURLs) > 0 {
		media := make([]map[string]any, 0, len(post.MediaURLs))
		for _, u := range post.MediaURLs {
			media = append(media, map[string]any{
				"status":      "READY",
				"originalUrl": u,
			})
		}
		shareContent["shareMediaCategory"] = "IMAGE"
		shareContent["media"] = media
	}

	body := map[string]any{
		"author":         c.AuthorURN,
		"lifecycleState": "PUBLISHED",
		"specificContent": map[string]any{
			"com.linkedin.ugc.ShareContent": shareContent,
		},
		"visibility": map[string]string{
			"com.linkedin.ugc.MemberNetworkVisibility": "PUBLIC",
		},
	}

	var out struct {
		ID string `json:"id"`
	}
	err = a.rest.doJSON(ctx, LinkedIn, "ugcPosts", http.MethodPost,
		a.baseURL+"/v2/ugcPosts", a.authHeaders(c), body, &out)
	if err != nil {
		return nil, err
	}
	if out.ID == "" {
		return nil, FatalErr(LinkedIn, "ugcPosts", errors.New("empty post id in response"))
	}

	return &Result{
		Platform:       LinkedIn,
		PlatformPostID: out.ID,
		URL:            "https://www.linkedin.com/feed/update/" + out.ID,
	}, nil
}
