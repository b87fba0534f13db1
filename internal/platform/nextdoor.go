package platform

import (
	"context"
	"errors"
	"net/http"
)

const nextdoorAPIBase = "https://external.nextdoorapis.com"

// NextdoorAdapter creates agency posts through the Nextdoor partner API.
type NextdoorAdapter struct {
	rest    *restClient
	baseURL string
}

func NewNextdoorAdapter(httpClient *http.Client) *NextdoorAdapter {
	return &NextdoorAdapter{rest: newRESTClient(httpClient), baseURL: nextdoorAPIBase}
}

func (a *NextdoorAdapter) Name() Platform { return Nextdoor }

func (a *NextdoorAdapter) Requirements() Requirements { return RequirementsFor(Nextdoor) }

func (a *NextdoorAdapter) authHeaders(c NextdoorCredentials) map[string]string {
	return map[string]string{"Authorization": "Bearer " + c.AccessToken}
}

func (a *NextdoorAdapter) ValidateCredentials(ctx context.Context, creds Credentials) bool {
	c, err := credsAs[NextdoorCredentials](Nextdoor, creds)
	if err != nil || c.AgencyID == "" || c.AccessToken == "" {
		return false
	}
	var out struct {
		ID string `json:"id"`
	}
	err = a.rest.doJSON(ctx, Nextdoor, "validate", http.MethodGet,
		a.baseURL+"/external/api/partner/v1/agency/"+c.AgencyID, a.authHeaders(c), nil, &out)
	return err == nil
}

func (a *NextdoorAdapter) Publish(ctx context.Context, post NormalizedPost, creds Credentials) (*Result, error) {
	c, err := credsAs[NextdoorCredentials](Nextdoor, creds)
	if err != nil {
		return nil, err
	}

	body := map[string]any{
		"agency_id": c.AgencyID,
		"body_text": post.Text,
	}
	if len(post.MediaURLs) > 0 {
		body["media_attachments"] = post.MediaURLs
	}

	var out struct {
		ID  string `json:"id"`
		URL string `json:"url"`
	}
	err = a.rest.doJSON(ctx, Nextdoor, "post", http.MethodPost,
		a.baseURL+"/external/api/partner/v1/post/", a.authHeaders(c), body, &out)
	if err != nil {
		return nil, err
	}
	if out.ID == "" {
		return nil, FatalErr(Nextdoor, "post", errors.New("empty post id in response"))
	}

	return &Result{
		Platform:       Nextdoor,
		PlatformPostID: out.ID,
		URL:            out.URL,
	}, nil
}
