package platform

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecodeCredentials_ResolvesVariantByPlatform(t *testing.T) {
	raw := json.RawMessage(`{"consumer_key":"ck","consumer_secret":"cs","access_token":"at","access_token_secret":"ats"}`)
	creds, err := DecodeCredentials(Twitter, raw)
	require.NoError(t, err)

	tw, ok := creds.(TwitterCredentials)
	require.True(t, ok)
	assert.Equal(t, "ck", tw.ConsumerKey)
	assert.Equal(t, "ats", tw.AccessTokenSecret)
	assert.Equal(t, Twitter, creds.Platform())
}

func TestDecodeCredentials_EveryPlatformHasAVariant(t *testing.T) {
	for _, p := range All() {
		creds, err := DecodeCredentials(p, json.RawMessage(`{}`))
		require.NoError(t, err, "platform %s", p)
		assert.Equal(t, p, creds.Platform())
	}
}

func TestDecodeCredentials_UnknownPlatform(t *testing.T) {
	_, err := DecodeCredentials(Platform("myspace"), json.RawMessage(`{}`))
	assert.Error(t, err)
}

func TestParse(t *testing.T) {
	p, err := Parse("instagram")
	require.NoError(t, err)
	assert.Equal(t, Instagram, p)

	_, err = Parse("friendster")
	assert.Error(t, err)
}

func TestRequirementsFor_KnownCeilings(t *testing.T) {
	assert.Equal(t, 280, RequirementsFor(Twitter).MaxChars)
	assert.True(t, RequirementsFor(Instagram).RequiresMedia)
	assert.True(t, RequirementsFor(TikTok).RequiresMedia)
	assert.False(t, RequirementsFor(Facebook).RequiresMedia)
}

func TestNewAdapters_CoversEveryPlatform(t *testing.T) {
	adapters := NewAdapters(nil)
	for _, p := range All() {
		a, ok := adapters[p]
		require.True(t, ok, "missing adapter for %s", p)
		assert.Equal(t, p, a.Name())
		assert.Equal(t, RequirementsFor(p), a.Requirements())
	}
}
