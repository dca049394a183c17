package resolve

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeVerifier records calls and serves canned responses.
type fakeVerifier struct {
	verifyRef   Ref
	verifyErr   error
	verifyCalls int

	channelIDs     map[string]string
	channelErr     error
	channelCalls   int
	channelQueries []string
}

func (f *fakeVerifier) VerifyInput(ctx context.Context, input string) (Ref, error) {
	f.verifyCalls++
	if f.verifyErr != nil {
		return Ref{}, f.verifyErr
	}
	return f.verifyRef, nil
}

func (f *fakeVerifier) SearchChannelID(ctx context.Context, query string) (string, error) {
	f.channelCalls++
	f.channelQueries = append(f.channelQueries, query)
	if f.channelErr != nil {
		return "", f.channelErr
	}
	return f.channelIDs[query], nil
}

func TestResolve_URLPatterns(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		wantKind Kind
		wantID   string
	}{
		{"short link", "https://youtu.be/dQw4w9WgXcQ", KindVideo, "dQw4w9WgXcQ"},
		{"short link with tracking", "youtu.be/dQw4w9WgXcQ?si=some_tracking", KindVideo, "dQw4w9WgXcQ"},
		{"watch url", "https://www.youtube.com/watch?v=dQw4w9WgXcQ", KindVideo, "dQw4w9WgXcQ"},
		{"watch url extra params", "youtube.com/watch?v=dQw4w9WgXcQ&feature=share", KindVideo, "dQw4w9WgXcQ"},
		{"embed url", "https://www.youtube.com/embed/dQw4w9WgXcQ", KindVideo, "dQw4w9WgXcQ"},
		{"shorts url", "https://www.youtube.com/shorts/abcdefghijk", KindVideo, "abcdefghijk"},
		{"v url", "https://www.youtube.com/v/dQw4w9WgXcQ", KindVideo, "dQw4w9WgXcQ"},
		{"mobile watch url", "https://m.youtube.com/watch?v=dQw4w9WgXcQ", KindVideo, "dQw4w9WgXcQ"},
		{"legacy web url", "https://www.youtube.com/web/dQw4w9WgXcQ", KindVideo, "dQw4w9WgXcQ"},
		{"channel url", "https://www.youtube.com/channel/UCuAXFkgsw1L7xaCfnd5JJOw", KindChannel, "UCuAXFkgsw1L7xaCfnd5JJOw"},
		{"playlist url", "https://www.youtube.com/playlist?list=PLXXXXXXXXXXXXXXXX", KindPlaylist, "PLXXXXXXXXXXXXXXXX"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fv := &fakeVerifier{}
			ref, err := New(fv).Resolve(context.Background(), tt.input)
			require.NoError(t, err)
			assert.Equal(t, tt.wantKind, ref.Kind)
			assert.Equal(t, tt.wantID, ref.ID)
			assert.Zero(t, fv.verifyCalls, "url patterns must not hit the API")
		})
	}
}

func TestResolve_WatchURLWithPlaylistParam(t *testing.T) {
	// A watch URL inside a playlist classifies as the playlist, not the video.
	fv := &fakeVerifier{}
	ref, err := New(fv).Resolve(context.Background(), "https://www.youtube.com/watch?v=dQw4w9WgXcQ&list=PLxxxxxxxxxxxxxxxx")
	require.NoError(t, err)
	assert.Equal(t, KindPlaylist, ref.Kind)
	assert.Equal(t, "PLxxxxxxxxxxxxxxxx", ref.ID)
}

func TestResolve_BareIDs(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		wantKind Kind
	}{
		{"video id", "dQw4w9WgXcQ", KindVideo},
		{"channel id", "UCuAXFkgsw1L7xaCfnd5JJOw", KindChannel},
		{"playlist id", "PLBCF2DAC6FFB574DE123", KindPlaylist},
		{"uploads playlist id", "UUBCF2DAC6FFB574DE123", KindPlaylist},
		{"favorites playlist id", "FLBCF2DAC6FFB574DE123", KindPlaylist},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fv := &fakeVerifier{}
			ref, err := New(fv).Resolve(context.Background(), tt.input)
			require.NoError(t, err)
			assert.Equal(t, tt.wantKind, ref.Kind)
			assert.Equal(t, tt.input, ref.ID)
			assert.Zero(t, fv.verifyCalls)
		})
	}
}

func TestResolve_HandleURL(t *testing.T) {
	fv := &fakeVerifier{channelIDs: map[string]string{"@SomeHandle": "UCZZZZZZZZZZZZZZZZZZZZZZ"}}
	ref, err := New(fv).Resolve(context.Background(), "https://www.youtube.com/@SomeHandle")
	require.NoError(t, err)
	assert.Equal(t, KindChannel, ref.Kind)
	assert.Equal(t, "UCZZZZZZZZZZZZZZZZZZZZZZ", ref.ID)
	assert.Equal(t, 1, fv.channelCalls)
}

func TestResolve_HandleRetriesBareName(t *testing.T) {
	// Primary query keeps the @ prefix; a miss retries once with the bare name.
	fv := &fakeVerifier{channelIDs: map[string]string{"SomeHandle": "UCYYYYYYYYYYYYYYYYYYYYYY"}}
	ref, err := New(fv).Resolve(context.Background(), "https://www.youtube.com/@SomeHandle")
	require.NoError(t, err)
	assert.Equal(t, "UCYYYYYYYYYYYYYYYYYYYYYY", ref.ID)
	assert.Equal(t, []string{"@SomeHandle", "SomeHandle"}, fv.channelQueries)
}

func TestResolve_CustomChannelURL(t *testing.T) {
	fv := &fakeVerifier{channelIDs: map[string]string{"ChannelName": "UCYYYYYYYYYYYYYYYYYYYYYY"}}
	ref, err := New(fv).Resolve(context.Background(), "https://www.youtube.com/c/ChannelName")
	require.NoError(t, err)
	assert.Equal(t, KindChannel, ref.Kind)
	assert.Equal(t, "UCYYYYYYYYYYYYYYYYYYYYYY", ref.ID)
}

func TestResolve_HandleLookupFailureIsNotFound(t *testing.T) {
	// Once the handle layer matches, a failed lookup is a hard stop: the API
	// fallback is not consulted.
	fv := &fakeVerifier{channelErr: errors.New("transport down")}
	_, err := New(fv).Resolve(context.Background(), "https://www.youtube.com/@SomeHandle")
	assert.ErrorIs(t, err, ErrNotFound)
	assert.Zero(t, fv.verifyCalls)
}

func TestResolve_AmbiguousTokenGoesToAPI(t *testing.T) {
	// A 9+ char token with no recognized prefix is ambiguous: verified, not guessed.
	fv := &fakeVerifier{verifyRef: Ref{Kind: KindPlaylist, ID: "PLresolved0000000000"}}
	ref, err := New(fv).Resolve(context.Background(), "sometoken123456")
	require.NoError(t, err)
	assert.Equal(t, KindPlaylist, ref.Kind)
	assert.Equal(t, "PLresolved0000000000", ref.ID)
	assert.Equal(t, 1, fv.verifyCalls)
}

func TestResolve_APIFallbackFailure(t *testing.T) {
	tests := []struct {
		name string
		fv   *fakeVerifier
	}{
		{"no results", &fakeVerifier{verifyErr: ErrNotFound}},
		{"transport error swallowed", &fakeVerifier{verifyErr: errors.New("connection refused")}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := New(tt.fv).Resolve(context.Background(), "free text query")
			assert.ErrorIs(t, err, ErrNotFound)
		})
	}
}

func TestResolve_EmptyInput(t *testing.T) {
	fv := &fakeVerifier{}
	_, err := New(fv).Resolve(context.Background(), "   ")
	assert.ErrorIs(t, err, ErrNotFound)
	assert.Zero(t, fv.verifyCalls)
}
