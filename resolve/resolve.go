// Package resolve disambiguates free-form YouTube references into canonical
// content IDs. It layers URL-shape rules over bare-ID heuristics, falling back
// to a remote search only when no local rule matches.
package resolve

import (
	"context"
	"errors"
	"regexp"
	"strings"

	"github.com/sirupsen/logrus"
)

// Kind identifies the type of YouTube content a reference points at.
type Kind string

const (
	KindVideo    Kind = "video"
	KindPlaylist Kind = "playlist"
	KindChannel  Kind = "channel"
)

// Ref is a resolved content reference. ID is always the platform's canonical
// identifier, never a URL, handle, or custom name.
type Ref struct {
	Kind Kind
	ID   string
}

// ErrNotFound is returned when no layer can produce a definitive (kind, id)
// pair. Callers must treat it as a hard stop for that input.
var ErrNotFound = errors.New("content not found")

// Verifier is the remote layer consulted when local rules cannot classify an
// input. Implemented by youtube.Client.
type Verifier interface {
	// VerifyInput issues a single search across video, playlist, and channel
	// types and maps the top hit to a Ref.
	VerifyInput(ctx context.Context, input string) (Ref, error)
	// SearchChannelID resolves a handle or custom name to a channel ID via a
	// channel-typed search.
	SearchChannelID(ctx context.Context, query string) (string, error)
}

// rule pairs a URL-shape pattern with the kind it implies. Rules are evaluated
// in fixed order; the first match wins and no later rule is consulted.
type rule struct {
	name string
	re   *regexp.Regexp
	kind Kind
	// lookup marks rules whose capture is a human-readable channel name that
	// still needs one remote search to become a canonical ID.
	lookup bool
	// skipWithList declines the match when the URL carries a list= parameter,
	// so a watch URL inside a playlist classifies as the playlist.
	skipWithList bool
}

var urlRules = []rule{
	{name: "short link", re: regexp.MustCompile(`(?:https?://)?(?:www\.)?youtu\.be/([A-Za-z0-9_-]{11})`), kind: KindVideo, skipWithList: true},
	{name: "watch url", re: regexp.MustCompile(`(?:https?://)?(?:www\.|m\.)?youtube\.com/watch\?[^#\s]*\bv=([A-Za-z0-9_-]{11})`), kind: KindVideo, skipWithList: true},
	{name: "embed url", re: regexp.MustCompile(`(?:https?://)?(?:www\.|m\.)?youtube\.com/embed/([A-Za-z0-9_-]{11})`), kind: KindVideo, skipWithList: true},
	{name: "shorts url", re: regexp.MustCompile(`(?:https?://)?(?:www\.|m\.)?youtube\.com/shorts/([A-Za-z0-9_-]{11})`), kind: KindVideo, skipWithList: true},
	{name: "v url", re: regexp.MustCompile(`(?:https?://)?(?:www\.|m\.)?youtube\.com/v/([A-Za-z0-9_-]{11})`), kind: KindVideo, skipWithList: true},
	{name: "legacy web url", re: regexp.MustCompile(`(?:https?://)?(?:www\.|m\.)?youtube\.com/web/([A-Za-z0-9_-]{11})`), kind: KindVideo, skipWithList: true},
	{name: "channel url", re: regexp.MustCompile(`(?:https?://)?(?:www\.|m\.)?youtube\.com/channel/(UC[A-Za-z0-9_-]{22})`), kind: KindChannel},
	{name: "handle url", re: regexp.MustCompile(`(?:https?://)?(?:www\.|m\.)?youtube\.com/(@[A-Za-z0-9._-]+)`), kind: KindChannel, lookup: true},
	{name: "custom channel url", re: regexp.MustCompile(`(?:https?://)?(?:www\.|m\.)?youtube\.com/c/([A-Za-z0-9._-]+)`), kind: KindChannel, lookup: true},
	{name: "playlist url", re: regexp.MustCompile(`[?&]list=([A-Za-z0-9_-]+)`), kind: KindPlaylist},
}

// listParamRe detects a playlist parameter anywhere in a URL-shaped input.
var listParamRe = regexp.MustCompile(`[?&]list=[A-Za-z0-9_-]+`)

// Bare-ID heuristics. Anything not matching these strict shapes is treated as
// ambiguous and sent to API verification rather than guessed.
var (
	bareVideoRe    = regexp.MustCompile(`^[A-Za-z0-9_-]{11}$`)
	bareChannelRe  = regexp.MustCompile(`^UC[A-Za-z0-9_-]{22}$`)
	barePlaylistRe = regexp.MustCompile(`^(?:PL|UU|FL)[A-Za-z0-9_-]{16,}$`)
	bareHandleRe   = regexp.MustCompile(`^@[A-Za-z0-9._-]+$`)
)

// Resolver classifies arbitrary user input into a canonical content reference.
type Resolver struct {
	verifier Verifier
	log      *logrus.Logger
}

// New returns a Resolver using the given verifier for remote lookups.
func New(verifier Verifier) *Resolver {
	return &Resolver{
		verifier: verifier,
		log:      logrus.StandardLogger(),
	}
}

// Resolve classifies input into a (kind, id) pair. Resolution order: URL-shape
// rules, bare-ID heuristics, then one remote search. Every branch that cannot
// produce a definitive pair returns ErrNotFound.
func (r *Resolver) Resolve(ctx context.Context, input string) (Ref, error) {
	input = strings.TrimSpace(input)
	if input == "" {
		return Ref{}, ErrNotFound
	}

	logger := r.log.WithField("input", input)

	for _, rl := range urlRules {
		if rl.skipWithList && listParamRe.MatchString(input) {
			continue
		}
		m := rl.re.FindStringSubmatch(input)
		if m == nil {
			continue
		}

		if rl.lookup {
			id, err := r.resolveChannelName(ctx, m[1])
			if err != nil {
				logger.WithError(err).Warn("channel name lookup failed")
				return Ref{}, ErrNotFound
			}
			logger.WithFields(logrus.Fields{"rule": rl.name, "id": id}).Debug("resolved via channel lookup")
			return Ref{Kind: KindChannel, ID: id}, nil
		}

		logger.WithFields(logrus.Fields{"rule": rl.name, "id": m[1]}).Debug("resolved via url pattern")
		return Ref{Kind: rl.kind, ID: m[1]}, nil
	}

	if ref, ok := r.classifyBareID(ctx, input); ok {
		logger.WithFields(logrus.Fields{"kind": ref.Kind, "id": ref.ID}).Debug("resolved via bare-id heuristic")
		return ref, nil
	}

	// No local rule matched. One remote search decides, and inability to
	// verify is equivalent to non-verification.
	ref, err := r.verifier.VerifyInput(ctx, input)
	if err != nil {
		logger.WithError(err).Debug("api verification failed")
		return Ref{}, ErrNotFound
	}
	logger.WithFields(logrus.Fields{"kind": ref.Kind, "id": ref.ID}).Info("resolved via api verification")
	return ref, nil
}

// classifyBareID applies the strict bare-ID shapes. The second return is false
// when the token is ambiguous and should go to API verification instead.
func (r *Resolver) classifyBareID(ctx context.Context, input string) (Ref, bool) {
	if strings.ContainsAny(input, "/?&= ") {
		return Ref{}, false
	}
	switch {
	case bareChannelRe.MatchString(input):
		return Ref{Kind: KindChannel, ID: input}, true
	case barePlaylistRe.MatchString(input):
		return Ref{Kind: KindPlaylist, ID: input}, true
	case bareVideoRe.MatchString(input):
		return Ref{Kind: KindVideo, ID: input}, true
	case bareHandleRe.MatchString(input):
		if id, err := r.resolveChannelName(ctx, input); err == nil {
			return Ref{Kind: KindChannel, ID: id}, true
		}
		return Ref{}, false
	}
	return Ref{}, false
}

// resolveChannelName maps a handle or custom name to a canonical channel ID.
// For handles, a miss on the primary query is retried once with the bare name.
func (r *Resolver) resolveChannelName(ctx context.Context, name string) (string, error) {
	id, err := r.verifier.SearchChannelID(ctx, name)
	if err == nil && id != "" {
		return id, nil
	}

	bare := strings.TrimPrefix(name, "@")
	if bare == name {
		return "", ErrNotFound
	}

	id, err = r.verifier.SearchChannelID(ctx, bare)
	if err != nil || id == "" {
		return "", ErrNotFound
	}
	return id, nil
}
