// Package videoid canonicalizes YouTube video identifiers and URLs so that the
// same video always maps to the same lead URL and the same postgres row id.
package videoid

import (
	"errors"
	"net/url"
	"regexp"
	"strings"

	"github.com/google/uuid"
)

// YouTubeDomain is the canonical domain all YouTube hosts resolve to.
const YouTubeDomain = "youtube.com"

var canonicalDomainByHost = map[string]string{
	"youtube.com":          YouTubeDomain,
	"www.youtube.com":      YouTubeDomain,
	"m.youtube.com":        YouTubeDomain,
	"music.youtube.com":    YouTubeDomain,
	"youtube-nocookie.com": YouTubeDomain,
	"youtu.be":             YouTubeDomain,
}

var (
	ErrEmpty       = errors.New("empty video reference")
	ErrNotYouTube  = errors.New("not a youtube url")
	ErrNoVideoID   = errors.New("video id not found")
	videoIDPattern = regexp.MustCompile(`^[A-Za-z0-9_-]{11}$`)
)

// ResolveCanonicalDomain returns the canonical domain for host.
// host should be a hostname without port.
func ResolveCanonicalDomain(host string) string {
	h := normalizeHost(host)
	if h == "" {
		return ""
	}
	if c, ok := canonicalDomainByHost[h]; ok {
		return c
	}
	return h
}

// NamespaceUUIDForDomain returns a deterministic UUIDv5 namespace for a domain.
func NamespaceUUIDForDomain(domain string) uuid.UUID {
	d := strings.TrimSuffix(strings.TrimSpace(strings.ToLower(domain)), ".")
	return uuid.NewSHA1(uuid.NameSpaceDNS, []byte(d))
}

// LeadUUID returns the deterministic row id of the lead for a YouTube video.
// The name is exactly the video id; the domain is scoped by the namespace.
func LeadUUID(videoID string) uuid.UUID {
	return uuid.NewSHA1(NamespaceUUIDForDomain(YouTubeDomain), []byte(strings.TrimSpace(videoID)))
}

// IsVideoID reports whether s looks like a bare 11 character YouTube video id.
func IsVideoID(s string) bool {
	return videoIDPattern.MatchString(s)
}

// WatchURL returns the canonical watch URL stored on leads.
func WatchURL(videoID string) string {
	return "https://" + YouTubeDomain + "/watch?v=" + url.QueryEscape(strings.TrimSpace(videoID))
}

// Canonical returns the video id and canonical watch URL for either a bare
// video id or any supported YouTube URL form (watch, youtu.be, shorts, live,
// embed).
func Canonical(ref string) (id string, watchURL string, err error) {
	ref = strings.TrimSpace(ref)
	if ref == "" {
		return "", "", ErrEmpty
	}
	if IsVideoID(ref) {
		return ref, WatchURL(ref), nil
	}
	id, err = ExtractYouTubeVideoID(ref)
	if err != nil {
		return "", "", err
	}
	return id, WatchURL(id), nil
}

// ExtractYouTubeVideoID extracts the YouTube video ID from a URL.
func ExtractYouTubeVideoID(raw string) (string, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return "", ErrEmpty
	}
	if !strings.Contains(raw, "://") {
		raw = "https://" + raw
	}

	u, err := url.Parse(raw)
	if err != nil {
		return "", err
	}

	host := normalizeHost(u.Host)
	if ResolveCanonicalDomain(host) != YouTubeDomain {
		return "", ErrNotYouTube
	}

	if host == "youtu.be" {
		if id := firstPathSegment(u.Path); id != "" {
			return id, nil
		}
		return "", ErrNoVideoID
	}

	if v := strings.TrimSpace(u.Query().Get("v")); v != "" {
		return v, nil
	}
	for _, prefix := range []string{"/embed/", "/v/", "/shorts/", "/live/"} {
		if strings.HasPrefix(u.Path, prefix) {
			if id := firstPathSegment(strings.TrimPrefix(u.Path, prefix)); id != "" {
				return id, nil
			}
		}
	}
	return "", ErrNoVideoID
}

func normalizeHost(hostport string) string {
	h := strings.TrimSpace(strings.ToLower(hostport))
	if h == "" {
		return ""
	}
	if strings.Contains(h, ":") {
		if parsed, err := url.Parse("//" + h); err == nil && parsed.Hostname() != "" {
			h = parsed.Hostname()
		}
	}
	return strings.TrimSuffix(h, ".")
}

func firstPathSegment(p string) string {
	p = strings.TrimPrefix(strings.TrimSpace(p), "/")
	if p == "" {
		return ""
	}
	seg, _, _ := strings.Cut(p, "/")
	return strings.TrimSpace(seg)
}
