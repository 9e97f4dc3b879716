package transcript

import (
	"net/url"
	"regexp"
	"strings"
)

var videoIDRegex = regexp.MustCompile(`^[a-zA-Z0-9_-]{11}$`)

// ExtractVideoID returns the YouTube video ID for a URL or a bare ID.
//
// Supported forms:
//   - VIDEO_ID
//   - https://www.youtube.com/watch?v=VIDEO_ID
//   - https://youtu.be/VIDEO_ID
//   - https://www.youtube.com/embed/VIDEO_ID
//   - https://www.youtube.com/v/VIDEO_ID
//   - https://www.youtube.com/shorts/VIDEO_ID
func ExtractVideoID(input string) (string, error) {
	input = strings.TrimSpace(input)
	if videoIDRegex.MatchString(input) {
		return input, nil
	}

	id, err := idFromURL(input)
	if err != nil {
		return "", err
	}
	if !videoIDRegex.MatchString(id) {
		return "", &InvalidURLError{Input: input, Reason: "malformed video ID"}
	}
	return id, nil
}

func idFromURL(input string) (string, error) {
	u, err := url.Parse(input)
	if err != nil || u.Host == "" {
		return "", &InvalidURLError{Input: input}
	}

	host := strings.ToLower(u.Hostname())
	switch host {
	case "youtube.com", "www.youtube.com", "m.youtube.com", "music.youtube.com":
		if u.Path == "/watch" {
			id := u.Query().Get("v")
			if id == "" {
				return "", &InvalidURLError{Input: input, Reason: "missing v parameter"}
			}
			return id, nil
		}
		if u.Path == "/playlist" {
			return "", &InvalidURLError{Input: input, Reason: "playlists are not supported"}
		}
		for _, prefix := range []string{"/embed/", "/v/", "/shorts/", "/live/"} {
			if strings.HasPrefix(u.Path, prefix) {
				id := strings.SplitN(strings.TrimPrefix(u.Path, prefix), "/", 2)[0]
				if id != "" {
					return id, nil
				}
			}
		}
	case "youtu.be":
		id := strings.SplitN(strings.TrimPrefix(u.Path, "/"), "/", 2)[0]
		if id != "" {
			return id, nil
		}
	}

	return "", &InvalidURLError{Input: input}
}

// WatchURL returns the canonical watch URL for a video ID.
func WatchURL(videoID string) string {
	return "https://www.youtube.com/watch?v=" + videoID
}
