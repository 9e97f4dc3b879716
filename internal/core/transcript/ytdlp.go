package transcript

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os/exec"
	"strings"
	"time"
)

// YtDlp fetches captions and metadata by running yt-dlp.
// yt-dlp resolves the caption track URLs; the json3 track itself is
// downloaded over plain HTTP.
type YtDlp struct {
	binary string
	client *http.Client

	// dump returns yt-dlp's single-JSON info document for a URL.
	dump func(ctx context.Context, url string) ([]byte, error)
}

// NewYtDlp creates a yt-dlp backed provider. An empty binary uses "yt-dlp" from PATH.
func NewYtDlp(binary string) *YtDlp {
	if binary == "" {
		binary = "yt-dlp"
	}
	y := &YtDlp{
		binary: binary,
		client: &http.Client{Timeout: 60 * time.Second},
	}
	y.dump = y.runDump
	return y
}

// Name returns the provider name.
func (y *YtDlp) Name() string {
	return "yt-dlp"
}

// Available reports whether the yt-dlp binary can be found.
func (y *YtDlp) Available() bool {
	_, err := exec.LookPath(y.binary)
	return err == nil
}

// Fetch returns the transcript for videoID in the first available language.
// Manually created captions win over automatic ones.
func (y *YtDlp) Fetch(ctx context.Context, videoID string, languages []string) (*Transcript, error) {
	if len(languages) == 0 {
		languages = DefaultLanguages
	}

	data, err := y.dump(ctx, WatchURL(videoID))
	if err != nil {
		return nil, &UnavailableError{VideoID: videoID, Reason: "yt-dlp failed", Err: err}
	}

	info, err := parseVideoInfo(data)
	if err != nil {
		return nil, &UnavailableError{VideoID: videoID, Reason: "unreadable video info", Err: err}
	}

	track, lang, auto := info.pickTrack(languages)
	if track == nil {
		return nil, &UnavailableError{
			VideoID: videoID,
			Reason:  fmt.Sprintf("no captions in %s", strings.Join(languages, ", ")),
		}
	}

	body, err := y.download(ctx, track.URL)
	if err != nil {
		return nil, &UnavailableError{VideoID: videoID, Reason: "caption download failed", Err: err}
	}

	segments, err := parseJSON3(body)
	if err != nil {
		return nil, &UnavailableError{VideoID: videoID, Reason: "unreadable caption track", Err: err}
	}
	if len(segments) == 0 {
		return nil, &UnavailableError{VideoID: videoID, Reason: "caption track is empty"}
	}

	return &Transcript{
		Metadata:        info.metadata(videoID),
		Segments:        segments,
		Language:        lang,
		IsAutoGenerated: auto,
	}, nil
}

func (y *YtDlp) runDump(ctx context.Context, url string) ([]byte, error) {
	cmd := exec.CommandContext(ctx, y.binary,
		"--dump-single-json",
		"--skip-download",
		"--no-playlist",
		"--no-warnings",
		url,
	)

	var stderr bytes.Buffer
	cmd.Stderr = &stderr

	out, err := cmd.Output()
	if err != nil {
		msg := strings.TrimSpace(stderr.String())
		if msg != "" {
			return nil, fmt.Errorf("%w: %s", err, msg)
		}
		return nil, err
	}
	return out, nil
}

func (y *YtDlp) download(ctx context.Context, url string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}

	resp, err := y.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("unexpected status %d", resp.StatusCode)
	}
	return io.ReadAll(resp.Body)
}

// captionTrack is one entry of yt-dlp's subtitles/automatic_captions lists.
type captionTrack struct {
	Ext  string `json:"ext"`
	URL  string `json:"url"`
	Name string `json:"name"`
}

// videoInfo is the subset of yt-dlp's info document we use.
type videoInfo struct {
	ID                string                    `json:"id"`
	Title             string                    `json:"title"`
	Channel           string                    `json:"channel"`
	Uploader          string                    `json:"uploader"`
	Duration          float64                   `json:"duration"`
	UploadDate        string                    `json:"upload_date"`
	ViewCount         int64                     `json:"view_count"`
	Description       string                    `json:"description"`
	WebpageURL        string                    `json:"webpage_url"`
	Subtitles         map[string][]captionTrack `json:"subtitles"`
	AutomaticCaptions map[string][]captionTrack `json:"automatic_captions"`
}

func parseVideoInfo(data []byte) (*videoInfo, error) {
	var info videoInfo
	if err := json.Unmarshal(data, &info); err != nil {
		return nil, err
	}
	if info.ID == "" {
		return nil, errors.New("missing video id")
	}
	return &info, nil
}

// pickTrack returns the json3 track for the first preferred language,
// checking manual subtitles before automatic captions.
func (v *videoInfo) pickTrack(languages []string) (*captionTrack, string, bool) {
	for _, lang := range languages {
		if t := findJSON3(v.Subtitles[lang]); t != nil {
			return t, lang, false
		}
	}
	for _, lang := range languages {
		if t := findJSON3(v.AutomaticCaptions[lang]); t != nil {
			return t, lang, true
		}
	}
	return nil, "", false
}

func findJSON3(tracks []captionTrack) *captionTrack {
	for i := range tracks {
		if tracks[i].Ext == "json3" && tracks[i].URL != "" {
			return &tracks[i]
		}
	}
	return nil
}

func (v *videoInfo) metadata(videoID string) Metadata {
	channel := v.Channel
	if channel == "" {
		channel = v.Uploader
	}
	url := v.WebpageURL
	if url == "" {
		url = WatchURL(videoID)
	}
	return Metadata{
		VideoID:     videoID,
		Title:       v.Title,
		Channel:     channel,
		Duration:    int(v.Duration),
		PublishDate: formatUploadDate(v.UploadDate),
		ViewCount:   v.ViewCount,
		Description: v.Description,
		URL:         url,
	}
}

// formatUploadDate turns yt-dlp's YYYYMMDD into YYYY-MM-DD.
func formatUploadDate(s string) string {
	if len(s) != 8 {
		return s
	}
	return s[:4] + "-" + s[4:6] + "-" + s[6:]
}

type json3Doc struct {
	Events []struct {
		StartMs    float64 `json:"tStartMs"`
		DurationMs float64 `json:"dDurationMs"`
		Segs       []struct {
			UTF8 string `json:"utf8"`
		} `json:"segs"`
	} `json:"events"`
}

// parseJSON3 converts a YouTube json3 caption document into segments.
// Events without text (window definitions, bare newlines) are dropped.
func parseJSON3(data []byte) ([]Segment, error) {
	var doc json3Doc
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, err
	}

	var segments []Segment
	for _, ev := range doc.Events {
		if len(ev.Segs) == 0 {
			continue
		}
		var b strings.Builder
		for _, s := range ev.Segs {
			b.WriteString(s.UTF8)
		}
		text := strings.Join(strings.Fields(b.String()), " ")
		if text == "" {
			continue
		}
		segments = append(segments, Segment{
			Text:     text,
			Start:    ev.StartMs / 1000,
			Duration: ev.DurationMs / 1000,
		})
	}
	return segments, nil
}
