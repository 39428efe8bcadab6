package video

import (
	"sort"
	"strings"
)

// Storage scheme MediaConvert reports output paths in, and the public prefix
// that replaces it in stored URLs.
const (
	StorageScheme    = "s3://"
	PublicHTTPPrefix = "https://s3.amazonaws.com/"
)

// JobStateChange is the detail of an EventBridge "MediaConvert Job State
// Change" event. Every nested field is optional on the wire.
type JobStateChange struct {
	Status             string              `json:"status"`
	JobID              string              `json:"jobId"`
	Queue              string              `json:"queue,omitempty"`
	UserMetadata       map[string]string   `json:"userMetadata,omitempty"`
	OutputGroupDetails []OutputGroupDetail `json:"outputGroupDetails,omitempty"`
	ErrorCode          int                 `json:"errorCode,omitempty"`
	ErrorMessage       string              `json:"errorMessage,omitempty"`
}

// OutputGroupDetail lists the outputs written by one MediaConvert output group.
type OutputGroupDetail struct {
	Type          string         `json:"type,omitempty"`
	OutputDetails []OutputDetail `json:"outputDetails,omitempty"`
}

// OutputDetail lists the files produced by a single output.
type OutputDetail struct {
	OutputFilePaths []string `json:"outputFilePaths,omitempty"`
	DurationInMs    int64    `json:"durationInMs,omitempty"`
}

// MediaConvert job statuses seen on the completion event.
const (
	JobStatusComplete = "COMPLETE"
	JobStatusError    = "ERROR"
)

// GameID returns the owning game id from the job's user metadata, or "".
func (e JobStateChange) GameID() string {
	if e.UserMetadata == nil {
		return ""
	}
	return e.UserMetadata[UserMetadataGameID]
}

// OutputFilePaths flattens every output file path in the event, skipping
// absent groups and details.
func (e JobStateChange) OutputFilePaths() []string {
	var paths []string
	for _, group := range e.OutputGroupDetails {
		for _, detail := range group.OutputDetails {
			paths = append(paths, detail.OutputFilePaths...)
		}
	}
	return paths
}

// PublicURL rewrites an s3:// output path to its public HTTPS form.
// Paths without the storage scheme are returned unchanged.
func PublicURL(p string) string {
	if !strings.HasPrefix(p, StorageScheme) {
		return p
	}
	return PublicHTTPPrefix + strings.TrimPrefix(p, StorageScheme)
}

// RenditionURLs maps rendition labels to public URLs for every output path
// carrying a rendition marker. Later paths win if a marker repeats.
func RenditionURLs(paths []string) map[string]string {
	urls := make(map[string]string)
	for _, p := range paths {
		if isThumbnailPath(p) {
			continue
		}
		switch {
		case strings.Contains(p, NameModifier1080p):
			urls[Rendition1080p] = PublicURL(p)
		case strings.Contains(p, NameModifier720p):
			urls[Rendition720p] = PublicURL(p)
		}
	}
	return urls
}

// ThumbnailURLs returns the public URLs of frame captures, sorted by source
// path. Only paths under a thumbnails directory whose name carries the
// thumbnail marker qualify.
func ThumbnailURLs(paths []string) []string {
	var matched []string
	for _, p := range paths {
		if isThumbnailPath(p) {
			matched = append(matched, p)
		}
	}
	sort.Strings(matched)

	urls := make([]string, 0, len(matched))
	for _, p := range matched {
		urls = append(urls, PublicURL(p))
	}
	return urls
}

func isThumbnailPath(p string) bool {
	return strings.Contains(p, "/"+ThumbnailsDir) && strings.Contains(p, NameModifierThumbnail)
}
