// Package video holds the domain rules shared by the upload trigger, the
// transcode submitter, and the completion listener: which S3 keys count as raw
// game video uploads, where their processed output goes, how MediaConvert
// output paths map back to public URLs, and the processing status values
// persisted on the Game record.
package video

import (
	"net/url"
	"path"
	"regexp"
	"strings"
)

// Storage layout. Raw uploads land under RawPrefix, MediaConvert writes its
// output under ProcessedPrefix with the same game/file structure.
const (
	RawPrefix       = "protected/game-videos/"
	ProcessedPrefix = "protected/processed-videos/"
)

// videoExtensions is the set of lowercase extensions the trigger accepts.
var videoExtensions = map[string]bool{
	"mp4":  true,
	"mov":  true,
	"avi":  true,
	"mkv":  true,
	"wmv":  true,
	"flv":  true,
	"webm": true,
}

// gameKeyRegex matches protected/game-videos/<gameId>/<filename>.
var gameKeyRegex = regexp.MustCompile(`^protected/game-videos/([^/]+)/([^/]+)$`)

// UploadKey is the trigger's view of an accepted raw upload.
type UploadKey struct {
	Key          string
	GameID       string // empty when the key does not follow <gameId>/<filename>
	OutputPrefix string
}

// DecodeObjectKey reverses the URL encoding S3 applies to object keys in
// event notifications. '+' is restored to a space before percent-decoding.
func DecodeObjectKey(raw string) (string, error) {
	return url.QueryUnescape(raw)
}

// IsVideoKey reports whether the final '.'-delimited suffix of key is a
// recognized video extension (case-insensitive).
func IsVideoKey(key string) bool {
	idx := strings.LastIndex(key, ".")
	if idx < 0 || idx == len(key)-1 {
		return false
	}
	ext := key[idx+1:]
	if strings.Contains(ext, "/") {
		return false
	}
	return videoExtensions[strings.ToLower(ext)]
}

// ExtractGameID returns the game identifier segment of a raw upload key, or
// "" if the key is not of the form protected/game-videos/<gameId>/<filename>.
func ExtractGameID(key string) string {
	m := gameKeyRegex.FindStringSubmatch(key)
	if m == nil {
		return ""
	}
	return m[1]
}

// OutputPrefix swaps the raw prefix for the processed prefix and strips the
// filename's extension.
//
//	protected/game-videos/g1/clip.mp4 -> protected/processed-videos/g1/clip
func OutputPrefix(key string) string {
	trimmed := strings.TrimSuffix(key, path.Ext(key))
	return ProcessedPrefix + strings.TrimPrefix(trimmed, RawPrefix)
}

// ParseUploadKey applies the trigger's filters to a decoded object key.
// ok is false for keys outside RawPrefix or without a video extension.
func ParseUploadKey(key string) (UploadKey, bool) {
	if !strings.HasPrefix(key, RawPrefix) {
		return UploadKey{}, false
	}
	if !IsVideoKey(key) {
		return UploadKey{}, false
	}
	return UploadKey{
		Key:          key,
		GameID:       ExtractGameID(key),
		OutputPrefix: OutputPrefix(key),
	}, true
}
