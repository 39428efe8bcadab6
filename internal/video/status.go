package video

// Status is the videoProcessingStatus value stored on a Game record.
// The zero value means processing has never been requested.
type Status string

const (
	StatusUnset      Status = ""
	StatusPending    Status = "PENDING"
	StatusProcessing Status = "PROCESSING"
	StatusCompleted  Status = "COMPLETED"
	StatusFailed     Status = "FAILED"
)

// Terminal reports whether no further transition is expected for the
// current upload attempt.
func (s Status) Terminal() bool {
	return s == StatusCompleted || s == StatusFailed
}

func (s Status) String() string {
	if s == StatusUnset {
		return "UNSET"
	}
	return string(s)
}

// Rendition labels used as keys of processedVideoUrls.
const (
	Rendition1080p = "1080p"
	Rendition720p  = "720p"
)

// Name modifiers MediaConvert appends to output file names. The completion
// listener finds renditions and thumbnails by these markers.
const (
	NameModifier1080p     = "_1080p"
	NameModifier720p      = "_720p"
	NameModifierThumbnail = "_thumb"
	ThumbnailsDir         = "thumbnails/"
)

// UserMetadataGameID is the MediaConvert user metadata key carrying the owning
// game id. The casing is significant and is not normalized on read.
const UserMetadataGameID = "GameId"
