package constants

// ProcessingStatus is the canonical status for uploaded files and
// bulk import sessions.
type ProcessingStatus string

// Stable values (store these exact strings in DB).
const (
	StatusPending     ProcessingStatus = "pending"
	StatusProcessing  ProcessingStatus = "processing"
	StatusCompleted   ProcessingStatus = "completed"
	StatusFailed      ProcessingStatus = "failed"
	StatusNeedsReview ProcessingStatus = "needs_review"
)

// MatchStatus records how an emission record's material fields were resolved.
type MatchStatus string

const (
	MatchStatusMatched     MatchStatus = "matched"      // resolved against the material library
	MatchStatusAIProcessed MatchStatus = "ai_processed" // extracted by the model, no library hit
	MatchStatusNeedsReview MatchStatus = "needs_review" // named but unresolved
	MatchStatusUnmatched   MatchStatus = "unmatched"    // no material identity at all
)

// UploadSource identifies where a file entered the system.
type UploadSource string

const (
	SourceWebUpload UploadSource = "web_upload"
	SourceMobileApp UploadSource = "mobile_app"
	SourceCloudSync UploadSource = "cloud_sync"
)

// Fixed confidence placeholders. Neither is a model-reported value.
const (
	ConfidenceMatched   float32 = 0.95
	ConfidenceAIDefault float32 = 0.85
)
