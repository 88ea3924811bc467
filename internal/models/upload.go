package models

import "time"

// UploadStatus tracks a file through the ingestion state machine.
// pending -> uploading -> {success, error}; the last two are terminal.
type UploadStatus string

const (
	UploadPending   UploadStatus = "pending"
	UploadUploading UploadStatus = "uploading"
	UploadSuccess   UploadStatus = "success"
	UploadError     UploadStatus = "error"
)

// UploadItem is the transient per-file state for one transfer attempt.
// Items get exactly one attempt; there is no automatic retry.
type UploadItem struct {
	ID        string
	Path      string
	Name      string
	SizeBytes int64
	Status    UploadStatus
	Err       error
}

// UploadedFileRecord is the metadata kept after a successful ingestion.
// The file bytes themselves are transient and discarded after transfer.
type UploadedFileRecord struct {
	Name       string    `json:"name"`
	SizeBytes  int64     `json:"sizeBytes"`
	ChunkCount int       `json:"chunkCount"`
	Timestamp  time.Time `json:"timestamp"`
}
