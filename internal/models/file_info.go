package models

import "time"

// FileInfo represents metadata about an uploaded document.
type FileInfo struct {
	ID         string    `json:"id"`
	BatchID    string    `json:"batchId"`
	Name       string    `json:"name"`
	Path       string    `json:"-"`
	Size       int64     `json:"size"`
	UploadedAt time.Time `json:"uploadedAt"`
	Status     string    `json:"status"` // "uploaded", "moved", "error"
}
