package models

import "time"

// BatchStatus represents the lifecycle stage of an upload batch.
type BatchStatus string

const (
	BatchStatusPending     BatchStatus = "pending"
	BatchStatusExtracting  BatchStatus = "extracting"
	BatchStatusClassifying BatchStatus = "classifying"
	BatchStatusClassified  BatchStatus = "classified"
	BatchStatusOrganized   BatchStatus = "organized"
	BatchStatusError       BatchStatus = "error"
)

// Batch is one upload of documents that is classified and organized together.
type Batch struct {
	ID        string       `json:"id"`
	Status    BatchStatus  `json:"status"`
	Files     []*FileInfo  `json:"files"`
	CreatedAt time.Time    `json:"createdAt"`
	Errors    []BatchError `json:"errors,omitempty"`
}

// BatchError records a failure encountered while processing a batch.
type BatchError struct {
	Stage  string `json:"stage"`
	File   string `json:"file,omitempty"`
	Reason string `json:"reason"`
}

// NewBatch creates a new Batch in pending status.
func NewBatch(id string) *Batch {
	return &Batch{
		ID:        id,
		Status:    BatchStatusPending,
		Files:     make([]*FileInfo, 0),
		CreatedAt: time.Now(),
		Errors:    make([]BatchError, 0),
	}
}

// FileNames returns the names of the batch files in upload order.
func (b *Batch) FileNames() []string {
	names := make([]string, 0, len(b.Files))
	for _, f := range b.Files {
		names = append(names, f.Name)
	}
	return names
}
