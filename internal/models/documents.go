package models

import (
	"time"
)

type DocumentKind string

const (
	KindProposal DocumentKind = "proposal"
	KindRFP      DocumentKind = "rfp"
)

// Proposal is a vendor submission or, with Kind == KindRFP, the buyer's
// requirements document. Budget and TimelineMonths use 0 for unknown.
type Proposal struct {
	ID             string       `json:"id" db:"id"`
	Kind           DocumentKind `json:"kind" db:"kind"`
	Title          string       `json:"title" db:"title"`
	Content        string       `json:"content" db:"content"`
	Budget         float64      `json:"budget" db:"budget"`
	TimelineMonths int          `json:"timeline_months" db:"timeline_months"`
	Category       string       `json:"category" db:"category"`
	Filename       string       `json:"filename" db:"filename"`
	FileSize       int64        `json:"file_size" db:"file_size"`
	ContentType    string       `json:"content_type" db:"content_type"`
	S3Key          string       `json:"s3_key,omitempty" db:"s3_key"`
	CreatedAt      time.Time    `json:"created_at" db:"created_at"`
}

// RFPDocument is structurally identical to Proposal.
type RFPDocument = Proposal

type UploadRequest struct {
	File        []byte
	Filename    string
	ContentType string
	Kind        DocumentKind
}

type UploadResponse struct {
	ID             string       `json:"id"`
	Kind           DocumentKind `json:"kind"`
	Title          string       `json:"title"`
	Filename       string       `json:"filename"`
	FileSize       int64        `json:"file_size"`
	ContentType    string       `json:"content_type"`
	Budget         float64      `json:"budget"`
	TimelineMonths int          `json:"timeline_months"`
	Category       string       `json:"category"`
	CreatedAt      time.Time    `json:"created_at"`
	Message        string       `json:"message"`
}
