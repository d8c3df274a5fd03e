package session

import "errors"

var (
	ErrNotFound           = errors.New("session not found")
	ErrEnded              = errors.New("session has ended")
	ErrNoProposals        = errors.New("no proposals to analyze")
	ErrBackendUnavailable = errors.New("generation or retrieval backend is not configured")
	ErrSetupFailed        = errors.New("failed to index proposals")
	ErrEmptyQuestion      = errors.New("question is required")
)
