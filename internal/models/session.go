package models

import (
	"time"
)

type SessionState string

const (
	StateNew         SessionState = "new"
	StateSetup       SessionState = "setup"
	StateComparison  SessionState = "comparison"
	StateInteractive SessionState = "interactive"
	StateEnded       SessionState = "ended"
)

type ConversationEntry struct {
	Timestamp         time.Time `json:"timestamp"`
	Question          string    `json:"question"`
	Response          string    `json:"response"`
	RelevantProposals []string  `json:"relevant_proposals"`
}

// Session is one comparison plus its follow-up questions.
type Session struct {
	ID                  string               `json:"session_id"`
	State               SessionState         `json:"state"`
	Proposals           []Proposal           `json:"proposals"`
	RFP                 *RFPDocument         `json:"rfp,omitempty"`
	CurrentAnalysis     string               `json:"current_analysis"`
	StructuredAnalysis  *ComparisonAnalysis  `json:"structured_analysis,omitempty"`
	Alignments          map[string]Alignment `json:"alignments,omitempty"`
	ConversationHistory []ConversationEntry  `json:"conversation_history"`
	ContinueFlag        bool                 `json:"continue_flag"`
	ErrorMessage        string               `json:"error_message,omitempty"`
	Degraded            bool                 `json:"degraded"`
	RetrievalHandle     string               `json:"retrieval_handle,omitempty"`
	CreatedAt           time.Time            `json:"created_at"`
	UpdatedAt           time.Time            `json:"updated_at"`
}

// Clone returns a copy that shares no slices or maps with s.
func (s Session) Clone() Session {
	c := s
	c.Proposals = append([]Proposal(nil), s.Proposals...)
	if s.RFP != nil {
		rfp := *s.RFP
		c.RFP = &rfp
	}
	if s.StructuredAnalysis != nil {
		sa := *s.StructuredAnalysis
		sa.Proposals = append([]ProposalAnalysis(nil), s.StructuredAnalysis.Proposals...)
		sa.Recommendations = append([]Recommendation(nil), s.StructuredAnalysis.Recommendations...)
		c.StructuredAnalysis = &sa
	}
	if s.Alignments != nil {
		c.Alignments = make(map[string]Alignment, len(s.Alignments))
		for k, v := range s.Alignments {
			c.Alignments[k] = v
		}
	}
	c.ConversationHistory = append([]ConversationEntry(nil), s.ConversationHistory...)
	return c
}

type SessionStatus struct {
	SessionID                   string       `json:"session_id"`
	State                       SessionState `json:"state"`
	ProposalsCount              int          `json:"proposals_count"`
	HasRFP                      bool         `json:"has_rfp"`
	QuestionsAsked              int          `json:"questions_asked"`
	AnalysisCompleted           bool         `json:"analysis_completed"`
	StructuredAnalysisAvailable bool         `json:"structured_analysis_available"`
	Degraded                    bool         `json:"degraded"`
	HasErrors                   bool         `json:"has_errors"`
	ErrorMessage                string       `json:"error_message,omitempty"`
	StartedAt                   time.Time    `json:"started_at"`
	UpdatedAt                   time.Time    `json:"updated_at"`
}

// Status summarizes the session for status queries.
func (s Session) Status() SessionStatus {
	return SessionStatus{
		SessionID:                   s.ID,
		State:                       s.State,
		ProposalsCount:              len(s.Proposals),
		HasRFP:                      s.RFP != nil,
		QuestionsAsked:              len(s.ConversationHistory),
		AnalysisCompleted:           s.CurrentAnalysis != "",
		StructuredAnalysisAvailable: s.StructuredAnalysis != nil,
		Degraded:                    s.Degraded,
		HasErrors:                   s.ErrorMessage != "",
		ErrorMessage:                s.ErrorMessage,
		StartedAt:                   s.CreatedAt,
		UpdatedAt:                   s.UpdatedAt,
	}
}

type StartAnalysisRequest struct {
	SessionID     string   `json:"session_id,omitempty"`
	RFPDocumentID string   `json:"rfp_document_id,omitempty"`
	ProposalIDs   []string `json:"proposal_ids,omitempty"`
}

type StartAnalysisResponse struct {
	SessionID      string       `json:"session_id"`
	State          SessionState `json:"state"`
	Analysis       string       `json:"analysis"`
	ProposalsCount int          `json:"proposals_count"`
	Degraded       bool         `json:"degraded"`
	ErrorMessage   string       `json:"error_message,omitempty"`
}

type QuestionRequest struct {
	Question string `json:"question"`
	Continue *bool  `json:"continue,omitempty"`
}

type QuestionResponse struct {
	SessionID         string       `json:"session_id"`
	Question          string       `json:"question"`
	Response          string       `json:"response"`
	RelevantProposals []string     `json:"relevant_proposals"`
	Timestamp         time.Time    `json:"timestamp"`
	State             SessionState `json:"state"`
}

type AnalysisResultResponse struct {
	SessionID          string              `json:"session_id"`
	State              SessionState        `json:"state"`
	Analysis           string              `json:"analysis"`
	StructuredAnalysis *ComparisonAnalysis `json:"structured_analysis,omitempty"`
	Results            []AnalysisResult    `json:"results"`
	ProposalsCount     int                 `json:"proposals_count"`
}
