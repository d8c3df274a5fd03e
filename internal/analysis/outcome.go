// Package analysis turns generated comparison text into a typed
// ComparisonAnalysis, synthesizing a well-formed stand-in when the text
// cannot be decoded.
package analysis

import "github.com/BerylCAtieno/proposal-analyzer-api/internal/models"

// Outcome is the result of Decode: either Parsed or RecoveryNeeded.
type Outcome interface {
	outcome()
}

// Parsed carries an analysis decoded from generator output.
type Parsed struct {
	Analysis models.ComparisonAnalysis
}

// RecoveryNeeded reports why generator output could not be used. It is not
// an error; callers recover by synthesizing.
type RecoveryNeeded struct {
	Reason string
}

func (Parsed) outcome()         {}
func (RecoveryNeeded) outcome() {}
