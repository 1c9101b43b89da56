package pairwise

import "github.com/arloliu/pairwise/types"

// Re-export types from the internal types package.
//
// This file provides a stable, backward-compatible public API for the library's
// core types and interfaces. It uses type aliases to re-export definitions
// from the `types` subpackage, which contains the actual implementations.
//
// This pattern solves the "import cycle" problem by allowing internal packages
// to depend on `types` without depending on the root `pairwise` package, while
// still providing a convenient `pairwise.Marriage`, `pairwise.Logger`, etc.
// for users.
type (
	Answer           = types.Answer
	Question         = types.Question
	AnswerVector     = types.AnswerVector
	Scheme           = types.Scheme
	Submission       = types.Submission
	Submissions      = types.Submissions
	RecencyExclusion = types.RecencyExclusion
	RankedCandidate  = types.RankedCandidate
	PreferenceList   = types.PreferenceList
	Marriage         = types.Marriage
	MatchRecord      = types.MatchRecord
	MatchSnapshot    = types.MatchSnapshot
	RoundStatus      = types.RoundStatus
	RoundResult      = types.RoundResult
)

// Re-export interfaces from the internal types package for convenience.
type (
	MatchStrategy    = types.MatchStrategy
	Store            = types.Store
	MetricsCollector = types.MetricsCollector
	Logger           = types.Logger
	Hooks            = types.Hooks
)

// Re-export constants from the internal types package.
const (
	AnswerNone = types.AnswerNone
	AnswerA    = types.AnswerA
	AnswerB    = types.AnswerB

	SchemeSimilar       = types.SchemeSimilar
	SchemeComplementary = types.SchemeComplementary

	StatusIdle    = types.StatusIdle
	StatusRunning = types.StatusRunning
)
