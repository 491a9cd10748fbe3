package model

import (
	"time"

	"github.com/google/uuid"
)

// DocumentStatus is the lifecycle state of a document run through the
// single-document pipeline (C10).
type DocumentStatus string

const (
	DocumentPending    DocumentStatus = "pending"
	DocumentProcessing DocumentStatus = "processing"
	DocumentCompleted  DocumentStatus = "completed"
	DocumentFailed     DocumentStatus = "failed"
)

// Stage names for C10's single-document state machine, in order.
// Progress percentages are the values the orchestrator reports at entry to
// each stage (SPEC_FULL.md / spec.md §4.10).
const (
	StageDownloading = "downloading"
	StageExtracting  = "extracting"
	StageSegmenting  = "segmenting"
	StageEmbedding   = "embedding"
	StageNER         = "ner"
	StageSimilarity  = "similarity"
	StageRules       = "rules"
	StageNLI         = "nli"
	StageStoring     = "storing"
	StageCompleted   = "completed"
	StageFailed      = "failed"
)

// stageProgress maps each C10 stage to the progress_percent the orchestrator
// reports on entry. Unexported; callers (and tests) read it through
// ProgressForStage so they can assert monotonicity without hardcoding the
// table twice.
var stageProgress = map[string]int{
	StageDownloading: 5,
	StageExtracting:  15,
	StageSegmenting:  25,
	StageEmbedding:   40,
	StageNER:         55,
	StageSimilarity:  65,
	StageRules:       72,
	StageNLI:         80,
	StageStoring:     90,
	StageCompleted:   100,
}

// ProgressForStage returns the progress_percent associated with a C10 stage
// name, or (0, false) if the name isn't one of the known stages.
func ProgressForStage(stage string) (int, bool) {
	p, ok := stageProgress[stage]
	return p, ok
}

// Document is the single-document processing unit the HTTP layer (out of
// scope) hands to process_document(document_id). The core pipeline mutates
// Status/Stage/Progress/error/timestamps in place via the persistence
// contract; it never reads or writes the raw file bytes directly — those
// come from the object-storage signed URL (SPEC_FULL.md §6).
type Document struct {
	ID       uuid.UUID      `json:"id"`
	Filename string         `json:"filename"`
	Status   DocumentStatus `json:"status"`
	Stage    string         `json:"processing_stage"`
	Progress int            `json:"progress_percent"`

	AnalysisStartTime *time.Time `json:"analysis_start_time,omitempty"`
	AnalysisEndTime   *time.Time `json:"analysis_end_time,omitempty"`
	ErrorMessage      *string    `json:"error_message,omitempty"`
}

// ComparisonSession is the cross-document processing unit handed to
// process_multi_documents(session_id). Mirrors Document's lifecycle scheme
// (spec.md §2 / §6).
type ComparisonSession struct {
	ID          uuid.UUID      `json:"id"`
	DocumentIDs []uuid.UUID    `json:"document_ids"` // 2..10
	Status      DocumentStatus `json:"status"`
	Stage       string         `json:"processing_stage"`
	Progress    int            `json:"progress_percent"`

	StartedAt   *time.Time `json:"started_at,omitempty"`
	CompletedAt *time.Time `json:"completed_at,omitempty"`
	ErrorMessage *string   `json:"error_message,omitempty"`

	CrossContradictionCount int `json:"cross_contradiction_count"`
}

// Stage names specific to C11's cross-document state machine. Progress
// percentages for "nli" span a range (70..78) in spec.md §4.11 because NLI
// runs incrementally across document pairs; NLIProgress interpolates.
const (
	CrossStagePreparing  = "preparing"
	CrossStageExtracting = "extracting"
	CrossStageEmbedding  = "embedding"
	CrossStageSimilarity = "similarity"
	CrossStageRules      = "rules"
	CrossStageNLI        = "nli"
	CrossStageStoring    = "storing"
	CrossStageCompleted  = "completed"
)

var crossStageProgress = map[string]int{
	CrossStagePreparing:  5,
	CrossStageExtracting: 10,
	CrossStageEmbedding:  30,
	CrossStageSimilarity: 45,
	CrossStageRules:      58,
	CrossStageNLI:        70,
	CrossStageStoring:    90,
	CrossStageCompleted:  100,
}

// ProgressForCrossStage returns the base progress_percent for a C11 stage.
func ProgressForCrossStage(stage string) (int, bool) {
	p, ok := crossStageProgress[stage]
	return p, ok
}

// NLIProgress interpolates the 70..78 sub-range C11 occupies while running
// NLI verification across document pairs, given how many of total pairs
// have been verified so far.
func NLIProgress(verified, total int) int {
	const lo, hi = 70, 78
	if total <= 0 {
		return lo
	}
	if verified >= total {
		return hi
	}
	span := hi - lo
	return lo + (span*verified)/total
}
