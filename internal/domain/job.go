package domain

import "time"

// JobStatus represents the lifecycle state of a generation job.
// Values include JobStatusPending, JobStatusProcessing, JobStatusComplete, and JobStatusFailed.
type JobStatus string

const (
	JobStatusPending    JobStatus = "pending"
	JobStatusProcessing JobStatus = "processing"
	JobStatusComplete   JobStatus = "complete"
	JobStatusFailed     JobStatus = "failed"
)

// IsTerminal reports whether no further transitions are permitted from this status.
func (s JobStatus) IsTerminal() bool {
	return s == JobStatusComplete || s == JobStatusFailed
}

// JobType identifies which worker logic applies to a job.
type JobType string

const (
	JobTypeLeadMagnetContent    JobType = "lead_magnet_content"
	JobTypeSupplementaryContent JobType = "supplementary_content"
	JobTypeCoverDesign          JobType = "cover_design"
	JobTypeFunnelIdeas          JobType = "funnel_ideas"
	JobTypeFunnelPDF            JobType = "funnel_pdf"
)

// KnownJobTypes lists every registered job type.
var KnownJobTypes = []JobType{
	JobTypeLeadMagnetContent,
	JobTypeSupplementaryContent,
	JobTypeCoverDesign,
	JobTypeFunnelIdeas,
	JobTypeFunnelPDF,
}

// ValidJobType reports whether t is a known job type.
func ValidJobType(t JobType) bool {
	for _, known := range KnownJobTypes {
		if t == known {
			return true
		}
	}
	return false
}

// Job represents one asynchronous unit of generation work and its progress.
// The record is created once in pending state, mutated only by the worker
// (plus the dispatcher's optimistic pending->processing transition), and
// becomes read-only after reaching a terminal state.
type Job struct {
	ID      string  `gorm:"type:text;primaryKey" json:"id"`
	JobType JobType `gorm:"type:text;not null;index" json:"job_type"`
	OwnerID string  `gorm:"type:text;not null;index" json:"owner_id"`

	Status JobStatus `gorm:"type:text;index;default:pending" json:"status"`

	TotalUnits       int    `gorm:"default:0" json:"total_units"`
	CompletedUnits   int    `gorm:"default:0" json:"completed_units"`
	CurrentUnitLabel string `gorm:"type:text" json:"current_unit_label,omitempty"`

	// InputData is the immutable snapshot of the request payload that
	// started the job. The worker runs detached from the original request
	// and cannot depend on the caller still being alive.
	InputData JSONMap `gorm:"type:text" json:"input_data,omitempty"`

	// Result is populated only on complete.
	Result JSONMap `gorm:"type:text" json:"result,omitempty"`

	// PartialResult preserves completed sub-task outputs when the job fails.
	PartialResult JSONMap `gorm:"type:text" json:"partial_result,omitempty"`

	// Failure diagnostics, populated only on failed.
	ErrorMessage string `gorm:"type:text" json:"error_message,omitempty"`
	FailedAtUnit string `gorm:"type:text" json:"failed_at_unit,omitempty"`
	RetryCount   int    `gorm:"default:0" json:"retry_count"`

	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
	StartedAt   *time.Time `json:"started_at,omitempty"`
	CompletedAt *time.Time `json:"completed_at,omitempty"`
}

// TableName returns the database table name for Job.
func (Job) TableName() string {
	return "jobs"
}

// ProgressPercent computes the observable progress percentage for the job.
func (j *Job) ProgressPercent() int {
	if j.TotalUnits > 0 {
		pct := float64(j.CompletedUnits) / float64(j.TotalUnits) * 100
		return int(pct + 0.5)
	}
	if j.Status == JobStatusComplete {
		return 100
	}
	return 0
}
