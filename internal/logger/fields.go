package logger

// Fields is an alias for map[string]interface{} for convenience.
type Fields map[string]interface{}

// Standard tracing fields, propagated through the call chain via context.
const (
	// FieldRequestID is the HTTP request ID (UUID)
	FieldRequestID = "request_id"

	// FieldJobID is the generation job ID
	FieldJobID = "job_id"

	// FieldJobType is the generation job type
	FieldJobType = "job_type"

	// FieldUnit is the in-flight sub-task label within a job
	FieldUnit = "unit"

	// FieldComponent is the component/module name
	FieldComponent = "component"

	// FieldOwnerID is the owning user's ID
	FieldOwnerID = "owner_id"
)

// Standard metric fields, attached at the log site for aggregation.
const (
	// FieldDurationMs is the execution duration in milliseconds
	FieldDurationMs = "duration_ms"

	// FieldAttempt is the retry attempt number for a sub-task
	FieldAttempt = "attempt"

	// FieldStatus is the operation status
	FieldStatus = "status"

	// FieldSize is the data size in bytes
	FieldSize = "size"
)
