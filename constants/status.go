package constants

// JobStatus is the canonical status for rows in parse_jobs.
type JobStatus string

// Stable values (store these exact strings in DB).
const (
	JobStatusQueued  JobStatus = "QUEUED"
	JobStatusRunning JobStatus = "RUNNING"
	JobStatusTextOK  JobStatus = "TEXT_OK" // document text recovered
	JobStatusParsed  JobStatus = "PARSED"  // draft stored
	JobStatusFailed  JobStatus = "FAILED"
)

// Environment selects which territory namespace is active.
type Environment string

const (
	EnvironmentTest       Environment = "TEST"
	EnvironmentProduction Environment = "PRODUCTION"
)

func (e Environment) Valid() bool {
	return e == EnvironmentTest || e == EnvironmentProduction
}
