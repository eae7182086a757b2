package ports

import (
	"context"
	"time"
)

// JobRequest describes a batch job handed to the cluster submit command.
type JobRequest struct {
	// Script is the job script name, resolved by the submit command.
	Script string
	// Args are passed to the script.
	Args []string
	// After lists job ids that must complete before this job starts.
	After []string
	// Done is a file the job touches when it finishes. An @ is replaced by
	// the scheduler job id, giving one sentinel per job.
	Done string
	// Prefix labels the job in the queue.
	Prefix string
	// Options are extra scheduler options.
	Options string
}

// Submitter launches batch jobs and returns their scheduler ids.
type Submitter interface {
	Submit(ctx context.Context, req JobRequest) (string, error)
}

// JobRecord is one entry of the submission journal.
type JobRecord struct {
	JobID       string
	RunID       string
	Step        string
	Script      string
	Args        []string
	After       []string
	Done        string
	User        string
	SubmittedAt time.Time
}

// JobJournal persists submitted jobs.
type JobJournal interface {
	Record(ctx context.Context, rec JobRecord) error
	List(ctx context.Context, runID string) ([]JobRecord, error)
	Close() error
}
