package advisor

import (
	"time"

	"github.com/rs/zerolog"
)

// DefaultMaxIdle is how long an untouched chat session survives
const DefaultMaxIdle = 24 * time.Hour

// PruneJob drops idle chat sessions
type PruneJob struct {
	store   *Store
	maxIdle time.Duration
	log     zerolog.Logger
}

// NewPruneJob creates a job pruning sessions idle for longer than maxIdle
func NewPruneJob(store *Store, maxIdle time.Duration, log zerolog.Logger) *PruneJob {
	if maxIdle <= 0 {
		maxIdle = DefaultMaxIdle
	}
	return &PruneJob{
		store:   store,
		maxIdle: maxIdle,
		log:     log.With().Str("job", "chat_prune").Logger(),
	}
}

// Run executes the prune
func (j *PruneJob) Run() error {
	if removed := j.store.Prune(j.maxIdle); removed > 0 {
		j.log.Info().Int("removed", removed).Int("open", j.store.Len()).Msg("Pruned idle chat sessions")
	}
	return nil
}

// Name returns the job name
func (j *PruneJob) Name() string {
	return "chat_prune"
}
