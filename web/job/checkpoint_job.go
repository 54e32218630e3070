package job

import (
	"github.com/harmonia-media/harmonia/database"
	"github.com/harmonia-media/harmonia/logger"
)

// CheckpointJob periodically flushes the sqlite WAL so the main database
// file stays current between shutdowns.
type CheckpointJob struct{}

func NewCheckpointJob() *CheckpointJob {
	return new(CheckpointJob)
}

// Run implements the cron Job interface.
func (j *CheckpointJob) Run() {
	if err := database.Checkpoint(); err != nil {
		logger.Warning("checkpoint job err:", err)
	}
}
