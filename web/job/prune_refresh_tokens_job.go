// Package job contains the scheduled maintenance jobs of the harmonia
// server, run by the cron scheduler in the web server.
package job

import (
	"time"

	"github.com/harmonia-media/harmonia/config"
	"github.com/harmonia-media/harmonia/logger"
	"github.com/harmonia-media/harmonia/web/service"
)

// PruneRefreshTokensJob deletes refresh-token ledger rows older than the
// refresh TTL. Revocation semantics are unaffected: the rows removed here
// could never verify again anyway.
type PruneRefreshTokensJob struct {
	refreshTokens *service.RefreshTokenService
}

func NewPruneRefreshTokensJob(refreshTokens *service.RefreshTokenService) *PruneRefreshTokensJob {
	return &PruneRefreshTokensJob{refreshTokens: refreshTokens}
}

// Run implements the cron Job interface.
func (j *PruneRefreshTokensJob) Run() {
	cutoff := time.Now().Add(-config.GetRefreshTokenTTL())
	pruned, err := j.refreshTokens.DeleteCreatedBefore(cutoff)
	if err != nil {
		logger.Warning("prune refresh tokens job err:", err)
		return
	}
	if pruned > 0 {
		logger.Debugf("pruned %d expired refresh tokens", pruned)
	}
}
