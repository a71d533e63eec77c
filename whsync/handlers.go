package whsync

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/tjwells85/whs_backend/config"
)

// StatusHandler reports the scheduler's run state.
func (s *Scheduler) StatusHandler(c *gin.Context) {
	c.JSON(http.StatusOK, s.Status())
}

// TriggerHandler kicks off an immediate sync pass in the background. The
// run lock still applies, so a pass already in flight wins.
func (s *Scheduler) TriggerHandler(c *gin.Context) {
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), runLockTTL)
		defer cancel()
		if err := s.RunOnce(ctx); err != nil {
			config.LogError(s.logger, "whsync", "TriggerHandler", "manual sync", nil, err)
		}
	}()
	c.JSON(http.StatusAccepted, gin.H{"message": "sync started"})
}
