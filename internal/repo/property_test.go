package repo

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestSuspendQueryUsesGrantingRules(t *testing.T) {
	r := NewProperty(newQueryDB(t))
	grace := 72 * time.Hour

	sql := r.suspendQuery(sweepNow, grace, "subscription expired").String()

	assert.Contains(t, sql, "moderation_note = 'subscription expired'")
	assert.Contains(t, sql, "agent_id NOT IN (SELECT ")
	assert.Contains(t, sql, "s.status = 'active' AND s.current_period_end > "+pgTime(sweepNow))
	assert.Contains(t, sql, "s.status = 'past_due' AND s.current_period_end > "+pgTime(sweepNow.Add(-grace)))
}
