package repo

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"properly.homes/backend/internal/model"
)

var sweepNow = time.Date(2026, 6, 1, 12, 0, 0, 0, time.UTC)

func TestWhereGrantingSplitsGraceByStatus(t *testing.T) {
	db := newQueryDB(t)
	grace := 72 * time.Hour

	sql := whereGranting(db.NewSelect().Model((*model.Subscription)(nil)), "s", sweepNow, grace).String()

	assert.Contains(t, sql, "s.status = 'active' AND s.current_period_end > "+pgTime(sweepNow))
	assert.Contains(t, sql, "s.status = 'past_due' AND s.current_period_end > "+pgTime(sweepNow.Add(-grace)))
	assert.NotContains(t, sql, "s.status = 'active' AND s.current_period_end > "+pgTime(sweepNow.Add(-grace)))
}

func TestExpireEndedGivesGraceToPastDueOnly(t *testing.T) {
	r := NewSubscription(newQueryDB(t))
	grace := 72 * time.Hour

	sql := r.expireEndedQuery(sweepNow, grace, 24*time.Hour).String()

	assert.Contains(t, sql, "status = 'active' AND current_period_end <= "+pgTime(sweepNow))
	assert.Contains(t, sql, "status = 'past_due' AND current_period_end <= "+pgTime(sweepNow.Add(-grace)))
	assert.Contains(t, sql, "status = 'pending' AND created_at < "+pgTime(sweepNow.Add(-24*time.Hour)))
}

func TestExtendPeriodRevivesExpired(t *testing.T) {
	r := NewSubscription(newQueryDB(t))

	sql := r.extendPeriodQuery("sub_123", sweepNow, sweepNow.AddDate(0, 1, 0), sweepNow).String()

	assert.Contains(t, sql, "provider_subscription_id = 'sub_123'")
	assert.Contains(t, sql, "'expired'")
	assert.NotContains(t, sql, "'canceled'")
}

func TestSetStatusPastDueSkipsCanceled(t *testing.T) {
	r := NewSubscription(newQueryDB(t))

	pastDue := r.setStatusQuery("sub_123", "past_due", sweepNow).String()
	assert.Contains(t, pastDue, "status IN ('active', 'past_due')")
	assert.NotContains(t, pastDue, "canceled")

	canceled := r.setStatusQuery("sub_123", "canceled", sweepNow).String()
	assert.True(t, strings.Contains(canceled, "status != 'expired'"))
}
