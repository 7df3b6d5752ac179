package core_test

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/unibalancer/paca-keeper-go/core"
	"github.com/unibalancer/paca-keeper-go/model"
	"go.uber.org/zap"
)

func newEngineFixture(t *testing.T) (*core.Engine, *accountFixture) {
	t.Helper()

	fixture := newAccountFixture(morningAndEvening, []model.ActionKind{model.ActionNoOp})
	engine := core.NewEngine([]*core.Account{fixture.account}, fixture.notifier, nil, zap.NewNop())

	return engine, fixture
}

func TestTickSkipsAccountNotYetDue(t *testing.T) {
	engine, fixture := newEngineFixture(t)
	fixture.store.props[nextRunKey()] = time.Now().Add(time.Hour).Format(time.RFC3339)

	engine.Tick()

	assert.Equal(t, 0, fixture.staking.buildCalls)
	assert.NotContains(t, fixture.store.props, nextActionKey())
	assert.Empty(t, fixture.store.stats)
}

func TestTickAnnouncesUpcomingActionOnce(t *testing.T) {
	engine, fixture := newEngineFixture(t)
	fixture.store.props[nextRunKey()] = time.Now().Add(time.Hour).Format(time.RFC3339)

	engine.Tick()
	engine.Tick()
	engine.Tick()

	messages := notificationsContaining(fixture, "We are going to run a 'noop'")
	assert.Len(t, messages, 1)
}

func TestTickExecutesDueAccountAndRearmsAnnouncement(t *testing.T) {
	engine, fixture := newEngineFixture(t)
	fixture.store.props[nextRunKey()] = time.Now().Add(-time.Minute).Format(time.RFC3339)

	engine.Tick()

	// The due account ran and its schedule was recomputed to a future slot.
	assert.Equal(t, "1", fixture.store.props[nextActionKey()])
	require.Len(t, fixture.store.stats, 1)

	persisted, err := time.Parse(time.RFC3339, fixture.store.props[nextRunKey()])
	require.NoError(t, err)
	assert.True(t, persisted.After(time.Now()))

	// Execution re-arms the announcement; the next pass tells the user about
	// the following run without executing again.
	engine.Tick()

	messages := notificationsContaining(fixture, "We are going to run a 'noop'")
	assert.Len(t, messages, 2)
	assert.Equal(t, "1", fixture.store.props[nextActionKey()])
	require.Len(t, fixture.store.stats, 1)
}

func TestTickSurfacesStoreErrorsOnFatal(t *testing.T) {
	engine, fixture := newEngineFixture(t)
	fixture.store.getErr = errors.New("database locked")

	engine.Tick()

	select {
	case err := <-engine.Fatal():
		assert.Contains(t, err.Error(), "database locked")
	default:
		t.Fatal("expected a fatal scheduler error")
	}
}
