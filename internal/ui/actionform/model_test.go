package actionform

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nhle/field-service/internal/jira"
	"github.com/nhle/field-service/internal/model"
	"github.com/nhle/field-service/internal/ticket"
)

var brt = time.FixedZone("UTC-3", -3*60*60)

func TestStartTransition_SelectsEverything(t *testing.T) {
	m := New(brt, 100, 40)
	tickets := []ticket.Ticket{{Key: "FSA-1"}, {Key: "FSA-2"}}
	transitions := []jira.Transition{
		{ID: "11", Name: "Agendar", To: jira.TransitionTo{Name: model.StatusScheduled}},
		{ID: "21", Name: "Enviar a campo", To: jira.TransitionTo{Name: model.StatusInField}},
	}

	m.StartTransition("L001", model.StatusScheduling, tickets, transitions)
	assert.True(t, m.Active())
	assert.Equal(t, []string{"FSA-1", "FSA-2"}, m.fb.keys)
	assert.Equal(t, "11", m.fb.transitionID)

	m.fb.transitionID = "21"
	msg, ok := m.handleSubmit()().(TransitionSubmitMsg)
	require.True(t, ok)
	assert.Equal(t, "L001", msg.Store)
	assert.Equal(t, model.StatusScheduling, msg.From)
	assert.Equal(t, []string{"FSA-1", "FSA-2"}, msg.Keys)
	assert.Equal(t, model.StatusInField, msg.Transition.To.Name)
	assert.Nil(t, msg.Schedule)
}

func TestTransitionSubmit_SchedulingCarriesSchedule(t *testing.T) {
	m := New(brt, 100, 40)
	m.now = func() time.Time { return time.Date(2026, 10, 19, 15, 0, 0, 0, time.UTC) }
	transitions := []jira.Transition{
		{ID: "11", Name: "Agendar visita", To: jira.TransitionTo{Name: model.StatusScheduled}},
		{ID: "21", Name: "Enviar a campo", To: jira.TransitionTo{Name: model.StatusInField}},
	}
	m.StartTransition("L001", model.StatusScheduling, []ticket.Ticket{{Key: "FSA-1"}}, transitions)
	assert.True(t, m.schedules())
	assert.Equal(t, "2026-10-19", m.fb.date)

	m.fb.date = "2026-10-22"
	m.fb.clock = "10:15"
	m.fb.technicians = "Bruno-9-8"

	msg, ok := m.handleSubmit()().(TransitionSubmitMsg)
	require.True(t, ok)
	require.NotNil(t, msg.Schedule)
	assert.True(t, time.Date(2026, 10, 22, 10, 15, 0, 0, brt).Equal(msg.Schedule.At))
	assert.Equal(t, "Bruno-9-8", msg.Schedule.Technicians)

	m.fb.transitionID = "21"
	assert.False(t, m.schedules())
}

func TestTransitionSubmit_BadScheduleCancels(t *testing.T) {
	m := New(brt, 100, 40)
	m.StartTransition("L001", model.StatusScheduling, []ticket.Ticket{{Key: "FSA-1"}},
		[]jira.Transition{{ID: "11", Name: "Agendar", To: jira.TransitionTo{Name: model.StatusScheduled}}})
	m.fb.date = "amanhã"

	_, ok := m.handleSubmit()().(CancelMsg)
	assert.True(t, ok)
}

func TestTransitionSubmit_UnknownTransitionCancels(t *testing.T) {
	m := New(brt, 100, 40)
	m.StartTransition("L001", model.StatusScheduling, []ticket.Ticket{{Key: "FSA-1"}}, nil)

	_, ok := m.handleSubmit()().(CancelMsg)
	assert.True(t, ok)
}

func TestStartDispatch(t *testing.T) {
	m := New(brt, 100, 40)
	m.now = func() time.Time { return time.Date(2026, 10, 20, 2, 0, 0, 0, time.UTC) }

	m.StartDispatch("L001", []string{"FSA-1"}, []string{"FSA-2"})
	assert.Equal(t, "2026-10-19", m.fb.date, "today in the schedule zone")
	assert.Equal(t, "09:00", m.fb.clock)

	m.fb.date = "2026-10-21"
	m.fb.clock = "14:30"
	m.fb.technicians = "Ana-123-999"

	msg, ok := m.handleSubmit()().(DispatchSubmitMsg)
	require.True(t, ok)
	assert.Equal(t, []string{"FSA-1"}, msg.Pending)
	assert.Equal(t, []string{"FSA-2"}, msg.Scheduled)
	assert.True(t, time.Date(2026, 10, 21, 14, 30, 0, 0, brt).Equal(msg.Schedule.At))
	assert.Equal(t, "Ana-123-999", msg.Schedule.Technicians)
}

func TestValidators(t *testing.T) {
	assert.NoError(t, validateDate("2026-10-21"))
	assert.Error(t, validateDate("21/10/2026"))
	assert.NoError(t, validateClock("09:15"))
	assert.Error(t, validateClock("9h"))
	assert.Error(t, validateSelection(nil))
	assert.Error(t, validateRequired("Transição")("  "))
}
