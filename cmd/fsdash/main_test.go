package main

import (
	"bytes"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nhle/field-service/internal/jira"
)

func TestValidators(t *testing.T) {
	assert.Error(t, validateRequired("E-mail")(" "))
	assert.NoError(t, validateRequired("E-mail")("ops@example.com"))
	assert.NoError(t, validateURL("https://acme.atlassian.net"))
	assert.Error(t, validateURL("acme.atlassian.net"))
}

func TestReportOutcomes(t *testing.T) {
	var out bytes.Buffer
	rootCmd.SetOut(&out)
	t.Cleanup(func() { rootCmd.SetOut(nil) })

	err := reportOutcomes(rootCmd, []jira.Outcome{
		{Key: "FSA-1", TransitionID: "11", Success: true, StatusCode: 204},
		{Key: "FSA-2", StatusCode: 400, Err: &jira.ProtocolError{StatusCode: 400}},
	})
	assert.EqualError(t, err, "1 of 2 transitions failed")
	assert.Contains(t, out.String(), "ok      FSA-1 (transition 11)")
	assert.Contains(t, out.String(), "failed  FSA-2")
}

func TestScheduleFromFlags(t *testing.T) {
	loc := time.FixedZone("BRT", -3*60*60)

	sched, err := scheduleFromFlags("", "09:00", nil, loc)
	require.NoError(t, err)
	assert.Nil(t, sched, "no date, no schedule")

	_, err = scheduleFromFlags("", "09:00", []string{"Ana-1-2"}, loc)
	assert.Error(t, err)

	_, err = scheduleFromFlags("21/10/2026", "09:00", nil, loc)
	assert.Error(t, err)

	sched, err = scheduleFromFlags("2026-10-21", "14:00", []string{"Ana-1-2", "Bruno-3-4"}, loc)
	require.NoError(t, err)
	require.NotNil(t, sched)
	assert.True(t, time.Date(2026, 10, 21, 14, 0, 0, 0, loc).Equal(sched.At))
	assert.Equal(t, "Ana-1-2\nBruno-3-4", sched.Technicians)
}
