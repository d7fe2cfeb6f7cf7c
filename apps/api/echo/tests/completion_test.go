package tests

import (
	"context"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/volatiletech/null/v8"

	. "github.com/trezcool/madrasa/apps/api/echo"
	"github.com/trezcool/madrasa/core"
	"github.com/trezcool/madrasa/core/completion"
	"github.com/trezcool/madrasa/core/plan"
	"github.com/trezcool/madrasa/core/schedule"
	"github.com/trezcool/madrasa/tests"
)

func Test_completionApi(t *testing.T) {
	app := setup(t)
	ctx := context.Background()
	nour := testutil.CreateSchool(t, schoolRepo, "Nour", "nour")

	ali := testutil.CreateTeacher(t, schoolRepo, nour.ID, "Ali", "ali", "ali@nour.test")
	omar := testutil.CreateTeacher(t, schoolRepo, nour.ID, "Omar", "omar", "omar@nour.test")
	sara := testutil.CreateTeacher(t, schoolRepo, nour.ID, "Sara", "sara", "")
	testutil.CreateTeacher(t, schoolRepo, nour.ID, "Idle", "idle", "idle@nour.test")

	c1A, c2B := core.NewClassTitle("1", "A"), core.NewClassTitle("2", "B")
	testutil.CreateClass(t, schoolRepo, nour.ID, c1A.Grade, c1A.Section, false)
	testutil.CreateClass(t, schoolRepo, nour.ID, c2B.Grade, c2B.Section, true)

	sun1 := schedule.Slot{Day: schedule.Sunday, Period: 1}
	sun2 := schedule.Slot{Day: schedule.Sunday, Period: 2}
	mon1 := schedule.Slot{Day: schedule.Monday, Period: 1}
	taught := func(id string) schedule.Cell { return schedule.Cell{TeacherID: null.StringFrom(id)} }

	require.NoError(t, scheduleRepo.SaveSchedule(ctx, nour.ID, c1A, schedule.Schedule{sun1: taught(ali.ID), sun2: taught(omar.ID)}))
	require.NoError(t, scheduleRepo.SaveSchedule(ctx, nour.ID, c2B, schedule.Schedule{sun1: taught(omar.ID), mon1: taught(sara.ID)}))
	// not a class of the school
	require.NoError(t, scheduleRepo.SaveSchedule(ctx, nour.ID, core.NewClassTitle("9", "Z"), schedule.Schedule{sun1: taught(ali.ID)}))

	t.Run("no active week", func(t *testing.T) {
		checkCodeAndData(t, httpTest{
			wantCode: http.StatusOK,
			wantData: []byte(`{"week": null, "completed": [], "incomplete": []}`),
		}, serve(app, http.MethodGet, "/v1/schools/nour/completion"))

		checkCodeAndData(t, httpTest{wantCode: http.StatusOK, wantData: marchallObj(t, CountResponse{Count: 0})},
			serve(app, http.MethodPost, "/v1/schools/nour/completion/reminders"))
		assert.Empty(t, mailSvc.SentMessages())
	})

	w := testutil.CreateWeek(t, weekRepo, nour.ID, "Week 1", core.NewDate(2026, 9, 6))
	lesson := func(s string) plan.Entry { return plan.Entry{Lesson: null.StringFrom(s)} }
	for k, e := range map[plan.Key]plan.Entry{
		plan.NewKey(c1A, sun1): lesson("Fractions"),
		plan.NewKey(c1A, sun2): lesson("Poetry"),
		plan.NewKey(c2B, sun1): lesson("   "),
		plan.NewKey(c2B, mon1): {Homework: null.StringFrom("p. 3")},
	} {
		_, err := planRepo.SavePlan(ctx, nour.ID, w.ID, k, e)
		require.NoError(t, err)
	}

	t.Run("resolved", func(t *testing.T) {
		rec := serve(app, http.MethodGet, "/v1/schools/nour/completion")
		require.Equal(t, http.StatusOK, rec.Code)

		var res completion.Result
		unmarshal(t, rec, &res)
		require.NotNil(t, res.Week)
		assert.Equal(t, w.ID, res.Week.ID)

		require.Len(t, res.Completed, 1)
		assert.Equal(t, ali.ID, res.Completed[0].Teacher.ID)
		assert.Equal(t, []completion.Session{{Class: c1A, Slot: sun1}}, res.Completed[0].Sessions)
		assert.Empty(t, res.Completed[0].Missing)

		require.Len(t, res.Incomplete, 2)
		assert.Equal(t, omar.ID, res.Incomplete[0].Teacher.ID)
		assert.Equal(t, []completion.Session{{Class: c1A, Slot: sun2}, {Class: c2B, Slot: sun1}}, res.Incomplete[0].Sessions)
		assert.Equal(t, []completion.Session{{Class: c2B, Slot: sun1}}, res.Incomplete[0].Missing)
		assert.Equal(t, sara.ID, res.Incomplete[1].Teacher.ID)
		assert.Equal(t, []completion.Session{{Class: c2B, Slot: mon1}}, res.Incomplete[1].Missing)
	})

	t.Run("reminders", func(t *testing.T) {
		mailSvc.Reset()
		checkCodeAndData(t, httpTest{wantCode: http.StatusOK, wantData: marchallObj(t, CountResponse{Count: 1})},
			serve(app, http.MethodPost, "/v1/schools/nour/completion/reminders"))

		sent := mailSvc.SentMessages()
		require.Len(t, sent, 1)
		assert.Equal(t, "omar@nour.test", sent[0].To[0].Address)
		assert.Equal(t, "Lesson plans reminder: Week 1", sent[0].Subject)
		assert.Contains(t, sent[0].TextContent, "Hello Omar,")
		assert.Contains(t, sent[0].TextContent, plan.NewKey(c2B, sun1).String())
		assert.Contains(t, sent[0].HTMLContent, "<strong>Week 1</strong>")
	})

	t.Run("unknown school", func(t *testing.T) {
		rec := serve(app, http.MethodGet, "/v1/schools/lol/completion")
		assert.Equal(t, http.StatusNotFound, rec.Code)
	})
}
