package tests

import (
	"context"
	"net/http"
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/volatiletech/null/v8"

	"github.com/trezcool/madrasa/core"
	"github.com/trezcool/madrasa/core/plan"
	"github.com/trezcool/madrasa/core/schedule"
	"github.com/trezcool/madrasa/core/week"
	"github.com/trezcool/madrasa/tests"
)

func Test_weekApi_create(t *testing.T) {
	app := setup(t)
	testutil.CreateSchool(t, schoolRepo, "Nour", "nour")
	path := "/v1/schools/nour/weeks"

	tests := []httpTest{
		{
			name: "empty body", body: []byte(`{}`), wantCode: http.StatusBadRequest,
			wantData: marchallObj(t, map[string]string{"name": "this field is required"}),
		},
		{
			name: "missing start date", body: []byte(`{"name": "Week 1", "end_date": "2026-09-10"}`), wantCode: http.StatusBadRequest,
			wantData: marchallObj(t, map[string]string{"start_date": "this field is required"}),
		},
		{
			name: "end before start", body: []byte(`{"name": "Week 1", "start_date": "2026-09-10", "end_date": "2026-09-06"}`),
			wantCode: http.StatusBadRequest,
			wantData: marchallObj(t, map[string]string{"end_date": week.ErrInvalidPeriod.Error()}),
		},
		{name: "malformed date", body: []byte(`{"name": "Week 1", "start_date": "10/09/2026"}`), wantCode: http.StatusBadRequest},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			checkCodeAndData(t, tt, serve(app, http.MethodPost, path, tt.body))
		})
	}

	t.Run("first week is active", func(t *testing.T) {
		rec := serve(app, http.MethodPost, path, []byte(`{"name": " Week 1 ", "start_date": "2026-09-06", "end_date": "2026-09-10"}`))
		require.Equal(t, http.StatusCreated, rec.Code)
		var w1 week.Week
		unmarshal(t, rec, &w1)
		assert.Equal(t, "Week 1", w1.Name)
		assert.Equal(t, core.NewDate(2026, 9, 6), w1.StartDate)
		assert.True(t, w1.IsActive)

		rec = serve(app, http.MethodPost, path, []byte(`{"name": "Week 2", "start_date": "2026-09-13", "end_date": "2026-09-17"}`))
		require.Equal(t, http.StatusCreated, rec.Code)
		var w2 week.Week
		unmarshal(t, rec, &w2)
		assert.False(t, w2.IsActive)

		rec = serve(app, http.MethodGet, path)
		require.Equal(t, http.StatusOK, rec.Code)
		var weeks []week.Week
		unmarshal(t, rec, &weeks)
		require.Len(t, weeks, 2)
		assert.Equal(t, w2.ID, weeks[0].ID)
		assert.Equal(t, w1.ID, weeks[1].ID)
	})
}

func Test_weekApi_activate(t *testing.T) {
	app := setup(t)
	nour := testutil.CreateSchool(t, schoolRepo, "Nour", "nour")
	huda := testutil.CreateSchool(t, schoolRepo, "Huda", "huda")

	checkCodeAndData(t, httpTest{
		wantCode: http.StatusNotFound,
		wantData: marchallObj(t, httpErr{Error: week.ErrNoActiveWeek.Error()}),
	}, serve(app, http.MethodGet, "/v1/schools/nour/weeks/active"))

	w1 := testutil.CreateWeek(t, weekRepo, nour.ID, "Week 1", core.NewDate(2026, 9, 6))
	w2 := testutil.CreateWeek(t, weekRepo, nour.ID, "Week 2", core.NewDate(2026, 9, 13))
	other := testutil.CreateWeek(t, weekRepo, huda.ID, "Week 1", core.NewDate(2026, 9, 6))

	checkCodeAndData(t, httpTest{wantCode: http.StatusOK, wantData: marchallObj(t, w1)},
		serve(app, http.MethodGet, "/v1/schools/nour/weeks/active"))

	tests := []httpTest{
		{name: "unknown week", path: "/v1/schools/nour/weeks/lol/activate", wantCode: http.StatusNotFound},
		{name: "week of another school", path: "/v1/schools/nour/weeks/" + other.ID + "/activate", wantCode: http.StatusNotFound},
		{name: "activated", path: "/v1/schools/nour/weeks/" + w2.ID + "/activate", wantCode: http.StatusOK},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			checkCodeAndData(t, tt, serve(app, http.MethodPost, tt.path))
		})
	}

	weeks, err := weekRepo.QueryWeeks(context.Background(), nour.ID)
	require.NoError(t, err)
	active := 0
	for _, w := range weeks {
		if w.IsActive {
			active++
			assert.Equal(t, w2.ID, w.ID)
		}
	}
	assert.Equal(t, 1, active)

	hudaActive, err := weekRepo.GetActiveWeek(context.Background(), huda.ID)
	require.NoError(t, err)
	assert.Equal(t, other.ID, hudaActive.ID)
}

func Test_weekApi_plans(t *testing.T) {
	app := setup(t)
	nour := testutil.CreateSchool(t, schoolRepo, "Nour", "nour")
	w := testutil.CreateWeek(t, weekRepo, nour.ID, "Week 1", core.NewDate(2026, 9, 6))

	key := plan.NewKey(core.NewClassTitle("1", "A"), schedule.Slot{Day: schedule.Sunday, Period: 1})
	plansPath := "/v1/schools/nour/weeks/" + w.ID + "/plans"
	keyPath := plansPath + "/" + url.PathEscape(key.String())

	t.Run("bad key", func(t *testing.T) {
		tests := []httpTest{
			{name: "no class separator", path: plansPath + "/lol_sun_1", wantCode: http.StatusBadRequest},
			{name: "no slot", path: plansPath + "/" + url.PathEscape("1 - فصل A"), wantCode: http.StatusBadRequest},
			{
				name: "bad period", path: plansPath + "/" + url.PathEscape("1 - فصل A_sun_9"), wantCode: http.StatusBadRequest,
				wantData: marchallObj(t, map[string]string{"key": "period must be between 1 and 7"}),
			},
			{
				name: "class separator twice", path: plansPath + "/" + url.PathEscape("x - فصل y - فصل z_sun_1"), wantCode: http.StatusBadRequest,
				wantData: marchallObj(t, map[string]string{"key": "invalid class title"}),
			},
		}
		for _, tt := range tests {
			t.Run(tt.name, func(t *testing.T) {
				checkCodeAndData(t, tt, serve(app, http.MethodPut, tt.path, []byte(`{"lesson": "x"}`)))
			})
		}
	})

	t.Run("unknown week", func(t *testing.T) {
		rec := serve(app, http.MethodPut, "/v1/schools/nour/weeks/lol/plans/"+url.PathEscape(key.String()), []byte(`{"lesson": "x"}`))
		assert.Equal(t, http.StatusNotFound, rec.Code)
		rec = serve(app, http.MethodGet, "/v1/schools/nour/weeks/lol/plans")
		assert.Equal(t, http.StatusNotFound, rec.Code)
	})

	t.Run("fields are merged", func(t *testing.T) {
		rec := serve(app, http.MethodPut, keyPath, []byte(`{"lesson": "Fractions", "homework": "p. 12"}`))
		checkCodeAndData(t, httpTest{
			wantCode: http.StatusOK,
			wantData: []byte(`{"lesson": "Fractions", "homework": "p. 12", "enrichment": null}`),
		}, rec)

		rec = serve(app, http.MethodPut, keyPath, []byte(`{"homework": "p. 14", "enrichment": "video"}`))
		checkCodeAndData(t, httpTest{
			wantCode: http.StatusOK,
			wantData: []byte(`{"lesson": "Fractions", "homework": "p. 14", "enrichment": "video"}`),
		}, rec)

		rec = serve(app, http.MethodGet, plansPath)
		require.Equal(t, http.StatusOK, rec.Code)
		var plans plan.Plans
		unmarshal(t, rec, &plans)
		assert.Equal(t, plan.Plans{key: {
			Lesson:     null.StringFrom("Fractions"),
			Homework:   null.StringFrom("p. 14"),
			Enrichment: null.StringFrom("video"),
		}}, plans)
	})

	t.Run("escaped characters in the key", func(t *testing.T) {
		tests := []struct {
			name  string
			class core.ClassTitle
		}{
			{"percent sign", core.NewClassTitle("100%", "A")},
			{"slash", core.NewClassTitle("1/2", "B")},
		}
		for _, tt := range tests {
			t.Run(tt.name, func(t *testing.T) {
				k := plan.NewKey(tt.class, schedule.Slot{Day: schedule.Monday, Period: 2})
				rec := serve(app, http.MethodPut, plansPath+"/"+url.PathEscape(k.String()), []byte(`{"lesson": "Percentages"}`))
				require.Equal(t, http.StatusOK, rec.Code)

				plans, err := planRepo.QueryPlans(context.Background(), nour.ID, w.ID)
				require.NoError(t, err)
				assert.Equal(t, null.StringFrom("Percentages"), plans[k].Lesson)
			})
		}
	})

	t.Run("clear", func(t *testing.T) {
		rec := serve(app, http.MethodDelete, plansPath)
		require.Equal(t, http.StatusNoContent, rec.Code)
		checkCodeAndData(t, httpTest{wantCode: http.StatusOK, wantData: []byte(`{}`)}, serve(app, http.MethodGet, plansPath))
	})

	t.Run("deleting the week removes its plans", func(t *testing.T) {
		rec := serve(app, http.MethodPut, keyPath, []byte(`{"lesson": "Fractions"}`))
		require.Equal(t, http.StatusOK, rec.Code)

		rec = serve(app, http.MethodDelete, "/v1/schools/nour/weeks/"+w.ID)
		require.Equal(t, http.StatusNoContent, rec.Code)

		plans, err := planRepo.QueryPlans(context.Background(), nour.ID, w.ID)
		require.NoError(t, err)
		assert.Empty(t, plans)

		rec = serve(app, http.MethodDelete, "/v1/schools/nour/weeks/"+w.ID)
		assert.Equal(t, http.StatusNotFound, rec.Code)
	})
}
