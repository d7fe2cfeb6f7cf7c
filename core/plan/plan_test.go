package plan

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/volatiletech/null/v8"

	"github.com/trezcool/madrasa/core"
	"github.com/trezcool/madrasa/core/schedule"
	"github.com/trezcool/madrasa/core/week"
)

func TestParseKey(t *testing.T) {
	sun1 := schedule.Slot{Day: schedule.Sunday, Period: 1}

	tests := []struct {
		name    string
		s       string
		want    Key
		wantMsg string
	}{
		{name: "valid", s: "1 - فصل A_sun_1", want: NewKey(core.NewClassTitle("1", "A"), sun1)},
		{name: "class with underscores", s: "KG_2 - فصل B_thu_7", want: NewKey(core.NewClassTitle("KG_2", "B"), schedule.Slot{Day: schedule.Thursday, Period: 7})},
		{name: "empty", s: "", wantMsg: "expected {class}_{day}_{period}"},
		{name: "slot only", s: "sun_1", wantMsg: "expected {class}_{day}_{period}"},
		{name: "bad class", s: "1A_sun_1", wantMsg: core.ErrInvalidClassTitle.Error()},
		{name: "bad day", s: "1 - فصل A_fri_1", wantMsg: "unknown day"},
		{name: "bad period", s: "1 - فصل A_sun_0", wantMsg: "period must be between 1 and 7"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseKey(tt.s)
			if tt.wantMsg != "" {
				var vErr *core.ValidationError
				require.True(t, errors.As(err, &vErr), "err = %v", err)
				assert.Equal(t, ErrKeyValidation, vErr.Err)
				assert.Equal(t, []core.FieldError{{Field: "key", Error: tt.wantMsg}}, vErr.Fields)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
			assert.Equal(t, tt.s, got.String())
		})
	}
}

func TestPlans_JSON(t *testing.T) {
	key := NewKey(core.NewClassTitle("1", "A"), schedule.Slot{Day: schedule.Monday, Period: 3})
	plans := Plans{key: {Lesson: null.StringFrom("Fractions")}}

	data, err := json.Marshal(plans)
	require.NoError(t, err)
	assert.JSONEq(t, `{"1 - فصل A_mon_3": {"lesson": "Fractions", "homework": null, "enrichment": null}}`, string(data))

	var got Plans
	require.NoError(t, json.Unmarshal(data, &got))
	assert.Equal(t, plans, got)
}

func TestEntry(t *testing.T) {
	orig := Entry{Lesson: null.StringFrom("Fractions"), Homework: null.StringFrom("p. 12")}

	tests := []struct {
		name         string
		entry        Entry
		update       Entry
		want         Entry
		wantAuthored bool
	}{
		{name: "empty update", entry: orig, want: orig, wantAuthored: true},
		{
			name: "set fields override", entry: orig,
			update:       Entry{Homework: null.StringFrom("p. 14"), Enrichment: null.StringFrom("video")},
			want:         Entry{Lesson: null.StringFrom("Fractions"), Homework: null.StringFrom("p. 14"), Enrichment: null.StringFrom("video")},
			wantAuthored: true,
		},
		{
			name: "blank lesson", entry: orig, update: Entry{Lesson: null.StringFrom(" \n ")},
			want: Entry{Lesson: null.StringFrom(" \n "), Homework: null.StringFrom("p. 12")},
		},
		{name: "homework only", update: Entry{Homework: null.StringFrom("p. 3")}, want: Entry{Homework: null.StringFrom("p. 3")}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := tt.entry.Merge(tt.update)
			assert.Equal(t, tt.want, got)
			assert.Equal(t, tt.wantAuthored, got.Authored())
		})
	}

	key := NewKey(core.NewClassTitle("1", "A"), schedule.Slot{Day: schedule.Sunday, Period: 1})
	other := NewKey(core.NewClassTitle("1", "B"), schedule.Slot{Day: schedule.Sunday, Period: 1})
	plans := Plans{key: orig}
	assert.True(t, plans.Authored(key))
	assert.False(t, plans.Authored(other))
}

type weeksMock map[string]week.Week

func (m weeksMock) Get(_ context.Context, schoolID, id string) (week.Week, error) {
	if w, ok := m[id]; ok && w.SchoolID == schoolID {
		return w, nil
	}
	return week.Week{}, week.ErrNotFound
}

type repoMock struct {
	plans map[string]Plans
}

func (m *repoMock) QueryPlans(_ context.Context, _, weekID string) (Plans, error) {
	return m.plans[weekID], nil
}

func (m *repoMock) SavePlan(_ context.Context, _, weekID string, key Key, e Entry) (Entry, error) {
	if m.plans[weekID] == nil {
		m.plans[weekID] = make(Plans)
	}
	m.plans[weekID][key] = m.plans[weekID][key].Merge(e)
	return m.plans[weekID][key], nil
}

func (m *repoMock) ClearWeekPlans(_ context.Context, _, weekID string) error {
	delete(m.plans, weekID)
	return nil
}

func TestService(t *testing.T) {
	ctx := context.Background()
	weeks := weeksMock{"w1": {ID: "w1", SchoolID: "nour"}, "w2": {ID: "w2", SchoolID: "huda"}}
	repo := &repoMock{plans: make(map[string]Plans)}
	svc := NewService(repo, weeks)
	key := NewKey(core.NewClassTitle("1", "A"), schedule.Slot{Day: schedule.Sunday, Period: 1})

	_, err := svc.Save(ctx, "nour", "w2", key, Entry{Lesson: null.StringFrom("x")})
	assert.Equal(t, week.ErrNotFound, errors.Cause(err))
	_, err = svc.Query(ctx, "nour", "lol")
	assert.True(t, core.IsNotFound(err))

	got, err := svc.Query(ctx, "nour", "w1")
	require.NoError(t, err)
	assert.Equal(t, Plans{}, got)

	_, err = svc.Save(ctx, "nour", "w1", key, Entry{Lesson: null.StringFrom("Fractions")})
	require.NoError(t, err)
	e, err := svc.Save(ctx, "nour", "w1", key, Entry{Homework: null.StringFrom("p. 12")})
	require.NoError(t, err)
	assert.Equal(t, Entry{Lesson: null.StringFrom("Fractions"), Homework: null.StringFrom("p. 12")}, e)

	require.NoError(t, svc.ClearWeek(ctx, "nour", "w1"))
	got, err = svc.Query(ctx, "nour", "w1")
	require.NoError(t, err)
	assert.Empty(t, got)
}
