package schedule

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/volatiletech/null/v8"

	"github.com/trezcool/madrasa/core"
)

func TestParseSlot(t *testing.T) {
	tests := []struct {
		s         string
		want      Slot
		wantField string
		wantMsg   string
	}{
		{s: "sun_1", want: Slot{Day: Sunday, Period: 1}},
		{s: "THU_7", want: Slot{Day: Thursday, Period: 7}},
		{s: "sun", wantField: "slot", wantMsg: errMalformedSlot},
		{s: "sun_1_2", wantField: "slot", wantMsg: errMalformedSlot},
		{s: "sun_x", wantField: "period", wantMsg: errPeriodRange},
		{s: "sun_0", wantField: "period", wantMsg: errPeriodRange},
		{s: "wed_8", wantField: "period", wantMsg: errPeriodRange},
		{s: "fri_1", wantField: "day", wantMsg: errUnknownDay},
	}
	for _, tt := range tests {
		t.Run(tt.s, func(t *testing.T) {
			got, err := ParseSlot(tt.s)
			if tt.wantField != "" {
				var vErr *core.ValidationError
				require.True(t, errors.As(err, &vErr), "err = %v", err)
				assert.Equal(t, ErrSlotValidation, vErr.Err)
				assert.Equal(t, []core.FieldError{{Field: tt.wantField, Error: tt.wantMsg}}, vErr.Fields)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
			assert.True(t, got.Valid())
		})
	}
}

func TestSlot_Text(t *testing.T) {
	sch := Schedule{
		{Day: Monday, Period: 2}: {SubjectID: null.StringFrom("s1")},
		{Day: Sunday, Period: 7}: {TeacherID: null.StringFrom("t1")},
	}
	data, err := json.Marshal(sch)
	require.NoError(t, err)
	assert.JSONEq(t, `{
		"mon_2": {"subject_id": "s1", "teacher_id": null},
		"sun_7": {"subject_id": null, "teacher_id": "t1"}
	}`, string(data))

	var got Schedule
	require.NoError(t, json.Unmarshal(data, &got))
	assert.Equal(t, sch, got)
	assert.Equal(t, []Slot{{Day: Sunday, Period: 7}, {Day: Monday, Period: 2}}, got.Slots())

	assert.Error(t, json.Unmarshal([]byte(`{"fri_1": {}}`), &got))
}

func TestSaveSchedule_Validate(t *testing.T) {
	tests := []struct {
		name    string
		cells   map[string]Cell
		want    Schedule
		wantErr map[string]string
	}{
		{name: "nil cells", wantErr: map[string]string{"cells": "this field is required"}},
		{name: "empty cells", cells: map[string]Cell{}, want: Schedule{}},
		{name: "bad period", cells: map[string]Cell{"sun_9": {}}, wantErr: map[string]string{"cells.sun_9": errPeriodRange}},
		{name: "bad day", cells: map[string]Cell{"sat_1": {}}, wantErr: map[string]string{"cells.sat_1": errUnknownDay}},
		{
			name: "blank ids are unset",
			cells: map[string]Cell{
				"sun_1": {SubjectID: null.StringFrom(" s1 "), TeacherID: null.StringFrom("  ")},
				"tue_3": {},
			},
			want: Schedule{
				{Day: Sunday, Period: 1}:  {SubjectID: null.StringFrom("s1")},
				{Day: Tuesday, Period: 3}: {},
			},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := SaveSchedule{Cells: tt.cells}.Validate()
			if tt.wantErr != nil {
				var vErr *core.ValidationError
				require.True(t, errors.As(err, &vErr), "err = %v", err)
				fields := make(map[string]string)
				for _, f := range vErr.Fields {
					fields[f.Field] = f.Error
				}
				assert.Equal(t, tt.wantErr, fields)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestRender(t *testing.T) {
	sch := Schedule{
		{Day: Monday, Period: 1}: {SubjectID: null.StringFrom("gone"), TeacherID: null.StringFrom("t1")},
		{Day: Sunday, Period: 2}: {SubjectID: null.StringFrom("s1")},
		{Day: Sunday, Period: 1}: {},
	}
	subjects := map[string]string{"s1": "Math"}
	teachers := map[string]string{"t1": "Ali"}

	assert.Equal(t, []RenderedCell{
		{Slot: Slot{Day: Sunday, Period: 1}},
		{Slot: Slot{Day: Sunday, Period: 2}, SubjectID: null.StringFrom("s1"), Subject: "Math"},
		{
			Slot: Slot{Day: Monday, Period: 1}, SubjectID: null.StringFrom("gone"), Subject: Unknown,
			TeacherID: null.StringFrom("t1"), Teacher: "Ali",
		},
	}, Render(sch, subjects, teachers))
	assert.Empty(t, Render(Schedule{}, subjects, teachers))
}

type repoMock struct {
	schedules map[core.ClassTitle]Schedule
	saved     int
	err       error
}

func (m *repoMock) GetSchedule(_ context.Context, _ string, class core.ClassTitle) (Schedule, error) {
	return m.schedules[class], m.err
}

func (m *repoMock) SaveSchedule(_ context.Context, _ string, class core.ClassTitle, cells Schedule) error {
	if m.err != nil {
		return m.err
	}
	m.saved++
	if m.schedules[class] == nil {
		m.schedules[class] = make(Schedule)
	}
	for slot, cell := range cells {
		m.schedules[class][slot] = cell
	}
	return nil
}

func (m *repoMock) QuerySchedules(context.Context, string) (map[core.ClassTitle]Schedule, error) {
	return m.schedules, m.err
}

func TestService_Save(t *testing.T) {
	class := core.NewClassTitle("1", "A")
	repo := &repoMock{schedules: make(map[core.ClassTitle]Schedule)}
	svc := NewService(repo)
	ctx := context.Background()

	err := svc.Save(ctx, "s", core.ClassTitle{Grade: "1"}, Schedule{{Day: Sunday, Period: 1}: {}})
	assert.True(t, errors.As(err, new(*core.ValidationError)))

	// both pairs would be stored under "x - فصل y - فصل z"
	for _, bad := range []core.ClassTitle{core.NewClassTitle("x - فصل y", "z"), core.NewClassTitle("x", "y - فصل z")} {
		err = svc.Save(ctx, "s", bad, Schedule{{Day: Sunday, Period: 1}: {}})
		var vErr *core.ValidationError
		require.True(t, errors.As(err, &vErr))
		assert.Equal(t, []core.FieldError{{Field: "class", Error: errClassSep}}, vErr.Fields)
	}
	assert.Empty(t, repo.schedules)

	err = svc.Save(ctx, "s", class, Schedule{{Day: "fri", Period: 1}: {}})
	assert.True(t, errors.As(err, new(*core.ValidationError)))

	require.NoError(t, svc.Save(ctx, "s", class, Schedule{}))
	assert.Equal(t, 0, repo.saved)

	got, err := svc.Get(ctx, "s", class)
	require.NoError(t, err)
	assert.NotNil(t, got)
	assert.Empty(t, got)

	repo.err = errors.New("db down")
	assert.Error(t, svc.Save(ctx, "s", class, Schedule{{Day: Sunday, Period: 1}: {}}))
}

func TestService_TeacherClashes(t *testing.T) {
	c1A, c1B, c2A := core.NewClassTitle("1", "A"), core.NewClassTitle("1", "B"), core.NewClassTitle("2", "A")
	sun1, sun2 := Slot{Day: Sunday, Period: 1}, Slot{Day: Sunday, Period: 2}
	teach := func(id string) Cell { return Cell{TeacherID: null.StringFrom(id)} }

	repo := &repoMock{schedules: map[core.ClassTitle]Schedule{
		c2A: {sun1: teach("ali"), sun2: teach("omar")},
		c1A: {sun1: teach("ali"), sun2: {SubjectID: null.StringFrom("math")}},
		c1B: {sun1: teach("ali"), sun2: teach("omar")},
	}}
	svc := NewService(repo)

	got, err := svc.TeacherClashes(context.Background(), "s")
	require.NoError(t, err)
	assert.Equal(t, []Clash{
		{TeacherID: "ali", Slot: sun1, Classes: []core.ClassTitle{c1A, c1B, c2A}},
		{TeacherID: "omar", Slot: sun2, Classes: []core.ClassTitle{c1B, c2A}},
	}, got)

	repo.schedules = map[core.ClassTitle]Schedule{c1A: {sun1: teach("ali")}, c1B: {sun2: teach("ali")}}
	got, err = svc.TeacherClashes(context.Background(), "s")
	require.NoError(t, err)
	assert.Equal(t, []Clash{}, got)
}
