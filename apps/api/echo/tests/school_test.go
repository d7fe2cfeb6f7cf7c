package tests

import (
	"context"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/trezcool/madrasa/core/school"
	"github.com/trezcool/madrasa/tests"
)

func Test_home(t *testing.T) {
	app := setup(t)

	rec := serve(app, http.MethodGet, "/")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "Welcome to Madrasa API!", rec.Body.String())
}

func Test_schoolApi_create(t *testing.T) {
	app := setup(t)
	testutil.CreateSchool(t, schoolRepo, "Taken", "taken")

	body := func(name, slug, uname, pwd, confirm string) []byte {
		return marchallObj(t, school.NewSchool{
			Name:            name,
			Slug:            slug,
			AdminUsername:   uname,
			AdminPassword:   pwd,
			PasswordConfirm: confirm,
		})
	}
	pwd := testutil.Password

	tests := []httpTest{
		{
			name: "empty body", body: []byte("{}"), wantCode: http.StatusBadRequest,
			wantData: marchallObj(t, map[string]string{
				"name":             "this field is required",
				"slug":             "this field is required",
				"admin_username":   "this field is required",
				"admin_password":   "this field is required",
				"password_confirm": "this field is required",
			}),
		},
		{
			name: "blank name", body: body("   ", "nour", "nouradmin", pwd, pwd), wantCode: http.StatusBadRequest,
			wantData: marchallObj(t, map[string]string{"name": "this field is required"}),
		},
		{
			name: "invalid slug", body: body("Nour", "nour school", "nouradmin", pwd, pwd), wantCode: http.StatusBadRequest,
			wantData: marchallObj(t, map[string]string{"slug": "only lowercase letters, digits and hyphens are allowed"}),
		},
		{
			name: "weak password", body: body("Nour", "nour", "nouradmin", "password", "password"), wantCode: http.StatusBadRequest,
			wantData: marchallObj(t, map[string]string{
				"admin_password": "password must contain at least 1 uppercase character, 1 lowercase character, 1 digit and 1 special character",
			}),
		},
		{
			name: "slug taken", body: body("Nour", "Taken", "nouradmin", pwd, pwd), wantCode: http.StatusBadRequest,
			wantData: marchallObj(t, map[string]string{"slug": school.ErrSlugExists.Error()}),
		},
		{name: "registered", body: body("  Nour Academy ", "Nour-Academy", "NourAdmin", pwd, pwd), wantCode: http.StatusCreated},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := serve(app, http.MethodPost, "/v1/schools", tt.body)
			checkCodeAndData(t, tt, rec)

			if rec.Code == http.StatusCreated {
				var got school.School
				unmarshal(t, rec, &got)
				assert.NotEmpty(t, got.ID)
				assert.Equal(t, "Nour Academy", got.Name)
				assert.Equal(t, "nour-academy", got.Slug)
				assert.Equal(t, "nouradmin", got.AdminUsername)
				assert.Equal(t, school.SubscriptionTrial, got.SubscriptionStatus)
				assert.NotContains(t, rec.Body.String(), "password")

				stored, err := schoolRepo.GetSchool(context.Background(), school.GetFilter{Slug: "nour-academy"})
				require.NoError(t, err)
				assert.NoError(t, stored.CheckAdminPassword(pwd))
			}
		})
	}
}

func Test_schoolApi_detail(t *testing.T) {
	app := setup(t)
	nour := testutil.CreateSchool(t, schoolRepo, "Nour", "nour")
	huda := testutil.CreateSchool(t, schoolRepo, "Huda", "huda")

	errNotFound := marchallObj(t, httpErr{Error: school.ErrNotFound.Error()})

	tests := []httpTest{
		{name: "list", path: "/v1/schools", wantCode: http.StatusOK, wantData: marchallList(t, huda, nour)},
		{name: "retrieve unknown", path: "/v1/schools/lol", wantCode: http.StatusNotFound, wantData: errNotFound},
		{name: "retrieve", path: "/v1/schools/nour", wantCode: http.StatusOK, wantData: marchallObj(t, nour)},
		{name: "retrieve with trailing slash", path: "/v1/schools/nour/", wantCode: http.StatusOK, wantData: marchallObj(t, nour)},
		{name: "retrieve is case insensitive", path: "/v1/schools/NOUR", wantCode: http.StatusOK, wantData: marchallObj(t, nour)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			checkCodeAndData(t, tt, serve(app, methodOr(tt.method, http.MethodGet), tt.path))
		})
	}
}

func Test_schoolApi_update(t *testing.T) {
	app := setup(t)
	testutil.CreateSchool(t, schoolRepo, "Nour", "nour")

	t.Run("invalid logo url", func(t *testing.T) {
		rec := serve(app, http.MethodPut, "/v1/schools/nour", []byte(`{"logo_url": "not a url"}`))
		assert.Equal(t, http.StatusBadRequest, rec.Code)
		assert.Contains(t, rec.Body.String(), "logo_url")
	})

	t.Run("partial update", func(t *testing.T) {
		rec := serve(app, http.MethodPut, "/v1/schools/nour", []byte(`{"name": " Nour School ", "weekly_note": "Exams next week"}`))
		require.Equal(t, http.StatusOK, rec.Code)

		var got school.School
		unmarshal(t, rec, &got)
		assert.Equal(t, "Nour School", got.Name)
		assert.Equal(t, "nour", got.Slug)
		assert.Equal(t, "Exams next week", got.Branding.WeeklyNote)
		assert.Empty(t, got.Branding.HeaderText)
	})

	t.Run("subscription", func(t *testing.T) {
		rec := serve(app, http.MethodPut, "/v1/schools/nour/subscription", []byte(`{"status": "lol"}`))
		assert.Equal(t, http.StatusBadRequest, rec.Code)

		rec = serve(app, http.MethodPut, "/v1/schools/nour/subscription", []byte(`{"status": "Active"}`))
		require.Equal(t, http.StatusOK, rec.Code)
		var got school.School
		unmarshal(t, rec, &got)
		assert.Equal(t, school.SubscriptionActive, got.SubscriptionStatus)
	})
}

func Test_schoolApi_destroy(t *testing.T) {
	app := setup(t)
	nour := testutil.CreateSchool(t, schoolRepo, "Nour", "nour")
	testutil.CreateTeacher(t, schoolRepo, nour.ID, "Ali", "ali", "")

	rec := serve(app, http.MethodDelete, "/v1/schools/nour")
	require.Equal(t, http.StatusNoContent, rec.Code)

	_, err := schoolRepo.GetSchool(context.Background(), school.GetFilter{ID: nour.ID})
	assert.Equal(t, school.ErrNotFound, err)
	teachers, err := schoolRepo.QueryTeachers(context.Background(), nour.ID)
	require.NoError(t, err)
	assert.Empty(t, teachers)

	rec = serve(app, http.MethodDelete, "/v1/schools/nour")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}
