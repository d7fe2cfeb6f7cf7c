package main

import (
	"context"
	"database/sql"
	"fmt"
	"strconv"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/trezcool/madrasa/core/school"
	sqlxrepos "github.com/trezcool/madrasa/storage/database/sqlx"
	"github.com/trezcool/madrasa/tests"
)

var schoolRepo school.Repository

func setup(t *testing.T) *commandLine {
	// set up DB & repos
	db := testutil.PrepareDB(t)
	schoolRepo = sqlxrepos.NewSchoolRepository(db)
	validate, translator := testutil.NewValidator()

	// start CLI
	return &commandLine{
		db:         db,
		schoolSvc:  school.NewService(schoolRepo),
		validate:   validate,
		translator: translator,
	}
}

type cliTest struct {
	name       string
	args       []string // without program name
	wantErr    error
	wantErrStr string
	extra      interface{}
}

func mockPasswords(pwds ...string) {
	i := 0
	readPasswordFunc = func(fd int) ([]byte, error) {
		if i >= len(pwds) {
			return nil, nil
		}
		pwd := pwds[i]
		i++
		return []byte(pwd), nil
	}
}

func Test_commandLine_migrate(t *testing.T) {
	cli := setup(t)

	gooseRunFunc = func(command string, db *sql.DB, dir string, args ...string) error {
		switch command {
		case "up", "up-by-one", "down", "fix", "redo", "reset", "status", "version": // pass
		case "up-to":
			if len(args) == 0 {
				return fmt.Errorf("up-to must be of form: goose [OPTIONS] DRIVER DBSTRING up-to VERSION")
			}
			if _, err := strconv.ParseInt(args[0], 10, 64); err != nil {
				return fmt.Errorf("version must be a number (got '%s')", args[0])
			}
		case "create":
			if len(args) == 0 {
				return fmt.Errorf("create must be of form: goose [OPTIONS] DRIVER DBSTRING create NAME [go|sql]")
			}
		case "down-to":
			if len(args) == 0 {
				return fmt.Errorf("down-to must be of form: goose [OPTIONS] DRIVER DBSTRING down-to VERSION")
			}
			if _, err := strconv.ParseInt(args[0], 10, 64); err != nil {
				return fmt.Errorf("version must be a number (got '%s')", args[0])
			}
		default:
			return fmt.Errorf("%q: no such command", command)
		}
		return nil
	}
	t.Cleanup(func() { gooseRunFunc = nil })

	tests := []cliTest{
		{name: "no subcommand", args: []string{"migrate"}, wantErr: errHelp},
		{name: "unknown subcommand", args: []string{"migrate", "lol"}, wantErrStr: "\"lol\": no such command"},
		{name: "up-to: no args", args: []string{"migrate", "up-to"}, wantErrStr: "up-to must be of form: goose [OPTIONS] DRIVER DBSTRING up-to VERSION"},
		{name: "up-to: non-int arg", args: []string{"migrate", "up-to", "lol"}, wantErrStr: "version must be a number (got 'lol')"},
		{name: "create: no args", args: []string{"migrate", "create"}, wantErrStr: "create must be of form: goose [OPTIONS] DRIVER DBSTRING create NAME [go|sql]"},
		{name: "down-to: no args", args: []string{"migrate", "down-to"}, wantErrStr: "down-to must be of form: goose [OPTIONS] DRIVER DBSTRING down-to VERSION"},
		{name: "down-to: non-int arg", args: []string{"migrate", "down-to", "lol"}, wantErrStr: "version must be a number (got 'lol')"},
		{name: "up", args: []string{"migrate", "up"}},
		{name: "up-by-one", args: []string{"migrate", "up-by-one"}},
		{name: "up-to", args: []string{"migrate", "up-to", "2"}},
		{name: "down", args: []string{"migrate", "down"}},
		{name: "down-to", args: []string{"migrate", "down-to", "1"}},
		{name: "redo", args: []string{"migrate", "redo"}},
		{name: "reset", args: []string{"migrate", "reset"}},
		{name: "status", args: []string{"migrate", "status"}},
		{name: "version", args: []string{"migrate", "version"}},
		{name: "create", args: []string{"migrate", "create", "holidays", "sql"}},
		{name: "fix", args: []string{"migrate", "fix"}},
	}
	for _, tt := range tests {
		args := append([]string{"admin"}, tt.args...)

		t.Run(tt.name, func(t *testing.T) {
			err := cli.run(args)
			switch {
			case tt.wantErr != nil:
				assert.Equal(t, tt.wantErr, err)
			case tt.wantErrStr != "":
				if assert.Error(t, err) {
					assert.Equal(t, tt.wantErrStr, err.Error())
				}
			default:
				assert.NoError(t, err)
			}
		})
	}
}

func Test_commandLine_addSchool(t *testing.T) {
	cli := setup(t)
	testutil.CreateSchool(t, schoolRepo, "Taken", "taken")

	type extra struct {
		pwds []string
	}
	pwd := testutil.Password
	tests := []cliTest{
		{name: "no command", wantErr: errHelp},
		{name: "unknown command", args: []string{"lol"}, wantErr: errHelp},
		{name: "no args", args: []string{"addschool"}, wantErr: errHelp},
		{name: "missing slug", args: []string{"addschool", "-name", "Nour", "-username", "nouradmin"}, wantErr: errHelp},
		{
			name: "no password", args: []string{"addschool", "-name", "Nour", "-slug", "nour", "-username", "nouradmin"},
			wantErr: errHelp,
		},
		{
			name: "password mismatch", args: []string{"addschool", "-name", "Nour", "-slug", "nour", "-username", "nouradmin"},
			extra: extra{pwds: []string{pwd, pwd + "x"}}, wantErrStr: "password_confirm: password_confirm must be equal to AdminPassword",
		},
		{
			name: "weak password", args: []string{"addschool", "-name", "Nour", "-slug", "nour", "-username", "nouradmin"},
			extra: extra{pwds: []string{"12345678", "12345678"}}, wantErrStr: "admin_password: password cannot be entirely numeric",
		},
		{
			name: "slug taken", args: []string{"addschool", "-name", "Nour", "-slug", "taken", "-username", "nouradmin"},
			extra: extra{pwds: []string{pwd, pwd}}, wantErrStr: "slug: " + school.ErrSlugExists.Error(),
		},
		{
			name: "registered", args: []string{"addschool", "-name", "Nour", "-slug", "Nour", "-username", "NourAdmin"},
			extra: extra{pwds: []string{pwd, pwd}},
		},
	}
	for _, tt := range tests {
		args := append([]string{"admin"}, tt.args...)

		t.Run(tt.name, func(t *testing.T) {
			if ex, ok := tt.extra.(extra); ok {
				mockPasswords(ex.pwds...)
			} else {
				mockPasswords()
			}

			err := cli.run(args)
			switch {
			case tt.wantErr != nil:
				assert.Equal(t, tt.wantErr, err)
			case tt.wantErrStr != "":
				if assert.Error(t, err) {
					assert.Equal(t, tt.wantErrStr, err.Error())
				}
			default:
				require.NoError(t, err)
				sch, err := schoolRepo.GetSchool(context.Background(), school.GetFilter{Slug: "nour"})
				require.NoError(t, err)
				assert.Equal(t, "nouradmin", sch.AdminUsername)
				assert.Equal(t, school.SubscriptionTrial, sch.SubscriptionStatus)
				assert.NoError(t, sch.CheckAdminPassword(pwd))
			}
		})
	}
}

func Test_commandLine_resetPassword(t *testing.T) {
	cli := setup(t)
	sch := testutil.CreateSchool(t, schoolRepo, "Nour", "nour")
	newPwd := "N3w&Better!pwd"

	type extra struct {
		pwds []string
	}
	tests := []cliTest{
		{name: "no args", args: []string{"resetpassword"}, wantErr: errHelp},
		{name: "school but no password", args: []string{"resetpassword", "-school", "nour"}, wantErr: errHelp},
		{
			name: "school not found", args: []string{"resetpassword", "-school", "lol"},
			extra: extra{pwds: []string{newPwd, newPwd}}, wantErr: school.ErrNotFound,
		},
		{
			name: "password too short", args: []string{"resetpassword", "-school", "nour"},
			extra: extra{pwds: []string{"aB1!", "aB1!"}}, wantErrStr: "password: password must contain at least 8 characters",
		},
		{name: "reset", args: []string{"resetpassword", "-school", "nour"}, extra: extra{pwds: []string{newPwd, newPwd}}},
	}
	for _, tt := range tests {
		args := append([]string{"admin"}, tt.args...)

		t.Run(tt.name, func(t *testing.T) {
			if ex, ok := tt.extra.(extra); ok {
				mockPasswords(ex.pwds...)
			} else {
				mockPasswords()
			}

			err := cli.run(args)
			switch {
			case tt.wantErr != nil:
				assert.Equal(t, tt.wantErr, err)
			case tt.wantErrStr != "":
				if assert.Error(t, err) {
					assert.Equal(t, tt.wantErrStr, err.Error())
				}
			default:
				require.NoError(t, err)
				refreshed, err := schoolRepo.GetSchool(context.Background(), school.GetFilter{ID: sch.ID})
				require.NoError(t, err)
				assert.NotEqual(t, sch.AdminPasswordHash, refreshed.AdminPasswordHash)
				assert.NoError(t, refreshed.CheckAdminPassword(newPwd))
			}
		})
	}
}
