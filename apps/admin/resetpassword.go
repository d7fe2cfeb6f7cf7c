package main

import (
	"context"

	"github.com/trezcool/madrasa/core/school"
)

func (cli *commandLine) resetPassword(slug, pwd, confirm string) error {
	ctx := context.Background()
	sch, err := cli.schoolSvc.GetBySlug(ctx, slug)
	if err != nil {
		return err
	}

	data := school.ResetAdminPassword{Password: pwd, PasswordConfirm: confirm}
	if err = data.Validate(cli.validate, sch); err != nil {
		return cli.describe(err)
	}
	if _, err = cli.schoolSvc.SetAdminPassword(ctx, sch, data.Password); err != nil {
		return err
	}
	return nil
}
