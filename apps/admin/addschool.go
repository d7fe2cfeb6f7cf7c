package main

import (
	"context"
	"fmt"

	"github.com/trezcool/madrasa/core/school"
)

func (cli *commandLine) addSchool(name, slug, uname, pwd, confirm string) error {
	ctx := context.Background()
	ns := school.NewSchool{
		Name:            name,
		Slug:            slug,
		AdminUsername:   uname,
		AdminPassword:   pwd,
		PasswordConfirm: confirm,
	}
	if err := ns.Validate(ctx, cli.validate, cli.schoolSvc); err != nil {
		return cli.describe(err)
	}

	sch, err := cli.schoolSvc.Register(ctx, ns)
	if err != nil {
		return err
	}
	fmt.Printf("school %q registered with id %s\n", sch.Slug, sch.ID)
	return nil
}
