package main

import (
	"context"

	"github.com/pkg/errors"

	"github.com/setulabs/shikshasetu/core"
	"github.com/setulabs/shikshasetu/core/seed"
)

// seed loads the fixture set into the document store. A populated store is
// left alone unless -force is given.
func (cli *commandLine) seed(force bool) error {
	ctx := context.Background()

	tree, err := cli.store.ReadTree(ctx)
	if err != nil {
		return errors.Wrap(err, "reading document tree")
	}
	if !tree.IsEmpty() && !force {
		return errors.New("store already populated; use -force to overwrite")
	}

	fixture, err := core.NormalizeTree(seed.Database())
	if err != nil {
		return errors.Wrap(err, "encoding seed fixtures")
	}
	return errors.Wrap(cli.store.Write(ctx, "", fixture), "seeding document tree")
}
