// Copyright (C) 2023 Gobalsky Labs Limited
//
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as
// published by the Free Software Foundation, either version 3 of the
// License, or (at your option) any later version.
//
// This program is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
// GNU Affero General Public License for more details.
//
// You should have received a copy of the GNU Affero General Public License
// along with this program.  If not, see <http://www.gnu.org/licenses/>.

package main

import (
	"context"
	"fmt"

	"github.com/jessevdk/go-flags"
)

type VersionCmd struct{}

var versionCmd VersionCmd

func (opts *VersionCmd) Execute(_ []string) error {
	fmt.Printf("strata %s (%s)\n", CLIVersion, CLIVersionHash)
	return nil
}

func Version(_ context.Context, parser *flags.Parser) error {
	versionCmd = VersionCmd{}

	short := "Shows the version of strata"
	long := "Shows the version of the strata runtime and the git commit it was built from"

	_, err := parser.AddCommand("version", short, long, &versionCmd)
	return err
}
