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
	"os"
	"path/filepath"

	"github.com/jessevdk/go-flags"

	"code.stratatrade.io/strata/config"
	"code.stratatrade.io/strata/logging"
)

type InitCmd struct {
	config.HomeFlag

	Force bool `short:"f" long:"force" description:"Erase existing configuration at the specified path"`
}

var initCmd InitCmd

func (opts *InitCmd) Execute(_ []string) error {
	logger := logging.NewLoggerFromConfig(logging.NewDefaultConfig())
	defer logger.AtExit()

	cfgPath := filepath.Join(opts.Home, "config.toml")
	if _, err := os.Stat(cfgPath); err == nil && !opts.Force {
		return configErr(fmt.Errorf("configuration already exists at `%s` please remove it first or re-run using -f", cfgPath))
	}

	if err := os.MkdirAll(opts.Home, 0o755); err != nil {
		return configErr(err)
	}
	if err := config.Write(opts.Home, config.NewDefaultConfig()); err != nil {
		return configErr(err)
	}

	logger.Info("configuration generated successfully", logging.String("path", cfgPath))
	return nil
}

func Init(_ context.Context, parser *flags.Parser) error {
	initCmd = InitCmd{}

	short := "Initializes a strata runtime"
	long := "Generate the minimal configuration required for a strata runtime to start"

	_, err := parser.AddCommand("init", short, long, &initCmd)
	return err
}
