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
	"errors"
	"fmt"
	"os"
	"runtime/debug"

	"github.com/jessevdk/go-flags"

	"code.stratatrade.io/strata/config"
)

var (
	// CLIVersionHash specifies the git commit used to build the application.
	CLIVersionHash = ""

	// CLIVersion specifies the version used to build the application.
	CLIVersion = "v0.1.0+dev"
)

// Exit codes. Interrupted mirrors the conventional 128+SIGINT.
const (
	exitOK          = 0
	exitConfigError = 1
	exitRuntime     = 2
	exitInterrupted = 130
)

// exitError carries an explicit process exit code through go-flags.
type exitError struct {
	code int
	err  error
}

func (e *exitError) Error() string { return e.err.Error() }
func (e *exitError) Unwrap() error { return e.err }

func configErr(err error) error  { return &exitError{code: exitConfigError, err: err} }
func runtimeErr(err error) error { return &exitError{code: exitRuntime, err: err} }

// Subcommand is the signature of a sub command that can be registered.
type Subcommand func(context.Context, *flags.Parser) error

// Register registers one or more subcommands.
func Register(ctx context.Context, parser *flags.Parser, cmds ...Subcommand) error {
	for _, fn := range cmds {
		if err := fn(ctx, parser); err != nil {
			return err
		}
	}
	return nil
}

func main() {
	setCommitHash()
	os.Exit(run(context.Background()))
}

func run(ctx context.Context) int {
	parser := flags.NewParser(&config.Empty{}, flags.Default)

	if err := Register(ctx, parser,
		Init,
		Run,
		Version,
	); err != nil {
		fmt.Printf("%+v\n", err)
		return exitRuntime
	}

	if _, err := parser.Parse(); err != nil {
		var ee *exitError
		if errors.As(err, &ee) {
			return ee.code
		}
		if fe, ok := err.(*flags.Error); ok {
			if fe.Type == flags.ErrHelp {
				return exitOK
			}
			parser.WriteHelp(os.Stdout)
			return exitConfigError
		}
		return exitRuntime
	}
	return exitOK
}

func setCommitHash() {
	info, ok := debug.ReadBuildInfo()
	if !ok {
		return
	}
	for _, v := range info.Settings {
		if v.Key == "vcs.revision" {
			CLIVersionHash = v.Value
		}
	}
}
