package main

import (
	"database/sql"
	"fmt"
	"io/fs"
	"strconv"

	"github.com/trezcool/goose"

	appfs "github.com/tmalu/clubhub/fs"
)

var gooseRunFunc = runGoose // mockable

func (cli *commandLine) migrate(args []string) error {
	arguments := make([]string, 0)
	if len(args) > 1 {
		arguments = append(arguments, args[1:]...)
	}
	return gooseRunFunc(args[0], cli.db, appfs.FS, "migrations", arguments...)
}

func runGoose(command string, db *sql.DB, fsys fs.FS, dir string, args ...string) error {
	switch command {
	case "up":
		return goose.Up(db, fsys, dir)
	case "up-by-one":
		return goose.UpByOne(db, fsys, dir)
	case "up-to":
		version, err := parseVersion(command, args)
		if err != nil {
			return err
		}
		return goose.UpTo(db, fsys, dir, version)
	case "down":
		return goose.Down(db, fsys, dir)
	case "down-to":
		version, err := parseVersion(command, args)
		if err != nil {
			return err
		}
		return goose.DownTo(db, fsys, dir, version)
	case "redo":
		return goose.Redo(db, fsys, dir)
	default:
		return fmt.Errorf("%q: no such command", command)
	}
}

func parseVersion(command string, args []string) (int64, error) {
	if len(args) == 0 {
		return 0, fmt.Errorf("%s requires a VERSION argument", command)
	}
	version, err := strconv.ParseInt(args[0], 10, 64)
	if err != nil {
		return 0, fmt.Errorf("version must be a number (got '%s')", args[0])
	}
	return version, nil
}
