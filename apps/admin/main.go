package main

import (
	"log"
	"os"

	"github.com/jmoiron/sqlx"

	"github.com/tmalu/clubhub/core"
	"github.com/tmalu/clubhub/core/classgroup"
	"github.com/tmalu/clubhub/core/season"
	"github.com/tmalu/clubhub/core/user"
	"github.com/tmalu/clubhub/storage/database"
	sqlxrepos "github.com/tmalu/clubhub/storage/database/sqlx"
)

var logger *log.Logger // todo: logger service

func main() {
	defer os.Exit(0)

	logger = log.New(os.Stdout, "ADMIN : ", log.LstdFlags|log.Lmicroseconds|log.Lshortfile)

	conf := core.NewConfig()

	// set up DB
	db, err := database.Open(conf)
	errAndDie(err)
	defer db.Close()
	errAndDie(db.Ping())

	// set up repos & services
	sqlxDB := sqlx.NewDb(db, conf.Database.Engine)
	attRepo := sqlxrepos.NewAttendanceRepository(sqlxDB)
	usrSvc := user.NewService(sqlxrepos.NewUserRepository(sqlxDB))
	grpSvc := classgroup.NewService(sqlxrepos.NewClassGroupRepository(sqlxDB))
	seasonSvc := season.NewService(sqlxrepos.NewSeasonRepository(sqlxDB), attRepo)

	// start CLI
	cli := commandLine{
		db:        db,
		usrSvc:    usrSvc,
		grpSvc:    grpSvc,
		seasonSvc: seasonSvc,
	}
	if err := cli.run(os.Args); err != nil {
		if err != errHelp {
			logger.Printf("\nerror: %s\n", err)
		}
		os.Exit(1)
	}
}

func errAndDie(err error) {
	if err != nil {
		logger.Fatal(err)
	}
}
