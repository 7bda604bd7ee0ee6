package main

import (
	"context"
	"database/sql"
	"io/fs"
	"testing"

	"github.com/tmalu/clubhub/core"
	"github.com/tmalu/clubhub/core/attendance"
	"github.com/tmalu/clubhub/core/classgroup"
	"github.com/tmalu/clubhub/core/season"
	"github.com/tmalu/clubhub/core/user"
	dummydb "github.com/tmalu/clubhub/storage/database/dummy"
	testutil "github.com/tmalu/clubhub/tests"
)

type testRepos struct {
	usr    user.Repository
	grp    classgroup.Repository
	season season.Repository
	att    attendance.Repository
}

func setup(t *testing.T) (*commandLine, testRepos) {
	t.Helper()

	db, err := dummydb.Open()
	if err != nil {
		t.Fatalf("dummydb.Open(): %v", err)
	}
	repos := testRepos{
		usr:    dummydb.NewUserRepository(db),
		grp:    dummydb.NewClassGroupRepository(db),
		season: dummydb.NewSeasonRepository(db),
		att:    dummydb.NewAttendanceRepository(db),
	}

	cli := &commandLine{
		usrSvc:    user.NewService(repos.usr),
		grpSvc:    classgroup.NewService(repos.grp),
		seasonSvc: season.NewService(repos.season, repos.att),
	}
	return cli, repos
}

type cliTest struct {
	name       string
	args       []string // without program name
	wantErr    error
	wantErrStr string
}

func checkCLIErr(t *testing.T, tt cliTest, err error) {
	t.Helper()

	if err == nil {
		if tt.wantErr != nil || tt.wantErrStr != "" {
			t.Errorf("cli.run() error = nil, want %v%s", tt.wantErr, tt.wantErrStr)
		}
		return
	}
	if tt.wantErr != nil {
		if err != tt.wantErr {
			t.Errorf("cli.run() error = %v, wantErr %v", err, tt.wantErr)
		}
	} else if tt.wantErrStr != "" {
		if err.Error() != tt.wantErrStr {
			t.Errorf("cli.run() error.Error() = %s, wantErrStr %s", err.Error(), tt.wantErrStr)
		}
	} else {
		t.Errorf("cli.run() unexpected error = %v", err)
	}
}

func Test_commandLine_migrate(t *testing.T) {
	cli, _ := setup(t)

	var gotCommand string
	var gotArgs []string
	defer func() { gooseRunFunc = runGoose }()

	// commands that would hit the DB are only checked for dispatch
	gooseRunFunc = func(command string, db *sql.DB, fsys fs.FS, dir string, args ...string) error {
		gotCommand = command
		gotArgs = args
		switch command {
		case "up", "up-by-one", "down", "redo":
			return nil
		case "up-to", "down-to":
			_, err := parseVersion(command, args)
			return err
		default:
			return runGoose(command, nil, fsys, dir, args...)
		}
	}

	tests := []cliTest{
		{name: "no subcommand", args: []string{"migrate"}, wantErr: errHelp},
		{name: "unknown subcommand", args: []string{"migrate", "lol"}, wantErrStr: "\"lol\": no such command"},
		{name: "up-to: no args", args: []string{"migrate", "up-to"}, wantErrStr: "up-to requires a VERSION argument"},
		{name: "up-to: non-int arg", args: []string{"migrate", "up-to", "lol"}, wantErrStr: "version must be a number (got 'lol')"},
		{name: "down-to: no args", args: []string{"migrate", "down-to"}, wantErrStr: "down-to requires a VERSION argument"},
		{name: "down-to: non-int arg", args: []string{"migrate", "down-to", "lol"}, wantErrStr: "version must be a number (got 'lol')"},
		{name: "up", args: []string{"migrate", "up"}},
		{name: "up-by-one", args: []string{"migrate", "up-by-one"}},
		{name: "up-to", args: []string{"migrate", "up-to", "2"}},
		{name: "down", args: []string{"migrate", "down"}},
		{name: "down-to", args: []string{"migrate", "down-to", "1"}},
		{name: "redo", args: []string{"migrate", "redo"}},
	}
	for _, tt := range tests {
		args := append([]string{"admin"}, tt.args...)

		t.Run(tt.name, func(t *testing.T) {
			checkCLIErr(t, tt, cli.run(args))

			if tt.wantErr == nil && tt.wantErrStr == "" {
				if gotCommand != tt.args[1] {
					t.Errorf("dispatched command = %q; want %q", gotCommand, tt.args[1])
				}
				if len(tt.args) > 2 && (len(gotArgs) == 0 || gotArgs[0] != tt.args[2]) {
					t.Errorf("dispatched args = %v; want %v", gotArgs, tt.args[2:])
				}
			}
		})
	}
}

func Test_commandLine_createUser(t *testing.T) {
	cli, repos := setup(t)

	tests := []cliTest{
		{name: "no args", args: []string{"createuser"}, wantErr: errHelp},
		{name: "missing email", args: []string{"createuser", "-fname", "Grace", "-lname", "Banza"}, wantErr: errHelp},
		{
			name:       "unknown role",
			args:       []string{"createuser", "-fname", "Grace", "-lname", "Banza", "-email", "grace@test.cd", "-roles", "coach"},
			wantErrStr: `unknown role "coach" (valid: admin, teacher, member)`,
		},
		{name: "staff user created", args: []string{"createuser", "-fname", " Grace ", "-lname", "Banza", "-email", "GRACE@Test.CD", "-roles", "admin,teacher"}},
		{name: "member by default", args: []string{"createuser", "-fname", "Jonah", "-lname", "Kasongo", "-email", "jonah@test.cd"}},
	}
	for _, tt := range tests {
		args := append([]string{"admin"}, tt.args...)

		t.Run(tt.name, func(t *testing.T) {
			checkCLIErr(t, tt, cli.run(args))

			switch tt.name {
			case "staff user created":
				usr, err := repos.usr.GetUserByEmail(context.Background(), "grace@test.cd")
				if err != nil {
					t.Fatalf("GetUserByEmail() failed: %v", err)
				}
				if usr.FullName() != "Grace Banza" {
					t.Errorf("FullName() = %q; want %q", usr.FullName(), "Grace Banza")
				}
				if !usr.IsAdmin() || !usr.IsTeacher() {
					t.Errorf("Roles = %v; want admin and teacher", usr.Roles)
				}
				if !usr.IsActive {
					t.Error("IsActive = false; want true")
				}
			case "member by default":
				usr, err := repos.usr.GetUserByEmail(context.Background(), "jonah@test.cd")
				if err != nil {
					t.Fatalf("GetUserByEmail() failed: %v", err)
				}
				if !usr.IsMember() || usr.IsAdmin() || usr.IsTeacher() {
					t.Errorf("Roles = %v; want member only", usr.Roles)
				}
			}
		})
	}
}

func Test_commandLine_createGroup(t *testing.T) {
	cli, repos := setup(t)

	alice := testutil.CreateUser(t, repos.usr, "Alice", "Kalombo", "alice@test.cd", []string{user.RoleMember}, true)
	bob := testutil.CreateUser(t, repos.usr, "Bob", "Ilunga", "bob@test.cd", []string{user.RoleMember}, true)

	t.Run("name is required", func(t *testing.T) {
		tt := cliTest{wantErr: errHelp}
		checkCLIErr(t, tt, cli.run([]string{"admin", "creategroup"}))
	})

	t.Run("unknown member email", func(t *testing.T) {
		tt := cliTest{wantErr: user.ErrNotFound}
		checkCLIErr(t, tt, cli.run([]string{"admin", "creategroup", "-name", "Dance Troupe", "-members", "lol@test.cd"}))
	})

	t.Run("group created with roster in order", func(t *testing.T) {
		group, err := cli.createGroup("Dance Troupe", []string{bob.Email, alice.Email})
		if err != nil {
			t.Fatalf("createGroup() failed: %v", err)
		}
		if group.Name != "Dance Troupe" {
			t.Errorf("Name = %q; want %q", group.Name, "Dance Troupe")
		}
		if len(group.Members) != 2 {
			t.Fatalf("len(Members) = %d; want 2", len(group.Members))
		}
		if group.Members[0].ID != bob.ID || group.Members[1].ID != alice.ID {
			t.Errorf("roster = [%s, %s]; want [%s, %s]",
				group.Members[0].FullName(), group.Members[1].FullName(), bob.FullName(), alice.FullName())
		}
	})
}

func Test_commandLine_listUsers(t *testing.T) {
	cli, repos := setup(t)

	testutil.CreateUser(t, repos.usr, "Alice", "Kalombo", "alice@test.cd", []string{user.RoleMember}, true)
	testutil.CreateUser(t, repos.usr, "Bob", "Ilunga", "bob@test.cd", []string{user.RoleTeacher}, true)

	users, err := cli.listUsers()
	if err != nil {
		t.Fatalf("listUsers() failed: %v", err)
	}
	if len(users) != 2 {
		t.Errorf("len(users) = %d; want 2", len(users))
	}

	if err := cli.run([]string{"admin", "listusers"}); err != nil {
		t.Errorf("cli.run() failed: %v", err)
	}
}

func Test_commandLine_startSeason(t *testing.T) {
	cli, repos := setup(t)

	admin := testutil.CreateUser(t, repos.usr, "Admin", "Kal", "admin@test.cd", []string{user.RoleAdmin}, true)
	member := testutil.CreateUser(t, repos.usr, "Jonah", "Kasongo", "jonah@test.cd", []string{user.RoleMember}, true)

	tests := []cliTest{
		{name: "no command", wantErr: errHelp},
		{name: "unknown command", args: []string{"lol"}, wantErr: errHelp},
		{name: "no args", args: []string{"startseason"}, wantErr: errHelp},
		{name: "user not found", args: []string{"startseason", "-admin", "lol@test.cd"}, wantErr: user.ErrNotFound},
		{name: "not an admin", args: []string{"startseason", "-admin", member.Email}, wantErrStr: "jonah@test.cd is not an administrator"},
		{name: "season started", args: []string{"startseason", "-admin", admin.Email}},
		{name: "seasons never stack", args: []string{"startseason", "-admin", admin.Email}, wantErr: season.ErrActiveSeasonExists},
	}
	for _, tt := range tests {
		args := append([]string{"admin"}, tt.args...)

		t.Run(tt.name, func(t *testing.T) {
			checkCLIErr(t, tt, cli.run(args))

			if tt.name == "season started" {
				s, err := repos.season.GetActiveSeason(context.Background())
				if err != nil {
					t.Fatalf("GetActiveSeason() failed: %v", err)
				}
				if s.StartedByID != admin.ID {
					t.Errorf("StartedByID = %q; want %q", s.StartedByID, admin.ID)
				}
			}
		})
	}
}

func Test_commandLine_finishSeason(t *testing.T) {
	cli, repos := setup(t)

	admin := testutil.CreateUser(t, repos.usr, "Admin", "Kal", "admin@test.cd", []string{user.RoleAdmin}, true)
	member := testutil.CreateUser(t, repos.usr, "Jonah", "Kasongo", "jonah@test.cd", []string{user.RoleMember}, true)

	t.Run("no active season", func(t *testing.T) {
		tt := cliTest{wantErr: season.ErrNoActiveSeason}
		checkCLIErr(t, tt, cli.run([]string{"admin", "finishseason", "-admin", admin.Email}))
	})

	t.Run("season finished and attendance wiped", func(t *testing.T) {
		testutil.StartSeason(t, repos.season, admin.ID)

		date := core.NewDate(2021, 4, 5)
		if _, err := repos.att.SaveFacts(context.Background(), []attendance.Fact{
			{Date: date, UserID: member.ID, Attended: true},
		}); err != nil {
			t.Fatalf("SaveFacts() failed: %v", err)
		}

		if err := cli.run([]string{"admin", "finishseason", "-admin", admin.Email}); err != nil {
			t.Fatalf("cli.run() failed: %v", err)
		}

		if _, err := repos.season.GetActiveSeason(context.Background()); err != season.ErrNoActiveSeason {
			t.Errorf("GetActiveSeason() err = %v; want %v", err, season.ErrNoActiveSeason)
		}
		if _, err := repos.att.FindFact(context.Background(), member.ID, date); err != attendance.ErrFactNotFound {
			t.Errorf("FindFact() err = %v; want %v", err, attendance.ErrFactNotFound)
		}
	})
}
