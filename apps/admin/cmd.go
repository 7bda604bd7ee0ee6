package main

import (
	"context"
	"database/sql"
	"errors"
	"flag"
	"fmt"
	"strings"

	"github.com/tmalu/clubhub/core/classgroup"
	"github.com/tmalu/clubhub/core/season"
	"github.com/tmalu/clubhub/core/user"
)

var errHelp = errors.New("help provided")

type commandLine struct {
	db        *sql.DB
	usrSvc    user.ServiceInterface
	grpSvc    classgroup.ServiceInterface
	seasonSvc season.ServiceInterface
}

func (cli *commandLine) printUsage() {
	fmt.Println("Usage:")
	fmt.Println("  migrate COMMAND [ARGS] - apply database migrations (up, up-by-one, up-to, down, down-to, redo)")
	fmt.Println("  createuser -fname NAME -lname NAME -email EMAIL [-roles ROLES] - register a user")
	fmt.Println("  creategroup -name NAME [-members EMAILS] - register a class group")
	fmt.Println("  listusers - list all registered users")
	fmt.Println("  startseason -admin EMAIL - open a new season")
	fmt.Println("  finishseason -admin EMAIL - close the running season and wipe all attendance")
}

func (cli *commandLine) run(args []string) error {
	if len(args) < 2 {
		cli.printUsage()
		return errHelp
	}

	createUserCmd := flag.NewFlagSet("createuser", flag.ExitOnError)
	createUserFName := createUserCmd.String("fname", "", "The user's first name.")
	createUserLName := createUserCmd.String("lname", "", "The user's last name.")
	createUserEmail := createUserCmd.String("email", "", "The user's email.")
	createUserRoles := createUserCmd.String("roles", "member", "Comma-separated roles (admin, teacher, member).")

	createGroupCmd := flag.NewFlagSet("creategroup", flag.ExitOnError)
	createGroupName := createGroupCmd.String("name", "", "The class group's name.")
	createGroupMembers := createGroupCmd.String("members", "", "Comma-separated member emails, enrolled in order.")

	startSeasonCmd := flag.NewFlagSet("startseason", flag.ExitOnError)
	startSeasonAdmin := startSeasonCmd.String("admin", "", "The email of the administrator opening the season.")

	finishSeasonCmd := flag.NewFlagSet("finishseason", flag.ExitOnError)
	finishSeasonAdmin := finishSeasonCmd.String("admin", "", "The email of the administrator closing the season.")

	switch args[1] {
	case "migrate":
		if len(args) < 3 {
			cli.printUsage()
			return errHelp
		}
		return cli.migrate(args[2:])
	case "createuser":
		if err := createUserCmd.Parse(args[2:]); err != nil {
			return err
		}
		if *createUserFName == "" || *createUserLName == "" || *createUserEmail == "" {
			createUserCmd.Usage()
			return errHelp
		}
		usr, err := cli.createUser(*createUserFName, *createUserLName, *createUserEmail, *createUserRoles)
		if err != nil {
			return err
		}
		fmt.Printf("user %s (%s) created\n", usr.FullName(), usr.Email)
		return nil
	case "creategroup":
		if err := createGroupCmd.Parse(args[2:]); err != nil {
			return err
		}
		if *createGroupName == "" {
			createGroupCmd.Usage()
			return errHelp
		}
		group, err := cli.createGroup(*createGroupName, splitCSV(*createGroupMembers))
		if err != nil {
			return err
		}
		fmt.Printf("class group %q created with %d members\n", group.Name, len(group.Members))
		return nil
	case "listusers":
		users, err := cli.listUsers()
		if err != nil {
			return err
		}
		for _, usr := range users {
			fmt.Printf("%s\t%s\t%s\n", usr.Email, usr.FullName(), strings.Join(usr.Roles, ","))
		}
		return nil
	case "startseason":
		if err := startSeasonCmd.Parse(args[2:]); err != nil {
			return err
		}
		if *startSeasonAdmin == "" {
			startSeasonCmd.Usage()
			return errHelp
		}
		return cli.startSeason(*startSeasonAdmin)
	case "finishseason":
		if err := finishSeasonCmd.Parse(args[2:]); err != nil {
			return err
		}
		if *finishSeasonAdmin == "" {
			finishSeasonCmd.Usage()
			return errHelp
		}
		return cli.finishSeason(*finishSeasonAdmin)
	default:
		cli.printUsage()
		return errHelp
	}
}

func (cli *commandLine) createUser(fname, lname, email, roles string) (user.User, error) {
	parsed, err := parseRoles(roles)
	if err != nil {
		return user.User{}, err
	}
	return cli.usrSvc.Create(context.Background(), user.NewUser{
		FirstName: fname,
		LastName:  lname,
		Email:     email,
		Roles:     parsed,
	})
}

// createGroup registers a class group and enrolls members in the given order.
func (cli *commandLine) createGroup(name string, memberEmails []string) (classgroup.ClassGroup, error) {
	ctx := context.Background()

	group, err := cli.grpSvc.Create(ctx, classgroup.NewClassGroup{Name: name})
	if err != nil {
		return classgroup.ClassGroup{}, err
	}
	for _, email := range memberEmails {
		usr, err := cli.usrSvc.GetByEmail(ctx, email)
		if err != nil {
			return classgroup.ClassGroup{}, err
		}
		if err = cli.grpSvc.AddMember(ctx, group.ID, usr.ID); err != nil {
			return classgroup.ClassGroup{}, err
		}
	}
	return cli.grpSvc.GetByID(ctx, group.ID)
}

func (cli *commandLine) listUsers() ([]user.User, error) {
	return cli.usrSvc.QueryAll(context.Background())
}

func parseRoles(csv string) ([]string, error) {
	var roles []string
	for _, r := range splitCSV(csv) {
		switch r {
		case "admin":
			roles = append(roles, user.RoleAdmin)
		case "teacher":
			roles = append(roles, user.RoleTeacher)
		case "member":
			roles = append(roles, user.RoleMember)
		default:
			return nil, fmt.Errorf("unknown role %q (valid: admin, teacher, member)", r)
		}
	}
	if len(roles) == 0 {
		roles = []string{user.RoleMember}
	}
	return roles, nil
}

func splitCSV(s string) []string {
	var out []string
	for _, v := range strings.Split(s, ",") {
		if v = strings.TrimSpace(v); v != "" {
			out = append(out, v)
		}
	}
	return out
}

// resolveAdmin finds the acting administrator by email.
func (cli *commandLine) resolveAdmin(ctx context.Context, email string) (user.User, error) {
	usr, err := cli.usrSvc.GetByEmail(ctx, email)
	if err != nil {
		return user.User{}, err
	}
	if !usr.IsAdmin() {
		return user.User{}, fmt.Errorf("%s is not an administrator", usr.Email)
	}
	return usr, nil
}

func (cli *commandLine) startSeason(adminEmail string) error {
	ctx := context.Background()

	usr, err := cli.resolveAdmin(ctx, adminEmail)
	if err != nil {
		return err
	}
	s, err := cli.seasonSvc.Start(ctx, usr.ID)
	if err != nil {
		return err
	}
	fmt.Printf("season started on %s\n", s.StartDate)
	return nil
}

func (cli *commandLine) finishSeason(adminEmail string) error {
	ctx := context.Background()

	usr, err := cli.resolveAdmin(ctx, adminEmail)
	if err != nil {
		return err
	}
	s, err := cli.seasonSvc.Finish(ctx, usr.ID)
	if err != nil {
		return err
	}
	fmt.Printf("season finished on %s; all attendance wiped\n", s.FinishDate.Time.Format("2006-01-02"))
	return nil
}
