package main

import (
	"encoding/json"
	"fmt"
	"io"
	"net/url"

	"github.com/hairizuan-noorazman/user-registry/directory"
	"github.com/hairizuan-noorazman/user-registry/listview"
	"github.com/hairizuan-noorazman/user-registry/user"
	"github.com/spf13/cobra"
)

func newUsersCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "users",
		Short: "Manage user records",
	}

	cmd.AddCommand(newUsersListCmd())
	cmd.AddCommand(newUsersGetCmd())
	cmd.AddCommand(newUsersAddCmd())
	cmd.AddCommand(newUsersEditCmd())
	cmd.AddCommand(newUsersDeleteCmd())
	return cmd
}

func newUsersListCmd() *cobra.Command {
	var search, sortSpec string

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List users, optionally filtered and sorted",
		Example: `  userctl users list --search bo
  userctl users list --sort age:desc,name`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if !cmd.Flags().Changed("sort") {
				sortSpec = getConfigSort()
			}
			// Reject bad specs before they reach the server.
			if _, err := listview.ParseSort(sortSpec); err != nil {
				return err
			}

			client, err := getClient()
			if err != nil {
				return err
			}

			query := url.Values{}
			if search != "" {
				query.Set("search", search)
			}
			if sortSpec != "" {
				query.Set("sort", sortSpec)
			}

			body, err := client.Get("/api/v1/users", query)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if flagJSON {
				printRawJSON(out, body)
				return nil
			}

			var res directory.Result
			if err := json.Unmarshal(body, &res); err != nil {
				return fmt.Errorf("failed to parse response: %w", err)
			}

			printUserTable(out, res.Table)
			printMessage(out, fmt.Sprintf("\nShowing %d of %d users", len(res.Users), res.Total))
			return nil
		},
	}

	cmd.Flags().StringVar(&search, "search", "", "Filter by name or email substring")
	cmd.Flags().StringVar(&sortSpec, "sort", "", `Sort keys in priority order, e.g. "age:desc,name:asc"`)
	return cmd
}

func newUsersGetCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "get <uid>",
		Short: "Show a single user",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := getClient()
			if err != nil {
				return err
			}

			body, err := client.Get("/api/v1/users/"+url.PathEscape(args[0]), nil)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if flagJSON {
				printRawJSON(out, body)
				return nil
			}

			var u user.User
			if err := json.Unmarshal(body, &u); err != nil {
				return fmt.Errorf("failed to parse response: %w", err)
			}
			printUserDetail(out, u)
			return nil
		},
	}
}

// userFlags binds one flag per editable field.
type userFlags struct {
	name, email, dob, gender, country, phone, status string
	age                                              int
}

func (f *userFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVar(&f.name, "name", "", "Full name")
	cmd.Flags().StringVar(&f.email, "email", "", "Email address")
	cmd.Flags().StringVar(&f.dob, "dob", "", "Date of birth (YYYY-MM-DD)")
	cmd.Flags().StringVar(&f.gender, "gender", "", "male, female or other")
	cmd.Flags().IntVar(&f.age, "age", 0, "Age in years")
	cmd.Flags().StringVar(&f.country, "country", "", "Country")
	cmd.Flags().StringVar(&f.phone, "phone", "", "Phone number (10 digits)")
	cmd.Flags().StringVar(&f.status, "status", "", "true (active) or false (inactive)")
}

// apply copies the flags the user set onto in.
func (f *userFlags) apply(cmd *cobra.Command, in *user.Input) {
	changed := cmd.Flags().Changed
	if changed("name") {
		in.Name = f.name
	}
	if changed("email") {
		in.Email = f.email
	}
	if changed("dob") {
		in.DOB = f.dob
	}
	if changed("gender") {
		in.Gender = f.gender
	}
	if changed("age") {
		age := f.age
		in.Age = &age
	}
	if changed("country") {
		in.Country = f.country
	}
	if changed("phone") {
		in.PhoneNumber = f.phone
	}
	if changed("status") {
		in.IsActive = f.status
	}
}

func newUsersAddCmd() *cobra.Command {
	var flags userFlags

	cmd := &cobra.Command{
		Use:   "add",
		Short: "Add a user",
		Example: `  userctl users add --name Al --email al@x.com --dob 1994-03-02 \
    --gender male --age 30 --country Singapore --phone 0123456789 --status true`,
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := getClient()
			if err != nil {
				return err
			}

			var in user.Input
			flags.apply(cmd, &in)

			body, err := client.Post("/api/v1/users", in)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if flagJSON {
				printRawJSON(out, body)
				return nil
			}

			var u user.User
			if err := json.Unmarshal(body, &u); err != nil {
				return fmt.Errorf("failed to parse response: %w", err)
			}
			printMessage(out, fmt.Sprintf("User created: %s (%s)", u.Name, u.UID))
			return nil
		},
	}

	flags.register(cmd)
	return cmd
}

func newUsersEditCmd() *cobra.Command {
	var flags userFlags

	cmd := &cobra.Command{
		Use:   "edit <uid>",
		Short: "Edit a user; fields not given keep their current value",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := getClient()
			if err != nil {
				return err
			}
			path := "/api/v1/users/" + url.PathEscape(args[0])

			body, err := client.Get(path, nil)
			if err != nil {
				return err
			}
			var current user.User
			if err := json.Unmarshal(body, &current); err != nil {
				return fmt.Errorf("failed to parse response: %w", err)
			}

			in := current.Input()
			flags.apply(cmd, &in)

			body, err = client.Put(path, in)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if flagJSON {
				printRawJSON(out, body)
				return nil
			}

			var u user.User
			if err := json.Unmarshal(body, &u); err != nil {
				return fmt.Errorf("failed to parse response: %w", err)
			}
			printMessage(out, fmt.Sprintf("User updated: %s (%s)", u.Name, u.UID))
			return nil
		},
	}

	flags.register(cmd)
	return cmd
}

func newUsersDeleteCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "delete <uid>",
		Short: "Delete a user",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := getClient()
			if err != nil {
				return err
			}

			if _, err := client.Delete("/api/v1/users/" + url.PathEscape(args[0])); err != nil {
				return err
			}

			printMessage(cmd.OutOrStdout(), "User deleted: "+args[0])
			return nil
		},
	}
}

func printUserDetail(out io.Writer, u user.User) {
	dob := "-"
	if !u.DOB.IsZero() {
		dob = u.DOB.Format("02-01-2006")
	}

	headers := []string{"FIELD", "VALUE"}
	rows := [][]string{
		{"UID", u.UID},
		{"Name", u.Name},
		{"Email", u.Email},
		{"DOB", dob},
		{"Gender", string(u.Gender)},
		{"Age", fmt.Sprintf("%d", u.Age)},
		{"Country", u.Country},
		{"Phone", u.PhoneNumber},
		{"Status", u.IsActive.Label()},
	}
	printTable(out, headers, rows)
}
