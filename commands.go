package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

// One-shot commands load the library, run a single operation and save on success.

func newAddMemberCmd(a *app) *cobra.Command {
	var (
		name, stream string
		id           int64
	)
	cmd := &cobra.Command{
		Use:   "add-member",
		Short: "Register a member",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := a.mgr.AddMember(name, id, stream); err != nil {
				return a.fail(cmd, err)
			}
			fmt.Fprintln(cmd.OutOrStdout(), "Member added successfully!")
			return a.save(cmd)
		},
	}
	cmd.Flags().StringVar(&name, "name", "", "member name")
	cmd.Flags().Int64Var(&id, "id", 0, "member id")
	cmd.Flags().StringVar(&stream, "stream", "", "member stream")
	cmd.MarkFlagRequired("name")
	cmd.MarkFlagRequired("id")
	return cmd
}

func newAddItemCmd(a *app) *cobra.Command {
	var (
		title, author string
		quantity      int
	)
	cmd := &cobra.Command{
		Use:   "add-item",
		Short: "Add a title to the inventory",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := a.mgr.AddItem(title, author, quantity); err != nil {
				return a.fail(cmd, err)
			}
			fmt.Fprintln(cmd.OutOrStdout(), "Book added successfully!")
			return a.save(cmd)
		},
	}
	cmd.Flags().StringVar(&title, "title", "", "book title")
	cmd.Flags().StringVar(&author, "author", "", "book author")
	cmd.Flags().IntVar(&quantity, "quantity", 1, "number of copies")
	cmd.MarkFlagRequired("title")
	return cmd
}

func newIssueCmd(a *app) *cobra.Command {
	var (
		title    string
		memberID int64
	)
	cmd := &cobra.Command{
		Use:   "issue",
		Short: "Lend a book to a member",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if _, err := a.mgr.Issue(title, memberID); err != nil {
				return a.fail(cmd, err)
			}
			fmt.Fprintln(cmd.OutOrStdout(), "Book issued successfully!")
			return a.save(cmd)
		},
	}
	cmd.Flags().StringVar(&title, "title", "", "book title")
	cmd.Flags().Int64Var(&memberID, "member", 0, "member id")
	cmd.MarkFlagRequired("title")
	cmd.MarkFlagRequired("member")
	return cmd
}

func newReturnCmd(a *app) *cobra.Command {
	var (
		title    string
		memberID int64
	)
	cmd := &cobra.Command{
		Use:   "return",
		Short: "Take a book back from a member",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			rec, err := a.mgr.Return(title, memberID)
			if err != nil {
				return a.fail(cmd, err)
			}
			fmt.Fprintln(cmd.OutOrStdout(), returnMessage(rec.Fine))
			return a.save(cmd)
		},
	}
	cmd.Flags().StringVar(&title, "title", "", "book title")
	cmd.Flags().Int64Var(&memberID, "member", 0, "member id")
	cmd.MarkFlagRequired("title")
	cmd.MarkFlagRequired("member")
	return cmd
}

func newListCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "list",
		Short: "Show members, items or lending records",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "members",
		Short: "List members and the books they hold",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, _ []string) {
			a.mgr.WriteMembers(cmd.OutOrStdout())
		},
	})
	cmd.AddCommand(&cobra.Command{
		Use:   "items",
		Short: "List the inventory with available copies",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, _ []string) {
			a.mgr.WriteItems(cmd.OutOrStdout())
		},
	})

	var memberID int64
	loans := &cobra.Command{
		Use:   "loans",
		Short: "List lending records in issue order",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, _ []string) {
			a.mgr.WriteRecords(cmd.OutOrStdout(), memberID, cmd.Flags().Changed("member"))
		},
	}
	loans.Flags().Int64Var(&memberID, "member", 0, "only records of this member")
	cmd.AddCommand(loans)
	return cmd
}
