package main

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/kangruixiang/curator/internal/curator"
	"github.com/kangruixiang/curator/internal/pocketbase"
	"github.com/kangruixiang/curator/internal/tree"
)

// groupState is what notebooks and tags have in common.
type groupState interface {
	Refresh(ctx context.Context) error
	Flat() []curator.Group
	Tree() tree.Forest[curator.Group]
	Create(ctx context.Context, name, parentID string) (curator.Group, error)
	Rename(ctx context.Context, id, name string) error
	SetParent(ctx context.Context, id, parentID string) error
	Pin(ctx context.Context, id string) error
	Unpin(ctx context.Context, id string) error
	Delete(ctx context.Context, id string) error
}

var (
	_ groupState = (*curator.NotebookState)(nil)
	_ groupState = (*curator.TagState)(nil)
)

func newNotebookCommand() *cobra.Command {
	return newGroupCommand("notebooks", "Manage notebooks", func(client pocketbase.RecordClient) groupState {
		return curator.NewNotebookState(client)
	})
}

func newTagCommand() *cobra.Command {
	return newGroupCommand("tags", "Manage tags", func(client pocketbase.RecordClient) groupState {
		return curator.NewTagState(client)
	})
}

func newGroupCommand(use, short string, newState func(pocketbase.RecordClient) groupState) *cobra.Command {
	groupCmd := &cobra.Command{
		Use:   use,
		Short: short,
	}

	// withState runs fn against a fresh state on an authenticated session.
	withState := func(cmd *cobra.Command, fn func(ctx context.Context, state groupState) error) error {
		s, err := openSession(cmd.Context())
		if err != nil {
			return err
		}
		defer s.Close()
		return fn(s.ctx, newState(s.client))
	}

	var showTree bool
	listCmd := &cobra.Command{
		Use:   "list",
		Short: "List " + use,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withState(cmd, func(ctx context.Context, state groupState) error {
				if err := state.Refresh(ctx); err != nil {
					return err
				}
				if showTree {
					printTree(cmd.OutOrStdout(), state.Tree())
					return nil
				}
				printFlat(cmd.OutOrStdout(), state.Flat())
				return nil
			})
		},
	}
	listCmd.Flags().BoolVar(&showTree, "tree", false, "Print the hierarchy")

	var parentID string
	createCmd := &cobra.Command{
		Use:   "create <name>",
		Short: "Create a new entry",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withState(cmd, func(ctx context.Context, state groupState) error {
				created, err := state.Create(ctx, args[0], parentID)
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "created %s (%s)\n", created.Name, created.ID)
				return nil
			})
		},
	}
	createCmd.Flags().StringVar(&parentID, "parent", "", "Parent id")

	renameCmd := &cobra.Command{
		Use:   "rename <id> <name>",
		Short: "Rename an entry",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withState(cmd, func(ctx context.Context, state groupState) error {
				return state.Rename(ctx, args[0], args[1])
			})
		},
	}

	var newParentID string
	moveCmd := &cobra.Command{
		Use:   "move <id>",
		Short: "Move an entry under another one, or to the top level without --parent",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withState(cmd, func(ctx context.Context, state groupState) error {
				return state.SetParent(ctx, args[0], newParentID)
			})
		},
	}
	moveCmd.Flags().StringVar(&newParentID, "parent", "", "New parent id")

	pinCmd := &cobra.Command{
		Use:   "pin <id>",
		Short: "Pin an entry",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withState(cmd, func(ctx context.Context, state groupState) error {
				return state.Pin(ctx, args[0])
			})
		},
	}

	unpinCmd := &cobra.Command{
		Use:   "unpin <id>",
		Short: "Unpin an entry",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withState(cmd, func(ctx context.Context, state groupState) error {
				return state.Unpin(ctx, args[0])
			})
		},
	}

	deleteCmd := &cobra.Command{
		Use:   "delete <id>",
		Short: "Delete an entry",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withState(cmd, func(ctx context.Context, state groupState) error {
				return state.Delete(ctx, args[0])
			})
		},
	}

	groupCmd.AddCommand(listCmd, createCmd, renameCmd, moveCmd, pinCmd, unpinCmd, deleteCmd)
	return groupCmd
}

func printFlat(w io.Writer, groups []curator.Group) {
	bold := color.New(color.Bold)
	for _, g := range groups {
		name := g.Name
		if g.IsPinned() {
			name = bold.Sprint(name)
		}
		fmt.Fprintf(w, "%s\t%s\t%d\n", g.ID, name, g.NoteCount)
	}
}

// printTree writes one line per node, indented by depth. Pinned entries are
// bold and orphans are listed last.
func printTree(w io.Writer, forest tree.Forest[curator.Group]) {
	bold := color.New(color.Bold)
	faint := color.New(color.Faint)
	line := func(n *tree.Node[curator.Group], depth int) {
		name := n.Item.Name
		if n.Item.IsPinned() {
			name = bold.Sprint(name)
		}
		fmt.Fprintf(w, "%s%s %s\n", strings.Repeat("  ", depth), name, faint.Sprintf("(%d)", n.Item.NoteCount))
	}

	tree.Walk(forest.Roots, line)
	if len(forest.Orphans) > 0 {
		fmt.Fprintln(w, color.YellowString("orphans:"))
		tree.Walk(forest.Orphans, func(n *tree.Node[curator.Group], depth int) {
			line(n, depth+1)
		})
	}
}
