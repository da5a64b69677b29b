package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/kangruixiang/curator/internal/content"
	"github.com/kangruixiang/curator/internal/curator"
	"github.com/kangruixiang/curator/internal/thumbnail"
)

func newNoteCommand() *cobra.Command {
	noteCmd := &cobra.Command{
		Use:   "notes",
		Short: "List, inspect and organize notes",
	}
	noteCmd.AddCommand(
		newNoteListCommand(),
		newNoteShowCommand(),
		newNoteMergeCommand(),
		newNoteBatchCommand(),
		newNoteAttachCommand(),
		newNoteEmptyTrashCommand(),
	)
	return noteCmd
}

func newNoteListCommand() *cobra.Command {
	view := ViewFlag(curator.ViewDefault)
	var query curator.ListQuery
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List one page of notes",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := openSession(cmd.Context())
			if err != nil {
				return err
			}
			defer s.Close()

			query.View = curator.View(view)
			page, err := curator.NewNoteListState(s.client, nil).Fetch(s.ctx, query)
			if err != nil {
				return err
			}
			printNotePage(cmd.OutOrStdout(), page)
			return nil
		},
	}
	flags := cmd.Flags()
	flags.Var(&view, "view", "View to list. Options: default, notebook, tag, archive, trash, search")
	flags.StringVar(&query.ID, "id", "", "Notebook or tag id for the notebook and tag views")
	flags.StringVar(&query.Filter, "filter", "", "PocketBase filter for the search view")
	flags.IntVar(&query.Page, "page", 1, "Page number")
	return cmd
}

func printNotePage(w io.Writer, page curator.NotePage) {
	faint := color.New(color.Faint)
	for _, n := range page.Items {
		var tags []string
		for _, t := range n.Expand.Tags {
			tags = append(tags, "#"+t.Name)
		}
		notebook := ""
		if n.Expand.Notebook != nil {
			notebook = n.Expand.Notebook.Name
		}
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\n", n.ID, n.Title, notebook, faint.Sprint(strings.Join(tags, " ")))
	}
	fmt.Fprintf(w, "page %d/%d, %d notes\n", page.Page, page.TotalPages, page.TotalItems)
}

func newNoteShowCommand() *cobra.Command {
	var showHTML bool
	cmd := &cobra.Command{
		Use:   "show <id>",
		Short: "Print a note",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := openSession(cmd.Context())
			if err != nil {
				return err
			}
			defer s.Close()

			state := curator.NewNoteState(s.client, nil)
			note, err := state.Load(s.ctx, args[0])
			if err != nil {
				return err
			}
			if err := state.MarkOpened(s.ctx); err != nil {
				return err
			}
			printNote(cmd.OutOrStdout(), note, showHTML, s.client.PublicURL())
			return nil
		},
	}
	cmd.Flags().BoolVar(&showHTML, "html", false, "Print the stored HTML instead of plain text")
	return cmd
}

// printNote writes the note header and its content. HTML output points file
// URLs at publicURL.
func printNote(w io.Writer, note curator.Note, showHTML bool, publicURL string) {
	fmt.Fprintln(w, color.New(color.Bold).Sprint(note.Title))
	if note.Description != "" {
		fmt.Fprintln(w, color.New(color.Italic).Sprint(note.Description))
	}
	for _, src := range note.Sources {
		fmt.Fprintf(w, "source: %s %s\n", src.Source, src.SourceURL)
	}
	fmt.Fprintln(w)
	if showHTML {
		fmt.Fprintln(w, content.RewriteOrigin(note.Content, content.LocalOrigin, publicURL))
		return
	}
	fmt.Fprintln(w, content.Description(note.Content, -1))
}

func newNoteMergeCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "merge <id> <id>...",
		Short: "Merge notes into the first one and move the others to the trash",
		Args:  cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := openSession(cmd.Context())
			if err != nil {
				return err
			}
			defer s.Close()

			merger := curator.NewMerger(s.client, newThumbnailGenerator(s))
			merged, err := curator.NewNoteListState(s.client, merger).Merge(s.ctx, args)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "merged %d notes into %s (%s)\n", len(args), merged.Title, merged.ID)
			return nil
		},
	}
}

func newNoteBatchCommand() *cobra.Command {
	var action ActionFlag
	var notebookID, tagID string
	cmd := &cobra.Command{
		Use:   "batch <id>...",
		Short: "Apply one action to several notes",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := openSession(cmd.Context())
			if err != nil {
				return err
			}
			defer s.Close()

			return runAction(s.ctx, curator.NewNoteListState(s.client, nil), action, args, notebookID, tagID)
		},
	}
	flags := cmd.Flags()
	flags.Var(&action, "action", fmt.Sprintf("Action to apply. Options: %v", actions))
	flags.StringVar(&notebookID, "notebook", "", "Target notebook for move")
	flags.StringVar(&tagID, "tag", "", "Tag for add-tag and remove-tag")
	_ = cmd.MarkFlagRequired("action")
	return cmd
}

// noteList is the part of NoteListState the batch actions use.
type noteList interface {
	SoftDelete(ctx context.Context, ids []string) error
	Restore(ctx context.Context, ids []string) error
	Archive(ctx context.Context, ids []string) error
	Unarchive(ctx context.Context, ids []string) error
	ChangeNotebook(ctx context.Context, ids []string, notebookID string) error
	AddTag(ctx context.Context, ids []string, tagID string) error
	RemoveTag(ctx context.Context, ids []string, tagID string) error
	ClearTags(ctx context.Context, ids []string) error
}

func runAction(ctx context.Context, list noteList, action ActionFlag, ids []string, notebookID, tagID string) error {
	switch action {
	case ActionDelete:
		return list.SoftDelete(ctx, ids)
	case ActionRestore:
		return list.Restore(ctx, ids)
	case ActionArchive:
		return list.Archive(ctx, ids)
	case ActionUnarchive:
		return list.Unarchive(ctx, ids)
	case ActionMove:
		if notebookID == "" {
			return fmt.Errorf("--notebook is required for %s", action)
		}
		return list.ChangeNotebook(ctx, ids, notebookID)
	case ActionAddTag, ActionRemoveTag:
		if tagID == "" {
			return fmt.Errorf("--tag is required for %s", action)
		}
		if action == ActionAddTag {
			return list.AddTag(ctx, ids, tagID)
		}
		return list.RemoveTag(ctx, ids, tagID)
	case ActionClearTags:
		return list.ClearTags(ctx, ids)
	default:
		return fmt.Errorf("unknown action %q", action)
	}
}

func newNoteAttachCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "attach <id> <file>",
		Short: "Upload a file to a note and embed it in the content",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := os.ReadFile(args[1])
			if err != nil {
				return fmt.Errorf("os.ReadFile(%s) > %w", args[1], err)
			}

			s, err := openSession(cmd.Context())
			if err != nil {
				return err
			}
			defer s.Close()

			state := curator.NewNoteState(s.client, newThumbnailGenerator(s))
			if _, err := state.Load(s.ctx, args[0]); err != nil {
				return err
			}
			r, err := state.Attach(s.ctx, filepath.Base(args[1]), "", data)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "attached %s (%s) %s\n", r.Name, r.Type, r.FileURL)
			return nil
		},
	}
}

func newNoteEmptyTrashCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "empty-trash",
		Short: "Permanently delete every note in the trash",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := openSession(cmd.Context())
			if err != nil {
				return err
			}
			defer s.Close()

			deleted, err := curator.NewNoteListState(s.client, nil).EmptyTrash(s.ctx)
			fmt.Fprintf(cmd.OutOrStdout(), "deleted %d notes\n", deleted)
			return err
		},
	}
}

func newThumbnailGenerator(s *session) *thumbnail.Generator {
	return thumbnail.NewGenerator(s.client, thumbnail.FFmpeg{Path: s.cfg.Thumbnail.FFmpegPath}, thumbnail.Config{
		Collection:  curator.NotesCollection,
		MinSize:     s.cfg.Thumbnail.MinSize,
		Size:        s.cfg.Thumbnail.Size,
		FrameOffset: s.cfg.Thumbnail.FrameOffset,
	})
}
