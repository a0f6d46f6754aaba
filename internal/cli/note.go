package cli

import (
	"bufio"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"notat/internal/debounce"
	"notat/internal/domain"
)

func newNoteCommand(opts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "note",
		Short: "Manage free-text notes",
	}
	cmd.AddCommand(newNoteAddCommand(opts))
	cmd.AddCommand(newNoteListCommand(opts))
	cmd.AddCommand(newNoteEditCommand(opts))
	cmd.AddCommand(newNoteRemoveCommand(opts))
	cmd.AddCommand(newNoteMoveCommand(opts))
	cmd.AddCommand(newNoteClearCommand(opts))
	return cmd
}

func newNoteAddCommand(opts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "add TEXT",
		Short: "Append a note",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp(cmd.Context(), opts)
			if err != nil {
				return err
			}
			defer a.close()

			item, ok := a.notes.Create(args[0])
			if !ok {
				return errors.New("note text is empty")
			}
			fmt.Fprintf(cmd.OutOrStdout(), "added %s\n", shortID(item.ID))
			return nil
		},
	}
}

func newNoteListCommand(opts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List notes in display order",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp(cmd.Context(), opts)
			if err != nil {
				return err
			}
			defer a.close()

			if opts.Format == "json" {
				return renderJSON(cmd.OutOrStdout(), a.notes.Items())
			}
			return renderNotes(cmd.OutOrStdout(), a.notes.Items())
		},
	}
}

func newNoteEditCommand(opts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "edit ID [TEXT]",
		Short: "Rewrite a note's text (reads stdin when TEXT is omitted)",
		Args:  cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp(cmd.Context(), opts)
			if err != nil {
				return err
			}
			defer a.close()

			item, err := resolveNote(a.notes.Items(), args[0])
			if err != nil {
				return err
			}
			if len(args) == 2 {
				a.notes.Update(item.ID, args[1])
				return nil
			}
			// Interactive form flow: autosave after each pause in typing,
			// flush on exit so the last line always lands.
			return editNoteInteractive(cmd, a, item.ID)
		},
	}
}

// editNoteInteractive accumulates lines from stdin into the note's text.
// Each line triggers an autosave debounced at the form-level interval;
// EOF is the dismissal and flushes immediately.
func editNoteInteractive(cmd *cobra.Command, a *app, id uuid.UUID) error {
	var (
		mu    sync.Mutex
		lines []string
	)
	autosave := debounce.New(a.cfg.AutosaveDebounce, func() {
		mu.Lock()
		text := strings.Join(lines, "\n")
		mu.Unlock()
		a.notes.Update(id, text)
	})
	defer autosave.Flush()

	scanner := bufio.NewScanner(cmd.InOrStdin())
	for scanner.Scan() {
		mu.Lock()
		lines = append(lines, scanner.Text())
		mu.Unlock()
		autosave.Trigger()
	}
	return scanner.Err()
}

func newNoteRemoveCommand(opts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:     "rm ID",
		Aliases: []string{"remove"},
		Short:   "Delete a note",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp(cmd.Context(), opts)
			if err != nil {
				return err
			}
			defer a.close()

			item, err := resolveNote(a.notes.Items(), args[0])
			if err != nil {
				return err
			}
			a.notes.Delete(item.ID)
			return nil
		},
	}
}

func newNoteMoveCommand(opts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "move FROM... TO",
		Short: "Move notes (1-based display indices) before a target index",
		Args:  cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			indices := make([]int, 0, len(args))
			for _, arg := range args {
				var n int
				if _, err := fmt.Sscanf(arg, "%d", &n); err != nil || n < 1 {
					return fmt.Errorf("invalid index %q", arg)
				}
				indices = append(indices, n-1)
			}
			from := indices[:len(indices)-1]
			to := indices[len(indices)-1]

			a, err := newApp(cmd.Context(), opts)
			if err != nil {
				return err
			}
			defer a.close()

			a.notes.Move(from, to)
			return renderNotes(cmd.OutOrStdout(), a.notes.Items())
		},
	}
}

func newNoteClearCommand(opts *RootOptions) *cobra.Command {
	var yes bool

	cmd := &cobra.Command{
		Use:   "clear",
		Short: "Delete every note",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if !yes {
				return errors.New("refusing to clear without --yes")
			}
			a, err := newApp(cmd.Context(), opts)
			if err != nil {
				return err
			}
			defer a.close()
			return a.notes.ClearAll(cmd.Context())
		},
	}

	cmd.Flags().BoolVar(&yes, "yes", false, "confirm the wipe")
	return cmd
}

func resolveNote(items []domain.Note, arg string) (domain.Note, error) {
	needle := strings.ToLower(strings.TrimSpace(arg))
	var matches []domain.Note
	for _, it := range items {
		if strings.HasPrefix(it.ID.String(), needle) {
			matches = append(matches, it)
		}
	}
	switch len(matches) {
	case 1:
		return matches[0], nil
	case 0:
		return domain.Note{}, fmt.Errorf("no note matches %q", arg)
	default:
		return domain.Note{}, fmt.Errorf("%q is ambiguous (%d matches)", arg, len(matches))
	}
}
