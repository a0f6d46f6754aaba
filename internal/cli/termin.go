package cli

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"notat/internal/domain"
	"notat/internal/service/termins"
)

// timeLayouts are accepted by --at, tried in order against local time.
var timeLayouts = []string{
	"2006-01-02 15:04",
	"2006-01-02T15:04",
	time.RFC3339,
}

func parseAt(value string) (time.Time, error) {
	for _, layout := range timeLayouts {
		if t, err := time.ParseInLocation(layout, value, time.Local); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognized time %q (want e.g. %q)", value, "2026-03-14 15:00")
}

func newAddCommand(opts *RootOptions) *cobra.Command {
	var (
		at            string
		note          string
		remindMinutes int
	)

	cmd := &cobra.Command{
		Use:   "add TITLE",
		Short: "Create an appointment",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			dateTime, err := parseAt(at)
			if err != nil {
				return err
			}

			a, err := newApp(cmd.Context(), opts)
			if err != nil {
				return err
			}
			defer a.close()

			in := termins.CreateInput{
				Title:    args[0],
				DateTime: dateTime,
				Pro:      a.cfg.ProUnlocked,
			}
			if note != "" {
				in.Note = &note
			}
			if remindMinutes > 0 {
				in.Reminder = domain.MinutesBefore(remindMinutes)
			}

			item, err := a.termins.Create(cmd.Context(), in)
			if errors.Is(err, termins.ErrQuotaExceeded) {
				fmt.Fprintf(cmd.OutOrStdout(),
					"Free tier is full (%d appointments). Unlock unlimited appointments for %s.\n",
					termins.FreeLimit, a.cfg.ProPrice)
				return err
			}
			if err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "added %s  %s\n", shortID(item.ID), item.Title)
			return nil
		},
	}

	cmd.Flags().StringVar(&at, "at", "", "appointment time, e.g. \"2026-03-14 15:00\"")
	cmd.Flags().StringVar(&note, "note", "", "free-text note")
	cmd.Flags().IntVar(&remindMinutes, "remind-minutes", 0, "extra reminder N minutes before")
	_ = cmd.MarkFlagRequired("at")

	return cmd
}

func newListCommand(opts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List appointments in display order",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp(cmd.Context(), opts)
			if err != nil {
				return err
			}
			defer a.close()

			if opts.Format == "json" {
				return renderJSON(cmd.OutOrStdout(), a.termins.Items())
			}
			return renderTermins(cmd.OutOrStdout(), a.termins.Items(), time.Now())
		},
	}
}

func newEditCommand(opts *RootOptions) *cobra.Command {
	var (
		title         string
		at            string
		note          string
		remindMinutes int
	)

	cmd := &cobra.Command{
		Use:   "edit ID",
		Short: "Rewrite an appointment's title, time, note or reminder",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp(cmd.Context(), opts)
			if err != nil {
				return err
			}
			defer a.close()

			item, err := resolveTermin(a.termins.Items(), args[0])
			if err != nil {
				return err
			}

			in := termins.UpdateInput{
				Title:    item.Title,
				DateTime: item.DateTime,
				Note:     item.Note,
				Reminder: item.Reminder,
			}
			if cmd.Flags().Changed("title") {
				in.Title = title
			}
			if cmd.Flags().Changed("at") {
				if in.DateTime, err = parseAt(at); err != nil {
					return err
				}
			}
			if cmd.Flags().Changed("note") {
				if note == "" {
					in.Note = nil
				} else {
					in.Note = &note
				}
			}
			if cmd.Flags().Changed("remind-minutes") {
				if remindMinutes <= 0 {
					in.Reminder = nil
				} else {
					in.Reminder = domain.MinutesBefore(remindMinutes)
				}
			}

			a.termins.Update(cmd.Context(), item.ID, in)
			fmt.Fprintf(cmd.OutOrStdout(), "updated %s\n", shortID(item.ID))
			return nil
		},
	}

	cmd.Flags().StringVar(&title, "title", "", "new title")
	cmd.Flags().StringVar(&at, "at", "", "new appointment time")
	cmd.Flags().StringVar(&note, "note", "", "new note (empty clears it)")
	cmd.Flags().IntVar(&remindMinutes, "remind-minutes", 0, "new reminder offset (0 clears it)")

	return cmd
}

func newDoneCommand(opts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "done ID",
		Short: "Toggle an appointment's completion state",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp(cmd.Context(), opts)
			if err != nil {
				return err
			}
			defer a.close()

			item, err := resolveTermin(a.termins.Items(), args[0])
			if err != nil {
				return err
			}
			a.termins.ToggleComplete(cmd.Context(), item.ID)
			return nil
		},
	}
}

func newRemoveCommand(opts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:     "rm ID",
		Aliases: []string{"remove"},
		Short:   "Delete an appointment and cancel its reminders",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp(cmd.Context(), opts)
			if err != nil {
				return err
			}
			defer a.close()

			item, err := resolveTermin(a.termins.Items(), args[0])
			if err != nil {
				return err
			}
			a.termins.Delete(cmd.Context(), item.ID)
			return nil
		},
	}
}

func newClearCommand(opts *RootOptions) *cobra.Command {
	var yes bool

	cmd := &cobra.Command{
		Use:   "clear",
		Short: "Delete every appointment",
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
			return a.termins.ClearAll(cmd.Context())
		},
	}

	cmd.Flags().BoolVar(&yes, "yes", false, "confirm the wipe")
	return cmd
}

func resolveTermin(items []domain.Termin, arg string) (domain.Termin, error) {
	needle := strings.ToLower(strings.TrimSpace(arg))
	var matches []domain.Termin
	for _, it := range items {
		if strings.HasPrefix(it.ID.String(), needle) {
			matches = append(matches, it)
		}
	}
	switch len(matches) {
	case 1:
		return matches[0], nil
	case 0:
		return domain.Termin{}, fmt.Errorf("no appointment matches %q", arg)
	default:
		return domain.Termin{}, fmt.Errorf("%q is ambiguous (%d matches)", arg, len(matches))
	}
}

func shortID(id uuid.UUID) string {
	return id.String()[:8]
}
