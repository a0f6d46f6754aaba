package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newProfileCommand(opts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "profile",
		Short: "Manage profile fields (name, email, ...)",
	}
	cmd.AddCommand(newProfileSetCommand(opts))
	cmd.AddCommand(newProfileShowCommand(opts))
	return cmd
}

func newProfileSetCommand(opts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "set KEY VALUE",
		Short: "Set a profile field",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp(cmd.Context(), opts)
			if err != nil {
				return err
			}
			defer a.close()

			a.profile.Set(args[0], args[1])
			return nil
		},
	}
}

func newProfileShowCommand(opts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "show",
		Short: "Print all profile fields",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp(cmd.Context(), opts)
			if err != nil {
				return err
			}
			defer a.close()

			for _, key := range a.profile.Keys() {
				value, _ := a.profile.Get(key)
				fmt.Fprintf(cmd.OutOrStdout(), "%s: %s\n", key, value)
			}
			return nil
		},
	}
}
