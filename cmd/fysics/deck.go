package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"fysics/internal/config"
	"fysics/internal/deck"
	"fysics/internal/domain"
	"fysics/internal/transport/rest"
)

func newDeckCmd(cfg *config.Config) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "deck",
		Short: "Manage question decks, locally and on the backend.",
	}

	cmd.AddCommand(
		newDeckUploadCmd(cfg),
		newDeckActivateCmd(cfg),
		newDeckListCmd(cfg),
		newDeckShowCmd(cfg),
		newDeckDeleteCmd(cfg),
		newDeckSaveCmd(cfg),
		newDeckExportCmd(cfg),
		newDeckClearCmd(cfg),
	)
	return cmd
}

func newDeckUploadCmd(cfg *config.Config) *cobra.Command {
	return &cobra.Command{
		Use:   "upload <deck.csv> [image...]",
		Short: "Upload a deck CSV (with optional images) and make it the active deck.",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := newEnv(cfg)
			if err != nil {
				return err
			}

			csvFile, err := os.Open(args[0])
			if err != nil {
				return err
			}
			defer csvFile.Close()

			var images []rest.Asset
			var closers []*os.File
			defer func() {
				for _, f := range closers {
					f.Close()
				}
			}()
			for _, path := range args[1:] {
				img, err := os.Open(path)
				if err != nil {
					return err
				}
				closers = append(closers, img)
				images = append(images, rest.Asset{Name: filepath.Base(path), Content: img})
			}

			res := e.client.UploadDeck(cmd.Context(), filepath.Base(args[0]), csvFile, images)
			if res.Status == 0 {
				return fmt.Errorf("could not reach the backend: %s", res.Err)
			}
			if res.Unauthorized() {
				return domain.ErrNotAuthorized
			}
			if !res.OK {
				return fmt.Errorf("upload rejected: %s", res.Message())
			}

			var body rest.UploadDeckResponse
			if err := res.Decode(&body); err != nil {
				return err
			}
			if body.Error != "" {
				return fmt.Errorf("upload rejected: %s", body.Error)
			}
			if body.Questions.Status != "success" {
				return fmt.Errorf("deck invalid: %s", body.Questions.Message)
			}

			active := domain.NewDeck(deck.NameFromFile(args[0]), body.Questions.Data)
			active.DeckID = body.DeckID
			if err := e.store.SetActiveDeck(active); err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Uploaded %q: %d questions, deck id %s\n", active.Name, len(active.Questions), active.DeckID)
			for i, q := range active.Questions {
				fmt.Fprintf(out, "  %2d. [%s] %s\n", i+1, q.ID, q.Text)
			}
			return nil
		},
	}
}

func newDeckActivateCmd(cfg *config.Config) *cobra.Command {
	return &cobra.Command{
		Use:   "activate <deck.csv>",
		Short: "Parse a local deck CSV and make it the active deck without uploading.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := newEnv(cfg)
			if err != nil {
				return err
			}

			f, err := os.Open(args[0])
			if err != nil {
				return err
			}
			defer f.Close()

			questions, err := deck.Parse(f)
			if err != nil {
				return err
			}

			active := domain.NewDeck(deck.NameFromFile(args[0]), questions)
			if err := e.store.SetActiveDeck(active); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Activated %q with %d questions.\n", active.Name, len(active.Questions))
			return nil
		},
	}
}

func newDeckListCmd(cfg *config.Config) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List decks mirrored on the backend.",
		Args:  cobra.ExactArgs(0),
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := newEnv(cfg)
			if err != nil {
				return err
			}

			res := e.client.ListDecks(cmd.Context())
			if res.Status == 0 {
				return fmt.Errorf("could not reach the backend: %s", res.Err)
			}
			if !res.OK {
				return fmt.Errorf("list failed: %s", res.Message())
			}

			out := cmd.OutOrStdout()
			var names []string
			if err := res.Decode(&names); err == nil {
				for _, name := range names {
					fmt.Fprintln(out, name)
				}
				return nil
			}
			// Unknown payload shape; show it raw rather than guessing
			fmt.Fprintln(out, string(res.Data))
			return nil
		},
	}
}

func newDeckShowCmd(cfg *config.Config) *cobra.Command {
	return &cobra.Command{
		Use:   "show <filename>",
		Short: "Show one mirrored deck.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := newEnv(cfg)
			if err != nil {
				return err
			}

			res := e.client.GetDeck(cmd.Context(), args[0])
			if res.Status == 0 {
				return fmt.Errorf("could not reach the backend: %s", res.Err)
			}
			if res.Gone() {
				return fmt.Errorf("deck %q not found", args[0])
			}
			if !res.OK {
				return fmt.Errorf("fetch failed: %s", res.Message())
			}

			fmt.Fprintln(cmd.OutOrStdout(), string(res.Data))
			return nil
		},
	}
}

func newDeckDeleteCmd(cfg *config.Config) *cobra.Command {
	return &cobra.Command{
		Use:   "delete <filename>",
		Short: "Delete one mirrored deck.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := newEnv(cfg)
			if err != nil {
				return err
			}

			res := e.client.DeleteDeck(cmd.Context(), args[0])
			if res.Status == 0 {
				return fmt.Errorf("could not reach the backend: %s", res.Err)
			}
			if res.Unauthorized() {
				return domain.ErrNotAuthorized
			}
			if !res.OK {
				return fmt.Errorf("delete failed: %s", res.Message())
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Deleted %s.\n", args[0])
			return nil
		},
	}
}

func newDeckSaveCmd(cfg *config.Config) *cobra.Command {
	return &cobra.Command{
		Use:   "save",
		Short: "Mirror the active deck on the backend.",
		Args:  cobra.ExactArgs(0),
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := newEnv(cfg)
			if err != nil {
				return err
			}

			active, ok := e.store.ActiveDeck()
			if !ok {
				return domain.ErrNoActiveDeck
			}

			res := e.client.SaveDeck(cmd.Context(), active)
			if res.Status == 0 {
				return fmt.Errorf("could not reach the backend: %s", res.Err)
			}
			if res.Unauthorized() {
				return domain.ErrNotAuthorized
			}
			if !res.OK {
				return fmt.Errorf("save failed: %s", res.Message())
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Saved %q to the backend.\n", active.Name)
			return nil
		},
	}
}

func newDeckExportCmd(cfg *config.Config) *cobra.Command {
	return &cobra.Command{
		Use:   "export <out.csv>",
		Short: "Write the active deck back out as CSV.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := newEnv(cfg)
			if err != nil {
				return err
			}

			active, ok := e.store.ActiveDeck()
			if !ok {
				return domain.ErrNoActiveDeck
			}

			f, err := os.Create(args[0])
			if err != nil {
				return err
			}
			defer f.Close()

			if err := deck.Export(f, active); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Exported %q to %s.\n", active.Name, args[0])
			return nil
		},
	}
}

func newDeckClearCmd(cfg *config.Config) *cobra.Command {
	return &cobra.Command{
		Use:   "clear",
		Short: "Forget the active deck.",
		Args:  cobra.ExactArgs(0),
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := newEnv(cfg)
			if err != nil {
				return err
			}
			if err := e.store.ClearActiveDeck(); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "Active deck cleared.")
			return nil
		},
	}
}
