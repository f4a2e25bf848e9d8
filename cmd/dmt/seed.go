package main

import (
	"context"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/verte-zerg/dmt/internal/auth"
	"github.com/verte-zerg/dmt/internal/model"
	"github.com/verte-zerg/dmt/internal/store"
	"github.com/verte-zerg/dmt/internal/wordlist"
)

const seedPassword = "password"

var seedUsers = []model.User{
	{Name: "Sophie", Email: "sophie@example.com", Role: model.RoleStudent, SchoolGroup: 3},
	{Name: "Liam", Email: "liam@example.com", Role: model.RoleStudent, SchoolGroup: 5},
	{Name: "Emma", Email: "emma@example.com", Role: model.RoleStudent, SchoolGroup: 7},
	{Name: "Admin", Email: "admin@example.com", Role: model.RoleAdmin},
}

func newSeedCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "seed",
		Short: "Seed example users and the level word pools",
		Args:  cobra.NoArgs,
		RunE:  runSeedCmd,
	}
}

func runSeedCmd(cmd *cobra.Command, _ []string) error {
	settings, _, err := loadSettings(cmd)
	if err != nil {
		return err
	}
	st, err := openStore(settings)
	if err != nil {
		return err
	}
	defer closeStore(st)

	ctx := context.Background()
	users, err := seedAccounts(ctx, st)
	if err != nil {
		return err
	}
	words, err := seedWords(ctx, st)
	if err != nil {
		return err
	}
	logErrf("Seeded %d users and %d words (existing entries kept)\n", users, words)
	return nil
}

func seedAccounts(ctx context.Context, st *store.Store) (int, error) {
	hash, err := auth.HashPassword(seedPassword)
	if err != nil {
		return 0, err
	}
	created := 0
	for _, u := range seedUsers {
		u.HashedPassword = hash
		if err := st.CreateUser(ctx, &u); err != nil {
			if errors.Is(err, store.ErrDuplicate) {
				continue
			}
			return created, fmt.Errorf("failed to seed user %s: %w", u.Email, err)
		}
		created++
	}
	return created, nil
}

func seedWords(ctx context.Context, st *store.Store) (int, error) {
	created := 0
	for _, w := range wordlist.SeedWords() {
		if err := st.CreateWord(ctx, &w); err != nil {
			if errors.Is(err, store.ErrDuplicate) {
				continue
			}
			return created, fmt.Errorf("failed to seed word %q: %w", w.Text, err)
		}
		created++
	}
	return created, nil
}
