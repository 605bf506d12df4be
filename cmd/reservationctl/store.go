package main

import (
	"context"
	"fmt"

	"github.com/ariefcatur/go-bookstore-reservations/internal/config"
	"github.com/ariefcatur/go-bookstore-reservations/internal/postgres"
	"github.com/ariefcatur/go-bookstore-reservations/internal/reservations"
	"github.com/ariefcatur/go-bookstore-reservations/internal/wiring"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

func newMigrateCmd() *cobra.Command {
	var dsn string

	c := &cobra.Command{
		Use:   "migrate",
		Short: "Create the Postgres schema",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}
			if dsn == "" {
				dsn = cfg.PostgresDSN
			}

			ctx := context.Background()
			pool, err := postgres.Connect(ctx, dsn)
			if err != nil {
				return err
			}
			defer pool.Close()

			if err := (&postgres.Store{DB: pool}).Migrate(ctx); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "schema up to date")
			return nil
		},
	}

	c.Flags().StringVar(&dsn, "dsn", "", "Postgres DSN (default $POSTGRES_DSN)")
	return c
}

func newCheckTableCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "check-table",
		Short: "Verify the DynamoDB reservation and bookstore tables",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}

			ctx := context.Background()
			s, err := wiring.DynamoDB(ctx, cfg)
			if err != nil {
				return err
			}
			if err := s.Init(ctx); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "tables %s and %s are ready\n", cfg.ReservationsTable, cfg.BookstoresTable)
			return nil
		},
	}
}

func newSlotsCmd() *cobra.Command {
	var bookstore, date string

	c := &cobra.Command{
		Use:   "slots",
		Short: "Print the availability grid for a bookstore and date",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}

			ctx := context.Background()
			store, cleanup, err := wiring.Store(ctx, cfg, zap.NewNop())
			if err != nil {
				return err
			}
			defer cleanup()

			slots, err := reservations.NewService(store, nil).ListSlots(ctx, bookstore, date)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			for _, s := range slots {
				state := "free"
				if !s.IsAvailable {
					state = "booked"
				}
				fmt.Fprintf(out, "%s\t%s\n", s.Time, state)
			}
			return nil
		},
	}

	c.Flags().StringVar(&bookstore, "bookstore", "", "bookstore name")
	c.Flags().StringVar(&date, "date", "", "date, e.g. 2024-05-01")
	_ = c.MarkFlagRequired("bookstore")
	_ = c.MarkFlagRequired("date")
	return c
}
