package main

import (
	"fmt"

	"marketbot/internal/config"
	"marketbot/internal/inventory"

	"github.com/spf13/cobra"
)

// stockCmd manages the delivery inventory from the command line.
func stockCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "stock",
		Short: "Manage delivery inventory",
	}

	openStore := func() (*inventory.Store, error) {
		cfg, err := config.Load(resolveConfigPath())
		if err != nil {
			return nil, fmt.Errorf("load config: %w", err)
		}
		return inventory.NewStore(config.ExpandPath(cfg.Inventory.DBPath), logger)
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "add [listing] [item...]",
		Short: "Add items to a listing's inventory",
		Args:  cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := openStore()
			if err != nil {
				return err
			}
			defer store.Close()
			if err := store.Add(cmd.Context(), args[0], args[1:]...); err != nil {
				return err
			}
			logger.Info("stock added", "listing", args[0], "items", len(args)-1)
			return nil
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "list",
		Short: "List stocked listings with their counts",
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := openStore()
			if err != nil {
				return err
			}
			defer store.Close()
			listings, err := store.Listings(cmd.Context())
			if err != nil {
				return err
			}
			if len(listings) == 0 {
				fmt.Println("no stock")
				return nil
			}
			for _, name := range listings {
				src, _ := store.Source(name)
				n, err := src.Count(cmd.Context())
				if err != nil {
					return err
				}
				fmt.Printf("%s\t%d\n", name, n)
			}
			return nil
		},
	})

	return cmd
}
