package cmd

import (
	"fmt"
	"log"

	"github.com/spf13/cobra"

	"github.com/shelfpoint/shelfpoint/internal/book"
	"github.com/shelfpoint/shelfpoint/internal/user"
)

var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Seed the database with sample data",
	Long:  `Seed the database with a small catalog and a few patrons for development and testing.`,
	Run: func(cmd *cobra.Command, args []string) {
		cfg, err := loadConfig(".")
		if err != nil {
			log.Fatalf("failed to load config: %v", err)
		}

		db, err := initGormDB(cfg.Database)
		if err != nil {
			log.Fatalf("failed to init db: %v", err)
		}

		if clearData {
			for _, table := range []string{"checkouts", "books", "users", "barcodes"} {
				if err := db.Exec("DELETE FROM " + table).Error; err != nil {
					log.Fatalf("failed to clear %s: %v", table, err)
				}
			}
			fmt.Println("Cleared existing data")
		}

		books := []book.Book{
			{Code: "BK-0001", Title: "The Go Programming Language", Author: "Donovan, Kernighan", Status: book.StatusAvailable},
			{Code: "BK-0002", Title: "Designing Data-Intensive Applications", Author: "Kleppmann", Status: book.StatusAvailable},
			{Code: "BK-0003", Title: "The Mythical Man-Month", Author: "Brooks", Status: book.StatusAvailable},
			{Code: "BK-0004", Title: "Structure and Interpretation of Computer Programs", Author: "Abelson, Sussman", Status: book.StatusAvailable},
		}
		for _, b := range books {
			var exists int64
			db.Model(&book.Book{}).Where("code = ?", b.Code).Count(&exists)
			if exists > 0 {
				fmt.Printf("book %s already exists, skipping\n", b.Code)
				continue
			}
			if err := db.Create(&b).Error; err != nil {
				log.Fatalf("failed to insert book %s: %v", b.Code, err)
			}
			fmt.Printf("Seeded book %s: %s\n", b.Code, b.Title)
		}

		users := []user.User{
			{Code: "US-1001", Name: "Ada Lovelace"},
			{Code: "US-1002", Name: "Grace Hopper"},
			{Code: "US-1003", Name: "Alan Turing"},
		}
		for _, u := range users {
			var exists int64
			db.Model(&user.User{}).Where("code = ?", u.Code).Count(&exists)
			if exists > 0 {
				fmt.Printf("user %s already exists, skipping\n", u.Code)
				continue
			}
			if err := db.Create(&u).Error; err != nil {
				log.Fatalf("failed to insert user %s: %v", u.Code, err)
			}
			fmt.Printf("Seeded user %s: %s\n", u.Code, u.Name)
		}
	},
}
