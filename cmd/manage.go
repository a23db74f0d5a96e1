package cmd

import (
	"bufio"
	"errors"
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"gorm.io/gorm"

	"github.com/camden-git/gatewatch/database"
	"github.com/camden-git/gatewatch/models"
)

var manageCmd = &cobra.Command{
	Use:   "manage",
	Short: "Administer the identity registry",
}

var manageListCmd = &cobra.Command{
	Use:   "list",
	Short: "List all registered persons",
	Run: func(cmd *cobra.Command, args []string) {
		rt, err := openRuntime()
		if err != nil {
			log.Fatalf("FATAL: %v", err)
		}
		defer rt.Close()
		listPersons(rt)
	},
}

var manageDeleteCmd = &cobra.Command{
	Use:   "delete <person-id>",
	Short: "Delete a person and all their embeddings",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		rt, err := openRuntime()
		if err != nil {
			log.Fatalf("FATAL: %v", err)
		}
		defer rt.Close()

		id, err := strconv.ParseUint(args[0], 10, 32)
		if err != nil {
			fmt.Printf("Invalid person id %q\n", args[0])
		} else if err := rt.Persons.Delete(uint(id)); err != nil {
			// an admin error is reported but does not abort the rest of
			// the command sequence
			if errors.Is(err, gorm.ErrRecordNotFound) {
				fmt.Printf("No person with ID %d.\n", id)
			} else {
				fmt.Printf("Error deleting person ID %d: %v\n", id, err)
			}
		} else {
			fmt.Printf("Deleted Person ID %d.\n", id)
		}

		listPersons(rt)
	},
}

var manageCleanupCmd = &cobra.Command{
	Use:   "cleanup",
	Short: "Delete every person from the registry",
	Run: func(cmd *cobra.Command, args []string) {
		rt, err := openRuntime()
		if err != nil {
			log.Fatalf("FATAL: %v", err)
		}
		defer rt.Close()

		fmt.Print("Are you sure you want to delete ALL records? (y/n): ")
		reader := bufio.NewReader(os.Stdin)
		confirm, _ := reader.ReadString('\n')
		if strings.TrimSpace(strings.ToLower(confirm)) == "y" {
			if err := rt.Persons.DeleteAll(); err != nil {
				fmt.Printf("Error clearing registry: %v\n", err)
			} else {
				fmt.Println("Registry cleared.")
			}
		}

		listPersons(rt)
	},
}

func init() {
	rootCmd.AddCommand(manageCmd)
	manageCmd.AddCommand(manageListCmd)
	manageCmd.AddCommand(manageDeleteCmd)
	manageCmd.AddCommand(manageCleanupCmd)
}

func listPersons(rt *runtime) {
	sqlDB, err := rt.DB.DB()
	if err != nil {
		fmt.Printf("Error accessing database: %v\n", err)
		return
	}

	summaries, err := database.ListPersonSummaries(sqlDB)
	if err != nil {
		fmt.Printf("Error listing persons: %v\n", err)
		return
	}

	fmt.Printf("\n%-5s %-20s %-10s %-12s %s\n", "ID", "Name", "Status", "Embeddings", "Entry Time")
	fmt.Println(strings.Repeat("-", 70))
	for _, s := range summaries {
		p := models.Person{Status: s.Status}
		entryTime := "-"
		if s.EntryTime > 0 {
			entryTime = time.Unix(s.EntryTime, 0).Format("2006-01-02 15:04:05")
		}
		fmt.Printf("%-5d %-20s %-10s %-12d %s\n", s.ID, s.Name, p.StatusLabel(), s.EmbeddingCount, entryTime)
	}
	fmt.Println(strings.Repeat("-", 70))

	in, errIn := database.CountByStatus(sqlDB, models.StatusIn)
	out, errOut := database.CountByStatus(sqlDB, models.StatusOut)
	if errIn == nil && errOut == nil {
		fmt.Printf("IN: %d  OUT: %d\n", in, out)
	}
}
