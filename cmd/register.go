package cmd

import (
	"fmt"
	"log"
	"os"
	"path/filepath"

	"github.com/facette/natsort"
	"github.com/spf13/cobra"

	"github.com/camden-git/gatewatch/media"
	"github.com/camden-git/gatewatch/workers"
)

var registerDir string

var registerCmd = &cobra.Command{
	Use:   "register",
	Short: "Bulk-register persons from a directory of images",
	Long: `Scan a directory tree with one subfolder per person, each holding
registration photos of that person. Every readable photo becomes one
stored embedding. Re-running on the same tree appends more evidence; it
never creates duplicate persons.`,
	Run: runRegister,
}

func init() {
	rootCmd.AddCommand(registerCmd)
	registerCmd.Flags().StringVar(&registerDir, "dir", "registration_images", "Directory containing person subfolders")
}

func runRegister(cmd *cobra.Command, args []string) {
	if _, err := os.Stat(registerDir); os.IsNotExist(err) {
		log.Fatalf("FATAL: directory '%s' does not exist", registerDir)
	}

	rt, err := openRuntime()
	if err != nil {
		log.Fatalf("FATAL: %v", err)
	}
	defer rt.Close()

	entries, err := os.ReadDir(registerDir)
	if err != nil {
		log.Fatalf("FATAL: failed to read directory '%s': %v", registerDir, err)
	}

	proc := workers.NewRegistrationProcessor(rt.Cfg, rt.Embeddings, rt.Cfg.RegisterWorkers*8, rt.Cfg.RegisterWorkers)

	type pending struct {
		id   uint
		name string
	}
	var processed []pending

	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}
		personName := entry.Name()
		fmt.Printf("\nProcessing person: %s\n", personName)

		// create (or look up) the person before any embedding is queued so
		// appends always land on an existing row
		person, err := rt.Persons.Create(personName, nil)
		if err != nil {
			log.Printf("Failed to create person %s: %v", personName, err)
			continue
		}
		processed = append(processed, pending{id: person.ID, name: person.Name})

		personDir := filepath.Join(registerDir, personName)
		images, err := os.ReadDir(personDir)
		if err != nil {
			log.Printf("Failed to read %s: %v", personDir, err)
			continue
		}

		var names []string
		for _, img := range images {
			if !img.IsDir() && media.IsRasterImage(img.Name()) {
				names = append(names, img.Name())
			}
		}
		natsort.Sort(names)

		for _, name := range names {
			proc.Enqueue(workers.RegistrationJob{
				PersonID:   person.ID,
				PersonName: person.Name,
				ImagePath:  filepath.Join(personDir, name),
			})
		}
	}

	proc.Shutdown()

	for _, p := range processed {
		proc.Mutex.Lock()
		ok, failed := proc.Succeeded[p.id], proc.Failed[p.id]
		proc.Mutex.Unlock()
		fmt.Printf("Finished %s. Embeddings added: %d, failed: %d\n", p.name, ok, failed)
	}
}
