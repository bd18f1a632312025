package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/spf13/cobra"

	"studyshelf/internal/app"
	"studyshelf/internal/bootstrap"
	"studyshelf/internal/config"
	"studyshelf/internal/model"
	"studyshelf/internal/platform/logger"
	"studyshelf/internal/repository"
)

var seedFlags struct {
	dir      string
	year     string
	branch   string
	uploader uint
}

var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Upload a local resource tree into the catalogue",
	Long: `Walks <dir>/<semester>/<subject>/<file>, uploads every file to the object
store and records it in the resource catalogue. Dotfiles and README.md are
skipped.`,
	RunE: runSeed,
}

func init() {
	seedCmd.Flags().StringVar(&seedFlags.dir, "dir", "", "root directory of the resource tree")
	seedCmd.Flags().StringVar(&seedFlags.year, "year", "1", "year recorded on every resource")
	seedCmd.Flags().StringVar(&seedFlags.branch, "branch", "Common", "branch recorded on every resource")
	seedCmd.Flags().UintVar(&seedFlags.uploader, "uploader", 0, "user id recorded as uploader")
	_ = seedCmd.MarkFlagRequired("dir")
	rootCmd.AddCommand(seedCmd)
}

type resourceCreator interface {
	Create(ctx context.Context, input app.CreateResourceInput) (*model.Resource, error)
}

// seedFile is one file found under <semester>/<subject>/.
type seedFile struct {
	Path     string
	Semester string
	Subject  string
	Title    string
}

func runSeed(cmd *cobra.Command, _ []string) error {
	ctx := context.Background()

	cfg, err := config.Load()
	if err != nil {
		return err
	}
	log, err := logger.New(cfg.App.Env)
	if err != nil {
		return err
	}
	defer log.Sync()

	files, err := collectFiles(seedFlags.dir)
	if err != nil {
		return err
	}
	if len(files) == 0 {
		cmd.Println("No files found.")
		return nil
	}

	db, err := bootstrap.OpenMySQL(ctx, cfg, log)
	if err != nil {
		return err
	}
	if sqlDB, err := db.DB(); err == nil {
		defer sqlDB.Close()
	}

	objects := bootstrap.NewObjectStore(ctx, cfg, log)
	if objects == nil {
		return errors.New("object store unavailable, check the storage section")
	}
	defer objects.Close()

	resources := app.NewResourceService(repository.NewResourceRepository(db), objects, log)
	created, err := seedAll(ctx, resources, files, cmd.OutOrStdout())
	cmd.Printf("Seeded %d of %d files.\n", created, len(files))
	return err
}

// seedAll creates one resource per file. A failing file is reported and
// skipped; the joined error lists every failure.
func seedAll(ctx context.Context, creator resourceCreator, files []seedFile, out io.Writer) (int, error) {
	var errs []error
	created := 0
	for _, f := range files {
		data, err := os.ReadFile(f.Path)
		if err != nil {
			errs = append(errs, fmt.Errorf("read %s failed: %w", f.Path, err))
			continue
		}
		name := filepath.Base(f.Path)
		_, err = creator.Create(ctx, app.CreateResourceInput{
			Title:       f.Title,
			Description: "Resource for " + f.Subject,
			Subject:     f.Subject,
			Year:        seedFlags.year,
			Branch:      seedFlags.branch,
			Semester:    f.Semester,
			Filename:    name,
			Data:        data,
			UploadedBy:  seedFlags.uploader,
		})
		if err != nil {
			fmt.Fprintf(out, "failed: %s (%v)\n", f.Path, err)
			errs = append(errs, fmt.Errorf("seed %s failed: %w", f.Path, err))
			continue
		}
		fmt.Fprintf(out, "uploaded: %s > %s > %s\n", f.Semester, f.Subject, name)
		created++
	}
	return created, errors.Join(errs...)
}

// collectFiles lists <root>/<semester>/<subject>/<file> in lexical order.
// Entries at other depths are ignored.
func collectFiles(root string) ([]seedFile, error) {
	semesters, err := subdirs(root)
	if err != nil {
		return nil, err
	}
	var files []seedFile
	for _, sem := range semesters {
		subjects, err := subdirs(filepath.Join(root, sem))
		if err != nil {
			return nil, err
		}
		for _, subject := range subjects {
			dir := filepath.Join(root, sem, subject)
			entries, err := os.ReadDir(dir)
			if err != nil {
				return nil, fmt.Errorf("read %s failed: %w", dir, err)
			}
			for _, e := range entries {
				if e.IsDir() || skipFile(e.Name()) {
					continue
				}
				files = append(files, seedFile{
					Path:     filepath.Join(dir, e.Name()),
					Semester: semesterName(sem),
					Subject:  subject,
					Title:    titleFor(e.Name()),
				})
			}
		}
	}
	return files, nil
}

func subdirs(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("read %s failed: %w", dir, err)
	}
	var out []string
	for _, e := range entries {
		if e.IsDir() && !strings.HasPrefix(e.Name(), ".") {
			out = append(out, e.Name())
		}
	}
	sort.Strings(out)
	return out, nil
}

func skipFile(name string) bool {
	return strings.HasPrefix(name, ".") || strings.EqualFold(name, "readme.md")
}

func titleFor(name string) string {
	base := strings.TrimSuffix(name, filepath.Ext(name))
	return strings.ReplaceAll(base, "_", " ")
}

func semesterName(folder string) string {
	switch folder {
	case "1st_sem":
		return "Semester 1"
	case "2nd sem":
		return "Semester 2"
	}
	return strings.ReplaceAll(folder, "_", " ")
}
