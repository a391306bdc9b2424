package memory

import (
	"fmt"
	"io"
	"os"

	"github.com/SAP-F-2025/submission-service/internal/repositories"
)

// LoadFixtures decodes fixtures from src and stores them.
func (r *Repository) LoadFixtures(src io.Reader) error {
	f, err := repositories.DecodeFixtures(src)
	if err != nil {
		return err
	}

	for i := range f.Pages {
		r.PutPage(&f.Pages[i])
	}
	for _, m := range f.Members {
		r.AddMember(m.CourseID, m.UserID, m.Role)
	}
	for i := range f.Users {
		r.PutUser(&f.Users[i])
	}
	return nil
}

// LoadFixturesFile is LoadFixtures over a JSON file.
func (r *Repository) LoadFixturesFile(path string) error {
	file, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("failed to open fixtures: %w", err)
	}
	defer file.Close()
	return r.LoadFixtures(file)
}
