package dataset

import (
	"fmt"
	"strings"
)

// Professor is the entity record of a snapshot: one identified professor
// with aggregate rating scores.
type Professor struct {
	Id                  string
	FirstName           string
	LastName            string
	Department          string
	NumEvals            int64
	OverallRating       float64
	MaterialClear       float64
	StudentDifficulties float64
	Courses             []string
	Tags                map[string]int64
}

// FullName joins the first and last name the way the csv outputs expect.
func (p Professor) FullName() string {
	return strings.TrimSpace(p.FirstName + " " + p.LastName)
}

// Review is the detail record of a snapshot: one student review tied to a
// professor by id.
type Review struct {
	ProfessorId                   string
	ProfessorName                 string
	Department                    string
	CourseCode                    string
	ReviewId                      string
	Grade                         string
	GradeLevel                    string
	CourseType                    string
	OverallRating                 float64
	PresentsMaterialClearly       float64
	RecognizesStudentDifficulties float64
	Text                          string
	PostDate                      string
}

// Snapshot is the complete output of one collection run. Runs regenerate
// it wholesale, there is no incremental update.
type Snapshot struct {
	Professors []Professor
	Reviews    []Review
}

// Validate checks the snapshot invariants: non-empty roster, unique
// professor ids and no review referencing a professor missing from the
// same snapshot.
func (s Snapshot) Validate() error {
	if len(s.Professors) == 0 {
		return fmt.Errorf("empty professor roster")
	}

	ids := make(map[string]struct{}, len(s.Professors))
	for _, p := range s.Professors {
		if p.Id == "" {
			return fmt.Errorf("professor %q has no id", p.FullName())
		}
		_, exists := ids[p.Id]
		if exists {
			return fmt.Errorf("duplicate professor id %q", p.Id)
		}
		ids[p.Id] = struct{}{}
	}

	for _, r := range s.Reviews {
		_, exists := ids[r.ProfessorId]
		if !exists {
			return fmt.Errorf("review %q references unknown professor %q", r.ReviewId, r.ProfessorId)
		}
	}

	return nil
}

// Dataset is one logical csv output together with its canonical and
// historical file naming.
type Dataset struct {
	// Name is the canonical file stem, e.g. "professors_data".
	Name string
	// TrackingName is the stem used for historical snapshot files when
	// it differs from Name.
	TrackingName string
	Header       []string
	Records      [][]string
}

func (d Dataset) CanonicalFilename() string {
	return d.Name + ".csv"
}

func (d Dataset) TrackingFilename(tag string) string {
	stem := d.TrackingName
	if stem == "" {
		stem = d.Name
	}
	return fmt.Sprintf("%s_%s.csv", stem, tag)
}
