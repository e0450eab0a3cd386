package polyratings

// Professor is one entry of the roster returned by `professors.all`.
type Professor struct {
	Id                  string           `json:"id"`
	FirstName           string           `json:"firstName"`
	LastName            string           `json:"lastName"`
	Department          string           `json:"department"`
	NumEvals            int64            `json:"numEvals"`
	OverallRating       float64          `json:"overallRating"`
	MaterialClear       float64          `json:"materialClear"`
	StudentDifficulties float64          `json:"studentDifficulties"`
	Courses             []string         `json:"courses"`
	Tags                map[string]int64 `json:"tags"`
}

// Review is a single student review as returned inside `professors.get`.
type Review struct {
	Id                            string  `json:"id"`
	Grade                         string  `json:"grade"`
	GradeLevel                    string  `json:"gradeLevel"`
	CourseType                    string  `json:"courseType"`
	OverallRating                 float64 `json:"overallRating"`
	PresentsMaterialClearly       float64 `json:"presentsMaterialClearly"`
	RecognizesStudentDifficulties float64 `json:"recognizesStudentDifficulties"`
	Rating                        string  `json:"rating"`
	PostDate                      string  `json:"postDate"`
}

// ProfessorDetail is the full record returned by `professors.get`: the
// roster fields plus reviews keyed by course code.
type ProfessorDetail struct {
	Professor
	Reviews map[string][]Review `json:"reviews"`
}

type getInput struct {
	Id string `json:"id"`
}

// responses come wrapped in a trpc result envelope
type envelope[T any] struct {
	Result struct {
		Data T `json:"data"`
	} `json:"result"`
}
