package dataset

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/require"
)

func sampleSnapshot() Snapshot {
	return Snapshot{
		Professors: []Professor{
			{
				Id:                  "aaa-111",
				FirstName:           "Ada",
				LastName:            "Lovelace",
				Department:          "CSC",
				NumEvals:            12,
				OverallRating:       4,
				MaterialClear:       3.5,
				StudentDifficulties: 3.25,
				Courses:             []string{"CSC 101", "CSC 202"},
				Tags:                map[string]int64{"Tough Grader": 1, "Hilarious": 3},
			},
			{
				Id:            "bbb-222",
				FirstName:     "Alan",
				LastName:      "Turing",
				Department:    "CSC",
				NumEvals:      5,
				OverallRating: 3,
				MaterialClear: 3,
			},
			{
				Id:            "ccc-333",
				FirstName:     "Grace",
				LastName:      "Hopper",
				Department:    "CPE",
				NumEvals:      8,
				OverallRating: 3.917,
				Courses:       []string{"CPE 100"},
			},
		},
		Reviews: []Review{
			{
				ProfessorId:                   "aaa-111",
				ProfessorName:                 "Ada Lovelace",
				Department:                    "CSC",
				CourseCode:                    "CSC 101",
				ReviewId:                      "rev-1",
				Grade:                         "A",
				GradeLevel:                    "Senior",
				CourseType:                    "Required (Major)",
				OverallRating:                 4,
				PresentsMaterialClearly:       4,
				RecognizesStudentDifficulties: 3,
				Text:                          "Great lectures, hard exams.",
				PostDate:                      "2023-04-11T00:00:00.000Z",
			},
		},
	}
}

func TestValidate(t *testing.T) {
	testCases := []struct {
		name     string
		mutate   func(s *Snapshot)
		expectOk bool
	}{
		{
			name:     "valid snapshot",
			mutate:   func(s *Snapshot) {},
			expectOk: true,
		},
		{
			name: "empty roster",
			mutate: func(s *Snapshot) {
				s.Professors = nil
			},
			expectOk: false,
		},
		{
			name: "missing professor id",
			mutate: func(s *Snapshot) {
				s.Professors[1].Id = ""
			},
			expectOk: false,
		},
		{
			name: "duplicate professor id",
			mutate: func(s *Snapshot) {
				s.Professors[1].Id = s.Professors[0].Id
			},
			expectOk: false,
		},
		{
			name: "review referencing unknown professor",
			mutate: func(s *Snapshot) {
				s.Reviews[0].ProfessorId = "zzz-999"
			},
			expectOk: false,
		},
	}

	for _, test := range testCases {
		t.Run(test.name, func(t *testing.T) {
			snapshot := sampleSnapshot()
			test.mutate(&snapshot)

			err := snapshot.Validate()
			if test.expectOk {
				require.NoError(t, err)
			} else {
				require.Error(t, err)
			}
		})
	}
}

func TestProfessorsDataset(t *testing.T) {
	d := Professors(sampleSnapshot())

	require.Equal(t, "professors_data", d.Name)
	require.Equal(t, "professors_data.csv", d.CanonicalFilename())
	require.Equal(t, "professors_full_data_20240101_060000.csv", d.TrackingFilename("20240101_060000"))
	require.Len(t, d.Header, 13)
	require.Len(t, d.Records, 3)

	expected := []string{
		"aaa-111",
		"Ada",
		"Lovelace",
		"Ada Lovelace",
		"CSC",
		"12",
		"4",
		"3.5",
		"3.25",
		"CSC 101; CSC 202",
		"Hilarious:3; Tough Grader:1",
		"2",
		"2",
	}
	diff := cmp.Diff(expected, d.Records[0])
	require.Empty(t, diff)

	// empty courses and tags serialize to empty cells, not "[]"
	require.Equal(t, "", d.Records[1][9])
	require.Equal(t, "", d.Records[1][10])
	require.Equal(t, "0", d.Records[1][11])
	require.Equal(t, "0", d.Records[1][12])
}

func TestNameToIdDataset(t *testing.T) {
	d := NameToId(sampleSnapshot())

	require.Equal(t, "professor_name_to_id", d.Name)
	require.Equal(t, "professor_name_to_id_tag.csv", d.TrackingFilename("tag"))
	require.Len(t, d.Records, 3)

	diff := cmp.Diff(
		[]string{"Grace Hopper", "Grace", "Hopper", "ccc-333", "CPE", "3.917", "8"},
		d.Records[2],
	)
	require.Empty(t, diff)
}

func TestDepartmentSummaryDataset(t *testing.T) {
	d := DepartmentSummary(sampleSnapshot())

	require.Equal(t, "department_summary", d.Name)
	require.Len(t, d.Records, 2)

	// departments appear in first-seen roster order, averages round to
	// two decimals and drop trailing zeros
	diff := cmp.Diff([][]string{
		{"CSC", "2", "3.5", "17", "aaa-111; bbb-222"},
		{"CPE", "1", "3.92", "8", "ccc-333"},
	}, d.Records)
	require.Empty(t, diff)
}

func TestDepartmentSummaryUnknownDepartment(t *testing.T) {
	snapshot := sampleSnapshot()
	snapshot.Professors[2].Department = ""

	d := DepartmentSummary(snapshot)
	require.Len(t, d.Records, 2)
	require.Equal(t, "Unknown", d.Records[1][0])
}

func TestReviewsDataset(t *testing.T) {
	d := Reviews(sampleSnapshot())

	require.Equal(t, "professor_detailed_reviews", d.Name)
	require.Len(t, d.Header, 13)
	require.Len(t, d.Records, 1)

	diff := cmp.Diff([]string{
		"aaa-111",
		"Ada Lovelace",
		"CSC",
		"CSC 101",
		"rev-1",
		"A",
		"Senior",
		"Required (Major)",
		"4",
		"4",
		"3",
		"Great lectures, hard exams.",
		"2023-04-11T00:00:00.000Z",
	}, d.Records[0])
	require.Empty(t, diff)
}

func TestBuildOrder(t *testing.T) {
	datasets := Build(sampleSnapshot())
	require.Len(t, datasets, 4)

	names := make([]string, len(datasets))
	for i, d := range datasets {
		names[i] = d.Name
	}
	require.Equal(t, []string{
		"professors_data",
		"professor_name_to_id",
		"department_summary",
		"professor_detailed_reviews",
	}, names)
}
