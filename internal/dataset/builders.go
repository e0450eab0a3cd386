package dataset

import (
	"fmt"
	"math"
	"sort"
	"strconv"
	"strings"
)

// Build produces the four csv datasets of a snapshot in their canonical
// order.
func Build(snapshot Snapshot) []Dataset {
	return []Dataset{
		Professors(snapshot),
		NameToId(snapshot),
		DepartmentSummary(snapshot),
		Reviews(snapshot),
	}
}

// numbers keep their shortest representation, so integral ratings print
// without a decimal point just like the upstream json carries them
func formatNumber(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

func Professors(snapshot Snapshot) Dataset {
	records := make([][]string, len(snapshot.Professors))
	for i, p := range snapshot.Professors {
		tags := make([]string, 0, len(p.Tags))
		for k, v := range p.Tags {
			tags = append(tags, fmt.Sprintf("%s:%d", k, v))
		}
		sort.Strings(tags)

		records[i] = []string{
			p.Id,
			p.FirstName,
			p.LastName,
			p.FullName(),
			p.Department,
			strconv.FormatInt(p.NumEvals, 10),
			formatNumber(p.OverallRating),
			formatNumber(p.MaterialClear),
			formatNumber(p.StudentDifficulties),
			strings.Join(p.Courses, "; "),
			strings.Join(tags, "; "),
			strconv.Itoa(len(p.Courses)),
			strconv.Itoa(len(p.Tags)),
		}
	}

	return Dataset{
		Name:         "professors_data",
		TrackingName: "professors_full_data",
		Header: []string{
			"id",
			"firstName",
			"lastName",
			"fullName",
			"department",
			"numEvals",
			"overallRating",
			"materialClear",
			"studentDifficulties",
			"courses",
			"tags",
			"courses_count",
			"tags_count",
		},
		Records: records,
	}
}

func NameToId(snapshot Snapshot) Dataset {
	records := make([][]string, len(snapshot.Professors))
	for i, p := range snapshot.Professors {
		records[i] = []string{
			p.FullName(),
			p.FirstName,
			p.LastName,
			p.Id,
			p.Department,
			formatNumber(p.OverallRating),
			strconv.FormatInt(p.NumEvals, 10),
		}
	}

	return Dataset{
		Name: "professor_name_to_id",
		Header: []string{
			"fullName",
			"firstName",
			"lastName",
			"id",
			"department",
			"overallRating",
			"numEvals",
		},
		Records: records,
	}
}

func DepartmentSummary(snapshot Snapshot) Dataset {
	type stats struct {
		count       int
		totalRating float64
		totalEvals  int64
		professors  []string
	}

	// departments keep their first-seen roster order
	byDept := make(map[string]*stats)
	var order []string
	for _, p := range snapshot.Professors {
		dept := p.Department
		if dept == "" {
			dept = "Unknown"
		}
		s, exists := byDept[dept]
		if !exists {
			s = &stats{}
			byDept[dept] = s
			order = append(order, dept)
		}
		s.count++
		s.totalRating += p.OverallRating
		s.totalEvals += p.NumEvals
		s.professors = append(s.professors, p.Id)
	}

	records := make([][]string, len(order))
	for i, dept := range order {
		s := byDept[dept]
		avg := s.totalRating / float64(s.count)
		records[i] = []string{
			dept,
			strconv.Itoa(s.count),
			formatNumber(math.Round(avg*100) / 100),
			strconv.FormatInt(s.totalEvals, 10),
			strings.Join(s.professors, "; "),
		}
	}

	return Dataset{
		Name: "department_summary",
		Header: []string{
			"department",
			"professor_count",
			"avg_rating",
			"total_evals",
			"professor_ids",
		},
		Records: records,
	}
}

func Reviews(snapshot Snapshot) Dataset {
	records := make([][]string, len(snapshot.Reviews))
	for i, r := range snapshot.Reviews {
		records[i] = []string{
			r.ProfessorId,
			r.ProfessorName,
			r.Department,
			r.CourseCode,
			r.ReviewId,
			r.Grade,
			r.GradeLevel,
			r.CourseType,
			formatNumber(r.OverallRating),
			formatNumber(r.PresentsMaterialClearly),
			formatNumber(r.RecognizesStudentDifficulties),
			r.Text,
			r.PostDate,
		}
	}

	return Dataset{
		Name: "professor_detailed_reviews",
		Header: []string{
			"professor_id",
			"professor_name",
			"professor_department",
			"course_code",
			"review_id",
			"grade",
			"grade_level",
			"course_type",
			"overall_rating",
			"presents_material_clearly",
			"recognizes_student_difficulties",
			"rating_text",
			"post_date",
		},
		Records: records,
	}
}
