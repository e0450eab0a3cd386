package polyratings

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/sreshtalluri/polyratings-data-collection/lib/telemetry"

	"github.com/stretchr/testify/require"
)

const rosterFixture = `{
	"result": {
		"data": [
			{
				"id": "aaa-111",
				"firstName": "Ada",
				"lastName": "Lovelace",
				"department": "CSC",
				"numEvals": 12,
				"overallRating": 3.92,
				"materialClear": 3.5,
				"studentDifficulties": 3.25,
				"courses": ["CSC 101", "CSC 202"],
				"tags": {"Hilarious": 3, "Tough Grader": 1}
			},
			{
				"id": "bbb-222",
				"firstName": "Grace",
				"lastName": "Hopper",
				"department": "CPE",
				"numEvals": 4,
				"overallRating": 4,
				"materialClear": 4,
				"studentDifficulties": 3.75,
				"courses": ["CPE 100"],
				"tags": {}
			}
		]
	}
}`

const detailFixture = `{
	"result": {
		"data": {
			"id": "aaa-111",
			"firstName": "Ada",
			"lastName": "Lovelace",
			"department": "CSC",
			"numEvals": 12,
			"overallRating": 3.92,
			"materialClear": 3.5,
			"studentDifficulties": 3.25,
			"courses": ["CSC 101", "CSC 202"],
			"tags": {"Hilarious": 3},
			"reviews": {
				"CSC 101": [
					{
						"id": "rev-1",
						"grade": "A",
						"gradeLevel": "Senior",
						"courseType": "Required (Major)",
						"overallRating": 4,
						"presentsMaterialClearly": 4,
						"recognizesStudentDifficulties": 3,
						"rating": "Great lectures, hard exams.",
						"postDate": "2023-04-11T00:00:00.000Z"
					}
				],
				"CSC 202": [
					{
						"id": "rev-2",
						"grade": "B",
						"gradeLevel": "Junior",
						"courseType": "Elective",
						"overallRating": 3.5,
						"presentsMaterialClearly": 3,
						"recognizesStudentDifficulties": 4,
						"rating": "Fair but fast paced.",
						"postDate": "2022-11-02T00:00:00.000Z"
					}
				]
			}
		}
	}
}`

func newTestServer(t testing.TB) *httptest.Server {
	mux := http.NewServeMux()
	mux.HandleFunc("/professors.all", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("content-type", "application/json")
		fmt.Fprint(w, rosterFixture)
	})
	mux.HandleFunc("/professors.get", func(w http.ResponseWriter, r *http.Request) {
		var input getInput
		err := json.Unmarshal([]byte(r.URL.Query().Get("input")), &input)
		if err != nil || input.Id != "aaa-111" {
			http.Error(w, "not found", http.StatusNotFound)
			return
		}
		w.Header().Set("content-type", "application/json")
		fmt.Fprint(w, detailFixture)
	})

	server := httptest.NewServer(mux)
	t.Cleanup(server.Close)
	return server
}

func newTestClient(t testing.TB) *Client {
	server := newTestServer(t)
	client, err := NewClient(Config{
		BaseUrl:   server.URL,
		RateLimit: 100,
	})
	require.NoError(t, err)
	return client
}

func TestAll(t *testing.T) {
	cleanup := telemetry.SetupForTesting(t, "test:polyratings")
	defer cleanup()

	client := newTestClient(t)

	ctx, cancel := context.WithTimeout(context.Background(), time.Second*5)
	defer cancel()

	professors, err := client.All(ctx)
	require.NoError(t, err)
	require.Len(t, professors, 2)

	ada := professors[0]
	require.Equal(t, "aaa-111", ada.Id)
	require.Equal(t, "Ada", ada.FirstName)
	require.Equal(t, "Lovelace", ada.LastName)
	require.Equal(t, "CSC", ada.Department)
	require.Equal(t, int64(12), ada.NumEvals)
	require.Equal(t, 3.92, ada.OverallRating)
	require.Equal(t, []string{"CSC 101", "CSC 202"}, ada.Courses)
	require.Equal(t, map[string]int64{"Hilarious": 3, "Tough Grader": 1}, ada.Tags)
}

func TestGet(t *testing.T) {
	cleanup := telemetry.SetupForTesting(t, "test:polyratings")
	defer cleanup()

	client := newTestClient(t)

	ctx, cancel := context.WithTimeout(context.Background(), time.Second*5)
	defer cancel()

	detail, err := client.Get(ctx, "aaa-111")
	require.NoError(t, err)
	require.Equal(t, "aaa-111", detail.Id)
	require.Len(t, detail.Reviews, 2)

	reviews := detail.Reviews["CSC 101"]
	require.Len(t, reviews, 1)
	require.Equal(t, "rev-1", reviews[0].Id)
	require.Equal(t, "A", reviews[0].Grade)
	require.Equal(t, "Senior", reviews[0].GradeLevel)
	require.Equal(t, 4.0, reviews[0].OverallRating)
	require.Equal(t, "Great lectures, hard exams.", reviews[0].Rating)
}

func TestGetUnknownId(t *testing.T) {
	cleanup := telemetry.SetupForTesting(t, "test:polyratings")
	defer cleanup()

	client := newTestClient(t)

	ctx, cancel := context.WithTimeout(context.Background(), time.Second*5)
	defer cancel()

	_, err := client.Get(ctx, "does-not-exist")
	require.Error(t, err)
}

func TestAllDecodeFailure(t *testing.T) {
	cleanup := telemetry.SetupForTesting(t, "test:polyratings")
	defer cleanup()

	mux := http.NewServeMux()
	mux.HandleFunc("/professors.all", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, "<html>definitely not json</html>")
	})
	server := httptest.NewServer(mux)
	t.Cleanup(server.Close)

	client, err := NewClient(Config{BaseUrl: server.URL, RateLimit: 100})
	require.NoError(t, err)

	ctx, cancel := context.WithTimeout(context.Background(), time.Second*5)
	defer cancel()

	_, err = client.All(ctx)
	require.Error(t, err)
}
