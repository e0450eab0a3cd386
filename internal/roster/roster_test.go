package roster

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

const fixture = `fullName,firstName,lastName,id,department,overallRating,numEvals
Ada Lovelace,Ada,Lovelace,aaa-111,CSC,3.92,12
Alan Turing,Alan,Turing,bbb-222,CSC,3,5
Grace Hopper,Grace,Hopper,ccc-333,CPE,3.917,8
`

func writeFixture(t *testing.T) string {
	path := filepath.Join(t.TempDir(), "professor_name_to_id.csv")
	err := os.WriteFile(path, []byte(fixture), 0644)
	require.NoError(t, err)
	return path
}

func TestLoad(t *testing.T) {
	entries, err := Load(writeFixture(t))
	require.NoError(t, err)
	require.Len(t, entries, 3)

	require.Equal(t, "Ada Lovelace", entries[0].FullName)
	require.Equal(t, "aaa-111", entries[0].Id)
	require.Equal(t, "CSC", entries[0].Department)
	require.Equal(t, 3.92, entries[0].OverallRating)
	require.Equal(t, int64(12), entries[0].NumEvals)
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.csv"))
	require.Error(t, err)
}

func TestSearchExactName(t *testing.T) {
	entries, err := Load(writeFixture(t))
	require.NoError(t, err)

	matches := Search(entries, "Ada Lovelace", 3)
	require.Len(t, matches, 3)
	require.Equal(t, "aaa-111", matches[0].Entry.Id)
	require.Equal(t, 1.0, matches[0].Correlation)
}

func TestSearchIsCaseAndSpacingInsensitive(t *testing.T) {
	entries, err := Load(writeFixture(t))
	require.NoError(t, err)

	matches := Search(entries, "  GRACE   hopper ", 1)
	require.Len(t, matches, 1)
	require.Equal(t, "ccc-333", matches[0].Entry.Id)
	require.Equal(t, 1.0, matches[0].Correlation)
}

func TestSearchTypo(t *testing.T) {
	entries, err := Load(writeFixture(t))
	require.NoError(t, err)

	matches := Search(entries, "ada lovelance", 1)
	require.Len(t, matches, 1)
	require.Equal(t, "aaa-111", matches[0].Entry.Id)
	require.Greater(t, matches[0].Correlation, 0.9)
}

func TestSearchLimit(t *testing.T) {
	entries, err := Load(writeFixture(t))
	require.NoError(t, err)

	require.Len(t, Search(entries, "a", 2), 2)
	require.Len(t, Search(entries, "a", 0), 3)
}
