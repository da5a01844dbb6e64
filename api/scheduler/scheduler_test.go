package scheduler_test

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/onestopcentre/cybercrime-api/api/scheduler"
	"github.com/onestopcentre/cybercrime-api/databases/mocks"
	"github.com/onestopcentre/cybercrime-api/models"
)

func TestScheduler_Push(t *testing.T) {
	var gotPath string
	var gotCases []models.Case

	mirror := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		require.NoError(t, json.NewDecoder(r.Body).Decode(&gotCases))
		w.WriteHeader(http.StatusOK)
		json.NewEncoder(w).Encode(map[string]interface{}{"message": "Cases updated successfully", "count": len(gotCases)})
	}))
	defer mirror.Close()

	s := scheduler.New(mocks.NewCaseDatabase(t), mirror.URL)

	cases := []models.Case{
		{CaseNumber: "CR-2026-0001", Status: models.StatusNew},
		{CaseNumber: "CR-2026-0002", Status: models.StatusResolved},
	}
	err := s.Push(context.Background(), cases)
	require.NoError(t, err)

	assert.Equal(t, "/update-cases", gotPath)
	require.Len(t, gotCases, 2)
	assert.Equal(t, "CR-2026-0001", gotCases[0].CaseNumber)
}

func TestScheduler_Push_EmptySnapshot(t *testing.T) {
	var gotBody string
	mirror := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		b, _ := io.ReadAll(r.Body)
		gotBody = string(b)
		w.WriteHeader(http.StatusOK)
	}))
	defer mirror.Close()

	s := scheduler.New(mocks.NewCaseDatabase(t), mirror.URL)
	require.NoError(t, s.Push(context.Background(), nil))

	// a nil snapshot still goes out as an empty array, never null
	assert.Equal(t, "[]", gotBody)
}

func TestScheduler_Push_MirrorRejects(t *testing.T) {
	mirror := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
	}))
	defer mirror.Close()

	s := scheduler.New(mocks.NewCaseDatabase(t), mirror.URL)
	err := s.Push(context.Background(), []models.Case{{CaseNumber: "CR-2026-0001"}})
	assert.Error(t, err)
}

func TestScheduler_Push_MirrorUnreachable(t *testing.T) {
	s := scheduler.New(mocks.NewCaseDatabase(t), "http://127.0.0.1:1")
	err := s.Push(context.Background(), []models.Case{{CaseNumber: "CR-2026-0001"}})
	assert.Error(t, err)
}
