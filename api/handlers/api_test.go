package handlers

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

var a App

func executeRequest(req *http.Request) *httptest.ResponseRecorder {
	rr := httptest.NewRecorder()
	a.Router.ServeHTTP(rr, req)
	return rr
}

func checkResponseCode(t *testing.T, expected, actual int) {
	if expected != actual {
		t.Errorf("Expected response code %d. Got %d\n", expected, actual)
	}
}

func TestUnknownRoute(t *testing.T) {
	a.Router = a.New()
	req, _ := http.NewRequest("GET", "/asdf", nil)
	response := executeRequest(req)

	checkResponseCode(t, http.StatusNotFound, response.Code)

}

func TestHealthCheckRoute(t *testing.T) {
	a.Router = a.New()
	req, _ := http.NewRequest("GET", "/health", nil)
	response := executeRequest(req)

	checkResponseCode(t, http.StatusOK, response.Code)

	if !strings.Contains(response.Body.String(), "alive") {
		t.Errorf("Expected 'alive' in the reponse. Got '%s'", response.Body.String())
	}
}

func TestUpdateCasesRouteRejectsGet(t *testing.T) {
	a.Router = a.New()
	req, _ := http.NewRequest("GET", "/update-cases", nil)
	response := executeRequest(req)

	checkResponseCode(t, http.StatusMethodNotAllowed, response.Code)
}

func TestCasesCSVRoute(t *testing.T) {
	a.Router = a.New()
	req, _ := http.NewRequest("GET", "/cases.csv", nil)
	response := executeRequest(req)

	checkResponseCode(t, http.StatusOK, response.Code)

	if !strings.Contains(response.Body.String(), "Case Number") {
		t.Errorf("Expected the CSV header in the response. Got '%s'", response.Body.String())
	}
}

func TestChartsListRoute(t *testing.T) {
	a.Router = a.New()
	req, _ := http.NewRequest("GET", "/charts/list", nil)
	response := executeRequest(req)

	checkResponseCode(t, http.StatusOK, response.Code)

	if !strings.Contains(response.Body.String(), "charts") {
		t.Errorf("Expected 'charts' in the response. Got '%s'", response.Body.String())
	}
}
