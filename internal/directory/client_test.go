package directory

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestListReports(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			t.Errorf("unexpected method %s", r.Method)
		}
		if got := r.URL.Query().Get("reporting_manager"); got != "140894" {
			t.Errorf("reporting_manager = %q, want 140894", got)
		}
		json.NewEncoder(w).Encode(map[string]any{
			"status_code": 200,
			"message":     "Employee details:",
			"data": []map[string]any{
				{"staff_id": 140002, "staff_fname": "Susan", "dept": "Sales", "reporting_manager": 140894},
				{"staff_id": 140003, "staff_fname": "Janice", "dept": "Sales", "reporting_manager": 140894},
			},
		})
	}))
	defer server.Close()

	c := New(server.URL)
	employees, err := c.ListReports(context.Background(), 140894)
	if err != nil {
		t.Fatalf("ListReports: %v", err)
	}
	if len(employees) != 2 {
		t.Fatalf("got %d employees, want 2", len(employees))
	}
	if employees[0].StaffID != 140002 || employees[1].StaffID != 140003 {
		t.Errorf("unexpected staff ids: %+v", employees)
	}
}

func TestUpdateReportingManager(t *testing.T) {
	var gotBody map[string]int
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPut {
			t.Errorf("unexpected method %s", r.Method)
		}
		if got := r.URL.Query().Get("staff_id"); got != "140002" {
			t.Errorf("staff_id = %q, want 140002", got)
		}
		json.NewDecoder(r.Body).Decode(&gotBody)
		json.NewEncoder(w).Encode(map[string]any{"status_code": 200, "message": "updated", "data": nil})
	}))
	defer server.Close()

	c := New(server.URL)
	if err := c.UpdateReportingManager(context.Background(), 140002, 151408); err != nil {
		t.Fatalf("UpdateReportingManager: %v", err)
	}
	if gotBody["reporting_manager"] != 151408 {
		t.Errorf("body reporting_manager = %d, want 151408", gotBody["reporting_manager"])
	}
}

func TestUpdateReportingManagerServerError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"error":"boom"}`, http.StatusInternalServerError)
	}))
	defer server.Close()

	c := New(server.URL)
	if err := c.UpdateReportingManager(context.Background(), 1, 2); err == nil {
		t.Fatal("expected error on 500 response")
	}
}
