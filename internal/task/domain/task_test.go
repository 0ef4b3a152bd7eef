package domain

import "testing"

func TestParseStatus(t *testing.T) {
	for _, s := range []string{"todo", "in_progress", "done"} {
		if got, err := ParseStatus(s); err != nil || string(got) != s {
			t.Errorf("ParseStatus(%q) = %q, %v", s, got, err)
		}
	}
	for _, s := range []string{"", "TODO", "blocked"} {
		if _, err := ParseStatus(s); err == nil {
			t.Errorf("ParseStatus(%q) should fail", s)
		}
	}
}

func TestTask_Validate(t *testing.T) {
	testCases := []struct {
		name    string
		task    Task
		wantErr bool
	}{
		{"valid", Task{OrgID: "o", ProjectID: "p", Title: "Write docs", Status: StatusTodo}, false},
		{"missing project", Task{OrgID: "o", Title: "x", Status: StatusTodo}, true},
		{"blank title", Task{OrgID: "o", ProjectID: "p", Title: " ", Status: StatusTodo}, true},
		{"bad status", Task{OrgID: "o", ProjectID: "p", Title: "x", Status: "blocked"}, true},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			if err := tc.task.Validate(); (err != nil) != tc.wantErr {
				t.Errorf("Validate() = %v, wantErr %v", err, tc.wantErr)
			}
		})
	}
}

func TestUpdateInput_Apply(t *testing.T) {
	title, status := "Renamed", "done"
	task := &Task{Title: "Old", Description: "keep", Status: StatusTodo}
	in := UpdateInput{Title: &title, Status: &status}
	if in.Empty() {
		t.Fatal("Empty should be false")
	}
	in.Apply(task)
	if task.Title != "Renamed" || task.Status != StatusDone || task.Description != "keep" {
		t.Errorf("task = %+v", task)
	}
	if !(UpdateInput{}).Empty() {
		t.Error("zero UpdateInput should be empty")
	}
}
