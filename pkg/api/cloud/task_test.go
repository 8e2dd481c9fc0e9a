package cloud

import "testing"

func TestTaskID(t *testing.T) {
	tests := []struct {
		name string
		doc  map[string]any
		want string
		ok   bool
	}{
		{"camelCase", map[string]any{"taskId": "t-1"}, "t-1", true},
		{"snake_case", map[string]any{"task_id": "t-2"}, "t-2", true},
		{"nested response id", map[string]any{"response": map[string]any{"id": "t-3"}}, "t-3", true},
		{"camelCase wins", map[string]any{"taskId": "t-1", "task_id": "t-2"}, "t-1", true},
		{"absent", map[string]any{"name": "x"}, "", false},
		{"empty string", map[string]any{"taskId": ""}, "", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := TaskID(tt.doc)
			if got != tt.want || ok != tt.ok {
				t.Errorf("TaskID() = %q, %v, want %q, %v", got, ok, tt.want, tt.ok)
			}
		})
	}
}

func TestTaskStatus(t *testing.T) {
	if got := TaskStatus(map[string]any{"status": "processing-completed"}); got != "processing-completed" {
		t.Errorf("status field: got %q", got)
	}
	if got := TaskStatus(map[string]any{"state": "received"}); got != "received" {
		t.Errorf("state fallback: got %q", got)
	}
	if got := TaskStatus(map[string]any{}); got != "" {
		t.Errorf("absent status: got %q", got)
	}
}

func TestTaskFailureDetail(t *testing.T) {
	tests := []struct {
		name string
		doc  map[string]any
		want string
	}{
		{"top-level error", map[string]any{"error": "quota exceeded"}, "quota exceeded"},
		{"errorMessage", map[string]any{"errorMessage": "bad region"}, "bad region"},
		{"response error string", map[string]any{
			"response": map[string]any{"error": "insufficient resources"},
		}, "insufficient resources"},
		{"response error object", map[string]any{
			"response": map[string]any{"error": map[string]any{
				"type":        "SUBSCRIPTION_CREATE_FAILED",
				"description": "payment method declined",
			}},
		}, "payment method declined"},
		{"response error object type only", map[string]any{
			"response": map[string]any{"error": map[string]any{"type": "TASK_FAILED"}},
		}, "TASK_FAILED"},
		{"description fallback", map[string]any{"description": "something broke"}, "something broke"},
		{"nothing", map[string]any{}, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := TaskFailureDetail(tt.doc); got != tt.want {
				t.Errorf("TaskFailureDetail() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestTaskResourceID(t *testing.T) {
	tests := []struct {
		name string
		doc  map[string]any
		want int64
		ok   bool
	}{
		{"response resourceId", map[string]any{
			"response": map[string]any{"resourceId": float64(42)},
		}, 42, true},
		{"nested resource id", map[string]any{
			"response": map[string]any{"resource": map[string]any{"id": float64(7)}},
		}, 7, true},
		{"top-level resourceId", map[string]any{"resourceId": float64(9)}, 9, true},
		{"absent", map[string]any{"response": map[string]any{}}, 0, false},
		{"non-numeric", map[string]any{"resourceId": "42"}, 0, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := TaskResourceID(tt.doc)
			if got != tt.want || ok != tt.ok {
				t.Errorf("TaskResourceID() = %d, %v, want %d, %v", got, ok, tt.want, tt.ok)
			}
		})
	}
}
