package cloud

import "encoding/json"

// TaskID extracts the asynchronous task reference from a mutating call's
// response. The API is not consistent about where it puts it.
func TaskID(doc map[string]any) (string, bool) {
	if id := stringField(doc, "taskId"); id != "" {
		return id, true
	}
	if id := stringField(doc, "task_id"); id != "" {
		return id, true
	}
	if response, ok := doc["response"].(map[string]any); ok {
		if id := stringField(response, "id"); id != "" {
			return id, true
		}
	}
	return "", false
}

// TaskStatus extracts the raw status string from a task document. An absent
// status reads as empty, which the status adapter classifies as running.
func TaskStatus(doc map[string]any) string {
	if s := stringField(doc, "status"); s != "" {
		return s
	}
	return stringField(doc, "state")
}

// TaskFailureDetail extracts the backend's failure description from a task
// document. Error details appear either at the top level or nested under
// response.error, as a string or a structured object.
func TaskFailureDetail(doc map[string]any) string {
	if s := stringField(doc, "error"); s != "" {
		return s
	}
	if s := stringField(doc, "errorMessage"); s != "" {
		return s
	}
	if response, ok := doc["response"].(map[string]any); ok {
		switch errVal := response["error"].(type) {
		case string:
			return errVal
		case map[string]any:
			if s := stringField(errVal, "description"); s != "" {
				return s
			}
			if s := stringField(errVal, "type"); s != "" {
				return s
			}
		}
	}
	return stringField(doc, "description")
}

// TaskResourceID extracts the created resource's identifier from a
// completed task document.
func TaskResourceID(doc map[string]any) (int64, bool) {
	if response, ok := doc["response"].(map[string]any); ok {
		if id, ok := intField(response, "resourceId"); ok {
			return id, true
		}
		if resource, ok := response["resource"].(map[string]any); ok {
			if id, ok := intField(resource, "id"); ok {
				return id, true
			}
		}
	}
	return intField(doc, "resourceId")
}

func stringField(doc map[string]any, key string) string {
	s, _ := doc[key].(string)
	return s
}

func intField(doc map[string]any, key string) (int64, bool) {
	switch v := doc[key].(type) {
	case float64:
		return int64(v), true
	case int64:
		return v, true
	case int:
		return int64(v), true
	case json.Number:
		n, err := v.Int64()
		return n, err == nil
	default:
		return 0, false
	}
}
