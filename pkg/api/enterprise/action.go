package enterprise

// ActionUID extracts the asynchronous action reference from a mutating
// call's response, when the call was queued rather than applied inline.
func ActionUID(doc map[string]any) (string, bool) {
	if uid, ok := doc["action_uid"].(string); ok && uid != "" {
		return uid, true
	}
	if uid, ok := doc["uid"].(string); ok && uid != "" {
		return uid, true
	}
	return "", false
}

// ActionStatus extracts the raw status string from an action document.
func ActionStatus(doc map[string]any) string {
	if s, ok := doc["status"].(string); ok {
		return s
	}
	s, _ := doc["state"].(string)
	return s
}

// ActionFailureDetail extracts the failure description from an action
// document.
func ActionFailureDetail(doc map[string]any) string {
	if s, ok := doc["error"].(string); ok && s != "" {
		return s
	}
	if s, ok := doc["error_message"].(string); ok && s != "" {
		return s
	}
	s, _ := doc["description"].(string)
	return s
}

// ClusterState extracts the state string from a cluster document.
func ClusterState(doc map[string]any) string {
	s, _ := doc["state"].(string)
	return s
}
