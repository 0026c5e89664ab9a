package schema

// StepActions is the fixed vocabulary of step-action kinds the executor
// understands (§6). A step whose Action is not in this set fails
// structural validation.
var StepActions = map[string][]string{
	"open":     {"url"},
	"click":    {"selector"},
	"fill":     {"selector", "value"},
	"type":     {"selector", "text"},
	"press":    {"key"},
	"wait":     nil, // one of selector|url|state|time, checked specially
	"snapshot": nil, // selector and interactive are both optional
	"find":     {"type"},
	"eval":     {"expression"},
	"run":      {"action"},
	"fail":     {"message"},
}

var waitArgs = []string{"selector", "url", "state", "time"}

func isRecognizedStepAction(action string) bool {
	_, ok := StepActions[action]
	return ok
}
