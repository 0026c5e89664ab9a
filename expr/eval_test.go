package expr

import "testing"

func TestEvaluateCondition_Literals(t *testing.T) {
	tests := []struct {
		name string
		expr string
		want bool
	}{
		{"true literal", "true", true},
		{"false literal", "false", false},
		{"equality numbers", "1 == 1", true},
		{"equality string vs number", `"1" == 1`, true},
		{"equality non-numeric strings match", `"abc" == "abc"`, true},
		{"equality non-numeric string vs number", `"abc" == 5`, false},
		{"inequality", "1 != 2", true},
		{"greater than", "5 > 3", true},
		{"ordered coercion of non-numeric", `"abc" > 3`, false}, // "abc" coerces to 0
		{"and short circuit false", "false && true", false},
		{"or short circuit true", "true || false", true},
		{"not", "!false", true},
		{"parens", "(1 == 1) && (2 == 2)", true},
		{"falsy empty string", `"" == false`, true},
		{"falsy zero", "0 == false", true},
		{"null equals null", "null == null", true},
		{"null not equal string", `null == ""`, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := EvaluateCondition(tt.expr)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got != tt.want {
				t.Errorf("EvaluateCondition(%q) = %v, want %v", tt.expr, got, tt.want)
			}
		})
	}
}

func TestEvaluateCondition_Forbidden(t *testing.T) {
	tests := []string{
		`f(1)`,
		`{}`,
		`[]`,
		`x = 1`,
		`1 & 2`,
		`1 | 2`,
		`1 ^ 2`,
		`x`,
	}
	for _, expr := range tests {
		t.Run(expr, func(t *testing.T) {
			if _, err := EvaluateCondition(expr); err == nil {
				t.Errorf("expected error for forbidden expression %q", expr)
			}
		})
	}
}

func TestEvaluateCondition_ParenDepth(t *testing.T) {
	ok := "true"
	for i := 0; i < 50; i++ {
		ok = "(" + ok + ")"
	}
	if _, err := EvaluateCondition(ok); err != nil {
		t.Fatalf("50 levels of parens should be accepted: %v", err)
	}

	tooDeep := "(" + ok + ")"
	if _, err := EvaluateCondition(tooDeep); err == nil {
		t.Fatalf("51 levels of parens should be rejected")
	}
}

func TestEvaluateConditionWithScopes(t *testing.T) {
	scopes := Scopes{Params: map[string]any{"should_click": true}}
	got, err := EvaluateConditionWithScopes("${params.should_click} == true", scopes)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !got {
		t.Errorf("expected true")
	}

	scopes.Params["should_click"] = false
	got, err = EvaluateConditionWithScopes("${params.should_click} == true", scopes)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got {
		t.Errorf("expected false")
	}
}

func TestEvaluateConditionWithScopes_ForbiddenKey(t *testing.T) {
	scopes := Scopes{Params: map[string]any{}}
	_, err := EvaluateConditionWithScopes("${params.__proto__.x} == 1", scopes)
	if err == nil {
		t.Fatalf("expected error for __proto__ access")
	}
}

func TestEvaluateConditionWithScopes_InvalidRoot(t *testing.T) {
	scopes := Scopes{}
	_, err := EvaluateConditionWithScopes("${foo.bar} == 1", scopes)
	if err == nil {
		t.Fatalf("expected error for unknown root scope")
	}
}
