package rbac

import "testing"

func TestHasDefaultPolicy(t *testing.T) {
	cases := []struct {
		role, perm string
		want       bool
	}{
		{"student", "exam:create", true},
		{"student", "report:view-own", true},
		{"student", "report:view", false},
		{"student", "users:list", false},
		{"teacher", "report:view", true},
		{"teacher", "exam:create", false},
		{"admin", "report:view", true},
		{"admin", "anything:at-all", true},
		{"", "exam:create", false},
		{"ghost", "exam:create", false},
	}
	for _, tc := range cases {
		if got := Has(tc.role, tc.perm); got != tc.want {
			t.Errorf("Has(%q, %q) = %v, want %v", tc.role, tc.perm, got, tc.want)
		}
	}
}

func TestCheckerWildcardPrefix(t *testing.T) {
	c := NewChecker(map[string][]string{"grader": {"exam:*"}})
	if !c.Has("grader", "exam:view") {
		t.Error("exam:* should grant exam:view")
	}
	if c.Has("grader", "users:list") {
		t.Error("exam:* should not grant users:list")
	}
	if !c.Any("grader", "users:list", "exam:create") {
		t.Error("Any should pass when one permission matches")
	}
}
