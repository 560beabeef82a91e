package pagination

import "testing"

func TestKindString(t *testing.T) {
	tests := []struct {
		name string
		kind Kind
		want string
	}{
		{"pages", KindPages, "pages"},
		{"records", KindRecords, "records"},
		{"all", KindAll, "all"},
		{"unknown", Kind(42), "Kind(42)"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.kind.String(); got != tt.want {
				t.Errorf("String() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestPolicyKind(t *testing.T) {
	tests := []struct {
		name   string
		policy Policy
		want   Kind
	}{
		{"by pages", ByPages(5), KindPages},
		{"by records", ByRecords(100), KindRecords},
		{"all", All(), KindAll},
		{"zero", Policy{}, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.policy.Kind(); got != tt.want {
				t.Errorf("Kind() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestPolicyOr(t *testing.T) {
	fallback := ByPages(3)

	if got := (Policy{}).Or(fallback); got != fallback {
		t.Errorf("zero policy Or() = %+v, want fallback %+v", got, fallback)
	}
	if got := ByRecords(10).Or(fallback); got != ByRecords(10) {
		t.Errorf("set policy Or() = %+v, want the policy itself", got)
	}
	if !(Policy{}).IsZero() {
		t.Error("zero policy should report IsZero")
	}
	if All().IsZero() {
		t.Error("All() should not report IsZero")
	}
}

func TestRulesShouldContinue(t *testing.T) {
	tests := []struct {
		name   string
		policy Policy
		state  State
		want   bool
	}{
		{"pages below limit", ByPages(3), State{PageCount: 2}, true},
		{"pages at limit", ByPages(3), State{PageCount: 3}, false},
		{"pages zero limit", ByPages(0), State{}, false},
		{"records below limit", ByRecords(10), State{RecordCount: 9}, true},
		{"records at limit", ByRecords(10), State{RecordCount: 10}, false},
		{"records zero limit", ByRecords(0), State{}, false},
		{"all never stops", All(), State{PageCount: 1 << 20, RecordCount: 1 << 30}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.policy.rules().shouldContinue(tt.state); got != tt.want {
				t.Errorf("shouldContinue(%+v) = %v, want %v", tt.state, got, tt.want)
			}
		})
	}
}

func TestRulesEmitLimit(t *testing.T) {
	tests := []struct {
		name   string
		policy Policy
		state  State
		n      int
		want   int
	}{
		{"pages never truncates", ByPages(1), State{}, 250, 250},
		{"all never truncates", All(), State{RecordCount: 999}, 7, 7},
		{"records full page fits", ByRecords(10), State{RecordCount: 3}, 5, 5},
		{"records truncates to allowance", ByRecords(10), State{RecordCount: 8}, 5, 2},
		{"records exact fit", ByRecords(10), State{RecordCount: 5}, 5, 5},
		{"records allowance overshot", ByRecords(10), State{RecordCount: 12}, 5, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.policy.rules().emitLimit(tt.state, tt.n); got != tt.want {
				t.Errorf("emitLimit(%+v, %d) = %d, want %d", tt.state, tt.n, got, tt.want)
			}
		})
	}
}

func TestRulesNextURL(t *testing.T) {
	tests := []struct {
		name       string
		policy     Policy
		serverNext string
		newCount   int
		want       string
	}{
		{"pages follows server", ByPages(2), "https://api/p2", 50, "https://api/p2"},
		{"pages passes server end", ByPages(2), "", 50, ""},
		{"all follows server", All(), "https://api/p2", 50, "https://api/p2"},
		{"records below limit follows server", ByRecords(100), "https://api/p2", 50, "https://api/p2"},
		{"records at limit drops cursor", ByRecords(50), "https://api/p2", 50, ""},
		{"records past limit drops cursor", ByRecords(50), "https://api/p2", 51, ""},
		{"records passes server end", ByRecords(100), "", 50, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.policy.rules().nextURL(tt.serverNext, tt.newCount); got != tt.want {
				t.Errorf("nextURL(%q, %d) = %q, want %q", tt.serverNext, tt.newCount, got, tt.want)
			}
		})
	}
}

func TestRulesUnknownKindPanics(t *testing.T) {
	tests := []struct {
		name   string
		policy Policy
	}{
		{"zero policy", Policy{}},
		{"out of range kind", Policy{kind: Kind(99)}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			defer func() {
				if recover() == nil {
					t.Error("rules() should panic for unknown policy kind")
				}
			}()
			tt.policy.rules()
		})
	}
}
