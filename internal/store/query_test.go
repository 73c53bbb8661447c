package store

import "testing"

func TestParseOperator(t *testing.T) {
	tests := []struct {
		name    string
		want    Operator
		wantErr bool
	}{
		{name: "", want: OpEq},
		{name: "eq", want: OpEq},
		{name: "neq", want: OpNeq},
		{name: "gt", want: OpGt},
		{name: "gte", want: OpGte},
		{name: "lt", want: OpLt},
		{name: "lte", want: OpLte},
		{name: "like", wantErr: true},
		{name: "EQ", wantErr: true},
	}

	for _, tt := range tests {
		got, err := ParseOperator(tt.name)
		if tt.wantErr {
			if err == nil {
				t.Errorf("ParseOperator(%q) = %v, want error", tt.name, got)
			}
			continue
		}
		if err != nil {
			t.Errorf("ParseOperator(%q): %v", tt.name, err)
			continue
		}
		if got != tt.want {
			t.Errorf("ParseOperator(%q) = %v, want %v", tt.name, got, tt.want)
		}
		if tt.name != "" && got.String() != tt.name {
			t.Errorf("%v.String() = %q, want %q", got, got.String(), tt.name)
		}
	}
}
