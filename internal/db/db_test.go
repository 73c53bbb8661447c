package db

import "testing"

func TestEnsureForeignKeysEnabledDSN(t *testing.T) {
	tests := []struct {
		name string
		dsn  string
		want string
	}{
		{name: "plain_path", dsn: "data/cabins.db", want: "data/cabins.db?_fk=1"},
		{name: "existing_params", dsn: "file:cabins.db?cache=shared", want: "file:cabins.db?cache=shared&_fk=1"},
		{name: "already_set", dsn: "cabins.db?_fk=0", want: "cabins.db?_fk=0"},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			if got := ensureForeignKeysEnabledDSN(test.dsn); got != test.want {
				t.Fatalf("ensureForeignKeysEnabledDSN(%q) = %q, want %q", test.dsn, got, test.want)
			}
		})
	}
}
