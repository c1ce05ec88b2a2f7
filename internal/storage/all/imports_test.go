package all_test

import (
	"testing"

	"rewardsetl/internal/storage"
	_ "rewardsetl/internal/storage/all"
)

func TestAllBackendsRegistered(t *testing.T) {
	t.Parallel()

	got := map[string]bool{}
	for _, k := range storage.ListKinds() {
		got[k] = true
	}
	for _, want := range []string{"mssql", "mysql", "postgres", "sqlite"} {
		if !got[want] {
			t.Errorf("kind %q not registered; have %v", want, storage.ListKinds())
		}
	}
}
