package store

import (
	"context"
	"os"
	"testing"
)

func TestMySQLStore_Contract(t *testing.T) {
	dsn := os.Getenv("TEST_MYSQL_DSN")
	if dsn == "" {
		t.Skip("Skipping MySQL tests: TEST_MYSQL_DSN not set")
	}

	testStoreContract(t, func(t *testing.T) Store {
		st, err := NewMySQLStore(dsn)
		if err != nil {
			t.Fatalf("NewMySQLStore failed: %v", err)
		}
		if _, err := st.db.ExecContext(context.Background(), "DELETE FROM run_steps"); err != nil {
			t.Fatalf("failed to clean run_steps: %v", err)
		}
		t.Cleanup(func() { _ = st.Close() })
		return st
	})
}
