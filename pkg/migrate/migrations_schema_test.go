package migrate_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/linescout/linescout-backend/pkg/migrate"
)

func TestInitMigrationContainsLedgerConstraints(t *testing.T) {
	matches, err := filepath.Glob(filepath.Join("migrations", "*_init_schema.sql"))
	if err != nil {
		t.Fatalf("glob migrations: %v", err)
	}
	if len(matches) == 0 {
		t.Fatalf("no init migration file found")
	}

	data, err := os.ReadFile(matches[0])
	if err != nil {
		t.Fatalf("read migration file: %v", err)
	}
	content := string(data)

	checks := []string{
		"CREATE TABLE handoffs",
		"CREATE TABLE handoff_financials",
		"CHECK (amount_kobo > 0)",
		"ck_financials_nonnegative",
		"reorder_requests_paystack_ref_key",
		"payment_tokens_paystack_ref_key",
		"ux_outbox_events_event_aggregate",
		"DROP TABLE IF EXISTS handoffs",
	}

	for _, sub := range checks {
		if !strings.Contains(content, sub) {
			t.Errorf("missing expected statement %q", sub)
		}
	}
}

func TestMigrationsDirValidates(t *testing.T) {
	if err := migrate.ValidateDir("migrations"); err != nil {
		t.Fatalf("migrations dir invalid: %v", err)
	}
}
