package chats

import (
	"fmt"
	"sync"
	"testing"
)

func TestUpsertAndCounts(t *testing.T) {
	r := NewRegistry()
	r.Upsert("111@s.whatsapp.net", "Alice", false)
	r.Upsert("222@s.whatsapp.net", "Bob", false)
	r.Upsert("333@g.us", "Dev Group", true)
	// Re-observing the same chat must not double-count.
	r.Upsert("111@s.whatsapp.net", "Alice", false)

	total, private, groups := r.Counts()
	if total != 3 || private != 2 || groups != 1 {
		t.Errorf("counts = (%d, %d, %d), want (3, 2, 1)", total, private, groups)
	}
}

func TestEmptyNameKeepsKnownName(t *testing.T) {
	r := NewRegistry()
	r.Upsert("333@g.us", "Dev Group", true)
	r.Upsert("333@g.us", "", true)

	groups := r.Groups()
	if len(groups) != 1 {
		t.Fatalf("groups = %d, want 1", len(groups))
	}
	if groups[0].Name != "Dev Group" {
		t.Errorf("name = %q, want the earlier known name", groups[0].Name)
	}
}

func TestGroupsSortedByJID(t *testing.T) {
	r := NewRegistry()
	r.Upsert("999@g.us", "Last", true)
	r.Upsert("111@g.us", "First", true)
	r.Upsert("555@s.whatsapp.net", "Private", false)

	groups := r.Groups()
	if len(groups) != 2 {
		t.Fatalf("groups = %d, want 2", len(groups))
	}
	if groups[0].JID != "111@g.us" || groups[1].JID != "999@g.us" {
		t.Errorf("order = [%s, %s]", groups[0].JID, groups[1].JID)
	}
}

func TestConcurrentUpserts(t *testing.T) {
	r := NewRegistry()
	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			jid := fmt.Sprintf("%d@s.whatsapp.net", n%10)
			r.Upsert(jid, "", false)
			r.Counts()
			r.Groups()
		}(i)
	}
	wg.Wait()

	if got := r.Len(); got != 10 {
		t.Errorf("len = %d, want 10", got)
	}
}
