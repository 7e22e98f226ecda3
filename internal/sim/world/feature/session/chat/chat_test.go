package chat

import (
	"testing"

	modelpkg "voxelkeep.ai/internal/sim/world/kernel/model"
)

func TestCheckMuteOrder(t *testing.T) {
	p := modelpkg.NewPlayer("alice", 0, 0)
	p.MuteUntil = 10_000
	p.MutedPermanent = true

	m := CheckMute(p, 5_000, true, false)
	if m.Reason != MutedTemp || m.RemainingMs != 5_000 {
		t.Fatalf("temp first: %+v", m)
	}
	if got := m.Message(); got != "you are muted for 0m 5s" {
		t.Fatalf("message=%q", got)
	}

	m = CheckMute(p, 10_000, true, false)
	if m.Reason != MutedForever || !m.ClearExpired {
		t.Fatalf("expired temp should fall through to permanent: %+v", m)
	}

	p.MutedPermanent = false
	p.MuteUntil = 0
	if m := CheckMute(p, 0, true, false); m.Reason != MutedGlobally {
		t.Fatalf("global: %+v", m)
	}
	if m := CheckMute(p, 0, true, true); m.Reason != NotMuted {
		t.Fatalf("admin exempt from global: %+v", m)
	}
}

func TestSplitClanMessage(t *testing.T) {
	if body, ok := SplitClanMessage(".  hello team "); !ok || body != "hello team" {
		t.Fatalf("body=%q ok=%v", body, ok)
	}
	if body, ok := SplitClanMessage("."); !ok || body != "" {
		t.Fatalf("empty clan message: %q %v", body, ok)
	}
	if _, ok := SplitClanMessage("hello"); ok {
		t.Fatalf("public message treated as clan chat")
	}
}

func TestClanRecipients(t *testing.T) {
	c := &modelpkg.Clan{Name: "Wolves", Tag: "[WOLVES]", Leader: "alice", Members: map[string]bool{"alice": true, "bob": true}}
	admins := map[string]bool{"root": true, "bob": true}
	got := ClanRecipients(c, []string{"alice", "bob", "carol", "root"}, func(n string) bool { return admins[n] })
	if len(got) != 3 {
		t.Fatalf("recipients=%v", got)
	}
	if got[0].To != "alice" || got[0].Prefix != "[WOLVES PRIVATE]" {
		t.Fatalf("member delivery %+v", got[0])
	}
	if got[1].To != "bob" || got[1].Prefix != "[WOLVES PRIVATE]" {
		t.Fatalf("admin member should see the member prefix: %+v", got[1])
	}
	if got[2].To != "root" || got[2].Prefix != "[SPY-[WOLVES]]" {
		t.Fatalf("spy delivery %+v", got[2])
	}
}
