package plan

import "testing"

func TestMaxPages(t *testing.T) {
	if got := MaxPages(Free); got != 1 {
		t.Fatalf("expected free cap 1, got %d", got)
	}
	if got := MaxPages(Pro); got != Unlimited {
		t.Fatalf("expected pro unlimited, got %d", got)
	}
	if got := MaxPages(Admin); got != Unlimited {
		t.Fatalf("expected admin unlimited, got %d", got)
	}
}

func TestCanCreatePage(t *testing.T) {
	cases := []struct {
		plan  Plan
		owned int
		want  bool
	}{
		{Free, 0, true},
		{Free, 1, false},
		{Free, 5, false},
		{Pro, 0, true},
		{Pro, 100, true},
		{Admin, 100, true},
	}
	for _, tc := range cases {
		if got := CanCreatePage(tc.plan, tc.owned); got != tc.want {
			t.Fatalf("CanCreatePage(%s, %d) = %v, want %v", tc.plan, tc.owned, got, tc.want)
		}
	}
}

func TestBlockTypeAllowed(t *testing.T) {
	for _, bt := range []string{"product_card", "dynamic_feed", "paywall", "custom_domain"} {
		if BlockTypeAllowed(Free, bt) {
			t.Fatalf("expected %s to be gated for free plan", bt)
		}
		if !BlockTypeAllowed(Pro, bt) {
			t.Fatalf("expected %s to be allowed for pro plan", bt)
		}
	}

	for _, bt := range []string{"link", "button", "links_block", "social_block", "contact_block", "text"} {
		if !BlockTypeAllowed(Free, bt) {
			t.Fatalf("expected %s to be allowed for free plan", bt)
		}
	}
}

func TestDefaultBlockTypes(t *testing.T) {
	got := DefaultBlockTypes()
	want := []string{"links_block", "social_block", "contact_block"}
	if len(got) != len(want) {
		t.Fatalf("expected %d default blocks, got %d", len(want), len(got))
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("default block %d = %s, want %s", i, got[i], want[i])
		}
	}
}

func TestValid(t *testing.T) {
	if !Valid(Free) || !Valid(Pro) || !Valid(Admin) {
		t.Fatal("expected known plans to be valid")
	}
	if Valid(Plan("enterprise")) {
		t.Fatal("expected unknown plan to be invalid")
	}
}
