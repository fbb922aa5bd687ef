package catalog

import "testing"

func TestLookupBuiltin(t *testing.T) {
	info := Lookup(Genshin)
	if info.Title != "Genshin Impact" || info.Author != "miHoYo" || info.Group != GroupGame {
		t.Fatalf("unexpected info: %+v", info)
	}
	if Wine.IsGame() {
		t.Fatalf("wine must not be a game")
	}
}

func TestLookupUnknownFallsBackToID(t *testing.T) {
	v := Variant("custom-game")
	if v.Title() != "custom-game" || v.Author() != "" {
		t.Fatalf("title=%q author=%q", v.Title(), v.Author())
	}
	if Known(v) {
		t.Fatalf("custom variant reported as known")
	}
}

func TestGamesSortedAndGamesOnly(t *testing.T) {
	games := Games()
	if len(games) != 4 {
		t.Fatalf("games=%v", games)
	}
	for i := 1; i < len(games); i++ {
		if games[i-1] >= games[i] {
			t.Fatalf("not sorted: %v", games)
		}
	}
	for _, g := range games {
		if !g.IsGame() {
			t.Fatalf("%s is not a game", g)
		}
	}
}
