package catalog

import "sort"

// Variant identifies a game or runtime component across the queue, the API and
// the library bookkeeping sets.
type Variant string

// Group tells games apart from the runtime components they depend on.
type Group string

const (
	GroupGame      Group = "game"
	GroupComponent Group = "component"
)

// Built-in variants.
const (
	Genshin  Variant = "genshin"
	Honkai   Variant = "honkai"
	StarRail Variant = "star_rail"
	ZZZ      Variant = "zzz"

	Wine   Variant = "wine"
	DXVK   Variant = "dxvk"
	Prefix Variant = "prefix"
)

// Info is the display metadata of a variant.
type Info struct {
	Variant Variant `json:"variant"`
	Title   string  `json:"title"`
	Author  string  `json:"author"`
	Group   Group   `json:"group"`
}

var builtin = map[Variant]Info{
	Genshin:  {Variant: Genshin, Title: "Genshin Impact", Author: "miHoYo", Group: GroupGame},
	Honkai:   {Variant: Honkai, Title: "Honkai Impact 3rd", Author: "miHoYo", Group: GroupGame},
	StarRail: {Variant: StarRail, Title: "Honkai: Star Rail", Author: "miHoYo", Group: GroupGame},
	ZZZ:      {Variant: ZZZ, Title: "Zenless Zone Zero", Author: "miHoYo", Group: GroupGame},
	Wine:     {Variant: Wine, Title: "Wine", Group: GroupComponent},
	DXVK:     {Variant: DXVK, Title: "DXVK", Group: GroupComponent},
	Prefix:   {Variant: Prefix, Title: "Wine prefix", Group: GroupComponent},
}

// Lookup returns the metadata of v. Unknown variants get their own id as title.
func Lookup(v Variant) Info {
	if info, ok := builtin[v]; ok {
		return info
	}
	return Info{Variant: v, Title: string(v), Group: GroupGame}
}

// Known reports whether v is one of the built-in variants.
func Known(v Variant) bool {
	_, ok := builtin[v]
	return ok
}

func (v Variant) Title() string  { return Lookup(v).Title }
func (v Variant) Author() string { return Lookup(v).Author }
func (v Variant) String() string { return string(v) }

// IsGame reports whether v belongs to the game group.
func (v Variant) IsGame() bool { return Lookup(v).Group == GroupGame }

// Games lists the built-in game variants in a stable order.
func Games() []Variant {
	out := make([]Variant, 0, len(builtin))
	for v, info := range builtin {
		if info.Group == GroupGame {
			out = append(out, v)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}
