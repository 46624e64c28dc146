package minecraft

import (
	"fmt"
	"regexp"
	"sort"
	"strconv"
	"strings"
	"unicode"
)

const entityDataMarker = "has the following entity data:"

var (
	ansiRe        = regexp.MustCompile(`\x1B(?:[@-Z\\-_]|\[[0-?]*[ -/]*[@-~])`)
	sectionSignRe = regexp.MustCompile(`§[0-9a-fk-orA-FK-OR]`)
	numberRe      = regexp.MustCompile(`-?\d+\.?\d*`)
)

// CleanResponse strips color codes, the entity-data preamble and blank lines.
func CleanResponse(resp string) string {
	cleaned := ansiRe.ReplaceAllString(resp, "")
	cleaned = sectionSignRe.ReplaceAllString(cleaned, "")
	if i := strings.Index(cleaned, entityDataMarker); i >= 0 {
		cleaned = strings.TrimSpace(cleaned[i+len(entityDataMarker):])
	}

	var lines []string
	for _, line := range strings.Split(cleaned, "\n") {
		if line = strings.TrimSpace(line); line != "" {
			lines = append(lines, line)
		}
	}
	return strings.Join(lines, "\n")
}

func notFound(resp string) bool {
	return strings.Contains(strings.ToLower(resp), "no entity was found")
}

// IsOnline reports whether player appears in the output of "list".
func IsOnline(list, player string) bool {
	_, names, ok := strings.Cut(list, ":")
	if !ok {
		return false
	}
	for _, name := range strings.Split(names, ",") {
		if strings.EqualFold(strings.TrimSpace(name), player) {
			return true
		}
	}
	return false
}

// value returns the data part of a "data get entity" reply.
func value(resp string) string {
	cleaned := CleanResponse(resp)
	if i := strings.LastIndex(cleaned, ":"); i >= 0 && !strings.ContainsAny(cleaned[:i], "[{") {
		cleaned = cleaned[i+1:]
	}
	return strings.TrimSpace(cleaned)
}

// PlayerInfo holds display-ready player stats.
type PlayerInfo struct {
	Health   string
	Position string
	GameMode string
	Level    string
}

var gameModes = map[int]string{
	0: "Survival",
	1: "Creative",
	2: "Adventure",
	3: "Spectator",
}

// ParsePlayerInfo formats the four "data get entity" replies. It reports
// false when the server says the player does not exist.
func ParsePlayerInfo(health, pos, mode, xp string) (PlayerInfo, bool) {
	if notFound(health) {
		return PlayerInfo{}, false
	}

	var info PlayerInfo

	h := value(health)
	if f, err := strconv.ParseFloat(strings.TrimRight(h, "fF"), 64); err == nil {
		info.Health = fmt.Sprintf("%.1f ❤️", f)
	} else {
		info.Health = h
	}

	p := value(pos)
	coords := numberRe.FindAllString(p, -1)
	if len(coords) >= 3 {
		var xyz [3]float64
		parsed := true
		for i := 0; i < 3; i++ {
			f, err := strconv.ParseFloat(coords[i], 64)
			if err != nil {
				parsed = false
				break
			}
			xyz[i] = f
		}
		if parsed {
			p = fmt.Sprintf("X: %.1f, Y: %.1f, Z: %.1f", xyz[0], xyz[1], xyz[2])
		}
	}
	info.Position = p

	m := value(mode)
	if n, err := strconv.Atoi(m); err == nil {
		if name, ok := gameModes[n]; ok {
			info.GameMode = name
		} else {
			info.GameMode = fmt.Sprintf("Unknown (%d)", n)
		}
	} else {
		info.GameMode = m
	}

	x := value(xp)
	if f, err := strconv.ParseFloat(strings.TrimRight(x, "fF"), 64); err == nil {
		info.Level = fmt.Sprintf("Level %d ✨", int(f))
	} else {
		info.Level = x
	}
	return info, true
}

// Inventory groups item lines by where they sit in the player's inventory.
type Inventory struct {
	Hotbar      []string
	Main        []string
	Armor       []string
	Offhand     []string
	Accessories []string
}

func (inv Inventory) Empty() bool {
	return len(inv.Hotbar)+len(inv.Main)+len(inv.Armor)+len(inv.Offhand)+len(inv.Accessories) == 0
}

// Section is one titled block of item lines.
type Section struct {
	Name  string
	Items []string
}

// Sections returns the non-empty sections in display order.
func (inv Inventory) Sections() []Section {
	all := []Section{
		{"📱 Hotbar", inv.Hotbar},
		{"Main Inventory", inv.Main},
		{"🛡️ Armor", inv.Armor},
		{"👋 Offhand", inv.Offhand},
		{"💍 Accessories", inv.Accessories},
	}
	var out []Section
	for _, s := range all {
		if len(s.Items) > 0 {
			out = append(out, s)
		}
	}
	return out
}

var (
	slotRe     = regexp.MustCompile(`Slot:\s*(-?\d+)b`)
	idRe       = regexp.MustCompile(`\bid:\s*"([^"]+)"`)
	countRe    = regexp.MustCompile(`(?i)\bcount:\s*(\d+)b?`)
	damageRe   = regexp.MustCompile(`(?i)damage"?:\s*(\d+)`)
	enchListRe = regexp.MustCompile(`(?i)enchantments"?:\s*\[(.*?)\]`)
	enchRe     = regexp.MustCompile(`\{id:\s*"([^"]+)",\s*lvl:\s*(\d+)s?\}`)
	itemsRe    = regexp.MustCompile(`Items:\s*\[(.*)\]`)
)

// ParseInventory turns the SNBT list from "data get entity <p> Inventory"
// into item lines grouped by slot range.
func ParseInventory(snbt string) Inventory {
	var inv Inventory
	for _, item := range splitCompounds(snbt) {
		top := shallow(item)

		m := slotRe.FindStringSubmatch(top)
		if m == nil {
			continue
		}
		slot, _ := strconv.Atoi(m[1])

		text, ok := describeItem(item, top)
		if !ok {
			continue
		}

		switch {
		case slot >= 0 && slot <= 8:
			inv.Hotbar = append(inv.Hotbar, text)
		case slot >= 9 && slot <= 35:
			inv.Main = append(inv.Main, text)
		case slot >= 100 && slot <= 103:
			inv.Armor = append(inv.Armor, text)
		case slot == -106:
			inv.Offhand = append(inv.Offhand, text)
		case slot >= 90:
			inv.Accessories = append(inv.Accessories, text)
		}
	}
	return inv
}

// describeItem renders "<count>x <name>" plus enchantments, durability and
// backpack contents. top is item with nested compounds removed.
func describeItem(item, top string) (string, bool) {
	m := idRe.FindStringSubmatch(top)
	if m == nil {
		return "", false
	}
	id := m[1]

	count := 1
	if c := countRe.FindStringSubmatch(top); c != nil {
		count, _ = strconv.Atoi(c[1])
	}

	text := fmt.Sprintf("%dx %s", count, FormatItemName(id))

	if e := enchListRe.FindStringSubmatch(item); e != nil {
		var enchants []string
		for _, em := range enchRe.FindAllStringSubmatch(e[1], -1) {
			enchants = append(enchants, FormatEnchantment(em[1], em[2]))
		}
		if len(enchants) > 0 {
			text += " (" + strings.Join(enchants, ", ") + ")"
		}
	}

	if d := damageRe.FindStringSubmatch(item); d != nil {
		text += fmt.Sprintf(" (Durability: %s)", d[1])
	}

	if strings.Contains(strings.ToLower(id), "backpack") {
		if b := itemsRe.FindStringSubmatch(item); b != nil {
			if contents := formatBackpack(b[1], 10); contents != "" {
				text += "\n" + contents
			}
		}
	}
	return text, true
}

// FormatItemName turns "minecraft:diamond_sword" into "Diamond Sword" and
// modded ids into "**NAMESPACE**: Item".
func FormatItemName(id string) string {
	ns, name, ok := strings.Cut(id, ":")
	if !ok || strings.Contains(name, ":") {
		return title(strings.ReplaceAll(id, "_", " "))
	}
	name = title(strings.ReplaceAll(name, "_", " "))
	if ns == "minecraft" {
		return name
	}
	if ns == "everycomp" && strings.Contains(strings.ToLower(name), "ch/") {
		parts := strings.Split(name, "/")
		if len(parts) >= 3 {
			mod := strings.ToUpper(strings.ReplaceAll(parts[1], "_", " "))
			return fmt.Sprintf("**%s**: %s", mod, title(parts[len(parts)-1]))
		}
	}
	return fmt.Sprintf("**%s**: %s", strings.ToUpper(strings.ReplaceAll(ns, "_", " ")), name)
}

// FormatEnchantment renders "minecraft:sharpness", "5" as "Sharpness 5".
func FormatEnchantment(id, level string) string {
	if i := strings.LastIndex(id, ":"); i >= 0 {
		id = id[i+1:]
	}
	return fmt.Sprintf("%s %s", title(strings.ReplaceAll(id, "_", " ")), strings.TrimSuffix(level, "s"))
}

func formatBackpack(items string, max int) string {
	entries := splitCompounds("[" + items + "]")
	if len(entries) == 0 {
		return ""
	}

	grouped := make(map[string][]string)
	shown := 0
	for _, entry := range entries {
		if shown >= max {
			break
		}
		top := shallow(entry)
		m := idRe.FindStringSubmatch(top)
		if m == nil {
			continue
		}
		count := 1
		if c := countRe.FindStringSubmatch(top); c != nil {
			count, _ = strconv.Atoi(c[1])
		}
		mod := "VANILLA"
		if ns, _, ok := strings.Cut(m[1], ":"); ok && ns != "minecraft" {
			mod = strings.ToUpper(ns)
		}
		grouped[mod] = append(grouped[mod], fmt.Sprintf("    • %dx %s", count, FormatItemName(m[1])))
		shown++
	}

	lines := []string{"  📦 Backpack Contents:"}
	mods := make([]string, 0, len(grouped))
	for mod := range grouped {
		if mod != "VANILLA" {
			mods = append(mods, mod)
		}
	}
	sort.Strings(mods)
	for _, mod := range mods {
		lines = append(lines, grouped[mod]...)
	}
	lines = append(lines, grouped["VANILLA"]...)
	if remaining := len(entries) - shown; remaining > 0 {
		lines = append(lines, fmt.Sprintf("    • ...and %d more items", remaining))
	}
	return strings.Join(lines, "\n")
}

// splitCompounds returns the top-level {...} compounds of an SNBT list.
func splitCompounds(s string) []string {
	s = strings.TrimSpace(s)
	s = strings.TrimPrefix(s, "[")
	s = strings.TrimSuffix(s, "]")

	var out []string
	depth, start := 0, -1
	inQuote := false
	for i := 0; i < len(s); i++ {
		ch := s[i]
		if inQuote {
			if ch == '\\' {
				i++
			} else if ch == '"' {
				inQuote = false
			}
			continue
		}
		switch ch {
		case '"':
			inQuote = true
		case '{', '[':
			if depth == 0 && ch == '{' {
				start = i
			}
			depth++
		case '}', ']':
			depth--
			if depth == 0 && ch == '}' && start >= 0 {
				out = append(out, s[start:i+1])
				start = -1
			}
		}
	}
	return out
}

// shallow drops everything nested below the outermost compound.
func shallow(compound string) string {
	var b strings.Builder
	depth := 0
	inQuote := false
	for i := 0; i < len(compound); i++ {
		ch := compound[i]
		if inQuote {
			if depth <= 1 {
				b.WriteByte(ch)
			}
			if ch == '\\' && i+1 < len(compound) {
				i++
				if depth <= 1 {
					b.WriteByte(compound[i])
				}
			} else if ch == '"' {
				inQuote = false
			}
			continue
		}
		switch ch {
		case '"':
			inQuote = true
		case '{', '[':
			depth++
			if depth == 1 {
				b.WriteByte(ch)
			}
			continue
		case '}', ']':
			depth--
			if depth == 0 {
				b.WriteByte(ch)
			}
			continue
		}
		if depth <= 1 {
			b.WriteByte(ch)
		}
	}
	return b.String()
}

// title upper-cases the first letter of every run of letters.
func title(s string) string {
	runes := []rune(s)
	prevLetter := false
	for i, r := range runes {
		if unicode.IsLetter(r) {
			if prevLetter {
				runes[i] = unicode.ToLower(r)
			} else {
				runes[i] = unicode.ToUpper(r)
			}
			prevLetter = true
		} else {
			prevLetter = false
		}
	}
	return string(runes)
}

// SplitField packs lines into chunks no longer than limit characters.
func SplitField(lines []string, limit int) []string {
	var chunks []string
	var cur []string
	size := 0
	for _, line := range lines {
		n := len(line) + 1
		if size+n > limit && len(cur) > 0 {
			chunks = append(chunks, strings.Join(cur, "\n"))
			cur, size = nil, 0
		}
		cur = append(cur, line)
		size += n
	}
	if len(cur) > 0 {
		chunks = append(chunks, strings.Join(cur, "\n"))
	}
	return chunks
}
