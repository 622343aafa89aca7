package game

// Profession ranks assigned by level band, lowest first. A profile whose
// profession is not one of the standard ranks was manually overridden and
// is never recomputed.
var professionBands = []struct {
	Below int
	Rank  string
}{
	{5, "Novice"},
	{10, "Apprentice"},
	{20, "Explorer"},
	{50, "Master"},
}

const topRank = "Legend"

func isStandardRank(rank string) bool {
	if rank == topRank {
		return true
	}
	for _, b := range professionBands {
		if rank == b.Rank {
			return true
		}
	}
	return false
}

func professionFor(level int) string {
	for _, b := range professionBands {
		if level < b.Below {
			return b.Rank
		}
	}
	return topRank
}

// levelFor derives level and leftover experience from cumulative XP.
// Advancing out of level n costs n*100 XP: the remainder is consumed
// threshold by threshold until it no longer covers the current level.
func levelFor(totalXP int) (level, experience int) {
	level = 1
	for totalXP >= level*100 {
		totalXP -= level * 100
		level++
	}
	return level, totalXP
}

// ApplyReward credits xp and coins to p and recomputes the derived level,
// experience, and profession fields. Pure; the caller persists the result
// atomically.
func ApplyReward(p *Profile, xp, coins int) {
	p.TotalXP += xp
	p.Level, p.Experience = levelFor(p.TotalXP)
	if isStandardRank(p.Profession) {
		p.Profession = professionFor(p.Level)
	}
	p.Coins += coins
}
