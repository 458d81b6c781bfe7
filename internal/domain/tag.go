package domain

// Tag identifies one knowledge topic. The set of tags is fixed at compile time
// and is the key space for every per-topic statistic.
type Tag string

// TagGroup is a display grouping for tags. It has no effect on scoring.
type TagGroup string

// Tag groups
const (
	GroupSolarSystem TagGroup = "solar_system"
	GroupPhysics     TagGroup = "physics"
	GroupSky         TagGroup = "sky"
	GroupStars       TagGroup = "stars"
	GroupDeepSpace   TagGroup = "deep_space"
)

// Known tags
const (
	TagPlanets          Tag = "planets"
	TagMoons            Tag = "moons"
	TagSun              Tag = "sun"
	TagSmallBodies      Tag = "small_bodies"
	TagOrbits           Tag = "orbits"
	TagGravity          Tag = "gravity"
	TagLight            Tag = "light"
	TagSeasons          Tag = "seasons"
	TagMoonPhases       Tag = "moon_phases"
	TagConstellations   Tag = "constellations"
	TagTelescopes       Tag = "telescopes"
	TagStars            Tag = "stars"
	TagStellarEvolution Tag = "stellar_evolution"
	TagBlackHoles       Tag = "black_holes"
	TagGalaxies         Tag = "galaxies"
	TagExoplanets       Tag = "exoplanets"
	TagCosmology        Tag = "cosmology"
)

// TagInfo carries the display metadata for a tag.
type TagInfo struct {
	Tag   Tag      `json:"tag"`
	Label string   `json:"label"`
	Group TagGroup `json:"group"`
}

// taxonomy is ordered; the order is used as the final tie-breaker wherever
// tags are ranked.
var taxonomy = []TagInfo{
	{TagPlanets, "Planets", GroupSolarSystem},
	{TagMoons, "Moons", GroupSolarSystem},
	{TagSun, "The Sun", GroupSolarSystem},
	{TagSmallBodies, "Comets & Asteroids", GroupSolarSystem},
	{TagOrbits, "Orbits", GroupPhysics},
	{TagGravity, "Gravity", GroupPhysics},
	{TagLight, "Light & Spectra", GroupPhysics},
	{TagSeasons, "Seasons", GroupSky},
	{TagMoonPhases, "Moon Phases", GroupSky},
	{TagConstellations, "Constellations", GroupSky},
	{TagTelescopes, "Telescopes", GroupSky},
	{TagStars, "Stars", GroupStars},
	{TagStellarEvolution, "Stellar Evolution", GroupStars},
	{TagBlackHoles, "Black Holes", GroupStars},
	{TagGalaxies, "Galaxies", GroupDeepSpace},
	{TagExoplanets, "Exoplanets", GroupDeepSpace},
	{TagCosmology, "Cosmology", GroupDeepSpace},
}

var tagIndex = func() map[Tag]int {
	idx := make(map[Tag]int, len(taxonomy))
	for i, info := range taxonomy {
		idx[info.Tag] = i
	}
	return idx
}()

// AllTags returns every tag in taxonomy order.
func AllTags() []Tag {
	tags := make([]Tag, len(taxonomy))
	for i, info := range taxonomy {
		tags[i] = info.Tag
	}
	return tags
}

// Taxonomy returns the display metadata for every tag in taxonomy order.
func Taxonomy() []TagInfo {
	out := make([]TagInfo, len(taxonomy))
	copy(out, taxonomy)
	return out
}

// IsKnown reports whether the tag belongs to the current taxonomy.
func (t Tag) IsKnown() bool {
	_, ok := tagIndex[t]
	return ok
}

// Index returns the taxonomy position of the tag, or -1 for unknown tags.
func (t Tag) Index() int {
	if i, ok := tagIndex[t]; ok {
		return i
	}
	return -1
}

// Label returns the human-readable label. Unknown tags are labelled with
// their raw identifier.
func (t Tag) Label() string {
	if i, ok := tagIndex[t]; ok {
		return taxonomy[i].Label
	}
	return string(t)
}

// Group returns the display group, or an empty group for unknown tags.
func (t Tag) Group() TagGroup {
	if i, ok := tagIndex[t]; ok {
		return taxonomy[i].Group
	}
	return ""
}

// TagGroups returns the display groups in the order their tags appear.
func TagGroups() []TagGroup {
	return []TagGroup{GroupSolarSystem, GroupPhysics, GroupSky, GroupStars, GroupDeepSpace}
}

// TagsInGroup returns the tags of a group in taxonomy order.
func TagsInGroup(group TagGroup) []Tag {
	var tags []Tag
	for _, info := range taxonomy {
		if info.Group == group {
			tags = append(tags, info.Tag)
		}
	}
	return tags
}

// CompareTags orders tags by taxonomy position. Unknown tags sort after known
// ones, alphabetically.
func CompareTags(a, b Tag) int {
	ia, ib := a.Index(), b.Index()
	switch {
	case ia >= 0 && ib >= 0:
		return ia - ib
	case ia >= 0:
		return -1
	case ib >= 0:
		return 1
	case a < b:
		return -1
	case a > b:
		return 1
	default:
		return 0
	}
}
