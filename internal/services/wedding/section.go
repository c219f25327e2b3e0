package wedding

// Section is one independently refreshable slot of a WeddingPlan.
type Section string

const (
	SectionReceptionDinner    Section = "receptionDinner"
	SectionWelcomeParty       Section = "welcomeParty"
	SectionCatering           Section = "catering"
	SectionWeddingLocations   Section = "weddingLocations"
	SectionReceptionLocation  Section = "receptionLocation"
	SectionAfterPartyLocation Section = "afterPartyLocation"
)

var sectionNames = map[Section]string{
	SectionReceptionDinner:    "Reception Dinner Venue",
	SectionWelcomeParty:       "Welcome Party Venue",
	SectionCatering:           "Catering Services",
	SectionWeddingLocations:   "Wedding Ceremony Venues",
	SectionReceptionLocation:  "Reception Venue",
	SectionAfterPartyLocation: "After Party Venue",
}

// ParseSection validates a section key.
func ParseSection(s string) (Section, bool) {
	section := Section(s)
	_, ok := sectionNames[section]
	return section, ok
}

func (s Section) DisplayName() string {
	if name, ok := sectionNames[s]; ok {
		return name
	}
	return string(s)
}

// IsList reports whether the section holds several venues.
func (s Section) IsList() bool {
	return s == SectionWeddingLocations
}
