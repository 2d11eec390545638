// Package taxonomy holds the fixed PRIME category table and its Meta rollup.
//
// The table is built once at package initialization and never mutated.
// Category names are case-sensitive; no normalization is applied on lookup.
package taxonomy

import (
	"slices"
	"strings"
)

// Sentinel is the category used when no valid PRIME category can be determined.
const Sentinel = "OTHER_None_of_These"

// DefaultMeta is the Meta category of any name absent from the table.
const DefaultMeta = "Other categories"

// Category is one PRIME category.
type Category struct {
	Name        string
	Description string
	Group       string
	Meta        string
}

const (
	groupAnswers    = "ANSWERS"
	groupQuickfact  = "QUICKFACT"
	groupExperience = "Specific Experience"
	groupOther      = "OTHER"
	groupReport     = "Report Rollup"
)

const (
	metaAnswers       = "Answers"
	metaQuickfacts    = "Quickfacts: Define, Crossword,"
	metaCelebrities   = "Entertainment: Celebrities,"
	metaSports        = "Sports teams, leagues, athletes"
	metaMovies        = "Entertainment: Movies"
	metaTV            = "Entertainment: TV"
	metaMusic         = "Entertainment: Music"
	metaAdultWeb      = "Other: Adult and Web results"
	metaJobsRealEst   = "Jobs and Real Estate"
	metaPlaceAndVenue = "Place and Venue"
	metaNews          = "News (undercounted)"
)

var categories = []Category{
	{"ANSWERS_General", "General advice and recommendations", groupAnswers, metaAnswers},
	{"ANSWERS_Autos", "Auto advice and recommendations", groupAnswers, metaAnswers},
	{"ANSWERS_Dreams", "Dream interpretation advice", groupAnswers, metaAnswers},
	{"ANSWERS_Education", "Educational advice and recommendations", groupAnswers, metaAnswers},
	{"ANSWERS_Finance", "Financial advice and recommendations", groupAnswers, metaAnswers},
	{"ANSWERS_Food", "Food and cooking advice", groupAnswers, metaAnswers},
	{"ANSWERS_Games", "Gaming advice and recommendations", groupAnswers, metaAnswers},
	{"ANSWERS_Gardening", "Gardening advice and recommendations", groupAnswers, metaAnswers},
	{"ANSWERS_Health", "Health advice and recommendations", groupAnswers, metaAnswers},
	{"ANSWERS_Jobs", "Job and career advice", groupAnswers, metaAnswers},
	{"ANSWERS_Legal", "Legal advice and recommendations", groupAnswers, metaAnswers},
	{"ANSWERS_Music", "Music advice and recommendations", groupAnswers, metaAnswers},
	{"ANSWERS_Parenting", "Parenting advice and recommendations", groupAnswers, metaAnswers},
	{"ANSWERS_Relationships", "Relationship advice", groupAnswers, metaAnswers},
	{"ANSWERS_Religion", "Religious advice and guidance", groupAnswers, metaAnswers},
	{"ANSWERS_Science_Math", "Science and math explanations", groupAnswers, metaAnswers},
	{"ANSWERS_Sports", "Sports advice and recommendations", groupAnswers, metaAnswers},
	{"ANSWERS_Tech", "Technology advice and recommendations", groupAnswers, metaAnswers},
	{"ANSWERS_Travel", "Travel advice and recommendations", groupAnswers, metaAnswers},
	{"ANSWERS_Weddings", "Wedding advice and recommendations", groupAnswers, metaAnswers},
	{"ANSWERS_Other", "Other advice and recommendations", groupAnswers, metaAnswers},

	{"QUICKFACT_Astronomical_Event", "Astronomical events and dates", groupQuickfact, metaQuickfacts},
	{"QUICKFACT_Calories", "Calorie information", groupQuickfact, metaQuickfacts},
	{"QUICKFACT_Conversion", "Unit conversions", groupQuickfact, metaQuickfacts},
	{"QUICKFACT_Crossword", "Crossword clues and answers", groupQuickfact, metaQuickfacts},
	{"QUICKFACT_Define", "Definitions and meanings", groupQuickfact, metaQuickfacts},
	{"QUICKFACT_Directions", "Driving directions", groupQuickfact, metaQuickfacts},
	{"QUICKFACT_Flight_Tracker", "Flight status and tracking", groupQuickfact, metaQuickfacts},
	{"QUICKFACT_Holiday", "Holiday dates and information", groupQuickfact, metaQuickfacts},
	{"QUICKFACT_Phone_Codes", "Phone area codes", groupQuickfact, metaQuickfacts},
	{"QUICKFACT_Phone_Number", "Phone number lookup", groupQuickfact, metaQuickfacts},
	{"QUICKFACT_Sunrise_Sunset", "Sunrise and sunset times", groupQuickfact, metaQuickfacts},
	{"QUICKFACT_Table", "Data tables and charts", groupQuickfact, metaQuickfacts},
	{"QUICKFACT_Time", "Time zones and current time", groupQuickfact, metaQuickfacts},
	{"QUICKFACT_Traffic", "Traffic conditions", groupQuickfact, metaQuickfacts},
	{"QUICKFACT_Translate", "Language translation", groupQuickfact, metaQuickfacts},
	{"QUICKFACT_Zip_Code", "Zip code information", groupQuickfact, metaQuickfacts},

	{"Notable_Person_Actor", "Famous actors and actresses", groupExperience, metaCelebrities},
	{"Notable_Person_Athlete", "Famous athletes and sports figures", groupExperience, metaSports},
	{"Notable_Person_Musician", "Famous musicians and singers", groupExperience, metaCelebrities},
	{"Notable_Person_Other", "Other notable people", groupExperience, metaCelebrities},
	{"Shopping", "Product information, prices, reviews", groupExperience, "Product"},
	{"Local_Category", "Local business categories", groupExperience, "Local"},
	{"Local_Chain", "Chain store locations", groupExperience, "Local"},
	{"Local_Single", "Individual local businesses", groupExperience, "Local"},
	{"News", "Breaking news and current events", groupExperience, metaNews},
	{"Place", "Geographic locations and maps", groupExperience, metaPlaceAndVenue},
	{"Weather", "Weather conditions and forecasts", groupExperience, "Weather"},
	{"Movie_Current", "Current movies and showtimes", groupExperience, metaMovies},
	{"Movie_Non_current", "Older movies and film information", groupExperience, metaMovies},
	{"TV_Show", "Television shows and episodes", groupExperience, metaTV},
	{"Sports_Team", "Sports teams, scores, schedules", groupExperience, metaSports},

	{"OTHER_Academic", "Academic and scholarly content", groupOther, DefaultMeta},
	{"OTHER_Adult", "Adult content", groupOther, metaAdultWeb},
	{"OTHER_Airport", "Airport information", groupOther, DefaultMeta},
	{"OTHER_App", "Mobile applications", groupOther, DefaultMeta},
	{"OTHER_Events", "Events and activities", groupOther, DefaultMeta},
	{"OTHER_Jobs", "Job listings and employment", groupOther, metaJobsRealEst},
	{"OTHER_Music", "Music content not covered elsewhere", groupOther, metaMusic},
	{"OTHER_Person_Search", "Searching for people", groupOther, DefaultMeta},
	{"OTHER_Real_Estate", "Real estate information", groupOther, metaJobsRealEst},
	{"OTHER_Web", "Website navigation", groupOther, metaAdultWeb},
	{"OTHER_Wiki", "Wikipedia-style information", groupOther, DefaultMeta},
	{Sentinel, "Does not fit any category", groupOther, DefaultMeta},

	{"Navigational", "Website navigation queries", groupReport, "Navigational"},
	{"Entertainment_Celebrities", "Celebrity information", groupReport, metaCelebrities},
	{"Image_only", "Image search queries", groupReport, "Image only"},
	{"Jobs_and_Real_Estate", "Job and real estate combined", groupReport, metaJobsRealEst},
	{"Cannot_judge", "Cannot determine classification", groupReport, "Cannot judge"},
	{"Celeb_other", "Other celebrity content", groupReport, "Celeb: other"},
	{"Reference_Health_Lottery", "Health and lottery reference", groupReport, "Reference: Health, Lottery,"},
	{"Quickfacts_Define_Crossword", "Quick facts and definitions", groupReport, metaQuickfacts},
	{"Product", "Product information", groupReport, "Product"},
	{"Place_and_Venue", "Places and venues", groupReport, metaPlaceAndVenue},
	{"Other_categories", "Other miscellaneous categories", groupReport, DefaultMeta},
	{"News_undercounted", "News content (undercounted)", groupReport, metaNews},
	{"Sports_teams_leagues_athletes", "Sports-related content", groupReport, metaSports},
	{"Autos", "Automotive content", groupReport, "Autos"},
	{"Other_Adult_and_Web_results", "Adult and web results", groupReport, metaAdultWeb},
}

var byName = func() map[string]Category {
	m := make(map[string]Category, len(categories))
	for _, c := range categories {
		m[c.Name] = c
	}
	return m
}()

// IsValid reports whether name is an exact PRIME category name.
func IsValid(name string) bool {
	_, ok := byName[name]
	return ok
}

// MetaOf returns the Meta category for name, or DefaultMeta when name is unknown.
func MetaOf(name string) string {
	if c, ok := byName[name]; ok {
		return c.Meta
	}
	return DefaultMeta
}

// Describe returns the human-readable description of name, or "" when unknown.
func Describe(name string) string {
	return byName[name].Description
}

// Categories returns a copy of the table in canonical order.
func Categories() []Category {
	return slices.Clone(categories)
}

// Len is the number of PRIME categories.
func Len() int {
	return len(categories)
}

// Group is a named family of categories in canonical order.
type Group struct {
	Name  string
	Names []string
}

// Groups returns the categories bucketed by family, preserving table order.
func Groups() []Group {
	var out []Group
	for _, c := range categories {
		if n := len(out); n > 0 && out[n-1].Name == c.Group {
			out[n-1].Names = append(out[n-1].Names, c.Name)
			continue
		}
		out = append(out, Group{Name: c.Group, Names: []string{c.Name}})
	}
	return out
}

// PromptGroups is Groups without the report rollup aliases, which are valid
// category names but are not offered to the model as choices.
func PromptGroups() []Group {
	var out []Group
	for _, g := range Groups() {
		if g.Name != groupReport {
			out = append(out, g)
		}
	}
	return out
}

// MetaDefinition returns the sentence describing a Meta category in reports.
func MetaDefinition(meta string) string {
	switch {
	case strings.Contains(meta, "Answer"):
		return "Show opinions, advice, recommendations from others"
	case strings.Contains(meta, "Quickfact"):
		return "Show quick factual answers and definitions"
	case strings.Contains(meta, "Entertainment"):
		return "Entertainment content including celebrities, movies, music"
	case meta == "Local":
		return "Local business listings with maps and contact information"
	case meta == "Navigational":
		return "Website navigation and direct access queries"
	case meta == "Product":
		return "Product information, prices, sellers, reviews"
	default:
		return "Queries related to " + strings.ToLower(meta)
	}
}
