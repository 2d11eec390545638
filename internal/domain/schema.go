package domain

// FieldSpec names one sub-schema field and carries its prompt description.
type FieldSpec struct {
	Name        string
	Description string
}

type flagField[T any] struct {
	FieldSpec
	ref func(*T) *bool
}

type listField struct {
	FieldSpec
	ref func(*EntitySchema) *[]string
}

// Flag is a named boolean read out of a schema in canonical order.
type Flag struct {
	Name  string
	Value bool
}

// Entity is a named entity list read out of an EntitySchema in canonical order.
type Entity struct {
	Name   string
	Values []string
}

// AnnotationSchema marks query-quality issues.
type AnnotationSchema struct {
	Ambiguous           bool `json:"ambiguous"`
	MisspelledMalformed bool `json:"misspelled_malformed"`
	NonMarketLanguage   bool `json:"non_market_language"`
}

var annotationFields = []flagField[AnnotationSchema]{
	{FieldSpec{"ambiguous", "Query has multiple distinct meanings or unclear intent"}, func(s *AnnotationSchema) *bool { return &s.Ambiguous }},
	{FieldSpec{"misspelled_malformed", "Spelling errors, malformed syntax, poor grammar"}, func(s *AnnotationSchema) *bool { return &s.MisspelledMalformed }},
	{FieldSpec{"non_market_language", "Not in English or common English phrases"}, func(s *AnnotationSchema) *bool { return &s.NonMarketLanguage }},
}

// EntitySchema lists the entities extracted from a query, one slice per type.
type EntitySchema struct {
	PersonNotable        []string `json:"person_notable"`
	PersonNonNotable     []string `json:"person_non_notable"`
	TypeOfPerson         []string `json:"type_of_person"`
	SpecificOrganization []string `json:"specific_organization"`
	TypeOfOrganization   []string `json:"type_of_organization"`
	MediaTitle           []string `json:"media_title"`
	TypeOfMedia          []string `json:"type_of_media"`
	SpecificProduct      []string `json:"specific_product"`
	TypeOfProduct        []string `json:"type_of_product"`
	SpecificPlaceCity    []string `json:"specific_place_city"`
	SpecificPlacePOI     []string `json:"specific_place_poi"`
	SpecificPlaceAddress []string `json:"specific_place_address"`
	SpecificPlaceOther   []string `json:"specific_place_other"`
	TypeOfPlace          []string `json:"type_of_place"`
	SpecificEvent        []string `json:"specific_event"`
	TypeOfEvent          []string `json:"type_of_event"`
	Website              []string `json:"website"`
	OtherEntity          []string `json:"other_entity"`
}

var entityFields = []listField{
	{FieldSpec{"person_notable", "Current, historical, or fictional famous people"}, func(s *EntitySchema) *[]string { return &s.PersonNotable }},
	{FieldSpec{"person_non_notable", "People without public fame"}, func(s *EntitySchema) *[]string { return &s.PersonNonNotable }},
	{FieldSpec{"type_of_person", "Categories by gender, occupation, age, ethnicity"}, func(s *EntitySchema) *[]string { return &s.TypeOfPerson }},
	{FieldSpec{"specific_organization", "Named companies, teams, bands, schools"}, func(s *EntitySchema) *[]string { return &s.SpecificOrganization }},
	{FieldSpec{"type_of_organization", "Categories of organizations/businesses"}, func(s *EntitySchema) *[]string { return &s.TypeOfOrganization }},
	{FieldSpec{"media_title", "Named books, songs, movies, albums, games, newspapers"}, func(s *EntitySchema) *[]string { return &s.MediaTitle }},
	{FieldSpec{"type_of_media", "Categories of media formats"}, func(s *EntitySchema) *[]string { return &s.TypeOfMedia }},
	{FieldSpec{"specific_product", "Named product models, families, manufacturers"}, func(s *EntitySchema) *[]string { return &s.SpecificProduct }},
	{FieldSpec{"type_of_product", "Product categories"}, func(s *EntitySchema) *[]string { return &s.TypeOfProduct }},
	{FieldSpec{"specific_place_city", "Named cities"}, func(s *EntitySchema) *[]string { return &s.SpecificPlaceCity }},
	{FieldSpec{"specific_place_poi", "Points of interest (landmarks, attractions)"}, func(s *EntitySchema) *[]string { return &s.SpecificPlacePOI }},
	{FieldSpec{"specific_place_address", "Street addresses"}, func(s *EntitySchema) *[]string { return &s.SpecificPlaceAddress }},
	{FieldSpec{"specific_place_other", "States, countries, regions, zip codes"}, func(s *EntitySchema) *[]string { return &s.SpecificPlaceOther }},
	{FieldSpec{"type_of_place", "Place categories"}, func(s *EntitySchema) *[]string { return &s.TypeOfPlace }},
	{FieldSpec{"specific_event", "Named specific events"}, func(s *EntitySchema) *[]string { return &s.SpecificEvent }},
	{FieldSpec{"type_of_event", "Event categories"}, func(s *EntitySchema) *[]string { return &s.TypeOfEvent }},
	{FieldSpec{"website", "Named websites or URLs"}, func(s *EntitySchema) *[]string { return &s.Website }},
	{FieldSpec{"other_entity", "Phone numbers, diseases, foods, animals, etc."}, func(s *EntitySchema) *[]string { return &s.OtherEntity }},
}

// IntentSchema marks what the searcher is trying to do.
type IntentSchema struct {
	Website      bool `json:"website"`
	PornIllegal  bool `json:"porn_illegal"`
	ImagesVideos bool `json:"images_videos"`
	LocalInfo    bool `json:"local_info"`
	EventInfo    bool `json:"event_info"`
	News         bool `json:"news"`
	Shopping     bool `json:"shopping"`
	SimpleFact   bool `json:"simple_fact"`
	Research     bool `json:"research"`
	OtherIntent  bool `json:"other_intent"`
}

var intentFields = []flagField[IntentSchema]{
	{FieldSpec{"website", "Navigate to specific website"}, func(s *IntentSchema) *bool { return &s.Website }},
	{FieldSpec{"porn_illegal", "Adult content, illegal activities"}, func(s *IntentSchema) *bool { return &s.PornIllegal }},
	{FieldSpec{"images_videos", "Visual media (explicit or implicit)"}, func(s *IntentSchema) *bool { return &s.ImagesVideos }},
	{FieldSpec{"local_info", "Local business/service information"}, func(s *IntentSchema) *bool { return &s.LocalInfo }},
	{FieldSpec{"event_info", "Information about scheduled events"}, func(s *IntentSchema) *bool { return &s.EventInfo }},
	{FieldSpec{"news", "Current, evolving news stories"}, func(s *IntentSchema) *bool { return &s.News }},
	{FieldSpec{"shopping", "Product research or purchase intent"}, func(s *IntentSchema) *bool { return &s.Shopping }},
	{FieldSpec{"simple_fact", "Short factual answers (8 words or fewer)"}, func(s *IntentSchema) *bool { return &s.SimpleFact }},
	{FieldSpec{"research", "Longer, exploratory information needs"}, func(s *IntentSchema) *bool { return &s.Research }},
	{FieldSpec{"other_intent", "Intents not covered above"}, func(s *IntentSchema) *bool { return &s.OtherIntent }},
}

// TopicSchema marks the subject areas a query touches.
type TopicSchema struct {
	Autos               bool `json:"autos"`
	Education           bool `json:"education"`
	EntertainmentBooks  bool `json:"entertainment_books"`
	EntertainmentGames  bool `json:"entertainment_games"`
	EntertainmentMovies bool `json:"entertainment_movies"`
	EntertainmentMusic  bool `json:"entertainment_music"`
	EntertainmentTV     bool `json:"entertainment_tv"`
	EntertainmentOther  bool `json:"entertainment_other"`
	Environment         bool `json:"environment"`
	Finance             bool `json:"finance"`
	FoodDining          bool `json:"food_dining"`
	GovernmentPolitics  bool `json:"government_politics"`
	HealthMedical       bool `json:"health_medical"`
	HomeGarden          bool `json:"home_garden"`
	Jobs                bool `json:"jobs"`
	Legal               bool `json:"legal"`
	PeopleSearch        bool `json:"people_search"`
	PersonalGoods       bool `json:"personal_goods"`
	PetsAnimals         bool `json:"pets_animals"`
	RealEstate          bool `json:"real_estate"`
	Religion            bool `json:"religion"`
	Retailers           bool `json:"retailers"`
	SocialNetworking    bool `json:"social_networking"`
	SportsOutdoors      bool `json:"sports_outdoors"`
	TechElectronics     bool `json:"tech_electronics"`
	TransitTraffic      bool `json:"transit_traffic"`
	TravelLodging       bool `json:"travel_lodging"`
	Weather             bool `json:"weather"`
	OtherTopic          bool `json:"other_topic"`
}

var topicFields = []flagField[TopicSchema]{
	{FieldSpec{"autos", "Cars, motorcycles, parts, dealers, mechanics"}, func(s *TopicSchema) *bool { return &s.Autos }},
	{FieldSpec{"education", "Schools, teaching, studying, educational resources"}, func(s *TopicSchema) *bool { return &s.Education }},
	{FieldSpec{"entertainment_books", "Books, authors, libraries, e-readers"}, func(s *TopicSchema) *bool { return &s.EntertainmentBooks }},
	{FieldSpec{"entertainment_games", "Video games, board games, card games, lottery"}, func(s *TopicSchema) *bool { return &s.EntertainmentGames }},
	{FieldSpec{"entertainment_movies", "Films, actors, theaters, showtimes"}, func(s *TopicSchema) *bool { return &s.EntertainmentMovies }},
	{FieldSpec{"entertainment_music", "Musicians, songs, concerts, music venues"}, func(s *TopicSchema) *bool { return &s.EntertainmentMusic }},
	{FieldSpec{"entertainment_tv", "TV shows, networks, streaming, TV personalities"}, func(s *TopicSchema) *bool { return &s.EntertainmentTV }},
	{FieldSpec{"entertainment_other", "Comics, radio, theater, art, other entertainment"}, func(s *TopicSchema) *bool { return &s.EntertainmentOther }},
	{FieldSpec{"environment", "Ecology, green issues, climate, conservation"}, func(s *TopicSchema) *bool { return &s.Environment }},
	{FieldSpec{"finance", "Banking, investments, insurance, financial services"}, func(s *TopicSchema) *bool { return &s.Finance }},
	{FieldSpec{"food_dining", "Restaurants, recipes, food, beverages, cooking"}, func(s *TopicSchema) *bool { return &s.FoodDining }},
	{FieldSpec{"government_politics", "Government services, politics, civic issues"}, func(s *TopicSchema) *bool { return &s.GovernmentPolitics }},
	{FieldSpec{"health_medical", "Medical conditions, treatments, healthcare providers"}, func(s *TopicSchema) *bool { return &s.HealthMedical }},
	{FieldSpec{"home_garden", "Home improvement, gardening, furniture, appliances"}, func(s *TopicSchema) *bool { return &s.HomeGarden }},
	{FieldSpec{"jobs", "Employment, careers, job search, workplace issues"}, func(s *TopicSchema) *bool { return &s.Jobs }},
	{FieldSpec{"legal", "Law, lawyers, legal issues, court cases"}, func(s *TopicSchema) *bool { return &s.Legal }},
	{FieldSpec{"people_search", "Finding non-famous individuals"}, func(s *TopicSchema) *bool { return &s.PeopleSearch }},
	{FieldSpec{"personal_goods", "Clothing, accessories, beauty, personal care"}, func(s *TopicSchema) *bool { return &s.PersonalGoods }},
	{FieldSpec{"pets_animals", "Pet care, veterinarians, animal information"}, func(s *TopicSchema) *bool { return &s.PetsAnimals }},
	{FieldSpec{"real_estate", "Property sales, rentals, real estate services"}, func(s *TopicSchema) *bool { return &s.RealEstate }},
	{FieldSpec{"religion", "Religious topics, places of worship, spiritual matters"}, func(s *TopicSchema) *bool { return &s.Religion }},
	{FieldSpec{"retailers", "General merchandise stores (not specialized)"}, func(s *TopicSchema) *bool { return &s.Retailers }},
	{FieldSpec{"social_networking", "Social media, dating, communication platforms"}, func(s *TopicSchema) *bool { return &s.SocialNetworking }},
	{FieldSpec{"sports_outdoors", "Sports, teams, outdoor activities, recreation"}, func(s *TopicSchema) *bool { return &s.SportsOutdoors }},
	{FieldSpec{"tech_electronics", "Technology, computers, software, electronics"}, func(s *TopicSchema) *bool { return &s.TechElectronics }},
	{FieldSpec{"transit_traffic", "Local transportation, traffic, commuting"}, func(s *TopicSchema) *bool { return &s.TransitTraffic }},
	{FieldSpec{"travel_lodging", "Travel, tourism, hotels, destinations"}, func(s *TopicSchema) *bool { return &s.TravelLodging }},
	{FieldSpec{"weather", "Weather conditions, forecasts, weather events"}, func(s *TopicSchema) *bool { return &s.Weather }},
	{FieldSpec{"other_topic", "Topics not covered above"}, func(s *TopicSchema) *bool { return &s.OtherTopic }},
}

func specs[T any](fields []flagField[T]) []FieldSpec {
	out := make([]FieldSpec, len(fields))
	for i, f := range fields {
		out[i] = f.FieldSpec
	}
	return out
}

func flags[T any](fields []flagField[T], s *T) []Flag {
	out := make([]Flag, len(fields))
	for i, f := range fields {
		out[i] = Flag{Name: f.Name, Value: *f.ref(s)}
	}
	return out
}

func setFlag[T any](fields []flagField[T], s *T, name string, v bool) bool {
	for _, f := range fields {
		if f.Name == name {
			*f.ref(s) = v
			return true
		}
	}
	return false
}

// AnnotationFields returns the annotation field names and descriptions in order.
func AnnotationFields() []FieldSpec { return specs(annotationFields) }

// IntentFields returns the intent field names and descriptions in order.
func IntentFields() []FieldSpec { return specs(intentFields) }

// TopicFields returns the topic field names and descriptions in order.
func TopicFields() []FieldSpec { return specs(topicFields) }

// EntityFields returns the entity field names and descriptions in order.
func EntityFields() []FieldSpec {
	out := make([]FieldSpec, len(entityFields))
	for i, f := range entityFields {
		out[i] = f.FieldSpec
	}
	return out
}

func (s AnnotationSchema) Flags() []Flag { return flags(annotationFields, &s) }
func (s IntentSchema) Flags() []Flag     { return flags(intentFields, &s) }
func (s TopicSchema) Flags() []Flag      { return flags(topicFields, &s) }

// Set assigns the named flag and reports whether the name exists.
func (s *AnnotationSchema) Set(name string, v bool) bool { return setFlag(annotationFields, s, name, v) }

// Set assigns the named flag and reports whether the name exists.
func (s *IntentSchema) Set(name string, v bool) bool { return setFlag(intentFields, s, name, v) }

// Set assigns the named flag and reports whether the name exists.
func (s *TopicSchema) Set(name string, v bool) bool { return setFlag(topicFields, s, name, v) }

// Entities returns every entity list in canonical order.
func (s EntitySchema) Entities() []Entity {
	out := make([]Entity, len(entityFields))
	for i, f := range entityFields {
		out[i] = Entity{Name: f.Name, Values: *f.ref(&s)}
	}
	return out
}

// Set assigns the named entity list and reports whether the name exists.
func (s *EntitySchema) Set(name string, values []string) bool {
	for _, f := range entityFields {
		if f.Name == name {
			*f.ref(s) = values
			return true
		}
	}
	return false
}

// Normalize replaces nil lists with empty ones so every key serializes as [].
func (s *EntitySchema) Normalize() {
	for _, f := range entityFields {
		if p := f.ref(s); *p == nil {
			*p = []string{}
		}
	}
}

// EmptyEntities returns an EntitySchema with every list present and empty.
func EmptyEntities() EntitySchema {
	var s EntitySchema
	s.Normalize()
	return s
}
