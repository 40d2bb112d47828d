package query

// defaultSynonyms expands common persona/task vocabulary into the words
// documents tend to use for the same need. Keys and values are raw words;
// Build runs them through the analyzer.
var defaultSynonyms = map[string][]string{
	// travel
	"travel":    {"trip", "journey", "tour", "destination", "visit", "itinerary", "vacation", "sightseeing"},
	"trip":      {"travel", "journey", "tour", "destination", "visit", "itinerary", "vacation", "city", "excursion"},
	"vacation":  {"holiday", "trip", "travel", "beach"},
	"plan":      {"itinerary", "schedule", "guide", "organize"},
	"planner":   {"itinerary", "schedule", "guide"},
	"day":       {"itinerary", "schedule", "daily"},
	"group":     {"friends", "together", "everyone"},
	"friend":    {"group", "together", "nightlife", "fun"},
	"college":   {"student", "young", "budget", "nightlife"},
	"nightlife": {"bar", "club", "nightclub"},
	"hotel":     {"accommodation", "stay", "lodging", "resort"},

	// food and catering
	"food":       {"cuisine", "restaurant", "dish", "menu", "recipe", "dining", "meal"},
	"menu":       {"dish", "recipe", "ingredient", "meal", "buffet"},
	"vegetarian": {"vegan", "vegetable", "salad"},
	"buffet":     {"dinner", "dish", "serving"},
	"contractor": {"catering", "service"},

	// forms and HR
	"hr":         {"form", "onboarding", "compliance", "employee"},
	"form":       {"fillable", "field", "signature"},
	"onboarding": {"employee", "form", "compliance", "orientation"},
	"compliance": {"policy", "regulation"},

	// research and study
	"researcher": {"study", "method", "dataset", "benchmark"},
	"literature": {"review", "study", "paper"},
	"review":     {"survey", "study", "analysis"},
	"student":    {"exam", "concept", "study", "chapter"},
	"exam":       {"concept", "practice", "key"},

	// business and finance
	"analyst":    {"revenue", "trend", "investment", "financial"},
	"revenue":    {"sales", "income", "earnings"},
	"investment": {"strategy", "capital", "funding"},
}
