package code

// languageIDs maps editor language names to Judge0 CE language ids.
var languageIDs = map[string]int{
	"java":       62,
	"javascript": 63,
	"cpp":        54,
	"python":     71,
	"kotlin":     78,
}

// LanguageID returns the Judge0 id for name, or 0 if the language is unknown.
func LanguageID(name string) int {
	return languageIDs[name]
}

// SlowToolchain reports whether name compiles slowly enough to need a longer
// per-test wait before results are fetched.
func SlowToolchain(name string) bool {
	return name == "kotlin"
}
