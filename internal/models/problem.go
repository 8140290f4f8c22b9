package models

// Language identifies a submission language supported by the sandbox.
type Language string

const (
	LanguageJavaScript Language = "javascript"
	LanguagePython     Language = "python"
	LanguageJava       Language = "java"
	LanguageCPP        Language = "cpp"
)

// DefaultLanguage seeds a participant's buffer before they pick one.
const DefaultLanguage = LanguageJavaScript

// Valid reports whether l is one of the supported languages.
func (l Language) Valid() bool {
	switch l {
	case LanguageJavaScript, LanguagePython, LanguageJava, LanguageCPP:
		return true
	}
	return false
}

type Difficulty string

const (
	DifficultyEasy   Difficulty = "easy"
	DifficultyMedium Difficulty = "medium"
	DifficultyHard   Difficulty = "hard"
)

// Example is a worked input/output pair shown in the problem statement.
type Example struct {
	Input       string `json:"input"`
	Output      string `json:"output"`
	Explanation string `json:"explanation,omitempty"`
}

// TestCase is one stdin/expected-stdout pair the sandbox runs a submission
// against. Expected output comparison is exact after trailing-whitespace trim.
type TestCase struct {
	Input    string `json:"input"`
	Expected string `json:"expected"`
}

// LanguageTemplate is the starter code handed to a participant for one language.
type LanguageTemplate struct {
	Starter string `json:"starter"`
}

type Problem struct {
	ID          string                        `json:"id"`
	Title       string                        `json:"title"`
	Difficulty  Difficulty                    `json:"difficulty"`
	Category    string                        `json:"category"`
	Description string                        `json:"description"`
	Examples    []Example                     `json:"examples"`
	Constraints []string                      `json:"constraints"`
	TestCases   []TestCase                    `json:"testCases"`
	Templates   map[Language]LanguageTemplate `json:"templates"`
}

// StarterCode returns the template for lang, or the empty string when the
// problem has no template for it.
func (p *Problem) StarterCode(lang Language) string {
	if t, ok := p.Templates[lang]; ok {
		return t.Starter
	}
	return ""
}

// Summary is the compact problem reference embedded in durable results.
type ProblemSummary struct {
	ID         string     `json:"id"`
	Title      string     `json:"title"`
	Difficulty Difficulty `json:"difficulty"`
}

func (p *Problem) Summary() ProblemSummary {
	return ProblemSummary{ID: p.ID, Title: p.Title, Difficulty: p.Difficulty}
}
