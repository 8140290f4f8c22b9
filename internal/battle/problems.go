package battle

import (
	"math/rand"

	"github.com/codeduel/codeduel-backend/internal/models"
)

// ProblemProvider hands out problems for new battles.
type ProblemProvider interface {
	Random() *models.Problem
}

// ProblemBank is the built-in problem set. Selection is uniform.
type ProblemBank struct {
	problems []*models.Problem
}

func NewProblemBank() *ProblemBank {
	return &ProblemBank{problems: builtinProblems}
}

func (b *ProblemBank) Random() *models.Problem {
	return b.problems[rand.Intn(len(b.problems))]
}

// Len reports how many problems the bank holds.
func (b *ProblemBank) Len() int {
	return len(b.problems)
}

// Get returns the problem with the given id, or nil.
func (b *ProblemBank) Get(id string) *models.Problem {
	for _, p := range b.problems {
		if p.ID == id {
			return p
		}
	}
	return nil
}

// Summaries lists every problem without test cases or templates.
func (b *ProblemBank) Summaries() []models.ProblemSummary {
	out := make([]models.ProblemSummary, 0, len(b.problems))
	for _, p := range b.problems {
		out = append(out, p.Summary())
	}
	return out
}

var builtinProblems = []*models.Problem{
	{
		ID:         "two-sum",
		Title:      "Two Sum",
		Difficulty: models.DifficultyEasy,
		Category:   "Array",
		Description: "Given an array of integers nums and an integer target, print the indices " +
			"of the two numbers that add up to target, in ascending order.\n\n" +
			"Input: the first line holds the space-separated array, the second line the target.\n" +
			"Output: the two indices separated by a space.",
		Examples: []models.Example{
			{
				Input:       "2 7 11 15\n9",
				Output:      "0 1",
				Explanation: "nums[0] + nums[1] == 9.",
			},
			{
				Input:  "3 2 4\n6",
				Output: "1 2",
			},
		},
		Constraints: []string{
			"2 <= nums.length <= 10^4",
			"-10^9 <= nums[i] <= 10^9",
			"Exactly one valid answer exists.",
		},
		TestCases: []models.TestCase{
			{Input: "2 7 11 15\n9\n", Expected: "0 1\n"},
			{Input: "3 2 4\n6\n", Expected: "1 2\n"},
			{Input: "3 3\n6\n", Expected: "0 1\n"},
		},
		Templates: map[models.Language]models.LanguageTemplate{
			models.LanguageJavaScript: {Starter: "// Read from stdin, print the two indices to stdout.\nconst lines = require('fs').readFileSync(0, 'utf8').split('\\n');\n// Your code here\n"},
			models.LanguagePython:     {Starter: "import sys\n\nlines = sys.stdin.read().split('\\n')\n# Your code here\n"},
			models.LanguageJava:       {Starter: "import java.util.*;\n\npublic class Main {\n    public static void main(String[] args) {\n        Scanner sc = new Scanner(System.in);\n        // Your code here\n    }\n}\n"},
			models.LanguageCPP:        {Starter: "#include <bits/stdc++.h>\nusing namespace std;\n\nint main() {\n    // Your code here\n    return 0;\n}\n"},
		},
	},
	{
		ID:         "reverse-string",
		Title:      "Reverse String",
		Difficulty: models.DifficultyEasy,
		Category:   "String",
		Description: "Read a single line and print it reversed.\n\n" +
			"Input: one line.\nOutput: the line with its characters in reverse order.",
		Examples: []models.Example{
			{Input: "hello", Output: "olleh"},
		},
		Constraints: []string{
			"1 <= length <= 10^5",
		},
		TestCases: []models.TestCase{
			{Input: "hello\n", Expected: "olleh\n"},
			{Input: "CodeDuel\n", Expected: "leuDedoC\n"},
			{Input: "a\n", Expected: "a\n"},
		},
		Templates: map[models.Language]models.LanguageTemplate{
			models.LanguageJavaScript: {Starter: "const line = require('fs').readFileSync(0, 'utf8').trim();\n// Your code here\n"},
			models.LanguagePython:     {Starter: "line = input()\n# Your code here\n"},
			models.LanguageJava:       {Starter: "import java.util.*;\n\npublic class Main {\n    public static void main(String[] args) {\n        Scanner sc = new Scanner(System.in);\n        // Your code here\n    }\n}\n"},
			models.LanguageCPP:        {Starter: "#include <bits/stdc++.h>\nusing namespace std;\n\nint main() {\n    // Your code here\n    return 0;\n}\n"},
		},
	},
	{
		ID:         "fizzbuzz",
		Title:      "Fizz Buzz",
		Difficulty: models.DifficultyEasy,
		Category:   "Math",
		Description: "Read an integer n and print the numbers 1..n, one per line, replacing " +
			"multiples of 3 with Fizz, multiples of 5 with Buzz, and multiples of both with FizzBuzz.",
		Examples: []models.Example{
			{Input: "5", Output: "1\n2\nFizz\n4\nBuzz"},
		},
		Constraints: []string{
			"1 <= n <= 10^4",
		},
		TestCases: []models.TestCase{
			{Input: "3\n", Expected: "1\n2\nFizz\n"},
			{Input: "5\n", Expected: "1\n2\nFizz\n4\nBuzz\n"},
			{Input: "15\n", Expected: "1\n2\nFizz\n4\nBuzz\nFizz\n7\n8\nFizz\nBuzz\n11\nFizz\n13\n14\nFizzBuzz\n"},
		},
		Templates: map[models.Language]models.LanguageTemplate{
			models.LanguageJavaScript: {Starter: "const n = parseInt(require('fs').readFileSync(0, 'utf8').trim(), 10);\n// Your code here\n"},
			models.LanguagePython:     {Starter: "n = int(input())\n# Your code here\n"},
			models.LanguageJava:       {Starter: "import java.util.*;\n\npublic class Main {\n    public static void main(String[] args) {\n        int n = new Scanner(System.in).nextInt();\n        // Your code here\n    }\n}\n"},
			models.LanguageCPP:        {Starter: "#include <bits/stdc++.h>\nusing namespace std;\n\nint main() {\n    int n;\n    cin >> n;\n    // Your code here\n    return 0;\n}\n"},
		},
	},
	{
		ID:         "valid-parentheses",
		Title:      "Valid Parentheses",
		Difficulty: models.DifficultyMedium,
		Category:   "Stack",
		Description: "Read a string containing only the characters ()[]{} and print true if the " +
			"brackets are balanced and correctly nested, false otherwise.",
		Examples: []models.Example{
			{Input: "()[]{}", Output: "true"},
			{Input: "(]", Output: "false"},
		},
		Constraints: []string{
			"1 <= length <= 10^4",
		},
		TestCases: []models.TestCase{
			{Input: "()\n", Expected: "true\n"},
			{Input: "()[]{}\n", Expected: "true\n"},
			{Input: "(]\n", Expected: "false\n"},
			{Input: "([)]\n", Expected: "false\n"},
			{Input: "{[]}\n", Expected: "true\n"},
		},
		Templates: map[models.Language]models.LanguageTemplate{
			models.LanguageJavaScript: {Starter: "const s = require('fs').readFileSync(0, 'utf8').trim();\n// Your code here\n"},
			models.LanguagePython:     {Starter: "s = input()\n# Your code here\n"},
			models.LanguageJava:       {Starter: "import java.util.*;\n\npublic class Main {\n    public static void main(String[] args) {\n        String s = new Scanner(System.in).next();\n        // Your code here\n    }\n}\n"},
			models.LanguageCPP:        {Starter: "#include <bits/stdc++.h>\nusing namespace std;\n\nint main() {\n    string s;\n    cin >> s;\n    // Your code here\n    return 0;\n}\n"},
		},
	},
}
