// Package aptitude holds the built-in aptitude question bank and its scorer.
package aptitude

// TimeLimit is the time a candidate is given for one attempt, in seconds.
const TimeLimit = 20 * 60

// Question is one multiple-choice question. Answer is never serialized.
type Question struct {
	ID       int      `json:"id"`
	Question string   `json:"question"`
	Options  []string `json:"options"`
	Answer   string   `json:"-"`
}

var defaultBank = []Question{
	{
		ID:       1,
		Question: "If A = 1, B = 2, C = 3... What is the value of CAT?",
		Options:  []string{"24", "27", "21", "26"},
		Answer:   "24",
	},
	{
		ID:       2,
		Question: "What is the next number in the series? 2, 6, 12, 20, 30, ?",
		Options:  []string{"36", "40", "42", "50"},
		Answer:   "42",
	},
	{
		ID:       3,
		Question: "A train travels 60 km in 45 minutes. What is its speed in km/hr?",
		Options:  []string{"80", "90", "75", "85"},
		Answer:   "80",
	},
	{
		ID:       4,
		Question: "If 5 workers can complete a task in 12 days, how many days will 8 workers take?",
		Options:  []string{"7.5", "8", "9", "10"},
		Answer:   "7.5",
	},
	{
		ID:       5,
		Question: "What is 15% of 200?",
		Options:  []string{"25", "30", "35", "40"},
		Answer:   "30",
	},
	{
		ID:       6,
		Question: "A shopkeeper sells an item at 20% profit. If the cost price is ₹500, what is the selling price?",
		Options:  []string{"₹550", "₹600", "₹650", "₹700"},
		Answer:   "₹600",
	},
	{
		ID:       7,
		Question: "Find the odd one out: 2, 5, 10, 17, 26, 37, 50",
		Options:  []string{"5", "10", "26", "50"},
		Answer:   "50",
	},
	{
		ID:       8,
		Question: "If EARTH is coded as 52987 and MOON is coded as 1334, what is the code for WATER?",
		Options:  []string{"92859", "85729", "95827", "82759"},
		Answer:   "92859",
	},
	{
		ID:       9,
		Question: "A clock shows 3:15. What is the angle between hour and minute hands?",
		Options:  []string{"0°", "7.5°", "15°", "30°"},
		Answer:   "7.5°",
	},
	{
		ID:       10,
		Question: "In a race of 100m, A beats B by 10m and B beats C by 10m. By how many meters does A beat C?",
		Options:  []string{"18m", "19m", "20m", "21m"},
		Answer:   "19m",
	},
}

// DefaultBank returns a copy of the built-in question bank.
func DefaultBank() []Question {
	out := make([]Question, len(defaultBank))
	for i, q := range defaultBank {
		q.Options = append([]string(nil), q.Options...)
		out[i] = q
	}
	return out
}
