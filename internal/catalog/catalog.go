// Package catalog holds the static choices a learner picks from: subjects,
// output modes and answer languages.
package catalog

import (
	"fmt"
	"strings"
)

// Subject is a selectable field of study or exam family.
type Subject struct {
	ID    string `json:"id"`
	Icon  string `json:"icon"`
	Color string `json:"color"`
}

// ModeID enumerates the supported output modes.
type ModeID string

const (
	ModeSolver   ModeID = "SOLVER"
	ModeNotes    ModeID = "NOTES"
	ModePYQ      ModeID = "PYQ"
	ModeMaterial ModeID = "MATERIAL"
)

// Mode describes how the assistant should shape its answer.
type Mode struct {
	ID          ModeID `json:"id"`
	Label       string `json:"label"`
	Description string `json:"description"`
}

const (
	DefaultSubject  = "Mathematics"
	DefaultMode     = ModeSolver
	DefaultLanguage = "English"
	DefaultIcon     = "📚"
	DefaultColor    = "bg-indigo-500"
)

var modes = []Mode{
	{ID: ModeSolver, Label: "Problem Solver", Description: "Solve complex equations, logical puzzles, or technical questions."},
	{ID: ModeNotes, Label: "Advanced Notes", Description: "Lecture summaries, concept maps, and board-specific notes."},
	{ID: ModePYQ, Label: "Exam Archive", Description: "Previous Year Questions for SSC, UPSC, JEE, WBPSC, and University exams."},
	{ID: ModeMaterial, Label: "Study Vault", Description: "Specialized materials for graduate and professional exams."},
}

var languages = []string{"English", "Hindi", "Bengali", "Arabic"}

var defaultSubjects = []Subject{
	{ID: "Mathematics", Icon: "📐", Color: "bg-blue-500"},
	{ID: "Physics", Icon: "⚛️", Color: "bg-indigo-500"},
	{ID: "Chemistry", Icon: "🧪", Color: "bg-pink-500"},
	{ID: "Biology", Icon: "🧬", Color: "bg-green-500"},
	{ID: "English", Icon: "📖", Color: "bg-orange-500"},
	{ID: "Hindi", Icon: "🇮🇳", Color: "bg-red-500"},
	{ID: "Bengali", Icon: "🎨", Color: "bg-yellow-500"},
	{ID: "Arabic", Icon: "🕌", Color: "bg-emerald-600"},
	{ID: "Islamic Culture and History", Icon: "☪️", Color: "bg-teal-700"},
	{ID: "Arab Culture and Islamic Studies", Icon: "📜", Color: "bg-emerald-800"},
	{ID: "Economics", Icon: "📈", Color: "bg-sky-600"},
	{ID: "Philosophy", Icon: "💭", Color: "bg-purple-500"},
	{ID: "Political Science", Icon: "🗳️", Color: "bg-blue-800"},
	{ID: "Sociology", Icon: "👥", Color: "bg-orange-600"},
	{ID: "SSC (CGL/CHSL/MTS)", Icon: "🏢", Color: "bg-slate-600"},
	{ID: "UPSC/IAS", Icon: "⚖️", Color: "bg-amber-600"},
	{ID: "JEE (Mains/Adv)", Icon: "🚀", Color: "bg-rose-600"},
	{ID: "NEET", Icon: "🩺", Color: "bg-red-600"},
	{ID: "UGC NET", Icon: "🎓", Color: "bg-blue-700"},
	{ID: "WBPSC (WBCS/Misc)", Icon: "🏛️", Color: "bg-emerald-700"},
	{ID: "AUAT", Icon: "🕌", Color: "bg-lime-700"},
	{ID: "CUET / Entrance", Icon: "📝", Color: "bg-fuchsia-600"},
	{ID: "University Engineering", Icon: "⚙️", Color: "bg-slate-700"},
	{ID: "Medical Science", Icon: "🏥", Color: "bg-emerald-600"},
	{ID: "Commerce/MBA", Icon: "📊", Color: "bg-violet-600"},
	{ID: "Law/Civics", Icon: "📜", Color: "bg-stone-600"},
	{ID: "Global Universities", Icon: "🌎", Color: "bg-purple-700"},
	{ID: "History", Icon: "📅", Color: "bg-amber-700"},
	{ID: "Geography", Icon: "🌍", Color: "bg-cyan-500"},
}

// ColorOptions lists the accent colours offered when adding a subject.
var ColorOptions = []string{
	"bg-blue-500", "bg-indigo-500", "bg-pink-500", "bg-green-500", "bg-orange-500",
	"bg-red-500", "bg-yellow-500", "bg-emerald-600", "bg-teal-700", "bg-sky-600",
	"bg-purple-500", "bg-fuchsia-600", "bg-rose-600", "bg-lime-700", "bg-stone-600",
}

// DefaultSubjects returns a fresh copy of the built-in subject list.
func DefaultSubjects() []Subject {
	return append([]Subject(nil), defaultSubjects...)
}

// Modes returns the output modes in display order.
func Modes() []Mode {
	return append([]Mode(nil), modes...)
}

// Languages returns the supported answer languages.
func Languages() []string {
	return append([]string(nil), languages...)
}

// LookupMode returns the mode with the given id.
func LookupMode(id ModeID) (Mode, bool) {
	for _, m := range modes {
		if m.ID == id {
			return m, true
		}
	}
	return Mode{}, false
}

// ParseMode accepts a mode id in any case.
func ParseMode(value string) (ModeID, error) {
	id := ModeID(strings.ToUpper(strings.TrimSpace(value)))
	if _, ok := LookupMode(id); !ok {
		return "", fmt.Errorf("unknown mode %q", value)
	}
	return id, nil
}

// ParseLanguage matches a supported language case-insensitively.
func ParseLanguage(value string) (string, error) {
	value = strings.TrimSpace(value)
	for _, lang := range languages {
		if strings.EqualFold(lang, value) {
			return lang, nil
		}
	}
	return "", fmt.Errorf("unsupported language %q", value)
}
