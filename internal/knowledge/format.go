package knowledge

import (
	"fmt"
	"slices"
	"strings"
)

// Category is a structured-knowledge topic with its own formatter.
type Category string

const (
	CategoryAdmissions Category = "admissions"
	CategoryFees       Category = "fees"
	CategoryExams      Category = "exams"
	CategoryContacts   Category = "contacts"
	CategoryLibrary    Category = "library"
	CategoryHostel     Category = "hostel"
)

// categoryKeywords is checked in order; the first category with a keyword
// contained in the query wins.
var categoryKeywords = []struct { //nolint:gochecknoglobals // static routing table
	category Category
	keywords []string
}{
	{CategoryAdmissions, []string{"admission"}},
	{CategoryFees, []string{"fee"}},
	{CategoryExams, []string{"exam", "vtu"}},
	{CategoryContacts, []string{"contact", "phone", "email"}},
	{CategoryLibrary, []string{"library"}},
	{CategoryHostel, []string{"hostel"}},
}

var fallbackNames = map[Category]string{ //nolint:gochecknoglobals // static lookup
	CategoryAdmissions: "Admissions",
	CategoryFees:       "Fee",
	CategoryExams:      "Examination",
	CategoryContacts:   "Contact",
	CategoryLibrary:    "Library",
	CategoryHostel:     "Hostel",
}

// programLabels gives display names to well-known fee programs. Programs not
// listed here are shown upper-cased after the known ones, sorted by key.
var programLabels = []struct { //nolint:gochecknoglobals // static lookup
	key   string
	label string
}{
	{"btech", "B.Tech"},
	{"bba", "BBA"},
	{"bca", "BCA"},
}

// DetectCategory returns the category whose keywords appear in an already
// normalized (lowercased, trimmed) query.
func DetectCategory(normalized string) (Category, bool) {
	for _, ck := range categoryKeywords {
		for _, kw := range ck.keywords {
			if strings.Contains(normalized, kw) {
				return ck.category, true
			}
		}
	}
	return "", false
}

// Fallback is the answer given when a category's fields are missing.
func Fallback(c Category) string {
	name, ok := fallbackNames[c]
	if !ok {
		name = "That"
	}
	return name + " information is not available yet. Please contact the college office."
}

// Format renders the category from doc, or its fallback when any required
// field is absent.
func Format(c Category, doc Document) string {
	var (
		out string
		ok  bool
	)
	switch c {
	case CategoryAdmissions:
		out, ok = formatAdmissions(doc)
	case CategoryFees:
		out, ok = formatFees(doc)
	case CategoryExams:
		out, ok = formatExams(doc)
	case CategoryContacts:
		out, ok = formatContacts(doc)
	case CategoryLibrary:
		out, ok = doc.String("facilities", "library", "timing")
	case CategoryHostel:
		out, ok = formatHostel(doc)
	}
	if !ok {
		return Fallback(c)
	}
	return out
}

func formatAdmissions(doc Document) (string, bool) {
	ug, ok := doc.Section("admissions", "undergraduate")
	if !ok {
		return "", false
	}
	courses, ok := ug.Strings("courses")
	if !ok {
		return "", false
	}
	eligibility, ok := ug.String("eligibility")
	if !ok {
		return "", false
	}
	process, ok := ug.String("process")
	if !ok {
		return "", false
	}
	documents, ok := ug.Strings("documents")
	if !ok {
		return "", false
	}
	fees, ok := feeItems(ug)
	if !ok {
		return "", false
	}

	parts := make([]string, 0, len(fees))
	for _, f := range fees {
		parts = append(parts, f.label+" "+f.amount)
	}

	return fmt.Sprintf("Admissions:\n- Courses: %s\n- Eligibility: %s\n- Process: %s\n- Documents: %s\n- Fees: %s",
		strings.Join(courses, ", "), eligibility, process,
		strings.Join(documents, ", "), strings.Join(parts, ", "),
	), true
}

func formatFees(doc Document) (string, bool) {
	ug, ok := doc.Section("admissions", "undergraduate")
	if !ok {
		return "", false
	}
	fees, ok := feeItems(ug)
	if !ok {
		return "", false
	}

	parts := make([]string, 0, len(fees))
	for _, f := range fees {
		parts = append(parts, f.label+": "+f.amount)
	}
	return strings.Join(parts, ", ") + " (per year)", true
}

func formatExams(doc Document) (string, bool) {
	exams, ok := doc.Section("examinations")
	if !ok {
		return "", false
	}
	odd, ok := exams.String("vtu_schedule", "odd_sem")
	if !ok {
		return "", false
	}
	even, ok := exams.String("vtu_schedule", "even_sem")
	if !ok {
		return "", false
	}
	tests, ok := exams.String("internal_assessment", "tests")
	if !ok {
		return "", false
	}
	attendance, ok := exams.String("internal_assessment", "attendance")
	if !ok {
		return "", false
	}
	results, ok := exams.String("results", "check")
	if !ok {
		return "", false
	}

	return fmt.Sprintf("VTU Exams: Odd sem %s, Even sem %s\nInternal tests: %s\nAttendance required: %s\nResults: %s",
		odd, even, tests, attendance, results), true
}

func formatContacts(doc Document) (string, bool) {
	info, ok := doc.Section("college_info")
	if !ok {
		return "", false
	}
	phone, ok := info.String("phone")
	if !ok {
		return "", false
	}
	email, ok := info.String("email")
	if !ok {
		return "", false
	}
	address, ok := info.String("address")
	if !ok {
		return "", false
	}
	return fmt.Sprintf("Phone: %s, Email: %s, Address: %s", phone, email, address), true
}

func formatHostel(doc Document) (string, bool) {
	available, ok := doc.Bool("facilities", "hostel", "available")
	if !ok {
		return "", false
	}
	if !available {
		return "Hostel accommodation is not available.", true
	}
	contact, ok := doc.String("facilities", "hostel", "contact")
	if !ok {
		return "", false
	}
	return "Yes, hostel available. Contact: " + contact, true
}

type feeItem struct {
	label  string
	amount string
}

// feeItems lists every program under fees. A program with a missing or
// non-scalar amount makes the whole breakdown absent.
func feeItems(ug Document) ([]feeItem, bool) {
	keys, ok := ug.Keys("fees")
	if !ok {
		return nil, false
	}

	known := make(map[string]string, len(programLabels))
	for _, pl := range programLabels {
		known[pl.key] = pl.label
	}

	ordered := make([]string, 0, len(keys))
	for _, pl := range programLabels {
		if slices.Contains(keys, pl.key) {
			ordered = append(ordered, pl.key)
		}
	}
	var rest []string
	for _, k := range keys {
		if _, isKnown := known[k]; !isKnown {
			rest = append(rest, k)
		}
	}
	slices.Sort(rest)
	ordered = append(ordered, rest...)

	items := make([]feeItem, 0, len(ordered))
	for _, k := range ordered {
		amount, ok := ug.String("fees", k)
		if !ok {
			return nil, false
		}
		label, isKnown := known[k]
		if !isKnown {
			label = strings.ToUpper(k)
		}
		items = append(items, feeItem{label: label, amount: amount})
	}
	return items, true
}
