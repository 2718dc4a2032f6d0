// Package catalog holds the default task templates seeded into a fresh
// call checklist.
package catalog

// Checklist type names.
const (
	Voicemail = "voicemail"
	StartCall = "start call"
)

// ObjectionLabel is the text of the task that carries the objection
// sub-checklist.
const ObjectionLabel = "Objection"

// CallTypes lists the call categories in menu order.
var CallTypes = []string{"sales", "reengagement", "followup", "at-risk", "support", "introduction"}

// ChecklistTypes lists the checklist kinds offered for every call type.
var ChecklistTypes = []string{Voicemail, StartCall}

var voicemail = []string{
	"Purpose",
	"Call to Action",
	"Timeframe",
}

var salesStart = []string{
	"Rapport Question",
	"2nd Open Question",
	"Value Add Item",
	"Great Ask for Sale",
	ObjectionLabel,
	`Implement Sale Now or "How & When"`,
	"Anything Else they want to Ask?",
	"Summarise Call",
	"Book Followup or Next Steps",
}

var introductionStart = []string{
	"Repport Question",
	"2nd Open Question",
	"Value Add Item",
	"Learn their Current Situation",
	"Learn their Desired Situation",
	"Identify their Gap (& Problem Solve or Connect to Us)",
	"Additional Support Required?",
	"Anything Else they want to Ask?",
	"Summarise Call",
	"Book Next Call or Followup Steps",
}

var followupStart = []string{
	"Rapport Question",
	"2nd Open Question",
	"Value Add Item",
	"Extra Support Required?",
	"Anything they want to Ask?",
	"Summarise Call",
	"Book Followup or Next Steps",
}

var atRiskStart = []string{
	"Rapport Question",
	"2nd Open Question",
	"Uncover the Problem",
	"Problem Solve",
	ObjectionLabel,
	"Connect course to Motivation/Their Gap",
	"Great Ask for Sale",
	"Additional Support Required",
	"Summarise Call",
	"Book Followup or Next Steps",
}

var supportStart = []string{
	"Rapport Question",
	"2nd Open Question",
	"Followup on Support Given Previously",
	"Value Add Item",
	ObjectionLabel,
	"Further Support Required?",
	"Anything Else they want to Ask?",
	"Summarise Call",
	"Book Followup or Next Steps",
}

var objectionSubtasks = []string{
	"Listen & Acknowledge",
	"Clarify & Question",
	"Address the Objection",
	"Confirm & Close",
}

type key struct {
	callType      string
	checklistType string
}

var defaults = map[key][]string{
	{"sales", Voicemail}:        voicemail,
	{"sales", StartCall}:        salesStart,
	{"reengagement", Voicemail}: voicemail,
	{"reengagement", StartCall}: salesStart,
	{"followup", Voicemail}:     voicemail,
	{"followup", StartCall}:     followupStart,
	{"at-risk", Voicemail}:      voicemail,
	{"at-risk", StartCall}:      atRiskStart,
	{"support", Voicemail}:      voicemail,
	{"support", StartCall}:      supportStart,
	{"introduction", Voicemail}: voicemail,
	{"introduction", StartCall}: introductionStart,
}

// Defaults returns the ordered default task labels for a call type and
// checklist type. Unknown pairs yield nil. The returned slice is a copy.
func Defaults(callType, checklistType string) []string {
	labels, ok := defaults[key{callType, checklistType}]
	if !ok {
		return nil
	}
	return append([]string(nil), labels...)
}

// ObjectionSubtasks returns the four labels of the objection sub-checklist.
func ObjectionSubtasks() []string {
	return append([]string(nil), objectionSubtasks...)
}

// HasObjectionFlow reports whether checklists of this pair carry the
// objection sub-checklist: start call scripts for sales and support.
func HasObjectionFlow(callType, checklistType string) bool {
	return checklistType == StartCall && (callType == "sales" || callType == "support")
}

// ValidCallType reports whether callType is one of CallTypes.
func ValidCallType(callType string) bool {
	return contains(CallTypes, callType)
}

// ValidChecklistType reports whether checklistType is one of ChecklistTypes.
func ValidChecklistType(checklistType string) bool {
	return contains(ChecklistTypes, checklistType)
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}
