package extraction

import (
	"strings"
)

// FieldName identifies one canonical business-brief field. The string value
// is the camelCase key used in JSON output.
type FieldName string

// Canonical fields, in the order they are presented to users.
const (
	FieldTitle                        FieldName = "title"
	FieldSubmittedBy                  FieldName = "submittedBy"
	FieldDescription                  FieldName = "description"
	FieldBusinessOwner                FieldName = "businessOwner"
	FieldLeadBusinessUnit             FieldName = "leadBusinessUnit"
	FieldAdditionalBusinessUnits      FieldName = "additionalBusinessUnits"
	FieldPrimaryStrategicTheme        FieldName = "primaryStrategicTheme"
	FieldBusinessObjective            FieldName = "businessObjective"
	FieldQuantifiableBusinessOutcomes FieldName = "quantifiableBusinessOutcomes"
	FieldInScope                      FieldName = "inScope"
	FieldImpactOfDoNothing            FieldName = "impactOfDoNothing"
	FieldHappyPath                    FieldName = "happyPath"
	FieldExceptions                   FieldName = "exceptions"
	FieldImpactedEndUsers             FieldName = "impactedEndUsers"
	FieldChangeImpactExpected         FieldName = "changeImpactExpected"
	FieldImpactToOtherDepartments     FieldName = "impactToOtherDepartments"
	FieldOtherDepartmentsImpacted     FieldName = "otherDepartmentsImpacted"
	FieldImpactsExistingTechnology    FieldName = "impactsExistingTechnology"
	FieldTechnologySolutions          FieldName = "technologySolutions"
	FieldRelevantBusinessOwners       FieldName = "relevantBusinessOwners"
	FieldOtherTechnologyInfo          FieldName = "otherTechnologyInfo"
	FieldSupportingDocuments          FieldName = "supportingDocuments"
	FieldPriority                     FieldName = "priority"
	FieldStatus                       FieldName = "status"
)

var canonicalFields = []FieldName{
	FieldTitle,
	FieldSubmittedBy,
	FieldDescription,
	FieldBusinessOwner,
	FieldLeadBusinessUnit,
	FieldAdditionalBusinessUnits,
	FieldPrimaryStrategicTheme,
	FieldBusinessObjective,
	FieldQuantifiableBusinessOutcomes,
	FieldInScope,
	FieldImpactOfDoNothing,
	FieldHappyPath,
	FieldExceptions,
	FieldImpactedEndUsers,
	FieldChangeImpactExpected,
	FieldImpactToOtherDepartments,
	FieldOtherDepartmentsImpacted,
	FieldImpactsExistingTechnology,
	FieldTechnologySolutions,
	FieldRelevantBusinessOwners,
	FieldOtherTechnologyInfo,
	FieldSupportingDocuments,
	FieldPriority,
	FieldStatus,
}

// AllFields returns every canonical field in presentation order.
func AllFields() []FieldName {
	out := make([]FieldName, len(canonicalFields))
	copy(out, canonicalFields)
	return out
}

// IsCanonical reports whether name is one of the canonical fields.
func IsCanonical(name FieldName) bool {
	return name.Kind() != KindUnknown
}

// FieldKind describes how a field's raw text is turned into a value.
type FieldKind int

const (
	KindUnknown FieldKind = iota
	KindText
	KindList
	KindBoolean
	KindPriority
	KindStatus
)

// Kind returns the value kind of the field.
func (n FieldName) Kind() FieldKind {
	switch n {
	case FieldAdditionalBusinessUnits, FieldOtherDepartmentsImpacted, FieldSupportingDocuments:
		return KindList
	case FieldImpactsExistingTechnology:
		return KindBoolean
	case FieldPriority:
		return KindPriority
	case FieldStatus:
		return KindStatus
	}
	for _, f := range canonicalFields {
		if f == n {
			return KindText
		}
	}
	return KindUnknown
}

// Priority is the normalized urgency of a brief.
type Priority string

const (
	PriorityLow      Priority = "low"
	PriorityMedium   Priority = "medium"
	PriorityHigh     Priority = "high"
	PriorityCritical Priority = "critical"
)

// NormalizePriority maps free text onto one of the four priorities.
// Keywords are checked in order: critical/urgent, high, low; anything else
// is medium.
//
// Example:
//
//	NormalizePriority("URGENT - board ask") // Returns PriorityCritical
//	NormalizePriority("tbd")                // Returns PriorityMedium
func NormalizePriority(value string) Priority {
	v := strings.ToLower(value)
	switch {
	case strings.Contains(v, "critical"), strings.Contains(v, "urgent"):
		return PriorityCritical
	case strings.Contains(v, "high"):
		return PriorityHigh
	case strings.Contains(v, "low"):
		return PriorityLow
	default:
		return PriorityMedium
	}
}

var knownStatuses = []string{
	"draft",
	"submitted",
	"in review",
	"under review",
	"approved",
	"rejected",
	"in progress",
	"on hold",
	"completed",
	"cancelled",
}

// normalizeStatus lower-cases recognized workflow states and leaves anything
// else as written.
func normalizeStatus(value string) string {
	lower := strings.ToLower(value)
	for _, s := range knownStatuses {
		if lower == s {
			return s
		}
	}
	return value
}

// FieldSet holds the fields extracted from one document. A member is present
// only when a strategy found a value for it: text members are never assigned
// the empty string, list members are nil until set, and the boolean is nil
// until a label for it was matched.
type FieldSet struct {
	Title                        string   `json:"title,omitempty"`
	SubmittedBy                  string   `json:"submittedBy,omitempty"`
	Description                  string   `json:"description,omitempty"`
	BusinessOwner                string   `json:"businessOwner,omitempty"`
	LeadBusinessUnit             string   `json:"leadBusinessUnit,omitempty"`
	AdditionalBusinessUnits      []string `json:"additionalBusinessUnits,omitempty"`
	PrimaryStrategicTheme        string   `json:"primaryStrategicTheme,omitempty"`
	BusinessObjective            string   `json:"businessObjective,omitempty"`
	QuantifiableBusinessOutcomes string   `json:"quantifiableBusinessOutcomes,omitempty"`
	InScope                      string   `json:"inScope,omitempty"`
	ImpactOfDoNothing            string   `json:"impactOfDoNothing,omitempty"`
	HappyPath                    string   `json:"happyPath,omitempty"`
	Exceptions                   string   `json:"exceptions,omitempty"`
	ImpactedEndUsers             string   `json:"impactedEndUsers,omitempty"`
	ChangeImpactExpected         string   `json:"changeImpactExpected,omitempty"`
	ImpactToOtherDepartments     string   `json:"impactToOtherDepartments,omitempty"`
	OtherDepartmentsImpacted     []string `json:"otherDepartmentsImpacted,omitempty"`
	ImpactsExistingTechnology    *bool    `json:"impactsExistingTechnology,omitempty"`
	TechnologySolutions          string   `json:"technologySolutions,omitempty"`
	RelevantBusinessOwners       string   `json:"relevantBusinessOwners,omitempty"`
	OtherTechnologyInfo          string   `json:"otherTechnologyInfo,omitempty"`
	SupportingDocuments          []string `json:"supportingDocuments,omitempty"`
	Priority                     Priority `json:"priority,omitempty"`
	Status                       string   `json:"status,omitempty"`
}

func (f *FieldSet) textField(name FieldName) *string {
	switch name {
	case FieldTitle:
		return &f.Title
	case FieldSubmittedBy:
		return &f.SubmittedBy
	case FieldDescription:
		return &f.Description
	case FieldBusinessOwner:
		return &f.BusinessOwner
	case FieldLeadBusinessUnit:
		return &f.LeadBusinessUnit
	case FieldPrimaryStrategicTheme:
		return &f.PrimaryStrategicTheme
	case FieldBusinessObjective:
		return &f.BusinessObjective
	case FieldQuantifiableBusinessOutcomes:
		return &f.QuantifiableBusinessOutcomes
	case FieldInScope:
		return &f.InScope
	case FieldImpactOfDoNothing:
		return &f.ImpactOfDoNothing
	case FieldHappyPath:
		return &f.HappyPath
	case FieldExceptions:
		return &f.Exceptions
	case FieldImpactedEndUsers:
		return &f.ImpactedEndUsers
	case FieldChangeImpactExpected:
		return &f.ChangeImpactExpected
	case FieldImpactToOtherDepartments:
		return &f.ImpactToOtherDepartments
	case FieldTechnologySolutions:
		return &f.TechnologySolutions
	case FieldRelevantBusinessOwners:
		return &f.RelevantBusinessOwners
	case FieldOtherTechnologyInfo:
		return &f.OtherTechnologyInfo
	case FieldStatus:
		return &f.Status
	}
	return nil
}

func (f *FieldSet) listField(name FieldName) *[]string {
	switch name {
	case FieldAdditionalBusinessUnits:
		return &f.AdditionalBusinessUnits
	case FieldOtherDepartmentsImpacted:
		return &f.OtherDepartmentsImpacted
	case FieldSupportingDocuments:
		return &f.SupportingDocuments
	}
	return nil
}

// Set converts value according to the field's kind and stores it.
// Empty values are refused. It reports whether the field was set.
func (f *FieldSet) Set(name FieldName, value string) bool {
	if strings.TrimSpace(value) == "" {
		return false
	}
	switch name.Kind() {
	case KindText:
		*f.textField(name) = value
	case KindStatus:
		f.Status = normalizeStatus(value)
	case KindPriority:
		f.Priority = NormalizePriority(value)
	case KindList:
		items := SplitList(value)
		if items == nil {
			return false
		}
		*f.listField(name) = items
	case KindBoolean:
		f.SetBool(name, InferBoolean(value))
	default:
		return false
	}
	return true
}

// SetBool stores a boolean field.
func (f *FieldSet) SetBool(name FieldName, value bool) {
	if name == FieldImpactsExistingTechnology {
		f.ImpactsExistingTechnology = &value
	}
}

// Has reports whether the field is present.
func (f *FieldSet) Has(name FieldName) bool {
	switch name.Kind() {
	case KindText, KindStatus:
		return *f.textField(name) != ""
	case KindPriority:
		return f.Priority != ""
	case KindList:
		return len(*f.listField(name)) > 0
	case KindBoolean:
		return f.ImpactsExistingTechnology != nil
	}
	return false
}

// Get returns the field's value as a string, Priority, []string or bool.
func (f *FieldSet) Get(name FieldName) (any, bool) {
	if !f.Has(name) {
		return nil, false
	}
	switch name.Kind() {
	case KindText, KindStatus:
		return *f.textField(name), true
	case KindPriority:
		return f.Priority, true
	case KindList:
		items := *f.listField(name)
		out := make([]string, len(items))
		copy(out, items)
		return out, true
	case KindBoolean:
		return *f.ImpactsExistingTechnology, true
	}
	return nil, false
}

// Names returns the present fields in canonical order.
func (f *FieldSet) Names() []FieldName {
	var names []FieldName
	for _, n := range canonicalFields {
		if f.Has(n) {
			names = append(names, n)
		}
	}
	return names
}

// Len returns the number of present fields.
func (f *FieldSet) Len() int {
	return len(f.Names())
}

// IsEmpty reports whether no field is present.
func (f *FieldSet) IsEmpty() bool {
	return f.Len() == 0
}

// Merge copies every field present in other onto f, overwriting what f had
// for those fields. Fields absent from other are left untouched.
func (f *FieldSet) Merge(other FieldSet) {
	for _, n := range other.Names() {
		f.copyFrom(&other, n)
	}
}

func (f *FieldSet) copyFrom(src *FieldSet, name FieldName) {
	switch name.Kind() {
	case KindText, KindStatus:
		*f.textField(name) = *src.textField(name)
	case KindPriority:
		f.Priority = src.Priority
	case KindList:
		items := *src.listField(name)
		cp := make([]string, len(items))
		copy(cp, items)
		*f.listField(name) = cp
	case KindBoolean:
		v := *src.ImpactsExistingTechnology
		f.ImpactsExistingTechnology = &v
	}
}
