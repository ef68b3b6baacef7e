// Package catalog defines the static leave-type catalog: which parameters
// each leave type requires, their defaults, and their descriptions. The
// catalog is the single schema authority for leave-request state; every
// field the extractor is allowed to merge must be declared here.
package catalog

import (
	"fmt"
	"sort"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	apperrors "github.com/conneqt/leavebot-go/internal/errors"
)

// Field names shared by every leave type.
const (
	FieldLeaveType    = "leaveType"
	FieldStartDate    = "startDate"
	FieldEndDate      = "endDate"
	FieldStartDayType = "startDayType"
	FieldEndDayType   = "endDayType"
)

// Param describes one leave-type parameter.
type Param struct {
	// Name is the camelCase state key.
	Name string
	// Description is shown to the model when prompting for the value.
	Description string
	// Default is applied when the user never supplies a value.
	// nil means no default (mandatory params without defaults stay
	// null until the user answers).
	Default any
}

// LeaveType is one catalog entry.
type LeaveType struct {
	// Name is the canonical display name, e.g. "Annual Leave".
	Name string
	// Mandatory params must be non-null before the request is
	// submittable, in prompting order.
	Mandatory []Param
	// Optional params are always populated from their defaults.
	Optional []Param
}

// Date fields every leave type shares. Day types are full-day (true)
// unless the user says otherwise.
var commonMandatory = []Param{
	{Name: FieldStartDate, Description: "first day of leave, ISO date (YYYY-MM-DD)"},
	{Name: FieldEndDate, Description: "last day of leave, ISO date (YYYY-MM-DD)"},
}

var commonOptional = []Param{
	{Name: FieldStartDayType, Description: "true for a full first day, false for a half day", Default: true},
	{Name: FieldEndDayType, Description: "true for a full last day, false for a half day", Default: true},
}

// entries is the built-in catalog. Order matters only for display.
var entries = []LeaveType{
	{
		Name:      "Annual Leave",
		Mandatory: commonMandatory,
		Optional: append(append([]Param{}, commonOptional...),
			Param{Name: "leaveDestination", Description: "where the employee will spend the leave (local or abroad)", Default: "local"},
			Param{Name: "advanceSalary", Description: "whether salary should be paid in advance for the leave period", Default: false},
		),
	},
	{
		Name: "Sick Leave",
		Mandatory: append(append([]Param{}, commonMandatory...),
			Param{Name: "medicalCertificate", Description: "whether a medical certificate will be provided (yes/no)"},
		),
		Optional: append(append([]Param{}, commonOptional...),
			Param{Name: "symptoms", Description: "short description of the illness", Default: "unspecified"},
		),
	},
	{
		Name: "Remote Working Leave",
		Mandatory: append(append([]Param{}, commonMandatory...),
			Param{Name: "workLocation", Description: "where the employee will be working from"},
		),
		Optional: append([]Param{}, commonOptional...),
	},
}

// byCanonical indexes entries by their canonical display name.
var byCanonical = func() map[string]*LeaveType {
	m := make(map[string]*LeaveType, len(entries))
	for i := range entries {
		m[Canonicalize(entries[i].Name)] = &entries[i]
	}
	return m
}()

var titleCaser = cases.Title(language.English)

// Canonicalize maps arbitrary user casing ("annual leave", "SICK LEAVE")
// to the catalog's display form. Lookup normalizes through it, so the
// catalog never needs a separate case-folded index.
func Canonicalize(name string) string {
	return titleCaser.String(strings.ToLower(strings.TrimSpace(name)))
}

// Lookup returns the catalog entry for a leave-type name,
// case-insensitively. Returns ErrConfiguration-wrapped not-found when the
// type is unknown.
func Lookup(name string) (*LeaveType, error) {
	t, ok := byCanonical[Canonicalize(name)]
	if !ok {
		return nil, fmt.Errorf("%w: unknown leave type %q", apperrors.ErrConfiguration, name)
	}
	return t, nil
}

// CommonParams returns the date and day-type parameters every leave type
// shares, for extraction before a leave type is known.
func CommonParams() []Param {
	params := append([]Param{}, commonMandatory...)
	return append(params, commonOptional...)
}

// Names returns the canonical leave-type names.
func Names() []string {
	names := make([]string, len(entries))
	for i := range entries {
		names[i] = entries[i].Name
	}
	return names
}

// Params returns all parameters (mandatory then optional).
func (t *LeaveType) Params() []Param {
	out := make([]Param, 0, len(t.Mandatory)+len(t.Optional))
	out = append(out, t.Mandatory...)
	out = append(out, t.Optional...)
	return out
}

// MandatoryNames returns mandatory parameter names in prompting order.
func (t *LeaveType) MandatoryNames() []string {
	names := make([]string, len(t.Mandatory))
	for i, p := range t.Mandatory {
		names[i] = p.Name
	}
	return names
}

// HasParam reports whether name is a declared parameter of this type.
func (t *LeaveType) HasParam(name string) bool {
	for _, p := range t.Params() {
		if p.Name == name {
			return true
		}
	}
	return false
}

// ParamByName returns the declared parameter, or false when undeclared.
func (t *LeaveType) ParamByName(name string) (Param, bool) {
	for _, p := range t.Params() {
		if p.Name == name {
			return p, true
		}
	}
	return Param{}, false
}

// AllowedFields returns the full extraction vocabulary for this type:
// leaveType plus every declared parameter name.
func (t *LeaveType) AllowedFields() []string {
	fields := []string{FieldLeaveType}
	for _, p := range t.Params() {
		fields = append(fields, p.Name)
	}
	return fields
}

// CommonFields returns the parameter names shared by two leave types,
// sorted. Used when the user switches leave type mid-conversation: only
// these fields survive the switch.
func CommonFields(a, b *LeaveType) []string {
	inA := make(map[string]bool)
	for _, p := range a.Params() {
		inA[p.Name] = true
	}
	var common []string
	for _, p := range b.Params() {
		if inA[p.Name] {
			common = append(common, p.Name)
		}
	}
	sort.Strings(common)
	return common
}
