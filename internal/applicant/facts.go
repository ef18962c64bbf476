package applicant

import (
	"sort"
	"strconv"
	"strings"
)

// Fact names the engine and rule documents refer to. Rule validation checks
// fields against this set so typos in rule documents fail at load time.
const (
	FactName                    = "name"
	FactAge                     = "age"
	FactGender                  = "gender"
	FactPhoneNumber             = "phone_number"
	FactAadhaarNumber           = "aadhaar_number"
	FactState                   = "state"
	FactDistrict                = "district"
	FactSubDistrictBlock        = "sub_district_block"
	FactVillage                 = "village"
	FactPincode                 = "pincode"
	FactLandSizeAcres           = "land_size_acres"
	FactLandOwnership           = "land_ownership"
	FactDateOfLandOwnership     = "date_of_land_ownership"
	FactLandRecordsAvailable    = "land_records_available"
	FactSurveyNumber            = "survey_number"
	FactBankAccountNumber       = "bank_account_number"
	FactIFSCCode                = "ifsc_code"
	FactAnnualIncome            = "annual_income"
	FactCategory                = "category"
	FactIsGovernmentEmployee    = "is_government_employee"
	FactGovernmentPost          = "government_post"
	FactIsIncomeTaxPayer        = "is_income_tax_payer"
	FactIsProfessional          = "is_professional"
	FactProfession              = "profession"
	FactIsPensioner             = "is_pensioner"
	FactMonthlyPension          = "monthly_pension"
	FactIsNRI                   = "is_nri"
	FactHoldsConstitutionalPost = "holds_constitutional_post"
	FactHoldsPoliticalOffice    = "holds_political_office"
	FactRegionSpecial           = "region_special"
	FactHasSpecialCertificate   = "has_special_certificate"
	FactCertificateType         = "certificate_type"
)

// KnownFacts returns the sorted set of fact names a rule document may
// reference.
func KnownFacts() []string {
	names := make([]string, 0, len(knownFacts))
	for name := range knownFacts {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// IsKnownFact reports whether a rule document field name is evaluable.
func IsKnownFact(name string) bool {
	return knownFacts[name]
}

var knownFacts = map[string]bool{
	FactName: true, FactAge: true, FactGender: true, FactPhoneNumber: true,
	FactAadhaarNumber: true, FactState: true, FactDistrict: true,
	FactSubDistrictBlock: true, FactVillage: true, FactPincode: true,
	FactLandSizeAcres: true, FactLandOwnership: true,
	FactDateOfLandOwnership: true, FactLandRecordsAvailable: true,
	FactSurveyNumber: true, FactBankAccountNumber: true, FactIFSCCode: true,
	FactAnnualIncome: true, FactCategory: true, FactIsGovernmentEmployee: true,
	FactGovernmentPost: true, FactIsIncomeTaxPayer: true,
	FactIsProfessional: true, FactProfession: true, FactIsPensioner: true,
	FactMonthlyPension: true, FactIsNRI: true,
	FactHoldsConstitutionalPost: true, FactHoldsPoliticalOffice: true,
	FactRegionSpecial: true, FactHasSpecialCertificate: true,
	FactCertificateType: true,
}

// Fact type names reported by FactTypeOf.
const (
	TypeString = "string"
	TypeNumber = "number"
	TypeBool   = "bool"
)

var factTypes = map[string]string{
	FactAge:                     TypeNumber,
	FactLandSizeAcres:           TypeNumber,
	FactAnnualIncome:            TypeNumber,
	FactMonthlyPension:          TypeNumber,
	FactLandRecordsAvailable:    TypeBool,
	FactIsGovernmentEmployee:    TypeBool,
	FactIsIncomeTaxPayer:        TypeBool,
	FactIsProfessional:          TypeBool,
	FactIsPensioner:             TypeBool,
	FactIsNRI:                   TypeBool,
	FactHoldsConstitutionalPost: TypeBool,
	FactHoldsPoliticalOffice:    TypeBool,
	FactHasSpecialCertificate:   TypeBool,
}

// FactTypeOf returns the value type ("string", "number" or "bool") a known
// fact carries. Rule documents are checked against this so a numeric
// comparison can never be declared on a string fact.
func FactTypeOf(name string) string {
	if t, ok := factTypes[name]; ok {
		return t
	}
	return TypeString
}

type factKind int

const (
	kindString factKind = iota
	kindNumber
	kindBool
)

type factValue struct {
	kind factKind
	str  string
	num  float64
	b    bool
}

// Facts is the immutable evaluation snapshot of one applicant. It is built
// once per evaluation and safe for concurrent reads.
type Facts struct {
	values  map[string]factValue
	members []FamilyMember
}

// BuildFacts normalizes a record into its fact snapshot. String values are
// trimmed; enum-like values (gender, category, land ownership, region,
// certificate type) are lower-cased so comparisons are case-insensitive. An
// absent optional value yields no fact at all: a predicate over a missing
// fact is simply not satisfied, and requirement rules report the field as
// missing.
func BuildFacts(rec *Record) *Facts {
	f := &Facts{values: make(map[string]factValue, 32)}

	f.putString(FactName, rec.Name, false)
	f.putInt(FactAge, rec.Age)
	f.putString(FactGender, rec.Gender, true)
	f.putString(FactPhoneNumber, rec.PhoneNumber, false)
	f.putString(FactAadhaarNumber, rec.AadhaarNumber, false)

	f.putString(FactState, rec.State, false)
	f.putString(FactDistrict, rec.District, false)
	f.putString(FactSubDistrictBlock, rec.SubDistrictBlock, false)
	f.putString(FactVillage, rec.Village, false)
	f.putString(FactPincode, rec.Pincode, false)

	f.putFloat(FactLandSizeAcres, rec.LandSizeAcres)
	f.putString(FactLandOwnership, rec.LandOwnership, true)
	f.putString(FactDateOfLandOwnership, rec.DateOfLandOwnership, false)
	f.putBool(FactLandRecordsAvailable, rec.LandRecordsAvailable)
	f.putString(FactSurveyNumber, rec.SurveyNumber, false)

	f.putString(FactBankAccountNumber, rec.BankAccountNumber, false)
	f.putString(FactIFSCCode, strings.ToUpper(strings.TrimSpace(rec.IFSCCode)), false)
	f.putFloat(FactAnnualIncome, rec.AnnualIncome)
	f.putString(FactCategory, rec.Category, true)

	f.putBool(FactIsGovernmentEmployee, rec.IsGovernmentEmployee)
	f.putString(FactGovernmentPost, rec.GovernmentPost, false)
	f.putBool(FactIsIncomeTaxPayer, rec.IsIncomeTaxPayer)
	f.putBool(FactIsProfessional, rec.IsProfessional)
	f.putString(FactProfession, rec.Profession, false)
	f.putBool(FactIsPensioner, rec.IsPensioner)
	f.putFloat(FactMonthlyPension, rec.MonthlyPension)
	f.putBool(FactIsNRI, rec.IsNRI)
	f.putBool(FactHoldsConstitutionalPost, rec.HoldsConstitutionalPost)
	f.putBool(FactHoldsPoliticalOffice, rec.HoldsPoliticalOffice)

	region := strings.ToLower(strings.TrimSpace(rec.RegionSpecial))
	if region == "" {
		region = "none"
	}
	f.values[FactRegionSpecial] = factValue{kind: kindString, str: region}
	f.putBool(FactHasSpecialCertificate, rec.HasSpecialCertificate)
	f.putString(FactCertificateType, rec.CertificateType, true)

	f.members = normalizeMembers(rec.FamilyMembers)
	return f
}

func normalizeMembers(members []FamilyMember) []FamilyMember {
	if len(members) == 0 {
		return nil
	}
	out := make([]FamilyMember, len(members))
	for i, m := range members {
		out[i] = FamilyMember{
			Name:     strings.TrimSpace(m.Name),
			Relation: strings.ToLower(strings.TrimSpace(m.Relation)),
			Age:      m.Age,
			Gender:   strings.ToLower(strings.TrimSpace(m.Gender)),
		}
	}
	return out
}

func (f *Facts) putString(name, value string, fold bool) {
	value = strings.TrimSpace(value)
	if value == "" {
		return
	}
	if fold {
		value = strings.ToLower(value)
	}
	f.values[name] = factValue{kind: kindString, str: value}
}

func (f *Facts) putInt(name string, value *int) {
	if value == nil {
		return
	}
	f.values[name] = factValue{kind: kindNumber, num: float64(*value)}
}

func (f *Facts) putFloat(name string, value *float64) {
	if value == nil {
		return
	}
	f.values[name] = factValue{kind: kindNumber, num: *value}
}

func (f *Facts) putBool(name string, value bool) {
	f.values[name] = factValue{kind: kindBool, b: value}
}

// Has reports whether the fact is present on this snapshot.
func (f *Facts) Has(name string) bool {
	_, ok := f.values[name]
	return ok
}

// Str returns the fact as a string. Numbers and booleans are not stringified;
// ok is false when the fact is absent or not a string.
func (f *Facts) Str(name string) (string, bool) {
	v, ok := f.values[name]
	if !ok || v.kind != kindString {
		return "", false
	}
	return v.str, true
}

// Num returns the fact as a float64.
func (f *Facts) Num(name string) (float64, bool) {
	v, ok := f.values[name]
	if !ok || v.kind != kindNumber {
		return 0, false
	}
	return v.num, true
}

// Bool returns the fact as a boolean.
func (f *Facts) Bool(name string) (bool, bool) {
	v, ok := f.values[name]
	if !ok || v.kind != kindBool {
		return false, false
	}
	return v.b, true
}

// Describe renders the fact for findings and traces. String values are
// quoted, absent facts render as "(missing)".
func (f *Facts) Describe(name string) string {
	v, ok := f.values[name]
	if !ok {
		return "(missing)"
	}
	switch v.kind {
	case kindNumber:
		return trimFloat(v.num)
	case kindBool:
		if v.b {
			return "true"
		}
		return "false"
	default:
		return strconv.Quote(v.str)
	}
}

// Members returns the normalized family entries.
func (f *Facts) Members() []FamilyMember {
	return f.members
}

func trimFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
