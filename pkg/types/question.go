// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

import "strings"

// MaxQuestionLength is the longest question text accepted at intake.
const MaxQuestionLength = 200

// UnknownBirthTime is the sentinel a requester submits when the birth time
// is not known.
const UnknownBirthTime = "Unknown"

// Question is the immutable pipeline input.
type Question struct {
	// Text is the free-text question (at most MaxQuestionLength runes).
	Text string `json:"question" yaml:"question"`

	// Email is the delivery address. Optional for CLI runs.
	Email string `json:"email,omitempty" yaml:"email,omitempty"`

	// Details describes the requester. Nil for anonymous technical questions.
	Details *PersonalDetails `json:"personalDetails,omitempty" yaml:"personal_details,omitempty"`

	// Partner describes the second person of a compatibility request.
	// A non-nil Partner switches a personal question into compat mode.
	Partner *PersonalDetails `json:"partnerDetails,omitempty" yaml:"partner_details,omitempty"`

	// Image is the uploaded palm photo. It is validated and owned by the
	// intake layer; the pipeline only reads it.
	Image *Image `json:"-" yaml:"-"`
}

// WantsCompatibility reports whether the question carries a second person.
func (q Question) WantsCompatibility() bool {
	return q.Partner != nil && !q.Partner.IsEmpty()
}

// PersonalDetails holds optional identifying and birth data for one person.
type PersonalDetails struct {
	FullName     string `json:"fullName,omitempty" yaml:"full_name,omitempty"`
	BirthDate    string `json:"birthDate,omitempty" yaml:"birth_date,omitempty"`
	BirthTime    string `json:"birthTime,omitempty" yaml:"birth_time,omitempty"`
	BirthCity    string `json:"birthCity,omitempty" yaml:"birth_city,omitempty"`
	BirthState   string `json:"birthState,omitempty" yaml:"birth_state,omitempty"`
	BirthCountry string `json:"birthCountry,omitempty" yaml:"birth_country,omitempty"`
}

// IsEmpty reports whether no field is set.
func (d PersonalDetails) IsEmpty() bool {
	return d == PersonalDetails{}
}

// BirthPlace joins the non-empty city, state and country parts.
func (d PersonalDetails) BirthPlace() string {
	var parts []string
	for _, p := range []string{d.BirthCity, d.BirthState, d.BirthCountry} {
		if p = strings.TrimSpace(p); p != "" {
			parts = append(parts, p)
		}
	}
	return strings.Join(parts, ", ")
}

// KnownBirthTime returns the birth time, or "" when it is missing or the
// Unknown sentinel.
func (d PersonalDetails) KnownBirthTime() string {
	t := strings.TrimSpace(d.BirthTime)
	if strings.EqualFold(t, UnknownBirthTime) {
		return ""
	}
	return t
}

// Image is an opaque reference to an uploaded picture.
type Image struct {
	Filename string
	MIMEType string
	Data     []byte
}
