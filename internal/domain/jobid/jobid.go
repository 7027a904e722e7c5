// Package jobid composes base job identifiers of the form TYPE_CODE-SEQUENCE.
package jobid

import (
	"fmt"
	"strings"
)

// DefaultTypeCode is used when no metadata signal matches.
const DefaultTypeCode = "GEN"

// MultiComponentTypeCode is used for jobs with two or more components and no mail format.
const MultiComponentTypeCode = "MC"

var mailFormatCodes = map[string]string{
	"SELF_MAILER":  "SM",
	"POSTCARD":     "PC",
	"LETTER":       "LT",
	"ENVELOPE":     "EV",
	"FLAT":         "FT",
	"DOUBLE_CARD":  "DC",
	"OVERSIZED":    "OS",
	"BOOKLET_MAIL": "BM",
}

var jobTypeCodes = map[string]string{
	"BROCHURE":      "BR",
	"FLYER":         "FL",
	"BOOKLET":       "BK",
	"CATALOG":       "CT",
	"POSTER":        "PS",
	"BUSINESS_CARD": "BC",
	"DIRECT_MAIL":   "DM",
	"NEWSLETTER":    "NL",
	"FORM":          "FM",
	"LABEL":         "LB",
}

// Meta is the job metadata that drives the type code.
type Meta struct {
	MailFormat     *string
	ComponentCount int
	JobType        *string
}

func normalize(s *string) string {
	if s == nil {
		return ""
	}
	v := strings.ToUpper(strings.TrimSpace(*s))
	v = strings.NewReplacer(" ", "_", "-", "_").Replace(v)
	return v
}

// TypeCode resolves the type code. Mail format wins, then a multi-component job, then job type.
func TypeCode(m Meta) string {
	if code, ok := mailFormatCodes[normalize(m.MailFormat)]; ok {
		return code
	}
	if m.ComponentCount >= 2 {
		return MultiComponentTypeCode
	}
	if code, ok := jobTypeCodes[normalize(m.JobType)]; ok {
		return code
	}
	return DefaultTypeCode
}

// Compose returns "{code}-{seq}".
func Compose(code string, seq int64) string {
	if strings.TrimSpace(code) == "" {
		code = DefaultTypeCode
	}
	return fmt.Sprintf("%s-%d", code, seq)
}
