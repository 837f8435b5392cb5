package validate

import (
	"net/mail"
	"regexp"
	"strings"
	"time"
	"unicode"
	"unicode/utf8"

	"github.com/google/uuid"
	"github.com/nyaruka/phonenumbers"
)

const (
	MaxNameLength        = 100
	MinNameLength        = 2
	MaxNotesLength       = 500
	MaxMessageLength     = 500
	MaxDescriptionLength = 500
	MaxAddressLength     = 200
	MaxTitleLength       = 100
	MinPasswordLength    = 6
	MaxPasswordBytes     = 72
	MinServiceDuration   = 5
	MaxServiceDuration   = 480
)

const phoneRegion = "TR"

var (
	phonePattern         = regexp.MustCompile(`^(\+90|0)?[0-9]{10}$`)
	registrationDomains  = []string{"@gmail.com", "@hotmail.com"}
	clockPattern         = regexp.MustCompile(`^([01][0-9]|2[0-3]):[0-5][0-9]$`)
	phoneFormattingChars = strings.NewReplacer(" ", "", "-", "", "(", "", ")", "")
)

func (c *collector) uuid(field, value string, required bool) string {
	value = strings.TrimSpace(value)
	if value == "" {
		if required {
			c.add(field, KindRequired, field+" is required")
		}
		return ""
	}
	parsed, err := uuid.Parse(value)
	if err != nil {
		c.add(field, KindInvalidID, field+" must be a valid UUID")
		return ""
	}
	return parsed.String()
}

func (c *collector) name(field, value string) string {
	value = strings.TrimSpace(value)
	length := utf8.RuneCountInString(value)
	switch {
	case length == 0:
		c.add(field, KindRequired, field+" is required")
	case length < MinNameLength:
		c.add(field, KindTooShort, field+" must be at least 2 characters")
	case length > MaxNameLength:
		c.add(field, KindTooLong, field+" must be at most 100 characters")
	}
	return value
}

func (c *collector) maxLen(field, value string, limit int) string {
	value = strings.TrimSpace(value)
	if utf8.RuneCountInString(value) > limit {
		c.add(field, KindTooLong, field+" is too long")
	}
	return value
}

func (c *collector) email(field, value string, required bool) string {
	value = strings.ToLower(strings.TrimSpace(value))
	if value == "" {
		if required {
			c.add(field, KindRequired, field+" is required")
		}
		return ""
	}
	if !isEmail(value) {
		c.add(field, KindInvalidEmail, field+" must be a valid e-mail address")
		return ""
	}
	return value
}

func (c *collector) phone(field, value string) string {
	value = phoneFormattingChars.Replace(strings.TrimSpace(value))
	if value == "" {
		return ""
	}
	if !phonePattern.MatchString(value) {
		c.add(field, KindInvalidPhone, field+" must be 10 digits, optionally prefixed with +90 or 0")
		return ""
	}
	return NormalizePhone(value)
}

func (c *collector) password(field, value string) {
	if utf8.RuneCountInString(value) < MinPasswordLength {
		c.add(field, KindWeakPassword, "password must be at least 6 characters")
	}
	if len(value) > MaxPasswordBytes {
		c.add(field, KindTooLong, "password must be at most 72 bytes")
	}
	if !strings.ContainsFunc(value, unicode.IsUpper) {
		c.add(field, KindWeakPassword, "password must contain an uppercase letter")
	}
	if !strings.ContainsFunc(value, unicode.IsDigit) {
		c.add(field, KindWeakPassword, "password must contain a digit")
	}
}

func isEmail(value string) bool {
	addr, err := mail.ParseAddress(value)
	if err != nil || addr.Address != value {
		return false
	}
	at := strings.LastIndex(value, "@")
	return at > 0 && strings.Contains(value[at:], ".")
}

// NormalizePhone reduces an accepted phone number to its 10 digit national
// form so "+905551234567", "05551234567" and "5551234567" compare equal.
func NormalizePhone(value string) string {
	value = phoneFormattingChars.Replace(strings.TrimSpace(value))
	if value == "" {
		return ""
	}
	parsed, err := phonenumbers.Parse(value, phoneRegion)
	if err != nil {
		return value
	}
	return phonenumbers.GetNationalSignificantNumber(parsed)
}

// UUID checks a single identifier, returning it in canonical form.
func UUID(field, value string) (string, error) {
	var c collector
	id := c.uuid(field, value, true)
	return id, c.err()
}

// Date parses a calendar date (YYYY-MM-DD) in loc.
func Date(field, value string, loc *time.Location) (time.Time, error) {
	var c collector
	value = strings.TrimSpace(value)
	if value == "" {
		c.add(field, KindRequired, field+" is required")
		return time.Time{}, c.err()
	}
	day, err := time.ParseInLocation(time.DateOnly, value, loc)
	if err != nil {
		c.add(field, KindInvalidDate, field+" must be a date formatted as YYYY-MM-DD")
		return time.Time{}, c.err()
	}
	return day, nil
}

var timestampLayouts = []string{time.RFC3339Nano, "2006-01-02T15:04:05", "2006-01-02T15:04", "2006-01-02 15:04:05", "2006-01-02 15:04"}

// Timestamp parses an RFC 3339 timestamp, or a zone-less local timestamp
// interpreted in loc.
func Timestamp(field, value string, loc *time.Location) (time.Time, error) {
	var c collector
	value = strings.TrimSpace(value)
	if value == "" {
		c.add(field, KindRequired, field+" is required")
		return time.Time{}, c.err()
	}
	for _, layout := range timestampLayouts {
		if parsed, err := time.ParseInLocation(layout, value, loc); err == nil {
			return parsed, nil
		}
	}
	c.add(field, KindInvalidDate, field+" must be a valid date and time")
	return time.Time{}, c.err()
}
