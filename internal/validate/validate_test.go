package validate

import (
	"errors"
	"strings"
	"testing"
	"time"

	"randevulu/internal/models"
)

var now = time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

func kindsOf(t *testing.T, err error) []Kind {
	t.Helper()
	if err == nil {
		return nil
	}
	var verr *Error
	if !errors.As(err, &verr) {
		t.Fatalf("expected *Error, got %T", err)
	}
	kinds := make([]Kind, 0, len(verr.Fields))
	for _, field := range verr.Fields {
		kinds = append(kinds, field.Kind)
	}
	return kinds
}

func hasKind(kinds []Kind, kind Kind) bool {
	for _, k := range kinds {
		if k == kind {
			return true
		}
	}
	return false
}

func TestAppointmentTimes(t *testing.T) {
	base := AppointmentInput{
		TenantID:   "11111111-1111-1111-1111-111111111111",
		CustomerID: "22222222-2222-2222-2222-222222222222",
	}
	cases := []struct {
		name  string
		start time.Time
		end   time.Time
		want  Kind
	}{
		{"valid", now.Add(time.Hour), now.Add(2 * time.Hour), ""},
		{"start equals now", now, now.Add(time.Hour), KindPastStartTime},
		{"start in past", now.Add(-time.Minute), now.Add(time.Hour), KindPastStartTime},
		{"end equals start", now.Add(time.Hour), now.Add(time.Hour), KindEndBeforeStart},
		{"end before start", now.Add(2 * time.Hour), now.Add(time.Hour), KindEndBeforeStart},
		{"missing start", time.Time{}, now.Add(time.Hour), KindRequired},
	}
	for _, tt := range cases {
		in := base
		in.StartTime = tt.start
		in.EndTime = tt.end
		_, err := Appointment(in, now)
		kinds := kindsOf(t, err)
		if tt.want == "" {
			if err != nil {
				t.Fatalf("%s: unexpected error %v", tt.name, err)
			}
			continue
		}
		if !hasKind(kinds, tt.want) {
			t.Fatalf("%s: expected %s, got %v", tt.name, tt.want, kinds)
		}
	}
}

func TestAppointmentCollectsEveryViolation(t *testing.T) {
	_, err := Appointment(AppointmentInput{
		TenantID:   "not-a-uuid",
		CustomerID: "",
		StartTime:  now.Add(-time.Hour),
		EndTime:    now.Add(-2 * time.Hour),
		Notes:      string(make([]byte, 501)),
	}, now)
	kinds := kindsOf(t, err)
	for _, want := range []Kind{KindInvalidID, KindRequired, KindPastStartTime, KindEndBeforeStart, KindTooLong} {
		if !hasKind(kinds, want) {
			t.Fatalf("expected %s in %v", want, kinds)
		}
	}
}

func TestAppointmentIsDeterministic(t *testing.T) {
	in := AppointmentInput{
		TenantID:   "11111111-1111-1111-1111-111111111111",
		CustomerID: "bad",
		StartTime:  now,
		EndTime:    now,
	}
	_, first := Appointment(in, now)
	_, second := Appointment(in, now)
	if first.Error() != second.Error() {
		t.Fatalf("verdicts differ: %q vs %q", first, second)
	}
}

func TestRegistration(t *testing.T) {
	cases := []struct {
		name     string
		email    string
		password string
		want     []Kind
	}{
		{"gmail ok", "ayse@gmail.com", "Secret1", nil},
		{"hotmail upper-case ok", "Ayse@Hotmail.com", "Secret1", nil},
		{"other domain", "ayse@example.com", "Secret1", []Kind{KindDisallowedEmailDomain}},
		{"bad email", "ayse", "Secret1", []Kind{KindInvalidEmail}},
		{"short password", "ayse@gmail.com", "Se1", []Kind{KindWeakPassword}},
		{"no upper", "ayse@gmail.com", "secret1", []Kind{KindWeakPassword}},
		{"no digit", "ayse@gmail.com", "Secrets", []Kind{KindWeakPassword}},
	}
	for _, tt := range cases {
		_, err := Registration(RegistrationInput{FullName: "Ayşe Yılmaz", Email: tt.email, Password: tt.password})
		kinds := kindsOf(t, err)
		if len(tt.want) == 0 && err != nil {
			t.Fatalf("%s: unexpected error %v", tt.name, err)
		}
		for _, want := range tt.want {
			if !hasKind(kinds, want) {
				t.Fatalf("%s: expected %s, got %v", tt.name, want, kinds)
			}
		}
	}
}

func TestWeakPasswordNamesUnmetRule(t *testing.T) {
	err := PasswordReset("abc")
	var verr *Error
	if !errors.As(err, &verr) {
		t.Fatalf("expected validation error, got %v", err)
	}
	if len(verr.Fields) != 3 {
		t.Fatalf("expected three unmet rules, got %+v", verr.Fields)
	}
	if err := PasswordReset("Abcdef1"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestPasswordByteLimit(t *testing.T) {
	if err := PasswordReset("Aa1" + strings.Repeat("x", MaxPasswordBytes-3)); err != nil {
		t.Fatalf("expected %d bytes to pass, got %v", MaxPasswordBytes, err)
	}
	err := PasswordReset("Aa1" + strings.Repeat("x", 80))
	var verr *Error
	if !errors.As(err, &verr) || !verr.Has(KindTooLong) {
		t.Fatalf("expected too long violation, got %v", err)
	}
	// Multi-byte runes count by their encoded size.
	err = PasswordReset("Aa1" + strings.Repeat("ş", 35))
	if !errors.As(err, &verr) || !verr.Has(KindTooLong) {
		t.Fatalf("expected too long violation for 73 bytes, got %v", err)
	}
}

func TestPhone(t *testing.T) {
	cases := []struct {
		phone string
		want  string
		ok    bool
	}{
		{"5551234567", "5551234567", true},
		{"05551234567", "5551234567", true},
		{"+905551234567", "5551234567", true},
		{"0555 123 45 67", "5551234567", true},
		{"", "", true},
		{"555123456", "", false},
		{"+15551234567", "", false},
		{"abcdefghij", "", false},
	}
	for _, tt := range cases {
		out, err := Customer(CustomerInput{TenantID: "11111111-1111-1111-1111-111111111111", FullName: "Mehmet", Phone: tt.phone})
		if tt.ok {
			if err != nil {
				t.Fatalf("%q: unexpected error %v", tt.phone, err)
			}
			if out.Phone != tt.want {
				t.Fatalf("%q: normalized to %q, want %q", tt.phone, out.Phone, tt.want)
			}
			continue
		}
		if !hasKind(kindsOf(t, err), KindInvalidPhone) {
			t.Fatalf("%q: expected InvalidPhone, got %v", tt.phone, err)
		}
	}
}

func TestService(t *testing.T) {
	tenant := "11111111-1111-1111-1111-111111111111"
	out, err := Service(ServiceInput{TenantID: tenant, Name: "Haircut", DurationMinutes: 30, Price: 100})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if out.Currency != models.DefaultCurrency {
		t.Fatalf("expected default currency, got %q", out.Currency)
	}

	cases := []struct {
		name string
		in   ServiceInput
		want Kind
	}{
		{"too short", ServiceInput{TenantID: tenant, Name: "Cut", DurationMinutes: 4}, KindOutOfRange},
		{"too long", ServiceInput{TenantID: tenant, Name: "Cut", DurationMinutes: 481}, KindOutOfRange},
		{"negative price", ServiceInput{TenantID: tenant, Name: "Cut", DurationMinutes: 30, Price: -1}, KindOutOfRange},
		{"currency", ServiceInput{TenantID: tenant, Name: "Cut", DurationMinutes: 30, Currency: "EURO"}, KindInvalidCurrency},
		{"name", ServiceInput{TenantID: tenant, Name: "C", DurationMinutes: 30}, KindTooShort},
	}
	for _, tt := range cases {
		_, err := Service(tt.in)
		if !hasKind(kindsOf(t, err), tt.want) {
			t.Fatalf("%s: expected %s, got %v", tt.name, tt.want, err)
		}
	}

	for _, minutes := range []int{5, 480} {
		if _, err := Service(ServiceInput{TenantID: tenant, Name: "Cut", DurationMinutes: minutes}); err != nil {
			t.Fatalf("duration %d: unexpected error %v", minutes, err)
		}
	}
}

func TestServiceUpdateRequiresAField(t *testing.T) {
	if _, err := ServiceUpdate(ServiceUpdateInput{}); err == nil {
		t.Fatalf("expected error for empty update")
	}
	minutes := 45
	if _, err := ServiceUpdate(ServiceUpdateInput{DurationMinutes: &minutes}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestProfileRoleInvariant(t *testing.T) {
	tenant := "11111111-1111-1111-1111-111111111111"
	cases := []struct {
		role     string
		tenantID string
		want     Kind
	}{
		{models.RoleOwner, tenant, ""},
		{models.RoleStaff, tenant, ""},
		{models.RoleCustomer, "", ""},
		{models.RoleOwner, "", KindInvalidRole},
		{models.RoleCustomer, tenant, KindInvalidRole},
		{"admin", "", KindInvalidEnum},
	}
	for _, tt := range cases {
		_, err := Profile(ProfileInput{FullName: "Ali Veli", Role: tt.role, TenantID: tt.tenantID})
		if tt.want == "" {
			if err != nil {
				t.Fatalf("%s/%q: unexpected error %v", tt.role, tt.tenantID, err)
			}
			continue
		}
		if !hasKind(kindsOf(t, err), tt.want) {
			t.Fatalf("%s/%q: expected %s, got %v", tt.role, tt.tenantID, tt.want, err)
		}
	}
}

func TestNotification(t *testing.T) {
	_, err := Notification(NotificationInput{
		UserID:  "11111111-1111-1111-1111-111111111111",
		Type:    models.NotificationSystem,
		Title:   "Hoş geldiniz",
		Message: "Hesabınız hazır.",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	_, err = Notification(NotificationInput{UserID: "x", Type: "other"})
	kinds := kindsOf(t, err)
	for _, want := range []Kind{KindInvalidID, KindInvalidEnum, KindRequired} {
		if !hasKind(kinds, want) {
			t.Fatalf("expected %s in %v", want, kinds)
		}
	}
}

func TestTenantWorkingHours(t *testing.T) {
	hours := models.DefaultWorkingHours()
	if _, err := Tenant(TenantInput{Name: "Berber Ali", Settings: models.TenantSettings{WorkingHours: hours}}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	hours["monday"] = models.DayHours{Start: "18:00", End: "09:00"}
	hours["funday"] = models.DayHours{Start: "09:00", End: "10:00"}
	_, err := Tenant(TenantInput{Name: "Berber Ali", SubscriptionTier: "gold", Settings: models.TenantSettings{WorkingHours: hours}})
	kinds := kindsOf(t, err)
	for _, want := range []Kind{KindInvalidTime, KindInvalidEnum} {
		if !hasKind(kinds, want) {
			t.Fatalf("expected %s in %v", want, kinds)
		}
	}
}

func TestDateAndTimestamp(t *testing.T) {
	loc := time.FixedZone("TRT", 3*60*60)
	day, err := Date("date", "2025-06-10", loc)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if day.Location() != loc || day.Hour() != 0 {
		t.Fatalf("unexpected day %v", day)
	}
	if _, err := Date("date", "10.06.2025", loc); !hasKind(kindsOf(t, err), KindInvalidDate) {
		t.Fatalf("expected InvalidDate, got %v", err)
	}

	local, err := Timestamp("start_time", "2025-06-10T11:00", loc)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if local.UTC().Hour() != 8 {
		t.Fatalf("expected local time interpreted in loc, got %v", local.UTC())
	}
	zoned, err := Timestamp("start_time", "2025-06-10T11:00:00Z", loc)
	if err != nil || zoned.UTC().Hour() != 11 {
		t.Fatalf("unexpected zoned parse %v %v", zoned, err)
	}
}
